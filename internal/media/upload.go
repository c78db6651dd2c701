package media

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"restaurant-order-service/internal/apperr"
	"restaurant-order-service/internal/storage"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Uploaded names the stored renditions of one image.
type Uploaded struct {
	URL      string `json:"url"`
	ThumbURL string `json:"thumbUrl"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
}

type Uploader struct {
	objects  storage.Objects
	maxBytes int64
	logger   *zap.Logger
}

func NewUploader(objects storage.Objects, maxBytes int64, logger *zap.Logger) *Uploader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Uploader{objects: objects, maxBytes: maxBytes, logger: logger}
}

func (u *Uploader) MaxBytes() int64 { return u.maxBytes }

// Upload validates and re-encodes data, then stores it under
// <folder>/<ownerID>/<random>.jpg with a _thumb sibling.
func (u *Uploader) Upload(ctx context.Context, folder, ownerID string, data []byte) (Uploaded, error) {
	if u.objects == nil {
		return Uploaded{}, apperr.New(apperr.ErrStorageUnavailable, "Image storage is not configured", http.StatusServiceUnavailable, nil)
	}
	if len(data) == 0 {
		return Uploaded{}, apperr.BadRequest(apperr.ErrInvalidImage, "Image file is empty")
	}
	if u.maxBytes > 0 && int64(len(data)) > u.maxBytes {
		return Uploaded{}, apperr.New(apperr.ErrInvalidImage, fmt.Sprintf("Image exceeds %d bytes", u.maxBytes), http.StatusRequestEntityTooLarge, nil)
	}
	if ct := Sniff(data); !Allowed(ct) {
		return Uploaded{}, apperr.New(apperr.ErrInvalidImage, "Unsupported image type", http.StatusBadRequest, map[string]any{"contentType": ct})
	}

	r, err := Process(data)
	if err != nil {
		if errors.Is(err, ErrUnsupportedImage) {
			return Uploaded{}, apperr.BadRequest(apperr.ErrInvalidImage, "Image could not be decoded")
		}
		return Uploaded{}, err
	}

	base := strings.Trim(folder, "/") + "/" + ownerID + "/" + uuid.NewString()
	fullURL, err := u.objects.PutObject(ctx, base+".jpg", r.Full, "image/jpeg", "")
	if err != nil {
		return Uploaded{}, u.storageErr(err)
	}
	thumbURL, err := u.objects.PutObject(ctx, base+"_thumb.jpg", r.Thumb, "image/jpeg", "")
	if err != nil {
		u.Remove(ctx, fullURL)
		return Uploaded{}, u.storageErr(err)
	}
	return Uploaded{URL: fullURL, ThumbURL: thumbURL, Width: r.Width, Height: r.Height}, nil
}

// Remove deletes a previously uploaded image and its thumbnail. Images that were not
// uploaded here, such as seeded external URLs, are left alone.
func (u *Uploader) Remove(ctx context.Context, url string) {
	if u.objects == nil || strings.TrimSpace(url) == "" {
		return
	}
	for _, target := range []string{url, ThumbURL(url)} {
		if err := u.objects.DeleteURL(ctx, target); err != nil && !errors.Is(err, storage.ErrUnmanagedURL) {
			u.logger.Warn("delete old image failed", zap.String("url", target), zap.Error(err))
		}
	}
}

// ThumbURL derives the thumbnail location of an uploaded image.
func ThumbURL(url string) string {
	if strings.HasSuffix(url, ".jpg") && !strings.HasSuffix(url, "_thumb.jpg") {
		return strings.TrimSuffix(url, ".jpg") + "_thumb.jpg"
	}
	return ""
}

func (u *Uploader) storageErr(err error) error {
	u.logger.Error("image upload failed", zap.Error(err))
	return apperr.New(apperr.ErrStorageUnavailable, "Image storage is unavailable", http.StatusBadGateway, nil)
}
