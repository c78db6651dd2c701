package handlers

import (
	"fmt"
	"io"
	"net/http"

	"restaurant-order-service/internal/model"
	"restaurant-order-service/pkg/response"

	"go.uber.org/zap"
)

const defaultMaxUpload = 5 * 1024 * 1024

type fileReadError struct {
	Status  int
	Message string
}

// readFileBytes reads the first present multipart field of fields, bounded by maxBytes.
func readFileBytes(w http.ResponseWriter, r *http.Request, maxBytes int64, fields ...string) ([]byte, *fileReadError) {
	if maxBytes <= 0 {
		maxBytes = defaultMaxUpload
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes+1<<20)
	if err := r.ParseMultipartForm(maxBytes); err != nil {
		return nil, &fileReadError{Status: http.StatusBadRequest, Message: "Expected a multipart form with an image file"}
	}
	for _, field := range fields {
		file, _, err := r.FormFile(field)
		if err != nil {
			continue
		}
		defer file.Close()

		data, err := io.ReadAll(io.LimitReader(file, maxBytes+1))
		if err != nil {
			return nil, &fileReadError{Status: http.StatusBadRequest, Message: "Failed to read file"}
		}
		if int64(len(data)) > maxBytes {
			sizeMB := maxBytes / (1024 * 1024)
			if sizeMB <= 0 {
				sizeMB = 1
			}
			return nil, &fileReadError{Status: http.StatusRequestEntityTooLarge, Message: fmt.Sprintf("File size must be less than %dMB.", sizeMB)}
		}
		return data, nil
	}
	return nil, &fileReadError{Status: http.StatusBadRequest, Message: "File is required"}
}

func (h *Handler) MenuUploadImage(w http.ResponseWriter, r *http.Request) {
	h.uploadImage(w, r, model.DiscountTargetItem, "menu")
}

func (h *Handler) SetUploadImage(w http.ResponseWriter, r *http.Request) {
	h.uploadImage(w, r, model.DiscountTargetSet, "sets")
}

// uploadImage stores a new image for a menu item or set and points the catalog at it.
// The catalog only changes after both renditions are stored; the replaced image is then
// removed.
func (h *Handler) uploadImage(w http.ResponseWriter, r *http.Request, target model.DiscountTarget, folder string) {
	ctx := r.Context()
	id := readPathString(r, "id")

	var err error
	if target == model.DiscountTargetItem {
		_, err = h.Catalog.GetMenuItem(ctx, id)
	} else {
		_, err = h.Catalog.GetSet(ctx, id)
	}
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	data, readErr := readFileBytes(w, r, h.Uploads.MaxBytes(), "image", "file")
	if readErr != nil {
		response.Error(w, readErr.Status, "INVALID_IMAGE", readErr.Message)
		return
	}

	uploaded, err := h.Uploads.Upload(ctx, folder, id, data)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	previous, err := h.Catalog.SetImage(ctx, target, id, uploaded.URL)
	if err != nil {
		h.Uploads.Remove(ctx, uploaded.URL)
		h.writeError(w, r, err)
		return
	}
	if previous != "" && previous != uploaded.URL {
		h.Uploads.Remove(ctx, previous)
	}

	h.Logger.Info("catalog image replaced",
		zap.String("target", string(target)),
		zap.String("id", id),
		zap.String("url", uploaded.URL))
	response.Success(w, uploaded)
}
