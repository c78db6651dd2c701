// Package media normalises uploaded menu and set photos into JPEG renditions.
package media

import (
	"bytes"
	"errors"
	"image"
	"image/jpeg"
	"net/http"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/rwcarlsen/goexif/exif"

	_ "image/gif"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

const (
	FullSide  = 1200
	ThumbSide = 300
	quality   = 85
)

var ErrUnsupportedImage = errors.New("media: unsupported image")

var allowedContentTypes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
	"image/webp": true,
	"image/gif":  true,
	"image/bmp":  true,
	"image/tiff": true,
	"image/heic": true,
	"image/heif": true,
}

// Rendition is one processed upload.
type Rendition struct {
	Full   []byte
	Thumb  []byte
	Width  int
	Height int
	Format string
}

// Allowed reports whether a declared or sniffed content type is accepted.
func Allowed(contentType string) bool {
	ct, _, _ := strings.Cut(strings.ToLower(strings.TrimSpace(contentType)), ";")
	return allowedContentTypes[strings.TrimSpace(ct)]
}

// Sniff detects the content type from the first bytes, recognising HEIF containers that
// net/http does not.
func Sniff(data []byte) string {
	if isHeifFamily(data) {
		return "image/heic"
	}
	if len(data) == 0 {
		return ""
	}
	return http.DetectContentType(data[:min(len(data), 512)])
}

func isHeifFamily(data []byte) bool {
	// ISO BMFF: [size:4][ftyp:4][brand:4]
	if len(data) < 12 || string(data[4:8]) != "ftyp" {
		return false
	}
	switch string(data[8:12]) {
	case "heic", "heix", "hevc", "hevx", "mif1", "msf1", "heif":
		return true
	}
	return false
}

// Decode reads any supported format and applies the JPEG EXIF orientation.
func Decode(data []byte) (image.Image, string, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		if isHeifFamily(data) {
			if heic, heicErr := decodeHEIC(data); heicErr == nil {
				return heic, "heic", nil
			}
		}
		return nil, "", ErrUnsupportedImage
	}
	if format == "jpeg" {
		img = orient(img, exifOrientation(data))
	}
	return img, format, nil
}

func exifOrientation(data []byte) int {
	ex, err := exif.Decode(bytes.NewReader(data))
	if err != nil {
		return 1
	}
	tag, err := ex.Get(exif.Orientation)
	if err != nil {
		return 1
	}
	v, err := tag.Int(0)
	if err != nil {
		return 1
	}
	return v
}

func orient(img image.Image, orientation int) image.Image {
	switch orientation {
	case 2:
		return imaging.FlipH(img)
	case 3:
		return imaging.Rotate180(img)
	case 4:
		return imaging.FlipV(img)
	case 5:
		return imaging.Transpose(img)
	case 6:
		return imaging.Rotate270(img)
	case 7:
		return imaging.Transverse(img)
	case 8:
		return imaging.Rotate90(img)
	}
	return img
}

// Process decodes data once and renders the full size rendition, fitted inside
// FullSide, and a ThumbSide square thumbnail cropped from the centre.
func Process(data []byte) (Rendition, error) {
	img, format, err := Decode(data)
	if err != nil {
		return Rendition{}, err
	}
	b := img.Bounds()

	full, err := encode(imaging.Fit(img, FullSide, FullSide, imaging.Lanczos))
	if err != nil {
		return Rendition{}, err
	}
	thumb, err := encode(imaging.Fill(img, ThumbSide, ThumbSide, imaging.Center, imaging.Lanczos))
	if err != nil {
		return Rendition{}, err
	}
	return Rendition{Full: full, Thumb: thumb, Width: b.Dx(), Height: b.Dy(), Format: format}, nil
}

func encode(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
