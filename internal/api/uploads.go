package api

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/erazemk/lendshare/internal/imaging"
	"github.com/erazemk/lendshare/internal/model"
	"github.com/erazemk/lendshare/internal/uploads"
)

// categoryMaxDimension bounds category thumbnails, which are shown smaller
// than product images.
const categoryMaxDimension = 512

// UploadsHandler handles image uploads.
type UploadsHandler struct {
	Store *uploads.Store
}

type uploadRequest struct {
	ImageBase64 string `json:"image_base64" validate:"required"`
	Filename    string `json:"filename" validate:"required,max=255"`
	MIMEType    string `json:"mime_type" validate:"omitempty,oneof=image/jpeg image/jpg image/png image/gif image/webp"`
	Kind        string `json:"kind" validate:"omitempty,oneof=product category"`
}

// decodeBase64 accepts raw base64 or a data URL.
func decodeBase64(s string) ([]byte, error) {
	if strings.HasPrefix(s, "data:") {
		if _, payload, ok := strings.Cut(s, ","); ok {
			s = payload
		}
	}
	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: image is not valid base64", model.ErrInvalidInput)
	}
	return data, nil
}

// Create handles POST /api/uploads. The image is validated by content,
// downscaled and stored as JPEG.
func (h *UploadsHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h.Store == nil {
		jsonError(w, http.StatusServiceUnavailable, "uploads are not configured")
		return
	}

	var req uploadRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err, "invalid request body")
		return
	}

	data, err := decodeBase64(req.ImageBase64)
	if err != nil {
		writeError(w, err, "invalid image")
		return
	}
	if len(data) > uploads.MaxSize {
		jsonError(w, http.StatusBadRequest, "file too large (5 MB max)")
		return
	}

	bucket := uploads.BucketFor(req.Kind)
	maxDim := imaging.MaxDimension
	if bucket == uploads.BucketCategories {
		maxDim = categoryMaxDimension
	}

	img, err := imaging.Process(bytes.NewReader(data), maxDim)
	if err != nil {
		writeError(w, err, "failed to process image")
		return
	}

	obj, err := h.Store.Put(bucket, req.Filename, ".jpg", img.Data)
	if err != nil {
		writeError(w, err, "failed to store image")
		return
	}

	slog.Info("image uploaded",
		"user", GetClaims(r.Context()).Email,
		"bucket", obj.Bucket,
		"name", obj.Name,
		"source", img.Source,
		"bytes", len(img.Data),
	)
	jsonOK(w, http.StatusCreated, "image uploaded", map[string]any{
		"url":    obj.URL,
		"name":   obj.Name,
		"bucket": obj.Bucket,
	})
}
