package handler

import (
	"net/http"
	"strings"

	"github.com/go-faster/errors"

	"github.com/modesta/storefront-api/internal/domain/media"
	"github.com/modesta/storefront-api/internal/mediastore"
)

var allowedUploadTypes = map[string]struct{}{
	"image/jpeg":      {},
	"image/png":       {},
	"image/webp":      {},
	"image/gif":       {},
	"video/mp4":       {},
	"video/webm":      {},
	"video/quicktime": {},
}

type uploadResponse struct {
	Status       bool   `json:"status"`
	URL          string `json:"url"`
	PublicID     string `json:"publicId"`
	ResourceType string `json:"resourceType"`
}

// UploadMedia stores a product image or short video on the media host and
// returns its delivery URL.
func (h *Handler) UploadMedia(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.cfg.MaxUploadBytes)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		respondError(w, r, http.StatusBadRequest, "Invalid upload request")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, r, http.StatusBadRequest, "Missing file")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if _, ok := allowedUploadTypes[strings.ToLower(contentType)]; !ok {
		respondError(w, r, http.StatusBadRequest, "Unsupported file type")
		return
	}

	asset, err := h.media.Upload(r.Context(), file, media.UploadOptions{
		Folder:      h.cfg.UploadFolder,
		Filename:    header.Filename,
		ContentType: contentType,
	})
	if err != nil {
		if errors.Is(err, mediastore.ErrVideoTooLong) {
			respondError(w, r, http.StatusBadRequest, "Videos must be 5 seconds or shorter")
			return
		}
		respondInternal(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusOK, uploadResponse{
		Status:       true,
		URL:          asset.URL,
		PublicID:     asset.PublicID,
		ResourceType: string(asset.ResourceType),
	})
}
