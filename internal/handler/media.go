package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/safar/safar-go/internal/middleware"
	"github.com/safar/safar-go/internal/service"
)

// multipartOverhead leaves room for the multipart framing around the file.
const multipartOverhead = 1 << 20

// MediaHandler handles image upload and removal.
type MediaHandler struct {
	service        *service.MediaService
	logger         *slog.Logger
	maxUploadBytes int64
}

// NewMediaHandler creates a new MediaHandler accepting files up to maxUploadBytes.
func NewMediaHandler(svc *service.MediaService, logger *slog.Logger, maxUploadBytes int64) *MediaHandler {
	return &MediaHandler{service: svc, logger: logger, maxUploadBytes: maxUploadBytes}
}

// HandleUpload handles POST /image-upload requests with the file in the
// multipart field "image".
func (h *MediaHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("unauthorized"))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes+multipartOverhead)

	file, header, err := r.FormFile("image")
	if err != nil {
		switch {
		case isTooLarge(err):
			writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse("request body too large"))
		case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
			writeError(w, r, h.logger, service.ErrNoImage)
		default:
			writeJSON(w, http.StatusBadRequest, errorResponse("invalid multipart body"))
		}
		return
	}
	defer file.Close()

	if header.Size > h.maxUploadBytes {
		writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse("request body too large"))
		return
	}

	imageURL, err := h.service.Upload(r.Context(), userID, file, header.Size, header.Filename, header.Header.Get("Content-Type"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, envelope{"error": false, "imageUrl": imageURL})
}

// HandleDelete handles DELETE /delete-image?imageUrl= requests. A missing
// image is not a failure and is answered with 200 and the error flag set.
func (h *MediaHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("unauthorized"))
		return
	}

	found, err := h.service.Delete(r.Context(), userID, r.URL.Query().Get("imageUrl"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if !found {
		writeJSON(w, http.StatusOK, errorResponse("Image not found"))
		return
	}

	writeJSON(w, http.StatusOK, envelope{"error": false, "message": "Image deleted Successfully"})
}
