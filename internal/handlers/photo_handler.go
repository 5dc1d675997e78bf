package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/virtualtourist/server/internal/models"
	"github.com/virtualtourist/server/internal/repository"
	"github.com/virtualtourist/server/internal/services"
)

// PhotoHandler handles photo collection endpoints
type PhotoHandler struct {
	sync   *services.SyncService
	photos repository.PhotoRepo
}

// NewPhotoHandler creates a new PhotoHandler
func NewPhotoHandler(sync *services.SyncService, photos repository.PhotoRepo) *PhotoHandler {
	return &PhotoHandler{sync: sync, photos: photos}
}

// List returns a location's photos in display order (ascending sequence
// index)
func (h *PhotoHandler) List(w http.ResponseWriter, r *http.Request) {
	locationID := chi.URLParam(r, "id")

	photos, err := h.photos.ListByLocation(r.Context(), locationID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to list photos.")
		return
	}

	responses := make([]models.PhotoResponse, 0, len(photos))
	for _, photo := range photos {
		responses = append(responses, models.NewPhotoResponse(photo))
	}

	respondJSON(w, http.StatusOK, responses)
}

// Load starts the initial sync for a location. If the location already
// has photos this is a no-op success.
func (h *PhotoHandler) Load(w http.ResponseWriter, r *http.Request) {
	h.runSync(w, r, h.sync.LoadPhotos)
}

// Refresh discards the current batch and syncs the next page
func (h *PhotoHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	h.runSync(w, r, h.sync.Refresh)
}

// Delete removes one photo
func (h *PhotoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	photoID := chi.URLParam(r, "id")

	err := h.sync.DeletePhoto(r.Context(), photoID)
	if errors.Is(err, models.ErrPhotoNotFound) {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to delete photo.")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Image streams a photo's full-size bytes
func (h *PhotoHandler) Image(w http.ResponseWriter, r *http.Request) {
	h.serveBlob(w, r, func(p *models.Photo) []byte { return p.Image })
}

// Thumbnail streams a photo's thumbnail bytes
func (h *PhotoHandler) Thumbnail(w http.ResponseWriter, r *http.Request) {
	h.serveBlob(w, r, func(p *models.Photo) []byte { return p.Thumbnail })
}

func (h *PhotoHandler) serveBlob(w http.ResponseWriter, r *http.Request, blob func(*models.Photo) []byte) {
	photoID := chi.URLParam(r, "id")

	photo, err := h.photos.GetByID(r.Context(), photoID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to look up photo.")
		return
	}
	if photo == nil {
		respondError(w, http.StatusNotFound, models.ErrPhotoNotFound.Error())
		return
	}

	data := blob(photo)
	if len(data) == 0 {
		// Placeholder: the download has not landed (or failed).
		respondError(w, http.StatusAccepted, "Image is still downloading.")
		return
	}

	w.Header().Set("Content-Type", "image/jpeg")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func (h *PhotoHandler) runSync(w http.ResponseWriter, r *http.Request,
	fn func(ctx context.Context, locationID string) (*models.SyncResult, error)) {
	locationID := chi.URLParam(r, "id")

	result, err := fn(r.Context(), locationID)
	switch {
	case err == nil:
		respondJSON(w, http.StatusOK, result)
	case errors.Is(err, models.ErrLocationNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, models.ErrSyncInProgress):
		respondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, models.ErrSearchUnavailable),
		errors.Is(err, models.ErrBadSearchResponse):
		respondError(w, http.StatusBadGateway, err.Error())
	default:
		respondError(w, http.StatusInternalServerError, "Failed to sync photos.")
	}
}
