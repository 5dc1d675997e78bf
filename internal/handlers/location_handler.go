package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/virtualtourist/server/internal/models"
	"github.com/virtualtourist/server/internal/repository"
)

// LocationHandler handles map-marker endpoints
type LocationHandler struct {
	locations repository.LocationRepo
	photos    repository.PhotoRepo
}

// NewLocationHandler creates a new LocationHandler
func NewLocationHandler(locations repository.LocationRepo, photos repository.PhotoRepo) *LocationHandler {
	return &LocationHandler{locations: locations, photos: photos}
}

// Create drops a marker. Markers are identified by their coordinate pair:
// a second drop at exactly the same coordinates returns the existing
// marker instead of creating a duplicate.
func (h *LocationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateLocationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Request body must be valid JSON.")
		return
	}

	if existing, err := h.locations.GetByCoordinate(r.Context(), req.Latitude, req.Longitude); err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to look up location.")
		return
	} else if existing != nil {
		h.respondLocation(w, r, http.StatusOK, existing)
		return
	}

	location, err := models.NewLocation(req.Latitude, req.Longitude)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.locations.Create(r.Context(), location); err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to save location.")
		return
	}

	h.respondLocation(w, r, http.StatusCreated, location)
}

// List returns all markers
func (h *LocationHandler) List(w http.ResponseWriter, r *http.Request) {
	locations, err := h.locations.List(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to list locations.")
		return
	}

	responses := make([]models.LocationResponse, 0, len(locations))
	for _, location := range locations {
		count, err := h.photos.CountByLocation(r.Context(), location.ID)
		if err != nil {
			respondError(w, http.StatusInternalServerError, "Failed to count photos.")
			return
		}
		responses = append(responses, models.LocationResponse{
			ID:         location.ID,
			Latitude:   location.Latitude,
			Longitude:  location.Longitude,
			CreatedAt:  location.CreatedAt,
			PhotoCount: count,
		})
	}

	respondJSON(w, http.StatusOK, responses)
}

// GetByID returns one marker
func (h *LocationHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	location, err := h.locations.GetByID(r.Context(), id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to look up location.")
		return
	}
	if location == nil {
		respondError(w, http.StatusNotFound, models.ErrLocationNotFound.Error())
		return
	}

	h.respondLocation(w, r, http.StatusOK, location)
}

func (h *LocationHandler) respondLocation(w http.ResponseWriter, r *http.Request, status int, location *models.Location) {
	count, err := h.photos.CountByLocation(r.Context(), location.ID)
	if err != nil {
		count = 0
	}
	respondJSON(w, status, models.LocationResponse{
		ID:         location.ID,
		Latitude:   location.Latitude,
		Longitude:  location.Longitude,
		CreatedAt:  location.CreatedAt,
		PhotoCount: count,
	})
}
