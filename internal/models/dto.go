package models

import "time"

// CreateLocationRequest is the request body for dropping a marker
type CreateLocationRequest struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// LocationResponse is a single location in API responses
type LocationResponse struct {
	ID         string    `json:"id"`
	Latitude   float64   `json:"latitude"`
	Longitude  float64   `json:"longitude"`
	CreatedAt  time.Time `json:"createdAt"`
	PhotoCount int       `json:"photoCount"`
}

// PhotoResponse is a single photo in API responses. Image bytes are not
// inlined; clients fetch them from the image endpoints.
type PhotoResponse struct {
	ID        string     `json:"id"`
	SeqIndex  int        `json:"seqIndex"`
	Title     string     `json:"title"`
	Pending   bool       `json:"pending"`
	TakenAt   *time.Time `json:"takenAt,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}

// NewPhotoResponse converts a Photo for API output
func NewPhotoResponse(p *Photo) PhotoResponse {
	return PhotoResponse{
		ID:        p.ID,
		SeqIndex:  p.SeqIndex,
		Title:     p.Title,
		Pending:   p.Pending(),
		TakenAt:   p.TakenAt,
		CreatedAt: p.CreatedAt,
	}
}

// NoticeNoPhotos is the user-facing notice for a valid empty search page.
// An empty page is not a failure: the store is left as-is and a later
// refresh may try the next page.
const NoticeNoPhotos = "No images were found for this location."

// SyncResult reports the outcome of a load or refresh call
type SyncResult struct {
	LocationID string `json:"locationId"`
	Page       int    `json:"page"`
	Issued     int    `json:"issued"`
	Notice     string `json:"notice,omitempty"`
}

// ErrorResponse is the error body for all endpoints
type ErrorResponse struct {
	Error string `json:"error"`
}

// HealthResponse is the health check body
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}
