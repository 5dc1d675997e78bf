package models

import (
	"time"

	"github.com/google/uuid"
)

// Photo is one image record belonging to exactly one Location. It is
// created as a placeholder (Image == nil) when a search page comes back,
// and filled in exactly once when its download completes. SeqIndex is the
// photo's 0-based position in the search result and is what the gallery
// sorts by; downloads finishing out of order never change it.
type Photo struct {
	ID         string     `json:"id"`
	LocationID string     `json:"locationId"`
	SeqIndex   int        `json:"seqIndex"`
	RemoteID   string     `json:"remoteId"`
	Title      string     `json:"title"`
	Image      []byte     `json:"-"`
	Thumbnail  []byte     `json:"-"`
	TakenAt    *time.Time `json:"takenAt,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
}

// Pending reports whether the photo is still a placeholder waiting on its
// download.
func (p *Photo) Pending() bool {
	return len(p.Image) == 0
}

// NewPlaceholder creates a placeholder Photo for one search descriptor
func NewPlaceholder(locationID, remoteID, title string, seqIndex int) (*Photo, error) {
	if locationID == "" {
		return nil, ErrEmptyLocationID
	}
	if seqIndex < 0 {
		return nil, ErrNegativeSeqIndex
	}

	return &Photo{
		ID:         uuid.New().String(),
		LocationID: locationID,
		SeqIndex:   seqIndex,
		RemoteID:   remoteID,
		Title:      title,
		CreatedAt:  time.Now().UTC(),
	}, nil
}
