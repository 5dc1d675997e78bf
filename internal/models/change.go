package models

// ChangeKind classifies a photo collection change
type ChangeKind string

const (
	ChangeInsert ChangeKind = "insert"
	ChangeUpdate ChangeKind = "update"
	ChangeDelete ChangeKind = "delete"
)

// PhotoChange is one incremental change to a Location's photo collection.
// SeqIndex is carried on every event so an observer can map the change to
// a display position without re-querying the store.
type PhotoChange struct {
	LocationID string     `json:"locationId"`
	PhotoID    string     `json:"photoId"`
	Kind       ChangeKind `json:"kind"`
	SeqIndex   int        `json:"seqIndex"`
}
