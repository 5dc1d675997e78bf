package models

// DomainError is a sentinel error value for domain conditions
type DomainError struct {
	Message string
}

func (e DomainError) Error() string {
	return e.Message
}

var (
	ErrInvalidLatitude  = DomainError{"latitude must be between -90 and 90"}
	ErrInvalidLongitude = DomainError{"longitude must be between -180 and 180"}
	ErrEmptyLocationID  = DomainError{"location id cannot be empty"}
	ErrNegativeSeqIndex = DomainError{"sequence index cannot be negative"}

	// ErrLocationNotFound means the requested marker does not exist.
	ErrLocationNotFound = DomainError{"location not found"}

	// ErrPhotoNotFound is returned by store writes that target a photo
	// deleted in the meantime. Image writes racing a delete or a refresh
	// hit this and are dropped; it is never surfaced to the user.
	ErrPhotoNotFound = DomainError{"photo not found"}

	// ErrSyncInProgress rejects a load or refresh for a location that
	// already has a sync cycle running.
	ErrSyncInProgress = DomainError{"a sync is already running for this location"}

	// ErrSearchUnavailable wraps search transport failures.
	ErrSearchUnavailable = DomainError{"photo search is unavailable"}

	// ErrBadSearchResponse wraps undecodable search responses.
	ErrBadSearchResponse = DomainError{"photo search returned a malformed response"}

	// ErrDownloadFailed wraps image download failures. Local to one
	// photo; never aborts the rest of a batch.
	ErrDownloadFailed = DomainError{"image download failed"}
)
