package persist

import "errors"

// Sentinel kinds for persistence errors.
var (
	ErrWriterClosed = errors.New("snapshot writer closed")
	ErrSave         = errors.New("snapshot save failed")
)
