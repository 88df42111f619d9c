package feed

import "errors"

// Sentinel kinds for feed errors.
var (
	ErrFetch = errors.New("feed fetch failed")
	ErrParse = errors.New("feed payload malformed")
)
