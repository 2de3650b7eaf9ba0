package sentinel

import "errors"

// Infrastructure facts returned (optionally wrapped) by stores, publishers and
// the language service adapters. Services translate them into outcomes or
// domain errors; they never reach clients verbatim.
//
// For bad input use pkg/domain-errors directly.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrInvalidState = errors.New("invalid state")
	ErrUnavailable  = errors.New("unavailable")
	ErrMalformed    = errors.New("malformed payload")
)
