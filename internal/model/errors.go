package model

import "errors"

// Error kinds shared by the store, the reservation engine and the API.
// Callers classify with errors.Is.
var (
	ErrNotFound          = errors.New("not found")
	ErrConflict          = errors.New("conflict")
	ErrInvalidInput      = errors.New("invalid input")
	ErrIllegalTransition = errors.New("illegal status transition")
	ErrForbidden         = errors.New("forbidden")
	ErrStoreFailure      = errors.New("store failure")
)
