package api

import "errors"

var (
	// ErrUnauthorized maps any 401 from the backend. Callers treat it
	// uniformly as "session invalid" and run the forced-logout path.
	ErrUnauthorized = errors.New("session invalid")

	// ErrConflict maps 409, e.g. a duplicate review rejected server-side.
	ErrConflict = errors.New("conflict")

	ErrNotFound = errors.New("not found")
)
