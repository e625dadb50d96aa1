package types

import "errors"

// Sentinel errors the handlers translate into HTTP statuses. Repositories
// and services wrap these with %w so callers can match with errors.Is.
var ErrNotFound = errors.New("requested item not found")
var ErrConflict = errors.New("item already exists or conflict")
var ErrUnauthenticated = errors.New("authentication required or invalid credentials")
var ErrForbidden = errors.New("action forbidden")
var ErrBadRequest = errors.New("invalid request")
var ErrTooManyRequests = errors.New("too many requests")
var ErrInternal = errors.New("internal error")
