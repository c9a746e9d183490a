package domain

import "errors"

// ErrNotFound is returned when the backend reports that the requested
// resource does not exist.
// Callers should treat this as a user-visible "gone" rather than a fault.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned when input fails a client-side check
// (e.g. empty email, non-positive poll interval) before any request is issued.
var ErrValidation = errors.New("validation error")

// ErrUnauthorized is returned when the backend rejects the current token or
// credentials (HTTP 401, or an envelope with success=false on an auth route).
// Callers holding a persisted session must treat this as fail-closed:
// purge the session, never retry with the same token.
var ErrUnauthorized = errors.New("unauthorized")

// ErrAccessDenied is returned when an authenticated user lacks the role an
// operation requires (e.g. a non-admin attempting admin login).
// Distinct from ErrUnauthorized: the credentials themselves were valid.
var ErrAccessDenied = errors.New("access denied")

// ErrDecode is returned when a backend payload cannot be decoded into its
// domain type even with per-field defaults applied. Individual malformed
// list entries are logged and skipped rather than failing the whole list;
// ErrDecode surfaces only when the payload as a whole is unusable.
var ErrDecode = errors.New("malformed response")
