package domain

import "errors"

// -----------------------------------------------------------------------------
// Domain Errors
// These errors represent client-side failure conditions shared across
// packages. Server business errors travel separately as api.Error so that
// their detail text can be surfaced verbatim.
// -----------------------------------------------------------------------------

// Auth errors
var (
	ErrUnauthorized  = errors.New("unauthorized")
	ErrNoCredentials = errors.New("no stored credentials")
)

// Resource errors
var (
	ErrTaskNotFound     = errors.New("task not found")
	ErrResponseNotFound = errors.New("response not found")
	ErrDrillNotFound    = errors.New("drill not found")
)

// Workspace errors
var (
	ErrSubmitInFlight = errors.New("submission already in flight")
	ErrNoDraft        = errors.New("no draft for task")
)

// Review errors
var (
	ErrFeedbackInFlight = errors.New("feedback request already in flight")
)

// General errors
var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
)
