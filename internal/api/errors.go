package api

import (
	"fmt"
	"net/http"
)

// Error is a structured business error returned by the platform. Detail
// carries the server's human-readable message and is surfaced to the user
// verbatim -- the server holds authoritative state (cooldown timing,
// validation rules), so the client never re-derives its own message.
type Error struct {
	Status int    `json:"-"`
	Detail string `json:"detail"`
}

func (e *Error) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return fmt.Sprintf("API error (status %d)", e.Status)
}

// Retryable reports whether the request may be safely retried
func (e *Error) Retryable() bool {
	switch e.Status {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}
