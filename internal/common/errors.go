// Package common defines sentinel errors shared across service and
// transport layers. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors.
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorValidation   = errors.New("validation error")

	// Upstream dependency (database or object store) failure. The detail is
	// logged server-side; callers only ever see this sentinel.
	ErrorUpstream = errors.New("upstream error")

	// Auth errors.
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)
