package domain

import "errors"

var (
	// ErrNotFound marks a zero-row by-id read, distinct from a transport
	// failure on the same call.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput marks a payload that failed local validation before
	// any remote call was attempted.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotImplemented marks operations delegated to the hosted auth UI.
	ErrNotImplemented = errors.New("not implemented")
)
