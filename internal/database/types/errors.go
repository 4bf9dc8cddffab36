package types

import "errors"

var (
	// ErrServerExists is returned when a server with the same vendor key already exists.
	ErrServerExists = errors.New("server already exists")
	// ErrServerNotFound is returned when an operation needs a server that does not exist.
	ErrServerNotFound = errors.New("server not found")
)
