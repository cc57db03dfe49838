package domain

import "errors"

var (
	// ErrInvalidArgument marks caller input the engine refuses to act on.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrNotFound marks lookups of routes or vehicles that are not known.
	ErrNotFound = errors.New("not found")

	ErrUnauthorized = errors.New("unauthorized")
)
