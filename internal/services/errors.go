// Package services defines the moderation business logic. This file
// centralizes the service-level error values so they can be consistently
// returned by service methods and checked by callers.
//
// These errors cover predictable user-facing conditions; translation into
// chat replies or HTTP responses happens at the engine/handler layer.
// Storage failures are never wrapped into these values: they propagate as
// raw repository errors so the dispatcher boundary can log them.
package services

import "errors"

var (
	// ErrInvalidArgument is returned when a command's argument is not a
	// single decimal user id.
	ErrInvalidArgument = errors.New("command expects a single numeric user id")

	// ErrNotRegistered indicates an operation on a user id that is not
	// currently tracked.
	ErrNotRegistered = errors.New("user is not registered")
)
