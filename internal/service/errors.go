package service

import "errors"

// Common service errors
var (
	// ErrPermissionDenied is returned when a user doesn't have permission for an action
	ErrPermissionDenied = errors.New("permission denied")

	// ErrNotFound is returned when a resource is not found
	ErrNotFound = errors.New("resource not found")

	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")

	// ErrConflict is returned when there's a conflict (e.g., duplicate)
	ErrConflict = errors.New("resource conflict")

	// ErrUnauthorized is returned when user is not authenticated
	ErrUnauthorized = errors.New("unauthorized")

	// ErrUserContextRequired is returned when user context is not available
	ErrUserContextRequired = errors.New("user context required")

	// ErrInvalidStatus is returned when an unknown workflow stage is supplied
	ErrInvalidStatus = errors.New("invalid workflow status")

	// ErrInvalidTransition is returned in strict mode for a disallowed stage jump
	ErrInvalidTransition = errors.New("transition not allowed")

	// ErrTasksIncomplete is returned when completing a production workflow
	// that still has open tasks
	ErrTasksIncomplete = errors.New("production tasks not completed")

	// ErrInvalidRole is returned when an invalid role is provided
	ErrInvalidRole = errors.New("invalid role")

	// ErrUserNotFound is returned when a user is not found
	ErrUserNotFound = errors.New("user not found")

	// ErrClientNotFound is returned when a client is not found
	ErrClientNotFound = errors.New("client not found")
)
