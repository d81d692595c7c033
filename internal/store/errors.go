package store

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Error kinds. Typed errors below match their kind with errors.Is, so callers
// map failures to transport codes without inspecting messages.
var (
	ErrValidation         = errors.New("validation error")
	ErrNotFound           = errors.New("not found")
	ErrNameConflict       = errors.New("name conflict")
	ErrIntegrityViolation = errors.New("integrity violation")
	ErrAlreadyExists      = errors.New("already exists")
)

// ValidationError reports malformed input detected before any store access.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// NotFoundError reports a missing row, or one the caller may not see.
type NotFoundError struct {
	Message string
}

// NotFound builds a NotFoundError with a formatted message.
func NotFound(format string, args ...any) *NotFoundError {
	return &NotFoundError{Message: fmt.Sprintf(format, args...)}
}

func (e *NotFoundError) Error() string { return e.Message }

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// NameConflictError reports a display name already used in its naming scope.
// It is returned both by the pre-check and when the store's unique index
// rejects a write that raced past it.
type NameConflictError struct {
	DisplayName string
}

func (e *NameConflictError) Error() string {
	return fmt.Sprintf("A behavior group with display name [%s] already exists", e.DisplayName)
}

func (e *NameConflictError) Is(target error) bool { return target == ErrNameConflict }

// IntegrityViolationError lists the behavior groups that belong to another
// bundle than the event type they were meant to be linked to.
type IntegrityViolationError struct {
	EventTypeID      uuid.UUID
	BehaviorGroupIDs []uuid.UUID
}

func (e *IntegrityViolationError) Error() string {
	ids := make([]string, 0, len(e.BehaviorGroupIDs))
	for _, id := range e.BehaviorGroupIDs {
		ids = append(ids, id.String())
	}
	return fmt.Sprintf("Some behavior groups can't be linked to event type %s because they belong to a different bundle: [%s]",
		e.EventTypeID, strings.Join(ids, ", "))
}

func (e *IntegrityViolationError) Is(target error) bool { return target == ErrIntegrityViolation }
