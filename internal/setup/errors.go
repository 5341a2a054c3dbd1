// Package setup implements the workspace setup engine: the wizard
// orchestrator, its entity sub-stores, snapshot migration, and the autosave
// scheduler. The engine is headless; a host application drives it and
// renders its state.
package setup

import (
	"errors"
	"fmt"
)

// Sentinel errors shared across the engine.
var (
	// ErrSubmitting is returned when a mutating operation is invoked while
	// a prior submission on the same store is still in flight.
	ErrSubmitting = errors.New("submission already in flight")

	// ErrStepIncomplete is returned by Next when the current step's gate
	// fails. The wizard records the attempt so the UI can show errors.
	ErrStepIncomplete = errors.New("current step is incomplete")

	// ErrConfirmationMismatch is returned when the typed confirmation for a
	// destructive delete does not equal the unit's name.
	ErrConfirmationMismatch = errors.New("confirmation does not match the unit name")

	// ErrSectionsAlreadyExist is returned when a generation pattern yields
	// no section names that don't already exist in the target class.
	ErrSectionsAlreadyExist = errors.New("all generated sections already exist")

	// ErrLevelsExist is returned by ApplyTemplate when levels are present
	// and the caller has not confirmed the destructive replace.
	ErrLevelsExist = errors.New("levels already exist; confirmation required")

	// ErrBandOverlap is returned when a band's [min,max) range intersects
	// another band in the same scale and the scale prevents overlap.
	ErrBandOverlap = errors.New("band range overlaps an existing band")

	ErrUnitNotFound    = errors.New("org unit not found")
	ErrClassNotFound   = errors.New("class not found")
	ErrSectionNotFound = errors.New("section not found")
	ErrLevelNotFound   = errors.New("academic level not found")
	ErrScaleNotFound   = errors.New("grading scale not found")
	ErrUserNotFound    = errors.New("user not found")
)

// FieldError is a validation failure tied to one form field. It is produced
// synchronously, blocks the action, and is rendered inline by the host UI.
type FieldError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func fieldErr(field, message string) error {
	return &FieldError{Field: field, Message: message}
}
