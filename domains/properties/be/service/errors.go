package service

import (
	"errors"
	"fmt"

	"github.com/zenGate-Global/palmyra-rentals/platform/go/persistence"
)

// FieldErrors maps request fields to validation issues.
type FieldErrors map[string][]string

// ValidationError is returned when the input payload is invalid. Nothing has been written.
type ValidationError struct {
	Fields FieldErrors
}

func (v *ValidationError) Error() string {
	return "validation error"
}

// Domain sentinel errors.
var (
	ErrUnauthenticated      = errors.New("authentication required")
	ErrForbidden            = errors.New("not allowed to modify this property")
	ErrNotFound             = errors.New("property not found")
	ErrDuplicateTitle       = errors.New("a property with this title already exists")
	ErrDuplicateSlug        = errors.New("a property with this slug already exists")
	ErrInvalidImage         = errors.New("file is not an image")
	ErrImageTooLarge        = errors.New("image exceeds the maximum size")
	ErrImageCountOutOfRange = errors.New("a property needs between 5 and 20 images")
	ErrFetchAfterCreate     = errors.New("property was written but could not be read back")
)

// Write stages reported by CreationError and UpdateError.
const (
	StageBaseCreate   = "base_create"
	StageUploadImages = "upload_images"
	StagePatchImages  = "patch_images"
	StageFetch        = "fetch"
	StageWrite        = "write"
)

// CreationError wraps a store failure that happened after creation started.
// Cleanup describes what compensation managed to undo.
type CreationError struct {
	Stage   string
	Err     error
	Cleanup CleanupReport
}

func (e *CreationError) Error() string {
	return fmt.Sprintf("create property (%s): %v", e.Stage, e.Err)
}

func (e *CreationError) Unwrap() error { return e.Err }

// UpdateError wraps a store failure during an update. The row keeps its previous
// state; Cleanup lists newly uploaded images that could not be removed.
type UpdateError struct {
	Stage   string
	Err     error
	Cleanup CleanupReport
}

func (e *UpdateError) Error() string {
	return fmt.Sprintf("update property (%s): %v", e.Stage, e.Err)
}

func (e *UpdateError) Unwrap() error { return e.Err }

func mapPersistenceError(err error) error {
	switch {
	case errors.Is(err, persistence.ErrPropertyNotFound):
		return ErrNotFound
	case errors.Is(err, persistence.ErrPropertyTitleConflict):
		return ErrDuplicateTitle
	case errors.Is(err, persistence.ErrPropertySlugConflict):
		return ErrDuplicateSlug
	default:
		return err
	}
}

func newValidationError(fields map[string]string) error {
	fe := FieldErrors{}
	for key, message := range fields {
		fe.add(key, message)
	}
	return &ValidationError{Fields: fe}
}

func (f FieldErrors) add(field, message string) {
	if f == nil {
		return
	}
	f[field] = append(f[field], message)
}
