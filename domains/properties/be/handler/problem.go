package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/zenGate-Global/palmyra-rentals/domains/properties/be/service"
	platformlogging "github.com/zenGate-Global/palmyra-rentals/platform/go/logging"
	"github.com/zenGate-Global/palmyra-rentals/platform/go/slug"
)

const (
	problemTypeValidation      = "https://palmyra-rentals.dev/problems/validation-error"
	problemTypeUnauthenticated = "https://palmyra-rentals.dev/problems/unauthenticated"
	problemTypeForbidden       = "https://palmyra-rentals.dev/problems/forbidden"
	problemTypeNotFound        = "https://palmyra-rentals.dev/problems/not-found"
	problemTypeConflict        = "https://palmyra-rentals.dev/problems/conflict"
	problemTypeImage           = "https://palmyra-rentals.dev/problems/invalid-image"
	problemTypeImageCount      = "https://palmyra-rentals.dev/problems/image-count"
	problemTypeTooLarge        = "https://palmyra-rentals.dev/problems/request-too-large"
	problemTypeInternal        = "https://palmyra-rentals.dev/problems/internal-error"
)

type operation string

const (
	createOperation       operation = "propertiesCreate"
	getOperation          operation = "propertiesGet"
	getBySlugOperation    operation = "propertiesGetBySlug"
	updateOperation       operation = "propertiesUpdate"
	deleteOperation       operation = "propertiesDelete"
	titleCheckOperation   operation = "propertiesTitleAvailability"
	suggestSlugsOperation operation = "slugsSuggest"
	validateSlugOperation operation = "slugsValidate"
)

type cleanupDTO struct {
	RecordDeleted   bool     `json:"recordDeleted"`
	RemainingImages []string `json:"remainingImages"`
}

// ProblemDetails is an RFC 7807 body.
type ProblemDetails struct {
	Type    string              `json:"type,omitempty"`
	Title   string              `json:"title"`
	Status  int                 `json:"status"`
	Detail  string              `json:"detail,omitempty"`
	Errors  map[string][]string `json:"errors,omitempty"`
	Cleanup *cleanupDTO         `json:"cleanup,omitempty"`
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error, op operation) {
	status, problem := h.problemForError(r.Context(), err, op)
	writeProblem(w, status, problem)
}

func (h *Handler) problemForError(ctx context.Context, err error, op operation) (int, ProblemDetails) {
	status, title, detail, problemType, fields := h.classifyError(err)

	logger := h.loggerFrom(ctx)
	fieldsForLog := []zap.Field{
		zap.String("operation", string(op)),
		zap.Int("status", status),
	}

	switch {
	case status >= http.StatusInternalServerError:
		logger.Error("properties operation failed", append(fieldsForLog, zap.Error(err))...)
	case status == http.StatusNotFound:
		logger.Info("properties resource not found", append(fieldsForLog, zap.Error(err))...)
	default:
		logger.Warn("properties request rejected", append(fieldsForLog, zap.Error(err))...)
	}

	problem := h.buildProblem(title, detail, problemType, status, fields)

	var creationErr *service.CreationError
	if errors.As(err, &creationErr) {
		problem.Cleanup = &cleanupDTO{
			RecordDeleted:   creationErr.Cleanup.RecordDeleted,
			RemainingImages: nonNil(creationErr.Cleanup.RemainingImages),
		}
	}

	return status, problem
}

func (h *Handler) classifyError(err error) (status int, title, detail, problemType string, fieldErrors service.FieldErrors) {
	var validationErr *service.ValidationError
	switch {
	case errors.As(err, &validationErr):
		return http.StatusBadRequest, "Validation failed", "one or more fields are invalid", problemTypeValidation, validationErr.Fields
	case errors.Is(err, slug.ErrEmptySlugComponents):
		return http.StatusBadRequest, "Validation failed", err.Error(), problemTypeValidation, nil
	case errors.Is(err, service.ErrUnauthenticated):
		return http.StatusUnauthorized, "Unauthorized", err.Error(), problemTypeUnauthenticated, nil
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden, "Forbidden", err.Error(), problemTypeForbidden, nil
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound, "Resource not found", "property not found", problemTypeNotFound, nil
	case errors.Is(err, service.ErrDuplicateTitle):
		return http.StatusConflict, "Conflict", err.Error(), problemTypeConflict, service.FieldErrors{"title": {err.Error()}}
	case errors.Is(err, service.ErrDuplicateSlug):
		return http.StatusConflict, "Conflict", err.Error(), problemTypeConflict, service.FieldErrors{"slug": {err.Error()}}
	case errors.Is(err, errRequestTooLarge):
		return http.StatusRequestEntityTooLarge, "Request too large", err.Error(), problemTypeTooLarge, nil
	case errors.Is(err, service.ErrImageTooLarge):
		return http.StatusRequestEntityTooLarge, "Image too large", err.Error(), problemTypeImage, nil
	case errors.Is(err, service.ErrInvalidImage):
		return http.StatusUnsupportedMediaType, "Invalid image", err.Error(), problemTypeImage, nil
	case errors.Is(err, service.ErrImageCountOutOfRange):
		return http.StatusUnprocessableEntity, "Image count out of range", err.Error(), problemTypeImageCount, nil
	default:
		return http.StatusInternalServerError, "Internal server error", "an unexpected error occurred", problemTypeInternal, nil
	}
}

func (h *Handler) buildProblem(title, detail, problemType string, status int, fieldErrors service.FieldErrors) ProblemDetails {
	problem := ProblemDetails{
		Type:   problemType,
		Title:  title,
		Status: status,
		Detail: detail,
	}

	if len(fieldErrors) > 0 {
		copied := make(map[string][]string, len(fieldErrors))
		for field, messages := range fieldErrors {
			copied[field] = append([]string(nil), messages...)
		}
		problem.Errors = copied
	}

	return problem
}

func (h *Handler) badRequest(w http.ResponseWriter, detail string) {
	writeProblem(w, http.StatusBadRequest, h.buildProblem("Invalid request", detail, problemTypeValidation, http.StatusBadRequest, nil))
}

func (h *Handler) loggerFrom(ctx context.Context) *zap.Logger {
	if logger, ok := platformlogging.FromContext(ctx); ok {
		return logger
	}
	return h.logger
}

func writeProblem(w http.ResponseWriter, status int, problem ProblemDetails) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(problem)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
