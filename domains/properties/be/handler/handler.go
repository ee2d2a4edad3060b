package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/zenGate-Global/palmyra-rentals/domains/properties/be/service"
	"github.com/zenGate-Global/palmyra-rentals/platform/go/slug"
)

const (
	// DefaultMaxRequestBytes covers the largest image batch plus the payload.
	DefaultMaxRequestBytes = int64(service.MaxImages)*service.DefaultMaxImageBytes + 1<<20

	multipartMemory = 32 << 20
	payloadPart     = "payload"
	photosPart      = "photos"
)

var errRequestTooLarge = errors.New("request body too large")

// Handler exposes the properties service over HTTP.
type Handler struct {
	svc             service.Service
	logger          *zap.Logger
	maxRequestBytes int64
	basePath        string
}

// Option customises a Handler.
type Option func(*Handler)

// WithMaxRequestBytes caps the request body size.
func WithMaxRequestBytes(n int64) Option {
	return func(h *Handler) {
		if n > 0 {
			h.maxRequestBytes = n
		}
	}
}

// WithBasePath sets the prefix the routes are mounted under; Location headers include it.
func WithBasePath(prefix string) Option {
	return func(h *Handler) {
		h.basePath = strings.TrimSuffix(prefix, "/")
	}
}

// New constructs a Handler instance.
func New(svc service.Service, logger *zap.Logger, opts ...Option) *Handler {
	if svc == nil {
		panic("properties service is required")
	}
	if logger == nil {
		panic("logger is required")
	}

	h := &Handler{svc: svc, logger: logger, maxRequestBytes: DefaultMaxRequestBytes}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// CreateProperty accepts either a multipart form (payload + photos) or a bare JSON payload.
func (h *Handler) CreateProperty(w http.ResponseWriter, r *http.Request) {
	form, err := h.readForm(w, r)
	if err != nil {
		h.formError(w, r, err, createOperation)
		return
	}
	defer form.close()

	result, err := h.svc.Create(r.Context(), form.payload.toInput(), form.photos)
	if err != nil {
		h.writeError(w, r, err, createOperation)
		return
	}

	w.Header().Set("Location", h.basePath+"/properties/"+result.Property.ID.String())
	writeJSON(w, http.StatusCreated, toAPIProperty(result))
}

func (h *Handler) GetProperty(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	result, err := h.svc.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err, getOperation)
		return
	}

	writeJSON(w, http.StatusOK, toAPIProperty(result))
}

func (h *Handler) GetPropertyBySlug(w http.ResponseWriter, r *http.Request) {
	value := chi.URLParam(r, "slug")

	result, found, err := h.svc.GetBySlug(r.Context(), value)
	if err != nil {
		h.writeError(w, r, err, getBySlugOperation)
		return
	}
	if !found {
		h.writeError(w, r, service.ErrNotFound, getBySlugOperation)
		return
	}

	writeJSON(w, http.StatusOK, toAPIProperty(result))
}

func (h *Handler) UpdateProperty(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	form, err := h.readForm(w, r)
	if err != nil {
		h.formError(w, r, err, updateOperation)
		return
	}
	defer form.close()

	result, err := h.svc.Update(r.Context(), id, form.payload.toInput(), form.payload.FinalImageURLs, form.photos)
	if err != nil {
		h.writeError(w, r, err, updateOperation)
		return
	}

	writeJSON(w, http.StatusOK, toAPIProperty(result))
}

func (h *Handler) DeleteProperty(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		h.writeError(w, r, err, deleteOperation)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// TitleAvailability answers GET /properties/title-availability?title=&excludeId=.
func (h *Handler) TitleAvailability(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	var excludeID *uuid.UUID
	if raw := strings.TrimSpace(query.Get("excludeId")); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			h.badRequest(w, "excludeId must be a UUID")
			return
		}
		excludeID = &parsed
	}

	available, err := h.svc.CheckTitleAvailability(r.Context(), query.Get("title"), excludeID)
	if err != nil {
		h.writeError(w, r, err, titleCheckOperation)
		return
	}

	writeJSON(w, http.StatusOK, availabilityResponse{Available: available})
}

// SlugSuggestions answers GET /slugs/suggestions?type=&city=&title=&region=&count=.
func (h *Handler) SlugSuggestions(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	count := 0
	if raw := query.Get("count"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			h.badRequest(w, "count must be an integer")
			return
		}
		count = parsed
	}

	var region *string
	if query.Has("region") {
		value := query.Get("region")
		region = &value
	}

	suggestions, err := slug.GenerateSlugSuggestions(query.Get("type"), query.Get("city"), query.Get("title"), region, count)
	if err != nil {
		h.writeError(w, r, err, suggestSlugsOperation)
		return
	}

	writeJSON(w, http.StatusOK, suggestionsResponse{Suggestions: nonNil(suggestions)})
}

func (h *Handler) ValidateSlug(w http.ResponseWriter, r *http.Request) {
	var body validateSlugRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&body); err != nil {
		h.badRequest(w, "body must be a JSON object with a slug field")
		return
	}

	result := slug.ValidateSlug(body.Slug)
	writeJSON(w, http.StatusOK, validateSlugResponse{
		IsValid:  result.IsValid,
		Errors:   nonNil(result.Errors),
		Warnings: nonNil(result.Warnings),
		Keywords: nonNil(slug.ExtractKeywords(body.Slug)),
	})
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "propertyId"))
	if err != nil {
		h.badRequest(w, "propertyId must be a UUID")
		return uuid.Nil, false
	}
	return id, true
}

type propertyForm struct {
	payload propertyPayload
	photos  []service.Photo
	files   []multipart.File
	form    *multipart.Form
}

func (f *propertyForm) close() {
	for _, file := range f.files {
		_ = file.Close()
	}
	if f.form != nil {
		_ = f.form.RemoveAll()
	}
}

func (h *Handler) readForm(w http.ResponseWriter, r *http.Request) (*propertyForm, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxRequestBytes)

	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		return nil, fmt.Errorf("unsupported content type")
	}

	form := &propertyForm{}
	switch mediaType {
	case "application/json":
		if err := decodePayload(r.Body, &form.payload); err != nil {
			return nil, err
		}
		return form, nil
	case "multipart/form-data":
	default:
		return nil, fmt.Errorf("unsupported content type %q", mediaType)
	}

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		if tooLarge := bodyTooLarge(err); tooLarge != nil {
			return nil, tooLarge
		}
		return nil, fmt.Errorf("malformed multipart body")
	}
	form.form = r.MultipartForm

	raw := r.MultipartForm.Value[payloadPart]
	if len(raw) != 1 {
		form.close()
		return nil, fmt.Errorf("exactly one %q part is required", payloadPart)
	}
	if err := decodePayload(strings.NewReader(raw[0]), &form.payload); err != nil {
		form.close()
		return nil, err
	}

	for _, header := range r.MultipartForm.File[photosPart] {
		file, err := header.Open()
		if err != nil {
			form.close()
			return nil, fmt.Errorf("read photo %q", header.Filename)
		}
		form.files = append(form.files, file)
		form.photos = append(form.photos, service.Photo{
			Filename:    header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Size:        header.Size,
			Body:        file,
		})
	}

	return form, nil
}

func decodePayload(r io.Reader, payload *propertyPayload) error {
	decoder := json.NewDecoder(r)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(payload); err != nil {
		if tooLarge := bodyTooLarge(err); tooLarge != nil {
			return tooLarge
		}
		return fmt.Errorf("invalid payload: %v", err)
	}
	return nil
}

func bodyTooLarge(err error) error {
	var maxBytes *http.MaxBytesError
	if !errors.As(err, &maxBytes) {
		return nil
	}
	return fmt.Errorf("%w: limit is %d bytes", errRequestTooLarge, maxBytes.Limit)
}

// formError reports an unreadable request. Oversized bodies go through the problem mapping as 413.
func (h *Handler) formError(w http.ResponseWriter, r *http.Request, err error, op operation) {
	if errors.Is(err, errRequestTooLarge) {
		h.writeError(w, r, err, op)
		return
	}
	h.badRequest(w, err.Error())
}
