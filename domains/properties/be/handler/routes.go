package handler

import "github.com/go-chi/chi/v5"

// RegisterPublic mounts the anonymous read and slug routes.
func (h *Handler) RegisterPublic(r chi.Router) {
	r.Get("/properties/title-availability", h.TitleAvailability)
	r.Get("/properties/by-slug/{slug}", h.GetPropertyBySlug)
	r.Get("/properties/{propertyId}", h.GetProperty)
	r.Get("/slugs/suggestions", h.SlugSuggestions)
	r.Post("/slugs/validate", h.ValidateSlug)
}

// RegisterAuthenticated mounts the write routes. Callers put the auth guard in front.
func (h *Handler) RegisterAuthenticated(r chi.Router) {
	r.Post("/properties", h.CreateProperty)
	r.Patch("/properties/{propertyId}", h.UpdateProperty)
	r.Delete("/properties/{propertyId}", h.DeleteProperty)
}
