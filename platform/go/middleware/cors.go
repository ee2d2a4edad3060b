package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/cors"
)

// CORSConfig lists the browser origins allowed to call the API. An empty list allows any origin.
type CORSConfig struct {
	AllowedOrigins []string
	MaxAge         time.Duration
}

// CORS answers preflights for the properties API and exposes Location so browser
// clients can follow a 201 to the created listing.
func CORS(cfg CORSConfig) func(http.Handler) http.Handler {
	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	return cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		ExposedHeaders: []string{"Location"},
		MaxAge:         int(cfg.MaxAge / time.Second),
	})
}
