package main

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	oapimiddleware "github.com/oapi-codegen/nethttp-middleware"
	"go.uber.org/zap"

	propertieshandler "github.com/zenGate-Global/palmyra-rentals/domains/properties/be/handler"
	platformauth "github.com/zenGate-Global/palmyra-rentals/platform/go/auth"
	platformlogging "github.com/zenGate-Global/palmyra-rentals/platform/go/logging"
	platformmiddleware "github.com/zenGate-Global/palmyra-rentals/platform/go/middleware"
)

const (
	apiPrefix   = "/api/v1"
	mediaPrefix = "/media"
)

// listingRoles may create, edit and delete listings; tenants only browse.
var listingRoles = []platformauth.Role{platformauth.RoleOwner, platformauth.RoleManager, platformauth.RoleAdmin}

// readiness maps a dependency name to its probe.
type readiness map[string]func(ctx context.Context) error

type routerDeps struct {
	logger         *zap.Logger
	requestTimeout time.Duration
	cors           platformmiddleware.CORSConfig
	auth           func(http.Handler) http.Handler
	properties     *propertieshandler.Handler
	// media serves locally stored images; nil when blobs live in GCS
	media http.Handler
	ready readiness
}

func newRouter(deps routerDeps) http.Handler {
	rootRouter := chi.NewRouter()

	rootRouter.Use(
		chimw.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		chimw.Timeout(deps.requestTimeout),
		platformmiddleware.CORS(deps.cors),
	)

	rootRouter.Use(platformlogging.RequestLogger(deps.logger))

	rootRouter.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	rootRouter.Get("/readyz", readyHandler(deps.logger, deps.ready))

	// ---- Swagger UI + OpenAPI JSON (public) ----
	registerDocsRoutes(rootRouter, deps.logger)

	if deps.media != nil {
		rootRouter.Handle(mediaPrefix+"/*", http.StripPrefix(mediaPrefix, deps.media))
	}

	apiRouter := chi.NewRouter()
	apiRouter.Use(deps.auth)
	apiRouter.Use(platformmiddleware.RequestTrace)
	apiRouter.Use(mustNewSpecValidator(deps.logger))

	apiRouter.Group(deps.properties.RegisterPublic)
	apiRouter.Group(func(r chi.Router) {
		r.Use(platformauth.RequireUser, platformauth.RequireRole(listingRoles...))
		deps.properties.RegisterAuthenticated(r)
	})

	rootRouter.Mount(apiPrefix, apiRouter)

	return rootRouter
}

func readyHandler(logger *zap.Logger, checks readiness) http.HandlerFunc {
	names := make([]string, 0, len(checks))
	for name := range checks {
		names = append(names, name)
	}
	sort.Strings(names)

	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		for _, name := range names {
			if err := checks[name](ctx); err != nil {
				platformlogging.FromRequest(r, logger).Warn("readiness check failed", zap.String("dependency", name), zap.Error(err))
				http.Error(w, name+" unavailable", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
	}
}

// mustNewSpecValidator builds the oapi-codegen validator for the properties contract.
// Bodies are left to the handlers: multipart payloads carry JSON inside a form part.
func mustNewSpecValidator(logger *zap.Logger) func(http.Handler) http.Handler {
	spec := mustLoadSpec(logger, "properties")

	return oapimiddleware.OapiRequestValidatorWithOptions(spec, &oapimiddleware.Options{
		Options: openapi3filter.Options{
			ExcludeRequestBody: true,
			AuthenticationFunc: platformmiddleware.ValidateAuthenticationViaSwagger,
		},
	})
}
