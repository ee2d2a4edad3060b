package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"cloud.google.com/go/storage"
	"github.com/caarlos0/env/v11"
	"go.uber.org/zap"

	propertieshandler "github.com/zenGate-Global/palmyra-rentals/domains/properties/be/handler"
	"github.com/zenGate-Global/palmyra-rentals/domains/properties/be/indexing"
	propertiesrepo "github.com/zenGate-Global/palmyra-rentals/domains/properties/be/repo"
	propertiesservice "github.com/zenGate-Global/palmyra-rentals/domains/properties/be/service"
	platformauth "github.com/zenGate-Global/palmyra-rentals/platform/go/auth"
	platformlogging "github.com/zenGate-Global/palmyra-rentals/platform/go/logging"
	platformmiddleware "github.com/zenGate-Global/palmyra-rentals/platform/go/middleware"
	"github.com/zenGate-Global/palmyra-rentals/platform/go/persistence"
	"github.com/zenGate-Global/palmyra-rentals/platform/go/search"
	platformstorage "github.com/zenGate-Global/palmyra-rentals/platform/go/storage"
)

type config struct {
	Port            string        `env:"PORT" envDefault:"3000"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
	RequestTimeout  time.Duration `env:"REQUEST_TIMEOUT" envDefault:"60s"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
	Revision        string        `env:"K_REVISION"` // set by Cloud Run
	DatabaseURL     string        `env:"DATABASE_URL,required"`
	DBMaxConns      int32         `env:"DB_MAX_CONNS" envDefault:"10"`
	DBMinConns      int32         `env:"DB_MIN_CONNS" envDefault:"0"`
	DBMaxConnLife   time.Duration `env:"DB_MAX_CONN_LIFETIME" envDefault:"30m"`
	AutoMigrate     bool          `env:"AUTO_MIGRATE" envDefault:"false"`
	AuthProvider    string        `env:"AUTH_PROVIDER" envDefault:"firebase"` // firebase | dev

	CORSAllowedOrigins []string      `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`
	CORSMaxAge         time.Duration `env:"CORS_MAX_AGE" envDefault:"10m"`

	StorageBackend       string `env:"STORAGE_BACKEND" envDefault:"gcs"` // gcs | local
	StorageBucket        string `env:"STORAGE_BUCKET" envDefault:"property-images"`
	StorageLocalDir      string `env:"STORAGE_LOCAL_DIR" envDefault:"./.data/storage"`
	StoragePublicBaseURL string `env:"STORAGE_PUBLIC_BASE_URL"` // defaults per backend
	MaxImageBytes        int64  `env:"MAX_IMAGE_BYTES" envDefault:"10485760"`

	SearchBackend     string `env:"SEARCH_BACKEND" envDefault:"none"` // none | meilisearch
	MeilisearchHost   string `env:"MEILISEARCH_HOST"`
	MeilisearchAPIKey string `env:"MEILISEARCH_API_KEY"`

	LookupCacheTTL time.Duration `env:"LOOKUP_CACHE_TTL" envDefault:"5m"`
}

func main() {
	ctx := context.Background()

	var cfg config
	if err := env.Parse(&cfg); err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := platformlogging.NewLogger(platformlogging.Config{
		Component: "api-server",
		Level:     cfg.LogLevel,
		Version:   cfg.Revision,
	})
	if err != nil {
		log.Fatalf("init zap logger: %v", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	pool, err := persistence.NewPool(ctx, persistence.PoolConfig{
		ConnString:      cfg.DatabaseURL,
		MaxConns:        cfg.DBMaxConns,
		MinConns:        cfg.DBMinConns,
		MaxConnLifetime: cfg.DBMaxConnLife,
	})
	if err != nil {
		logger.Fatal("init postgres pool", zap.Error(err))
	}
	defer persistence.ClosePool(pool)

	if cfg.AutoMigrate {
		if err := persistence.BootstrapPropertySchema(ctx, pool); err != nil {
			logger.Fatal("bootstrap property schema", zap.Error(err))
		}
		logger.Info("property schema applied")
	}

	propertyStore, err := persistence.NewPropertyStore(ctx, pool)
	if err != nil {
		logger.Fatal("init property store", zap.Error(err))
	}
	referenceStore, err := persistence.NewReferenceStore(ctx, pool)
	if err != nil {
		logger.Fatal("init reference store", zap.Error(err))
	}

	lookups := propertiesrepo.NewCachedLookups(propertiesrepo.NewPostgresLookups(referenceStore), cfg.LookupCacheTTL)
	defer lookups.Stop()

	var (
		blobs        blobBackend
		mediaHandler http.Handler
	)
	switch cfg.StorageBackend {
	case "gcs":
		gcsClient, err := storage.NewClient(ctx)
		if err != nil {
			logger.Fatal("init gcs client", zap.Error(err))
		}
		defer gcsClient.Close()
		blobs = platformstorage.NewGCSBlobStore(gcsClient, cfg.StoragePublicBaseURL)
	case "local":
		if strings.TrimSpace(cfg.StorageLocalDir) == "" {
			logger.Fatal("storage local dir required when STORAGE_BACKEND=local")
		}
		publicBaseURL := cfg.StoragePublicBaseURL
		if publicBaseURL == "" {
			publicBaseURL = "http://localhost:" + cfg.Port + mediaPrefix
		}
		blobs = platformstorage.NewLocalBlobStore(cfg.StorageLocalDir, publicBaseURL)
		mediaHandler = http.FileServer(http.Dir(cfg.StorageLocalDir))
	default:
		logger.Fatal("invalid STORAGE_BACKEND (use gcs or local)", zap.String("backend", cfg.StorageBackend))
	}

	var indexer propertiesservice.Indexer = propertiesservice.NoopIndexer{}
	switch cfg.SearchBackend {
	case "none", "":
	case "meilisearch":
		_, writer, err := search.Connect(cfg.MeilisearchHost, cfg.MeilisearchAPIKey, indexing.Settings())
		if err != nil {
			logger.Fatal("init meilisearch", zap.Error(err))
		}
		indexer = indexing.New(writer)
	default:
		logger.Fatal("invalid SEARCH_BACKEND (use none or meilisearch)", zap.String("backend", cfg.SearchBackend))
	}

	propertyService := propertiesservice.New(propertiesservice.Deps{
		Repo:     propertiesrepo.NewPostgresRepository(propertyStore),
		Lookups:  lookups,
		Blobs:    blobs,
		Identity: platformauth.ContextIdentity{},
		Indexer:  indexer,
		Logger:   logger,
	}, propertiesservice.Config{
		ImageBucket:   cfg.StorageBucket,
		MaxImageBytes: cfg.MaxImageBytes,
	})

	propertyHTTPHandler := propertieshandler.New(propertyService, logger,
		propertieshandler.WithMaxRequestBytes(int64(propertiesservice.MaxImages)*cfg.MaxImageBytes+1<<20),
		propertieshandler.WithBasePath(apiPrefix))

	corsConfig := platformmiddleware.CORSConfig{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		MaxAge:         cfg.CORSMaxAge,
	}

	rootRouter := newRouter(routerDeps{
		logger:         logger,
		requestTimeout: cfg.RequestTimeout,
		cors:           corsConfig,
		auth:           buildAuthMiddleware(ctx, cfg, logger),
		properties:     propertyHTTPHandler,
		media:          mediaHandler,
		ready: readiness{
			"postgres": pool.Ping,
			"storage": func(ctx context.Context) error {
				return blobs.Check(ctx, cfg.StorageBucket, "properties/")
			},
		},
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      rootRouter,
		ReadTimeout:  2 * time.Minute,
		WriteTimeout: 2 * time.Minute,
		IdleTimeout:  2 * time.Minute,
	}

	go func() {
		logger.Info("starting api server", zap.String("port", cfg.Port))
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server listen failed", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}

// blobBackend is what the API needs from a storage backend: the service's
// BlobStore plus a readiness check.
type blobBackend interface {
	propertiesservice.BlobStore
	platformstorage.Checker
}
