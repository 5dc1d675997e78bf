package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/virtualtourist/server/internal/config"
	"github.com/virtualtourist/server/internal/flickr"
	"github.com/virtualtourist/server/internal/handlers"
	custommw "github.com/virtualtourist/server/internal/middleware"
	"github.com/virtualtourist/server/internal/observability"
	"github.com/virtualtourist/server/internal/repository"
	"github.com/virtualtourist/server/internal/services"
)

const serviceVersion = "1.0.0"

func main() {
	// Pick up .env for local development; a missing file is fine
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := context.Background()
	telemetryShutdown, err := observability.Setup(ctx, "virtualtourist-server", serviceVersion)
	if err != nil {
		log.Printf("Warning: telemetry initialization failed: %v", err)
		telemetryShutdown = func(context.Context) error { return nil }
	}

	// Change feed first: the repositories publish into it
	feed := services.NewChangeFeed()

	var locationRepo repository.LocationRepo
	var photoRepo repository.PhotoRepo
	if cfg.UsePostgres() {
		log.Println("Using PostgreSQL database")
		db, err := repository.NewPostgresDB(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to initialize PostgreSQL database: %v", err)
		}
		defer db.Close()
		locationRepo = repository.NewLocationRepositoryPostgres(db)
		photoRepo = repository.NewPhotoRepositoryPostgres(db, feed)
	} else {
		log.Println("Using SQLite database")
		db, err := repository.NewSQLiteDB(cfg.DatabasePath)
		if err != nil {
			log.Fatalf("Failed to initialize SQLite database: %v", err)
		}
		defer db.Close()
		locationRepo = repository.NewLocationRepository(db)
		photoRepo = repository.NewPhotoRepository(db, feed)
	}

	// Services
	searchClient := flickr.NewClient(cfg.Flickr.BaseURL, cfg.Flickr.APIKey, cfg.Flickr.PerPage)
	fetcher := flickr.NewFetcher()
	imageService := services.NewImageService(cfg.Thumbnail.MaxDimension)
	syncService := services.NewSyncService(locationRepo, photoRepo, searchClient, fetcher, imageService)
	hub := services.NewWebSocketHub(feed)

	// Handlers
	locationHandler := handlers.NewLocationHandler(locationRepo, photoRepo)
	photoHandler := handlers.NewPhotoHandler(syncService, photoRepo)
	wsHandler := handlers.NewWebSocketHandler(hub)
	healthHandler := handlers.NewHealthHandler()

	httpMetrics, err := observability.NewHTTPMetrics()
	if err != nil {
		log.Printf("Warning: HTTP metrics unavailable: %v", err)
	}

	// Setup router
	r := chi.NewRouter()

	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(observability.Middleware(httpMetrics))
	r.Use(custommw.APIKeyAuth(cfg.Security.APIKey, cfg.Security.APIKeyHeader))

	r.Get("/health", healthHandler.HealthCheck)
	r.Get("/api/health", healthHandler.HealthCheck)
	r.Get("/ws", wsHandler.HandleConnection)

	r.Route("/api/locations", func(r chi.Router) {
		r.Post("/", locationHandler.Create)
		r.Get("/", locationHandler.List)
		r.Get("/{id}", locationHandler.GetByID)
		r.Get("/{id}/photos", photoHandler.List)
		r.Post("/{id}/photos/load", photoHandler.Load)
		r.Post("/{id}/photos/refresh", photoHandler.Refresh)
	})

	r.Route("/api/photos", func(r chi.Router) {
		r.Delete("/{id}", photoHandler.Delete)
		r.Get("/{id}/image", photoHandler.Image)
		r.Get("/{id}/thumbnail", photoHandler.Thumbnail)
	})

	srv := &http.Server{
		Addr:         cfg.ServerAddress,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Virtual Tourist server starting on %s", cfg.ServerAddress)
		log.Printf("Search page size: %d", cfg.Flickr.PerPage)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	if err := telemetryShutdown(shutdownCtx); err != nil {
		log.Printf("Telemetry shutdown error: %v", err)
	}

	log.Println("Server stopped")
}
