package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"time"

	_ "github.com/lib/pq"

	"campuseventhub/config"
	_ "campuseventhub/docs"
	localauth "campuseventhub/internal/adapters/auth"
	"campuseventhub/internal/adapters/email"
	"campuseventhub/internal/adapters/hosted"
	appHTTP "campuseventhub/internal/delivery/http"
	"campuseventhub/internal/delivery/http/controllers"
	"campuseventhub/internal/delivery/http/middleware"
	"campuseventhub/internal/domain"
	"campuseventhub/internal/repository/postgres"
	"campuseventhub/internal/services"
)

// @title Campus Event Hub API
// @version 1.0
// @description Campus event listing, account, and registration API.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := config.NewLogger()

	var (
		provider      domain.AuthProvider
		profiles      domain.ProfileStore
		eventStore    domain.EventStore
		registrations domain.RegistrationStore
		blobs         domain.BlobStore
	)

	switch cfg.Backend {
	case config.BackendPostgres:
		db, err := sql.Open("postgres", cfg.DBUrl)
		if err != nil {
			log.Fatalf("open database: %v", err)
		}
		defer db.Close()
		if err := db.Ping(); err != nil {
			log.Fatalf("ping database: %v", err)
		}
		provider = localauth.NewLocalProvider(db, cfg.JWTSecret, cfg.JWTExpiry)
		profiles = postgres.NewProfileStore(db)
		eventStore = postgres.NewEventStore(db)
		registrations = postgres.NewRegistrationStore(db)
		// Poster uploads still go through the hosted object storage; there is
		// no local blob backend.
		blobs = hosted.NewStorageClient(cfg.Hosted.BaseURL, cfg.Hosted.APIKey, http.DefaultClient, func() string { return "" })
	default:
		authClient := hosted.NewAuthClient(cfg.Hosted.BaseURL, cfg.Hosted.APIKey, http.DefaultClient)
		dataClient := hosted.NewDataClient(cfg.Hosted.BaseURL, cfg.Hosted.APIKey, http.DefaultClient, authClient.AccessToken)
		provider = authClient
		profiles = dataClient
		eventStore = dataClient
		registrations = dataClient
		blobs = hosted.NewStorageClient(cfg.Hosted.BaseURL, cfg.Hosted.APIKey, http.DefaultClient, authClient.AccessToken)
	}

	mailer, err := email.NewMailer(cfg.Mailer)
	if err != nil {
		log.Fatalf("mailer: %v", err)
	}
	emailService := services.NewEmailService(mailer, email.NewTemplateRenderer(), logger)

	sessions := services.NewSessionService(provider, profiles, cfg.AdminEmail, logger)
	sessions.Start()
	defer sessions.Close()

	cache := services.NewEventCache(eventStore, logger)
	registrationService := services.NewRegistrationService(registrations, cache, sessions, emailService, logger)

	// Warm the cache so the listing serves immediately. A failure here is not
	// fatal; the cache refreshes on demand.
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	if err := cache.FetchAll(ctx); err != nil {
		logger.Warn("initial event fetch failed", "err", err)
	}
	cancel()

	authController := controllers.NewAuthController(logger, sessions)
	eventController := controllers.NewEventController(logger, cache, eventStore)
	registrationController := controllers.NewRegistrationController(logger, registrationService)
	uploadController := controllers.NewUploadController(logger, blobs, cfg.PosterBucket)

	mux := appHTTP.NewRouter(logger, sessions, authController, eventController, registrationController, uploadController)

	var handler http.Handler = middleware.LoggingMiddleware(logger, mux)
	if len(cfg.CORSAllowedOrigins) > 0 {
		handler = middleware.CORS(cfg.CORSAllowedOrigins, handler)
	}

	addr := fmt.Sprintf(":%s", cfg.Port)
	logger.Info("server listening", "addr", addr, "backend", cfg.Backend, "env", cfg.Environment)
	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	if err := server.ListenAndServe(); err != nil {
		log.Fatalf("server: %v", err)
	}
}
