package http

import (
	"log/slog"
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"campuseventhub/internal/delivery/http/controllers"
	"campuseventhub/internal/delivery/http/middleware"
	"campuseventhub/internal/domain"
)

// NewRouter initializes the HTTP router with all application routes. Event
// browsing is public; management routes are behind the admin gate and
// registration routes behind the user gate.
func NewRouter(
	logger *slog.Logger,
	sessions domain.SessionService,
	authController *controllers.AuthController,
	eventController *controllers.EventController,
	registrationController *controllers.RegistrationController,
	uploadController *controllers.UploadController,
) *http.ServeMux {
	mux := http.NewServeMux()

	adminOnly := middleware.Gate(sessions, domain.RoleAdmin, logger)
	userOnly := middleware.Gate(sessions, domain.RoleUser, logger)

	// Auth
	mux.HandleFunc("POST /auth/login", authController.Login)
	mux.HandleFunc("POST /auth/register", authController.Register)
	mux.HandleFunc("POST /auth/logout", authController.Logout)
	mux.HandleFunc("GET /auth/session", authController.GetSession)

	// Events
	mux.HandleFunc("GET /events", eventController.ListEvents)
	mux.HandleFunc("GET /events/featured", eventController.ListFeatured)
	mux.HandleFunc("GET /events/{eventID}", eventController.GetEvent)
	mux.HandleFunc("POST /events/refresh", eventController.RefreshEvents)
	mux.HandleFunc("POST /events", adminOnly(eventController.CreateEvent))
	mux.HandleFunc("PATCH /events/{eventID}", adminOnly(eventController.UpdateEvent))
	mux.HandleFunc("DELETE /events/{eventID}", adminOnly(eventController.DeleteEvent))

	// Registrations
	mux.HandleFunc("POST /events/{eventID}/register", userOnly(registrationController.RegisterInterest))
	mux.HandleFunc("GET /me/registrations", userOnly(registrationController.ListMyRegistrations))

	// Uploads
	mux.HandleFunc("POST /uploads/poster", adminOnly(uploadController.UploadPoster))

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}
