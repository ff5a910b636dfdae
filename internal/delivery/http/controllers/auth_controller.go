package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"regexp"
	"strings"

	"campuseventhub/internal/delivery/http/helpers"
	"campuseventhub/internal/domain"
)

var emailRegexp = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// AuthController serves login, registration, logout, and the session state
// endpoint backed by the process-wide session store.
type AuthController struct {
	Logger   *slog.Logger
	Sessions domain.SessionService
}

func NewAuthController(logger *slog.Logger, sessions domain.SessionService) *AuthController {
	return &AuthController{
		Logger:   logger,
		Sessions: sessions,
	}
}

// LoginRequest is the request body for POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate implements Validator.
func (l LoginRequest) Validate() []domain.FieldError {
	var errs []domain.FieldError
	if strings.TrimSpace(l.Email) == "" {
		errs = append(errs, domain.FieldError{Field: "email", Message: "email is required"})
	}
	if l.Password == "" {
		errs = append(errs, domain.FieldError{Field: "password", Message: "password is required"})
	}
	return errs
}

// SessionStateSuccessResponse is the success response envelope for session state payloads.
type SessionStateSuccessResponse struct {
	Data  domain.SessionState `json:"data"`
	Error *helpers.APIError   `json:"error"`
}

// Login godoc
// @Summary Sign in with email and password
// @Description Authenticates against the auth provider. The session state updates asynchronously through the provider's change notification, so the returned state may still be loading.
// @Tags auth
// @Accept json
// @Produce json
// @Param credentials body LoginRequest true "Email and password"
// @Success 200 {object} controllers.SessionStateSuccessResponse "data contains the current session state"
// @Failure 400 {object} helpers.APIResponse "error.code: validation_failed"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Router /auth/login [post]
func (c *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	if err := c.Sessions.Login(r.Context(), req.Email, req.Password); err != nil {
		var authErr *domain.AuthError
		if errors.As(err, &authErr) {
			helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, authErr.Message)
			return
		}
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, c.Sessions.State())
}

// RegisterRequest is the request body for POST /auth/register.
type RegisterRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// Validate implements Validator.
func (s RegisterRequest) Validate() []domain.FieldError {
	var errs []domain.FieldError
	email := strings.TrimSpace(strings.ToLower(s.Email))
	if email == "" {
		errs = append(errs, domain.FieldError{Field: "email", Message: "email is required"})
	} else if !emailRegexp.MatchString(email) {
		errs = append(errs, domain.FieldError{Field: "email", Message: "invalid email format"})
	}
	if s.Password == "" {
		errs = append(errs, domain.FieldError{Field: "password", Message: "password is required"})
	} else if len(s.Password) < 8 {
		errs = append(errs, domain.FieldError{Field: "password", Message: "password must be at least 8 characters"})
	}
	if strings.TrimSpace(s.FirstName) == "" {
		errs = append(errs, domain.FieldError{Field: "firstName", Message: "firstName is required"})
	}
	return errs
}

// RegisterResponse is the data payload for POST /auth/register (201).
type RegisterResponse struct {
	Status string `json:"status"`
}

// RegisterSuccessResponse is the success response envelope for POST /auth/register (201).
type RegisterSuccessResponse struct {
	Data  RegisterResponse  `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// Register godoc
// @Summary Create an account
// @Description Signs up with the auth provider. The role is derived from the email address on the server side and cannot be chosen by the caller.
// @Tags auth
// @Accept json
// @Produce json
// @Param account body RegisterRequest true "Account details"
// @Success 201 {object} controllers.RegisterSuccessResponse "data contains status"
// @Failure 400 {object} helpers.APIResponse "error.code: validation_failed or bad_request (weak password)"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (email already registered)"
// @Router /auth/register [post]
func (c *AuthController) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	err := c.Sessions.Register(r.Context(), req.Email, req.Password, req.FirstName, req.LastName)
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeConflict, "email already registered")
			return
		}
		if errors.Is(err, domain.ErrWeakPassword) {
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "password does not meet requirements")
			return
		}
		var authErr *domain.AuthError
		if errors.As(err, &authErr) {
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, authErr.Message)
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, RegisterResponse{Status: "registered"})
}

// LogoutResponse is the data payload for POST /auth/logout (200).
type LogoutResponse struct {
	Status string `json:"status"`
}

// LogoutSuccessResponse is the success response envelope for POST /auth/logout (200).
type LogoutSuccessResponse struct {
	Data  LogoutResponse    `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// Logout godoc
// @Summary Sign out
// @Description Signs out from the auth provider. The session state clears through the provider's change notification.
// @Tags auth
// @Produce json
// @Success 200 {object} controllers.LogoutSuccessResponse "data contains status"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /auth/logout [post]
func (c *AuthController) Logout(w http.ResponseWriter, r *http.Request) {
	if err := c.Sessions.Logout(r.Context()); err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, LogoutResponse{Status: "signed out"})
}

// GetSession godoc
// @Summary Get the current session state
// @Description Returns authentication flags and the resolved profile. While a sign-in is being resolved, isLoading is true and the profile is absent.
// @Tags auth
// @Produce json
// @Success 200 {object} controllers.SessionStateSuccessResponse "data contains the current session state"
// @Router /auth/session [get]
func (c *AuthController) GetSession(w http.ResponseWriter, r *http.Request) {
	helpers.WriteJSONSuccess(w, http.StatusOK, c.Sessions.State())
}
