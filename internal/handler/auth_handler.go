package handler

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"scratchbook-server/internal/domain"
	"scratchbook-server/internal/middleware"
	"scratchbook-server/internal/service"
	"scratchbook-server/pkg/response"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
)

const (
	logoutSuccessMsg = "Logout successful"
	noTokenMsg       = "Unauthorized: No token in request"
)

type AuthHandler struct {
	authService  *service.AuthService
	validate     *validator.Validate
	log          *logrus.Logger
	cookieMaxAge time.Duration
	cookieSecure bool
}

func NewAuthHandler(authService *service.AuthService, log *logrus.Logger, cookieMaxAge time.Duration, cookieSecure bool) *AuthHandler {
	return &AuthHandler{
		authService:  authService,
		validate:     newValidator(),
		log:          log,
		cookieMaxAge: cookieMaxAge,
		cookieSecure: cookieSecure,
	}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req domain.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	req.Username = strings.TrimSpace(req.Username)

	if err := h.validate.Struct(req); err != nil {
		response.BadRequest(w, formatValidationError(err))
		return
	}

	user, err := h.authService.Register(r.Context(), &req)
	if err != nil {
		h.log.WithFields(logrus.Fields{"ip": middleware.ClientIP(r), "error": err.Error()}).Debug("User failed to register")
		writeServiceError(w, err)
		return
	}

	h.log.WithFields(logrus.Fields{"user": user.Username, "ip": middleware.ClientIP(r)}).Debug("User registered")
	response.Created(w, user)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		response.BadRequest(w, formatValidationError(err))
		return
	}

	user, token, err := h.authService.Login(r.Context(), &req)
	if err != nil {
		h.log.WithFields(logrus.Fields{"ip": middleware.ClientIP(r), "error": err.Error()}).Debug("User failed to log in")
		writeServiceError(w, err)
		return
	}

	h.setSessionCookie(w, token)

	h.log.WithFields(logrus.Fields{"user": user.Username, "ip": middleware.ClientIP(r)}).Debug("User logged in")
	response.Success(w, user)
}

// GetCurrentUser echoes the identity embedded in a valid session token.
func (h *AuthHandler) GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	caller := middleware.GetCaller(r)
	if caller.IsAnonymous() {
		response.BadRequest(w, noTokenMsg)
		return
	}

	response.Success(w, &domain.UserResponse{ID: caller.ID, Username: caller.Username})
}

// Logout clears the session cookie. Idempotent; succeeds with or without an
// active session.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.clearSessionCookie(w)

	h.log.WithFields(logrus.Fields{"ip": middleware.ClientIP(r)}).Debug("User logged out")
	response.Message(w, logoutSuccessMsg)
}

func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.TokenCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.cookieMaxAge.Seconds()),
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *AuthHandler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.TokenCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}
