package handler

import (
	"errors"
	"net/http"
	"time"

	"kizuki-server/internal/domain"
	"kizuki-server/internal/service"
	"kizuki-server/pkg/hash"
	"kizuki-server/pkg/response"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// CookieOptions controls the session cookie set on login.
type CookieOptions struct {
	Name   string
	Secure bool
	MaxAge time.Duration
}

type AuthHandler struct {
	authService *service.AuthService
	validator   *validator.Validate
	cookie      CookieOptions
	log         zerolog.Logger
}

func NewAuthHandler(authService *service.AuthService, cookie CookieOptions, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		validator:   validator.New(),
		cookie:      cookie,
		log:         log.With().Str("component", "auth_handler").Logger(),
	}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req domain.RegisterRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	if err := h.authService.Register(r.Context(), &req); err != nil {
		if errors.Is(err, service.ErrEmailTaken) ||
			errors.Is(err, hash.ErrPasswordTooShort) ||
			errors.Is(err, hash.ErrPasswordTooLong) {
			response.BadRequest(w, err.Error())
			return
		}
		h.log.Error().Err(err).Msg("registration failed")
		response.InternalError(w, "Registration failed")
		return
	}

	response.Created(w, map[string]string{
		"message": "User registered successfully. Please login.",
	})
}

// Login signs the user in and sets the session cookie alongside the tokens.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	loginResp, err := h.authService.Login(r.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			response.Unauthorized(w, err.Error())
			return
		}
		h.log.Error().Err(err).Msg("login failed")
		response.InternalError(w, "Login failed")
		return
	}

	h.setSessionCookie(w, loginResp.AccessToken, int(h.cookie.MaxAge.Seconds()))
	response.Success(w, loginResp)
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req domain.RefreshTokenRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	tokenResp, err := h.authService.RefreshToken(r.Context(), &req)
	if err != nil {
		response.Unauthorized(w, err.Error())
		return
	}

	h.setSessionCookie(w, tokenResp.AccessToken, int(h.cookie.MaxAge.Seconds()))
	response.Success(w, tokenResp)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.authService.Logout(r.Context()); err != nil {
		h.log.Warn().Err(err).Msg("token revocation failed")
	}

	h.setSessionCookie(w, "", -1)
	response.Message(w, "Logged out successfully")
}

// Session reports whether the caller is signed in and as whom.
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	response.Success(w, h.authService.Session(r.Context()))
}

func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, value string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookie.Name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}
