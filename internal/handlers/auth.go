package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/inkwell-labs/bookstore-api/internal/auth"
	"github.com/inkwell-labs/bookstore-api/internal/models"
	"github.com/inkwell-labs/bookstore-api/internal/services"
	pkghttp "github.com/inkwell-labs/bookstore-api/pkg/http"
)

// AuthServiceInterface defines the interface for auth business logic
type AuthServiceInterface interface {
	Login(ctx context.Context, email, password, captchaToken, ipAddress string) (*services.AuthResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*services.AuthResponse, error)
	Signup(ctx context.Context, input services.SignupInput) (*models.Account, error)
	Activate(ctx context.Context, accountID int64, token string) (services.ActivationResult, error)
	GoogleSignIn(ctx context.Context, credential string) (*services.AuthResponse, error)
	RequestPasswordReset(ctx context.Context, email string) error
	ConfirmPasswordReset(ctx context.Context, token, newPassword string) error
}

// AuthHandler handles account and session HTTP requests
type AuthHandler struct {
	service   AuthServiceInterface
	cookieCfg auth.CookieConfig
	ipConfig  *pkghttp.IPConfig
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(service AuthServiceInterface, cookieCfg auth.CookieConfig, ipConfig *pkghttp.IPConfig) *AuthHandler {
	return &AuthHandler{
		service:   service,
		cookieCfg: cookieCfg,
		ipConfig:  ipConfig,
	}
}

// Request DTOs

// SignupRequest represents the request body for registration
type SignupRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	FullName string `json:"full_name" validate:"required,min=1"`
	Phone    string `json:"phone" validate:"required"`
	Birthday string `json:"birthday" validate:"required"`
}

// LoginRequest represents the request body for login
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Captcha  string `json:"captcha"`
}

// GoogleSignInRequest carries the Google ID token from the client widget
type GoogleSignInRequest struct {
	Credential string `json:"credential" validate:"required"`
}

// PasswordResetRequestBody represents the request body for a reset email
type PasswordResetRequestBody struct {
	Email string `json:"email" validate:"required,email"`
}

// PasswordResetConfirmBody represents the request body for setting a new password
type PasswordResetConfirmBody struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=6"`
}

// authData is the data payload shared by login, refresh, and google
// sign-in responses. The refresh token travels only in the cookie.
type authData struct {
	Access  string                    `json:"access"`
	Account *services.AccountResponse `json:"account"`
}

// Signup handles account registration
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body.")
		return
	}
	if err := ValidateRequest(req); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	birthday, err := time.Parse("2006-01-02", req.Birthday)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Birthday must be in YYYY-MM-DD format.")
		return
	}

	_, err = h.service.Signup(r.Context(), services.SignupInput{
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
		Phone:    req.Phone,
		Birthday: birthday,
	})
	if err != nil {
		if errors.Is(err, models.ErrConflict) {
			writeMessage(w, http.StatusBadRequest, "An account with this email already exists.")
			return
		}
		writeMessage(w, http.StatusInternalServerError, "Registration failed. Please try again later.")
		return
	}

	writeMessage(w, http.StatusCreated, "Registration successful. Please check your email to activate your account.")
}

// Activate handles the activation link from the email
func (h *AuthHandler) Activate(w http.ResponseWriter, r *http.Request) {
	uid, err := strconv.ParseInt(chi.URLParam(r, "uid"), 10, 64)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Activation link is invalid or has expired.")
		return
	}
	token := chi.URLParam(r, "token")

	result, err := h.service.Activate(r.Context(), uid, token)
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, "Activation failed. Please try again later.")
		return
	}

	switch result {
	case services.AlreadyActive:
		writeMessage(w, http.StatusOK, "Account already activated.")
	case services.Activated:
		writeMessage(w, http.StatusOK, "Account activated successfully! You can now log in.")
	default:
		writeMessage(w, http.StatusBadRequest, "Activation link is invalid or has expired.")
	}
}

// Login handles credential login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeLoginFailure(w, "Invalid credentials.")
		return
	}
	if err := ValidateRequest(req); err != nil {
		writeLoginFailure(w, "Invalid credentials.")
		return
	}

	ipAddress := pkghttp.ExtractClientIP(r, h.ipConfig)

	resp, err := h.service.Login(r.Context(), req.Email, req.Password, req.Captcha, ipAddress)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrCaptchaRequired):
			writeLoginFailure(w, "Captcha verification required. Please complete the captcha.")
		case errors.Is(err, models.ErrCaptchaInvalid):
			writeLoginFailure(w, "Invalid captcha. Please try again.")
		case errors.Is(err, models.ErrInvalidCredentialsCaptchaRequired):
			writeLoginFailure(w, "Invalid credentials. Captcha required for next attempt.")
		case errors.Is(err, models.ErrInvalidCredentials):
			writeLoginFailure(w, "Invalid credentials.")
		default:
			writeMessage(w, http.StatusInternalServerError, "Login failed. Please try again later.")
		}
		return
	}

	auth.SetRefreshTokenCookie(w, resp.RefreshToken, h.cookieCfg)
	writeMessageWithData(w, http.StatusOK, "Login successful.", authData{
		Access:  resp.AccessToken,
		Account: resp.Account,
	})
}

// Logout clears the refresh cookie. It succeeds even when the cookie is
// missing or invalid; the access token simply expires client-side.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	auth.ClearRefreshTokenCookie(w, h.cookieCfg)
	writeMessage(w, http.StatusOK, "Logout successful.")
}

// Refresh rotates the refresh cookie and mints a new access token
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	refreshToken, _ := auth.GetRefreshTokenCookie(r)

	resp, err := h.service.Refresh(r.Context(), refreshToken)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrNoRefreshToken):
			writeMessage(w, http.StatusUnauthorized, "No refresh token provided.")
		case errors.Is(err, models.ErrInvalidRefreshToken):
			writeMessage(w, http.StatusUnauthorized, "Invalid or expired token.")
		case errors.Is(err, models.ErrAccountNotFound):
			writeMessage(w, http.StatusNotFound, "User not found.")
		default:
			writeMessage(w, http.StatusInternalServerError, "Token refresh failed. Please try again later.")
		}
		return
	}

	auth.SetRefreshTokenCookie(w, resp.RefreshToken, h.cookieCfg)
	writeMessageWithData(w, http.StatusOK, "Token refreshed successfully.", authData{
		Access:  resp.AccessToken,
		Account: resp.Account,
	})
}

// GoogleSignIn handles federated login with a Google ID token
func (h *AuthHandler) GoogleSignIn(w http.ResponseWriter, r *http.Request) {
	var req GoogleSignInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Google Sign-In failed.")
		return
	}
	if err := ValidateRequest(req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Google Sign-In failed.")
		return
	}

	resp, err := h.service.GoogleSignIn(r.Context(), req.Credential)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, googleFailureMessage(err))
		return
	}

	auth.SetRefreshTokenCookie(w, resp.RefreshToken, h.cookieCfg)
	writeMessageWithData(w, http.StatusOK, "Google Sign-In successful.", authData{
		Access:  resp.AccessToken,
		Account: resp.Account,
	})
}

func googleFailureMessage(err error) string {
	switch {
	case errors.Is(err, models.ErrGoogleNotConfigured):
		return "Google Sign-In is not configured."
	case errors.Is(err, models.ErrGoogleIssuerInvalid):
		return "Invalid token issuer."
	case errors.Is(err, models.ErrGoogleAudienceInvalid):
		return "Invalid token audience."
	case errors.Is(err, models.ErrGoogleEmailUnverified):
		return "Google account email not verified."
	case errors.Is(err, models.ErrGoogleTokenInvalid):
		return "Email not found in Google token."
	case errors.Is(err, models.ErrGoogleConflict):
		return "This email is already linked to a different Google account."
	case errors.Is(err, models.ErrGoogleVerification):
		return "Failed to verify Google token."
	default:
		return "Google Sign-In failed."
	}
}

// RequestPasswordReset emails a reset link
func (h *AuthHandler) RequestPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req PasswordResetRequestBody
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body.")
		return
	}
	if err := ValidateRequest(req); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.service.RequestPasswordReset(r.Context(), req.Email); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			writeMessage(w, http.StatusBadRequest, "Email not found.")
			return
		}
		writeMessage(w, http.StatusInternalServerError, "Password reset failed. Please try again later.")
		return
	}

	writeMessage(w, http.StatusOK, "Password reset email sent. Please check your inbox.")
}

// ConfirmPasswordReset sets a new password from a reset token
func (h *AuthHandler) ConfirmPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req PasswordResetConfirmBody
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body.")
		return
	}
	if err := ValidateRequest(req); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.service.ConfirmPasswordReset(r.Context(), req.Token, req.NewPassword); err != nil {
		if errors.Is(err, models.ErrUnauthorized) {
			writeMessage(w, http.StatusBadRequest, "Reset link is invalid or has expired.")
			return
		}
		writeMessage(w, http.StatusInternalServerError, "Password reset failed. Please try again later.")
		return
	}

	writeMessage(w, http.StatusOK, "Password reset successful. You can now log in.")
}
