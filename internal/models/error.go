package models

import "errors"

// Sentinel errors for common failure conditions
var (
	ErrNotFound       = errors.New("resource not found")
	ErrConflict       = errors.New("resource already exists")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrBadRequest     = errors.New("bad request")
	ErrInternalServer = errors.New("internal server error")
)

// Login failure variants. Handlers map these to the stable client-facing
// messages; the set is closed so callers never string-match.
var (
	ErrInvalidCredentials                = errors.New("invalid credentials")
	ErrInvalidCredentialsCaptchaRequired = errors.New("invalid credentials, captcha required for next attempt")
	ErrCaptchaRequired                   = errors.New("captcha verification required")
	ErrCaptchaInvalid                    = errors.New("invalid captcha")
)

// Token refresh failure variants
var (
	ErrNoRefreshToken      = errors.New("no refresh token provided")
	ErrInvalidRefreshToken = errors.New("invalid or expired refresh token")
	ErrAccountNotFound     = errors.New("account not found")
)

// Google Sign-In failure variants
var (
	ErrGoogleNotConfigured   = errors.New("google sign-in is not configured")
	ErrGoogleTokenInvalid    = errors.New("google token invalid")
	ErrGoogleIssuerInvalid   = errors.New("google token issuer invalid")
	ErrGoogleAudienceInvalid = errors.New("google token audience invalid")
	ErrGoogleEmailUnverified = errors.New("google account email not verified")
	ErrGoogleVerification    = errors.New("failed to verify google token")
	ErrGoogleConflict        = errors.New("email linked to a different google account")
)
