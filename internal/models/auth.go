package models

import (
	"github.com/golang-jwt/jwt/v5"
)

// Token type values carried in the "type" claim.
const (
	TokenTypeAccess        = "access"
	TokenTypeRefresh       = "refresh"
	TokenTypeActivation    = "activation"
	TokenTypePasswordReset = "password_reset"
)

type TokenClaims struct {
	Type      string `json:"type"`
	AccountID int64  `json:"user_id"`
	Email     string `json:"email,omitempty"`
	// Fingerprint binds single-use tokens (activation, password reset) to
	// account state at issue time, so they stop validating once that state
	// changes.
	Fingerprint string `json:"fpt,omitempty"`
	jwt.RegisteredClaims
}
