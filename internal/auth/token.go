package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"time"

	"github.com/inkwell-labs/bookstore-api/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenManager handles JWT token generation and validation for every token
// kind the backend issues: access, refresh, activation and password reset.
type TokenManager struct {
	secret              string
	accessTokenExpiry   time.Duration
	refreshTokenExpiry  time.Duration
	activationExpiry    time.Duration
	passwordResetExpiry time.Duration
	leeway              time.Duration
}

func NewTokenManager(secret string, accessExpiry, refreshExpiry, activationExpiry, passwordResetExpiry, leeway time.Duration) *TokenManager {
	return &TokenManager{
		secret:              secret,
		accessTokenExpiry:   accessExpiry,
		refreshTokenExpiry:  refreshExpiry,
		activationExpiry:    activationExpiry,
		passwordResetExpiry: passwordResetExpiry,
		leeway:              leeway,
	}
}

func (tm *TokenManager) generate(tokenType string, accountID int64, email, fingerprint string, expiry time.Duration) (string, error) {
	claims := &models.TokenClaims{
		Type:        tokenType,
		AccountID:   accountID,
		Email:       email,
		Fingerprint: fingerprint,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Subject:   strconv.FormatInt(accountID, 10),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiry)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString([]byte(tm.secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign %s token: %w", tokenType, err)
	}

	return tokenString, nil
}

// GenerateAccessToken creates a short-lived bearer token.
func (tm *TokenManager) GenerateAccessToken(accountID int64, email string) (string, error) {
	return tm.generate(models.TokenTypeAccess, accountID, email, "", tm.accessTokenExpiry)
}

// GenerateRefreshToken creates the long-lived renewal token carried only
// in the refresh_token cookie.
func (tm *TokenManager) GenerateRefreshToken(accountID int64, email string) (string, error) {
	return tm.generate(models.TokenTypeRefresh, accountID, email, "", tm.refreshTokenExpiry)
}

// GenerateActivationToken creates the email-activation token. The
// fingerprint carries the activation flag at issue time, so the token
// stops matching once the account is activated.
func (tm *TokenManager) GenerateActivationToken(account *models.Account) (string, error) {
	return tm.generate(models.TokenTypeActivation, account.ID, account.Email, ActivationFingerprint(account), tm.activationExpiry)
}

// GeneratePasswordResetToken creates a single-use reset token bound to
// the current password hash and last login.
func (tm *TokenManager) GeneratePasswordResetToken(account *models.Account) (string, error) {
	return tm.generate(models.TokenTypePasswordReset, account.ID, account.Email, PasswordResetFingerprint(account), tm.passwordResetExpiry)
}

// ValidateToken verifies a token signature and expiry and returns its claims.
func (tm *TokenManager) ValidateToken(tokenString string) (*models.TokenClaims, error) {
	claims := &models.TokenClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(tm.secret), nil
	}, jwt.WithLeeway(tm.leeway))

	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	if !token.Valid {
		return nil, models.ErrUnauthorized
	}

	if claims.Type == "" {
		return nil, fmt.Errorf("invalid token: missing type")
	}

	return claims, nil
}

// ActivationFingerprint digests the state an activation token is bound to.
func ActivationFingerprint(account *models.Account) string {
	return fingerprint(fmt.Sprintf("%d:%t", account.ID, account.IsActive))
}

// PasswordResetFingerprint digests the state a reset token is bound to.
// Changing the password or logging in invalidates outstanding tokens.
func PasswordResetFingerprint(account *models.Account) string {
	lastLogin := ""
	if account.LastLogin != nil {
		lastLogin = account.LastLogin.UTC().Format(time.RFC3339Nano)
	}
	return fingerprint(fmt.Sprintf("%d:%s:%s", account.ID, account.PasswordHash, lastLogin))
}

func fingerprint(input string) string {
	sum := sha256.Sum256([]byte(input))
	return hex.EncodeToString(sum[:10])
}
