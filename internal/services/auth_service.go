package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/inkwell-labs/bookstore-api/internal/auth"
	"github.com/inkwell-labs/bookstore-api/internal/captcha"
	"github.com/inkwell-labs/bookstore-api/internal/googleauth"
	"github.com/inkwell-labs/bookstore-api/internal/models"
	pkgauth "github.com/inkwell-labs/bookstore-api/pkg/auth"
	pkglogger "github.com/inkwell-labs/bookstore-api/pkg/logger"
)

// AccountRepository defines the interface for account data access
type AccountRepository interface {
	GetByID(ctx context.Context, id int64) (*models.Account, error)
	GetByEmail(ctx context.Context, email string) (*models.Account, error)
	Create(ctx context.Context, account *models.Account) (*models.Account, error)
	Activate(ctx context.Context, id int64) error
	UpdateLastLogin(ctx context.Context, id int64, at time.Time) error
	LinkGoogle(ctx context.Context, id int64, googleID string) (*models.Account, error)
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
}

// FailedAttemptStore tracks failed logins per (email, client IP).
type FailedAttemptStore interface {
	Increment(ctx context.Context, email, ipAddress string) (int64, error)
	Get(ctx context.Context, email, ipAddress string) (int64, error)
	Clear(ctx context.Context, email, ipAddress string) error
}

// ActivationMailer delivers account lifecycle emails. The activation
// link needs the account id alongside the token because the activation
// endpoint addresses the account by id.
type ActivationMailer interface {
	SendActivationEmail(ctx context.Context, accountID int64, email, fullName, token string) error
	SendPasswordResetEmail(ctx context.Context, email, fullName, token string) error
}

// Accepted issuer values for Google ID tokens.
var googleIssuers = []string{"accounts.google.com", "https://accounts.google.com"}

// AuthService handles authentication business logic
type AuthService struct {
	repo           AccountRepository
	attempts       FailedAttemptStore
	captcha        captcha.Verifier
	googleVerifier googleauth.Verifier
	googleClientID string
	tm             *auth.TokenManager
	mailer         ActivationMailer
	logger         *slog.Logger
	auditLogger    *pkglogger.AuditLogger
	captchaGate    int64
}

// NewAuthService creates a new AuthService. captchaGate is the failed
// attempt count at which the captcha requirement kicks in.
func NewAuthService(
	repo AccountRepository,
	attempts FailedAttemptStore,
	captchaVerifier captcha.Verifier,
	googleVerifier googleauth.Verifier,
	googleClientID string,
	tm *auth.TokenManager,
	mailer ActivationMailer,
	logger *slog.Logger,
	auditLogger *pkglogger.AuditLogger,
	captchaGate int,
) *AuthService {
	return &AuthService{
		repo:           repo,
		attempts:       attempts,
		captcha:        captchaVerifier,
		googleVerifier: googleVerifier,
		googleClientID: googleClientID,
		tm:             tm,
		mailer:         mailer,
		logger:         logger,
		auditLogger:    auditLogger,
		captchaGate:    int64(captchaGate),
	}
}

// AccountResponse is the account object embedded in auth responses.
type AccountResponse struct {
	ID           int64   `json:"id"`
	Email        string  `json:"email"`
	FullName     string  `json:"full_name"`
	Phone        *string `json:"phone"`
	Birthday     *string `json:"birthday"`
	IsGoogleUser *bool   `json:"is_google_user,omitempty"`
}

// AuthResponse carries the access token and account snapshot; the refresh
// token goes into the cookie, never the body.
type AuthResponse struct {
	AccessToken  string
	RefreshToken string
	Account      *AccountResponse
}

// Login authenticates an account, enforcing the captcha gate fed by the
// failed-attempt counter for this (email, ipAddress) pair.
func (s *AuthService) Login(ctx context.Context, email, password, captchaToken, ipAddress string) (*AuthResponse, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, models.ErrInvalidCredentials
	}

	count, err := s.attempts.Get(ctx, email, ipAddress)
	if err != nil {
		s.logger.Error("failed to read attempt counter", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	if count >= s.captchaGate {
		if captchaToken == "" {
			s.auditLogger.LogAuthAttempt(pkglogger.AuditEvent{
				EventType:     "login_failed",
				UserID:        pkglogger.SanitizedEmail(email),
				IPAddress:     ipAddress,
				FailureReason: "captcha_required",
				Success:       false,
			})
			return nil, models.ErrCaptchaRequired
		}
		if !s.captcha.Verify(ctx, captchaToken) {
			s.auditLogger.LogAuthAttempt(pkglogger.AuditEvent{
				EventType:     "login_failed",
				UserID:        pkglogger.SanitizedEmail(email),
				IPAddress:     ipAddress,
				FailureReason: "captcha_invalid",
				Success:       false,
			})
			return nil, models.ErrCaptchaInvalid
		}
	}

	account, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, s.recordFailure(ctx, email, ipAddress, "unknown_email")
		}
		s.logger.Error("failed to get account by email", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	// Inactive accounts fail exactly like a wrong password so activation
	// state never leaks.
	if !account.IsActive {
		return nil, s.recordFailure(ctx, email, ipAddress, "inactive_account")
	}

	if !account.HasUsablePassword() || pkgauth.ComparePassword(account.PasswordHash, password) != nil {
		return nil, s.recordFailure(ctx, email, ipAddress, "wrong_password")
	}

	if err := s.attempts.Clear(ctx, email, ipAddress); err != nil {
		s.logger.Warn("failed to clear attempt counter", slog.Any("error", err))
	}

	resp, err := s.issueTokens(account, false)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if err := s.repo.UpdateLastLogin(ctx, account.ID, now); err != nil {
		s.logger.Warn("failed to update last login", slog.Int64("account_id", account.ID), slog.Any("error", err))
	}

	s.logger.Info("account logged in", slog.Int64("account_id", account.ID))
	s.auditLogger.LogAuthAttempt(pkglogger.AuditEvent{
		EventType: "login_success",
		UserID:    account.Email,
		IPAddress: ipAddress,
		Success:   true,
	})

	return resp, nil
}

// recordFailure increments the counter and classifies the failure. Once
// the post-increment count reaches the gate the distinguishable variant
// is returned so the client can prompt for a captcha next time.
func (s *AuthService) recordFailure(ctx context.Context, email, ipAddress, reason string) error {
	count, err := s.attempts.Increment(ctx, email, ipAddress)
	if err != nil {
		s.logger.Error("failed to increment attempt counter", slog.Any("error", err))
		return models.ErrInternalServer
	}

	// Failed attempts log a masked email: the input is unverified and may
	// not belong to a real account.
	s.auditLogger.LogAuthAttempt(pkglogger.AuditEvent{
		EventType:     "login_failed",
		UserID:        pkglogger.SanitizedEmail(email),
		IPAddress:     ipAddress,
		FailureReason: reason,
		Success:       false,
	})

	if count >= s.captchaGate {
		return models.ErrInvalidCredentialsCaptchaRequired
	}
	return models.ErrInvalidCredentials
}

// Refresh validates a renewal token from the cookie, rotates it, and
// mints a fresh access token.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*AuthResponse, error) {
	if strings.TrimSpace(refreshToken) == "" {
		return nil, models.ErrNoRefreshToken
	}

	claims, err := s.tm.ValidateToken(refreshToken)
	if err != nil {
		s.logger.Info("refresh token validation failed", slog.Any("error", err))
		return nil, models.ErrInvalidRefreshToken
	}

	if claims.Type != models.TokenTypeRefresh {
		s.logger.Warn("refresh attempt with non-refresh token", slog.Int64("account_id", claims.AccountID))
		return nil, models.ErrInvalidRefreshToken
	}

	account, err := s.repo.GetByID(ctx, claims.AccountID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			s.logger.Info("account not found for token refresh", slog.Int64("account_id", claims.AccountID))
			return nil, models.ErrAccountNotFound
		}
		s.logger.Error("failed to get account for token refresh", slog.Int64("account_id", claims.AccountID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	// The refreshed account object keeps the login response shape; the
	// google flag only appears on Google sign-in responses.
	resp, err := s.issueTokens(account, false)
	if err != nil {
		return nil, err
	}

	s.logger.Info("token refreshed", slog.Int64("account_id", account.ID))
	return resp, nil
}

// SignupInput holds the validated fields for account registration.
type SignupInput struct {
	Email    string
	Password string
	FullName string
	Phone    string
	Birthday time.Time
}

// Signup creates an inactive account and dispatches the activation email
// in the background (delivery failures are logged, not surfaced).
func (s *AuthService) Signup(ctx context.Context, input SignupInput) (*models.Account, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))

	_, err := s.repo.GetByEmail(ctx, email)
	if err == nil {
		s.logger.Info("signup failed: account already exists")
		return nil, models.ErrConflict
	}
	if !errors.Is(err, models.ErrNotFound) {
		s.logger.Error("failed to check if account exists", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	hashedPassword, err := pkgauth.HashPassword(input.Password)
	if err != nil {
		s.logger.Error("failed to hash password", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	phone := input.Phone
	birthday := input.Birthday
	account := &models.Account{
		Email:        email,
		PasswordHash: hashedPassword,
		FullName:     strings.TrimSpace(input.FullName),
		Phone:        &phone,
		Birthday:     &birthday,
		IsActive:     false,
	}

	created, err := s.repo.Create(ctx, account)
	if err != nil {
		if errors.Is(err, models.ErrConflict) {
			return nil, models.ErrConflict
		}
		s.logger.Error("failed to create account", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	token, err := s.tm.GenerateActivationToken(created)
	if err != nil {
		s.logger.Error("failed to generate activation token", slog.Int64("account_id", created.ID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	// Fire-and-forget, matching the external mail worker the API never
	// blocks on.
	go func() {
		sendCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := s.mailer.SendActivationEmail(sendCtx, created.ID, created.Email, created.FullName, token); err != nil {
			s.logger.Error("failed to send activation email", slog.Int64("account_id", created.ID), slog.Any("error", err))
		}
	}()

	s.logger.Info("account registered", slog.Int64("account_id", created.ID))
	s.auditLogger.LogAccountAction("account_registered", created.Email, "", nil)

	return created, nil
}

// ActivationResult distinguishes a fresh activation from a repeat visit.
type ActivationResult int

const (
	ActivationInvalid ActivationResult = iota
	Activated
	AlreadyActive
)

// Activate flips the activation flag for a valid (account id, token)
// pair. An already-active account reports AlreadyActive no matter what
// the token looks like, matching the idempotent activation link.
func (s *AuthService) Activate(ctx context.Context, accountID int64, token string) (ActivationResult, error) {
	account, err := s.repo.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return ActivationInvalid, nil
		}
		s.logger.Error("failed to get account for activation", slog.Int64("account_id", accountID), slog.Any("error", err))
		return ActivationInvalid, models.ErrInternalServer
	}

	if account.IsActive {
		return AlreadyActive, nil
	}

	claims, err := s.tm.ValidateToken(token)
	if err != nil || claims.Type != models.TokenTypeActivation || claims.AccountID != account.ID {
		return ActivationInvalid, nil
	}
	if claims.Fingerprint != auth.ActivationFingerprint(account) {
		return ActivationInvalid, nil
	}

	if err := s.repo.Activate(ctx, account.ID); err != nil {
		s.logger.Error("failed to activate account", slog.Int64("account_id", account.ID), slog.Any("error", err))
		return ActivationInvalid, models.ErrInternalServer
	}

	s.logger.Info("account activated", slog.Int64("account_id", account.ID))
	return Activated, nil
}

// GoogleSignIn verifies a Google ID token and resolves it to a local
// account, creating or linking one as needed.
func (s *AuthService) GoogleSignIn(ctx context.Context, credential string) (*AuthResponse, error) {
	if s.googleClientID == "" {
		return nil, models.ErrGoogleNotConfigured
	}

	claims, err := s.googleVerifier.Verify(ctx, credential)
	if err != nil {
		// Verification internals stay hidden; every verifier failure is
		// reported through the one generic variant.
		s.logger.Info("google token verification failed", slog.Any("error", err))
		return nil, models.ErrGoogleVerification
	}

	if !issuerAccepted(claims.Issuer) {
		return nil, models.ErrGoogleIssuerInvalid
	}
	if claims.Audience != s.googleClientID {
		return nil, models.ErrGoogleAudienceInvalid
	}
	if claims.Email == "" {
		return nil, models.ErrGoogleTokenInvalid
	}
	if !claims.EmailVerified {
		return nil, models.ErrGoogleEmailUnverified
	}

	account, err := s.resolveGoogleAccount(ctx, claims)
	if err != nil {
		return nil, err
	}

	resp, err := s.issueTokens(account, true)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if err := s.repo.UpdateLastLogin(ctx, account.ID, now); err != nil {
		s.logger.Warn("failed to update last login", slog.Int64("account_id", account.ID), slog.Any("error", err))
	}

	s.logger.Info("google sign-in succeeded", slog.Int64("account_id", account.ID))
	s.auditLogger.LogAuthAttempt(pkglogger.AuditEvent{
		EventType: "google_signin_success",
		UserID:    account.Email,
		Success:   true,
	})

	return resp, nil
}

func (s *AuthService) resolveGoogleAccount(ctx context.Context, claims *googleauth.Claims) (*models.Account, error) {
	email := strings.ToLower(claims.Email)

	account, err := s.repo.GetByEmail(ctx, email)
	if err != nil && !errors.Is(err, models.ErrNotFound) {
		s.logger.Error("failed to get account by email", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	if account != nil {
		if account.GoogleID != nil && *account.GoogleID != claims.Subject {
			// A second Google identity must not take over an email that is
			// already linked.
			return nil, models.ErrGoogleConflict
		}
		if account.GoogleID == nil {
			linked, err := s.repo.LinkGoogle(ctx, account.ID, claims.Subject)
			if err != nil {
				s.logger.Error("failed to link google account", slog.Int64("account_id", account.ID), slog.Any("error", err))
				return nil, models.ErrInternalServer
			}
			s.logger.Info("google identity linked to existing account", slog.Int64("account_id", account.ID))
			return linked, nil
		}
		return account, nil
	}

	// First sign-in: create an active, google-only account with no usable
	// password.
	googleID := claims.Subject
	created, err := s.repo.Create(ctx, &models.Account{
		Email:        email,
		FullName:     claims.Name,
		IsActive:     true,
		IsGoogleUser: true,
		GoogleID:     &googleID,
	})
	if err != nil {
		s.logger.Error("failed to create google account", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.logger.Info("account created via google sign-in", slog.Int64("account_id", created.ID))
	return created, nil
}

// RequestPasswordReset issues a reset token and emails it. The caller
// distinguishes an unknown email, matching the original contract.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))

	account, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrNotFound
		}
		s.logger.Error("failed to get account for password reset", slog.Any("error", err))
		return models.ErrInternalServer
	}

	token, err := s.tm.GeneratePasswordResetToken(account)
	if err != nil {
		s.logger.Error("failed to generate password reset token", slog.Int64("account_id", account.ID), slog.Any("error", err))
		return models.ErrInternalServer
	}

	go func() {
		sendCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := s.mailer.SendPasswordResetEmail(sendCtx, account.Email, account.FullName, token); err != nil {
			s.logger.Error("failed to send password reset email", slog.Int64("account_id", account.ID), slog.Any("error", err))
		}
	}()

	s.logger.Info("password reset requested", slog.Int64("account_id", account.ID))
	return nil
}

// ConfirmPasswordReset validates a reset token and stores the new
// password. The token fingerprint ties it to the pre-reset credential
// state, so it is single-use.
func (s *AuthService) ConfirmPasswordReset(ctx context.Context, token, newPassword string) error {
	claims, err := s.tm.ValidateToken(token)
	if err != nil || claims.Type != models.TokenTypePasswordReset {
		return models.ErrUnauthorized
	}

	account, err := s.repo.GetByID(ctx, claims.AccountID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrUnauthorized
		}
		s.logger.Error("failed to get account for password reset", slog.Any("error", err))
		return models.ErrInternalServer
	}

	if claims.Fingerprint != auth.PasswordResetFingerprint(account) {
		return models.ErrUnauthorized
	}

	hashed, err := pkgauth.HashPassword(newPassword)
	if err != nil {
		s.logger.Error("failed to hash password", slog.Any("error", err))
		return models.ErrInternalServer
	}

	if err := s.repo.UpdatePassword(ctx, account.ID, hashed); err != nil {
		s.logger.Error("failed to update password", slog.Int64("account_id", account.ID), slog.Any("error", err))
		return models.ErrInternalServer
	}

	s.logger.Info("password reset", slog.Int64("account_id", account.ID))
	s.auditLogger.LogPasswordChange(account.Email, "", true)
	return nil
}

func (s *AuthService) issueTokens(account *models.Account, includeGoogleFlag bool) (*AuthResponse, error) {
	accessToken, err := s.tm.GenerateAccessToken(account.ID, account.Email)
	if err != nil {
		s.logger.Error("failed to generate access token", slog.Int64("account_id", account.ID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	refreshToken, err := s.tm.GenerateRefreshToken(account.ID, account.Email)
	if err != nil {
		s.logger.Error("failed to generate refresh token", slog.Int64("account_id", account.ID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	return &AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		Account:      accountToResponse(account, includeGoogleFlag),
	}, nil
}

func issuerAccepted(issuer string) bool {
	for _, accepted := range googleIssuers {
		if issuer == accepted {
			return true
		}
	}
	return false
}

func accountToResponse(account *models.Account, includeGoogleFlag bool) *AccountResponse {
	resp := &AccountResponse{
		ID:       account.ID,
		Email:    account.Email,
		FullName: account.FullName,
		Phone:    account.Phone,
	}
	if account.Birthday != nil {
		birthday := account.Birthday.Format("2006-01-02")
		resp.Birthday = &birthday
	}
	if includeGoogleFlag {
		isGoogle := account.IsGoogleUser
		resp.IsGoogleUser = &isGoogle
	}
	return resp
}
