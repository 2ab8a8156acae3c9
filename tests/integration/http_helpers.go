package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/inkwell-labs/bookstore-api/internal/auth"
	"github.com/inkwell-labs/bookstore-api/internal/database"
	"github.com/inkwell-labs/bookstore-api/internal/googleauth"
	"github.com/inkwell-labs/bookstore-api/internal/handlers"
	"github.com/inkwell-labs/bookstore-api/internal/models"
	"github.com/inkwell-labs/bookstore-api/internal/repositories"
	"github.com/inkwell-labs/bookstore-api/internal/routes"
	"github.com/inkwell-labs/bookstore-api/internal/services"
	pkghttp "github.com/inkwell-labs/bookstore-api/pkg/http"
	pkglogger "github.com/inkwell-labs/bookstore-api/pkg/logger"
)

// SentEmail represents a captured email message. AccountID is set only
// for activation emails, whose links carry the account id.
type SentEmail struct {
	To        string
	AccountID int64
	Token     string
	Kind      string // "activation" or "password_reset"
}

// MockMailer captures sent emails for test assertions
type MockMailer struct {
	mu         sync.Mutex
	SentEmails []SentEmail
}

func (m *MockMailer) SendActivationEmail(ctx context.Context, accountID int64, email, fullName, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SentEmails = append(m.SentEmails, SentEmail{To: email, AccountID: accountID, Token: token, Kind: "activation"})
	return nil
}

func (m *MockMailer) SendPasswordResetEmail(ctx context.Context, email, fullName, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SentEmails = append(m.SentEmails, SentEmail{To: email, Token: token, Kind: "password_reset"})
	return nil
}

// WaitForEmail polls for the next captured email; signup sends in the
// background so tests must not assert immediately.
func (m *MockMailer) WaitForEmail(timeout time.Duration) *SentEmail {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		m.mu.Lock()
		if len(m.SentEmails) > 0 {
			email := m.SentEmails[len(m.SentEmails)-1]
			m.mu.Unlock()
			return &email
		}
		m.mu.Unlock()
		time.Sleep(10 * time.Millisecond)
	}
	return nil
}

// memoryAttemptStore is an in-process stand-in for the redis counter so
// integration tests only need the postgres container.
type memoryAttemptStore struct {
	mu     sync.Mutex
	counts map[string]int64
}

func newMemoryAttemptStore() *memoryAttemptStore {
	return &memoryAttemptStore{counts: make(map[string]int64)}
}

func (s *memoryAttemptStore) Increment(_ context.Context, email, ip string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counts[email+"|"+ip]++
	return s.counts[email+"|"+ip], nil
}

func (s *memoryAttemptStore) Get(_ context.Context, email, ip string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counts[email+"|"+ip], nil
}

func (s *memoryAttemptStore) Clear(_ context.Context, email, ip string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.counts, email+"|"+ip)
	return nil
}

// stubCaptcha accepts a single magic token
type stubCaptcha struct{}

func (stubCaptcha) Verify(_ context.Context, token string) bool { return token == "valid-captcha" }

// stubGoogleVerifier returns canned claims keyed by credential
type stubGoogleVerifier struct {
	mu     sync.Mutex
	claims map[string]*googleauth.Claims
}

func (v *stubGoogleVerifier) Register(credential string, claims *googleauth.Claims) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.claims == nil {
		v.claims = make(map[string]*googleauth.Claims)
	}
	v.claims[credential] = claims
}

func (v *stubGoogleVerifier) Verify(_ context.Context, credential string) (*googleauth.Claims, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if claims, ok := v.claims[credential]; ok {
		return claims, nil
	}
	return nil, fmt.Errorf("unknown credential")
}

const (
	TestJWTSecret      = "test-secret-32-characters-long-ok"
	TestGoogleClientID = "integration-test.apps.googleusercontent.com"
)

// TestServer wraps httptest.Server with database and all dependencies
type TestServer struct {
	Server         *httptest.Server
	DB             *database.DB
	Mailer         *MockMailer
	GoogleVerifier *stubGoogleVerifier
	TokenManager   *auth.TokenManager
}

// NewTestServer initializes a complete HTTP server with real database,
// in-memory attempt counter, and mocked external services.
func NewTestServer(db *database.DB) *TestServer {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelWarn}))

	accountRepo := repositories.NewAccountRepository(db)
	bookRepo := repositories.NewBookRepository(db)
	categoryRepo := repositories.NewCategoryRepository(db)
	commentRepo := repositories.NewCommentRepository(db)

	tokenManager := auth.NewTokenManager(
		TestJWTSecret,
		15*time.Minute,
		7*24*time.Hour,
		24*time.Hour,
		time.Hour,
		time.Minute,
	)

	mailer := &MockMailer{}
	googleVerifier := &stubGoogleVerifier{}
	attempts := newMemoryAttemptStore()
	auditLogger := pkglogger.NewAuditLogger(logger)

	authService := services.NewAuthService(
		accountRepo,
		attempts,
		stubCaptcha{},
		googleVerifier,
		TestGoogleClientID,
		tokenManager,
		mailer,
		logger,
		auditLogger,
		3,
	)
	bookService := services.NewBookService(bookRepo, logger)
	categoryService := services.NewCategoryService(categoryRepo, logger)
	commentService := services.NewCommentService(commentRepo, bookRepo, logger)

	cookieCfg := auth.CookieConfig{Domain: "", Secure: false}
	authHandler := handlers.NewAuthHandler(authService, cookieCfg, &pkghttp.IPConfig{})
	bookHandler := handlers.NewBookHandler(bookService)
	categoryHandler := handlers.NewCategoryHandler(categoryService)
	commentHandler := handlers.NewCommentHandler(commentService, accountRepo)

	router := chi.NewRouter()
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	routes.RegisterRoutes(router, authHandler, bookHandler, categoryHandler, commentHandler, tokenManager, accountRepo)

	return &TestServer{
		Server:         httptest.NewServer(router),
		DB:             db,
		Mailer:         mailer,
		GoogleVerifier: googleVerifier,
		TokenManager:   tokenManager,
	}
}

// Close shuts down the test server
func (ts *TestServer) Close() {
	ts.Server.Close()
}

// AccessTokenFor mints a valid access token for the account
func (ts *TestServer) AccessTokenFor(account *models.Account) (string, error) {
	return ts.TokenManager.GenerateAccessToken(account.ID, account.Email)
}

// DoJSON sends a JSON request and decodes the JSON response body into out
// (when out is non-nil). Extra headers ride in headers.
func (ts *TestServer) DoJSON(method, path string, body interface{}, headers map[string]string, out interface{}) (*http.Response, error) {
	var reqBody io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequest(method, ts.Server.URL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return nil, fmt.Errorf("failed to decode response body %q: %w", raw, err)
		}
	}

	return resp, nil
}

// RefreshCookie extracts the refresh_token cookie from a response, or
// nil when absent.
func RefreshCookie(resp *http.Response) *http.Cookie {
	for _, cookie := range resp.Cookies() {
		if cookie.Name == "refresh_token" {
			return cookie
		}
	}
	return nil
}
