package services

import (
	"context"
	"time"

	"github.com/inkwell-labs/bookstore-api/internal/googleauth"
	"github.com/inkwell-labs/bookstore-api/internal/models"
	"github.com/inkwell-labs/bookstore-api/internal/repositories"
)

// MockAccountRepository implements AccountRepository for testing
type MockAccountRepository struct {
	GetByIDFunc         func(ctx context.Context, id int64) (*models.Account, error)
	GetByEmailFunc      func(ctx context.Context, email string) (*models.Account, error)
	CreateFunc          func(ctx context.Context, account *models.Account) (*models.Account, error)
	ActivateFunc        func(ctx context.Context, id int64) error
	UpdateLastLoginFunc func(ctx context.Context, id int64, at time.Time) error
	LinkGoogleFunc      func(ctx context.Context, id int64, googleID string) (*models.Account, error)
	UpdatePasswordFunc  func(ctx context.Context, id int64, passwordHash string) error
}

func (m *MockAccountRepository) GetByID(ctx context.Context, id int64) (*models.Account, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockAccountRepository) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	if m.GetByEmailFunc != nil {
		return m.GetByEmailFunc(ctx, email)
	}
	return nil, models.ErrNotFound
}

func (m *MockAccountRepository) Create(ctx context.Context, account *models.Account) (*models.Account, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, account)
	}
	return nil, models.ErrInternalServer
}

func (m *MockAccountRepository) Activate(ctx context.Context, id int64) error {
	if m.ActivateFunc != nil {
		return m.ActivateFunc(ctx, id)
	}
	return nil
}

func (m *MockAccountRepository) UpdateLastLogin(ctx context.Context, id int64, at time.Time) error {
	if m.UpdateLastLoginFunc != nil {
		return m.UpdateLastLoginFunc(ctx, id, at)
	}
	return nil
}

func (m *MockAccountRepository) LinkGoogle(ctx context.Context, id int64, googleID string) (*models.Account, error) {
	if m.LinkGoogleFunc != nil {
		return m.LinkGoogleFunc(ctx, id, googleID)
	}
	return nil, models.ErrInternalServer
}

func (m *MockAccountRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	if m.UpdatePasswordFunc != nil {
		return m.UpdatePasswordFunc(ctx, id, passwordHash)
	}
	return nil
}

// MockFailedAttemptStore implements FailedAttemptStore for testing. The
// zero value behaves like an empty counter; InMemoryAttempts gives a
// real counter when a test needs increments to accumulate.
type MockFailedAttemptStore struct {
	IncrementFunc func(ctx context.Context, email, ipAddress string) (int64, error)
	GetFunc       func(ctx context.Context, email, ipAddress string) (int64, error)
	ClearFunc     func(ctx context.Context, email, ipAddress string) error
}

func (m *MockFailedAttemptStore) Increment(ctx context.Context, email, ipAddress string) (int64, error) {
	if m.IncrementFunc != nil {
		return m.IncrementFunc(ctx, email, ipAddress)
	}
	return 1, nil
}

func (m *MockFailedAttemptStore) Get(ctx context.Context, email, ipAddress string) (int64, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, email, ipAddress)
	}
	return 0, nil
}

func (m *MockFailedAttemptStore) Clear(ctx context.Context, email, ipAddress string) error {
	if m.ClearFunc != nil {
		return m.ClearFunc(ctx, email, ipAddress)
	}
	return nil
}

// InMemoryAttempts is a map-backed FailedAttemptStore for tests that
// exercise the counter across multiple login attempts.
type InMemoryAttempts struct {
	counts map[string]int64
}

func NewInMemoryAttempts() *InMemoryAttempts {
	return &InMemoryAttempts{counts: make(map[string]int64)}
}

func (s *InMemoryAttempts) key(email, ip string) string { return email + "|" + ip }

func (s *InMemoryAttempts) Increment(_ context.Context, email, ip string) (int64, error) {
	s.counts[s.key(email, ip)]++
	return s.counts[s.key(email, ip)], nil
}

func (s *InMemoryAttempts) Get(_ context.Context, email, ip string) (int64, error) {
	return s.counts[s.key(email, ip)], nil
}

func (s *InMemoryAttempts) Clear(_ context.Context, email, ip string) error {
	delete(s.counts, s.key(email, ip))
	return nil
}

// MockCaptchaVerifier implements captcha.Verifier for testing
type MockCaptchaVerifier struct {
	VerifyFunc func(ctx context.Context, token string) bool
}

func (m *MockCaptchaVerifier) Verify(ctx context.Context, token string) bool {
	if m.VerifyFunc != nil {
		return m.VerifyFunc(ctx, token)
	}
	return true
}

// MockGoogleVerifier implements googleauth.Verifier for testing
type MockGoogleVerifier struct {
	VerifyFunc func(ctx context.Context, credential string) (*googleauth.Claims, error)
}

func (m *MockGoogleVerifier) Verify(ctx context.Context, credential string) (*googleauth.Claims, error) {
	if m.VerifyFunc != nil {
		return m.VerifyFunc(ctx, credential)
	}
	return nil, models.ErrGoogleTokenInvalid
}

// MockMailer implements ActivationMailer for testing
type MockMailer struct {
	SendActivationEmailFunc    func(ctx context.Context, accountID int64, email, fullName, token string) error
	SendPasswordResetEmailFunc func(ctx context.Context, email, fullName, token string) error
}

func (m *MockMailer) SendActivationEmail(ctx context.Context, accountID int64, email, fullName, token string) error {
	if m.SendActivationEmailFunc != nil {
		return m.SendActivationEmailFunc(ctx, accountID, email, fullName, token)
	}
	return nil
}

func (m *MockMailer) SendPasswordResetEmail(ctx context.Context, email, fullName, token string) error {
	if m.SendPasswordResetEmailFunc != nil {
		return m.SendPasswordResetEmailFunc(ctx, email, fullName, token)
	}
	return nil
}

// MockBookRepository implements BookRepository for testing
type MockBookRepository struct {
	GetByIDFunc func(ctx context.Context, id int64) (*models.Book, error)
	ListFunc    func(ctx context.Context, filter repositories.BookFilter, limit, offset int) ([]*models.Book, int, error)
	CreateFunc  func(ctx context.Context, book *models.Book) (*models.Book, error)
	UpdateFunc  func(ctx context.Context, id int64, book *models.Book) (*models.Book, error)
	DeleteFunc  func(ctx context.Context, id int64) error
}

func (m *MockBookRepository) GetByID(ctx context.Context, id int64) (*models.Book, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockBookRepository) List(ctx context.Context, filter repositories.BookFilter, limit, offset int) ([]*models.Book, int, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, filter, limit, offset)
	}
	return []*models.Book{}, 0, nil
}

func (m *MockBookRepository) Create(ctx context.Context, book *models.Book) (*models.Book, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, book)
	}
	return nil, models.ErrInternalServer
}

func (m *MockBookRepository) Update(ctx context.Context, id int64, book *models.Book) (*models.Book, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, id, book)
	}
	return nil, models.ErrInternalServer
}

func (m *MockBookRepository) Delete(ctx context.Context, id int64) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

// MockCategoryRepository implements CategoryRepository for testing
type MockCategoryRepository struct {
	GetByIDFunc   func(ctx context.Context, id int64) (*models.Category, error)
	GetByNameFunc func(ctx context.Context, name string) (*models.Category, error)
	ListFunc      func(ctx context.Context) ([]*models.Category, error)
	CreateFunc    func(ctx context.Context, category *models.Category) (*models.Category, error)
	UpdateFunc    func(ctx context.Context, id int64, category *models.Category) (*models.Category, error)
	DeleteFunc    func(ctx context.Context, id int64) error
}

func (m *MockCategoryRepository) GetByID(ctx context.Context, id int64) (*models.Category, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockCategoryRepository) GetByName(ctx context.Context, name string) (*models.Category, error) {
	if m.GetByNameFunc != nil {
		return m.GetByNameFunc(ctx, name)
	}
	return nil, models.ErrNotFound
}

func (m *MockCategoryRepository) List(ctx context.Context) ([]*models.Category, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	return []*models.Category{}, nil
}

func (m *MockCategoryRepository) Create(ctx context.Context, category *models.Category) (*models.Category, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, category)
	}
	return nil, models.ErrInternalServer
}

func (m *MockCategoryRepository) Update(ctx context.Context, id int64, category *models.Category) (*models.Category, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, id, category)
	}
	return nil, models.ErrInternalServer
}

func (m *MockCategoryRepository) Delete(ctx context.Context, id int64) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

// MockCommentStore implements CommentStore for testing
type MockCommentStore struct {
	GetByIDFunc             func(ctx context.Context, id int64) (*models.Comment, error)
	GetByAccountAndBookFunc func(ctx context.Context, accountID, bookID int64) (*models.Comment, error)
	ListByBookFunc          func(ctx context.Context, bookID int64) ([]*models.Comment, error)
	CreateFunc              func(ctx context.Context, comment *models.Comment) (*models.Comment, error)
	UpdateFunc              func(ctx context.Context, id int64, rating int, content *string) (*models.Comment, error)
	DeleteFunc              func(ctx context.Context, id int64) error
}

func (m *MockCommentStore) GetByID(ctx context.Context, id int64) (*models.Comment, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockCommentStore) GetByAccountAndBook(ctx context.Context, accountID, bookID int64) (*models.Comment, error) {
	if m.GetByAccountAndBookFunc != nil {
		return m.GetByAccountAndBookFunc(ctx, accountID, bookID)
	}
	return nil, models.ErrNotFound
}

func (m *MockCommentStore) ListByBook(ctx context.Context, bookID int64) ([]*models.Comment, error) {
	if m.ListByBookFunc != nil {
		return m.ListByBookFunc(ctx, bookID)
	}
	return []*models.Comment{}, nil
}

func (m *MockCommentStore) Create(ctx context.Context, comment *models.Comment) (*models.Comment, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, comment)
	}
	return nil, models.ErrInternalServer
}

func (m *MockCommentStore) Update(ctx context.Context, id int64, rating int, content *string) (*models.Comment, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, id, rating, content)
	}
	return nil, models.ErrInternalServer
}

func (m *MockCommentStore) Delete(ctx context.Context, id int64) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

// NewTestAccount returns an active account with a bcrypt hash of the
// given password already applied by the caller.
func NewTestAccount(id int64, email, passwordHash string) *models.Account {
	return &models.Account{
		ID:           id,
		Email:        email,
		PasswordHash: passwordHash,
		FullName:     "Test Account",
		IsActive:     true,
		DateJoined:   time.Now(),
	}
}
