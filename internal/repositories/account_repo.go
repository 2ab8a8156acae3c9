package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/inkwell-labs/bookstore-api/internal/database"
	"github.com/inkwell-labs/bookstore-api/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type AccountRepository struct {
	pool *pgxpool.Pool
}

func NewAccountRepository(db *database.DB) *AccountRepository {
	return &AccountRepository{pool: db.Pool}
}

// rowScanner interface for scanning rows (supports both single row and multiple rows)
type rowScanner interface {
	Scan(dest ...interface{}) error
}

const accountColumns = `id, email, password_hash, full_name, phone, birthday, is_active, is_admin, is_google_user, google_id, last_login, date_joined`

// scanAccountRow handles nullable fields and populates an Account model from a database row
func scanAccountRow(scanner rowScanner) (*models.Account, error) {
	var account models.Account
	var passwordHash *string

	err := scanner.Scan(
		&account.ID, &account.Email, &passwordHash, &account.FullName,
		&account.Phone, &account.Birthday, &account.IsActive, &account.IsAdmin,
		&account.IsGoogleUser, &account.GoogleID, &account.LastLogin, &account.DateJoined,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	if passwordHash != nil {
		account.PasswordHash = *passwordHash
	}

	return &account, nil
}

func scanAccountRows(rows pgx.Rows) ([]*models.Account, error) {
	defer rows.Close()

	accounts := make([]*models.Account, 0)

	for rows.Next() {
		account, err := scanAccountRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, account)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return accounts, nil
}

func (r *AccountRepository) GetByID(ctx context.Context, id int64) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`

	return scanAccountRow(r.pool.QueryRow(ctx, query, id))
}

func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE email = $1`

	return scanAccountRow(r.pool.QueryRow(ctx, query, email))
}

func (r *AccountRepository) Create(ctx context.Context, account *models.Account) (*models.Account, error) {
	account.DateJoined = time.Now()

	query := `
		INSERT INTO accounts (email, password_hash, full_name, phone, birthday, is_active, is_admin, is_google_user, google_id, date_joined)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING ` + accountColumns

	var passwordHash *string
	if account.PasswordHash != "" {
		passwordHash = &account.PasswordHash
	}

	return scanAccountRow(r.pool.QueryRow(ctx, query,
		account.Email, passwordHash, account.FullName, account.Phone,
		account.Birthday, account.IsActive, account.IsAdmin,
		account.IsGoogleUser, account.GoogleID, account.DateJoined,
	))
}

func (r *AccountRepository) List(ctx context.Context, limit, offset int) ([]*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts ORDER BY date_joined DESC LIMIT $1 OFFSET $2`

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}

	return scanAccountRows(rows)
}

// Activate flips the activation flag. Idempotent.
func (r *AccountRepository) Activate(ctx context.Context, id int64) error {
	result, err := r.pool.Exec(ctx, `UPDATE accounts SET is_active = TRUE WHERE id = $1`, id)
	if err != nil {
		return database.MapPostgresError(err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (r *AccountRepository) UpdateLastLogin(ctx context.Context, id int64, at time.Time) error {
	result, err := r.pool.Exec(ctx, `UPDATE accounts SET last_login = $1 WHERE id = $2`, at, id)
	if err != nil {
		return database.MapPostgresError(err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// LinkGoogle marks an existing account as Google-linked and stores the
// provider subject id.
func (r *AccountRepository) LinkGoogle(ctx context.Context, id int64, googleID string) (*models.Account, error) {
	query := `
		UPDATE accounts SET is_google_user = TRUE, google_id = $1, is_active = TRUE
		WHERE id = $2
		RETURNING ` + accountColumns

	return scanAccountRow(r.pool.QueryRow(ctx, query, googleID, id))
}

func (r *AccountRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	result, err := r.pool.Exec(ctx, `UPDATE accounts SET password_hash = $1 WHERE id = $2`, passwordHash, id)
	if err != nil {
		return database.MapPostgresError(err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}
