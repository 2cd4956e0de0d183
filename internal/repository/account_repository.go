package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/smilemovies/account-service/internal/domain"
	"github.com/smilemovies/account-service/pkg/database"
)

// accountRepository implements AccountRepository interface
type accountRepository struct {
	db *database.Postgres
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(db *database.Postgres) AccountRepository {
	return &accountRepository{db: db}
}

const accountColumns = `id, email, password_hash, first_name, last_name, profile_pic,
		verified, banned, admin, login_type, created_at, updated_at, last_login_at`

// Create creates a new account in the database
func (r *accountRepository) Create(ctx context.Context, account *domain.Account) error {
	query := `
		INSERT INTO accounts (id, email, password_hash, first_name, last_name, profile_pic,
			verified, banned, admin, login_type, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	if account.ID == "" {
		account.ID = uuid.New().String()
	}

	now := time.Now()
	if account.CreatedAt.IsZero() {
		account.CreatedAt = now
	}
	if account.UpdatedAt.IsZero() {
		account.UpdatedAt = now
	}

	_, err := r.db.DB.ExecContext(ctx, query,
		account.ID,
		account.Email,
		account.PasswordHash,
		account.FirstName,
		account.LastName,
		account.ProfilePic,
		account.Verified,
		account.Banned,
		account.Admin,
		account.LoginType,
		account.CreatedAt,
		account.UpdatedAt,
	)

	if err != nil {
		// Unique constraint violation means the email is taken
		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Code == "23505" {
				return fmt.Errorf("account with email %s: %w", account.Email, domain.ErrConflict)
			}
		}
		return fmt.Errorf("failed to create account: %w", err)
	}

	return nil
}

// GetByEmail retrieves an account by email
func (r *accountRepository) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE email = $1`
	return r.scanAccount(r.db.DB.QueryRowContext(ctx, query, email), "email "+email)
}

// GetByID retrieves an account by ID. A syntactically invalid id reads as
// not found rather than a uuid parse error from the database.
func (r *accountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("account with id %s: %w", id, domain.ErrNotFound)
	}
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`
	return r.scanAccount(r.db.DB.QueryRowContext(ctx, query, id), "id "+id)
}

// List retrieves all accounts ordered by creation time
func (r *accountRepository) List(ctx context.Context) ([]*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts ORDER BY created_at`

	rows, err := r.db.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []*domain.Account
	for rows.Next() {
		account := &domain.Account{}
		var lastLoginAt sql.NullTime

		err := rows.Scan(
			&account.ID,
			&account.Email,
			&account.PasswordHash,
			&account.FirstName,
			&account.LastName,
			&account.ProfilePic,
			&account.Verified,
			&account.Banned,
			&account.Admin,
			&account.LoginType,
			&account.CreatedAt,
			&account.UpdatedAt,
			&lastLoginAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}

		if lastLoginAt.Valid {
			account.LastLoginAt = &lastLoginAt.Time
		}

		accounts = append(accounts, account)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate accounts: %w", err)
	}

	return accounts, nil
}

// Update updates an existing account's profile fields and flags.
// The email uniqueness constraint is re-checked by the database.
func (r *accountRepository) Update(ctx context.Context, account *domain.Account) error {
	query := `
		UPDATE accounts
		SET email = $2, first_name = $3, last_name = $4, profile_pic = $5,
			verified = $6, banned = $7, admin = $8, updated_at = $9
		WHERE id = $1
	`

	result, err := r.db.DB.ExecContext(ctx, query,
		account.ID,
		account.Email,
		account.FirstName,
		account.LastName,
		account.ProfilePic,
		account.Verified,
		account.Banned,
		account.Admin,
		time.Now(),
	)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Code == "23505" {
				return fmt.Errorf("account with email %s: %w", account.Email, domain.ErrConflict)
			}
		}
		return fmt.Errorf("failed to update account: %w", err)
	}

	return r.requireRowsAffected(result, account.ID)
}

// UpdateLastLogin updates the last login timestamp for an account
func (r *accountRepository) UpdateLastLogin(ctx context.Context, accountID string) error {
	query := `UPDATE accounts SET last_login_at = $1 WHERE id = $2`

	result, err := r.db.DB.ExecContext(ctx, query, time.Now(), accountID)
	if err != nil {
		return fmt.Errorf("failed to update last login: %w", err)
	}

	return r.requireRowsAffected(result, accountID)
}

// Delete removes an account. Devices and tokens cascade in the schema.
func (r *accountRepository) Delete(ctx context.Context, accountID string) error {
	if _, err := uuid.Parse(accountID); err != nil {
		return fmt.Errorf("account with id %s: %w", accountID, domain.ErrNotFound)
	}
	query := `DELETE FROM accounts WHERE id = $1`

	result, err := r.db.DB.ExecContext(ctx, query, accountID)
	if err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}

	return r.requireRowsAffected(result, accountID)
}

func (r *accountRepository) scanAccount(row *sql.Row, desc string) (*domain.Account, error) {
	account := &domain.Account{}
	var lastLoginAt sql.NullTime

	err := row.Scan(
		&account.ID,
		&account.Email,
		&account.PasswordHash,
		&account.FirstName,
		&account.LastName,
		&account.ProfilePic,
		&account.Verified,
		&account.Banned,
		&account.Admin,
		&account.LoginType,
		&account.CreatedAt,
		&account.UpdatedAt,
		&lastLoginAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("account with %s: %w", desc, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get account by %s: %w", desc, err)
	}

	if lastLoginAt.Valid {
		account.LastLoginAt = &lastLoginAt.Time
	}

	return account, nil
}

func (r *accountRepository) requireRowsAffected(result sql.Result, accountID string) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("account with id %s: %w", accountID, domain.ErrNotFound)
	}

	return nil
}
