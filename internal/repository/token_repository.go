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

// tokenRepository implements TokenRepository interface
type tokenRepository struct {
	db *database.Postgres
}

// NewTokenRepository creates a new token repository
func NewTokenRepository(db *database.Postgres) TokenRepository {
	return &tokenRepository{db: db}
}

// Create creates a new single-use token in the database
func (r *tokenRepository) Create(ctx context.Context, token *domain.Token) error {
	query := `
		INSERT INTO tokens (id, account_id, purpose, device_id, value, created_at, consumed)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	if token.ID == "" {
		token.ID = uuid.New().String()
	}

	if token.CreatedAt.IsZero() {
		token.CreatedAt = time.Now()
	}

	_, err := r.db.DB.ExecContext(ctx, query,
		token.ID,
		token.AccountID,
		token.Purpose,
		token.DeviceID,
		token.Value,
		token.CreatedAt,
		token.Consumed,
	)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			switch pqErr.Code {
			case "23505": // an unconsumed token for this scope already exists
				return fmt.Errorf("unconsumed %s token for account %s: %w", token.Purpose, token.AccountID, domain.ErrConflict)
			case "23503":
				return fmt.Errorf("account with id %s: %w", token.AccountID, domain.ErrNotFound)
			}
		}
		return fmt.Errorf("failed to create token: %w", err)
	}

	return nil
}

// Find retrieves an unconsumed token matching the query. Consumed tokens are
// never returned; a replayed value maps to ErrNotFound. The account scope is
// mandatory, a token can never be looked up across accounts.
func (r *tokenRepository) Find(ctx context.Context, q TokenQuery) (*domain.Token, error) {
	if q.AccountID == "" {
		return nil, fmt.Errorf("%s token without account scope: %w", q.Purpose, domain.ErrNotFound)
	}

	query := `
		SELECT id, account_id, purpose, device_id, value, created_at, consumed
		FROM tokens
		WHERE purpose = $1 AND value = $2 AND NOT consumed
			AND account_id = $3::uuid
			AND ($4::text IS NULL OR device_id = $4)
	`

	token := &domain.Token{}
	var deviceID sql.NullString

	err := r.db.DB.QueryRowContext(ctx, query, q.Purpose, q.Value, q.AccountID, q.DeviceID).Scan(
		&token.ID,
		&token.AccountID,
		&token.Purpose,
		&deviceID,
		&token.Value,
		&token.CreatedAt,
		&token.Consumed,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s token: %w", q.Purpose, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find token: %w", err)
	}

	if deviceID.Valid {
		token.DeviceID = &deviceID.String
	}

	return token, nil
}

// DeleteUnconsumed removes any unconsumed token for the (account, purpose
// [, device]) scope. Issuing a replacement token calls this first so that at
// most one unconsumed token exists per scope.
func (r *tokenRepository) DeleteUnconsumed(ctx context.Context, accountID string, purpose domain.TokenPurpose, deviceID *string) error {
	query := `
		DELETE FROM tokens
		WHERE account_id = $1 AND purpose = $2 AND NOT consumed
			AND ($3::text IS NULL OR device_id = $3)
	`

	_, err := r.db.DB.ExecContext(ctx, query, accountID, purpose, deviceID)
	if err != nil {
		return fmt.Errorf("failed to delete unconsumed tokens: %w", err)
	}

	return nil
}
