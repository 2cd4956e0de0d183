package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/smilemovies/account-service/internal/domain"
	"github.com/smilemovies/account-service/pkg/database"
)

// txRunner implements TxRunner on database/sql transactions
type txRunner struct {
	db *database.Postgres
}

// NewTxRunner creates a transaction runner over the shared connection pool
func NewTxRunner(db *database.Postgres) TxRunner {
	return &txRunner{db: db}
}

// WithinTx runs fn inside a single database transaction. All TxOps mutations
// staged by fn commit together; any error rolls the whole set back.
func (r *txRunner) WithinTx(ctx context.Context, fn func(ops TxOps) error) error {
	tx, err := r.db.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(&txOps{tx: tx}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("rollback failed: %v (after: %w)", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// txOps implements TxOps on an open *sql.Tx
type txOps struct {
	tx *sql.Tx
}

func (o *txOps) exec(ctx context.Context, what, query string, args ...any) error {
	result, err := o.tx.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to %s: %w", what, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("%s: %w", what, domain.ErrNotFound)
	}

	return nil
}

// ConsumeToken marks a token consumed. Consuming an already consumed or
// deleted token fails, aborting the transaction.
func (o *txOps) ConsumeToken(ctx context.Context, tokenID string) error {
	query := `UPDATE tokens SET consumed = TRUE WHERE id = $1 AND NOT consumed`
	return o.exec(ctx, "consume token", query, tokenID)
}

// SetDeviceTrusted flips a device from provisional to trusted
func (o *txOps) SetDeviceTrusted(ctx context.Context, accountID, deviceID string) error {
	query := `UPDATE devices SET trusted = TRUE WHERE account_id = $1 AND device_id = $2`
	return o.exec(ctx, "trust device", query, accountID, deviceID)
}

// SetAccountVerified marks an account's email verified
func (o *txOps) SetAccountVerified(ctx context.Context, accountID string) error {
	query := `UPDATE accounts SET verified = TRUE, updated_at = $2 WHERE id = $1`
	return o.exec(ctx, "verify account", query, accountID, time.Now())
}

// SetPasswordHash replaces an account's password hash
func (o *txOps) SetPasswordHash(ctx context.Context, accountID, passwordHash string) error {
	query := `UPDATE accounts SET password_hash = $2, updated_at = $3 WHERE id = $1`
	return o.exec(ctx, "update password", query, accountID, passwordHash, time.Now())
}
