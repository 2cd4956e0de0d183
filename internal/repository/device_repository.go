package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/smilemovies/account-service/internal/domain"
	"github.com/smilemovies/account-service/pkg/database"
)

// deviceRepository implements DeviceRepository interface
type deviceRepository struct {
	db *database.Postgres
}

// NewDeviceRepository creates a new device repository
func NewDeviceRepository(db *database.Postgres) DeviceRepository {
	return &deviceRepository{db: db}
}

// Create appends a device to the account's list. Duplicate device ids within
// one account map to ErrConflict.
func (r *deviceRepository) Create(ctx context.Context, device *domain.Device) error {
	query := `
		INSERT INTO devices (account_id, device_id, name, type, trusted, created_at, last_login_at, location)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	now := time.Now()
	if device.CreatedAt.IsZero() {
		device.CreatedAt = now
	}
	if device.LastLoginAt.IsZero() {
		device.LastLoginAt = now
	}

	location, err := marshalLocation(device.Location)
	if err != nil {
		return err
	}

	_, err = r.db.DB.ExecContext(ctx, query,
		device.AccountID,
		device.DeviceID,
		device.Name,
		device.Type,
		device.Trusted,
		device.CreatedAt,
		device.LastLoginAt,
		location,
	)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			switch pqErr.Code {
			case "23505": // duplicate (account_id, device_id)
				return fmt.Errorf("device %s: %w", device.DeviceID, domain.ErrConflict)
			case "23503": // account row is gone
				return fmt.Errorf("account with id %s: %w", device.AccountID, domain.ErrNotFound)
			}
		}
		return fmt.Errorf("failed to create device: %w", err)
	}

	return nil
}

// Get retrieves one device from an account's list
func (r *deviceRepository) Get(ctx context.Context, accountID, deviceID string) (*domain.Device, error) {
	query := `
		SELECT account_id, device_id, name, type, trusted, created_at, last_login_at, location
		FROM devices
		WHERE account_id = $1 AND device_id = $2
	`

	device := &domain.Device{}
	var location []byte

	err := r.db.DB.QueryRowContext(ctx, query, accountID, deviceID).Scan(
		&device.AccountID,
		&device.DeviceID,
		&device.Name,
		&device.Type,
		&device.Trusted,
		&device.CreatedAt,
		&device.LastLoginAt,
		&location,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("device with id %s: %w", deviceID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get device: %w", err)
	}

	if err := unmarshalLocation(location, device); err != nil {
		return nil, err
	}

	return device, nil
}

// ListByAccount retrieves an account's devices in insertion order
func (r *deviceRepository) ListByAccount(ctx context.Context, accountID string) ([]*domain.Device, error) {
	query := `
		SELECT account_id, device_id, name, type, trusted, created_at, last_login_at, location
		FROM devices
		WHERE account_id = $1
		ORDER BY created_at, device_id
	`

	rows, err := r.db.DB.QueryContext(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to list devices: %w", err)
	}
	defer rows.Close()

	var devices []*domain.Device
	for rows.Next() {
		device := &domain.Device{}
		var location []byte

		err := rows.Scan(
			&device.AccountID,
			&device.DeviceID,
			&device.Name,
			&device.Type,
			&device.Trusted,
			&device.CreatedAt,
			&device.LastLoginAt,
			&location,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan device: %w", err)
		}

		if err := unmarshalLocation(location, device); err != nil {
			return nil, err
		}

		devices = append(devices, device)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate devices: %w", err)
	}

	return devices, nil
}

// UpdateLastLogin updates lastLogin and, when provided, the location snapshot
// of an existing device
func (r *deviceRepository) UpdateLastLogin(ctx context.Context, accountID, deviceID string, location *domain.Location) error {
	query := `
		UPDATE devices
		SET last_login_at = $3, location = COALESCE($4, location)
		WHERE account_id = $1 AND device_id = $2
	`

	loc, err := marshalLocation(location)
	if err != nil {
		return err
	}

	result, err := r.db.DB.ExecContext(ctx, query, accountID, deviceID, time.Now(), loc)
	if err != nil {
		return fmt.Errorf("failed to update device last login: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("device with id %s: %w", deviceID, domain.ErrNotFound)
	}

	return nil
}

// Delete removes a device from the account's list. Removing an absent
// device succeeds; the postcondition already holds.
func (r *deviceRepository) Delete(ctx context.Context, accountID, deviceID string) error {
	query := `DELETE FROM devices WHERE account_id = $1 AND device_id = $2`

	_, err := r.db.DB.ExecContext(ctx, query, accountID, deviceID)
	if err != nil {
		return fmt.Errorf("failed to delete device: %w", err)
	}

	return nil
}

func marshalLocation(location *domain.Location) ([]byte, error) {
	if location == nil {
		return nil, nil
	}

	data, err := json.Marshal(location)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal device location: %w", err)
	}

	return data, nil
}

func unmarshalLocation(data []byte, device *domain.Device) error {
	if len(data) == 0 {
		return nil
	}

	location := &domain.Location{}
	if err := json.Unmarshal(data, location); err != nil {
		return fmt.Errorf("failed to unmarshal device location: %w", err)
	}

	device.Location = location
	return nil
}
