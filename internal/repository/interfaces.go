package repository

import (
	"context"

	"github.com/smilemovies/account-service/internal/domain"
)

// AccountRepository defines methods for account record operations
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	GetByID(ctx context.Context, id string) (*domain.Account, error)
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
	List(ctx context.Context) ([]*domain.Account, error)
	Update(ctx context.Context, account *domain.Account) error
	UpdateLastLogin(ctx context.Context, accountID string) error
	Delete(ctx context.Context, accountID string) error
}

// DeviceRepository defines methods for an account's device list.
// Devices are keyed by (account id, device id); listing preserves
// insertion order.
type DeviceRepository interface {
	ListByAccount(ctx context.Context, accountID string) ([]*domain.Device, error)
	Get(ctx context.Context, accountID, deviceID string) (*domain.Device, error)
	Create(ctx context.Context, device *domain.Device) error
	UpdateLastLogin(ctx context.Context, accountID, deviceID string, location *domain.Location) error
	Delete(ctx context.Context, accountID, deviceID string) error
}

// TokenQuery selects an unconsumed token. AccountID is required; callers
// that start from an activation link resolve the account by email first.
// DeviceID additionally scopes activate-device tokens.
type TokenQuery struct {
	Purpose   domain.TokenPurpose
	Value     string
	AccountID string
	DeviceID  *string
}

// TokenRepository defines methods for single-use token records
type TokenRepository interface {
	Create(ctx context.Context, token *domain.Token) error
	Find(ctx context.Context, q TokenQuery) (*domain.Token, error)
	DeleteUnconsumed(ctx context.Context, accountID string, purpose domain.TokenPurpose, deviceID *string) error
}

// TxOps is the set of mutations that can be staged inside one atomic commit.
// Flows that consume a token together with a dependent account or device
// change must run both through the same TxOps so that either both effects
// commit or neither does.
type TxOps interface {
	ConsumeToken(ctx context.Context, tokenID string) error
	SetDeviceTrusted(ctx context.Context, accountID, deviceID string) error
	SetAccountVerified(ctx context.Context, accountID string) error
	SetPasswordHash(ctx context.Context, accountID, passwordHash string) error
}

// TxRunner executes fn within a single transaction. fn returning an error
// rolls every staged mutation back.
type TxRunner interface {
	WithinTx(ctx context.Context, fn func(ops TxOps) error) error
}
