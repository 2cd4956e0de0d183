package service

import (
	"context"

	"github.com/smilemovies/account-service/internal/domain"
	"github.com/smilemovies/account-service/internal/repository"
)

// TokenIssuer creates and validates single-use, purpose-scoped tokens
type TokenIssuer interface {
	// Issue invalidates any unconsumed token for the same scope, then
	// creates a fresh one. Exactly one unconsumed token exists for the
	// scope afterward.
	Issue(ctx context.Context, accountID string, purpose domain.TokenPurpose, deviceID *string) (*domain.Token, error)

	// Validate looks up an unconsumed token matching the query without
	// consuming it. Activate-device tokens past their validity window
	// fail with ErrExpired.
	Validate(ctx context.Context, q repository.TokenQuery) (*domain.Token, error)
}

// DeviceInput is the caller-supplied description of a device
type DeviceInput struct {
	DeviceID string
	Name     string
	Type     string
	Location *domain.Location
}

// DeviceRegistry owns the per-account device list and its trust state machine:
// provisional (trusted=false) → trusted, with removal terminal.
type DeviceRegistry interface {
	List(ctx context.Context, accountID string) ([]*domain.Device, error)

	// Add appends a provisional device; ErrConflict if the id is present
	Add(ctx context.Context, accountID string, input DeviceInput) (*domain.Device, error)

	// AddTrusted appends a device that starts trusted; used only for the
	// device supplied at registration
	AddTrusted(ctx context.Context, accountID string, input DeviceInput) (*domain.Device, error)

	// Remove deletes a device; removing an absent device succeeds
	Remove(ctx context.Context, accountID, deviceID string) error

	// TouchLogin updates lastLogin/location for a known device and appends
	// a provisional one when the id is unseen
	TouchLogin(ctx context.Context, accountID string, input DeviceInput) error

	// RequestActivation issues an activate-device token and mails a
	// time-boxed activation link. Delivery is best-effort; a send failure
	// does not roll the token back.
	RequestActivation(ctx context.Context, account *domain.Account, deviceID string) error

	// Activate validates the token and, in one atomic commit, trusts the
	// device and consumes the token. Link-holders resolve the account by
	// email before calling; accountID is never empty here.
	Activate(ctx context.Context, accountID, deviceID, tokenValue string) error
}

// Mailer is the outbound notification contract. Delivery is fire-and-forget;
// the core never awaits a confirmation for correctness.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// AccountService orchestrates credential, token, device and session state
// for the identity lifecycle
type AccountService interface {
	Register(ctx context.Context, input RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, input LoginInput) (*AuthResult, error)

	Get(ctx context.Context, accountID string) (*domain.Account, error)
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
	List(ctx context.Context) ([]*domain.Account, error)
	UpdateProfile(ctx context.Context, accountID string, input ProfileInput) (*domain.Account, error)
	UpdateStatus(ctx context.Context, accountID string, input StatusInput) (*domain.Account, error)
	Delete(ctx context.Context, accountID string) error

	VerifyEmail(ctx context.Context, accountID, tokenValue string) error
	ResendVerification(ctx context.Context, accountID string) error

	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, email, tokenValue, newPassword string) error
	ChangePassword(ctx context.Context, accountID, oldPassword, newPassword string) error

	Devices() DeviceRegistry
}
