package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/smilemovies/account-service/internal/domain"
	"github.com/smilemovies/account-service/internal/repository"
	"github.com/smilemovies/account-service/internal/utils"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// RegisterInput holds the data required to create an account. Verified
// pre-marks the account (e.g. for provider-backed signups); otherwise the
// email verification flow applies.
type RegisterInput struct {
	FirstName  string
	LastName   string
	Email      string
	Password   string
	ProfilePic string
	LoginType  string
	Verified   bool
	Device     DeviceInput
}

// LoginInput holds credentials plus the device making the attempt
type LoginInput struct {
	Email    string
	Password string
	Device   DeviceInput
}

// ProfileInput holds the mutable profile fields. A nil field is left as is.
type ProfileInput struct {
	FirstName *string
	LastName  *string
	Email     *string
}

// StatusInput holds the administrative account flags. A nil field is left as is.
// Flag changes take effect in sessions only on reissue.
type StatusInput struct {
	Verified *bool
	Banned   *bool
	Admin    *bool
}

// AuthResult is the outcome of registration or login: the account and a
// fresh session credential snapshotting its flags
type AuthResult struct {
	Account    *domain.Account
	Credential string
}

// accountService implements AccountService
type accountService struct {
	accountRepo repository.AccountRepository
	tx          repository.TxRunner
	tokens      TokenIssuer
	devices     DeviceRegistry
	sessions    *utils.SessionManager
	mailer      Mailer
	bcryptCost  int
	clientURL   string
	logger      *zap.Logger

	registrations metric.Int64Counter
	logins        metric.Int64Counter
}

// NewAccountService creates a new account service
func NewAccountService(
	accountRepo repository.AccountRepository,
	tx repository.TxRunner,
	tokens TokenIssuer,
	devices DeviceRegistry,
	sessions *utils.SessionManager,
	mailer Mailer,
	bcryptCost int,
	clientURL string,
	logger *zap.Logger,
) AccountService {
	meter := otel.Meter("account-service")
	registrations, _ := meter.Int64Counter("account_registrations_total")
	logins, _ := meter.Int64Counter("account_logins_total")

	return &accountService{
		accountRepo:   accountRepo,
		tx:            tx,
		tokens:        tokens,
		devices:       devices,
		sessions:      sessions,
		mailer:        mailer,
		bcryptCost:    bcryptCost,
		clientURL:     clientURL,
		logger:        logger,
		registrations: registrations,
		logins:        logins,
	}
}

// Devices exposes the device registry for device-scoped operations
func (s *accountService) Devices() DeviceRegistry {
	return s.devices
}

// Register creates an account with its first device trusted, issues a
// verify-email token, mails the verification code and issues a session
func (s *accountService) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	if !utils.ValidateEmail(input.Email) {
		return nil, fmt.Errorf("invalid email format: %w", domain.ErrInvalid)
	}

	if !utils.ValidatePassword(input.Password) {
		return nil, fmt.Errorf("password must be at least 8 characters long and contain uppercase, lowercase, and number: %w", domain.ErrInvalid)
	}

	email := utils.SanitizeEmail(input.Email)

	// Check for an existing account first for a clean Conflict; the unique
	// constraint still backstops a racing registration
	_, err := s.accountRepo.GetByEmail(ctx, email)
	if err == nil {
		return nil, fmt.Errorf("account with email %s: %w", email, domain.ErrConflict)
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("failed to check account existence: %w", err)
	}

	passwordHash, err := utils.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	account := &domain.Account{
		Email:        email,
		PasswordHash: passwordHash,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		ProfilePic:   input.ProfilePic,
		LoginType:    input.LoginType,
		Verified:     input.Verified,
	}

	if err := s.accountRepo.Create(ctx, account); err != nil {
		return nil, err
	}

	// The registration-time device is the one device that starts trusted
	if _, err := s.devices.AddTrusted(ctx, account.ID, input.Device); err != nil {
		return nil, err
	}

	token, err := s.tokens.Issue(ctx, account.ID, domain.PurposeVerifyEmail, nil)
	if err != nil {
		return nil, err
	}

	if !account.Verified {
		if err := s.mailer.Send(ctx, account.Email, "Verify your email",
			fmt.Sprintf("Your verification token: %s", token.Value)); err != nil {
			// Non-fatal: the account and token exist, and the resend
			// endpoint covers a lost mail
			s.logger.Warn("failed to send verification mail",
				zap.String("account_id", account.ID),
				zap.Error(err),
			)
		}
	}

	credential, err := s.sessions.Issue(account.ID, account.Admin, account.Verified)
	if err != nil {
		return nil, err
	}

	s.registrations.Add(ctx, 1)

	return &AuthResult{Account: account, Credential: credential}, nil
}

// Login authenticates credentials, upserts the calling device and issues a
// session reflecting the account's current flags
func (s *accountService) Login(ctx context.Context, input LoginInput) (*AuthResult, error) {
	account, err := s.accountRepo.GetByEmail(ctx, utils.SanitizeEmail(input.Email))
	if err != nil {
		return nil, err
	}

	if account.Banned {
		return nil, fmt.Errorf("account is banned: %w", domain.ErrForbidden)
	}

	if !utils.CheckPasswordHash(input.Password, account.PasswordHash) {
		return nil, fmt.Errorf("invalid credentials: %w", domain.ErrUnauthorized)
	}

	if err := s.devices.TouchLogin(ctx, account.ID, input.Device); err != nil {
		return nil, err
	}

	if err := s.accountRepo.UpdateLastLogin(ctx, account.ID); err != nil {
		s.logger.Warn("failed to update last login",
			zap.String("account_id", account.ID),
			zap.Error(err),
		)
	}

	credential, err := s.sessions.Issue(account.ID, account.Admin, account.Verified)
	if err != nil {
		return nil, err
	}

	s.logins.Add(ctx, 1)

	return &AuthResult{Account: account, Credential: credential}, nil
}

// Get retrieves an account by id
func (s *accountService) Get(ctx context.Context, accountID string) (*domain.Account, error) {
	return s.accountRepo.GetByID(ctx, accountID)
}

// GetByEmail retrieves an account by email
func (s *accountService) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	return s.accountRepo.GetByEmail(ctx, utils.SanitizeEmail(email))
}

// List retrieves all accounts
func (s *accountService) List(ctx context.Context) ([]*domain.Account, error) {
	return s.accountRepo.List(ctx)
}

// UpdateProfile updates profile fields. Changing the email re-checks
// uniqueness and drops the verified flag until the new address is verified.
func (s *accountService) UpdateProfile(ctx context.Context, accountID string, input ProfileInput) (*domain.Account, error) {
	account, err := s.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	if input.FirstName != nil {
		account.FirstName = *input.FirstName
	}
	if input.LastName != nil {
		account.LastName = *input.LastName
	}

	if input.Email != nil {
		email := utils.SanitizeEmail(*input.Email)
		if email != account.Email {
			if !utils.ValidateEmail(email) {
				return nil, fmt.Errorf("invalid email format: %w", domain.ErrInvalid)
			}

			_, err := s.accountRepo.GetByEmail(ctx, email)
			if err == nil {
				return nil, fmt.Errorf("account with email %s: %w", email, domain.ErrConflict)
			}
			if !errors.Is(err, domain.ErrNotFound) {
				return nil, fmt.Errorf("failed to check email uniqueness: %w", err)
			}

			account.Email = email
			account.Verified = false
		}
	}

	if err := s.accountRepo.Update(ctx, account); err != nil {
		return nil, err
	}

	return account, nil
}

// UpdateStatus updates the administrative flags of an account
func (s *accountService) UpdateStatus(ctx context.Context, accountID string, input StatusInput) (*domain.Account, error) {
	account, err := s.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	if input.Verified != nil {
		account.Verified = *input.Verified
	}
	if input.Banned != nil {
		account.Banned = *input.Banned
	}
	if input.Admin != nil {
		account.Admin = *input.Admin
	}

	if err := s.accountRepo.Update(ctx, account); err != nil {
		return nil, err
	}

	return account, nil
}

// Delete removes an account together with its devices and tokens
func (s *accountService) Delete(ctx context.Context, accountID string) error {
	return s.accountRepo.Delete(ctx, accountID)
}

// VerifyEmail consumes a verify-email token and marks the account verified
// in one atomic commit
func (s *accountService) VerifyEmail(ctx context.Context, accountID, tokenValue string) error {
	account, err := s.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return err
	}

	if account.Verified {
		return fmt.Errorf("account %s: %w", accountID, domain.ErrAlreadyVerified)
	}

	token, err := s.tokens.Validate(ctx, repository.TokenQuery{
		Purpose:   domain.PurposeVerifyEmail,
		Value:     tokenValue,
		AccountID: accountID,
	})
	if err != nil {
		return err
	}

	return s.tx.WithinTx(ctx, func(ops repository.TxOps) error {
		if err := ops.SetAccountVerified(ctx, accountID); err != nil {
			return err
		}
		return ops.ConsumeToken(ctx, token.ID)
	})
}

// ResendVerification reissues the verify-email token and mails it. This flow
// exists purely to deliver the token, so a send failure surfaces.
func (s *accountService) ResendVerification(ctx context.Context, accountID string) error {
	account, err := s.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return err
	}

	if account.Verified {
		return fmt.Errorf("account %s: %w", accountID, domain.ErrAlreadyVerified)
	}

	token, err := s.tokens.Issue(ctx, account.ID, domain.PurposeVerifyEmail, nil)
	if err != nil {
		return err
	}

	return s.mailer.Send(ctx, account.Email, "Verify your email",
		fmt.Sprintf("Your verification token: %s", token.Value))
}

// ForgotPassword issues a reset-password token and mails the reset link
func (s *accountService) ForgotPassword(ctx context.Context, email string) error {
	account, err := s.accountRepo.GetByEmail(ctx, utils.SanitizeEmail(email))
	if err != nil {
		return err
	}

	token, err := s.tokens.Issue(ctx, account.ID, domain.PurposeResetPassword, nil)
	if err != nil {
		return err
	}

	link := fmt.Sprintf("%s/reset-password/%s/%s", s.clientURL, url.PathEscape(account.Email), token.Value)

	return s.mailer.Send(ctx, account.Email, "Reset your password",
		fmt.Sprintf("Reset your password by visiting this link: %s", link))
}

// ResetPassword validates the reset token and commits the new hash together
// with the token consumption
func (s *accountService) ResetPassword(ctx context.Context, email, tokenValue, newPassword string) error {
	account, err := s.accountRepo.GetByEmail(ctx, utils.SanitizeEmail(email))
	if err != nil {
		return err
	}

	if !utils.ValidatePassword(newPassword) {
		return fmt.Errorf("password must be at least 8 characters long and contain uppercase, lowercase, and number: %w", domain.ErrInvalid)
	}

	token, err := s.tokens.Validate(ctx, repository.TokenQuery{
		Purpose:   domain.PurposeResetPassword,
		Value:     tokenValue,
		AccountID: account.ID,
	})
	if err != nil {
		return err
	}

	passwordHash, err := utils.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return err
	}

	return s.tx.WithinTx(ctx, func(ops repository.TxOps) error {
		if err := ops.SetPasswordHash(ctx, account.ID, passwordHash); err != nil {
			return err
		}
		return ops.ConsumeToken(ctx, token.ID)
	})
}

// ChangePassword replaces the hash after verifying the old password. The
// stored hash is untouched when the old password is wrong or equals the new.
func (s *accountService) ChangePassword(ctx context.Context, accountID, oldPassword, newPassword string) error {
	if oldPassword == newPassword {
		return fmt.Errorf("new password cannot be the same as the old password: %w", domain.ErrInvalid)
	}

	if !utils.ValidatePassword(newPassword) {
		return fmt.Errorf("password must be at least 8 characters long and contain uppercase, lowercase, and number: %w", domain.ErrInvalid)
	}

	account, err := s.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return err
	}

	if !utils.CheckPasswordHash(oldPassword, account.PasswordHash) {
		return fmt.Errorf("old password is incorrect: %w", domain.ErrInvalid)
	}

	passwordHash, err := utils.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return err
	}

	return s.tx.WithinTx(ctx, func(ops repository.TxOps) error {
		return ops.SetPasswordHash(ctx, accountID, passwordHash)
	})
}
