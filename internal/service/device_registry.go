package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/smilemovies/account-service/internal/domain"
	"github.com/smilemovies/account-service/internal/repository"
	"go.uber.org/zap"
)

// deviceRegistry implements DeviceRegistry
type deviceRegistry struct {
	deviceRepo repository.DeviceRepository
	tx         repository.TxRunner
	tokens     TokenIssuer
	mailer     Mailer
	clientURL  string
	logger     *zap.Logger
}

// NewDeviceRegistry creates a new device registry. clientURL is the frontend
// origin used to build activation links.
func NewDeviceRegistry(
	deviceRepo repository.DeviceRepository,
	tx repository.TxRunner,
	tokens TokenIssuer,
	mailer Mailer,
	clientURL string,
	logger *zap.Logger,
) DeviceRegistry {
	return &deviceRegistry{
		deviceRepo: deviceRepo,
		tx:         tx,
		tokens:     tokens,
		mailer:     mailer,
		clientURL:  clientURL,
		logger:     logger,
	}
}

// List returns the account's devices in insertion order
func (r *deviceRegistry) List(ctx context.Context, accountID string) ([]*domain.Device, error) {
	return r.deviceRepo.ListByAccount(ctx, accountID)
}

// Add appends a provisional device to the account's list
func (r *deviceRegistry) Add(ctx context.Context, accountID string, input DeviceInput) (*domain.Device, error) {
	return r.add(ctx, accountID, input, false)
}

// AddTrusted appends a device that starts trusted. Only the device supplied
// at registration time enters the list this way.
func (r *deviceRegistry) AddTrusted(ctx context.Context, accountID string, input DeviceInput) (*domain.Device, error) {
	return r.add(ctx, accountID, input, true)
}

func (r *deviceRegistry) add(ctx context.Context, accountID string, input DeviceInput, trusted bool) (*domain.Device, error) {
	if input.DeviceID == "" {
		return nil, fmt.Errorf("device id is required: %w", domain.ErrInvalid)
	}

	device := &domain.Device{
		AccountID: accountID,
		DeviceID:  input.DeviceID,
		Name:      input.Name,
		Type:      input.Type,
		Trusted:   trusted,
		Location:  input.Location,
	}

	if err := r.deviceRepo.Create(ctx, device); err != nil {
		return nil, err
	}

	return device, nil
}

// Remove deletes a device from the account's list. Removal is idempotent:
// the postcondition is "device not in list", which an absent id satisfies.
func (r *deviceRegistry) Remove(ctx context.Context, accountID, deviceID string) error {
	return r.deviceRepo.Delete(ctx, accountID, deviceID)
}

// TouchLogin updates lastLogin and location for a known device, or appends a
// provisional device when the id is unseen. Login uses this to bootstrap new
// devices without a separate call.
func (r *deviceRegistry) TouchLogin(ctx context.Context, accountID string, input DeviceInput) error {
	err := r.deviceRepo.UpdateLastLogin(ctx, accountID, input.DeviceID, input.Location)
	if err == nil {
		return nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return err
	}

	_, err = r.add(ctx, accountID, input, false)
	if errors.Is(err, domain.ErrConflict) {
		// Lost the race against a concurrent login for the same device;
		// the device exists now, which is all this call needs
		return nil
	}
	return err
}

// RequestActivation issues an activate-device token and mails a time-boxed
// activation link. The mail is best-effort: a send failure is logged and the
// issued token stands, covered by re-requesting activation.
func (r *deviceRegistry) RequestActivation(ctx context.Context, account *domain.Account, deviceID string) error {
	device, err := r.deviceRepo.Get(ctx, account.ID, deviceID)
	if err != nil {
		return err
	}

	token, err := r.tokens.Issue(ctx, account.ID, domain.PurposeActivateDevice, &deviceID)
	if err != nil {
		return err
	}

	link := fmt.Sprintf("%s/auth/activate-device?email=%s&deviceId=%s&token=%s",
		r.clientURL, url.QueryEscape(account.Email), url.QueryEscape(deviceID), token.Value)

	body := fmt.Sprintf(`Dear %s,

A request was made to grant high-level permissions to: %s (%s).

If you approve, this device will be able to:
 - Manage other devices
 - Change personal details
 - Delete your account

Click here to activate (Link expires in 30 minutes): %s

If this wasn't you, please secure your account immediately.

Smile Movies Team`, account.FirstName, device.Name, device.Type, link)

	if err := r.mailer.Send(ctx, account.Email, "Security Alert: Device Activation Requested", body); err != nil {
		r.logger.Warn("failed to send device activation mail",
			zap.String("account_id", account.ID),
			zap.String("device_id", deviceID),
			zap.Error(err),
		)
	}

	return nil
}

// Activate validates the activation token and commits the trust flip and the
// token consumption in one transaction. Either both effects apply or neither
// does; a consumed token never validates again.
func (r *deviceRegistry) Activate(ctx context.Context, accountID, deviceID, tokenValue string) error {
	token, err := r.tokens.Validate(ctx, repository.TokenQuery{
		Purpose:   domain.PurposeActivateDevice,
		Value:     tokenValue,
		AccountID: accountID,
		DeviceID:  &deviceID,
	})
	if err != nil {
		return err
	}

	return r.tx.WithinTx(ctx, func(ops repository.TxOps) error {
		if err := ops.SetDeviceTrusted(ctx, token.AccountID, deviceID); err != nil {
			return err
		}
		return ops.ConsumeToken(ctx, token.ID)
	})
}
