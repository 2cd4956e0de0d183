package service

import (
	"context"
	"fmt"
	"time"

	"github.com/smilemovies/account-service/internal/domain"
	"github.com/smilemovies/account-service/internal/repository"
	"github.com/smilemovies/account-service/internal/utils"
)

// tokenService implements TokenIssuer on the token repository
type tokenService struct {
	tokenRepo     repository.TokenRepository
	activationTTL time.Duration
	now           func() time.Time
}

// NewTokenService creates a new token issuer/validator. activationTTL bounds
// the validity of activate-device tokens, measured from creation.
func NewTokenService(tokenRepo repository.TokenRepository, activationTTL time.Duration) TokenIssuer {
	return &tokenService{
		tokenRepo:     tokenRepo,
		activationTTL: activationTTL,
		now:           time.Now,
	}
}

// Issue replaces any unconsumed token for the (account, purpose[, device])
// scope with a fresh one
func (s *tokenService) Issue(ctx context.Context, accountID string, purpose domain.TokenPurpose, deviceID *string) (*domain.Token, error) {
	if err := s.tokenRepo.DeleteUnconsumed(ctx, accountID, purpose, deviceID); err != nil {
		return nil, fmt.Errorf("failed to invalidate prior token: %w", err)
	}

	value, err := utils.NewTokenValue(purpose)
	if err != nil {
		return nil, err
	}

	token := &domain.Token{
		AccountID: accountID,
		Purpose:   purpose,
		DeviceID:  deviceID,
		Value:     value,
		CreatedAt: s.now(),
	}

	if err := s.tokenRepo.Create(ctx, token); err != nil {
		return nil, err
	}

	return token, nil
}

// Validate looks up an unconsumed token without consuming it. Consumption is
// a separate step committed atomically with the dependent state change.
func (s *tokenService) Validate(ctx context.Context, q repository.TokenQuery) (*domain.Token, error) {
	token, err := s.tokenRepo.Find(ctx, q)
	if err != nil {
		return nil, err
	}

	if token.Purpose == domain.PurposeActivateDevice {
		if s.now().Sub(token.CreatedAt) > s.activationTTL {
			return nil, fmt.Errorf("activation token created %s ago: %w",
				s.now().Sub(token.CreatedAt).Round(time.Second), domain.ErrExpired)
		}
	}

	return token, nil
}
