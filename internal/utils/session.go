package utils

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/smilemovies/account-service/internal/domain"
)

// SessionManager issues and verifies signed session credentials. The signing
// secret and expiry are fixed at construction for the process lifetime.
// Credentials are self-contained and never revoked server-side; logout is a
// client-side cookie discard.
type SessionManager struct {
	secret []byte
	expiry time.Duration
}

// NewSessionManager creates a new session manager
func NewSessionManager(secret string, expiry time.Duration) *SessionManager {
	return &SessionManager{
		secret: []byte(secret),
		expiry: expiry,
	}
}

// Issue produces a signed credential carrying a snapshot of the account's
// identity and authorization flags at issuance time
func (m *SessionManager) Issue(accountID string, admin, verified bool) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"uid":      accountID,
		"admin":    admin,
		"verified": verified,
		"iat":      now.Unix(),
		"exp":      now.Add(m.expiry).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	credential, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session credential: %w", err)
	}

	return credential, nil
}

// Verify checks signature and expiry and returns the embedded claims. Any
// structural, signature or expiry failure maps to ErrUnauthorized; a
// malformed credential is never partially trusted.
func (m *SessionManager) Verify(credential string) (*domain.SessionClaims, error) {
	token, err := jwt.Parse(credential, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to parse session credential: %w", domain.ErrUnauthorized)
	}

	if !token.Valid {
		return nil, fmt.Errorf("invalid session credential: %w", domain.ErrUnauthorized)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("invalid session claims: %w", domain.ErrUnauthorized)
	}

	accountID, ok := claims["uid"].(string)
	if !ok {
		return nil, fmt.Errorf("invalid uid claim: %w", domain.ErrUnauthorized)
	}

	admin, ok := claims["admin"].(bool)
	if !ok {
		return nil, fmt.Errorf("invalid admin claim: %w", domain.ErrUnauthorized)
	}

	verified, ok := claims["verified"].(bool)
	if !ok {
		return nil, fmt.Errorf("invalid verified claim: %w", domain.ErrUnauthorized)
	}

	iat, ok := claims["iat"].(float64)
	if !ok {
		return nil, fmt.Errorf("invalid iat claim: %w", domain.ErrUnauthorized)
	}

	exp, ok := claims["exp"].(float64)
	if !ok {
		return nil, fmt.Errorf("invalid exp claim: %w", domain.ErrUnauthorized)
	}

	sessionClaims := &domain.SessionClaims{
		AccountID: accountID,
		Admin:     admin,
		Verified:  verified,
		IssuedAt:  time.Unix(int64(iat), 0),
		ExpiresAt: time.Unix(int64(exp), 0),
	}

	if sessionClaims.IsExpired() {
		return nil, fmt.Errorf("session credential expired: %w", domain.ErrUnauthorized)
	}

	return sessionClaims, nil
}

// RequireAdmin checks the admin claim of verified session claims
func (m *SessionManager) RequireAdmin(claims *domain.SessionClaims) error {
	if !claims.Admin {
		return fmt.Errorf("admin privileges required: %w", domain.ErrForbidden)
	}
	return nil
}

// Expiry returns the configured credential lifetime
func (m *SessionManager) Expiry() time.Duration {
	return m.expiry
}
