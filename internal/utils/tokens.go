package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/smilemovies/account-service/internal/domain"
)

// Random byte length per token purpose. The textual value is the hex encoding
// of the random bytes: short uppercase codes for flows typed by hand, a long
// lowercase value for activation links.
var tokenByteLength = map[domain.TokenPurpose]int{
	domain.PurposeVerifyEmail:    3,  // 6 uppercase hex chars
	domain.PurposeResetPassword:  16, // 32 uppercase hex chars
	domain.PurposeActivateDevice: 32, // 64 lowercase hex chars
}

// NewTokenValue generates a cryptographically random token value in the
// fixed format of the given purpose
func NewTokenValue(purpose domain.TokenPurpose) (string, error) {
	length, ok := tokenByteLength[purpose]
	if !ok {
		return "", fmt.Errorf("unknown token purpose %q: %w", purpose, domain.ErrInvalid)
	}

	raw := make([]byte, length)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("failed to generate token value: %w", err)
	}

	value := hex.EncodeToString(raw)
	if purpose != domain.PurposeActivateDevice {
		value = strings.ToUpper(value)
	}

	return value, nil
}
