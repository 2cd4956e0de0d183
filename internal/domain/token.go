package domain

import "time"

// TokenPurpose scopes a single-use token to the flow it proves
type TokenPurpose string

const (
	PurposeVerifyEmail    TokenPurpose = "verify-email"
	PurposeResetPassword  TokenPurpose = "reset-password"
	PurposeActivateDevice TokenPurpose = "activate-device"
)

// Token is a single-use secret bound to one account and purpose.
// Activate-device tokens are additionally scoped by device id and carry
// a validity window checked at validation time.
type Token struct {
	ID        string       `json:"id" db:"id"`
	AccountID string       `json:"account_id" db:"account_id"`
	Purpose   TokenPurpose `json:"purpose" db:"purpose"`
	DeviceID  *string      `json:"device_id,omitempty" db:"device_id"`
	Value     string       `json:"-" db:"value"`
	CreatedAt time.Time    `json:"created_at" db:"created_at"`
	Consumed  bool         `json:"consumed" db:"consumed"`
}
