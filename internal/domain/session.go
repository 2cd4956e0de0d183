package domain

import "time"

// SessionClaims is the decoded claim set of a session credential.
// Claims are a snapshot taken at issuance; later changes to the account's
// verified or admin flags only show up after the credential is reissued.
type SessionClaims struct {
	AccountID string    `json:"uid"`
	Admin     bool      `json:"admin"`
	Verified  bool      `json:"verified"`
	IssuedAt  time.Time `json:"iat"`
	ExpiresAt time.Time `json:"exp"`
}

// IsExpired reports whether the claims are past their expiry
func (c SessionClaims) IsExpired() bool {
	return time.Now().After(c.ExpiresAt)
}
