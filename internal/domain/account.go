package domain

import "time"

// Account represents a registered user identity
type Account struct {
	ID           string     `json:"id" db:"id"`
	Email        string     `json:"email" db:"email"`
	PasswordHash string     `json:"-" db:"password_hash"`
	FirstName    string     `json:"firstname" db:"first_name"`
	LastName     string     `json:"lastname" db:"last_name"`
	ProfilePic   string     `json:"profile_pic" db:"profile_pic"`
	Verified     bool       `json:"verified" db:"verified"`
	Banned       bool       `json:"banned" db:"banned"`
	Admin        bool       `json:"admin" db:"admin"`
	LoginType    string     `json:"login_type" db:"login_type"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
	LastLoginAt  *time.Time `json:"last_login_at" db:"last_login_at"`
}
