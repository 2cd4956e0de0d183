package dto

import (
	"time"

	"github.com/smilemovies/account-service/internal/domain"
)

// LocationPayload is a client-reported device location snapshot
type LocationPayload struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Continent string  `json:"continent"`
	Country   string  `json:"country"`
	State     string  `json:"state"`
	County    string  `json:"county"`
	Road      string  `json:"road"`
}

// ToLocation converts the payload to a domain location stamped now
func (p *LocationPayload) ToLocation() *domain.Location {
	if p == nil {
		return nil
	}
	return &domain.Location{
		Latitude:  p.Latitude,
		Longitude: p.Longitude,
		Continent: p.Continent,
		Country:   p.Country,
		State:     p.State,
		County:    p.County,
		Road:      p.Road,
		LastSeen:  time.Now(),
	}
}

// RegisterRequest represents a registration request
type RegisterRequest struct {
	Firstname      string           `json:"firstname" binding:"required"`
	Lastname       string           `json:"lastname"`
	Email          string           `json:"email" binding:"required,email"`
	Password       string           `json:"password" binding:"required,min=8"`
	ProfilePic     string           `json:"profile_pic"`
	LoginType      string           `json:"login_type"`
	IsVerified     bool             `json:"is_verified"`
	DeviceID       string           `json:"device_id" binding:"required"`
	DeviceName     string           `json:"device_name" binding:"required"`
	DeviceType     string           `json:"device_type" binding:"required"`
	DeviceLocation *LocationPayload `json:"device_location"`
}

// LoginRequest represents a login request
type LoginRequest struct {
	Email          string           `json:"email" binding:"required,email"`
	Password       string           `json:"password" binding:"required"`
	DeviceID       string           `json:"device_id" binding:"required"`
	DeviceName     string           `json:"device_name" binding:"required"`
	DeviceType     string           `json:"device_type" binding:"required"`
	DeviceLocation *LocationPayload `json:"device_location"`
}

// UpdateProfileRequest represents a profile update; nil fields are untouched
type UpdateProfileRequest struct {
	Firstname *string `json:"firstname"`
	Lastname  *string `json:"lastname"`
	Email     *string `json:"email"`
}

// UpdateStatusRequest represents an admin flag update; nil fields are untouched
type UpdateStatusRequest struct {
	Verified *bool `json:"verified"`
	Banned   *bool `json:"banned"`
	Admin    *bool `json:"admin"`
}

// ForgotPasswordRequest represents a reset link request
type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// ResetPasswordRequest carries the replacement password
type ResetPasswordRequest struct {
	Password string `json:"password" binding:"required,min=8"`
}

// ChangePasswordRequest represents an authenticated password change
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8"`
}

// AddDeviceRequest represents an explicit device enrollment
type AddDeviceRequest struct {
	DeviceID   string `json:"device_id" binding:"required"`
	DeviceName string `json:"device_name" binding:"required"`
	DeviceType string `json:"device_type" binding:"required"`
}

// TouchLoginRequest updates a device's last login and location
type TouchLoginRequest struct {
	DeviceLocation *LocationPayload `json:"device_location"`
}

// AccountResponse represents an account in responses
type AccountResponse struct {
	ID          string          `json:"id"`
	Email       string          `json:"email"`
	Firstname   string          `json:"firstname"`
	Lastname    string          `json:"lastname"`
	ProfilePic  string          `json:"profile_pic"`
	Verified    bool            `json:"verified"`
	Banned      bool            `json:"banned"`
	Admin       bool            `json:"admin"`
	LoginType   string          `json:"login_type"`
	CreatedAt   string          `json:"created_at"`
	LastLoginAt *string         `json:"last_login_at"`
	Devices     []domain.Device `json:"devices,omitempty"`
}

// NewAccountResponse converts an account and its device list to a response
func NewAccountResponse(account *domain.Account, devices []*domain.Device) AccountResponse {
	resp := AccountResponse{
		ID:         account.ID,
		Email:      account.Email,
		Firstname:  account.FirstName,
		Lastname:   account.LastName,
		ProfilePic: account.ProfilePic,
		Verified:   account.Verified,
		Banned:     account.Banned,
		Admin:      account.Admin,
		LoginType:  account.LoginType,
		CreatedAt:  account.CreatedAt.Format(time.RFC3339),
	}

	if account.LastLoginAt != nil {
		lastLogin := account.LastLoginAt.Format(time.RFC3339)
		resp.LastLoginAt = &lastLogin
	}

	for _, device := range devices {
		resp.Devices = append(resp.Devices, *device)
	}

	return resp
}

// SuccessResponse represents a success response
type SuccessResponse struct {
	Message string `json:"message"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string      `json:"error"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}
