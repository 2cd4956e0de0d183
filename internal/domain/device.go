package domain

import "time"

// Device is one entry in an account's device list. A device is either
// provisional (Trusted=false) or trusted; removal is terminal.
//
// The device supplied at registration starts trusted. Every device added
// afterward starts provisional and becomes trusted only through the
// activation workflow.
type Device struct {
	AccountID   string    `json:"-" db:"account_id"`
	DeviceID    string    `json:"device_id" db:"device_id"`
	Name        string    `json:"device_name" db:"name"`
	Type        string    `json:"device_type" db:"type"`
	Trusted     bool      `json:"trusted" db:"trusted"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	LastLoginAt time.Time `json:"last_login_at" db:"last_login_at"`
	Location    *Location `json:"location,omitempty" db:"location"`
}

// Location is a last-seen location snapshot reported by the client
type Location struct {
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Continent string    `json:"continent"`
	Country   string    `json:"country"`
	State     string    `json:"state"`
	County    string    `json:"county"`
	Road      string    `json:"road"`
	LastSeen  time.Time `json:"last_seen"`
}
