package repository

import (
	"github.com/smilemovies/account-service/pkg/database"
)

// Repositories bundles the persistence interfaces the service layer needs.
type Repositories struct {
	Account AccountRepository
	Device  DeviceRepository
	Token   TokenRepository
	Tx      TxRunner
}

// NewRepositories builds the Postgres-backed set over one shared pool.
func NewRepositories(db *database.Postgres) *Repositories {
	return &Repositories{
		Account: NewAccountRepository(db),
		Device:  NewDeviceRepository(db),
		Token:   NewTokenRepository(db),
		Tx:      NewTxRunner(db),
	}
}
