package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/smilemovies/account-service/internal/domain"
	"github.com/smilemovies/account-service/internal/repository"
)

// fakeStore is an in-memory implementation of the repository interfaces plus
// the transaction runner. Transactional mutations are staged and applied only
// when the whole function succeeds, mirroring the SQL implementation.
type fakeStore struct {
	accounts    map[string]*domain.Account
	devices     map[string]*domain.Device
	deviceOrder []string
	tokens      map[string]*domain.Token

	consumeErr error // injected ConsumeToken failure
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		accounts: make(map[string]*domain.Account),
		devices:  make(map[string]*domain.Device),
		tokens:   make(map[string]*domain.Token),
	}
}

func deviceKey(accountID, deviceID string) string {
	return accountID + "/" + deviceID
}

// AccountRepository

func (s *fakeStore) Create(ctx context.Context, account *domain.Account) error {
	for _, a := range s.accounts {
		if a.Email == account.Email {
			return fmt.Errorf("account with email %s: %w", account.Email, domain.ErrConflict)
		}
	}
	if account.ID == "" {
		account.ID = uuid.New().String()
	}
	if account.CreatedAt.IsZero() {
		account.CreatedAt = time.Now()
	}
	s.accounts[account.ID] = account
	return nil
}

func (s *fakeStore) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	account, ok := s.accounts[id]
	if !ok {
		return nil, fmt.Errorf("account with id %s: %w", id, domain.ErrNotFound)
	}
	return account, nil
}

func (s *fakeStore) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	for _, a := range s.accounts {
		if a.Email == email {
			return a, nil
		}
	}
	return nil, fmt.Errorf("account with email %s: %w", email, domain.ErrNotFound)
}

func (s *fakeStore) List(ctx context.Context) ([]*domain.Account, error) {
	var accounts []*domain.Account
	for _, a := range s.accounts {
		accounts = append(accounts, a)
	}
	return accounts, nil
}

func (s *fakeStore) Update(ctx context.Context, account *domain.Account) error {
	if _, ok := s.accounts[account.ID]; !ok {
		return fmt.Errorf("account with id %s: %w", account.ID, domain.ErrNotFound)
	}
	for id, a := range s.accounts {
		if id != account.ID && a.Email == account.Email {
			return fmt.Errorf("account with email %s: %w", account.Email, domain.ErrConflict)
		}
	}
	s.accounts[account.ID] = account
	return nil
}

func (s *fakeStore) UpdateLastLogin(ctx context.Context, accountID string) error {
	account, ok := s.accounts[accountID]
	if !ok {
		return fmt.Errorf("account with id %s: %w", accountID, domain.ErrNotFound)
	}
	now := time.Now()
	account.LastLoginAt = &now
	return nil
}

func (s *fakeStore) Delete(ctx context.Context, accountID string) error {
	if _, ok := s.accounts[accountID]; !ok {
		return fmt.Errorf("account with id %s: %w", accountID, domain.ErrNotFound)
	}
	delete(s.accounts, accountID)
	for key, d := range s.devices {
		if d.AccountID == accountID {
			delete(s.devices, key)
		}
	}
	for id, t := range s.tokens {
		if t.AccountID == accountID {
			delete(s.tokens, id)
		}
	}
	return nil
}

// DeviceRepository

func (s *fakeStore) ListByAccount(ctx context.Context, accountID string) ([]*domain.Device, error) {
	var devices []*domain.Device
	for _, key := range s.deviceOrder {
		if d, ok := s.devices[key]; ok && d.AccountID == accountID {
			devices = append(devices, d)
		}
	}
	return devices, nil
}

func (s *fakeStore) Get(ctx context.Context, accountID, deviceID string) (*domain.Device, error) {
	device, ok := s.devices[deviceKey(accountID, deviceID)]
	if !ok {
		return nil, fmt.Errorf("device %s: %w", deviceID, domain.ErrNotFound)
	}
	return device, nil
}

func (s *fakeStore) CreateDevice(ctx context.Context, device *domain.Device) error {
	key := deviceKey(device.AccountID, device.DeviceID)
	if _, ok := s.devices[key]; ok {
		return fmt.Errorf("device %s: %w", device.DeviceID, domain.ErrConflict)
	}
	now := time.Now()
	if device.CreatedAt.IsZero() {
		device.CreatedAt = now
	}
	if device.LastLoginAt.IsZero() {
		device.LastLoginAt = now
	}
	s.devices[key] = device
	s.deviceOrder = append(s.deviceOrder, key)
	return nil
}

func (s *fakeStore) UpdateDeviceLastLogin(ctx context.Context, accountID, deviceID string, location *domain.Location) error {
	device, ok := s.devices[deviceKey(accountID, deviceID)]
	if !ok {
		return fmt.Errorf("device %s: %w", deviceID, domain.ErrNotFound)
	}
	device.LastLoginAt = time.Now()
	if location != nil {
		device.Location = location
	}
	return nil
}

func (s *fakeStore) DeleteDevice(ctx context.Context, accountID, deviceID string) error {
	delete(s.devices, deviceKey(accountID, deviceID))
	return nil
}

// TokenRepository

func (s *fakeStore) CreateToken(ctx context.Context, token *domain.Token) error {
	for _, t := range s.tokens {
		if t.AccountID == token.AccountID && t.Purpose == token.Purpose && !t.Consumed &&
			equalDeviceID(t.DeviceID, token.DeviceID) {
			return fmt.Errorf("unconsumed %s token for account %s: %w", token.Purpose, token.AccountID, domain.ErrConflict)
		}
	}
	if token.ID == "" {
		token.ID = uuid.New().String()
	}
	if token.CreatedAt.IsZero() {
		token.CreatedAt = time.Now()
	}
	s.tokens[token.ID] = token
	return nil
}

func (s *fakeStore) Find(ctx context.Context, q repository.TokenQuery) (*domain.Token, error) {
	// The account scope is mandatory, matching the SQL implementation.
	if q.AccountID == "" {
		return nil, fmt.Errorf("%s token without account scope: %w", q.Purpose, domain.ErrNotFound)
	}
	for _, t := range s.tokens {
		if t.Purpose != q.Purpose || t.Value != q.Value || t.Consumed {
			continue
		}
		if t.AccountID != q.AccountID {
			continue
		}
		if q.DeviceID != nil && !equalDeviceID(t.DeviceID, q.DeviceID) {
			continue
		}
		return t, nil
	}
	return nil, fmt.Errorf("%s token: %w", q.Purpose, domain.ErrNotFound)
}

func (s *fakeStore) DeleteUnconsumed(ctx context.Context, accountID string, purpose domain.TokenPurpose, deviceID *string) error {
	for id, t := range s.tokens {
		if t.AccountID == accountID && t.Purpose == purpose && !t.Consumed &&
			(deviceID == nil || equalDeviceID(t.DeviceID, deviceID)) {
			delete(s.tokens, id)
		}
	}
	return nil
}

func equalDeviceID(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// unconsumedTokens returns the account's unconsumed tokens for a purpose,
// for assertions on the one-token-per-scope invariant
func (s *fakeStore) unconsumedTokens(accountID string, purpose domain.TokenPurpose) []*domain.Token {
	var tokens []*domain.Token
	for _, t := range s.tokens {
		if t.AccountID == accountID && t.Purpose == purpose && !t.Consumed {
			tokens = append(tokens, t)
		}
	}
	return tokens
}

// TxRunner

type fakeTxOps struct {
	store  *fakeStore
	staged []func()
}

func (s *fakeStore) WithinTx(ctx context.Context, fn func(ops repository.TxOps) error) error {
	ops := &fakeTxOps{store: s}
	if err := fn(ops); err != nil {
		return err
	}
	for _, apply := range ops.staged {
		apply()
	}
	return nil
}

func (o *fakeTxOps) ConsumeToken(ctx context.Context, tokenID string) error {
	if o.store.consumeErr != nil {
		return o.store.consumeErr
	}
	token, ok := o.store.tokens[tokenID]
	if !ok || token.Consumed {
		return fmt.Errorf("token %s: %w", tokenID, domain.ErrNotFound)
	}
	o.staged = append(o.staged, func() { token.Consumed = true })
	return nil
}

func (o *fakeTxOps) SetDeviceTrusted(ctx context.Context, accountID, deviceID string) error {
	device, ok := o.store.devices[deviceKey(accountID, deviceID)]
	if !ok {
		return fmt.Errorf("device %s: %w", deviceID, domain.ErrNotFound)
	}
	o.staged = append(o.staged, func() { device.Trusted = true })
	return nil
}

func (o *fakeTxOps) SetAccountVerified(ctx context.Context, accountID string) error {
	account, ok := o.store.accounts[accountID]
	if !ok {
		return fmt.Errorf("account with id %s: %w", accountID, domain.ErrNotFound)
	}
	o.staged = append(o.staged, func() { account.Verified = true })
	return nil
}

func (o *fakeTxOps) SetPasswordHash(ctx context.Context, accountID, passwordHash string) error {
	account, ok := o.store.accounts[accountID]
	if !ok {
		return fmt.Errorf("account with id %s: %w", accountID, domain.ErrNotFound)
	}
	o.staged = append(o.staged, func() { account.PasswordHash = passwordHash })
	return nil
}

// fakeDeviceRepo and fakeTokenRepo adapt fakeStore's differently named
// methods onto the repository interfaces, which share method names with
// AccountRepository.

type fakeDeviceRepo struct{ store *fakeStore }

func (r fakeDeviceRepo) ListByAccount(ctx context.Context, accountID string) ([]*domain.Device, error) {
	return r.store.ListByAccount(ctx, accountID)
}
func (r fakeDeviceRepo) Get(ctx context.Context, accountID, deviceID string) (*domain.Device, error) {
	return r.store.Get(ctx, accountID, deviceID)
}
func (r fakeDeviceRepo) Create(ctx context.Context, device *domain.Device) error {
	return r.store.CreateDevice(ctx, device)
}
func (r fakeDeviceRepo) UpdateLastLogin(ctx context.Context, accountID, deviceID string, location *domain.Location) error {
	return r.store.UpdateDeviceLastLogin(ctx, accountID, deviceID, location)
}
func (r fakeDeviceRepo) Delete(ctx context.Context, accountID, deviceID string) error {
	return r.store.DeleteDevice(ctx, accountID, deviceID)
}

type fakeTokenRepo struct{ store *fakeStore }

func (r fakeTokenRepo) Create(ctx context.Context, token *domain.Token) error {
	return r.store.CreateToken(ctx, token)
}
func (r fakeTokenRepo) Find(ctx context.Context, q repository.TokenQuery) (*domain.Token, error) {
	return r.store.Find(ctx, q)
}
func (r fakeTokenRepo) DeleteUnconsumed(ctx context.Context, accountID string, purpose domain.TokenPurpose, deviceID *string) error {
	return r.store.DeleteUnconsumed(ctx, accountID, purpose, deviceID)
}

// fakeMailer records outbound messages and optionally fails sends
type fakeMailer struct {
	sent    []fakeMail
	sendErr error
}

type fakeMail struct {
	To      string
	Subject string
	Body    string
}

func (m *fakeMailer) Send(ctx context.Context, to, subject, body string) error {
	if m.sendErr != nil {
		return m.sendErr
	}
	m.sent = append(m.sent, fakeMail{To: to, Subject: subject, Body: body})
	return nil
}
