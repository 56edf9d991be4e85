package credentials

import (
	"errors"
	"fmt"
	"sync"

	zkeyring "github.com/zalando/go-keyring"
)

// Keyring is the interface for keyring operations
type Keyring interface {
	Set(service, account, password string) error
	Get(service, account string) (string, error)
	Delete(service, account string) error
}

// ErrNotFound is returned when no secret is stored for a service/account pair
var ErrNotFound = errors.New("secret not found in keyring")

// IsNotFound reports whether err means the secret does not exist
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, zkeyring.ErrNotFound)
}

// systemKeyring is the real keyring implementation using the OS keyring
type systemKeyring struct{}

// NewSystemKeyring returns a keyring backed by the OS secret service
func NewSystemKeyring() Keyring {
	return &systemKeyring{}
}

func (s *systemKeyring) Set(service, account, password string) error {
	return zkeyring.Set(service, account, password)
}

func (s *systemKeyring) Get(service, account string) (string, error) {
	return zkeyring.Get(service, account)
}

func (s *systemKeyring) Delete(service, account string) error {
	return zkeyring.Delete(service, account)
}

// MockKeyring is a test implementation of the Keyring interface
type MockKeyring struct {
	mu    sync.RWMutex
	store map[string]map[string]string // service -> account -> password
}

// NewMockKeyring creates a new mock keyring for testing
func NewMockKeyring() *MockKeyring {
	return &MockKeyring{
		store: make(map[string]map[string]string),
	}
}

// Set stores a password in the mock keyring
func (m *MockKeyring) Set(service, account, password string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.store[service] == nil {
		m.store[service] = make(map[string]string)
	}
	m.store[service][account] = password
	return nil
}

// Get retrieves a password from the mock keyring
func (m *MockKeyring) Get(service, account string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if accounts, ok := m.store[service]; ok {
		if password, ok := accounts[account]; ok {
			return password, nil
		}
	}
	return "", fmt.Errorf("%w: %s/%s", ErrNotFound, service, account)
}

// Delete removes a password from the mock keyring
func (m *MockKeyring) Delete(service, account string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if accounts, ok := m.store[service]; ok {
		if _, ok := accounts[account]; ok {
			delete(accounts, account)
			return nil
		}
	}
	return fmt.Errorf("%w: %s/%s", ErrNotFound, service, account)
}
