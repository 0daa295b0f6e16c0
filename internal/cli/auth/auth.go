package auth

import (
	"errors"
	"fmt"
	"sync"

	"github.com/zalando/go-keyring"
)

const (
	service = "banban-cli"
)

// ErrNoToken is returned when no session token is stored for a server
var ErrNoToken = errors.New("not authenticated. Please run 'banban login' first")

// TokenStore defines the storage operations for session tokens.
// The session store is its only writer.
type TokenStore interface {
	SaveToken(server, token string) error
	LoadToken(server string) (string, error)
	DeleteToken(server string) error
}

// getKeyringKey returns a unique key for storing tokens per server
func getKeyringKey(server string) string {
	return fmt.Sprintf("token-%s", server)
}

// KeyringStore keeps tokens in the OS keychain/credential manager
type KeyringStore struct{}

// Default is the production token store
var Default TokenStore = KeyringStore{}

// SaveToken persists the token securely in the OS keychain
func (KeyringStore) SaveToken(server, token string) error {
	if err := keyring.Set(service, getKeyringKey(server), token); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}
	return nil
}

// LoadToken retrieves the token from the OS keychain
func (KeyringStore) LoadToken(server string) (string, error) {
	token, err := keyring.Get(service, getKeyringKey(server))
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrNoToken
		}
		return "", fmt.Errorf("failed to load token: %w", err)
	}
	return token, nil
}

// DeleteToken removes the token from the OS keychain
func (KeyringStore) DeleteToken(server string) error {
	if err := keyring.Delete(service, getKeyringKey(server)); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return nil // Already deleted
		}
		return fmt.Errorf("failed to delete token: %w", err)
	}
	return nil
}

// MemoryStore is an in-process TokenStore, used when no keychain is available
type MemoryStore struct {
	mu     sync.Mutex
	tokens map[string]string
}

// NewMemoryStore creates an empty in-memory token store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{tokens: make(map[string]string)}
}

func (m *MemoryStore) SaveToken(server, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens[server] = token
	return nil
}

func (m *MemoryStore) LoadToken(server string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	token, ok := m.tokens[server]
	if !ok || token == "" {
		return "", ErrNoToken
	}
	return token, nil
}

func (m *MemoryStore) DeleteToken(server string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tokens, server)
	return nil
}
