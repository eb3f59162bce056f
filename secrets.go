package thetactl

import (
	"errors"
	"sync"

	"github.com/zalando/go-keyring"
)

// ErrSecretNotFound occurs when a secret store has no entry for the
// requested service and account.
var ErrSecretNotFound = errors.New("secret not found")

// SecretStore persists opaque secrets keyed by service and account.
type SecretStore interface {
	Get(service, account string) (string, error)
	Set(service, account, secret string) error

	// Delete removes a stored secret. Deleting an absent entry is not
	// an error.
	Delete(service, account string) error
}

// KeyringStore stores secrets in the operating system's credential vault.
type KeyringStore struct{}

var _ SecretStore = KeyringStore{}

// Get returns the stored secret, or ErrSecretNotFound.
func (KeyringStore) Get(service, account string) (string, error) {
	secret, err := keyring.Get(service, account)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", ErrSecretNotFound
	}
	return secret, err
}

// Set writes a secret to the vault.
func (KeyringStore) Set(service, account, secret string) error {
	return keyring.Set(service, account, secret)
}

// Delete removes a secret from the vault.
func (KeyringStore) Delete(service, account string) error {
	err := keyring.Delete(service, account)
	if errors.Is(err, keyring.ErrNotFound) {
		return nil
	}
	return err
}

// MemoryStore is an in-process SecretStore. It backs tests and hosts
// without a usable vault; secrets do not survive a restart.
type MemoryStore struct {
	mu   sync.Mutex
	data map[string]map[string]string
}

var _ SecretStore = &MemoryStore{}

// Get returns the stored secret, or ErrSecretNotFound.
func (s *MemoryStore) Get(service, account string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if secret, ok := s.data[service][account]; ok {
		return secret, nil
	}
	return "", ErrSecretNotFound
}

// Set stores a secret in memory.
func (s *MemoryStore) Set(service, account, secret string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.data == nil {
		s.data = map[string]map[string]string{}
	}
	if s.data[service] == nil {
		s.data[service] = map[string]string{}
	}
	s.data[service][account] = secret
	return nil
}

// Delete removes a secret. Absent entries are ignored.
func (s *MemoryStore) Delete(service, account string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.data[service], account)
	return nil
}
