// Package auth stores the host session credentials used by the live feed
// and the upscale API client. The system keychain is preferred, with an
// encrypted file fallback and a read-only environment backend.
package auth

import (
	"os"
	"path/filepath"
	"time"

	apperrors "grokfaves/pkg/errors"
)

// Credentials are the host session secrets.
type Credentials struct {
	SessionToken string    `json:"session_token"`
	CSRFToken    string    `json:"csrf_token,omitempty"`
	UserAgent    string    `json:"user_agent,omitempty"`
	LastModified time.Time `json:"last_modified"`
}

// Valid reports whether the credentials carry a usable session token.
func (c *Credentials) Valid() bool {
	return c != nil && c.SessionToken != ""
}

// Store persists the single host session credential set.
type Store interface {
	Store(creds *Credentials) error
	Retrieve() (*Credentials, error)
	Delete() error
	Exists() bool
}

// ErrNoCredentials is returned when no backend holds credentials.
var ErrNoCredentials = apperrors.New(apperrors.KindConfigurationMissing,
	"no session credentials found; run 'grokfaves auth set' first")

// Manager layers credential backends: environment first (read-only
// override), then system keychain, then the encrypted file.
type Manager struct {
	stores []Store
}

// NewManager builds a manager with every available backend.
func NewManager() (*Manager, error) {
	stores := []Store{NewEnvironmentStore()}

	if keyringStore, err := NewKeyringStore(); err == nil {
		stores = append(stores, keyringStore)
	}

	configDir, err := getConfigDir()
	if err != nil {
		return nil, err
	}
	encryptedStore, err := NewEncryptedFileStore(filepath.Join(configDir, "credentials.enc"))
	if err != nil {
		return nil, err
	}
	stores = append(stores, encryptedStore)

	return &Manager{stores: stores}, nil
}

// Retrieve returns credentials from the first backend that has them.
func (m *Manager) Retrieve() (*Credentials, error) {
	for _, store := range m.stores {
		creds, err := store.Retrieve()
		if err == nil && creds.Valid() {
			return creds, nil
		}
	}
	return nil, ErrNoCredentials
}

// Save writes credentials to every writable backend; the first success is
// enough.
func (m *Manager) Save(creds *Credentials) error {
	creds.LastModified = time.Now()
	var lastErr error = ErrNoCredentials
	for _, store := range m.stores {
		if err := store.Store(creds); err == nil {
			return nil
		} else {
			lastErr = err
		}
	}
	return lastErr
}

// Clear removes credentials from every backend.
func (m *Manager) Clear() error {
	var lastErr error
	for _, store := range m.stores {
		if !store.Exists() {
			continue
		}
		if err := store.Delete(); err != nil {
			lastErr = err
		}
	}
	return lastErr
}

func getConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "grokfaves"), nil
}
