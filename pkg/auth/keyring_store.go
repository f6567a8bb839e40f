package auth

import (
	"encoding/json"
	"fmt"

	"github.com/zalando/go-keyring"
)

const (
	keyringService = "grokfaves"
	keyringKey     = "host_session"
)

// KeyringStore keeps the session credentials in the system keychain.
type KeyringStore struct{}

// NewKeyringStore probes keychain availability before returning a store.
func NewKeyringStore() (*KeyringStore, error) {
	testKey := "test_availability"
	if err := keyring.Set(keyringService, testKey, "test"); err != nil {
		return nil, fmt.Errorf("keyring not available: %w", err)
	}
	_ = keyring.Delete(keyringService, testKey)
	return &KeyringStore{}, nil
}

func (k *KeyringStore) Store(creds *Credentials) error {
	if !creds.Valid() {
		return fmt.Errorf("refusing to store empty credentials")
	}
	data, err := json.Marshal(creds)
	if err != nil {
		return fmt.Errorf("failed to serialize credentials: %w", err)
	}
	if err := keyring.Set(keyringService, keyringKey, string(data)); err != nil {
		return fmt.Errorf("failed to store in keyring: %w", err)
	}
	return nil
}

func (k *KeyringStore) Retrieve() (*Credentials, error) {
	data, err := keyring.Get(keyringService, keyringKey)
	if err != nil {
		return nil, fmt.Errorf("failed to read keyring: %w", err)
	}
	var creds Credentials
	if err := json.Unmarshal([]byte(data), &creds); err != nil {
		return nil, fmt.Errorf("failed to parse stored credentials: %w", err)
	}
	return &creds, nil
}

func (k *KeyringStore) Delete() error {
	return keyring.Delete(keyringService, keyringKey)
}

func (k *KeyringStore) Exists() bool {
	_, err := keyring.Get(keyringService, keyringKey)
	return err == nil
}
