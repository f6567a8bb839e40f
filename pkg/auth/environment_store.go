package auth

import (
	"fmt"
	"os"
)

// EnvironmentStore reads credentials from GROKFAVES_* environment
// variables. It is read-only and never persists anything.
type EnvironmentStore struct{}

// NewEnvironmentStore creates the environment backend.
func NewEnvironmentStore() *EnvironmentStore {
	return &EnvironmentStore{}
}

func (e *EnvironmentStore) Store(_ *Credentials) error {
	return fmt.Errorf("environment store is read-only")
}

func (e *EnvironmentStore) Retrieve() (*Credentials, error) {
	token := os.Getenv("GROKFAVES_SESSION_TOKEN")
	if token == "" {
		return nil, fmt.Errorf("GROKFAVES_SESSION_TOKEN not set")
	}
	return &Credentials{
		SessionToken: token,
		CSRFToken:    os.Getenv("GROKFAVES_CSRF_TOKEN"),
		UserAgent:    os.Getenv("GROKFAVES_USER_AGENT"),
	}, nil
}

func (e *EnvironmentStore) Delete() error {
	return fmt.Errorf("environment store is read-only")
}

func (e *EnvironmentStore) Exists() bool {
	return os.Getenv("GROKFAVES_SESSION_TOKEN") != ""
}
