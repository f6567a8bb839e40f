package auth

import "fmt"

// MockStore is an in-memory Store for tests.
type MockStore struct {
	creds *Credentials
}

// NewMockStore creates an empty mock store.
func NewMockStore() *MockStore {
	return &MockStore{}
}

func (m *MockStore) Store(creds *Credentials) error {
	if !creds.Valid() {
		return fmt.Errorf("refusing to store empty credentials")
	}
	copied := *creds
	m.creds = &copied
	return nil
}

func (m *MockStore) Retrieve() (*Credentials, error) {
	if m.creds == nil {
		return nil, fmt.Errorf("no credentials stored")
	}
	copied := *m.creds
	return &copied, nil
}

func (m *MockStore) Delete() error {
	m.creds = nil
	return nil
}

func (m *MockStore) Exists() bool {
	return m.creds != nil
}
