package auth

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"syscall"

	"golang.org/x/crypto/pbkdf2"
	"golang.org/x/term"
)

const (
	saltSize   = 32
	keySize    = 32
	iterations = 100000
)

// EncryptedFileStore persists credentials in a passphrase-encrypted file.
// Used when no system keychain is available.
type EncryptedFileStore struct {
	filepath   string
	passphrase string
	mu         sync.RWMutex
}

type encryptedFile struct {
	Salt  string `json:"salt"`
	Nonce string `json:"nonce"`
	Data  string `json:"data"`
}

// NewEncryptedFileStore creates a store at filePath. The passphrase comes
// from GROKFAVES_PASSPHRASE or, failing that, an interactive prompt at
// first use.
func NewEncryptedFileStore(filePath string) (*EncryptedFileStore, error) {
	dir := filepath.Dir(filePath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}
	return &EncryptedFileStore{filepath: filePath}, nil
}

func (e *EncryptedFileStore) Store(creds *Credentials) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !creds.Valid() {
		return fmt.Errorf("refusing to store empty credentials")
	}
	passphrase, err := e.getPassphrase()
	if err != nil {
		return err
	}

	plaintext, err := json.Marshal(creds)
	if err != nil {
		return fmt.Errorf("failed to serialize credentials: %w", err)
	}

	salt := make([]byte, saltSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return fmt.Errorf("failed to generate salt: %w", err)
	}

	key := pbkdf2.Key([]byte(passphrase), salt, iterations, keySize, sha256.New)
	block, err := aes.NewCipher(key)
	if err != nil {
		return fmt.Errorf("failed to build cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return fmt.Errorf("failed to build GCM: %w", err)
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return fmt.Errorf("failed to generate nonce: %w", err)
	}

	payload := encryptedFile{
		Salt:  base64.StdEncoding.EncodeToString(salt),
		Nonce: base64.StdEncoding.EncodeToString(nonce),
		Data:  base64.StdEncoding.EncodeToString(gcm.Seal(nil, nonce, plaintext, nil)),
	}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode store file: %w", err)
	}
	if err := os.WriteFile(e.filepath, data, 0600); err != nil {
		return fmt.Errorf("failed to write store file: %w", err)
	}
	return nil
}

func (e *EncryptedFileStore) Retrieve() (*Credentials, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	raw, err := os.ReadFile(e.filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read store file: %w", err)
	}

	var payload encryptedFile
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("failed to decode store file: %w", err)
	}

	salt, err := base64.StdEncoding.DecodeString(payload.Salt)
	if err != nil {
		return nil, fmt.Errorf("failed to decode salt: %w", err)
	}
	nonce, err := base64.StdEncoding.DecodeString(payload.Nonce)
	if err != nil {
		return nil, fmt.Errorf("failed to decode nonce: %w", err)
	}
	ciphertext, err := base64.StdEncoding.DecodeString(payload.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode payload: %w", err)
	}

	passphrase, err := e.getPassphrase()
	if err != nil {
		return nil, err
	}

	key := pbkdf2.Key([]byte(passphrase), salt, iterations, keySize, sha256.New)
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to build cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to build GCM: %w", err)
	}

	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt credentials (wrong passphrase?): %w", err)
	}

	var creds Credentials
	if err := json.Unmarshal(plaintext, &creds); err != nil {
		return nil, fmt.Errorf("failed to parse credentials: %w", err)
	}
	return &creds, nil
}

func (e *EncryptedFileStore) Delete() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := os.Remove(e.filepath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove store file: %w", err)
	}
	return nil
}

func (e *EncryptedFileStore) Exists() bool {
	_, err := os.Stat(e.filepath)
	return err == nil
}

// getPassphrase resolves the encryption passphrase, caching it for the
// process lifetime.
func (e *EncryptedFileStore) getPassphrase() (string, error) {
	if e.passphrase != "" {
		return e.passphrase, nil
	}
	if pass := os.Getenv("GROKFAVES_PASSPHRASE"); pass != "" {
		e.passphrase = pass
		return pass, nil
	}

	if !term.IsTerminal(int(syscall.Stdin)) {
		return "", fmt.Errorf("no passphrase available: set GROKFAVES_PASSPHRASE or run interactively")
	}
	fmt.Fprint(os.Stderr, "Passphrase for credential store: ")
	raw, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("failed to read passphrase: %w", err)
	}
	if len(raw) == 0 {
		return "", fmt.Errorf("passphrase must not be empty")
	}
	e.passphrase = string(raw)
	return e.passphrase, nil
}
