// Package storage writes downloaded media to organized destinations under
// a base directory.
package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
)

// Manager writes files at organized relative paths, creating folders on
// demand and skipping paths it has already written.
type Manager struct {
	baseDir string
	written map[string]bool
	mu      sync.RWMutex
}

// NewManager creates a manager rooted at baseDir.
func NewManager(baseDir string) (*Manager, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}
	return &Manager{
		baseDir: baseDir,
		written: make(map[string]bool),
	}, nil
}

// Exists reports whether the organized path already holds a file, either
// from this run or a previous one.
func (m *Manager) Exists(relPath string) bool {
	m.mu.RLock()
	cached := m.written[relPath]
	m.mu.RUnlock()
	if cached {
		return true
	}

	if _, err := os.Stat(filepath.Join(m.baseDir, relPath)); err == nil {
		m.mu.Lock()
		m.written[relPath] = true
		m.mu.Unlock()
		return true
	}
	return false
}

// Save writes the reader's content to the organized path. The write goes
// through a temp file and an atomic rename so an interrupted download never
// leaves a partial file at the destination.
func (m *Manager) Save(r io.Reader, relPath string) error {
	target := filepath.Join(m.baseDir, relPath)
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return fmt.Errorf("failed to create destination folder: %w", err)
	}

	tempPath := target + ".tmp"
	out, err := os.Create(tempPath)
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}

	_, copyErr := io.Copy(out, r)
	closeErr := out.Close()
	if copyErr != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to write file data: %w", copyErr)
	}
	if closeErr != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to close file: %w", closeErr)
	}

	if err := os.Rename(tempPath, target); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to move file into place: %w", err)
	}

	m.mu.Lock()
	m.written[relPath] = true
	m.mu.Unlock()
	return nil
}

// BaseDir returns the root the manager writes under.
func (m *Manager) BaseDir() string {
	return m.baseDir
}
