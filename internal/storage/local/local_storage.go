package local

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"invoiceai/internal/config"
	"invoiceai/internal/port"
)

type localStorage struct {
	baseDir string
}

// NewLocalStorage creates a disk-backed FileStorage rooted at the configured
// local directory.
func NewLocalStorage(cfg *config.StorageConfig) (port.FileStorage, error) {
	if err := os.MkdirAll(cfg.LocalDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating storage dir: %w", err)
	}
	return &localStorage{baseDir: cfg.LocalDir}, nil
}

func (s *localStorage) Save(_ context.Context, key string, content []byte, _ string) error {
	full := filepath.Join(s.baseDir, key)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fmt.Errorf("local save: %w", err)
	}
	if err := os.WriteFile(full, content, 0o644); err != nil {
		return fmt.Errorf("local save: %w", err)
	}
	return nil
}

func (s *localStorage) Read(_ context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, key))
	if err != nil {
		return nil, fmt.Errorf("local read: %w", err)
	}
	return data, nil
}

func (s *localStorage) Delete(_ context.Context, key string) error {
	if err := os.Remove(filepath.Join(s.baseDir, key)); err != nil {
		return fmt.Errorf("local delete: %w", err)
	}
	return nil
}
