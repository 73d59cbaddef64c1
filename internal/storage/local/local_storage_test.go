package local

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invoiceai/internal/config"
)

func TestLocalStorageRoundTrip(t *testing.T) {
	s, err := NewLocalStorage(&config.StorageConfig{LocalDir: t.TempDir()})
	require.NoError(t, err)
	ctx := context.Background()

	content := []byte("%PDF-1.4 fake invoice")
	require.NoError(t, s.Save(ctx, "invoices/abc.pdf", content, "application/pdf"))

	got, err := s.Read(ctx, "invoices/abc.pdf")
	require.NoError(t, err)
	assert.Equal(t, content, got)

	require.NoError(t, s.Delete(ctx, "invoices/abc.pdf"))
	_, err = s.Read(ctx, "invoices/abc.pdf")
	assert.Error(t, err)
}

func TestLocalStorageDeleteMissing(t *testing.T) {
	s, err := NewLocalStorage(&config.StorageConfig{LocalDir: t.TempDir()})
	require.NoError(t, err)
	assert.Error(t, s.Delete(context.Background(), "nope.pdf"))
}
