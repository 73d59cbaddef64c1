package claude

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invoiceai/internal/config"
	"invoiceai/internal/extract"
)

const validReply = `{
	"issuer": {"name": "Acme GmbH"},
	"customer": {"name": "Globex Corp"},
	"invoice_number": "INV-1",
	"currency": "EUR",
	"line_items": [],
	"discounts": [],
	"other_charges": [],
	"totals": {"subtotal": 0, "vat_total": 0, "grand_total": 0}
}`

func testConfig() *config.ExtractorConfig {
	return &config.ExtractorConfig{
		Driver:      "claude",
		APIKey:      "test-key",
		Model:       "claude-sonnet-4-5-20250929",
		TimeoutSecs: 5,
	}
}

// replyWith returns a test server answering like the Messages API, capturing
// each request body into got.
func replyWith(t *testing.T, text string, got *map[string]interface{}) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		assert.Equal(t, "2023-06-01", r.Header.Get("anthropic-version"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		if got != nil {
			require.NoError(t, json.NewDecoder(r.Body).Decode(got))
		}
		resp := map[string]interface{}{
			"content": []map[string]string{{"type": "text", "text": text}},
		}
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
}

func TestExtractBytes_Success(t *testing.T) {
	var got map[string]interface{}
	srv := replyWith(t, validReply, &got)
	defer srv.Close()

	e := NewExtractorWithEndpoint(testConfig(), srv.URL)
	rec, err := e.ExtractBytes(context.Background(), []byte("fake-image"), "image/png")
	require.NoError(t, err)

	assert.Equal(t, "Acme GmbH", *rec.Issuer.Name)
	assert.Equal(t, "INV-1", *rec.InvoiceNumber)
	assert.Equal(t, validReply, rec.RawResponse)

	assert.Equal(t, "claude-sonnet-4-5-20250929", got["model"])
	assert.Equal(t, float64(4096), got["max_tokens"])
}

func TestExtractBytes_ContentBlockTypes(t *testing.T) {
	cases := map[string]string{
		"application/pdf": "document",
		"image/jpeg":      "image",
		"image/png":       "image",
		"image/gif":       "image",
		"image/webp":      "image",
	}
	for mimeType, wantBlock := range cases {
		var got map[string]interface{}
		srv := replyWith(t, validReply, &got)

		e := NewExtractorWithEndpoint(testConfig(), srv.URL)
		_, err := e.ExtractBytes(context.Background(), []byte("data"), mimeType)
		require.NoError(t, err, mimeType)

		messages := got["messages"].([]interface{})
		blocks := messages[0].(map[string]interface{})["content"].([]interface{})
		require.Len(t, blocks, 2, mimeType)

		first := blocks[0].(map[string]interface{})
		assert.Equal(t, wantBlock, first["type"], mimeType)
		source := first["source"].(map[string]interface{})
		assert.Equal(t, "base64", source["type"])
		assert.Equal(t, mimeType, source["media_type"])

		second := blocks[1].(map[string]interface{})
		assert.Equal(t, "text", second["type"])
		assert.NotEmpty(t, second["text"])

		srv.Close()
	}
}

func TestExtractBytes_UnsupportedMimeType(t *testing.T) {
	e := NewExtractorWithEndpoint(testConfig(), "http://unused.invalid")
	_, err := e.ExtractBytes(context.Background(), []byte("data"), "text/plain")
	require.Error(t, err)

	var invErr *extract.InvalidFileError
	assert.True(t, errors.As(err, &invErr))
}

func TestExtractBytes_APIFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": "overloaded"}`, http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	e := NewExtractorWithEndpoint(testConfig(), srv.URL)
	_, err := e.ExtractBytes(context.Background(), []byte("data"), "image/png")
	require.Error(t, err)

	var exErr *extract.ExtractionError
	require.True(t, errors.As(err, &exErr))
	assert.Empty(t, exErr.RawResponse)
}

func TestExtractBytes_UnparseableReplyKeepsRaw(t *testing.T) {
	srv := replyWith(t, "I cannot read this document.", nil)
	defer srv.Close()

	e := NewExtractorWithEndpoint(testConfig(), srv.URL)
	_, err := e.ExtractBytes(context.Background(), []byte("data"), "image/png")
	require.Error(t, err)

	var exErr *extract.ExtractionError
	require.True(t, errors.As(err, &exErr))
	assert.Equal(t, "I cannot read this document.", exErr.RawResponse)
}

func TestExtractFile(t *testing.T) {
	srv := replyWith(t, validReply, nil)
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "invoice.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4 fake"), 0o644))

	e := NewExtractorWithEndpoint(testConfig(), srv.URL)
	rec, err := e.ExtractFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "Acme GmbH", *rec.Issuer.Name)
}

func TestExtractFile_Missing(t *testing.T) {
	e := NewExtractorWithEndpoint(testConfig(), "http://unused.invalid")
	_, err := e.ExtractFile(context.Background(), filepath.Join(t.TempDir(), "nope.pdf"))
	require.Error(t, err)

	var invErr *extract.InvalidFileError
	assert.True(t, errors.As(err, &invErr))
}

func TestDriverRegistration(t *testing.T) {
	cfg := testConfig()
	e, err := extract.NewExtractor(cfg)
	require.NoError(t, err)
	assert.NotNil(t, e)

	cfg.APIKey = ""
	_, err = extract.NewExtractor(cfg)
	assert.Error(t, err)

	cfg.Driver = "unknown"
	_, err = extract.NewExtractor(cfg)
	assert.Error(t, err)
}
