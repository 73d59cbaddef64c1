package claude

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog/log"

	"invoiceai/internal/config"
	"invoiceai/internal/extract"
)

const (
	apiURL     = "https://api.anthropic.com/v1/messages"
	apiVersion = "2023-06-01"
	maxTokens  = 4096
)

func init() {
	extract.RegisterDriver("claude", func(cfg *config.ExtractorConfig) (extract.Extractor, error) {
		if cfg.APIKey == "" {
			return nil, errors.New("anthropic API key is not configured")
		}
		return NewExtractor(cfg), nil
	})
}

// Extractor implements extract.Extractor using the Anthropic Messages API.
type Extractor struct {
	apiKey   string
	model    string
	endpoint string
	client   *http.Client
}

// NewExtractor creates a Claude-based invoice extractor.
func NewExtractor(cfg *config.ExtractorConfig) *Extractor {
	return newExtractor(cfg, apiURL)
}

// NewExtractorWithEndpoint creates an extractor pointing at a custom API
// endpoint (for testing).
func NewExtractorWithEndpoint(cfg *config.ExtractorConfig, endpoint string) *Extractor {
	return newExtractor(cfg, endpoint)
}

func newExtractor(cfg *config.ExtractorConfig, endpoint string) *Extractor {
	model := cfg.Model
	if model == "" {
		model = "claude-sonnet-4-5-20250929"
	}
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 120 * time.Second
	}
	return &Extractor{
		apiKey:   cfg.APIKey,
		model:    model,
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

func (e *Extractor) ExtractFile(ctx context.Context, path string) (*extract.ExtractedInvoice, error) {
	mimeType, err := extract.MimeTypeForFile(path)
	if err != nil {
		return nil, err
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}
	return e.ExtractBytes(ctx, content, mimeType)
}

func (e *Extractor) ExtractBytes(ctx context.Context, content []byte, mimeType string) (*extract.ExtractedInvoice, error) {
	if err := extract.ValidateMimeType(mimeType); err != nil {
		return nil, err
	}

	raw, err := e.invoke(ctx, content, mimeType)
	if err != nil {
		var exErr *extract.ExtractionError
		if errors.As(err, &exErr) {
			return nil, err
		}
		log.Error().
			Err(err).
			Msg("invoiceai: claude API error")
		return nil, &extract.ExtractionError{
			Msg: "failed to extract invoice data",
			Err: err,
		}
	}

	return extract.ParseResponse(raw)
}

// invoke sends the document and the extraction prompt as a single user turn
// and returns the first text segment of the model's reply.
func (e *Extractor) invoke(ctx context.Context, content []byte, mimeType string) (string, error) {
	reqBody := map[string]interface{}{
		"model":      e.model,
		"max_tokens": maxTokens,
		"messages": []map[string]interface{}{
			{
				"role":    "user",
				"content": buildContentBlocks(content, mimeType),
			},
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", e.apiKey)
	req.Header.Set("anthropic-version", apiVersion)

	resp, err := e.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling anthropic API: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("anthropic API error (status %d): %s", resp.StatusCode, string(respBody))
	}

	var parsed apiResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("unmarshaling response: %w", err)
	}
	if len(parsed.Content) == 0 {
		return "", fmt.Errorf("empty response from API")
	}
	return parsed.Content[0].Text, nil
}

// buildContentBlocks pairs the base64-encoded document with the prompt.
// PDFs go in a "document" block, raster types in an "image" block.
func buildContentBlocks(content []byte, mimeType string) []map[string]interface{} {
	encoded := base64.StdEncoding.EncodeToString(content)

	contentType := "image"
	if mimeType == "application/pdf" {
		contentType = "document"
	}

	return []map[string]interface{}{
		{
			"type": contentType,
			"source": map[string]interface{}{
				"type":       "base64",
				"media_type": mimeType,
				"data":       encoded,
			},
		},
		{
			"type": "text",
			"text": extract.ExtractionPrompt,
		},
	}
}

// apiResponse models the Anthropic Messages API response.
type apiResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}
