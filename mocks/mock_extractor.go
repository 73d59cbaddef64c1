package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"invoiceai/internal/extract"
)

// MockExtractor is a mock implementation of extract.Extractor.
type MockExtractor struct {
	mock.Mock
}

func (m *MockExtractor) ExtractFile(ctx context.Context, path string) (*extract.ExtractedInvoice, error) {
	args := m.Called(ctx, path)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*extract.ExtractedInvoice), args.Error(1)
}

func (m *MockExtractor) ExtractBytes(ctx context.Context, content []byte, mimeType string) (*extract.ExtractedInvoice, error) {
	args := m.Called(ctx, content, mimeType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*extract.ExtractedInvoice), args.Error(1)
}
