package mocks

import (
	"context"
	"io"
	"mime/multipart"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"invoiceai/internal/domain"
	"invoiceai/internal/extract"
	"invoiceai/internal/service"
)

// MockInvoiceService is a mock implementation of service.InvoiceService.
type MockInvoiceService struct {
	mock.Mock
}

func (m *MockInvoiceService) Upload(ctx context.Context, input service.UploadInvoiceInput) (*domain.Invoice, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Invoice), args.Error(1)
}

func (m *MockInvoiceService) ExtractOnly(ctx context.Context, file multipart.File, header *multipart.FileHeader) (*extract.ExtractedInvoice, error) {
	args := m.Called(ctx, file, header)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*extract.ExtractedInvoice), args.Error(1)
}

func (m *MockInvoiceService) List(ctx context.Context, tenantID *uuid.UUID, page, perPage int) ([]domain.Invoice, int, error) {
	args := m.Called(ctx, tenantID, page, perPage)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.Invoice), args.Int(1), args.Error(2)
}

func (m *MockInvoiceService) GetByID(ctx context.Context, tenantID *uuid.UUID, id uuid.UUID) (*domain.Invoice, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Invoice), args.Error(1)
}

func (m *MockInvoiceService) Delete(ctx context.Context, tenantID *uuid.UUID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

func (m *MockInvoiceService) Export(ctx context.Context, tenantID *uuid.UUID, format service.ExportFormat, w io.Writer) error {
	args := m.Called(ctx, tenantID, format, w)
	return args.Error(0)
}

func (m *MockInvoiceService) DownloadFile(ctx context.Context, tenantID *uuid.UUID, id uuid.UUID) (*service.InvoiceFileDownload, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.InvoiceFileDownload), args.Error(1)
}
