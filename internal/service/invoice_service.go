package service

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"invoiceai/internal/config"
	"invoiceai/internal/domain"
	"invoiceai/internal/export"
	"invoiceai/internal/extract"
	"invoiceai/internal/port"
)

// UploadInvoiceInput is the DTO for invoice upload requests.
type UploadInvoiceInput struct {
	TenantID *uuid.UUID
	UserID   *uuid.UUID
	File     multipart.File
	Header   *multipart.FileHeader
}

// ExportFormat selects the invoice export encoding.
type ExportFormat string

const (
	ExportCSV  ExportFormat = "csv"
	ExportXLSX ExportFormat = "xlsx"
)

// InvoiceService defines the invoice processing contract.
type InvoiceService interface {
	// Upload stores the file, extracts invoice data from it, and persists
	// the assembled aggregate. The stored file is removed again on any
	// failure after it was written.
	Upload(ctx context.Context, input UploadInvoiceInput) (*domain.Invoice, error)
	// ExtractOnly runs the extraction pipeline without persisting anything.
	// The raw model response is stripped from the result.
	ExtractOnly(ctx context.Context, file multipart.File, header *multipart.FileHeader) (*extract.ExtractedInvoice, error)
	List(ctx context.Context, tenantID *uuid.UUID, page, perPage int) ([]domain.Invoice, int, error)
	GetByID(ctx context.Context, tenantID *uuid.UUID, id uuid.UUID) (*domain.Invoice, error)
	// Delete removes the invoice with its children and, best-effort, its
	// stored file.
	Delete(ctx context.Context, tenantID *uuid.UUID, id uuid.UUID) error
	// DownloadFile returns the stored source file of an invoice.
	// domain.ErrNotFound when the invoice has no stored file.
	DownloadFile(ctx context.Context, tenantID *uuid.UUID, id uuid.UUID) (*InvoiceFileDownload, error)
	Export(ctx context.Context, tenantID *uuid.UUID, format ExportFormat, w io.Writer) error
}

// InvoiceFileDownload is the stored source file of an invoice.
type InvoiceFileDownload struct {
	Content     []byte
	Filename    string
	ContentType string
}

type invoiceService struct {
	repo      port.InvoiceRepository
	storage   port.FileStorage
	extractor extract.Extractor
	keyPrefix string
	maxBytes  int64
}

// NewInvoiceService creates a new InvoiceService implementation.
func NewInvoiceService(
	repo port.InvoiceRepository,
	storage port.FileStorage,
	extractor extract.Extractor,
	storageCfg *config.StorageConfig,
	uploadCfg *config.UploadConfig,
) InvoiceService {
	return &invoiceService{
		repo:      repo,
		storage:   storage,
		extractor: extractor,
		keyPrefix: storageCfg.Path,
		maxBytes:  uploadCfg.MaxFileSizeKB * 1024,
	}
}

func (s *invoiceService) Upload(ctx context.Context, input UploadInvoiceInput) (*domain.Invoice, error) {
	contentType, ext, err := s.validateUpload(input.Header)
	if err != nil {
		return nil, err
	}

	content, err := io.ReadAll(input.File)
	if err != nil {
		return nil, fmt.Errorf("reading upload: %w", err)
	}

	key := path.Join(s.keyPrefix, uuid.New().String()+"."+ext)
	if err := s.storage.Save(ctx, key, content, contentType); err != nil {
		return nil, fmt.Errorf("storing upload: %w", err)
	}

	rec, err := s.extractor.ExtractBytes(ctx, content, contentType)
	if err != nil {
		s.cleanupFile(ctx, key)
		return nil, err
	}

	filename := input.Header.Filename
	inv := AssembleInvoice(rec, AssembleContext{
		TenantID:         input.TenantID,
		UserID:           input.UserID,
		FilePath:         &key,
		OriginalFilename: &filename,
	})

	if err := s.repo.Create(ctx, inv); err != nil {
		s.cleanupFile(ctx, key)
		return nil, err
	}
	return inv, nil
}

func (s *invoiceService) ExtractOnly(ctx context.Context, file multipart.File, header *multipart.FileHeader) (*extract.ExtractedInvoice, error) {
	contentType, _, err := s.validateUpload(header)
	if err != nil {
		return nil, err
	}

	content, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("reading upload: %w", err)
	}

	rec, err := s.extractor.ExtractBytes(ctx, content, contentType)
	if err != nil {
		return nil, err
	}
	return rec.WithoutRawResponse(), nil
}

func (s *invoiceService) List(ctx context.Context, tenantID *uuid.UUID, page, perPage int) ([]domain.Invoice, int, error) {
	if page < 1 {
		page = 1
	}
	return s.repo.List(ctx, tenantID, (page-1)*perPage, perPage)
}

func (s *invoiceService) GetByID(ctx context.Context, tenantID *uuid.UUID, id uuid.UUID) (*domain.Invoice, error) {
	return s.repo.GetByID(ctx, tenantID, id)
}

func (s *invoiceService) Delete(ctx context.Context, tenantID *uuid.UUID, id uuid.UUID) error {
	inv, err := s.repo.GetByID(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, tenantID, id); err != nil {
		return err
	}
	if inv.FilePath != nil {
		s.cleanupFile(ctx, *inv.FilePath)
	}
	return nil
}

func (s *invoiceService) DownloadFile(ctx context.Context, tenantID *uuid.UUID, id uuid.UUID) (*InvoiceFileDownload, error) {
	inv, err := s.repo.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if inv.FilePath == nil {
		return nil, domain.ErrNotFound
	}

	content, err := s.storage.Read(ctx, *inv.FilePath)
	if err != nil {
		return nil, fmt.Errorf("reading stored file: %w", err)
	}

	filename := path.Base(*inv.FilePath)
	if inv.OriginalFilename != nil {
		filename = *inv.OriginalFilename
	}

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(*inv.FilePath), "."))
	contentType, ok := domain.AllowedUploadExtensions[ext]
	if !ok {
		contentType = "application/octet-stream"
	}

	return &InvoiceFileDownload{
		Content:     content,
		Filename:    filename,
		ContentType: contentType,
	}, nil
}

func (s *invoiceService) Export(ctx context.Context, tenantID *uuid.UUID, format ExportFormat, w io.Writer) error {
	invoices, err := s.repo.ListAll(ctx, tenantID)
	if err != nil {
		return err
	}
	switch format {
	case ExportXLSX:
		return export.WriteXLSX(w, invoices)
	default:
		return export.WriteCSV(w, invoices)
	}
}

// validateUpload enforces the upload intake rules: allowed extension and
// maximum size. Returns the MIME type implied by the extension.
func (s *invoiceService) validateUpload(header *multipart.FileHeader) (contentType, ext string, err error) {
	ext = strings.ToLower(strings.TrimPrefix(filepath.Ext(header.Filename), "."))
	contentType, ok := domain.AllowedUploadExtensions[ext]
	if !ok {
		return "", "", domain.ErrUnsupportedFileType
	}
	if header.Size > s.maxBytes {
		return "", "", domain.ErrFileTooLarge
	}
	return contentType, ext, nil
}

// cleanupFile deletes a stored file, best-effort. Failures are logged and
// never surfaced to the caller.
func (s *invoiceService) cleanupFile(ctx context.Context, key string) {
	if err := s.storage.Delete(ctx, key); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("invoiceai: failed to clean up stored file")
	}
}
