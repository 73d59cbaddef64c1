package port

import (
	"context"

	"github.com/google/uuid"

	"invoiceai/internal/domain"
)

// InvoiceRepository abstracts persistence for the invoice aggregate.
// Every read and delete takes the resolved tenant explicitly; nil means
// unscoped (multi-tenancy disabled or no tenant resolved).
type InvoiceRepository interface {
	// Create durably writes the header and all children in one transaction.
	Create(ctx context.Context, inv *domain.Invoice) error
	// List returns invoices newest-first with children eager-loaded,
	// plus the total count for pagination.
	List(ctx context.Context, tenantID *uuid.UUID, offset, limit int) ([]domain.Invoice, int, error)
	// ListAll returns every invoice visible to the tenant, children included.
	ListAll(ctx context.Context, tenantID *uuid.UUID) ([]domain.Invoice, error)
	// GetByID returns one invoice with children, or domain.ErrNotFound.
	GetByID(ctx context.Context, tenantID *uuid.UUID, id uuid.UUID) (*domain.Invoice, error)
	// Delete removes the header; children go with it via cascade.
	Delete(ctx context.Context, tenantID *uuid.UUID, id uuid.UUID) error
}
