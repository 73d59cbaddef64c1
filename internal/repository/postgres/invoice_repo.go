package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"invoiceai/internal/config"
	"invoiceai/internal/domain"
	"invoiceai/internal/port"
)

type invoiceRepo struct {
	db           *sqlx.DB
	tables       *config.TablesConfig
	tenantCol    string
	tenantScoped bool
}

// NewInvoiceRepo creates a new PostgreSQL-backed InvoiceRepository. Table
// names and the tenant column come from configuration; tenant scoping is a
// no-op when multi-tenancy is disabled.
func NewInvoiceRepo(db *sqlx.DB, tables *config.TablesConfig, mt *config.MultiTenancyConfig) port.InvoiceRepository {
	return &invoiceRepo{
		db:           db,
		tables:       tables,
		tenantCol:    mt.Column,
		tenantScoped: mt.Enabled,
	}
}

// invoiceCols aliases the configured tenant column so rows always scan into
// the same struct field.
func (r *invoiceRepo) invoiceCols() string {
	return fmt.Sprintf(`id, %s AS tenant_id, user_id, invoice_number, invoice_date,
		issuer_name, issuer_vat, issuer_address,
		customer_name, customer_vat, customer_address,
		currency, subtotal, vat_total, grand_total,
		file_path, original_filename, raw_response, created_at, updated_at`, r.tenantCol)
}

// tenantFilter returns an extra WHERE clause and argument scoping a query to
// the resolved tenant. Empty when unscoped (disabled or no tenant resolved).
func (r *invoiceRepo) tenantFilter(argIdx int, tenantID *uuid.UUID) (string, []interface{}) {
	if !r.tenantScoped || tenantID == nil {
		return "", nil
	}
	return fmt.Sprintf(" AND %s = $%d", r.tenantCol, argIdx), []interface{}{*tenantID}
}

func (r *invoiceRepo) Create(ctx context.Context, inv *domain.Invoice) error {
	now := time.Now().UTC()
	inv.CreatedAt = now
	inv.UpdatedAt = now

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("invoiceRepo.Create begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := fmt.Sprintf(`INSERT INTO %s (
		id, %s, user_id, invoice_number, invoice_date,
		issuer_name, issuer_vat, issuer_address,
		customer_name, customer_vat, customer_address,
		currency, subtotal, vat_total, grand_total,
		file_path, original_filename, raw_response, created_at, updated_at
	) VALUES (
		$1, $2, $3, $4, $5,
		$6, $7, $8,
		$9, $10, $11,
		$12, $13, $14, $15,
		$16, $17, $18, $19, $20
	)`, r.tables.InvoicesTable(), r.tenantCol)

	_, err = tx.ExecContext(ctx, query,
		inv.ID, inv.TenantID, inv.UserID, inv.InvoiceNumber, inv.InvoiceDate,
		inv.IssuerName, inv.IssuerVAT, inv.IssuerAddress,
		inv.CustomerName, inv.CustomerVAT, inv.CustomerAddress,
		inv.Currency, inv.Subtotal, inv.VATTotal, inv.GrandTotal,
		inv.FilePath, inv.OriginalFilename, inv.RawResponse, inv.CreatedAt, inv.UpdatedAt)
	if err != nil {
		return fmt.Errorf("invoiceRepo.Create header: %w", err)
	}

	itemQuery := fmt.Sprintf(`INSERT INTO %s (
		id, invoice_id, description, quantity, unit_price, vat_rate, line_total, created_at, updated_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`, r.tables.LineItemsTable())
	for i := range inv.LineItems {
		item := &inv.LineItems[i]
		item.CreatedAt = now
		item.UpdatedAt = now
		_, err = tx.ExecContext(ctx, itemQuery,
			item.ID, item.InvoiceID, item.Description,
			item.Quantity, item.UnitPrice, item.VATRate, item.LineTotal,
			item.CreatedAt, item.UpdatedAt)
		if err != nil {
			return fmt.Errorf("invoiceRepo.Create line item: %w", err)
		}
	}

	discountQuery := fmt.Sprintf(`INSERT INTO %s (
		id, invoice_id, description, amount, created_at, updated_at
	) VALUES ($1, $2, $3, $4, $5, $6)`, r.tables.DiscountsTable())
	for i := range inv.Discounts {
		d := &inv.Discounts[i]
		d.CreatedAt = now
		d.UpdatedAt = now
		_, err = tx.ExecContext(ctx, discountQuery,
			d.ID, d.InvoiceID, d.Description, d.Amount, d.CreatedAt, d.UpdatedAt)
		if err != nil {
			return fmt.Errorf("invoiceRepo.Create discount: %w", err)
		}
	}

	chargeQuery := fmt.Sprintf(`INSERT INTO %s (
		id, invoice_id, description, amount, created_at, updated_at
	) VALUES ($1, $2, $3, $4, $5, $6)`, r.tables.OtherChargesTable())
	for i := range inv.OtherCharges {
		c := &inv.OtherCharges[i]
		c.CreatedAt = now
		c.UpdatedAt = now
		_, err = tx.ExecContext(ctx, chargeQuery,
			c.ID, c.InvoiceID, c.Description, c.Amount, c.CreatedAt, c.UpdatedAt)
		if err != nil {
			return fmt.Errorf("invoiceRepo.Create other charge: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("invoiceRepo.Create commit: %w", err)
	}
	return nil
}

func (r *invoiceRepo) List(ctx context.Context, tenantID *uuid.UUID, offset, limit int) ([]domain.Invoice, int, error) {
	filter, args := r.tenantFilter(1, tenantID)

	var total int
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE 1=1%s", r.tables.InvoicesTable(), filter)
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("invoiceRepo.List count: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM %s WHERE 1=1%s
		ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		r.invoiceCols(), r.tables.InvoicesTable(), filter, len(args)+1, len(args)+2)

	var invoices []domain.Invoice
	if err := r.db.SelectContext(ctx, &invoices, query, append(args, limit, offset)...); err != nil {
		return nil, 0, fmt.Errorf("invoiceRepo.List: %w", err)
	}

	if err := r.attachChildren(ctx, invoices); err != nil {
		return nil, 0, err
	}
	return invoices, total, nil
}

func (r *invoiceRepo) ListAll(ctx context.Context, tenantID *uuid.UUID) ([]domain.Invoice, error) {
	filter, args := r.tenantFilter(1, tenantID)

	query := fmt.Sprintf("SELECT %s FROM %s WHERE 1=1%s ORDER BY created_at DESC",
		r.invoiceCols(), r.tables.InvoicesTable(), filter)

	var invoices []domain.Invoice
	if err := r.db.SelectContext(ctx, &invoices, query, args...); err != nil {
		return nil, fmt.Errorf("invoiceRepo.ListAll: %w", err)
	}

	if err := r.attachChildren(ctx, invoices); err != nil {
		return nil, err
	}
	return invoices, nil
}

func (r *invoiceRepo) GetByID(ctx context.Context, tenantID *uuid.UUID, id uuid.UUID) (*domain.Invoice, error) {
	filter, args := r.tenantFilter(2, tenantID)

	query := fmt.Sprintf("SELECT %s FROM %s WHERE id = $1%s",
		r.invoiceCols(), r.tables.InvoicesTable(), filter)

	var inv domain.Invoice
	err := r.db.GetContext(ctx, &inv, query, append([]interface{}{id}, args...)...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("invoiceRepo.GetByID: %w", err)
	}

	invoices := []domain.Invoice{inv}
	if err := r.attachChildren(ctx, invoices); err != nil {
		return nil, err
	}
	return &invoices[0], nil
}

func (r *invoiceRepo) Delete(ctx context.Context, tenantID *uuid.UUID, id uuid.UUID) error {
	filter, args := r.tenantFilter(2, tenantID)

	query := fmt.Sprintf("DELETE FROM %s WHERE id = $1%s", r.tables.InvoicesTable(), filter)
	result, err := r.db.ExecContext(ctx, query, append([]interface{}{id}, args...)...)
	if err != nil {
		return fmt.Errorf("invoiceRepo.Delete: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// attachChildren eager-loads line items, discounts, and other charges for a
// batch of invoices and refreshes the derived totals_match flag.
func (r *invoiceRepo) attachChildren(ctx context.Context, invoices []domain.Invoice) error {
	byID := make(map[uuid.UUID]*domain.Invoice, len(invoices))
	ids := make([]uuid.UUID, 0, len(invoices))
	for i := range invoices {
		inv := &invoices[i]
		inv.LineItems = []domain.InvoiceLineItem{}
		inv.Discounts = []domain.InvoiceDiscount{}
		inv.OtherCharges = []domain.InvoiceOtherCharge{}
		byID[inv.ID] = inv
		ids = append(ids, inv.ID)
	}
	if len(ids) == 0 {
		return nil
	}

	itemQuery, itemArgs, err := sqlx.In(
		fmt.Sprintf("SELECT * FROM %s WHERE invoice_id IN (?) ORDER BY created_at", r.tables.LineItemsTable()), ids)
	if err != nil {
		return fmt.Errorf("invoiceRepo.attachChildren: %w", err)
	}
	var items []domain.InvoiceLineItem
	if err := r.db.SelectContext(ctx, &items, r.db.Rebind(itemQuery), itemArgs...); err != nil {
		return fmt.Errorf("invoiceRepo.attachChildren line items: %w", err)
	}
	for _, item := range items {
		inv := byID[item.InvoiceID]
		inv.LineItems = append(inv.LineItems, item)
	}

	discountQuery, discountArgs, err := sqlx.In(
		fmt.Sprintf("SELECT * FROM %s WHERE invoice_id IN (?) ORDER BY created_at", r.tables.DiscountsTable()), ids)
	if err != nil {
		return fmt.Errorf("invoiceRepo.attachChildren: %w", err)
	}
	var discounts []domain.InvoiceDiscount
	if err := r.db.SelectContext(ctx, &discounts, r.db.Rebind(discountQuery), discountArgs...); err != nil {
		return fmt.Errorf("invoiceRepo.attachChildren discounts: %w", err)
	}
	for _, d := range discounts {
		inv := byID[d.InvoiceID]
		inv.Discounts = append(inv.Discounts, d)
	}

	chargeQuery, chargeArgs, err := sqlx.In(
		fmt.Sprintf("SELECT * FROM %s WHERE invoice_id IN (?) ORDER BY created_at", r.tables.OtherChargesTable()), ids)
	if err != nil {
		return fmt.Errorf("invoiceRepo.attachChildren: %w", err)
	}
	var charges []domain.InvoiceOtherCharge
	if err := r.db.SelectContext(ctx, &charges, r.db.Rebind(chargeQuery), chargeArgs...); err != nil {
		return fmt.Errorf("invoiceRepo.attachChildren other charges: %w", err)
	}
	for _, c := range charges {
		inv := byID[c.InvoiceID]
		inv.OtherCharges = append(inv.OtherCharges, c)
	}

	for i := range invoices {
		invoices[i].TotalsMatch = invoices[i].CheckTotalsMatch()
	}
	return nil
}
