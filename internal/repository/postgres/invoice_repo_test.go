package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invoiceai/internal/config"
	"invoiceai/internal/domain"
	"invoiceai/internal/port"
)

func testTables() *config.TablesConfig {
	return &config.TablesConfig{
		Prefix:       "invoiceai_",
		Invoices:     "invoices",
		LineItems:    "invoice_line_items",
		Discounts:    "invoice_discounts",
		OtherCharges: "invoice_other_charges",
	}
}

func newMockRepo(t *testing.T, mtEnabled bool) (port.InvoiceRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	sdb := sqlx.NewDb(db, "pgx")
	repo := NewInvoiceRepo(sdb, testTables(), &config.MultiTenancyConfig{
		Enabled: mtEnabled,
		Column:  "tenant_id",
	})
	return repo, mock
}

var invoiceColumns = []string{
	"id", "tenant_id", "user_id", "invoice_number", "invoice_date",
	"issuer_name", "issuer_vat", "issuer_address",
	"customer_name", "customer_vat", "customer_address",
	"currency", "subtotal", "vat_total", "grand_total",
	"file_path", "original_filename", "raw_response", "created_at", "updated_at",
}

func invoiceRows(id uuid.UUID, tenantID *uuid.UUID) *sqlmock.Rows {
	var tenant interface{}
	if tenantID != nil {
		tenant = tenantID.String()
	}
	now := time.Now().UTC()
	return sqlmock.NewRows(invoiceColumns).AddRow(
		id.String(), tenant, nil, "INV-1", nil,
		"Acme GmbH", nil, nil,
		nil, nil, nil,
		"EUR", "0", "0", "0",
		nil, nil, nil, now, now,
	)
}

var lineItemColumns = []string{"id", "invoice_id", "description", "quantity", "unit_price", "vat_rate", "line_total", "created_at", "updated_at"}
var chargeColumns = []string{"id", "invoice_id", "description", "amount", "created_at", "updated_at"}

func expectChildQueries(mock sqlmock.Sqlmock, invoiceID uuid.UUID) {
	children := []struct {
		table   string
		columns []string
	}{
		{"invoice_line_items", lineItemColumns},
		{"invoice_discounts", chargeColumns},
		{"invoice_other_charges", chargeColumns},
	}
	for _, c := range children {
		mock.ExpectQuery(`SELECT \* FROM invoiceai_` + c.table + ` WHERE invoice_id IN \(\$1\) ORDER BY created_at`).
			WithArgs(invoiceID.String()).
			WillReturnRows(sqlmock.NewRows(c.columns))
	}
}

func TestList_ScopedToTenant(t *testing.T) {
	repo, mock := newMockRepo(t, true)
	tenantID := uuid.New()
	invID := uuid.New()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM invoiceai_invoices WHERE 1=1 AND tenant_id = \$1`).
		WithArgs(tenantID.String()).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`FROM invoiceai_invoices WHERE 1=1 AND tenant_id = \$1\s+ORDER BY created_at DESC LIMIT \$2 OFFSET \$3`).
		WithArgs(tenantID.String(), 15, 0).
		WillReturnRows(invoiceRows(invID, &tenantID))
	expectChildQueries(mock, invID)

	invoices, total, err := repo.List(context.Background(), &tenantID, 0, 15)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, invoices, 1)
	assert.Equal(t, invID, invoices[0].ID)
	assert.NotNil(t, invoices[0].LineItems)
	assert.Empty(t, invoices[0].LineItems)
	assert.True(t, invoices[0].TotalsMatch)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestList_UnscopedWhenTenantNil(t *testing.T) {
	repo, mock := newMockRepo(t, true)

	mock.ExpectQuery(`^SELECT COUNT\(\*\) FROM invoiceai_invoices WHERE 1=1$`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(`FROM invoiceai_invoices WHERE 1=1\s+ORDER BY created_at DESC LIMIT \$1 OFFSET \$2`).
		WithArgs(15, 0).
		WillReturnRows(sqlmock.NewRows(invoiceColumns))

	invoices, total, err := repo.List(context.Background(), nil, 0, 15)
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, invoices)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestList_UnscopedWhenDisabled(t *testing.T) {
	repo, mock := newMockRepo(t, false)
	tenantID := uuid.New()

	// With multi-tenancy off the tenant argument must not reach the SQL.
	mock.ExpectQuery(`^SELECT COUNT\(\*\) FROM invoiceai_invoices WHERE 1=1$`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(`FROM invoiceai_invoices WHERE 1=1\s+ORDER BY created_at DESC LIMIT \$1 OFFSET \$2`).
		WithArgs(15, 0).
		WillReturnRows(sqlmock.NewRows(invoiceColumns))

	_, _, err := repo.List(context.Background(), &tenantID, 0, 15)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByID_ScopedToTenant(t *testing.T) {
	repo, mock := newMockRepo(t, true)
	tenantID := uuid.New()
	invID := uuid.New()

	mock.ExpectQuery(`FROM invoiceai_invoices WHERE id = \$1 AND tenant_id = \$2`).
		WithArgs(invID.String(), tenantID.String()).
		WillReturnRows(invoiceRows(invID, &tenantID))
	expectChildQueries(mock, invID)

	inv, err := repo.GetByID(context.Background(), &tenantID, invID)
	require.NoError(t, err)
	assert.Equal(t, invID, inv.ID)
	require.NotNil(t, inv.TenantID)
	assert.Equal(t, tenantID, *inv.TenantID)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByID_OtherTenantIsNotFound(t *testing.T) {
	repo, mock := newMockRepo(t, true)
	otherTenant := uuid.New()
	invID := uuid.New()

	// The row belongs to a different tenant, so the filtered query matches
	// nothing.
	mock.ExpectQuery(`FROM invoiceai_invoices WHERE id = \$1 AND tenant_id = \$2`).
		WithArgs(invID.String(), otherTenant.String()).
		WillReturnRows(sqlmock.NewRows(invoiceColumns))

	_, err := repo.GetByID(context.Background(), &otherTenant, invID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDelete_ScopedToTenant(t *testing.T) {
	repo, mock := newMockRepo(t, true)
	tenantID := uuid.New()
	invID := uuid.New()

	mock.ExpectExec(`DELETE FROM invoiceai_invoices WHERE id = \$1 AND tenant_id = \$2`).
		WithArgs(invID.String(), tenantID.String()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Delete(context.Background(), &tenantID, invID))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDelete_OtherTenantIsNotFound(t *testing.T) {
	repo, mock := newMockRepo(t, true)
	otherTenant := uuid.New()
	invID := uuid.New()

	mock.ExpectExec(`DELETE FROM invoiceai_invoices WHERE id = \$1 AND tenant_id = \$2`).
		WithArgs(invID.String(), otherTenant.String()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), &otherTenant, invID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDelete_UnscopedWhenDisabled(t *testing.T) {
	repo, mock := newMockRepo(t, false)
	tenantID := uuid.New()
	invID := uuid.New()

	mock.ExpectExec(`^DELETE FROM invoiceai_invoices WHERE id = \$1$`).
		WithArgs(invID.String()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Delete(context.Background(), &tenantID, invID))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_TransactionalInserts(t *testing.T) {
	repo, mock := newMockRepo(t, true)
	tenantID := uuid.New()

	inv := &domain.Invoice{
		ID:         uuid.New(),
		TenantID:   &tenantID,
		IssuerName: "Acme GmbH",
		Currency:   "EUR",
		LineItems: []domain.InvoiceLineItem{{
			ID:          uuid.New(),
			Description: "Widget",
			Quantity:    decimal.NewFromInt(1),
		}},
		Discounts:    []domain.InvoiceDiscount{},
		OtherCharges: []domain.InvoiceOtherCharge{},
	}
	inv.LineItems[0].InvoiceID = inv.ID

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO invoiceai_invoices \(\s*id, tenant_id, user_id,`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO invoiceai_invoice_line_items`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Create(context.Background(), inv))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_RollsBackOnHeaderFailure(t *testing.T) {
	repo, mock := newMockRepo(t, true)

	inv := &domain.Invoice{ID: uuid.New(), IssuerName: "Acme GmbH", Currency: "EUR"}

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO invoiceai_invoices`).
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	require.Error(t, repo.Create(context.Background(), inv))
	require.NoError(t, mock.ExpectationsWereMet())
}
