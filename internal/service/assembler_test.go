package service

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invoiceai/internal/extract"
)

func strPtr(s string) *string { return &s }

func decPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func fullRecord() *extract.ExtractedInvoice {
	return &extract.ExtractedInvoice{
		Issuer: extract.ExtractedParty{
			Name:      strPtr("Acme GmbH"),
			VATNumber: strPtr("DE123456789"),
			Address:   strPtr("1 Main St, Berlin"),
		},
		Customer: extract.ExtractedParty{
			Name: strPtr("Globex Corp"),
		},
		InvoiceNumber: strPtr("INV-2024-001"),
		InvoiceDate:   strPtr("2024-03-15"),
		Currency:      strPtr("USD"),
		LineItems: []extract.ExtractedLineItem{
			{
				Description: strPtr("Widget"),
				Quantity:    decPtr("2"),
				UnitPrice:   decPtr("10.50"),
				VATRate:     decPtr("19"),
				LineTotal:   decPtr("21.00"),
			},
		},
		Discounts:    []extract.ExtractedCharge{{Description: strPtr("Loyalty"), Amount: decPtr("1.00")}},
		OtherCharges: []extract.ExtractedCharge{{Description: strPtr("Shipping"), Amount: decPtr("4.00")}},
		Totals: extract.ExtractedTotals{
			Subtotal:   decPtr("21.00"),
			VATTotal:   decPtr("3.99"),
			GrandTotal: decPtr("27.99"),
		},
		RawResponse: "raw model text",
	}
}

func TestAssembleInvoice_FullRecord(t *testing.T) {
	tenantID := uuid.New()
	userID := uuid.New()
	key := "invoices/abc.pdf"
	name := "march.pdf"

	inv := AssembleInvoice(fullRecord(), AssembleContext{
		TenantID:         &tenantID,
		UserID:           &userID,
		FilePath:         &key,
		OriginalFilename: &name,
	})

	assert.NotEqual(t, uuid.Nil, inv.ID)
	assert.Equal(t, tenantID, *inv.TenantID)
	assert.Equal(t, userID, *inv.UserID)
	assert.Equal(t, "Acme GmbH", inv.IssuerName)
	assert.Equal(t, "Globex Corp", *inv.CustomerName)
	assert.Equal(t, "USD", inv.Currency)
	assert.Equal(t, "INV-2024-001", *inv.InvoiceNumber)
	require.NotNil(t, inv.InvoiceDate)
	assert.Equal(t, "2024-03-15", inv.InvoiceDate.Format("2006-01-02"))
	assert.Equal(t, key, *inv.FilePath)
	assert.Equal(t, name, *inv.OriginalFilename)
	require.NotNil(t, inv.RawResponse)
	assert.Equal(t, "raw model text", *inv.RawResponse)

	require.Len(t, inv.LineItems, 1)
	li := inv.LineItems[0]
	assert.Equal(t, inv.ID, li.InvoiceID)
	assert.Equal(t, "Widget", li.Description)
	assert.Equal(t, "21", li.LineTotal.String())
	require.NotNil(t, li.VATRate)
	assert.Equal(t, "19", li.VATRate.String())

	require.Len(t, inv.Discounts, 1)
	require.Len(t, inv.OtherCharges, 1)

	// 21 - 1 + 4 + 3.99 = 27.99
	assert.True(t, inv.TotalsMatch)
}

func TestAssembleInvoice_Defaults(t *testing.T) {
	rec := &extract.ExtractedInvoice{
		Issuer: extract.ExtractedParty{Name: strPtr("Acme GmbH")},
		LineItems: []extract.ExtractedLineItem{
			{}, // everything absent
		},
	}

	inv := AssembleInvoice(rec, AssembleContext{})

	assert.Nil(t, inv.TenantID)
	assert.Nil(t, inv.UserID)
	assert.Nil(t, inv.InvoiceNumber)
	assert.Nil(t, inv.InvoiceDate)
	assert.Nil(t, inv.CustomerName)
	assert.Equal(t, "EUR", inv.Currency)
	assert.True(t, inv.Subtotal.IsZero())
	assert.True(t, inv.VATTotal.IsZero())
	assert.True(t, inv.GrandTotal.IsZero())
	assert.Nil(t, inv.RawResponse)

	require.Len(t, inv.LineItems, 1)
	li := inv.LineItems[0]
	assert.Equal(t, "", li.Description)
	assert.Equal(t, "1", li.Quantity.String())
	assert.True(t, li.UnitPrice.IsZero())
	assert.True(t, li.LineTotal.IsZero())
	assert.Nil(t, li.VATRate)

	// Absent collections become empty, never nil.
	assert.NotNil(t, inv.Discounts)
	assert.Empty(t, inv.Discounts)
	assert.NotNil(t, inv.OtherCharges)
	assert.Empty(t, inv.OtherCharges)
}

func TestAssembleInvoice_EmptyCurrencyDefaults(t *testing.T) {
	rec := &extract.ExtractedInvoice{
		Issuer:   extract.ExtractedParty{Name: strPtr("Acme GmbH")},
		Currency: strPtr(""),
	}
	inv := AssembleInvoice(rec, AssembleContext{})
	assert.Equal(t, "EUR", inv.Currency)
}

func TestAssembleInvoice_UnparseableDate(t *testing.T) {
	rec := &extract.ExtractedInvoice{
		Issuer:      extract.ExtractedParty{Name: strPtr("Acme GmbH")},
		InvoiceDate: strPtr("15/03/2024"),
	}
	inv := AssembleInvoice(rec, AssembleContext{})
	assert.Nil(t, inv.InvoiceDate)
}

func TestAssembleInvoice_TenantOnHeaderOnly(t *testing.T) {
	tenantID := uuid.New()
	rec := fullRecord()
	inv := AssembleInvoice(rec, AssembleContext{TenantID: &tenantID})

	require.NotNil(t, inv.TenantID)
	for _, li := range inv.LineItems {
		assert.Equal(t, inv.ID, li.InvoiceID)
	}
	for _, d := range inv.Discounts {
		assert.Equal(t, inv.ID, d.InvoiceID)
	}
	for _, c := range inv.OtherCharges {
		assert.Equal(t, inv.ID, c.InvoiceID)
	}
}
