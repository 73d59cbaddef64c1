package service

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"invoiceai/internal/domain"
	"invoiceai/internal/extract"
)

// AssembleContext carries request attribution for a newly extracted invoice.
type AssembleContext struct {
	TenantID         *uuid.UUID
	UserID           *uuid.UUID
	FilePath         *string
	OriginalFilename *string
}

// AssembleInvoice maps an extracted record into the Invoice aggregate,
// applying per-field defaults for anything the model left out. The tenant is
// attached to the header only; children inherit it through their parent
// reference. No side effects; persistence is the store's job.
func AssembleInvoice(rec *extract.ExtractedInvoice, actx AssembleContext) *domain.Invoice {
	inv := &domain.Invoice{
		ID:               uuid.New(),
		TenantID:         actx.TenantID,
		UserID:           actx.UserID,
		InvoiceNumber:    rec.InvoiceNumber,
		InvoiceDate:      parseInvoiceDate(rec.InvoiceDate),
		IssuerName:       strOrEmpty(rec.Issuer.Name),
		IssuerVAT:        rec.Issuer.VATNumber,
		IssuerAddress:    rec.Issuer.Address,
		CustomerName:     rec.Customer.Name,
		CustomerVAT:      rec.Customer.VATNumber,
		CustomerAddress:  rec.Customer.Address,
		Currency:         strDefault(rec.Currency, "EUR"),
		Subtotal:         decDefault(rec.Totals.Subtotal, decimal.Zero),
		VATTotal:         decDefault(rec.Totals.VATTotal, decimal.Zero),
		GrandTotal:       decDefault(rec.Totals.GrandTotal, decimal.Zero),
		FilePath:         actx.FilePath,
		OriginalFilename: actx.OriginalFilename,
		LineItems:        []domain.InvoiceLineItem{},
		Discounts:        []domain.InvoiceDiscount{},
		OtherCharges:     []domain.InvoiceOtherCharge{},
	}
	if rec.RawResponse != "" {
		raw := rec.RawResponse
		inv.RawResponse = &raw
	}

	for _, item := range rec.LineItems {
		inv.LineItems = append(inv.LineItems, domain.InvoiceLineItem{
			ID:          uuid.New(),
			InvoiceID:   inv.ID,
			Description: strOrEmpty(item.Description),
			Quantity:    decDefault(item.Quantity, decimal.NewFromInt(1)),
			UnitPrice:   decDefault(item.UnitPrice, decimal.Zero),
			VATRate:     item.VATRate,
			LineTotal:   decDefault(item.LineTotal, decimal.Zero),
		})
	}
	for _, d := range rec.Discounts {
		inv.Discounts = append(inv.Discounts, domain.InvoiceDiscount{
			ID:          uuid.New(),
			InvoiceID:   inv.ID,
			Description: strOrEmpty(d.Description),
			Amount:      decDefault(d.Amount, decimal.Zero),
		})
	}
	for _, c := range rec.OtherCharges {
		inv.OtherCharges = append(inv.OtherCharges, domain.InvoiceOtherCharge{
			ID:          uuid.New(),
			InvoiceID:   inv.ID,
			Description: strOrEmpty(c.Description),
			Amount:      decDefault(c.Amount, decimal.Zero),
		})
	}

	inv.TotalsMatch = inv.CheckTotalsMatch()
	return inv
}

// parseInvoiceDate accepts YYYY-MM-DD; anything else is treated like an
// absent field.
func parseInvoiceDate(s *string) *time.Time {
	if s == nil {
		return nil
	}
	t, err := time.Parse("2006-01-02", *s)
	if err != nil {
		return nil
	}
	return &t
}

func strOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func strDefault(s *string, def string) string {
	if s == nil || *s == "" {
		return def
	}
	return *s
}

func decDefault(d *decimal.Decimal, def decimal.Decimal) decimal.Decimal {
	if d == nil {
		return def
	}
	return *d
}
