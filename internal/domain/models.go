package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// totalsMatchTolerance is the maximum absolute difference between the stored
// grand total and the recomputed total before the two are considered divergent.
var totalsMatchTolerance = decimal.New(1, -2) // 0.01

// Invoice is the aggregate root for an extracted invoice. Children are
// loaded eagerly and deleted with the header (cascade).
type Invoice struct {
	ID               uuid.UUID       `db:"id" json:"id"`
	TenantID         *uuid.UUID      `db:"tenant_id" json:"tenant_id,omitempty"`
	UserID           *uuid.UUID      `db:"user_id" json:"user_id,omitempty"`
	InvoiceNumber    *string         `db:"invoice_number" json:"invoice_number"`
	InvoiceDate      *time.Time      `db:"invoice_date" json:"invoice_date"`
	IssuerName       string          `db:"issuer_name" json:"issuer_name"`
	IssuerVAT        *string         `db:"issuer_vat" json:"issuer_vat"`
	IssuerAddress    *string         `db:"issuer_address" json:"issuer_address"`
	CustomerName     *string         `db:"customer_name" json:"customer_name"`
	CustomerVAT      *string         `db:"customer_vat" json:"customer_vat"`
	CustomerAddress  *string         `db:"customer_address" json:"customer_address"`
	Currency         string          `db:"currency" json:"currency"`
	Subtotal         decimal.Decimal `db:"subtotal" json:"subtotal"`
	VATTotal         decimal.Decimal `db:"vat_total" json:"vat_total"`
	GrandTotal       decimal.Decimal `db:"grand_total" json:"grand_total"`
	FilePath         *string         `db:"file_path" json:"file_path"`
	OriginalFilename *string         `db:"original_filename" json:"original_filename"`
	RawResponse      *string         `db:"raw_response" json:"-"`
	CreatedAt        time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time       `db:"updated_at" json:"updated_at"`

	LineItems    []InvoiceLineItem    `db:"-" json:"line_items"`
	Discounts    []InvoiceDiscount    `db:"-" json:"discounts"`
	OtherCharges []InvoiceOtherCharge `db:"-" json:"other_charges"`

	// TotalsMatch is derived from the loaded children, never stored.
	TotalsMatch bool `db:"-" json:"totals_match"`
}

// InvoiceLineItem is a single billed line on an invoice.
type InvoiceLineItem struct {
	ID          uuid.UUID        `db:"id" json:"id"`
	InvoiceID   uuid.UUID        `db:"invoice_id" json:"invoice_id"`
	Description string           `db:"description" json:"description"`
	Quantity    decimal.Decimal  `db:"quantity" json:"quantity"`
	UnitPrice   decimal.Decimal  `db:"unit_price" json:"unit_price"`
	VATRate     *decimal.Decimal `db:"vat_rate" json:"vat_rate"`
	LineTotal   decimal.Decimal  `db:"line_total" json:"line_total"`
	CreatedAt   time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time        `db:"updated_at" json:"updated_at"`
}

// CalculatedTotal returns quantity x unit price. The stored line_total is
// whatever the model reported; callers compare the two themselves.
func (li *InvoiceLineItem) CalculatedTotal() decimal.Decimal {
	return li.Quantity.Mul(li.UnitPrice)
}

// InvoiceDiscount is a positive amount subtracted from the invoice total.
type InvoiceDiscount struct {
	ID          uuid.UUID       `db:"id" json:"id"`
	InvoiceID   uuid.UUID       `db:"invoice_id" json:"invoice_id"`
	Description string          `db:"description" json:"description"`
	Amount      decimal.Decimal `db:"amount" json:"amount"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at" json:"updated_at"`
}

// InvoiceOtherCharge is a positive amount added to the invoice total
// (shipping, handling, service fees).
type InvoiceOtherCharge struct {
	ID          uuid.UUID       `db:"id" json:"id"`
	InvoiceID   uuid.UUID       `db:"invoice_id" json:"invoice_id"`
	Description string          `db:"description" json:"description"`
	Amount      decimal.Decimal `db:"amount" json:"amount"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at" json:"updated_at"`
}

// CalculatedSubtotal returns the sum of line item totals.
func (i *Invoice) CalculatedSubtotal() decimal.Decimal {
	sum := decimal.Zero
	for _, li := range i.LineItems {
		sum = sum.Add(li.LineTotal)
	}
	return sum
}

// TotalDiscounts returns the sum of discount amounts.
func (i *Invoice) TotalDiscounts() decimal.Decimal {
	sum := decimal.Zero
	for _, d := range i.Discounts {
		sum = sum.Add(d.Amount)
	}
	return sum
}

// TotalOtherCharges returns the sum of other charge amounts.
func (i *Invoice) TotalOtherCharges() decimal.Decimal {
	sum := decimal.Zero
	for _, c := range i.OtherCharges {
		sum = sum.Add(c.Amount)
	}
	return sum
}

// CheckTotalsMatch reports whether the recomputed total (line items minus
// discounts plus other charges plus VAT) agrees with the stored grand total
// within 0.01. A consistency signal only, never enforced at write time.
func (i *Invoice) CheckTotalsMatch() bool {
	calculated := i.CalculatedSubtotal().
		Sub(i.TotalDiscounts()).
		Add(i.TotalOtherCharges()).
		Add(i.VATTotal)
	return calculated.Sub(i.GrandTotal).Abs().LessThan(totalsMatchTolerance)
}
