package extract

import (
	"context"

	"github.com/shopspring/decimal"
)

// Extractor abstracts model-based invoice data extraction. Implementations
// are registered as named drivers; see RegisterDriver.
type Extractor interface {
	// ExtractFile validates a file on the local filesystem and extracts
	// structured invoice data from it.
	ExtractFile(ctx context.Context, path string) (*ExtractedInvoice, error)
	// ExtractBytes extracts structured invoice data from in-memory file
	// content with a declared MIME type.
	ExtractBytes(ctx context.Context, content []byte, mimeType string) (*ExtractedInvoice, error)
}

// ExtractedInvoice is the intermediate record decoded from the model's JSON
// reply. Fields the model could not determine are nil; defaults are applied
// once, at the assembler boundary.
type ExtractedInvoice struct {
	Issuer        ExtractedParty      `json:"issuer"`
	Customer      ExtractedParty      `json:"customer"`
	InvoiceNumber *string             `json:"invoice_number"`
	InvoiceDate   *string             `json:"invoice_date"`
	Currency      *string             `json:"currency"`
	LineItems     []ExtractedLineItem `json:"line_items"`
	Discounts     []ExtractedCharge   `json:"discounts"`
	OtherCharges  []ExtractedCharge   `json:"other_charges"`
	Totals        ExtractedTotals     `json:"totals"`

	// RawResponse is the verbatim model reply, kept for audit. Stripped
	// before returning extraction-only results to callers.
	RawResponse string `json:"raw_response,omitempty"`
}

// ExtractedParty holds issuer or customer details.
type ExtractedParty struct {
	Name      *string `json:"name"`
	VATNumber *string `json:"vat_number"`
	Address   *string `json:"address"`
}

// ExtractedLineItem is one billed line as reported by the model.
type ExtractedLineItem struct {
	Description *string          `json:"description"`
	Quantity    *decimal.Decimal `json:"quantity"`
	UnitPrice   *decimal.Decimal `json:"unit_price"`
	VATRate     *decimal.Decimal `json:"vat_rate"`
	LineTotal   *decimal.Decimal `json:"line_total"`
}

// ExtractedCharge is a discount or other charge as reported by the model.
type ExtractedCharge struct {
	Description *string          `json:"description"`
	Amount      *decimal.Decimal `json:"amount"`
}

// ExtractedTotals holds the invoice totals as reported by the model.
type ExtractedTotals struct {
	Subtotal   *decimal.Decimal `json:"subtotal"`
	VATTotal   *decimal.Decimal `json:"vat_total"`
	GrandTotal *decimal.Decimal `json:"grand_total"`
}

// WithoutRawResponse returns a shallow copy with the audit text removed.
func (e *ExtractedInvoice) WithoutRawResponse() *ExtractedInvoice {
	c := *e
	c.RawResponse = ""
	return &c
}
