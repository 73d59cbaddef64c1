package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"invoiceai/internal/domain"
)

// bom is the UTF-8 byte order mark, written for Excel compatibility on Windows.
var bom = []byte{0xEF, 0xBB, 0xBF}

// columns defines the export header row.
var columns = []string{
	"Invoice Number",
	"Invoice Date",
	"Issuer Name",
	"Issuer VAT",
	"Customer Name",
	"Customer VAT",
	"Currency",
	"Subtotal",
	"VAT Total",
	"Grand Total",
	"Line Item Count",
	"Total Discounts",
	"Total Other Charges",
	"Totals Match",
	"Original Filename",
	"Created At",
}

// WriteCSV writes the invoice batch as CSV.
func WriteCSV(w io.Writer, invoices []domain.Invoice) error {
	if _, err := w.Write(bom); err != nil {
		return fmt.Errorf("writing BOM: %w", err)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(columns); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i := range invoices {
		if err := cw.Write(invoiceRow(&invoices[i])); err != nil {
			return fmt.Errorf("writing row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// invoiceRow flattens one invoice into export column order.
func invoiceRow(inv *domain.Invoice) []string {
	return []string{
		strDeref(inv.InvoiceNumber),
		dateDeref(inv.InvoiceDate),
		inv.IssuerName,
		strDeref(inv.IssuerVAT),
		strDeref(inv.CustomerName),
		strDeref(inv.CustomerVAT),
		inv.Currency,
		inv.Subtotal.StringFixed(2),
		inv.VATTotal.StringFixed(2),
		inv.GrandTotal.StringFixed(2),
		strconv.Itoa(len(inv.LineItems)),
		inv.TotalDiscounts().StringFixed(2),
		inv.TotalOtherCharges().StringFixed(2),
		strconv.FormatBool(inv.TotalsMatch),
		strDeref(inv.OriginalFilename),
		inv.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func strDeref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func dateDeref(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}
