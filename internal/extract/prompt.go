package extract

// ExtractionPrompt is the fixed instruction sent to the model alongside the
// document. It embeds the exact JSON schema the reply must follow; nothing
// about it varies at runtime.
const ExtractionPrompt = `Analyze this invoice image and extract the data into the following JSON structure. Be precise with numbers and dates. If a field is not visible or cannot be determined, use null.

Return ONLY valid JSON in this exact format (no markdown, no explanation):

{
  "issuer": {
    "name": "string",
    "vat_number": "string|null",
    "address": "string|null"
  },
  "customer": {
    "name": "string|null",
    "vat_number": "string|null",
    "address": "string|null"
  },
  "invoice_number": "string|null",
  "invoice_date": "YYYY-MM-DD|null",
  "currency": "string|null",
  "line_items": [
    {
      "description": "string",
      "quantity": number,
      "unit_price": number,
      "vat_rate": number|null,
      "line_total": number
    }
  ],
  "discounts": [
    {
      "description": "string",
      "amount": number
    }
  ],
  "other_charges": [
    {
      "description": "string",
      "amount": number
    }
  ],
  "totals": {
    "subtotal": number,
    "vat_total": number,
    "grand_total": number
  }
}

Important:
- All numeric values should be numbers (not strings)
- Dates must be in YYYY-MM-DD format
- VAT rates should be percentages (e.g., 20 for 20%)
- Include shipping, handling, or service fees in other_charges
- Discounts should be positive numbers (the amount to subtract)
- If no discounts exist, return an empty array []
- If no other charges exist, return an empty array []
- Currency should be a 3-letter code like "USD", "EUR", "GBP"`
