package extract

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/rs/zerolog/log"
)

// fencedBlock matches a markdown code fence, optionally tagged json, and
// captures its interior non-greedily.
var fencedBlock = regexp.MustCompile("```(?:json)?\\s*([\\s\\S]*?)\\s*```")

// ParseResponse turns the model's raw reply into an ExtractedInvoice. The
// reply may arrive wrapped in a markdown fence; the fence interior is used
// when present, the raw text otherwise. Any failure is an ExtractionError
// carrying the raw text for diagnostics.
func ParseResponse(raw string) (*ExtractedInvoice, error) {
	jsonStr := raw
	if m := fencedBlock.FindStringSubmatch(raw); m != nil {
		jsonStr = m[1]
	}
	jsonStr = strings.TrimSpace(jsonStr)

	var rec ExtractedInvoice
	if err := json.Unmarshal([]byte(jsonStr), &rec); err != nil {
		log.Error().
			Err(err).
			Str("raw_response", raw).
			Msg("invoiceai: failed to parse model response")
		return nil, &ExtractionError{
			Msg:         "failed to parse invoice data",
			RawResponse: raw,
			Err:         err,
		}
	}

	if rec.Issuer.Name == nil {
		return nil, &ExtractionError{
			Msg:         "invoice must have an issuer name",
			RawResponse: raw,
		}
	}

	rec.RawResponse = raw
	return &rec, nil
}
