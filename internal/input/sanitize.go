package input

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/joseph-ayodele/docid/constants"
)

// synonyms rename loose keys to schema keys. Keys are compared lowercased.
var synonyms = map[string]string{
	"class":         KeyType,
	"document_type": KeyType,
	"nip":           KeySellerTaxID,
	"seller_nip":    KeySellerTaxID,
	"tax_id":        KeySellerTaxID,
	"buyer_nip":     KeyBuyerTaxID,
	"nip1":          KeyParty1TaxID,
	"nip2":          KeyParty2TaxID,
	"party1_nip":    KeyParty1TaxID,
	"party2_nip":    KeyParty2TaxID,
	"date":          KeyIssueDate,
	"amount":        KeyGrossAmount,
	"gross":         KeyGrossAmount,
	"total":         KeyGrossAmount,
	"register":      KeyRegisterNumber,
	"cash_register": KeyRegisterNumber,
}

// numberKeyFor resolves the generic "number" key per document type.
var numberKeyFor = map[constants.DocumentClass]string{
	constants.ClassInvoice:  KeyInvoiceNumber,
	constants.ClassReceipt:  KeyReceiptNumber,
	constants.ClassContract: KeyContractNumber,
}

// NormalizeAndSanitizeJSON
// - Renames known synonyms (nip -> seller_tax_id, amount -> gross_amount)
// - Canonicalizes the document type (faktura -> invoice)
// - Drops null/empty values
// - Coerces numbers to strings, so 1230.5 and "1230.50" are both accepted
// - Removes unknown keys
func NormalizeAndSanitizeJSON(raw []byte, logger *slog.Logger) ([]byte, []string, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var in map[string]any
	if err := json.Unmarshal(raw, &in); err != nil {
		return nil, nil, fmt.Errorf("sanitize: decode: %w", err)
	}

	m := make(map[string]any, len(in))
	dropped := make([]string, 0, 4)
	for k, v := range in {
		key := strings.ToLower(strings.TrimSpace(k))
		if to, ok := synonyms[key]; ok {
			dropped = append(dropped, key+"->"+to)
			key = to
		}
		if _, exists := m[key]; exists {
			dropped = append(dropped, k+"(duplicate)")
			continue
		}
		m[key] = v
	}

	class := constants.ClassUnknown
	if v, ok := m[KeyType].(string); ok {
		if c, ok := constants.Canonicalize(v); ok {
			class = c
			m[KeyType] = string(c)
		}
	}
	if class == constants.ClassContract {
		if v, ok := m[KeyIssueDate]; ok {
			if _, exists := m[KeyContractDate]; !exists {
				m[KeyContractDate] = v
			}
			delete(m, KeyIssueDate)
			dropped = append(dropped, KeyIssueDate+"->"+KeyContractDate)
		}
	}
	if to, ok := numberKeyFor[class]; ok {
		if v, ok := m["number"]; ok {
			if _, exists := m[to]; !exists {
				m[to] = v
			}
			delete(m, "number")
			dropped = append(dropped, "number->"+to)
		}
	}

	known := BuildFieldDocumentSchema()["properties"].(map[string]any)
	for _, k := range slices.Sorted(maps.Keys(m)) {
		if _, ok := known[k]; !ok {
			delete(m, k)
			dropped = append(dropped, k+"(unknown)")
			continue
		}
		switch t := m[k].(type) {
		case nil:
			delete(m, k)
			dropped = append(dropped, k+"(null)")
		case float64:
			m[k] = strconv.FormatFloat(t, 'f', -1, 64)
		case string:
			s := strings.TrimSpace(t)
			if s == "" {
				delete(m, k)
				dropped = append(dropped, k+"(empty)")
			} else {
				m[k] = s
			}
		default:
			// unexpected type -> drop
			delete(m, k)
			dropped = append(dropped, k+"(type)")
		}
	}

	out, err := json.Marshal(m)
	if err != nil {
		return nil, dropped, fmt.Errorf("sanitize: encode: %w", err)
	}
	if len(dropped) > 0 {
		logger.Debug("field document sanitized", "changes", dropped)
	}
	return out, dropped, nil
}
