// Package input reads JSON field documents for explicit identifier
// generation: {"type": "invoice", "seller_tax_id": "...", ...}.
package input

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/mitchellh/mapstructure"

	"github.com/joseph-ayodele/docid/constants"
	"github.com/joseph-ayodele/docid/internal/common"
	"github.com/joseph-ayodele/docid/internal/identity"
)

// Document is a decoded field document. Exactly one of the field sets is
// set, matching Class.
type Document struct {
	Class    constants.DocumentClass
	Invoice  *identity.InvoiceFields
	Receipt  *identity.ReceiptFields
	Contract *identity.ContractFields
	Changes  []string // sanitizer renames and drops
}

// Decode sanitizes, validates and decodes a field document.
func Decode(data []byte, logger *slog.Logger) (Document, error) {
	if logger == nil {
		logger = slog.Default()
	}

	clean, changes, err := NormalizeAndSanitizeJSON(data, logger)
	if err != nil {
		return Document{}, common.InvalidInputError("field document is not a JSON object", err)
	}
	if err := validateFieldDocument(clean); err != nil {
		logger.Warn("field document rejected", "error", err)
		return Document{}, common.InvalidInputError("field document does not match schema", err)
	}

	var m map[string]any
	if err := json.Unmarshal(clean, &m); err != nil {
		return Document{}, common.InvalidInputError("field document", err)
	}
	class, _ := constants.Canonicalize(fmt.Sprint(m[KeyType]))
	doc := Document{Class: class, Changes: changes}

	switch class {
	case constants.ClassInvoice:
		doc.Invoice = &identity.InvoiceFields{}
		err = decodeInto(m, doc.Invoice)
	case constants.ClassReceipt:
		doc.Receipt = &identity.ReceiptFields{}
		err = decodeInto(m, doc.Receipt)
	case constants.ClassContract:
		doc.Contract = &identity.ContractFields{}
		err = decodeInto(m, doc.Contract)
	default:
		return Document{}, common.InvalidInputError(fmt.Sprintf("unsupported document type %q", class), nil)
	}
	if err != nil {
		return Document{}, common.InvalidInputError("decode field document", err)
	}
	return doc, nil
}

func decodeInto(m map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "mapstructure",
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	return dec.Decode(m)
}

// Generate runs the explicit generator matching the document class.
func (d Document) Generate(g *identity.Generator) (identity.Identifier, error) {
	switch {
	case d.Invoice != nil:
		return g.GenerateInvoiceID(*d.Invoice)
	case d.Receipt != nil:
		return g.GenerateReceiptID(*d.Receipt)
	case d.Contract != nil:
		return g.GenerateContractID(*d.Contract)
	}
	return identity.Identifier{}, common.InvalidInputError("empty field document", nil)
}
