package input

import "github.com/joseph-ayodele/docid/constants"

// Keys of a field document after sanitizing.
const (
	KeyType           = "type"
	KeySellerTaxID    = "seller_tax_id"
	KeyBuyerTaxID     = "buyer_tax_id"
	KeyInvoiceNumber  = "invoice_number"
	KeyReceiptNumber  = "receipt_number"
	KeyRegisterNumber = "register_number"
	KeyContractNumber = "contract_number"
	KeyParty1TaxID    = "party1_tax_id"
	KeyParty2TaxID    = "party2_tax_id"
	KeyIssueDate      = "issue_date"
	KeyContractDate   = "contract_date"
	KeyGrossAmount    = "gross_amount"
)

// requiredByClass lists the keys each document type must carry.
var requiredByClass = map[constants.DocumentClass][]string{
	constants.ClassInvoice:  {KeySellerTaxID, KeyInvoiceNumber, KeyIssueDate, KeyGrossAmount},
	constants.ClassReceipt:  {KeySellerTaxID, KeyIssueDate, KeyGrossAmount},
	constants.ClassContract: {KeyParty1TaxID, KeyParty2TaxID, KeyContractDate},
}

// BuildFieldDocumentSchema returns the JSON-Schema (draft 2020-12) a
// sanitized field document must satisfy.
func BuildFieldDocumentSchema() map[string]any {
	props := map[string]any{
		KeyType:           map[string]any{"type": "string", "enum": constants.AsStringSlice()},
		KeySellerTaxID:    taxIDProp(),
		KeyBuyerTaxID:     taxIDProp(),
		KeyParty1TaxID:    taxIDProp(),
		KeyParty2TaxID:    taxIDProp(),
		KeyInvoiceNumber:  textProp(),
		KeyReceiptNumber:  textProp(),
		KeyRegisterNumber: textProp(),
		KeyContractNumber: textProp(),
		KeyIssueDate:      dateProp(),
		KeyContractDate:   dateProp(),
		KeyGrossAmount:    map[string]any{"type": "string", "pattern": `\d`},
	}

	var rules []any
	for _, class := range constants.ClassPriority {
		rules = append(rules, map[string]any{
			"if": map[string]any{
				"properties": map[string]any{KeyType: map[string]any{"const": string(class)}},
			},
			"then": map[string]any{"required": requiredByClass[class]},
		})
	}

	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties":           props,
		"required":             []string{KeyType},
		"allOf":                rules,
	}
}

func taxIDProp() map[string]any {
	// ten digits once separators and a country prefix are removed
	return map[string]any{"type": "string", "pattern": `^\s*([A-Za-z]{2})?[\s-]*(\d[\s-]*){10}$`}
}

func textProp() map[string]any {
	return map[string]any{"type": "string", "minLength": 1}
}

func dateProp() map[string]any {
	return map[string]any{"type": "string", "minLength": 6, "pattern": `\d`}
}
