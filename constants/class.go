package constants

import (
	"strings"
)

// DocumentClass is the business type of a document.
type DocumentClass string

const (
	ClassInvoice  DocumentClass = "invoice"
	ClassReceipt  DocumentClass = "receipt"
	ClassContract DocumentClass = "contract"
	ClassUnknown  DocumentClass = "unknown"
)

// Classes issued only from caller-supplied fields; content is never
// resolved to them.
const (
	ClassCorrection       DocumentClass = "correction"
	ClassBankStatement    DocumentClass = "bank_statement"
	ClassBill             DocumentClass = "bill"
	ClassCashReceipt      DocumentClass = "cash_receipt"
	ClassCashDisbursement DocumentClass = "cash_disbursement"
	ClassDebitNote        DocumentClass = "debit_note"
	ClassDeliveryNote     DocumentClass = "delivery_note"
	ClassExpenseReport    DocumentClass = "expense_report"
	ClassProforma         DocumentClass = "proforma"
	ClassAdvanceInvoice   DocumentClass = "advance_invoice"
	ClassGoodsReceipt     DocumentClass = "goods_receipt"
	ClassOther            DocumentClass = "other"
)

// ClassPriority lists the classes recognized from document content, in
// resolution order. fields.DefaultRules is sorted by it.
var ClassPriority = []DocumentClass{
	ClassInvoice,
	ClassReceipt,
	ClassContract,
}

// ExplicitClasses lists the classes that only the explicit generators issue.
var ExplicitClasses = []DocumentClass{
	ClassCorrection,
	ClassBankStatement,
	ClassBill,
	ClassCashReceipt,
	ClassCashDisbursement,
	ClassDebitNote,
	ClassDeliveryNote,
	ClassExpenseReport,
	ClassProforma,
	ClassAdvanceInvoice,
	ClassGoodsReceipt,
	ClassOther,
}

var classCodes = map[DocumentClass]string{
	ClassInvoice:          "FV",
	ClassReceipt:          "PAR",
	ClassContract:         "UMO",
	ClassCorrection:       "KOR",
	ClassBankStatement:    "WB",
	ClassBill:             "RAC",
	ClassCashReceipt:      "KP",
	ClassCashDisbursement: "KW",
	ClassDebitNote:        "NK",
	ClassDeliveryNote:     "WZ",
	ClassExpenseReport:    "DEL",
	ClassProforma:         "PRO",
	ClassAdvanceInvoice:   "ZAL",
	ClassGoodsReceipt:     "PZ",
	ClassOther:            "DOC",
}

// Code returns the identifier class code; ok is false for unknown.
func (c DocumentClass) Code() (string, bool) {
	code, ok := classCodes[c]
	return code, ok
}

func AsStringSlice() []string {
	result := make([]string, len(ClassPriority))
	for i, c := range ClassPriority {
		result[i] = string(c)
	}
	return result
}

// Canonicalize maps user input (CLI flags, field documents) to one of the
// content classes.
func Canonicalize(input string) (DocumentClass, bool) {
	if input == "" {
		return ClassUnknown, false
	}

	normalized := strings.ToLower(strings.TrimSpace(input))

	// synonyms map
	synonyms := map[string]DocumentClass{
		"faktura":   ClassInvoice,
		"fv":        ClassInvoice,
		"vat":       ClassInvoice,
		"paragon":   ClassReceipt,
		"par":       ClassReceipt,
		"umowa":     ClassContract,
		"umo":       ClassContract,
		"agreement": ClassContract,
	}

	if c, ok := synonyms[normalized]; ok {
		return c, true
	}

	for _, c := range ClassPriority {
		if normalized == string(c) {
			return c, true
		}
	}

	return ClassUnknown, false
}
