package extract

import (
	"strings"
	"unicode"
)

// Structured hint names shared with the field engine.
const (
	HintSellerTaxID    = "seller_tax_id"
	HintBuyerTaxID     = "buyer_tax_id"
	HintParty1TaxID    = "party1_tax_id"
	HintParty2TaxID    = "party2_tax_id"
	HintInvoiceNumber  = "invoice_number"
	HintReceiptNumber  = "receipt_number"
	HintContractNumber = "contract_number"
	HintRegisterNumber = "register_number"
	HintIssueDate      = "issue_date"
	HintGrossAmount    = "gross_amount"
	HintDocumentType   = "document_type"
)

// tagHints maps normalized tag, attribute or class names to hints.
// Shared by XML and HTML.
var tagHints = map[string]string{
	"sellertaxid":       HintSellerTaxID,
	"sellernip":         HintSellerTaxID,
	"sellervatid":       HintSellerTaxID,
	"suppliertaxid":     HintSellerTaxID,
	"vendortaxid":       HintSellerTaxID,
	"nipsprzedawcy":     HintSellerTaxID,
	"taxidentification": HintSellerTaxID,
	"taxid":             HintSellerTaxID,
	"vatid":             HintSellerTaxID,
	"nip":               HintSellerTaxID,

	"buyertaxid":    HintBuyerTaxID,
	"buyernip":      HintBuyerTaxID,
	"customertaxid": HintBuyerTaxID,
	"nipnabywcy":    HintBuyerTaxID,

	"party1taxid": HintParty1TaxID,
	"party1nip":   HintParty1TaxID,
	"party2taxid": HintParty2TaxID,
	"party2nip":   HintParty2TaxID,

	"invoicenumber": HintInvoiceNumber,
	"invoiceno":     HintInvoiceNumber,
	"invoiceid":     HintInvoiceNumber,
	"numerfaktury":  HintInvoiceNumber,
	"nrfaktury":     HintInvoiceNumber,

	"receiptnumber": HintReceiptNumber,
	"receiptno":     HintReceiptNumber,
	"numerparagonu": HintReceiptNumber,
	"nrparagonu":    HintReceiptNumber,

	"cashregisternumber": HintRegisterNumber,
	"registernumber":     HintRegisterNumber,
	"tillnumber":         HintRegisterNumber,
	"numerkasy":          HintRegisterNumber,
	"nrkasy":             HintRegisterNumber,

	"contractnumber":  HintContractNumber,
	"contractno":      HintContractNumber,
	"agreementnumber": HintContractNumber,
	"numerumowy":      HintContractNumber,
	"nrumowy":         HintContractNumber,

	"issuedate":       HintIssueDate,
	"dateofissue":     HintIssueDate,
	"invoicedate":     HintIssueDate,
	"receiptdate":     HintIssueDate,
	"datawystawienia": HintIssueDate,
	"conclusiondate":  HintIssueDate,
	"contractdate":    HintIssueDate,
	"datazawarcia":    HintIssueDate,

	"totalgrossamount": HintGrossAmount,
	"grossamount":      HintGrossAmount,
	"totalamount":      HintGrossAmount,
	"amountdue":        HintGrossAmount,
	"kwotabrutto":      HintGrossAmount,
	"wartoscbrutto":    HintGrossAmount,
	"sumabrutto":       HintGrossAmount,
	"dozaplaty":        HintGrossAmount,
}

// xmlOnlyHints are KSeF (FA schema) element names. They are too generic to be
// trusted as HTML class names.
var xmlOnlyHints = map[string]string{
	"p1":  HintIssueDate,
	"p2":  HintInvoiceNumber,
	"p15": HintGrossAmount,
}

// xmlPathHints resolve elements whose meaning depends on their ancestors.
// Checked before the name tables.
var xmlPathHints = []struct {
	suffix []string
	hint   string
}{
	{[]string{"podmiot1", "daneidentyfikacyjne", "nip"}, HintSellerTaxID},
	{[]string{"podmiot2", "daneidentyfikacyjne", "nip"}, HintBuyerTaxID},
	{[]string{"seller", "nip"}, HintSellerTaxID},
	{[]string{"seller", "taxid"}, HintSellerTaxID},
	{[]string{"buyer", "nip"}, HintBuyerTaxID},
	{[]string{"buyer", "taxid"}, HintBuyerTaxID},
}

// normalizeKey lowercases and keeps letters and digits only, so that
// "Seller-NIP", "seller_nip" and "SellerNip" agree.
func normalizeKey(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		switch r {
		case 'ą':
			r = 'a'
		case 'ć':
			r = 'c'
		case 'ę':
			r = 'e'
		case 'ł':
			r = 'l'
		case 'ń':
			r = 'n'
		case 'ó':
			r = 'o'
		case 'ś':
			r = 's'
		case 'ź', 'ż':
			r = 'z'
		}
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func hasSuffix(stack, suffix []string) bool {
	if len(suffix) > len(stack) {
		return false
	}
	off := len(stack) - len(suffix)
	for i, s := range suffix {
		if stack[off+i] != s {
			return false
		}
	}
	return true
}

// setHint records the first value seen for a hint.
func setHint(hints map[string]string, name, value string) {
	value = strings.TrimSpace(value)
	if name == "" || value == "" {
		return
	}
	if _, ok := hints[name]; !ok {
		hints[name] = value
	}
}
