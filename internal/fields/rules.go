package fields

import (
	"regexp"
	"sort"

	"github.com/joseph-ayodele/docid/constants"
	"github.com/joseph-ayodele/docid/internal/common"
	"github.com/joseph-ayodele/docid/internal/extract"
)

// FieldRule resolves one field: structured hints first, then each pattern
// in order. Nth selects the n-th distinct pattern match (0 = first).
type FieldRule struct {
	Name     Name
	Required bool
	Hints    []string
	Patterns []*regexp.Regexp
	Nth      int
}

// ClassRules is the rule table of one document class. The class applies only
// when its marker is present: a text match, a marker hint, or a document
// type hint naming the class.
type ClassRules struct {
	Class       constants.DocumentClass
	Marker      *regexp.Regexp
	MarkerHints []string
	DocTypes    []string
	Fields      []FieldRule
}

// Value fragments. Every pattern captures the value in group 1.
const (
	taxIDValue  = `((?:PL)?[ \t]?\d{3}[ \t-]?\d{3}[ \t-]?\d{2}[ \t-]?\d{2}|(?:PL)?[ \t]?\d{3}[ \t-]?\d{2}[ \t-]?\d{2}[ \t-]?\d{3})\b`
	dateNumeric = `\d{4}[-./]\d{1,2}[-./]\d{1,2}|\d{1,2}[-./]\d{1,2}[-./](?:\d{4}|\d{2}\b)`
	dateValue   = `(` + dateNumeric + `|\d{1,2}[ \t]+[A-Za-ząćęłńóśźżĄĆĘŁŃÓŚŹŻ]+\.?[ \t]+\d{4}|[A-Za-z]+\.?[ \t]+\d{1,2},?[ \t]+\d{4})`
	amountValue = `(-?\d{1,3}(?:[ \x{00A0}'.,]\d{3})+(?:[.,]\d{1,2})?|-?\d+(?:[.,]\d{1,2})?)`
	docToken    = `([A-Z0-9][A-Z0-9/\-_.]*\d[A-Z0-9/\-_.]*|\d+)`
	labelTail   = `[ \t]*[:.#]?[ \t]*`
	labelBreak  = `[ \t]*[:.#]?[ \t]*(?:\r?\n[ \t]*)?`
	amountGap   = `[^\d\n]{0,25}?`
)

var (
	reTaxIDSeller  = regexp.MustCompile(`(?i)\b(?:NIP|VAT[ \t]*ID|Tax[ \t]*ID|TIN)[ \t]+(?:sprzedawcy|seller|dostawcy|supplier)` + labelTail + taxIDValue)
	reTaxIDLabeled = regexp.MustCompile(`(?i)\b(?:NIP|VAT[ \t]*ID|Tax[ \t]*ID|TIN)\b(?:[ \t]+(?:sprzedawcy|nabywcy|seller|buyer|dostawcy|odbiorcy))?` + labelTail + taxIDValue)
	reTaxIDDashed  = regexp.MustCompile(`\b(\d{3}-\d{3}-\d{2}-\d{2}|\d{3}-\d{2}-\d{2}-\d{3})\b`)
	reTaxIDPrefix  = regexp.MustCompile(`\b(PL[ \t]?\d{10})\b`)

	reInvoiceDate = regexp.MustCompile(`(?i)(?:data[ \t]+wystawienia|date[ \t]+of[ \t]+issue|issue[ \t]+date|invoice[ \t]+date|wystawion[aoy][ \t]+(?:w[ \t]+dniu|dnia))` + labelTail + dateValue)
	reReceiptDate = regexp.MustCompile(`(?i)(?:data[ \t]+sprzedaży|data[ \t]+zakupu|purchase[ \t]+date|receipt[ \t]+date)` + labelTail + dateValue)
	reContractDay = regexp.MustCompile(`(?i)(?:zawart[aey][ \t]+(?:w[ \t]+dniu|dnia)|dated|date[ \t]+of[ \t]+(?:the[ \t]+)?(?:agreement|contract)|made[ \t]+on|entered[ \t]+into[ \t]+on)` + labelTail + dateValue)
	reDateLabeled = regexp.MustCompile(`(?i)\b(?:data|date|dnia|dated)\b` + labelTail + dateValue)
	reDateBare    = regexp.MustCompile(`\b(\d{4}-\d{1,2}-\d{1,2}|\d{1,2}[./]\d{1,2}[./]\d{4})\b`)

	reAmountGross   = regexp.MustCompile(`(?i)(?:brutto|gross|total[ \t]+gross)` + amountGap + amountValue)
	reAmountDue     = regexp.MustCompile(`(?i)(?:do[ \t]+zapłaty|amount[ \t]+due|total[ \t]+due|balance[ \t]+due|należność)` + amountGap + amountValue)
	reAmountTotal   = regexp.MustCompile(`(?i)\b(?:razem|suma|total|kwota)\b` + amountGap + amountValue)
	reAmountReceipt = regexp.MustCompile(`(?i)\bsuma[ \t]*(?:PLN|zł)` + amountGap + amountValue)

	reInvoiceNumber  = regexp.MustCompile(`(?i)\b(?:faktura(?:[ \t]+vat)?(?:[ \t]+korygująca)?|tax[ \t]+invoice|invoice)[ \t]*(?:nr\.?|no\.?|numer|number|#)?` + labelTail + docToken)
	reInvoiceNumber2 = regexp.MustCompile(`(?i)\b(?:nr|numer|number|no\.?)[ \t]+(?:faktury|invoice|rachunku|dokumentu)` + labelBreak + docToken)
	reNumberLabel    = regexp.MustCompile(`(?i)\b(?:nr|numer)\b\.?` + labelBreak + docToken)
	reBillNumber     = regexp.MustCompile(`(?i)\brachunek[ \t]+(?:nr\.?|numer)` + labelTail + docToken)

	reReceiptNumber  = regexp.MustCompile(`(?i)\b(?:paragon(?:[ \t]+fiskalny)?|receipt)[ \t]*(?:nr\.?|no\.?|numer|number|#)` + labelTail + `(\d[\w/\-]*)`)
	reReceiptNumber2 = regexp.MustCompile(`(?i)\b(?:nr|numer)[ \t]+paragonu` + labelTail + `(\d[\w/\-]*)`)
	reRegister       = regexp.MustCompile(`(?i)\b(?:kasa|stanowisko|register|till)[ \t]*(?:nr\.?|no\.?|#)?` + labelTail + `(\d[\w/\-]*)`)

	reContractNumber = regexp.MustCompile(`(?i)\b(?:umowa|umowy|contract|agreement)[ \t]*(?:nr\.?|no\.?|numer|number|#)` + labelTail + docToken)

	reInvoiceMarker  = regexp.MustCompile(`(?i)\b(?:faktura|faktury|invoice)\b`)
	reReceiptMarker  = regexp.MustCompile(`(?i)\b(?:paragon|receipt|fiskalny)\b`)
	reContractMarker = regexp.MustCompile(`(?i)\b(?:umowa|umowy|contract|agreement|kontrakt)\b`)
)

var (
	sellerTaxIDRule = FieldRule{
		Name:     SellerTaxID,
		Required: true,
		Hints:    []string{extract.HintSellerTaxID, extract.HintParty1TaxID},
		Patterns: []*regexp.Regexp{reTaxIDSeller, reTaxIDLabeled, reTaxIDDashed, reTaxIDPrefix},
	}
	buyerTaxIDRule = FieldRule{
		Name:     BuyerTaxID,
		Hints:    []string{extract.HintBuyerTaxID, extract.HintParty2TaxID},
		Patterns: []*regexp.Regexp{reTaxIDLabeled},
		Nth:      1,
	}
	grossAmountRule = FieldRule{
		Name:     GrossAmount,
		Required: true,
		Hints:    []string{extract.HintGrossAmount},
		Patterns: []*regexp.Regexp{reAmountGross, reAmountDue, reAmountTotal},
	}
)

// DefaultRules is the built-in rule table, ordered by constants.ClassPriority.
var DefaultRules = byPriority(classRules)

var classRules = []ClassRules{
	{
		Class:       constants.ClassInvoice,
		Marker:      reInvoiceMarker,
		MarkerHints: []string{extract.HintInvoiceNumber},
		DocTypes:    []string{"invoice", "faktura", "fa"},
		Fields: []FieldRule{
			sellerTaxIDRule,
			{
				Name:     DocumentNumber,
				Required: true,
				Hints:    []string{extract.HintInvoiceNumber},
				Patterns: []*regexp.Regexp{reInvoiceNumber, reInvoiceNumber2, reBillNumber, reNumberLabel},
			},
			{
				Name:     IssueDate,
				Required: true,
				Hints:    []string{extract.HintIssueDate},
				Patterns: []*regexp.Regexp{reInvoiceDate, reDateLabeled, reDateBare},
			},
			grossAmountRule,
			buyerTaxIDRule,
		},
	},
	{
		Class:       constants.ClassReceipt,
		Marker:      reReceiptMarker,
		MarkerHints: []string{extract.HintReceiptNumber, extract.HintRegisterNumber},
		DocTypes:    []string{"receipt", "paragon"},
		Fields: []FieldRule{
			sellerTaxIDRule,
			{
				Name:     IssueDate,
				Required: true,
				Hints:    []string{extract.HintIssueDate},
				Patterns: []*regexp.Regexp{reReceiptDate, reDateLabeled, reDateBare},
			},
			{
				Name:     GrossAmount,
				Required: true,
				Hints:    []string{extract.HintGrossAmount},
				Patterns: []*regexp.Regexp{reAmountReceipt, reAmountDue, reAmountGross, reAmountTotal},
			},
			{
				Name:     DocumentNumber,
				Hints:    []string{extract.HintReceiptNumber},
				Patterns: []*regexp.Regexp{reReceiptNumber, reReceiptNumber2},
			},
			{
				Name:     RegisterNumber,
				Hints:    []string{extract.HintRegisterNumber},
				Patterns: []*regexp.Regexp{reRegister},
			},
		},
	},
	{
		Class:       constants.ClassContract,
		Marker:      reContractMarker,
		MarkerHints: []string{extract.HintContractNumber, extract.HintParty1TaxID, extract.HintParty2TaxID},
		DocTypes:    []string{"contract", "agreement", "umowa"},
		Fields: []FieldRule{
			{
				Name:     SellerTaxID,
				Required: true,
				Hints:    []string{extract.HintParty1TaxID, extract.HintSellerTaxID},
				Patterns: []*regexp.Regexp{reTaxIDLabeled, reTaxIDDashed, reTaxIDPrefix},
			},
			{
				Name:     BuyerTaxID,
				Required: true,
				Hints:    []string{extract.HintParty2TaxID, extract.HintBuyerTaxID},
				Patterns: []*regexp.Regexp{reTaxIDLabeled, reTaxIDDashed, reTaxIDPrefix},
				Nth:      1,
			},
			{
				Name:     IssueDate,
				Required: true,
				Hints:    []string{extract.HintIssueDate},
				Patterns: []*regexp.Regexp{reContractDay, reDateLabeled, reDateBare},
			},
			{
				Name:     DocumentNumber,
				Hints:    []string{extract.HintContractNumber},
				Patterns: []*regexp.Regexp{reContractNumber},
			},
		},
	},
}

func byPriority(rules []ClassRules) []ClassRules {
	rank := make(map[constants.DocumentClass]int, len(constants.ClassPriority))
	for i, c := range constants.ClassPriority {
		rank[c] = i
	}
	out := make([]ClassRules, 0, len(rules))
	for _, cr := range rules {
		if _, ok := rank[cr.Class]; ok {
			out = append(out, cr)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return rank[out[i].Class] < rank[out[j].Class] })
	return out
}

// distinctKey decides when two matches of the same field are the same value.
func distinctKey(n Name, v string) string {
	if KindOf(n) == KindTaxID {
		return common.DigitsOf(common.StripCountryPrefix(v))
	}
	return v
}
