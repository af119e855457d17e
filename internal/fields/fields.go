package fields

import (
	"github.com/joseph-ayodele/docid/constants"
)

// Name identifies a business field.
type Name string

const (
	SellerTaxID    Name = "seller_tax_id" // contract: first party
	BuyerTaxID     Name = "buyer_tax_id"  // contract: second party
	DocumentNumber Name = "document_number"
	IssueDate      Name = "issue_date"
	GrossAmount    Name = "gross_amount"
	RegisterNumber Name = "register_number"

	// explicit-only fields
	OriginalNumber   Name = "original_number"
	AccountNumber    Name = "account_number"
	EmployeeID       Name = "employee_id"
	CounterpartyName Name = "counterparty_name"
	ContentHash      Name = "content_hash"
)

// Kind selects the canonicalization applied to a field.
type Kind int

const (
	KindText Kind = iota
	KindTaxID
	KindDate
	KindAmount
	KindAccount // separators dropped
	KindName    // reduced to a short digest
	KindHash    // lower-case hex
)

// KindOf returns the canonicalization kind for a field name.
func KindOf(n Name) Kind {
	switch n {
	case SellerTaxID, BuyerTaxID:
		return KindTaxID
	case IssueDate:
		return KindDate
	case GrossAmount:
		return KindAmount
	case AccountNumber:
		return KindAccount
	case CounterpartyName:
		return KindName
	case ContentHash:
		return KindHash
	default:
		return KindText
	}
}

// Extracted is the outcome of field extraction. Class is ClassUnknown unless
// every required field of that class resolved.
type Extracted struct {
	Class   constants.DocumentClass `json:"class"`
	Values  map[Name]string         `json:"values"`
	Missing []Name                  `json:"missing,omitempty"`
}

// Resolved reports whether a business class was assigned.
func (e Extracted) Resolved() bool {
	return e.Class != constants.ClassUnknown && e.Class != ""
}
