package identity

import (
	"errors"
	"strconv"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/joseph-ayodele/docid/constants"
	"github.com/joseph-ayodele/docid/internal/canon"
	"github.com/joseph-ayodele/docid/internal/common"
	"github.com/joseph-ayodele/docid/internal/fields"
)

// InvoiceFields are caller-supplied invoice fields in any accepted notation.
type InvoiceFields struct {
	SellerTaxID   string `json:"seller_tax_id" mapstructure:"seller_tax_id"`
	InvoiceNumber string `json:"invoice_number" mapstructure:"invoice_number"`
	IssueDate     string `json:"issue_date" mapstructure:"issue_date"`
	GrossAmount   string `json:"gross_amount" mapstructure:"gross_amount"`
	BuyerTaxID    string `json:"buyer_tax_id,omitempty" mapstructure:"buyer_tax_id"`
}

func (f InvoiceFields) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.SellerTaxID, common.NotBlank, common.TaxIDRule),
		validation.Field(&f.InvoiceNumber, common.NotBlank),
		validation.Field(&f.IssueDate, common.NotBlank, common.ContainsDigit),
		validation.Field(&f.GrossAmount, common.NotBlank, common.ContainsDigit),
		validation.Field(&f.BuyerTaxID, common.TaxIDRule),
	)
}

func (f InvoiceFields) extracted() fields.Extracted {
	return fields.Extracted{Class: constants.ClassInvoice, Values: nonEmpty(map[fields.Name]string{
		fields.SellerTaxID:    f.SellerTaxID,
		fields.DocumentNumber: f.InvoiceNumber,
		fields.IssueDate:      f.IssueDate,
		fields.GrossAmount:    f.GrossAmount,
		fields.BuyerTaxID:     f.BuyerTaxID,
	})}
}

// ReceiptFields are caller-supplied receipt fields.
type ReceiptFields struct {
	SellerTaxID    string `json:"seller_tax_id" mapstructure:"seller_tax_id"`
	IssueDate      string `json:"issue_date" mapstructure:"issue_date"`
	GrossAmount    string `json:"gross_amount" mapstructure:"gross_amount"`
	ReceiptNumber  string `json:"receipt_number,omitempty" mapstructure:"receipt_number"`
	RegisterNumber string `json:"register_number,omitempty" mapstructure:"register_number"`
}

func (f ReceiptFields) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.SellerTaxID, common.NotBlank, common.TaxIDRule),
		validation.Field(&f.IssueDate, common.NotBlank, common.ContainsDigit),
		validation.Field(&f.GrossAmount, common.NotBlank, common.ContainsDigit),
	)
}

func (f ReceiptFields) extracted() fields.Extracted {
	return fields.Extracted{Class: constants.ClassReceipt, Values: nonEmpty(map[fields.Name]string{
		fields.SellerTaxID:    f.SellerTaxID,
		fields.IssueDate:      f.IssueDate,
		fields.GrossAmount:    f.GrossAmount,
		fields.DocumentNumber: f.ReceiptNumber,
		fields.RegisterNumber: f.RegisterNumber,
	})}
}

// ContractFields are caller-supplied contract fields. Party order is irrelevant.
type ContractFields struct {
	Party1TaxID    string `json:"party1_tax_id" mapstructure:"party1_tax_id"`
	Party2TaxID    string `json:"party2_tax_id" mapstructure:"party2_tax_id"`
	ContractDate   string `json:"contract_date" mapstructure:"contract_date"`
	ContractNumber string `json:"contract_number,omitempty" mapstructure:"contract_number"`
}

func (f ContractFields) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.Party1TaxID, common.NotBlank, common.TaxIDRule),
		validation.Field(&f.Party2TaxID, common.NotBlank, common.TaxIDRule),
		validation.Field(&f.ContractDate, common.NotBlank, common.ContainsDigit),
	)
}

func (f ContractFields) extracted() fields.Extracted {
	return fields.Extracted{Class: constants.ClassContract, Values: nonEmpty(map[fields.Name]string{
		fields.SellerTaxID:    f.Party1TaxID,
		fields.BuyerTaxID:     f.Party2TaxID,
		fields.IssueDate:      f.ContractDate,
		fields.DocumentNumber: f.ContractNumber,
	})}
}

// CorrectionFields describe a correcting invoice and the invoice it corrects.
type CorrectionFields struct {
	SellerTaxID           string `json:"seller_tax_id" mapstructure:"seller_tax_id"`
	CorrectionNumber      string `json:"correction_number" mapstructure:"correction_number"`
	IssueDate             string `json:"issue_date" mapstructure:"issue_date"`
	OriginalInvoiceNumber string `json:"original_invoice_number" mapstructure:"original_invoice_number"`
	GrossAmount           string `json:"gross_amount" mapstructure:"gross_amount"`
}

func (f CorrectionFields) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.SellerTaxID, common.NotBlank, common.TaxIDRule),
		validation.Field(&f.CorrectionNumber, common.NotBlank),
		validation.Field(&f.IssueDate, common.NotBlank, common.ContainsDigit),
		validation.Field(&f.OriginalInvoiceNumber, common.NotBlank),
		validation.Field(&f.GrossAmount, common.NotBlank, common.ContainsDigit),
	)
}

func (f CorrectionFields) extracted() fields.Extracted {
	return fields.Extracted{Class: constants.ClassCorrection, Values: nonEmpty(map[fields.Name]string{
		fields.SellerTaxID:    f.SellerTaxID,
		fields.DocumentNumber: f.CorrectionNumber,
		fields.IssueDate:      f.IssueDate,
		fields.OriginalNumber: f.OriginalInvoiceNumber,
		fields.GrossAmount:    f.GrossAmount,
	})}
}

type BankStatementFields struct {
	AccountNumber   string `json:"account_number" mapstructure:"account_number"`
	StatementDate   string `json:"statement_date" mapstructure:"statement_date"`
	StatementNumber string `json:"statement_number,omitempty" mapstructure:"statement_number"`
}

func (f BankStatementFields) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.AccountNumber, common.NotBlank, common.ContainsDigit),
		validation.Field(&f.StatementDate, common.NotBlank, common.ContainsDigit),
	)
}

func (f BankStatementFields) extracted() fields.Extracted {
	return fields.Extracted{Class: constants.ClassBankStatement, Values: nonEmpty(map[fields.Name]string{
		fields.AccountNumber:  f.AccountNumber,
		fields.IssueDate:      f.StatementDate,
		fields.DocumentNumber: f.StatementNumber,
	})}
}

type BillFields struct {
	IssuerTaxID string `json:"issuer_tax_id" mapstructure:"issuer_tax_id"`
	BillNumber  string `json:"bill_number" mapstructure:"bill_number"`
	IssueDate   string `json:"issue_date" mapstructure:"issue_date"`
	GrossAmount string `json:"gross_amount" mapstructure:"gross_amount"`
}

func (f BillFields) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.IssuerTaxID, common.NotBlank, common.TaxIDRule),
		validation.Field(&f.BillNumber, common.NotBlank),
		validation.Field(&f.IssueDate, common.NotBlank, common.ContainsDigit),
		validation.Field(&f.GrossAmount, common.NotBlank, common.ContainsDigit),
	)
}

func (f BillFields) extracted() fields.Extracted {
	return fields.Extracted{Class: constants.ClassBill, Values: nonEmpty(map[fields.Name]string{
		fields.SellerTaxID:    f.IssuerTaxID,
		fields.DocumentNumber: f.BillNumber,
		fields.IssueDate:      f.IssueDate,
		fields.GrossAmount:    f.GrossAmount,
	})}
}

// CashFields serve both cash receipts (KP) and cash disbursements (KW). The
// counterparty name enters the identifier only as a short digest.
type CashFields struct {
	DocumentNumber   string `json:"document_number" mapstructure:"document_number"`
	DocumentDate     string `json:"document_date" mapstructure:"document_date"`
	Amount           string `json:"amount" mapstructure:"amount"`
	IssuerTaxID      string `json:"issuer_tax_id,omitempty" mapstructure:"issuer_tax_id"`
	CounterpartyName string `json:"counterparty_name,omitempty" mapstructure:"counterparty_name"`
}

func (f CashFields) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.DocumentNumber, common.NotBlank),
		validation.Field(&f.DocumentDate, common.NotBlank, common.ContainsDigit),
		validation.Field(&f.Amount, common.NotBlank, common.ContainsDigit),
		validation.Field(&f.IssuerTaxID, common.TaxIDRule),
	)
}

func (f CashFields) extracted(class constants.DocumentClass) fields.Extracted {
	return fields.Extracted{Class: class, Values: nonEmpty(map[fields.Name]string{
		fields.DocumentNumber:   f.DocumentNumber,
		fields.IssueDate:        f.DocumentDate,
		fields.GrossAmount:      f.Amount,
		fields.SellerTaxID:      f.IssuerTaxID,
		fields.CounterpartyName: f.CounterpartyName,
	})}
}

type DebitNoteFields struct {
	IssuerTaxID    string `json:"issuer_tax_id" mapstructure:"issuer_tax_id"`
	NoteNumber     string `json:"note_number" mapstructure:"note_number"`
	IssueDate      string `json:"issue_date" mapstructure:"issue_date"`
	Amount         string `json:"amount" mapstructure:"amount"`
	RecipientTaxID string `json:"recipient_tax_id,omitempty" mapstructure:"recipient_tax_id"`
}

func (f DebitNoteFields) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.IssuerTaxID, common.NotBlank, common.TaxIDRule),
		validation.Field(&f.NoteNumber, common.NotBlank),
		validation.Field(&f.IssueDate, common.NotBlank, common.ContainsDigit),
		validation.Field(&f.Amount, common.NotBlank, common.ContainsDigit),
		validation.Field(&f.RecipientTaxID, common.TaxIDRule),
	)
}

func (f DebitNoteFields) extracted() fields.Extracted {
	return fields.Extracted{Class: constants.ClassDebitNote, Values: nonEmpty(map[fields.Name]string{
		fields.SellerTaxID:    f.IssuerTaxID,
		fields.DocumentNumber: f.NoteNumber,
		fields.IssueDate:      f.IssueDate,
		fields.GrossAmount:    f.Amount,
		fields.BuyerTaxID:     f.RecipientTaxID,
	})}
}

type DeliveryNoteFields struct {
	IssuerTaxID    string `json:"issuer_tax_id" mapstructure:"issuer_tax_id"`
	DocumentNumber string `json:"document_number" mapstructure:"document_number"`
	IssueDate      string `json:"issue_date" mapstructure:"issue_date"`
	RecipientTaxID string `json:"recipient_tax_id,omitempty" mapstructure:"recipient_tax_id"`
}

func (f DeliveryNoteFields) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.IssuerTaxID, common.NotBlank, common.TaxIDRule),
		validation.Field(&f.DocumentNumber, common.NotBlank),
		validation.Field(&f.IssueDate, common.NotBlank, common.ContainsDigit),
		validation.Field(&f.RecipientTaxID, common.TaxIDRule),
	)
}

func (f DeliveryNoteFields) extracted() fields.Extracted {
	return fields.Extracted{Class: constants.ClassDeliveryNote, Values: nonEmpty(map[fields.Name]string{
		fields.SellerTaxID:    f.IssuerTaxID,
		fields.DocumentNumber: f.DocumentNumber,
		fields.IssueDate:      f.IssueDate,
		fields.BuyerTaxID:     f.RecipientTaxID,
	})}
}

type ExpenseReportFields struct {
	EmployeeID   string `json:"employee_id" mapstructure:"employee_id"`
	ReportDate   string `json:"report_date" mapstructure:"report_date"`
	TotalAmount  string `json:"total_amount" mapstructure:"total_amount"`
	ReportNumber string `json:"report_number,omitempty" mapstructure:"report_number"`
	CompanyTaxID string `json:"company_tax_id,omitempty" mapstructure:"company_tax_id"`
}

func (f ExpenseReportFields) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.EmployeeID, common.NotBlank),
		validation.Field(&f.ReportDate, common.NotBlank, common.ContainsDigit),
		validation.Field(&f.TotalAmount, common.NotBlank, common.ContainsDigit),
		validation.Field(&f.CompanyTaxID, common.TaxIDRule),
	)
}

func (f ExpenseReportFields) extracted() fields.Extracted {
	return fields.Extracted{Class: constants.ClassExpenseReport, Values: nonEmpty(map[fields.Name]string{
		fields.EmployeeID:     f.EmployeeID,
		fields.IssueDate:      f.ReportDate,
		fields.GrossAmount:    f.TotalAmount,
		fields.DocumentNumber: f.ReportNumber,
		fields.SellerTaxID:    f.CompanyTaxID,
	})}
}

// GenericFields identify documents of a class without a schema of its own
// (proforma, advance invoice, goods receipt, other) by a caller-computed
// content hash.
type GenericFields struct {
	Class        constants.DocumentClass `json:"class" mapstructure:"class"`
	ContentHash  string                  `json:"content_hash" mapstructure:"content_hash"`
	DocumentDate string                  `json:"document_date,omitempty" mapstructure:"document_date"`
	IssuerTaxID  string                  `json:"issuer_tax_id,omitempty" mapstructure:"issuer_tax_id"`
}

func (f GenericFields) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.Class, validation.Required, validation.By(genericClass)),
		validation.Field(&f.ContentHash, common.NotBlank),
		validation.Field(&f.DocumentDate, common.ContainsDigit),
		validation.Field(&f.IssuerTaxID, common.TaxIDRule),
	)
}

func genericClass(value interface{}) error {
	c, _ := value.(constants.DocumentClass)
	if _, ok := c.Code(); !ok {
		return errors.New("has no identifier code")
	}
	if HasSchema(c) {
		return errors.New("has a dedicated generator")
	}
	return nil
}

func (f GenericFields) extracted() fields.Extracted {
	return fields.Extracted{Class: f.Class, Values: nonEmpty(map[fields.Name]string{
		fields.ContentHash: f.ContentHash,
		fields.IssueDate:   f.DocumentDate,
		fields.SellerTaxID: f.IssuerTaxID,
	})}
}

func nonEmpty(m map[fields.Name]string) map[fields.Name]string {
	for k, v := range m {
		if v == "" {
			delete(m, k)
		}
	}
	return m
}

// GenerateInvoiceID validates, canonicalizes and hashes explicit invoice fields.
func (g *Generator) GenerateInvoiceID(f InvoiceFields) (Identifier, error) {
	if err := f.Validate(); err != nil {
		return Identifier{}, common.ValidateAndReturnError(err)
	}
	return g.generateExplicit(f.extracted())
}

// GenerateReceiptID validates, canonicalizes and hashes explicit receipt fields.
func (g *Generator) GenerateReceiptID(f ReceiptFields) (Identifier, error) {
	if err := f.Validate(); err != nil {
		return Identifier{}, common.ValidateAndReturnError(err)
	}
	return g.generateExplicit(f.extracted())
}

// GenerateContractID validates, canonicalizes and hashes explicit contract fields.
func (g *Generator) GenerateContractID(f ContractFields) (Identifier, error) {
	if err := f.Validate(); err != nil {
		return Identifier{}, common.ValidateAndReturnError(err)
	}
	return g.generateExplicit(f.extracted())
}

func (g *Generator) GenerateCorrectionID(f CorrectionFields) (Identifier, error) {
	if err := f.Validate(); err != nil {
		return Identifier{}, common.ValidateAndReturnError(err)
	}
	return g.generateExplicit(f.extracted())
}

func (g *Generator) GenerateBankStatementID(f BankStatementFields) (Identifier, error) {
	if err := f.Validate(); err != nil {
		return Identifier{}, common.ValidateAndReturnError(err)
	}
	return g.generateExplicit(f.extracted())
}

func (g *Generator) GenerateBillID(f BillFields) (Identifier, error) {
	if err := f.Validate(); err != nil {
		return Identifier{}, common.ValidateAndReturnError(err)
	}
	return g.generateExplicit(f.extracted())
}

// GenerateCashReceiptID issues a KP identifier.
func (g *Generator) GenerateCashReceiptID(f CashFields) (Identifier, error) {
	if err := f.Validate(); err != nil {
		return Identifier{}, common.ValidateAndReturnError(err)
	}
	return g.generateExplicit(f.extracted(constants.ClassCashReceipt))
}

// GenerateCashDisbursementID issues a KW identifier.
func (g *Generator) GenerateCashDisbursementID(f CashFields) (Identifier, error) {
	if err := f.Validate(); err != nil {
		return Identifier{}, common.ValidateAndReturnError(err)
	}
	return g.generateExplicit(f.extracted(constants.ClassCashDisbursement))
}

func (g *Generator) GenerateDebitNoteID(f DebitNoteFields) (Identifier, error) {
	if err := f.Validate(); err != nil {
		return Identifier{}, common.ValidateAndReturnError(err)
	}
	return g.generateExplicit(f.extracted())
}

func (g *Generator) GenerateDeliveryNoteID(f DeliveryNoteFields) (Identifier, error) {
	if err := f.Validate(); err != nil {
		return Identifier{}, common.ValidateAndReturnError(err)
	}
	return g.generateExplicit(f.extracted())
}

func (g *Generator) GenerateExpenseReportID(f ExpenseReportFields) (Identifier, error) {
	if err := f.Validate(); err != nil {
		return Identifier{}, common.ValidateAndReturnError(err)
	}
	return g.generateExplicit(f.extracted())
}

func (g *Generator) GenerateGenericID(f GenericFields) (Identifier, error) {
	if err := f.Validate(); err != nil {
		return Identifier{}, common.ValidateAndReturnError(err)
	}
	return g.generateExplicit(f.extracted())
}

func (g *Generator) generateExplicit(e fields.Extracted) (Identifier, error) {
	cf, err := canon.Canonicalize(e)
	if err != nil {
		return Identifier{}, err
	}
	for _, w := range ChecksumWarnings(cf) {
		g.logger.Warn("explicit fields carry a suspicious tax ID", "class", e.Class, "warning", w)
	}
	return g.Generate(cf)
}

// ChecksumWarnings flags 10-digit tax IDs whose NIP control digit is wrong.
// Identifiers are still issued; numbers of other lengths are not checked.
func ChecksumWarnings(cf canon.Fields) []string {
	var out []string
	for _, n := range []fields.Name{fields.SellerTaxID, fields.BuyerTaxID} {
		v := cf.Get(n)
		if len(v) == common.TaxIDDigits && !common.ValidNIPChecksum(v) {
			out = append(out, string(n)+": NIP checksum mismatch")
		}
	}
	return out
}

// FormatAmount renders a numeric amount for the explicit generators.
func FormatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
