package identity

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/docid/constants"
	"github.com/joseph-ayodele/docid/internal/canon"
	"github.com/joseph-ayodele/docid/internal/common"
	"github.com/joseph-ayodele/docid/internal/fields"
)

func invoiceFields() canon.Fields {
	return canon.Fields{Class: constants.ClassInvoice, Values: map[fields.Name]string{
		fields.SellerTaxID:    "5213017228",
		fields.DocumentNumber: "FV/2025/00142",
		fields.IssueDate:      "2025-01-15",
		fields.GrossAmount:    "1230.50",
		fields.BuyerTaxID:     "1234563218",
	}}
}

func TestCanonicalString(t *testing.T) {
	s, err := CanonicalString(invoiceFields())
	require.NoError(t, err)
	assert.Equal(t, "5213017228|FV/2025/00142|2025-01-15|1230.50", s)

	receipt := canon.Fields{Class: constants.ClassReceipt, Values: map[fields.Name]string{
		fields.SellerTaxID:    "5213017228",
		fields.IssueDate:      "2025-01-15",
		fields.GrossAmount:    "45.99",
		fields.RegisterNumber: "3",
	}}
	s, err = CanonicalString(receipt)
	require.NoError(t, err)
	assert.Equal(t, "5213017228|2025-01-15|45.99||3", s)

	delete(receipt.Values, fields.RegisterNumber)
	s, err = CanonicalString(receipt)
	require.NoError(t, err)
	assert.Equal(t, "5213017228|2025-01-15|45.99", s)
}

func TestGenerate(t *testing.T) {
	g := NewGenerator("", nil)
	id, err := g.Generate(invoiceFields())
	require.NoError(t, err)

	assert.Equal(t, "DOC", id.Prefix)
	assert.Equal(t, "FV", id.ClassCode)
	assert.Equal(t, Digest("5213017228|FV/2025/00142|2025-01-15|1230.50"), id.Digest)
	assert.Regexp(t, `^DOC-FV-[0-9A-F]{16}$`, id.String())

	for i := 0; i < 10; i++ {
		again, err := g.Generate(invoiceFields())
		require.NoError(t, err)
		assert.Equal(t, id, again)
	}

	other := invoiceFields()
	other.Values[fields.GrossAmount] = "1230.51"
	diff, err := g.Generate(other)
	require.NoError(t, err)
	assert.NotEqual(t, id, diff)

	custom, err := NewGenerator("ACME", nil).Generate(invoiceFields())
	require.NoError(t, err)
	assert.Equal(t, "ACME-FV-"+id.Digest, custom.String())
}

func TestGenerate_Errors(t *testing.T) {
	g := NewGenerator("", nil)
	_, err := g.Generate(canon.Fields{Class: constants.ClassUnknown})
	assert.ErrorIs(t, err, common.ErrInvalidInput)

	missing := invoiceFields()
	delete(missing.Values, fields.IssueDate)
	_, err = g.Generate(missing)
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestClassCodes(t *testing.T) {
	g := NewGenerator("", nil)
	codes := map[string]bool{}
	for _, c := range constants.ClassPriority {
		code, ok := c.Code()
		require.True(t, ok)
		codes[code] = true
	}
	assert.Len(t, codes, 3)

	id, err := g.GenerateContractID(ContractFields{Party1TaxID: "5213017228", Party2TaxID: "1234563218", ContractDate: "2025-03-01"})
	require.NoError(t, err)
	assert.Equal(t, "UMO", id.ClassCode)

	id, err = g.GenerateReceiptID(ReceiptFields{SellerTaxID: "5213017228", IssueDate: "2025-01-15", GrossAmount: "45,99"})
	require.NoError(t, err)
	assert.Equal(t, "PAR", id.ClassCode)
}

func TestClassCodes_Unique(t *testing.T) {
	all := append(append([]constants.DocumentClass(nil), constants.ClassPriority...), constants.ExplicitClasses...)
	seen := map[string]constants.DocumentClass{}
	for _, c := range all {
		code, ok := c.Code()
		require.True(t, ok, c)
		_, dup := seen[code]
		assert.False(t, dup, code)
		seen[code] = c
		assert.NotEmpty(t, Schema(c), c)
	}
	assert.Len(t, seen, 15)
}

func TestExplicitOnlyClasses(t *testing.T) {
	g := NewGenerator("", nil)

	tests := []struct {
		name      string
		gen       func() (Identifier, error)
		code      string
		canonical string
	}{
		{
			name: "correction",
			gen: func() (Identifier, error) {
				return g.GenerateCorrectionID(CorrectionFields{
					SellerTaxID:           "PL 521-301-72-28",
					CorrectionNumber:      "kor/1/2025",
					IssueDate:             "15.01.2025",
					OriginalInvoiceNumber: "FV/2025/00142",
					GrossAmount:           "-123,00",
				})
			},
			code:      "KOR",
			canonical: "5213017228|KOR/1/2025|2025-01-15|FV/2025/00142|-123.00",
		},
		{
			name: "bank statement",
			gen: func() (Identifier, error) {
				return g.GenerateBankStatementID(BankStatementFields{
					AccountNumber: "PL61 1090-1014 0000 0712 1981 2874",
					StatementDate: "2025-01-31",
				})
			},
			code:      "WB",
			canonical: "PL61109010140000071219812874|2025-01-31",
		},
		{
			name: "bill",
			gen: func() (Identifier, error) {
				return g.GenerateBillID(BillFields{IssuerTaxID: "5213017228", BillNumber: "R/7", IssueDate: "2025-01-15", GrossAmount: "500"})
			},
			code:      "RAC",
			canonical: "5213017228|R/7|2025-01-15|500.00",
		},
		{
			name: "cash receipt keeps the inner empty slot",
			gen: func() (Identifier, error) {
				return g.GenerateCashReceiptID(CashFields{DocumentNumber: "kp/1", DocumentDate: "2025-01-15", Amount: "100", CounterpartyName: " Jan  Kowalski "})
			},
			code:      "KP",
			canonical: "KP/1|2025-01-15|100.00||bd34e785",
		},
		{
			name: "debit note",
			gen: func() (Identifier, error) {
				return g.GenerateDebitNoteID(DebitNoteFields{IssuerTaxID: "5213017228", NoteNumber: "NK/3", IssueDate: "2025-01-15", Amount: "12,50", RecipientTaxID: "1234563218"})
			},
			code:      "NK",
			canonical: "5213017228|NK/3|2025-01-15|12.50|1234563218",
		},
		{
			name: "delivery note",
			gen: func() (Identifier, error) {
				return g.GenerateDeliveryNoteID(DeliveryNoteFields{IssuerTaxID: "5213017228", DocumentNumber: "WZ/9", IssueDate: "2025-01-15"})
			},
			code:      "WZ",
			canonical: "5213017228|WZ/9|2025-01-15",
		},
		{
			name: "expense report",
			gen: func() (Identifier, error) {
				return g.GenerateExpenseReportID(ExpenseReportFields{EmployeeID: "e-42", ReportDate: "2025-01-15", TotalAmount: "80", CompanyTaxID: "5213017228"})
			},
			code:      "DEL",
			canonical: "E-42|2025-01-15|80.00||5213017228",
		},
		{
			name: "generic",
			gen: func() (Identifier, error) {
				return g.GenerateGenericID(GenericFields{Class: constants.ClassProforma, ContentHash: "ABCDEF01", DocumentDate: "15.01.2025"})
			},
			code:      "PRO",
			canonical: "abcdef01|2025-01-15",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := tt.gen()
			require.NoError(t, err)
			assert.Equal(t, tt.code, id.ClassCode)
			assert.Equal(t, Digest(tt.canonical), id.Digest)
		})
	}
}

func TestCashDirections(t *testing.T) {
	g := NewGenerator("", nil)
	f := CashFields{DocumentNumber: "1", DocumentDate: "2025-01-15", Amount: "10"}
	in, err := g.GenerateCashReceiptID(f)
	require.NoError(t, err)
	out, err := g.GenerateCashDisbursementID(f)
	require.NoError(t, err)
	assert.Equal(t, "KP", in.ClassCode)
	assert.Equal(t, "KW", out.ClassCode)
	assert.NotEqual(t, in.String(), out.String())
}

func TestGenerateGenericID_Validation(t *testing.T) {
	g := NewGenerator("", nil)
	for _, c := range []constants.DocumentClass{constants.ClassInvoice, constants.ClassCorrection, constants.ClassUnknown, ""} {
		_, err := g.GenerateGenericID(GenericFields{Class: c, ContentHash: "ab"})
		assert.ErrorIs(t, err, common.ErrInvalidInput, c)
	}
	_, err := g.GenerateGenericID(GenericFields{Class: constants.ClassOther})
	assert.ErrorIs(t, err, common.ErrInvalidInput)

	_, err = g.GenerateBankStatementID(BankStatementFields{AccountNumber: "brak", StatementDate: "2025-01-31"})
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestGenerateExplicit_ChecksumLogged(t *testing.T) {
	var buf bytes.Buffer
	g := NewGenerator("", slog.New(slog.NewTextHandler(&buf, nil)))

	id, err := g.GenerateBillID(BillFields{IssuerTaxID: "5213017229", BillNumber: "R/7", IssueDate: "2025-01-15", GrossAmount: "500"})
	require.NoError(t, err)
	assert.Equal(t, "RAC", id.ClassCode)
	assert.Contains(t, buf.String(), "seller_tax_id: NIP checksum mismatch")

	buf.Reset()
	_, err = g.GenerateInvoiceID(InvoiceFields{SellerTaxID: "5213017228", InvoiceNumber: "FV/1", IssueDate: "2025-01-15", GrossAmount: "1"})
	require.NoError(t, err)
	assert.NotContains(t, buf.String(), "checksum")
}

func TestChecksumWarnings(t *testing.T) {
	cf := canon.Fields{Class: constants.ClassContract, Values: map[fields.Name]string{
		fields.SellerTaxID: "5213017228",
		fields.BuyerTaxID:  "1234563219",
	}}
	assert.Equal(t, []string{"buyer_tax_id: NIP checksum mismatch"}, ChecksumWarnings(cf))

	cf.Values[fields.BuyerTaxID] = "12345678901"
	assert.Empty(t, ChecksumWarnings(cf))
}

func TestGenerateInvoiceID(t *testing.T) {
	g := NewGenerator("", nil)
	want, err := g.Generate(invoiceFields())
	require.NoError(t, err)

	got, err := g.GenerateInvoiceID(InvoiceFields{
		SellerTaxID:   "5213017228",
		InvoiceNumber: "FV/2025/00142",
		IssueDate:     "2025-01-15",
		GrossAmount:   FormatAmount(1230.50),
	})
	require.NoError(t, err)
	assert.Equal(t, want, got)

	notations, err := g.GenerateInvoiceID(InvoiceFields{
		SellerTaxID:   "PL 521-301-72-28",
		InvoiceNumber: "fv/2025/00142 ",
		IssueDate:     "15.01.2025",
		GrossAmount:   "1 230,50 zł",
	})
	require.NoError(t, err)
	assert.Equal(t, want, notations)
}

func TestGenerateInvoiceID_Validation(t *testing.T) {
	g := NewGenerator("", nil)
	_, err := g.GenerateInvoiceID(InvoiceFields{InvoiceNumber: "FV/1", IssueDate: "2025-01-15", GrossAmount: "1"})
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrInvalidInput)
	assert.Contains(t, err.Error(), "seller_tax_id")

	_, err = g.GenerateInvoiceID(InvoiceFields{SellerTaxID: "5213017228", InvoiceNumber: "FV/1", IssueDate: "2025-01-15", GrossAmount: "n/a"})
	assert.ErrorIs(t, err, common.ErrInvalidInput)

	_, err = g.GenerateInvoiceID(InvoiceFields{SellerTaxID: "5213017228", InvoiceNumber: "FV/1", IssueDate: "2025-02-30", GrossAmount: "1"})
	assert.ErrorIs(t, err, common.ErrDateNormalization)
}

func TestContractPartyOrder(t *testing.T) {
	g := NewGenerator("", nil)
	a, err := g.GenerateContractID(ContractFields{Party1TaxID: "5213017228", Party2TaxID: "1234563218", ContractDate: "1 marca 2025", ContractNumber: "12/2025"})
	require.NoError(t, err)
	b, err := g.GenerateContractID(ContractFields{Party1TaxID: "123-456-32-18", Party2TaxID: "521-301-72-28", ContractDate: "2025-03-01", ContractNumber: "12/2025"})
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestIdentifier_ParseAndJSON(t *testing.T) {
	id, err := Parse("DOC-FV-9F2C4A1B7E3D5C08")
	require.NoError(t, err)
	assert.Equal(t, Identifier{Prefix: "DOC", ClassCode: "FV", Digest: "9F2C4A1B7E3D5C08"}, id)

	for _, bad := range []string{"", "DOC-FV-9f2c4a1b7e3d5c08", "DOC-FV-123", "DOCFV9F2C4A1B7E3D5C08", "DOC-F-V-9F2C4A1B7E3D5C08"} {
		_, err := Parse(bad)
		assert.ErrorIs(t, err, common.ErrInvalidIdentifier, bad)
	}

	data, err := json.Marshal(struct {
		ID Identifier `json:"id"`
	}{id})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"DOC-FV-9F2C4A1B7E3D5C08"}`, string(data))

	var back struct {
		ID Identifier `json:"id"`
	}
	require.NoError(t, json.Unmarshal(data, &back))
	assert.True(t, back.ID.Equal(id))
}

func TestIdentifier_UUID(t *testing.T) {
	id := MustParse("UNIV-IMG-0123456789ABCDEF")
	u := id.UUID()
	assert.Equal(t, 5, int(u.Version()))
	assert.Equal(t, u, MustParse("UNIV-IMG-0123456789ABCDEF").UUID())
	assert.NotEqual(t, u, MustParse("UNIV-IMG-0123456789ABCDEE").UUID())
}
