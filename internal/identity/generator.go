package identity

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"

	"github.com/joseph-ayodele/docid/constants"
	"github.com/joseph-ayodele/docid/internal/canon"
	"github.com/joseph-ayodele/docid/internal/common"
	"github.com/joseph-ayodele/docid/internal/fields"
)

// DefaultPrefix is the prefix of business identifiers.
const DefaultPrefix = "DOC"

// Separator joins canonical fields before hashing.
const Separator = "|"

type slot struct {
	name     fields.Name
	optional bool
}

// schemas fix the field order hashed for each class. Optional slots are
// trailing; empty trailing slots are dropped, inner ones stay as "".
var schemas = map[constants.DocumentClass][]slot{
	constants.ClassInvoice: {
		{name: fields.SellerTaxID},
		{name: fields.DocumentNumber},
		{name: fields.IssueDate},
		{name: fields.GrossAmount},
	},
	constants.ClassReceipt: {
		{name: fields.SellerTaxID},
		{name: fields.IssueDate},
		{name: fields.GrossAmount},
		{name: fields.DocumentNumber, optional: true},
		{name: fields.RegisterNumber, optional: true},
	},
	constants.ClassContract: {
		{name: fields.SellerTaxID},
		{name: fields.BuyerTaxID},
		{name: fields.IssueDate},
		{name: fields.DocumentNumber, optional: true},
	},
	constants.ClassCorrection: {
		{name: fields.SellerTaxID},
		{name: fields.DocumentNumber},
		{name: fields.IssueDate},
		{name: fields.OriginalNumber},
		{name: fields.GrossAmount},
	},
	constants.ClassBankStatement: {
		{name: fields.AccountNumber},
		{name: fields.IssueDate},
		{name: fields.DocumentNumber, optional: true},
	},
	constants.ClassBill: {
		{name: fields.SellerTaxID},
		{name: fields.DocumentNumber},
		{name: fields.IssueDate},
		{name: fields.GrossAmount},
	},
	constants.ClassCashReceipt:      cashSchema,
	constants.ClassCashDisbursement: cashSchema,
	constants.ClassDebitNote: {
		{name: fields.SellerTaxID},
		{name: fields.DocumentNumber},
		{name: fields.IssueDate},
		{name: fields.GrossAmount},
		{name: fields.BuyerTaxID, optional: true},
	},
	constants.ClassDeliveryNote: {
		{name: fields.SellerTaxID},
		{name: fields.DocumentNumber},
		{name: fields.IssueDate},
		{name: fields.BuyerTaxID, optional: true},
	},
	constants.ClassExpenseReport: {
		{name: fields.EmployeeID},
		{name: fields.IssueDate},
		{name: fields.GrossAmount},
		{name: fields.DocumentNumber, optional: true},
		{name: fields.SellerTaxID, optional: true},
	},
}

var cashSchema = []slot{
	{name: fields.DocumentNumber},
	{name: fields.IssueDate},
	{name: fields.GrossAmount},
	{name: fields.SellerTaxID, optional: true},
	{name: fields.CounterpartyName, optional: true},
}

// genericSchema serves classes without a schema of their own.
var genericSchema = []slot{
	{name: fields.ContentHash},
	{name: fields.IssueDate, optional: true},
	{name: fields.SellerTaxID, optional: true},
}

// Schema returns the ordered field names hashed for a class. Classes with a
// code but no dedicated schema get the generic one.
func Schema(class constants.DocumentClass) []fields.Name {
	s, ok := schemaFor(class)
	if !ok {
		return []fields.Name{}
	}
	out := make([]fields.Name, len(s))
	for i, sl := range s {
		out[i] = sl.name
	}
	return out
}

// Generator derives business identifiers from canonical fields.
type Generator struct {
	prefix string
	logger *slog.Logger
}

func NewGenerator(prefix string, logger *slog.Logger) *Generator {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{prefix: prefix, logger: logger}
}

// Prefix returns the configured identifier prefix.
func (g *Generator) Prefix() string { return g.prefix }

func schemaFor(class constants.DocumentClass) ([]slot, bool) {
	if s, ok := schemas[class]; ok {
		return s, true
	}
	if _, ok := class.Code(); ok {
		return genericSchema, true
	}
	return nil, false
}

// HasSchema reports whether a class has a schema of its own.
func HasSchema(class constants.DocumentClass) bool {
	_, ok := schemas[class]
	return ok
}

// CanonicalString returns the exact byte sequence hashed for f.
func CanonicalString(f canon.Fields) (string, error) {
	schema, ok := schemaFor(f.Class)
	if !ok {
		return "", common.InvalidInputError(fmt.Sprintf("no identity schema for class %q", f.Class), nil)
	}

	parts := make([]string, 0, len(schema))
	for _, sl := range schema {
		v := f.Values[sl.name]
		if v == "" && !sl.optional {
			return "", common.InvalidInputError(fmt.Sprintf("%s: required field %s is empty", f.Class, sl.name), nil)
		}
		parts = append(parts, v)
	}
	for len(parts) > 0 && parts[len(parts)-1] == "" {
		parts = parts[:len(parts)-1]
	}
	return strings.Join(parts, Separator), nil
}

// Generate builds PREFIX-CODE-DIGEST for a resolved class.
func (g *Generator) Generate(f canon.Fields) (Identifier, error) {
	code, ok := f.Class.Code()
	if !ok {
		return Identifier{}, common.InvalidInputError(fmt.Sprintf("class %q has no identifier code", f.Class), nil)
	}
	s, err := CanonicalString(f)
	if err != nil {
		return Identifier{}, err
	}
	id := Identifier{Prefix: g.prefix, ClassCode: code, Digest: Digest(s)}
	g.logger.Debug("identifier generated", "class", f.Class, "id", id.String())
	return id, nil
}

// Digest hashes a canonical string: SHA-256, first 16 hex characters,
// upper-case.
func Digest(canonical string) string {
	sum := sha256.Sum256([]byte(canonical))
	return strings.ToUpper(hex.EncodeToString(sum[:]))[:DigestLen]
}

// DigestParts joins parts with the separator and hashes them.
func DigestParts(parts ...string) string {
	return Digest(strings.Join(parts, Separator))
}
