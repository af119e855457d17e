package canon

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/docid/constants"
	"github.com/joseph-ayodele/docid/internal/common"
	"github.com/joseph-ayodele/docid/internal/fields"
)

func TestDate_Equivalence(t *testing.T) {
	inputs := []string{
		"2025-01-15",
		"15.01.2025",
		"15/01/2025",
		"15-01-2025",
		"2025/1/15",
		"15.1.2025 r.",
		"15.01.25",
		"15/1/25",
		"15-01-25 r.",
		"20250115",
		"15 stycznia 2025",
		"15 Styczeń 2025 r.",
		"January 15, 2025",
		"15 Jan 2025",
		"2025-01-15T10:30:00Z",
	}
	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			got, err := Date(in)
			require.NoError(t, err)
			assert.Equal(t, "2025-01-15", got)
		})
	}
}

func TestDate_Invalid(t *testing.T) {
	for _, in := range []string{"", "31.02.2025", "31.02.25", "2025-13-01", "not a date"} {
		t.Run(in, func(t *testing.T) {
			_, err := Date(in)
			require.Error(t, err)
			assert.ErrorIs(t, err, common.ErrDateNormalization)
		})
	}
}

func TestAccepts(t *testing.T) {
	assert.True(t, Accepts(fields.IssueDate, "15.01.2025"))
	assert.True(t, Accepts(fields.SellerTaxID, "PL 521-301-72-28"))
	assert.True(t, Accepts(fields.GrossAmount, "1 230,50 zł"))
	assert.False(t, Accepts(fields.IssueDate, "Data wystawienia: 15.01.2025"))
	assert.False(t, Accepts(fields.SellerTaxID, "brak"))
	assert.False(t, Accepts(fields.DocumentNumber, "   "))
}

func TestExplicitOnlyKinds(t *testing.T) {
	assert.Equal(t, "PL61109010140000071219812874", Account("pl61 1090-1014 0000 0712 1981 2874"))
	assert.Equal(t, "bd34e785", NameDigest("jan   kowalski"))
	assert.Equal(t, "", NameDigest("  "))
	assert.Equal(t, "abc", Hash(" ABC "))
	assert.Len(t, Hash(strings.Repeat("F", 100)), HashLen)

	v, err := Value(fields.CounterpartyName, "Jan Kowalski")
	require.NoError(t, err)
	assert.Equal(t, "bd34e785", v)
}

func TestAmount_Rounding(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"1230.5", "1230.50"},
		{"1230.50", "1230.50"},
		{"1 230,50", "1230.50"},
		{"1 230,50 zł", "1230.50"},
		{"1.230,50 PLN", "1230.50"},
		{"1,230.50", "1230.50"},
		{"$1,230.50", "1230.50"},
		{"1230", "1230.00"},
		{"1.230", "1230.00"},
		{"1230.5050", "1230.51"},
		{"1230.5049", "1230.50"},
		{"0,5", "0.50"},
		{"-12,30", "-12.30"},
		{"1 000 000,00 EUR", "1000000.00"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Amount(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAmount_Invalid(t *testing.T) {
	for _, in := range []string{"", "PLN", "abc", "12a"} {
		t.Run(in, func(t *testing.T) {
			_, err := Amount(in)
			require.Error(t, err)
			assert.ErrorIs(t, err, common.ErrAmountNormalization)
		})
	}
}

func TestTaxIDAndText(t *testing.T) {
	assert.Equal(t, "5213017228", TaxID("PL 521-301-72-28"))
	assert.Equal(t, "5213017228", TaxID("521 30 17 228"))
	assert.Equal(t, "FV/2025/00142", Text("  fv/2025/00142 "))
	assert.Equal(t, "UMOWA NR 12/2025, ŁÓDŹ", Text("umowa\tnr  12/2025,\n łódź"))
	assert.Equal(t, "FI", Text("ﬁ"))
}

func TestCanonicalize_Idempotent(t *testing.T) {
	in := fields.Extracted{
		Class: constants.ClassInvoice,
		Values: map[fields.Name]string{
			fields.SellerTaxID:    "PL 521-301-72-28",
			fields.DocumentNumber: " fv/2025/00142",
			fields.IssueDate:      "15.01.2025",
			fields.GrossAmount:    "1 230,50 zł",
		},
	}
	once, err := Canonicalize(in)
	require.NoError(t, err)
	assert.Equal(t, map[fields.Name]string{
		fields.SellerTaxID:    "5213017228",
		fields.DocumentNumber: "FV/2025/00142",
		fields.IssueDate:      "2025-01-15",
		fields.GrossAmount:    "1230.50",
	}, once.Values)

	twice, err := Canonicalize(fields.Extracted{Class: once.Class, Values: once.Values})
	require.NoError(t, err)
	assert.Equal(t, once, twice)
}

func TestCanonicalize_ContractPartiesSorted(t *testing.T) {
	a, err := Canonicalize(fields.Extracted{Class: constants.ClassContract, Values: map[fields.Name]string{
		fields.SellerTaxID: "9876543210", fields.BuyerTaxID: "123-456-32-18", fields.IssueDate: "1.03.2025",
	}})
	require.NoError(t, err)
	b, err := Canonicalize(fields.Extracted{Class: constants.ClassContract, Values: map[fields.Name]string{
		fields.SellerTaxID: "1234563218", fields.BuyerTaxID: "987-654-32-10", fields.IssueDate: "2025-03-01",
	}})
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Equal(t, "1234563218", a.Get(fields.SellerTaxID))
}

func TestCanonicalize_Errors(t *testing.T) {
	_, err := Canonicalize(fields.Extracted{Class: constants.ClassInvoice, Values: map[fields.Name]string{
		fields.IssueDate: "sometime",
	}})
	assert.ErrorIs(t, err, common.ErrDateNormalization)

	_, err = Canonicalize(fields.Extracted{Class: constants.ClassInvoice, Values: map[fields.Name]string{
		fields.GrossAmount: "lots",
	}})
	assert.ErrorIs(t, err, common.ErrAmountNormalization)
}
