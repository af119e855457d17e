package canon

import (
	"crypto/md5"
	"encoding/hex"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"

	"github.com/joseph-ayodele/docid/internal/common"
)

// TaxID keeps digits only; a two-letter country prefix is dropped first.
func TaxID(s string) string {
	return common.DigitsOf(common.StripCountryPrefix(s))
}

// Text applies NFKC, upper-case folding, trimming and whitespace collapsing.
// Punctuation is preserved.
func Text(s string) string {
	s = norm.NFKC.String(s)
	s = cases.Upper(language.Und).String(s)
	return strings.Join(strings.Fields(s), " ")
}

// Account drops whitespace and dashes from a bank account number. Letters of
// an IBAN country prefix are kept.
func Account(s string) string {
	return strings.NewReplacer(" ", "", "-", "").Replace(Text(s))
}

// NameDigestLen is the number of hex characters kept by NameDigest.
const NameDigestLen = 8

// NameDigest stands in for a personal name: the first characters of the MD5
// of its Text form. Blank names yield "".
func NameDigest(s string) string {
	t := Text(s)
	if t == "" {
		return ""
	}
	sum := md5.Sum([]byte(t))
	return hex.EncodeToString(sum[:])[:NameDigestLen]
}

// HashLen caps content hashes supplied to the generic generator.
const HashLen = 64

// Hash lower-cases a caller-supplied content hash and truncates it.
func Hash(s string) string {
	h := strings.ToLower(strings.TrimSpace(s))
	if len(h) > HashLen {
		h = h[:HashLen]
	}
	return h
}
