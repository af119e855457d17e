// Package canon reduces extracted field values to their canonical textual form.
// Every function here is idempotent.
package canon

import (
	"fmt"
	"sort"

	"github.com/joseph-ayodele/docid/constants"
	"github.com/joseph-ayodele/docid/internal/fields"
)

// Fields holds canonical values keyed like fields.Extracted.
type Fields struct {
	Class  constants.DocumentClass
	Values map[fields.Name]string
}

// Get returns the canonical value of a field, or "".
func (f Fields) Get(n fields.Name) string {
	return f.Values[n]
}

// Canonicalize normalizes every extracted value. Date and amount failures are
// returned as DateNormalization / AmountNormalization errors.
func Canonicalize(e fields.Extracted) (Fields, error) {
	out := Fields{Class: e.Class, Values: make(map[fields.Name]string, len(e.Values))}
	for name, raw := range e.Values {
		v, err := Value(name, raw)
		if err != nil {
			return Fields{}, fmt.Errorf("%s: %w", name, err)
		}
		if v != "" {
			out.Values[name] = v
		}
	}

	if e.Class == constants.ClassContract {
		sortParties(out.Values)
	}
	return out, nil
}

// Value canonicalizes a single field value according to its kind.
func Value(name fields.Name, raw string) (string, error) {
	switch fields.KindOf(name) {
	case fields.KindTaxID:
		return TaxID(raw), nil
	case fields.KindDate:
		return Date(raw)
	case fields.KindAmount:
		return Amount(raw)
	case fields.KindAccount:
		return Account(raw), nil
	case fields.KindName:
		return NameDigest(raw), nil
	case fields.KindHash:
		return Hash(raw), nil
	default:
		return Text(raw), nil
	}
}

// Accepts reports whether raw canonicalizes to a non-empty value for name.
// The pipeline installs it as the field engine's hint check.
func Accepts(name fields.Name, raw string) bool {
	v, err := Value(name, raw)
	return err == nil && v != ""
}

// sortParties orders the two contract parties so that swapping them does not
// change the identifier.
func sortParties(v map[fields.Name]string) {
	a, okA := v[fields.SellerTaxID]
	b, okB := v[fields.BuyerTaxID]
	if !okA || !okB {
		return
	}
	p := []string{a, b}
	sort.Strings(p)
	v[fields.SellerTaxID], v[fields.BuyerTaxID] = p[0], p[1]
}
