package canon

import (
	"errors"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/joseph-ayodele/docid/internal/common"
)

var (
	reCurrency  = regexp.MustCompile(`(?i)\b(?:pln|zł|zl|eur|usd|gbp|chf)\b|zł|[$€£]`)
	reAmountStr = regexp.MustCompile(`^-?[\d \x{00A0}'.,]*\d$`)
)

// Amount renders a monetary value with exactly two decimals, rounding half up
// (away from zero) and without thousands separators.
//
// The last '.' or ',' is the decimal mark unless exactly three digits follow
// it, in which case it groups thousands like every other separator.
func Amount(s string) (string, error) {
	in := strings.TrimSpace(reCurrency.ReplaceAllString(s, ""))
	if in == "" || !reAmountStr.MatchString(in) {
		return "", common.AmountNormalizationError(s, errors.New("not a number"))
	}

	neg := strings.HasPrefix(in, "-")
	in = strings.TrimPrefix(in, "-")

	intPart, frac := in, ""
	if i := strings.LastIndexAny(in, ".,"); i >= 0 {
		tail := in[i+1:]
		if isDigits(tail) && len(tail) != 3 {
			intPart, frac = in[:i], tail
		}
	}
	intPart = strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, intPart)
	if intPart == "" {
		intPart = "0"
	}

	num := intPart
	if frac != "" {
		num += "." + frac
	}
	if neg {
		num = "-" + num
	}

	d, err := decimal.NewFromString(num)
	if err != nil {
		return "", common.AmountNormalizationError(s, err)
	}
	return d.Round(2).StringFixed(2), nil
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
