package common

import (
	"errors"
	"strings"
	"unicode"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// TaxIDDigits is the length of a Polish NIP once separators are removed.
const TaxIDDigits = 10

var nipWeights = [9]int{6, 5, 7, 2, 3, 4, 5, 6, 7}

// TaxIDRule accepts strings carrying exactly ten digits, with an optional
// two-letter country prefix and any separators.
var TaxIDRule = validation.By(func(value interface{}) error {
	s, err := validation.EnsureString(value)
	if err != nil {
		return err
	}
	if s == "" {
		return nil
	}
	if len(DigitsOf(StripCountryPrefix(s))) != TaxIDDigits {
		return errors.New("must contain exactly 10 digits")
	}
	return nil
})

// NotBlank is validation.Required that also rejects whitespace-only strings.
var NotBlank = validation.By(func(value interface{}) error {
	s, err := validation.EnsureString(value)
	if err != nil {
		return err
	}
	if strings.TrimSpace(s) == "" {
		return errors.New("cannot be blank")
	}
	return nil
})

// ContainsDigit rejects values that cannot possibly be an amount or date.
var ContainsDigit = validation.By(func(value interface{}) error {
	s, err := validation.EnsureString(value)
	if err != nil {
		return err
	}
	if s == "" {
		return nil
	}
	if strings.IndexFunc(s, unicode.IsDigit) < 0 {
		return errors.New("must contain digits")
	}
	return nil
})

// DigitsOf keeps ASCII digits only.
func DigitsOf(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// StripCountryPrefix removes a leading two-letter country code such as "PL".
func StripCountryPrefix(s string) string {
	t := strings.TrimSpace(s)
	if len(t) >= 2 && isASCIILetter(t[0]) && isASCIILetter(t[1]) {
		return t[2:]
	}
	return t
}

func isASCIILetter(b byte) bool {
	return (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z')
}

// ValidNIPChecksum checks the mod-11 control digit of a 10-digit NIP.
func ValidNIPChecksum(digits string) bool {
	if len(digits) != TaxIDDigits {
		return false
	}
	sum := 0
	for i, w := range nipWeights {
		sum += int(digits[i]-'0') * w
	}
	check := sum % 11
	return check != 10 && check == int(digits[9]-'0')
}

// ValidateAndReturnError converts ozzo validation errors into an AppError.
func ValidateAndReturnError(err error) error {
	if err == nil {
		return nil
	}
	return InvalidInputError(err.Error(), err)
}
