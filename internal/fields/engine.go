package fields

import (
	"log/slog"
	"regexp"
	"strings"
	"unicode"

	"github.com/joseph-ayodele/docid/constants"
	"github.com/joseph-ayodele/docid/internal/common"
	"github.com/joseph-ayodele/docid/internal/extract"
)

// ValueCheck reports whether a structured hint value is usable for a field.
type ValueCheck func(n Name, v string) bool

// Engine applies rule tables to RawContent. It never fails: a document whose
// fields do not fully resolve for any class comes back as ClassUnknown.
type Engine struct {
	rules  []ClassRules
	check  ValueCheck
	logger *slog.Logger
}

type Option func(*Engine)

// WithRules replaces the built-in rule table.
func WithRules(rules []ClassRules) Option {
	return func(e *Engine) {
		e.rules = rules
	}
}

// WithValueCheck replaces the plausibility check applied to structured hints.
// A rejected hint does not resolve the field; the next hint or the text
// patterns are tried instead.
func WithValueCheck(check ValueCheck) Option {
	return func(e *Engine) {
		if check != nil {
			e.check = check
		}
	}
}

func NewEngine(logger *slog.Logger, opts ...Option) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	e := &Engine{rules: DefaultRules, check: Plausible, logger: logger}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract resolves the highest-priority class whose marker is present and
// whose required fields all resolve.
func (e *Engine) Extract(raw extract.RawContent) Extracted {
	var firstMissing []Name
	for _, cr := range e.rules {
		if !markerPresent(cr, raw) {
			continue
		}
		values, missing := e.resolveClass(cr, raw)
		if len(missing) == 0 {
			e.logger.Debug("class resolved", "class", cr.Class, "fields", len(values))
			return Extracted{Class: cr.Class, Values: values}
		}
		e.logger.Debug("class incomplete", "class", cr.Class, "missing", missing)
		if firstMissing == nil {
			firstMissing = missing
		}
	}
	return Extracted{Class: constants.ClassUnknown, Values: map[Name]string{}, Missing: firstMissing}
}

// Resolve applies one class's rules, ignoring the marker and priority. Used
// for diagnostics.
func (e *Engine) Resolve(class constants.DocumentClass, raw extract.RawContent) (map[Name]string, []Name, bool) {
	for _, cr := range e.rules {
		if cr.Class == class {
			values, missing := e.resolveClass(cr, raw)
			return values, missing, true
		}
	}
	return nil, nil, false
}

func markerPresent(cr ClassRules, raw extract.RawContent) bool {
	for _, h := range cr.MarkerHints {
		if raw.Structured[h] != "" {
			return true
		}
	}
	if dt := strings.ToLower(raw.Structured[extract.HintDocumentType]); dt != "" {
		for _, t := range cr.DocTypes {
			if dt == t {
				return true
			}
		}
	}
	return cr.Marker != nil && cr.Marker.MatchString(raw.Text)
}

func (e *Engine) resolveClass(cr ClassRules, raw extract.RawContent) (map[Name]string, []Name) {
	values := make(map[Name]string, len(cr.Fields))
	var missing []Name
	for _, fr := range cr.Fields {
		if v, ok := e.resolveField(fr, raw); ok {
			values[fr.Name] = v
		} else if fr.Required {
			missing = append(missing, fr.Name)
		}
	}
	return values, missing
}

func (e *Engine) resolveField(fr FieldRule, raw extract.RawContent) (string, bool) {
	for _, h := range fr.Hints {
		if v, ok := e.hintValue(fr.Name, raw.Structured[h]); ok {
			return v, true
		}
		if raw.Structured[h] != "" {
			e.logger.Debug("structured hint rejected", "field", fr.Name, "hint", h)
		}
	}

	seen := make(map[string]struct{})
	n := 0
	for _, re := range fr.Patterns {
		for _, m := range re.FindAllStringSubmatch(raw.Text, -1) {
			if len(m) < 2 {
				continue
			}
			v := cleanValue(fr.Name, m[1])
			if v == "" {
				continue
			}
			key := distinctKey(fr.Name, v)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			if n == fr.Nth {
				return v, true
			}
			n++
		}
	}
	return "", false
}

// hintValue accepts a hint as is, or the first value of the field's kind
// embedded in it ("Data wystawienia: 15.01.2025" yields "15.01.2025").
func (e *Engine) hintValue(n Name, raw string) (string, bool) {
	v := cleanValue(n, raw)
	if v == "" {
		return "", false
	}
	if e.check(n, v) {
		return v, true
	}
	re, ok := embeddedValue[KindOf(n)]
	if !ok {
		return "", false
	}
	m := re.FindStringSubmatch(v)
	if m == nil {
		return "", false
	}
	if inner := cleanValue(n, m[1]); inner != "" && inner != v && e.check(n, inner) {
		return inner, true
	}
	return "", false
}

var embeddedValue = map[Kind]*regexp.Regexp{
	KindTaxID:  regexp.MustCompile(taxIDValue),
	KindDate:   regexp.MustCompile(`(?i)` + dateValue),
	KindAmount: regexp.MustCompile(amountValue),
}

// Plausible is the default ValueCheck: tax IDs need digits after the
// country prefix, dates and amounts need at least one digit.
func Plausible(n Name, v string) bool {
	switch KindOf(n) {
	case KindTaxID:
		return common.DigitsOf(common.StripCountryPrefix(v)) != ""
	case KindDate, KindAmount:
		return strings.IndexFunc(v, unicode.IsDigit) >= 0
	default:
		return strings.TrimSpace(v) != ""
	}
}

// cleanValue trims whitespace and, for identifiers, trailing sentence punctuation.
func cleanValue(n Name, v string) string {
	v = strings.TrimSpace(v)
	if KindOf(n) == KindText {
		v = strings.TrimRight(v, ".,;:-/")
	}
	return v
}
