package canon

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"github.com/joseph-ayodele/docid/internal/common"
)

const isoDate = "2006-01-02"

var (
	reYMD     = regexp.MustCompile(`^(\d{4})[-./](\d{1,2})[-./](\d{1,2})$`)
	reDMY     = regexp.MustCompile(`^(\d{1,2})[-./](\d{1,2})[-./](\d{4})$`)
	reDMYY    = regexp.MustCompile(`^(\d{1,2})[-./](\d{1,2})[-./](\d{2})$`)
	reCompact = regexp.MustCompile(`^(\d{4})(\d{2})(\d{2})$`)
	reDayMon  = regexp.MustCompile(`^(\d{1,2})\s+(\pL+)\.?,?\s+(\d{4})$`)
	reMonDay  = regexp.MustCompile(`^(\pL+)\.?\s+(\d{1,2}),?\s+(\d{4})$`)
	reSuffix  = regexp.MustCompile(`\s*(?:r\.?|rok|roku)$`)
)

// months maps English and Polish month names (nominative, genitive and
// common abbreviations) to month numbers.
var months = map[string]time.Month{
	"january": 1, "jan": 1, "styczeń": 1, "styczen": 1, "stycznia": 1, "sty": 1,
	"february": 2, "feb": 2, "luty": 2, "lutego": 2, "lut": 2,
	"march": 3, "mar": 3, "marzec": 3, "marca": 3,
	"april": 4, "apr": 4, "kwiecień": 4, "kwiecien": 4, "kwietnia": 4, "kwi": 4,
	"may": 5, "maj": 5, "maja": 5,
	"june": 6, "jun": 6, "czerwiec": 6, "czerwca": 6, "cze": 6,
	"july": 7, "jul": 7, "lipiec": 7, "lipca": 7, "lip": 7,
	"august": 8, "aug": 8, "sierpień": 8, "sierpien": 8, "sierpnia": 8, "sie": 8,
	"september": 9, "sep": 9, "sept": 9, "wrzesień": 9, "wrzesien": 9, "września": 9, "wrzesnia": 9, "wrz": 9,
	"october": 10, "oct": 10, "październik": 10, "pazdziernik": 10, "października": 10, "pazdziernika": 10, "paź": 10, "paz": 10,
	"november": 11, "nov": 11, "listopad": 11, "listopada": 11, "lis": 11,
	"december": 12, "dec": 12, "grudzień": 12, "grudzien": 12, "grudnia": 12, "gru": 12,
}

// Date renders a date as YYYY-MM-DD. Numeric dates are read year-first when
// the first group has four digits and day-first otherwise. A two-digit year
// (DD.MM.YY) is taken as 20YY.
func Date(s string) (string, error) {
	in := strings.ToLower(strings.Join(strings.Fields(s), " "))
	in = reSuffix.ReplaceAllString(in, "")
	if in == "" {
		return "", common.DateNormalizationError(s, nil)
	}

	if m := reYMD.FindStringSubmatch(in); m != nil {
		return ymd(s, m[1], m[2], m[3])
	}
	if m := reDMY.FindStringSubmatch(in); m != nil {
		return ymd(s, m[3], m[2], m[1])
	}
	if m := reDMYY.FindStringSubmatch(in); m != nil {
		return ymd(s, "20"+m[3], m[2], m[1])
	}
	if m := reCompact.FindStringSubmatch(in); m != nil {
		return ymd(s, m[1], m[2], m[3])
	}
	if m := reDayMon.FindStringSubmatch(in); m != nil {
		if mon, ok := months[m[2]]; ok {
			return ymd(s, m[3], strconv.Itoa(int(mon)), m[1])
		}
	}
	if m := reMonDay.FindStringSubmatch(in); m != nil {
		if mon, ok := months[m[1]]; ok {
			return ymd(s, m[3], strconv.Itoa(int(mon)), m[2])
		}
	}

	// timestamps and other machine formats
	t, err := dateparse.ParseIn(strings.TrimSpace(s), time.UTC)
	if err != nil {
		return "", common.DateNormalizationError(s, err)
	}
	return t.Format(isoDate), nil
}

func ymd(orig, ys, ms, ds string) (string, error) {
	y, _ := strconv.Atoi(ys)
	m, _ := strconv.Atoi(ms)
	d, _ := strconv.Atoi(ds)
	t := time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
	if t.Year() != y || int(t.Month()) != m || t.Day() != d {
		return "", common.DateNormalizationError(orig, fmt.Errorf("no such day %04d-%02d-%02d", y, m, d))
	}
	return t.Format(isoDate), nil
}
