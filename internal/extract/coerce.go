package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/sells-group/quote-intake/internal/model"
)

var truthy = map[string]bool{"yes": true, "true": true, "y": true, "1": true}

var nonNumericRe = regexp.MustCompile(`[^\d.]`)

// Coerce converts a matched value to the field's type. It reports false when
// the value is empty and the field should stay unset.
//
// Numeric values that cannot be parsed are returned as the trimmed raw string
// so that the degradation stays visible downstream.
func Coerce(f model.Field, raw string) (any, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil, false
	}

	switch model.KindOf(f) {
	case model.KindBool:
		return truthy[strings.ToLower(s)], true
	case model.KindInteger, model.KindMoney:
		return parseNumber(s), true
	case model.KindMeta:
		return nil, false
	default:
		return s, true
	}
}

func parseNumber(s string) any {
	digits := nonNumericRe.ReplaceAllString(s, "")
	if digits == "" {
		return s
	}
	if !strings.Contains(digits, ".") {
		if n, err := strconv.ParseInt(digits, 10, 64); err == nil {
			return n
		}
		return s
	}
	if n, err := strconv.ParseFloat(digits, 64); err == nil {
		return n
	}
	return s
}

// cleanText trims a captured text value. bound cuts the value at the first
// embedded label; strip removes a label absorbed at its end.
func cleanText(raw string, bound *regexp.Regexp, strip bool) string {
	if bound != nil {
		if loc := bound.FindStringIndex(raw); loc != nil {
			raw = raw[:loc[0]]
		}
	}
	raw = strings.TrimSpace(raw)
	if strip {
		raw = strings.TrimSpace(trailingLabelRe.ReplaceAllString(raw, ""))
	}
	return raw
}
