package template

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Date layouts pinned so rendered emails are identical across runs and
// hosts. Both follow en-US conventions.
const (
	dateLayout     = "January 2, 2006"
	dateTimeLayout = "Jan 2, 2006, 3:04 PM"
)

// numberPrinter renders thousand-separated numbers for the number formatter.
var numberPrinter = message.NewPrinter(language.English)

// ApplyFormatter transforms a resolved value with the named formatter.
// Unknown formatter names fall back to plain stringification, and values a
// formatter cannot parse pass through unchanged, so a bad template or a bad
// data shape still produces a sendable email.
func ApplyFormatter(val any, name string) string {
	switch name {
	case "currency":
		return formatCurrency(val)
	case "formatDate":
		return formatDate(val, dateLayout)
	case "formatDateTime":
		return formatDate(val, dateTimeLayout)
	case "uppercase":
		return strings.ToUpper(formatValue(val))
	case "lowercase":
		return strings.ToLower(formatValue(val))
	case "capitalize":
		return capitalize(formatValue(val))
	case "number":
		return formatNumber(val)
	case "percent":
		return formatPercent(val)
	default:
		return formatValue(val)
	}
}

// formatCurrency treats the value as an integer count of cents and renders
// "$X.YY" with exactly two decimal digits. Non-numeric input passes through.
func formatCurrency(val any) string {
	cents, ok := toFloat(val)
	if !ok {
		return formatValue(val)
	}
	return fmt.Sprintf("$%.2f", cents/100)
}

func formatDate(val any, layout string) string {
	t, ok := toTime(val)
	if !ok {
		return formatValue(val)
	}
	return t.Format(layout)
}

func formatNumber(val any) string {
	f, ok := toFloat(val)
	if !ok {
		return formatValue(val)
	}
	return numberPrinter.Sprint(number.Decimal(f))
}

func formatPercent(val any) string {
	f, ok := toFloat(val)
	if !ok {
		return formatValue(val)
	}
	return strconv.FormatFloat(f, 'f', -1, 64) + "%"
}

// capitalize uppercases only the first character; the remainder is left
// untouched.
func capitalize(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[size:]
}

// toFloat coerces numeric values and numeric strings to float64.
func toFloat(val any) (float64, bool) {
	switch v := val.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int8:
		return float64(v), true
	case int16:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint8:
		return float64(v), true
	case uint16:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint64:
		return float64(v), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// dateLayouts are the accepted input formats for date values, tried in
// order. Anything else passes through unformatted.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func toTime(val any) (time.Time, bool) {
	switch v := val.(type) {
	case time.Time:
		return v, true
	case string:
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, v); err == nil {
				return t, true
			}
		}
		return time.Time{}, false
	default:
		return time.Time{}, false
	}
}

func stringify(val any) string {
	return fmt.Sprintf("%v", val)
}
