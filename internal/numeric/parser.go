// Package numeric implements the amount parser shared by the extraction
// engine and claim compiler (spec.md §4.2).
//
// Grounded on original_source/app/svc_extractor/parsers.py: Parser.parse_number,
// reimplemented with exact decimal arithmetic (shopspring/decimal) instead
// of the float round-off the Python original is exposed to, so the
// round-trip law in spec.md §8 — parse_number(format_number(x)) == x for
// any representable decimal with <= 4 fractional digits — holds exactly.
package numeric

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrorMode controls behavior when a value cannot be parsed, mirroring the
// Python original's `errors` parameter ("raise" | "ignore" | "devaluate").
type ErrorMode int

const (
	// ModeRaise returns an error.
	ModeRaise ErrorMode = iota
	// ModeIgnore returns the zero value and ok=false, no error; the caller
	// keeps the original input string itself.
	ModeIgnore
	// ModeDevaluate returns the zero value and ok=false, no error.
	ModeDevaluate
)

var nonDigit = regexp.MustCompile(`\D`)

// ParseAmount converts a string amount into a decimal, tolerating thousand
// separators ('.', ',', ' ') and a trailing sign. The fractional width is
// inferred from the last non-digit separator, so both "125,30" (2 decimals)
// and "125,5400" (4 decimals) parse correctly — documents occasionally
// round to 4 decimal places instead of 2.
func ParseAmount(val string) (decimal.Decimal, error) {
	d, _, err := parseAmount(val, ModeRaise)
	return d, err
}

// ParseAmountMode is the full form, mirroring parse_number's `errors` modes.
// When mode is ModeIgnore and parsing fails, ok is false and the returned
// decimal is the zero value; callers that need the original string back
// should retain it themselves, since Go has no dynamic return type.
func ParseAmountMode(val string, mode ErrorMode) (decimal.Decimal, bool, error) {
	return parseAmount(val, mode)
}

func parseAmount(val string, mode ErrorMode) (decimal.Decimal, bool, error) {
	repl := strings.ReplaceAll(val, " ", "")
	neg := strings.Contains(repl, "-")
	repl = strings.Trim(repl, "-")

	decimals := 0
	if loc := nonDigit.FindAllStringIndex(repl, -1); len(loc) > 0 {
		last := loc[len(loc)-1]
		decimals = len(repl) - last[1]
	}

	digitsOnly := strings.NewReplacer(".", "", ",", "").Replace(repl)
	if digitsOnly == "" || !isNumeric(digitsOnly) {
		switch mode {
		case ModeIgnore:
			return decimal.Zero, false, nil
		case ModeDevaluate:
			return decimal.Zero, false, nil
		default:
			return decimal.Zero, false, fmt.Errorf("numeric: %q is not numeric", val)
		}
	}

	intVal, err := strconv.ParseInt(digitsOnly, 10, 64)
	if err != nil {
		// value too large for int64; fall back to decimal parsing of the raw digits
		big, convErr := decimal.NewFromString(digitsOnly)
		if convErr != nil {
			return decimal.Zero, false, fmt.Errorf("numeric: %q overflowed: %w", val, err)
		}
		result := big.Shift(int32(-decimals))
		if neg {
			result = result.Neg()
		}
		return result, true, nil
	}

	result := decimal.New(intVal, int32(-decimals))
	if neg {
		result = result.Neg()
	}

	return result, true, nil
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// FormatAmount renders a decimal back into the thousand-separated string
// form ParseAmount accepts, using sep as the thousands separator and dec as
// the decimal separator. This is the inverse used by the round-trip law.
func FormatAmount(d decimal.Decimal, sep, dec string) string {
	neg := d.IsNegative()
	abs := d.Abs()

	parts := strings.SplitN(abs.StringFixedBank(abs.Exponent()*-1), ".", 2)
	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}

	grouped := groupThousands(intPart, sep)

	out := grouped
	if fracPart != "" {
		out += dec + fracPart
	}
	if neg {
		out = "-" + out
	}
	return out
}

func groupThousands(intPart, sep string) string {
	n := len(intPart)
	if n <= 3 {
		return intPart
	}
	var b strings.Builder
	rem := n % 3
	if rem > 0 {
		b.WriteString(intPart[:rem])
	}
	for i := rem; i < n; i += 3 {
		if b.Len() > 0 {
			b.WriteString(sep)
		}
		b.WriteString(intPart[i : i+3])
	}
	return b.String()
}

// FormatGerman formats an amount in German locale: thousand '.', decimal
// ',', no currency symbol, always 2 fractional digits — used by the claim
// compiler's Status-Sales templating (spec.md §4.5).
func FormatGerman(d decimal.Decimal) string {
	rounded := d.Round(2)
	neg := rounded.IsNegative()
	abs := rounded.Abs()
	s := abs.StringFixed(2)
	parts := strings.SplitN(s, ".", 2)
	grouped := groupThousands(parts[0], ".")
	out := grouped + "," + parts[1]
	if neg {
		out = "-" + out
	}
	return out
}
