package shared

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// CanonicalKey folds a product, stage or color name to the form used for
// uniqueness: accents stripped, inner whitespace collapsed, upper case.
func CanonicalKey(s string) string {
	return strings.ToUpper(strings.Join(strings.Fields(stripAccents(s)), " "))
}

// SafeFileName reduces a file name to ASCII letters, digits, dots, dashes
// and underscores for use in object storage keys.
func SafeFileName(s string) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '_', r == '-':
			return r
		}
		return '-'
	}, stripAccents(strings.TrimSpace(s)))
	name = strings.Trim(name, "-.")
	if name == "" {
		return "file"
	}
	return name
}

func stripAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return folded
}

// Currency is a ledger currency code
type Currency string

const (
	CurrencyUSD Currency = "USD"
	CurrencyMXN Currency = "MXN"
)

// IsValid reports whether the currency is supported
func (c Currency) IsValid() bool {
	return c == CurrencyUSD || c == CurrencyMXN
}
