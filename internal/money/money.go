// Package money turns the many price shapes found in hand-edited JSON —
// integer cents, euro floats, "18,50" strings, legacy field names — into a
// canonical non-negative integer number of cents.
package money

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

type unitKind int

const (
	unitCent unitKind = iota
	unitEuro
)

// fieldRule is one extraction attempt: a field name plus the unit its value
// is expressed in. Rules run in order, first successful parse wins. Adding a
// legacy alias is a one-line change here.
type fieldRule struct {
	field string
	unit  unitKind
}

var priceRules = []fieldRule{
	// cents variants first: the canonical schema and its ancestors
	{"unit_price_ttc_cent", unitCent},
	{"price_ttc_cent", unitCent},
	{"price_cents", unitCent},
	{"price_cent", unitCent},
	{"unit_price_cents", unitCent},
	{"amount_cent", unitCent},
	{"amount_cents", unitCent},
	// explicit euro variants
	{"price_eur", unitEuro},
	{"unit_price_eur", unitEuro},
	{"price_ttc_eur", unitEuro},
	{"prix_eur", unitEuro},
	// generic names, parsed as euros as a last resort
	{"price", unitEuro},
	{"unit_price", unitEuro},
	{"prix", unitEuro},
	{"tarif", unitEuro},
}

// NormalizeCents resolves a price from fields by trying priceRules in
// order. Total function: unparseable or absent data yields 0, never an
// error — a draft record legitimately has no price yet. Results are clamped
// to >= 0.
func NormalizeCents(fields map[string]any) int {
	for _, r := range priceRules {
		v, ok := fields[r.field]
		if !ok || v == nil {
			continue
		}
		var c int
		var parsed bool
		switch r.unit {
		case unitCent:
			c, parsed = ParseCents(v)
		case unitEuro:
			c, parsed = ParseEuros(v)
		}
		if parsed {
			if c < 0 {
				return 0
			}
			return c
		}
	}
	return 0
}

// ParseCents reads a value already expressed in integer cents.
func ParseCents(v any) (int, bool) {
	d, ok := toDecimal(v)
	if !ok {
		return 0, false
	}
	return int(d.Round(0).IntPart()), true
}

// ParseEuros reads a major-unit value ("18,50", "18.50 €", 18.5) and
// returns cents.
func ParseEuros(v any) (int, bool) {
	d, ok := toDecimal(v)
	if !ok {
		return 0, false
	}
	return int(d.Mul(decimal.NewFromInt(100)).Round(0).IntPart()), true
}

func toDecimal(v any) (decimal.Decimal, bool) {
	switch x := v.(type) {
	case int:
		return decimal.NewFromInt(int64(x)), true
	case int64:
		return decimal.NewFromInt(x), true
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return decimal.Decimal{}, false
		}
		return decimal.NewFromFloat(x), true
	case string:
		s := cleanAmount(x)
		if s == "" {
			return decimal.Decimal{}, false
		}
		d, err := decimal.NewFromString(s)
		if err != nil {
			return decimal.Decimal{}, false
		}
		return d, true
	default:
		return decimal.Decimal{}, false
	}
}

// cleanAmount strips currency symbols and whitespace and converts the
// locale decimal comma to a dot.
func cleanAmount(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "€", "")
	s = strings.ReplaceAll(s, "EUR", "")
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, ",", ".")
	return s
}

// FormatEuros renders cents for display, e.g. 1850 -> "18.50 €".
func FormatEuros(cents int) string {
	return fmt.Sprintf("%.2f €", float64(cents)/100)
}
