package money

import "testing"

func TestNormalizeCents(t *testing.T) {
	cases := []struct {
		name   string
		fields map[string]any
		want   int
	}{
		{"euros with comma", map[string]any{"price_eur": "18,50"}, 1850},
		{"euros with dot", map[string]any{"price_eur": "18.50"}, 1850},
		{"euros with symbol", map[string]any{"price_eur": "18,50 €"}, 1850},
		{"cents int", map[string]any{"price_cents": 1850}, 1850},
		{"cents float from json", map[string]any{"price_ttc_cent": float64(1850)}, 1850},
		{"canonical field", map[string]any{"unit_price_ttc_cent": float64(990)}, 990},
		{"empty", map[string]any{}, 0},
		{"garbage", map[string]any{"price": "abc"}, 0},
		{"generic price as euros", map[string]any{"price": "12"}, 1200},
		{"generic price float", map[string]any{"price": 9.99}, 999},
		{"cents wins over euros", map[string]any{"price_cents": 500, "price_eur": "99"}, 500},
		{"negative clamped", map[string]any{"price_cents": -42}, 0},
		{"negative euros clamped", map[string]any{"price_eur": "-3,50"}, 0},
		{"nil value skipped", map[string]any{"price_cents": nil, "price_eur": "2"}, 200},
		{"unparseable cents falls through", map[string]any{"price_cents": "n/a", "price_eur": "4"}, 400},
		{"thousands with nbsp", map[string]any{"price_eur": "1 200,00"}, 120000},
		{"legacy tarif", map[string]any{"tarif": "45"}, 4500},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := NormalizeCents(tc.fields); got != tc.want {
				t.Errorf("NormalizeCents(%v) = %d, want %d", tc.fields, got, tc.want)
			}
		})
	}
}

func TestNormalizeIsPure(t *testing.T) {
	in := map[string]any{"price_eur": "10,00", "label": "x"}
	a := NormalizeCents(in)
	b := NormalizeCents(in)
	if a != b || a != 1000 {
		t.Fatalf("expected stable 1000, got %d then %d", a, b)
	}
	if in["price_eur"] != "10,00" {
		t.Error("input mutated")
	}
}

func TestParseEuros(t *testing.T) {
	if c, ok := ParseEuros("0,005"); !ok || c != 1 {
		t.Errorf("rounding: got %d ok=%v", c, ok)
	}
	if _, ok := ParseEuros(""); ok {
		t.Error("empty string should not parse")
	}
	if _, ok := ParseEuros(struct{}{}); ok {
		t.Error("unknown type should not parse")
	}
}

func TestFormatEuros(t *testing.T) {
	if got := FormatEuros(1850); got != "18.50 €" {
		t.Errorf("FormatEuros(1850) = %q", got)
	}
	if got := FormatEuros(0); got != "0.00 €" {
		t.Errorf("FormatEuros(0) = %q", got)
	}
}
