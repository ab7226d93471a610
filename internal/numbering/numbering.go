// Package numbering allocates human-facing document numbers, e.g.
// DEV-2026-0001 for quotes and FAC-A-0001 for deposit invoices.
package numbering

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/diewo77/go-backoffice/internal/store"
)

// Sequencer hands out the next number in a series. The allocation scans the
// numbers already in use for the series prefix and takes max+1; a per-series
// counter persisted through the record store acts as a floor so deleting the
// highest-numbered document never causes a number to be reissued. Full-table
// scan on every allocation is fine at this data volume, and the
// scan-then-increment is only safe under the single-user assumption.
type Sequencer struct {
	counters *store.Store
}

func New(counters *store.Store) *Sequencer {
	return &Sequencer{counters: counters}
}

// QuotePrefix builds the series prefix for quotes of a given year, e.g.
// ("DEV", 2026) -> "DEV-2026-".
func QuotePrefix(base string, year int) string {
	return fmt.Sprintf("%s-%d-", strings.TrimSuffix(base, "-"), year)
}

// InvoicePrefix builds the type-qualified series prefix for invoices, e.g.
// ("FAC", "A") -> "FAC-A-".
func InvoicePrefix(base, typeCode string) string {
	return fmt.Sprintf("%s-%s-", strings.TrimSuffix(base, "-"), typeCode)
}

// Next allocates the next number for prefix. existing is every number
// already assigned in the collection; entries under other prefixes or that
// do not parse as prefix + 4-digit integer are ignored.
func (s *Sequencer) Next(prefix string, existing []string) string {
	max := 0
	for _, n := range existing {
		if v, ok := ParseSuffix(prefix, n); ok && v > max {
			max = v
		}
	}
	if floor := s.lastAllocated(prefix); floor > max {
		max = floor
	}
	next := max + 1
	s.remember(prefix, next)
	return fmt.Sprintf("%s%04d", prefix, next)
}

// ParseSuffix extracts the numeric suffix of number under prefix. Only
// 4-digit suffixes count as part of the series.
func ParseSuffix(prefix, number string) (int, bool) {
	rest, ok := strings.CutPrefix(number, prefix)
	if !ok || len(rest) != 4 {
		return 0, false
	}
	v, err := strconv.Atoi(rest)
	if err != nil || v < 0 {
		return 0, false
	}
	return v, true
}

func (s *Sequencer) lastAllocated(prefix string) int {
	if s.counters == nil {
		return 0
	}
	rec, ok := s.counters.Get(prefix)
	if !ok {
		return 0
	}
	switch v := rec["last"].(type) {
	case float64:
		return int(v)
	case int:
		return v
	default:
		return 0
	}
}

func (s *Sequencer) remember(prefix string, last int) {
	if s.counters == nil {
		return
	}
	_, _ = s.counters.Upsert(store.Record{"id": prefix, "last": last})
}
