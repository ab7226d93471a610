package models

import (
	"fmt"
	"strings"
	"time"
)

type QuoteStatus string

const (
	QuotePending   QuoteStatus = "PENDING"
	QuoteValidated QuoteStatus = "VALIDATED"
	QuoteRefused   QuoteStatus = "REFUSED"
	QuoteFinalized QuoteStatus = "FINALIZED"
)

// quoteTransitions: PENDING -> {VALIDATED, REFUSED}; VALIDATED -> FINALIZED.
// REFUSED and FINALIZED are terminal.
var quoteTransitions = map[QuoteStatus][]QuoteStatus{
	QuotePending:   {QuoteValidated, QuoteRefused},
	QuoteValidated: {QuoteFinalized},
}

type PaymentKind string

const (
	PaymentDeposit PaymentKind = "ACOMPTE"
	PaymentBalance PaymentKind = "SOLDE"
)

// QuoteLine. TotalCent is a derived snapshot, recomputed on every
// reconciliation and never trusted from input.
type QuoteLine struct {
	ItemID      string  `json:"item_id,omitempty"`
	ItemRef     string  `json:"item_ref,omitempty"`
	ItemType    string  `json:"item_type"`
	Label       string  `json:"label"`
	Description string  `json:"description,omitempty"`
	Unit        string  `json:"unit,omitempty"`
	Qty         float64 `json:"qty"`
	UnitPrice   int     `json:"unit_price_ttc_cent"`
	RemisePct   float64 `json:"remise_pct"` // 0..100
	TotalCent   int     `json:"total_line_ttc_cent"`
}

// PaymentRecord is appended by the workflow; the only later mutation is
// attaching the invoice id once the invoice exists.
type PaymentRecord struct {
	ID         string      `json:"id"`
	Kind       PaymentKind `json:"kind"`
	AmountCent int         `json:"amount_cent"`
	Method     string      `json:"method,omitempty"` // CB, ESP, VIREMENT, CHQ…
	Date       time.Time   `json:"date"`
	InvoiceID  string      `json:"invoice_id,omitempty"`
}

type Quote struct {
	ID        string          `json:"id"`
	Number    string          `json:"number,omitempty"` // assigned once, stable
	ClientID  string          `json:"client_id"`
	Status    QuoteStatus     `json:"status"`
	CreatedAt time.Time       `json:"created_at"`
	DecidedAt *time.Time      `json:"decided_at,omitempty"`
	EventDate *time.Time      `json:"event_date,omitempty"`
	Lines     []QuoteLine     `json:"lines"`
	TotalCent int             `json:"total_ttc_cent"` // derived, = sum of line totals
	Payments  []PaymentRecord `json:"payments"`
	Notes     string          `json:"notes,omitempty"`
	Terms     string          `json:"terms,omitempty"`
}

func (q *Quote) Validate() error {
	if strings.TrimSpace(q.ClientID) == "" {
		return &ValidationError{Field: "client_id", Reason: "client requis"}
	}
	return nil
}

// PaidCent sums recorded payments.
func (q *Quote) PaidCent() int {
	total := 0
	for _, p := range q.Payments {
		total += p.AmountCent
	}
	return total
}

// RemainingCent is the balance still due, never negative.
func (q *Quote) RemainingCent() int {
	r := q.TotalCent - q.PaidCent()
	if r < 0 {
		return 0
	}
	return r
}

// Transition moves the quote to status to, or fails when the state machine
// forbids it. Moving to the current status is a no-op.
func (q *Quote) Transition(to QuoteStatus) error {
	if q.Status == to {
		return nil
	}
	for _, allowed := range quoteTransitions[q.Status] {
		if allowed == to {
			q.Status = to
			return nil
		}
	}
	return fmt.Errorf("transition %s -> %s interdite", q.Status, to)
}
