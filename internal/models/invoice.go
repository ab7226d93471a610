package models

import "time"

type InvoiceType string

const (
	InvoiceDeposit InvoiceType = "ACOMPTE"
	InvoiceBalance InvoiceType = "SOLDE"
	InvoiceFinal   InvoiceType = "FINALE"
)

type InvoiceStatus string

const (
	InvoiceDraft  InvoiceStatus = "DRAFT"
	InvoiceIssued InvoiceStatus = "ISSUED"
	InvoicePaid   InvoiceStatus = "PAID"
)

// InvoiceLine is a plain snapshot: label, quantity and prices are fixed at
// creation time, never re-derived from the catalog afterwards.
type InvoiceLine struct {
	Label     string  `json:"label"`
	Qty       float64 `json:"qty"`
	UnitPrice int     `json:"unit_price_ttc_cent"`
	TotalCent int     `json:"total_line_ttc_cent"`
}

// Invoice references its originating quote and client by id; deleting the
// quote does not cascade here. Once issued an invoice only ever changes by
// being marked paid.
type Invoice struct {
	ID        string        `json:"id"`
	Number    string        `json:"number,omitempty"`
	Type      InvoiceType   `json:"type"`
	Status    InvoiceStatus `json:"status"`
	QuoteID   string        `json:"quote_id"`
	ClientID  string        `json:"client_id"`
	Lines     []InvoiceLine `json:"lines"`
	TotalCent int           `json:"total_ttc_cent"`
	CreatedAt time.Time     `json:"created_at"`
	IssuedAt  *time.Time    `json:"issued_at,omitempty"`
	PaidAt    *time.Time    `json:"paid_at,omitempty"`
	Notes     string        `json:"notes,omitempty"`
}

// TypeCode is the single-letter series code used in numbers and filenames
// (FAC-A-0001, FAC-S-0002, …).
func (t InvoiceType) TypeCode() string {
	switch t {
	case InvoiceDeposit:
		return "A"
	case InvoiceBalance:
		return "S"
	case InvoiceFinal:
		return "F"
	default:
		return "X"
	}
}
