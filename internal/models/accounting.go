package models

import "time"

type EntryType string

const (
	EntryDeposit EntryType = "ACOMPTE"
	EntryBalance EntryType = "SOLDE"
	EntrySale    EntryType = "VENTE"
)

// AccountingEntry is one line of the append-only ledger. Entries are never
// updated or deleted by the normal flow.
type AccountingEntry struct {
	ID            string    `json:"id"`
	Date          time.Time `json:"date"`
	Type          EntryType `json:"type"`
	AmountCent    int       `json:"amount_cent"`
	PaymentMethod string    `json:"payment_method,omitempty"` // CB, ESP, VIREMENT, CHQ…
	InvoiceID     string    `json:"invoice_id,omitempty"`
	Label         string    `json:"label,omitempty"`
}
