package services

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/diewo77/go-backoffice/internal/models"
	"github.com/diewo77/go-backoffice/internal/numbering"
	"github.com/diewo77/go-backoffice/internal/settings"
	"github.com/diewo77/go-backoffice/internal/store"
)

const vatExemptNote = "TVA non applicable, art. 293 B du CGI."

// InvoiceService persists invoices and generates the three kinds the
// workflow needs: acompte, solde and the zero-total recap finale.
type InvoiceService struct {
	repo     *store.Store
	seq      *numbering.Sequencer
	settings *settings.File
	log      *zap.SugaredLogger
}

func NewInvoiceService(repo *store.Store, seq *numbering.Sequencer, st *settings.File, log *zap.SugaredLogger) *InvoiceService {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &InvoiceService{repo: repo, seq: seq, settings: st, log: log}
}

func (s *InvoiceService) List() []models.Invoice {
	return decodeInvoices(s.repo.ListAll())
}

func (s *InvoiceService) ListByQuote(quoteID string) []models.Invoice {
	return decodeInvoices(s.repo.Find(func(r store.Record) bool {
		v, _ := r["quote_id"].(string)
		return v == quoteID
	}))
}

func (s *InvoiceService) Get(id string) (models.Invoice, bool) {
	rec, ok := s.repo.Get(id)
	if !ok {
		return models.Invoice{}, false
	}
	var inv models.Invoice
	if err := models.FromRecord(rec, &inv); err != nil {
		return models.Invoice{}, false
	}
	return inv, true
}

// Add persists inv. The total is the sum of its own line totals at creation
// time; it is never recomputed on read.
func (s *InvoiceService) Add(inv *models.Invoice) error {
	if inv.ID == "" {
		inv.ID = models.GenID()
	}
	if inv.Status == "" {
		inv.Status = models.InvoiceDraft
	}
	if inv.CreatedAt.IsZero() {
		inv.CreatedAt = time.Now().UTC()
	}
	if inv.Status == models.InvoiceIssued && inv.IssuedAt == nil {
		t := inv.CreatedAt
		inv.IssuedAt = &t
	}
	if inv.Number == "" {
		inv.Number = s.nextNumber(inv.Type)
	}
	total := 0
	for _, ln := range inv.Lines {
		total += ln.TotalCent
	}
	inv.TotalCent = total
	rec, err := models.ToRecord(inv)
	if err != nil {
		return err
	}
	_, err = s.repo.Add(rec)
	return err
}

// MarkPaid is the one mutation allowed on an issued invoice.
func (s *InvoiceService) MarkPaid(id string) error {
	inv, ok := s.Get(id)
	if !ok {
		return &store.NotFoundError{Entity: "facture", Key: "id", Value: id}
	}
	if inv.Status != models.InvoiceIssued {
		return fmt.Errorf("facture %s non émise (statut %s)", inv.Number, inv.Status)
	}
	now := time.Now().UTC()
	inv.Status = models.InvoicePaid
	inv.PaidAt = &now
	rec, err := models.ToRecord(&inv)
	if err != nil {
		return err
	}
	_, err = s.repo.Update(rec)
	return err
}

// GenDeposit issues the acompte invoice for q. explicitCent <= 0 means "use
// the configured deposit percentage of the quote total" (acompte_pct,
// default 30).
func (s *InvoiceService) GenDeposit(q *models.Quote, explicitCent int) (models.Invoice, error) {
	amount := explicitCent
	if amount <= 0 {
		pct := s.settings.Load().AcomptePct
		amount = int(decimal.NewFromInt(int64(q.TotalCent)).
			Mul(decimal.NewFromFloat(pct / 100)).
			Round(0).IntPart())
	}
	inv := models.Invoice{
		Type:     models.InvoiceDeposit,
		Status:   models.InvoiceIssued,
		QuoteID:  q.ID,
		ClientID: q.ClientID,
		Lines: []models.InvoiceLine{{
			Label:     fmt.Sprintf("Acompte sur devis %s", q.Number),
			Qty:       1,
			UnitPrice: amount,
			TotalCent: amount,
		}},
		Notes: vatExemptNote,
	}
	if err := s.Add(&inv); err != nil {
		return models.Invoice{}, err
	}
	return inv, nil
}

// GenBalance issues the solde invoice. explicitCent <= 0 means "whatever
// remains due on the quote".
func (s *InvoiceService) GenBalance(q *models.Quote, explicitCent int) (models.Invoice, error) {
	amount := explicitCent
	if amount <= 0 {
		amount = q.RemainingCent()
	}
	inv := models.Invoice{
		Type:     models.InvoiceBalance,
		Status:   models.InvoiceIssued,
		QuoteID:  q.ID,
		ClientID: q.ClientID,
		Lines: []models.InvoiceLine{{
			Label:     fmt.Sprintf("Solde sur devis %s", q.Number),
			Qty:       1,
			UnitPrice: amount,
			TotalCent: amount,
		}},
		Notes: vatExemptNote,
	}
	if err := s.Add(&inv); err != nil {
		return models.Invoice{}, err
	}
	return inv, nil
}

// GenFinal issues the zero-total recap invoice once the quote is settled.
func (s *InvoiceService) GenFinal(q *models.Quote) (models.Invoice, error) {
	inv := models.Invoice{
		Type:     models.InvoiceFinal,
		Status:   models.InvoiceIssued,
		QuoteID:  q.ID,
		ClientID: q.ClientID,
		Lines: []models.InvoiceLine{{
			Label: fmt.Sprintf("Facture finale – Récap devis %s", q.Number),
			Qty:   1,
		}},
		Notes: vatExemptNote,
	}
	if err := s.Add(&inv); err != nil {
		return models.Invoice{}, err
	}
	return inv, nil
}

func (s *InvoiceService) nextNumber(t models.InvoiceType) string {
	st := s.settings.Load()
	prefix := numbering.InvoicePrefix(st.Numbering.InvoicePrefix, t.TypeCode())
	var existing []string
	for _, rec := range s.repo.ListAll() {
		if n, _ := rec["number"].(string); n != "" {
			existing = append(existing, n)
		}
	}
	return s.seq.Next(prefix, existing)
}

func decodeInvoices(recs []store.Record) []models.Invoice {
	out := make([]models.Invoice, 0, len(recs))
	for _, rec := range recs {
		var inv models.Invoice
		if err := models.FromRecord(rec, &inv); err != nil {
			continue
		}
		out = append(out, inv)
	}
	return out
}
