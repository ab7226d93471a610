package services

import (
	"time"

	"go.uber.org/zap"

	"github.com/diewo77/go-backoffice/internal/models"
	"github.com/diewo77/go-backoffice/internal/store"
)

// AccountingService is the append-only ledger. Entries are added by the
// workflow (and by hand for VENTE lines); nothing updates or deletes them.
type AccountingService struct {
	repo *store.Store
	log  *zap.SugaredLogger
}

func NewAccountingService(repo *store.Store, log *zap.SugaredLogger) *AccountingService {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &AccountingService{repo: repo, log: log}
}

func (s *AccountingService) Add(e *models.AccountingEntry) error {
	if e.AmountCent <= 0 {
		return &models.ValidationError{Field: "amount_cent", Reason: "montant positif requis"}
	}
	if e.ID == "" {
		e.ID = models.GenID()
	}
	if e.Date.IsZero() {
		e.Date = time.Now().UTC()
	}
	if e.Type == "" {
		e.Type = models.EntrySale
	}
	rec, err := models.ToRecord(e)
	if err != nil {
		return err
	}
	_, err = s.repo.Add(rec)
	return err
}

func (s *AccountingService) List() []models.AccountingEntry {
	recs := s.repo.ListAll()
	out := make([]models.AccountingEntry, 0, len(recs))
	for _, rec := range recs {
		var e models.AccountingEntry
		if err := models.FromRecord(rec, &e); err != nil {
			continue
		}
		out = append(out, e)
	}
	return out
}

func (s *AccountingService) ListByInvoice(invoiceID string) []models.AccountingEntry {
	var out []models.AccountingEntry
	for _, e := range s.List() {
		if e.InvoiceID == invoiceID {
			out = append(out, e)
		}
	}
	return out
}

// TotalCent sums the ledger, optionally restricted to one entry type
// (empty type means everything).
func (s *AccountingService) TotalCent(t models.EntryType) int {
	total := 0
	for _, e := range s.List() {
		if t == "" || e.Type == t {
			total += e.AmountCent
		}
	}
	return total
}
