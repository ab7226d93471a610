package services

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/diewo77/go-backoffice/internal/catalog"
	"github.com/diewo77/go-backoffice/internal/models"
	"github.com/diewo77/go-backoffice/internal/money"
	"github.com/diewo77/go-backoffice/internal/numbering"
	"github.com/diewo77/go-backoffice/internal/settings"
	"github.com/diewo77/go-backoffice/internal/store"
)

// QuoteService owns quote CRUD and the reconciliation routine that keeps a
// quote's derived fields consistent with its source fields.
type QuoteService struct {
	repo     *store.Store
	catalog  *catalog.Service
	seq      *numbering.Sequencer
	settings *settings.File
	log      *zap.SugaredLogger
}

func NewQuoteService(repo *store.Store, cat *catalog.Service, seq *numbering.Sequencer, st *settings.File, log *zap.SugaredLogger) *QuoteService {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &QuoteService{repo: repo, catalog: cat, seq: seq, settings: st, log: log}
}

// List returns every quote, reconciled. Records that no longer decode are
// skipped so one bad entry cannot break the listing.
func (s *QuoteService) List() []models.Quote {
	recs := s.repo.ListAll()
	out := make([]models.Quote, 0, len(recs))
	for _, rec := range recs {
		q, err := s.decode(rec)
		if err != nil {
			s.log.Warnw("devis illisible ignoré", "id", rec["id"], "err", err)
			continue
		}
		out = append(out, q)
	}
	return out
}

func (s *QuoteService) Get(id string) (models.Quote, bool) {
	rec, ok := s.repo.Get(id)
	if !ok {
		return models.Quote{}, false
	}
	q, err := s.decode(rec)
	if err != nil {
		return models.Quote{}, false
	}
	return q, true
}

// Add persists a new quote: validates, fills defaults, reconciles totals and
// assigns the document number on first persist.
func (s *QuoteService) Add(q *models.Quote) error {
	if err := q.Validate(); err != nil {
		return err
	}
	if q.ID == "" {
		q.ID = models.GenID()
	}
	if q.Status == "" {
		q.Status = models.QuotePending
	}
	if q.CreatedAt.IsZero() {
		q.CreatedAt = time.Now().UTC()
	}
	if q.Terms == "" {
		q.Terms = s.settings.Load().Terms()
	}
	s.Reconcile(q)
	if q.Number == "" {
		q.Number = s.nextNumber(q.CreatedAt.Year())
	}
	rec, err := models.ToRecord(q)
	if err != nil {
		return err
	}
	_, err = s.repo.Add(rec)
	return err
}

// Update re-reconciles and persists. The store merge keeps any fields this
// schema does not know about.
func (s *QuoteService) Update(q *models.Quote) error {
	if err := q.Validate(); err != nil {
		return err
	}
	s.Reconcile(q)
	rec, err := models.ToRecord(q)
	if err != nil {
		return err
	}
	_, err = s.repo.Update(rec)
	return err
}

func (s *QuoteService) Delete(id string) bool {
	return s.repo.Delete(id)
}

// Reconcile re-derives every line's label/unit/price from the catalog and
// the money normalizer, then the line totals and the grand total. Each step
// derives from source fields only, so applying it twice equals applying it
// once.
func (s *QuoteService) Reconcile(q *models.Quote) {
	total := 0
	for i := range q.Lines {
		ln := &q.Lines[i]
		if s.catalog != nil {
			item, typ, ok := s.catalog.Lookup(catalog.LineRef{ItemID: ln.ItemID, Ref: ln.ItemRef, Label: ln.Label})
			if ok {
				if ln.Label == "" {
					ln.Label = item.Label
				}
				if ln.Description == "" {
					ln.Description = item.Description
				}
				if ln.Unit == "" {
					ln.Unit = item.Unit
				}
				if ln.ItemID == "" {
					ln.ItemID = item.ID
				}
				if ln.ItemType == "" {
					ln.ItemType = typ
				}
				if ln.UnitPrice == 0 {
					ln.UnitPrice = item.PriceCent
				}
			} else if ln.ItemType == "" {
				ln.ItemType = models.ItemFree
			}
		}
		if ln.UnitPrice < 0 {
			ln.UnitPrice = 0
		}
		if ln.Qty < 0 || math.IsNaN(ln.Qty) || math.IsInf(ln.Qty, 0) {
			ln.Qty = 0
		}
		if ln.RemisePct < 0 {
			ln.RemisePct = 0
		}
		if ln.RemisePct > 100 {
			ln.RemisePct = 100
		}
		ln.TotalCent = lineTotalCent(ln.UnitPrice, ln.Qty, ln.RemisePct)
		total += ln.TotalCent
	}
	q.TotalCent = total
}

// lineTotalCent = round(unit * qty * (1 - remise/100)), discount applied
// before the single rounding.
func lineTotalCent(unitCent int, qty, remisePct float64) int {
	d := decimal.NewFromInt(int64(unitCent)).
		Mul(decimal.NewFromFloat(qty)).
		Mul(decimal.NewFromFloat(1 - remisePct/100))
	return int(d.Round(0).IntPart())
}

func (s *QuoteService) nextNumber(year int) string {
	st := s.settings.Load()
	prefix := numbering.QuotePrefix(st.Numbering.QuotePrefix, year)
	var existing []string
	for _, rec := range s.repo.ListAll() {
		if n, _ := rec["number"].(string); n != "" {
			existing = append(existing, n)
		}
	}
	return s.seq.Next(prefix, existing)
}

// decode builds a typed quote from a raw record. Lines are decoded
// permissively, field by field, because hand-edited files drift: quantities
// end up as strings, prices under legacy names. The rest of the document
// decodes strictly.
func (s *QuoteService) decode(rec store.Record) (models.Quote, error) {
	head := make(store.Record, len(rec))
	for k, v := range rec {
		if k != "lines" {
			head[k] = v
		}
	}
	var q models.Quote
	if err := models.FromRecord(head, &q); err != nil {
		return models.Quote{}, err
	}
	if rawLines, ok := rec["lines"].([]any); ok {
		q.Lines = make([]models.QuoteLine, 0, len(rawLines))
		for _, rl := range rawLines {
			if m, ok := rl.(map[string]any); ok {
				q.Lines = append(q.Lines, lineFromRecord(m))
			}
		}
	}
	s.Reconcile(&q)
	return q, nil
}

func lineFromRecord(m map[string]any) models.QuoteLine {
	ln := models.QuoteLine{
		ItemID:      stringField(m, "item_id"),
		ItemRef:     stringField(m, "item_ref", "ref"),
		ItemType:    stringField(m, "item_type"),
		Label:       stringField(m, "label"),
		Description: stringField(m, "description"),
		Unit:        stringField(m, "unit"),
		UnitPrice:   money.NormalizeCents(m),
	}
	ln.Qty = 1
	if v, ok := m["qty"]; ok {
		if f, ok := parseFloat(v); ok {
			ln.Qty = f
		}
	}
	if v, ok := m["remise_pct"]; ok {
		if f, ok := parseFloat(v); ok {
			ln.RemisePct = f
		}
	}
	return ln
}

func stringField(m map[string]any, names ...string) string {
	for _, n := range names {
		if v, ok := m[n].(string); ok && v != "" {
			return v
		}
	}
	return ""
}

func parseFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return 0, false
		}
		return x, true
	case int:
		return float64(x), true
	case string:
		s := strings.ReplaceAll(strings.TrimSpace(x), ",", ".")
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}
