package services

import (
	"errors"
	"fmt"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/diewo77/go-backoffice/internal/catalog"
	"github.com/diewo77/go-backoffice/internal/models"
	"github.com/diewo77/go-backoffice/internal/numbering"
	"github.com/diewo77/go-backoffice/internal/settings"
	"github.com/diewo77/go-backoffice/internal/store"
)

type testEnv struct {
	quotes   *QuoteService
	invoices *InvoiceService
	acc      *AccountingService
	workflow *WorkflowService
	catalog  *catalog.Service
	quoteSt  *store.Store
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()
	opts := store.Options{}

	products := store.New(filepath.Join(dir, "products.json"), "produit", opts)
	servicesSt := store.New(filepath.Join(dir, "services.json"), "prestation", opts)
	quotesSt := store.New(filepath.Join(dir, "quotes.json"), "devis", opts)
	invoicesSt := store.New(filepath.Join(dir, "invoices.json"), "facture", opts)
	accSt := store.New(filepath.Join(dir, "accounting_entries.json"), "écriture", opts)
	countersSt := store.New(filepath.Join(dir, "counters.json"), "compteur", opts)

	cat := catalog.New(products, servicesSt)
	seq := numbering.New(countersSt)
	st := settings.Open(filepath.Join(dir, "settings.json"))

	quotes := NewQuoteService(quotesSt, cat, seq, st, nil)
	invoices := NewInvoiceService(invoicesSt, seq, st, nil)
	acc := NewAccountingService(accSt, nil)
	return &testEnv{
		quotes:   quotes,
		invoices: invoices,
		acc:      acc,
		workflow: NewWorkflowService(quotes, invoices, acc, nil),
		catalog:  cat,
		quoteSt:  quotesSt,
	}
}

func seedProduct(t *testing.T, env *testEnv, ref, label string, priceCent int) models.CatalogItem {
	t.Helper()
	it, err := env.catalog.Add(models.ItemProduct, models.CatalogItem{
		Ref: ref, Label: label, Unit: "pièce", PriceCent: priceCent, Active: true,
	})
	if err != nil {
		t.Fatalf("seed product %s: %v", ref, err)
	}
	return it
}

func TestReconcileTotals(t *testing.T) {
	env := newTestEnv(t)
	q := models.Quote{
		ClientID: "c1",
		Lines: []models.QuoteLine{
			{Label: "Pack sono", Qty: 2, UnitPrice: 25000},
			{Label: "Technicien", Qty: 3.5, UnitPrice: 4500},
			{Label: "Remisé", Qty: 1, UnitPrice: 10000, RemisePct: 10},
		},
	}
	env.quotes.Reconcile(&q)

	if q.Lines[0].TotalCent != 50000 {
		t.Errorf("line 0 = %d", q.Lines[0].TotalCent)
	}
	if q.Lines[1].TotalCent != 15750 {
		t.Errorf("line 1 = %d", q.Lines[1].TotalCent)
	}
	if q.Lines[2].TotalCent != 9000 {
		t.Errorf("line 2 = %d", q.Lines[2].TotalCent)
	}
	sum := 0
	for _, ln := range q.Lines {
		sum += ln.TotalCent
	}
	if q.TotalCent != sum {
		t.Errorf("grand total %d != sum of lines %d", q.TotalCent, sum)
	}
}

func TestReconcileIdempotent(t *testing.T) {
	env := newTestEnv(t)
	seedProduct(t, env, "SONO1", "Pack sono", 25000)
	q := models.Quote{
		ClientID: "c1",
		Lines: []models.QuoteLine{
			{ItemRef: "SONO1", Qty: 2},
			{Label: "Ligne libre", Qty: 1, UnitPrice: 1234, RemisePct: 33},
		},
	}
	env.quotes.Reconcile(&q)
	once := q
	onceLines := append([]models.QuoteLine(nil), q.Lines...)

	env.quotes.Reconcile(&q)
	if !reflect.DeepEqual(q.Lines, onceLines) {
		t.Errorf("lines changed on second reconcile:\n%v\n%v", onceLines, q.Lines)
	}
	if q.TotalCent != once.TotalCent {
		t.Errorf("total changed: %d -> %d", once.TotalCent, q.TotalCent)
	}
}

func TestReconcileCatalogFill(t *testing.T) {
	env := newTestEnv(t)
	p := seedProduct(t, env, "LUM1", "Jeu de lumières", 18000)

	q := models.Quote{ClientID: "c1", Lines: []models.QuoteLine{{ItemRef: "LUM1", Qty: 1}}}
	env.quotes.Reconcile(&q)

	ln := q.Lines[0]
	if ln.Label != "Jeu de lumières" || ln.Unit != "pièce" {
		t.Errorf("catalog fill missed: %+v", ln)
	}
	if ln.UnitPrice != 18000 || ln.TotalCent != 18000 {
		t.Errorf("price fill missed: %+v", ln)
	}
	if ln.ItemID != p.ID || ln.ItemType != models.ItemProduct {
		t.Errorf("item linkage missed: %+v", ln)
	}
}

func TestReconcileKeepsCallerValuesOnNoMatch(t *testing.T) {
	env := newTestEnv(t)
	q := models.Quote{ClientID: "c1", Lines: []models.QuoteLine{
		{Label: "Prestation sur mesure", Qty: 1, UnitPrice: 5000},
	}}
	env.quotes.Reconcile(&q)
	if q.Lines[0].Label != "Prestation sur mesure" || q.Lines[0].ItemType != models.ItemFree {
		t.Errorf("free line mishandled: %+v", q.Lines[0])
	}
}

func TestReconcileClampsInput(t *testing.T) {
	env := newTestEnv(t)
	q := models.Quote{ClientID: "c1", Lines: []models.QuoteLine{
		{Label: "a", Qty: -3, UnitPrice: 1000},
		{Label: "b", Qty: 1, UnitPrice: -500},
		{Label: "c", Qty: 1, UnitPrice: 1000, RemisePct: 150},
	}}
	env.quotes.Reconcile(&q)
	if q.Lines[0].TotalCent != 0 {
		t.Errorf("negative qty: %d", q.Lines[0].TotalCent)
	}
	if q.Lines[1].TotalCent != 0 {
		t.Errorf("negative price: %d", q.Lines[1].TotalCent)
	}
	if q.Lines[2].TotalCent != 0 || q.Lines[2].RemisePct != 100 {
		t.Errorf("oversized remise: %+v", q.Lines[2])
	}
	if q.TotalCent != 0 {
		t.Errorf("total = %d", q.TotalCent)
	}
}

func TestAddAssignsSequentialNumbers(t *testing.T) {
	env := newTestEnv(t)
	year := time.Now().UTC().Year()

	q1 := models.Quote{ClientID: "c1"}
	q2 := models.Quote{ClientID: "c1"}
	if err := env.quotes.Add(&q1); err != nil {
		t.Fatalf("add q1: %v", err)
	}
	if err := env.quotes.Add(&q2); err != nil {
		t.Fatalf("add q2: %v", err)
	}
	if want := fmt.Sprintf("DEV-%d-0001", year); q1.Number != want {
		t.Errorf("q1.Number = %q want %q", q1.Number, want)
	}
	if want := fmt.Sprintf("DEV-%d-0002", year); q2.Number != want {
		t.Errorf("q2.Number = %q want %q", q2.Number, want)
	}

	// number is stable on update
	if err := env.quotes.Update(&q1); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, _ := env.quotes.Get(q1.ID)
	if got.Number != q1.Number {
		t.Errorf("number changed on update: %q", got.Number)
	}
}

func TestAddValidates(t *testing.T) {
	env := newTestEnv(t)
	err := env.quotes.Add(&models.Quote{})
	var verr *models.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestAddAppliesDefaultTerms(t *testing.T) {
	env := newTestEnv(t)
	q := models.Quote{ClientID: "c1"}
	if err := env.quotes.Add(&q); err != nil {
		t.Fatalf("add: %v", err)
	}
	if q.Terms != settings.DefaultTerms {
		t.Errorf("terms = %q", q.Terms)
	}
	if q.Status != models.QuotePending {
		t.Errorf("status = %q", q.Status)
	}
}

func TestGetNormalizesLegacyRecord(t *testing.T) {
	env := newTestEnv(t)
	// a hand-edited quote: euro price string, comma quantity, stale totals
	rec := store.Record{
		"id":        "legacy1",
		"client_id": "c1",
		"status":    "PENDING",
		"number":    "DEV-2020-0001",
		"lines": []any{
			map[string]any{"label": "Sono", "qty": "2", "price_eur": "18,50"},
			map[string]any{"label": "Sans quantité", "unit_price_ttc_cent": float64(1000)},
		},
		"total_ttc_cent": float64(999999), // stale, must be recomputed
	}
	if _, err := env.quoteSt.Add(rec); err != nil {
		t.Fatalf("seed: %v", err)
	}

	q, ok := env.quotes.Get("legacy1")
	if !ok {
		t.Fatal("quote not found")
	}
	if q.Lines[0].UnitPrice != 1850 || q.Lines[0].Qty != 2 {
		t.Errorf("legacy line: %+v", q.Lines[0])
	}
	if q.Lines[1].Qty != 1 {
		t.Errorf("absent qty should default to 1: %+v", q.Lines[1])
	}
	if q.TotalCent != 3700+1000 {
		t.Errorf("total = %d", q.TotalCent)
	}
}

func TestUpdatePreservesUnknownTopLevelFields(t *testing.T) {
	env := newTestEnv(t)
	q := models.Quote{ClientID: "c1"}
	if err := env.quotes.Add(&q); err != nil {
		t.Fatalf("add: %v", err)
	}
	// a field this schema does not know about
	if _, err := env.quoteSt.Update(store.Record{"id": q.ID, "couleur_theme": "bleu"}); err != nil {
		t.Fatalf("raw update: %v", err)
	}
	q.Notes = "mise à jour"
	if err := env.quotes.Update(&q); err != nil {
		t.Fatalf("update: %v", err)
	}
	rec, _ := env.quoteSt.Get(q.ID)
	if rec["couleur_theme"] != "bleu" {
		t.Errorf("unknown field lost: %v", rec["couleur_theme"])
	}
	if rec["notes"] != "mise à jour" {
		t.Errorf("notes = %v", rec["notes"])
	}
}

func TestListSkipsUndecodableRecords(t *testing.T) {
	env := newTestEnv(t)
	if err := env.quotes.Add(&models.Quote{ClientID: "c1"}); err != nil {
		t.Fatalf("add: %v", err)
	}
	// created_at with an impossible type makes the strict head decode fail
	if _, err := env.quoteSt.Add(store.Record{"id": "broken", "client_id": "c1", "created_at": []any{1, 2}}); err != nil {
		t.Fatalf("seed broken: %v", err)
	}
	list := env.quotes.List()
	if len(list) != 1 {
		t.Fatalf("expected 1 readable quote, got %d", len(list))
	}
}
