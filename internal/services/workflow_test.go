package services

import (
	"errors"
	"fmt"
	"testing"

	"github.com/diewo77/go-backoffice/internal/models"
)

// newValidatableQuote persists a quote worth 100,00 € ready for lifecycle
// tests.
func newValidatableQuote(t *testing.T, env *testEnv) models.Quote {
	t.Helper()
	q := models.Quote{
		ClientID: "c1",
		Lines: []models.QuoteLine{
			{Label: "Pack sono", Qty: 1, UnitPrice: 10000},
		},
	}
	if err := env.quotes.Add(&q); err != nil {
		t.Fatalf("add quote: %v", err)
	}
	return q
}

func TestRecordDeposit(t *testing.T) {
	env := newTestEnv(t)
	q := newValidatableQuote(t, env)

	inv, err := env.workflow.RecordDeposit(&q, 3000, "CB")
	if err != nil {
		t.Fatalf("deposit: %v", err)
	}

	if q.Status != models.QuoteValidated {
		t.Errorf("status = %q", q.Status)
	}
	if q.DecidedAt == nil {
		t.Error("decided_at not set")
	}
	if len(q.Payments) != 1 {
		t.Fatalf("payments = %d", len(q.Payments))
	}
	pay := q.Payments[0]
	if pay.Kind != models.PaymentDeposit || pay.AmountCent != 3000 || pay.Method != "CB" {
		t.Errorf("payment = %+v", pay)
	}
	if pay.InvoiceID != inv.ID {
		t.Errorf("payment not linked to invoice: %q != %q", pay.InvoiceID, inv.ID)
	}
	if q.RemainingCent() != 7000 {
		t.Errorf("remaining = %d", q.RemainingCent())
	}

	if inv.Type != models.InvoiceDeposit || inv.TotalCent != 3000 {
		t.Errorf("invoice = %+v", inv)
	}
	if inv.QuoteID != q.ID {
		t.Errorf("invoice quote ref = %q", inv.QuoteID)
	}
	if want := "FAC-A-0001"; inv.Number != want {
		t.Errorf("invoice number = %q want %q", inv.Number, want)
	}

	// everything survived persistence
	stored, ok := env.quotes.Get(q.ID)
	if !ok {
		t.Fatal("quote lost")
	}
	if stored.Status != models.QuoteValidated || len(stored.Payments) != 1 {
		t.Errorf("stored quote = %+v", stored)
	}

	entries := env.acc.ListByInvoice(inv.ID)
	if len(entries) != 1 {
		t.Fatalf("ledger entries = %d", len(entries))
	}
	e := entries[0]
	if e.Type != models.EntryDeposit || e.AmountCent != 3000 {
		t.Errorf("entry = %+v", e)
	}
	if want := fmt.Sprintf("Encaissement ACOMPTE %s", inv.Number); e.Label != want {
		t.Errorf("label = %q", e.Label)
	}
}

func TestRecordBalanceSettlesQuote(t *testing.T) {
	env := newTestEnv(t)
	q := newValidatableQuote(t, env)
	if _, err := env.workflow.RecordDeposit(&q, 3000, "CB"); err != nil {
		t.Fatalf("deposit: %v", err)
	}

	inv, final, err := env.workflow.RecordBalance(&q, 7000, "virement")
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if inv.Type != models.InvoiceBalance || inv.TotalCent != 7000 {
		t.Errorf("balance invoice = %+v", inv)
	}
	if q.Status != models.QuoteFinalized {
		t.Errorf("status = %q", q.Status)
	}
	if q.RemainingCent() != 0 {
		t.Errorf("remaining = %d", q.RemainingCent())
	}
	// the recap invoice carries no new amount due
	if final.Type != models.InvoiceFinal || final.TotalCent != 0 {
		t.Errorf("final invoice = %+v", final)
	}

	all := env.invoices.ListByQuote(q.ID)
	if len(all) != 3 {
		t.Fatalf("invoices for quote = %d", len(all))
	}
	if env.acc.TotalCent("") != 10000 {
		t.Errorf("ledger total = %d", env.acc.TotalCent(""))
	}
}

func TestRecordPartialBalanceKeepsQuoteOpen(t *testing.T) {
	env := newTestEnv(t)
	q := newValidatableQuote(t, env)
	if _, err := env.workflow.RecordDeposit(&q, 3000, "CB"); err != nil {
		t.Fatalf("deposit: %v", err)
	}

	_, final, err := env.workflow.RecordBalance(&q, 2000, "espèces")
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if final.ID != "" {
		t.Errorf("no recap invoice expected, got %+v", final)
	}
	if q.Status != models.QuoteValidated {
		t.Errorf("status = %q", q.Status)
	}
	if q.RemainingCent() != 5000 {
		t.Errorf("remaining = %d", q.RemainingCent())
	}
}

func TestRefuseQuote(t *testing.T) {
	env := newTestEnv(t)
	q := newValidatableQuote(t, env)

	if err := env.workflow.RefuseQuote(&q); err != nil {
		t.Fatalf("refuse: %v", err)
	}
	if q.Status != models.QuoteRefused || q.DecidedAt == nil {
		t.Errorf("quote = %+v", q)
	}

	if _, err := env.workflow.RecordDeposit(&q, 1000, "CB"); err == nil {
		t.Error("deposit on refused quote should fail")
	}
}

func TestRecordBalanceRequiresValidatedQuote(t *testing.T) {
	env := newTestEnv(t)
	q := newValidatableQuote(t, env)
	if _, _, err := env.workflow.RecordBalance(&q, 1000, "CB"); err == nil {
		t.Error("balance on pending quote should fail")
	}
}

func TestRecordDepositRejectsNonPositiveAmount(t *testing.T) {
	env := newTestEnv(t)
	q := newValidatableQuote(t, env)

	for _, amount := range []int{0, -100} {
		_, err := env.workflow.RecordDeposit(&q, amount, "CB")
		var verr *models.ValidationError
		if !errors.As(err, &verr) {
			t.Errorf("amount %d: expected ValidationError, got %v", amount, err)
		}
	}
	if len(q.Payments) != 0 {
		t.Errorf("payments recorded on rejected deposit: %d", len(q.Payments))
	}
}

func TestSecondDepositOnValidatedQuote(t *testing.T) {
	env := newTestEnv(t)
	q := newValidatableQuote(t, env)
	if _, err := env.workflow.RecordDeposit(&q, 2000, "CB"); err != nil {
		t.Fatalf("first deposit: %v", err)
	}
	if _, err := env.workflow.RecordDeposit(&q, 1000, "CB"); err != nil {
		t.Fatalf("second deposit: %v", err)
	}
	if q.PaidCent() != 3000 || len(q.Payments) != 2 {
		t.Errorf("paid = %d, payments = %d", q.PaidCent(), len(q.Payments))
	}
}
