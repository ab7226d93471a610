package services

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/diewo77/go-backoffice/internal/models"
)

// WorkflowService drives the quote lifecycle: refusal, deposit, balance.
// Each step is an independent persist — there is no cross-file transaction,
// so a crash mid-step leaves inspectable, retryable state rather than a
// rolled-back one.
type WorkflowService struct {
	quotes   *QuoteService
	invoices *InvoiceService
	acc      *AccountingService
	log      *zap.SugaredLogger
}

func NewWorkflowService(quotes *QuoteService, invoices *InvoiceService, acc *AccountingService, log *zap.SugaredLogger) *WorkflowService {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &WorkflowService{quotes: quotes, invoices: invoices, acc: acc, log: log}
}

// RefuseQuote marks q refused. Terminal: no payment can follow.
func (w *WorkflowService) RefuseQuote(q *models.Quote) error {
	if err := q.Transition(models.QuoteRefused); err != nil {
		return err
	}
	now := time.Now().UTC()
	if q.DecidedAt == nil {
		q.DecidedAt = &now
	}
	return w.quotes.Update(q)
}

// RecordDeposit records an acompte payment on q: the quote moves to
// VALIDATED, an ACOMPTE invoice is issued, the ledger gets an entry, and the
// payment is linked back to its invoice.
func (w *WorkflowService) RecordDeposit(q *models.Quote, amountCent int, method string) (models.Invoice, error) {
	if amountCent <= 0 {
		return models.Invoice{}, &models.ValidationError{Field: "amount_cent", Reason: "montant positif requis"}
	}
	if q.Status != models.QuotePending && q.Status != models.QuoteValidated {
		return models.Invoice{}, fmt.Errorf("acompte impossible sur un devis %s", q.Status)
	}

	pay := models.PaymentRecord{
		ID:         models.GenID(),
		Kind:       models.PaymentDeposit,
		AmountCent: amountCent,
		Method:     method,
		Date:       time.Now().UTC(),
	}
	q.Payments = append(q.Payments, pay)
	if q.Status == models.QuotePending {
		if err := q.Transition(models.QuoteValidated); err != nil {
			return models.Invoice{}, err
		}
		now := time.Now().UTC()
		q.DecidedAt = &now
	}
	if err := w.quotes.Update(q); err != nil {
		return models.Invoice{}, err
	}

	inv, err := w.invoices.GenDeposit(q, amountCent)
	if err != nil {
		return models.Invoice{}, err
	}
	if err := w.acc.Add(&models.AccountingEntry{
		Type:          models.EntryDeposit,
		AmountCent:    amountCent,
		PaymentMethod: method,
		InvoiceID:     inv.ID,
		Label:         fmt.Sprintf("Encaissement ACOMPTE %s", inv.Number),
	}); err != nil {
		w.log.Warnw("écriture comptable non enregistrée", "invoice", inv.Number, "err", err)
	}

	// lier la facture au paiement
	q.Payments[len(q.Payments)-1].InvoiceID = inv.ID
	if err := w.quotes.Update(q); err != nil {
		return models.Invoice{}, err
	}
	return inv, nil
}

// RecordBalance records a solde payment. When the quote reaches zero
// remaining it moves to FINALIZED and the recap FINALE invoice is issued
// (returned as second value, zero-valued otherwise).
func (w *WorkflowService) RecordBalance(q *models.Quote, amountCent int, method string) (models.Invoice, models.Invoice, error) {
	var none models.Invoice
	if amountCent <= 0 {
		return none, none, &models.ValidationError{Field: "amount_cent", Reason: "montant positif requis"}
	}
	if q.Status != models.QuoteValidated {
		return none, none, fmt.Errorf("solde impossible sur un devis %s", q.Status)
	}

	pay := models.PaymentRecord{
		ID:         models.GenID(),
		Kind:       models.PaymentBalance,
		AmountCent: amountCent,
		Method:     method,
		Date:       time.Now().UTC(),
	}
	q.Payments = append(q.Payments, pay)
	if err := w.quotes.Update(q); err != nil {
		return none, none, err
	}

	inv, err := w.invoices.GenBalance(q, amountCent)
	if err != nil {
		return none, none, err
	}
	if err := w.acc.Add(&models.AccountingEntry{
		Type:          models.EntryBalance,
		AmountCent:    amountCent,
		PaymentMethod: method,
		InvoiceID:     inv.ID,
		Label:         fmt.Sprintf("Encaissement SOLDE %s", inv.Number),
	}); err != nil {
		w.log.Warnw("écriture comptable non enregistrée", "invoice", inv.Number, "err", err)
	}

	q.Payments[len(q.Payments)-1].InvoiceID = inv.ID
	if err := w.quotes.Update(q); err != nil {
		return none, none, err
	}

	if q.RemainingCent() == 0 {
		if err := q.Transition(models.QuoteFinalized); err != nil {
			return inv, none, err
		}
		if err := w.quotes.Update(q); err != nil {
			return inv, none, err
		}
		final, err := w.invoices.GenFinal(q)
		if err != nil {
			return inv, none, err
		}
		return inv, final, nil
	}
	return inv, none, nil
}
