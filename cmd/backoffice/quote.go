package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/diewo77/go-backoffice/internal/models"
	"github.com/diewo77/go-backoffice/internal/money"
)

func init() {
	rootCmd.AddCommand(quoteCmd)
	quoteCmd.AddCommand(quoteListCmd)
	quoteCmd.AddCommand(quoteShowCmd)
	quoteCmd.AddCommand(quoteCreateCmd)
	quoteCmd.AddCommand(quoteRefuseCmd)
	quoteCmd.AddCommand(quoteDepositCmd)
	quoteCmd.AddCommand(quoteBalanceCmd)
	quoteCmd.AddCommand(quotePDFCmd)
	quoteCmd.AddCommand(quoteEventCmd)
	quoteCmd.AddCommand(quoteReconcileCmd)

	quoteCreateCmd.Flags().String("client", "", "ID du client (obligatoire)")
	quoteCreateCmd.Flags().StringArray("line", nil, "Ligne REF|QTE|REMISE%, ex: SONO1|2|10 (répétable)")
	quoteCreateCmd.Flags().String("event", "", "Date de l'évènement, format 2006-01-02")
	quoteCreateCmd.Flags().String("notes", "", "Notes libres")
	_ = quoteCreateCmd.MarkFlagRequired("client")

	quoteDepositCmd.Flags().String("method", "", "Moyen de paiement (CB, ESP, VIREMENT, CHQ)")
	quoteBalanceCmd.Flags().String("method", "", "Moyen de paiement (CB, ESP, VIREMENT, CHQ)")
}

var quoteCmd = &cobra.Command{
	Use:   "quote",
	Short: "Gérer les devis",
}

var quoteListCmd = &cobra.Command{
	Use:   "list",
	Short: "Lister les devis",
	RunE: func(cmd *cobra.Command, args []string) error {
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNUMÉRO\tSTATUT\tTOTAL TTC\tRESTE DÛ")
		for _, q := range app.quotes.List() {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				q.ID, q.Number, q.Status,
				money.FormatEuros(q.TotalCent), money.FormatEuros(q.RemainingCent()))
		}
		return w.Flush()
	},
}

var quoteShowCmd = &cobra.Command{
	Use:   "show QUOTE_ID",
	Short: "Afficher un devis",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		q, ok := app.quotes.Get(args[0])
		if !ok {
			return fmt.Errorf("devis %s introuvable", args[0])
		}
		fmt.Printf("Devis %s (%s) — client %s\n", q.Number, q.Status, q.ClientID)
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "LIBELLÉ\tQTE\tPU TTC\tREMISE\tTOTAL")
		for _, ln := range q.Lines {
			fmt.Fprintf(w, "%s\t%g\t%s\t%g %%\t%s\n",
				ln.Label, ln.Qty, money.FormatEuros(ln.UnitPrice), ln.RemisePct, money.FormatEuros(ln.TotalCent))
		}
		w.Flush()
		fmt.Printf("Total TTC : %s — payé %s, reste %s\n",
			money.FormatEuros(q.TotalCent), money.FormatEuros(q.PaidCent()), money.FormatEuros(q.RemainingCent()))
		for _, p := range q.Payments {
			fmt.Printf("  paiement %s %s (%s) facture=%s\n", p.Kind, money.FormatEuros(p.AmountCent), p.Method, p.InvoiceID)
		}
		return nil
	},
}

var quoteCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Créer un devis",
	RunE: func(cmd *cobra.Command, args []string) error {
		clientID, _ := cmd.Flags().GetString("client")
		rawLines, _ := cmd.Flags().GetStringArray("line")
		eventStr, _ := cmd.Flags().GetString("event")
		notes, _ := cmd.Flags().GetString("notes")

		q := models.Quote{ClientID: clientID, Notes: notes}
		if eventStr != "" {
			d, err := time.Parse("2006-01-02", eventStr)
			if err != nil {
				return fmt.Errorf("date d'évènement invalide: %q", eventStr)
			}
			q.EventDate = &d
		}
		for _, raw := range rawLines {
			ln, err := parseLineSpec(raw)
			if err != nil {
				return err
			}
			q.Lines = append(q.Lines, ln)
		}
		if err := app.quotes.Add(&q); err != nil {
			return err
		}
		fmt.Printf("Devis %s créé (%s), total %s\n", q.Number, q.ID, money.FormatEuros(q.TotalCent))
		return nil
	},
}

// parseLineSpec reads "REF|QTE|REMISE" — remise optional, qty optional
// (default 1). The ref is resolved against the catalog at reconciliation.
func parseLineSpec(raw string) (models.QuoteLine, error) {
	parts := strings.Split(raw, "|")
	ln := models.QuoteLine{ItemRef: strings.TrimSpace(parts[0]), Qty: 1}
	if ln.ItemRef == "" {
		return ln, fmt.Errorf("ligne invalide: %q", raw)
	}
	if len(parts) > 1 && strings.TrimSpace(parts[1]) != "" {
		var qty float64
		if _, err := fmt.Sscanf(strings.ReplaceAll(parts[1], ",", "."), "%g", &qty); err != nil {
			return ln, fmt.Errorf("quantité invalide dans %q", raw)
		}
		ln.Qty = qty
	}
	if len(parts) > 2 && strings.TrimSpace(parts[2]) != "" {
		var rem float64
		if _, err := fmt.Sscanf(strings.ReplaceAll(parts[2], ",", "."), "%g", &rem); err != nil {
			return ln, fmt.Errorf("remise invalide dans %q", raw)
		}
		ln.RemisePct = rem
	}
	return ln, nil
}

var quoteRefuseCmd = &cobra.Command{
	Use:   "refuse QUOTE_ID",
	Short: "Refuser un devis",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		q, ok := app.quotes.Get(args[0])
		if !ok {
			return fmt.Errorf("devis %s introuvable", args[0])
		}
		if err := app.workflow.RefuseQuote(&q); err != nil {
			return err
		}
		fmt.Printf("Devis %s refusé\n", q.Number)
		return nil
	},
}

var quoteDepositCmd = &cobra.Command{
	Use:   "deposit QUOTE_ID MONTANT_EUROS",
	Short: "Enregistrer un acompte (valide le devis, émet la facture d'acompte)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		method, _ := cmd.Flags().GetString("method")
		q, ok := app.quotes.Get(args[0])
		if !ok {
			return fmt.Errorf("devis %s introuvable", args[0])
		}
		cents, ok := money.ParseEuros(args[1])
		if !ok {
			return fmt.Errorf("montant invalide: %q", args[1])
		}
		inv, err := app.workflow.RecordDeposit(&q, cents, method)
		if err != nil {
			return err
		}
		fmt.Printf("Acompte %s enregistré, facture %s émise. Reste dû %s\n",
			money.FormatEuros(cents), inv.Number, money.FormatEuros(q.RemainingCent()))
		return nil
	},
}

var quoteBalanceCmd = &cobra.Command{
	Use:   "balance QUOTE_ID MONTANT_EUROS",
	Short: "Enregistrer le solde (émet la facture de solde, et la finale si soldé)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		method, _ := cmd.Flags().GetString("method")
		q, ok := app.quotes.Get(args[0])
		if !ok {
			return fmt.Errorf("devis %s introuvable", args[0])
		}
		cents, ok := money.ParseEuros(args[1])
		if !ok {
			return fmt.Errorf("montant invalide: %q", args[1])
		}
		inv, final, err := app.workflow.RecordBalance(&q, cents, method)
		if err != nil {
			return err
		}
		fmt.Printf("Solde %s enregistré, facture %s émise. Reste dû %s\n",
			money.FormatEuros(cents), inv.Number, money.FormatEuros(q.RemainingCent()))
		if final.ID != "" {
			fmt.Printf("Devis soldé : facture finale %s émise\n", final.Number)
		}
		return nil
	},
}

var quotePDFCmd = &cobra.Command{
	Use:   "pdf QUOTE_ID",
	Short: "Exporter le devis en PDF",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		q, ok := app.quotes.Get(args[0])
		if !ok {
			return fmt.Errorf("devis %s introuvable", args[0])
		}
		client, _ := app.clients.Get(q.ClientID)
		path, err := app.renderer.QuotePDF(q, client, app.settings.Load().Company)
		if err != nil {
			return err
		}
		fmt.Println("PDF généré:", path)
		return nil
	},
}

var quoteEventCmd = &cobra.Command{
	Use:   "event QUOTE_ID",
	Short: "Créer l'évènement agenda du devis",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		q, ok := app.quotes.Get(args[0])
		if !ok {
			return fmt.Errorf("devis %s introuvable", args[0])
		}
		if q.EventDate == nil {
			return fmt.Errorf("devis %s sans date d'évènement", q.Number)
		}
		client, _ := app.clients.Get(q.ClientID)
		title := fmt.Sprintf("Évènement %s — %s", q.Number, client.Name)
		desc := fmt.Sprintf("Devis %s, total %s", q.Number, money.FormatEuros(q.TotalCent))
		msg, err := app.cal.CreateEvent(title, *q.EventDate, desc)
		if err != nil {
			return err
		}
		fmt.Println(msg)
		return nil
	},
}

var quoteReconcileCmd = &cobra.Command{
	Use:   "reconcile [QUOTE_ID]",
	Short: "Recalculer et persister les totaux (tous les devis sans argument)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		quotes := app.quotes.List()
		if len(args) == 1 {
			q, ok := app.quotes.Get(args[0])
			if !ok {
				return fmt.Errorf("devis %s introuvable", args[0])
			}
			quotes = []models.Quote{q}
		}
		for i := range quotes {
			if err := app.quotes.Update(&quotes[i]); err != nil {
				return err
			}
			fmt.Printf("Devis %s : total %s\n", quotes[i].Number, money.FormatEuros(quotes[i].TotalCent))
		}
		return nil
	},
}
