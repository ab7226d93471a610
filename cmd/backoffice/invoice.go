package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/diewo77/go-backoffice/internal/money"
)

func init() {
	rootCmd.AddCommand(invoiceCmd)
	invoiceCmd.AddCommand(invoiceListCmd)
	invoiceCmd.AddCommand(invoicePDFCmd)
	invoiceCmd.AddCommand(invoicePaidCmd)

	invoiceListCmd.Flags().String("quote", "", "Limiter aux factures d'un devis")
}

var invoiceCmd = &cobra.Command{
	Use:   "invoice",
	Short: "Consulter et exporter les factures",
}

var invoiceListCmd = &cobra.Command{
	Use:   "list",
	Short: "Lister les factures",
	RunE: func(cmd *cobra.Command, args []string) error {
		quoteID, _ := cmd.Flags().GetString("quote")
		invoices := app.invoices.List()
		if quoteID != "" {
			invoices = app.invoices.ListByQuote(quoteID)
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNUMÉRO\tTYPE\tSTATUT\tTOTAL TTC\tDEVIS")
		for _, inv := range invoices {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
				inv.ID, inv.Number, inv.Type, inv.Status, money.FormatEuros(inv.TotalCent), inv.QuoteID)
		}
		return w.Flush()
	},
}

var invoicePDFCmd = &cobra.Command{
	Use:   "pdf INVOICE_ID",
	Short: "Exporter une facture en PDF",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		inv, ok := app.invoices.Get(args[0])
		if !ok {
			return fmt.Errorf("facture %s introuvable", args[0])
		}
		client, _ := app.clients.Get(inv.ClientID)
		path, err := app.renderer.InvoicePDF(inv, client, app.settings.Load().Company)
		if err != nil {
			return err
		}
		fmt.Println("PDF généré:", path)
		return nil
	},
}

var invoicePaidCmd = &cobra.Command{
	Use:   "paid INVOICE_ID",
	Short: "Marquer une facture comme payée",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := app.invoices.MarkPaid(args[0]); err != nil {
			return err
		}
		fmt.Println("Facture marquée payée")
		return nil
	},
}
