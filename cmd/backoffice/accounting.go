package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/diewo77/go-backoffice/internal/models"
	"github.com/diewo77/go-backoffice/internal/money"
)

func init() {
	rootCmd.AddCommand(accountingCmd)
	accountingCmd.AddCommand(accountingListCmd)
	accountingCmd.AddCommand(accountingAddCmd)
	accountingCmd.AddCommand(accountingTotalCmd)

	accountingAddCmd.Flags().String("amount", "", "Montant en euros (obligatoire)")
	accountingAddCmd.Flags().String("label", "", "Libellé")
	accountingAddCmd.Flags().String("method", "", "Moyen de paiement")
	_ = accountingAddCmd.MarkFlagRequired("amount")
}

var accountingCmd = &cobra.Command{
	Use:   "accounting",
	Short: "Consulter le journal comptable",
}

var accountingListCmd = &cobra.Command{
	Use:   "list",
	Short: "Lister les écritures",
	RunE: func(cmd *cobra.Command, args []string) error {
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "DATE\tTYPE\tMONTANT\tMOYEN\tLIBELLÉ")
		for _, e := range app.acc.List() {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				e.Date.Format("02/01/2006"), e.Type, money.FormatEuros(e.AmountCent), e.PaymentMethod, e.Label)
		}
		return w.Flush()
	},
}

var accountingAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Ajouter une écriture de vente directe",
	RunE: func(cmd *cobra.Command, args []string) error {
		amountStr, _ := cmd.Flags().GetString("amount")
		label, _ := cmd.Flags().GetString("label")
		method, _ := cmd.Flags().GetString("method")
		cents, ok := money.ParseEuros(amountStr)
		if !ok {
			return fmt.Errorf("montant invalide: %q", amountStr)
		}
		e := models.AccountingEntry{Type: models.EntrySale, AmountCent: cents, Label: label, PaymentMethod: method}
		if err := app.acc.Add(&e); err != nil {
			return err
		}
		fmt.Println("Écriture ajoutée:", e.ID)
		return nil
	},
}

var accountingTotalCmd = &cobra.Command{
	Use:   "total",
	Short: "Totaux encaissés par type",
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, t := range []models.EntryType{models.EntryDeposit, models.EntryBalance, models.EntrySale} {
			fmt.Printf("%-8s %s\n", t, money.FormatEuros(app.acc.TotalCent(t)))
		}
		fmt.Printf("%-8s %s\n", "TOTAL", money.FormatEuros(app.acc.TotalCent("")))
		return nil
	},
}
