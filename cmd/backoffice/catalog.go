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
	rootCmd.AddCommand(catalogCmd)
	catalogCmd.AddCommand(catalogListCmd)
	catalogCmd.AddCommand(catalogAddCmd)
	catalogCmd.AddCommand(catalogRmCmd)

	catalogCmd.PersistentFlags().String("type", models.ItemProduct, "product ou service")

	catalogAddCmd.Flags().String("ref", "", "Code article")
	catalogAddCmd.Flags().String("label", "", "Libellé (obligatoire)")
	catalogAddCmd.Flags().String("desc", "", "Description")
	catalogAddCmd.Flags().String("unit", "pièce", "Unité (pièce, heure, prestation…)")
	catalogAddCmd.Flags().String("price", "0", "Prix TTC en euros, ex: 18,50")
	catalogAddCmd.Flags().Bool("inactive", false, "Créer l'article inactif")
	_ = catalogAddCmd.MarkFlagRequired("label")
}

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Gérer le catalogue produits / prestations",
}

var catalogListCmd = &cobra.Command{
	Use:   "list",
	Short: "Lister le catalogue",
	RunE: func(cmd *cobra.Command, args []string) error {
		typ, _ := cmd.Flags().GetString("type")
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tREF\tLIBELLÉ\tUNITÉ\tPRIX TTC\tACTIF")
		for _, it := range app.catalog.List(typ) {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%v\n",
				it.ID, it.Ref, it.Label, it.Unit, money.FormatEuros(it.PriceCent), it.Active)
		}
		return w.Flush()
	},
}

var catalogAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Ajouter un article au catalogue",
	RunE: func(cmd *cobra.Command, args []string) error {
		typ, _ := cmd.Flags().GetString("type")
		ref, _ := cmd.Flags().GetString("ref")
		label, _ := cmd.Flags().GetString("label")
		desc, _ := cmd.Flags().GetString("desc")
		unit, _ := cmd.Flags().GetString("unit")
		price, _ := cmd.Flags().GetString("price")
		inactive, _ := cmd.Flags().GetBool("inactive")

		cents, ok := money.ParseEuros(price)
		if !ok || cents < 0 {
			return fmt.Errorf("prix invalide: %q", price)
		}
		it, err := app.catalog.Add(typ, models.CatalogItem{
			Ref:         ref,
			Label:       label,
			Description: desc,
			Unit:        unit,
			PriceCent:   cents,
			Active:      !inactive,
		})
		if err != nil {
			return err
		}
		fmt.Println("Article créé:", it.ID)
		return nil
	},
}

var catalogRmCmd = &cobra.Command{
	Use:   "rm ITEM_ID",
	Short: "Supprimer un article",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		typ, _ := cmd.Flags().GetString("type")
		if !app.catalog.Delete(typ, args[0]) {
			fmt.Println("Aucun article supprimé")
			return nil
		}
		fmt.Println("Article supprimé")
		return nil
	},
}
