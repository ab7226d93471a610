package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/diewo77/go-backoffice/internal/models"
)

func init() {
	rootCmd.AddCommand(clientCmd)
	clientCmd.AddCommand(clientListCmd)
	clientCmd.AddCommand(clientAddCmd)
	clientCmd.AddCommand(clientRmCmd)

	clientAddCmd.Flags().String("name", "", "Nom du client (obligatoire)")
	clientAddCmd.Flags().String("contact", "", "Nom du contact")
	clientAddCmd.Flags().String("email", "", "Email")
	clientAddCmd.Flags().String("phone", "", "Téléphone")
	clientAddCmd.Flags().String("notes", "", "Notes libres")
	_ = clientAddCmd.MarkFlagRequired("name")
}

var clientCmd = &cobra.Command{
	Use:   "client",
	Short: "Gérer les clients",
}

var clientListCmd = &cobra.Command{
	Use:   "list",
	Short: "Lister les clients",
	RunE: func(cmd *cobra.Command, args []string) error {
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNOM\tCONTACT\tEMAIL\tTÉLÉPHONE")
		for _, c := range app.clients.List() {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", c.ID, c.Name, c.ContactName, c.Email, c.Phone)
		}
		return w.Flush()
	},
}

var clientAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Créer un client",
	RunE: func(cmd *cobra.Command, args []string) error {
		name, _ := cmd.Flags().GetString("name")
		contact, _ := cmd.Flags().GetString("contact")
		email, _ := cmd.Flags().GetString("email")
		phone, _ := cmd.Flags().GetString("phone")
		notes, _ := cmd.Flags().GetString("notes")
		c := models.Client{Name: name, ContactName: contact, Email: email, Phone: phone, Notes: notes}
		if err := app.clients.Add(&c); err != nil {
			return err
		}
		fmt.Println("Client créé:", c.ID)
		return nil
	},
}

var clientRmCmd = &cobra.Command{
	Use:   "rm CLIENT_ID",
	Short: "Supprimer un client",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !app.clients.Delete(args[0]) {
			fmt.Println("Aucun client supprimé")
			return nil
		}
		fmt.Println("Client supprimé")
		return nil
	},
}
