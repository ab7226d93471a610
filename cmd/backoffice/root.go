package main

import (
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/diewo77/go-backoffice/internal/calendar"
	"github.com/diewo77/go-backoffice/internal/catalog"
	"github.com/diewo77/go-backoffice/internal/config"
	"github.com/diewo77/go-backoffice/internal/numbering"
	"github.com/diewo77/go-backoffice/internal/render"
	"github.com/diewo77/go-backoffice/internal/services"
	"github.com/diewo77/go-backoffice/internal/settings"
	"github.com/diewo77/go-backoffice/internal/store"
)

// App bundles every service behind the CLI, wired once per invocation.
type App struct {
	cfg      config.Config
	settings *settings.File
	clients  *services.ClientService
	catalog  *catalog.Service
	quotes   *services.QuoteService
	invoices *services.InvoiceService
	acc      *services.AccountingService
	workflow *services.WorkflowService
	renderer *render.Renderer
	cal      *calendar.Service
	log      *zap.SugaredLogger
}

var app *App

var rootCmd = &cobra.Command{
	Use:   "backoffice",
	Short: "Gestion devis / factures / comptabilité",
	Long: `Back-office d'une société d'évènementiel : clients, catalogue,
devis, factures d'acompte/solde et journal comptable, le tout stocké
dans des fichiers JSON plats.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		_ = godotenv.Load()
		app = newApp()
	},
}

func newApp() *App {
	cfg := config.Load()

	zl, err := zap.NewDevelopment()
	if err != nil {
		zl = zap.NewNop()
	}
	log := zl.Sugar()

	st := settings.Open(cfg.SettingsPath)
	opts := store.Options{BackupKeep: cfg.BackupKeep, Logger: log}

	clientsStore := store.New(filepath.Join(cfg.DataDir, "clients.json"), "client", opts)
	productsStore := store.New(filepath.Join(cfg.DataDir, "products.json"), "produit", opts)
	servicesStore := store.New(filepath.Join(cfg.DataDir, "services.json"), "prestation", opts)
	quotesStore := store.New(filepath.Join(cfg.DataDir, "quotes.json"), "devis", opts)
	invoicesStore := store.New(filepath.Join(cfg.DataDir, "invoices.json"), "facture", opts)
	accountingStore := store.New(filepath.Join(cfg.DataDir, "accounting_entries.json"), "écriture", opts)
	countersStore := store.New(filepath.Join(cfg.DataDir, "counters.json"), "compteur", opts)

	cat := catalog.New(productsStore, servicesStore)
	seq := numbering.New(countersStore)

	quotes := services.NewQuoteService(quotesStore, cat, seq, st, log)
	invoices := services.NewInvoiceService(invoicesStore, seq, st, log)
	acc := services.NewAccountingService(accountingStore, log)

	conf := st.Load()
	pdfPath := cfg.WkhtmltopdfPath
	if pdfPath == "" {
		pdfPath = conf.PDF.WkhtmltopdfPath
	}

	return &App{
		cfg:      cfg,
		settings: st,
		clients:  services.NewClientService(clientsStore, log),
		catalog:  cat,
		quotes:   quotes,
		invoices: invoices,
		acc:      acc,
		workflow: services.NewWorkflowService(quotes, invoices, acc, log),
		renderer: render.New(cfg.ExportsDir, pdfPath, log),
		cal:      calendar.New(cfg.ExportsDir, conf.Calendar.WebhookURL, log),
		log:      log,
	}
}
