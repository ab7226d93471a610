// Package settings manages the single JSON settings document: company
// profile, numbering prefixes, deposit percentage, integration paths. The
// whole object is loaded, mutated and written back in one step — it is not a
// record collection and does not go through the generic store.
package settings

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
)

const DefaultTerms = "Conditions de paiement : 30% à l'acceptation du devis, 70% au plus tard le jour de l'évènement. " +
	"TVA non applicable, art. 293 B du CGI. Devis valable 30 jours."

type Company struct {
	Name    string `json:"name"`
	Email   string `json:"email,omitempty"`
	Address string `json:"address,omitempty"`
	Phone   string `json:"phone,omitempty"`
	SIRET   string `json:"siret,omitempty"`
}

type Numbering struct {
	QuotePrefix   string `json:"quote_prefix"`
	InvoicePrefix string `json:"invoice_prefix"`
}

type PDF struct {
	WkhtmltopdfPath string `json:"wkhtmltopdf_path,omitempty"`
}

type Calendar struct {
	WebhookURL string `json:"webhook_url,omitempty"`
}

type Settings struct {
	Company      Company   `json:"company"`
	Numbering    Numbering `json:"numbering"`
	AcomptePct   float64   `json:"acompte_pct"`
	DefaultTerms string    `json:"default_terms,omitempty"`
	PDF          PDF       `json:"pdf"`
	Calendar     Calendar  `json:"calendar"`
}

func defaults() Settings {
	return Settings{
		Company:    Company{Name: "Ma Société"},
		Numbering:  Numbering{QuotePrefix: "DEV", InvoicePrefix: "FAC"},
		AcomptePct: 30,
	}
}

// Terms returns the configured default terms text, or the built-in default.
func (s Settings) Terms() string {
	if s.DefaultTerms != "" {
		return s.DefaultTerms
	}
	return DefaultTerms
}

// File is a handle on the settings document.
type File struct {
	path string
	mu   sync.Mutex
}

func Open(path string) *File { return &File{path: path} }

// Load reads the settings, falling back to defaults when the file is
// missing or unreadable. Fail-open: a damaged settings file must not take
// the app down.
func (f *File) Load() Settings {
	s := defaults()
	b, err := os.ReadFile(f.path)
	if err != nil {
		return s
	}
	if err := json.Unmarshal(b, &s); err != nil {
		return defaults()
	}
	if s.Numbering.QuotePrefix == "" {
		s.Numbering.QuotePrefix = "DEV"
	}
	if s.Numbering.InvoicePrefix == "" {
		s.Numbering.InvoicePrefix = "FAC"
	}
	if s.AcomptePct <= 0 || s.AcomptePct > 100 {
		s.AcomptePct = 30
	}
	return s
}

// Update applies mutate under the lock and persists the whole document.
func (f *File) Update(mutate func(*Settings)) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	s := f.Load()
	mutate(&s)
	b, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(f.path, b, 0o644)
}
