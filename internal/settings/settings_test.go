package settings

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileGivesDefaults(t *testing.T) {
	f := Open(filepath.Join(t.TempDir(), "settings.json"))
	s := f.Load()
	if s.Numbering.QuotePrefix != "DEV" || s.Numbering.InvoicePrefix != "FAC" {
		t.Errorf("numbering = %+v", s.Numbering)
	}
	if s.AcomptePct != 30 {
		t.Errorf("acompte_pct = %v", s.AcomptePct)
	}
	if s.Terms() != DefaultTerms {
		t.Errorf("terms = %q", s.Terms())
	}
}

func TestLoadDamagedFileFailsOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	if err := os.WriteFile(path, []byte("{pas du json"), 0o644); err != nil {
		t.Fatal(err)
	}
	s := Open(path).Load()
	if s.AcomptePct != 30 || s.Numbering.QuotePrefix != "DEV" {
		t.Errorf("expected defaults, got %+v", s)
	}
}

func TestLoadBackfillsEmptyPrefixes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	err := os.WriteFile(path, []byte(`{"company":{"name":"Sono & Lumières"},"acompte_pct":150}`), 0o644)
	if err != nil {
		t.Fatal(err)
	}
	s := Open(path).Load()
	if s.Company.Name != "Sono & Lumières" {
		t.Errorf("company = %+v", s.Company)
	}
	if s.Numbering.QuotePrefix != "DEV" || s.Numbering.InvoicePrefix != "FAC" {
		t.Errorf("numbering = %+v", s.Numbering)
	}
	// out-of-range percentage falls back
	if s.AcomptePct != 30 {
		t.Errorf("acompte_pct = %v", s.AcomptePct)
	}
}

func TestUpdateRoundTrip(t *testing.T) {
	f := Open(filepath.Join(t.TempDir(), "sub", "settings.json"))
	err := f.Update(func(s *Settings) {
		s.Company.Name = "Studio Écho"
		s.Numbering.QuotePrefix = "DV"
		s.DefaultTerms = "Paiement comptant."
		s.Calendar.WebhookURL = "https://example.org/hook"
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	s := f.Load()
	if s.Company.Name != "Studio Écho" || s.Numbering.QuotePrefix != "DV" {
		t.Errorf("settings = %+v", s)
	}
	if s.Terms() != "Paiement comptant." {
		t.Errorf("terms = %q", s.Terms())
	}
	if s.Calendar.WebhookURL != "https://example.org/hook" {
		t.Errorf("webhook = %q", s.Calendar.WebhookURL)
	}
}
