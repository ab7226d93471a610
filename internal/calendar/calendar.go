// Package calendar creates an all-day event for a quote's event date.
// When a webhook is configured the event is pushed there; on any failure —
// no network included — it falls back to writing an .ics file locally and
// returns its path. CreateEvent never fails just because the machine is
// offline.
package calendar

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
)

type Service struct {
	exportsDir string
	webhookURL string
	client     *http.Client
	log        *zap.SugaredLogger
}

func New(exportsDir, webhookURL string, log *zap.SugaredLogger) *Service {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Service{
		exportsDir: exportsDir,
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: 5 * time.Second},
		log:        log,
	}
}

// CreateEvent returns a human-readable confirmation: either the webhook
// acknowledgement or the path of the fallback .ics file.
func (s *Service) CreateEvent(title string, day time.Time, description string) (string, error) {
	if s.webhookURL != "" {
		if msg, err := s.pushWebhook(title, day, description); err == nil {
			return msg, nil
		} else {
			s.log.Warnw("webhook agenda injoignable, repli ICS", "err", err)
		}
	}
	return s.writeICS(title, day, description)
}

func (s *Service) pushWebhook(title string, day time.Time, description string) (string, error) {
	payload, err := json.Marshal(map[string]string{
		"summary":     title,
		"date":        day.Format("2006-01-02"),
		"description": description,
	})
	if err != nil {
		return "", err
	}
	resp, err := s.client.Post(s.webhookURL, "application/json", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("webhook agenda: statut %d", resp.StatusCode)
	}
	return fmt.Sprintf("Évènement envoyé à l'agenda (%s)", day.Format("02/01/2006")), nil
}

func (s *Service) writeICS(title string, day time.Time, description string) (string, error) {
	dir := filepath.Join(s.exportsDir, "agenda")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 1)

	var b strings.Builder
	b.WriteString("BEGIN:VCALENDAR\r\n")
	b.WriteString("VERSION:2.0\r\n")
	b.WriteString("PRODID:-//go-backoffice//FR\r\n")
	b.WriteString("BEGIN:VEVENT\r\n")
	fmt.Fprintf(&b, "UID:%d@go-backoffice\r\n", time.Now().UnixNano())
	fmt.Fprintf(&b, "DTSTAMP:%s\r\n", time.Now().UTC().Format("20060102T150405Z"))
	fmt.Fprintf(&b, "DTSTART;VALUE=DATE:%s\r\n", start.Format("20060102"))
	fmt.Fprintf(&b, "DTEND;VALUE=DATE:%s\r\n", end.Format("20060102"))
	fmt.Fprintf(&b, "SUMMARY:%s\r\n", icsEscape(title))
	if description != "" {
		fmt.Fprintf(&b, "DESCRIPTION:%s\r\n", icsEscape(description))
	}
	b.WriteString("END:VEVENT\r\n")
	b.WriteString("END:VCALENDAR\r\n")

	path := filepath.Join(dir, strings.ReplaceAll(title, " ", "_")+".ics")
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return "", err
	}
	return fmt.Sprintf("ICS généré : %s", path), nil
}

func icsEscape(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, ";", "\\;")
	s = strings.ReplaceAll(s, ",", "\\,")
	s = strings.ReplaceAll(s, "\n", "\\n")
	return s
}
