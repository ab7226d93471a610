// Package render produces the PDF documents handed to clients. HTML comes
// from embedded templates; the PDF step shells out to wkhtmltopdf. When no
// rendering backend can be located the caller gets a typed, actionable
// error instead of a silent degradation.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/diewo77/go-backoffice/internal/models"
	"github.com/diewo77/go-backoffice/internal/money"
	"github.com/diewo77/go-backoffice/internal/settings"
)

//go:embed templates/*.html
var templatesFS embed.FS

// UnavailableError means no PDF backend exists on this machine. Must reach
// the user as-is; there is nothing the code can do about a missing binary.
type UnavailableError struct {
	Hint string
}

func (e *UnavailableError) Error() string {
	return "aucun moteur PDF disponible: " + e.Hint
}

type Renderer struct {
	exportsDir string
	binPath    string // configured wkhtmltopdf path, may be empty
	log        *zap.SugaredLogger

	mu  sync.Mutex
	tpl map[string]*template.Template
}

func New(exportsDir, wkhtmltopdfPath string, log *zap.SugaredLogger) *Renderer {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Renderer{
		exportsDir: exportsDir,
		binPath:    wkhtmltopdfPath,
		log:        log,
		tpl:        map[string]*template.Template{},
	}
}

func (r *Renderer) template(name string) (*template.Template, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.tpl[name]; ok {
		return t, nil
	}
	t, err := template.New(name).Funcs(template.FuncMap{
		"euros": money.FormatEuros,
	}).ParseFS(templatesFS, "templates/"+name)
	if err != nil {
		return nil, err
	}
	r.tpl[name] = t
	return t, nil
}

func (r *Renderer) renderHTML(name string, ctx any) (string, error) {
	t, err := r.template(name)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, name, ctx); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// QuotePDF renders q into <exports>/devis/<number>_devis_<client>.pdf.
func (r *Renderer) QuotePDF(q models.Quote, client models.Client, company settings.Company) (string, error) {
	html, err := r.renderHTML("quote.html", quoteContext(q, client, company))
	if err != nil {
		return "", err
	}
	name := q.Number
	if name == "" {
		name = q.ID
	}
	filename := fmt.Sprintf("%s_devis_%s.pdf", name, Slug(client.Name))
	out := filepath.Join(r.exportsDir, "devis", filename)
	if err := r.htmlToPDF(html, out); err != nil {
		return "", err
	}
	return out, nil
}

// InvoicePDF renders inv into <exports>/factures/FAC-<T>-NNNN (<client>).pdf.
func (r *Renderer) InvoicePDF(inv models.Invoice, client models.Client, company settings.Company) (string, error) {
	html, err := r.renderHTML("invoice.html", invoiceContext(inv, client, company))
	if err != nil {
		return "", err
	}
	tail := inv.Number
	if tail == "" {
		tail = inv.ID
	}
	if i := strings.LastIndex(tail, "-"); i >= 0 {
		tail = tail[i+1:]
	}
	filename := fmt.Sprintf("FAC-%s-%s (%s).pdf", inv.Type.TypeCode(), tail, Slug(client.Name))
	out := filepath.Join(r.exportsDir, "factures", filename)
	if err := r.htmlToPDF(html, out); err != nil {
		return "", err
	}
	return out, nil
}

// findBinary locates wkhtmltopdf: configured path first, then the
// WKHTMLTOPDF env vars, then PATH.
func (r *Renderer) findBinary() (string, bool) {
	if r.binPath != "" {
		if _, err := os.Stat(r.binPath); err == nil {
			return r.binPath, true
		}
		r.log.Warnw("chemin wkhtmltopdf configuré introuvable", "path", r.binPath)
	}
	for _, key := range []string{"WKHTMLTOPDF", "WKHTMLTOPDF_CMD"} {
		if v := os.Getenv(key); v != "" {
			if _, err := os.Stat(v); err == nil {
				return v, true
			}
		}
	}
	if p, err := exec.LookPath("wkhtmltopdf"); err == nil {
		return p, true
	}
	return "", false
}

func (r *Renderer) htmlToPDF(html, outPath string) error {
	bin, ok := r.findBinary()
	if !ok {
		return &UnavailableError{Hint: "installe wkhtmltopdf ou renseigne pdf.wkhtmltopdf_path dans les réglages"}
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return err
	}
	cmd := exec.Command(bin, "--enable-local-file-access", "--quiet", "--encoding", "UTF-8", "-", outPath)
	cmd.Stdin = strings.NewReader(html)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("wkhtmltopdf: %w (%s)", err, strings.TrimSpace(stderr.String()))
	}
	return nil
}

var slugForbidden = regexp.MustCompile(`[\\/:*?"<>|\n\r\t]`)
var slugSpaces = regexp.MustCompile(`\s+`)

// Slug makes name safe for filenames on every platform we ship to.
func Slug(name string) string {
	s := strings.TrimSpace(name)
	s = slugForbidden.ReplaceAllString(s, "_")
	s = slugSpaces.ReplaceAllString(s, " ")
	if s == "" {
		return "Client"
	}
	return s
}

// ---- template contexts: plain strings and numbers only ----

type lineCtx struct {
	Label       string
	Description string
	Qty         float64
	Unit        string
	UnitPrice   string
	RemisePct   float64
	Total       string
}

type docCtx struct {
	Number    string
	Type      string
	EventDate string
	Lines     []lineCtx
	Total     string
	Terms     string
	Client    partyCtx
	Company   partyCtx
}

type partyCtx struct {
	Name    string
	Email   string
	Address string
	Phone   string
	SIRET   string
}

func quoteContext(q models.Quote, client models.Client, company settings.Company) docCtx {
	ctx := docCtx{
		Number:  q.Number,
		Total:   money.FormatEuros(q.TotalCent),
		Terms:   q.Terms,
		Client:  clientParty(client),
		Company: companyParty(company),
	}
	if q.EventDate != nil {
		ctx.EventDate = q.EventDate.Format("02/01/2006")
	}
	for _, ln := range q.Lines {
		ctx.Lines = append(ctx.Lines, lineCtx{
			Label:       ln.Label,
			Description: ln.Description,
			Qty:         ln.Qty,
			Unit:        ln.Unit,
			UnitPrice:   money.FormatEuros(ln.UnitPrice),
			RemisePct:   ln.RemisePct,
			Total:       money.FormatEuros(ln.TotalCent),
		})
	}
	return ctx
}

func invoiceContext(inv models.Invoice, client models.Client, company settings.Company) docCtx {
	ctx := docCtx{
		Number:  inv.Number,
		Type:    string(inv.Type),
		Total:   money.FormatEuros(inv.TotalCent),
		Terms:   inv.Notes,
		Client:  clientParty(client),
		Company: companyParty(company),
	}
	for _, ln := range inv.Lines {
		ctx.Lines = append(ctx.Lines, lineCtx{
			Label:     ln.Label,
			Qty:       ln.Qty,
			UnitPrice: money.FormatEuros(ln.UnitPrice),
			Total:     money.FormatEuros(ln.TotalCent),
		})
	}
	return ctx
}

func clientParty(c models.Client) partyCtx {
	p := partyCtx{Name: c.Name, Email: c.Email, Phone: c.Phone}
	if c.Address != nil {
		p.Address = c.Address.String()
	}
	if p.Name == "" {
		p.Name = "Client"
	}
	return p
}

func companyParty(c settings.Company) partyCtx {
	return partyCtx{Name: c.Name, Email: c.Email, Address: c.Address, Phone: c.Phone, SIRET: c.SIRET}
}
