// Package page holds the server-side upload page: a goquery document with
// the element contract the upload controller, renderer and drop zone bind to.
package page

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"

	"github.com/bryanwahyu/lexscan/internal/domain/analysis"
)

//go:embed assets/upload.html
var assets embed.FS

var uploadTmpl = template.Must(template.ParseFS(assets, "assets/upload.html"))

// Selectors locates every element the page contract needs.
type Selectors struct {
	Form            string
	Results         string
	RiskScore       string
	Findings        string
	Recommendations string
	DropZone        string
	Loading         string
	FileInput       string
	Submit          string
}

// DefaultSelectors matches the upload template.
func DefaultSelectors() Selectors {
	return Selectors{
		Form:            "#uploadForm",
		Results:         "#results",
		RiskScore:       "#riskScore",
		Findings:        "#findings",
		Recommendations: "#recommendations",
		DropZone:        ".file-input",
		Loading:         ".loading-indicator",
		FileInput:       `input[type="file"]`,
		Submit:          `button[type="submit"]`,
	}
}

// Page is one upload page. All DOM access goes through its mutex.
type Page struct {
	mu    sync.Mutex
	doc   *goquery.Document
	sel   Selectors
	files []analysis.Document
}

// New parses r and checks that every required element exists.
func New(r io.Reader, sel Selectors) (*Page, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse page: %w", err)
	}

	required := map[string]string{
		"form":            sel.Form,
		"results":         sel.Results,
		"riskScore":       sel.RiskScore,
		"findings":        sel.Findings,
		"recommendations": sel.Recommendations,
		"dropZone":        sel.DropZone,
		"loading":         sel.Loading,
		"fileInput":       sel.FileInput,
	}
	var missing []string
	for name, s := range required {
		if s == "" || doc.Find(s).Length() == 0 {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, fmt.Errorf("page is missing elements: %s", strings.Join(missing, ", "))
	}

	return &Page{doc: doc, sel: sel}, nil
}

// NewUploadPage renders the embedded upload template.
func NewUploadPage(title string) (*Page, error) {
	var buf bytes.Buffer
	if err := uploadTmpl.Execute(&buf, struct{ Title string }{title}); err != nil {
		return nil, err
	}
	return New(&buf, DefaultSelectors())
}

func (p *Page) Selectors() Selectors { return p.sel }

// Element returns a handle for selector. The selector is resolved on each call.
func (p *Page) Element(selector string) *Element {
	return &Element{page: p, selector: selector}
}

func (p *Page) Results() *Element         { return p.Element(p.sel.Results) }
func (p *Page) RiskScore() *Element       { return p.Element(p.sel.RiskScore) }
func (p *Page) Findings() *Element        { return p.Element(p.sel.Findings) }
func (p *Page) Recommendations() *Element { return p.Element(p.sel.Recommendations) }
func (p *Page) DropZone() *Element        { return p.Element(p.sel.DropZone) }
func (p *Page) Loading() *Element         { return p.Element(p.sel.Loading) }
func (p *Page) Submit() *Element          { return p.Element(p.sel.Submit) }

// FileInput returns the file-selection control.
func (p *Page) FileInput() *FileInput { return &FileInput{page: p} }

// Form returns the upload form.
func (p *Page) Form() *Form { return &Form{page: p} }

// HTML serializes the whole document.
func (p *Page) HTML() (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.doc.Html()
}

// WriteTo writes the serialized document to w.
func (p *Page) WriteTo(w io.Writer) (int64, error) {
	s, err := p.HTML()
	if err != nil {
		return 0, err
	}
	n, err := io.WriteString(w, s)
	return int64(n), err
}
