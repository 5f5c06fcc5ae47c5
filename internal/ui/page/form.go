package page

import (
	"html"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/bryanwahyu/lexscan/internal/domain/analysis"
)

// FileInput is the page's file-selection control. A parsed document cannot
// hold file contents, so the selection lives on the Page.
type FileInput struct {
	page *Page
}

// Name is the form field name of the control, "file" when unset.
func (f *FileInput) Name() string {
	f.page.mu.Lock()
	defer f.page.mu.Unlock()
	return f.nameLocked()
}

func (f *FileInput) nameLocked() string {
	if name, ok := f.page.doc.Find(f.page.sel.FileInput).First().Attr("name"); ok && name != "" {
		return name
	}
	return "file"
}

// Files returns a copy of the current selection.
func (f *FileInput) Files() []analysis.Document {
	f.page.mu.Lock()
	defer f.page.mu.Unlock()
	return append([]analysis.Document(nil), f.page.files...)
}

// SetFiles replaces the selection.
func (f *FileInput) SetFiles(docs []analysis.Document) {
	f.page.mu.Lock()
	defer f.page.mu.Unlock()
	f.page.files = append([]analysis.Document(nil), docs...)
}

func (f *FileInput) Clear() { f.SetFiles(nil) }

// Form collects the upload form the way a browser builds FormData.
type Form struct {
	page *Page
}

// SetValue sets the value of the named input or textarea inside the form.
// It reports whether a control with that name exists.
func (f *Form) SetValue(name, value string) bool {
	f.page.mu.Lock()
	defer f.page.mu.Unlock()

	found := false
	f.page.doc.Find(f.page.sel.Form).Find("input, textarea").Each(func(_ int, s *goquery.Selection) {
		if n, _ := s.Attr("name"); n != name {
			return
		}
		found = true
		if goquery.NodeName(s) == "textarea" {
			s.SetText(value)
			return
		}
		s.SetAttr("value", value)
	})
	return found
}

// AddHidden appends a hidden input to the form.
func (f *Form) AddHidden(name, value string) {
	f.page.mu.Lock()
	defer f.page.mu.Unlock()
	f.page.doc.Find(f.page.sel.Form).First().AppendHtml(
		`<input type="hidden" name="` + html.EscapeString(name) + `" value="` + html.EscapeString(value) + `">`,
	)
}

// Collect gathers named controls in document order plus the selected files.
// It fails with analysis.ErrNoDocument when no file is selected.
func (f *Form) Collect() (analysis.Submission, error) {
	f.page.mu.Lock()
	defer f.page.mu.Unlock()

	var sub analysis.Submission
	fileField := f.nameLocked()

	f.page.doc.Find(f.page.sel.Form).Find("input, textarea, select").Each(func(_ int, s *goquery.Selection) {
		name, _ := s.Attr("name")
		if name == "" {
			return
		}
		if _, disabled := s.Attr("disabled"); disabled {
			return
		}

		switch goquery.NodeName(s) {
		case "textarea":
			sub.Fields = append(sub.Fields, analysis.Field{Name: name, Value: s.Text()})
		case "select":
			opt := s.Find("option[selected]").First()
			if opt.Length() == 0 {
				opt = s.Find("option").First()
			}
			if opt.Length() == 0 {
				return
			}
			v, ok := opt.Attr("value")
			if !ok {
				v = strings.TrimSpace(opt.Text())
			}
			sub.Fields = append(sub.Fields, analysis.Field{Name: name, Value: v})
		default:
			typ, _ := s.Attr("type")
			switch strings.ToLower(typ) {
			case "file":
				if name != fileField {
					return
				}
				for _, d := range f.page.files {
					sub.Attachments = append(sub.Attachments, analysis.Attachment{Field: name, Document: d})
				}
			case "submit", "button", "reset", "image":
			case "checkbox", "radio":
				if _, checked := s.Attr("checked"); !checked {
					return
				}
				v, ok := s.Attr("value")
				if !ok {
					v = "on"
				}
				sub.Fields = append(sub.Fields, analysis.Field{Name: name, Value: v})
			default:
				v, _ := s.Attr("value")
				sub.Fields = append(sub.Fields, analysis.Field{Name: name, Value: v})
			}
		}
	})

	if len(sub.Attachments) == 0 {
		return analysis.Submission{}, analysis.ErrNoDocument
	}
	return sub, nil
}

func (f *Form) nameLocked() string {
	return (&FileInput{page: f.page}).nameLocked()
}

// AlertNotifier shows notifications as alert boxes above the upload form.
type AlertNotifier struct {
	page *Page
}

func NewAlertNotifier(p *Page) *AlertNotifier { return &AlertNotifier{page: p} }

func (n *AlertNotifier) Notify(message string) {
	n.page.mu.Lock()
	defer n.page.mu.Unlock()
	n.page.doc.Find(n.page.sel.Form).First().BeforeHtml(
		`<div class="alert" role="alert">` + html.EscapeString(message) + `</div>`,
	)
}
