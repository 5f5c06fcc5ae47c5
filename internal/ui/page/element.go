package page

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Element is a handle to every node matching a selector on one page.
type Element struct {
	page     *Page
	selector string
}

func (e *Element) Selector() string { return e.selector }

func (e *Element) with(fn func(s *goquery.Selection)) {
	e.page.mu.Lock()
	defer e.page.mu.Unlock()
	fn(e.page.doc.Find(e.selector))
}

// Len reports how many nodes match.
func (e *Element) Len() int {
	var n int
	e.with(func(s *goquery.Selection) { n = s.Length() })
	return n
}

func (e *Element) Show() { e.setDisplay("block") }
func (e *Element) Hide() { e.setDisplay("none") }

// Visible is false when the first match has display:none or the hidden attribute.
func (e *Element) Visible() bool {
	visible := false
	e.with(func(s *goquery.Selection) {
		first := s.First()
		if first.Length() == 0 {
			return
		}
		if _, hidden := first.Attr("hidden"); hidden {
			return
		}
		style, _ := first.Attr("style")
		visible = styleProperty(style, "display") != "none"
	})
	return visible
}

func (e *Element) setDisplay(value string) {
	e.with(func(s *goquery.Selection) {
		s.Each(func(_ int, n *goquery.Selection) {
			style, _ := n.Attr("style")
			n.SetAttr("style", setStyleProperty(style, "display", value))
		})
	})
}

// SetHTML replaces the inner HTML of every match.
func (e *Element) SetHTML(html string) {
	e.with(func(s *goquery.Selection) { s.SetHtml(html) })
}

// HTML returns the inner HTML of the first match.
func (e *Element) HTML() string {
	var out string
	e.with(func(s *goquery.Selection) { out, _ = s.First().Html() })
	return out
}

// Text returns the combined text of all matches.
func (e *Element) Text() string {
	var out string
	e.with(func(s *goquery.Selection) { out = s.Text() })
	return out
}

// Find counts descendants of the element matching selector.
func (e *Element) Find(selector string) int {
	var n int
	e.with(func(s *goquery.Selection) { n = s.Find(selector).Length() })
	return n
}

func (e *Element) AddClass(class string) {
	e.with(func(s *goquery.Selection) { s.AddClass(class) })
}

func (e *Element) RemoveClass(class string) {
	e.with(func(s *goquery.Selection) { s.RemoveClass(class) })
}

func (e *Element) HasClass(class string) bool {
	var ok bool
	e.with(func(s *goquery.Selection) { ok = s.HasClass(class) })
	return ok
}

func (e *Element) Attr(name string) (string, bool) {
	var (
		v  string
		ok bool
	)
	e.with(func(s *goquery.Selection) { v, ok = s.First().Attr(name) })
	return v, ok
}

func (e *Element) SetAttr(name, value string) {
	e.with(func(s *goquery.Selection) { s.SetAttr(name, value) })
}

func (e *Element) RemoveAttr(name string) {
	e.with(func(s *goquery.Selection) { s.RemoveAttr(name) })
}

func (e *Element) Disable() { e.SetAttr("disabled", "disabled") }
func (e *Element) Enable()  { e.RemoveAttr("disabled") }

func (e *Element) Disabled() bool {
	_, ok := e.Attr("disabled")
	return ok
}

// styleProperty reads one declaration from an inline style attribute.
func styleProperty(style, prop string) string {
	for _, decl := range strings.Split(style, ";") {
		k, v, ok := strings.Cut(decl, ":")
		if ok && strings.EqualFold(strings.TrimSpace(k), prop) {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

// setStyleProperty replaces or appends one declaration, keeping the others in order.
func setStyleProperty(style, prop, value string) string {
	var out []string
	found := false
	for _, decl := range strings.Split(style, ";") {
		decl = strings.TrimSpace(decl)
		if decl == "" {
			continue
		}
		k, _, ok := strings.Cut(decl, ":")
		if ok && strings.EqualFold(strings.TrimSpace(k), prop) {
			if !found {
				out = append(out, prop+": "+value)
				found = true
			}
			continue
		}
		out = append(out, decl)
	}
	if !found {
		out = append(out, prop+": "+value)
	}
	return strings.Join(out, "; ")
}
