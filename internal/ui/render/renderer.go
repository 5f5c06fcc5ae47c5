// Package render writes an analysis result into the upload page.
package render

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"strings"

	"github.com/bryanwahyu/lexscan/internal/domain/analysis"
)

var fragments = template.Must(template.New("fragments").Parse(`
{{define "riskScore"}}<div class="risk-score risk-{{.OverallRiskLevel.Class}}">
    Risk Score: {{.Score}}
    <div class="risk-level">{{.OverallRiskLevel}}</div>
</div>{{end}}
{{define "findings"}}<ul class="findings-list">{{range .}}
    <li class="finding-item {{.RiskLevel.Class}}">
        <strong>{{.Category}}:</strong> {{.Keyword}}
        <div class="context">{{.Context}}</div>
        <div class="occurrences">Occurrences: {{.Occurrences}}</div>
    </li>{{end}}
</ul>{{end}}
{{define "recommendations"}}<ul class="recommendations-list">{{range .}}
    <li class="recommendation-item">{{.}}</li>{{end}}
</ul>{{end}}
`))

// Region is the subset of a page element the renderer writes to.
type Region interface {
	SetHTML(html string)
}

// Container is a region that can be revealed.
type Container interface {
	Show()
}

// Targets are the element handles the renderer owns.
type Targets struct {
	Results         Container
	RiskScore       Region
	Findings        Region
	Recommendations Region
}

// Renderer renders results into its targets. Each call replaces prior content.
type Renderer struct {
	t Targets
}

func New(t Targets) *Renderer { return &Renderer{t: t} }

// Render reveals the results region and fills its three fragments.
// Nothing is written when any fragment fails to execute.
func (r *Renderer) Render(res *analysis.Result) error {
	if res == nil {
		return fmt.Errorf("render: nil result")
	}

	score, err := execute("riskScore", res)
	if err != nil {
		return err
	}
	findings, err := execute("findings", res.Findings)
	if err != nil {
		return err
	}
	recs, err := execute("recommendations", res.Recommendations)
	if err != nil {
		return err
	}

	r.t.Results.Show()
	r.t.RiskScore.SetHTML(score)
	r.t.Findings.SetHTML(findings)
	r.t.Recommendations.SetHTML(recs)
	return nil
}

func execute(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := fragments.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return buf.String(), nil
}

// Summary writes a plain-text rendition of res for terminals.
func Summary(w io.Writer, res *analysis.Result) error {
	var b strings.Builder
	fmt.Fprintf(&b, "Risk Score: %s (%s)\n", res.Score(), res.OverallRiskLevel)

	fmt.Fprintf(&b, "\nFindings (%d)\n", len(res.Findings))
	for i, f := range res.Findings {
		fmt.Fprintf(&b, "  %d. [%s] %s: %s (occurrences: %d)\n", i+1, f.RiskLevel, f.Category, f.Keyword, f.Occurrences)
		if f.Context != "" {
			fmt.Fprintf(&b, "     %s\n", f.Context)
		}
	}

	fmt.Fprintf(&b, "\nRecommendations (%d)\n", len(res.Recommendations))
	for i, rec := range res.Recommendations {
		fmt.Fprintf(&b, "  %d. %s\n", i+1, rec)
	}

	_, err := io.WriteString(w, b.String())
	return err
}
