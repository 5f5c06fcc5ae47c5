package render

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/lexscan/internal/domain/analysis"
	"github.com/bryanwahyu/lexscan/internal/ui/page"
)

func sampleResult() *analysis.Result {
	return &analysis.Result{
		RiskScore:        7,
		OverallRiskLevel: "High",
		Findings: []analysis.Finding{
			{Category: "Termination", Keyword: "at-will", Context: "...", Occurrences: 3, RiskLevel: "High"},
		},
		Recommendations: []string{"Review clause 4"},
	}
}

func newRenderer(t *testing.T) (*Renderer, *page.Page) {
	t.Helper()
	p, err := page.NewUploadPage("test")
	require.NoError(t, err)
	r := New(Targets{
		Results:         p.Results(),
		RiskScore:       p.RiskScore(),
		Findings:        p.Findings(),
		Recommendations: p.Recommendations(),
	})
	return r, p
}

func TestRender_SampleResult(t *testing.T) {
	r, p := newRenderer(t)

	require.NoError(t, r.Render(sampleResult()))

	assert.True(t, p.Results().Visible())
	assert.Contains(t, p.RiskScore().Text(), "Risk Score: 7")
	assert.Equal(t, 1, p.RiskScore().Find(".risk-score.risk-high"))
	assert.Contains(t, p.Element(".risk-level").Text(), "High")

	assert.Equal(t, 1, p.Findings().Find("li.finding-item"))
	assert.Equal(t, 1, p.Findings().Find("li.finding-item.high"))
	findings := p.Findings().Text()
	assert.Contains(t, findings, "Termination:")
	assert.Contains(t, findings, "at-will")
	assert.Contains(t, findings, "Occurrences: 3")

	assert.Equal(t, 1, p.Recommendations().Find("li.recommendation-item"))
	assert.Contains(t, p.Recommendations().Text(), "Review clause 4")
}

func TestRender_ReplacesPriorContent(t *testing.T) {
	r, p := newRenderer(t)

	first := sampleResult()
	first.Findings = append(first.Findings, first.Findings[0], first.Findings[0])
	first.Recommendations = []string{"a", "b", "c"}
	require.NoError(t, r.Render(first))
	assert.Equal(t, 3, p.Findings().Find("li.finding-item"))

	second := &analysis.Result{
		RiskScore:        2.5,
		OverallRiskLevel: "LOW",
		Findings:         []analysis.Finding{},
		Recommendations:  []string{"Keep a signed copy"},
	}
	require.NoError(t, r.Render(second))

	assert.Equal(t, 0, p.Findings().Find("li.finding-item"))
	assert.Equal(t, 1, p.Findings().Find("ul.findings-list"))
	assert.Equal(t, 1, p.Recommendations().Find("li.recommendation-item"))
	assert.Equal(t, 1, p.RiskScore().Find(".risk-score.risk-low"))
	assert.Equal(t, 0, p.RiskScore().Find(".risk-high"))
	assert.Contains(t, p.RiskScore().Text(), "Risk Score: 2.5")
}

func TestRender_EscapesContent(t *testing.T) {
	r, p := newRenderer(t)
	res := sampleResult()
	res.Findings[0].Context = `<script>alert("x")</script>`
	res.Recommendations = []string{"<b>bold</b>"}

	require.NoError(t, r.Render(res))

	assert.Equal(t, 0, p.Findings().Find("script"))
	assert.Contains(t, p.Findings().Text(), `<script>alert("x")</script>`)
	assert.Equal(t, 0, p.Recommendations().Find("b"))
}

func TestRender_NilResult(t *testing.T) {
	r, p := newRenderer(t)

	assert.Error(t, r.Render(nil))
	assert.False(t, p.Results().Visible())
}

func TestSummary(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Summary(&buf, sampleResult()))

	out := buf.String()
	assert.Contains(t, out, "Risk Score: 7 (High)")
	assert.Contains(t, out, "1. [High] Termination: at-will (occurrences: 3)")
	assert.Contains(t, out, "1. Review clause 4")
}
