package analysis

import (
	"strconv"
	"strings"
)

// RiskLevel is a categorical severity label such as HIGH, MEDIUM or LOW.
type RiskLevel string

const (
	RiskLow    RiskLevel = "LOW"
	RiskMedium RiskLevel = "MEDIUM"
	RiskHigh   RiskLevel = "HIGH"
)

// Class returns the lowercase form used for CSS classes.
func (l RiskLevel) Class() string { return strings.ToLower(string(l)) }

// Finding is one detected risk indicator in an uploaded document.
type Finding struct {
	Category    string    `json:"category"`
	Keyword     string    `json:"keyword"`
	Context     string    `json:"context"`
	Occurrences int       `json:"occurrences"`
	RiskLevel   RiskLevel `json:"risk_level"`
}

// Result is the analysis of one document, decoded from a single response.
type Result struct {
	RiskScore        float64              `json:"risk_score"`
	OverallRiskLevel RiskLevel            `json:"overall_risk_level"`
	Findings         []Finding            `json:"findings"`
	Recommendations  []string             `json:"recommendations"`
	Categories       map[string][]Finding `json:"categories,omitempty"`
	DocumentType     string               `json:"document_type,omitempty"`
	ProcessingTime   float64              `json:"processing_time,omitempty"`
}

// Score formats RiskScore without trailing zeros.
func (r *Result) Score() string {
	return strconv.FormatFloat(r.RiskScore, 'f', -1, 64)
}

// Response is the envelope returned by POST /upload/.
type Response struct {
	Filename string         `json:"filename,omitempty"`
	Analysis *Result        `json:"analysis"`
	Metadata map[string]any `json:"metadata,omitempty"`
	Status   string         `json:"status,omitempty"`
}
