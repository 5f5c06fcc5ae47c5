package analysis

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"regexp"
)

var classToken = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

type wireEnvelope struct {
	Filename string         `json:"filename"`
	Analysis *wireResult    `json:"analysis"`
	Metadata map[string]any `json:"metadata"`
	Status   string         `json:"status"`
}

type wireResult struct {
	RiskScore        *float64                  `json:"risk_score"`
	OverallRiskLevel *string                   `json:"overall_risk_level"`
	Findings         *[]*wireFinding           `json:"findings"`
	Recommendations  *[]*string                `json:"recommendations"`
	Categories       map[string][]*wireFinding `json:"categories"`
	DocumentType     string                    `json:"document_type"`
	ProcessingTime   float64                   `json:"processing_time"`
}

type wireFinding struct {
	Category    *string `json:"category"`
	Keyword     *string `json:"keyword"`
	Context     *string `json:"context"`
	Occurrences *int    `json:"occurrences"`
	RiskLevel   *string `json:"risk_level"`
}

// Decode reads an upload response envelope and checks it against the
// analysis schema. Every failure wraps ErrMalformedResponse.
func Decode(r io.Reader) (*Response, error) {
	var env wireEnvelope
	dec := json.NewDecoder(r)
	if err := dec.Decode(&env); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return nil, &ValidationError{Field: typeErr.Field, Reason: "expected " + typeErr.Type.String()}
		}
		return nil, &ValidationError{Field: "body", Reason: err.Error()}
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return nil, &ValidationError{Field: "body", Reason: "trailing data after JSON value"}
	}
	if env.Analysis == nil {
		return nil, &ValidationError{Field: "analysis", Reason: "missing"}
	}

	res, err := env.Analysis.result()
	if err != nil {
		return nil, err
	}
	return &Response{
		Filename: env.Filename,
		Analysis: res,
		Metadata: env.Metadata,
		Status:   env.Status,
	}, nil
}

func (w *wireResult) result() (*Result, error) {
	if w.RiskScore == nil {
		return nil, &ValidationError{Field: "analysis.risk_score", Reason: "missing"}
	}
	if math.IsNaN(*w.RiskScore) || math.IsInf(*w.RiskScore, 0) || *w.RiskScore < 0 {
		return nil, &ValidationError{Field: "analysis.risk_score", Reason: "must be a non-negative number"}
	}
	level, err := riskLevel("analysis.overall_risk_level", w.OverallRiskLevel)
	if err != nil {
		return nil, err
	}
	if w.Findings == nil {
		return nil, &ValidationError{Field: "analysis.findings", Reason: "missing"}
	}
	if w.Recommendations == nil {
		return nil, &ValidationError{Field: "analysis.recommendations", Reason: "missing"}
	}

	res := &Result{
		RiskScore:        *w.RiskScore,
		OverallRiskLevel: level,
		Findings:         make([]Finding, 0, len(*w.Findings)),
		Recommendations:  make([]string, 0, len(*w.Recommendations)),
		DocumentType:     w.DocumentType,
		ProcessingTime:   w.ProcessingTime,
	}
	for i, wf := range *w.Findings {
		f, err := wf.finding(fmt.Sprintf("analysis.findings[%d]", i))
		if err != nil {
			return nil, err
		}
		res.Findings = append(res.Findings, f)
	}
	for i, rec := range *w.Recommendations {
		if rec == nil {
			return nil, &ValidationError{Field: fmt.Sprintf("analysis.recommendations[%d]", i), Reason: "null"}
		}
		res.Recommendations = append(res.Recommendations, *rec)
	}
	if len(w.Categories) > 0 {
		res.Categories = make(map[string][]Finding, len(w.Categories))
		for cat, list := range w.Categories {
			out := make([]Finding, 0, len(list))
			for i, wf := range list {
				f, err := wf.finding(fmt.Sprintf("analysis.categories[%s][%d]", cat, i))
				if err != nil {
					return nil, err
				}
				out = append(out, f)
			}
			res.Categories[cat] = out
		}
	}
	return res, nil
}

func (w *wireFinding) finding(path string) (Finding, error) {
	if w == nil {
		return Finding{}, &ValidationError{Field: path, Reason: "null"}
	}
	if w.Category == nil {
		return Finding{}, &ValidationError{Field: path + ".category", Reason: "missing"}
	}
	if w.Keyword == nil || *w.Keyword == "" {
		return Finding{}, &ValidationError{Field: path + ".keyword", Reason: "missing"}
	}
	if w.Occurrences == nil {
		return Finding{}, &ValidationError{Field: path + ".occurrences", Reason: "missing"}
	}
	if *w.Occurrences < 0 {
		return Finding{}, &ValidationError{Field: path + ".occurrences", Reason: "negative"}
	}
	level, err := riskLevel(path+".risk_level", w.RiskLevel)
	if err != nil {
		return Finding{}, err
	}
	f := Finding{
		Category:    *w.Category,
		Keyword:     *w.Keyword,
		Occurrences: *w.Occurrences,
		RiskLevel:   level,
	}
	if w.Context != nil {
		f.Context = *w.Context
	}
	return f, nil
}

func riskLevel(path string, v *string) (RiskLevel, error) {
	if v == nil || *v == "" {
		return "", &ValidationError{Field: path, Reason: "missing"}
	}
	if !classToken.MatchString(*v) {
		return "", &ValidationError{Field: path, Reason: fmt.Sprintf("invalid risk level %q", *v)}
	}
	return RiskLevel(*v), nil
}
