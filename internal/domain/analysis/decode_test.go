package analysis

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleBody = `{
  "filename": "lease.pdf",
  "analysis": {
    "risk_score": 7,
    "overall_risk_level": "High",
    "findings": [
      {"category": "Termination", "keyword": "at-will", "context": "...", "occurrences": 3, "risk_level": "High"}
    ],
    "categories": {
      "Termination": [
        {"category": "Termination", "keyword": "at-will", "context": "...", "occurrences": 3, "risk_level": "High"}
      ]
    },
    "recommendations": ["Review clause 4"],
    "document_type": "LEASE",
    "processing_time": 0.42
  },
  "metadata": {"pages": 2},
  "status": "COMPLETED"
}`

func TestDecode_ValidEnvelope(t *testing.T) {
	resp, err := Decode(strings.NewReader(sampleBody))
	require.NoError(t, err)

	assert.Equal(t, "lease.pdf", resp.Filename)
	assert.Equal(t, "COMPLETED", resp.Status)
	res := resp.Analysis
	assert.Equal(t, "7", res.Score())
	assert.Equal(t, RiskLevel("High"), res.OverallRiskLevel)
	assert.Equal(t, "high", res.OverallRiskLevel.Class())
	require.Len(t, res.Findings, 1)
	assert.Equal(t, Finding{Category: "Termination", Keyword: "at-will", Context: "...", Occurrences: 3, RiskLevel: "High"}, res.Findings[0])
	assert.Equal(t, []string{"Review clause 4"}, res.Recommendations)
	assert.Len(t, res.Categories["Termination"], 1)
	assert.Equal(t, "LEASE", res.DocumentType)
}

func TestDecode_TrailingWhitespaceIsValid(t *testing.T) {
	resp, err := Decode(strings.NewReader(sampleBody + "\n\n"))
	require.NoError(t, err)
	assert.Equal(t, "lease.pdf", resp.Filename)
}

func TestDecode_EmptyListsAreValid(t *testing.T) {
	resp, err := Decode(strings.NewReader(`{"analysis":{"risk_score":0,"overall_risk_level":"LOW","findings":[],"recommendations":[]}}`))
	require.NoError(t, err)
	assert.Empty(t, resp.Analysis.Findings)
	assert.Empty(t, resp.Analysis.Recommendations)
}

func TestDecode_MissingContextDefaultsToEmpty(t *testing.T) {
	resp, err := Decode(strings.NewReader(`{"analysis":{"risk_score":2.5,"overall_risk_level":"LOW","findings":[{"category":"c","keyword":"k","occurrences":1,"risk_level":"LOW"}],"recommendations":[]}}`))
	require.NoError(t, err)
	assert.Equal(t, "", resp.Analysis.Findings[0].Context)
	assert.Equal(t, "2.5", resp.Analysis.Score())
}

func TestDecode_Malformed(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		field string
	}{
		{name: "not json", body: `<html>oops</html>`, field: "body"},
		{name: "trailing html", body: `{"analysis":{"risk_score":1,"overall_risk_level":"LOW","findings":[],"recommendations":[]}} <html>oops`, field: "body"},
		{name: "second value", body: `{"analysis":{"risk_score":1,"overall_risk_level":"LOW","findings":[],"recommendations":[]}}{}`, field: "body"},
		{name: "no analysis", body: `{"detail":"x"}`, field: "analysis"},
		{name: "null analysis", body: `{"analysis":null}`, field: "analysis"},
		{name: "missing score", body: `{"analysis":{"overall_risk_level":"LOW","findings":[],"recommendations":[]}}`, field: "analysis.risk_score"},
		{name: "string score", body: `{"analysis":{"risk_score":"7","overall_risk_level":"LOW","findings":[],"recommendations":[]}}`, field: "analysis.risk_score"},
		{name: "negative score", body: `{"analysis":{"risk_score":-1,"overall_risk_level":"LOW","findings":[],"recommendations":[]}}`, field: "analysis.risk_score"},
		{name: "missing level", body: `{"analysis":{"risk_score":1,"findings":[],"recommendations":[]}}`, field: "analysis.overall_risk_level"},
		{name: "unsafe level", body: `{"analysis":{"risk_score":1,"overall_risk_level":"high x","findings":[],"recommendations":[]}}`, field: "analysis.overall_risk_level"},
		{name: "missing findings", body: `{"analysis":{"risk_score":1,"overall_risk_level":"LOW","recommendations":[]}}`, field: "analysis.findings"},
		{name: "missing recommendations", body: `{"analysis":{"risk_score":1,"overall_risk_level":"LOW","findings":[]}}`, field: "analysis.recommendations"},
		{name: "null recommendation", body: `{"analysis":{"risk_score":1,"overall_risk_level":"LOW","findings":[],"recommendations":[null]}}`, field: "analysis.recommendations[0]"},
		{name: "finding without keyword", body: `{"analysis":{"risk_score":1,"overall_risk_level":"LOW","findings":[{"category":"c","occurrences":1,"risk_level":"LOW"}],"recommendations":[]}}`, field: "analysis.findings[0].keyword"},
		{name: "finding without occurrences", body: `{"analysis":{"risk_score":1,"overall_risk_level":"LOW","findings":[{"category":"c","keyword":"k","risk_level":"LOW"}],"recommendations":[]}}`, field: "analysis.findings[0].occurrences"},
		{name: "finding without level", body: `{"analysis":{"risk_score":1,"overall_risk_level":"LOW","findings":[{"category":"c","keyword":"k","occurrences":1}],"recommendations":[]}}`, field: "analysis.findings[0].risk_level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := Decode(strings.NewReader(tt.body))

			assert.Nil(t, resp)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMalformedResponse))
			var ve *ValidationError
			require.True(t, errors.As(err, &ve))
			assert.Equal(t, tt.field, ve.Field)
		})
	}
}

func TestStatusError_Unwraps(t *testing.T) {
	err := error(&StatusError{Code: 500, Body: "boom"})
	assert.True(t, errors.Is(err, ErrUpstreamStatus))
	assert.Equal(t, "HTTP error! status: 500: boom", err.Error())
}
