package models

import (
	"encoding/json"
	"math"
)

const (
	StatusCompliant    = "COMPLIANT"
	StatusNonCompliant = "NON_COMPLIANT"
)

type Severity string

const (
	SeverityHigh   Severity = "High"
	SeverityMedium Severity = "Medium"
	SeverityLow    Severity = "Low"
)

// Report keys returned by the model.
const (
	KeyOverallCompliance = "overall_compliance"
	KeyComplianceScore   = "compliance_score"
	KeyViolations        = "violations"
	KeySuggestions       = "suggestions"
	KeySummary           = "summary"
)

// FallbackScore is reported whenever the model output could not be decoded.
const FallbackScore = 70

type Violation struct {
	Category string   `json:"category"`
	Issue    string   `json:"issue"`
	Location string   `json:"location"`
	Severity Severity `json:"severity"`
}

// ComplianceReport is the decoded model assessment. It is kept as a generic
// object so fields the model got wrong are passed through untouched.
type ComplianceReport map[string]any

// NewReport builds a report with the five well-known keys.
func NewReport(status string, score int, violations []Violation, suggestions []string, summary string) ComplianceReport {
	vs := make([]any, 0, len(violations))
	for _, v := range violations {
		vs = append(vs, map[string]any{
			"category": v.Category,
			"issue":    v.Issue,
			"location": v.Location,
			"severity": string(v.Severity),
		})
	}
	ss := make([]any, 0, len(suggestions))
	for _, s := range suggestions {
		ss = append(ss, s)
	}
	return ComplianceReport{
		KeyOverallCompliance: status,
		KeyComplianceScore:   score,
		KeyViolations:        vs,
		KeySuggestions:       ss,
		KeySummary:           summary,
	}
}

// FallbackReport is used when the model output contained JSON-looking text that failed to decode.
func FallbackReport(raw string) ComplianceReport {
	return NewReport(StatusNonCompliant, FallbackScore, nil, nil, raw)
}

// DegradedReport is used when the model output contained no JSON object at all.
func DegradedReport(raw string) ComplianceReport {
	return NewReport(StatusNonCompliant, FallbackScore,
		[]Violation{{Category: "General", Issue: "Analysis completed", Location: "Document", Severity: SeverityMedium}},
		[]string{"Review document for compliance"},
		raw,
	)
}

func (r ComplianceReport) OverallCompliance() string {
	s, _ := r[KeyOverallCompliance].(string)
	return s
}

func (r ComplianceReport) Summary() string {
	s, _ := r[KeySummary].(string)
	return s
}

// Score returns the compliance score when it is numeric.
func (r ComplianceReport) Score() (int, bool) {
	switch v := r[KeyComplianceScore].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(math.Round(v)), true
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0, false
		}
		return int(math.Round(f)), true
	default:
		return 0, false
	}
}

// Violations decodes the violation list, skipping entries that are not objects.
func (r ComplianceReport) Violations() []Violation {
	items, ok := r[KeyViolations].([]any)
	if !ok {
		return nil
	}
	out := make([]Violation, 0, len(items))
	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		out = append(out, Violation{
			Category: stringField(obj, "category"),
			Issue:    stringField(obj, "issue"),
			Location: stringField(obj, "location"),
			Severity: Severity(stringField(obj, "severity")),
		})
	}
	return out
}

// Suggestions returns the string entries of the suggestion list.
func (r ComplianceReport) Suggestions() []string {
	items, ok := r[KeySuggestions].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func stringField(obj map[string]any, key string) string {
	s, _ := obj[key].(string)
	return s
}
