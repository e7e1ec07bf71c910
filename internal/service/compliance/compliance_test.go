package compliance

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/cloudwego/eino/schema"

	"doccompliance/internal/models"
	"doccompliance/internal/service/ai"
)

type recordingCompleter struct {
	reply     string
	err       error
	prompts   []string
	maxTokens []int
}

func (r *recordingCompleter) Complete(ctx context.Context, messages []*schema.Message, maxTokens int) (string, error) {
	var b strings.Builder
	for _, m := range messages {
		b.WriteString(m.Content)
	}
	r.prompts = append(r.prompts, b.String())
	r.maxTokens = append(r.maxTokens, maxTokens)
	return r.reply, r.err
}

func TestParseReport(t *testing.T) {
	t.Run("no braces", func(t *testing.T) {
		r := ParseReport("no braces")
		if len(r.Violations()) != 1 || r.Violations()[0].Issue != "Analysis completed" {
			t.Fatalf("expected degraded report, got %+v", r)
		}
		if r.Summary() != "no braces" {
			t.Fatalf("summary should carry raw output, got %q", r.Summary())
		}
	})
	t.Run("empty", func(t *testing.T) {
		r := ParseReport("")
		if len(r.Violations()) != 1 || len(r.Suggestions()) != 1 {
			t.Fatalf("expected degraded report, got %+v", r)
		}
	})
	t.Run("malformed", func(t *testing.T) {
		r := ParseReport("{malformed")
		if r.OverallCompliance() != models.StatusNonCompliant {
			t.Fatalf("unexpected status %q", r.OverallCompliance())
		}
		if len(r.Violations()) != 0 || len(r.Suggestions()) != 0 {
			t.Fatalf("expected fallback report, got %+v", r)
		}
		if r.Summary() != "{malformed" {
			t.Fatalf("unexpected summary %q", r.Summary())
		}
	})
	t.Run("invalid object", func(t *testing.T) {
		r := ParseReport("prefix {not: json} suffix")
		if score, _ := r.Score(); score != models.FallbackScore || len(r.Violations()) != 0 {
			t.Fatalf("expected fallback report, got %+v", r)
		}
	})
	t.Run("reversed braces", func(t *testing.T) {
		r := ParseReport("} then {")
		if len(r.Violations()) != 0 || r.Summary() != "} then {" {
			t.Fatalf("expected fallback report, got %+v", r)
		}
	})
	t.Run("embedded object", func(t *testing.T) {
		raw := "Here is the report:\n```json\n" +
			`{"overall_compliance":"COMPLIANT","compliance_score":95,"violations":[],"suggestions":["Keep it up"],"summary":"Good","extra":{"nested":true}}` +
			"\n```"
		r := ParseReport(raw)
		if r.OverallCompliance() != models.StatusCompliant {
			t.Fatalf("unexpected status %q", r.OverallCompliance())
		}
		if score, ok := r.Score(); !ok || score != 95 {
			t.Fatalf("unexpected score %d", score)
		}
		if _, ok := r["extra"]; !ok {
			t.Fatalf("unknown keys should pass through verbatim")
		}
	})
	t.Run("malformed fields pass through", func(t *testing.T) {
		r := ParseReport(`{"overall_compliance":"MAYBE","compliance_score":"lots","violations":"none"}`)
		if r.OverallCompliance() != "MAYBE" || r[models.KeyComplianceScore] != "lots" {
			t.Fatalf("fields should not be validated: %+v", r)
		}
		if r.Violations() != nil {
			t.Fatalf("non-list violations should read as empty")
		}
	})
}

func TestCheckComplianceTruncatesExcerpt(t *testing.T) {
	rec := &recordingCompleter{reply: `{"overall_compliance":"COMPLIANT","compliance_score":100,"violations":[],"suggestions":[],"summary":"fine"}`}
	checker := NewChecker(rec, nil)

	head := strings.Repeat("a", excerptChars)
	text := head + "TAIL-MARKER"
	report, err := checker.CheckCompliance(context.Background(), text)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if report.Summary() != "fine" {
		t.Fatalf("unexpected report %+v", report)
	}
	prompt := rec.prompts[0]
	if !strings.Contains(prompt, head+"...") {
		t.Fatalf("prompt should carry the first %d characters", excerptChars)
	}
	if strings.Contains(prompt, "TAIL-MARKER") {
		t.Fatalf("prompt must not carry text past the excerpt")
	}
	if !strings.Contains(prompt, "Use active voice when possible") {
		t.Fatalf("prompt should embed the guidelines")
	}
	if !strings.Contains(prompt, `"overall_compliance"`) {
		t.Fatalf("prompt should describe the report schema")
	}
	if rec.maxTokens[0] != checkMaxTokens {
		t.Fatalf("unexpected max tokens %d", rec.maxTokens[0])
	}
}

func TestCheckComplianceExcerptIsRuneSafe(t *testing.T) {
	rec := &recordingCompleter{reply: "plain"}
	checker := NewChecker(rec, nil)
	text := strings.Repeat("é", excerptChars+10)
	if _, err := checker.CheckCompliance(context.Background(), text); err != nil {
		t.Fatalf("check: %v", err)
	}
	if !strings.Contains(rec.prompts[0], strings.Repeat("é", excerptChars)+"...") {
		t.Fatalf("excerpt should count characters, not bytes")
	}
}

func TestCheckComplianceDegradesOnPlainText(t *testing.T) {
	rec := &recordingCompleter{reply: "The document looks fine overall."}
	report, err := NewChecker(rec, nil).CheckCompliance(context.Background(), "The cat sat on mat.")
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if report.Summary() != "The document looks fine overall." || len(report.Violations()) != 1 {
		t.Fatalf("expected degraded report, got %+v", report)
	}
}

func TestCheckCompliancePropagatesUpstreamErrors(t *testing.T) {
	rec := &recordingCompleter{err: ai.ErrServiceUnavailable}
	_, err := NewChecker(rec, nil).CheckCompliance(context.Background(), "text")
	if !errors.Is(err, ai.ErrServiceUnavailable) {
		t.Fatalf("expected ErrServiceUnavailable, got %v", err)
	}
}

func TestRewriteDocumentPrompt(t *testing.T) {
	rec := &recordingCompleter{reply: "  Corrected text.\n"}
	checker := NewChecker(rec, nil)
	report := models.NewReport(models.StatusNonCompliant, 40, []models.Violation{
		{Category: "Grammar", Issue: "Missing article before mat", Location: "Sentence 1", Severity: models.SeverityLow},
		{Category: "Writing", Issue: "Run-on sentence", Location: "Paragraph 2", Severity: models.SeverityHigh},
	}, nil, "needs work")

	full := strings.Repeat("word ", 1000) + "END-OF-DOC"
	out, err := checker.RewriteDocument(context.Background(), full, report)
	if err != nil {
		t.Fatalf("rewrite: %v", err)
	}
	if out != "  Corrected text.\n" {
		t.Fatalf("rewrite output must be returned verbatim, got %q", out)
	}
	prompt := rec.prompts[0]
	if !strings.Contains(prompt, "- Missing article before mat\n- Run-on sentence") {
		t.Fatalf("prompt should list violation issues:\n%s", prompt)
	}
	if !strings.Contains(prompt, "END-OF-DOC") {
		t.Fatalf("rewrite prompt should carry the full document")
	}
	if rec.maxTokens[0] != rewriteMaxTokens {
		t.Fatalf("unexpected max tokens %d", rec.maxTokens[0])
	}
}

func TestRewriteDocumentPropagatesErrors(t *testing.T) {
	rec := &recordingCompleter{err: ai.ErrInvalidResponse}
	_, err := NewChecker(rec, nil).RewriteDocument(context.Background(), "text", models.FallbackReport("x"))
	if !errors.Is(err, ai.ErrInvalidResponse) {
		t.Fatalf("expected ErrInvalidResponse, got %v", err)
	}
}
