package compliance

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/schema"
	"go.uber.org/zap"

	"doccompliance/internal/models"
	"doccompliance/internal/service/ai"
)

const (
	checkMaxTokens   = 2000
	rewriteMaxTokens = 3000
	// excerptChars bounds how much of the document the check prompt carries.
	excerptChars = 3000
)

// Checker runs the compliance check and rewrite prompts against the upstream model.
type Checker struct {
	client ai.Completer
	logger *zap.Logger
}

func NewChecker(client ai.Completer, logger *zap.Logger) *Checker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Checker{client: client, logger: logger}
}

// CheckCompliance asks the model to grade the opening of documentText and
// parses the answer into a report.
func (c *Checker) CheckCompliance(ctx context.Context, documentText string) (models.ComplianceReport, error) {
	if c.client == nil {
		return nil, errors.New("completion client not configured")
	}
	prompt := buildCheckPrompt(documentText)
	raw, err := c.client.Complete(ctx, []*schema.Message{schema.UserMessage(prompt)}, checkMaxTokens)
	if err != nil {
		return nil, fmt.Errorf("check compliance: %w", err)
	}
	report := ParseReport(raw)
	c.logger.Info("compliance check finished",
		zap.String("overall_compliance", report.OverallCompliance()),
		zap.Int("violations", len(report.Violations())),
	)
	return report, nil
}

// RewriteDocument asks the model for a corrected version of the full text.
// The answer is returned verbatim.
func (c *Checker) RewriteDocument(ctx context.Context, documentText string, report models.ComplianceReport) (string, error) {
	if c.client == nil {
		return "", errors.New("completion client not configured")
	}
	prompt := buildRewritePrompt(documentText, report)
	out, err := c.client.Complete(ctx, []*schema.Message{schema.UserMessage(prompt)}, rewriteMaxTokens)
	if err != nil {
		return "", fmt.Errorf("rewrite document: %w", err)
	}
	return out, nil
}

func buildCheckPrompt(documentText string) string {
	var b strings.Builder
	b.WriteString("You are an expert English language compliance checker. ")
	b.WriteString("Analyze the following document text against these guidelines:\n")
	b.WriteString(Guidelines)
	b.WriteString("\nDocument Text:\n")
	b.WriteString(truncateRunes(documentText, excerptChars))
	b.WriteString("...\n\n")
	b.WriteString("Please provide a detailed compliance report in the following JSON format:\n")
	b.WriteString(reportSchema)
	b.WriteString("\n\nFocus on identifying specific violations and provide actionable feedback.\n")
	return b.String()
}

func buildRewritePrompt(documentText string, report models.ComplianceReport) string {
	var b strings.Builder
	b.WriteString("You are an expert English editor. ")
	b.WriteString("Please rewrite the following document to comply with English writing guidelines.\n\n")
	b.WriteString("Original Guidelines Violations:\n")
	issues := make([]string, 0)
	for _, v := range report.Violations() {
		issues = append(issues, "- "+v.Issue)
	}
	b.WriteString(strings.Join(issues, "\n"))
	b.WriteString("\n\nOriginal Document:\n")
	b.WriteString(documentText)
	b.WriteString("\n\n")
	b.WriteString("Please provide a corrected version that addresses all compliance issues ")
	b.WriteString("while maintaining the original meaning and intent.\n")
	b.WriteString("Focus on:\n")
	b.WriteString("- Fixing grammar errors\n")
	b.WriteString("- Improving sentence structure\n")
	b.WriteString("- Enhancing clarity\n")
	b.WriteString("- Correcting spelling and punctuation\n")
	b.WriteString("- Maintaining logical flow\n\n")
	b.WriteString("Return only the corrected document text without additional commentary.\n")
	return b.String()
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
