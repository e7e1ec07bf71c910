package compliance

import (
	"encoding/json"
	"strings"

	"doccompliance/internal/models"
)

// ParseReport extracts the JSON object embedded in raw model output. It never
// fails: output without any "{" yields the degraded report, and text that
// looks like JSON but does not decode to an object yields the fallback report.
func ParseReport(raw string) models.ComplianceReport {
	start := strings.Index(raw, "{")
	if start == -1 {
		return models.DegradedReport(raw)
	}
	end := strings.LastIndex(raw, "}")
	if end < start {
		return models.FallbackReport(raw)
	}
	var report models.ComplianceReport
	if err := json.Unmarshal([]byte(raw[start:end+1]), &report); err != nil || report == nil {
		return models.FallbackReport(raw)
	}
	return report
}
