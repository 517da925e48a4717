package validation

import (
	"sort"
	"strings"
)

// FieldCount pairs a field name with its finding count, for the
// most-frequent ranking.
type FieldCount struct {
	Field string `json:"field"`
	Count int    `json:"count"`
}

// Summary is the derived view over one run's findings.
type Summary struct {
	Status               string         `json:"status"`
	TotalFindings        int            `json:"total_findings"`
	ByField              map[string]int `json:"by_field"`
	SeverityDistribution map[string]int `json:"severity_distribution"`
	MostCommon           []FieldCount   `json:"most_common"`
}

// Keywords whose presence in a message classifies the finding as blocking
// for the summary split. This reproduces the upstream policy of inferring
// severity from message text; the explicit Severity on each Finding is the
// cleaner signal for new callers.
var blockingKeywords = []string{"obligatorio", "formato", "tipo"}

func isBlockingMessage(message string) bool {
	lower := strings.ToLower(message)
	for _, keyword := range blockingKeywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}

// Summarize computes totals, the per-field breakdown, the severity split
// and the five most frequent fields. Informational markers (the success
// and stop markers) are excluded from the counts.
func Summarize(findings []Finding) Summary {
	summary := Summary{
		ByField:              map[string]int{},
		SeverityDistribution: map[string]int{string(SeverityBlocking): 0, string(SeverityAdvisory): 0},
	}

	for _, f := range findings {
		if f.Severity == SeverityInfo {
			continue
		}
		summary.TotalFindings++
		summary.ByField[f.Field]++
		if isBlockingMessage(f.Message) {
			summary.SeverityDistribution[string(SeverityBlocking)]++
		} else {
			summary.SeverityDistribution[string(SeverityAdvisory)]++
		}
	}

	if summary.TotalFindings == 0 {
		summary.Status = "success"
		return summary
	}
	summary.Status = "error"

	ranked := make([]FieldCount, 0, len(summary.ByField))
	for field, count := range summary.ByField {
		ranked = append(ranked, FieldCount{Field: field, Count: count})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return ranked[i].Field < ranked[j].Field
	})
	if len(ranked) > 5 {
		ranked = ranked[:5]
	}
	summary.MostCommon = ranked

	return summary
}
