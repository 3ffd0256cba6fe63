package exchange

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/custodia-labs/codebook/internal/core/domain"
)

const (
	codesHeader    = "Code,Frequency,Document Count,Level,Parent"
	researchHeader = "Timestamp,Participant ID,Action,Document ID,Excerpt ID,Code ID,Code Name,AI Suggestion,AI Accepted,Duration,Excerpt Length"

	// isoMillis matches the millisecond ISO-8601 timestamps of research exports.
	isoMillis = "2006-01-02T15:04:05.000Z07:00"
)

// quote wraps a CSV field in quotes, doubling embedded quotes.
func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// CodesCSV renders the codebook with its usage counts.
// Name and parent name are always quoted; the parent column is empty for
// codes without a (surviving) parent.
func CodesCSV(codes []domain.Code) string {
	names := make(map[string]string, len(codes))
	for _, c := range codes {
		names[c.ID] = c.Name
	}

	lines := []string{codesHeader}
	for _, c := range codes {
		lines = append(lines, fmt.Sprintf("%s,%d,%d,%s,%s",
			quote(c.Name), c.Frequency, c.DocumentCount, c.Level, quote(names[c.ParentID])))
	}
	return strings.Join(lines, "\n")
}

// ResearchCSV renders analytics log entries, one fully quoted row each,
// followed by a summary block when metrics is non-nil.
func ResearchCSV(logs []domain.AnalyticsLog, metrics *domain.ResearchMetrics, aiEnabled bool) string {
	lines := []string{researchHeader}
	for _, l := range logs {
		accepted := ""
		if l.Details.SuggestionAccepted != nil {
			accepted = strconv.FormatBool(*l.Details.SuggestionAccepted)
		}
		row := []string{
			l.Timestamp.UTC().Format(isoMillis),
			l.ParticipantID,
			l.Action.String(),
			l.Details.DocumentID,
			l.Details.ExcerptID,
			l.Details.CodeID,
			l.Details.CodeName,
			l.Details.AISuggestion,
			accepted,
			blankZero(l.Details.Duration.Milliseconds()),
			blankZero(int64(l.Details.ExcerptLength)),
		}
		for i, v := range row {
			row[i] = quote(v)
		}
		lines = append(lines, strings.Join(row, ","))
	}

	if metrics != nil {
		yesNo := "No"
		if aiEnabled {
			yesNo = "Yes"
		}
		lines = append(lines,
			"",
			"SUMMARY METRICS",
			"Participant ID,"+quote(metrics.ParticipantID),
			fmt.Sprintf("Total Excerpts,%d", metrics.TotalExcerpts),
			fmt.Sprintf("Total Codes,%d", metrics.TotalCodes),
			fmt.Sprintf("Unique Codes,%d", metrics.UniqueCodes),
			fmt.Sprintf("Coding Speed (per hour),%.2f", metrics.CodingSpeed),
			"AI Enabled,"+yesNo,
			fmt.Sprintf("AI Suggestions Requested,%d", metrics.AISuggestionsRequested),
			fmt.Sprintf("AI Suggestions Accepted,%d", metrics.AISuggestionsAccepted),
			fmt.Sprintf("AI Acceptance Rate,%.1f%%", metrics.AIAcceptanceRate*100),
			fmt.Sprintf("Total Active Time (minutes),%.2f", metrics.TotalActiveTime.Minutes()),
			fmt.Sprintf("Average Time Per Excerpt (seconds),%.2f", metrics.AverageTimePerExcerpt.Seconds()),
			fmt.Sprintf("Documents Processed,%d", metrics.DocumentsProcessed),
			fmt.Sprintf("Total Text Coded (characters),%d", metrics.TotalTextCoded),
		)
	}
	return strings.Join(lines, "\n")
}

func blankZero(n int64) string {
	if n == 0 {
		return ""
	}
	return strconv.FormatInt(n, 10)
}
