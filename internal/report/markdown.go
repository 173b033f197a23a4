package report

import (
	"fmt"
	"os"
	"strings"

	"github.com/roivaz/repo-insights/internal/prstats"
)

// Markdown renders the report. summary is optional and adds a Summary
// section before the recommendations.
func Markdown(a prstats.Analysis, summary string) string {
	var b strings.Builder

	b.WriteString("# PR Analysis\n\n")
	b.WriteString("## Overview\n\n")
	fmt.Fprintf(&b, "- Pull requests analyzed: %d\n", a.Total)
	fmt.Fprintf(&b, "- Period: %s to %s\n\n", a.FirstMonth, a.LastMonth)

	b.WriteString(Tables(a))

	if s := strings.TrimSpace(summary); s != "" {
		b.WriteString("## Summary\n\n")
		b.WriteString(s)
		b.WriteString("\n\n")
	}

	writeRecommendations(&b, a)
	return b.String()
}

// Tables renders only the monthly and per-author tables.
func Tables(a prstats.Analysis) string {
	var b strings.Builder

	b.WriteString("## Monthly Statistics\n\n")
	table(&b, "Pull Requests", "Month", "PRs", len(a.Monthly), func(i int) (string, string) {
		return a.Monthly[i].Month, fmt.Sprintf("%d", a.Monthly[i].PRCount)
	})
	monthlyTable(&b, "Average Review Time (hours)", "Average hours", a.Monthly, func(m prstats.MonthStats) float64 { return m.AvgReviewHours })
	monthlyTable(&b, "Average Comments", "Average comments", a.Monthly, func(m prstats.MonthStats) float64 { return m.AvgComments })
	monthlyTable(&b, "Average Reviews", "Average reviews", a.Monthly, func(m prstats.MonthStats) float64 { return m.AvgReviews })
	monthlyTable(&b, "Average Changed Lines", "Average changed lines", a.Monthly, func(m prstats.MonthStats) float64 { return m.AvgChanges })

	b.WriteString("## Author Statistics\n\n")
	table(&b, "Pull Requests", "Author", "PRs", len(a.Authors), func(i int) (string, string) {
		return a.Authors[i].Name, fmt.Sprintf("%d", a.Authors[i].PRCount)
	})
	table(&b, "Average Review Time (hours)", "Author", "Average hours", len(a.Authors), func(i int) (string, string) {
		return a.Authors[i].Name, fmt.Sprintf("%.2f", a.Authors[i].AvgReviewHours)
	})
	return b.String()
}

func monthlyTable(b *strings.Builder, title, column string, months []prstats.MonthStats, value func(prstats.MonthStats) float64) {
	table(b, title, "Month", column, len(months), func(i int) (string, string) {
		return months[i].Month, fmt.Sprintf("%.2f", value(months[i]))
	})
}

func table(b *strings.Builder, title, keyCol, valueCol string, rows int, row func(int) (string, string)) {
	fmt.Fprintf(b, "### %s\n", title)
	fmt.Fprintf(b, "| %s | %s |\n", keyCol, valueCol)
	b.WriteString("|---|---|\n")
	for i := 0; i < rows; i++ {
		k, v := row(i)
		fmt.Fprintf(b, "| %s | %s |\n", escapeCell(k), v)
	}
	b.WriteString("\n")
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

func writeRecommendations(b *strings.Builder, a prstats.Analysis) {
	var firstChanges float64
	if len(a.Monthly) > 0 {
		firstChanges = a.Monthly[0].AvgChanges
	}

	b.WriteString("## Recommendations\n\n")
	b.WriteString("1. Make reviews more active\n")
	b.WriteString("   - Review comments are scarce; more active feedback is needed\n")
	b.WriteString("   - Request reviews explicitly\n\n")
	b.WriteString("2. Pull request size\n")
	fmt.Fprintf(b, "   - Average changed lines are on the large side at %.0f lines\n", firstChanges)
	b.WriteString("   - Consider splitting work into smaller pull requests\n\n")
	b.WriteString("3. Reviewer diversity\n")
	b.WriteString("   - Few review requests are made\n")
	b.WriteString("   - Assign more than one reviewer\n")
}

func WriteMarkdown(path string, a prstats.Analysis, summary string) error {
	if err := os.WriteFile(path, []byte(Markdown(a, summary)), 0o644); err != nil {
		return fmt.Errorf("write report %s: %w", path, err)
	}
	return nil
}
