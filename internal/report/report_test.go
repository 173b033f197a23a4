package report

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roivaz/repo-insights/internal/prstats"
)

func sampleAnalysis() prstats.Analysis {
	return prstats.Analysis{
		Total:      5,
		FirstMonth: "2024-01",
		LastMonth:  "2024-02",
		Monthly: []prstats.MonthStats{
			{Month: "2024-01", PRCount: 3, AvgReviewHours: 10.5, AvgComments: 1, AvgReviews: 2, AvgReviewRequests: 0.5, AvgChanges: 420.6},
			{Month: "2024-02", PRCount: 2, AvgReviewHours: 4, AvgComments: 0.5, AvgReviews: 1, AvgChanges: 80},
		},
		Authors: []prstats.AuthorStats{
			{Name: "Alice Doe", PRCount: 4, AvgReviewHours: 8.25},
			{Name: "bob", PRCount: 1, AvgReviewHours: 2},
		},
	}
}

func TestMarkdownHeadings(t *testing.T) {
	md := Markdown(sampleAnalysis(), "")

	for _, heading := range []string{
		"# PR Analysis\n",
		"## Overview\n",
		"## Monthly Statistics\n",
		"### Pull Requests\n",
		"### Average Review Time (hours)\n",
		"### Average Comments\n",
		"### Average Reviews\n",
		"### Average Changed Lines\n",
		"## Author Statistics\n",
		"## Recommendations\n",
	} {
		assert.Contains(t, md, heading)
	}
	assert.NotContains(t, md, "## Summary")
	assert.Contains(t, md, "- Pull requests analyzed: 5\n")
	assert.Contains(t, md, "- Period: 2024-01 to 2024-02\n")
	assert.Contains(t, md, "| 2024-01 | 3 |\n")
	assert.Contains(t, md, "| 2024-01 | 10.50 |\n")
	assert.Contains(t, md, "| Alice Doe | 8.25 |\n")
	assert.Contains(t, md, "at 421 lines")
	assert.Less(t, strings.Index(md, "## Monthly Statistics"), strings.Index(md, "## Author Statistics"))
}

func TestMarkdownSummary(t *testing.T) {
	md := Markdown(sampleAnalysis(), "  Latency improved.\n")
	assert.Contains(t, md, "## Summary\n\nLatency improved.\n\n## Recommendations")
}

func TestWriteMarkdown(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pr_analysis.md")
	require.NoError(t, WriteMarkdown(path, sampleAnalysis(), ""))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "# PR Analysis"))
}

func TestPrintConsole(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, PrintConsole(&buf, sampleAnalysis()))
	out := buf.String()

	assert.Contains(t, out, "PRs per month:\n2024-01 3\n2024-02 2\n")
	assert.Contains(t, out, "Average review requests per month:\n2024-01 0.50\n")
	assert.Contains(t, out, "Average changed lines per month:\n2024-01 420.60\n")
	assert.Contains(t, out, "PRs per author:\nAlice Doe 4\nbob 1\n")
}

func TestWriteChart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pr_analysis.png")
	require.NoError(t, WriteChart(path, sampleAnalysis()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Greater(t, len(data), 8)
	assert.Equal(t, []byte("\x89PNG"), data[:4])
}
