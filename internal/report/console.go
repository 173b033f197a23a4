// Package report renders an analysis as console text, a markdown document
// and a bar-chart image.
package report

import (
	"fmt"
	"io"

	"github.com/roivaz/repo-insights/internal/prstats"
)

// PrintConsole writes every statistic as a heading followed by one
// "key value" row per bucket.
func PrintConsole(w io.Writer, a prstats.Analysis) error {
	p := &printer{w: w}
	p.printf("=== PR Analysis ===\n")

	p.section("PRs per month")
	for _, m := range a.Monthly {
		p.printf("%s %d\n", m.Month, m.PRCount)
	}
	p.monthly("Average review time per month (hours)", a.Monthly, func(m prstats.MonthStats) float64 { return m.AvgReviewHours })
	p.monthly("Average comments per month", a.Monthly, func(m prstats.MonthStats) float64 { return m.AvgComments })
	p.monthly("Average reviews per month", a.Monthly, func(m prstats.MonthStats) float64 { return m.AvgReviews })
	p.monthly("Average review requests per month", a.Monthly, func(m prstats.MonthStats) float64 { return m.AvgReviewRequests })
	p.monthly("Average changed lines per month", a.Monthly, func(m prstats.MonthStats) float64 { return m.AvgChanges })

	p.section("PRs per author")
	for _, s := range a.Authors {
		p.printf("%s %d\n", s.Name, s.PRCount)
	}
	p.section("Average review time per author (hours)")
	for _, s := range a.Authors {
		p.printf("%s %.2f\n", s.Name, s.AvgReviewHours)
	}
	return p.err
}

// printer keeps the first write error so callers check once.
type printer struct {
	w   io.Writer
	err error
}

func (p *printer) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}

func (p *printer) section(title string) {
	p.printf("\n%s:\n", title)
}

func (p *printer) monthly(title string, months []prstats.MonthStats, value func(prstats.MonthStats) float64) {
	p.section(title)
	for _, m := range months {
		p.printf("%s %.2f\n", m.Month, value(m))
	}
}
