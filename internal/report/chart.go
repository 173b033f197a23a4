package report

import (
	"fmt"
	"image/color"
	"os"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/roivaz/repo-insights/internal/prstats"
)

const (
	chartRows = 3
	chartCols = 2
	chartSize = 15 * vg.Inch
	barWidth  = 12 * vg.Millimeter
)

var barColor = color.RGBA{R: 31, G: 119, B: 180, A: 255}

type panel struct {
	title  string
	labels []string
	values plotter.Values
}

func panels(a prstats.Analysis) []panel {
	months := make([]string, len(a.Monthly))
	var count, hours, comments, reviews plotter.Values
	for i, m := range a.Monthly {
		months[i] = m.Month
		count = append(count, float64(m.PRCount))
		hours = append(hours, m.AvgReviewHours)
		comments = append(comments, m.AvgComments)
		reviews = append(reviews, m.AvgReviews)
	}

	authors := make([]string, len(a.Authors))
	var authorCount, authorHours plotter.Values
	for i, s := range a.Authors {
		authors[i] = s.Name
		authorCount = append(authorCount, float64(s.PRCount))
		authorHours = append(authorHours, s.AvgReviewHours)
	}

	return []panel{
		{"Number of PRs by Month", months, count},
		{"Average Review Time by Month (hours)", months, hours},
		{"Average Comments by Month", months, comments},
		{"Average Reviews by Month", months, reviews},
		{"Number of PRs by Author", authors, authorCount},
		{"Average Review Time by Author (hours)", authors, authorHours},
	}
}

func (p panel) plot() (*plot.Plot, error) {
	pl := plot.New()
	pl.Title.Text = p.title
	pl.X.Tick.Label.Rotation = 0.785 // 45 degrees
	pl.X.Tick.Label.XAlign = draw.XRight
	pl.Y.Min = 0

	if len(p.values) == 0 {
		return pl, nil
	}
	bars, err := plotter.NewBarChart(p.values, barWidth)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p.title, err)
	}
	bars.LineStyle.Width = 0
	bars.Color = barColor
	pl.Add(bars)
	pl.NominalX(p.labels...)
	return pl, nil
}

// WriteChart draws the six statistics panels into a PNG at path.
func WriteChart(path string, a prstats.Analysis) error {
	all := panels(a)
	plots := make([][]*plot.Plot, chartRows)
	for r := range plots {
		plots[r] = make([]*plot.Plot, chartCols)
		for c := range plots[r] {
			pl, err := all[r*chartCols+c].plot()
			if err != nil {
				return err
			}
			plots[r][c] = pl
		}
	}

	img := vgimg.New(chartSize, chartSize)
	dc := draw.New(img)
	tiles := draw.Tiles{
		Rows: chartRows,
		Cols: chartCols,
		PadX: vg.Millimeter * 4,
		PadY: vg.Millimeter * 4,
	}
	canvases := plot.Align(plots, tiles, dc)
	for r := range plots {
		for c := range plots[r] {
			plots[r][c].Draw(canvases[r][c])
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create chart %s: %w", path, err)
	}
	defer f.Close()
	if _, err := (vgimg.PngCanvas{Canvas: img}).WriteTo(f); err != nil {
		return fmt.Errorf("write chart %s: %w", path, err)
	}
	return f.Close()
}
