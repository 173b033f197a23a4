package depgraph

import (
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// Image size in inches.
type Size struct {
	Width  vg.Length
	Height vg.Length
}

var (
	PackageImageSize = Size{Width: 12 * vg.Inch, Height: 10 * vg.Inch}
	SourceImageSize  = Size{Width: 14 * vg.Inch, Height: 12 * vg.Inch}
)

const (
	nodeRadius = 10 // points
	arrowFrac  = 0.025
	marginFrac = 0.08
)

// Render draws g to path; the image format follows the file extension.
func Render(g *Graph, role RoleFunc, legend []Role, size Size, path string) error {
	p, err := g.plot(role, legend)
	if err != nil {
		return err
	}
	if err := p.Save(size.Width, size.Height, path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}

func (g *Graph) plot(role RoleFunc, legend []Role) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = g.Title
	p.Title.TextStyle.Font.Size = vg.Points(16)
	p.HideAxes()
	p.Legend.Top = true

	pos := g.Positions(DefaultLayout())
	span := bounds(p, pos)

	edgeKinds := make(map[EdgeKind]bool)
	for _, e := range g.edges {
		if e.From == e.To {
			continue
		}
		from, to := pos[e.From], pos[e.To]
		style := draw.LineStyle{Color: fade(edgeColor(e.Kind)), Width: vg.Points(1)}
		if err := addLine(p, style, from, to); err != nil {
			return nil, err
		}
		if err := addArrow(p, style, from, to, span*arrowFrac); err != nil {
			return nil, err
		}
		edgeKinds[e.Kind] = true
	}

	byRole := make(map[Role]plotter.XYs)
	for _, name := range g.names {
		r := role(g, name)
		v := pos[name]
		byRole[r] = append(byRole[r], plotter.XY{X: v.X, Y: v.Y})
	}
	for _, r := range legend {
		xys, ok := byRole[r]
		if !ok {
			xys = plotter.XYs{}
		}
		sc, err := plotter.NewScatter(xys)
		if err != nil {
			return nil, fmt.Errorf("nodes %s: %w", r, err)
		}
		sc.GlyphStyle = draw.GlyphStyle{Color: roleColors[r], Radius: vg.Points(nodeRadius), Shape: draw.CircleGlyph{}}
		p.Add(sc)
		p.Legend.Add(roleLabels[r], sc)
	}

	for _, kind := range []EdgeKind{KindDependency, KindDevDependency} {
		if !edgeKinds[kind] {
			continue
		}
		l, err := plotter.NewLine(plotter.XYs{})
		if err != nil {
			return nil, err
		}
		l.LineStyle = draw.LineStyle{Color: edgeColor(kind), Width: vg.Points(2)}
		p.Legend.Add(string(kind), l)
	}

	labels, err := g.labels(pos)
	if err != nil {
		return nil, err
	}
	p.Add(labels)
	return p, nil
}

func (g *Graph) labels(pos map[string]r2.Vec) (*plotter.Labels, error) {
	xyl := plotter.XYLabels{
		XYs:    make(plotter.XYs, len(g.names)),
		Labels: append([]string(nil), g.names...),
	}
	for i, name := range g.names {
		xyl.XYs[i] = plotter.XY{X: pos[name].X, Y: pos[name].Y}
	}
	labels, err := plotter.NewLabels(xyl)
	if err != nil {
		return nil, fmt.Errorf("labels: %w", err)
	}
	for i := range labels.TextStyle {
		labels.TextStyle[i].Font.Size = vg.Points(8)
		labels.TextStyle[i].XAlign = draw.XCenter
		labels.TextStyle[i].YAlign = draw.YCenter
	}
	return labels, nil
}

// bounds fixes the axis ranges around pos with a margin and returns the
// larger side of the data extent.
func bounds(p *plot.Plot, pos map[string]r2.Vec) float64 {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, v := range pos {
		minX, maxX = math.Min(minX, v.X), math.Max(maxX, v.X)
		minY, maxY = math.Min(minY, v.Y), math.Max(maxY, v.Y)
	}
	if len(pos) == 0 {
		minX, maxX, minY, maxY = 0, 1, 0, 1
	}
	span := math.Max(maxX-minX, maxY-minY)
	if span == 0 {
		span = 1
	}
	m := span * marginFrac
	p.X.Min, p.X.Max = minX-m, maxX+m
	p.Y.Min, p.Y.Max = minY-m, maxY+m
	return span
}

func addLine(p *plot.Plot, style draw.LineStyle, pts ...r2.Vec) error {
	xys := make(plotter.XYs, len(pts))
	for i, v := range pts {
		xys[i] = plotter.XY{X: v.X, Y: v.Y}
	}
	l, err := plotter.NewLine(xys)
	if err != nil {
		return fmt.Errorf("edge: %w", err)
	}
	l.LineStyle = style
	p.Add(l)
	return nil
}

// addArrow draws an open arrow head just short of the target node.
func addArrow(p *plot.Plot, style draw.LineStyle, from, to r2.Vec, size float64) error {
	d := r2.Sub(to, from)
	n := r2.Norm(d)
	if n == 0 {
		return nil
	}
	u := r2.Scale(1/n, d)
	tip := r2.Sub(to, r2.Scale(size, u))
	back := r2.Sub(tip, r2.Scale(size, u))
	perp := r2.Vec{X: -u.Y, Y: u.X}
	left := r2.Add(back, r2.Scale(size/2, perp))
	right := r2.Sub(back, r2.Scale(size/2, perp))
	return addLine(p, style, left, tip, right)
}

func fade(c color.Color) color.Color {
	r, g, b, _ := c.RGBA()
	return color.NRGBA{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: 128}
}
