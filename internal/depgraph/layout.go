package depgraph

import (
	"gonum.org/v1/gonum/graph/layout"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/spatial/r2"
)

// Layout settings for the force-directed placement.
type Layout struct {
	Updates   int
	Repulsion float64
	Rate      float64
	Theta     float64
}

func DefaultLayout() Layout {
	return Layout{Updates: 50, Repulsion: 1, Rate: 0.1, Theta: 0.2}
}

// Positions places every node with the Eades spring embedder, treating
// edges as undirected.
func (g *Graph) Positions(l Layout) map[string]r2.Vec {
	pos := make(map[string]r2.Vec, len(g.names))
	if len(g.names) == 0 {
		return pos
	}

	ug := simple.NewUndirectedGraph()
	for id := range g.names {
		ug.AddNode(simple.Node(int64(id)))
	}
	for _, e := range g.edges {
		u, v := g.ids[e.From], g.ids[e.To]
		if u == v || ug.HasEdgeBetween(u, v) {
			continue
		}
		ug.SetEdge(simple.Edge{F: simple.Node(u), T: simple.Node(v)})
	}

	eades := layout.EadesR2{
		Updates:   l.Updates,
		Repulsion: l.Repulsion,
		Rate:      l.Rate,
		Theta:     l.Theta,
	}
	o := layout.NewOptimizerR2(ug, eades.Update)
	for o.Update() {
	}
	for id, name := range g.names {
		pos[name] = o.Coord2(int64(id))
	}
	return pos
}
