// Package depgraph builds and draws two dependency graphs for a JavaScript
// or TypeScript project: manifest packages and relative source imports.
package depgraph

import (
	"encoding/json"
	"fmt"
	"io"

	"gonum.org/v1/gonum/graph/simple"
)

type EdgeKind string

const (
	KindDependency    EdgeKind = "dependency"
	KindDevDependency EdgeKind = "devDependency"
	KindImport        EdgeKind = "import"
)

type Edge struct {
	From string   `json:"from"`
	To   string   `json:"to"`
	Kind EdgeKind `json:"kind"`
}

// Graph is a named directed graph. Node and edge order follow insertion;
// adding an existing edge replaces its kind.
type Graph struct {
	Title string

	g       *simple.DirectedGraph
	ids     map[string]int64
	names   []string
	edges   []Edge
	edgeIdx map[[2]int64]int
}

func NewGraph(title string) *Graph {
	return &Graph{
		Title:   title,
		g:       simple.NewDirectedGraph(),
		ids:     make(map[string]int64),
		edgeIdx: make(map[[2]int64]int),
	}
}

// AddNode returns the node id for name, creating the node if needed.
func (g *Graph) AddNode(name string) int64 {
	if id, ok := g.ids[name]; ok {
		return id
	}
	id := int64(len(g.names))
	g.g.AddNode(simple.Node(id))
	g.ids[name] = id
	g.names = append(g.names, name)
	return id
}

func (g *Graph) AddEdge(from, to string, kind EdgeKind) {
	u, v := g.AddNode(from), g.AddNode(to)
	key := [2]int64{u, v}
	if i, ok := g.edgeIdx[key]; ok {
		g.edges[i].Kind = kind
		return
	}
	g.edgeIdx[key] = len(g.edges)
	g.edges = append(g.edges, Edge{From: from, To: to, Kind: kind})
	// simple graphs reject self loops; they stay in the edge list only.
	if u != v {
		g.g.SetEdge(simple.Edge{F: simple.Node(u), T: simple.Node(v)})
	}
}

func (g *Graph) Len() int { return len(g.names) }

func (g *Graph) Nodes() []string {
	return append([]string(nil), g.names...)
}

func (g *Graph) Edges() []Edge {
	return append([]Edge(nil), g.edges...)
}

func (g *Graph) Edge(from, to string) (Edge, bool) {
	u, ok := g.ids[from]
	if !ok {
		return Edge{}, false
	}
	v, ok := g.ids[to]
	if !ok {
		return Edge{}, false
	}
	i, ok := g.edgeIdx[[2]int64{u, v}]
	if !ok {
		return Edge{}, false
	}
	return g.edges[i], true
}

// Incoming lists edges pointing at name.
func (g *Graph) Incoming(name string) []Edge {
	id, ok := g.ids[name]
	if !ok {
		return nil
	}
	var out []Edge
	preds := g.g.To(id)
	for preds.Next() {
		from := g.names[preds.Node().ID()]
		if e, ok := g.Edge(from, name); ok {
			out = append(out, e)
		}
	}
	return out
}

type jsonNode struct {
	Name string `json:"name"`
	Role Role   `json:"role"`
}

type jsonGraph struct {
	Title string     `json:"title"`
	Nodes []jsonNode `json:"nodes"`
	Edges []Edge     `json:"edges"`
}

// WriteJSON writes nodes with their roles and the edge list.
func (g *Graph) WriteJSON(w io.Writer, role RoleFunc) error {
	doc := jsonGraph{Title: g.Title, Nodes: make([]jsonNode, 0, len(g.names)), Edges: g.Edges()}
	if doc.Edges == nil {
		doc.Edges = []Edge{}
	}
	for _, name := range g.names {
		doc.Nodes = append(doc.Nodes, jsonNode{Name: name, Role: role(g, name)})
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode graph %q: %w", g.Title, err)
	}
	return nil
}
