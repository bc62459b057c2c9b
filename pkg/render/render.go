// Package render draws an ingested graph with its PageRank scores.
package render

import (
	"fmt"
	"io"
	"strconv"

	"github.com/goccy/go-graphviz"
	"github.com/goccy/go-graphviz/cgraph"
	"github.com/lioia/pagerank/pkg/pagerank"
)

// Node size bounds in inches
const (
	minSize = 0.3
	maxSize = 2.0
)

// ParseFormat maps a file extension or name to a graphviz format
func ParseFormat(s string) (graphviz.Format, error) {
	switch s {
	case "dot", "gv", ".dot", ".gv":
		return graphviz.XDOT, nil
	case "svg", ".svg":
		return graphviz.SVG, nil
	case "png", ".png":
		return graphviz.PNG, nil
	}
	return "", fmt.Errorf("unsupported render format %q", s)
}

// Render writes topo to w. Each vertex is labelled with its external id and
// rank, and sized proportionally to its rank relative to the highest one.
func Render(topo *pagerank.Topology, ranks []float64, format graphviz.Format, w io.Writer) (err error) {
	if len(ranks) != topo.NumVertices() {
		return fmt.Errorf("%d ranks for %d vertices", len(ranks), topo.NumVertices())
	}
	g := graphviz.New()
	graph, err := g.Graph()
	if err != nil {
		return fmt.Errorf("create graph: %w", err)
	}
	defer func() {
		if cerr := graph.Close(); cerr != nil && err == nil {
			err = cerr
		}
		g.Close()
	}()

	top := 0.0
	for _, r := range ranks {
		top = max(top, r)
	}
	nodes := make([]*cgraph.Node, topo.NumVertices())
	for i, ext := range topo.LocalToExternal {
		name := strconv.FormatInt(ext, 10)
		n, err := graph.CreateNode(name)
		if err != nil {
			return fmt.Errorf("create node %s: %w", name, err)
		}
		size := minSize
		if top > 0 {
			size += (maxSize - minSize) * ranks[i] / top
		}
		n.SetLabel(fmt.Sprintf("%s\n%.4f", name, ranks[i]))
		n.SetWidth(size)
		n.SetHeight(size)
		nodes[i] = n
	}
	for i, in := range topo.InNeighbors {
		for k, j := range in {
			name := fmt.Sprintf("%d-%d-%d", j, i, k)
			if _, err := graph.CreateEdge(name, nodes[j], nodes[i]); err != nil {
				return fmt.Errorf("create edge %s: %w", name, err)
			}
		}
	}
	if err := g.Render(graph, format, w); err != nil {
		return fmt.Errorf("render %s: %w", format, err)
	}
	return nil
}
