package render

import (
	"bytes"
	"context"
	"testing"

	"github.com/goccy/go-graphviz"
	"github.com/lioia/pagerank/pkg/graph"
	"github.com/lioia/pagerank/pkg/pagerank"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender_Dot(t *testing.T) {
	g := graph.NewMemory()
	g.AddEdge(11, 22)
	g.AddEdge(22, 33)
	g.AddEdge(33, 11)
	topo, err := pagerank.Ingest(context.Background(), g)
	require.NoError(t, err)
	sol, err := pagerank.Solve(topo, pagerank.DefaultParams())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Render(topo, sol.Ranks, graphviz.XDOT, &buf))

	out := buf.String()
	assert.Contains(t, out, "11")
	assert.Contains(t, out, "22")
	assert.Contains(t, out, "33")
	assert.Contains(t, out, "->")
}

func TestRender_RankMismatch(t *testing.T) {
	topo, err := pagerank.Ingest(context.Background(), graph.NewMemory())
	require.NoError(t, err)

	assert.Error(t, Render(topo, []float64{1}, graphviz.XDOT, &bytes.Buffer{}))
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]graphviz.Format{".dot": graphviz.XDOT, "svg": graphviz.SVG, ".png": graphviz.PNG} {
		got, err := ParseFormat(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseFormat(".pdf")
	assert.Error(t, err)
}
