package pagerank

import (
	"context"
	"errors"
	"testing"

	"github.com/lioia/pagerank/pkg/graph"
	"github.com/stretchr/testify/require"
)

var errBackend = errors.New("backend failure")

// memoryGraph builds a store from "from to" pairs plus isolated vertices
func memoryGraph(edges [][2]int64, isolated ...int64) *graph.Memory {
	g := graph.NewMemory()
	for _, e := range edges {
		g.AddEdge(e[0], e[1])
	}
	for _, id := range isolated {
		g.AddVertex(id)
	}
	return g
}

func ingest(t *testing.T, edges [][2]int64, isolated ...int64) *Topology {
	t.Helper()
	topo, err := Ingest(context.Background(), memoryGraph(edges, isolated...))
	require.NoError(t, err)
	return topo
}

// faultySource wraps a store, injects failures and tracks open iterators
type faultySource struct {
	inner graph.Source

	failPass      int   // Vertices fails on this pass (1-based, 0 never)
	failInEdgesOf int64 // InEdges of this vertex fails (0 never)
	failErrOnPass int   // vertex iterator reports Err on this pass
	failClose     bool  // vertex iterator Close fails
	extraOnPass   int   // vertex iterator yields an unknown vertex on this pass
	repeatOnPass  int   // vertex iterator yields its first vertex again on this pass
	strayInEdgeOf int64 // InEdges of this vertex adds an edge from an unknown vertex
	dropInEdgeOf  int64 // InEdges of this vertex skips its first edge

	passes int
	open   int
}

func (s *faultySource) Vertices(ctx context.Context) (graph.VertexIterator, error) {
	s.passes++
	if s.passes == s.failPass {
		return nil, errBackend
	}
	it, err := s.inner.Vertices(ctx)
	if err != nil {
		return nil, err
	}
	s.open++
	return &faultyVertices{VertexIterator: it, s: s, pass: s.passes}, nil
}

type faultyVertices struct {
	graph.VertexIterator
	s     *faultySource
	pass  int
	first graph.Vertex
	extra graph.Vertex // set once the wrapped iterator is exhausted
	done  bool
}

func (it *faultyVertices) Next() bool {
	if it.VertexIterator.Next() {
		if it.first == nil {
			it.first = it.VertexIterator.Vertex()
		}
		return true
	}
	if it.done {
		return false
	}
	it.done = true
	switch {
	case it.pass == it.s.extraOnPass:
		it.extra = strayVertex()
	case it.pass == it.s.repeatOnPass && it.first != nil:
		it.extra = it.first
	default:
		return false
	}
	return true
}

func (it *faultyVertices) Vertex() graph.Vertex {
	if it.extra != nil {
		return &faultyVertex{Vertex: it.extra, s: it.s}
	}
	return &faultyVertex{Vertex: it.VertexIterator.Vertex(), s: it.s}
}

func (it *faultyVertices) Err() error {
	if it.pass == it.s.failErrOnPass {
		return errBackend
	}
	return it.VertexIterator.Err()
}

func (it *faultyVertices) Close() error {
	it.s.open--
	if it.s.failClose {
		return errBackend
	}
	return it.VertexIterator.Close()
}

type faultyVertex struct {
	graph.Vertex
	s *faultySource
}

func (v *faultyVertex) OutEdges(ctx context.Context) (graph.EdgeIterator, error) {
	it, err := v.Vertex.OutEdges(ctx)
	if err != nil {
		return nil, err
	}
	v.s.open++
	return &trackedEdges{EdgeIterator: it, s: v.s}, nil
}

func (v *faultyVertex) InEdges(ctx context.Context) (graph.EdgeIterator, error) {
	if v.s.failInEdgesOf != 0 && v.ID() == v.s.failInEdgesOf {
		return nil, errBackend
	}
	it, err := v.Vertex.InEdges(ctx)
	if err != nil {
		return nil, err
	}
	v.s.open++
	edges := &trackedEdges{EdgeIterator: it, s: v.s, drop: v.ID() == v.s.dropInEdgeOf}
	if v.ID() == v.s.strayInEdgeOf {
		edges.extra = strayEdge{}
	}
	return edges, nil
}

// trackedEdges counts releases and optionally skips the first edge or
// appends one more after the wrapped edges
type trackedEdges struct {
	graph.EdgeIterator
	s       *faultySource
	drop    bool
	extra   graph.Edge
	onExtra bool
}

func (it *trackedEdges) Next() bool {
	if it.drop {
		it.drop = false
		if !it.EdgeIterator.Next() {
			return false
		}
	}
	if it.EdgeIterator.Next() {
		return true
	}
	if it.extra != nil && !it.onExtra {
		it.onExtra = true
		return true
	}
	return false
}

func (it *trackedEdges) Edge() graph.Edge {
	if it.onExtra {
		return it.extra
	}
	return it.EdgeIterator.Edge()
}

func (it *trackedEdges) Close() error {
	it.s.open--
	return it.EdgeIterator.Close()
}

type strayEdge struct{}

func (strayEdge) Source() graph.Vertex { return strayVertex() }

// A vertex the wrapped store does not contain
func strayVertex() graph.Vertex {
	it, _ := memoryGraph(nil, 999).Vertices(context.Background())
	it.Next()
	return it.Vertex()
}
