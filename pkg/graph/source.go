// Package graph holds the graph stores PageRank reads from.
//
// Every store exposes the same forward-only cursor shape: iterate all
// vertices, and per vertex iterate its outgoing or incoming edges. Iterators
// are single pass and must be closed by whoever opened them.
package graph

import "context"

// Source is a graph store that can be walked vertex by vertex.
// Each call to Vertices starts a fresh iteration.
type Source interface {
	Vertices(ctx context.Context) (VertexIterator, error)
}

type VertexIterator interface {
	Next() bool
	Vertex() Vertex
	Err() error
	Close() error
}

type Vertex interface {
	// External identifier of the vertex inside its store
	ID() int64
	OutEdges(ctx context.Context) (EdgeIterator, error)
	InEdges(ctx context.Context) (EdgeIterator, error)
}

type EdgeIterator interface {
	Next() bool
	Edge() Edge
	Err() error
	Close() error
}

type Edge interface {
	// Vertex the edge starts from
	Source() Vertex
}

// Edge endpoint known only by its id; enough for stores that return
// adjacency as id lists.
type vertexRef int64

func (v vertexRef) ID() int64 { return int64(v) }

func (v vertexRef) OutEdges(context.Context) (EdgeIterator, error) {
	return &sliceEdges{}, nil
}

func (v vertexRef) InEdges(context.Context) (EdgeIterator, error) {
	return &sliceEdges{}, nil
}

type refEdge struct{ from vertexRef }

func (e refEdge) Source() Vertex { return e.from }

// Iterator over a fixed slice of source ids
type sliceEdges struct {
	from []int64
	pos  int
}

func (it *sliceEdges) Next() bool {
	if it.pos >= len(it.from) {
		return false
	}
	it.pos++
	return true
}

func (it *sliceEdges) Edge() Edge {
	return refEdge{from: vertexRef(it.from[it.pos-1])}
}

func (it *sliceEdges) Err() error   { return nil }
func (it *sliceEdges) Close() error { return nil }
