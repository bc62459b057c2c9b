// Package pagerank computes PageRank scores over a graph store in three
// sequential steps: ingest the store into dense tables, run damped power
// iteration over them, and project the scores into result rows.
package pagerank

import (
	"context"
	"fmt"

	"github.com/lioia/pagerank/pkg/graph"
)

// Topology is the dense representation of an ingested graph.
// Local indexes run from 0 to N-1 in the store's iteration order.
type Topology struct {
	LocalToExternal []int64
	ExternalToLocal map[int64]int
	OutCount        []int
	InNeighbors     [][]int // local indexes of the sources of incoming edges
}

func (t *Topology) NumVertices() int { return len(t.LocalToExternal) }

// NumEdges counts recorded in-edges (one per edge of the graph)
func (t *Topology) NumEdges() int {
	edges := 0
	for _, in := range t.InNeighbors {
		edges += len(in)
	}
	return edges
}

// Ingest reads source twice: the first pass assigns local indexes and counts
// out-edges, the second collects in-neighbors once every id is mapped.
func Ingest(ctx context.Context, source graph.Source) (*Topology, error) {
	topo := &Topology{
		LocalToExternal: []int64{},
		ExternalToLocal: make(map[int64]int),
		OutCount:        []int{},
	}
	if err := mapVertices(ctx, source, topo); err != nil {
		return nil, err
	}
	topo.InNeighbors = make([][]int, len(topo.LocalToExternal))
	if err := collectInNeighbors(ctx, source, topo); err != nil {
		return nil, err
	}

	totalOut := 0
	for _, c := range topo.OutCount {
		totalOut += c
	}
	if in := topo.NumEdges(); in != totalOut {
		return nil, fmt.Errorf("%w: %d incoming edges but %d outgoing", ErrInconsistentGraphState, in, totalOut)
	}
	return topo, nil
}

// Pass 1: id mapping and out-degree
func mapVertices(ctx context.Context, source graph.Source, topo *Topology) (err error) {
	vertices, err := source.Vertices(ctx)
	if err != nil {
		return fmt.Errorf("%w: iterate vertices: %w", ErrSourceUnavailable, err)
	}
	defer closeIterator(vertices, "vertices", &err)

	for vertices.Next() {
		v := vertices.Vertex()
		id := v.ID()
		if _, seen := topo.ExternalToLocal[id]; seen {
			return fmt.Errorf("%w: vertex %d visited twice", ErrInconsistentGraphState, id)
		}
		topo.ExternalToLocal[id] = len(topo.LocalToExternal)
		topo.LocalToExternal = append(topo.LocalToExternal, id)

		count, err := countOutEdges(ctx, v)
		if err != nil {
			return err
		}
		topo.OutCount = append(topo.OutCount, count)
	}
	if err := vertices.Err(); err != nil {
		return fmt.Errorf("%w: iterate vertices: %w", ErrSourceUnavailable, err)
	}
	return nil
}

func countOutEdges(ctx context.Context, v graph.Vertex) (count int, err error) {
	edges, err := v.OutEdges(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: out edges of %d: %w", ErrSourceUnavailable, v.ID(), err)
	}
	defer closeIterator(edges, "out edges", &err)

	for edges.Next() {
		count++
	}
	if err := edges.Err(); err != nil {
		return 0, fmt.Errorf("%w: out edges of %d: %w", ErrSourceUnavailable, v.ID(), err)
	}
	return count, nil
}

// Pass 2: in-neighbors by local index
func collectInNeighbors(ctx context.Context, source graph.Source, topo *Topology) (err error) {
	vertices, err := source.Vertices(ctx)
	if err != nil {
		return fmt.Errorf("%w: iterate vertices: %w", ErrSourceUnavailable, err)
	}
	defer closeIterator(vertices, "vertices", &err)

	visited := 0
	for vertices.Next() {
		v := vertices.Vertex()
		local, ok := topo.ExternalToLocal[v.ID()]
		if !ok {
			return fmt.Errorf("%w: vertex %d appeared after mapping", ErrInconsistentGraphState, v.ID())
		}
		if err := appendInNeighbors(ctx, v, local, topo); err != nil {
			return err
		}
		visited++
	}
	if err := vertices.Err(); err != nil {
		return fmt.Errorf("%w: iterate vertices: %w", ErrSourceUnavailable, err)
	}
	if visited != len(topo.LocalToExternal) {
		return fmt.Errorf("%w: mapped %d vertices, second pass visited %d",
			ErrInconsistentGraphState, len(topo.LocalToExternal), visited)
	}
	return nil
}

func appendInNeighbors(ctx context.Context, v graph.Vertex, local int, topo *Topology) (err error) {
	edges, err := v.InEdges(ctx)
	if err != nil {
		return fmt.Errorf("%w: in edges of %d: %w", ErrSourceUnavailable, v.ID(), err)
	}
	defer closeIterator(edges, "in edges", &err)

	for edges.Next() {
		from := edges.Edge().Source().ID()
		fromLocal, ok := topo.ExternalToLocal[from]
		if !ok {
			return fmt.Errorf("%w: edge %d -> %d from unmapped vertex", ErrInconsistentGraphState, from, v.ID())
		}
		topo.InNeighbors[local] = append(topo.InNeighbors[local], fromLocal)
	}
	if err := edges.Err(); err != nil {
		return fmt.Errorf("%w: in edges of %d: %w", ErrSourceUnavailable, v.ID(), err)
	}
	return nil
}

type closer interface{ Close() error }

// Releases it and reports a close failure unless an error is already set
func closeIterator(it closer, what string, err *error) {
	if cerr := it.Close(); cerr != nil && *err == nil {
		*err = fmt.Errorf("%w: close %s: %w", ErrSourceUnavailable, what, cerr)
	}
}
