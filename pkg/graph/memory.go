package graph

import "context"

// Memory is an in-memory graph store. Vertices are kept in first
// appearance order so every iteration visits them the same way.
type Memory struct {
	order []int64
	out   map[int64][]int64
	in    map[int64][]int64
	edges int
}

func NewMemory() *Memory {
	return &Memory{
		out: make(map[int64][]int64),
		in:  make(map[int64][]int64),
	}
}

// AddVertex registers id; adding an existing vertex is a no-op
func (m *Memory) AddVertex(id int64) {
	if _, ok := m.out[id]; ok {
		return
	}
	m.order = append(m.order, id)
	m.out[id] = nil
	m.in[id] = nil
}

// AddEdge adds the directed edge from -> to, creating missing endpoints.
// Parallel edges are kept.
func (m *Memory) AddEdge(from, to int64) {
	m.AddVertex(from)
	m.AddVertex(to)
	m.out[from] = append(m.out[from], to)
	m.in[to] = append(m.in[to], from)
	m.edges++
}

func (m *Memory) NumVertices() int { return len(m.order) }
func (m *Memory) NumEdges() int    { return m.edges }

// IDs returns the vertex ids in iteration order
func (m *Memory) IDs() []int64 {
	ids := make([]int64, len(m.order))
	copy(ids, m.order)
	return ids
}

// Successors returns the targets of the outgoing edges of id
func (m *Memory) Successors(id int64) []int64 { return m.out[id] }

// Predecessors returns the sources of the incoming edges of id
func (m *Memory) Predecessors(id int64) []int64 { return m.in[id] }

func (m *Memory) Vertices(context.Context) (VertexIterator, error) {
	return &memoryVertices{m: m, pos: -1}, nil
}

type memoryVertex struct {
	m  *Memory
	id int64
}

func (v memoryVertex) ID() int64 { return v.id }

func (v memoryVertex) OutEdges(context.Context) (EdgeIterator, error) {
	// Outgoing edges are only counted; report each as coming from v
	from := make([]int64, len(v.m.out[v.id]))
	for i := range from {
		from[i] = v.id
	}
	return &memoryEdges{m: v.m, from: from}, nil
}

func (v memoryVertex) InEdges(context.Context) (EdgeIterator, error) {
	return &memoryEdges{m: v.m, from: v.m.in[v.id]}, nil
}

type memoryEdge struct{ from memoryVertex }

func (e memoryEdge) Source() Vertex { return e.from }

type memoryVertices struct {
	m   *Memory
	pos int
}

func (it *memoryVertices) Next() bool {
	if it.pos+1 >= len(it.m.order) {
		it.pos = len(it.m.order)
		return false
	}
	it.pos++
	return true
}

func (it *memoryVertices) Vertex() Vertex {
	return memoryVertex{m: it.m, id: it.m.order[it.pos]}
}

func (it *memoryVertices) Err() error   { return nil }
func (it *memoryVertices) Close() error { return nil }

type memoryEdges struct {
	m    *Memory
	from []int64
	pos  int
}

func (it *memoryEdges) Next() bool {
	if it.pos >= len(it.from) {
		return false
	}
	it.pos++
	return true
}

func (it *memoryEdges) Edge() Edge {
	return memoryEdge{from: memoryVertex{m: it.m, id: it.from[it.pos-1]}}
}

func (it *memoryEdges) Err() error   { return nil }
func (it *memoryEdges) Close() error { return nil }
