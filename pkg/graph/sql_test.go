package graph

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testStore creates a temporary SQLite store holding g
func testStore(t *testing.T, g *Memory) *SQLStore {
	t.Helper()
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "graph.db")
	s, err := OpenSQLStore(ctx, "sqlite", path)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.CreateSchema(ctx))
	if g != nil {
		require.NoError(t, s.Import(ctx, g))
	}
	return s
}

func TestSQLStore_Iteration(t *testing.T) {
	g := NewMemory()
	g.AddEdge(3, 1)
	g.AddEdge(1, 2)
	g.AddEdge(2, 3)
	g.AddEdge(1, 3)
	g.AddVertex(4)
	s := testStore(t, g)

	ids, out, in := walk(t, s)
	assert.Equal(t, []int64{1, 2, 3, 4}, ids)
	assert.Equal(t, map[int64]int{1: 2, 2: 1, 3: 1}, out)
	assert.Equal(t, map[int64][]int64{1: {3}, 2: {1}, 3: {1, 2}}, in)
}

func TestSQLStore_SchemaIdempotent(t *testing.T) {
	s := testStore(t, nil)
	require.NoError(t, s.CreateSchema(context.Background()))

	ids, _, _ := walk(t, s)
	assert.Empty(t, ids)
}

func TestSQLStore_ImportRollsBack(t *testing.T) {
	g := NewMemory()
	g.AddEdge(1, 2)
	s := testStore(t, g)

	// Importing the same vertices again violates the primary key
	require.Error(t, s.Import(context.Background(), g))

	_, out, _ := walk(t, s)
	assert.Equal(t, map[int64]int{1: 1}, out)
}

func TestSQLStore_MissingSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.db")
	s, err := OpenSQLStore(context.Background(), "", path)
	require.NoError(t, err)
	defer s.Close()

	_, err = s.Vertices(context.Background())
	assert.Error(t, err)
}

func TestOpenSQLStore_RejectsMemory(t *testing.T) {
	for _, dsn := range []string{"", ":memory:", "file:graph?mode=memory&cache=shared"} {
		_, err := OpenSQLStore(context.Background(), "sqlite", dsn)
		assert.Error(t, err, dsn)
	}
}
