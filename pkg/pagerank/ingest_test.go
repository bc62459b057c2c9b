package pagerank

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIngest_BuildsTables(t *testing.T) {
	// 10 -> 20, 10 -> 30, 20 -> 30, 30 -> 10, 40 isolated
	topo := ingest(t, [][2]int64{{10, 20}, {10, 30}, {20, 30}, {30, 10}}, 40)

	assert.Equal(t, []int64{10, 20, 30, 40}, topo.LocalToExternal)
	assert.Equal(t, map[int64]int{10: 0, 20: 1, 30: 2, 40: 3}, topo.ExternalToLocal)
	assert.Equal(t, []int{2, 1, 1, 0}, topo.OutCount)
	assert.Equal(t, [][]int{{2}, {0}, {0, 1}, nil}, topo.InNeighbors)
	assert.Equal(t, 4, topo.NumVertices())
	assert.Equal(t, 4, topo.NumEdges())
}

func TestIngest_MappingIsBijective(t *testing.T) {
	topo := ingest(t, [][2]int64{{-7, 1 << 40}, {1 << 40, 3}, {3, -7}})

	require.Len(t, topo.ExternalToLocal, len(topo.LocalToExternal))
	for local, ext := range topo.LocalToExternal {
		assert.Equal(t, local, topo.ExternalToLocal[ext])
	}
}

func TestIngest_ParallelEdgesAndSelfLoops(t *testing.T) {
	topo := ingest(t, [][2]int64{{1, 2}, {1, 2}, {2, 2}})

	assert.Equal(t, []int{2, 1}, topo.OutCount)
	assert.Equal(t, [][]int{nil, {0, 0, 1}}, topo.InNeighbors)
}

func TestIngest_EmptyGraph(t *testing.T) {
	topo := ingest(t, nil)

	assert.Empty(t, topo.LocalToExternal)
	assert.Empty(t, topo.ExternalToLocal)
	assert.Empty(t, topo.OutCount)
	assert.Empty(t, topo.InNeighbors)
	assert.Equal(t, 0, topo.NumVertices())
}

func TestIngest_TwoFreshPasses(t *testing.T) {
	src := &faultySource{inner: memoryGraph([][2]int64{{1, 2}, {2, 3}})}

	_, err := Ingest(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, 2, src.passes)
	assert.Zero(t, src.open, "every iterator must be released")
}

func TestIngest_Failures(t *testing.T) {
	edges := [][2]int64{{1, 2}, {2, 3}, {3, 1}}

	tests := []struct {
		name string
		src  *faultySource
		want error
	}{
		{"first pass unavailable", &faultySource{failPass: 1}, ErrSourceUnavailable},
		{"second pass unavailable", &faultySource{failPass: 2}, ErrSourceUnavailable},
		{"in edges unavailable", &faultySource{failInEdgesOf: 2}, ErrSourceUnavailable},
		{"iteration error", &faultySource{failErrOnPass: 2}, ErrSourceUnavailable},
		{"close error", &faultySource{failClose: true}, ErrSourceUnavailable},
		{"vertex added during ingestion", &faultySource{extraOnPass: 2}, ErrInconsistentGraphState},
		{"vertex removed during ingestion", &faultySource{extraOnPass: 1}, ErrInconsistentGraphState},
		{"vertex visited twice", &faultySource{repeatOnPass: 1}, ErrInconsistentGraphState},
		{"in edge from unmapped vertex", &faultySource{strayInEdgeOf: 2}, ErrInconsistentGraphState},
		{"in edge missing", &faultySource{dropInEdgeOf: 2}, ErrInconsistentGraphState},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.src.inner = memoryGraph(edges)

			topo, err := Ingest(context.Background(), tt.src)
			require.ErrorIs(t, err, tt.want)
			assert.Nil(t, topo, "partial tables must be discarded")
			assert.Zero(t, tt.src.open, "every iterator must be released")
		})
	}
}

func TestIngest_InconsistencyMessages(t *testing.T) {
	edges := [][2]int64{{1, 2}, {2, 3}, {3, 1}}

	tests := []struct {
		src  *faultySource
		want string
	}{
		{&faultySource{repeatOnPass: 1}, "vertex 1 visited twice"},
		{&faultySource{strayInEdgeOf: 2}, "edge 999 -> 2 from unmapped vertex"},
		{&faultySource{dropInEdgeOf: 2}, "2 incoming edges but 3 outgoing"},
	}
	for _, tt := range tests {
		tt.src.inner = memoryGraph(edges)
		_, err := Ingest(context.Background(), tt.src)
		require.Error(t, err)
		assert.Contains(t, err.Error(), tt.want)
	}
}
