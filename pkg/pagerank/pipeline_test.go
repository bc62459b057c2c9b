package pagerank

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_EndToEnd(t *testing.T) {
	c := NewCollector(0)

	summary, err := Run(context.Background(), memoryGraph([][2]int64{{1, 2}, {2, 3}}), DefaultParams(), ModeFull, c)
	require.NoError(t, err)
	assert.NotEmpty(t, summary.RunID)
	assert.Equal(t, 3, summary.Vertices)
	assert.Equal(t, 2, summary.Edges)
	assert.Equal(t, 3, summary.Rows)
	assert.True(t, summary.Converged)

	total := 0.0
	for _, rec := range c.Records() {
		r, ok := rec.Get(FieldRank)
		require.True(t, ok)
		total += r.(float64)
	}
	assert.InDelta(t, 1.0, total, 1e-12)
}

func TestRun_EmptyGraph(t *testing.T) {
	c := NewCollector(0)

	summary, err := RunWithID(context.Background(), "empty", memoryGraph(nil), DefaultParams(), ModeFull, c)
	require.NoError(t, err)
	assert.Equal(t, "empty", summary.RunID)
	assert.Zero(t, summary.Rows)
	assert.Empty(t, c.Records())
}

func TestRun_NoRowsAfterFailure(t *testing.T) {
	c := NewCollector(0)
	src := &faultySource{inner: memoryGraph([][2]int64{{1, 2}}), failPass: 2}

	_, err := Run(context.Background(), src, DefaultParams(), ModeFull, c)
	require.ErrorIs(t, err, ErrSourceUnavailable)
	assert.Empty(t, c.Records())
}

func TestRun_InvalidParamsSkipIngestion(t *testing.T) {
	src := &faultySource{inner: memoryGraph([][2]int64{{1, 2}})}
	params := DefaultParams()
	params.DampingFactor = 1.5

	_, err := Run(context.Background(), src, params, ModeFull, NewCollector(0))
	require.ErrorIs(t, err, ErrInvalidParameter)
	assert.Zero(t, src.passes)
}
