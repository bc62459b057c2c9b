package pagerank

import (
	"context"
	"fmt"
	"strings"
)

// Mode selects the fields of the emitted rows
type Mode int

const (
	ModeFull    Mode = iota // local_id, external_id, in_count, out_count, rank
	ModeReduced             // external_id, out_count
)

const (
	FieldLocalID    = "local_id"
	FieldExternalID = "external_id"
	FieldInCount    = "in_count"
	FieldOutCount   = "out_count"
	FieldRank       = "rank"
)

func (m Mode) String() string {
	switch m {
	case ModeFull:
		return "full"
	case ModeReduced:
		return "reduced"
	}
	return "undefined"
}

func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(s) {
	case "", "full":
		return ModeFull, nil
	case "reduced":
		return ModeReduced, nil
	}
	return ModeFull, fmt.Errorf("%w: unknown mode %q", ErrInvalidParameter, s)
}

// Field is a named value; integers are int64 and ranks float64
type Field struct {
	Name  string
	Value any
}

// Record is one result row with its fields in emission order
type Record []Field

// Get returns the value of the named field
func (r Record) Get(name string) (any, bool) {
	for _, f := range r {
		if f.Name == name {
			return f.Value, true
		}
	}
	return nil, false
}

// Names returns the field names in order
func (r Record) Names() []string {
	names := make([]string, len(r))
	for i, f := range r {
		names[i] = f.Name
	}
	return names
}

// Sink receives result rows. Returning an error stops the emission.
type Sink interface {
	Emit(ctx context.Context, rec Record) error
}

// SinkFunc adapts a function to Sink
type SinkFunc func(ctx context.Context, rec Record) error

func (f SinkFunc) Emit(ctx context.Context, rec Record) error { return f(ctx, rec) }

// Project emits one record per vertex in local index order and returns how
// many the sink accepted.
func Project(ctx context.Context, topo *Topology, ranks []float64, mode Mode, sink Sink) (int, error) {
	n := topo.NumVertices()
	if len(ranks) != n {
		return 0, fmt.Errorf("%w: %d ranks for %d vertices", ErrInconsistentGraphState, len(ranks), n)
	}
	for i := 0; i < n; i++ {
		rec := record(topo, ranks, i, mode)
		if err := sink.Emit(ctx, rec); err != nil {
			return i, fmt.Errorf("%w: row %d (vertex %d): %w", ErrSinkWriteFailed, i, topo.LocalToExternal[i], err)
		}
	}
	return n, nil
}

func record(topo *Topology, ranks []float64, i int, mode Mode) Record {
	if mode == ModeReduced {
		return Record{
			{FieldExternalID, topo.LocalToExternal[i]},
			{FieldOutCount, int64(topo.OutCount[i])},
		}
	}
	return Record{
		{FieldLocalID, int64(i)},
		{FieldExternalID, topo.LocalToExternal[i]},
		{FieldInCount, int64(len(topo.InNeighbors[i]))},
		{FieldOutCount, int64(topo.OutCount[i])},
		{FieldRank, ranks[i]},
	}
}
