// Package sink holds result sinks that format PageRank rows.
package sink

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/lioia/pagerank/pkg/pagerank"
)

// CSV writes records as comma separated values, with a header taken from
// the first record's field names. Call Flush after the last record.
type CSV struct {
	w      *csv.Writer
	header bool
}

func NewCSV(w io.Writer) *CSV {
	return &CSV{w: csv.NewWriter(w)}
}

func (s *CSV) Emit(_ context.Context, rec pagerank.Record) error {
	if !s.header {
		if err := s.w.Write(rec.Names()); err != nil {
			return err
		}
		s.header = true
	}
	values := make([]string, len(rec))
	for i, f := range rec {
		values[i] = FormatValue(f.Value)
	}
	if err := s.w.Write(values); err != nil {
		return err
	}
	// A row is accepted only once it reached the writer
	s.w.Flush()
	return s.w.Error()
}

func (s *CSV) Flush() error {
	s.w.Flush()
	return s.w.Error()
}

// Text writes one "Node <id> with rank <rank>" line per record.
// Reduced records print the out-degree instead.
type Text struct {
	w io.Writer
}

func NewText(w io.Writer) *Text { return &Text{w: w} }

func (s *Text) Emit(_ context.Context, rec pagerank.Record) error {
	id, _ := rec.Get(pagerank.FieldExternalID)
	if rank, ok := rec.Get(pagerank.FieldRank); ok {
		_, err := fmt.Fprintf(s.w, "Node %d with rank %f\n", id, rank)
		return err
	}
	out, _ := rec.Get(pagerank.FieldOutCount)
	_, err := fmt.Fprintf(s.w, "Node %d with %d outlinks\n", id, out)
	return err
}

// FormatValue renders a record value: integers in base 10, ranks with the
// shortest representation that round-trips
func FormatValue(v any) string {
	switch v := v.(type) {
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	}
	return fmt.Sprint(v)
}
