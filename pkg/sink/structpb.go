package sink

import (
	"context"
	"fmt"

	"github.com/lioia/pagerank/pkg/pagerank"
	"google.golang.org/protobuf/types/known/structpb"
)

// Struct collects records as protobuf structs
type Struct struct {
	rows []*structpb.Struct
}

func NewStruct() *Struct { return &Struct{} }

func (s *Struct) Emit(_ context.Context, rec pagerank.Record) error {
	row, err := RecordToStruct(rec)
	if err != nil {
		return err
	}
	s.rows = append(s.rows, row)
	return nil
}

func (s *Struct) Rows() []*structpb.Struct { return s.rows }

// List returns the rows as a list value
func (s *Struct) List() *structpb.ListValue {
	values := make([]*structpb.Value, len(s.rows))
	for i, row := range s.rows {
		values[i] = structpb.NewStructValue(row)
	}
	return &structpb.ListValue{Values: values}
}

// RecordToStruct converts a record; struct numbers are doubles, which is
// exact for ids up to 2^53
func RecordToStruct(rec pagerank.Record) (*structpb.Struct, error) {
	fields := make(map[string]*structpb.Value, len(rec))
	for _, f := range rec {
		switch v := f.Value.(type) {
		case int64:
			fields[f.Name] = structpb.NewNumberValue(float64(v))
		case float64:
			fields[f.Name] = structpb.NewNumberValue(v)
		default:
			return nil, fmt.Errorf("field %s: unsupported type %T", f.Name, f.Value)
		}
	}
	return &structpb.Struct{Fields: fields}, nil
}
