// Package server exposes PageRank computation over gRPC and HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/lioia/pagerank/pkg/graph"
	"github.com/lioia/pagerank/pkg/pagerank"
	"google.golang.org/grpc/codes"
)

// Service runs PageRank on graphs sent inline or referenced by resource
type Service struct {
	Defaults pagerank.Params
	Objects  graph.ObjectStore // s3:// resources; may be nil
}

func NewService(defaults pagerank.Params, objects graph.ObjectStore) *Service {
	return &Service{Defaults: defaults, Objects: objects}
}

// Compute parses contents as an edge list, or loads resource when contents
// is empty, and runs the pipeline into sink
func (s *Service) Compute(ctx context.Context, contents []byte, resource string, params pagerank.Params, mode pagerank.Mode, sink pagerank.Sink) (*pagerank.Summary, error) {
	var g *graph.Memory
	var err error
	switch {
	case len(contents) > 0:
		g, err = graph.ParseEdgeList(contents)
	case resource != "":
		g, err = graph.LoadGraph(ctx, resource, s.Objects)
	default:
		err = errors.New("no graph provided")
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errBadGraph, err)
	}
	return pagerank.Run(ctx, g, params, mode, sink)
}

var errBadGraph = errors.New("could not load graph")

// Maps pipeline failures onto gRPC and HTTP status codes
func classify(err error) (codes.Code, int) {
	switch {
	case errors.Is(err, pagerank.ErrInvalidParameter), errors.Is(err, errBadGraph):
		return codes.InvalidArgument, http.StatusBadRequest
	case errors.Is(err, pagerank.ErrSourceUnavailable):
		return codes.Unavailable, http.StatusServiceUnavailable
	case errors.Is(err, pagerank.ErrInconsistentGraphState), errors.Is(err, pagerank.ErrNumericDegenerate):
		return codes.FailedPrecondition, http.StatusUnprocessableEntity
	}
	return codes.Internal, http.StatusInternalServerError
}
