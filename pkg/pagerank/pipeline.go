package pagerank

import (
	"context"
	"fmt"

	"github.com/lioia/pagerank/pkg/graph"
	"github.com/lioia/pagerank/pkg/utils"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Summary describes a completed run
type Summary struct {
	RunID      string
	Vertices   int
	Edges      int
	Iterations int
	Converged  bool
	Residual   float64
	Rows       int
}

// Run ingests source, solves it and projects the ranks to sink.
// Nothing reaches the sink unless ingestion and solving both succeed.
func Run(ctx context.Context, source graph.Source, params Params, mode Mode, sink Sink) (*Summary, error) {
	runID, err := gonanoid.New()
	if err != nil {
		return nil, fmt.Errorf("run id: %w", err)
	}
	return RunWithID(ctx, runID, source, params, mode, sink)
}

// RunWithID is Run with a caller provided run id
func RunWithID(ctx context.Context, runID string, source graph.Source, params Params, mode Mode, sink Sink) (*Summary, error) {
	summary := &Summary{RunID: runID}
	if err := params.Validate(); err != nil {
		return summary, err
	}

	topo, err := Ingest(ctx, source)
	if err != nil {
		utils.ComputeLog(runID, "Ingestion failed: %v", err)
		return summary, err
	}
	summary.Vertices = topo.NumVertices()
	summary.Edges = topo.NumEdges()
	utils.ComputeLog(runID, "Ingested %d vertices and %d edges", summary.Vertices, summary.Edges)

	sol, err := Solve(topo, params)
	if err != nil {
		utils.ComputeLog(runID, "Solve failed: %v", err)
		return summary, err
	}
	summary.Iterations = sol.Iterations
	summary.Converged = sol.Converged
	summary.Residual = sol.Residual
	if sol.Converged {
		utils.ComputeLog(runID, "Convergence check success (%d iterations)", sol.Iterations)
	} else {
		utils.ComputeLog(runID, "Stopped after %d iterations (residual %g)", sol.Iterations, sol.Residual)
	}

	summary.Rows, err = Project(ctx, topo, sol.Ranks, mode, sink)
	if err != nil {
		utils.ComputeLog(runID, "Projection stopped after %d rows: %v", summary.Rows, err)
		return summary, err
	}
	utils.ComputeLog(runID, "Emitted %d %s rows", summary.Rows, mode)
	return summary, nil
}
