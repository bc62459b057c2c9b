package pagerank

import (
	"fmt"
	"math"
)

// Solution of a power iteration run
type Solution struct {
	Ranks      []float64 // normalized to sum 1
	Iterations int       // sweeps performed
	Converged  bool
	Residual   float64 // max |rank[i] - next[i]| of the last sweep
}

// Solve runs damped power iteration on topo:
//
//	R_(k+1)(i) = d * sum_(j in B_i) (R_k(j) / N_j) + (1 - d) / N
//
// Every sweep reads only the previous sweep's ranks. The loop stops when no
// rank moved by more than the stop epsilon or after the iteration cap.
func Solve(topo *Topology, params Params) (*Solution, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	n := topo.NumVertices()
	if n == 0 {
		return &Solution{Ranks: []float64{}, Converged: true}, nil
	}
	if err := checkContributors(topo); err != nil {
		return nil, err
	}

	c := params.DampingFactor
	teleport := (1 - c) / float64(n)
	rank := make([]float64, n)
	next := make([]float64, n)
	for i := range rank {
		rank[i] = 1.0 / float64(n)
	}

	sol := &Solution{}
	for sol.Iterations < params.MaxIterations {
		residual := 0.0
		for i, in := range topo.InNeighbors {
			// sum_(j in B_i) (R_k(j) / N_j)
			sum := 0.0
			for _, j := range in {
				sum += rank[j] / float64(topo.OutCount[j])
			}
			next[i] = c*sum + teleport
			residual = math.Max(residual, math.Abs(rank[i]-next[i]))
		}
		rank, next = next, rank
		sol.Iterations++
		sol.Residual = residual
		if residual <= params.StopEpsilon {
			sol.Converged = true
			break
		}
	}

	// Normalize values
	rankSum := 0.0
	for _, r := range rank {
		rankSum += r
	}
	if rankSum == 0 || math.IsNaN(rankSum) || math.IsInf(rankSum, 0) {
		return nil, fmt.Errorf("%w: ranks sum to %v", ErrNumericDegenerate, rankSum)
	}
	for i := range rank {
		rank[i] /= rankSum
	}
	sol.Ranks = rank
	return sol, nil
}

// Every in-neighbor must be a valid index with at least one out-edge,
// otherwise its contribution would divide by zero.
func checkContributors(topo *Topology) error {
	n := topo.NumVertices()
	if len(topo.OutCount) != n || len(topo.InNeighbors) != n {
		return fmt.Errorf("%w: %d vertices, %d out counts, %d in-neighbor lists",
			ErrInconsistentGraphState, n, len(topo.OutCount), len(topo.InNeighbors))
	}
	for i, in := range topo.InNeighbors {
		for _, j := range in {
			if j < 0 || j >= n {
				return fmt.Errorf("%w: vertex %d has in-neighbor %d outside the graph",
					ErrInconsistentGraphState, i, j)
			}
			if topo.OutCount[j] == 0 {
				return fmt.Errorf("%w: vertex %d points to %d but has no out-edges",
					ErrInconsistentGraphState, topo.LocalToExternal[j], topo.LocalToExternal[i])
			}
		}
	}
	return nil
}
