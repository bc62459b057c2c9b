package pagerank

import "errors"

var (
	// ErrSourceUnavailable is returned when the graph store cannot be iterated
	ErrSourceUnavailable = errors.New("graph source unavailable")
	// ErrInconsistentGraphState is returned when vertex and edge bookkeeping
	// contradict each other (typically a graph mutated while it was read)
	ErrInconsistentGraphState = errors.New("inconsistent graph state")
	// ErrNumericDegenerate is returned when the ranks sum to zero
	ErrNumericDegenerate = errors.New("rank vector is numerically degenerate")
	// ErrSinkWriteFailed is returned when the result sink rejects a row
	ErrSinkWriteFailed = errors.New("result sink rejected row")
	// ErrInvalidParameter is returned for out-of-range computation parameters
	ErrInvalidParameter = errors.New("invalid parameter")
)
