package pagerank

import (
	"fmt"
	"math"
)

const (
	DefaultDampingFactor = 0.85
	DefaultMaxIterations = 100
	DefaultStopEpsilon   = 1e-6
)

// Params controls the power iteration
type Params struct {
	DampingFactor float64 // in (0, 1)
	MaxIterations int     // >= 0; 0 returns the uniform vector
	StopEpsilon   float64 // > 0
}

func DefaultParams() Params {
	return Params{
		DampingFactor: DefaultDampingFactor,
		MaxIterations: DefaultMaxIterations,
		StopEpsilon:   DefaultStopEpsilon,
	}
}

func (p Params) Validate() error {
	// Negated comparisons also reject NaN
	if !(p.DampingFactor > 0 && p.DampingFactor < 1) {
		return fmt.Errorf("%w: damping factor %v not in (0, 1)", ErrInvalidParameter, p.DampingFactor)
	}
	if p.MaxIterations < 0 {
		return fmt.Errorf("%w: max iterations %d is negative", ErrInvalidParameter, p.MaxIterations)
	}
	if !(p.StopEpsilon > 0) || math.IsInf(p.StopEpsilon, 1) {
		return fmt.Errorf("%w: stop epsilon %v must be positive", ErrInvalidParameter, p.StopEpsilon)
	}
	return nil
}
