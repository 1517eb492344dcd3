package challenge

import (
	"fmt"
)

// DefaultMaxVisits bounds the search when no explicit ceiling is configured
const DefaultMaxVisits = 1_000_000

// Challenge is the numeric puzzle issued by the verification endpoint
type Challenge struct {
	Target      int64 `json:"target"`       // Product the factors must multiply to
	FactorCount int64 `json:"factor_count"` // Exact number of factors
	Low         int64 `json:"low"`          // Inclusive lower bound for each factor
	High        int64 `json:"high"`         // Inclusive upper bound for each factor
}

// Validate checks the caller contract
func (c Challenge) Validate() error {
	if c.FactorCount < 0 {
		return fmt.Errorf("%w: factor count %d is negative", ErrInput, c.FactorCount)
	}
	if c.Low > c.High {
		return fmt.Errorf("%w: low %d is greater than high %d", ErrInput, c.Low, c.High)
	}
	return nil
}

// Solver finds factor sequences for challenges
type Solver struct {
	maxVisits int
}

// NewSolver creates a solver. maxVisits <= 0 disables the ceiling.
func NewSolver(maxVisits int) *Solver {
	return &Solver{maxVisits: maxVisits}
}

var defaultSolver = NewSolver(DefaultMaxVisits)

// Solve runs the default solver on the given values
func Solve(target, factorCount, low, high int64) ([]int64, error) {
	return defaultSolver.Solve(Challenge{
		Target:      target,
		FactorCount: factorCount,
		Low:         low,
		High:        high,
	})
}

type outcome int

const (
	exhausted outcome = iota
	found
	limited
)

// Solve returns the first factor sequence found by a left-to-right
// depth-first search, trying candidates in ascending order at each position.
func (s *Solver) Solve(c Challenge) ([]int64, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	seq := make([]int64, 0, c.FactorCount)
	solution, visits, out := s.search(c, seq, 1, 0)

	switch out {
	case found:
		result := make([]int64, len(solution))
		copy(result, solution)
		return result, nil
	case limited:
		return nil, fmt.Errorf("%w: visited %d nodes", ErrSearchLimit, visits)
	default:
		return nil, fmt.Errorf("%w: target=%d parts=%d range=[%d, %d]",
			ErrNotFound, c.Target, c.FactorCount, c.Low, c.High)
	}
}

// search extends seq one factor at a time. product is the running product of seq.
func (s *Solver) search(c Challenge, seq []int64, product int64, visits int) ([]int64, int, outcome) {
	visits++
	if s.maxVisits > 0 && visits > s.maxVisits {
		return nil, visits, limited
	}

	if int64(len(seq)) == c.FactorCount {
		if product == c.Target {
			return seq, visits, found
		}
		return nil, visits, exhausted
	}

	for i := c.Low; ; i++ {
		if next, ok := extend(c.Target, product, i); ok {
			solution, v, out := s.search(c, append(seq, i), next, visits)
			visits = v
			if out != exhausted {
				return solution, visits, out
			}
		}
		if i == c.High {
			break
		}
	}

	return nil, visits, exhausted
}

// extend reports whether product*i still divides target and returns the new product.
// A zero product is only accepted for a zero target.
func extend(target, product, i int64) (int64, bool) {
	if product == 0 || i == 0 {
		return 0, target == 0
	}

	// Only zero-ness matters once the target is zero
	if target == 0 {
		return 1, true
	}

	// product always divides target, so a valid extension cannot exceed |target|
	if abs(product) > abs(target)/abs(i) {
		return 0, false
	}

	next := product * i
	if next/i != product {
		return 0, false
	}

	if target%next != 0 {
		return 0, false
	}
	return next, true
}

func abs(v int64) uint64 {
	if v < 0 {
		return uint64(-(v + 1)) + 1
	}
	return uint64(v)
}
