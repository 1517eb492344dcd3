package challenge

import (
	"errors"
	"reflect"
	"testing"
)

func TestSolve(t *testing.T) {
	tests := []struct {
		name        string
		target      int64
		factorCount int64
		low         int64
		high        int64
		want        []int64
		wantErr     error
	}{
		{
			name:        "first solution in ascending order",
			target:      12,
			factorCount: 2,
			low:         1,
			high:        6,
			want:        []int64{2, 6},
		},
		{
			name:        "prime target has no two factors above one",
			target:      7,
			factorCount: 2,
			low:         2,
			high:        6,
			wantErr:     ErrNotFound,
		},
		{
			name:        "all ones",
			target:      1,
			factorCount: 3,
			low:         1,
			high:        1,
			want:        []int64{1, 1, 1},
		},
		{
			name:        "zero target with zero in range",
			target:      0,
			factorCount: 2,
			low:         0,
			high:        3,
			want:        []int64{0, 0},
		},
		{
			name:        "zero target without zero in range",
			target:      0,
			factorCount: 2,
			low:         1,
			high:        3,
			wantErr:     ErrNotFound,
		},
		{
			name:        "degenerate zero range",
			target:      5,
			factorCount: 2,
			low:         0,
			high:        0,
			wantErr:     ErrNotFound,
		},
		{
			name:        "zero factors with unit target",
			target:      1,
			factorCount: 0,
			low:         2,
			high:        9,
			want:        []int64{},
		},
		{
			name:        "zero factors with other target",
			target:      6,
			factorCount: 0,
			low:         2,
			high:        9,
			wantErr:     ErrNotFound,
		},
		{
			name:        "negative factor count",
			target:      6,
			factorCount: -1,
			low:         1,
			high:        6,
			wantErr:     ErrInput,
		},
		{
			name:        "inverted bounds",
			target:      6,
			factorCount: 2,
			low:         5,
			high:        2,
			wantErr:     ErrInput,
		},
		{
			name:        "negative factors",
			target:      4,
			factorCount: 2,
			low:         -2,
			high:        -1,
			want:        []int64{-2, -2},
		},
		{
			name:        "typical verification challenge",
			target:      2520,
			factorCount: 4,
			low:         5,
			high:        10,
			want:        []int64{5, 7, 8, 9},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Solve(tt.target, tt.factorCount, tt.low, tt.high)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Solve() error = %v, want %v", err, tt.wantErr)
				}
				if got != nil {
					t.Errorf("Solve() = %v, want nil on error", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("Solve() unexpected error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Solve() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSolveInputErrorIsNotNotFound(t *testing.T) {
	_, err := Solve(10, -1, 1, 5)
	if errors.Is(err, ErrNotFound) {
		t.Errorf("negative factor count reported as not found: %v", err)
	}

	_, err = Solve(10, 2, 5, 2)
	if errors.Is(err, ErrNotFound) {
		t.Errorf("inverted bounds reported as not found: %v", err)
	}
}

func TestSolveSolutionProperties(t *testing.T) {
	for target := int64(1); target <= 200; target++ {
		for n := int64(1); n <= 4; n++ {
			got, err := Solve(target, n, 1, 12)
			if errors.Is(err, ErrNotFound) {
				continue
			}
			if err != nil {
				t.Fatalf("Solve(%d, %d) unexpected error: %v", target, n, err)
			}
			if int64(len(got)) != n {
				t.Fatalf("Solve(%d, %d) returned %d factors", target, n, len(got))
			}
			product := int64(1)
			for _, f := range got {
				if f < 1 || f > 12 {
					t.Fatalf("Solve(%d, %d) factor %d out of range", target, n, f)
				}
				product *= f
			}
			if product != target {
				t.Fatalf("Solve(%d, %d) = %v, product %d", target, n, got, product)
			}
		}
	}
}

func TestSolveDeterministic(t *testing.T) {
	first, err := Solve(360, 3, 2, 20)
	if err != nil {
		t.Fatalf("Solve() unexpected error: %v", err)
	}
	for i := 0; i < 10; i++ {
		again, err := Solve(360, 3, 2, 20)
		if err != nil {
			t.Fatalf("Solve() unexpected error: %v", err)
		}
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("Solve() = %v, previously %v", again, first)
		}
	}
}

func TestSolverVisitLimit(t *testing.T) {
	solver := NewSolver(10)

	// every nonzero factor divides a zero target, so nothing is pruned
	_, err := solver.Solve(Challenge{Target: 0, FactorCount: 6, Low: 1, High: 50})
	if !errors.Is(err, ErrSearchLimit) {
		t.Fatalf("Solve() error = %v, want %v", err, ErrSearchLimit)
	}
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("search limit should be reported as not found, got %v", err)
	}

	unlimited := NewSolver(0)
	got, err := unlimited.Solve(Challenge{Target: 12, FactorCount: 2, Low: 1, High: 6})
	if err != nil {
		t.Fatalf("Solve() unexpected error: %v", err)
	}
	if !reflect.DeepEqual(got, []int64{2, 6}) {
		t.Errorf("Solve() = %v, want [2 6]", got)
	}
}

func TestSolveExtremeBounds(t *testing.T) {
	const maxInt64 = int64(^uint64(0) >> 1)

	got, err := Solve(maxInt64, 1, maxInt64-1, maxInt64)
	if err != nil {
		t.Fatalf("Solve() unexpected error: %v", err)
	}
	if !reflect.DeepEqual(got, []int64{maxInt64}) {
		t.Errorf("Solve() = %v, want [%d]", got, maxInt64)
	}
}
