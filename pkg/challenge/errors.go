package challenge

import "errors"

// Solver error definitions using sentinel errors pattern
var (
	// ErrInput indicates the caller supplied a malformed challenge
	ErrInput = errors.New("invalid challenge input")

	// ErrNotFound indicates the search space was exhausted without a match
	ErrNotFound = errors.New("no factor sequence found")

	// ErrSearchLimit indicates the node-visit ceiling was reached.
	// It matches ErrNotFound under errors.Is.
	ErrSearchLimit = &limitError{}
)

type limitError struct{}

func (e *limitError) Error() string {
	return "challenge search limit exceeded"
}

// Is reports ErrSearchLimit as a kind of ErrNotFound
func (e *limitError) Is(target error) bool {
	return target == ErrNotFound
}
