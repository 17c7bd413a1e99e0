package task

import "fmt"

// transitions is the table of legal (from, to) status changes.
// Writing a status onto itself is always accepted as a no-op.
var transitions = map[Status][]Status{
	StatusAssigned: {StatusStarted, StatusCancelled},
	StatusStarted:  {StatusCompleted, StatusCancelled},
}

// CanTransition reports whether a task may move from one status to another.
func CanTransition(from, to Status) bool {
	if !to.Valid() {
		return false
	}
	if from == to {
		return true
	}
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// CheckTransition returns ErrInvalidTransition when from -> to is not legal.
func CheckTransition(from, to Status) error {
	if !CanTransition(from, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	return nil
}
