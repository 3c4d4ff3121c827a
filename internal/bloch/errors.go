package bloch

import "errors"

// ErrInvalidState is matched by every InvalidStateError via errors.Is.
var ErrInvalidState = errors.New("input is not a multi-qubit quantum state")

// InvalidStateError reports input that cannot be resolved to a square,
// power-of-two-dimensioned density matrix.
type InvalidStateError struct {
	Reason string
}

func (e *InvalidStateError) Error() string {
	if e.Reason == "" {
		return ErrInvalidState.Error()
	}
	return ErrInvalidState.Error() + ": " + e.Reason
}

func (e *InvalidStateError) Is(target error) bool {
	return target == ErrInvalidState
}

func invalid(reason string) error {
	return &InvalidStateError{Reason: reason}
}
