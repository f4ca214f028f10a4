package mines

import "errors"

var (
	ErrUnknownLevel  = errors.New("unknown level")
	ErrInvalidParams = errors.New("invalid board parameters")
	ErrInvalidLayout = errors.New("invalid board layout")
)

// AssertionError is raised with panic when a caller breaks the engine's
// contract, e.g. by passing a coordinate outside the grid.
type AssertionError struct {
	message string
}

// [AssertionError] implements [error]
func (e AssertionError) Error() string {
	return e.message
}
