package routing

import (
	"errors"
	"fmt"
)

var (
	ErrNoGraph      = errors.New("no graph is bound")
	ErrNoStartNode  = errors.New("start node is not set")
	ErrNoEndNode    = errors.New("end node is not set")
	ErrNoAlgorithm  = errors.New("no algorithm is active")
	ErrNodeNotFound = errors.New("node not found")
)

// ConfigurationError reports an unknown algorithm name
type ConfigurationError struct {
	Name string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("unknown algorithm %q", e.Name)
}

// PreconditionError reports an operation which was called in a state where it can't run
type PreconditionError struct {
	Op  string
	Err error
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("%v: %v", e.Op, e.Err)
}

func (e *PreconditionError) Unwrap() error {
	return e.Err
}

func precondition(op string, err error) error {
	return &PreconditionError{Op: op, Err: err}
}
