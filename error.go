package render

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration is returned when a node, a parameter schedule or a
	// render call has invalid arguments.
	ErrConfiguration = errors.New("invalid configuration")
	// ErrGraph is returned when a connection is malformed: indices are out
	// of range, parameter is unknown or nodes belong to different graphs.
	ErrGraph = errors.New("invalid graph")
	// ErrUnsupported is returned when no strategy can render a node.
	ErrUnsupported = errors.New("unsupported")
)

// ProcessorError is reported when a processor fails to process a quantum.
// Such errors don't abort the render: the node stops processing and the
// rest of its output is silent.
type ProcessorError struct {
	NodeID    string
	Processor string
	Err       error
}

func (e *ProcessorError) Error() string {
	return fmt.Sprintf("processor %q of node %s: %v", e.Processor, e.NodeID, e.Err)
}

// Unwrap returns the error returned by processor.
func (e *ProcessorError) Unwrap() error {
	return e.Err
}

// panicError wraps a value recovered from processor panic.
type panicError struct {
	value interface{}
}

func (e panicError) Error() string {
	return fmt.Sprintf("panic: %v", e.value)
}
