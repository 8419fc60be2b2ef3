package nn

import "fmt"

// ShapeError reports an input whose rank or dimensions are incompatible with
// the requested operation. It is never recovered locally: a network cannot be
// built around undefined shapes, so it propagates to the caller.
type ShapeError struct {
	Op  string // operation that rejected the input, e.g. "conv1d"
	Msg string
}

func (e *ShapeError) Error() string {
	return "nn: " + e.Op + ": " + e.Msg
}

func shapeErrorf(op, format string, args ...any) error {
	return &ShapeError{Op: op, Msg: fmt.Sprintf(format, args...)}
}

// IndexError reports an embedding id outside [0, Size).
type IndexError struct {
	Op    string
	Index int
	Size  int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("nn: %s: id %d out of range [0, %d)", e.Op, e.Index, e.Size)
}
