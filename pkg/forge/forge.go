package forge

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
)

// Producer writes content into the sink supplied by an operation.
type Producer interface {
	Produce(w io.Writer) error
}

// ProducerFunc adapts a function to Producer.
type ProducerFunc func(w io.Writer) error

// Produce calls f(w).
func (f ProducerFunc) Produce(w io.Writer) error {
	return f(w)
}

// Operation is a single-use unit of work bound to a Producer.
type Operation interface {
	// Forge commits the producer output to path. It may be called once.
	Forge(path string) error
	// Mode reports the existence contract the operation enforces.
	Mode() Mode
}

// Mode tags an operation with its existence contract.
type Mode int

const (
	// ModeCreate requires the target to be absent.
	ModeCreate Mode = iota + 1
	// ModeAppend requires the target to exist.
	ModeAppend
)

func (m Mode) String() string {
	switch m {
	case ModeCreate:
		return "create"
	case ModeAppend:
		return "append"
	default:
		return "unknown"
	}
}

var (
	// ErrAlreadyForged is returned when Forge is called on a consumed operation.
	ErrAlreadyForged = errors.New("forge: operation already forged")
	// ErrNilProducer is returned when an operation has nothing to produce.
	ErrNilProducer = errors.New("forge: producer is required")
)

// ExistenceError reports a path that violates an operation's existence
// contract. It unwraps to fs.ErrExist for ModeCreate and fs.ErrNotExist for
// ModeAppend.
type ExistenceError struct {
	Mode Mode
	Path string
}

func (e *ExistenceError) Error() string {
	switch e.Mode {
	case ModeCreate:
		return fmt.Sprintf("forge: create %s: file already exists", e.Path)
	case ModeAppend:
		return fmt.Sprintf("forge: append %s: file does not exist", e.Path)
	default:
		return fmt.Sprintf("forge: %s %s: existence violation", e.Mode, e.Path)
	}
}

func (e *ExistenceError) Unwrap() error {
	switch e.Mode {
	case ModeCreate:
		return fs.ErrExist
	case ModeAppend:
		return fs.ErrNotExist
	default:
		return nil
	}
}

// IsExistenceViolation reports whether err carries an *ExistenceError.
func IsExistenceViolation(err error) bool {
	var existence *ExistenceError
	return errors.As(err, &existence)
}

// countingWriter tracks bytes passed through to the file for logging.
type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
