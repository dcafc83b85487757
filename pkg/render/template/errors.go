package template

import (
	"errors"
	"fmt"
)

// Kind classifies rendering failures.
type Kind int

const (
	// KindEvaluationFailed covers parse errors, unresolved filters or tags,
	// type mismatches between data and template, and sink write failures.
	KindEvaluationFailed Kind = iota + 1
	// KindTemplateNotFound means the name is absent from the registry.
	KindTemplateNotFound
)

func (k Kind) String() string {
	switch k {
	case KindTemplateNotFound:
		return "template not found"
	case KindEvaluationFailed:
		return "evaluation failed"
	default:
		return "unknown"
	}
}

var (
	// ErrTemplateNotFound matches any *Error of KindTemplateNotFound.
	ErrTemplateNotFound = errors.New("template: template not found")
	// ErrEvaluationFailed matches any *Error of KindEvaluationFailed.
	ErrEvaluationFailed = errors.New("template: evaluation failed")
)

// Error is the rendering error reported by engines.
type Error struct {
	Kind     Kind
	Template string
	Err      error
}

// NotFound builds a KindTemplateNotFound error for name.
func NotFound(name string) *Error {
	return &Error{Kind: KindTemplateNotFound, Template: name}
}

// EvaluationFailed builds a KindEvaluationFailed error for name wrapping cause.
func EvaluationFailed(name string, cause error) *Error {
	return &Error{Kind: KindEvaluationFailed, Template: name, Err: cause}
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	name := e.Template
	if name == "" {
		name = "<inline>"
	}
	if e.Err == nil {
		return fmt.Sprintf("template %q: %s", name, e.Kind)
	}
	return fmt.Sprintf("template %q: %s: %v", name, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is lets errors.Is match the kind sentinels.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrTemplateNotFound:
		return e.Kind == KindTemplateNotFound
	case ErrEvaluationFailed:
		return e.Kind == KindEvaluationFailed
	}
	return false
}

// KindOf returns the Kind of the first *Error in err's chain, or zero when
// err carries none.
func KindOf(err error) Kind {
	var rerr *Error
	if errors.As(err, &rerr) {
		return rerr.Kind
	}
	return 0
}
