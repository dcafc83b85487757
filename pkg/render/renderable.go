package render

import (
	"errors"
	"io"

	"github.com/goliatone/go-tplforge/pkg/forge"
)

// ErrNilRenderable is returned when an Adapter has no value to render.
var ErrNilRenderable = errors.New("render: renderable is nil")

// Renderable is implemented by values that can write their rendered content
// into a sink. Render must only write to w and must not mutate the receiver.
// On failure bytes already written to w stay there.
type Renderable interface {
	Render(w io.Writer) error
}

// RenderFunc adapts a function to Renderable.
type RenderFunc func(w io.Writer) error

// Render calls f(w).
func (f RenderFunc) Render(w io.Writer) error {
	return f(w)
}

// Adapter exposes a Renderable as a forge.Producer. It holds the value it was
// built from and nothing else; Produce forwards straight to Render.
type Adapter struct {
	value Renderable
}

var _ forge.Producer = Adapter{}

// Adapt wraps v without copying the value behind it.
func Adapt(v Renderable) Adapter {
	return Adapter{value: v}
}

// Produce renders the wrapped value into w. Errors are returned unchanged.
func (a Adapter) Produce(w io.Writer) error {
	if a.value == nil {
		return ErrNilRenderable
	}
	return a.value.Render(w)
}

// Generate returns a create-fresh operation for v. Forging it fails if the
// target path already exists.
func Generate(v Renderable, options ...forge.Option) *forge.Generate {
	return forge.NewGenerate(Adapt(v), options...)
}

// Append returns an append operation for v. Forging it fails if the target
// path does not exist.
func Append(v Renderable, options ...forge.Option) *forge.Append {
	return forge.NewAppend(Adapt(v), options...)
}
