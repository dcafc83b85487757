package render

import (
	"io"
	"strings"
)

// TemplateOption configures a Template.
type TemplateOption func(*templateConfig)

type templateConfig struct {
	registry *Registry
}

// WithRegistry pins the registry a Template resolves its name in. Without it
// the process-wide registry is consulted on every render.
func WithRegistry(registry *Registry) TemplateOption {
	return func(cfg *templateConfig) {
		cfg.registry = registry
	}
}

// Template is a reusable recipe that renders values of type T through one
// named template. Declare it once per type and call Execute from the type's
// Render method, or use Bind to get a Renderable directly.
//
// The value's json representation is the template context, so T must be
// serialisable with encoding/json.
type Template[T any] struct {
	name     string
	registry *Registry
}

// NewTemplate returns the recipe for rendering T with the template name.
func NewTemplate[T any](name string, options ...TemplateOption) Template[T] {
	cfg := templateConfig{}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}
	return Template[T]{
		name:     strings.TrimSpace(name),
		registry: cfg.registry,
	}
}

// Name returns the template name.
func (t Template[T]) Name() string {
	return t.name
}

// Execute looks the template up and streams data rendered through it into w.
// A missing template yields ErrTemplateNotFound regardless of data; any
// failure during evaluation, including a failing writer, yields
// ErrEvaluationFailed. Nothing is cached between calls.
func (t Template[T]) Execute(w io.Writer, data T) error {
	registry := t.registry
	if registry == nil {
		registry = Default()
	}
	return registry.Execute(t.name, data, w)
}

// Bind returns a Renderable rendering data through t.
func (t Template[T]) Bind(data T) Renderable {
	return bound[T]{template: t, data: data}
}

type bound[T any] struct {
	template Template[T]
	data     T
}

func (b bound[T]) Render(w io.Writer) error {
	return b.template.Execute(w, b.data)
}
