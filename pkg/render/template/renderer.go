package template

import (
	"io"
)

// Engine is the contract between the render package and a concrete template
// engine. Implementations stream output straight into the supplied writer and
// report failures as *Error values.
type Engine interface {
	// Execute evaluates the named template against data and writes the result
	// to out.
	Execute(name string, data any, out io.Writer) error
	// ExecuteString evaluates inline template content against data.
	ExecuteString(content string, data any, out io.Writer) error
	// Has reports whether name resolves to a template.
	Has(name string) bool
	// Names lists the templates the engine can resolve, sorted.
	Names() ([]string, error)
}
