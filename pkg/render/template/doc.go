// Package template defines the engine seam the render package relies on and the
// error taxonomy every engine reports through: a named template is either
// missing from the registry or fails while being evaluated into a sink.
package template
