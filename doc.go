// Package tplforge bundles a small set of general purpose templates and wires
// them into the render package's process-wide registry. The render and forge
// packages under pkg/ hold the actual machinery.
package tplforge
