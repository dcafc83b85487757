package render

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"sync/atomic"

	"github.com/goliatone/go-tplforge/pkg/render/template"
	"github.com/goliatone/go-tplforge/pkg/render/template/pongo"
)

// ErrRegistryInstalled is returned by Install once the process-wide registry
// has been set or read.
var ErrRegistryInstalled = errors.New("render: process registry already installed")

// Registry resolves named templates. It has no mutating methods: everything
// it can render is fixed when it is constructed.
type Registry struct {
	engine template.Engine
}

// NewRegistry builds a registry over fsys, typically an embed.FS holding a
// template directory. Extra engine options (extension, globals, filters) are
// applied after the filesystem.
func NewRegistry(fsys fs.FS, options ...pongo.Option) (*Registry, error) {
	if fsys == nil {
		return nil, fmt.Errorf("render: template filesystem is required")
	}
	opts := append([]pongo.Option{pongo.WithFS(fsys)}, options...)
	engine, err := pongo.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("render: new registry: %w", err)
	}
	return &Registry{engine: engine}, nil
}

// MustNewRegistry panics on construction failure. Useful for package-level
// wiring of embedded templates.
func MustNewRegistry(fsys fs.FS, options ...pongo.Option) *Registry {
	registry, err := NewRegistry(fsys, options...)
	if err != nil {
		panic(err)
	}
	return registry
}

// NewRegistryFromEngine wraps an already configured engine.
func NewRegistryFromEngine(engine template.Engine) *Registry {
	return &Registry{engine: engine}
}

// Execute renders the named template with data into w.
func (r *Registry) Execute(name string, data any, w io.Writer) error {
	if r == nil || r.engine == nil {
		return template.NotFound(name)
	}
	return r.engine.Execute(name, data, w)
}

// Has reports whether name resolves to a template.
func (r *Registry) Has(name string) bool {
	if r == nil || r.engine == nil {
		return false
	}
	return r.engine.Has(name)
}

// List returns the sorted template names.
func (r *Registry) List() ([]string, error) {
	if r == nil || r.engine == nil {
		return nil, nil
	}
	return r.engine.Names()
}

var processRegistry atomic.Pointer[Registry]

// Install sets the process-wide registry used by templates that were not
// given one explicitly. It succeeds at most once and only before the first
// call to Default.
func Install(registry *Registry) error {
	if registry == nil {
		return fmt.Errorf("render: registry is required")
	}
	if !processRegistry.CompareAndSwap(nil, registry) {
		return ErrRegistryInstalled
	}
	return nil
}

// Default returns the process-wide registry. If none was installed the slot
// is sealed with an empty registry on which every lookup fails with
// ErrTemplateNotFound.
func Default() *Registry {
	if registry := processRegistry.Load(); registry != nil {
		return registry
	}
	processRegistry.CompareAndSwap(nil, &Registry{})
	return processRegistry.Load()
}
