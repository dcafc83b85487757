package tplforge

import (
	"embed"
	"io/fs"

	"github.com/goliatone/go-tplforge/pkg/render"
	"github.com/goliatone/go-tplforge/pkg/render/template/pongo"
)

//go:embed templates
var embeddedTemplates embed.FS

// EmbeddedTemplates exposes the bundled templates compiled into the binary
// from the templates directory.
func EmbeddedTemplates() fs.FS {
	sub, err := fs.Sub(embeddedTemplates, "templates")
	if err != nil {
		return embeddedTemplates
	}
	return sub
}

// NewEmbeddedRegistry builds a registry over the bundled templates.
func NewEmbeddedRegistry(options ...pongo.Option) (*render.Registry, error) {
	return render.NewRegistry(EmbeddedTemplates(), options...)
}

// InstallEmbedded makes the bundled templates the process-wide registry. It
// must run before anything renders through render.Default.
func InstallEmbedded(options ...pongo.Option) error {
	registry, err := NewEmbeddedRegistry(options...)
	if err != nil {
		return err
	}
	return render.Install(registry)
}
