package forge

import (
	"io/fs"

	"github.com/apex/log"
	"github.com/spf13/afero"
)

const defaultPerm fs.FileMode = 0o644

// Option customises how an operation touches the filesystem.
type Option func(*config)

type config struct {
	fs         afero.Fs
	perm       fs.FileMode
	logger     log.Interface
	createDirs bool
}

func newConfig(options []Option) config {
	cfg := config{
		perm:       defaultPerm,
		createDirs: true,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}
	if cfg.fs == nil {
		cfg.fs = afero.NewOsFs()
	}
	if cfg.logger == nil {
		cfg.logger = log.Log
	}
	return cfg
}

// WithFS swaps the filesystem, e.g. afero.NewMemMapFs() in tests or a
// BasePathFs to confine writes to a directory.
func WithFS(fsys afero.Fs) Option {
	return func(cfg *config) {
		cfg.fs = fsys
	}
}

// WithPerm sets the permission bits for files created by Generate.
func WithPerm(perm fs.FileMode) Option {
	return func(cfg *config) {
		if perm == 0 {
			return
		}
		cfg.perm = perm.Perm()
	}
}

// WithLogger routes debug logging to logger.
func WithLogger(logger log.Interface) Option {
	return func(cfg *config) {
		cfg.logger = logger
	}
}

// WithCreateDirs controls whether Generate creates missing parent
// directories. Enabled by default; Append never creates anything.
func WithCreateDirs(enabled bool) Option {
	return func(cfg *config) {
		cfg.createDirs = enabled
	}
}
