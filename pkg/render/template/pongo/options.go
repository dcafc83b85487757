package pongo

import (
	"io/fs"
	"strings"
)

// Option configures the pongo2 engine before construction.
type Option func(*config)

// FilterFunc is the engine-agnostic signature accepted by WithFilter.
type FilterFunc func(input any, param any) (any, error)

type config struct {
	baseDir    string
	templates  fs.FS
	extension  string
	templateFn map[string]any
	filters    map[string]FilterFunc
	globalData map[string]any
	autoescape bool
}

// WithBaseDir configures the engine to load templates from a directory on disk.
func WithBaseDir(dir string) Option {
	return func(cfg *config) {
		cfg.baseDir = strings.TrimSpace(dir)
	}
}

// WithFS configures the engine to load templates from an fs.FS, typically an
// embed.FS baked into the binary.
func WithFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templates = files
	}
}

// WithExtension appends ext to lookup names that do not already carry it.
// By default names are used verbatim, so "notes.txt" resolves "notes.txt".
func WithExtension(ext string) Option {
	return func(cfg *config) {
		trimmed := strings.TrimSpace(ext)
		if trimmed == "" {
			return
		}
		if !strings.HasPrefix(trimmed, ".") {
			trimmed = "." + trimmed
		}
		cfg.extension = trimmed
	}
}

// WithTemplateFunc registers helpers when the engine loads. FilterFunc values
// and pongo2 filter functions become filters; any other function becomes a
// global callable as {{ name(args) }}. New fails on a name that is already
// taken and on values that are not functions.
func WithTemplateFunc(funcs map[string]any) Option {
	return func(cfg *config) {
		if len(funcs) == 0 {
			return
		}
		if cfg.templateFn == nil {
			cfg.templateFn = make(map[string]any, len(funcs))
		}
		for name, fn := range funcs {
			cfg.templateFn[strings.TrimSpace(name)] = fn
		}
	}
}

// WithFilter registers a filter under name. Filters are process-wide in
// pongo2, so a name that already exists is rejected by New.
func WithFilter(name string, fn FilterFunc) Option {
	return func(cfg *config) {
		if cfg.filters == nil {
			cfg.filters = make(map[string]FilterFunc)
		}
		cfg.filters[strings.TrimSpace(name)] = fn
	}
}

// WithGlobalData seeds global context values available to every template.
func WithGlobalData(data map[string]any) Option {
	return func(cfg *config) {
		if len(data) == 0 {
			return
		}
		if cfg.globalData == nil {
			cfg.globalData = make(map[string]any, len(data))
		}
		for key, value := range data {
			cfg.globalData[strings.TrimSpace(key)] = value
		}
	}
}

// WithAutoescape HTML-escapes every printed value unless it is marked safe.
// Off by default, so templates write data exactly as given. pongo2 does not
// allow extends or block tags in templates rendered this way.
func WithAutoescape(enabled bool) Option {
	return func(cfg *config) {
		cfg.autoescape = enabled
	}
}
