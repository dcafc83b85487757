package pongo

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"

	"github.com/goliatone/go-tplforge/pkg/render/template"
)

// Engine satisfies template.Engine using a pongo2 template set. Its template
// sources, globals and filters are fixed by New; only the parsed-template
// cache changes afterwards.
type Engine struct {
	mu sync.RWMutex

	templateSet *pongo2.TemplateSet
	templates   map[string]*pongo2.Template
	sources     []fs.FS
	tplExt      string
	autoescape  bool
}

var _ template.Engine = (*Engine)(nil)

func init() {
	// Output must be the rendered bytes as written; escaping is opted into
	// per engine with WithAutoescape.
	pongo2.SetAutoescape(false)
}

// New constructs an Engine using the provided configuration options.
func New(options ...Option) (*Engine, error) {
	cfg := &config{}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(cfg)
	}

	if cfg.baseDir == "" && cfg.templates == nil {
		return nil, errors.New("pongo: need to provide either base dir or fs.FS")
	}

	var (
		loaders []pongo2.TemplateLoader
		sources []fs.FS
	)
	if cfg.baseDir != "" {
		loader, err := pongo2.NewLocalFileSystemLoader(cfg.baseDir)
		if err != nil {
			return nil, fmt.Errorf("pongo: create local loader: %w", err)
		}
		loaders = append(loaders, sourceLoader{inner: loader, autoescape: cfg.autoescape})
		sources = append(sources, os.DirFS(cfg.baseDir))
	}
	if cfg.templates != nil {
		loaders = append(loaders, sourceLoader{inner: pongo2.NewFSLoader(cfg.templates), autoescape: cfg.autoescape})
		sources = append(sources, cfg.templates)
	}

	engine := &Engine{
		templateSet: pongo2.NewSet("tplforge", loaders...),
		templates:   make(map[string]*pongo2.Template),
		sources:     sources,
		tplExt:      cfg.extension,
		autoescape:  cfg.autoescape,
	}
	registerDefaultFilters()

	for name, fn := range cfg.filters {
		if err := registerFilter(name, fn); err != nil {
			return nil, err
		}
	}
	if err := engine.setGlobals(cfg.globalData); err != nil {
		return nil, fmt.Errorf("pongo: apply global data: %w", err)
	}
	for name, fn := range cfg.templateFn {
		if err := engine.registerTemplateFunc(name, fn); err != nil {
			return nil, fmt.Errorf("pongo: register template func %q: %w", name, err)
		}
	}

	return engine, nil
}

// Execute renders the named template into out. Output is streamed; a failure
// part way through leaves whatever was already written in out.
func (e *Engine) Execute(name string, data any, out io.Writer) error {
	if e == nil || e.templateSet == nil {
		return errors.New("pongo: engine is nil")
	}
	templatePath := e.resolve(name)
	if !e.exists(templatePath) {
		return template.NotFound(name)
	}

	tmpl, err := e.getTemplate(templatePath)
	if err != nil {
		return template.EvaluationFailed(name, err)
	}

	viewContext, err := convertToContext(data)
	if err != nil {
		return template.EvaluationFailed(name, fmt.Errorf("convert data: %w", err))
	}

	return execute(name, tmpl, viewContext, out)
}

// ExecuteString renders inline template content into out.
func (e *Engine) ExecuteString(content string, data any, out io.Writer) error {
	if e == nil || e.templateSet == nil {
		return errors.New("pongo: engine is nil")
	}

	tmpl, err := e.templateSet.FromString(prepareSource(content, e.autoescape))
	if err != nil {
		return template.EvaluationFailed("", err)
	}

	viewContext, err := convertToContext(data)
	if err != nil {
		return template.EvaluationFailed("", fmt.Errorf("convert data: %w", err))
	}

	return execute("", tmpl, viewContext, out)
}

// Has reports whether name resolves to a template file.
func (e *Engine) Has(name string) bool {
	if e == nil {
		return false
	}
	return e.exists(e.resolve(name))
}

// Names lists every template reachable from the configured sources. When an
// extension is configured it is stripped so the names round-trip through
// Execute.
func (e *Engine) Names() ([]string, error) {
	if e == nil {
		return nil, nil
	}
	seen := make(map[string]struct{})
	for _, src := range e.sources {
		err := fs.WalkDir(src, ".", func(path string, entry fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				return walkErr
			}
			if entry.IsDir() {
				return nil
			}
			if e.tplExt != "" {
				if !strings.HasSuffix(path, e.tplExt) {
					return nil
				}
				path = strings.TrimSuffix(path, e.tplExt)
			}
			seen[path] = struct{}{}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("pongo: list templates: %w", err)
		}
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (e *Engine) resolve(name string) string {
	templatePath := strings.TrimPrefix(strings.TrimSpace(name), "/")
	if e.tplExt != "" && !strings.HasSuffix(templatePath, e.tplExt) {
		templatePath += e.tplExt
	}
	return templatePath
}

func (e *Engine) exists(path string) bool {
	if path == "" || !fs.ValidPath(path) {
		return false
	}
	for _, src := range e.sources {
		info, err := fs.Stat(src, path)
		if err == nil && !info.IsDir() {
			return true
		}
	}
	return false
}

func (e *Engine) setGlobals(data map[string]any) error {
	if len(data) == 0 {
		return nil
	}

	globalCtx, err := convertToContext(data)
	if err != nil {
		return err
	}

	if e.templateSet.Globals == nil {
		e.templateSet.Globals = make(pongo2.Context)
	}
	e.templateSet.Globals.Update(globalCtx)
	return nil
}

func (e *Engine) registerTemplateFunc(name string, fn any) error {
	if name == "" || fn == nil {
		return errors.New("name and function required")
	}

	switch f := fn.(type) {
	case FilterFunc:
		return registerFilter(name, f)
	case func(any, any) (any, error):
		return registerFilter(name, f)
	case pongo2.FilterFunction:
		return registerPongoFilter(name, f)
	case func(*pongo2.Value, *pongo2.Value) (*pongo2.Value, *pongo2.Error):
		return registerPongoFilter(name, f)
	}

	if !isCallable(fn) {
		return fmt.Errorf("%T is not a function", fn)
	}
	if e.templateSet.Globals == nil {
		e.templateSet.Globals = make(pongo2.Context)
	}
	if _, taken := e.templateSet.Globals[name]; taken {
		return fmt.Errorf("global %q already set", name)
	}
	e.templateSet.Globals[name] = fn
	return nil
}

func (e *Engine) getTemplate(path string) (*pongo2.Template, error) {
	e.mu.RLock()
	if tmpl, ok := e.templates[path]; ok {
		e.mu.RUnlock()
		return tmpl, nil
	}
	e.mu.RUnlock()

	e.mu.Lock()
	defer e.mu.Unlock()

	if tmpl, ok := e.templates[path]; ok {
		return tmpl, nil
	}

	tmpl, err := e.templateSet.FromFile(path)
	if err != nil {
		return nil, fmt.Errorf("load %q: %w", path, err)
	}

	e.templates[path] = tmpl
	return tmpl, nil
}

func execute(name string, tmpl *pongo2.Template, ctx pongo2.Context, out io.Writer) error {
	sink := &sinkWriter{w: out}
	err := tmpl.ExecuteWriterUnbuffered(ctx, sink)
	if sink.err != nil {
		return template.EvaluationFailed(name, fmt.Errorf("write output: %w", sink.err))
	}
	if err != nil {
		var perr *pongo2.Error
		if errors.As(err, &perr) && perr.OrigError != nil {
			err = causeError{perr}
		}
		return template.EvaluationFailed(name, err)
	}
	return nil
}

// causeError keeps pongo2's positioned message and exposes the underlying
// cause, e.g. ErrUndefined, to errors.Is.
type causeError struct {
	perr *pongo2.Error
}

func (e causeError) Error() string {
	return e.perr.Error()
}

func (e causeError) Unwrap() error {
	return e.perr.OrigError
}

// sinkWriter remembers the first write error. pongo2 nodes drop the error
// returned by the writer, so without it a failing sink would go unnoticed.
type sinkWriter struct {
	w   io.Writer
	err error
}

func (s *sinkWriter) Write(p []byte) (int, error) {
	if s.err != nil {
		return 0, s.err
	}
	n, err := s.w.Write(p)
	if err != nil {
		s.err = err
	}
	return n, err
}

func (s *sinkWriter) WriteString(str string) (int, error) {
	return s.Write([]byte(str))
}

func isCallable(v any) bool {
	if v == nil {
		return false
	}
	rv := reflect.ValueOf(v)
	return rv.IsValid() && rv.Kind() == reflect.Func
}
