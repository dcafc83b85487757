package pongo_test

import (
	"embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-tplforge/pkg/render/template"
	"github.com/goliatone/go-tplforge/pkg/render/template/pongo"
	"github.com/goliatone/go-tplforge/pkg/testsupport"
)

//go:embed testdata/templates
var embeddedTemplates embed.FS

func TestEngine_Execute(t *testing.T) {
	engine := newEngine(t)

	got := testsupport.CaptureOutput(t, func(w io.Writer) error {
		return engine.Execute("hello.txt", map[string]any{"name": "Ada"}, w)
	})

	want := testsupport.MustReadGoldenString(t, filepath.Join("testdata", "hello.golden"))
	if got != want {
		t.Fatalf("execute mismatch\nwant: %q\n got: %q", want, got)
	}
}

func TestEngine_ExecuteStruct(t *testing.T) {
	engine := newEngine(t)

	type item struct {
		Title string `json:"title"`
		Count int    `json:"count"`
	}
	data := struct {
		Items []item `json:"items"`
	}{
		Items: []item{{Title: "Alpha", Count: 1}, {Title: "Beta", Count: 2}},
	}

	got := testsupport.CaptureOutput(t, func(w io.Writer) error {
		return engine.Execute("nested/list.md", data, w)
	})

	want := testsupport.MustReadGoldenString(t, filepath.Join("testdata", "list.golden"))
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("execute mismatch (-want +got):\n%s", diff)
	}
}

func TestEngine_GlobalData(t *testing.T) {
	templatesFS := subFS(t)
	engine, err := pongo.New(
		pongo.WithFS(templatesFS),
		pongo.WithGlobalData(map[string]any{
			"settings": map[string]any{"env": "staging"},
		}),
	)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}

	got := testsupport.CaptureOutput(t, func(w io.Writer) error {
		return engine.Execute("use-global.txt", nil, w)
	})

	want := testsupport.MustReadGoldenString(t, filepath.Join("testdata", "use-global.golden"))
	if got != want {
		t.Fatalf("execute mismatch\nwant: %q\n got: %q", want, got)
	}
}

func TestEngine_WithFilter(t *testing.T) {
	engine, err := pongo.New(
		pongo.WithFS(subFS(t)),
		pongo.WithFilter("shout", func(input any, _ any) (any, error) {
			if input == nil {
				return "", nil
			}
			return fmt.Sprintf("%s!", strings.ToUpper(fmt.Sprint(input))), nil
		}),
	)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}

	got := testsupport.CaptureOutput(t, func(w io.Writer) error {
		return engine.Execute("use-filter.txt", map[string]any{"name": "Ada"}, w)
	})

	want := testsupport.MustReadGoldenString(t, filepath.Join("testdata", "use-filter.golden"))
	if got != want {
		t.Fatalf("execute mismatch\nwant: %q\n got: %q", want, got)
	}
}

func TestEngine_SanitizeFilter(t *testing.T) {
	engine := newEngine(t)

	got := testsupport.CaptureOutput(t, func(w io.Writer) error {
		return engine.Execute("sanitize.txt", map[string]any{
			"body": `<p>Release <b>notes</b><script>alert(1)</script></p>`,
		}, w)
	})

	if got != "Release notes" {
		t.Fatalf("expected markup to be stripped, got %q", got)
	}
}

func TestEngine_WithExtension(t *testing.T) {
	engine, err := pongo.New(pongo.WithFS(subFS(t)), pongo.WithExtension("txt"))
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}

	got := testsupport.CaptureOutput(t, func(w io.Writer) error {
		return engine.Execute("hello", map[string]any{"name": "Ada"}, w)
	})
	if got != "Hello, Ada!" {
		t.Fatalf("unexpected output %q", got)
	}

	names, err := engine.Names()
	if err != nil {
		t.Fatalf("names: %v", err)
	}
	want := []string{"broken", "hello", "sanitize", "use-filter", "use-global"}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Fatalf("names mismatch (-want +got):\n%s", diff)
	}
}

func TestEngine_WithBaseDir(t *testing.T) {
	dir := t.TempDir()
	testsupport.WriteFile(t, filepath.Join(dir, "greeting.txt"), "Hi {{ name }}")

	engine, err := pongo.New(pongo.WithBaseDir(dir))
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	if !engine.Has("greeting.txt") {
		t.Fatalf("expected greeting.txt to resolve")
	}

	got := testsupport.CaptureOutput(t, func(w io.Writer) error {
		return engine.Execute("greeting.txt", map[string]any{"name": "Bo"}, w)
	})
	if got != "Hi Bo" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestEngine_Names(t *testing.T) {
	engine := newEngine(t)

	names, err := engine.Names()
	if err != nil {
		t.Fatalf("names: %v", err)
	}
	want := []string{
		"broken.txt",
		"hello.txt",
		"nested/list.md",
		"sanitize.txt",
		"use-filter.txt",
		"use-global.txt",
	}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Fatalf("names mismatch (-want +got):\n%s", diff)
	}
}

func TestEngine_TemplateNotFound(t *testing.T) {
	engine := newEngine(t)

	contexts := []any{
		nil,
		map[string]any{"name": "Ada"},
		struct{ Broken func() }{},
	}
	for _, data := range contexts {
		var buf strings.Builder
		err := engine.Execute("missing.txt", data, &buf)
		if !errors.Is(err, template.ErrTemplateNotFound) {
			t.Fatalf("expected ErrTemplateNotFound for %T, got %v", data, err)
		}
		if errors.Is(err, template.ErrEvaluationFailed) {
			t.Fatalf("not-found error must not match evaluation failure: %v", err)
		}
		if buf.Len() != 0 {
			t.Fatalf("expected nothing written, got %q", buf.String())
		}
	}

	if engine.Has("nested") {
		t.Fatalf("directories must not resolve as templates")
	}
}

func TestEngine_EvaluationFailed(t *testing.T) {
	engine := newEngine(t)

	err := engine.Execute("broken.txt", map[string]any{"name": "Ada"}, io.Discard)
	if !errors.Is(err, template.ErrEvaluationFailed) {
		t.Fatalf("expected ErrEvaluationFailed, got %v", err)
	}
	if template.KindOf(err) != template.KindEvaluationFailed {
		t.Fatalf("unexpected kind %v", template.KindOf(err))
	}

	err = engine.Execute("hello.txt", struct{ Fn func() }{Fn: func() {}}, io.Discard)
	if !errors.Is(err, template.ErrEvaluationFailed) {
		t.Fatalf("expected ErrEvaluationFailed for unserialisable data, got %v", err)
	}
}

func TestEngine_SinkWriteFailure(t *testing.T) {
	engine := newEngine(t)
	errSink := errors.New("disk full")
	sink := &testsupport.FailingWriter{Limit: 3, Err: errSink}

	err := engine.Execute("hello.txt", map[string]any{"name": "Ada"}, sink)
	if !errors.Is(err, template.ErrEvaluationFailed) {
		t.Fatalf("expected ErrEvaluationFailed, got %v", err)
	}
	if !errors.Is(err, errSink) {
		t.Fatalf("expected sink error in chain, got %v", err)
	}
}

func TestEngine_ExecuteString(t *testing.T) {
	engine := newEngine(t)

	got := testsupport.CaptureOutput(t, func(w io.Writer) error {
		return engine.ExecuteString("{{ greeting|lowerfirst|trim }}", map[string]any{"greeting": "  Howdy "}, w)
	})
	if got != "howdy" {
		t.Fatalf("unexpected output %q", got)
	}

	err := engine.ExecuteString("{% if %}", nil, io.Discard)
	if !errors.Is(err, template.ErrEvaluationFailed) {
		t.Fatalf("expected ErrEvaluationFailed, got %v", err)
	}
}

func TestNew_RequiresSource(t *testing.T) {
	if _, err := pongo.New(); err == nil {
		t.Fatalf("expected error without base dir or fs")
	}
}

func newEngine(t *testing.T) *pongo.Engine {
	t.Helper()

	engine, err := pongo.New(pongo.WithFS(subFS(t)))
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return engine
}

func subFS(t *testing.T) fs.FS {
	t.Helper()

	templatesFS, err := fs.Sub(embeddedTemplates, "testdata/templates")
	if err != nil {
		t.Fatalf("sub fs: %v", err)
	}
	return templatesFS
}
