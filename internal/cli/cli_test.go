package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-tplforge/internal/prompt"
	"github.com/goliatone/go-tplforge/pkg/forge"
	"github.com/goliatone/go-tplforge/pkg/render"
)

type answers map[string]string

func (a answers) Input(_ context.Context, cfg prompt.InputConfig) (string, error) {
	answer, ok := a[strings.TrimSuffix(cfg.Message, ":")]
	if !ok {
		answer = cfg.Default
	}
	if cfg.Validator != nil {
		if err := cfg.Validator(answer); err != nil {
			return "", err
		}
	}
	return answer, nil
}

type result struct {
	stdout string
	stderr string
	err    error
}

func run(t *testing.T, fsys afero.Fs, driver prompt.Driver, args ...string) result {
	t.Helper()
	t.Setenv("HOME", t.TempDir())

	if driver == nil {
		driver = answers{}
	}
	cmd := newRootCmd(driver, fsys)
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(""))
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(context.Background())
	return result{stdout: stdout.String(), stderr: stderr.String(), err: err}
}

func TestList(t *testing.T) {
	res := run(t, afero.NewMemMapFs(), nil, "list")
	require.NoError(t, res.err)
	assert.Equal(t, "changelog-entry.md\ngitignore\nhello.txt\nnote.md\n", res.stdout)
}

func TestRender_Set(t *testing.T) {
	res := run(t, afero.NewMemMapFs(), nil, "render", "hello.txt", "--set", "name=World")
	require.NoError(t, res.err)
	assert.Equal(t, "Hello, World!", res.stdout)
}

func TestRender_SetKeepsText(t *testing.T) {
	tests := map[string]string{
		"name=1.10":            "Hello, 1.10!",
		"name=Tom & Jerry <x>": "Hello, Tom & Jerry <x>!",
	}
	for assignment, want := range tests {
		res := run(t, afero.NewMemMapFs(), nil, "render", "hello.txt", "--set", assignment)
		require.NoError(t, res.err, assignment)
		assert.Equal(t, want, res.stdout, assignment)
	}
}

func TestRender_UndefinedValue(t *testing.T) {
	res := run(t, afero.NewMemMapFs(), nil, "render", "hello.txt")
	require.Error(t, res.err)
	assert.True(t, errors.Is(res.err, render.ErrEvaluationFailed))
	assert.Empty(t, res.stdout)
}

func TestRender_AskRequiresValue(t *testing.T) {
	res := run(t, afero.NewMemMapFs(), nil, "render", "hello.txt", "--ask", "name")
	require.Error(t, res.err)
	assert.True(t, errors.Is(res.err, prompt.ErrRequired))
}

func TestRender_DataFileAndOverride(t *testing.T) {
	dir := t.TempDir()
	dataPath := filepath.Join(dir, "release.yaml")
	content := "version: 1.0.0\ndate: \"2024-05-01\"\nchanges:\n  - Added append\n  - Fixed cleanup\n"
	require.NoError(t, os.WriteFile(dataPath, []byte(content), 0o644))

	res := run(t, afero.NewMemMapFs(), nil,
		"render", "changelog-entry.md", "--data", dataPath, "--set", "version=1.2.0")
	require.NoError(t, res.err)
	assert.Equal(t, "## 1.2.0 - 2024-05-01\n\n- Added append\n- Fixed cleanup\n\n", res.stdout)
}

func TestRender_DataFromStdin(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cmd := newRootCmd(answers{}, afero.NewMemMapFs())
	var stdout bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetIn(strings.NewReader(`{"name": "Stdin"}`))
	cmd.SetArgs([]string{"render", "hello.txt", "--data", "-"})

	require.NoError(t, cmd.Execute())
	assert.Equal(t, "Hello, Stdin!", stdout.String())
}

func TestRender_Ask(t *testing.T) {
	res := run(t, afero.NewMemMapFs(), answers{"name": "Ada"}, "render", "hello.txt", "--ask", "name")
	require.NoError(t, res.err)
	assert.Equal(t, "Hello, Ada!", res.stdout)
}

func TestRender_AskDefaultsToExistingValue(t *testing.T) {
	res := run(t, afero.NewMemMapFs(), nil,
		"render", "hello.txt", "--set", "name=World", "--ask", "name")
	require.NoError(t, res.err)
	assert.Equal(t, "Hello, World!", res.stdout)
}

func TestRender_TemplateNotFound(t *testing.T) {
	res := run(t, afero.NewMemMapFs(), nil, "render", "missing.txt")
	require.Error(t, res.err)
	assert.True(t, errors.Is(res.err, render.ErrTemplateNotFound))
}

func TestRender_TemplatesDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "greeting.tmpl"), []byte("Hi {{ who }} from {{ team }}"), 0o644))

	res := run(t, afero.NewMemMapFs(), nil,
		"--templates-dir", dir, "--extension", ".tmpl",
		"render", "greeting", "--set", "who=Bo", "--set", "team=ops")
	require.NoError(t, res.err)
	assert.Equal(t, "Hi Bo from ops", res.stdout)
}

func TestRender_ConfigGlobals(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "project.txt"), []byte("{{ project }}:{{ name }}"), 0o644))
	configPath := filepath.Join(dir, "tplforge.yaml")
	config := "templates-dir: " + dir + "\nglobals:\n  project: tplforge\n"
	require.NoError(t, os.WriteFile(configPath, []byte(config), 0o644))

	res := run(t, afero.NewMemMapFs(), nil, "--config", configPath, "render", "project.txt", "--set", "name=cli")
	require.NoError(t, res.err)
	assert.Equal(t, "tplforge:cli", res.stdout)
}

func TestInvalidConfig(t *testing.T) {
	res := run(t, afero.NewMemMapFs(), nil, "--log-level", "loud", "list")
	require.Error(t, res.err)
	assert.ErrorContains(t, res.err, "log-level")
}

func TestGenerate(t *testing.T) {
	fsys := afero.NewMemMapFs()

	res := run(t, fsys, nil, "generate", "hello.txt", "out/hello.txt", "--set", "name=World")
	require.NoError(t, res.err)
	assert.Contains(t, res.stderr, "generated")

	content, err := afero.ReadFile(fsys, "out/hello.txt")
	require.NoError(t, err)
	assert.Equal(t, "Hello, World!", string(content))
}

func TestGenerate_Perm(t *testing.T) {
	fsys := afero.NewMemMapFs()

	res := run(t, fsys, nil, "generate", "hello.txt", "hello.txt", "--set", "name=World", "--perm", "0600")
	require.NoError(t, res.err)

	info, err := fsys.Stat("hello.txt")
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestGenerate_FailsIfExists(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "hello.txt", []byte("keep"), 0o644))

	res := run(t, fsys, nil, "generate", "hello.txt", "hello.txt", "--set", "name=World")
	require.Error(t, res.err)
	assert.True(t, forge.IsExistenceViolation(res.err))

	content, err := afero.ReadFile(fsys, "hello.txt")
	require.NoError(t, err)
	assert.Equal(t, "keep", string(content))
}

func TestGenerate_NoCreateDirs(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "missing", "hello.txt")

	res := run(t, afero.NewOsFs(), nil, "generate", "hello.txt", path, "--create-dirs=false")
	require.Error(t, res.err)
	assert.NoDirExists(t, filepath.Join(dir, "missing"))
}

func TestGenerate_MissingTemplateLeavesNoFile(t *testing.T) {
	fsys := afero.NewMemMapFs()

	res := run(t, fsys, nil, "generate", "missing.txt", "out.txt")
	require.Error(t, res.err)
	assert.True(t, errors.Is(res.err, render.ErrTemplateNotFound))

	exists, err := afero.Exists(fsys, "out.txt")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestAppend(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "CHANGELOG.md", []byte("# Changelog\n\n"), 0o644))

	res := run(t, fsys, answers{"date": "2026-10-15"}, "append", "changelog-entry.md", "CHANGELOG.md",
		"--set", "version=1.2.0", "--ask", "date")
	require.NoError(t, res.err)
	assert.Contains(t, res.stderr, "appended")

	content, err := afero.ReadFile(fsys, "CHANGELOG.md")
	require.NoError(t, err)
	assert.Equal(t, "# Changelog\n\n## 1.2.0 - 2026-10-15\n\n\n", string(content))
}

func TestAppend_FailsIfMissing(t *testing.T) {
	fsys := afero.NewMemMapFs()

	res := run(t, fsys, nil, "append", "hello.txt", "notes.txt", "--set", "name=World")
	require.Error(t, res.err)
	assert.True(t, forge.IsExistenceViolation(res.err))

	exists, err := afero.Exists(fsys, "notes.txt")
	require.NoError(t, err)
	assert.False(t, exists)
}
