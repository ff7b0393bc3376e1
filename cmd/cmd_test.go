package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/gnoswap-labs/extdot/expand"
	"github.com/gnoswap-labs/extdot/internal"
	"github.com/gnoswap-labs/extdot/internal/extdot"
	tt "github.com/gnoswap-labs/extdot/internal/types"
)

func init() {
	color.NoColor = true
}

func newEngine(t *testing.T, mode internal.Mode, severity tt.Severity) *internal.Engine {
	t.Helper()
	opts := extdot.DefaultOptions()
	opts.EmptyBody = severity
	engine, err := internal.NewEngine(internal.EngineOptions{
		Options:         opts,
		Mode:            mode,
		Hygienic:        true,
		OutputExtension: ".expanded.rs",
	})
	require.NoError(t, err)
	return engine
}

func writeSource(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRunExpand(t *testing.T) {
	t.Parallel()

	t.Run("prints expansion and diagnostics", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		path := writeSource(t, dir, "main.rs", "fn f() { x.[] }\n")

		var stdout, stderr bytes.Buffer
		err := runExpand(context.Background(), zap.NewNop(), newEngine(t, internal.ModeItem, tt.SeverityWarning),
			[]string{path}, expandSettings{stdout: &stdout, diagnostic: &stderr})

		require.NoError(t, err)
		assert.Equal(t, "fn f() { {} }\n", stdout.String())
		assert.Contains(t, stderr.String(), "empty extended dot")
		assert.Contains(t, stderr.String(), extdot.RuleEmptyBody)
	})

	t.Run("multiple files get a header", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		a := writeSource(t, dir, "a.rs", "a.[f]")
		b := writeSource(t, dir, "b.rs", "b.[g]")

		var stdout bytes.Buffer
		err := runExpand(context.Background(), zap.NewNop(), newEngine(t, internal.ModeItem, tt.SeverityWarning),
			[]string{a, b}, expandSettings{stdout: &stdout, diagnostic: &bytes.Buffer{}})

		require.NoError(t, err)
		out := stdout.String()
		assert.Contains(t, out, "// "+a+"\n{ let mut it_1 = a; f(it_1) }\n")
		assert.Contains(t, out, "// "+b+"\n{ let mut it_1 = b; g(it_1) }\n")
	})

	t.Run("write stores generated files", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		path := writeSource(t, dir, "lib.rs", "x.[len()]")

		var stdout bytes.Buffer
		err := runExpand(context.Background(), zap.NewNop(), newEngine(t, internal.ModeItem, tt.SeverityWarning),
			[]string{dir}, expandSettings{write: true, outputExt: ".expanded.rs", stdout: &stdout, diagnostic: &bytes.Buffer{}})

		require.NoError(t, err)
		generated, err := os.ReadFile(filepath.Join(dir, "lib.expanded.rs"))
		require.NoError(t, err)
		assert.Equal(t, "{ let mut it_1 = x; it_1.len() }\n", string(generated))
		assert.Contains(t, stdout.String(), "Expanded "+path)

		original, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "x.[len()]", string(original))
	})

	t.Run("dry run writes nothing", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		writeSource(t, dir, "lib.rs", "x.[len()]")

		var stdout bytes.Buffer
		err := runExpand(context.Background(), zap.NewNop(), newEngine(t, internal.ModeItem, tt.SeverityWarning),
			[]string{dir}, expandSettings{write: true, dryRun: true, outputExt: ".expanded.rs", stdout: &stdout, diagnostic: &bytes.Buffer{}})

		require.NoError(t, err)
		assert.Contains(t, stdout.String(), "Would write")
		assert.NoFileExists(t, filepath.Join(dir, "lib.expanded.rs"))
	})

	t.Run("strict empty body fails", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		path := writeSource(t, dir, "main.rs", "x.[]")

		err := runExpand(context.Background(), zap.NewNop(), newEngine(t, internal.ModeItem, tt.SeverityError),
			[]string{path}, expandSettings{stdout: &bytes.Buffer{}, diagnostic: &bytes.Buffer{}})
		assert.ErrorIs(t, err, extdot.ErrEmptyBody)
	})

	t.Run("missing path", func(t *testing.T) {
		t.Parallel()
		err := runExpand(context.Background(), zap.NewNop(), newEngine(t, internal.ModeItem, tt.SeverityWarning),
			[]string{filepath.Join(t.TempDir(), "nope.rs")}, expandSettings{stdout: &bytes.Buffer{}, diagnostic: &bytes.Buffer{}})
		assert.Error(t, err)
	})
}

func TestWriteJSON(t *testing.T) {
	t.Parallel()
	results := []internal.Result{
		{Filename: "a.rs", Output: []byte("{}\n")},
	}

	var stdout bytes.Buffer
	require.NoError(t, writeJSON(results, "", &stdout))

	var decoded []jsonResult
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &decoded))
	require.Len(t, decoded, 1)
	assert.Equal(t, "a.rs", decoded[0].Filename)
	assert.Equal(t, "{}\n", decoded[0].Output)
	assert.NotNil(t, decoded[0].Issues)
	assert.Contains(t, stdout.String(), `"issues": []`)

	path := filepath.Join(t.TempDir(), "out.json")
	require.NoError(t, writeJSON(results, path, &stdout))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "["))
}

func TestHasErrors(t *testing.T) {
	t.Parallel()
	assert.False(t, hasErrors(nil))
	assert.False(t, hasErrors([]internal.Result{{Issues: []tt.Issue{{Severity: tt.SeverityWarning}}}}))
	assert.True(t, hasErrors([]internal.Result{{}, {Issues: []tt.Issue{{Severity: tt.SeverityError}}}}))
}

func TestInitConfigurationFile(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), expand.DefaultConfigFile)

	require.NoError(t, initConfigurationFile(path, false))
	config, err := expand.LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, expand.DefaultConfig(), config)

	assert.Error(t, initConfigurationFile(path, false), "existing files are kept")

	require.NoError(t, os.WriteFile(path, []byte("mode: expr\n"), 0o644))
	require.NoError(t, initConfigurationFile(path, true))
	config, err = expand.LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "sites", config.Mode)
}

func TestDumpTokens(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	require.NoError(t, dumpTokens(&out, []byte("f(x)"), false))
	assert.Equal(t, "1:1 Ident(f)\n1:2 Group(Paren)\n  1:3 Ident(x)\n", out.String())

	out.Reset()
	require.NoError(t, dumpTokens(&out, []byte("a  .[ f ]"), true))
	assert.Equal(t, "a.[f]\n", out.String())

	assert.Error(t, dumpTokens(&out, []byte("f(x"), false))
}
