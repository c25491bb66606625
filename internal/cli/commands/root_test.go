package commands

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// harness runs attrkit commands against a config that keeps the document
// store in a temporary sqlite file
type harness struct {
	dir    string
	config string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	dir := t.TempDir()
	cfg := "store:\n" +
		"  driver: sqlite3\n" +
		"  dsn: " + filepath.Join(dir, "attrkit.db") + "\n" +
		"cache:\n" +
		"  backend: memory\n" +
		"log:\n" +
		"  level: error\n"
	path := filepath.Join(dir, "attrkit.yaml")
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0o644))
	return &harness{dir: dir, config: path}
}

func (h *harness) file(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(h.dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func (h *harness) run(ctx context.Context, args ...string) (string, string, error) {
	cmd := NewRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--no-color", "--config", h.config}, args...))
	err := cmd.ExecuteContext(ctx)
	return stdout.String(), stderr.String(), err
}

func TestNewRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	assert.Equal(t, "attrkit", cmd.Use)
	assert.NotEmpty(t, cmd.Short)
	assert.NotEmpty(t, cmd.Long)

	var names []string
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
	}
	for _, want := range []string{"version", "validate", "upgrade", "info", "resolve", "docs", "new", "store", "serve", "token", "completion"} {
		assert.Contains(t, names, want)
	}
}

func TestVersionCommand(t *testing.T) {
	Version = "1.0.0-test"
	GitCommit = "abc123"
	t.Cleanup(func() { Version, GitCommit = "dev", "unknown" })

	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"version", "--config", "/does/not/exist.yaml"})
	require.NoError(t, cmd.Execute(), "version must not need a config file")

	assert.Contains(t, out.String(), "attrkit version: 1.0.0-test")
	assert.Contains(t, out.String(), "Git commit: abc123")
	assert.Contains(t, out.String(), "Go version: go")
}

func TestRoot_InvalidConfig(t *testing.T) {
	h := newHarness(t)
	bad := h.file(t, "bad.yaml", "store:\n  driver: mysql\n")
	h.config = bad

	_, _, err := h.run(context.Background(), "store", "list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "store.driver")
}

func TestNewZapLogger(t *testing.T) {
	var buf bytes.Buffer
	log, err := newZapLogger("warn", false, &buf)
	require.NoError(t, err)
	log.Info("hidden")
	log.Warn("shown")
	require.NoError(t, log.Sync())
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")

	_, err = newZapLogger("loud", false, &buf)
	assert.Error(t, err)
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, splitList(" a, b,,c "))
	assert.Nil(t, splitList(""))
}

func TestCompletionCommand(t *testing.T) {
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"completion", "bash"})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "attrkit")

	cmd = NewRootCommand()
	cmd.SetArgs([]string{"completion", "tcsh"})
	assert.Error(t, cmd.Execute())
}

func TestCompleteDocumentNames(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	_, _, err := h.run(ctx, "store", "put", h.file(t, "inlet.xml", version1Doc))
	require.NoError(t, err)

	out, _, err := h.run(ctx, "__complete", "store", "get", "")
	require.NoError(t, err)
	assert.Contains(t, out, "inlet")
}
