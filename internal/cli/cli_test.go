package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/tabinspect/internal/config"
	"github.com/JonMunkholm/tabinspect/internal/summary"
)

type harness struct {
	cfg    *config.Config
	dir    string
	csv    string
	stdout *bytes.Buffer
	stderr *bytes.Buffer
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	dir := t.TempDir()
	src := filepath.Join(dir, "data.csv")
	require.NoError(t, os.WriteFile(src, []byte("id,city\n1,Oslo\n,\n2,Bergen\n"), 0o644))

	cfg := &config.Config{}
	cfg.Ingest.DefaultPath = src
	cfg.Ingest.Delimiter = ","
	cfg.Ingest.PreviewRows = 5
	cfg.Install.Command = "apt-get install -y"
	cfg.Install.XLSConverter = "soffice"
	cfg.Install.XLSPackage = "libreoffice"
	cfg.Export.Dir = dir
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.ShutdownTimeout = time.Second
	cfg.Server.MaxConcurrentLoads = 2

	return &harness{cfg: cfg, dir: dir, csv: src, stdout: &bytes.Buffer{}, stderr: &bytes.Buffer{}}
}

func (h *harness) root(stdin string, tty bool) (*cobra.Command, Streams) {
	streams := Streams{In: strings.NewReader(stdin), Out: h.stdout, Err: h.stderr}
	return newRootCmd(h.cfg, streams, tty), streams
}

func (h *harness) exec(t *testing.T, stdin string, tty bool, args ...string) int {
	t.Helper()
	cmd, streams := h.root(stdin, tty)
	cmd.SetArgs(append([]string{"--no-color"}, args...))
	return run(cmd, streams)
}

func TestVersion(t *testing.T) {
	h := newHarness(t)

	code := h.exec(t, "", false, "version")

	assert.Equal(t, 0, code)
	assert.Contains(t, h.stdout.String(), "tabinspect version dev")
}

func TestRoot_NoTerminalPrintsHelp(t *testing.T) {
	h := newHarness(t)

	code := h.exec(t, "", false)

	assert.Equal(t, 0, code)
	assert.Contains(t, h.stdout.String(), "Usage:")
	assert.NotContains(t, h.stdout.String(), "Path to a .csv")
}

func TestRoot_InteractiveFlag(t *testing.T) {
	h := newHarness(t)

	code := h.exec(t, "\nn\n", false, "--interactive")

	assert.Equal(t, 0, code)
	assert.Contains(t, h.stdout.String(), "Rows: 3")
	assert.Contains(t, h.stdout.String(), "Nothing saved.")
}

func TestInspect_JSON(t *testing.T) {
	h := newHarness(t)

	code := h.exec(t, "", false, "inspect", h.csv, "--json")

	require.Equal(t, 0, code, h.stderr.String())
	var got summary.Summary
	require.NoError(t, json.Unmarshal(h.stdout.Bytes(), &got))
	assert.Equal(t, 3, got.Rows)
	assert.Equal(t, "utf-8", got.Encoding)
}

func TestInspect_Text(t *testing.T) {
	h := newHarness(t)

	code := h.exec(t, "", false, "inspect", h.csv)

	require.Equal(t, 0, code, h.stderr.String())
	assert.Contains(t, h.stdout.String(), "Missing values")
}

func TestInspect_FailureExitCode(t *testing.T) {
	h := newHarness(t)

	code := h.exec(t, "", false, "inspect", filepath.Join(h.dir, "absent.csv"))

	assert.Equal(t, 1, code)
	assert.Contains(t, h.stderr.String(), "Code: FILE002")
}

func TestInspect_BadKind(t *testing.T) {
	h := newHarness(t)

	code := h.exec(t, "", false, "inspect", h.csv, "--kind", "parquet")

	assert.Equal(t, 1, code)
	assert.Contains(t, h.stderr.String(), "unknown kind")
}

func TestExport(t *testing.T) {
	h := newHarness(t)

	code := h.exec(t, "", false, "export", h.csv, "--format", "2", "--out", "clean")

	require.Equal(t, 0, code, h.stderr.String())
	assert.FileExists(t, filepath.Join(h.dir, "clean.xlsx"))
	assert.Contains(t, h.stdout.String(), "Saved as")
}

func TestExport_RequiresOut(t *testing.T) {
	h := newHarness(t)

	code := h.exec(t, "", false, "export", h.csv)

	assert.Equal(t, 1, code)
	assert.Contains(t, h.stderr.String(), "out")
}

func TestServe_StopsOnCancel(t *testing.T) {
	h := newHarness(t)
	a := newApp(h.cfg, Streams{In: strings.NewReader(""), Out: h.stdout, Err: h.stderr})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan error, 1)
	go func() { done <- serve(ctx, a, "127.0.0.1:0") }()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not return after cancel")
	}
}

func TestServe_InstallIsOptIn(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		enabled bool
		want    bool
	}{
		{name: "default", args: nil, enabled: true, want: false},
		{name: "allow flag", args: []string{"--allow-install"}, enabled: true, want: true},
		{name: "allow flag but config disabled", args: []string{"--allow-install"}, enabled: false, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			h.cfg.Install.Enabled = tt.enabled
			a := newApp(h.cfg, Streams{In: strings.NewReader(""), Out: h.stdout, Err: h.stderr})
			require.Equal(t, tt.enabled, a.installer.Enabled)

			cmd := newServeCmd(a)
			cmd.SetArgs(append([]string{"--addr", "127.0.0.1:0"}, tt.args...))
			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			require.NoError(t, cmd.ExecuteContext(ctx))
			assert.Equal(t, tt.want, a.installer.Enabled)
		})
	}
}
