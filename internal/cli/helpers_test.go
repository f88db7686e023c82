package cli

import (
	"bytes"
	"context"
	"io"
	"sync/atomic"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/archviz/pkg/observability"
	"github.com/matzehuels/archviz/pkg/render"
)

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

// captureOutput redirects user-facing output for the duration of the test.
func captureOutput(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	old := stdout
	stdout = &buf
	t.Cleanup(func() { stdout = old })
	return &buf
}

// testCLI returns a CLI that logs to a buffer and an isolated cache dir.
func testCLI(t *testing.T) (*CLI, *bytes.Buffer) {
	t.Helper()
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	t.Setenv("ARCHVIZ_CACHE_URL", "")
	t.Cleanup(observability.Reset)

	var logs bytes.Buffer
	return New(&logs, log.DebugLevel), &logs
}

// runCommand executes the root command with args.
func runCommand(t *testing.T, c *CLI, args ...string) error {
	t.Helper()
	root := c.RootCommand()
	root.SetArgs(args)
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	return root.ExecuteContext(context.Background())
}

// fakeEngine stands in for Graphviz.
type fakeEngine struct {
	calls atomic.Int32
	err   error
}

func (f *fakeEngine) Render(_ context.Context, _ string, format render.Format) ([]byte, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	if format == render.FormatPNG {
		return append(append([]byte{}, pngMagic...), "fake"...), nil
	}
	return []byte("fake " + string(format)), nil
}
