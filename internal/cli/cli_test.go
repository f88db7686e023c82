package cli

import (
	"bytes"
	"strings"
	"testing"
)

func TestRootCommand(t *testing.T) {
	c, _ := testCLI(t)
	root := c.RootCommand()

	if root.Use != appName {
		t.Errorf("Use = %q, want %q", root.Use, appName)
	}
	for _, name := range []string{"generate", "inspect", "serve", "cache", "completion"} {
		if cmd, _, err := root.Find([]string{name}); err != nil || cmd.Name() != name {
			t.Errorf("subcommand %q not registered", name)
		}
	}
}

func TestVersionFlag(t *testing.T) {
	c, _ := testCLI(t)
	root := c.RootCommand()

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"--version"})
	if err := root.Execute(); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out.String(), "archviz version ") {
		t.Errorf("--version printed %q", out.String())
	}
}

func TestCompletionCommand(t *testing.T) {
	c, _ := testCLI(t)
	out := captureOutput(t)

	if err := runCommand(t, c, "completion", "bash"); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "archviz") {
		t.Error("bash completion should mention the command name")
	}
	if err := runCommand(t, c, "completion", "tcsh"); err == nil {
		t.Error("unsupported shell should be rejected")
	}
}
