package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/archviz/pkg/architecture"
	"github.com/matzehuels/archviz/pkg/diagram"
	"github.com/matzehuels/archviz/pkg/pipeline"
	"github.com/matzehuels/archviz/pkg/render"
)

// generateOpts holds the command-line flags for the generate command.
type generateOpts struct {
	diagram string // built-in diagram name
	file    string // TOML/JSON definition, overrides diagram
	output  string // output directory or base path
	formats string // comma-separated output formats
	engine  string // Graphviz layout engine
	refresh bool   // ignore cached artifacts
	cache   cacheFlags
}

// generateCommand creates the generate command.
func (c *CLI) generateCommand() *cobra.Command {
	var opts generateOpts

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Render a diagram to image and text formats",
		Long: `Render a built-in diagram or a TOML/JSON definition.

Image formats (png, svg, jpg) are laid out by the in-process Graphviz engine
and cached by content. Text formats (dot, mermaid, json, toml) are emitted
directly; json and toml produce definitions that --file accepts.`,
		Example: `  archviz generate
  archviz generate -f png,svg,mermaid -o docs/
  archviz generate --file shop.toml --engine fdp -o shop.svg -f svg`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runGenerate(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.diagram, "diagram", "d", architecture.DefaultName, "built-in diagram to render")
	cmd.Flags().StringVar(&opts.file, "file", "", "diagram definition file (.toml or .json)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output directory, or file path whose base name is reused for every format")
	cmd.Flags().StringVarP(&opts.formats, "format", "f", string(render.DefaultFormat), "output formats: "+formatNames())
	cmd.Flags().StringVar(&opts.engine, "engine", diagram.DefaultEngine, "layout engine: dot, neato, fdp, circo, twopi")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "re-render even if the artifact is cached")
	opts.cache.register(cmd)

	_ = cmd.RegisterFlagCompletionFunc("diagram", completeDiagrams)
	_ = cmd.RegisterFlagCompletionFunc("engine", completeEngines)
	_ = cmd.RegisterFlagCompletionFunc("file", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return []string{"toml", "json"}, cobra.ShellCompDirectiveFilterFileExt
	})

	return cmd
}

func (c *CLI) runGenerate(ctx context.Context, opts generateOpts) error {
	formats, err := render.ParseFormats(opts.formats)
	if err != nil {
		return err
	}

	runner := c.newRunner(ctx, opts.cache)
	defer runner.Close()

	prog := newProgress(c.Logger)
	spinner := newSpinnerWithContext(ctx, "Rendering diagram...")
	spinner.Start()
	result, err := runner.Execute(ctx, pipeline.Options{
		Diagram: opts.diagram,
		File:    opts.file,
		Formats: formats,
		Engine:  opts.engine,
		Refresh: opts.refresh,
	})
	spinner.Stop()
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return err
	}

	dir, base := splitOutput(opts.output)
	paths, err := pipeline.WriteArtifacts(result, dir, base)
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Rendered %d artifacts", len(paths)))

	printSuccess("Generated %s", result.Diagram.Name)
	printStats(result.Stats.NodeCount, result.Stats.EdgeCount, result.Stats.ClusterCount,
		result.CacheInfo.Hits > 0 && result.CacheInfo.Misses == 0)
	for _, p := range paths {
		printFile(p)
	}
	return nil
}

// runDefault is what archviz does without arguments: write the built-in
// diagram as PNG into the working directory.
func (c *CLI) runDefault(ctx context.Context) error {
	runner := c.newRunner(ctx, cacheFlags{cacheURL: os.Getenv("ARCHVIZ_CACHE_URL")})
	defer runner.Close()

	result, err := runner.Execute(ctx, pipeline.Options{})
	if err != nil {
		return err
	}
	paths, err := pipeline.WriteArtifacts(result, ".", "")
	if err != nil {
		return err
	}

	fmt.Fprintf(stdout, "Architecture diagram generated as '%s'\n", filepath.Base(paths[0]))
	return nil
}

// splitOutput interprets the --output flag. An existing directory or a path
// ending in a separator is an output directory; anything else is a base
// path whose extension is dropped.
func splitOutput(output string) (dir, base string) {
	if output == "" {
		return ".", ""
	}
	if strings.HasSuffix(output, string(filepath.Separator)) || strings.HasSuffix(output, "/") {
		return output, ""
	}
	if info, err := os.Stat(output); err == nil && info.IsDir() {
		return output, ""
	}
	name := filepath.Base(output)
	return filepath.Dir(output), strings.TrimSuffix(name, filepath.Ext(name))
}

func formatNames() string {
	names := make([]string, len(render.Formats))
	for i, f := range render.Formats {
		names[i] = string(f)
	}
	return strings.Join(names, ", ")
}

func completeDiagrams(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	names := make([]string, 0, len(architecture.Builtin))
	for name := range architecture.Builtin {
		names = append(names, name)
	}
	slices.Sort(names)
	return names, cobra.ShellCompDirectiveNoFileComp
}

func completeEngines(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	names := make([]string, 0, len(diagram.Engines))
	for name := range diagram.Engines {
		names = append(names, name)
	}
	slices.Sort(names)
	return names, cobra.ShellCompDirectiveNoFileComp
}
