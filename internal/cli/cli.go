// Package cli implements the archviz command-line interface.
//
// Running archviz without a subcommand generates the built-in stock-market
// architecture diagram as architecture.png in the current directory. The
// subcommands expose the rest of the pipeline:
//
//   - generate: render a built-in diagram or a TOML/JSON definition to one
//     or more formats (png, svg, jpg, dot, mermaid, json, toml)
//   - inspect: list the clusters, nodes and edges of a diagram
//   - serve: an HTTP preview server for the rendered outputs
//   - cache: manage the rendered-artifact cache
//
// All commands support --verbose (-v) for debug-level logging.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/archviz/pkg/buildinfo"
	"github.com/matzehuels/archviz/pkg/cache"
	"github.com/matzehuels/archviz/pkg/observability"
	"github.com/matzehuels/archviz/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "archviz"

	// cachePrefix scopes cache keys when the backend is shared (Redis).
	cachePrefix = appName + ":"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
// The root command itself generates the default diagram.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "archviz renders architecture diagrams with Graphviz",
		Long: `archviz renders architecture diagrams: nodes grouped into nested clusters and
joined by labeled, styled edges, laid out by Graphviz.

Run without arguments to write the stock-market microservice diagram to
architecture.png in the current directory.`,
		Version:      buildinfo.Version,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			c.installHooks()
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runDefault(cmd.Context())
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.AddCommand(c.generateCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// installHooks routes pipeline, cache and server events to the debug log.
func (c *CLI) installHooks() {
	h := &logHooks{logger: c.Logger}
	observability.SetPipelineHooks(h)
	observability.SetCacheHooks(h)
	observability.SetServerHooks(h)
}

// =============================================================================
// Runner Factory
// =============================================================================

// cacheFlags are shared by every command that renders.
type cacheFlags struct {
	noCache  bool
	cacheURL string
}

func (f *cacheFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable the artifact cache")
	cmd.Flags().StringVar(&f.cacheURL, "cache-url", os.Getenv("ARCHVIZ_CACHE_URL"), "cache location: a directory or redis://host:port/db (default ~/.cache/archviz)")
}

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, f cacheFlags) *pipeline.Runner {
	ch, keyer := c.newCache(ctx, f)
	return pipeline.NewRunner(ch, keyer, c.Logger)
}

// newCache picks the artifact cache backend. A Redis URL selects the shared
// backend with scoped keys; otherwise entries live in the XDG cache dir.
// A cache that cannot be opened is disabled rather than failing the run.
func (c *CLI) newCache(ctx context.Context, f cacheFlags) (cache.Cache, cache.Keyer) {
	if f.noCache {
		return cache.NewNullCache(), nil
	}
	if strings.HasPrefix(f.cacheURL, "redis://") || strings.HasPrefix(f.cacheURL, "rediss://") {
		rc, err := cache.NewRedisCache(ctx, f.cacheURL)
		if err != nil {
			c.Logger.Warn("cache disabled", "backend", "redis", "error", err)
			return cache.NewNullCache(), nil
		}
		c.Logger.Debug("using redis cache", "url", f.cacheURL)
		return rc, cache.NewScopedKeyer(nil, cachePrefix)
	}
	dir := f.cacheURL
	if dir == "" {
		var err error
		if dir, err = cacheDir(); err != nil {
			c.Logger.Warn("cache disabled", "error", err)
			return cache.NewNullCache(), nil
		}
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		c.Logger.Warn("cache disabled", "backend", "file", "dir", dir, "error", err)
		return cache.NewNullCache(), nil
	}
	return fc, nil
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/archviz/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
