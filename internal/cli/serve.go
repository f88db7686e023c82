package cli

import (
	"context"
	"errors"
	"fmt"
	"html"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/matzehuels/archviz/pkg/architecture"
	"github.com/matzehuels/archviz/pkg/diagram"
	apperrors "github.com/matzehuels/archviz/pkg/errors"
	"github.com/matzehuels/archviz/pkg/observability"
	"github.com/matzehuels/archviz/pkg/pipeline"
	"github.com/matzehuels/archviz/pkg/render"
)

const (
	defaultAddr     = "localhost:8080"
	shutdownTimeout = 5 * time.Second
	requestIDHeader = "X-Request-ID"
)

// serveOpts holds the command-line flags for the serve command.
type serveOpts struct {
	addr    string
	diagram string
	file    string
	engine  string
	cache   cacheFlags
}

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var opts serveOpts

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve rendered diagrams over HTTP for live preview",
		Long: `Serve a diagram over HTTP. Every request renders through the artifact
cache, so edits to a --file definition show up on reload.

Routes:
  GET /                   preview page
  GET /diagram.<format>   png, svg, jpg, dot, mermaid, json or toml
                          (?engine= overrides the layout engine)
  GET /healthz            liveness probe`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", defaultAddr, "listen address")
	cmd.Flags().StringVarP(&opts.diagram, "diagram", "d", architecture.DefaultName, "built-in diagram to serve")
	cmd.Flags().StringVar(&opts.file, "file", "", "diagram definition file (.toml or .json)")
	cmd.Flags().StringVar(&opts.engine, "engine", diagram.DefaultEngine, "default layout engine")
	opts.cache.register(cmd)

	_ = cmd.RegisterFlagCompletionFunc("diagram", completeDiagrams)
	_ = cmd.RegisterFlagCompletionFunc("engine", completeEngines)

	return cmd
}

func (c *CLI) runServe(ctx context.Context, opts serveOpts) error {
	base := pipeline.Options{
		Diagram: opts.diagram,
		File:    opts.file,
		Engine:  opts.engine,
	}
	// Fail on a bad flag before binding the port.
	checked := base
	if err := checked.ValidateAndSetDefaults(); err != nil {
		return err
	}

	runner := c.newRunner(ctx, opts.cache)
	defer runner.Close()

	srv := &http.Server{
		Addr:              opts.addr,
		Handler:           newServer(runner, base, c.Logger).routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- srv.ListenAndServe()
	}()

	printSuccess("Serving %s on %s", checked.Source(), StyleLink.Render("http://"+opts.addr))
	printNextStep("Preview", "http://"+opts.addr+"/")

	select {
	case err := <-serverErrors:
		return fmt.Errorf("listen %s: %w", opts.addr, err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			c.Logger.Warn("graceful shutdown did not complete", "error", err)
			_ = srv.Close()
		}
		printInfo("Server stopped")
		return nil
	}
}

// server renders diagrams on request.
type server struct {
	runner *pipeline.Runner
	base   pipeline.Options
	logger *log.Logger
}

func newServer(runner *pipeline.Runner, base pipeline.Options, logger *log.Logger) *server {
	return &server{runner: runner, base: base, logger: logger}
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(observe)
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleIndex)
	r.Get("/healthz", s.handleHealth)
	r.Get("/diagram.{format}", s.handleDiagram)
	return r
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *server) handleDiagram(w http.ResponseWriter, r *http.Request) {
	format, err := render.ParseFormat(chi.URLParam(r, "format"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	opts := s.base
	opts.Formats = []render.Format{format}
	if engine := r.URL.Query().Get("engine"); engine != "" {
		opts.Engine = engine
	}

	result, err := s.runner.Execute(r.Context(), opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("ETag", fmt.Sprintf(`"%s-%s-%s"`, result.DOTHash[:16], format, opts.Engine))
	_, _ = w.Write(result.Artifacts[format])
}

func (s *server) handleIndex(w http.ResponseWriter, r *http.Request) {
	opts := s.base
	if err := opts.ValidateAndSetDefaults(); err != nil {
		s.writeError(w, r, err)
		return
	}
	title := html.EscapeString(opts.Source())

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintf(w, indexHTML, title, title)
}

func (s *server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, context.Canceled) {
		return
	}
	status := apperrors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed",
			"path", r.URL.Path,
			"request_id", w.Header().Get(requestIDHeader),
			"error", err)
	}
	http.Error(w, apperrors.UserMessage(err), status)
}

// requestID tags every response with a request ID, reusing the caller's.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r)
	})
}

// observe reports each request to the server hooks.
func observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hooks := observability.Server()
		hooks.OnRequest(r.Context(), r.Method, r.URL.Path)

		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		hooks.OnResponse(r.Context(), r.Method, r.URL.Path, status, time.Since(start))
	})
}

const indexHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>%s</title>
<style>
body { font-family: sans-serif; margin: 2rem; color: #2D3436; }
nav a { margin-right: 1rem; }
img { max-width: 100%%; margin-top: 1rem; }
</style>
</head>
<body>
<nav>
<a href="/diagram.png">png</a>
<a href="/diagram.svg">svg</a>
<a href="/diagram.jpg">jpg</a>
<a href="/diagram.dot">dot</a>
<a href="/diagram.mermaid">mermaid</a>
<a href="/diagram.json">json</a>
<a href="/diagram.toml">toml</a>
</nav>
<img src="/diagram.svg" alt="%s">
</body>
</html>
`
