// Command a11ylive audits pages for accessibility violations. It runs in
// three modes: one-shot (audit a URL or file, export, exit), watch (live
// page observation with the HTTP API), and MCP (tools over stdio).
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	_ "modernc.org/sqlite"

	"github.com/Kvnq-Poza/a11y-live/engine"
	"github.com/Kvnq-Poza/a11y-live/internal/browser"
	"github.com/Kvnq-Poza/a11y-live/internal/config"
	"github.com/Kvnq-Poza/a11y-live/internal/serve"
	"github.com/Kvnq-Poza/a11y-live/internal/store"
	"github.com/Kvnq-Poza/a11y-live/report"
)

var version = "dev"

func main() {
	var (
		urlFlag    = flag.String("url", "", "page URL to audit")
		fileFlag   = flag.String("file", "", "local HTML file to audit")
		configFlag = flag.String("config", "", "YAML configuration file")
		exportFlag = flag.String("export", report.FormatJSON, "export format: json|csv|html|markdown")
		outFlag    = flag.String("out", "", "write export to file instead of stdout")
		dbFlag     = flag.String("db", "", "audit-history database path")
		serveFlag  = flag.String("serve", "", "HTTP API listen address (implies enable_ui)")
		watchFlag  = flag.Bool("watch", false, "keep observing the page; add -serve or enable_ui for the HTTP API")
		mcpFlag    = flag.Bool("mcp", false, "serve MCP tools over stdio")
		levelFlag  = flag.String("log-level", "info", "log level: debug|info|warn|error")
	)
	flag.Parse()

	logger := newLogger(*levelFlag)
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := loadConfig(*configFlag)
	if err != nil {
		fatal(logger, "config", err)
	}
	if *dbFlag != "" {
		cfg.Store.Path = *dbFlag
	}
	if *serveFlag != "" {
		cfg.Serve.Addr = *serveFlag
		cfg.EnableUI = true
	}

	var st *store.Store
	if cfg.Store.Path != "" {
		st, err = store.Open(cfg.Store.Path)
		if err != nil {
			fatal(logger, "store", err)
		}
		defer st.Close()
	}

	switch {
	case *mcpFlag:
		err = runMCP(ctx, cfg, logger)
	case *watchFlag:
		err = runWatch(ctx, cfg, *urlFlag, st, logger)
	default:
		err = runOnce(ctx, cfg, *urlFlag, *fileFlag, *exportFlag, *outFlag, st, logger)
	}
	if err != nil {
		fatal(logger, "run", err)
	}
}

// runOnce audits a static snapshot of the page and writes one export.
func runOnce(ctx context.Context, cfg *config.Config, url, file, format, out string, st *store.Store, logger *slog.Logger) error {
	var (
		source *engine.StaticSource
		page   string
		err    error
	)
	switch {
	case url != "":
		page = url
		source, err = engine.NewStaticSourceFromURL(ctx, url)
	case file != "":
		page = file
		source, err = engine.NewStaticSourceFromFile(file)
	default:
		return fmt.Errorf("one of -url or -file is required")
	}
	if err != nil {
		return err
	}
	defer source.Close()

	// Static snapshots cannot observe mutations.
	off := false
	cfg.Realtime = &off

	eng := engine.New(source, cfg, logger)
	if st != nil {
		defer eng.Subscribe(st.Listener(page, logger))()
	}
	if err := eng.Start(ctx); err != nil {
		return err
	}
	defer eng.Stop()

	rendered, err := eng.Reporter().Export(format)
	if err != nil {
		return err
	}
	if out == "" {
		fmt.Println(rendered)
		return nil
	}
	if err := os.WriteFile(out, []byte(rendered), 0644); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}
	summary := eng.Reporter().GetSummary()
	logger.Info("audit complete",
		"page", page,
		"violations", summary.Total,
		"errors", summary.Errors,
		"out", out)
	return nil
}

// runWatch observes a live page and serves results over HTTP until
// interrupted.
func runWatch(ctx context.Context, cfg *config.Config, url string, st *store.Store, logger *slog.Logger) error {
	if url == "" {
		return fmt.Errorf("-url is required in watch mode")
	}

	mgr := browser.NewManager(cfg.Browser, logger)
	if err := mgr.Start(ctx); err != nil {
		return err
	}
	defer mgr.Close()

	source, err := browser.Open(ctx, mgr, url, logger)
	if err != nil {
		return err
	}
	defer source.Close()

	eng := engine.New(source, cfg, logger)
	if st != nil {
		defer eng.Subscribe(st.Listener(url, logger))()
	}
	if err := eng.Start(ctx); err != nil {
		return err
	}
	defer eng.Stop()

	if cfg.EnableUI {
		srv := serve.New(eng, st, logger)
		return srv.ListenAndServe(ctx, cfg.Serve.Addr)
	}

	// Observation-only watch: history capture without the HTTP surface.
	logger.Info("watching", "url", url)
	<-ctx.Done()
	return nil
}

// runMCP serves the audit tools over stdio. The engine starts from an
// empty document; the audit tool loads pages on demand.
func runMCP(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	off := false
	cfg.Realtime = &off

	eng := engine.New(engine.NewStaticSource("<html><body></body></html>"), cfg, logger)
	if err := eng.Start(ctx); err != nil {
		return err
	}
	defer eng.Stop()

	srv := mcp.NewServer(&mcp.Implementation{Name: "a11ylive", Version: version}, nil)
	eng.RegisterMCP(srv)

	logger.Info("mcp: serving on stdio")
	return srv.Run(ctx, &mcp.StdioTransport{})
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.LoadFile(path)
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

func fatal(logger *slog.Logger, what string, err error) {
	logger.Error(what, "error", err)
	os.Exit(1)
}
