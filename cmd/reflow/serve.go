package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/vango-dev/reflow/internal/config"
	"github.com/vango-dev/reflow/internal/demo"
	"github.com/vango-dev/reflow/pkg/server"
)

type serveOptions struct {
	demo          string
	addr          string
	transcriptDir string
	noMetrics     bool
}

func serveCmd(configPath *string) *cobra.Command {
	var opts serveOptions

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a demo application",
		Long: `Serve one of the bundled demo applications.

Every page load renders a new session; the page's client script
connects back over a WebSocket and receives ops as the tree changes.

Demos: ` + strings.Join(demo.Names(), ", ") + `

Examples:
  reflow serve
  reflow serve --demo todo --addr :3000
  reflow serve --transcripts ./transcripts`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cmd, cfg, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.demo, "demo", "d", "counter", "Demo to serve")
	cmd.Flags().StringVarP(&opts.addr, "addr", "a", "", "Listen address (default from reflow.json)")
	cmd.Flags().StringVar(&opts.transcriptDir, "transcripts", "", "Record session transcripts in this directory")
	cmd.Flags().BoolVar(&opts.noMetrics, "no-metrics", false, "Do not serve /metrics")

	return cmd
}

func runServe(ctx context.Context, cmd *cobra.Command, cfg *config.Config, opts serveOptions) error {
	app, err := demo.Lookup(opts.demo)
	if err != nil {
		return err
	}

	if opts.addr != "" {
		cfg.Server.Address = opts.addr
	}
	if opts.transcriptDir != "" {
		cfg.Transcript.Driver = config.DriverFile
		cfg.Transcript.Dir = opts.transcriptDir
	}
	if opts.noMetrics {
		cfg.Metrics.Enabled = false
	}

	srv, err := newServer(ctx, cfg, app)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	printBanner(w)
	success(w, "serving %s on %s", app.Name, cfg.Server.Address)
	info(w, app.Description)
	if cfg.Transcript.Driver != config.DriverNone {
		info(w, "recording transcripts (%s)", cfg.Transcript.Driver)
	}

	return srv.Run(ctx)
}

// newServer builds the server for app from cfg.
func newServer(ctx context.Context, cfg *config.Config, app demo.App) (*server.Server, error) {
	store, err := openStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	title := cfg.Server.Title
	if title == "" {
		title = app.Name
	}

	sc := &server.ServerConfig{
		Address:         cfg.Server.Address,
		Title:           title,
		StyleSheets:     cfg.Server.StyleSheets,
		MaxSessions:     cfg.Server.MaxSessions,
		ShutdownTimeout: cfg.Server.ShutdownTimeout.Std(),
		SessionConfig: &server.SessionConfig{
			ReadTimeout:       cfg.Server.ReadTimeout.Std(),
			WriteTimeout:      cfg.Server.WriteTimeout.Std(),
			HandshakeTimeout:  cfg.Server.HandshakeTimeout.Std(),
			HeartbeatInterval: cfg.Server.HeartbeatInterval.Std(),
			MaxMessageSize:    cfg.Server.MaxMessageSize,
			MaxEventQueue:     cfg.Server.MaxEventQueue,
		},
		MetricsNamespace: cfg.Metrics.Namespace,
		Logger:           cfg.Logger(os.Stderr),
	}
	if store != nil {
		sc.TranscriptStore = store
	}
	if cfg.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		sc.Registry = reg
	}

	return server.New(app.Root(), sc), nil
}
