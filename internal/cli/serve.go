package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/ironsheep/image-brightness/internal/chart"
	"github.com/ironsheep/image-brightness/internal/config"
	"github.com/ironsheep/image-brightness/internal/pipeline"
	"github.com/ironsheep/image-brightness/internal/server"
	"github.com/ironsheep/image-brightness/internal/web"
)

func newServeCmd(g *globalOptions) *cobra.Command {
	var (
		listen    string
		uploadDir string
		maxBytes  int64
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the web application",
		Long: `Serve the upload form on the configured address. Each upload is processed
and its images and charts are stored under <upload-dir>/<request id>/.

Examples:
  image-brightness serve
  image-brightness serve --listen :8080 --upload-dir /var/lib/image-brightness`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.loadConfig(cmd)
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			override(flags, "listen", &cfg.ListenAddr, listen)
			override(flags, "upload-dir", &cfg.UploadDir, uploadDir)
			override(flags, "max-upload-bytes", &cfg.MaxUploadBytes, maxBytes)
			if err := validate(cfg); err != nil {
				return err
			}

			logger := rootLogger(cfg)
			processor, _, err := newProcessor(cfg, logger)
			if err != nil {
				return err
			}

			store, err := web.NewArtifactStore(cfg.UploadDir, logger.Named("store"))
			if err != nil {
				return err
			}
			srv, err := web.New(cfg, processor, store, nil, logger.Named("web"))
			if err != nil {
				return err
			}

			ctx, stop := signalContext(cmd.Context())
			defer stop()
			return srv.Run(ctx)
		},
	}
	cmd.Flags().StringVar(&listen, "listen", "", "listen address (default from config, 127.0.0.1:5000)")
	cmd.Flags().StringVar(&uploadDir, "upload-dir", "", "directory for stored results (default from config, uploads)")
	cmd.Flags().Int64Var(&maxBytes, "max-upload-bytes", 0, "maximum upload size in bytes (default from config, 1 MiB)")
	return cmd
}

func newMCPCmd(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Run the MCP tool server over stdio",
		Long: `Speak JSON-RPC 2.0 (Model Context Protocol) on stdin and stdout. Logs go
to stderr. Configure the binary as a stdio server in your MCP client.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.loadConfig(cmd)
			if err != nil {
				return err
			}
			if err := validate(cfg); err != nil {
				return err
			}

			logger := rootLogger(cfg)
			processor, renderer, err := newProcessor(cfg, logger)
			if err != nil {
				return err
			}

			ctx, stop := signalContext(cmd.Context())
			defer stop()
			logger.Debug("mcp server starting")
			return server.New(processor, renderer, logger.Named("mcp")).Run(ctx)
		},
	}
}

// newProcessor builds the chart renderer and pipeline described by cfg.
func newProcessor(cfg *config.Config, logger hclog.Logger) (*pipeline.Processor, *chart.Renderer, error) {
	renderer, err := chart.NewRenderer(cfg.Chart)
	if err != nil {
		return nil, nil, err
	}
	p := pipeline.New(renderer,
		pipeline.WithPaletteSize(cfg.PaletteSize),
		pipeline.WithLogger(logger.Named("pipeline")),
	)
	return p, renderer, nil
}

func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
