package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/yourpalette/internal/config"
	"github.com/jmylchreest/yourpalette/internal/server"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the web interface",
		Long: `Run the HTTP server with the upload page and the palette API.

Every flag may also be set through the environment with the ` + config.EnvPrefix + ` prefix,
for example ` + config.EnvPrefix + `ADDR or ` + config.EnvPrefix + `UPLOAD_DIR. Flags take precedence.

Examples:
  # Serve on the default address
  yourpalette serve

  # Listen on all interfaces and keep uploads in /var/lib/yourpalette
  yourpalette serve --addr :8080 --upload-dir /var/lib/yourpalette`,
		Args: cobra.NoArgs,
		RunE: runServe,
	}
	config.BindFlags(cmd.Flags())
	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.NewBuilder().
		WithEnv().
		WithFlags(cmd.Flags()).
		Build()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if verbose(cmd) {
		cfg.LogLevel = "debug"
	}

	logger := config.NewLogger(cfg, cmd.ErrOrStderr())
	srv, err := server.New(cfg, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return srv.ListenAndServe(ctx)
}
