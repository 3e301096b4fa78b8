package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/joacominatel/telemetrydash/internal/web"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the dashboard over HTTP",
	Long: `Serve the dashboard over HTTP. Every page view runs its own fetch cycle.

Routes:
  GET /          full page
  GET /fragment  dashboard fragment only
  GET /healthz   liveness
  GET /metrics   Prometheus metrics`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("addr", ":8080", "listen address")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	addr, _ := cmd.Flags().GetString("addr")

	rt, err := setup(cmd, sessionOptions{console: true})
	if err != nil {
		return err
	}
	defer rt.close()

	srv, err := web.NewServer(rt.loader(), rt.source.Variant, rt.logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt.logger.Info("serving dashboard",
		zap.String("addr", addr),
		zap.String("table", rt.source.Schema+"."+rt.source.Table),
	)
	return srv.Start(ctx, addr)
}
