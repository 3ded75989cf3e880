package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/velumweb/velum/internal/config"
	"github.com/velumweb/velum/internal/logging"
	"github.com/velumweb/velum/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web server with template hot reload",
	Long: `Start the web server. Templates are recompiled automatically
when they change on disk, and connected browsers are notified over the
/livereload WebSocket.

Examples:
  velum serve                    # Serve on the configured host:port
  velum serve --port 3000        # Override the port
  velum serve --no-reload        # Disable hot and live reload`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntP("port", "p", 8000, "Port to serve on")
	serveCmd.Flags().String("host", "localhost", "Host to bind to")
	serveCmd.Flags().StringP("templates", "t", "templates", "Template directory")
	serveCmd.Flags().String("static", "static", "Static file directory")
	serveCmd.Flags().Bool("no-reload", false, "Disable hot and live reload")
	addFlagValidation(serveCmd, "port", validatePort)

	viper.BindPFlag("server.port", serveCmd.Flags().Lookup("port"))
	viper.BindPFlag("server.host", serveCmd.Flags().Lookup("host"))
	viper.BindPFlag("templates.dir", serveCmd.Flags().Lookup("templates"))
	viper.BindPFlag("static.dir", serveCmd.Flags().Lookup("static"))
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if noReload, _ := cmd.Flags().GetBool("no-reload"); noReload {
		cfg.Development.HotReload = false
		cfg.Development.LiveReload = false
	}

	logger := logging.New(&logging.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: os.Stderr,
	})

	srv, err := server.New(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info(ctx, "shutdown requested")
		cancel()
	}()

	return srv.Start(ctx)
}
