package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/salesdash/internal/server"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve [files...]",
	Short: "Serve the dashboard API over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		addr := cfg.ListenAddr
		if cmd.Flags().Changed("addr") {
			addr = serveAddr
		}
		s := server.New(server.Config{
			Sources:   func() ([]string, error) { return resolveSources(args) },
			Pipeline:  pipelineOptions(),
			Dashboard: dashboardOptions(),
			Logger:    logger,
		})
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return s.ListenAndServe(ctx, addr)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "127.0.0.1:8080", "listen address (overrides config)")
}
