package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	cfgpkg "github.com/KaramelBytes/salesdash/internal/config"
	"github.com/KaramelBytes/salesdash/internal/dashboard"
	"github.com/KaramelBytes/salesdash/internal/ingest"
	"github.com/KaramelBytes/salesdash/internal/logging"
	"github.com/KaramelBytes/salesdash/internal/pipeline"
)

var (
	// Global flags
	cfgFile       string
	debug         bool
	flagSourceDir string
	flagPattern   string

	// Loaded configuration
	cfg    *cfgpkg.Global
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "salesdash",
	Short: "salesdash: consolidate sales CSV exports into a filterable dashboard",
	Long: `salesdash reads monthly sales CSV exports, normalizes them into one dataset,
derives calendar and city fields, and reports filtered sales aggregates on the
command line, as CSV/XLSX exports, or over an HTTP API.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentPreRunE = loadConfig

	// Persistent global flags available to all subcommands
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.salesdash/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&flagSourceDir, "dir", "", "directory holding the sales exports (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagPattern, "pattern", "", "file name pattern within --dir (overrides config)")
}

func loadConfig(cmd *cobra.Command, args []string) error {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		return err
	}
	cfg = c

	// Apply CLI overrides if provided
	f := rootCmd.PersistentFlags()
	if f.Changed("dir") && flagSourceDir != "" {
		cfg.SourceDir = flagSourceDir
	}
	if f.Changed("pattern") && flagPattern != "" {
		cfg.SourcePattern = flagPattern
	}
	level := cfg.LogLevel
	if debug {
		level = "debug"
	}
	logger = logging.New(level, cfg.LogFormat, cmd.ErrOrStderr())
	return nil
}

func pipelineOptions() pipeline.Options {
	return pipeline.Options{
		Ingest: ingest.Options{
			DateLayouts: cfg.DateLayouts,
			Workers:     cfg.Workers,
			Logger:      logger,
		},
		Palette: cfg.Palette,
	}
}

func dashboardOptions() dashboard.Options {
	return dashboard.Options{TopN: cfg.TopN, SecondaryTopN: cfg.SecondaryTopN}
}
