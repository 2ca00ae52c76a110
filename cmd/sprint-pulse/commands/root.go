package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"sprint-pulse/internal/config"
	"sprint-pulse/internal/logging"
	"sprint-pulse/internal/mcp"
	"sprint-pulse/internal/productive"
	"sprint-pulse/internal/report"
)

var (
	// Version, Commit, and BuildDate are set at build time via ldflags.
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"

	verbose bool
	charts  bool
	cfg     *config.AppConfig

	reports *report.Service
)

var rootCmd = &cobra.Command{
	Use:   "sprint-pulse",
	Short: "Sprint reporting for Productive.io task lists",
	Long: `sprint-pulse turns Productive.io task lists into sprint reports: burndown, effort per person,
breakdown by status, capacity risk, and multi-sprint velocity and estimation accuracy.

Without a subcommand it runs as an MCP server on stdio.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logging.Init(verbose)

		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}

		client := productive.NewClient(cfg.Productive)
		reports = report.NewService(client, cfg.Report, cfg.EnableMermaidCharts || charts)

		log.Info().
			Str("version", Version).
			Str("commit", Commit).
			Str("buildDate", BuildDate).
			Str("command", cmd.Name()).
			Msg("sprint-pulse starting")
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signalContext()
		defer stop()

		log.Info().Msg("MCP Server starting Stdio loop")
		return mcp.NewServer(reports, Version).Serve(ctx)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().BoolVar(&charts, "charts", false, "attach Mermaid charts (overrides ENABLE_MERMAID_CHARTS=false)")
	rootCmd.Version = fmt.Sprintf("%s (commit %s, built %s)", Version, Commit, BuildDate)

	rootCmd.AddCommand(newServeCmd(), newReportCmd(), newHistoryCmd(), newRisksCmd())
}
