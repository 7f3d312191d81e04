package handlers

import (
	"fmt"
	"os"

	"atsresume/internal/obslog"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command with all ATS subcommands attached,
// following the teacher's cmd/handlers/root.go factory-function layout.
func NewRootCmd() *cobra.Command {
	var logLevel string

	rootCmd := &cobra.Command{
		Use:   "ats",
		Short: "Resume ingestion and search pipeline",
		Long: `ats ingests resumes into a classified, namespace-partitioned vector
store and serves recruiter free-text search over the result.

Examples:
  ats ingest resume.pdf
  ats search "senior backend engineer with 5+ years python"
  ats retry 42
  ats serve --port 8080`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("loading configuration: %w", err)
			}
			level := logLevel
			if level == "" {
				level = cfg.Logging.Level
			}
			obslog.Init(cfg.App.Env, level)
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: atsresume.yaml in the working directory)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level override (default from config: logging.level)")

	rootCmd.AddCommand(NewIngestCmd())
	rootCmd.AddCommand(NewSearchCmd())
	rootCmd.AddCommand(NewRetryCmd())
	rootCmd.AddCommand(NewServeCmd())

	return rootCmd
}

// Execute runs the root command, exiting non-zero on failure.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
