package handlers

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

// NewRetryCmd creates the retry command for re-running ingestion on a resume
// stuck in failed:insufficient_text (spec §4.6).
func NewRetryCmd() *cobra.Command {
	var (
		searchPaths string
		modules     string
	)

	cmd := &cobra.Command{
		Use:   "retry [resume-id]",
		Short: "Retry ingestion for a resume with insufficient extracted text",
		Long: `Locate the original file for a resume currently in status
failed:insufficient_text by filename across an ordered list of search
directories, and re-run extraction with OCR forced on.

Example:
  ats retry 42 --search-paths ./uploads,./archive`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resumeID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid resume id %q: %w", args[0], err)
			}
			var paths []string
			if searchPaths != "" {
				paths = strings.Split(searchPaths, ",")
			}
			return runRetry(cmd.Context(), resumeID, paths, modules)
		},
	}

	cmd.Flags().StringVar(&searchPaths, "search-paths", ".",
		"comma-separated list of directories to search for the original file, most-specific first")
	cmd.Flags().StringVar(&modules, "modules", "all",
		`field extractors to run: "all", or a comma-separated mix of names/1-based indexes`)

	return cmd
}

func runRetry(ctx context.Context, resumeID int64, searchPaths []string, modules string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	db, err := openDatabase(cfg)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer db.Close()

	orch, err := buildOrchestrator(cfg, db)
	if err != nil {
		return fmt.Errorf("building orchestrator: %w", err)
	}

	resume, err := orch.Retry(ctx, resumeID, searchPaths, modules)
	if err != nil {
		return err
	}

	fmt.Printf("resume %d retried: status=%s\n", resume.ID, resume.Status)
	return nil
}
