package handlers

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
)

// NewIngestCmd creates the ingest command for submitting one resume file
// into the pipeline (spec §4.5).
func NewIngestCmd() *cobra.Command {
	var modules string

	cmd := &cobra.Command{
		Use:   "ingest [file]",
		Short: "Ingest a resume file into the pipeline",
		Long: `Extract, classify, run the field extractor fleet over, and vector-index a
single resume file.

Re-ingesting an already-known filename reuses its existing record
(idempotent reingestion) rather than creating a duplicate.

Example:
  ats ingest resume.pdf
  ats ingest resume.pdf --modules email,mobile,experience
  ats ingest resume.pdf --modules 1,4,9`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIngest(cmd.Context(), args[0], modules)
		},
	}

	cmd.Flags().StringVar(&modules, "modules", "all",
		`field extractors to run: "all", or a comma-separated mix of names/1-based indexes`)

	return cmd
}

func runIngest(ctx context.Context, path, modules string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	fileBytes, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
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

	resume, err := orch.Ingest(ctx, fileBytes, filepath.Base(path), modules)
	if err != nil {
		if resume != nil {
			fmt.Printf("ingestion failed: %s (status: %s)\n", err, resume.Status)
		} else {
			fmt.Printf("ingestion failed: %s\n", err)
		}
		return err
	}

	fmt.Printf("resume %d ingested: status=%s\n", resume.ID, resume.Status)
	if resume.Mastercategory != nil {
		fmt.Printf("  mastercategory: %s\n", *resume.Mastercategory)
	}
	if resume.Category != nil {
		fmt.Printf("  category: %s\n", *resume.Category)
	}
	if resume.CandidateName != nil {
		fmt.Printf("  candidate: %s\n", *resume.CandidateName)
	}
	return nil
}
