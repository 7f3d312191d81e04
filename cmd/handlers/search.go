package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"atsresume/internal/core"

	"github.com/spf13/cobra"
)

// NewSearchCmd creates the search command for running a recruiter free-text
// query against the Search Engine (spec §6).
func NewSearchCmd() *cobra.Command {
	var (
		userID         string
		mastercategory string
		category       string
		asJSON         bool
	)

	cmd := &cobra.Command{
		Use:   "search [query text...]",
		Short: "Search resumes with a recruiter free-text query",
		Long: `Parse a free-text query into structured intent, select vector-store
namespaces (explicit/broad/fallback cascade), fuse semantic similarity with
rule-based scoring, and print ranked candidates bucketed into fit tiers.

Example:
  ats search "senior backend engineer with 5+ years python"
  ats search "john smith"
  ats search "data scientist" --mastercategory IT --category "Data Science"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd.Context(), strings.Join(args, " "), userID, mastercategory, category, asJSON)
		},
	}

	cmd.Flags().StringVar(&userID, "user-id", "", "recruiter user id to attribute this query to")
	cmd.Flags().StringVar(&mastercategory, "mastercategory", "", "restrict to IT or NON_IT")
	cmd.Flags().StringVar(&category, "category", "", "restrict to a single category namespace")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print results as JSON")

	return cmd
}

func runSearch(ctx context.Context, queryText, userID, mastercategoryFlag, category string, asJSON bool) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
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

	engine := buildSearchEngine(cfg, db)

	var userIDPtr *string
	if userID != "" {
		userIDPtr = &userID
	}
	var mastercategoryPtr *core.Mastercategory
	if mastercategoryFlag != "" {
		mc := core.Mastercategory(strings.ToUpper(mastercategoryFlag))
		mastercategoryPtr = &mc
	}
	var categoryPtr *string
	if category != "" {
		categoryPtr = &category
	}

	results, err := engine.Search(ctx, queryText, userIDPtr, mastercategoryPtr, categoryPtr)
	if err != nil {
		return fmt.Errorf("search: %w", err)
	}

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	if len(results) == 0 {
		fmt.Println("no matches")
		return nil
	}

	for i, r := range results {
		name := r.CandidateName
		if name == "" {
			name = "(unknown name)"
		}
		fmt.Printf("%2d. [%s] %-30s score=%.3f  %s / %s  %s\n",
			i+1, r.FitTier, name, r.Score, r.Mastercategory, r.Category, r.Designation)
	}
	return nil
}
