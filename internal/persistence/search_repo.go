package persistence

import (
	"context"
	"database/sql"
	"encoding/json"

	"atsresume/internal/apperr"
	"atsresume/internal/core"
)

// SearchRepository is the append-only audit log of recruiter queries and
// the ranked results produced for them (§4.11). Persistence failure here
// is logged and swallowed by the caller — it never fails the in-flight
// search response.
type SearchRepository interface {
	RecordQuery(ctx context.Context, queryText string, userID *string) (int64, error)
	RecordResults(ctx context.Context, searchQueryID int64, results []core.RankedResult) error
}

type mysqlSearchRepo struct {
	db *sql.DB
}

func (r *mysqlSearchRepo) RecordQuery(ctx context.Context, queryText string, userID *string) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO ai_search_queries (query_text, user_id) VALUES (?, ?)`, queryText, userID)
	if err != nil {
		return 0, &apperr.RepositoryError{Op: "record search query", Err: err}
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, &apperr.RepositoryError{Op: "record search query (last insert id)", Err: err}
	}
	return id, nil
}

func (r *mysqlSearchRepo) RecordResults(ctx context.Context, searchQueryID int64, results []core.RankedResult) error {
	resultsJSON, err := json.Marshal(results)
	if err != nil {
		return &apperr.RepositoryError{Op: "marshal search results", Err: err}
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO ai_search_results (search_query_id, results_json) VALUES (?, ?)`,
		searchQueryID, resultsJSON)
	if err != nil {
		return &apperr.RepositoryError{Op: "record search results", Err: err}
	}
	return nil
}
