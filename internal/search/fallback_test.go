package search

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"atsresume/internal/core"
	"atsresume/internal/llmclient"
	"atsresume/internal/queryparser"
	"atsresume/internal/vectorstore"
)

// embeddingsOnlyLLM serves /api/embeddings with a fixed vector and fails
// every other path, so Generate (and its chat fallback) both error out and
// the query parser falls back to its bare-heuristic default, while Embed
// still succeeds.
func embeddingsOnlyLLM(t *testing.T) *llmclient.Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/embeddings" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"embedding": [0.1, 0.2, 0.3]}`))
	}))
	t.Cleanup(srv.Close)
	return llmclient.New(srv.URL, "", "")
}

// TestFallbackCascadeRecoversFromRoleFamilyNamespaces covers S6's broad-mode
// branch: zero matches from the initial namespace selection falls through
// to stage (b), the role-family namespaces of the inferred mastercategory.
func TestFallbackCascadeRecoversFromRoleFamilyNamespaces(t *testing.T) {
	resumes := &fakeResumeRepo{}
	audit := &fakeSearchRepo{}
	vectors := &fakeVectorStore{
		byNamespace: map[string][]vectorstore.Match{
			"IT/full_stack_development_java": {
				{ID: "v1", Score: 0.8, Metadata: map[string]interface{}{
					"resume_id": 42.0, "candidate_name": "Alex Smith",
					"mastercategory": "IT", "designation": "Software Engineer",
					"experience_years": 5.0,
				}},
			},
		},
		namespaces: map[string][]string{},
	}
	llm := unreachableLLM()
	parser := queryparser.New(llm)
	engine := NewEngine(llm, vectors, resumes, audit, parser)

	q := &core.ParsedQuery{SearchType: core.SearchTypeSemantic, TextForEmbedding: "software engineer java"}
	results, err := engine.fallback(context.Background(), q, []float64{0.1, 0.2}, nil)
	if err != nil {
		t.Fatalf("fallback() error = %v", err)
	}
	if len(results) != 1 || results[0].ResumeID != 42 {
		t.Fatalf("expected fallback to recover the role-family namespace match, got %+v", results)
	}
}

// TestFallbackCascadeFallsThroughToAllNamespacesWithFilters covers S6's
// filtered branch: no role-family keyword hit, so stage (b) is skipped, but
// filters are present so stage (c) queries every namespace of the inferred
// index with filters still applied.
func TestFallbackCascadeFallsThroughToAllNamespacesWithFilters(t *testing.T) {
	resumes := &fakeResumeRepo{}
	audit := &fakeSearchRepo{}
	vectors := &fakeVectorStore{
		byNamespace: map[string][]vectorstore.Match{
			"IT/data_science": {
				{ID: "v2", Score: 0.6, Metadata: map[string]interface{}{
					"resume_id": 7.0, "candidate_name": "Sam Lee",
					"mastercategory": "IT", "experience_years": 4.0,
				}},
			},
		},
		namespaces: map[string][]string{
			"IT": {"data_science", "cloud_platforms_aws"},
		},
	}
	llm := unreachableLLM()
	parser := queryparser.New(llm)
	engine := NewEngine(llm, vectors, resumes, audit, parser)

	q := &core.ParsedQuery{
		SearchType:       core.SearchTypeSemantic,
		TextForEmbedding: "python django experience",
		MustHaveAll:      []string{"python"},
	}
	filter := CompileFilter(q)
	results, err := engine.fallback(context.Background(), q, []float64{0.1, 0.2}, filter)
	if err != nil {
		t.Fatalf("fallback() error = %v", err)
	}
	if len(results) != 1 || results[0].ResumeID != 7 {
		t.Fatalf("expected fallback to recover the all-namespaces-with-filters match, got %+v", results)
	}
}

// TestExplicitModeZeroMatchesReturnsEmptyWithoutFallback covers S6's
// explicit-mode branch: a namespace that exists but yields zero matches is
// a terminal miss, never triggering the fallback cascade.
func TestExplicitModeZeroMatchesReturnsEmptyWithoutFallback(t *testing.T) {
	resumes := &fakeResumeRepo{}
	audit := &fakeSearchRepo{}
	vectors := &fakeVectorStore{
		byNamespace: map[string][]vectorstore.Match{},
		namespaces:  map[string][]string{},
	}
	llm := embeddingsOnlyLLM(t)
	parser := queryparser.New(llm)
	engine := NewEngine(llm, vectors, resumes, audit, parser)

	mc := core.MastercategoryIT
	category := "Data Science"
	results, err := engine.Search(context.Background(), "senior data scientist", nil, &mc, &category)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("expected explicit-mode zero matches to return empty without fallback, got %+v", results)
	}
	if vectors.queryCalls != 1 {
		t.Fatalf("expected exactly 1 namespace query (no fallback fan-out), got %d", vectors.queryCalls)
	}
}
