package search

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"atsresume/internal/llmclient"
)

func TestDesignationMatcherCachesByPair(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"response": "{\"is_match\": true, \"confidence\": 0.9}"}`))
	}))
	defer srv.Close()

	client := llmclient.New(srv.URL, "", "")
	matcher := NewDesignationMatcher(client)

	isMatch, conf := matcher.Match(context.Background(), "QA Engineer", "Senior QA Engineer")
	if !isMatch || conf != 0.9 {
		t.Fatalf("Match() = (%v, %v), want (true, 0.9)", isMatch, conf)
	}

	isMatch2, conf2 := matcher.Match(context.Background(), "QA Engineer", "Senior QA Engineer")
	if !isMatch2 || conf2 != 0.9 {
		t.Fatalf("second Match() = (%v, %v), want (true, 0.9)", isMatch2, conf2)
	}
	if calls != 1 {
		t.Fatalf("expected 1 LLM call due to caching, got %d", calls)
	}
}

func TestDesignationMatcherFailsConservativelyOnUnreachableBackend(t *testing.T) {
	client := llmclient.New("http://127.0.0.1:1", "", "")
	matcher := NewDesignationMatcher(client)

	isMatch, conf := matcher.Match(context.Background(), "QA Engineer", "Project Manager")
	if isMatch || conf != 0 {
		t.Fatalf("Match() = (%v, %v), want (false, 0) on failure", isMatch, conf)
	}
}

func TestMatchTopKBoundsCallCount(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"response": "{\"is_match\": false, \"confidence\": 0.1}"}`))
	}))
	defer srv.Close()

	client := llmclient.New(srv.URL, "", "")
	matcher := NewDesignationMatcher(client)

	roles := make([]string, 10)
	for i := range roles {
		roles[i] = "Role"
	}
	results := MatchTopK(context.Background(), matcher, "QA Engineer", roles, 3)
	if len(results) != 10 {
		t.Fatalf("expected 10 results, got %d", len(results))
	}
	if calls != 1 {
		t.Fatalf("expected 1 unique LLM call (identical roles dedupe via cache), got %d", calls)
	}
}
