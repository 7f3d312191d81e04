package fields

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"atsresume/internal/core"
	"atsresume/internal/llmclient"
)

func TestRunAllContainsOneExtractorFailureWithoutBlockingOthers(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"response": "not json at all, no braces"})
	}))
	defer server.Close()

	llm := llmclient.New(server.URL, "", "test-model")
	h := &Harness{llm: llm, extractors: []Extractor{
		{
			Name:   "always_fails",
			Prompt: func(string) string { return "prompt" },
			Parse:  func(string) (string, bool) { return "", false },
			Commit: func(*core.Resume, string, string) {},
		},
		{
			Name:   "always_succeeds",
			Prompt: func(string) string { return "prompt" },
			Parse:  func(raw string) (string, bool) { return "ok", true },
			Commit: func(r *core.Resume, v string, _ string) { r.CandidateName = &v },
		},
	}}

	resume := &core.Resume{}
	errs := h.RunAll(context.Background(), resume)

	if len(errs) != 1 {
		t.Fatalf("expected exactly one contained error, got %d: %v", len(errs), errs)
	}
	if resume.CandidateName == nil || *resume.CandidateName != "ok" {
		t.Fatalf("expected the second extractor to still commit, got %v", resume.CandidateName)
	}
}

func TestRunOnePassesResumeTextThroughToCommit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"response": "value"})
	}))
	defer server.Close()

	llm := llmclient.New(server.URL, "", "test-model")
	var seenText string
	h := &Harness{llm: llm, extractors: []Extractor{
		{
			Name:   "text_observer",
			Prompt: func(string) string { return "prompt" },
			Parse:  func(raw string) (string, bool) { return raw, true },
			Commit: func(_ *core.Resume, _ string, resumeText string) { seenText = resumeText },
		},
	}}

	text := "full resume body"
	resume := &core.Resume{ResumeText: &text}
	h.RunAll(context.Background(), resume)

	if seenText != text {
		t.Fatalf("seenText = %q, want %q", seenText, text)
	}
}

func TestDefaultExtractorsAssemblesNineExtractors(t *testing.T) {
	extractors := defaultExtractors()
	if len(extractors) != 9 {
		t.Fatalf("defaultExtractors() returned %d extractors, want 9", len(extractors))
	}
	seen := map[string]bool{}
	for _, ex := range extractors {
		if seen[ex.Name] {
			t.Fatalf("duplicate extractor name %q", ex.Name)
		}
		seen[ex.Name] = true
	}
}
