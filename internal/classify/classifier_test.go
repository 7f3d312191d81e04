package classify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"atsresume/internal/llmclient"
)

func newTestClassifier(t *testing.T, responses map[string]string) *Classifier {
	t.Helper()
	call := 0
	order := []string{"mastercategory", "category"}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := order[call]
		if call < len(order)-1 {
			call++
		}
		json.NewEncoder(w).Encode(map[string]string{"response": responses[key]})
	}))
	t.Cleanup(srv.Close)
	return New(llmclient.New(srv.URL, "", ""))
}

func TestClassifyHappyPath(t *testing.T) {
	c := newTestClassifier(t, map[string]string{
		"mastercategory": "IT",
		"category":       "Full Stack Development (Python)",
	})
	mc, cat := c.Classify(context.Background(), "Experienced Python/Django developer")
	if mc == nil || *mc != "IT" {
		t.Fatalf("expected mastercategory IT, got %v", mc)
	}
	if cat == nil || *cat != "Full Stack Development (Python)" {
		t.Fatalf("expected category Full Stack Development (Python), got %v", cat)
	}
}

func TestClassifyRejectsOutOfListCategory(t *testing.T) {
	c := newTestClassifier(t, map[string]string{
		"mastercategory": "IT",
		"category":       "Underwater Basket Weaving",
	})
	mc, cat := c.Classify(context.Background(), "some text")
	if mc == nil || *mc != "IT" {
		t.Fatalf("expected mastercategory IT, got %v", mc)
	}
	if cat != nil {
		t.Errorf("expected category to stay nil for an out-of-list answer, got %v", *cat)
	}
}

func TestClassifyLeavesCategoryNilOnUnrecognizedMastercategory(t *testing.T) {
	c := newTestClassifier(t, map[string]string{
		"mastercategory": "MAYBE",
		"category":       "Full Stack Development (Python)",
	})
	mc, cat := c.Classify(context.Background(), "ambiguous text")
	if mc != nil {
		t.Errorf("expected mastercategory nil, got %v", *mc)
	}
	if cat != nil {
		t.Errorf("expected category nil when mastercategory failed, got %v", *cat)
	}
}

func TestFirstNonEmptyLineStripsFencesAndQuotes(t *testing.T) {
	cases := map[string]string{
		"```\nIT\n```":    "IT",
		"\n  \"IT\"  \n":  "IT",
		"'NON_IT'":        "NON_IT",
		"":                "",
		"\n\n  \n":        "",
	}
	for input, want := range cases {
		if got := firstNonEmptyLine(input); got != want {
			t.Errorf("firstNonEmptyLine(%q) = %q, want %q", input, got, want)
		}
	}
}
