package vectorstore

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"atsresume/internal/classify"
	"atsresume/internal/vectorclient"
)

func newTestStore(t *testing.T, handler http.HandlerFunc) Store {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client := vectorclient.New(srv.URL, "")
	return New(client, nil, 8, "aws", "us-east-1")
}

func TestUpsertRoutesByMastercategoryAndDerivesNamespace(t *testing.T) {
	var gotPath, gotNamespace string
	store := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		var body map[string]interface{}
		json.NewDecoder(r.Body).Decode(&body)
		gotNamespace, _ = body["namespace"].(string)
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]int{"upsertedCount": 1})
	})

	category := "Full Stack Development (Python)"
	err := store.Upsert(context.Background(), []Vector{{ID: "resume_1_chunk_0", Values: []float64{0.1}}},
		"resume text", "IT", "resume.pdf", &category)
	if err != nil {
		t.Fatalf("Upsert returned error: %v", err)
	}
	if !strings.HasPrefix(gotPath, "/indexes/it/") {
		t.Errorf("expected IT index path, got %s", gotPath)
	}
	if gotNamespace != "full_stack_development_python" {
		t.Errorf("expected derived namespace, got %s", gotNamespace)
	}
}

func TestUpsertRoutesNonITToNonITIndex(t *testing.T) {
	var gotPath string
	store := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]int{"upsertedCount": 1})
	})

	err := store.Upsert(context.Background(), []Vector{{ID: "x", Values: []float64{0.1}}},
		"resume text", "NON_IT", "resume.pdf", nil)
	if err != nil {
		t.Fatalf("Upsert returned error: %v", err)
	}
	if !strings.HasPrefix(gotPath, "/indexes/non_it/") {
		t.Errorf("expected NON_IT index path, got %s", gotPath)
	}
}

func TestListNamespacesExcludesPlaceholders(t *testing.T) {
	store := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"namespaces": map[string]interface{}{
				"full_stack_development_python": map[string]int{"vector_count": 3},
				"_namespace_init_uncategorized": map[string]int{"vector_count": 1},
			},
			"total_vector_count": 4,
		})
	})

	namespaces, err := store.ListNamespaces(context.Background(), "IT")
	if err != nil {
		t.Fatalf("ListNamespaces returned error: %v", err)
	}
	for _, ns := range namespaces {
		if strings.HasPrefix(ns, "_namespace_init_") {
			t.Errorf("expected placeholder namespace to be filtered out, got %s", ns)
		}
	}
}

func TestEnsureIndexesSeedsEveryCategoryNamespace(t *testing.T) {
	upserts := map[string]bool{}
	store := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "/vectors/upsert") {
			var body map[string]interface{}
			json.NewDecoder(r.Body).Decode(&body)
			ns, _ := body["namespace"].(string)
			upserts[r.URL.Path+"|"+ns] = true
		}
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]int{"ok": 1})
	})

	if err := store.EnsureIndexes(context.Background()); err != nil {
		t.Fatalf("EnsureIndexes returned error: %v", err)
	}

	want := Namespace(classify.ITCategories[0])
	if !upserts["/indexes/it/vectors/upsert|"+want] {
		t.Errorf("expected a placeholder seed upsert for namespace %s, got %v", want, upserts)
	}
	if !upserts["/indexes/it/vectors/upsert|"+UncategorizedNamespace] {
		t.Error("expected uncategorized namespace to always be seeded")
	}
}
