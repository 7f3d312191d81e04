// Package vectorstore implements the two-index, many-namespace Vector
// Layer: it routes by mastercategory to one of two Pinecone-shaped indexes,
// derives namespaces from category labels, and pre-seeds every namespace
// with a placeholder vector so namespace listing is stable from boot.
package vectorstore

import (
	"context"
	"fmt"

	"atsresume/internal/apperr"
	"atsresume/internal/classify"
	"atsresume/internal/vectorclient"
)

// Vector is one chunk embedding ready to upsert, paired with resume
// metadata. Ingestion attaches resume_id and filename, plus candidate_name,
// designation, jobrole, mastercategory, category, experience_years, skills
// and location when the resume has them; no candidate_id key is set.
type Vector struct {
	ID       string
	Values   []float64
	Metadata map[string]interface{}
}

// Match is one scored hit returned from a namespace query.
type Match struct {
	ID       string
	Score    float64
	Metadata map[string]interface{}
}

// Filter is an opaque Pinecone-shaped metadata filter, built by the Search
// Engine's filter compiler (§4.9) and passed through unmodified.
type Filter map[string]interface{}

// Store is the Vector Layer's public contract, generalized from a single
// pgvector-backed store into a two-index, many-namespace Pinecone client.
type Store interface {
	Upsert(ctx context.Context, vectors []Vector, resumeText, mastercategory, filename string, category *string) error
	Query(ctx context.Context, queryVector []float64, mastercategory, namespace string, topK int, filter Filter) ([]Match, error)
	Delete(ctx context.Context, ids []string, mastercategory, namespace string) error
	ListNamespaces(ctx context.Context, mastercategory string) ([]string, error)
	EnsureIndexes(ctx context.Context) error
}

const (
	indexIT    = "it"
	indexNonIT = "non_it"
)

func indexFor(mastercategory string) string {
	if mastercategory == "IT" {
		return indexIT
	}
	return indexNonIT
}

// store implements Store over an vectorclient.Client.
type store struct {
	client     *vectorclient.Client
	classifier *classify.Classifier
	dimension  int
	cloud      string
	region     string
}

// New constructs a Store. dimension, cloud, and region configure index
// creation in EnsureIndexes. classifier is consulted by Upsert only when a
// caller omits category; it may be nil if every caller always supplies one.
func New(client *vectorclient.Client, classifier *classify.Classifier, dimension int, cloud, region string) Store {
	return &store{client: client, classifier: classifier, dimension: dimension, cloud: cloud, region: region}
}

// EnsureIndexes creates both indexes if absent, then pre-seeds every
// expected namespace (per mastercategory's closed category list, plus the
// always-present uncategorized namespace) with a placeholder vector.
func (s *store) EnsureIndexes(ctx context.Context) error {
	for _, idx := range []string{indexIT, indexNonIT} {
		if err := s.client.CreateIndex(ctx, idx, s.dimension, s.cloud, s.region); err != nil {
			return &apperr.VectorError{Op: "create_index " + idx, Err: err}
		}
	}

	seeds := map[string][]string{
		indexIT:    namespacesFor(classify.ITCategories),
		indexNonIT: namespacesFor(classify.NonITCategories),
	}
	for idx, namespaces := range seeds {
		for _, ns := range append(namespaces, UncategorizedNamespace) {
			placeholder := vectorclient.Vector{
				ID:       placeholderID(ns),
				Values:   placeholderVector(s.dimension),
				Metadata: map[string]interface{}{"type": "namespace_placeholder"},
			}
			if err := s.client.Upsert(ctx, idx, ns, []vectorclient.Vector{placeholder}); err != nil {
				return &apperr.VectorError{Op: "seed namespace " + ns, Err: err}
			}
		}
	}
	return nil
}

func namespacesFor(categories []string) []string {
	namespaces := make([]string, 0, len(categories))
	for _, c := range categories {
		namespaces = append(namespaces, Namespace(c))
	}
	return namespaces
}

// placeholderVector returns a deterministic small-magnitude dense vector so
// it never meaningfully competes with real query results.
func placeholderVector(dimension int) []float64 {
	v := make([]float64, dimension)
	for i := range v {
		v[i] = 1e-6
	}
	return v
}

// Upsert routes by mastercategory, derives a namespace from category
// (re-classifying resumeText if category is nil), attaches
// {category, mastercategory, namespace} to every vector's metadata, and
// bulk-upserts into that one namespace.
func (s *store) Upsert(ctx context.Context, vectors []Vector, resumeText, mastercategory, filename string, category *string) error {
	cat := ""
	if category != nil {
		cat = *category
	} else if s.classifier != nil {
		_, derived := s.classifier.Classify(ctx, resumeText)
		if derived != nil {
			cat = *derived
		}
	}
	namespace := Namespace(cat)

	index := indexFor(mastercategory)
	payload := make([]vectorclient.Vector, 0, len(vectors))
	for _, v := range vectors {
		metadata := map[string]interface{}{}
		for k, val := range v.Metadata {
			metadata[k] = val
		}
		metadata["category"] = cat
		metadata["mastercategory"] = mastercategory
		metadata["namespace"] = namespace
		metadata["filename"] = filename
		payload = append(payload, vectorclient.Vector{ID: v.ID, Values: v.Values, Metadata: metadata})
	}

	if err := s.client.Upsert(ctx, index, namespace, payload); err != nil {
		return &apperr.VectorError{Op: fmt.Sprintf("upsert %s/%s", index, namespace), Err: err}
	}
	return nil
}

// Query runs a single-namespace dense similarity search.
func (s *store) Query(ctx context.Context, queryVector []float64, mastercategory, namespace string, topK int, filter Filter) ([]Match, error) {
	index := indexFor(mastercategory)
	raw, err := s.client.Query(ctx, index, namespace, queryVector, topK, map[string]interface{}(filter))
	if err != nil {
		return nil, &apperr.VectorError{Op: fmt.Sprintf("query %s/%s", index, namespace), Err: err}
	}
	matches := make([]Match, 0, len(raw))
	for _, m := range raw {
		matches = append(matches, Match{ID: m.ID, Score: m.Score, Metadata: m.Metadata})
	}
	return matches, nil
}

// Delete removes vectors by id within a namespace.
func (s *store) Delete(ctx context.Context, ids []string, mastercategory, namespace string) error {
	index := indexFor(mastercategory)
	if err := s.client.Delete(ctx, index, namespace, ids); err != nil {
		return &apperr.VectorError{Op: fmt.Sprintf("delete %s/%s", index, namespace), Err: err}
	}
	return nil
}

// ListNamespaces returns every namespace with vectors in the given
// mastercategory's index, excluding placeholder-only bookkeeping ids.
func (s *store) ListNamespaces(ctx context.Context, mastercategory string) ([]string, error) {
	index := indexFor(mastercategory)
	stats, err := s.client.DescribeIndexStats(ctx, index)
	if err != nil {
		return nil, &apperr.VectorError{Op: "describe_index_stats " + index, Err: err}
	}
	namespaces := make([]string, 0, len(stats.Namespaces))
	for ns := range stats.Namespaces {
		if isPlaceholderID(ns) {
			continue
		}
		namespaces = append(namespaces, ns)
	}
	return namespaces, nil
}
