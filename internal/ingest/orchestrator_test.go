package ingest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"atsresume/internal/classify"
	"atsresume/internal/core"
	"atsresume/internal/extract"
	"atsresume/internal/fields"
	"atsresume/internal/llmclient"
	"atsresume/internal/vectorstore"
)

type fakeResumeRepo struct {
	mu       sync.Mutex
	byID     map[int64]*core.Resume
	byName   map[string]*core.Resume
	nextID   int64
	statuses []string
}

func newFakeResumeRepo() *fakeResumeRepo {
	return &fakeResumeRepo{byID: map[int64]*core.Resume{}, byName: map[string]*core.Resume{}}
}

func (f *fakeResumeRepo) Create(ctx context.Context, r *core.Resume) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	r.ID = f.nextID
	cp := *r
	f.byID[r.ID] = &cp
	f.byName[r.Filename] = &cp
	return nil
}

func (f *fakeResumeRepo) Update(ctx context.Context, r *core.Resume) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *r
	f.byID[r.ID] = &cp
	f.byName[r.Filename] = &cp
	f.statuses = append(f.statuses, r.Status)
	return nil
}

func (f *fakeResumeRepo) GetByID(ctx context.Context, id int64) (*core.Resume, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.byID[id], nil
}

func (f *fakeResumeRepo) GetByFilename(ctx context.Context, filename string) (*core.Resume, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.byName[filename], nil
}

func (f *fakeResumeRepo) UpdateStatus(ctx context.Context, id int64, status string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if r, ok := f.byID[id]; ok {
		r.Status = status
	}
	f.statuses = append(f.statuses, status)
	return nil
}

func (f *fakeResumeRepo) SearchByName(ctx context.Context, name string) ([]core.RankedResult, error) {
	return nil, nil
}

type fakeVectorStore struct {
	mu      sync.Mutex
	upserts []vectorstore.Vector
}

func (f *fakeVectorStore) Upsert(ctx context.Context, vectors []vectorstore.Vector, resumeText, mastercategory, filename string, category *string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.upserts = append(f.upserts, vectors...)
	return nil
}

func (f *fakeVectorStore) Query(ctx context.Context, queryVector []float64, mastercategory, namespace string, topK int, filter vectorstore.Filter) ([]vectorstore.Match, error) {
	return nil, nil
}

func (f *fakeVectorStore) Delete(ctx context.Context, ids []string, mastercategory, namespace string) error {
	return nil
}

func (f *fakeVectorStore) ListNamespaces(ctx context.Context, mastercategory string) ([]string, error) {
	return nil, nil
}

func (f *fakeVectorStore) EnsureIndexes(ctx context.Context) error { return nil }

// fullIngestionLLM serves the full sequential call order of one ingestion:
// mastercategory, category, then the nine field extractors in the fleet's
// default order, over /api/generate, and a fixed vector over
// /api/embeddings.
func fullIngestionLLM(t *testing.T) *llmclient.Client {
	t.Helper()
	responses := []string{
		"IT",                                // mastercategory
		"Full Stack Development (Python)",   // category
		`{"candidate_name": "Jane Doe"}`,     // candidate_name
		`{"designation": "Senior Engineer"}`, // designation
		`{"job_role": "Backend Developer"}`,  // job_role
		`{"domain": "Fintech"}`,              // domain
		`{"education": "B.Tech CS"}`,         // education
		`{"emails": ["jane@example.com"]}`,   // email
		`{"mobile": "9876543210"}`,           // mobile
		`{"experience": "5 years"}`,          // experience
		`{"skills": ["Python", "Django"]}`,   // skillset
	}
	var mu sync.Mutex
	call := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/embeddings" {
			json.NewEncoder(w).Encode(map[string]interface{}{"embedding": []float64{0.1, 0.2, 0.3}})
			return
		}
		mu.Lock()
		idx := call
		if call < len(responses)-1 {
			call++
		}
		mu.Unlock()
		json.NewEncoder(w).Encode(map[string]string{"response": responses[idx]})
	}))
	t.Cleanup(srv.Close)
	return llmclient.New(srv.URL, "", "")
}

func buildTestOrchestrator(t *testing.T, llm *llmclient.Client, resumes *fakeResumeRepo, vectors *fakeVectorStore) *Orchestrator {
	t.Helper()
	extractor := extract.New(extract.NoOpOCREngine(), "")
	orch, err := NewBuilder().
		WithExtractor(extractor).
		WithClassifier(classify.New(llm)).
		WithHarness(fields.NewHarness(llm)).
		WithVectorStore(vectors).
		WithResumeRepository(resumes).
		WithLLMClient(llm).
		Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	return orch
}

func TestBuilderRejectsMissingDependencies(t *testing.T) {
	_, err := NewBuilder().Build()
	if err == nil {
		t.Fatal("expected Build() to fail with no dependencies configured")
	}
}

func TestIngestHappyPathCompletesAndIndexes(t *testing.T) {
	llm := fullIngestionLLM(t)
	resumes := newFakeResumeRepo()
	vectors := &fakeVectorStore{}
	orch := buildTestOrchestrator(t, llm, resumes, vectors)

	resumeText := "Jane Doe is a backend developer with 5 years of experience in Python and Django, working at a fintech startup. " +
		"She holds a B.Tech in Computer Science and has led several microservice migrations."
	resume, err := orch.Ingest(context.Background(), []byte(resumeText), "jane.txt", "all")
	if err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}
	if resume.Status != core.StatusCompleted {
		t.Fatalf("expected status completed, got %q", resume.Status)
	}
	if resume.CandidateName == nil || *resume.CandidateName != "Jane Doe" {
		t.Fatalf("expected candidate name to be extracted, got %v", resume.CandidateName)
	}
	if resume.Mastercategory == nil || *resume.Mastercategory != core.MastercategoryIT {
		t.Fatalf("expected mastercategory IT, got %v", resume.Mastercategory)
	}
	if len(vectors.upserts) == 0 {
		t.Fatal("expected at least one vector to be upserted")
	}
}

func TestIngestRejectsUnrecognizedExtension(t *testing.T) {
	llm := fullIngestionLLM(t)
	resumes := newFakeResumeRepo()
	vectors := &fakeVectorStore{}
	orch := buildTestOrchestrator(t, llm, resumes, vectors)

	resume, err := orch.Ingest(context.Background(), []byte("hello"), "resume.exe", "all")
	if err == nil {
		t.Fatal("expected Ingest() to reject an unrecognized extension")
	}
	if resume == nil || resume.Status != core.FailedStatus(core.ReasonInvalidFileType) {
		t.Fatalf("expected failed:invalid_file_type, got %+v", resume)
	}
}

func TestIngestRejectsEmptyFile(t *testing.T) {
	llm := fullIngestionLLM(t)
	resumes := newFakeResumeRepo()
	vectors := &fakeVectorStore{}
	orch := buildTestOrchestrator(t, llm, resumes, vectors)

	resume, err := orch.Ingest(context.Background(), []byte{}, "resume.txt", "all")
	if err == nil {
		t.Fatal("expected Ingest() to reject an empty file")
	}
	if resume == nil || resume.Status != core.FailedStatus(core.ReasonEmptyFile) {
		t.Fatalf("expected failed:empty_file, got %+v", resume)
	}
}

func TestIngestReusesExistingRecordByFilename(t *testing.T) {
	llm := fullIngestionLLM(t)
	resumes := newFakeResumeRepo()
	vectors := &fakeVectorStore{}
	orch := buildTestOrchestrator(t, llm, resumes, vectors)

	resumeText := "Jane Doe is a backend developer with 5 years of experience in Python and Django, working at a fintech startup. " +
		"She holds a B.Tech in Computer Science and has led several microservice migrations."
	first, err := orch.Ingest(context.Background(), []byte(resumeText), "jane.txt", "all")
	if err != nil {
		t.Fatalf("first Ingest() error = %v", err)
	}

	llm2 := fullIngestionLLM(t)
	orch2 := buildTestOrchestrator(t, llm2, resumes, vectors)
	second, err := orch2.Ingest(context.Background(), []byte(resumeText), "jane.txt", "all")
	if err != nil {
		t.Fatalf("second Ingest() error = %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("expected reingestion to reuse id %d, got %d", first.ID, second.ID)
	}
}

func TestIngestInsufficientTextFailsAndIsRetryable(t *testing.T) {
	llm := fullIngestionLLM(t)
	resumes := newFakeResumeRepo()
	vectors := &fakeVectorStore{}
	orch := buildTestOrchestrator(t, llm, resumes, vectors)

	resume, err := orch.Ingest(context.Background(), []byte("too short"), "thin.txt", "all")
	if err == nil {
		t.Fatal("expected Ingest() to fail on insufficient text")
	}
	if !core.Retryable(resume.Status) {
		t.Fatalf("expected failed:insufficient_text to be retryable, got status %q", resume.Status)
	}
}

func TestRetryRejectsNonRetryableStatus(t *testing.T) {
	llm := fullIngestionLLM(t)
	resumes := newFakeResumeRepo()
	vectors := &fakeVectorStore{}
	orch := buildTestOrchestrator(t, llm, resumes, vectors)

	resume := &core.Resume{Filename: "x.txt", Status: core.FailedStatus(core.ReasonExtractionError)}
	if err := resumes.Create(context.Background(), resume); err != nil {
		t.Fatalf("seed Create() error = %v", err)
	}

	_, err := orch.Retry(context.Background(), resume.ID, []string{"."}, "all")
	if err == nil {
		t.Fatal("expected Retry() to reject a non-retryable status")
	}
}

func TestChunkTextSplitsWithOverlap(t *testing.T) {
	text := "0123456789"
	chunks := chunkText(text, 4, 2)
	if len(chunks) < 3 {
		t.Fatalf("expected multiple overlapping chunks, got %v", chunks)
	}
	if chunks[0] != "0123" {
		t.Fatalf("expected first chunk '0123', got %q", chunks[0])
	}
	if chunks[len(chunks)-1] != text[len(text)-4:] {
		t.Fatalf("expected last chunk to reach end of text, got %q", chunks[len(chunks)-1])
	}
}

func TestChunkTextShortTextIsSingleChunk(t *testing.T) {
	chunks := chunkText("short", 1000, 200)
	if len(chunks) != 1 || chunks[0] != "short" {
		t.Fatalf("expected a single chunk, got %v", chunks)
	}
}
