// Package ingest implements the Ingestion Orchestrator: the single entry
// point that turns submitted file bytes into a fully extracted, classified,
// field-populated, and vector-indexed resume record, plus the distinct
// retry-with-OCR entry point for records stuck in failed:insufficient_text.
package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"atsresume/internal/apperr"
	"atsresume/internal/classify"
	"atsresume/internal/core"
	"atsresume/internal/extract"
	"atsresume/internal/fields"
	"atsresume/internal/llmclient"
	"atsresume/internal/obslog"
	"atsresume/internal/persistence"
	"atsresume/internal/vectorstore"
)

// Orchestrator wires the extractor, classifier, field extractor fleet,
// vector store, and resume repository together into one ingestion
// pipeline, built with a Pipeline/Builder construction shape.
type Orchestrator struct {
	extractor  *extract.Extractor
	classifier *classify.Classifier
	harness    *fields.Harness
	vectors    vectorstore.Store
	resumes    persistence.ResumeRepository
	llm        *llmclient.Client
	cfg        Config
}

// Config holds the ingestion-time tuning knobs (internal/config's Embedding
// chunk settings and App file-size limit), kept orchestrator-local rather than importing internal/config
// directly so the orchestrator stays test-constructible without a full
// process configuration.
type Config struct {
	MaxFileSizeBytes int64
	ChunkSize        int
	ChunkOverlap     int
}

// DefaultConfig mirrors internal/config's documented defaults (10MB max
// upload, 1000-character chunks, 200-character overlap).
func DefaultConfig() Config {
	return Config{
		MaxFileSizeBytes: 10 * 1024 * 1024,
		ChunkSize:        1000,
		ChunkOverlap:     200,
	}
}

// Builder constructs an Orchestrator fluently, following
// internal/pipeline.Builder's WithX(...)-then-Build() pattern.
type Builder struct {
	extractor  *extract.Extractor
	classifier *classify.Classifier
	harness    *fields.Harness
	vectors    vectorstore.Store
	resumes    persistence.ResumeRepository
	llm        *llmclient.Client
	cfg        Config
}

// NewBuilder starts a Builder with default tuning knobs.
func NewBuilder() *Builder {
	return &Builder{cfg: DefaultConfig()}
}

func (b *Builder) WithExtractor(e *extract.Extractor) *Builder {
	b.extractor = e
	return b
}

func (b *Builder) WithClassifier(c *classify.Classifier) *Builder {
	b.classifier = c
	return b
}

func (b *Builder) WithHarness(h *fields.Harness) *Builder {
	b.harness = h
	return b
}

func (b *Builder) WithVectorStore(store vectorstore.Store) *Builder {
	b.vectors = store
	return b
}

func (b *Builder) WithResumeRepository(repo persistence.ResumeRepository) *Builder {
	b.resumes = repo
	return b
}

func (b *Builder) WithLLMClient(llm *llmclient.Client) *Builder {
	b.llm = llm
	return b
}

func (b *Builder) WithConfig(cfg Config) *Builder {
	b.cfg = cfg
	return b
}

// Build validates required dependencies and constructs the Orchestrator.
func (b *Builder) Build() (*Orchestrator, error) {
	if b.extractor == nil {
		return nil, fmt.Errorf("ingest: extractor is required")
	}
	if b.harness == nil {
		return nil, fmt.Errorf("ingest: field extractor harness is required")
	}
	if b.vectors == nil {
		return nil, fmt.Errorf("ingest: vector store is required")
	}
	if b.resumes == nil {
		return nil, fmt.Errorf("ingest: resume repository is required")
	}
	if b.llm == nil {
		return nil, fmt.Errorf("ingest: LLM client is required")
	}
	return &Orchestrator{
		extractor:  b.extractor,
		classifier: b.classifier,
		harness:    b.harness,
		vectors:    b.vectors,
		resumes:    b.resumes,
		llm:        b.llm,
		cfg:        b.cfg,
	}, nil
}

var recognizedExtensions = map[string]bool{
	".pdf": true, ".docx": true, ".doc": true, ".txt": true,
	".jpg": true, ".jpeg": true, ".png": true, ".bmp": true, ".tif": true, ".tiff": true,
	".html": true, ".htm": true,
}

// Ingest validates, extracts, classifies, runs the selected field
// extractors, and upserts the result into the vector store, for one
// submitted file. selection is a module-selection expression (spec §4.5):
// "all"/"0"/empty selects all nine field extractors; otherwise a
// comma-separated mix of extractor names and 1-based indexes.
func (o *Orchestrator) Ingest(ctx context.Context, fileBytes []byte, filename string, selection string) (*core.Resume, error) {
	log := obslog.With("ingest.orchestrator").With().Str("filename", filename).Str("correlation_id", uuid.NewString()).Logger()

	resume, err := o.validate(ctx, fileBytes, filename)
	if err != nil {
		log.Warn().Err(err).Msg("input rejected")
		return resume, err
	}

	resume.Status = core.StatusProcessing
	if err := o.save(ctx, resume); err != nil {
		return resume, err
	}

	if err := o.runPipeline(ctx, resume, fileBytes, filename, selection, false); err != nil {
		o.failAndLog(ctx, &log, resume, err)
		return resume, err
	}

	resume.Status = core.StatusCompleted
	if err := o.save(ctx, resume); err != nil {
		return resume, err
	}
	log.Info().Int64("resume_id", resume.ID).Msg("ingestion completed")
	return resume, nil
}

// Retry re-runs ingestion for a resume currently in failed:insufficient_text,
// locating the file on disk through searchPaths (an ordered list of
// candidate directories, most-specific first) and forcing the OCR path
// during re-extraction. Any other status is rejected outright — only
// failed:insufficient_text is retryable per spec §4.6.
func (o *Orchestrator) Retry(ctx context.Context, resumeID int64, searchPaths []string, selection string) (*core.Resume, error) {
	log := obslog.With("ingest.orchestrator").With().Int64("resume_id", resumeID).Logger()

	resume, err := o.resumes.GetByID(ctx, resumeID)
	if err != nil {
		return nil, &apperr.RepositoryError{Op: "get resume by id", Err: err}
	}
	if resume == nil {
		return nil, fmt.Errorf("ingest: no resume with id %d", resumeID)
	}
	if !core.Retryable(resume.Status) {
		return nil, fmt.Errorf("ingest: resume %d has status %q, only %s is retryable",
			resumeID, resume.Status, core.FailedStatus(core.ReasonInsufficientText))
	}

	fileBytes, foundPath, err := locateFile(resume.Filename, searchPaths)
	if err != nil {
		log.Warn().Err(err).Msg("could not locate file for retry")
		return nil, err
	}
	log.Info().Str("path", foundPath).Msg("located file for retry")

	resume.Status = core.StatusProcessing
	if err := o.save(ctx, resume); err != nil {
		return resume, err
	}

	if err := o.runPipeline(ctx, resume, fileBytes, resume.Filename, selection, true); err != nil {
		o.failAndLog(ctx, &log, resume, err)
		return resume, err
	}

	resume.Status = core.StatusCompleted
	if err := o.save(ctx, resume); err != nil {
		return resume, err
	}
	log.Info().Msg("retry completed")
	return resume, nil
}

// validate checks the fixed allow-list, non-empty, and size rules, and
// either reuses the existing record for filename (idempotent reingestion)
// or creates a fresh pending record.
func (o *Orchestrator) validate(ctx context.Context, fileBytes []byte, filename string) (*core.Resume, error) {
	ext := strings.ToLower(filepath.Ext(filename))

	existing, err := o.resumes.GetByFilename(ctx, filename)
	if err != nil {
		return nil, &apperr.RepositoryError{Op: "get resume by filename", Err: err}
	}

	resume := existing
	if resume == nil {
		resume = &core.Resume{Filename: filename, Status: core.StatusPending}
	}

	if !recognizedExtensions[ext] {
		resume.Status = core.FailedStatus(core.ReasonInvalidFileType)
		_ = o.save(ctx, resume)
		return resume, &apperr.InputError{Reason: core.ReasonInvalidFileType, Err: fmt.Errorf("unrecognized extension %q", ext)}
	}
	if len(fileBytes) == 0 {
		resume.Status = core.FailedStatus(core.ReasonEmptyFile)
		_ = o.save(ctx, resume)
		return resume, &apperr.InputError{Reason: core.ReasonEmptyFile, Err: fmt.Errorf("empty file")}
	}
	if o.cfg.MaxFileSizeBytes > 0 && int64(len(fileBytes)) > o.cfg.MaxFileSizeBytes {
		resume.Status = core.FailedStatus(core.ReasonFileTooLarge)
		_ = o.save(ctx, resume)
		return resume, &apperr.InputError{Reason: core.ReasonFileTooLarge, Err: fmt.Errorf("file exceeds %d bytes", o.cfg.MaxFileSizeBytes)}
	}

	return resume, nil
}

// runPipeline runs extraction, classification, selected field extractors,
// and vector indexing against resume, mutating it in place. forceOCR is set
// on the retry path.
func (o *Orchestrator) runPipeline(ctx context.Context, resume *core.Resume, fileBytes []byte, filename, selection string, forceOCR bool) error {
	log := obslog.With("ingest.orchestrator")

	var text string
	var err error
	if forceOCR {
		text, err = o.extractor.ExtractForceOCR(ctx, fileBytes, filename)
	} else {
		text, err = o.extractor.Extract(ctx, fileBytes, filename)
	}
	if err != nil {
		return err
	}
	resume.ResumeText = &text

	if o.classifier != nil {
		mastercategory, category := o.classifier.Classify(ctx, text)
		if mastercategory == nil {
			log.Warn().Str("filename", filename).Msg("classification failed, leaving mastercategory/category unset")
		}
		resume.Mastercategory = mastercategory
		resume.Category = category
	}

	unknownWarned := o.runFieldExtractors(ctx, resume, selection, &log)
	for _, token := range unknownWarned {
		log.Warn().Str("token", token).Msg("unknown module-selection token, ignored")
	}

	if err := o.index(ctx, resume); err != nil {
		log.Warn().Err(err).Msg("vector indexing failed")
	}

	return nil
}

func (o *Orchestrator) runFieldExtractors(ctx context.Context, resume *core.Resume, selection string, log *zerolog.Logger) []string {
	errs, unknown := o.harness.RunSelected(ctx, resume, selection)
	for _, err := range errs {
		log.Warn().Err(err).Msg("field extractor failed, continuing with remaining extractors")
	}
	return unknown
}

// index chunks the resume text, embeds each chunk, and upserts into the
// vector store. A failure here does not roll back the otherwise-complete
// ingestion — spec treats vector indexing as best-effort relative to the
// SQL record of truth.
func (o *Orchestrator) index(ctx context.Context, resume *core.Resume) error {
	if resume.ResumeText == nil || strings.TrimSpace(*resume.ResumeText) == "" {
		return nil
	}
	mastercategory := ""
	if resume.Mastercategory != nil {
		mastercategory = string(*resume.Mastercategory)
	}
	if mastercategory == "" {
		mastercategory = string(core.MastercategoryNonIT)
	}

	chunks := chunkText(*resume.ResumeText, o.cfg.ChunkSize, o.cfg.ChunkOverlap)
	vectors := make([]vectorstore.Vector, 0, len(chunks))
	for k, chunk := range chunks {
		embedding, err := o.llm.Embed(ctx, chunk)
		if err != nil {
			return &apperr.VectorError{Op: "embed", Err: err}
		}
		vectors = append(vectors, vectorstore.Vector{
			ID:       fmt.Sprintf("resume_%d_chunk_%d", resume.ID, k),
			Values:   embedding,
			Metadata: resumeMetadata(resume),
		})
	}
	if len(vectors) == 0 {
		return nil
	}

	if err := o.vectors.Upsert(ctx, vectors, *resume.ResumeText, mastercategory, resume.Filename, resume.Category); err != nil {
		return &apperr.VectorError{Op: "upsert", Err: err}
	}
	return nil
}

func resumeMetadata(resume *core.Resume) map[string]interface{} {
	meta := map[string]interface{}{
		"resume_id": resume.ID,
		"filename":  resume.Filename,
	}
	if resume.CandidateName != nil {
		meta["candidate_name"] = *resume.CandidateName
	}
	if resume.Designation != nil {
		meta["designation"] = *resume.Designation
	}
	if resume.JobRole != nil {
		meta["jobrole"] = *resume.JobRole
	}
	if resume.Mastercategory != nil {
		meta["mastercategory"] = string(*resume.Mastercategory)
	}
	if resume.Category != nil {
		meta["category"] = *resume.Category
	}
	if years, ok := resume.ExperienceYears(); ok {
		meta["experience_years"] = years
	}
	if resume.Skillset != nil {
		meta["skills"] = *resume.Skillset
	}
	if resume.Location != nil {
		meta["location"] = *resume.Location
	}
	return meta
}

// save persists resume, creating it if it has no id yet.
func (o *Orchestrator) save(ctx context.Context, resume *core.Resume) error {
	if resume.ID == 0 {
		if err := o.resumes.Create(ctx, resume); err != nil {
			return err
		}
		return nil
	}
	return o.resumes.Update(ctx, resume)
}

// failAndLog sets resume's status to the reason carried by err (defaulting
// to unknown_error for untyped failures) and persists the transition.
func (o *Orchestrator) failAndLog(ctx context.Context, log *zerolog.Logger, resume *core.Resume, err error) {
	reason := core.ReasonUnknownError
	switch e := err.(type) {
	case *apperr.ExtractionError:
		reason = core.ReasonExtractionError
		if e.Err != nil && strings.Contains(e.Err.Error(), "insufficient_text") {
			reason = core.ReasonInsufficientText
		}
	case *apperr.InputError:
		reason = e.Reason
	case *apperr.RepositoryError:
		reason = core.ReasonDatabaseError
	}
	resume.Status = core.FailedStatus(reason)
	log.Error().Err(err).Str("reason", reason).Msg("ingestion failed")
	_ = o.save(ctx, resume)
}

// chunkText splits text into overlapping character windows. No text
// splitter library appears anywhere in the example corpus (the Python
// original's chunking call is itself commented out), so this is a direct,
// dependency-free port of the documented CHUNK_SIZE/CHUNK_OVERLAP contract.
func chunkText(text string, size, overlap int) []string {
	runes := []rune(text)
	if size <= 0 || len(runes) <= size {
		if len(runes) == 0 {
			return nil
		}
		return []string{string(runes)}
	}
	if overlap < 0 || overlap >= size {
		overlap = 0
	}

	var chunks []string
	step := size - overlap
	for start := 0; start < len(runes); start += step {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[start:end]))
		if end == len(runes) {
			break
		}
	}
	return chunks
}

// locateFile searches an ordered list of candidate directories for
// filename, returning the first match's bytes.
func locateFile(filename string, searchPaths []string) ([]byte, string, error) {
	for _, dir := range searchPaths {
		path := filepath.Join(dir, filename)
		data, err := os.ReadFile(path)
		if err == nil {
			return data, path, nil
		}
	}
	return nil, "", fmt.Errorf("ingest: %q not found in any of %d search paths", filename, len(searchPaths))
}
