// Package handlers wires cobra subcommands to the ATS pipeline's
// collaborators, following the teacher's one-handler-file-per-command
// layout (cmd/handlers/*.go, each exposing a NewXCmd() factory).
package handlers

import (
	"time"

	"atsresume/internal/classify"
	"atsresume/internal/config"
	"atsresume/internal/extract"
	"atsresume/internal/fields"
	"atsresume/internal/ingest"
	"atsresume/internal/llmclient"
	"atsresume/internal/persistence"
	"atsresume/internal/queryparser"
	"atsresume/internal/search"
	"atsresume/internal/vectorclient"
	"atsresume/internal/vectorstore"
)

var cfgFile string

// loadConfig loads process configuration, honoring the --config flag bound
// in NewRootCmd.
func loadConfig() (*config.Config, error) {
	return config.Load(cfgFile)
}

// openDatabase opens the MySQL-backed repositories per spec §5's pool
// sizing, falling back to DefaultPoolConfig for an unparseable lifetime.
func openDatabase(cfg *config.Config) (*persistence.DB, error) {
	pool := persistence.DefaultPoolConfig()
	if cfg.Database.MaxOpenConns > 0 {
		pool.MaxOpenConns = cfg.Database.MaxOpenConns
	}
	if cfg.Database.MaxIdleConns > 0 {
		pool.MaxIdleConns = cfg.Database.MaxIdleConns
	}
	if d, err := time.ParseDuration(cfg.Database.ConnMaxLifetime); err == nil {
		pool.ConnMaxLifetime = d
	}
	return persistence.Open(cfg.Database.DSN(), pool)
}

func buildLLMClient(cfg *config.Config) *llmclient.Client {
	return llmclient.New(cfg.Ollama.Host, cfg.Ollama.APIKey, cfg.Ollama.Model)
}

func buildVectorStore(cfg *config.Config, classifier *classify.Classifier) vectorstore.Store {
	vc := vectorclient.New(cfg.Pinecone.Host, cfg.Pinecone.APIKey)
	return vectorstore.New(vc, classifier, cfg.Embedding.Dimension, cfg.Pinecone.Cloud, cfg.Pinecone.Region)
}

// buildOrchestrator assembles the Ingestion Orchestrator from a loaded
// config and an open database, following the teacher's pipeline.Builder
// wiring style (one WithX call per collaborator, then Build()).
func buildOrchestrator(cfg *config.Config, db *persistence.DB) (*ingest.Orchestrator, error) {
	llm := buildLLMClient(cfg)
	classifier := classify.New(llm)
	ocr := extract.NoOpOCREngine()
	if cfg.OCR.ServiceURL != "" {
		ocr = extract.NewHTTPOCREngine(cfg.OCR.ServiceURL)
	}

	return ingest.NewBuilder().
		WithExtractor(extract.New(ocr, cfg.OCR.DocConverterURL)).
		WithClassifier(classifier).
		WithHarness(fields.NewHarness(llm)).
		WithVectorStore(buildVectorStore(cfg, classifier)).
		WithResumeRepository(db.Resumes).
		WithLLMClient(llm).
		WithConfig(ingest.Config{
			MaxFileSizeBytes: int64(cfg.App.MaxFileSizeMB) * 1024 * 1024,
			ChunkSize:        cfg.Embedding.ChunkSize,
			ChunkOverlap:     cfg.Embedding.ChunkOverlap,
		}).
		Build()
}

// buildSearchEngine assembles the Search Engine from a loaded config and an
// open database.
func buildSearchEngine(cfg *config.Config, db *persistence.DB) *search.Engine {
	llm := buildLLMClient(cfg)
	classifier := classify.New(llm)
	return search.NewEngine(llm, buildVectorStore(cfg, classifier), db.Resumes, db.Search, queryparser.New(llm))
}
