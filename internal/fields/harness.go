package fields

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"atsresume/internal/apperr"
	"atsresume/internal/core"
	"atsresume/internal/llmclient"
)

var errParseFailed = errors.New("could not parse extractor output")

// isolationNote is the explicit "ignore prior context" system message every
// extractor call carries, per spec's session-isolation requirement. The
// underlying llmclient.Client call is already stateless (no chat history),
// so this note is belt-and-suspenders against any backend that tries to be
// clever about implicit context.
const isolationNote = "Treat this request independently. Ignore any prior context or conversation history."

// Extractor is one field extractor: a constant prompt template, a
// defensive parser, and a commit function — a value, not a type hierarchy,
// per the fleet's "represent as a list of values" design.
type Extractor struct {
	Name   string
	Prompt func(resumeText string) string
	Parse  func(rawOutput string) (string, bool)
	Commit func(resume *core.Resume, value string, resumeText string)
}

// Harness runs the extractor fleet against one LLM client.
type Harness struct {
	llm        *llmclient.Client
	extractors []Extractor
}

// NewHarness builds a Harness over the default nine-extractor fleet.
func NewHarness(llm *llmclient.Client) *Harness {
	return &Harness{llm: llm, extractors: defaultExtractors()}
}

// RunAll runs every extractor sequentially against resume.ResumeText,
// committing each field independently. An extractor's failure never blocks
// the others — it's contained and the field is left as-is.
func (h *Harness) RunAll(ctx context.Context, resume *core.Resume) []error {
	var errs []error
	text := ""
	if resume.ResumeText != nil {
		text = *resume.ResumeText
	}
	for _, extractor := range h.extractors {
		if err := h.runOne(ctx, extractor, resume, text); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

// RunSelected runs a subset of the fleet per a module-selection expression:
// "all", "0", or empty selects every extractor; otherwise a comma-separated
// mix of extractor names and 1-based positional indexes into the default
// fleet order. unknown carries any tokens that matched neither a name nor a
// valid index, for the caller to warn about.
func (h *Harness) RunSelected(ctx context.Context, resume *core.Resume, selection string) (errs []error, unknown []string) {
	extractors, unknown := h.resolveSelection(selection)
	text := ""
	if resume.ResumeText != nil {
		text = *resume.ResumeText
	}
	for _, extractor := range extractors {
		if err := h.runOne(ctx, extractor, resume, text); err != nil {
			errs = append(errs, err)
		}
	}
	return errs, unknown
}

// resolveSelection parses the module-selection expression into the ordered
// extractor subset to run, plus the unknown tokens encountered (for the
// caller to warn about).
func (h *Harness) resolveSelection(selection string) ([]Extractor, []string) {
	selection = strings.TrimSpace(selection)
	if selection == "" || selection == "all" || selection == "0" {
		return h.extractors, nil
	}

	var selected []Extractor
	var unknown []string
	for _, token := range strings.Split(selection, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		if idx, err := strconv.Atoi(token); err == nil {
			if idx >= 1 && idx <= len(h.extractors) {
				selected = append(selected, h.extractors[idx-1])
				continue
			}
			unknown = append(unknown, token)
			continue
		}
		found := false
		for _, extractor := range h.extractors {
			if strings.EqualFold(extractor.Name, token) {
				selected = append(selected, extractor)
				found = true
				break
			}
		}
		if !found {
			unknown = append(unknown, token)
		}
	}
	return selected, unknown
}

func (h *Harness) runOne(ctx context.Context, extractor Extractor, resume *core.Resume, resumeText string) error {
	raw, err := h.llm.Generate(ctx, isolationNote, extractor.Prompt(resumeText), llmclient.DefaultOptions())
	if err != nil {
		return &apperr.FieldExtractorError{Extractor: extractor.Name, Err: err}
	}
	value, ok := extractor.Parse(raw)
	if !ok {
		return &apperr.FieldExtractorError{Extractor: extractor.Name, Err: errParseFailed}
	}
	extractor.Commit(resume, value, resumeText)
	return nil
}
