package search

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"atsresume/internal/core"
	"atsresume/internal/llmclient"
	"atsresume/internal/obslog"
	"atsresume/internal/persistence"
	"atsresume/internal/queryparser"
	"atsresume/internal/vectorstore"
)

const (
	defaultTopK         = 20
	defaultFanoutTopK   = 10
	broadModeNamespaceN = 5
	fanoutTimeout       = 10 * time.Second
	designationTopK     = 50
	genericFallbackText = "professional candidate resume experience skills"
)

// Engine dispatches a parsed query to one of the three search paths
// (§4.8): SQL name search, explicit-category semantic search, and
// broad-mode semantic search with namespace-selection cascade and
// fallback. It owns no state beyond its collaborators.
type Engine struct {
	llm          *llmclient.Client
	vectors      vectorstore.Store
	resumes      persistence.ResumeRepository
	audit        persistence.SearchRepository
	parser       *queryparser.Parser
	designations *DesignationMatcher
}

func NewEngine(llm *llmclient.Client, vectors vectorstore.Store, resumes persistence.ResumeRepository,
	audit persistence.SearchRepository, parser *queryparser.Parser) *Engine {
	return &Engine{
		llm:          llm,
		vectors:      vectors,
		resumes:      resumes,
		audit:        audit,
		parser:       parser,
		designations: NewDesignationMatcher(llm),
	}
}

// Search parses queryText, dispatches to the appropriate path, records the
// query and its results in the audit log, and returns the ranked
// candidates. Audit-log failures are logged and swallowed, per §4.11.
func (e *Engine) Search(ctx context.Context, queryText string, userID *string,
	mastercategory *core.Mastercategory, category *string) ([]core.RankedResult, error) {
	log := obslog.With("search.engine")
	parsed := e.parser.Parse(ctx, queryText, mastercategory, category)

	queryID, err := e.audit.RecordQuery(ctx, queryText, userID)
	if err != nil {
		log.Warn().Err(err).Msg("failed to record search query")
	}

	var results []core.RankedResult
	switch parsed.SearchType {
	case core.SearchTypeName:
		results, err = e.resumes.SearchByName(ctx, parsed.CandidateName)
	default:
		results, err = e.searchSemantic(ctx, parsed)
	}
	if err != nil {
		return nil, err
	}

	if queryID != 0 {
		if err := e.audit.RecordResults(ctx, queryID, results); err != nil {
			log.Warn().Err(err).Msg("failed to record search results")
		}
	}
	return results, nil
}

// searchSemantic runs the explicit or broad-mode path depending on whether
// the parsed query carries both a mastercategory and category. Only the
// broad-mode path runs the fallback cascade (§4.8) when it returns nothing;
// an empty explicit-mode result is returned as is.
func (e *Engine) searchSemantic(ctx context.Context, q *core.ParsedQuery) ([]core.RankedResult, error) {
	filter := CompileFilter(q)

	embedding, err := e.llm.Embed(ctx, q.TextForEmbedding)
	if err != nil {
		return nil, err
	}

	explicit := q.Mastercategory != nil && q.Category != nil
	if explicit {
		namespace := vectorstore.Namespace(*q.Category)
		matches, err := e.vectors.Query(ctx, embedding, string(*q.Mastercategory), namespace, defaultTopK, filter)
		if err != nil {
			return nil, err
		}
		// (a) explicit mode returning zero results is a terminal miss: no
		// fallback, the namespace genuinely has nothing matching.
		return e.rank(ctx, q, matches, true), nil
	}

	namespaces := e.selectBroadNamespaces(ctx, q)
	matches, err := e.fanOutQuery(ctx, embedding, namespaces, filter)
	if err != nil {
		return nil, err
	}
	if len(matches) > 0 {
		return e.rank(ctx, q, matches, false), nil
	}

	return e.fallback(ctx, q, embedding, filter)
}

// namespaceRef pairs a namespace with the mastercategory index it lives in.
type namespaceRef struct {
	mastercategory string
	namespace      string
}

// selectBroadNamespaces implements the broad-mode namespace-selection
// priority (§4.8): (a) a role-family keyword hit selects its pre-declared
// namespace set, (b) otherwise a skill-keyword mastercategory inference
// selects the top-N namespaces of that index, (c) otherwise the top-N
// namespaces of each index.
func (e *Engine) selectBroadNamespaces(ctx context.Context, q *core.ParsedQuery) []namespaceRef {
	text := q.Designation + " " + q.TextForEmbedding
	if family, ok := roleFamilyKeyword(text); ok {
		mc := inferredMastercategoryForFamily(family)
		refs := make([]namespaceRef, 0, len(roleFamilyNamespaces[family]))
		for _, ns := range roleFamilyNamespaces[family] {
			refs = append(refs, namespaceRef{mastercategory: mc, namespace: ns})
		}
		return refs
	}

	if mc, ok := inferMastercategoryFromSkills(q); ok {
		return e.topNamespaces(ctx, mc, broadModeNamespaceN)
	}

	var refs []namespaceRef
	refs = append(refs, e.topNamespaces(ctx, string(core.MastercategoryIT), broadModeNamespaceN)...)
	refs = append(refs, e.topNamespaces(ctx, string(core.MastercategoryNonIT), broadModeNamespaceN)...)
	return refs
}

// inferredMastercategoryForFamily maps a role family to the index its
// namespaces were pre-declared under; every family in roleFamilyNamespaces
// today is IT-flavored.
func inferredMastercategoryForFamily(family string) string {
	return string(core.MastercategoryIT)
}

// inferMastercategoryFromSkills guesses IT vs NON_IT from the query's
// required skills, a coarse heuristic used only when no role-family
// keyword matched.
func inferMastercategoryFromSkills(q *core.ParsedQuery) (string, bool) {
	itSkillMarkers := []string{"python", "java", "sql", "aws", "azure", "devops", "docker",
		"kubernetes", "react", "django", "selenium", "c#", ".net"}
	all := append(append([]string{}, q.MustHaveAll...), flattenGroups(q.MustHaveOneOfGroups)...)
	for _, s := range all {
		lower := strings.ToLower(s)
		for _, marker := range itSkillMarkers {
			if strings.Contains(lower, marker) {
				return string(core.MastercategoryIT), true
			}
		}
	}
	return "", false
}

func flattenGroups(groups [][]string) []string {
	var out []string
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

func (e *Engine) topNamespaces(ctx context.Context, mastercategory string, n int) []namespaceRef {
	namespaces, err := e.vectors.ListNamespaces(ctx, mastercategory)
	if err != nil {
		return nil
	}
	if len(namespaces) > n {
		namespaces = namespaces[:n]
	}
	refs := make([]namespaceRef, 0, len(namespaces))
	for _, ns := range namespaces {
		refs = append(refs, namespaceRef{mastercategory: mastercategory, namespace: ns})
	}
	return refs
}

// fanOutQuery queries every namespace concurrently under a shared timeout,
// merging results and deduplicating by resume id, keeping the
// highest-scoring match per resume. Each namespace gets its own goroutine
// (no concurrency limit); a WaitGroup joins them and a mutex guards the
// merge. A namespace whose query fails contributes no matches.
func (e *Engine) fanOutQuery(ctx context.Context, embedding []float64, namespaces []namespaceRef, filter vectorstore.Filter) ([]vectorstore.Match, error) {
	if len(namespaces) == 0 {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(ctx, fanoutTimeout)
	defer cancel()

	var wg sync.WaitGroup
	var mu sync.Mutex
	byResume := make(map[int64]vectorstore.Match)

	for _, ref := range namespaces {
		wg.Add(1)
		go func(ref namespaceRef) {
			defer wg.Done()
			matches, err := e.vectors.Query(ctx, embedding, ref.mastercategory, ref.namespace, defaultFanoutTopK, filter)
			if err != nil {
				return
			}
			mu.Lock()
			defer mu.Unlock()
			for _, m := range matches {
				resumeID := int64(metadataInt(m.Metadata, "resume_id"))
				if existing, ok := byResume[resumeID]; !ok || m.Score > existing.Score {
					byResume[resumeID] = m
				}
			}
		}(ref)
	}
	wg.Wait()

	merged := make([]vectorstore.Match, 0, len(byResume))
	for _, m := range byResume {
		merged = append(merged, m)
	}
	return merged, nil
}

// rank scores and tiers every match, applies two-stage designation
// matching to the top weak-signal candidates, applies post-filtering, and
// sorts the result descending by score.
func (e *Engine) rank(ctx context.Context, q *core.ParsedQuery, matches []vectorstore.Match, strict bool) []core.RankedResult {
	candidates := make([]candidateMeta, 0, len(matches))
	for _, m := range matches {
		candidates = append(candidates, candidateFromMatch(m))
	}

	weakSignal := make([]string, 0)
	weakSignalIdx := make([]int, 0)
	for i, c := range candidates {
		if _, ok := normalizeRole(c.Designation); !ok {
			weakSignal = append(weakSignal, c.Designation)
			weakSignalIdx = append(weakSignalIdx, i)
		}
	}

	designationBoost := make(map[int]float64, len(weakSignal))
	if q.Designation != "" && len(weakSignal) > 0 {
		matched := MatchTopK(ctx, e.designations, q.Designation, weakSignal, designationTopK)
		for i, isMatch := range matched {
			if !isMatch {
				continue
			}
			// Match is cache-backed, so this re-lookup costs no extra LLM call.
			_, confidence := e.designations.Match(ctx, q.Designation, weakSignal[i])
			boost := 20 + 30*confidence
			if boost < 20 {
				boost = 20
			}
			if boost > 50 {
				boost = 50
			}
			designationBoost[weakSignalIdx[i]] = boost
		}
	}

	results := make([]core.RankedResult, 0, len(candidates))
	for i, c := range candidates {
		score := scoreCandidate(c, scoreInputs{
			query:            q,
			semanticScore:    matches[i].Score,
			strictCategory:   strict,
			designationBoost: designationBoost[i],
		})
		tier := fitTier(c, q, score)
		results = append(results, core.RankedResult{
			ResumeID:       c.ResumeID,
			CandidateName:  c.CandidateName,
			Score:          score,
			FitTier:        tier,
			Designation:    c.Designation,
			Mastercategory: c.Mastercategory,
			Category:       c.Category,
		})
	}

	results = postFilter(results, q)

	sort.Slice(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	return results
}

// postFilter narrows to a shared mastercategory or normalized role when at
// least two results agree, per §4.8, but never narrows past one result.
func postFilter(results []core.RankedResult, q *core.ParsedQuery) []core.RankedResult {
	if narrowed := narrowByField(results, func(r core.RankedResult) string { return r.Mastercategory }); len(narrowed) >= 2 {
		results = narrowed
	}
	if narrowed := narrowByNormalizedRole(results); len(narrowed) >= 2 {
		results = narrowed
	}
	return results
}

func narrowByField(results []core.RankedResult, key func(core.RankedResult) string) []core.RankedResult {
	counts := make(map[string]int)
	for _, r := range results {
		counts[key(r)]++
	}
	best, bestCount := "", 0
	for k, c := range counts {
		if c > bestCount {
			best, bestCount = k, c
		}
	}
	if bestCount < 2 {
		return results
	}
	var narrowed []core.RankedResult
	for _, r := range results {
		if key(r) == best {
			narrowed = append(narrowed, r)
		}
	}
	return narrowed
}

func narrowByNormalizedRole(results []core.RankedResult) []core.RankedResult {
	counts := make(map[string]int)
	families := make(map[int]string)
	for i, r := range results {
		if family, ok := normalizeRole(r.Designation); ok {
			families[i] = family
			counts[family]++
		}
	}
	best, bestCount := "", 0
	for k, c := range counts {
		if c > bestCount {
			best, bestCount = k, c
		}
	}
	if bestCount < 2 {
		return results
	}
	var narrowed []core.RankedResult
	for i, r := range results {
		if families[i] == best {
			narrowed = append(narrowed, r)
		}
	}
	return narrowed
}

// fallback implements the documented cascade once broad-mode returns zero
// matches: (b) role-family namespaces of the identified mastercategory,
// (c) all namespaces of that mastercategory with filters still applied,
// (d) a generic re-embedded phrase for minimal queries, (e) finally a pure
// semantic pass with filters dropped entirely.
func (e *Engine) fallback(ctx context.Context, q *core.ParsedQuery, embedding []float64, filter vectorstore.Filter) ([]core.RankedResult, error) {
	log := obslog.With("search.engine.fallback")

	mc, ok := inferMastercategoryFromSkills(q)
	if !ok {
		mc = string(core.MastercategoryIT)
	}

	if family, ok := roleFamilyKeyword(q.Designation + " " + q.TextForEmbedding); ok {
		refs := make([]namespaceRef, 0, len(roleFamilyNamespaces[family]))
		for _, ns := range roleFamilyNamespaces[family] {
			refs = append(refs, namespaceRef{mastercategory: mc, namespace: ns})
		}
		if matches, err := e.fanOutQuery(ctx, embedding, refs, filter); err == nil && len(matches) > 0 {
			log.Info().Str("stage", "role_family_namespaces").Msg("fallback recovered matches")
			return e.rank(ctx, q, matches, false), nil
		}
	}

	if filter != nil {
		refs := e.topNamespaces(ctx, mc, 100)
		if matches, err := e.fanOutQuery(ctx, embedding, refs, filter); err == nil && len(matches) > 0 {
			log.Info().Str("stage", "all_namespaces_with_filters").Msg("fallback recovered matches")
			return e.rank(ctx, q, matches, false), nil
		}

		if isMinimalQuery(q) {
			genericEmbedding, err := e.llm.Embed(ctx, genericFallbackText)
			if err == nil {
				if matches, err := e.fanOutQuery(ctx, genericEmbedding, refs, filter); err == nil && len(matches) > 0 {
					log.Info().Str("stage", "generic_phrase_reembed").Msg("fallback recovered matches")
					return e.rank(ctx, q, matches, false), nil
				}
			}
		}

		refs = e.topNamespaces(ctx, mc, 100)
		if matches, err := e.fanOutQuery(ctx, embedding, refs, nil); err == nil && len(matches) > 0 {
			log.Info().Str("stage", "filters_dropped").Msg("fallback recovered matches")
			return e.rank(ctx, q, matches, false), nil
		}
	}

	return []core.RankedResult{}, nil
}

// isMinimalQuery detects a near-empty query: at most 3 tokens and no
// recognizable role keyword, per §4.8's fallback stage (d) trigger.
func isMinimalQuery(q *core.ParsedQuery) bool {
	tokens := strings.Fields(q.TextForEmbedding)
	if len(tokens) > 3 {
		return false
	}
	_, hasRoleKeyword := roleFamilyKeyword(q.TextForEmbedding)
	return !hasRoleKeyword
}
