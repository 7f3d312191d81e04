package search

import (
	"context"
	"fmt"
	"sync"

	"atsresume/internal/fields"
	"atsresume/internal/llmclient"
)

// designationPairKey is the cache key for a (query_role, candidate_role)
// designation-equivalence judgement. Unbounded and process-local: a fresh
// process starts cold, matching every other session-isolated LLM call in
// this codebase.
type designationPairKey struct {
	queryRole     string
	candidateRole string
}

// DesignationMatcher implements the two-stage designation matcher (§4.10):
// a cheap rule pass (normalizeRole/substring, already folded into
// designationScore) narrows candidates, then this LLM pass judges role
// equivalence for the remaining weak-signal candidates only.
type DesignationMatcher struct {
	llm   *llmclient.Client
	cache sync.Map // designationPairKey -> designationVerdict
}

type designationVerdict struct {
	IsMatch    bool
	Confidence float64
}

// NewDesignationMatcher constructs a matcher sharing the given LLM client.
func NewDesignationMatcher(llm *llmclient.Client) *DesignationMatcher {
	return &DesignationMatcher{llm: llm}
}

// Match judges whether candidateRole is an equivalent role to queryRole,
// caching the verdict by the literal pair so repeat candidates across
// queries in the same process skip the LLM call. On any parse or call
// failure, it returns the conservative is_match=false verdict rather than
// risk inflating a weak-signal candidate's rank.
func (m *DesignationMatcher) Match(ctx context.Context, queryRole, candidateRole string) (bool, float64) {
	key := designationPairKey{queryRole: queryRole, candidateRole: candidateRole}
	if cached, ok := m.cache.Load(key); ok {
		v := cached.(designationVerdict)
		return v.IsMatch, v.Confidence
	}

	verdict := m.judge(ctx, queryRole, candidateRole)
	m.cache.Store(key, verdict)
	return verdict.IsMatch, verdict.Confidence
}

func (m *DesignationMatcher) judge(ctx context.Context, queryRole, candidateRole string) designationVerdict {
	prompt := fmt.Sprintf(`You judge whether two job titles refer to the same
professional role family, treating seniority prefixes (Senior, Lead, Jr,
Associate) and stylistic variants as equivalent, but treating genuinely
different disciplines (e.g. "QA Engineer" vs "Project Manager") as not
equivalent.

Query role: %q
Candidate role: %q

Respond with exactly one JSON object and nothing else:
{"is_match": true or false, "confidence": a number between 0 and 1}`, queryRole, candidateRole)

	raw, err := m.llm.Generate(ctx, "", prompt, llmclient.DefaultOptions())
	if err != nil {
		return designationVerdict{IsMatch: false, Confidence: 0}
	}

	obj, ok := fields.ExtractJSONObject(raw)
	if !ok {
		return designationVerdict{IsMatch: false, Confidence: 0}
	}

	isMatch, _ := obj["is_match"].(bool)
	confidence, _ := obj["confidence"].(float64)
	if !isMatch {
		return designationVerdict{IsMatch: false, Confidence: confidence}
	}
	return designationVerdict{IsMatch: true, Confidence: confidence}
}

// MatchTopK applies the designation matcher only to the weak-signal
// candidates at the head of the slice (those whose rule-based designation
// score did not already resolve to a confident family match), bounded to
// at most maxCandidates LLM calls per query.
func MatchTopK(ctx context.Context, matcher *DesignationMatcher, queryRole string, candidateRoles []string, maxCandidates int) []bool {
	if maxCandidates <= 0 || maxCandidates > 50 {
		maxCandidates = 50
	}
	results := make([]bool, len(candidateRoles))
	for i, role := range candidateRoles {
		if i >= maxCandidates {
			break
		}
		isMatch, _ := matcher.Match(ctx, queryRole, role)
		results[i] = isMatch
	}
	return results
}
