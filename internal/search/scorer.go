package search

import (
	"strconv"
	"strings"

	"atsresume/internal/core"
	"atsresume/internal/fields"
	"atsresume/internal/vectorstore"
)

// candidateMeta is the subset of vector metadata the scorer reads. Field
// names mirror the metadata keys attached at upsert time (§4.4).
type candidateMeta struct {
	ResumeID       int64
	CandidateName  string
	Designation    string
	JobRole        string
	Mastercategory string
	Category       string
	ExperienceYrs  int
	Skills         []string
	Location       string
}

// scoreInputs bundles everything scoreCandidate needs beyond the raw
// semantic similarity, which callers compute separately per retrieval path.
type scoreInputs struct {
	query            *core.ParsedQuery
	semanticScore    float64 // in [0,1]
	strictCategory   bool    // true for explicit-mode queries (§4.8 path 2)
	designationBoost float64 // +20 to +50 from a positive two-stage LLM designation match (§4.8)
}

// scoreCandidate implements the common scoring formula (§4.8 "Scoring
// (common)"): skill/designation/experience/mastercategory rule-based
// components summed into a relevance score, combined with semantic
// similarity, normalized to [0,1] and clamped. designationBoost folds the
// two-stage LLM designation match into the same relevance sum so the
// combined score is re-normalized by the one division below, per spec.
func scoreCandidate(c candidateMeta, in scoreInputs) float64 {
	relevance := skillScore(c, in.query) + designationScore(c, in.query) +
		experienceScore(c, in.query) + mastercategoryScore(c, in.query, in.strictCategory) +
		in.designationBoost

	combined := 100*in.semanticScore + relevance
	normalized := combined / 200
	if normalized < 0 {
		normalized = 0
	}
	if normalized > 1 {
		normalized = 1
	}
	return normalized
}

func skillScore(c candidateMeta, q *core.ParsedQuery) float64 {
	candidateSkills := fields.NormalizeSkillList(c.Skills)
	has := make(map[string]bool, len(candidateSkills))
	for _, s := range candidateSkills {
		has[s] = true
	}

	var score float64
	if required := fields.NormalizeSkillList(q.MustHaveAll); len(required) > 0 {
		matched := 0
		for _, s := range required {
			if has[s] {
				matched++
			}
		}
		score += 40 * (float64(matched) / float64(len(required)))
	}

	var bestGroupScore float64
	for _, group := range q.MustHaveOneOfGroups {
		normalized := fields.NormalizeSkillList(group)
		if len(normalized) == 0 {
			continue
		}
		matched := 0
		for _, s := range normalized {
			if has[s] {
				matched++
			}
		}
		groupScore := 30 * (float64(matched) / float64(len(normalized)))
		if groupScore > bestGroupScore {
			bestGroupScore = groupScore
		}
	}
	score += bestGroupScore

	if isQAFlavored(q) {
		qaMatches := 0
		for _, kw := range []string{"selenium", "qa", "testing", "automation", "sdet"} {
			if has[kw] {
				qaMatches++
			}
		}
		score += 5 * float64(qaMatches)
	}

	return score
}

func isQAFlavored(q *core.ParsedQuery) bool {
	text := strings.ToLower(q.Designation + " " + q.TextForEmbedding)
	for _, kw := range []string{"qa", "quality assurance", "test", "sdet"} {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

func designationScore(c candidateMeta, q *core.ParsedQuery) float64 {
	if q.Designation == "" {
		return 0
	}
	qFamily, qOK := normalizeRole(q.Designation)
	cFamily, cOK := normalizeRole(c.Designation)
	if qOK && cOK {
		if qFamily == cFamily {
			return 50
		}
		if strings.Contains(cFamily, qFamily) || strings.Contains(qFamily, cFamily) {
			return 40
		}
	}

	qLower := strings.ToLower(q.Designation)
	dLower := strings.ToLower(c.Designation)
	rLower := strings.ToLower(c.JobRole)
	if strings.Contains(dLower, qLower) || strings.Contains(qLower, dLower) {
		return 25
	}
	if strings.Contains(rLower, qLower) {
		return 15
	}
	return -40
}

func experienceScore(c candidateMeta, q *core.ParsedQuery) float64 {
	if q.MinExperience == nil {
		return 0
	}
	min := *q.MinExperience
	years := c.ExperienceYrs
	diff := years - min

	switch {
	case q.MaxExperience != nil && years >= min && years <= *q.MaxExperience:
		return 5
	case diff >= 0 && diff <= 1:
		return 10
	case diff >= 0:
		return 8
	case diff >= -2:
		return 3
	case q.MaxExperience != nil && years > *q.MaxExperience:
		return -5
	default:
		return -15
	}
}

func mastercategoryScore(c candidateMeta, q *core.ParsedQuery, strict bool) float64 {
	if q.Mastercategory == nil {
		return 0
	}
	match := strings.EqualFold(c.Mastercategory, string(*q.Mastercategory))
	if strict {
		if match {
			return 0
		}
		return -100
	}
	if match {
		return 10
	}
	return -50
}

// fitTier applies §4.8's documented overrides before bucketing the
// normalized combined score.
func fitTier(c candidateMeta, q *core.ParsedQuery, normalized float64) core.FitTier {
	if q.Mastercategory != nil && !strings.EqualFold(c.Mastercategory, string(*q.Mastercategory)) {
		return core.FitLow
	}
	if isStudentDesignation(c.Designation) && !isStudentDesignation(q.Designation) {
		return core.FitLow
	}

	qFamily, qOK := normalizeRole(q.Designation)
	cFamily, cOK := normalizeRole(c.Designation)
	if qOK && cOK {
		if qFamily != cFamily {
			return core.FitLow
		}
		experienceSatisfied := q.MinExperience == nil || c.ExperienceYrs >= *q.MinExperience
		if experienceSatisfied {
			return core.FitPerfect
		}
		return core.FitGood
	}

	tier := core.TierForScore(normalized)
	if allMustHaveSkillsMatch(c, q) && roleKeywordOverlap(c.Designation, q.Designation) >= 0.3 {
		tier = promoteToAtLeastPartial(tier)
	}
	return tier
}

func isStudentDesignation(designation string) bool {
	lower := strings.ToLower(designation)
	for _, kw := range []string{"student", "intern", "trainee"} {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func allMustHaveSkillsMatch(c candidateMeta, q *core.ParsedQuery) bool {
	if len(q.MustHaveAll) == 0 {
		return false
	}
	has := make(map[string]bool)
	for _, s := range fields.NormalizeSkillList(c.Skills) {
		has[s] = true
	}
	for _, s := range fields.NormalizeSkillList(q.MustHaveAll) {
		if !has[s] {
			return false
		}
	}
	return true
}

func roleKeywordOverlap(a, b string) float64 {
	aTokens := strings.Fields(strings.ToLower(a))
	bTokens := strings.Fields(strings.ToLower(b))
	if len(aTokens) == 0 || len(bTokens) == 0 {
		return 0
	}
	bSet := make(map[string]bool, len(bTokens))
	for _, t := range bTokens {
		bSet[t] = true
	}
	matched := 0
	for _, t := range aTokens {
		if bSet[t] {
			matched++
		}
	}
	return float64(matched) / float64(len(aTokens))
}

func promoteToAtLeastPartial(tier core.FitTier) core.FitTier {
	switch tier {
	case core.FitLow:
		return core.FitPartial
	default:
		return tier
	}
}

// metadataInt safely reads an int-valued metadata field that may have
// arrived as a float64 (JSON-decoded) or a string.
func metadataInt(meta map[string]interface{}, key string) int {
	v, ok := meta[key]
	if !ok {
		return 0
	}
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	case string:
		if i, err := strconv.Atoi(n); err == nil {
			return i
		}
	}
	return 0
}

func metadataString(meta map[string]interface{}, key string) string {
	if v, ok := meta[key].(string); ok {
		return v
	}
	return ""
}

func metadataStringList(meta map[string]interface{}, key string) []string {
	switch v := meta[key].(type) {
	case []string:
		return v
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case string:
		return strings.Split(v, ",")
	default:
		return nil
	}
}

func candidateFromMatch(m vectorstore.Match) candidateMeta {
	return candidateMeta{
		ResumeID:       int64(metadataInt(m.Metadata, "resume_id")),
		CandidateName:  metadataString(m.Metadata, "candidate_name"),
		Designation:    metadataString(m.Metadata, "designation"),
		JobRole:        metadataString(m.Metadata, "jobrole"),
		Mastercategory: metadataString(m.Metadata, "mastercategory"),
		Category:       metadataString(m.Metadata, "category"),
		ExperienceYrs:  metadataInt(m.Metadata, "experience_years"),
		Skills:         metadataStringList(m.Metadata, "skills"),
		Location:       metadataString(m.Metadata, "location"),
	}
}
