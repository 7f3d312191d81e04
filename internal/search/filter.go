// Package search implements the Search Engine (§4.8): name/explicit/
// broad-mode query paths, rule-based + semantic scoring, the designation
// matcher, and filter compilation into the vector store's metadata algebra.
package search

import (
	"strings"

	"atsresume/internal/core"
	"atsresume/internal/fields"
	"atsresume/internal/vectorstore"
)

// locationAliases maps common shorthand to the normalized form stored in
// vector metadata.
var locationAliases = map[string]string{
	"nyc":       "new york",
	"sf":        "san francisco",
	"blr":       "bangalore",
	"bengaluru": "bangalore",
}

// CompileFilter builds the vector-DB metadata filter from a parsed query,
// per §4.9: must_have_all and must_have_one_of_groups compose skill $in
// clauses (one per required skill, since the backend lacks native set
// inclusion), experience bounds compose under $and, location is
// normalized and exact-matched. Designations are never pushed here — they
// are scored post-retrieval to preserve recall.
func CompileFilter(q *core.ParsedQuery) vectorstore.Filter {
	var clauses []map[string]interface{}

	for _, skill := range fields.NormalizeSkillList(q.MustHaveAll) {
		clauses = append(clauses, map[string]interface{}{
			"skills": map[string]interface{}{"$in": []string{skill}},
		})
	}

	if len(q.MustHaveOneOfGroups) > 0 {
		var orGroups []map[string]interface{}
		for _, group := range q.MustHaveOneOfGroups {
			normalized := fields.NormalizeSkillList(group)
			if len(normalized) == 0 {
				continue
			}
			if len(normalized) == 1 {
				orGroups = append(orGroups, map[string]interface{}{
					"skills": map[string]interface{}{"$in": []string{normalized[0]}},
				})
				continue
			}
			var andClauses []map[string]interface{}
			for _, skill := range normalized {
				andClauses = append(andClauses, map[string]interface{}{
					"skills": map[string]interface{}{"$in": []string{skill}},
				})
			}
			orGroups = append(orGroups, map[string]interface{}{"$and": andClauses})
		}
		if len(orGroups) == 1 {
			clauses = append(clauses, orGroups[0])
		} else if len(orGroups) > 1 {
			clauses = append(clauses, map[string]interface{}{"$or": orGroups})
		}
	}

	if q.MinExperience != nil {
		clauses = append(clauses, map[string]interface{}{
			"experience_years": map[string]interface{}{"$gte": *q.MinExperience},
		})
	}
	if q.MaxExperience != nil {
		clauses = append(clauses, map[string]interface{}{
			"experience_years": map[string]interface{}{"$lte": *q.MaxExperience},
		})
	}

	if loc := normalizeLocation(q.Location); loc != "" {
		clauses = append(clauses, map[string]interface{}{
			"location": map[string]interface{}{"$eq": loc},
		})
	}

	return combineFilterClauses(clauses)
}

func combineFilterClauses(clauses []map[string]interface{}) vectorstore.Filter {
	switch len(clauses) {
	case 0:
		return nil
	case 1:
		return vectorstore.Filter(clauses[0])
	default:
		return vectorstore.Filter{"$and": clauses}
	}
}

func normalizeLocation(loc string) string {
	normalized := strings.ToLower(strings.TrimSpace(loc))
	if normalized == "" {
		return ""
	}
	if alias, ok := locationAliases[normalized]; ok {
		return alias
	}
	return normalized
}
