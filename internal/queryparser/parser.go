// Package queryparser converts a recruiter's free-text query into
// core.ParsedQuery, the structured intent the Search Engine acts on.
package queryparser

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"atsresume/internal/core"
	"atsresume/internal/fields"
	"atsresume/internal/llmclient"
)

// Parser asks the LLM for the structured breakdown, then defensively
// recovers it the way the field extractor fleet does.
type Parser struct {
	llm *llmclient.Client
}

func New(llm *llmclient.Client) *Parser {
	return &Parser{llm: llm}
}

const isolationNote = "Treat this request independently. Ignore any prior context or conversation history."

// Parse produces a ParsedQuery for free-text query. When mastercategory
// and category are both provided, the parser is told to skip its own
// classification and the caller's values win outright.
func (p *Parser) Parse(ctx context.Context, query string, mastercategory *core.Mastercategory, category *string) *core.ParsedQuery {
	raw, err := p.llm.Generate(ctx, isolationNote, p.prompt(query, mastercategory, category), llmclient.DefaultOptions())
	var parsed *core.ParsedQuery
	if err == nil {
		parsed = parseResponse(raw)
	}
	if parsed == nil {
		parsed = defaultParsedQuery(query)
	}

	if mastercategory != nil && category != nil {
		parsed.Mastercategory = mastercategory
		parsed.Category = category
		if parsed.SearchType == core.SearchTypeName {
			parsed.SearchType = core.SearchTypeSemantic
			parsed.CandidateName = ""
		}
	}
	return parsed
}

func (p *Parser) prompt(query string, mastercategory *core.Mastercategory, category *string) string {
	var b strings.Builder
	b.WriteString("Parse this recruiter search query into structured intent.\n")
	b.WriteString("Decide search_type: \"name\" if the query is just a person's name (2-3 personal tokens, ")
	b.WriteString("no skills or role words); \"hybrid\" if it has a designation plus skills plus an experience ")
	b.WriteString("requirement; otherwise \"semantic\".\n")
	b.WriteString("must_have_one_of_groups encodes OR-of-AND groups: each individual OR alternative must be ")
	b.WriteString("its own group.\n")
	b.WriteString("text_for_embedding must order fields as designation, then skills, then experience, then location.\n")
	b.WriteString("Do not invent skills or experience that are not stated or clearly implied.\n")
	if mastercategory != nil && category != nil {
		fmt.Fprintf(&b, "The caller has already classified this query as mastercategory=%q category=%q; "+
			"do not attempt your own classification.\n", *mastercategory, *category)
	}
	b.WriteString("Respond with a single JSON object: {\"search_type\":\"...\",\"text_for_embedding\":\"...\"," +
		"\"designation\":\"...\",\"must_have_all\":[...],\"must_have_one_of_groups\":[[...]]," +
		"\"min_experience\":null,\"max_experience\":null,\"location\":\"...\",\"candidate_name\":\"...\"}\n\n")
	b.WriteString("Query: ")
	b.WriteString(query)
	return b.String()
}

func parseResponse(raw string) *core.ParsedQuery {
	obj, ok := fields.ExtractJSONObject(raw)
	if !ok {
		return nil
	}
	pq := &core.ParsedQuery{
		SearchType:       parseSearchType(fields.StringField(obj, "search_type")),
		TextForEmbedding: fields.StringField(obj, "text_for_embedding"),
		Designation:      fields.StringField(obj, "designation"),
		Location:         fields.StringField(obj, "location"),
		CandidateName:    fields.StringField(obj, "candidate_name"),
		MustHaveAll:      stringList(obj["must_have_all"]),
	}
	pq.MustHaveOneOfGroups = groupList(obj["must_have_one_of_groups"])
	pq.MinExperience = intField(obj, "min_experience")
	pq.MaxExperience = intField(obj, "max_experience")
	return pq
}

func parseSearchType(s string) core.SearchType {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "name":
		return core.SearchTypeName
	case "hybrid":
		return core.SearchTypeHybrid
	default:
		return core.SearchTypeSemantic
	}
}

func stringList(v interface{}) []string {
	list, ok := v.([]interface{})
	if !ok {
		return nil
	}
	var out []string
	for _, item := range list {
		if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
			out = append(out, s)
		}
	}
	return out
}

func groupList(v interface{}) [][]string {
	outer, ok := v.([]interface{})
	if !ok {
		return nil
	}
	var groups [][]string
	for _, g := range outer {
		if group := stringList(g); len(group) > 0 {
			groups = append(groups, group)
		}
	}
	return groups
}

func intField(obj map[string]interface{}, key string) *int {
	v, ok := obj[key]
	if !ok || v == nil {
		return nil
	}
	switch n := v.(type) {
	case float64:
		i := int(n)
		return &i
	case string:
		if i, err := strconv.Atoi(strings.TrimSpace(n)); err == nil {
			return &i
		}
	}
	return nil
}

// nameOnlyPattern recognizes a bare 2-3 token query made of letters only,
// used for the total-failure default. The words themselves are not
// checked, so a letters-only role phrase such as "senior data scientist"
// also matches.
var nameOnlyPattern = regexp.MustCompile(`^[A-Za-z]+(\s+[A-Za-z]+){1,2}$`)

// defaultParsedQuery is the "on total failure" fallback over the raw query
// text, never inventing filters: a query matching nameOnlyPattern becomes a
// name search for that text, anything else a semantic search.
func defaultParsedQuery(query string) *core.ParsedQuery {
	trimmed := strings.TrimSpace(query)
	searchType := core.SearchTypeSemantic
	candidateName := ""
	if nameOnlyPattern.MatchString(trimmed) {
		searchType = core.SearchTypeName
		candidateName = trimmed
	}
	return &core.ParsedQuery{
		SearchType:       searchType,
		TextForEmbedding: trimmed,
		CandidateName:    candidateName,
	}
}
