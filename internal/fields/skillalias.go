package fields

import "strings"

// skillAliases canonicalizes known skill-name variants onto one spelling,
// shared between the skills extractor and the Search Engine's filter
// compiler and scorer — one table, multiple consumers.
var skillAliases = map[string]string{
	"react.js":    "react",
	"reactjs":     "react",
	"react js":    "react",
	"angularjs":   "angular",
	"angular.js":  "angular",
	"angular js":  "angular",
	"vue.js":      "vue",
	"vuejs":       "vue",
	"node.js":     "node",
	"nodejs":      "node",
	"node js":     "node",
	"java 8":      "java",
	"java8":       "java",
	"java 11":     "java",
	"java 17":     "java",
	"c#":          "csharp",
	"c-sharp":     "csharp",
	".net":        "dotnet",
	"dot net":     "dotnet",
	"asp.net":     "aspnet",
	"postgres":    "postgresql",
	"postgre":     "postgresql",
	"mongo":       "mongodb",
	"k8s":         "kubernetes",
	"tf":          "terraform",
	"py":          "python",
	"golang":      "go",
	"ml":          "machine learning",
	"ai":          "artificial intelligence",
	"js":          "javascript",
	"ts":          "typescript",
}

// NormalizeSkill canonicalizes a single skill string: trim, lowercase, map
// through the alias table if present.
func NormalizeSkill(skill string) string {
	key := strings.ToLower(strings.TrimSpace(skill))
	if canonical, ok := skillAliases[key]; ok {
		return canonical
	}
	return key
}

// NormalizeSkillList canonicalizes a list of skills, deduplicating while
// preserving first-seen order.
func NormalizeSkillList(skills []string) []string {
	seen := make(map[string]bool, len(skills))
	result := make([]string, 0, len(skills))
	for _, s := range skills {
		norm := NormalizeSkill(s)
		if norm == "" || seen[norm] {
			continue
		}
		seen[norm] = true
		result = append(result, norm)
	}
	return result
}
