package fields

import (
	"fmt"
	"strings"

	"atsresume/internal/core"
)

func skillsExtractor() Extractor {
	return Extractor{
		Name: "skillset",
		Prompt: func(resumeText string) string {
			return fmt.Sprintf(
				"List every distinct technical or professional skill the candidate has, as a flat JSON array of "+
					"short strings (tool names, languages, frameworks, methodologies). "+
					"Respond with {\"skills\": [\"...\"]}\n\n%s",
				resumeText,
			)
		},
		Parse: func(raw string) (string, bool) {
			obj, ok := ExtractJSONObject(raw)
			if !ok {
				return "", false
			}
			list, ok := obj["skills"].([]interface{})
			if !ok {
				return "", false
			}
			var skills []string
			for _, v := range list {
				if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
					skills = append(skills, s)
				}
			}
			return strings.Join(skills, ","), true
		},
		Commit: func(r *core.Resume, value string, _ string) {
			if value == "" {
				return
			}
			canonical := NormalizeSkillList(strings.Split(value, ","))
			if len(canonical) == 0 {
				return
			}
			joined := strings.Join(canonical, ",")
			r.Skillset = &joined
		},
	}
}
