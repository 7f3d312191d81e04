package fields

import (
	"fmt"

	"atsresume/internal/core"
)

// simplePrompt builds the uniform "extract one field as JSON" prompt shape
// shared by the four extractors that carry no extra behavioral subtlety.
func simplePrompt(field, instruction string) func(string) string {
	return func(resumeText string) string {
		return fmt.Sprintf(
			"Extract the candidate's %s from this resume text. %s\n"+
				"Respond with a single JSON object: {\"%s\": \"<value or empty string>\"}\n\n%s",
			field, instruction, field, resumeText,
		)
	}
}

func parseSingleField(key string) func(string) (string, bool) {
	return func(raw string) (string, bool) {
		if obj, ok := ExtractJSONObject(raw); ok {
			return StringField(obj, key), true
		}
		if val, ok := RecoverStringKey(raw, key); ok {
			return val, true
		}
		return "", false
	}
}

func nameExtractor() Extractor {
	return Extractor{
		Name:   "candidate_name",
		Prompt: simplePrompt("full name", "Return just the person's name, no titles."),
		Parse:  parseSingleField("candidate_name"),
		Commit: func(r *core.Resume, v string, _ string) {
			if v != "" {
				r.CandidateName = &v
			}
		},
	}
}

func designationExtractor() Extractor {
	return Extractor{
		Name:   "designation",
		Prompt: simplePrompt("most recent job title / designation", "Use the title as written in the resume."),
		Parse:  parseSingleField("designation"),
		Commit: func(r *core.Resume, v string, _ string) {
			if v != "" {
				r.Designation = &v
			}
		},
	}
}

func roleExtractor() Extractor {
	return Extractor{
		Name:   "job_role",
		Prompt: simplePrompt("primary functional role", "A short phrase like 'backend developer' or 'business analyst'."),
		Parse:  parseSingleField("job_role"),
		Commit: func(r *core.Resume, v string, _ string) {
			if v != "" {
				r.JobRole = &v
			}
		},
	}
}

func domainExtractor() Extractor {
	return Extractor{
		Name:   "domain",
		Prompt: simplePrompt("industry domain", "A short phrase like 'banking' or 'healthcare'; empty string if unclear."),
		Parse:  parseSingleField("domain"),
		Commit: func(r *core.Resume, v string, _ string) {
			if v != "" {
				r.Domain = &v
			}
		},
	}
}

func educationExtractor() Extractor {
	return Extractor{
		Name:   "education",
		Prompt: simplePrompt("highest education qualification", "A short phrase like 'B.Tech Computer Science'."),
		Parse:  parseSingleField("education"),
		Commit: func(r *core.Resume, v string, _ string) {
			if v != "" {
				r.Education = &v
			}
		},
	}
}
