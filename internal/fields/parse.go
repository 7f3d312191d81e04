// Package fields implements the nine field extractors, run through a
// shared session-isolated harness with defensive JSON parsing.
package fields

import (
	"encoding/json"
	"regexp"
	"strings"
)

var codeFence = regexp.MustCompile("```(?:json)?")

// ExtractJSONObject recovers a JSON object from LLM output that may be
// wrapped in code fences or preceded/followed by prose: strip fences,
// locate the first `{`, walk braces to find the matching `}`, and
// unmarshal that slice. Returns ok=false if no balanced object is found.
func ExtractJSONObject(text string) (map[string]interface{}, bool) {
	cleaned := codeFence.ReplaceAllString(text, "")
	start := strings.Index(cleaned, "{")
	if start < 0 {
		return nil, false
	}

	depth := 0
	end := -1
	for i := start; i < len(cleaned); i++ {
		switch cleaned[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				end = i
			}
		}
		if end != -1 {
			break
		}
	}
	if end == -1 {
		return nil, false
	}

	var result map[string]interface{}
	if err := json.Unmarshal([]byte(cleaned[start:end+1]), &result); err != nil {
		return nil, false
	}
	return result, true
}

// StringField reads obj[key] as a trimmed string, returning "" if the key
// is absent or not a string.
func StringField(obj map[string]interface{}, key string) string {
	v, ok := obj[key].(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(v)
}

// keyRecoveryPattern builds a regex that recovers "key": "value" even when
// the surrounding JSON is malformed, for the regex-recovery parse tier.
func keyRecoveryPattern(key string) *regexp.Regexp {
	return regexp.MustCompile(`"` + regexp.QuoteMeta(key) + `"\s*:\s*"([^"]*)"`)
}

// RecoverStringKey regex-recovers a single string value for key from raw
// text when ExtractJSONObject fails entirely.
func RecoverStringKey(text, key string) (string, bool) {
	m := keyRecoveryPattern(key).FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return strings.TrimSpace(m[1]), true
}
