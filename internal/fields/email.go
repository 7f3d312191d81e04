package fields

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"atsresume/internal/core"
)

const maxEmailFieldLength = 255

// forwardingMarkers anchor lines that belong to a forwarded email's header
// block rather than the candidate's own content.
var forwardingMarkers = []string{"From:", "Sent:", "To:", "Subject:", "Forwarded message"}

var emailPatterns = []*regexp.Regexp{
	regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`),
	regexp.MustCompile(`mailto:([A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,})`),
	regexp.MustCompile(`\[([A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,})\]`),
	regexp.MustCompile(`(?i)email\s*[:\-]?\s*([A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,})`),
}

// jobBoardProxyDomains are domains that forward to the real recruiter
// without disclosing the candidate's real address.
var jobBoardProxyDomains = []string{"naukri.com", "indeedemail.com", "linkedin.com", "glassdoor.com"}

func emailExtractor() Extractor {
	return Extractor{
		Name: "email",
		Prompt: func(resumeText string) string {
			return fmt.Sprintf(
				"List every email address that belongs to the candidate in this resume text "+
					"(ignore any recruiter or forwarding addresses). "+
					"Respond with {\"emails\": [\"...\"]}\n\n%s",
				excludeForwardingSection(resumeText),
			)
		},
		Parse: func(raw string) (string, bool) {
			var llmEmails []string
			if obj, ok := ExtractJSONObject(raw); ok {
				if list, ok := obj["emails"].([]interface{}); ok {
					for _, v := range list {
						if s, ok := v.(string); ok {
							llmEmails = append(llmEmails, s)
						}
					}
				}
			}
			// The LLM pass is additive, never authoritative, so a parse
			// "failure" here (no JSON at all) still lets the regex pass run.
			return strings.Join(llmEmails, ","), true
		},
		Commit: func(r *core.Resume, value string, resumeText string) {
			var llmAdditional []string
			if value != "" {
				llmAdditional = strings.Split(value, ",")
			}
			if email := ExtractEmails(resumeText, llmAdditional); email != "" {
				r.Email = &email
			}
		},
	}
}

// ExtractEmails is the regex+LLM-additive email extraction pipeline,
// exposed directly because the regex pass (not the LLM) is authoritative —
// it runs across four windows, then folds in any additional LLM-found
// addresses, deduplicates, and truncates to 255 chars.
func ExtractEmails(resumeText string, llmAdditional []string) string {
	cleaned := excludeForwardingSection(resumeText)

	windows := []string{
		cleaned,
		headWindow(cleaned, 3000),
		tailWindow(cleaned, 1500),
	}
	windows = append(windows, contextWindowsAroundAt(cleaned)...)

	found := map[string]bool{}
	for _, window := range windows {
		for _, pattern := range emailPatterns {
			for _, match := range pattern.FindAllStringSubmatch(window, -1) {
				candidate := match[len(match)-1]
				found[strings.ToLower(candidate)] = true
			}
		}
	}
	for _, e := range llmAdditional {
		if e != "" {
			found[strings.ToLower(strings.TrimSpace(e))] = true
		}
	}

	var real []string
	allProxy := len(found) > 0
	for e := range found {
		if isJobBoardProxy(e) {
			continue
		}
		allProxy = false
		real = append(real, e)
	}

	if len(found) > 0 && allProxy {
		return "masked_email"
	}

	sort.Strings(real)
	joined := strings.Join(real, ",")
	if len(joined) > maxEmailFieldLength {
		joined = joined[:maxEmailFieldLength]
	}
	return joined
}

func excludeForwardingSection(text string) string {
	lines := strings.Split(text, "\n")
	var kept []string
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		isForwardingLine := false
		for _, marker := range forwardingMarkers {
			if strings.HasPrefix(trimmed, marker) {
				isForwardingLine = true
				break
			}
		}
		if !isForwardingLine {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}

func headWindow(text string, n int) string {
	if len(text) <= n {
		return text
	}
	return text[:n]
}

func tailWindow(text string, n int) string {
	if len(text) <= n {
		return text
	}
	return text[len(text)-n:]
}

func contextWindowsAroundAt(text string) []string {
	var windows []string
	for i, r := range text {
		if r != '@' {
			continue
		}
		start := i - 40
		if start < 0 {
			start = 0
		}
		end := i + 40
		if end > len(text) {
			end = len(text)
		}
		windows = append(windows, text[start:end])
	}
	return windows
}

func isJobBoardProxy(email string) bool {
	for _, domain := range jobBoardProxyDomains {
		if strings.HasSuffix(email, "@"+domain) {
			return true
		}
	}
	return false
}
