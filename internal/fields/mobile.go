package fields

import (
	"fmt"
	"regexp"
	"strings"

	"atsresume/internal/core"
)

// headerMobilePattern matches phone numbers sitting right after a labeled
// header line (Mobile:, Phone:, Contact:, Cell:) — the highest-confidence
// source, tried before a blind full-text scan.
var headerMobilePattern = regexp.MustCompile(`(?i)(?:mobile|phone|contact|cell|tel)\s*(?:no\.?|number)?\s*[:\-]?\s*(\+?[0-9][0-9\-.\s()]{7,}[0-9])`)

var fullTextMobilePattern = regexp.MustCompile(`(?:\+?91[\-\s]?)?[6-9][0-9]{9}|\+?[0-9][0-9\-.\s()]{8,}[0-9]`)

var nonDigit = regexp.MustCompile(`[^0-9]`)

func mobileExtractor() Extractor {
	return Extractor{
		Name: "mobile",
		Prompt: func(resumeText string) string {
			return fmt.Sprintf(
				"Extract the candidate's mobile/phone number from this resume text. "+
					"Respond with {\"mobile\": \"<digits only, or empty string>\"}\n\n%s",
				resumeText,
			)
		},
		Parse:  parseSingleField("mobile"),
		Commit: commitMobile,
	}
}

func commitMobile(r *core.Resume, llmValue string, resumeText string) {
	if m, ok := findHeaderMobile(resumeText); ok {
		r.Mobile = &m
		return
	}
	if m, ok := findFullTextMobile(resumeText); ok {
		r.Mobile = &m
		return
	}
	if m, ok := normalizeMobile(llmValue); ok {
		r.Mobile = &m
		return
	}
	if m, ok := jointFallbackMobile(resumeText); ok {
		r.Mobile = &m
	}
}

func findHeaderMobile(text string) (string, bool) {
	if match := headerMobilePattern.FindStringSubmatch(text); match != nil {
		return normalizeMobile(match[1])
	}
	return "", false
}

func findFullTextMobile(text string) (string, bool) {
	if match := fullTextMobilePattern.FindString(text); match != "" {
		return normalizeMobile(match)
	}
	return "", false
}

// jointFallbackMobile is the last resort: strip every non-alphanumeric
// symbol from the text (collapsing things like "9-8-7-6 5 4 3 2 1 0" or
// spaced-out digits meant to dodge scrapers) and scan again.
func jointFallbackMobile(text string) (string, bool) {
	stripped := stripSymbols(text)
	if match := fullTextMobilePattern.FindString(stripped); match != "" {
		return normalizeMobile(match)
	}
	return "", false
}

func stripSymbols(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if (r >= '0' && r <= '9') || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r == '+' {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}
	return b.String()
}

// normalizeMobile collapses a raw match down to 10 digits: an 11-digit
// number with a leading "1" has the 1 stripped, a 12-digit number with a
// leading country code "91" has the 91 stripped; anything else that isn't
// exactly 10 digits after stripping is rejected.
func normalizeMobile(raw string) (string, bool) {
	digits := nonDigit.ReplaceAllString(raw, "")
	switch {
	case len(digits) == 10:
		return digits, true
	case len(digits) == 11 && digits[0] == '1':
		return digits[1:], true
	case len(digits) == 12 && strings.HasPrefix(digits, "91"):
		return digits[2:], true
	default:
		return "", false
	}
}
