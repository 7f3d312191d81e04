package fields

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"atsresume/internal/core"
)

const experienceCacheTTL = 24 * time.Hour

type cachedExperience struct {
	years     int
	expiresAt time.Time
}

var (
	experienceCacheMu sync.RWMutex
	experienceCache   = map[string]cachedExperience{}
)

// explicitExperiencePattern matches the statements stage 1 looks for:
// "5 years of experience", "over 7 years", "3+ years", "4 and half years"
// (half-years truncated, not rounded). Stage 1 applies it to the whole
// resume text, not only a summary window, and takes the first match.
var explicitExperiencePattern = regexp.MustCompile(
	`(?i)(?:over\s+)?(\d{1,2})\s*(?:\+|\s+and\s+half)?\s*(?:years?|yrs?)\s*(?:of\s+)?(?:experience|exp)?`,
)

// employmentDateRangePattern extracts "Jan 2019 - Mar 2021" / "2019-2021" /
// "2019 to present" style ranges. Stage 3 only accepts a match if it falls
// within an employment-looking context (see isEmploymentContext).
var employmentDateRangePattern = regexp.MustCompile(
	`(?i)(\w{3,9}\.?\s+\d{4}|\d{4})\s*(?:-|to|–|—)\s*(\w{3,9}\.?\s+\d{4}|\d{4}|present|current|till\s+date|ongoing|now)`,
)

var presentSynonyms = map[string]bool{
	"present": true, "current": true, "till date": true, "ongoing": true,
	"now": true, "working": true, "still date": true,
}

var employmentKeywords = []string{
	"experience", "worked", "employed", "employer", "company", "organization",
	"role", "position", "responsibilities", "project", "client",
}

var educationKeywords = []string{
	"university", "college", "school", "degree", "b.tech", "m.tech", "bachelor",
	"master", "graduation", "gpa", "cgpa", "semester",
}

var fresherMarkers = []string{
	"fresher", "recent graduate", "no experience", "entry level", "entry-level",
	"0 years of experience", "seeking my first",
}

func experienceExtractor() Extractor {
	return Extractor{
		Name: "experience",
		Prompt: func(resumeText string) string {
			return fmt.Sprintf(
				"Extract the candidate's total years of professional work experience from this resume. "+
					"Either state it directly (e.g. \"5 years\") or compute it from employment date ranges, "+
					"treating any of present/current/till date/ongoing/now/still working as the current date. "+
					"Two-digit years refer to the nearest sensible calendar year. "+
					"Respond with {\"experience\": \"<N years, or empty string if unknown>\"}\n\n%s",
				resumeText,
			)
		},
		Parse:  parseSingleField("experience"),
		Commit: commitExperience,
	}
}

func commitExperience(r *core.Resume, llmValue string, resumeText string) {
	key := experienceCacheKey(resumeText)
	if years, ok := lookupExperienceCache(key); ok {
		setExperienceYears(r, years)
		return
	}

	years, ok := computeExperience(llmValue, resumeText)
	if !ok {
		return
	}
	storeExperienceCache(key, years)
	setExperienceYears(r, years)
}

func setExperienceYears(r *core.Resume, years int) {
	val := fmt.Sprintf("%d years", years)
	if years == 1 {
		val = "1 year"
	}
	r.Experience = &val
}

// computeExperience runs the five-stage pipeline in order, returning the
// first stage that produces a usable year count.
func computeExperience(llmValue string, resumeText string) (int, bool) {
	if years, ok := explicitStatementYears(resumeText); ok {
		return years, true
	}
	if years, ok := llmExperienceYears(llmValue); ok {
		return years, true
	}
	if months, ok := regexEmploymentMonths(resumeText); ok {
		return monthsToYears(months), true
	}
	if isFresher(resumeText) {
		return 0, true
	}
	if years, ok := fallbackRegexYears(resumeText); ok {
		return years, true
	}
	return 0, false
}

// explicitStatementYears is stage 1: a direct textual statement like "5
// years of experience". Half-year statements are truncated, not rounded.
func explicitStatementYears(text string) (int, bool) {
	match := explicitExperiencePattern.FindStringSubmatch(text)
	if match == nil {
		return 0, false
	}
	n, err := strconv.Atoi(match[1])
	if err != nil {
		return 0, false
	}
	return clampYears(n), true
}

// llmExperienceYears is stage 2: parse whatever the LLM returned, whether
// it's a direct "N years" summary or already-computed from date ranges on
// its end.
func llmExperienceYears(value string) (int, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false
	}
	match := regexp.MustCompile(`(\d{1,2})`).FindStringSubmatch(value)
	if match == nil {
		return 0, false
	}
	n, err := strconv.Atoi(match[1])
	if err != nil {
		return 0, false
	}
	return clampYears(n), true
}

// regexEmploymentMonths is stage 3: pure regex date-range extraction,
// restricted to windows that look like employment (not education)
// context. Overlapping ranges are merged before summing months.
func regexEmploymentMonths(text string) (int, bool) {
	lines := strings.Split(text, "\n")
	var ranges [][2]int
	for i, line := range lines {
		if !isEmploymentContext(lines, i) {
			continue
		}
		for _, match := range employmentDateRangePattern.FindAllStringSubmatch(line, -1) {
			start, ok1 := parseRangeYear(match[1])
			end, ok2 := parseRangeMonth(match[2])
			if !ok1 || !ok2 {
				continue
			}
			if end < start {
				continue
			}
			ranges = append(ranges, [2]int{start, end})
		}
	}
	if len(ranges) == 0 {
		return 0, false
	}
	return mergeRangeMonths(ranges), true
}

func isEmploymentContext(lines []string, idx int) bool {
	windowStart := idx - 2
	if windowStart < 0 {
		windowStart = 0
	}
	windowEnd := idx + 2
	if windowEnd >= len(lines) {
		windowEnd = len(lines) - 1
	}
	window := strings.ToLower(strings.Join(lines[windowStart:windowEnd+1], " "))
	for _, kw := range educationKeywords {
		if strings.Contains(window, kw) {
			return false
		}
	}
	for _, kw := range employmentKeywords {
		if strings.Contains(window, kw) {
			return true
		}
	}
	return false
}

func parseRangeYear(token string) (int, bool) {
	years := regexp.MustCompile(`\d{4}`).FindString(token)
	if years == "" {
		return 0, false
	}
	y, err := strconv.Atoi(years)
	if err != nil {
		return 0, false
	}
	return y * 12, true
}

func parseRangeMonth(token string) (int, bool) {
	lower := strings.ToLower(strings.TrimSpace(token))
	if presentSynonyms[lower] {
		return time.Now().Year() * 12, true
	}
	return parseRangeYear(token)
}

// mergeRangeMonths sorts ranges by start and merges overlaps before
// summing each segment's month span.
func mergeRangeMonths(ranges [][2]int) int {
	sort.Slice(ranges, func(i, j int) bool { return ranges[i][0] < ranges[j][0] })
	merged := [][2]int{ranges[0]}
	for _, r := range ranges[1:] {
		last := &merged[len(merged)-1]
		if r[0] <= last[1] {
			if r[1] > last[1] {
				last[1] = r[1]
			}
			continue
		}
		merged = append(merged, r)
	}
	total := 0
	for _, r := range merged {
		total += r[1] - r[0]
	}
	return total
}

func isFresher(text string) bool {
	lower := strings.ToLower(text)
	for _, marker := range fresherMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// fallbackRegexYears is stage 5: a last-resort bare "N years" scan across
// the whole text, unscoped by context.
func fallbackRegexYears(text string) (int, bool) {
	match := regexp.MustCompile(`(?i)(\d{1,2})\s*(?:years?|yrs?)`).FindStringSubmatch(text)
	if match == nil {
		return 0, false
	}
	n, err := strconv.Atoi(match[1])
	if err != nil {
		return 0, false
	}
	return clampYears(n), true
}

// monthsToYears applies the spec's rounding rule: years = months/12,
// incremented if the remainder is >=6; a sub-year total of >=3 months
// rounds up to 1 year; clamp to [0,50].
func monthsToYears(months int) int {
	if months < 12 {
		if months >= 3 {
			return 1
		}
		return 0
	}
	years := months / 12
	if months%12 >= 6 {
		years++
	}
	return clampYears(years)
}

func clampYears(n int) int {
	if n < 0 {
		return 0
	}
	if n > 50 {
		return 50
	}
	return n
}

func experienceCacheKey(resumeText string) string {
	n := len(resumeText)
	if n > 5000 {
		n = 5000
	}
	sum := sha256.Sum256([]byte(resumeText[:n]))
	return hex.EncodeToString(sum[:])
}

func lookupExperienceCache(key string) (int, bool) {
	experienceCacheMu.RLock()
	defer experienceCacheMu.RUnlock()
	entry, ok := experienceCache[key]
	if !ok || time.Now().After(entry.expiresAt) {
		return 0, false
	}
	return entry.years, true
}

func storeExperienceCache(key string, years int) {
	experienceCacheMu.Lock()
	defer experienceCacheMu.Unlock()
	experienceCache[key] = cachedExperience{years: years, expiresAt: time.Now().Add(experienceCacheTTL)}
}
