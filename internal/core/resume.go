// Package core holds the domain types shared across the ingestion and
// search pipelines.
package core

import (
	"strings"
	"time"
)

// Mastercategory is the top-level partition of a resume.
type Mastercategory string

const (
	MastercategoryIT    Mastercategory = "IT"
	MastercategoryNonIT Mastercategory = "NON_IT"
)

// Status values for Resume.Status. Failure states carry a ":<reason>"
// suffix handled by ParseStatus / FailedStatus.
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// Enumerated failure reasons, always used as the suffix of a
// "failed:<reason>" status string.
const (
	ReasonFileTooLarge               = "file_too_large"
	ReasonInvalidFileType            = "invalid_file_type"
	ReasonEmptyFile                  = "empty_file"
	ReasonInsufficientText           = "insufficient_text"
	ReasonExtractionError            = "extraction_error"
	ReasonDesignationExtractionError = "designation_extraction_failed"
	ReasonDatabaseError              = "database_error"
	ReasonUnknownError               = "unknown_error"
)

// FailedStatus builds the "failed:<reason>" status string.
func FailedStatus(reason string) string {
	return StatusFailed + ":" + reason
}

// ParseStatus splits a status string into its base and, for failures, the
// reason. Splitting happens on the first colon only.
func ParseStatus(status string) (base string, reason string, hasReason bool) {
	base, reason, hasReason = strings.Cut(status, ":")
	return base, reason, hasReason
}

// Retryable reports whether a status may be retried through the
// retry-with-OCR entry point. Only failed:insufficient_text qualifies.
func Retryable(status string) bool {
	base, reason, ok := ParseStatus(status)
	return base == StatusFailed && ok && reason == ReasonInsufficientText
}

// Resume is the persisted record for one ingested candidate file.
//
// filename is the natural key for idempotent re-ingestion: a second
// ingestion of the same filename updates this record in place rather than
// creating a new one.
type Resume struct {
	ID             int64
	Mastercategory *Mastercategory
	Category       *string
	CandidateName  *string
	JobRole        *string
	Designation    *string
	Experience     *string
	Domain         *string
	Mobile         *string
	Email          *string
	Location       *string
	Education      *string
	Filename       string
	Skillset       *string
	Status         string
	ResumeText     *string
	PineconeStatus int
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// ExperienceYears parses the free-form Experience field ("5 years") into an
// integer, when present and well-formed.
func (r *Resume) ExperienceYears() (int, bool) {
	if r.Experience == nil {
		return 0, false
	}
	return parseLeadingInt(*r.Experience)
}

func parseLeadingInt(s string) (int, bool) {
	s = strings.TrimSpace(s)
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0, false
	}
	n := 0
	for i := 0; i < end; i++ {
		n = n*10 + int(s[i]-'0')
	}
	return n, true
}
