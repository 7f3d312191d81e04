package core

import "time"

// SearchQuery is the append-only audit record of a recruiter query.
type SearchQuery struct {
	ID        int64
	QueryText string
	UserID    *string
	CreatedAt time.Time
}

// SearchResult is the snapshot of ranked candidates produced for a
// SearchQuery, stored as opaque JSON alongside the query id it belongs to.
// Deleting the parent SearchQuery cascades the deletion of this record.
type SearchResult struct {
	ID            int64
	SearchQueryID int64
	ResultsJSON   string
	CreatedAt     time.Time
}

// SearchType is the outcome of query-intent parsing.
type SearchType string

const (
	SearchTypeSemantic SearchType = "semantic"
	SearchTypeName     SearchType = "name"
	SearchTypeHybrid   SearchType = "hybrid"
)

// FitTier is the human-facing bucket assigned to a ranked candidate.
type FitTier string

const (
	FitPerfect FitTier = "Perfect"
	FitGood    FitTier = "Good"
	FitPartial FitTier = "Partial"
	FitLow     FitTier = "Low"
)

// TierForScore maps a normalized combined score in [0,1] to its base tier,
// before any documented override is applied.
func TierForScore(score float64) FitTier {
	switch {
	case score >= 0.85:
		return FitPerfect
	case score >= 0.70:
		return FitGood
	case score >= 0.50:
		return FitPartial
	default:
		return FitLow
	}
}

// ParsedQuery is the structured intent produced by the Query Parser (§4.7).
type ParsedQuery struct {
	SearchType          SearchType
	TextForEmbedding    string
	Designation         string
	MustHaveAll         []string
	MustHaveOneOfGroups [][]string
	MinExperience       *int
	MaxExperience       *int
	Location            string
	CandidateName       string
	Mastercategory       *Mastercategory
	Category             *string
}

// RankedResult is one scored candidate in a search response.
type RankedResult struct {
	ResumeID       int64   `json:"resume_id"`
	CandidateName  string  `json:"candidate_name"`
	Score          float64 `json:"score"`
	FitTier        FitTier `json:"fit_tier"`
	Designation    string  `json:"designation,omitempty"`
	Mastercategory string  `json:"mastercategory,omitempty"`
	Category       string  `json:"category,omitempty"`
}
