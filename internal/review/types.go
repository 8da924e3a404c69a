package review

// Severity represents the severity level of an issue.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// SeverityRank returns a numeric rank for sorting (higher = more severe).
func SeverityRank(s Severity) int {
	switch s {
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	default:
		return 0
	}
}

// Issue is a single problem the model found in a file.
type Issue struct {
	Type         string   `json:"type"`
	Description  string   `json:"description"`
	Severity     Severity `json:"severity"`
	SuggestedFix string   `json:"suggestedFix"`
}

// FileReview is the structured critique of one file.
type FileReview struct {
	FileName        string  `json:"fileName"`
	IsGoodQuality   bool    `json:"isGoodQuality"`
	Issues          []Issue `json:"issues"`
	OverallRating   float64 `json:"overallRating"`
	ReasonForRating string  `json:"reasonForRating"`
}

// StatusSuccess is the only status a completed batch carries.
const StatusSuccess = "success"

// Batch is the result of reviewing one repository. Data holds the successful
// reviews in selection iteration order.
type Batch struct {
	Status string       `json:"status"`
	Data   []FileReview `json:"data"`
}

// Stats counts what happened during the review stage.
type Stats struct {
	Attempted int `json:"attempted"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
}
