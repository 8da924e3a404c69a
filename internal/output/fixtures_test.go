package output

import (
	"time"

	"github.com/dshills/repolens/internal/review"
)

func sampleReport() *Report {
	return &Report{
		Repo: "octo/cat",
		Batch: &review.Batch{
			Status: review.StatusSuccess,
			Data: []review.FileReview{
				{
					FileName:      "src/a.ts",
					IsGoodQuality: false,
					Issues: []review.Issue{
						{Type: "style", Description: "Prefer const over let", Severity: review.SeverityLow, SuggestedFix: "const a = 1;"},
						{Type: "security", Description: "User input reaches eval", Severity: review.SeverityHigh, SuggestedFix: "Parse the input instead of evaluating it"},
					},
					OverallRating:   4,
					ReasonForRating: "Works but unsafe",
				},
				{
					FileName:        "src/b.ts",
					IsGoodQuality:   true,
					Issues:          []review.Issue{{Type: "performance", Description: "Loop allocates", Severity: review.SeverityMedium}},
					OverallRating:   8.5,
					ReasonForRating: "Clean",
				},
				{
					FileName:      "src/c.ts",
					IsGoodQuality: true,
					Issues:        []review.Issue{},
					OverallRating: 9,
				},
			},
		},
		Stats:    review.Stats{Attempted: 4, Succeeded: 3, Failed: 1},
		Duration: 1500 * time.Millisecond,
	}
}

func emptyReport() *Report {
	return &Report{
		Repo:  "octo/empty",
		Batch: &review.Batch{Status: review.StatusSuccess, Data: []review.FileReview{}},
	}
}
