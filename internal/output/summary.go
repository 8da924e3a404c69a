package output

import (
	"github.com/montanaflynn/stats"

	"github.com/dshills/repolens/internal/review"
)

// SeverityCounts holds issue counts by severity level.
type SeverityCounts struct {
	Low    int
	Medium int
	High   int
}

// Total returns the number of issues.
func (c SeverityCounts) Total() int { return c.Low + c.Medium + c.High }

// Summary aggregates a batch for display. Rating figures are zero when the
// batch is empty.
type Summary struct {
	Files        int
	GoodQuality  int
	Issues       SeverityCounts
	MeanRating   float64
	MedianRating float64
	MinRating    float64
	MaxRating    float64
}

// Summarize computes the Summary of batch.
func Summarize(batch *review.Batch) Summary {
	var s Summary
	if batch == nil {
		return s
	}

	ratings := make(stats.Float64Data, 0, len(batch.Data))
	for _, fr := range batch.Data {
		s.Files++
		if fr.IsGoodQuality {
			s.GoodQuality++
		}
		ratings = append(ratings, fr.OverallRating)
		for _, is := range fr.Issues {
			switch is.Severity {
			case review.SeverityHigh:
				s.Issues.High++
			case review.SeverityMedium:
				s.Issues.Medium++
			case review.SeverityLow:
				s.Issues.Low++
			}
		}
	}
	if len(ratings) == 0 {
		return s
	}

	// The stats functions only fail on empty input.
	s.MeanRating, _ = stats.Mean(ratings)
	s.MedianRating, _ = stats.Median(ratings)
	s.MinRating, _ = stats.Min(ratings)
	s.MaxRating, _ = stats.Max(ratings)
	s.MeanRating, _ = stats.Round(s.MeanRating, 1)
	return s
}
