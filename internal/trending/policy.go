// Package trending computes and serves the tool popularity ranking.
//
// A tool's trending score is a weighted sum of four terms, each in [0,1]:
//
//	score = wViews*views/maxViews + wRating*rating/5 + wRecency*recency + wReviews*reviews/maxReviews
//
// The maxima are taken over the corpus in the current recompute pass. Recency
// decays linearly from 1 at creation to 0 at the end of the recency window.
// The weights sum to 1, so scores are comparable and stay in [0,1].
package trending

import (
	"fmt"
	"math"
	"time"
)

// Policy holds the tunable weights and limits of the ranking.
type Policy struct {
	WeightViews   float64       `yaml:"weight_views"`
	WeightRating  float64       `yaml:"weight_rating"`
	WeightRecency float64       `yaml:"weight_recency"`
	WeightReviews float64       `yaml:"weight_reviews"`
	RecencyWindow time.Duration `yaml:"recency_window"`
	PageSize      int           `yaml:"page_size"`
}

// weightTolerance absorbs float rounding in configured weights.
const weightTolerance = 1e-9

// MaxPageSize caps the length of each curated list.
const MaxPageSize = 100

// DefaultPolicy returns the default ranking policy: 0.4 views, 0.3 rating,
// 0.2 recency, 0.1 review count, a 90 day recency window and lists of 10.
func DefaultPolicy() Policy {
	return Policy{
		WeightViews:   0.4,
		WeightRating:  0.3,
		WeightRecency: 0.2,
		WeightReviews: 0.1,
		RecencyWindow: 90 * 24 * time.Hour,
		PageSize:      10,
	}
}

// Validate checks that the weights are non-negative and sum to 1.
func (p Policy) Validate() error {
	weights := map[string]float64{
		"weight_views":   p.WeightViews,
		"weight_rating":  p.WeightRating,
		"weight_recency": p.WeightRecency,
		"weight_reviews": p.WeightReviews,
	}
	for name, w := range weights {
		if w < 0 || math.IsNaN(w) || math.IsInf(w, 0) {
			return fmt.Errorf("trending policy: %s must be a non-negative number, got %v", name, w)
		}
	}

	sum := p.WeightViews + p.WeightRating + p.WeightRecency + p.WeightReviews
	if math.Abs(sum-1) > weightTolerance {
		return fmt.Errorf("trending policy: weights must sum to 1.0, got %v", sum)
	}
	if p.RecencyWindow <= 0 {
		return fmt.Errorf("trending policy: recency_window must be positive, got %v", p.RecencyWindow)
	}
	if p.PageSize <= 0 || p.PageSize > MaxPageSize {
		return fmt.Errorf("trending policy: page_size must be between 1 and %d, got %d", MaxPageSize, p.PageSize)
	}
	return nil
}
