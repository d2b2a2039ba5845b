package trending

import (
	"math"
	"time"

	"marketmind/internal/models"
)

// Maxima are the corpus-wide maxima used to normalize counters.
type Maxima struct {
	Views   int64
	Reviews int
}

// MaximaOf returns the maxima over stats.
func MaximaOf(stats []models.ToolStats) Maxima {
	var m Maxima
	for _, s := range stats {
		m = m.Include(s)
	}
	return m
}

// Include returns m raised to cover s.
func (m Maxima) Include(s models.ToolStats) Maxima {
	if s.Views > m.Views {
		m.Views = s.Views
	}
	if s.TotalReviews > m.Reviews {
		m.Reviews = s.TotalReviews
	}
	return m
}

// Score returns the trending score of a tool at time now.
func (p Policy) Score(s models.ToolStats, m Maxima, now time.Time) float64 {
	score := p.WeightViews*normalize(float64(s.Views), float64(m.Views)) +
		p.WeightRating*clamp01(s.Rating/5.0) +
		p.WeightRecency*p.recencyFactor(s.CreatedAt, now) +
		p.WeightReviews*normalize(float64(s.TotalReviews), float64(m.Reviews))
	return clamp01(score)
}

// recencyFactor decays linearly from 1 at creation to 0 at the window end.
// A creation time in the future counts as brand new.
func (p Policy) recencyFactor(createdAt, now time.Time) float64 {
	age := now.Sub(createdAt)
	if age <= 0 {
		return 1
	}
	if age >= p.RecencyWindow {
		return 0
	}
	return 1 - float64(age)/float64(p.RecencyWindow)
}

// normalize maps x onto [0,1] relative to max. When max is zero every tool
// shares the same value, as in a single-tool corpus, and normalizes to 1.
func normalize(x, max float64) float64 {
	if max <= 0 {
		return 1
	}
	return clamp01(x / max)
}

func clamp01(v float64) float64 {
	if !(v > 0) { // also catches NaN
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// invalidReason explains why a row cannot be scored, or returns "".
func invalidReason(s models.ToolStats) string {
	switch {
	case s.Views < 0:
		return "negative view count"
	case s.TotalReviews < 0:
		return "negative review count"
	case math.IsNaN(s.Rating) || s.Rating < 0 || s.Rating > 5:
		return "rating out of range"
	case s.CreatedAt.IsZero():
		return "missing creation time"
	}
	return ""
}
