package models

import (
	"time"

	"github.com/google/uuid"
)

// CuratedLists holds the six ranked tool lists shown on the analytics page.
type CuratedLists struct {
	Trending   []Tool    `json:"trending"`
	TopRated   []Tool    `json:"top_rated"`
	MostViewed []Tool    `json:"most_viewed"`
	Newest     []Tool    `json:"newest"`
	Featured   []Tool    `json:"featured"`
	Hot        []Tool    `json:"hot"`
	ComputedAt time.Time `json:"computed_at"`
}

// RecomputeFailure records a tool skipped during a recompute pass.
type RecomputeFailure struct {
	ToolID uuid.UUID `json:"tool_id"`
	Reason string    `json:"reason"`
}

// RecomputeSummary describes one recompute pass.
type RecomputeSummary struct {
	Updated    int                `json:"updated"`
	Failed     []RecomputeFailure `json:"failed"`
	MinScore   float64            `json:"min_score"`
	MaxScore   float64            `json:"max_score"`
	MeanScore  float64            `json:"mean_score"`
	Duration   time.Duration      `json:"duration_ns"`
	ComputedAt time.Time          `json:"computed_at"`
}

// ToolAccessResponse reports whether the caller may edit a tool.
type ToolAccessResponse struct {
	ToolID    uuid.UUID `json:"tool_id"`
	HasAccess bool      `json:"has_access"`
}
