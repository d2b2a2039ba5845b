package jobs

import (
	"context"
	"log/slog"
	"time"

	"marketmind/internal/models"
)

// Recomputer recomputes every trending score.
type Recomputer interface {
	RecomputeAll(ctx context.Context) (*models.RecomputeSummary, error)
}

// TrendingJob periodically recomputes trending scores. It implements
// suture.Service.
type TrendingJob struct {
	engine   Recomputer
	interval time.Duration
}

// NewTrendingJob creates a new trending job running every interval.
func NewTrendingJob(engine Recomputer, interval time.Duration) *TrendingJob {
	return &TrendingJob{engine: engine, interval: interval}
}

// Serve runs one recompute immediately, then one per interval, until ctx is
// cancelled. A failed run is logged and the next one happens on schedule.
func (j *TrendingJob) Serve(ctx context.Context) error {
	slog.Info("trending job started", "interval", j.interval)

	j.run(ctx)

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("trending job stopped")
			return ctx.Err()
		case <-ticker.C:
			j.run(ctx)
		}
	}
}

func (j *TrendingJob) String() string {
	return "trending-recompute"
}

func (j *TrendingJob) run(ctx context.Context) {
	summary, err := j.engine.RecomputeAll(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		slog.Error("trending recompute failed", "error", err)
		return
	}

	slog.Info("trending recompute finished",
		"updated", summary.Updated,
		"failed", len(summary.Failed),
		"min_score", summary.MinScore,
		"max_score", summary.MaxScore,
		"mean_score", summary.MeanScore,
		"duration", summary.Duration,
	)
	for _, f := range summary.Failed {
		slog.Warn("tool skipped in trending recompute", "tool_id", f.ToolID, "reason", f.Reason)
	}
}
