package trending

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"marketmind/internal/apperr"
	"marketmind/internal/metrics"
	"marketmind/internal/models"
)

// Store is the persistence the engine reads tool stats from and writes scores to.
type Store interface {
	ListToolStats(ctx context.Context) ([]models.ToolStats, error)
	UpdateTrendingScores(ctx context.Context, scores []models.ToolScore) ([]uuid.UUID, error)
	IncrementToolViews(ctx context.Context, id uuid.UUID) (*models.Tool, error)
	GetScoreMaxima(ctx context.Context) (int64, int, error)
	SetTrendingScore(ctx context.Context, id uuid.UUID, score float64) error
	ListTools(ctx context.Context, order models.ToolOrder, limit int) ([]models.Tool, error)
}

// Cache holds encoded curated lists between recomputes. Satisfied by any
// fiber.Storage, e.g. the Redis storage.
type Cache interface {
	Get(key string) ([]byte, error)
	Set(key string, val []byte, exp time.Duration) error
	Delete(key string) error
}

const curatedListsKey = "trending:curated_lists"

// Engine maintains trending scores and serves the curated lists.
type Engine struct {
	store    Store
	policy   Policy
	cache    Cache
	cacheTTL time.Duration
	now      func() time.Time
	group    singleflight.Group
}

// Option configures an Engine.
type Option func(*Engine)

// WithCache serves curated lists from cache for up to ttl between recomputes.
func WithCache(cache Cache, ttl time.Duration) Option {
	return func(e *Engine) {
		e.cache = cache
		e.cacheTTL = ttl
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// NewEngine creates an engine. The policy must already be validated.
func NewEngine(store Store, policy Policy, opts ...Option) *Engine {
	e := &Engine{
		store:  store,
		policy: policy,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Policy returns the engine's ranking policy.
func (e *Engine) Policy() Policy {
	return e.policy
}

// recomputeTimeout bounds a shared recompute pass, which outlives the
// cancellation of whichever caller started it.
const recomputeTimeout = 5 * time.Minute

// RecomputeAll recomputes and stores the trending score of every tool.
// Malformed rows and rows deleted mid-pass are skipped and reported in the
// summary; they do not abort the pass. Concurrent calls share a single pass.
// A caller whose ctx ends stops waiting, but the shared pass keeps running
// for the others.
func (e *Engine) RecomputeAll(ctx context.Context) (*models.RecomputeSummary, error) {
	ch := e.group.DoChan("recompute", func() (any, error) {
		runCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), recomputeTimeout)
		defer cancel()
		summary, err := e.recompute(runCtx)
		metrics.ObserveRecompute(summary, err)
		return summary, err
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		summary := *res.Val.(*models.RecomputeSummary)
		return &summary, nil
	}
}

func (e *Engine) recompute(ctx context.Context) (*models.RecomputeSummary, error) {
	start := e.now()

	stats, err := e.store.ListToolStats(ctx)
	if err != nil {
		return nil, apperr.Dependency(fmt.Errorf("list tool stats: %w", err))
	}

	summary := &models.RecomputeSummary{
		Failed:     []models.RecomputeFailure{},
		ComputedAt: start,
	}

	valid := make([]models.ToolStats, 0, len(stats))
	for _, s := range stats {
		if reason := invalidReason(s); reason != "" {
			summary.Failed = append(summary.Failed, models.RecomputeFailure{ToolID: s.ID, Reason: reason})
			continue
		}
		valid = append(valid, s)
	}

	maxima := MaximaOf(valid)
	scores := make([]models.ToolScore, 0, len(valid))
	for _, s := range valid {
		scores = append(scores, models.ToolScore{ID: s.ID, Score: e.policy.Score(s, maxima, start)})
	}

	missing, err := e.store.UpdateTrendingScores(ctx, scores)
	if err != nil {
		return nil, apperr.Dependency(fmt.Errorf("update trending scores: %w", err))
	}
	gone := make(map[uuid.UUID]bool, len(missing))
	for _, id := range missing {
		gone[id] = true
	}

	sum := 0.0
	summary.MinScore = math.Inf(1)
	for _, s := range scores {
		if gone[s.ID] {
			summary.Failed = append(summary.Failed, models.RecomputeFailure{ToolID: s.ID, Reason: "tool no longer exists"})
			continue
		}
		summary.Updated++
		sum += s.Score
		summary.MinScore = math.Min(summary.MinScore, s.Score)
		summary.MaxScore = math.Max(summary.MaxScore, s.Score)
	}
	if summary.Updated > 0 {
		summary.MeanScore = sum / float64(summary.Updated)
	} else {
		summary.MinScore = 0
	}

	summary.Duration = e.now().Sub(start)
	e.InvalidateLists()
	return summary, nil
}

// RecordView adds one view to a tool and refreshes that tool's score against
// the current corpus maxima. The returned tool carries the new counters.
func (e *Engine) RecordView(ctx context.Context, toolID uuid.UUID) (*models.Tool, error) {
	tool, err := e.store.IncrementToolViews(ctx, toolID)
	if err != nil {
		return nil, apperr.Dependency(err)
	}
	metrics.RecordToolView()

	maxViews, maxReviews, err := e.store.GetScoreMaxima(ctx)
	if err != nil {
		return nil, apperr.Dependency(fmt.Errorf("get score maxima: %w", err))
	}

	stats := tool.Stats()
	maxima := Maxima{Views: maxViews, Reviews: maxReviews}.Include(stats)
	score := e.policy.Score(stats, maxima, e.now())

	if err := e.store.SetTrendingScore(ctx, tool.ID, score); err != nil {
		return nil, apperr.Dependency(err)
	}
	tool.TrendingScore = score
	return tool, nil
}

// CuratedLists returns the six ranked lists. With recalculate set, all scores
// are recomputed first; otherwise the last stored scores are used, served from
// the cache when one is configured.
func (e *Engine) CuratedLists(ctx context.Context, recalculate bool) (*models.CuratedLists, error) {
	if recalculate {
		if _, err := e.RecomputeAll(ctx); err != nil {
			return nil, err
		}
	} else if lists := e.cachedLists(); lists != nil {
		return lists, nil
	}

	lists := &models.CuratedLists{ComputedAt: e.now()}
	targets := []struct {
		order models.ToolOrder
		dst   *[]models.Tool
	}{
		{models.OrderTrending, &lists.Trending},
		{models.OrderTopRated, &lists.TopRated},
		{models.OrderMostViewed, &lists.MostViewed},
		{models.OrderNewest, &lists.Newest},
		{models.OrderFeatured, &lists.Featured},
		{models.OrderHot, &lists.Hot},
	}
	for _, target := range targets {
		tools, err := e.store.ListTools(ctx, target.order, e.policy.PageSize)
		if err != nil {
			return nil, apperr.Dependency(fmt.Errorf("list %s tools: %w", target.order, err))
		}
		if tools == nil {
			tools = []models.Tool{}
		}
		*target.dst = tools
	}

	e.storeLists(lists)
	return lists, nil
}

func (e *Engine) cachedLists() *models.CuratedLists {
	if e.cache == nil {
		return nil
	}
	data, err := e.cache.Get(curatedListsKey)
	if err != nil {
		slog.Warn("curated list cache read failed", "error", err)
		return nil
	}
	if len(data) == 0 {
		return nil
	}
	var lists models.CuratedLists
	if err := json.Unmarshal(data, &lists); err != nil {
		slog.Warn("curated list cache entry is corrupt", "error", err)
		return nil
	}
	return &lists
}

func (e *Engine) storeLists(lists *models.CuratedLists) {
	if e.cache == nil {
		return
	}
	data, err := json.Marshal(lists)
	if err != nil {
		slog.Warn("failed to encode curated lists", "error", err)
		return
	}
	if err := e.cache.Set(curatedListsKey, data, e.cacheTTL); err != nil {
		slog.Warn("curated list cache write failed", "error", err)
	}
}

// InvalidateLists drops the cached curated lists, for writes that change list
// membership outside a recompute.
func (e *Engine) InvalidateLists() {
	if e.cache == nil {
		return
	}
	if err := e.cache.Delete(curatedListsKey); err != nil {
		slog.Warn("curated list cache invalidation failed", "error", err)
	}
}
