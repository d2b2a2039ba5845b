package trending

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"marketmind/internal/db"
	"marketmind/internal/models"
)

// fakeStore is an in-memory Store with row-level atomic updates.
type fakeStore struct {
	mu        sync.Mutex
	tools     map[uuid.UUID]*models.Tool
	listCalls int

	// deleteOnUpdate removes these tools right before scores are written,
	// simulating a concurrent delete.
	deleteOnUpdate []uuid.UUID
	// badRating overrides the rating returned by ListToolStats.
	badRating map[uuid.UUID]float64
	failList  error

	// listStarted is signalled when ListToolStats is entered; the call then
	// waits for listGate to close. listCtxErrs records ctx.Err() seen after.
	listStarted chan struct{}
	listGate    chan struct{}
	listCtxErrs []error
}

func newFakeStore(tools ...*models.Tool) *fakeStore {
	s := &fakeStore{tools: make(map[uuid.UUID]*models.Tool), badRating: make(map[uuid.UUID]float64)}
	for _, t := range tools {
		s.tools[t.ID] = t
	}
	return s
}

func (s *fakeStore) tool(id uuid.UUID) models.Tool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.tools[id]
}

func (s *fakeStore) ListToolStats(ctx context.Context) ([]models.ToolStats, error) {
	if s.listGate != nil {
		select {
		case s.listStarted <- struct{}{}:
		default:
		}
		<-s.listGate
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.listCtxErrs = append(s.listCtxErrs, ctx.Err())
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.failList != nil {
		return nil, s.failList
	}
	var stats []models.ToolStats
	for _, t := range s.tools {
		st := t.Stats()
		if r, ok := s.badRating[t.ID]; ok {
			st.Rating = r
		}
		stats = append(stats, st)
	}
	return stats, nil
}

func (s *fakeStore) UpdateTrendingScores(ctx context.Context, scores []models.ToolScore) ([]uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range s.deleteOnUpdate {
		delete(s.tools, id)
	}
	var missing []uuid.UUID
	for _, sc := range scores {
		t, ok := s.tools[sc.ID]
		if !ok {
			missing = append(missing, sc.ID)
			continue
		}
		t.TrendingScore = sc.Score
	}
	return missing, nil
}

func (s *fakeStore) IncrementToolViews(ctx context.Context, id uuid.UUID) (*models.Tool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tools[id]
	if !ok {
		return nil, db.ErrToolNotFound
	}
	t.Views++
	copied := *t
	return &copied, nil
}

func (s *fakeStore) GetScoreMaxima(ctx context.Context) (int64, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var maxViews int64
	var maxReviews int
	for _, t := range s.tools {
		maxViews = max(maxViews, t.Views)
		maxReviews = max(maxReviews, t.TotalReviews)
	}
	return maxViews, maxReviews, nil
}

func (s *fakeStore) SetTrendingScore(ctx context.Context, id uuid.UUID, score float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tools[id]
	if !ok {
		return db.ErrToolNotFound
	}
	t.TrendingScore = score
	return nil
}

func (s *fakeStore) ListTools(ctx context.Context, order models.ToolOrder, limit int) ([]models.Tool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listCalls++

	var tools []models.Tool
	for _, t := range s.tools {
		if order == models.OrderFeatured && !t.IsFeatured {
			continue
		}
		if order == models.OrderHot && !t.IsHot {
			continue
		}
		tools = append(tools, *t)
	}

	var less func(a, b models.Tool) bool
	switch order {
	case models.OrderTrending, models.OrderFeatured, models.OrderHot:
		less = func(a, b models.Tool) bool { return a.TrendingScore > b.TrendingScore }
	case models.OrderTopRated:
		less = func(a, b models.Tool) bool {
			if a.Rating != b.Rating {
				return a.Rating > b.Rating
			}
			return a.TotalReviews > b.TotalReviews
		}
	case models.OrderMostViewed:
		less = func(a, b models.Tool) bool { return a.Views > b.Views }
	case models.OrderNewest:
		less = func(a, b models.Tool) bool { return a.CreatedAt.After(b.CreatedAt) }
	default:
		return nil, fmt.Errorf("unknown tool order %q", order)
	}
	sort.SliceStable(tools, func(i, j int) bool { return less(tools[i], tools[j]) })

	if len(tools) > limit {
		tools = tools[:limit]
	}
	return tools, nil
}

// memCache is an in-memory Cache.
type memCache struct {
	mu      sync.Mutex
	entries map[string][]byte
}

func newMemCache() *memCache {
	return &memCache{entries: make(map[string][]byte)}
}

func (c *memCache) Get(key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entries[key], nil
}

func (c *memCache) Set(key string, val []byte, exp time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = val
	return nil
}

func (c *memCache) Delete(key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	return nil
}
