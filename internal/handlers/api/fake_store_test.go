package api

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"marketmind/internal/db"
	"marketmind/internal/models"
)

// memStore is an in-memory implementation of every store the handlers reach.
type memStore struct {
	mu       sync.Mutex
	tools    map[uuid.UUID]*models.Tool
	reviews  map[uuid.UUID]*models.Review
	requests map[uuid.UUID]*models.AccessRequest
	users    map[uuid.UUID]*models.User
}

func newMemStore() *memStore {
	return &memStore{
		tools:    make(map[uuid.UUID]*models.Tool),
		reviews:  make(map[uuid.UUID]*models.Review),
		requests: make(map[uuid.UUID]*models.AccessRequest),
		users:    make(map[uuid.UUID]*models.User),
	}
}

func (s *memStore) addTool(name string) *models.Tool {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &models.Tool{ID: uuid.New(), Name: name, Slug: name, CreatedAt: time.Now()}
	s.tools[t.ID] = t
	copied := *t
	return &copied
}

func (s *memStore) tool(id uuid.UUID) models.Tool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.tools[id]
}

func (s *memStore) addUser(userType string) *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := &models.User{ID: uuid.New(), Username: userType + "-" + uuid.NewString()[:8], UserType: userType, IsActive: true}
	s.users[u.ID] = u
	return u
}

// Tools

func (s *memStore) CreateTool(ctx context.Context, tool *models.Tool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.tools {
		if t.Slug == tool.Slug {
			return db.ErrDuplicateSlug
		}
	}
	tool.ID = uuid.New()
	tool.CreatedAt = time.Now()
	tool.UpdatedAt = tool.CreatedAt
	copied := *tool
	s.tools[tool.ID] = &copied
	return nil
}

func (s *memStore) GetToolByID(ctx context.Context, id uuid.UUID) (*models.Tool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tools[id]
	if !ok {
		return nil, db.ErrToolNotFound
	}
	copied := *t
	return &copied, nil
}

func (s *memStore) UpdateToolContent(ctx context.Context, id uuid.UUID, upd models.ToolContentUpdate) (*models.Tool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tools[id]
	if !ok {
		return nil, db.ErrToolNotFound
	}
	if upd.Description != nil {
		t.Description = *upd.Description
	}
	if upd.SEOTitle != nil {
		t.SEOTitle = *upd.SEOTitle
	}
	copied := *t
	return &copied, nil
}

func (s *memStore) UpdateToolCuration(ctx context.Context, id uuid.UUID, upd models.ToolCurationUpdate) (*models.Tool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tools[id]
	if !ok {
		return nil, db.ErrToolNotFound
	}
	if upd.IsHot != nil {
		t.IsHot = *upd.IsHot
	}
	if upd.IsFeatured != nil {
		t.IsFeatured = *upd.IsFeatured
	}
	copied := *t
	return &copied, nil
}

func (s *memStore) IncrementToolViews(ctx context.Context, id uuid.UUID) (*models.Tool, error) {
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

func (s *memStore) GetScoreMaxima(ctx context.Context) (int64, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var views int64
	var reviews int
	for _, t := range s.tools {
		views = max(views, t.Views)
		reviews = max(reviews, t.TotalReviews)
	}
	return views, reviews, nil
}

func (s *memStore) SetTrendingScore(ctx context.Context, id uuid.UUID, score float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tools[id]
	if !ok {
		return db.ErrToolNotFound
	}
	t.TrendingScore = score
	return nil
}

func (s *memStore) ListToolStats(ctx context.Context) ([]models.ToolStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stats := make([]models.ToolStats, 0, len(s.tools))
	for _, t := range s.tools {
		stats = append(stats, t.Stats())
	}
	return stats, nil
}

func (s *memStore) UpdateTrendingScores(ctx context.Context, scores []models.ToolScore) ([]uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
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

func (s *memStore) ListTools(ctx context.Context, order models.ToolOrder, limit int) ([]models.Tool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tools := []models.Tool{}
	for _, t := range s.tools {
		switch order {
		case models.OrderHot:
			if !t.IsHot {
				continue
			}
		case models.OrderFeatured:
			if !t.IsFeatured {
				continue
			}
		}
		tools = append(tools, *t)
	}
	sort.Slice(tools, func(i, j int) bool {
		switch order {
		case models.OrderTopRated:
			return tools[i].Rating > tools[j].Rating
		case models.OrderMostViewed:
			return tools[i].Views > tools[j].Views
		case models.OrderNewest:
			return tools[i].CreatedAt.After(tools[j].CreatedAt)
		default:
			return tools[i].TrendingScore > tools[j].TrendingScore
		}
	})
	if len(tools) > limit {
		tools = tools[:limit]
	}
	return tools, nil
}

// Reviews

func (s *memStore) refreshRating(toolID uuid.UUID) {
	var sum, n int
	for _, r := range s.reviews {
		if r.ToolID == toolID {
			sum += r.Rating
			n++
		}
	}
	t := s.tools[toolID]
	t.TotalReviews = n
	t.Rating = 0
	if n > 0 {
		t.Rating = float64(sum) / float64(n)
	}
}

func (s *memStore) CreateReview(ctx context.Context, review *models.Review) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tools[review.ToolID]; !ok {
		return db.ErrToolNotFound
	}
	for _, r := range s.reviews {
		if r.ToolID == review.ToolID && r.UserID == review.UserID {
			return db.ErrDuplicateReview
		}
	}
	review.ID = uuid.New()
	review.CreatedAt = time.Now()
	copied := *review
	s.reviews[review.ID] = &copied
	s.refreshRating(review.ToolID)
	return nil
}

func (s *memStore) GetReviewByID(ctx context.Context, id uuid.UUID) (*models.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.reviews[id]
	if !ok {
		return nil, db.ErrReviewNotFound
	}
	copied := *r
	return &copied, nil
}

func (s *memStore) UpdateReview(ctx context.Context, review *models.Review) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.reviews[review.ID]; !ok {
		return db.ErrReviewNotFound
	}
	copied := *review
	s.reviews[review.ID] = &copied
	s.refreshRating(review.ToolID)
	return nil
}

func (s *memStore) DeleteReview(ctx context.Context, review *models.Review) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.reviews[review.ID]; !ok {
		return db.ErrReviewNotFound
	}
	delete(s.reviews, review.ID)
	s.refreshRating(review.ToolID)
	return nil
}

func (s *memStore) ListReviewsForTool(ctx context.Context, toolID uuid.UUID) ([]models.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Review{}
	for _, r := range s.reviews {
		if r.ToolID == toolID {
			out = append(out, *r)
		}
	}
	return out, nil
}

// Access requests

func (s *memStore) GetPendingAccessRequest(ctx context.Context, toolID, adminID uuid.UUID) (*models.AccessRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.requests {
		if r.ToolID == toolID && r.AdminID == adminID && r.IsPending() {
			copied := *r
			return &copied, nil
		}
	}
	return nil, db.ErrAccessRequestNotFound
}

func (s *memStore) CreateAccessRequest(ctx context.Context, req *models.AccessRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.requests {
		if r.ToolID == req.ToolID && r.AdminID == req.AdminID && r.IsPending() {
			return db.ErrDuplicateAccessRequest
		}
	}
	req.ID = uuid.New()
	req.Status = models.AccessPending
	req.CreatedAt = time.Now()
	copied := *req
	s.requests[req.ID] = &copied
	return nil
}

func (s *memStore) ResolveAccessRequest(ctx context.Context, id, superadminID uuid.UUID, status, responseMessage string) (*models.AccessRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.requests[id]
	if !ok {
		return nil, db.ErrAccessRequestNotFound
	}
	if !r.IsPending() {
		return nil, db.ErrAccessRequestResolved
	}
	now := time.Now()
	r.Status = status
	r.SuperadminID = &superadminID
	r.ResponseMessage = responseMessage
	r.ResolvedAt = &now
	if status == models.AccessApproved {
		adminID := r.AdminID
		s.tools[r.ToolID].AssignedAdminID = &adminID
	}
	copied := *r
	return &copied, nil
}

func (s *memStore) ListAccessRequestsByAdmin(ctx context.Context, adminID uuid.UUID) ([]models.AccessRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	requests := []models.AccessRequest{}
	for _, r := range s.requests {
		if r.AdminID == adminID {
			requests = append(requests, *r)
		}
	}
	return requests, nil
}

func (s *memStore) ListAccessRequests(ctx context.Context, status string) ([]models.AccessRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	requests := []models.AccessRequest{}
	for _, r := range s.requests {
		if status == "" || r.Status == status {
			requests = append(requests, *r)
		}
	}
	return requests, nil
}

// Users

func (s *memStore) ListUsers(ctx context.Context) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	users := []models.User{}
	for _, u := range s.users {
		users = append(users, *u)
	}
	return users, nil
}

func (s *memStore) UpdateUserType(ctx context.Context, id uuid.UUID, userType string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return db.ErrUserNotFound
	}
	u.UserType = userType
	return nil
}
