// Package reviews manages user reviews of tools. Every write goes through
// the store in one transaction that also refreshes the tool's rating and
// review count, so the aggregate always matches the review rows.
package reviews

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"marketmind/internal/apperr"
	"marketmind/internal/models"
	"marketmind/internal/validation"
)

// ErrNotOwner is returned when a user edits or deletes another user's review.
var ErrNotOwner = apperr.New(apperr.ErrForbidden, "you can only modify your own review")

// Store is the persistence used for reviews.
type Store interface {
	GetToolByID(ctx context.Context, id uuid.UUID) (*models.Tool, error)
	CreateReview(ctx context.Context, review *models.Review) error
	GetReviewByID(ctx context.Context, id uuid.UUID) (*models.Review, error)
	UpdateReview(ctx context.Context, review *models.Review) error
	DeleteReview(ctx context.Context, review *models.Review) error
	ListReviewsForTool(ctx context.Context, toolID uuid.UUID) ([]models.Review, error)
}

// Service applies the review rules on top of the store.
type Service struct {
	store        Store
	onAggregates func()
}

// Option configures a Service.
type Option func(*Service)

// WithAggregateHook calls fn after every write that changes a tool's rating
// or review count, e.g. to drop cached curated lists.
func WithAggregateHook(fn func()) Option {
	return func(s *Service) {
		s.onAggregates = fn
	}
}

// NewService creates a new review service.
func NewService(store Store, opts ...Option) *Service {
	s := &Service{store: store}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) aggregatesChanged() {
	if s.onAggregates != nil {
		s.onAggregates()
	}
}

// List returns the reviews of a tool, newest first.
func (s *Service) List(ctx context.Context, toolID uuid.UUID) ([]models.Review, error) {
	if _, err := s.store.GetToolByID(ctx, toolID); err != nil {
		return nil, apperr.Dependency(err)
	}
	reviews, err := s.store.ListReviewsForTool(ctx, toolID)
	if err != nil {
		return nil, apperr.Dependency(err)
	}
	return reviews, nil
}

// Create adds user's review of a tool. A second review of the same tool by
// the same user is a conflict.
func (s *Service) Create(ctx context.Context, user *models.User, toolID uuid.UUID, in models.ReviewInput) (*models.Review, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	review := &models.Review{
		ToolID:   toolID,
		UserID:   user.ID,
		Rating:   in.Rating,
		Title:    in.Title,
		Content:  in.Content,
		Username: user.Username,
	}
	if err := s.store.CreateReview(ctx, review); err != nil {
		return nil, apperr.Dependency(err)
	}
	s.aggregatesChanged()

	slog.Info("review created", "review_id", review.ID, "tool_id", toolID, "user_id", user.ID, "rating", review.Rating)
	return review, nil
}

// Update edits user's own review.
func (s *Service) Update(ctx context.Context, user *models.User, reviewID uuid.UUID, in models.ReviewInput) (*models.Review, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	review, err := s.store.GetReviewByID(ctx, reviewID)
	if err != nil {
		return nil, apperr.Dependency(err)
	}
	if review.UserID != user.ID {
		return nil, ErrNotOwner
	}

	review.Rating = in.Rating
	review.Title = in.Title
	review.Content = in.Content
	if err := s.store.UpdateReview(ctx, review); err != nil {
		return nil, apperr.Dependency(err)
	}
	s.aggregatesChanged()
	return review, nil
}

// Delete removes a review. Superadmins may delete any review, everyone else
// only their own.
func (s *Service) Delete(ctx context.Context, user *models.User, reviewID uuid.UUID) error {
	review, err := s.store.GetReviewByID(ctx, reviewID)
	if err != nil {
		return apperr.Dependency(err)
	}
	if review.UserID != user.ID && !user.IsSuperadmin() {
		return ErrNotOwner
	}

	if err := s.store.DeleteReview(ctx, review); err != nil {
		return apperr.Dependency(err)
	}
	s.aggregatesChanged()

	slog.Info("review deleted", "review_id", review.ID, "tool_id", review.ToolID, "by", user.ID)
	return nil
}
