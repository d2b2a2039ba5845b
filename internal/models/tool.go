package models

import (
	"time"

	"github.com/google/uuid"
)

// Tool is a catalog entry. Views, Rating, TotalReviews and TrendingScore are
// maintained by the service and are never set from request payloads.
type Tool struct {
	ID               uuid.UUID `json:"id"`
	Name             string    `json:"name"`
	Slug             string    `json:"slug"`
	ShortDescription string    `json:"short_description"`
	Description      string    `json:"description"`
	Content          string    `json:"content"`
	WebsiteURL       string    `json:"website_url"`
	Category         string    `json:"category"`
	PricingModel     string    `json:"pricing_model"`

	SEOTitle       string `json:"seo_title"`
	SEODescription string `json:"seo_description"`
	SEOKeywords    string `json:"seo_keywords"`

	Views         int64   `json:"views"`
	Rating        float64 `json:"rating"`
	TotalReviews  int     `json:"total_reviews"`
	TrendingScore float64 `json:"trending_score"`

	IsHot      bool `json:"is_hot"`
	IsFeatured bool `json:"is_featured"`

	AssignedAdminID *uuid.UUID `json:"assigned_admin_id"`
	CreatedBy       *uuid.UUID `json:"created_by"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// Stats returns the popularity inputs of the tool.
func (t *Tool) Stats() ToolStats {
	return ToolStats{
		ID:           t.ID,
		Views:        t.Views,
		Rating:       t.Rating,
		TotalReviews: t.TotalReviews,
		CreatedAt:    t.CreatedAt,
	}
}

// ToolStats holds the inputs of the trending score for one tool.
type ToolStats struct {
	ID           uuid.UUID
	Views        int64
	Rating       float64
	TotalReviews int
	CreatedAt    time.Time
}

// ToolScore pairs a tool with a computed trending score.
type ToolScore struct {
	ID    uuid.UUID
	Score float64
}

// ToolOrder selects one of the curated orderings.
type ToolOrder string

// Curated orderings
const (
	OrderTrending   ToolOrder = "trending"
	OrderTopRated   ToolOrder = "top_rated"
	OrderMostViewed ToolOrder = "most_viewed"
	OrderNewest     ToolOrder = "newest"
	OrderFeatured   ToolOrder = "featured"
	OrderHot        ToolOrder = "hot"
)

// ToolCreate is the payload for creating a tool.
type ToolCreate struct {
	Name             string `json:"name" validate:"required,max=200"`
	Slug             string `json:"slug" validate:"required,max=200,slug"`
	ShortDescription string `json:"short_description" validate:"max=500"`
	Description      string `json:"description" validate:"max=5000"`
	WebsiteURL       string `json:"website_url" validate:"required,url,max=2048"`
	Category         string `json:"category" validate:"max=100"`
	PricingModel     string `json:"pricing_model" validate:"omitempty,oneof=free freemium paid subscription enterprise"`
	IsHot            bool   `json:"is_hot"`
	IsFeatured       bool   `json:"is_featured"`
}

// ToolContentUpdate is the allow-listed set of editorial fields an assigned
// admin may change. Nil fields are left untouched.
type ToolContentUpdate struct {
	ShortDescription *string `json:"short_description" validate:"omitempty,max=500"`
	Description      *string `json:"description" validate:"omitempty,max=5000"`
	Content          *string `json:"content" validate:"omitempty,max=100000"`
	SEOTitle         *string `json:"seo_title" validate:"omitempty,max=200"`
	SEODescription   *string `json:"seo_description" validate:"omitempty,max=500"`
	SEOKeywords      *string `json:"seo_keywords" validate:"omitempty,max=500"`
}

// IsEmpty reports whether the update sets no field.
func (u ToolContentUpdate) IsEmpty() bool {
	return u.ShortDescription == nil && u.Description == nil && u.Content == nil &&
		u.SEOTitle == nil && u.SEODescription == nil && u.SEOKeywords == nil
}

// ToolCurationUpdate sets the superadmin-controlled curation flags.
type ToolCurationUpdate struct {
	IsHot      *bool `json:"is_hot"`
	IsFeatured *bool `json:"is_featured"`
}

// IsEmpty reports whether the update sets no flag.
func (u ToolCurationUpdate) IsEmpty() bool {
	return u.IsHot == nil && u.IsFeatured == nil
}
