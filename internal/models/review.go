package models

import (
	"time"

	"github.com/google/uuid"
)

// Review is a user's rating of a tool. A user may review a tool at most once.
type Review struct {
	ID        uuid.UUID `json:"id"`
	ToolID    uuid.UUID `json:"tool_id"`
	UserID    uuid.UUID `json:"user_id"`
	Rating    int       `json:"rating"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Populated via JOIN for display
	Username string `json:"username,omitempty"`
}

// ReviewInput is the payload for creating or editing a review.
type ReviewInput struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Title   string `json:"title" validate:"max=200"`
	Content string `json:"content" validate:"max=5000"`
}
