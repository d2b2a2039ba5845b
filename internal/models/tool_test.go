package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestToolContentUpdate_IsEmpty(t *testing.T) {
	desc := "new description"

	if !(ToolContentUpdate{}).IsEmpty() {
		t.Error("zero ToolContentUpdate should be empty")
	}
	if (ToolContentUpdate{Description: &desc}).IsEmpty() {
		t.Error("ToolContentUpdate with description should not be empty")
	}
}

func TestToolCurationUpdate_IsEmpty(t *testing.T) {
	hot := false

	if !(ToolCurationUpdate{}).IsEmpty() {
		t.Error("zero ToolCurationUpdate should be empty")
	}
	if (ToolCurationUpdate{IsHot: &hot}).IsEmpty() {
		t.Error("ToolCurationUpdate with is_hot=false should not be empty")
	}
}

func TestTool_Stats(t *testing.T) {
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	tool := &Tool{
		ID:           uuid.New(),
		Views:        42,
		Rating:       4.5,
		TotalReviews: 7,
		CreatedAt:    created,
	}

	stats := tool.Stats()
	if stats.ID != tool.ID || stats.Views != 42 || stats.Rating != 4.5 || stats.TotalReviews != 7 || !stats.CreatedAt.Equal(created) {
		t.Errorf("Stats() = %+v, want fields copied from tool", stats)
	}
}

func TestAccessRequest_StatusHelpers(t *testing.T) {
	tests := []struct {
		status                    string
		pending, approved, denied bool
	}{
		{AccessPending, true, false, false},
		{AccessApproved, false, true, false},
		{AccessDenied, false, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			r := &AccessRequest{Status: tt.status}
			if r.IsPending() != tt.pending || r.IsApproved() != tt.approved || r.IsDenied() != tt.denied {
				t.Errorf("status %q: pending=%v approved=%v denied=%v", tt.status, r.IsPending(), r.IsApproved(), r.IsDenied())
			}
			if !ValidAccessStatus(tt.status) {
				t.Errorf("ValidAccessStatus(%q) = false, want true", tt.status)
			}
		})
	}

	if ValidAccessStatus("rejected") {
		t.Error(`ValidAccessStatus("rejected") = true, want false`)
	}
}
