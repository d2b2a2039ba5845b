package metrics

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"marketmind/internal/models"
)

type fakeCounter struct {
	counts map[string]int64
	err    error
}

func (f *fakeCounter) CountAccessRequestsByStatus(ctx context.Context) (map[string]int64, error) {
	return f.counts, f.err
}

func TestAccessRequestCollector(t *testing.T) {
	collector := NewAccessRequestCollector(&fakeCounter{counts: map[string]int64{
		models.AccessPending:  3,
		models.AccessApproved: 1,
		models.AccessDenied:   0,
	}})

	expected := `
# HELP marketmind_access_requests Current number of access requests by status
# TYPE marketmind_access_requests gauge
marketmind_access_requests{status="approved"} 1
marketmind_access_requests{status="denied"} 0
marketmind_access_requests{status="pending"} 3
`
	if err := testutil.CollectAndCompare(collector, strings.NewReader(expected)); err != nil {
		t.Errorf("unexpected collector output: %v", err)
	}
}

func TestAccessRequestCollector_StoreError(t *testing.T) {
	collector := NewAccessRequestCollector(&fakeCounter{err: errors.New("db down")})

	if n := testutil.CollectAndCount(collector); n != 0 {
		t.Errorf("CollectAndCount() = %d, want 0 on store error", n)
	}
}

func TestObserveRecompute(t *testing.T) {
	successBefore := testutil.ToFloat64(recomputeRuns.WithLabelValues("success"))
	errorBefore := testutil.ToFloat64(recomputeRuns.WithLabelValues("error"))
	failedBefore := testutil.ToFloat64(recomputeFailedRows)

	ObserveRecompute(&models.RecomputeSummary{
		Updated:  4,
		Failed:   []models.RecomputeFailure{{Reason: "rating out of range"}},
		Duration: 20 * time.Millisecond,
	}, nil)
	ObserveRecompute(nil, errors.New("db down"))

	if got := testutil.ToFloat64(recomputeRuns.WithLabelValues("success")) - successBefore; got != 1 {
		t.Errorf("success runs delta = %v, want 1", got)
	}
	if got := testutil.ToFloat64(recomputeRuns.WithLabelValues("error")) - errorBefore; got != 1 {
		t.Errorf("error runs delta = %v, want 1", got)
	}
	if got := testutil.ToFloat64(recomputeFailedRows) - failedBefore; got != 1 {
		t.Errorf("failed rows delta = %v, want 1", got)
	}
}
