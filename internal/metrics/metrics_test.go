package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestInit(t *testing.T) {
	// Call Init multiple times to test idempotency.
	Init()
	Init()

	if submissionsTotal == nil || pollsTotal == nil || taskWaitSeconds == nil ||
		mockRequestsTotal == nil || mockRequestDuration == nil {
		t.Fatal("Init() did not initialize metrics collectors")
	}

	// A simple check to see if the collectors can be used.
	ObserveSubmission("immediate")
	if val := testutil.ToFloat64(submissionsTotal.WithLabelValues("immediate")); val != 1 {
		t.Errorf("expected one immediate submission, got %f", val)
	}

	ObservePoll("")
	if val := testutil.ToFloat64(pollsTotal.WithLabelValues("unknown")); val != 1 {
		t.Errorf("expected empty poll status to count as unknown, got %f", val)
	}

	ObserveTaskWait(3 * time.Second)
	ObserveMockRequest("GET", "/task/{task_id}", 200, 5*time.Millisecond)
	if val := testutil.ToFloat64(mockRequestsTotal.WithLabelValues("GET", "200")); val != 1 {
		t.Errorf("expected one mock request observation, got %f", val)
	}
}
