package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecorders(t *testing.T) {
	reg := prometheus.NewRegistry()
	Register(reg)

	RecordRun("youtubeTranscript", "success", 2*time.Second)
	RecordItems("youtubeTranscript", "success", 3)
	RecordItems("youtubeTranscript", "failure", 0)
	ObserveClientRequest("next", 200, time.Millisecond)
	ObserveClientRequest("next", 0, time.Millisecond)
	RecordArchive(false)

	if got := testutil.ToFloat64(itemsTotal.WithLabelValues("youtubeTranscript", "success")); got != 3 {
		t.Errorf("expected 3 successful items, got %v", got)
	}
	if got := testutil.ToFloat64(clientRequestsTotal.WithLabelValues("next", "error")); got != 1 {
		t.Errorf("expected 1 failed client request, got %v", got)
	}
	if got := testutil.ToFloat64(archiveTotal.WithLabelValues("failure")); got != 1 {
		t.Errorf("expected 1 archive failure, got %v", got)
	}
	if n := testutil.CollectAndCount(itemsTotal); n != 1 {
		t.Errorf("zero-count items should not create a series, got %d series", n)
	}
}
