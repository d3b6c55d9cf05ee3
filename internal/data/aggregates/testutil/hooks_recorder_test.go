package testutil

import (
	"testing"
	"time"
)

func TestHooksRecorder_CapturesSignals(t *testing.T) {
	h := &HooksRecorder{}
	h.ObserveOperation("agg.op", "success", 10*time.Millisecond)
	h.IncConflict("agg.op")
	h.IncRetry("agg.op")

	if len(h.Operations) != 1 {
		t.Fatalf("expected 1 op event, got %d", len(h.Operations))
	}
	if h.Operations[0].Name != "agg.op" || h.Operations[0].Status != "success" {
		t.Fatalf("unexpected op event: %+v", h.Operations[0])
	}
	if len(h.Conflicts) != 1 || h.Conflicts[0] != "agg.op" {
		t.Fatalf("unexpected conflicts: %+v", h.Conflicts)
	}
	if len(h.Retries) != 1 || h.Retries[0] != "agg.op" {
		t.Fatalf("unexpected retries: %+v", h.Retries)
	}
}

func TestHooksRecorder_StatusCount(t *testing.T) {
	h := &HooksRecorder{}
	h.ObserveOperation("aggregate.lesson.move", "success", 0)
	h.ObserveOperation("aggregate.lesson.move", "out_of_range", 0)
	h.ObserveOperation("aggregate.lesson.move", "success", 0)
	h.ObserveOperation("aggregate.lesson.insert", "success", 0)

	if got := h.StatusCount("aggregate.lesson.move", "success"); got != 2 {
		t.Fatalf("success count: want=2 got=%d", got)
	}
	if got := h.StatusCount("aggregate.lesson.move", "out_of_range"); got != 1 {
		t.Fatalf("out_of_range count: want=1 got=%d", got)
	}
}
