package metrics

import (
	"testing"
	"time"
)

func TestCollectorSnapshot(t *testing.T) {
	c := New()
	c.Record(200, 10*time.Millisecond)
	c.Record(503, 30*time.Millisecond)
	c.Record(429, 0)
	c.RecordDraftEvent("draft.approved")
	c.RecordDraftEvent("draft.approved")
	c.RecordWebhookDelivery(true)
	c.RecordWebhookDelivery(false)

	snap := c.Snapshot()
	if snap["requestsTotal"] != uint64(3) {
		t.Fatalf("expected 3 requests, got %v", snap["requestsTotal"])
	}
	if snap["errorsTotal"] != uint64(1) {
		t.Fatalf("expected 1 error, got %v", snap["errorsTotal"])
	}
	if snap["rateLimitedTotal"] != uint64(1) {
		t.Fatalf("expected 1 rate limited, got %v", snap["rateLimitedTotal"])
	}
	drafts := snap["draftEventsTotal"].(map[string]uint64)
	if drafts["draft.approved"] != 2 {
		t.Fatalf("expected 2 approvals, got %d", drafts["draft.approved"])
	}
	if snap["webhookDeliveredTotal"] != uint64(1) || snap["webhookFailedTotal"] != uint64(1) {
		t.Fatalf("unexpected webhook counters: %v", snap)
	}
}
