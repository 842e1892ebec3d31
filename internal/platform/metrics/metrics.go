package metrics

import (
	"sync"
	"sync/atomic"
	"time"
)

type Collector struct {
	totalRequests   uint64
	errorRequests   uint64
	rateLimited     uint64
	totalDurationMs uint64

	webhookDelivered uint64
	webhookFailed    uint64

	mu     sync.Mutex
	drafts map[string]uint64
}

func New() *Collector {
	return &Collector{drafts: map[string]uint64{}}
}

func (c *Collector) Record(status int, duration time.Duration) {
	atomic.AddUint64(&c.totalRequests, 1)
	if status >= 500 {
		atomic.AddUint64(&c.errorRequests, 1)
	}
	if status == 429 {
		atomic.AddUint64(&c.rateLimited, 1)
	}
	atomic.AddUint64(&c.totalDurationMs, uint64(duration.Milliseconds()))
}

// RecordDraftEvent counts a draft lifecycle transition by event type.
func (c *Collector) RecordDraftEvent(eventType string) {
	c.mu.Lock()
	c.drafts[eventType]++
	c.mu.Unlock()
}

func (c *Collector) RecordWebhookDelivery(ok bool) {
	if ok {
		atomic.AddUint64(&c.webhookDelivered, 1)
		return
	}
	atomic.AddUint64(&c.webhookFailed, 1)
}

func (c *Collector) Snapshot() map[string]any {
	total := atomic.LoadUint64(&c.totalRequests)
	errs := atomic.LoadUint64(&c.errorRequests)
	limited := atomic.LoadUint64(&c.rateLimited)
	totalMs := atomic.LoadUint64(&c.totalDurationMs)
	avg := float64(0)
	if total > 0 {
		avg = float64(totalMs) / float64(total)
	}

	c.mu.Lock()
	drafts := make(map[string]uint64, len(c.drafts))
	for k, v := range c.drafts {
		drafts[k] = v
	}
	c.mu.Unlock()

	return map[string]any{
		"requestsTotal":         total,
		"errorsTotal":           errs,
		"rateLimitedTotal":      limited,
		"avgDurationMs":         avg,
		"totalDurationMs":       totalMs,
		"draftEventsTotal":      drafts,
		"webhookDeliveredTotal": atomic.LoadUint64(&c.webhookDelivered),
		"webhookFailedTotal":    atomic.LoadUint64(&c.webhookFailed),
	}
}
