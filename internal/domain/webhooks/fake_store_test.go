package webhooks

import (
	"context"
	"sync"
	"time"
)

type fakeStore struct {
	mu         sync.Mutex
	hooks      []Endpoint
	deliveries []Delivery
}

func (f *fakeStore) Create(ctx context.Context, tenantID, createdBy, url string, events []string, secretEnc []byte) (Webhook, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	w := Webhook{ID: "wh-" + url, TenantID: tenantID, URL: url, Events: events, Active: true, CreatedAt: time.Now()}
	f.hooks = append(f.hooks, Endpoint{Webhook: w, SecretEnc: secretEnc})
	return w, nil
}

func (f *fakeStore) List(ctx context.Context, tenantID string) ([]Webhook, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []Webhook{}
	for _, h := range f.hooks {
		out = append(out, h.Webhook)
	}
	return out, nil
}

func (f *fakeStore) Delete(ctx context.Context, tenantID, webhookID string) error {
	return ErrNotFound
}

func (f *fakeStore) Subscribed(ctx context.Context, tenantID, event string) ([]Endpoint, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Endpoint
	for _, h := range f.hooks {
		if len(h.Events) == 0 {
			out = append(out, h)
			continue
		}
		for _, e := range h.Events {
			if e == event {
				out = append(out, h)
			}
		}
	}
	return out, nil
}

func (f *fakeStore) RecordDelivery(ctx context.Context, d Delivery) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deliveries = append(f.deliveries, d)
	return nil
}

// inlineJobs runs enqueued work immediately.
type inlineJobs struct {
	runs int
}

func (j *inlineJobs) Enqueue(jobType, tenantID string, run func(context.Context) (any, error)) bool {
	j.runs++
	_, _ = run(context.Background())
	return true
}
