package webhooks

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"ems/internal/domain/drafts"
	"ems/internal/platform/crypto"
	"ems/internal/platform/jobs"
)

// Enqueuer is the part of jobs.Service the dispatcher needs.
type Enqueuer interface {
	Enqueue(jobType, tenantID string, run func(context.Context) (any, error)) bool
}

// DeliveryRecorder observes delivery outcomes, typically the metrics collector.
type DeliveryRecorder interface {
	RecordWebhookDelivery(ok bool)
}

// Dispatcher publishes draft events to subscribed webhooks. Each delivery
// runs as a background job with its own retry loop.
type Dispatcher struct {
	Store      StoreAPI
	Crypto     *crypto.Service
	Jobs       Enqueuer
	Client     *http.Client
	MaxRetries int
	Backoff    time.Duration
	Recorder   DeliveryRecorder
}

func NewDispatcher(store StoreAPI, sealer *crypto.Service, queue Enqueuer, timeout time.Duration, maxRetries int) *Dispatcher {
	return &Dispatcher{
		Store:      store,
		Crypto:     sealer,
		Jobs:       queue,
		Client:     &http.Client{Timeout: timeout},
		MaxRetries: maxRetries,
		Backoff:    time.Second,
	}
}

var _ drafts.EventPublisher = (*Dispatcher)(nil)

func (d *Dispatcher) Publish(ctx context.Context, evt drafts.Event) error {
	endpoints, err := d.Store.Subscribed(ctx, evt.TenantID, evt.Type)
	if err != nil {
		return fmt.Errorf("list webhooks: %w", err)
	}
	for _, endpoint := range endpoints {
		ep := endpoint
		payload := Payload{
			ID:         uuid.NewString(),
			Event:      evt.Type,
			TenantID:   evt.TenantID,
			EmployeeID: evt.EmployeeID,
			Status:     evt.Status,
			Comment:    evt.Comment,
			OccurredAt: evt.OccurredAt,
		}
		d.Jobs.Enqueue(jobs.JobWebhookDelivery, evt.TenantID, func(ctx context.Context) (any, error) {
			delivery, err := d.Deliver(ctx, ep, payload)
			return map[string]any{
				"webhookId":  ep.ID,
				"deliveryId": delivery.ID,
				"attempts":   delivery.Attempts,
				"status":     delivery.Status,
			}, err
		})
	}
	return nil
}

// Deliver posts payload to the endpoint, retrying network errors, 429 and
// 5xx responses up to MaxRetries times. The outcome is recorded in
// webhook_deliveries.
func (d *Dispatcher) Deliver(ctx context.Context, ep Endpoint, payload Payload) (Delivery, error) {
	delivery := Delivery{ID: payload.ID, WebhookID: ep.ID, Event: payload.Event}

	secret, err := d.Crypto.DecryptString(ep.SecretEnc)
	if err != nil {
		return d.finish(ctx, delivery, fmt.Errorf("open webhook secret: %w", err))
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return d.finish(ctx, delivery, err)
	}

	var lastErr error
	for attempt := 0; attempt <= d.MaxRetries; attempt++ {
		if attempt > 0 {
			if err := sleep(ctx, time.Duration(attempt)*d.Backoff); err != nil {
				lastErr = err
				break
			}
		}
		delivery.Attempts++
		status, err := d.post(ctx, ep.URL, secret, payload, body)
		delivery.ResponseStatus = status
		if err == nil {
			return d.finish(ctx, delivery, nil)
		}
		lastErr = err
		if status != 0 && status < 500 && status != http.StatusTooManyRequests {
			break
		}
	}
	return d.finish(ctx, delivery, lastErr)
}

func (d *Dispatcher) post(ctx context.Context, target, secret string, payload Payload, body []byte) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "ems-webhooks/1.0")
	req.Header.Set(HeaderEvent, payload.Event)
	req.Header.Set(HeaderDelivery, payload.ID)
	req.Header.Set(HeaderSignature, Sign(secret, body))

	resp, err := d.Client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp.StatusCode, nil
	}
	return resp.StatusCode, fmt.Errorf("HTTP %d", resp.StatusCode)
}

func (d *Dispatcher) finish(ctx context.Context, delivery Delivery, deliveryErr error) (Delivery, error) {
	delivery.Status = DeliveryDelivered
	if deliveryErr != nil {
		delivery.Status = DeliveryFailed
		delivery.LastError = deliveryErr.Error()
		slog.Warn("webhook delivery failed", "webhookId", delivery.WebhookID, "deliveryId", delivery.ID, "attempts", delivery.Attempts, "err", deliveryErr)
	}
	if d.Recorder != nil {
		d.Recorder.RecordWebhookDelivery(deliveryErr == nil)
	}
	if err := d.Store.RecordDelivery(ctx, delivery); err != nil {
		slog.Warn("webhook delivery record failed", "deliveryId", delivery.ID, "err", err)
	}
	return delivery, deliveryErr
}

func sleep(ctx context.Context, wait time.Duration) error {
	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
