package webhooks

import (
	"context"

	"ems/internal/platform/db"
)

type Store struct {
	DB db.Querier
}

func NewStore(q db.Querier) *Store {
	return &Store{DB: q}
}

var _ StoreAPI = (*Store)(nil)

const webhookColumns = `id::text, tenant_id::text, url, events, active, created_at`

func (s *Store) Create(ctx context.Context, tenantID, createdBy, url string, events []string, secretEnc []byte) (Webhook, error) {
	var w Webhook
	err := s.DB.QueryRow(ctx, `
    INSERT INTO webhooks (tenant_id, url, events, secret_enc, created_by)
    VALUES ($1,$2,$3,$4,$5)
    RETURNING `+webhookColumns+`
  `, tenantID, url, events, secretEnc, nullIfEmpty(createdBy)).Scan(&w.ID, &w.TenantID, &w.URL, &w.Events, &w.Active, &w.CreatedAt)
	return w, err
}

func (s *Store) List(ctx context.Context, tenantID string) ([]Webhook, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT `+webhookColumns+`
    FROM webhooks
    WHERE tenant_id = $1
    ORDER BY created_at
  `, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Webhook{}
	for rows.Next() {
		var w Webhook
		if err := rows.Scan(&w.ID, &w.TenantID, &w.URL, &w.Events, &w.Active, &w.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

func (s *Store) Delete(ctx context.Context, tenantID, webhookID string) error {
	tag, err := s.DB.Exec(ctx, "DELETE FROM webhooks WHERE tenant_id = $1 AND id::text = $2", tenantID, webhookID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Subscribed lists active webhooks for event. A webhook with no events
// listed receives all of them.
func (s *Store) Subscribed(ctx context.Context, tenantID, event string) ([]Endpoint, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT `+webhookColumns+`, secret_enc
    FROM webhooks
    WHERE tenant_id = $1 AND active AND (cardinality(events) = 0 OR $2 = ANY(events))
    ORDER BY created_at
  `, tenantID, event)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Endpoint
	for rows.Next() {
		var e Endpoint
		if err := rows.Scan(&e.ID, &e.TenantID, &e.URL, &e.Events, &e.Active, &e.CreatedAt, &e.SecretEnc); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *Store) RecordDelivery(ctx context.Context, d Delivery) error {
	_, err := s.DB.Exec(ctx, `
    INSERT INTO webhook_deliveries (id, webhook_id, event, status, attempts, response_status, last_error, completed_at)
    VALUES ($1,$2,$3,$4,$5,$6,$7, now())
  `, d.ID, d.WebhookID, d.Event, d.Status, d.Attempts, nullIfZero(d.ResponseStatus), d.LastError)
	return err
}

func nullIfEmpty(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullIfZero(value int) any {
	if value == 0 {
		return nil
	}
	return value
}
