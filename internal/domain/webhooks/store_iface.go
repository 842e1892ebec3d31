package webhooks

import "context"

type StoreAPI interface {
	Create(ctx context.Context, tenantID, createdBy, url string, events []string, secretEnc []byte) (Webhook, error)
	List(ctx context.Context, tenantID string) ([]Webhook, error)
	Delete(ctx context.Context, tenantID, webhookID string) error
	Subscribed(ctx context.Context, tenantID, event string) ([]Endpoint, error)
	RecordDelivery(ctx context.Context, delivery Delivery) error
}
