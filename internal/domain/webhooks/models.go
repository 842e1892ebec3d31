package webhooks

import "time"

type Webhook struct {
	ID        string    `json:"id"`
	TenantID  string    `json:"tenantId"`
	URL       string    `json:"url"`
	Events    []string  `json:"events"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"createdAt"`
}

// Endpoint is a webhook together with its sealed signing secret.
type Endpoint struct {
	Webhook
	SecretEnc []byte
}

type CreateInput struct {
	URL    string   `json:"url"`
	Events []string `json:"events"`
}

// Created is returned once, on registration. The plain secret is never
// readable again.
type Created struct {
	Webhook
	Secret string `json:"secret"`
}

type Payload struct {
	ID         string    `json:"id"`
	Event      string    `json:"event"`
	TenantID   string    `json:"tenantId"`
	EmployeeID int64     `json:"employeeId"`
	Status     string    `json:"status"`
	Comment    string    `json:"comment,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}

type Delivery struct {
	ID             string
	WebhookID      string
	Event          string
	Status         string
	Attempts       int
	ResponseStatus int
	LastError      string
}

const (
	DeliveryDelivered = "delivered"
	DeliveryFailed    = "failed"
)
