package drafts

import (
	"context"
	"log/slog"
	"time"
)

const (
	EventSubmitted = "draft.submitted"
	EventApproved  = "draft.approved"
	EventRejected  = "draft.rejected"
)

// Event describes a completed lifecycle transition.
type Event struct {
	Type       string
	TenantID   string
	EmployeeID int64
	DraftID    int64
	Status     string
	Comment    string
	ActorID    string
	AuthorID   string
	OccurredAt time.Time
}

type EventPublisher interface {
	Publish(ctx context.Context, evt Event) error
}

type PublisherFunc func(ctx context.Context, evt Event) error

func (f PublisherFunc) Publish(ctx context.Context, evt Event) error {
	return f(ctx, evt)
}

// Publishers fans an event out to every publisher. A failing publisher is
// logged and does not stop the others.
type Publishers []EventPublisher

func (ps Publishers) Publish(ctx context.Context, evt Event) error {
	for _, p := range ps {
		if p == nil {
			continue
		}
		if err := p.Publish(ctx, evt); err != nil {
			slog.Warn("draft event publish failed", "event", evt.Type, "tenantId", evt.TenantID, "employeeId", evt.EmployeeID, "err", err)
		}
	}
	return nil
}
