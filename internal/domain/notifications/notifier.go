package notifications

import (
	"context"
	"fmt"
	"log/slog"

	"ems/internal/domain/drafts"
)

// Recipients resolves who hears about a submitted draft.
type Recipients interface {
	UsersWithPermission(ctx context.Context, tenantID, permission string) ([]string, error)
}

// DraftNotifier turns draft lifecycle events into in-app notifications:
// reviewers learn about submissions, authors learn about decisions.
type DraftNotifier struct {
	Service    *Service
	Recipients Recipients
	ReviewPerm string
}

func NewDraftNotifier(service *Service, recipients Recipients, reviewPerm string) *DraftNotifier {
	return &DraftNotifier{Service: service, Recipients: recipients, ReviewPerm: reviewPerm}
}

func (n *DraftNotifier) Publish(ctx context.Context, evt drafts.Event) error {
	switch evt.Type {
	case drafts.EventSubmitted:
		reviewers, err := n.Recipients.UsersWithPermission(ctx, evt.TenantID, n.ReviewPerm)
		if err != nil {
			return fmt.Errorf("resolve reviewers: %w", err)
		}
		body := fmt.Sprintf("A profile draft for employee %d is waiting for review.", evt.EmployeeID)
		for _, userID := range reviewers {
			if userID == evt.ActorID {
				continue
			}
			if err := n.Service.Create(ctx, evt.TenantID, userID, TypeDraftSubmitted, "Profile draft submitted", body); err != nil {
				slog.Warn("draft submitted notification failed", "tenantId", evt.TenantID, "userId", userID, "err", err)
			}
		}
	case drafts.EventApproved:
		if evt.AuthorID == "" {
			return nil
		}
		return n.Service.Create(ctx, evt.TenantID, evt.AuthorID, TypeDraftApproved, "Profile changes approved", "Your profile changes were approved and are now live.")
	case drafts.EventRejected:
		if evt.AuthorID == "" {
			return nil
		}
		body := "Your profile changes were rejected."
		if evt.Comment != "" {
			body = fmt.Sprintf("Your profile changes were rejected: %s", evt.Comment)
		}
		return n.Service.Create(ctx, evt.TenantID, evt.AuthorID, TypeDraftRejected, "Profile changes rejected", body)
	}
	return nil
}
