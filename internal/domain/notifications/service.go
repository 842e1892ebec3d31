package notifications

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

var ErrNotFound = errors.New("notification not found")

type Mailer interface {
	Send(ctx context.Context, from, to, subject, body string) error
}

// EmailSettings are the per-tenant rules for mirroring notifications by email.
type EmailSettings struct {
	Enabled bool   `json:"emailEnabled"`
	From    string `json:"emailFrom"`
}

// Service stores in-app notifications and mirrors them to the recipient's
// address when the tenant has email enabled. Mail failures are logged only.
type Service struct {
	store       StoreAPI
	mailer      Mailer
	defaultFrom string
}

func New(store StoreAPI, mailer Mailer, defaultFrom string) *Service {
	return &Service{store: store, mailer: mailer, defaultFrom: defaultFrom}
}

func (s *Service) Create(ctx context.Context, tenantID, userID, ntype, title, body string) error {
	if err := s.store.CreateNotification(ctx, tenantID, userID, ntype, title, body); err != nil {
		return fmt.Errorf("create notification: %w", err)
	}
	s.mirror(ctx, tenantID, userID, title, body)
	return nil
}

func (s *Service) mirror(ctx context.Context, tenantID, userID, title, body string) {
	if s.mailer == nil {
		return
	}
	settings, err := s.Settings(ctx, tenantID)
	if err != nil {
		slog.Warn("notification email settings lookup failed", "tenantId", tenantID, "err", err)
		return
	}
	if !settings.Enabled {
		return
	}
	from := settings.From
	if from == "" {
		from = s.defaultFrom
	}

	to, err := s.store.UserEmail(ctx, tenantID, userID)
	if err != nil {
		slog.Warn("notification email lookup failed", "tenantId", tenantID, "userId", userID, "err", err)
		return
	}
	if to == "" {
		return
	}
	if err := s.mailer.Send(ctx, from, to, title, body); err != nil {
		slog.Warn("notification email send failed", "tenantId", tenantID, "userId", userID, "err", err)
	}
}

func (s *Service) List(ctx context.Context, tenantID, userID string, limit, offset int) ([]Notification, error) {
	return s.store.ListNotifications(ctx, tenantID, userID, limit, offset)
}

func (s *Service) Count(ctx context.Context, tenantID, userID string) (int, error) {
	return s.store.CountNotifications(ctx, tenantID, userID)
}

func (s *Service) MarkRead(ctx context.Context, tenantID, userID, notificationID string) error {
	return s.store.MarkRead(ctx, tenantID, userID, notificationID)
}

// Settings returns the tenant's email settings. A tenant that never saved
// any has email disabled.
func (s *Service) Settings(ctx context.Context, tenantID string) (EmailSettings, error) {
	enabled, from, err := s.store.EmailSettings(ctx, tenantID)
	if err != nil {
		return EmailSettings{}, err
	}
	return EmailSettings{Enabled: enabled, From: from}, nil
}

func (s *Service) UpdateSettings(ctx context.Context, tenantID string, settings EmailSettings) error {
	return s.store.UpdateSettings(ctx, tenantID, settings.Enabled, strings.TrimSpace(settings.From))
}
