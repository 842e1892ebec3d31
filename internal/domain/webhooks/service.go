package webhooks

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/url"
	"slices"
	"strings"

	"ems/internal/domain/drafts"
	"ems/internal/platform/crypto"
)

// Events lists what a webhook may subscribe to.
var Events = []string{drafts.EventSubmitted, drafts.EventApproved, drafts.EventRejected}

const secretPrefix = "whsec_"

type Service struct {
	store  StoreAPI
	crypto *crypto.Service
}

func NewService(store StoreAPI, sealer *crypto.Service) *Service {
	return &Service{store: store, crypto: sealer}
}

func (s *Service) Create(ctx context.Context, tenantID, actorID string, input CreateInput) (Created, error) {
	target := strings.TrimSpace(input.URL)
	if err := validateURL(target); err != nil {
		return Created{}, err
	}
	events := make([]string, 0, len(input.Events))
	for _, evt := range input.Events {
		if !slices.Contains(Events, evt) {
			return Created{}, fmt.Errorf("%w: %s", ErrInvalidEvent, evt)
		}
		if !slices.Contains(events, evt) {
			events = append(events, evt)
		}
	}

	secret, err := newSecret()
	if err != nil {
		return Created{}, err
	}
	sealed, err := s.crypto.EncryptString(secret)
	if err != nil {
		return Created{}, fmt.Errorf("seal webhook secret: %w", err)
	}
	hook, err := s.store.Create(ctx, tenantID, actorID, target, events, sealed)
	if err != nil {
		return Created{}, err
	}
	return Created{Webhook: hook, Secret: secret}, nil
}

func (s *Service) List(ctx context.Context, tenantID string) ([]Webhook, error) {
	return s.store.List(ctx, tenantID)
}

func (s *Service) Delete(ctx context.Context, tenantID, webhookID string) error {
	return s.store.Delete(ctx, tenantID, webhookID)
}

func validateURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return ErrInvalidURL
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ErrInvalidURL
	}
	return nil
}

func newSecret() (string, error) {
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate webhook secret: %w", err)
	}
	return secretPrefix + hex.EncodeToString(buf), nil
}
