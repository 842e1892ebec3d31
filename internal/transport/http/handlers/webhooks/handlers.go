package webhookshandler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"ems/internal/domain/audit"
	"ems/internal/domain/auth"
	"ems/internal/domain/webhooks"
	"ems/internal/transport/http/api"
	"ems/internal/transport/http/middleware"
)

type Auditor interface {
	Record(ctx context.Context, tenantID, actorID, action, entityType, entityID, requestID, ip string, before, after any) error
}

type Handler struct {
	Service *webhooks.Service
	Audit   Auditor
	Perms   middleware.PermissionStore
}

func NewHandler(service *webhooks.Service, auditor Auditor, perms middleware.PermissionStore) *Handler {
	return &Handler{Service: service, Audit: auditor, Perms: perms}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/webhooks", func(r chi.Router) {
		r.Use(middleware.RequirePermission(auth.PermWebhooksManage, h.Perms))
		r.Get("/", h.handleList)
		r.Post("/", h.handleCreate)
		r.Delete("/{webhookID}", h.handleDelete)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	requestID := middleware.GetRequestID(r.Context())

	hooks, err := h.Service.List(r.Context(), user.TenantID)
	if err != nil {
		slog.Error("webhook list failed", "tenantId", user.TenantID, "err", err)
		api.Fail(w, http.StatusInternalServerError, "webhook_list_failed", "failed to list webhooks", requestID)
		return
	}
	w.Header().Set("X-Total-Count", strconv.Itoa(len(hooks)))
	api.Success(w, hooks, requestID)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	requestID := middleware.GetRequestID(r.Context())

	var payload webhooks.CreateInput
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}

	created, err := h.Service.Create(r.Context(), user.TenantID, user.UserID, payload)
	if err != nil {
		switch {
		case errors.Is(err, webhooks.ErrInvalidURL):
			api.FailWithDetails(w, http.StatusBadRequest, "validation_error", "payload validation failed", map[string]any{"fields": []map[string]string{{"field": "url", "reason": err.Error()}}}, requestID)
		case errors.Is(err, webhooks.ErrInvalidEvent):
			api.FailWithDetails(w, http.StatusBadRequest, "validation_error", "payload validation failed", map[string]any{"fields": []map[string]string{{"field": "events", "reason": err.Error()}}}, requestID)
		default:
			slog.Error("webhook create failed", "tenantId", user.TenantID, "err", err)
			api.Fail(w, http.StatusInternalServerError, "webhook_create_failed", "failed to create webhook", requestID)
		}
		return
	}

	h.record(r, user, audit.ActionWebhookCreated, created.ID, nil, created.Webhook)
	api.Created(w, created, requestID)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	requestID := middleware.GetRequestID(r.Context())
	webhookID := chi.URLParam(r, "webhookID")

	if err := h.Service.Delete(r.Context(), user.TenantID, webhookID); err != nil {
		if errors.Is(err, webhooks.ErrNotFound) {
			api.Fail(w, http.StatusNotFound, "not_found", "webhook not found", requestID)
			return
		}
		slog.Error("webhook delete failed", "tenantId", user.TenantID, "webhookId", webhookID, "err", err)
		api.Fail(w, http.StatusInternalServerError, "webhook_delete_failed", "failed to delete webhook", requestID)
		return
	}

	h.record(r, user, audit.ActionWebhookDeleted, webhookID, map[string]string{"id": webhookID}, nil)
	api.Success(w, map[string]string{"status": "deleted"}, requestID)
}

func (h *Handler) record(r *http.Request, user auth.UserContext, action, entityID string, before, after any) {
	if h.Audit == nil {
		return
	}
	if err := h.Audit.Record(r.Context(), user.TenantID, user.UserID, action, audit.EntityWebhook, entityID, middleware.GetRequestID(r.Context()), middleware.ClientIP(r), before, after); err != nil {
		slog.Warn("audit record failed", "action", action, "entityId", entityID, "err", err)
	}
}
