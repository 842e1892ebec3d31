package profilehandler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"ems/internal/domain/auth"
	"ems/internal/domain/drafts"
	"ems/internal/transport/http/api"
	"ems/internal/transport/http/middleware"
	"ems/internal/transport/http/shared"
)

// Handler serves live employee profiles. Edits go through the drafts routes.
type Handler struct {
	Manager *drafts.Manager
	Perms   middleware.PermissionStore
}

func NewHandler(manager *drafts.Manager, perms middleware.PermissionStore) *Handler {
	return &Handler{Manager: manager, Perms: perms}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/me", h.handleMe)
	r.With(middleware.RequirePermission(auth.PermProfileRead, h.Perms)).Get("/profile/me", h.handleOwnProfile)
	r.With(middleware.RequirePermission(auth.PermEmployeesRead, h.Perms)).Get("/employees/{employeeID}/profile", h.handleEmployeeProfile)
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	emp, err := h.Manager.CurrentProfile(r.Context(), user.TenantID, user.UserID)
	if err != nil && !errors.Is(err, drafts.ErrEmployeeNotFound) {
		slog.Warn("current profile lookup failed", "userId", user.UserID, "err", err)
	}

	api.Success(w, map[string]any{
		"user": map[string]string{
			"id":       user.UserID,
			"tenantId": user.TenantID,
			"roleId":   user.RoleID,
			"role":     user.RoleName,
		},
		"employee": emp,
	}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleOwnProfile(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	emp, err := h.Manager.CurrentProfile(r.Context(), user.TenantID, user.UserID)
	if err != nil {
		writeProfileError(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, emp, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleEmployeeProfile(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	requestID := middleware.GetRequestID(r.Context())
	employeeID, ok := shared.ParseID(chi.URLParam(r, "employeeID"))
	if !ok {
		api.Fail(w, http.StatusBadRequest, "invalid_id", "employee id must be a positive integer", requestID)
		return
	}

	emp, err := h.Manager.Profile(r.Context(), user.TenantID, employeeID)
	if err != nil {
		writeProfileError(w, err, requestID)
		return
	}
	filterEmployeeFields(emp, user, emp.UserID == user.UserID, h.canEditAny(r.Context(), user))
	api.Success(w, emp, requestID)
}

func writeProfileError(w http.ResponseWriter, err error, requestID string) {
	if errors.Is(err, drafts.ErrEmployeeNotFound) {
		api.Fail(w, http.StatusNotFound, "employee_not_found", "employee not found", requestID)
		return
	}
	slog.Error("profile fetch failed", "err", err)
	api.Fail(w, http.StatusBadGateway, "fetch_failed", "failed to load profile data", requestID)
}
