package draftshandler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"ems/internal/domain/audit"
	"ems/internal/domain/auth"
	"ems/internal/domain/drafts"
	"ems/internal/domain/profile"
	"ems/internal/transport/http/api"
	"ems/internal/transport/http/middleware"
	"ems/internal/transport/http/shared"
)

const maxCommentLength = 2000

// Auditor records who changed what. *audit.Service satisfies it.
type Auditor interface {
	Record(ctx context.Context, tenantID, actorID, action, entityType, entityID, requestID, ip string, before, after any) error
}

type Handler struct {
	Manager *drafts.Manager
	Audit   Auditor
	Perms   middleware.PermissionStore
}

func NewHandler(manager *drafts.Manager, auditor Auditor, perms middleware.PermissionStore) *Handler {
	return &Handler{Manager: manager, Audit: auditor, Perms: perms}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/drafts", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermDraftsReview, h.Perms)).Get("/", h.handleList)
		r.With(middleware.RequirePermission(auth.PermDraftsWrite, h.Perms)).Post("/", h.handleSave)
		r.With(middleware.RequirePermission(auth.PermProfileRead, h.Perms)).Get("/me", h.handleMine)
		r.With(middleware.RequirePermission(auth.PermDraftsWrite, h.Perms)).Post("/me/submit", h.handleSubmit)
		r.With(middleware.RequirePermission(auth.PermDraftsReview, h.Perms)).Get("/{employeeID}", h.handleReview)
		r.With(middleware.RequirePermission(auth.PermDraftsReview, h.Perms)).Get("/{employeeID}/report", h.handleReport)
		r.With(middleware.RequirePermission(auth.PermDraftsReview, h.Perms)).Post("/{employeeID}/approve", h.handleApprove)
		r.With(middleware.RequirePermission(auth.PermDraftsReview, h.Perms)).Post("/{employeeID}/reject", h.handleReject)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	requestID := middleware.GetRequestID(r.Context())

	status := strings.TrimSpace(r.URL.Query().Get("status"))
	v := shared.NewValidator()
	v.Enum("status", status, []string{profile.DraftStatusDraft, profile.DraftStatusPending, profile.DraftStatusApproved, profile.DraftStatusRejected}, "must be one of draft, pending, approved, rejected")
	if v.Reject(w, requestID) {
		return
	}

	page := shared.ParsePagination(r, drafts.DefaultListLimit, 200)
	items, total, err := h.Manager.List(r.Context(), user.TenantID, drafts.ListFilter{Status: strings.ToLower(status), Limit: page.Limit, Offset: page.Offset})
	if err != nil {
		writeDraftError(w, err, requestID)
		return
	}
	w.Header().Set("X-Total-Count", strconv.Itoa(total))
	api.Success(w, items, requestID)
}

type savePayload struct {
	EmployeeID int64           `json:"employeeId"`
	Profile    profile.Profile `json:"profile"`
}

func (h *Handler) handleSave(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	requestID := middleware.GetRequestID(r.Context())

	var payload savePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			api.Fail(w, http.StatusRequestEntityTooLarge, "payload_too_large", "request body too large", requestID)
			return
		}
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}
	if validateProfile(w, requestID, payload.Profile) {
		return
	}

	own, err := h.Manager.CurrentProfile(r.Context(), user.TenantID, user.UserID)
	if err != nil && !errors.Is(err, drafts.ErrEmployeeNotFound) {
		writeDraftError(w, err, requestID)
		return
	}
	employeeID := payload.EmployeeID
	if employeeID == 0 && own != nil {
		employeeID = own.ID
	}
	if employeeID == 0 {
		shared.FailValidation(w, requestID, []shared.ValidationIssue{{Field: "employeeId", Reason: "is required"}})
		return
	}
	if own == nil || own.ID != employeeID {
		if !h.allowed(r.Context(), user, auth.PermDraftsWriteAny) {
			api.Fail(w, http.StatusForbidden, "forbidden", "cannot edit another employee's profile", requestID)
			return
		}
	}

	saved, err := h.Manager.Save(r.Context(), user.TenantID, user.UserID, profile.EmployeeDraft{EmployeeID: employeeID, Profile: payload.Profile})
	if err != nil {
		writeDraftError(w, err, requestID)
		return
	}
	h.record(r, user, audit.ActionDraftSaved, saved, nil, saved)
	api.Success(w, saved, requestID)
}

func (h *Handler) handleMine(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	review, err := h.Manager.ReviewCurrent(r.Context(), user.TenantID, user.UserID)
	if err != nil {
		writeDraftError(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, review, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	requestID := middleware.GetRequestID(r.Context())

	own, err := h.Manager.CurrentProfile(r.Context(), user.TenantID, user.UserID)
	if err != nil {
		writeDraftError(w, err, requestID)
		return
	}
	submitted, err := h.Manager.Submit(r.Context(), user.TenantID, user.UserID, own.ID)
	if err != nil {
		writeDraftError(w, err, requestID)
		return
	}
	h.record(r, user, audit.ActionDraftSubmitted, submitted, map[string]string{"status": profile.DraftStatusDraft}, map[string]string{"status": submitted.Status})
	api.Success(w, submitted, requestID)
}

func (h *Handler) handleReview(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	requestID := middleware.GetRequestID(r.Context())
	employeeID, ok := shared.ParseID(chi.URLParam(r, "employeeID"))
	if !ok {
		api.Fail(w, http.StatusBadRequest, "invalid_id", "employee id must be a positive integer", requestID)
		return
	}

	review, err := h.Manager.Review(r.Context(), user.TenantID, employeeID)
	if err != nil {
		writeDraftError(w, err, requestID)
		return
	}
	api.Success(w, review, requestID)
}

func (h *Handler) handleReport(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	requestID := middleware.GetRequestID(r.Context())
	employeeID, ok := shared.ParseID(chi.URLParam(r, "employeeID"))
	if !ok {
		api.Fail(w, http.StatusBadRequest, "invalid_id", "employee id must be a positive integer", requestID)
		return
	}

	review, err := h.Manager.Review(r.Context(), user.TenantID, employeeID)
	if err != nil {
		writeDraftError(w, err, requestID)
		return
	}
	var buf bytes.Buffer
	if err := drafts.WriteReport(&buf, review); err != nil {
		slog.Error("draft report render failed", "tenantId", user.TenantID, "employeeId", employeeID, "err", err)
		api.Fail(w, http.StatusInternalServerError, "report_failed", "failed to render report", requestID)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=draft-review-%d.pdf", employeeID))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		slog.Warn("draft report write failed", "err", err)
	}
}

func (h *Handler) handleApprove(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	requestID := middleware.GetRequestID(r.Context())
	employeeID, ok := shared.ParseID(chi.URLParam(r, "employeeID"))
	if !ok {
		api.Fail(w, http.StatusBadRequest, "invalid_id", "employee id must be a positive integer", requestID)
		return
	}

	approved, err := h.Manager.Approve(r.Context(), user.TenantID, user.UserID, employeeID)
	if err != nil {
		writeDraftError(w, err, requestID)
		return
	}
	h.record(r, user, audit.ActionDraftApproved, approved, nil, map[string]string{"status": approved.Status})
	api.Success(w, approved, requestID)
}

func (h *Handler) handleReject(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	requestID := middleware.GetRequestID(r.Context())
	employeeID, ok := shared.ParseID(chi.URLParam(r, "employeeID"))
	if !ok {
		api.Fail(w, http.StatusBadRequest, "invalid_id", "employee id must be a positive integer", requestID)
		return
	}

	var payload struct {
		Comment string `json:"comment"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil && !errors.Is(err, io.EOF) {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}
	comment := strings.TrimSpace(payload.Comment)
	v := shared.NewValidator()
	v.MaxLen("comment", comment, maxCommentLength)
	if v.Reject(w, requestID) {
		return
	}

	rejected, err := h.Manager.Reject(r.Context(), user.TenantID, user.UserID, employeeID, comment)
	if err != nil {
		writeDraftError(w, err, requestID)
		return
	}
	h.record(r, user, audit.ActionDraftRejected, rejected, nil, map[string]string{"status": rejected.Status, "comment": comment})
	api.Success(w, rejected, requestID)
}

func (h *Handler) allowed(ctx context.Context, user auth.UserContext, permission string) bool {
	if h.Perms == nil {
		return auth.Allowed(user.RoleName, permission)
	}
	ok, err := h.Perms.HasPermission(ctx, user.RoleID, permission)
	if err != nil {
		slog.Warn("permission check failed", "roleId", user.RoleID, "permission", permission, "err", err)
		return false
	}
	return ok
}

func (h *Handler) record(r *http.Request, user auth.UserContext, action string, draft *profile.EmployeeDraft, before, after any) {
	if h.Audit == nil || draft == nil {
		return
	}
	entityID := strconv.FormatInt(draft.EmployeeID, 10)
	if err := h.Audit.Record(r.Context(), user.TenantID, user.UserID, action, audit.EntityEmployeeDraft, entityID, middleware.GetRequestID(r.Context()), middleware.ClientIP(r), before, after); err != nil {
		slog.Warn("audit record failed", "action", action, "entityId", entityID, "err", err)
	}
}

func writeDraftError(w http.ResponseWriter, err error, requestID string) {
	var idErr *drafts.IdentityError
	if errors.As(err, &idErr) {
		shared.FailValidation(w, requestID, []shared.ValidationIssue{{Field: idErr.Field, Reason: idErr.Reason}})
		return
	}
	switch {
	case errors.Is(err, drafts.ErrMissingDraft):
		api.Fail(w, http.StatusNotFound, "draft_not_found", "no open draft for this employee", requestID)
	case errors.Is(err, drafts.ErrEmployeeNotFound):
		api.Fail(w, http.StatusNotFound, "employee_not_found", "employee not found", requestID)
	case errors.Is(err, drafts.ErrInvalidState):
		api.Fail(w, http.StatusConflict, "invalid_state", "draft is not in a state that allows this action", requestID)
	case errors.Is(err, drafts.ErrFetchFailure):
		slog.Error("draft fetch failed", "err", err)
		api.Fail(w, http.StatusBadGateway, "fetch_failed", "failed to load profile data", requestID)
	case errors.Is(err, drafts.ErrPersistFailure):
		slog.Error("draft persist failed", "err", err)
		api.Fail(w, http.StatusInternalServerError, "persist_failed", "failed to save draft", requestID)
	default:
		slog.Error("draft request failed", "err", err)
		api.Fail(w, http.StatusInternalServerError, "internal_error", "unexpected error", requestID)
	}
}
