package profilehandler

import (
	"context"
	"log/slog"

	"ems/internal/domain/auth"
	"ems/internal/domain/profile"
)

// filterEmployeeFields strips personal data from a profile viewed by someone
// who is neither the employee nor allowed to edit any profile.
func filterEmployeeFields(emp *profile.Employee, user auth.UserContext, isSelf, canEditAny bool) {
	if emp == nil || isSelf || canEditAny {
		return
	}
	emp.Address = ""
	emp.DateOfBirth = nil
	emp.Document = nil
	emp.Children = []profile.Child{}
}

func (h *Handler) canEditAny(ctx context.Context, user auth.UserContext) bool {
	if h.Perms == nil {
		return auth.Allowed(user.RoleName, auth.PermDraftsWriteAny)
	}
	ok, err := h.Perms.HasPermission(ctx, user.RoleID, auth.PermDraftsWriteAny)
	if err != nil {
		slog.Warn("permission check failed", "roleId", user.RoleID, "permission", auth.PermDraftsWriteAny, "err", err)
		return false
	}
	return ok
}
