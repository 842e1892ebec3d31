package drafts

import (
	"context"

	"ems/internal/domain/profile"
)

// Repository is the persistence collaborator of the Manager. Lookups of a
// draft return a nil draft and a nil error when the employee has none.
// Transitions return ErrMissingDraft or ErrInvalidState when the current row
// does not allow them.
type Repository interface {
	EmployeeProfile(ctx context.Context, tenantID string, employeeID int64) (*profile.Employee, error)
	CurrentUserProfile(ctx context.Context, tenantID, userID string) (*profile.Employee, error)
	DraftByEmployeeID(ctx context.Context, tenantID string, employeeID int64) (*profile.EmployeeDraft, error)
	CurrentEmployeeDraft(ctx context.Context, tenantID, userID string) (*profile.EmployeeDraft, error)
	SaveDraft(ctx context.Context, tenantID string, draft *profile.EmployeeDraft) (*profile.EmployeeDraft, error)
	SubmitDraft(ctx context.Context, tenantID string, employeeID int64) (*profile.EmployeeDraft, error)
	ApproveDraft(ctx context.Context, tenantID string, employeeID int64, reviewerID string) (*profile.EmployeeDraft, error)
	RejectDraft(ctx context.Context, tenantID string, employeeID int64, reviewerID, comment string) (*profile.EmployeeDraft, error)
	ListDrafts(ctx context.Context, tenantID string, filter ListFilter) ([]Pair, int, error)
}
