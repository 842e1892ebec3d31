package drafts

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"ems/internal/domain/profile"
)

const DefaultListLimit = 50

// Manager drives the draft lifecycle of an employee profile.
type Manager struct {
	Repo      Repository
	Publisher EventPublisher
	now       func() time.Time
}

func NewManager(repo Repository, publisher EventPublisher) *Manager {
	return &Manager{Repo: repo, Publisher: publisher, now: time.Now}
}

// Save stores draft as a working copy. The status is always reset to draft,
// so a pending draft that is edited again has to be resubmitted. Nested
// records may only carry ids the live record already has.
func (m *Manager) Save(ctx context.Context, tenantID, authorID string, draft profile.EmployeeDraft) (*profile.EmployeeDraft, error) {
	live, err := m.Repo.EmployeeProfile(ctx, tenantID, draft.EmployeeID)
	if err != nil {
		return nil, fetchErr(err)
	}
	if err := checkIdentity(&live.Profile, &draft.Profile); err != nil {
		return nil, err
	}

	draft.TenantID = tenantID
	draft.AuthorID = authorID
	draft.Status = profile.DraftStatusDraft
	draft.ReviewerID = ""
	draft.ReviewComment = ""
	draft.ReviewedAt = nil

	saved, err := m.Repo.SaveDraft(ctx, tenantID, &draft)
	if err != nil {
		return nil, persistErr(err)
	}
	return saved, nil
}

func (m *Manager) Submit(ctx context.Context, tenantID, actorID string, employeeID int64) (*profile.EmployeeDraft, error) {
	draft, err := m.Repo.SubmitDraft(ctx, tenantID, employeeID)
	if err != nil {
		return nil, persistErr(err)
	}
	m.publish(ctx, EventSubmitted, tenantID, actorID, draft)
	return draft, nil
}

// Approve promotes the employee's draft to the live record in a single
// repository call. Failures are reported, never retried.
func (m *Manager) Approve(ctx context.Context, tenantID, reviewerID string, employeeID int64) (*profile.EmployeeDraft, error) {
	draft, err := m.Repo.ApproveDraft(ctx, tenantID, employeeID, reviewerID)
	if err != nil {
		return nil, persistErr(err)
	}
	m.publish(ctx, EventApproved, tenantID, reviewerID, draft)
	return draft, nil
}

// Reject archives the employee's draft with an optional comment. The live
// record is left untouched.
func (m *Manager) Reject(ctx context.Context, tenantID, reviewerID string, employeeID int64, comment string) (*profile.EmployeeDraft, error) {
	draft, err := m.Repo.RejectDraft(ctx, tenantID, employeeID, reviewerID, comment)
	if err != nil {
		return nil, persistErr(err)
	}
	m.publish(ctx, EventRejected, tenantID, reviewerID, draft)
	return draft, nil
}

// Review loads the live record and the open draft of an employee and
// compares them.
func (m *Manager) Review(ctx context.Context, tenantID string, employeeID int64) (*Review, error) {
	employee, err := m.Repo.EmployeeProfile(ctx, tenantID, employeeID)
	if err != nil {
		return nil, fetchErr(err)
	}
	draft, err := m.Repo.DraftByEmployeeID(ctx, tenantID, employeeID)
	if err != nil {
		return nil, fetchErr(err)
	}
	return buildReview(employee, draft)
}

// ReviewCurrent is Review for the employee owned by userID.
func (m *Manager) ReviewCurrent(ctx context.Context, tenantID, userID string) (*Review, error) {
	employee, err := m.Repo.CurrentUserProfile(ctx, tenantID, userID)
	if err != nil {
		return nil, fetchErr(err)
	}
	draft, err := m.Repo.CurrentEmployeeDraft(ctx, tenantID, userID)
	if err != nil {
		return nil, fetchErr(err)
	}
	return buildReview(employee, draft)
}

// Profile returns the live record of an employee.
func (m *Manager) Profile(ctx context.Context, tenantID string, employeeID int64) (*profile.Employee, error) {
	employee, err := m.Repo.EmployeeProfile(ctx, tenantID, employeeID)
	if err != nil {
		return nil, fetchErr(err)
	}
	return employee, nil
}

func (m *Manager) CurrentProfile(ctx context.Context, tenantID, userID string) (*profile.Employee, error) {
	employee, err := m.Repo.CurrentUserProfile(ctx, tenantID, userID)
	if err != nil {
		return nil, fetchErr(err)
	}
	return employee, nil
}

// List summarizes drafts with their change counts.
func (m *Manager) List(ctx context.Context, tenantID string, filter ListFilter) ([]Summary, int, error) {
	if filter.Limit <= 0 {
		filter.Limit = DefaultListLimit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	pairs, total, err := m.Repo.ListDrafts(ctx, tenantID, filter)
	if err != nil {
		return nil, 0, fetchErr(err)
	}
	out := make([]Summary, 0, len(pairs))
	for _, p := range pairs {
		if p.Draft == nil {
			continue
		}
		sections := profile.ChangedSections(p.Employee, p.Draft)
		out = append(out, Summary{
			DraftID:         p.Draft.ID,
			EmployeeID:      p.Draft.EmployeeID,
			FullName:        displayName(p),
			Status:          p.Draft.Status,
			AuthorID:        p.Draft.AuthorID,
			ChangeCount:     len(sections),
			ChangedSections: sections,
			UpdatedAt:       p.Draft.UpdatedAt,
		})
	}
	return out, total, nil
}

func (m *Manager) publish(ctx context.Context, eventType, tenantID, actorID string, draft *profile.EmployeeDraft) {
	if m.Publisher == nil || draft == nil {
		return
	}
	evt := Event{
		Type:       eventType,
		TenantID:   tenantID,
		EmployeeID: draft.EmployeeID,
		DraftID:    draft.ID,
		Status:     draft.Status,
		Comment:    draft.ReviewComment,
		ActorID:    actorID,
		AuthorID:   draft.AuthorID,
		OccurredAt: m.now().UTC(),
	}
	if err := m.Publisher.Publish(ctx, evt); err != nil {
		slog.Warn("draft event publish failed", "event", evt.Type, "tenantId", tenantID, "employeeId", evt.EmployeeID, "err", err)
	}
}

func buildReview(employee *profile.Employee, draft *profile.EmployeeDraft) (*Review, error) {
	if employee == nil {
		return nil, fmt.Errorf("%w: %w", ErrFetchFailure, ErrEmployeeNotFound)
	}
	if !draft.Open() {
		return nil, ErrMissingDraft
	}
	return &Review{
		Employee:   employee,
		Draft:      draft,
		Comparison: profile.Compare(employee, draft),
	}, nil
}

func displayName(p Pair) string {
	if p.Draft.FullName != "" {
		return p.Draft.FullName
	}
	if p.Employee != nil {
		return p.Employee.FullName
	}
	return ""
}

func fetchErr(err error) error {
	if errors.Is(err, ErrFetchFailure) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrFetchFailure, err)
}

// persistErr passes state errors through and wraps everything else.
func persistErr(err error) error {
	if errors.Is(err, ErrMissingDraft) || errors.Is(err, ErrInvalidState) || errors.Is(err, ErrEmployeeNotFound) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrPersistFailure, err)
}
