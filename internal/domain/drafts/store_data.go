package drafts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"ems/internal/domain/profile"
	"ems/internal/platform/db"
)

func (s *Store) EmployeeProfile(ctx context.Context, tenantID string, employeeID int64) (*profile.Employee, error) {
	employee, err := scanEmployee(s.DB.QueryRow(ctx, `
    SELECT `+employeeColumns+`
    FROM employees e
    WHERE e.tenant_id = $1 AND e.id = $2
  `, tenantID, employeeID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrEmployeeNotFound
	}
	return employee, err
}

func (s *Store) CurrentUserProfile(ctx context.Context, tenantID, userID string) (*profile.Employee, error) {
	employee, err := scanEmployee(s.DB.QueryRow(ctx, `
    SELECT `+employeeColumns+`
    FROM employees e
    WHERE e.tenant_id = $1 AND e.user_id = $2
  `, tenantID, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrEmployeeNotFound
	}
	return employee, err
}

func (s *Store) DraftByEmployeeID(ctx context.Context, tenantID string, employeeID int64) (*profile.EmployeeDraft, error) {
	draft, err := scanDraft(s.DB.QueryRow(ctx, `
    SELECT `+draftColumns+`
    FROM employee_drafts d
    WHERE d.tenant_id = $1 AND d.employee_id = $2
  `, tenantID, employeeID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return draft, err
}

func (s *Store) CurrentEmployeeDraft(ctx context.Context, tenantID, userID string) (*profile.EmployeeDraft, error) {
	draft, err := scanDraft(s.DB.QueryRow(ctx, `
    SELECT `+draftColumns+`
    FROM employee_drafts d
    JOIN employees e ON e.id = d.employee_id
    WHERE d.tenant_id = $1 AND e.user_id = $2
  `, tenantID, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return draft, err
}

// SaveDraft upserts the employee's draft row. Saving over an approved or
// rejected row starts a fresh draft.
func (s *Store) SaveDraft(ctx context.Context, tenantID string, draft *profile.EmployeeDraft) (*profile.EmployeeDraft, error) {
	body, err := encodeProfile(draft.Profile)
	if err != nil {
		return nil, err
	}
	saved, err := scanDraft(s.DB.QueryRow(ctx, `
    INSERT INTO employee_drafts AS d (tenant_id, employee_id, status, author_id, profile)
    VALUES ($1,$2,$3,$4,$5)
    ON CONFLICT (tenant_id, employee_id) DO UPDATE
      SET status = EXCLUDED.status,
          author_id = EXCLUDED.author_id,
          profile = EXCLUDED.profile,
          reviewer_id = NULL,
          review_comment = '',
          reviewed_at = NULL,
          submitted_at = NULL,
          updated_at = now()
    RETURNING `+draftColumns+`
  `, tenantID, draft.EmployeeID, profile.DraftStatusDraft, nullIfEmpty(draft.AuthorID), body))
	if isForeignKeyViolation(err) {
		return nil, ErrEmployeeNotFound
	}
	return saved, err
}

func (s *Store) SubmitDraft(ctx context.Context, tenantID string, employeeID int64) (*profile.EmployeeDraft, error) {
	draft, err := scanDraft(s.DB.QueryRow(ctx, `
    UPDATE employee_drafts AS d
    SET status = $3, submitted_at = now(), updated_at = now()
    WHERE d.tenant_id = $1 AND d.employee_id = $2 AND d.status = $4
    RETURNING `+draftColumns+`
  `, tenantID, employeeID, profile.DraftStatusPending, profile.DraftStatusDraft))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, s.transitionError(ctx, tenantID, employeeID)
	}
	return draft, err
}

// ApproveDraft copies the draft profile onto the employee and archives the
// draft in one transaction. New nested records get their identity here.
func (s *Store) ApproveDraft(ctx context.Context, tenantID string, employeeID int64, reviewerID string) (*profile.EmployeeDraft, error) {
	var approved *profile.EmployeeDraft
	err := db.WithTx(ctx, s.DB, func(tx pgx.Tx) error {
		current, err := scanDraft(tx.QueryRow(ctx, `
      SELECT `+draftColumns+`
      FROM employee_drafts d
      WHERE d.tenant_id = $1 AND d.employee_id = $2
      FOR UPDATE
    `, tenantID, employeeID))
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrMissingDraft
		}
		if err != nil {
			return err
		}
		if !current.Open() {
			return ErrInvalidState
		}

		var liveRaw []byte
		err = tx.QueryRow(ctx, `
      SELECT e.profile FROM employees e
      WHERE e.tenant_id = $1 AND e.id = $2
      FOR UPDATE
    `, tenantID, employeeID).Scan(&liveRaw)
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrEmployeeNotFound
		}
		if err != nil {
			return err
		}
		var before profile.Profile
		if err := decodeProfile(liveRaw, &before); err != nil {
			return err
		}

		live := current.Profile
		assignIdentity(&before, &live, employeeID, time.Now().UTC())
		body, err := encodeProfile(live)
		if err != nil {
			return err
		}

		tag, err := tx.Exec(ctx, `
      UPDATE employees
      SET full_name = $3, email = $4, status = $5, profile = $6, updated_at = now()
      WHERE tenant_id = $1 AND id = $2
    `, tenantID, employeeID, live.FullName, live.Email, live.Status, body)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrEmployeeNotFound
		}

		approved, err = scanDraft(tx.QueryRow(ctx, `
      UPDATE employee_drafts AS d
      SET status = $3, reviewer_id = $4, reviewed_at = now(), updated_at = now(), profile = $5
      WHERE d.id = $1 AND d.tenant_id = $2
      RETURNING `+draftColumns+`
    `, current.ID, tenantID, profile.DraftStatusApproved, nullIfEmpty(reviewerID), body))
		return err
	})
	if err != nil {
		return nil, err
	}
	return approved, nil
}

func (s *Store) RejectDraft(ctx context.Context, tenantID string, employeeID int64, reviewerID, comment string) (*profile.EmployeeDraft, error) {
	draft, err := scanDraft(s.DB.QueryRow(ctx, `
    UPDATE employee_drafts AS d
    SET status = $3, reviewer_id = $4, review_comment = $5, reviewed_at = now(), updated_at = now()
    WHERE d.tenant_id = $1 AND d.employee_id = $2 AND d.status IN ('draft', 'pending')
    RETURNING `+draftColumns+`
  `, tenantID, employeeID, profile.DraftStatusRejected, nullIfEmpty(reviewerID), comment))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, s.transitionError(ctx, tenantID, employeeID)
	}
	return draft, err
}

func (s *Store) ListDrafts(ctx context.Context, tenantID string, filter ListFilter) ([]Pair, int, error) {
	where := "d.tenant_id = $1"
	args := []any{tenantID}
	if filter.Status != "" {
		where += " AND d.status = $2"
		args = append(args, filter.Status)
	}

	var total int
	if err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM employee_drafts d WHERE "+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limitPos := len(args) + 1
	offsetPos := len(args) + 2
	query := fmt.Sprintf(`
    SELECT %s, %s
    FROM employee_drafts d
    JOIN employees e ON e.id = d.employee_id
    WHERE %s
    ORDER BY d.updated_at DESC, d.id DESC
    LIMIT $%d OFFSET $%d
  `, draftColumns, employeeColumns, where, limitPos, offsetPos)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := []Pair{}
	for rows.Next() {
		var d profile.EmployeeDraft
		var e profile.Employee
		var draftRaw, employeeRaw []byte
		if err := rows.Scan(
			&d.ID, &d.EmployeeID, &d.TenantID, &d.Status, &d.AuthorID, &d.ReviewerID, &d.ReviewComment, &d.ReviewedAt, &d.CreatedAt, &d.UpdatedAt, &draftRaw,
			&e.ID, &e.TenantID, &e.UserID, &e.CreatedAt, &e.UpdatedAt, &employeeRaw,
		); err != nil {
			return nil, 0, err
		}
		if err := decodeProfile(draftRaw, &d.Profile); err != nil {
			return nil, 0, err
		}
		if err := decodeProfile(employeeRaw, &e.Profile); err != nil {
			return nil, 0, err
		}
		out = append(out, Pair{Employee: &e, Draft: &d})
	}
	return out, total, rows.Err()
}

// transitionError explains why a conditional update matched no row.
func (s *Store) transitionError(ctx context.Context, tenantID string, employeeID int64) error {
	var status string
	err := s.DB.QueryRow(ctx, "SELECT status FROM employee_drafts WHERE tenant_id = $1 AND employee_id = $2", tenantID, employeeID).Scan(&status)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrMissingDraft
	}
	if err != nil {
		return err
	}
	return ErrInvalidState
}
