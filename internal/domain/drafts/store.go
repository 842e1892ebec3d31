package drafts

import (
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"ems/internal/domain/profile"
	"ems/internal/platform/db"
)

// Store is the Postgres Repository. Profiles are kept as JSONB documents on
// employees and employee_drafts, one draft row per employee.
type Store struct {
	DB db.Querier
}

func NewStore(q db.Querier) *Store {
	return &Store{DB: q}
}

var _ Repository = (*Store)(nil)

const employeeColumns = `e.id, e.tenant_id::text, COALESCE(e.user_id::text, ''), e.created_at, e.updated_at, e.profile`

const draftColumns = `d.id, d.employee_id, d.tenant_id::text, d.status, COALESCE(d.author_id::text, ''),
    COALESCE(d.reviewer_id::text, ''), d.review_comment, d.reviewed_at, d.created_at, d.updated_at, d.profile`

type scanner interface {
	Scan(dest ...any) error
}

func scanEmployee(row scanner) (*profile.Employee, error) {
	var e profile.Employee
	var raw []byte
	if err := row.Scan(&e.ID, &e.TenantID, &e.UserID, &e.CreatedAt, &e.UpdatedAt, &raw); err != nil {
		return nil, err
	}
	if err := decodeProfile(raw, &e.Profile); err != nil {
		return nil, err
	}
	return &e, nil
}

func scanDraft(row scanner) (*profile.EmployeeDraft, error) {
	var d profile.EmployeeDraft
	var raw []byte
	if err := row.Scan(&d.ID, &d.EmployeeID, &d.TenantID, &d.Status, &d.AuthorID, &d.ReviewerID, &d.ReviewComment, &d.ReviewedAt, &d.CreatedAt, &d.UpdatedAt, &raw); err != nil {
		return nil, err
	}
	if err := decodeProfile(raw, &d.Profile); err != nil {
		return nil, err
	}
	return &d, nil
}

func decodeProfile(raw []byte, out *profile.Profile) error {
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, out)
}

func encodeProfile(p profile.Profile) ([]byte, error) {
	return json.Marshal(p)
}

func nullIfEmpty(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}
