package profilehandler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"ems/internal/domain/auth"
	"ems/internal/domain/drafts"
	"ems/internal/domain/profile"
	"ems/internal/transport/http/middleware"
)

// employeesOnly serves live records; draft methods are never reached.
type employeesOnly struct {
	drafts.Repository
	employees []profile.Employee
}

func (e employeesOnly) EmployeeProfile(ctx context.Context, tenantID string, employeeID int64) (*profile.Employee, error) {
	for _, emp := range e.employees {
		if emp.ID == employeeID {
			cp := emp
			return &cp, nil
		}
	}
	return nil, drafts.ErrEmployeeNotFound
}

func (e employeesOnly) CurrentUserProfile(ctx context.Context, tenantID, userID string) (*profile.Employee, error) {
	for _, emp := range e.employees {
		if emp.UserID == userID {
			cp := emp
			return &cp, nil
		}
	}
	return nil, drafts.ErrEmployeeNotFound
}

func sampleEmployee() profile.Employee {
	dob := time.Date(1990, 5, 1, 0, 0, 0, 0, time.UTC)
	return profile.Employee{
		ID:     1,
		UserID: "user-alice",
		Profile: profile.Profile{
			FullName:    "Alice",
			Address:     "1 Main St",
			DateOfBirth: &dob,
			Document:    &profile.DocumentInfo{DocumentType: "passport"},
			Children:    []profile.Child{{FullName: "Bo"}},
		},
	}
}

func newRouter() chi.Router {
	repo := employeesOnly{employees: []profile.Employee{sampleEmployee()}}
	r := chi.NewRouter()
	NewHandler(drafts.NewManager(repo, nil), nil).RegisterRoutes(r)
	return r
}

func get(r chi.Router, user *auth.UserContext, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if user != nil {
		req = req.WithContext(middleware.WithUser(req.Context(), *user))
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decodeEmployee(t *testing.T, rec *httptest.ResponseRecorder) profile.Employee {
	t.Helper()
	var env struct {
		Data profile.Employee `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return env.Data
}

func TestFilterEmployeeFields(t *testing.T) {
	cases := []struct {
		name       string
		isSelf     bool
		canEditAny bool
		redacted   bool
	}{
		{"self", true, false, false},
		{"hr", false, true, false},
		{"manager", false, false, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			emp := sampleEmployee()
			filterEmployeeFields(&emp, auth.UserContext{}, tc.isSelf, tc.canEditAny)
			gotRedacted := emp.Address == "" && emp.DateOfBirth == nil && emp.Document == nil && len(emp.Children) == 0
			if gotRedacted != tc.redacted {
				t.Fatalf("redacted = %v, want %v (%+v)", gotRedacted, tc.redacted, emp.Profile)
			}
			if emp.FullName != "Alice" {
				t.Fatal("name must always be visible")
			}
		})
	}
}

func TestEmployeeProfileByRole(t *testing.T) {
	r := newRouter()

	manager := auth.UserContext{UserID: "user-mgr", TenantID: "t", RoleName: auth.RoleManager}
	rec := get(r, &manager, "/employees/1/profile")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if emp := decodeEmployee(t, rec); emp.Address != "" || emp.Document != nil {
		t.Fatalf("manager should not see personal fields: %+v", emp.Profile)
	}

	hr := auth.UserContext{UserID: "user-hr", TenantID: "t", RoleName: auth.RoleHR}
	if emp := decodeEmployee(t, get(r, &hr, "/employees/1/profile")); emp.Address != "1 Main St" {
		t.Fatalf("hr should see the address, got %q", emp.Address)
	}
}

func TestEmployeeProfileErrors(t *testing.T) {
	r := newRouter()
	hr := auth.UserContext{UserID: "user-hr", TenantID: "t", RoleName: auth.RoleHR}

	if rec := get(r, &hr, "/employees/9/profile"); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if rec := get(r, &hr, "/employees/zero/profile"); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	employee := auth.UserContext{UserID: "user-alice", TenantID: "t", RoleName: auth.RoleEmployee}
	if rec := get(r, &employee, "/employees/1/profile"); rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 without employees.read, got %d", rec.Code)
	}
}

func TestOwnProfileAndMe(t *testing.T) {
	r := newRouter()
	alice := auth.UserContext{UserID: "user-alice", TenantID: "t", RoleName: auth.RoleEmployee}

	rec := get(r, &alice, "/profile/me")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if emp := decodeEmployee(t, rec); emp.Address != "1 Main St" {
		t.Fatal("own profile is never redacted")
	}

	stranger := auth.UserContext{UserID: "user-x", TenantID: "t", RoleName: auth.RoleEmployee}
	if rec := get(r, &stranger, "/profile/me"); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unlinked user, got %d", rec.Code)
	}
	if rec := get(r, &stranger, "/me"); rec.Code != http.StatusOK {
		t.Fatalf("expected /me to succeed without an employee, got %d", rec.Code)
	}
	if rec := get(r, nil, "/me"); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}
