package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ems/internal/domain/auth"
	"ems/internal/platform/config"
	"ems/internal/platform/jobs"
	"ems/internal/platform/metrics"
)

const testSecret = "router-test-secret"

func newTestRouter(t *testing.T) (http.Handler, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	cfg := config.Defaults()
	cfg.JWTSecret = testSecret
	router, err := NewRouter(cfg, mock, metrics.New(), jobs.New(mock, 4))
	require.NoError(t, err)
	return router, mock
}

func bearer(t *testing.T, role string) string {
	t.Helper()
	token, err := auth.GenerateToken(testSecret, auth.Claims{UserID: "u1", TenantID: "t1", RoleID: "r1", RoleName: role}, time.Hour)
	require.NoError(t, err)
	return "Bearer " + token
}

func TestHealthz(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestReadyz(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAPIRequiresToken(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/drafts/1", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestPermissionsComeFromDatabase(t *testing.T) {
	router, mock := newTestRouter(t)
	mock.ExpectQuery("FROM role_permissions").
		WithArgs("r1", auth.PermWebhooksManage).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(0))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/webhooks", nil)
	req.Header.Set("Authorization", bearer(t, auth.RoleHR))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMetricsForSystemAdmin(t *testing.T) {
	router, mock := newTestRouter(t)
	mock.ExpectQuery("FROM role_permissions").
		WithArgs("r1", auth.PermSystemAdmin).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(1))

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	req.Header.Set("Authorization", bearer(t, auth.RoleSystemAdmin))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "requestsTotal")
	require.NoError(t, mock.ExpectationsWereMet())
}
