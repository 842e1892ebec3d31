package audit

import (
	"context"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordMarshalsSnapshots(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec("INSERT INTO audit_events").
		WithArgs("tenant", "actor", ActionDraftApproved, EntityEmployeeDraft, "7", []byte(`{"status":"pending"}`), []byte(`{"status":"approved"}`), "req-1", "10.0.0.1").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err = New(mock).Record(context.Background(), "tenant", "actor", ActionDraftApproved, EntityEmployeeDraft, "7", "req-1", "10.0.0.1",
		map[string]string{"status": "pending"}, map[string]string{"status": "approved"})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordWithoutActor(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	var noSnapshot []byte
	mock.ExpectExec("INSERT INTO audit_events").
		WithArgs("tenant", nil, ActionWebhookDeleted, EntityWebhook, "w1", noSnapshot, noSnapshot, "", "").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, New(mock).Record(context.Background(), "tenant", "", ActionWebhookDeleted, EntityWebhook, "w1", "", "", nil, nil))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListAppliesFilters(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	now := time.Date(2026, 4, 2, 10, 0, 0, 0, time.UTC)
	mock.ExpectQuery("FROM audit_events WHERE tenant_id = \\$1 AND action = \\$2").
		WithArgs("tenant", ActionDraftRejected, 20, 0).
		WillReturnRows(pgxmock.NewRows([]string{"id", "actor_user_id", "action", "entity_type", "entity_id", "request_id", "ip", "created_at"}).
			AddRow("a1", "actor", ActionDraftRejected, EntityEmployeeDraft, "7", "req", "ip", now))

	events, err := New(mock).List(context.Background(), "tenant", Filter{Action: ActionDraftRejected}, false, 20, 0)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "a1", events[0].ID)
	assert.Equal(t, now, events[0].CreatedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}
