package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunNowRecordsCompletedRun(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("INSERT INTO job_runs").
		WithArgs("tenant", JobWebhookDelivery, StatusRunning).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow("run-1"))
	mock.ExpectExec("UPDATE job_runs").
		WithArgs(StatusCompleted, []byte(`{"attempts":1}`), "run-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	svc := New(mock, 1)
	details, err := svc.RunNow(context.Background(), JobWebhookDelivery, "tenant", func(ctx context.Context) (any, error) {
		return map[string]int{"attempts": 1}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"attempts": 1}, details)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRunNowRecordsFailure(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("INSERT INTO job_runs").
		WithArgs(nil, JobWebhookDelivery, StatusRunning).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow("run-2"))
	mock.ExpectExec("UPDATE job_runs").
		WithArgs(StatusFailed, []byte("null"), "run-2").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	boom := errors.New("boom")
	_, err = New(mock, 1).RunNow(context.Background(), JobWebhookDelivery, "", func(ctx context.Context) (any, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnqueueDropsWhenFull(t *testing.T) {
	svc := New(nil, 1)
	noop := func(ctx context.Context) (any, error) { return nil, nil }

	assert.True(t, svc.Enqueue(JobWebhookDelivery, "tenant", noop))
	assert.False(t, svc.Enqueue(JobWebhookDelivery, "tenant", noop))
}

func TestWorkerRunsQueuedJobs(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("INSERT INTO job_runs").
		WithArgs("tenant", JobWebhookDelivery, StatusRunning).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow("run-3"))
	mock.ExpectExec("UPDATE job_runs").
		WithArgs(StatusCompleted, []byte("null"), "run-3").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	ctx, cancel := context.WithCancel(context.Background())
	svc := New(mock, 4)
	svc.Start(ctx)

	done := make(chan struct{})
	require.True(t, svc.Enqueue(JobWebhookDelivery, "tenant", func(ctx context.Context) (any, error) {
		close(done)
		return nil, nil
	}))

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("job did not run")
	}
	require.Eventually(t, func() bool { return mock.ExpectationsWereMet() == nil }, 2*time.Second, 10*time.Millisecond)
	cancel()
	svc.Wait()
}
