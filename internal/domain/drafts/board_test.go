package drafts

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ems/internal/domain/profile"
)

func TestReviewBoardApproveClosesAndReloads(t *testing.T) {
	repo, _, m := aliceFixture()
	board := NewReviewBoard(m, "tenant", "user-hr", ListFilter{Status: profile.DraftStatusPending})
	ctx := context.Background()

	require.NoError(t, board.Reload(ctx))
	list, _ := board.Drafts()
	require.Len(t, list, 1)

	_, err := board.Open(ctx, 1)
	require.NoError(t, err)
	assert.True(t, board.State(1).Open)

	callsBefore := repo.listCalls
	require.NoError(t, board.Approve(ctx, 1))

	state := board.State(1)
	assert.False(t, state.Open)
	assert.False(t, state.Pending)
	assert.NoError(t, state.Err)
	assert.Equal(t, callsBefore+1, repo.listCalls)

	list, total := board.Drafts()
	assert.Empty(t, list)
	assert.Zero(t, total)
}

func TestReviewBoardApproveFailureKeepsReviewOpen(t *testing.T) {
	repo, _, m := aliceFixture()
	board := NewReviewBoard(m, "tenant", "user-hr", ListFilter{})
	ctx := context.Background()

	require.NoError(t, board.Reload(ctx))
	_, err := board.Open(ctx, 1)
	require.NoError(t, err)

	repo.persistErr = errBoom
	callsBefore := repo.listCalls
	err = board.Approve(ctx, 1)
	require.ErrorIs(t, err, ErrPersistFailure)

	state := board.State(1)
	assert.True(t, state.Open)
	assert.False(t, state.Pending)
	assert.ErrorIs(t, state.Err, ErrPersistFailure)
	assert.Equal(t, callsBefore, repo.listCalls)

	list, _ := board.Drafts()
	assert.Len(t, list, 1)
}

func TestReviewBoardRejectClosesAndReloads(t *testing.T) {
	repo, _, m := aliceFixture()
	board := NewReviewBoard(m, "tenant", "user-hr", ListFilter{Status: profile.DraftStatusPending})
	ctx := context.Background()

	_, err := board.Open(ctx, 1)
	require.NoError(t, err)
	require.NoError(t, board.Reject(ctx, 1, "incomplete"))

	assert.False(t, board.State(1).Open)
	assert.Equal(t, "incomplete", repo.drafts[1].ReviewComment)
	list, _ := board.Drafts()
	assert.Empty(t, list)
}

func TestReviewBoardRetryAfterFailure(t *testing.T) {
	repo, _, m := aliceFixture()
	board := NewReviewBoard(m, "tenant", "user-hr", ListFilter{})
	ctx := context.Background()

	_, err := board.Open(ctx, 1)
	require.NoError(t, err)

	repo.persistErr = errBoom
	require.Error(t, board.Approve(ctx, 1))

	repo.persistErr = nil
	require.NoError(t, board.Approve(ctx, 1))
	assert.Equal(t, ReviewState{}, board.State(1))
}

func TestReviewBoardOpenMissingDraft(t *testing.T) {
	_, _, m := aliceFixture()
	board := NewReviewBoard(m, "tenant", "user-hr", ListFilter{})

	_, err := board.Open(context.Background(), 99)
	require.Error(t, err)
	state := board.State(99)
	assert.False(t, state.Open)
	assert.Error(t, state.Err)

	board.Close(99)
	assert.NoError(t, board.State(99).Err)
}

func TestReviewBoardReloadFailure(t *testing.T) {
	repo, _, m := aliceFixture()
	board := NewReviewBoard(m, "tenant", "user-hr", ListFilter{})
	repo.fetchErr = errBoom

	err := board.Reload(context.Background())
	assert.ErrorIs(t, err, ErrFetchFailure)
	assert.ErrorIs(t, board.ListErr(), ErrFetchFailure)
}

func TestReviewBoardApproveSucceedsWhenReloadFails(t *testing.T) {
	repo, _, m := aliceFixture()
	board := NewReviewBoard(m, "tenant", "user-hr", ListFilter{})
	ctx := context.Background()

	_, err := board.Open(ctx, 1)
	require.NoError(t, err)

	repo.fetchErr = errBoom
	require.NoError(t, board.Approve(ctx, 1))

	assert.Equal(t, profile.DraftStatusApproved, repo.drafts[1].Status)
	assert.Equal(t, ReviewState{}, board.State(1))
	assert.ErrorIs(t, board.ListErr(), ErrFetchFailure)
}
