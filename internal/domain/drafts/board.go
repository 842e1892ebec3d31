package drafts

import (
	"context"
	"log/slog"
	"sync"
)

// ReviewState is what a reviewer UI needs to enable or disable its actions.
type ReviewState struct {
	Open    bool
	Pending bool
	Err     error
}

// ReviewBoard keeps the session state of one reviewer: which reviews are
// open, which decisions are in flight, the last error per employee and the
// cached draft list.
type ReviewBoard struct {
	manager    *Manager
	tenantID   string
	reviewerID string
	filter     ListFilter

	mu      sync.Mutex
	open    map[int64]*Review
	pending map[int64]bool
	errs    map[int64]error
	list    []Summary
	total   int
	listErr error
}

func NewReviewBoard(manager *Manager, tenantID, reviewerID string, filter ListFilter) *ReviewBoard {
	return &ReviewBoard{
		manager:    manager,
		tenantID:   tenantID,
		reviewerID: reviewerID,
		filter:     filter,
		open:       map[int64]*Review{},
		pending:    map[int64]bool{},
		errs:       map[int64]error{},
	}
}

// Reload refreshes the cached draft list.
func (b *ReviewBoard) Reload(ctx context.Context) error {
	list, total, err := b.manager.List(ctx, b.tenantID, b.filter)

	b.mu.Lock()
	defer b.mu.Unlock()
	b.listErr = err
	if err != nil {
		return err
	}
	b.list = list
	b.total = total
	return nil
}

// Drafts returns the cached list and the total reported by the last reload.
func (b *ReviewBoard) Drafts() ([]Summary, int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Summary, len(b.list))
	copy(out, b.list)
	return out, b.total
}

func (b *ReviewBoard) ListErr() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.listErr
}

// Open loads the review of an employee and marks it open.
func (b *ReviewBoard) Open(ctx context.Context, employeeID int64) (*Review, error) {
	review, err := b.manager.Review(ctx, b.tenantID, employeeID)

	b.mu.Lock()
	defer b.mu.Unlock()
	if err != nil {
		b.errs[employeeID] = err
		return nil, err
	}
	delete(b.errs, employeeID)
	b.open[employeeID] = review
	return review, nil
}

func (b *ReviewBoard) Close(employeeID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.open, employeeID)
	delete(b.errs, employeeID)
}

func (b *ReviewBoard) State(employeeID int64) ReviewState {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, open := b.open[employeeID]
	return ReviewState{Open: open, Pending: b.pending[employeeID], Err: b.errs[employeeID]}
}

// Approve closes the review and reloads the list on success. A failed reload
// does not undo the decision; it is only kept in ListErr. On failure the
// review stays open and the error is recorded.
func (b *ReviewBoard) Approve(ctx context.Context, employeeID int64) error {
	return b.decide(ctx, employeeID, func(ctx context.Context) error {
		_, err := b.manager.Approve(ctx, b.tenantID, b.reviewerID, employeeID)
		return err
	})
}

func (b *ReviewBoard) Reject(ctx context.Context, employeeID int64, comment string) error {
	return b.decide(ctx, employeeID, func(ctx context.Context) error {
		_, err := b.manager.Reject(ctx, b.tenantID, b.reviewerID, employeeID, comment)
		return err
	})
}

func (b *ReviewBoard) decide(ctx context.Context, employeeID int64, run func(context.Context) error) error {
	b.mu.Lock()
	if b.pending[employeeID] {
		b.mu.Unlock()
		return ErrInvalidState
	}
	b.pending[employeeID] = true
	delete(b.errs, employeeID)
	b.mu.Unlock()

	err := run(ctx)

	b.mu.Lock()
	delete(b.pending, employeeID)
	if err != nil {
		b.errs[employeeID] = err
		b.mu.Unlock()
		return err
	}
	delete(b.open, employeeID)
	b.mu.Unlock()

	if err := b.Reload(ctx); err != nil {
		slog.Warn("draft list reload failed", "tenantId", b.tenantID, "employeeId", employeeID, "err", err)
	}
	return nil
}
