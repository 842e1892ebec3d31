package drafts

import (
	"context"
	"errors"
	"sync"

	"ems/internal/domain/profile"
)

var errBoom = errors.New("boom")

type fakeRepo struct {
	mu        sync.Mutex
	employees map[int64]*profile.Employee
	drafts    map[int64]*profile.EmployeeDraft
	byUser    map[string]int64

	fetchErr   error
	persistErr error
	listCalls  int
	approveCnt int
	nextID     int64
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		employees: map[int64]*profile.Employee{},
		drafts:    map[int64]*profile.EmployeeDraft{},
		byUser:    map[string]int64{},
	}
}

func (f *fakeRepo) addEmployee(e profile.Employee) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.employees[e.ID] = &e
	if e.UserID != "" {
		f.byUser[e.UserID] = e.ID
	}
}

func (f *fakeRepo) addDraft(d profile.EmployeeDraft) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.drafts[d.EmployeeID] = &d
}

func (f *fakeRepo) EmployeeProfile(ctx context.Context, tenantID string, employeeID int64) (*profile.Employee, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	e, ok := f.employees[employeeID]
	if !ok {
		return nil, ErrEmployeeNotFound
	}
	cp := *e
	return &cp, nil
}

func (f *fakeRepo) CurrentUserProfile(ctx context.Context, tenantID, userID string) (*profile.Employee, error) {
	f.mu.Lock()
	id, ok := f.byUser[userID]
	f.mu.Unlock()
	if !ok {
		return nil, ErrEmployeeNotFound
	}
	return f.EmployeeProfile(ctx, tenantID, id)
}

func (f *fakeRepo) DraftByEmployeeID(ctx context.Context, tenantID string, employeeID int64) (*profile.EmployeeDraft, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	d, ok := f.drafts[employeeID]
	if !ok {
		return nil, nil
	}
	cp := *d
	return &cp, nil
}

func (f *fakeRepo) CurrentEmployeeDraft(ctx context.Context, tenantID, userID string) (*profile.EmployeeDraft, error) {
	f.mu.Lock()
	id, ok := f.byUser[userID]
	f.mu.Unlock()
	if !ok {
		return nil, nil
	}
	return f.DraftByEmployeeID(ctx, tenantID, id)
}

func (f *fakeRepo) SaveDraft(ctx context.Context, tenantID string, draft *profile.EmployeeDraft) (*profile.EmployeeDraft, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.persistErr != nil {
		return nil, f.persistErr
	}
	if _, ok := f.employees[draft.EmployeeID]; !ok {
		return nil, ErrEmployeeNotFound
	}
	cp := *draft
	if existing, ok := f.drafts[draft.EmployeeID]; ok {
		cp.ID = existing.ID
	} else {
		f.nextID++
		cp.ID = f.nextID
	}
	f.drafts[draft.EmployeeID] = &cp
	out := cp
	return &out, nil
}

func (f *fakeRepo) transition(employeeID int64, from []string, apply func(*profile.EmployeeDraft)) (*profile.EmployeeDraft, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.persistErr != nil {
		return nil, f.persistErr
	}
	d, ok := f.drafts[employeeID]
	if !ok {
		return nil, ErrMissingDraft
	}
	allowed := false
	for _, s := range from {
		if d.Status == s {
			allowed = true
		}
	}
	if !allowed {
		return nil, ErrInvalidState
	}
	apply(d)
	out := *d
	return &out, nil
}

func (f *fakeRepo) SubmitDraft(ctx context.Context, tenantID string, employeeID int64) (*profile.EmployeeDraft, error) {
	return f.transition(employeeID, []string{profile.DraftStatusDraft}, func(d *profile.EmployeeDraft) {
		d.Status = profile.DraftStatusPending
	})
}

func (f *fakeRepo) ApproveDraft(ctx context.Context, tenantID string, employeeID int64, reviewerID string) (*profile.EmployeeDraft, error) {
	f.mu.Lock()
	f.approveCnt++
	f.mu.Unlock()
	d, err := f.transition(employeeID, []string{profile.DraftStatusDraft, profile.DraftStatusPending}, func(d *profile.EmployeeDraft) {
		d.Status = profile.DraftStatusApproved
		d.ReviewerID = reviewerID
	})
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	f.employees[employeeID].Profile = d.Profile
	f.mu.Unlock()
	return d, nil
}

func (f *fakeRepo) RejectDraft(ctx context.Context, tenantID string, employeeID int64, reviewerID, comment string) (*profile.EmployeeDraft, error) {
	return f.transition(employeeID, []string{profile.DraftStatusDraft, profile.DraftStatusPending}, func(d *profile.EmployeeDraft) {
		d.Status = profile.DraftStatusRejected
		d.ReviewerID = reviewerID
		d.ReviewComment = comment
	})
}

func (f *fakeRepo) ListDrafts(ctx context.Context, tenantID string, filter ListFilter) ([]Pair, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	if f.fetchErr != nil {
		return nil, 0, f.fetchErr
	}
	out := []Pair{}
	for id := int64(1); id <= int64(len(f.employees))+10; id++ {
		d, ok := f.drafts[id]
		if !ok {
			continue
		}
		if filter.Status != "" && d.Status != filter.Status {
			continue
		}
		e := *f.employees[id]
		dc := *d
		out = append(out, Pair{Employee: &e, Draft: &dc})
	}
	return out, len(out), nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []Event
	err    error
}

func (p *recordingPublisher) Publish(ctx context.Context, evt Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, evt)
	return p.err
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}

func aliceFixture() (*fakeRepo, *recordingPublisher, *Manager) {
	repo := newFakeRepo()
	repo.addEmployee(profile.Employee{
		ID:     1,
		UserID: "user-alice",
		Profile: profile.Profile{
			FullName: "Alice",
			Phone:    "111",
			Projects: []profile.Project{{Identity: profile.Identity{ID: 1}, Title: "X"}},
		},
	})
	repo.addDraft(profile.EmployeeDraft{
		ID:         10,
		EmployeeID: 1,
		Status:     profile.DraftStatusPending,
		AuthorID:   "user-alice",
		Profile: profile.Profile{
			FullName: "Alice",
			Phone:    "222",
			Projects: []profile.Project{
				{Identity: profile.Identity{ID: 1}, Title: "Y"},
				{Identity: profile.Identity{ID: 2}, Title: "Z"},
			},
		},
	})
	pub := &recordingPublisher{}
	return repo, pub, NewManager(repo, pub)
}
