package drafts

import "errors"

var (
	ErrFetchFailure     = errors.New("failed to load profile data")
	ErrMissingDraft     = errors.New("no open draft for employee")
	ErrPersistFailure   = errors.New("failed to persist draft")
	ErrInvalidState     = errors.New("draft is not in a state that allows this transition")
	ErrEmployeeNotFound = errors.New("employee not found")
	ErrInvalidIdentity  = errors.New("draft carries an invalid record id")
)
