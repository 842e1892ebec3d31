package drafts

import (
	"time"

	"ems/internal/domain/profile"
)

// Review is everything a reviewer sees for one employee.
type Review struct {
	Employee   *profile.Employee      `json:"employee"`
	Draft      *profile.EmployeeDraft `json:"draft"`
	Comparison profile.Comparison     `json:"comparison"`
}

// Pair is an employee together with its current draft row.
type Pair struct {
	Employee *profile.Employee
	Draft    *profile.EmployeeDraft
}

type Summary struct {
	DraftID         int64     `json:"draftId"`
	EmployeeID      int64     `json:"employeeId"`
	FullName        string    `json:"fullName"`
	Status          string    `json:"status"`
	AuthorID        string    `json:"authorId,omitempty"`
	ChangeCount     int       `json:"changeCount"`
	ChangedSections []string  `json:"changedSections"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

type ListFilter struct {
	Status string
	Limit  int
	Offset int
}
