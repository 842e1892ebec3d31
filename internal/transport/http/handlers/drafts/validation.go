package draftshandler

import (
	"fmt"
	"net/http"
	"time"

	"ems/internal/domain/profile"
	"ems/internal/transport/http/shared"
)

var employeeStatuses = []string{profile.EmployeeStatusActive, profile.EmployeeStatusOnLeave, profile.EmployeeStatusTerminated}

// validateProfile writes a 400 and returns true when the draft body is not
// acceptable.
func validateProfile(w http.ResponseWriter, requestID string, p profile.Profile) bool {
	v := shared.NewValidator()
	v.Required("profile.full_name", p.FullName, "is required")
	v.MaxLen("profile.full_name", p.FullName, 200)
	v.Email("profile.email", p.Email)
	v.MaxLen("profile.phone", p.Phone, 50)
	v.MaxLen("profile.summary", p.Summary, 4000)
	v.Enum("profile.status", p.Status, employeeStatuses, "must be one of active, on_leave, terminated")

	if p.DateOfBirth != nil && p.DateOfBirth.After(time.Now()) {
		v.Add("profile.date_of_birth", "must not be in the future")
	}
	if p.DateOfBirth != nil && p.HireDate != nil {
		v.DateOrder("profile.date_of_birth", *p.DateOfBirth, "profile.hire_date", *p.HireDate)
	}

	for i, c := range p.Contacts {
		v.Required(fmt.Sprintf("profile.contacts[%d].value", i), c.Value, "is required")
	}
	for i, e := range p.Educations {
		v.Required(fmt.Sprintf("profile.educations[%d].institution", i), e.Institution, "is required")
	}
	for i, c := range p.Certifications {
		v.Required(fmt.Sprintf("profile.certifications[%d].name", i), c.Name, "is required")
	}
	for i, l := range p.Languages {
		v.Required(fmt.Sprintf("profile.languages[%d].name", i), l.Name, "is required")
	}
	for i, s := range p.TechnicalSkills {
		v.Required(fmt.Sprintf("profile.technical_skills[%d].name", i), s.Name, "is required")
	}
	for i, pr := range p.Projects {
		v.Required(fmt.Sprintf("profile.projects[%d].title", i), pr.Title, "is required")
	}
	for i, c := range p.Children {
		v.Required(fmt.Sprintf("profile.children[%d].full_name", i), c.FullName, "is required")
	}
	return v.Reject(w, requestID)
}
