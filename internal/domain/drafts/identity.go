package drafts

import (
	"fmt"
	"time"

	"ems/internal/domain/profile"
)

// IdentityError points at a nested record whose id a draft may not carry.
type IdentityError struct {
	Field  string
	Reason string
}

func (e *IdentityError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

func (e *IdentityError) Unwrap() error {
	return ErrInvalidIdentity
}

type recordRef struct {
	section string
	id      int64
}

// eachIdentity visits the identity of every nested record. index is -1 for
// singleton sections.
func eachIdentity(p *profile.Profile, fn func(section string, index int, id *profile.Identity)) {
	if p.Document != nil {
		fn("document", -1, &p.Document.Identity)
	}
	if p.ProfileInfo != nil {
		fn("profile_info", -1, &p.ProfileInfo.Identity)
	}
	for i := range p.Contacts {
		fn("contacts", i, &p.Contacts[i].Identity)
	}
	for i := range p.Educations {
		fn("educations", i, &p.Educations[i].Identity)
	}
	for i := range p.Certifications {
		fn("certifications", i, &p.Certifications[i].Identity)
	}
	for i := range p.Languages {
		fn("languages", i, &p.Languages[i].Identity)
	}
	for i := range p.TechnicalSkills {
		fn("technical_skills", i, &p.TechnicalSkills[i].Identity)
	}
	for i := range p.Projects {
		fn("projects", i, &p.Projects[i].Identity)
	}
	for i := range p.Children {
		fn("children", i, &p.Children[i].Identity)
	}
}

func fieldPath(section string, index int) string {
	if index < 0 {
		return fmt.Sprintf("profile.%s.id", section)
	}
	return fmt.Sprintf("profile.%s[%d].id", section, index)
}

func liveIdentities(p *profile.Profile) map[recordRef]profile.Identity {
	known := map[recordRef]profile.Identity{}
	if p == nil {
		return known
	}
	eachIdentity(p, func(section string, _ int, id *profile.Identity) {
		if id.ID > 0 {
			known[recordRef{section: section, id: id.ID}] = *id
		}
	})
	return known
}

// checkIdentity rejects nested record ids in draft that the live record does
// not have in the same section, and ids repeated within a section.
func checkIdentity(live, draft *profile.Profile) error {
	known := liveIdentities(live)
	seen := map[recordRef]bool{}
	var err error
	eachIdentity(draft, func(section string, index int, id *profile.Identity) {
		if err != nil || id.ID == 0 {
			return
		}
		ref := recordRef{section: section, id: id.ID}
		switch {
		case id.ID < 0:
			err = &IdentityError{Field: fieldPath(section, index), Reason: "must be positive"}
		case seen[ref]:
			err = &IdentityError{Field: fieldPath(section, index), Reason: "is repeated"}
		default:
			if _, ok := known[ref]; !ok {
				err = &IdentityError{Field: fieldPath(section, index), Reason: "is not part of the employee record"}
			}
		}
		seen[ref] = true
	})
	return err
}

// assignIdentity settles the identity of every nested record in p before it
// becomes the live record. Records matching a live record keep the live
// identity; anything else is new and gets the next id after the highest id
// seen in either profile.
func assignIdentity(live, p *profile.Profile, employeeID int64, now time.Time) {
	known := liveIdentities(live)
	next := max(maxRecordID(live), maxRecordID(p)) + 1
	used := map[recordRef]bool{}

	eachIdentity(p, func(section string, _ int, id *profile.Identity) {
		ref := recordRef{section: section, id: id.ID}
		if existing, ok := known[ref]; ok && !used[ref] {
			used[ref] = true
			*id = existing
			id.EmployeeID = employeeID
			return
		}
		created := now
		*id = profile.Identity{ID: next, EmployeeID: employeeID, CreatedAt: &created, UpdatedAt: &created}
		next++
	})
}

func maxRecordID(p *profile.Profile) int64 {
	var highest int64
	if p == nil {
		return highest
	}
	eachIdentity(p, func(_ string, _ int, id *profile.Identity) {
		highest = max(highest, id.ID)
	})
	return highest
}
