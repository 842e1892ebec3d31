package profile

type SectionKind string

const (
	SectionScalar    SectionKind = "scalar"
	SectionSingleton SectionKind = "singleton"
	SectionRepeated  SectionKind = "repeated"
)

// Section is one unit of change counting. Its projection returns the
// comparable part of a profile: identity fields are already removed.
type Section struct {
	Name    string
	Kind    SectionKind
	project func(*Profile) any
}

// Sections is the profile schema in display order.
var Sections = []Section{
	{Name: "full_name", Kind: SectionScalar, project: func(p *Profile) any { return p.FullName }},
	{Name: "email", Kind: SectionScalar, project: func(p *Profile) any { return p.Email }},
	{Name: "phone", Kind: SectionScalar, project: func(p *Profile) any { return p.Phone }},
	{Name: "address", Kind: SectionScalar, project: func(p *Profile) any { return p.Address }},
	{Name: "date_of_birth", Kind: SectionScalar, project: func(p *Profile) any { return p.DateOfBirth }},
	{Name: "hire_date", Kind: SectionScalar, project: func(p *Profile) any { return p.HireDate }},
	{Name: "position", Kind: SectionScalar, project: func(p *Profile) any { return p.Position }},
	{Name: "department", Kind: SectionScalar, project: func(p *Profile) any { return p.Department }},
	{Name: "status", Kind: SectionScalar, project: func(p *Profile) any { return p.Status }},
	{Name: "summary", Kind: SectionScalar, project: func(p *Profile) any { return p.Summary }},

	{Name: "document", Kind: SectionSingleton, project: func(p *Profile) any { return stripOne(p.Document) }},
	{Name: "profile_info", Kind: SectionSingleton, project: func(p *Profile) any { return stripOne(p.ProfileInfo) }},

	{Name: "contacts", Kind: SectionRepeated, project: func(p *Profile) any { return stripAll(p.Contacts) }},
	{Name: "educations", Kind: SectionRepeated, project: func(p *Profile) any { return stripAll(p.Educations) }},
	{Name: "certifications", Kind: SectionRepeated, project: func(p *Profile) any { return stripAll(p.Certifications) }},
	{Name: "languages", Kind: SectionRepeated, project: func(p *Profile) any { return stripAll(p.Languages) }},
	{Name: "technical_skills", Kind: SectionRepeated, project: func(p *Profile) any { return stripAll(p.TechnicalSkills) }},
	{Name: "projects", Kind: SectionRepeated, project: func(p *Profile) any { return stripAll(p.Projects) }},
	{Name: "children", Kind: SectionRepeated, project: func(p *Profile) any { return stripAll(p.Children) }},
}

// CountChanges returns how many sections differ between original and draft.
// Scalars count once each; a nested section counts once however many of its
// records changed. A missing side yields zero.
func CountChanges(original, draft Subject) int {
	return len(ChangedSections(original, draft))
}

// ChangedSections names the differing sections in schema order.
func ChangedSections(original, draft Subject) []string {
	before, after := profileOf(original), profileOf(draft)
	changed := []string{}
	if before == nil || after == nil {
		return changed
	}
	for _, s := range Sections {
		if IsChanged(s.project(before), s.project(after)) {
			changed = append(changed, s.Name)
		}
	}
	return changed
}

type FieldChange struct {
	Section string      `json:"section"`
	Kind    SectionKind `json:"kind"`
	Before  any         `json:"before"`
	After   any         `json:"after"`
}

// SectionItems holds the record-level matches of every repeated section.
type SectionItems struct {
	Contacts        []MatchedItem[Contact]        `json:"contacts"`
	Educations      []MatchedItem[Education]      `json:"educations"`
	Certifications  []MatchedItem[Certification]  `json:"certifications"`
	Languages       []MatchedItem[Language]       `json:"languages"`
	TechnicalSkills []MatchedItem[TechnicalSkill] `json:"technical_skills"`
	Projects        []MatchedItem[Project]        `json:"projects"`
	Children        []MatchedItem[Child]          `json:"children"`
}

type Comparison struct {
	Total           int           `json:"total"`
	ChangedSections []string      `json:"changed_sections"`
	FieldChanges    []FieldChange `json:"field_changes"`
	Items           SectionItems  `json:"items"`
}

// Compare computes everything a reviewer needs to render a draft against its
// original. Items are keyed by record id, so an edited record shows up as
// modified rather than as a delete plus an add.
func Compare(original, draft Subject) Comparison {
	out := Comparison{ChangedSections: []string{}, FieldChanges: []FieldChange{}}
	before, after := profileOf(original), profileOf(draft)
	if before == nil || after == nil {
		return out
	}

	for _, s := range Sections {
		b, a := s.project(before), s.project(after)
		if !IsChanged(b, a) {
			continue
		}
		out.ChangedSections = append(out.ChangedSections, s.Name)
		if s.Kind != SectionRepeated {
			out.FieldChanges = append(out.FieldChanges, FieldChange{Section: s.Name, Kind: s.Kind, Before: b, After: a})
		}
	}
	out.Total = len(out.ChangedSections)

	out.Items = SectionItems{
		Contacts:        reconcileSection(before.Contacts, after.Contacts),
		Educations:      reconcileSection(before.Educations, after.Educations),
		Certifications:  reconcileSection(before.Certifications, after.Certifications),
		Languages:       reconcileSection(before.Languages, after.Languages),
		TechnicalSkills: reconcileSection(before.TechnicalSkills, after.TechnicalSkills),
		Projects:        reconcileSection(before.Projects, after.Projects),
		Children:        reconcileSection(before.Children, after.Children),
	}
	return out
}

// Summary counts items per status across all repeated sections.
func (c Comparison) Summary() map[string]int {
	counts := map[string]int{}
	tally := func(statuses []string) {
		for _, s := range statuses {
			counts[s]++
		}
	}
	tally(statuses(c.Items.Contacts))
	tally(statuses(c.Items.Educations))
	tally(statuses(c.Items.Certifications))
	tally(statuses(c.Items.Languages))
	tally(statuses(c.Items.TechnicalSkills))
	tally(statuses(c.Items.Projects))
	tally(statuses(c.Items.Children))
	return counts
}

type record[T any] interface {
	RecordID() int64
	withoutIdentity() T
}

func reconcileSection[T record[T]](original, draft []T) []MatchedItem[T] {
	items := Reconcile(original, draft, KeyByRecordID[T])
	for i := range items {
		item := &items[i]
		if item.Status != StatusModified {
			continue
		}
		// timestamps on a matched pair are not an edit
		if !IsChanged((*item.Original).withoutIdentity(), (*item.Draft).withoutIdentity()) {
			item.Status = StatusUnchanged
		}
	}
	return items
}

func statuses[T any](items []MatchedItem[T]) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = item.Status
	}
	return out
}

func profileOf(s Subject) *Profile {
	if s == nil {
		return nil
	}
	return s.ProfileData()
}

func stripOne[T record[T]](item *T) *T {
	if item == nil {
		return nil
	}
	stripped := (*item).withoutIdentity()
	return &stripped
}

// stripAll treats a missing list and an empty list as the same value.
func stripAll[T record[T]](items []T) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		out = append(out, item.withoutIdentity())
	}
	return out
}

func (d DocumentInfo) withoutIdentity() DocumentInfo     { d.Identity = Identity{}; return d }
func (p ProfileInfo) withoutIdentity() ProfileInfo       { p.Identity = Identity{}; return p }
func (c Contact) withoutIdentity() Contact               { c.Identity = Identity{}; return c }
func (e Education) withoutIdentity() Education           { e.Identity = Identity{}; return e }
func (c Certification) withoutIdentity() Certification   { c.Identity = Identity{}; return c }
func (l Language) withoutIdentity() Language             { l.Identity = Identity{}; return l }
func (t TechnicalSkill) withoutIdentity() TechnicalSkill { t.Identity = Identity{}; return t }
func (p Project) withoutIdentity() Project               { p.Identity = Identity{}; return p }
func (c Child) withoutIdentity() Child                   { c.Identity = Identity{}; return c }
