package profile

import "time"

const (
	DraftStatusDraft    = "draft"
	DraftStatusPending  = "pending"
	DraftStatusApproved = "approved"
	DraftStatusRejected = "rejected"
)

const (
	EmployeeStatusActive     = "active"
	EmployeeStatusOnLeave    = "on_leave"
	EmployeeStatusTerminated = "terminated"
)

// Identity holds the server-assigned fields every nested record carries.
// They are never part of a comparison.
type Identity struct {
	ID         int64      `json:"id,omitempty"`
	EmployeeID int64      `json:"employee_id,omitempty"`
	CreatedAt  *time.Time `json:"created_at,omitempty"`
	UpdatedAt  *time.Time `json:"updated_at,omitempty"`
}

// RecordID returns the server-assigned id, zero for records not yet stored.
func (i Identity) RecordID() int64 {
	return i.ID
}

// Profile is the comparable body shared by employees and their drafts.
type Profile struct {
	FullName    string     `json:"full_name"`
	Email       string     `json:"email"`
	Phone       string     `json:"phone"`
	Address     string     `json:"address"`
	DateOfBirth *time.Time `json:"date_of_birth,omitempty"`
	HireDate    *time.Time `json:"hire_date,omitempty"`
	Position    string     `json:"position"`
	Department  string     `json:"department"`
	Status      string     `json:"status"`
	Summary     string     `json:"summary"`

	Document    *DocumentInfo `json:"document,omitempty"`
	ProfileInfo *ProfileInfo  `json:"profile_info,omitempty"`

	Contacts        []Contact        `json:"contacts"`
	Educations      []Education      `json:"educations"`
	Certifications  []Certification  `json:"certifications"`
	Languages       []Language       `json:"languages"`
	TechnicalSkills []TechnicalSkill `json:"technical_skills"`
	Projects        []Project        `json:"projects"`
	Children        []Child          `json:"children"`
}

type Employee struct {
	ID        int64     `json:"id"`
	TenantID  string    `json:"tenant_id,omitempty"`
	UserID    string    `json:"user_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Profile
}

type EmployeeDraft struct {
	ID            int64      `json:"id"`
	EmployeeID    int64      `json:"employee_id"`
	TenantID      string     `json:"tenant_id,omitempty"`
	Status        string     `json:"draft_status"`
	AuthorID      string     `json:"author_id,omitempty"`
	ReviewerID    string     `json:"reviewer_id,omitempty"`
	ReviewComment string     `json:"review_comment,omitempty"`
	ReviewedAt    *time.Time `json:"reviewed_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	Profile
}

// Subject is anything that carries a comparable profile.
type Subject interface {
	ProfileData() *Profile
}

func (p *Profile) ProfileData() *Profile {
	return p
}

func (e *Employee) ProfileData() *Profile {
	if e == nil {
		return nil
	}
	return &e.Profile
}

func (d *EmployeeDraft) ProfileData() *Profile {
	if d == nil {
		return nil
	}
	return &d.Profile
}

// Open reports whether the draft can still be submitted or reviewed.
func (d *EmployeeDraft) Open() bool {
	return d != nil && (d.Status == DraftStatusDraft || d.Status == DraftStatusPending)
}

type DocumentInfo struct {
	Identity
	DocumentType   string     `json:"document_type"`
	DocumentNumber string     `json:"document_number"`
	IssuedAt       *time.Time `json:"issued_at,omitempty"`
	ExpiresAt      *time.Time `json:"expires_at,omitempty"`
	IssuingCountry string     `json:"issuing_country"`
}

type ProfileInfo struct {
	Identity
	AvatarURL   string `json:"avatar_url"`
	LinkedInURL string `json:"linkedin_url"`
	GitHubURL   string `json:"github_url"`
	Timezone    string `json:"timezone"`
}

type Contact struct {
	Identity
	Type      string `json:"type"`
	Value     string `json:"value"`
	IsPrimary bool   `json:"is_primary"`
}

type Education struct {
	Identity
	Institution  string `json:"institution"`
	Degree       string `json:"degree"`
	FieldOfStudy string `json:"field_of_study"`
	StartYear    int    `json:"start_year,omitempty"`
	EndYear      int    `json:"end_year,omitempty"`
}

type Certification struct {
	Identity
	Name         string     `json:"name"`
	Issuer       string     `json:"issuer"`
	CredentialID string     `json:"credential_id"`
	IssuedAt     *time.Time `json:"issued_at,omitempty"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
}

type Language struct {
	Identity
	Name  string `json:"name"`
	Level string `json:"level"`
}

type TechnicalSkill struct {
	Identity
	Name  string  `json:"name"`
	Level string  `json:"level"`
	Years float64 `json:"years,omitempty"`
}

type Project struct {
	Identity
	Title        string     `json:"title"`
	Role         string     `json:"role"`
	Description  string     `json:"description"`
	Technologies []string   `json:"technologies,omitempty"`
	StartDate    *time.Time `json:"start_date,omitempty"`
	EndDate      *time.Time `json:"end_date,omitempty"`
}

type Child struct {
	Identity
	FullName    string     `json:"full_name"`
	DateOfBirth *time.Time `json:"date_of_birth,omitempty"`
	Gender      string     `json:"gender"`
}
