package types

import (
	"time"

	"github.com/google/uuid"
)

// Record holds the identity and ownership fields shared by every profile entity.
type Record struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Experience is a position held at a company.
type Experience struct {
	Record
	Position          string `json:"position" validate:"required,notblank,max=200"`
	Company           string `json:"company" validate:"required,notblank,max=200"`
	Location          string `json:"location" validate:"max=200"`
	StartDate         Date   `json:"startDate"`
	EndDate           *Date  `json:"endDate"`
	IsCurrentPosition bool   `json:"isCurrentPosition"`
	Description       string `json:"description" validate:"max=5000"`
}

// Education is a degree or course of study.
type Education struct {
	Record
	Institution  string `json:"institution" validate:"required,notblank,max=200"`
	Degree       string `json:"degree" validate:"required,notblank,max=200"`
	FieldOfStudy string `json:"fieldOfStudy" validate:"required,notblank,max=200"`
	StartYear    int    `json:"startYear" validate:"required,min=1900,max=2100"`
	EndYear      *int   `json:"endYear" validate:"omitempty,min=1900,max=2100"`
	Description  string `json:"description" validate:"max=5000"`
}

// Skill is a named skill with a self-assessed proficiency.
type Skill struct {
	Record
	Name             string `json:"name" validate:"required,notblank,max=100"`
	Category         string `json:"category" validate:"max=100"`
	ProficiencyLevel int    `json:"proficiencyLevel" validate:"min=1,max=5"`
}

// Certification is a credential issued by an organization.
type Certification struct {
	Record
	Name           string  `json:"name" validate:"required,notblank,max=200"`
	Issuer         string  `json:"issuer" validate:"required,notblank,max=200"`
	IssueDate      Date    `json:"issueDate"`
	ExpirationDate *Date   `json:"expirationDate"`
	CredentialURL  *string `json:"credentialUrl" validate:"omitempty,httpurl"`
}

// Project is a portfolio project shown on the profile.
type Project struct {
	Record
	Name         string   `json:"name" validate:"required,notblank,max=200"`
	Description  string   `json:"description" validate:"max=5000"`
	URL          *string  `json:"url" validate:"omitempty,httpurl"`
	Technologies []string `json:"technologies" validate:"dive,notblank,max=100"`
}

// SocialLink is a link to the user's presence on another site.
type SocialLink struct {
	Record
	Platform string `json:"platform" validate:"required,notblank,max=100"`
	URL      string `json:"url" validate:"required,httpurl"`
}

// AISuggestion is a machine-generated suggestion shown alongside the profile.
type AISuggestion struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"userId"`
	Kind      string    `json:"kind"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

// SuggestionKindTagline marks a suggested profile tagline.
const SuggestionKindTagline = "tagline"

// ProfileData is the structured result of a resume import, confirmed by the user before it is saved.
type ProfileData struct {
	Name           string          `json:"name,omitempty"`
	Title          string          `json:"title,omitempty"`
	Location       string          `json:"location,omitempty"`
	Bio            string          `json:"bio,omitempty"`
	Experiences    []Experience    `json:"experiences"`
	Education      []Education     `json:"education"`
	Skills         []Skill         `json:"skills"`
	Certifications []Certification `json:"certifications"`
	Projects       []Project       `json:"projects"`
	SocialLinks    []SocialLink    `json:"socialLinks"`
}

// SaveProfileRequest is the body of POST /api/profile.
type SaveProfileRequest struct {
	ProfileData *ProfileData `json:"profileData"`
}

// ImportSummary reports how many records of each section a profile save created.
type ImportSummary struct {
	Experiences    int `json:"experiences"`
	Education      int `json:"education"`
	Skills         int `json:"skills"`
	Certifications int `json:"certifications"`
	Projects       int `json:"projects"`
	SocialLinks    int `json:"socialLinks"`
}

// Counts returns the number of records per section in d.
func (d *ProfileData) Counts() ImportSummary {
	if d == nil {
		return ImportSummary{}
	}
	return ImportSummary{
		Experiences:    len(d.Experiences),
		Education:      len(d.Education),
		Skills:         len(d.Skills),
		Certifications: len(d.Certifications),
		Projects:       len(d.Projects),
		SocialLinks:    len(d.SocialLinks),
	}
}

// Profile is a user together with every profile section, used for document generation.
type Profile struct {
	User           User            `json:"user"`
	Experiences    []Experience    `json:"experiences"`
	Education      []Education     `json:"education"`
	Skills         []Skill         `json:"skills"`
	Certifications []Certification `json:"certifications"`
	Projects       []Project       `json:"projects"`
	SocialLinks    []SocialLink    `json:"socialLinks"`
}

// StringPtr returns a pointer to s, or nil when s is empty.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// IntPtr returns a pointer to i.
func IntPtr(i int) *int {
	return &i
}
