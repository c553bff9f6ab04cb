package profile

import (
	"fmt"
	"strings"

	"github.com/jonathan/profile-builder/internal/types"
)

// Section URL segments.
const (
	SectionExperiences    = "experiences"
	SectionEducation      = "education"
	SectionSkills         = "skills"
	SectionCertifications = "certifications"
	SectionProjects       = "projects"
	SectionSocialLinks    = "social-links"
)

// SectionNames lists every section in display order.
var SectionNames = []string{
	SectionExperiences,
	SectionEducation,
	SectionSkills,
	SectionCertifications,
	SectionProjects,
	SectionSocialLinks,
}

// Experiences is the work-history section.
var Experiences = &Schema[types.Experience]{
	Section: SectionExperiences,
	Title:   "Experience",
	Fields: []Field[types.Experience]{
		textField("position", "Position", true, func(e *types.Experience) *string { return &e.Position }),
		textField("company", "Company", true, func(e *types.Experience) *string { return &e.Company }),
		textField("location", "Location", false, func(e *types.Experience) *string { return &e.Location }),
		dateField("startDate", "Start date", func(e *types.Experience) *types.Date { return &e.StartDate }),
		optionalDateField("endDate", "End date", func(e *types.Experience) **types.Date { return &e.EndDate }),
		boolField("isCurrentPosition", "Current position", func(e *types.Experience) *bool { return &e.IsCurrentPosition }),
		textField("description", "Description", false, func(e *types.Experience) *string { return &e.Description }),
	},
	Record: func(e *types.Experience) *types.Record { return &e.Record },
	Normalize: func(e *types.Experience) {
		trim(&e.Position, &e.Company, &e.Location, &e.Description)
		if e.IsCurrentPosition {
			e.EndDate = nil
		}
	},
	Summary: func(e *types.Experience) string {
		return fmt.Sprintf("%s at %s (%s)", e.Position, e.Company, DateRange(e.StartDate, e.EndDate, e.IsCurrentPosition))
	},
}

// Education is the degrees and courses section.
var Education = &Schema[types.Education]{
	Section: SectionEducation,
	Title:   "Education",
	Fields: []Field[types.Education]{
		textField("institution", "Institution", true, func(e *types.Education) *string { return &e.Institution }),
		textField("degree", "Degree", true, func(e *types.Education) *string { return &e.Degree }),
		textField("fieldOfStudy", "Field of study", true, func(e *types.Education) *string { return &e.FieldOfStudy }),
		intField("startYear", "Start year", true, func(e *types.Education) *int { return &e.StartYear }),
		optionalIntField("endYear", "End year", func(e *types.Education) **int { return &e.EndYear }),
		textField("description", "Description", false, func(e *types.Education) *string { return &e.Description }),
	},
	Record: func(e *types.Education) *types.Record { return &e.Record },
	Normalize: func(e *types.Education) {
		trim(&e.Institution, &e.Degree, &e.FieldOfStudy, &e.Description)
	},
	Summary: func(e *types.Education) string {
		return fmt.Sprintf("%s in %s, %s (%s)", e.Degree, e.FieldOfStudy, e.Institution, YearRange(e.StartYear, e.EndYear))
	},
}

// Skills is the skills section.
var Skills = &Schema[types.Skill]{
	Section: SectionSkills,
	Title:   "Skills",
	Fields: []Field[types.Skill]{
		textField("name", "Name", true, func(s *types.Skill) *string { return &s.Name }),
		textField("category", "Category", false, func(s *types.Skill) *string { return &s.Category }),
		intField("proficiencyLevel", "Proficiency level", true, func(s *types.Skill) *int { return &s.ProficiencyLevel }),
	},
	Record: func(s *types.Skill) *types.Record { return &s.Record },
	Normalize: func(s *types.Skill) {
		trim(&s.Name, &s.Category)
	},
	Summary: func(s *types.Skill) string {
		return fmt.Sprintf("%s (%s)", s.Name, ProficiencyLabel(s.ProficiencyLevel))
	},
}

// Certifications is the credentials section.
var Certifications = &Schema[types.Certification]{
	Section: SectionCertifications,
	Title:   "Certifications",
	Fields: []Field[types.Certification]{
		textField("name", "Name", true, func(c *types.Certification) *string { return &c.Name }),
		textField("issuer", "Issuer", true, func(c *types.Certification) *string { return &c.Issuer }),
		dateField("issueDate", "Issue date", func(c *types.Certification) *types.Date { return &c.IssueDate }),
		optionalDateField("expirationDate", "Expiration date", func(c *types.Certification) **types.Date { return &c.ExpirationDate }),
		optionalTextField("credentialUrl", "Credential URL", func(c *types.Certification) **string { return &c.CredentialURL }),
	},
	Record: func(c *types.Certification) *types.Record { return &c.Record },
	Normalize: func(c *types.Certification) {
		trim(&c.Name, &c.Issuer)
		trimOptional(&c.CredentialURL)
	},
	Summary: func(c *types.Certification) string {
		s := fmt.Sprintf("%s, %s (issued %s", c.Name, c.Issuer, FormatMonth(c.IssueDate))
		if c.ExpirationDate != nil {
			s += ", expires " + FormatMonth(*c.ExpirationDate)
		}
		return s + ")"
	},
}

// Projects is the portfolio section.
var Projects = &Schema[types.Project]{
	Section: SectionProjects,
	Title:   "Projects",
	Fields: []Field[types.Project]{
		textField("name", "Name", true, func(p *types.Project) *string { return &p.Name }),
		textField("description", "Description", false, func(p *types.Project) *string { return &p.Description }),
		optionalTextField("url", "URL", func(p *types.Project) **string { return &p.URL }),
		listField("technologies", "Technologies", func(p *types.Project) *[]string { return &p.Technologies }),
	},
	Record: func(p *types.Project) *types.Record { return &p.Record },
	Normalize: func(p *types.Project) {
		trim(&p.Name, &p.Description)
		trimOptional(&p.URL)
		techs := make([]string, 0, len(p.Technologies))
		for _, t := range p.Technologies {
			if t = strings.TrimSpace(t); t != "" {
				techs = append(techs, t)
			}
		}
		p.Technologies = techs
	},
	Summary: func(p *types.Project) string {
		if len(p.Technologies) == 0 {
			return p.Name
		}
		return fmt.Sprintf("%s [%s]", p.Name, strings.Join(p.Technologies, ", "))
	},
}

// SocialLinks is the external profiles section.
var SocialLinks = &Schema[types.SocialLink]{
	Section: SectionSocialLinks,
	Title:   "Social links",
	Fields: []Field[types.SocialLink]{
		textField("platform", "Platform", true, func(l *types.SocialLink) *string { return &l.Platform }),
		textField("url", "URL", true, func(l *types.SocialLink) *string { return &l.URL }),
	},
	Record: func(l *types.SocialLink) *types.Record { return &l.Record },
	Normalize: func(l *types.SocialLink) {
		trim(&l.Platform, &l.URL)
	},
	Summary: func(l *types.SocialLink) string {
		return fmt.Sprintf("%s: %s", l.Platform, l.URL)
	},
}

// ValidateProfileData checks every record of an import payload and returns a
// single *ValidationError whose keys are prefixed with the section and index,
// e.g. "experiences[0].startDate".
func ValidateProfileData(data *types.ProfileData) error {
	fields := map[string]string{}
	collect(fields, "experiences", Experiences, data.Experiences)
	collect(fields, "education", Education, data.Education)
	collect(fields, "skills", Skills, data.Skills)
	collect(fields, "certifications", Certifications, data.Certifications)
	collect(fields, "projects", Projects, data.Projects)
	collect(fields, "socialLinks", SocialLinks, data.SocialLinks)
	if len(fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: fields}
}

// NormalizeProfileData applies each section's normalization to every record.
func NormalizeProfileData(data *types.ProfileData) {
	normalizeAll(Experiences, data.Experiences)
	normalizeAll(Education, data.Education)
	normalizeAll(Skills, data.Skills)
	normalizeAll(Certifications, data.Certifications)
	normalizeAll(Projects, data.Projects)
	normalizeAll(SocialLinks, data.SocialLinks)
	trim(&data.Name, &data.Title, &data.Location, &data.Bio)
}

func collect[T any](dst map[string]string, prefix string, s *Schema[T], items []T) {
	for i := range items {
		ve, ok := AsValidationError(s.Validate(&items[i]))
		if !ok {
			continue
		}
		for field, msg := range ve.Fields {
			dst[fmt.Sprintf("%s[%d].%s", prefix, i, field)] = msg
		}
	}
}

func normalizeAll[T any](s *Schema[T], items []T) {
	for i := range items {
		s.Normalize(&items[i])
	}
}
