package documents

import (
	"strings"
	"time"

	"github.com/jonathan/profile-builder/internal/profile"
	"github.com/jonathan/profile-builder/internal/types"
)

// maxHighlights caps the matching skills named in a cover letter.
const maxHighlights = 5

type view struct {
	Name        string
	Title       string
	Location    string
	Email       string
	Summary     string
	Links       []types.SocialLink
	Companies   []companyView
	Education   []educationView
	SkillGroups []skillGroup
	Certs       []certView
	Projects    []projectView

	JobTitle   string
	Company    string
	Highlights []string
	Lead       *roleView
	Date       string
}

type companyView struct {
	Name  string
	Roles []roleView
}

type roleView struct {
	Position string
	Company  string
	Location string
	Dates    string
	Bullets  []string
}

type educationView struct {
	Institution string
	Degree      string
	Field       string
	Years       string
}

type skillGroup struct {
	Category string
	Skills   []string
}

type certView struct {
	Name   string
	Issuer string
	Issued string
	URL    string
}

type projectView struct {
	Name         string
	Description  string
	URL          string
	Technologies string
}

func buildView(p *types.Profile, req *Request, kw Keywords, now time.Time) *view {
	v := &view{
		Name:     p.User.Name,
		Title:    p.User.Title,
		Location: p.User.Location,
		Email:    p.User.Email,
		Summary:  firstNonEmpty(p.User.Bio, p.User.AITagline),
		Links:    p.SocialLinks,
		JobTitle: req.JobTitle,
		Company:  req.Company,
		Date:     now.Format("January 2, 2006"),
	}

	exps := RankExperiences(p.Experiences, kw)
	v.Companies = groupByCompany(exps)
	for _, e := range exps {
		if lead := newRoleView(e); len(lead.Bullets) > 0 {
			v.Lead = &lead
			break
		}
	}

	skills := RankSkills(p.Skills, kw)
	v.SkillGroups = groupSkills(skills)
	v.Highlights = MatchingSkills(skills, kw)
	if len(v.Highlights) == 0 {
		for _, s := range skills {
			if s.ProficiencyLevel >= 4 {
				v.Highlights = append(v.Highlights, s.Name)
			}
		}
	}
	if len(v.Highlights) > maxHighlights {
		v.Highlights = v.Highlights[:maxHighlights]
	}

	for _, e := range p.Education {
		v.Education = append(v.Education, educationView{
			Institution: e.Institution,
			Degree:      e.Degree,
			Field:       e.FieldOfStudy,
			Years:       profile.YearRange(e.StartYear, e.EndYear),
		})
	}
	for _, c := range p.Certifications {
		cv := certView{Name: c.Name, Issuer: c.Issuer, Issued: profile.FormatMonth(c.IssueDate)}
		if c.CredentialURL != nil {
			cv.URL = *c.CredentialURL
		}
		v.Certs = append(v.Certs, cv)
	}
	for _, pr := range p.Projects {
		pv := projectView{Name: pr.Name, Description: pr.Description, Technologies: strings.Join(pr.Technologies, ", ")}
		if pr.URL != nil {
			pv.URL = *pr.URL
		}
		v.Projects = append(v.Projects, pv)
	}
	return v
}

func newRoleView(e types.Experience) roleView {
	return roleView{
		Position: e.Position,
		Company:  e.Company,
		Location: e.Location,
		Dates:    profile.DateRange(e.StartDate, e.EndDate, e.IsCurrentPosition),
		Bullets:  bullets(e.Description),
	}
}

// groupByCompany collects roles under their company, keeping companies in
// the order they first appear.
func groupByCompany(exps []types.Experience) []companyView {
	var out []companyView
	index := make(map[string]int)
	for _, e := range exps {
		key := strings.ToLower(strings.TrimSpace(e.Company))
		i, ok := index[key]
		if !ok {
			i = len(out)
			index[key] = i
			out = append(out, companyView{Name: e.Company})
		}
		out[i].Roles = append(out[i].Roles, newRoleView(e))
	}
	return out
}

func groupSkills(skills []types.Skill) []skillGroup {
	var out []skillGroup
	index := make(map[string]int)
	for _, s := range skills {
		category := s.Category
		if category == "" {
			category = "Skills"
		}
		i, ok := index[category]
		if !ok {
			i = len(out)
			index[category] = i
			out = append(out, skillGroup{Category: category})
		}
		out[i].Skills = append(out[i].Skills, s.Name)
	}
	return out
}

// bullets splits a description into lines without their list markers.
func bullets(description string) []string {
	var out []string
	for _, line := range strings.Split(description, "\n") {
		line = strings.TrimSpace(line)
		for _, marker := range []string{"- ", "* ", "• "} {
			line = strings.TrimPrefix(line, marker)
		}
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
