package ingestion

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/jonathan/profile-builder/internal/types"
)

// DefaultProficiency is assigned to skills whose level the resume does not state.
const DefaultProficiency = 3

type section int

const (
	sectionHeader section = iota
	sectionSummary
	sectionExperience
	sectionEducation
	sectionSkills
	sectionCertifications
	sectionProjects
	sectionLinks
	sectionOther
)

var headings = map[string]section{
	"summary":                     sectionSummary,
	"professional summary":        sectionSummary,
	"profile":                     sectionSummary,
	"about":                       sectionSummary,
	"about me":                    sectionSummary,
	"objective":                   sectionSummary,
	"experience":                  sectionExperience,
	"work experience":             sectionExperience,
	"professional experience":     sectionExperience,
	"employment":                  sectionExperience,
	"employment history":          sectionExperience,
	"work history":                sectionExperience,
	"education":                   sectionEducation,
	"education and training":      sectionEducation,
	"skills":                      sectionSkills,
	"technical skills":            sectionSkills,
	"core competencies":           sectionSkills,
	"skills and tools":            sectionSkills,
	"certifications":              sectionCertifications,
	"certificates":                sectionCertifications,
	"licenses and certifications": sectionCertifications,
	"certifications and licenses": sectionCertifications,
	"projects":                    sectionProjects,
	"personal projects":           sectionProjects,
	"selected projects":           sectionProjects,
	"side projects":               sectionProjects,
	"links":                       sectionLinks,
	"contact":                     sectionLinks,
	"online presence":             sectionLinks,
	"interests":                   sectionOther,
	"languages":                   sectionOther,
	"awards":                      sectionOther,
	"publications":                sectionOther,
	"volunteering":                sectionOther,
	"volunteer experience":        sectionOther,
	"references":                  sectionOther,
}

const (
	monthPattern = `(?:jan|feb|mar|apr|may|jun|jul|aug|sep|sept|oct|nov|dec)[a-z]*\.?`
	datePattern  = `(?:` + monthPattern + `\s+\d{4}|\d{1,2}/\d{4}|\d{4}-\d{2}|\d{4})`
)

var (
	dateRangeRe   = regexp.MustCompile(`(?i)(` + datePattern + `)\s*(?:-|–|—|to)\s*(` + datePattern + `|present|current|now)`)
	singleDateRe  = regexp.MustCompile(`(?i)` + datePattern)
	monthYearRe   = regexp.MustCompile(`(?i)^(` + monthPattern + `)\s+(\d{4})$`)
	yearRe        = regexp.MustCompile(`\b(19|20)\d{2}\b`)
	urlRe         = regexp.MustCompile(`(?i)(?:https?://[^\s,;|)]+|\bwww\.[^\s,;|)]+|\b[a-z0-9-]+(?:\.[a-z0-9-]+)*\.(?:com|io|dev|org|net|me|co|app|tech|ai)/[^\s,;|)]*)`)
	degreeAbbrRe  = regexp.MustCompile(`(?i)^(b\.?sc?\.?|b\.?a\.?|b\.?eng\.?|m\.?sc?\.?|m\.?a\.?|m\.?eng\.?|mba|ph\.?d\.?)$`)
	certWordsRe   = regexp.MustCompile(`(?i)\b(issued|expires|expiration|exp\.?|valid until)\b`)
	degreeRe      = regexp.MustCompile(`(?i)\b(bachelor|master|doctor|associate|diploma|b\.?sc?\.?|b\.?a\.?|b\.?eng\.?|m\.?sc?\.?|m\.?a\.?|m\.?eng\.?|mba|ph\.?d\.?)(?:\b|\s)`)
	institutionRe = regexp.MustCompile(`(?i)\b(university|college|institute|school|academy|polytechnic)\b`)
	locationRe    = regexp.MustCompile(`^[A-Z][A-Za-z .'-]+,\s*[A-Z][A-Za-z .]+$`)
	nameRe        = regexp.MustCompile(`^[\p{L}][\p{L} .'-]+$`)
	levelRe       = regexp.MustCompile(`(?i)\s*[(\[](expert|advanced|proficient|intermediate|familiar|basic|beginner|novice)[)\]]\s*$`)
	techLabelRe   = regexp.MustCompile(`(?i)^(technologies|tech stack|stack|tech|tools|built with)\s*:\s*`)
)

var months = map[string]int{
	"jan": 1, "feb": 2, "mar": 3, "apr": 4, "may": 5, "jun": 6,
	"jul": 7, "aug": 8, "sep": 9, "oct": 10, "nov": 11, "dec": 12,
}

var levels = map[string]int{
	"expert": 5, "advanced": 4, "proficient": 4, "intermediate": 3,
	"familiar": 2, "basic": 2, "beginner": 1, "novice": 1,
}

// ParseText extracts a profile from cleaned resume text using section headings
// and date patterns. Fields it cannot find are left empty for the user to fill in.
func ParseText(text string) *types.ProfileData {
	blocks := splitSections(Lines(CleanText(text)))
	data := &types.ProfileData{}

	parseHeader(data, blocks[sectionHeader])
	data.Bio = joinParagraph(blocks[sectionSummary])
	data.Experiences = parseExperiences(blocks[sectionExperience])
	data.Education = parseEducation(blocks[sectionEducation])
	data.Skills = parseSkills(blocks[sectionSkills])
	data.Certifications = parseCertifications(blocks[sectionCertifications])
	data.Projects = parseProjects(blocks[sectionProjects])

	var linkLines []string
	linkLines = append(linkLines, blocks[sectionHeader]...)
	linkLines = append(linkLines, blocks[sectionLinks]...)
	data.SocialLinks = parseSocialLinks(linkLines)

	ensureSlices(data)
	return data
}

func splitSections(lines []string) map[section][]string {
	blocks := make(map[section][]string)
	current := sectionHeader
	for _, line := range lines {
		if s, ok := headingOf(line); ok {
			current = s
			continue
		}
		blocks[current] = append(blocks[current], line)
	}
	return blocks
}

func headingOf(line string) (section, bool) {
	if len(line) > 40 || isBulletLine(line) {
		return 0, false
	}
	key := strings.ToLower(strings.TrimRight(strings.TrimSpace(line), ":"))
	key = strings.ReplaceAll(key, "&", "and")
	key = strings.Join(strings.Fields(key), " ")
	s, ok := headings[key]
	return s, ok
}

func parseHeader(data *types.ProfileData, lines []string) {
	for _, line := range lines {
		for _, part := range splitSeparators(line) {
			switch {
			case part == "" || isContact(part):
			case data.Name == "" && nameRe.MatchString(part) && len(strings.Fields(part)) <= 5:
				data.Name = part
			case data.Location == "" && locationRe.MatchString(part):
				data.Location = part
			case data.Name != "" && data.Title == "" && !dateRangeRe.MatchString(part):
				data.Title = part
			}
		}
	}
}

// isContact reports whether s looks like an email, phone number or URL.
func isContact(s string) bool {
	if strings.Contains(s, "@") || urlRe.MatchString(s) {
		return true
	}
	digits := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			digits++
		}
	}
	return digits >= 7
}

func splitSeparators(line string) []string {
	parts := strings.FieldsFunc(line, func(r rune) bool {
		return r == '|' || r == '•' || r == '·'
	})
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

func joinParagraph(lines []string) string {
	parts := make([]string, 0, len(lines))
	for _, l := range lines {
		parts = append(parts, strings.TrimPrefix(l, "- "))
	}
	return strings.Join(parts, " ")
}

func parseExperiences(lines []string) []types.Experience {
	var dates []int
	for i, l := range lines {
		if dateRangeRe.MatchString(l) {
			dates = append(dates, i)
		}
	}
	if len(dates) == 0 {
		return nil
	}

	// Titles either precede the date line (up to two plain lines) or, when
	// the block opens with a bare date range, follow it.
	titlesAfter := dates[0] == 0 && dateLineRest(lines[0]) == ""

	starts := make([]int, len(dates))
	floor := 0
	for k, d := range dates {
		s := d
		if !titlesAfter {
			for s > floor && d-s < 2 && !isBulletLine(lines[s-1]) {
				s--
			}
		}
		starts[k] = s
		floor = d + 1
	}

	out := make([]types.Experience, 0, len(dates))
	for k, d := range dates {
		end := len(lines)
		if k+1 < len(dates) {
			end = starts[k+1]
		}

		header := append([]string{}, lines[starts[k]:d]...)
		if rest := dateLineRest(lines[d]); rest != "" {
			header = append(header, rest)
		}
		body := d + 1
		if len(header) == 0 {
			for body < end && len(header) < 2 && !isBulletLine(lines[body]) {
				header = append(header, lines[body])
				body++
			}
		}

		var e types.Experience
		applyDateRange(&e, lines[d])
		applyExperienceHeader(&e, header)
		e.Description = strings.Join(lines[body:end], "\n")
		if e.Position != "" || e.Company != "" {
			out = append(out, e)
		}
	}
	return out
}

// dateLineRest returns the text of a date-range line around the range itself.
func dateLineRest(line string) string {
	loc := dateRangeRe.FindStringIndex(line)
	if loc == nil {
		return line
	}
	rest := strings.TrimSpace(line[:loc[0]] + " " + line[loc[1]:])
	return strings.Trim(rest, " ,|–—-()")
}

func applyDateRange(e *types.Experience, line string) {
	m := dateRangeRe.FindStringSubmatch(line)
	if m == nil {
		return
	}
	if start, ok := parseLooseDate(m[1]); ok {
		e.StartDate = start
	}
	switch strings.ToLower(m[2]) {
	case "present", "current", "now":
		e.IsCurrentPosition = true
	default:
		if end, ok := parseLooseDate(m[2]); ok {
			e.EndDate = &end
		}
	}
}

var roleSeparators = []string{" at ", " @ ", " | ", " — ", " – ", " - ", ", "}

func applyExperienceHeader(e *types.Experience, header []string) {
	switch len(header) {
	case 0:
		return
	case 1:
		e.Position, e.Company = splitFirst(header[0], roleSeparators)
	default:
		e.Position = header[0]
		e.Company = header[1]
		if len(header) > 2 {
			e.Location = header[2]
		}
	}
	if company, location := splitFirst(e.Company, []string{" | ", ", "}); location != "" && e.Location == "" {
		e.Company, e.Location = company, location
	}
}

// splitFirst splits s at the first separator that occurs in it.
func splitFirst(s string, seps []string) (string, string) {
	best, bestSep := -1, ""
	for _, sep := range seps {
		if i := strings.Index(s, sep); i > 0 && (best < 0 || i < best) {
			best, bestSep = i, sep
		}
	}
	if best < 0 {
		return strings.TrimSpace(s), ""
	}
	return strings.TrimSpace(s[:best]), strings.TrimSpace(s[best+len(bestSep):])
}

// parseLooseDate understands "Jan 2020", "January 2020", "1/2020", "2020-01" and "2020".
func parseLooseDate(s string) (types.Date, bool) {
	s = strings.TrimSpace(s)
	if m := monthYearRe.FindStringSubmatch(s); m != nil {
		month := months[strings.ToLower(m[1])[:3]]
		year, _ := strconv.Atoi(m[2])
		return types.NewDate(year, time.Month(month), 1), true
	}
	if before, after, ok := strings.Cut(s, "/"); ok && len(before) == 1 {
		s = "0" + before + "/" + after
	}
	d, err := types.ParseDate(s)
	return d, err == nil
}

func parseEducation(lines []string) []types.Education {
	var (
		out     []types.Education
		current *eduDraft
	)
	for _, line := range lines {
		text := strings.TrimPrefix(line, "- ")
		isInstitution := institutionRe.MatchString(text)
		isDegree := degreeRe.MatchString(text)

		if current == nil ||
			(isInstitution && current.institution != "") ||
			(isDegree && !isInstitution && current.degree != "") {
			if current != nil {
				out = appendEducation(out, current)
			}
			current = &eduDraft{}
		}
		current.add(text, isInstitution, isDegree)
	}
	if current != nil {
		out = appendEducation(out, current)
	}
	return out
}

type eduDraft struct {
	institution string
	degree      string
	field       string
	years       []int
	notes       []string
}

func (d *eduDraft) add(text string, isInstitution, isDegree bool) {
	for _, y := range yearRe.FindAllString(text, -1) {
		n, _ := strconv.Atoi(y)
		d.years = append(d.years, n)
	}
	stripped := strings.TrimSpace(dateRangeRe.ReplaceAllString(text, ""))
	stripped = strings.TrimSpace(yearRe.ReplaceAllString(stripped, ""))
	stripped = strings.Trim(stripped, " ,|–—-()")

	switch {
	case isInstitution && d.institution == "":
		name, rest := splitFirst(stripped, []string{" | ", " — ", " – ", " - "})
		if !institutionRe.MatchString(name) && institutionRe.MatchString(rest) {
			name, rest = rest, name
		}
		d.institution = name
		if isDegree && rest != "" {
			d.setDegree(rest)
		}
	case isDegree && d.degree == "":
		d.setDegree(stripped)
	case stripped != "":
		d.notes = append(d.notes, stripped)
	}
}

func (d *eduDraft) setDegree(s string) {
	if degree, field, ok := cutAny(s, []string{" in ", ", ", " - "}); ok {
		d.degree, d.field = degree, field
		return
	}
	if tokens := strings.Fields(s); len(tokens) > 1 && degreeAbbrRe.MatchString(tokens[0]) {
		d.degree, d.field = tokens[0], strings.Join(tokens[1:], " ")
		return
	}
	d.degree = s
}

func cutAny(s string, seps []string) (string, string, bool) {
	a, b := splitFirst(s, seps)
	return a, b, b != ""
}

func appendEducation(out []types.Education, d *eduDraft) []types.Education {
	if d.institution == "" && d.degree == "" {
		return out
	}
	e := types.Education{
		Institution:  d.institution,
		Degree:       d.degree,
		FieldOfStudy: d.field,
		Description:  strings.Join(d.notes, "\n"),
	}
	if len(d.years) > 0 {
		e.StartYear = d.years[0]
		last := d.years[len(d.years)-1]
		e.EndYear = &last
	}
	return append(out, e)
}

func parseSkills(lines []string) []types.Skill {
	var out []types.Skill
	seen := make(map[string]bool)
	for _, line := range lines {
		text := strings.TrimPrefix(line, "- ")
		category := ""
		if before, after, ok := strings.Cut(text, ":"); ok && len(before) <= 40 {
			category, text = strings.TrimSpace(before), after
		}
		items := strings.FieldsFunc(text, func(r rune) bool {
			return r == ',' || r == ';' || r == '|' || r == '•' || r == '·'
		})
		for _, item := range items {
			level := DefaultProficiency
			if m := levelRe.FindStringSubmatch(item); m != nil {
				level = levels[strings.ToLower(m[1])]
				item = item[:len(item)-len(m[0])]
			}
			name := strings.TrimSpace(item)
			key := strings.ToLower(name)
			if name == "" || len(name) > 100 || seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, types.Skill{Name: name, Category: category, ProficiencyLevel: level})
		}
	}
	return out
}

func parseCertifications(lines []string) []types.Certification {
	var out []types.Certification
	for _, line := range lines {
		text := strings.TrimPrefix(line, "- ")
		var c types.Certification

		if u := findURL(text); u != "" {
			c.CredentialURL = &u
			text = strings.Replace(text, urlRe.FindString(text), "", 1)
		}

		dates := singleDateRe.FindAllString(text, -1)
		if len(dates) > 0 {
			if d, ok := parseLooseDate(dates[0]); ok {
				c.IssueDate = d
			}
			if len(dates) > 1 {
				if d, ok := parseLooseDate(dates[1]); ok {
					c.ExpirationDate = &d
				}
			}
			text = singleDateRe.ReplaceAllString(text, "")
		}
		text = certWordsRe.ReplaceAllString(text, "")
		text = strings.Trim(strings.Join(strings.Fields(text), " "), " ,|–—-():")

		c.Name, c.Issuer = splitFirst(text, []string{" — ", " – ", " - ", " | ", ", ", " by "})
		c.Issuer = strings.Trim(c.Issuer, " ,|–—-():")
		if c.Name != "" {
			out = append(out, c)
		}
	}
	return out
}

func parseProjects(lines []string) []types.Project {
	var (
		out     []types.Project
		current *types.Project
		desc    []string
	)
	flush := func() {
		if current != nil {
			current.Description = strings.Join(desc, "\n")
			out = append(out, *current)
		}
		current, desc = nil, nil
	}

	for _, line := range lines {
		if current != nil && techLabelRe.MatchString(line) {
			current.Technologies = append(current.Technologies, splitList(techLabelRe.ReplaceAllString(line, ""))...)
			continue
		}
		if current != nil && isBulletLine(line) {
			text := strings.TrimPrefix(line, "- ")
			if techLabelRe.MatchString(text) {
				current.Technologies = append(current.Technologies, splitList(techLabelRe.ReplaceAllString(text, ""))...)
				continue
			}
			desc = append(desc, line)
			continue
		}

		flush()
		text := strings.TrimPrefix(line, "- ")
		current = &types.Project{}
		if u := findURL(text); u != "" {
			current.URL = &u
			text = strings.TrimSpace(strings.Replace(text, urlRe.FindString(text), "", 1))
		}
		if open := strings.Index(text, "("); open > 0 && strings.HasSuffix(text, ")") {
			current.Technologies = splitList(text[open+1 : len(text)-1])
			text = strings.TrimSpace(text[:open])
		}
		name, rest := splitFirst(strings.Trim(text, " |–—-:"), []string{" — ", " – ", " - ", ": ", " | "})
		current.Name = name
		if rest != "" {
			desc = append(desc, rest)
		}
	}
	flush()

	kept := out[:0]
	for _, p := range out {
		if p.Name != "" {
			kept = append(kept, p)
		}
	}
	return kept
}

func splitList(s string) []string {
	parts := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ';' || r == '|' })
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

var platforms = []struct {
	host string
	name string
}{
	{"linkedin.com", "LinkedIn"},
	{"github.com", "GitHub"},
	{"gitlab.com", "GitLab"},
	{"twitter.com", "Twitter"},
	{"x.com", "X"},
	{"medium.com", "Medium"},
	{"stackoverflow.com", "Stack Overflow"},
	{"dribbble.com", "Dribbble"},
	{"behance.net", "Behance"},
}

func parseSocialLinks(lines []string) []types.SocialLink {
	var out []types.SocialLink
	seen := make(map[string]bool)
	for _, line := range lines {
		if strings.Contains(line, "@") && !strings.Contains(line, "/") {
			continue
		}
		for _, raw := range urlRe.FindAllString(line, -1) {
			u := normalizeURL(raw)
			if u == "" || seen[u] {
				continue
			}
			seen[u] = true
			out = append(out, types.SocialLink{Platform: platformFor(u), URL: u})
		}
	}
	return out
}

func platformFor(u string) string {
	parsed, err := url.Parse(u)
	if err != nil {
		return "Website"
	}
	host := strings.TrimPrefix(strings.ToLower(parsed.Hostname()), "www.")
	for _, p := range platforms {
		if host == p.host || strings.HasSuffix(host, "."+p.host) {
			return p.name
		}
	}
	return "Website"
}

// findURL returns the first URL in s, normalized to an absolute https URL.
func findURL(s string) string {
	return normalizeURL(urlRe.FindString(s))
}

func normalizeURL(raw string) string {
	raw = strings.TrimRight(strings.TrimSpace(raw), ".,;")
	if raw == "" {
		return ""
	}
	lower := strings.ToLower(raw)
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return ""
	}
	return u.String()
}

func ensureSlices(data *types.ProfileData) {
	if data.Experiences == nil {
		data.Experiences = []types.Experience{}
	}
	if data.Education == nil {
		data.Education = []types.Education{}
	}
	if data.Skills == nil {
		data.Skills = []types.Skill{}
	}
	if data.Certifications == nil {
		data.Certifications = []types.Certification{}
	}
	if data.Projects == nil {
		data.Projects = []types.Project{}
	}
	if data.SocialLinks == nil {
		data.SocialLinks = []types.SocialLink{}
	}
}
