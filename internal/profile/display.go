package profile

import (
	"strconv"

	"github.com/jonathan/profile-builder/internal/types"
)

// Present is shown in place of an end date for ongoing positions.
const Present = "Present"

var proficiencyLabels = map[int]string{
	1: "Beginner",
	2: "Elementary",
	3: "Intermediate",
	4: "Advanced",
	5: "Expert",
}

// FormatMonth renders a date as "Jan 2006".
func FormatMonth(d types.Date) string {
	if d.IsZero() {
		return ""
	}
	return d.Format("Jan 2006")
}

// DateRange renders an employment period. Current positions always end in
// "Present", whatever end date is stored.
func DateRange(start types.Date, end *types.Date, current bool) string {
	from := FormatMonth(start)
	switch {
	case current:
		return from + " - " + Present
	case end == nil || end.IsZero():
		return from
	default:
		return from + " - " + FormatMonth(*end)
	}
}

// YearRange renders a study period, e.g. "2015 - 2019" or "2015 - Present".
func YearRange(start int, end *int) string {
	if end == nil {
		return strconv.Itoa(start) + " - " + Present
	}
	return strconv.Itoa(start) + " - " + strconv.Itoa(*end)
}

// ProficiencyLabel names a 1-5 proficiency level.
func ProficiencyLabel(level int) string {
	if label, ok := proficiencyLabels[level]; ok {
		return label
	}
	return "Unrated"
}
