package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/profile-builder/internal/profile"
	"github.com/jonathan/profile-builder/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose CLI mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(strings.TrimRight(content, "\n"), "\n") {
		if r := []rune(line); len(r) > boxWidth-4 {
			line = string(r[:boxWidth-7]) + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintProfileData outputs a human-readable summary of a parsed resume.
func (p *Printer) PrintProfileData(data *types.ProfileData) {
	if data == nil {
		return
	}

	var sb strings.Builder
	if data.Name != "" {
		sb.WriteString(fmt.Sprintf("Name:     %s\n", data.Name))
	}
	if data.Title != "" {
		sb.WriteString(fmt.Sprintf("Title:    %s\n", data.Title))
	}
	if data.Location != "" {
		sb.WriteString(fmt.Sprintf("Location: %s\n", data.Location))
	}

	writeSection(&sb, profile.Experiences, data.Experiences)
	writeSection(&sb, profile.Education, data.Education)
	writeSection(&sb, profile.Skills, data.Skills)
	writeSection(&sb, profile.Certifications, data.Certifications)
	writeSection(&sb, profile.Projects, data.Projects)
	writeSection(&sb, profile.SocialLinks, data.SocialLinks)

	p.printBox("Parsed Resume", sb.String())
}

// PrintImportSummary outputs per-section record counts.
func (p *Printer) PrintImportSummary(summary *types.ImportSummary) {
	if summary == nil {
		return
	}
	content := fmt.Sprintf(
		"Experiences:    %d\nEducation:      %d\nSkills:         %d\nCertifications: %d\nProjects:       %d\nSocial links:   %d",
		summary.Experiences, summary.Education, summary.Skills,
		summary.Certifications, summary.Projects, summary.SocialLinks,
	)
	p.printBox("Sections", content)
}

func writeSection[T any](sb *strings.Builder, s *profile.Schema[T], items []T) {
	if len(items) == 0 {
		return
	}
	sb.WriteString(fmt.Sprintf("\n%s (%d):\n", s.Title, len(items)))
	count := min(len(items), maxItemsToShow)
	for i := 0; i < count; i++ {
		sb.WriteString(fmt.Sprintf("  • %s\n", s.Summary(&items[i])))
	}
	if len(items) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(items)-maxItemsToShow))
	}
}
