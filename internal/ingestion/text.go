// Package ingestion turns uploaded resumes into structured profile data.
package ingestion

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	spaceRun      = regexp.MustCompile(`[ \t\f\v\x{00a0}]+`)
	blankLineRun  = regexp.MustCompile(`\n{3,}`)
	bulletMarkers = []string{"•", "·", "▪", "◦", "●", "‣", "–", "*", "-"}
)

// CleanText normalizes text extracted from a resume while preserving its line
// structure: line endings become LF, bullets become "- ", runs of spaces
// collapse, control characters are dropped and at most one blank line
// separates blocks.
func CleanText(content string) string {
	if content == "" {
		return ""
	}

	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")

	lines := strings.Split(content, "\n")
	cleaned := make([]string, 0, len(lines))
	for _, line := range lines {
		cleaned = append(cleaned, cleanLine(line))
	}

	result := strings.Join(cleaned, "\n")
	result = blankLineRun.ReplaceAllString(result, "\n\n")
	return strings.TrimSpace(result)
}

// cleanLine cleans a single line.
func cleanLine(line string) string {
	line = strings.Map(func(r rune) rune {
		if r == '\t' {
			return ' '
		}
		if unicode.IsControl(r) || r == '�' {
			return -1
		}
		return r
	}, line)

	line = strings.TrimSpace(spaceRun.ReplaceAllString(line, " "))
	if line == "" {
		return ""
	}

	if rest, ok := trimBullet(line); ok {
		return "- " + rest
	}
	return line
}

// trimBullet strips a leading bullet marker followed by a space.
func trimBullet(line string) (string, bool) {
	for _, marker := range bulletMarkers {
		if rest, ok := strings.CutPrefix(line, marker); ok && strings.HasPrefix(rest, " ") {
			rest = strings.TrimSpace(rest)
			return rest, rest != ""
		}
	}
	return "", false
}

// isBulletLine checks if a cleaned line is a bullet list item
func isBulletLine(line string) bool {
	return strings.HasPrefix(line, "- ")
}

// Lines splits cleaned text into lines, dropping blank ones.
func Lines(text string) []string {
	raw := strings.Split(text, "\n")
	out := make([]string, 0, len(raw))
	for _, l := range raw {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return out
}
