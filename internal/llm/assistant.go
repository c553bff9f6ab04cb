package llm

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/jonathan/profile-builder/internal/prompts"
	"github.com/jonathan/profile-builder/internal/types"
)

// MaxTaglineLength bounds generated taglines, matching the aiTagline field limit.
const MaxTaglineLength = 300

// taglinePromptChars is the length the model is asked to stay within.
const taglinePromptChars = 120

// Assistant runs the profile-specific prompts against a Client.
type Assistant struct {
	client Client
}

// NewAssistant returns an Assistant backed by client.
func NewAssistant(client Client) *Assistant {
	return &Assistant{client: client}
}

// ExtractProfile asks the model to structure resume text. The returned JSON
// has not been validated.
func (a *Assistant) ExtractProfile(ctx context.Context, resumeText string) ([]byte, error) {
	prompt := BuildExtractionPrompt(ProfileDataSchema(), resumeText)
	raw, err := a.client.GenerateJSON(ctx, prompt, TierStandard)
	if err != nil {
		return nil, fmt.Errorf("profile extraction failed: %w", err)
	}
	return []byte(raw), nil
}

// Tagline drafts a one-line professional tagline for the profile.
func (a *Assistant) Tagline(ctx context.Context, p *types.Profile) (string, error) {
	out, err := a.client.GenerateContent(ctx, BuildTaglinePrompt(p), TierLite)
	if err != nil {
		return "", fmt.Errorf("tagline generation failed: %w", err)
	}

	line := FirstLine(out)
	if line == "" {
		return "", fmt.Errorf("tagline generation returned no text")
	}
	if r := []rune(line); len(r) > MaxTaglineLength {
		line = strings.TrimSpace(string(r[:MaxTaglineLength]))
	}
	return line, nil
}

// BuildTaglinePrompt summarizes the profile for the tagline prompt.
func BuildTaglinePrompt(p *types.Profile) string {
	var sb strings.Builder

	if p.User.Name != "" {
		fmt.Fprintf(&sb, "Name: %s\n", p.User.Name)
	}
	if p.User.Title != "" {
		fmt.Fprintf(&sb, "Title: %s\n", p.User.Title)
	}
	if p.User.Bio != "" {
		fmt.Fprintf(&sb, "Bio: %s\n", p.User.Bio)
	}

	for i, e := range p.Experiences {
		if i == 3 {
			break
		}
		fmt.Fprintf(&sb, "Experience: %s at %s\n", e.Position, e.Company)
	}

	if len(p.Skills) > 0 {
		names := make([]string, 0, len(p.Skills))
		for _, s := range p.Skills {
			if s.ProficiencyLevel >= 4 {
				names = append(names, s.Name)
			}
		}
		if len(names) == 0 {
			for _, s := range p.Skills {
				names = append(names, s.Name)
			}
		}
		fmt.Fprintf(&sb, "Key skills: %s\n", strings.Join(names, ", "))
	}

	for _, c := range p.Certifications {
		fmt.Fprintf(&sb, "Certification: %s (%s)\n", c.Name, c.Issuer)
	}

	return prompts.Render(prompts.Must(prompts.ProfileFile, "tagline"), map[string]string{
		"MaxChars": strconv.Itoa(taglinePromptChars),
		"Profile":  sb.String(),
	})
}
