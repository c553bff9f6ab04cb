package llm

import (
	"fmt"
	"strings"

	"github.com/jonathan/profile-builder/internal/prompts"
)

// ExtractionSchema defines the structure for LLM-based content extraction.
type ExtractionSchema struct {
	Name        string        // Schema name (e.g., "ProfileData")
	Description string        // System prompt preamble describing the extraction task
	Fields      []SchemaField // Expected output fields
}

// SchemaField defines a single field in the extraction output.
type SchemaField struct {
	Name        string // JSON field name
	Type        string // Type hint shown to the model
	Description string // Description for the LLM
	Required    bool   // Whether this field is required
}

// BuildExtractionPrompt constructs the LLM prompt from schema and input text.
func BuildExtractionPrompt(schema ExtractionSchema, inputText string) string {
	var sb strings.Builder

	sb.WriteString(schema.Description)
	sb.WriteString("\n\n")

	sb.WriteString("Return ONLY valid JSON matching this exact structure:\n{\n")
	for i, field := range schema.Fields {
		typeHint := field.Type
		if typeHint == "" {
			typeHint = `"string"`
		}
		requiredHint := ""
		if field.Required {
			requiredHint = " (required)"
		}
		fmt.Fprintf(&sb, "  \"%s\": %s%s", field.Name, typeHint, requiredHint)
		if field.Description != "" {
			fmt.Fprintf(&sb, " // %s", field.Description)
		}
		if i < len(schema.Fields)-1 {
			sb.WriteString(",")
		}
		sb.WriteString("\n")
	}
	sb.WriteString("}\n\n")

	sb.WriteString(prompts.Must(prompts.ProfileFile, "extraction-rules"))
	sb.WriteString("\n\n")

	sb.WriteString("Input text:\n\"\"\"\n")
	sb.WriteString(inputText)
	sb.WriteString("\n\"\"\"\n")

	return sb.String()
}

// ProfileDataSchema returns the extraction schema for resumes.
func ProfileDataSchema() ExtractionSchema {
	return ExtractionSchema{
		Name:        "ProfileData",
		Description: prompts.Must(prompts.ProfileFile, "resume-parser"),
		Fields: []SchemaField{
			{Name: "name", Description: "Full name of the candidate"},
			{Name: "title", Description: "Current or most recent professional title"},
			{Name: "location", Description: "City and region/country"},
			{Name: "bio", Description: "Summary or objective paragraph, verbatim"},
			{
				Name:        "experiences",
				Type:        `[{"position": "string", "company": "string", "location": "string", "startDate": "YYYY-MM-DD", "endDate": "YYYY-MM-DD or null", "isCurrentPosition": bool, "description": "string"}]`,
				Description: "Work history, most recent first; endDate is null and isCurrentPosition true for the current role",
				Required:    true,
			},
			{
				Name:        "education",
				Type:        `[{"institution": "string", "degree": "string", "fieldOfStudy": "string", "startYear": int, "endYear": int or null, "description": "string"}]`,
				Description: "Degrees and programs",
				Required:    true,
			},
			{
				Name:        "skills",
				Type:        `[{"name": "string", "category": "string", "proficiencyLevel": int}]`,
				Description: "One entry per skill; proficiencyLevel from 1 (beginner) to 5 (expert), 3 when the resume gives no signal",
				Required:    true,
			},
			{
				Name:        "certifications",
				Type:        `[{"name": "string", "issuer": "string", "issueDate": "YYYY-MM-DD", "expirationDate": "YYYY-MM-DD or null", "credentialUrl": "http(s) URL or null"}]`,
				Description: "Certifications and licenses",
			},
			{
				Name:        "projects",
				Type:        `[{"name": "string", "description": "string", "url": "http(s) URL or null", "technologies": ["string"]}]`,
				Description: "Personal or portfolio projects",
			},
			{
				Name:        "socialLinks",
				Type:        `[{"platform": "string", "url": "http(s) URL"}]`,
				Description: "LinkedIn, GitHub, personal site and similar links",
			},
		},
	}
}
