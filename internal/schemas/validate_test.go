package schemas

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const personSchema = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"required": ["person"],
	"properties": {
		"person": {
			"type": "object",
			"required": ["name"],
			"properties": {
				"name": {"type": "string"}
			}
		}
	}
}`

func TestValidateJSONString(t *testing.T) {
	tests := []struct {
		name      string
		document  string
		wantField string
	}{
		{name: "valid", document: `{"person": {"name": "Ada"}}`},
		{name: "missing root field", document: `{"age": 30}`, wantField: "(root)"},
		{name: "missing nested field", document: `{"person": {}}`, wantField: "person"},
		{name: "wrong type", document: `{"person": {"name": 7}}`, wantField: "person.name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateJSONString(personSchema, tt.document)
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)

			validationErr, ok := err.(*ValidationError)
			require.True(t, ok, "error should be ValidationError, got %T", err)
			assert.Contains(t, validationErr.Fields(), tt.wantField)
		})
	}
}

func TestValidateJSONString_BadSchema(t *testing.T) {
	err := ValidateJSONString(`{"type": 12}`, `{}`)
	require.Error(t, err)

	var loadErr *SchemaLoadError
	assert.ErrorAs(t, err, &loadErr)
}

func TestValidateJSONString_MalformedDocument(t *testing.T) {
	err := ValidateJSONString(personSchema, `{ invalid json }`)
	require.Error(t, err)
	_, isValidation := err.(*ValidationError)
	assert.False(t, isValidation)
}

func TestValidationError_Error(t *testing.T) {
	err := &ValidationError{
		Errors: []FieldError{
			{Field: "name", Message: "is required"},
			{Field: "age", Message: "must be a number"},
			{Field: "age", Message: "second message"},
		},
	}

	errorMsg := err.Error()
	assert.Contains(t, errorMsg, "validation failed")
	assert.Contains(t, errorMsg, "1. name: is required")
	assert.Equal(t, "must be a number", err.Fields()["age"])
}

func TestValidateProfileData(t *testing.T) {
	tests := []struct {
		name      string
		document  string
		wantField string
	}{
		{
			name:     "empty profile",
			document: `{}`,
		},
		{
			name: "complete profile",
			document: `{
				"name": "Ada Lovelace",
				"experiences": [{"position": "Analyst", "company": "Engines Ltd", "startDate": "1843-01", "endDate": null, "isCurrentPosition": true}],
				"education": [{"institution": "Home", "degree": "Tutoring", "fieldOfStudy": "Mathematics", "startYear": 1930, "endYear": null}],
				"skills": [{"name": "Mathematics", "category": "Science", "proficiencyLevel": 5}],
				"certifications": [{"name": "AWS SAA", "issuer": "AWS", "issueDate": "2022-01-15", "expirationDate": "2025-01-15", "credentialUrl": null}],
				"projects": [{"name": "Notes", "url": "https://example.com/notes", "technologies": ["Punch cards"]}],
				"socialLinks": [{"platform": "GitHub", "url": "https://github.com/ada"}]
			}`,
		},
		{
			name:      "proficiency out of range",
			document:  `{"skills": [{"name": "Go", "proficiencyLevel": 6}]}`,
			wantField: "skills.0.proficiencyLevel",
		},
		{
			name:      "missing certification issuer",
			document:  `{"certifications": [{"name": "AWS SAA", "issueDate": "2022-01-15"}]}`,
			wantField: "certifications.0",
		},
		{
			name:      "bad date",
			document:  `{"experiences": [{"position": "A", "company": "B", "startDate": "last spring"}]}`,
			wantField: "experiences.0.startDate",
		},
		{
			name:      "non http url",
			document:  `{"socialLinks": [{"platform": "Mail", "url": "mailto:ada@example.com"}]}`,
			wantField: "socialLinks.0.url",
		},
		{
			name:      "blank required text",
			document:  `{"projects": [{"name": "   "}]}`,
			wantField: "projects.0.name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateProfileData([]byte(tt.document))
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			validationErr, ok := err.(*ValidationError)
			require.True(t, ok, "error should be ValidationError, got %T: %v", err, err)
			assert.Contains(t, validationErr.Fields(), tt.wantField)
		})
	}
}
