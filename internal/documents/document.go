// Package documents renders resumes and cover letters from a stored profile,
// tailored to a job posting.
package documents

import (
	"fmt"
	"strings"

	"github.com/jonathan/profile-builder/internal/profile"
)

// Kind is the type of document to generate.
type Kind string

const (
	KindResume      Kind = "resume"
	KindCoverLetter Kind = "cover_letter"
)

// Format is the output markup.
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatText     Format = "text"
	FormatLaTeX    Format = "latex"
)

// Request is the body of a document generation call.
type Request struct {
	Kind           Kind   `json:"kind" validate:"required,oneof=resume cover_letter"`
	Format         Format `json:"format" validate:"omitempty,oneof=markdown text latex"`
	JobTitle       string `json:"jobTitle" validate:"required,notblank,max=200"`
	Company        string `json:"company" validate:"required,notblank,max=200"`
	JobDescription string `json:"jobDescription" validate:"max=20000"`
	JobURL         string `json:"jobUrl" validate:"omitempty,httpurl"`
}

var requestLabels = map[string]string{
	"kind":           "Document type",
	"format":         "Format",
	"jobTitle":       "Job title",
	"company":        "Company",
	"jobDescription": "Job description",
	"jobUrl":         "Job posting URL",
}

// Validate checks the request and fills in the default format.
func (r *Request) Validate() error {
	r.JobTitle = strings.TrimSpace(r.JobTitle)
	r.Company = strings.TrimSpace(r.Company)
	r.JobURL = strings.TrimSpace(r.JobURL)
	if err := profile.ValidateStruct(r, requestLabels); err != nil {
		return err
	}
	if r.Format == "" {
		r.Format = FormatMarkdown
	}
	return nil
}

// Document is a rendered document.
type Document struct {
	Kind    Kind   `json:"kind"`
	Format  Format `json:"format"`
	Content string `json:"content"`
}

// TemplateError is returned when a template cannot be parsed or executed.
type TemplateError struct {
	Name  string
	Cause error
}

func (e *TemplateError) Error() string {
	return fmt.Sprintf("template %s: %v", e.Name, e.Cause)
}

func (e *TemplateError) Unwrap() error {
	return e.Cause
}

// PostingError is returned when the job posting at JobURL cannot be read.
type PostingError struct {
	URL   string
	Cause error
}

func (e *PostingError) Error() string {
	return fmt.Sprintf("could not read job posting %s: %v", e.URL, e.Cause)
}

func (e *PostingError) Unwrap() error {
	return e.Cause
}
