package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"

	"github.com/jonathan/profile-builder/internal/documents"
	"github.com/jonathan/profile-builder/internal/types"
)

// ResumeField is the multipart field the upload endpoint reads.
const ResumeField = "resume"

// UploadResume sends a PDF resume for parsing. Nothing is saved until
// SaveProfile is called with the (possibly edited) result.
func (c *Client) UploadResume(ctx context.Context, filename string, pdf io.Reader) (*types.ProfileData, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile(ResumeField, filepath.Base(filename))
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, pdf); err != nil {
		return nil, fmt.Errorf("failed to read resume: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.resolve("/api/resume/upload"), &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	raw, err := c.send(req)
	if err != nil {
		return nil, err
	}
	var data types.ProfileData
	if err := decodeRaw(raw, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// SaveProfile stores confirmed import data for the signed-in user and drops
// every cached section.
func (c *Client) SaveProfile(ctx context.Context, data *types.ProfileData) (*types.ImportSummary, error) {
	var summary types.ImportSummary
	err := c.doJSON(ctx, http.MethodPost, "/api/profile", types.SaveProfileRequest{ProfileData: data}, &summary)
	c.cache.invalidatePrefix("/api/users/")
	if err != nil {
		return nil, err
	}
	return &summary, nil
}

// GenerateDocument renders a resume or cover letter for a job.
func (c *Client) GenerateDocument(ctx context.Context, req documents.Request) (*documents.Document, error) {
	var doc documents.Document
	if err := c.doJSON(ctx, http.MethodPost, mePath+"/documents", req, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Suggestions returns the cached list of AI suggestions.
func (c *Client) Suggestions() *Resource[[]types.AISuggestion] {
	return NewResource[[]types.AISuggestion](c, mePath+"/suggestions")
}

// SuggestTagline asks the server for a new tagline suggestion.
func (c *Client) SuggestTagline(ctx context.Context) (*types.AISuggestion, error) {
	var s types.AISuggestion
	err := c.doJSON(ctx, http.MethodPost, mePath+"/suggestions/tagline", nil, &s)
	c.cache.invalidate(mePath + "/suggestions")
	if err != nil {
		return nil, err
	}
	return &s, nil
}
