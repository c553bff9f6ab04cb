package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/jonathan/profile-builder/internal/profile"
	"github.com/jonathan/profile-builder/internal/schemas"
	"github.com/jonathan/profile-builder/internal/server/middleware"
	"github.com/jonathan/profile-builder/internal/types"
)

// resumeField is the multipart field carrying the uploaded resume.
const resumeField = "resume"

// handleUploadResume parses an uploaded PDF into profile data without saving it.
func (s *Server) handleUploadResume(w http.ResponseWriter, r *http.Request) {
	if s.parser == nil {
		s.errorResponse(w, http.StatusServiceUnavailable, "resume import is not configured")
		return
	}

	// Allow a little room for the multipart envelope around the file.
	r.Body = http.MaxBytesReader(w, r.Body, s.uploadMax+64<<10)
	if err := r.ParseMultipartForm(s.uploadMax); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.fail(w, r, err)
			return
		}
		s.fail(w, r, &ErrValidation{Field: resumeField, Message: "expected a multipart form with a resume file"})
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile(resumeField)
	if err != nil {
		s.fail(w, r, &ErrValidation{Field: resumeField, Message: "resume file is required"})
		return
	}
	defer func() { _ = file.Close() }()

	if header.Size > s.uploadMax {
		s.fail(w, r, &http.MaxBytesError{Limit: s.uploadMax})
		return
	}
	data, err := io.ReadAll(io.LimitReader(file, s.uploadMax+1))
	if err != nil {
		s.fail(w, r, fmt.Errorf("failed to read upload: %w", err))
		return
	}
	if int64(len(data)) > s.uploadMax {
		s.fail(w, r, &http.MaxBytesError{Limit: s.uploadMax})
		return
	}

	parsed, err := s.parser.ParsePDF(r.Context(), data)
	if err != nil {
		s.logger.WithError(err).WithField("file", header.Filename).Warn("[import] resume parse failed")
		s.fail(w, r, err)
		return
	}

	s.logger.WithFields(logrus.Fields{
		"file":        header.Filename,
		"experiences": len(parsed.Experiences),
		"skills":      len(parsed.Skills),
	}).Info("[import] resume parsed")
	s.dataResponse(w, http.StatusOK, parsed)
}

// handleSaveProfile persists confirmed profile data for the authenticated user.
func (s *Server) handleSaveProfile(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBytes)
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	var envelope struct {
		ProfileData json.RawMessage `json:"profileData"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		s.fail(w, r, &ErrValidation{Field: "body", Message: "invalid JSON: " + err.Error()})
		return
	}
	if len(envelope.ProfileData) == 0 || string(envelope.ProfileData) == "null" {
		s.fail(w, r, &ErrValidation{Field: "profileData", Message: "profileData is required"})
		return
	}

	if err := schemas.ValidateProfileData(envelope.ProfileData); err != nil {
		var schemaErr *schemas.ValidationError
		if errors.As(err, &schemaErr) {
			s.fail(w, r, &profile.ValidationError{Fields: schemaErr.Fields()})
			return
		}
		s.fail(w, r, fmt.Errorf("profile schema check failed: %w", err))
		return
	}

	var data types.ProfileData
	if err := json.Unmarshal(envelope.ProfileData, &data); err != nil {
		s.fail(w, r, &ErrValidation{Field: "profileData", Message: err.Error()})
		return
	}
	profile.NormalizeProfileData(&data)
	if err := profile.ValidateProfileData(&data); err != nil {
		s.fail(w, r, err)
		return
	}

	summary, err := s.store.SaveProfileData(r.Context(), userID, &data)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	s.logger.WithFields(logrus.Fields{
		"user":        userID,
		"experiences": summary.Experiences,
		"skills":      summary.Skills,
	}).Info("[import] profile saved")
	s.dataResponse(w, http.StatusCreated, summary)
}
