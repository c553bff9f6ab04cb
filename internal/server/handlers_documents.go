package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/jonathan/profile-builder/internal/documents"
	"github.com/jonathan/profile-builder/internal/server/middleware"
	"github.com/jonathan/profile-builder/internal/types"
)

// loadProfile assembles the user and every section for rendering or prompting.
func (s *Server) loadProfile(ctx context.Context, userID uuid.UUID) (*types.Profile, error) {
	user, err := s.userService.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	p := &types.Profile{User: *user}
	if p.Experiences, err = s.store.Experiences().List(ctx, userID); err != nil {
		return nil, fmt.Errorf("failed to load experiences: %w", err)
	}
	if p.Education, err = s.store.Education().List(ctx, userID); err != nil {
		return nil, fmt.Errorf("failed to load education: %w", err)
	}
	if p.Skills, err = s.store.Skills().List(ctx, userID); err != nil {
		return nil, fmt.Errorf("failed to load skills: %w", err)
	}
	if p.Certifications, err = s.store.Certifications().List(ctx, userID); err != nil {
		return nil, fmt.Errorf("failed to load certifications: %w", err)
	}
	if p.Projects, err = s.store.Projects().List(ctx, userID); err != nil {
		return nil, fmt.Errorf("failed to load projects: %w", err)
	}
	if p.SocialLinks, err = s.store.SocialLinks().List(ctx, userID); err != nil {
		return nil, fmt.Errorf("failed to load social links: %w", err)
	}
	return p, nil
}

// handleGenerateDocument renders a tailored resume or cover letter.
func (s *Server) handleGenerateDocument(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if s.documents == nil {
		s.errorResponse(w, http.StatusServiceUnavailable, "document generation is not configured")
		return
	}

	var req documents.Request
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		s.fail(w, r, err)
		return
	}

	p, err := s.loadProfile(r.Context(), userID)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	doc, err := s.documents.Generate(r.Context(), p, req)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	s.logger.WithFields(logrus.Fields{
		"user":   userID,
		"kind":   doc.Kind,
		"format": doc.Format,
	}).Info("[documents] generated")
	s.dataResponse(w, http.StatusOK, doc)
}
