package server

import (
	"net/http"

	"github.com/jonathan/profile-builder/internal/llm"
	"github.com/jonathan/profile-builder/internal/server/middleware"
	"github.com/jonathan/profile-builder/internal/types"
)

// suggestionListLimit caps GET /suggestions.
const suggestionListLimit = 50

// handleListSuggestions returns the user's stored suggestions, newest first.
func (s *Server) handleListSuggestions(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	suggestions, err := s.store.ListSuggestions(r.Context(), userID, suggestionListLimit)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.dataResponse(w, http.StatusOK, suggestions)
}

// handleSuggestTagline drafts a tagline with the LLM and stores it as a suggestion.
// The user's aiTagline is not changed until they apply it.
func (s *Server) handleSuggestTagline(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if s.tagline == nil {
		s.fail(w, r, llm.ErrNotConfigured)
		return
	}

	p, err := s.loadProfile(r.Context(), userID)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	line, err := s.tagline.Tagline(r.Context(), p)
	if err != nil {
		s.logger.WithError(err).WithField("user", userID).Warn("[suggestions] tagline generation failed")
		s.fail(w, r, err)
		return
	}

	suggestion := &types.AISuggestion{
		UserID:  userID,
		Kind:    types.SuggestionKindTagline,
		Content: line,
	}
	if err := s.store.CreateSuggestion(r.Context(), suggestion); err != nil {
		s.fail(w, r, err)
		return
	}
	s.dataResponse(w, http.StatusCreated, suggestion)
}
