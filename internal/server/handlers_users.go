package server

import (
	"net/http"

	"github.com/jonathan/profile-builder/internal/profile"
	"github.com/jonathan/profile-builder/internal/server/middleware"
	"github.com/jonathan/profile-builder/internal/types"
)

var profileLabels = map[string]string{
	"name":      "Name",
	"title":     "Title",
	"location":  "Location",
	"bio":       "Bio",
	"aiTagline": "AI tagline",
}

// handleGetUser serves GET /api/users/me and GET /api/users/{userId}.
func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	user, err := s.userService.GetUser(r.Context(), userID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.dataResponse(w, http.StatusOK, user)
}

// handleUpdateUser serves PUT /api/users/{userId}. Only fields present in the body change.
func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req types.UpdateProfileRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	if err := profile.ValidateStruct(&req, profileLabels); err != nil {
		s.fail(w, r, err)
		return
	}

	user, err := s.userService.UpdateProfile(r.Context(), userID, &req)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.dataResponse(w, http.StatusOK, user)
}
