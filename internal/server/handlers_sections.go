package server

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/jonathan/profile-builder/internal/db"
	"github.com/jonathan/profile-builder/internal/profile"
	"github.com/jonathan/profile-builder/internal/server/middleware"
)

// sectionHandler serves the CRUD routes of one profile section.
type sectionHandler[T any] struct {
	s      *Server
	schema *profile.Schema[T]
	store  db.SectionStore[T]
}

// registerSection mounts the collection and item routes of a section under
// /api/users/{userId}/{section}.
func registerSection[T any](s *Server, mux *http.ServeMux, schema *profile.Schema[T], store db.SectionStore[T]) {
	h := &sectionHandler[T]{s: s, schema: schema, store: store}
	collection := "/api/users/{userId}/" + schema.Section
	item := collection + "/{id}"

	mux.Handle("GET "+collection, s.self(h.list))
	mux.Handle("POST "+collection, s.self(h.create))
	mux.Handle("PUT "+collection, s.self(h.updateMany))
	mux.Handle("GET "+item, s.self(h.get))
	mux.Handle("PUT "+item, s.self(h.update))
	mux.Handle("DELETE "+item, s.self(h.delete))
}

func (h *sectionHandler[T]) list(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.user(w, r)
	if !ok {
		return
	}
	items, err := h.store.List(r.Context(), userID)
	if err != nil {
		h.s.fail(w, r, err)
		return
	}
	h.s.dataResponse(w, http.StatusOK, items)
}

func (h *sectionHandler[T]) get(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := h.userAndID(w, r)
	if !ok {
		return
	}
	item, err := h.store.Get(r.Context(), userID, id)
	if err != nil {
		h.s.fail(w, r, err)
		return
	}
	h.s.dataResponse(w, http.StatusOK, item)
}

func (h *sectionHandler[T]) create(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.user(w, r)
	if !ok {
		return
	}

	var item T
	if err := h.s.decodeJSON(w, r, &item); err != nil {
		h.s.fail(w, r, err)
		return
	}
	if err := h.schema.Prepare(&item); err != nil {
		h.s.fail(w, r, err)
		return
	}
	if err := h.store.Create(r.Context(), userID, &item); err != nil {
		h.s.fail(w, r, err)
		return
	}
	h.s.dataResponse(w, http.StatusCreated, item)
}

func (h *sectionHandler[T]) update(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := h.userAndID(w, r)
	if !ok {
		return
	}

	var item T
	if err := h.s.decodeJSON(w, r, &item); err != nil {
		h.s.fail(w, r, err)
		return
	}
	// The path id wins over any id in the body.
	h.schema.Record(&item).ID = id
	if err := h.schema.Prepare(&item); err != nil {
		h.s.fail(w, r, err)
		return
	}
	if err := h.store.Update(r.Context(), userID, &item); err != nil {
		h.s.fail(w, r, err)
		return
	}
	h.s.dataResponse(w, http.StatusOK, item)
}

// updateMany applies a list of updates in one transaction: all succeed or none do.
func (h *sectionHandler[T]) updateMany(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.user(w, r)
	if !ok {
		return
	}

	var items []T
	if err := h.s.decodeJSON(w, r, &items); err != nil {
		h.s.fail(w, r, err)
		return
	}

	fields := map[string]string{}
	for i := range items {
		if h.schema.ID(&items[i]) == uuid.Nil {
			fields[fmt.Sprintf("[%d].id", i)] = "id is required"
			continue
		}
		ve, ok := profile.AsValidationError(h.schema.Prepare(&items[i]))
		if !ok {
			continue
		}
		for name, msg := range ve.Fields {
			fields[fmt.Sprintf("[%d].%s", i, name)] = msg
		}
	}
	if len(fields) > 0 {
		h.s.fail(w, r, &profile.ValidationError{Fields: fields})
		return
	}

	if err := h.store.UpdateMany(r.Context(), userID, items); err != nil {
		h.s.fail(w, r, err)
		return
	}
	h.s.dataResponse(w, http.StatusOK, items)
}

func (h *sectionHandler[T]) delete(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := h.userAndID(w, r)
	if !ok {
		return
	}
	if err := h.store.Delete(r.Context(), userID, id); err != nil {
		h.s.fail(w, r, err)
		return
	}
	h.s.dataResponse(w, http.StatusOK, map[string]uuid.UUID{"id": id})
}

func (h *sectionHandler[T]) user(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		h.s.errorResponse(w, http.StatusUnauthorized, "unauthorized")
		return uuid.Nil, false
	}
	return userID, true
}

func (h *sectionHandler[T]) userAndID(w http.ResponseWriter, r *http.Request) (uuid.UUID, uuid.UUID, bool) {
	userID, ok := h.user(w, r)
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		h.s.fail(w, r, &ErrValidation{Field: "id", Message: "invalid " + h.schema.Section + " id"})
		return uuid.Nil, uuid.Nil, false
	}
	return userID, id, true
}
