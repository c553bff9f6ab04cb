package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/jonathan/profile-builder/internal/profile"
)

// Section is the REST collection of one profile section for one user. It
// satisfies editor.Remote. Writes are validated locally before any request and
// invalidate the cached list.
type Section[T any] struct {
	c      *Client
	schema *profile.Schema[T]
	userID uuid.UUID
	list   *Resource[[]T]
}

// NewSection returns the section described by schema for userID.
func NewSection[T any](c *Client, schema *profile.Schema[T], userID uuid.UUID) *Section[T] {
	return &Section[T]{
		c:      c,
		schema: schema,
		userID: userID,
		list:   NewResource[[]T](c, schema.Endpoint(userID)),
	}
}

// Resource exposes the cached list.
func (s *Section[T]) Resource() *Resource[[]T] {
	return s.list
}

// List returns the cached list, fetching it if needed.
func (s *Section[T]) List(ctx context.Context) ([]T, error) {
	return s.list.Get(ctx)
}

// Get fetches one entity, bypassing the cache.
func (s *Section[T]) Get(ctx context.Context, id uuid.UUID) (*T, error) {
	var out T
	if err := s.c.doJSON(ctx, http.MethodGet, s.schema.ItemEndpoint(s.userID, id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Create posts a new entity and returns it with its generated id.
func (s *Section[T]) Create(ctx context.Context, item *T) (*T, error) {
	if err := s.schema.Validate(item); err != nil {
		return nil, err
	}
	var out T
	err := s.c.doJSON(ctx, http.MethodPost, s.schema.Endpoint(s.userID), item, &out)
	s.list.Invalidate()
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Update replaces one entity.
func (s *Section[T]) Update(ctx context.Context, item *T) (*T, error) {
	if err := s.schema.Validate(item); err != nil {
		return nil, err
	}
	var out T
	err := s.c.doJSON(ctx, http.MethodPut, s.schema.ItemEndpoint(s.userID, s.schema.ID(item)), item, &out)
	s.list.Invalidate()
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateMany replaces several entities in one transaction.
func (s *Section[T]) UpdateMany(ctx context.Context, items []T) ([]T, error) {
	invalid := map[string]string{}
	for i := range items {
		ve, ok := profile.AsValidationError(s.schema.Validate(&items[i]))
		if !ok {
			continue
		}
		for field, msg := range ve.Fields {
			invalid[fmt.Sprintf("[%d].%s", i, field)] = msg
		}
	}
	if len(invalid) > 0 {
		return nil, &profile.ValidationError{Fields: invalid}
	}

	var out []T
	err := s.c.doJSON(ctx, http.MethodPut, s.schema.Endpoint(s.userID), items, &out)
	s.list.Invalidate()
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes one entity.
func (s *Section[T]) Delete(ctx context.Context, id uuid.UUID) error {
	err := s.c.doJSON(ctx, http.MethodDelete, s.schema.ItemEndpoint(s.userID, id), nil, nil)
	s.list.Invalidate()
	return err
}
