package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"
)

type entry struct {
	raw     json.RawMessage
	err     error
	loading bool
}

// store caches GET responses by path. Concurrent loads of one path share a request.
type store struct {
	mu      sync.Mutex
	entries map[string]*entry
	group   singleflight.Group
}

func newStore() *store {
	return &store{entries: map[string]*entry{}}
}

func (s *store) load(ctx context.Context, key string, fetch func(context.Context) (json.RawMessage, error)) (json.RawMessage, error) {
	s.mu.Lock()
	if e, ok := s.entries[key]; ok && e.raw != nil {
		s.mu.Unlock()
		return e.raw, nil
	}
	e := s.entries[key]
	if e == nil {
		e = &entry{}
		s.entries[key] = e
	}
	e.loading = true
	s.mu.Unlock()

	v, err, _ := s.group.Do(key, func() (any, error) {
		s.mu.Lock()
		if s.entries[key] == e && e.raw != nil {
			s.mu.Unlock()
			return e.raw, nil
		}
		s.mu.Unlock()

		raw, err := fetch(ctx)

		s.mu.Lock()
		defer s.mu.Unlock()
		if s.entries[key] != e {
			// Invalidated while in flight; a newer load owns the key now.
			return raw, err
		}
		e.loading = false
		e.err = err
		if err == nil {
			e.raw = raw
		}
		return raw, err
	})
	if err != nil {
		return nil, err
	}
	return v.(json.RawMessage), nil
}

func (s *store) get(key string) (entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok {
		return entry{}, false
	}
	return *e, true
}

func (s *store) invalidate(key string) {
	s.mu.Lock()
	delete(s.entries, key)
	s.mu.Unlock()
	s.group.Forget(key)
}

func (s *store) invalidatePrefix(prefix string) {
	s.mu.Lock()
	var keys []string
	for key := range s.entries {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	for _, key := range keys {
		delete(s.entries, key)
	}
	s.mu.Unlock()
	for _, key := range keys {
		s.group.Forget(key)
	}
}

// State is a snapshot of a cached resource.
type State[T any] struct {
	Data    T
	Loaded  bool
	Loading bool
	Err     error
}

// Resource is a cached GET endpoint.
type Resource[T any] struct {
	c    *Client
	path string
}

// NewResource returns the cached resource at path.
func NewResource[T any](c *Client, path string) *Resource[T] {
	return &Resource[T]{c: c, path: path}
}

// Path returns the request path of the resource.
func (r *Resource[T]) Path() string {
	return r.path
}

// Get returns the cached value, fetching it on first use.
func (r *Resource[T]) Get(ctx context.Context) (T, error) {
	var out T
	raw, err := r.c.cache.load(ctx, r.path, r.fetch)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("failed to decode %s: %w", r.path, err)
	}
	return out, nil
}

func (r *Resource[T]) fetch(ctx context.Context) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.c.resolve(r.path), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	raw, err := r.c.send(req)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		raw = json.RawMessage("null")
	}
	return raw, nil
}

// State reports the cached data, whether a load is in flight and the last error.
func (r *Resource[T]) State() State[T] {
	var s State[T]
	e, ok := r.c.cache.get(r.path)
	if !ok {
		return s
	}
	s.Loading = e.loading
	s.Err = e.err
	if e.raw != nil && json.Unmarshal(e.raw, &s.Data) == nil {
		s.Loaded = true
	}
	return s
}

// Invalidate drops the cached value so the next Get fetches again.
func (r *Resource[T]) Invalidate() {
	r.c.cache.invalidate(r.path)
}

// Mutate drops the cached value and fetches it again.
func (r *Resource[T]) Mutate(ctx context.Context) (T, error) {
	r.Invalidate()
	return r.Get(ctx)
}
