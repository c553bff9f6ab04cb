package client

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func staticFetch(body string) func(context.Context) (json.RawMessage, error) {
	return func(context.Context) (json.RawMessage, error) {
		return json.RawMessage(body), nil
	}
}

func TestStore_InvalidatedLoadDoesNotOverwriteNewer(t *testing.T) {
	s := newStore()
	ctx := context.Background()

	started := make(chan struct{})
	release := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		raw, err := s.load(ctx, "/list", func(context.Context) (json.RawMessage, error) {
			close(started)
			<-release
			return json.RawMessage(`"old"`), nil
		})
		assert.NoError(t, err)
		assert.JSONEq(t, `"old"`, string(raw), "the caller still gets its own response")
	}()
	<-started

	s.invalidate("/list")
	raw, err := s.load(ctx, "/list", staticFetch(`"new"`))
	require.NoError(t, err)
	assert.JSONEq(t, `"new"`, string(raw))

	close(release)
	<-done

	raw, err = s.load(ctx, "/list", func(context.Context) (json.RawMessage, error) {
		return nil, errors.New("cached value should be served")
	})
	require.NoError(t, err)
	assert.JSONEq(t, `"new"`, string(raw))

	e, ok := s.get("/list")
	require.True(t, ok)
	assert.False(t, e.loading)
}

func TestStore_InvalidatedLoadIsNotCached(t *testing.T) {
	s := newStore()
	ctx := context.Background()

	started := make(chan struct{})
	release := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = s.load(ctx, "/list", func(context.Context) (json.RawMessage, error) {
			close(started)
			<-release
			return json.RawMessage(`"old"`), nil
		})
	}()
	<-started
	s.invalidate("/list")
	close(release)
	<-done

	_, ok := s.get("/list")
	assert.False(t, ok)

	raw, err := s.load(ctx, "/list", staticFetch(`"fresh"`))
	require.NoError(t, err)
	assert.JSONEq(t, `"fresh"`, string(raw))
}

func TestStore_ErrorIsRecordedAndRetried(t *testing.T) {
	s := newStore()
	ctx := context.Background()
	boom := errors.New("boom")

	_, err := s.load(ctx, "/me", func(context.Context) (json.RawMessage, error) { return nil, boom })
	require.ErrorIs(t, err, boom)
	e, ok := s.get("/me")
	require.True(t, ok)
	assert.ErrorIs(t, e.err, boom)

	raw, err := s.load(ctx, "/me", staticFetch(`{"id":1}`))
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":1}`, string(raw))
}
