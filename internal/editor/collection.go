// Package editor holds the edit state of one profile section: the list last
// fetched from the API, a working copy being edited, a draft for a new entry,
// and the per-field validity shown next to each input.
//
// A Collection is driven by a front end (CLI, TUI or tests). It is not safe for
// concurrent use; fan-out during CommitEdits is internal.
package editor

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/jonathan/profile-builder/internal/profile"
)

var (
	// ErrNotEditing is returned by edit operations outside of edit mode.
	ErrNotEditing = errors.New("collection is not in edit mode")
	// ErrUnknownEntity is returned for ids that are not in the collection.
	ErrUnknownEntity = errors.New("unknown entity")
)

// Remote is the API a collection reads from and writes to.
type Remote[T any] interface {
	List(ctx context.Context) ([]T, error)
	Create(ctx context.Context, item *T) (*T, error)
	Update(ctx context.Context, item *T) (*T, error)
	// UpdateMany applies all updates in one transaction.
	UpdateMany(ctx context.Context, items []T) ([]T, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Confirmer asks the user to confirm a destructive action.
type Confirmer interface {
	Confirm(ctx context.Context, message string) (bool, error)
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, message string) (bool, error)

func (f ConfirmFunc) Confirm(ctx context.Context, message string) (bool, error) {
	return f(ctx, message)
}

// AlwaysConfirm accepts every prompt.
var AlwaysConfirm Confirmer = ConfirmFunc(func(context.Context, string) (bool, error) { return true, nil })

type commitMode int

const (
	modeSequential commitMode = iota
	modeConcurrent
	modeAtomic
)

type options struct {
	mode      commitMode
	workers   int
	confirmer Confirmer
	logger    logrus.FieldLogger
}

// Option configures a Collection.
type Option func(*options)

// Sequential commits dirty entities one at a time and stops at the first failure.
func Sequential() Option {
	return func(o *options) { o.mode = modeSequential }
}

// Concurrent commits up to n dirty entities at once. Every entity is attempted.
func Concurrent(n int) Option {
	return func(o *options) {
		o.mode = modeConcurrent
		o.workers = max(n, 1)
	}
}

// Atomic commits all dirty entities through the batch endpoint.
func Atomic() Option {
	return func(o *options) { o.mode = modeAtomic }
}

// WithConfirmer sets the prompt used before deletes.
func WithConfirmer(c Confirmer) Option {
	return func(o *options) { o.confirmer = c }
}

// WithLogger sets the logger for failed requests.
func WithLogger(l logrus.FieldLogger) Option {
	return func(o *options) { o.logger = l }
}

// Collection is the editable state of one section.
type Collection[T any] struct {
	schema *profile.Schema[T]
	remote Remote[T]
	opts   options
	log    logrus.FieldLogger

	items []T

	editing  bool
	working  map[uuid.UUID]*T
	order    []uuid.UUID
	dirty    map[uuid.UUID]bool
	validity map[uuid.UUID]map[string]string

	draft       T
	draftErrors map[string]string
}

// New returns an empty collection for schema backed by remote. Call Load to fill it.
func New[T any](schema *profile.Schema[T], remote Remote[T], opts ...Option) *Collection[T] {
	o := options{mode: modeSequential, confirmer: AlwaysConfirm, logger: logrus.StandardLogger()}
	for _, opt := range opts {
		opt(&o)
	}
	return &Collection[T]{
		schema:      schema,
		remote:      remote,
		opts:        o,
		log:         o.logger.WithField("section", schema.Section),
		draftErrors: map[string]string{},
	}
}

// Load fetches the section and replaces the view data.
func (c *Collection[T]) Load(ctx context.Context) error {
	items, err := c.remote.List(ctx)
	if err != nil {
		c.log.WithError(err).Warn("[editor] failed to load section")
		return fmt.Errorf("failed to load %s: %w", c.schema.Section, err)
	}
	c.items = items
	return nil
}

// Items returns the view data in display order.
func (c *Collection[T]) Items() []T {
	return slices.Clone(c.items)
}

// Editing reports whether a working copy is open.
func (c *Collection[T]) Editing() bool {
	return c.editing
}

// StartEdit snapshots the view data into a fresh working copy.
func (c *Collection[T]) StartEdit() {
	c.working = make(map[uuid.UUID]*T, len(c.items))
	c.order = make([]uuid.UUID, 0, len(c.items))
	c.dirty = map[uuid.UUID]bool{}
	c.validity = map[uuid.UUID]map[string]string{}
	for _, item := range c.items {
		copied := item
		id := c.schema.ID(&copied)
		c.working[id] = &copied
		c.order = append(c.order, id)
	}
	c.editing = true
}

// CancelEdit discards the working copy.
func (c *Collection[T]) CancelEdit() {
	c.editing = false
	c.working = nil
	c.order = nil
	c.dirty = nil
	c.validity = nil
}

// Working returns the working copy in display order.
func (c *Collection[T]) Working() []T {
	out := make([]T, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, *c.working[id])
	}
	return out
}

// Dirty returns the ids changed since StartEdit, in display order.
func (c *Collection[T]) Dirty() []uuid.UUID {
	var ids []uuid.UUID
	for _, id := range c.order {
		if c.dirty[id] {
			ids = append(ids, id)
		}
	}
	return ids
}

// FieldError returns the validation message for a field of a working entity, or "".
func (c *Collection[T]) FieldError(id uuid.UUID, field string) string {
	return c.validity[id][field]
}

// ChangeField sets one field of a working entity, marks it dirty and
// recomputes that field's validity. A value that cannot be parsed leaves the
// field unchanged and is recorded as its validity message.
func (c *Collection[T]) ChangeField(id uuid.UUID, field, value string) error {
	if !c.editing {
		return ErrNotEditing
	}
	item, ok := c.working[id]
	if !ok {
		return fmt.Errorf("%w %s", ErrUnknownEntity, id)
	}

	fields := c.validity[id]
	if fields == nil {
		fields = map[string]string{}
		c.validity[id] = fields
	}

	if err := c.schema.Set(item, field, value); err != nil {
		if ve, ok := profile.AsValidationError(err); ok {
			fields[field] = ve.Fields[field]
		}
		return err
	}
	c.dirty[id] = true
	fields[field] = c.schema.ValidateField(item, field)
	return nil
}

// Draft returns the entry being added.
func (c *Collection[T]) Draft() T {
	return c.draft
}

// DraftError returns the validation message for a draft field, or "".
func (c *Collection[T]) DraftError(field string) string {
	return c.draftErrors[field]
}

// SetDraftField sets one field of the draft and recomputes its validity.
func (c *Collection[T]) SetDraftField(field, value string) error {
	if err := c.schema.Set(&c.draft, field, value); err != nil {
		if ve, ok := profile.AsValidationError(err); ok {
			c.draftErrors[field] = ve.Fields[field]
		}
		return err
	}
	c.draftErrors[field] = c.schema.ValidateField(&c.draft, field)
	return nil
}

// ResetDraft clears the draft and its validity.
func (c *Collection[T]) ResetDraft() {
	var zero T
	c.draft = zero
	c.draftErrors = map[string]string{}
}

// AddEntity validates the draft, creates it, resets the draft and re-fetches.
// An invalid draft is rejected without a request.
func (c *Collection[T]) AddEntity(ctx context.Context) (*T, error) {
	if err := c.schema.Validate(&c.draft); err != nil {
		if ve, ok := profile.AsValidationError(err); ok {
			c.draftErrors = ve.Fields
		}
		return nil, err
	}

	created, err := c.remote.Create(ctx, &c.draft)
	if err != nil {
		c.log.WithError(err).Warn("[editor] failed to add entry")
		return nil, fmt.Errorf("failed to add to %s: %w", c.schema.Section, err)
	}
	c.ResetDraft()
	return created, c.Load(ctx)
}

// DeleteEntity asks for confirmation, deletes the entity, removes it locally
// and re-fetches. Declining leaves everything unchanged.
func (c *Collection[T]) DeleteEntity(ctx context.Context, id uuid.UUID) error {
	idx := slices.IndexFunc(c.items, func(item T) bool { return c.schema.ID(&item) == id })
	if idx < 0 {
		return fmt.Errorf("%w %s", ErrUnknownEntity, id)
	}

	message := fmt.Sprintf("Delete %q from %s?", c.schema.Summary(&c.items[idx]), c.schema.Title)
	ok, err := c.opts.confirmer.Confirm(ctx, message)
	if err != nil {
		return fmt.Errorf("confirmation failed: %w", err)
	}
	if !ok {
		return nil
	}

	if err := c.remote.Delete(ctx, id); err != nil {
		c.log.WithError(err).WithField("id", id).Warn("[editor] failed to delete entry")
		return fmt.Errorf("failed to delete %s: %w", id, err)
	}

	c.items = slices.Delete(c.items, idx, idx+1)
	if c.editing {
		delete(c.working, id)
		delete(c.dirty, id)
		delete(c.validity, id)
		c.order = slices.DeleteFunc(c.order, func(other uuid.UUID) bool { return other == id })
	}
	return c.Load(ctx)
}
