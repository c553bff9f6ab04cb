package editor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/profile-builder/internal/profile"
)

// PartialCommitError reports a commit where some updates failed. Updates
// listed in Succeeded were persisted and are not rolled back.
type PartialCommitError struct {
	Succeeded []uuid.UUID
	Failed    map[uuid.UUID]error
	// Skipped were never sent because a sequential commit stopped early.
	Skipped []uuid.UUID
}

func (e *PartialCommitError) Error() string {
	ids := make([]string, 0, len(e.Failed))
	for id, err := range e.Failed {
		ids = append(ids, fmt.Sprintf("%s (%v)", id, err))
	}
	return fmt.Sprintf("%d of %d updates failed: %s",
		len(e.Failed), len(e.Succeeded)+len(e.Failed)+len(e.Skipped), strings.Join(ids, ", "))
}

// Unwrap exposes the individual failures to errors.Is and errors.As.
func (e *PartialCommitError) Unwrap() []error {
	errs := make([]error, 0, len(e.Failed))
	for _, err := range e.Failed {
		errs = append(errs, err)
	}
	return errs
}

// CommitEdits validates and saves every dirty entity, then re-fetches the
// section whatever the outcome. If any entity is invalid nothing is sent and a
// *profile.ValidationError keyed "<id>.<field>" is returned. If any update
// fails the collection stays in edit mode with the failed edits intact and a
// *PartialCommitError is returned.
func (c *Collection[T]) CommitEdits(ctx context.Context) error {
	if !c.editing {
		return ErrNotEditing
	}
	ids := c.Dirty()
	if len(ids) == 0 {
		c.CancelEdit()
		return nil
	}

	if err := c.validateDirty(ids); err != nil {
		return err
	}

	var result *PartialCommitError
	switch c.opts.mode {
	case modeAtomic:
		result = c.commitAtomic(ctx, ids)
	case modeConcurrent:
		result = c.commitConcurrent(ctx, ids)
	default:
		result = c.commitSequential(ctx, ids)
	}

	for _, id := range result.Succeeded {
		delete(c.dirty, id)
	}

	var commitErr error
	if len(result.Failed) > 0 {
		c.log.WithFields(logrus.Fields{
			"succeeded": len(result.Succeeded),
			"failed":    len(result.Failed),
			"skipped":   len(result.Skipped),
		}).Warn("[editor] commit incomplete")
		commitErr = result
	} else {
		c.CancelEdit()
	}

	if err := c.Load(ctx); err != nil && commitErr == nil {
		return err
	}
	return commitErr
}

func (c *Collection[T]) validateDirty(ids []uuid.UUID) error {
	invalid := map[string]string{}
	for _, id := range ids {
		err := c.schema.Validate(c.working[id])
		ve, ok := profile.AsValidationError(err)
		if !ok {
			continue
		}
		fields := c.validity[id]
		if fields == nil {
			fields = map[string]string{}
			c.validity[id] = fields
		}
		for field, msg := range ve.Fields {
			fields[field] = msg
			invalid[fmt.Sprintf("%s.%s", id, field)] = msg
		}
	}
	if len(invalid) > 0 {
		return &profile.ValidationError{Fields: invalid}
	}
	return nil
}

func (c *Collection[T]) commitSequential(ctx context.Context, ids []uuid.UUID) *PartialCommitError {
	result := &PartialCommitError{Failed: map[uuid.UUID]error{}}
	for i, id := range ids {
		if _, err := c.remote.Update(ctx, c.working[id]); err != nil {
			result.Failed[id] = err
			result.Skipped = append(result.Skipped, ids[i+1:]...)
			break
		}
		result.Succeeded = append(result.Succeeded, id)
	}
	return result
}

func (c *Collection[T]) commitConcurrent(ctx context.Context, ids []uuid.UUID) *PartialCommitError {
	result := &PartialCommitError{Failed: map[uuid.UUID]error{}}
	var mu sync.Mutex

	// Failures are collected rather than returned so one rejection does not
	// cancel the updates already in flight.
	var g errgroup.Group
	g.SetLimit(c.opts.workers)
	for _, id := range ids {
		item := *c.working[id]
		g.Go(func() error {
			_, err := c.remote.Update(ctx, &item)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.Failed[id] = err
			} else {
				result.Succeeded = append(result.Succeeded, id)
			}
			return nil
		})
	}
	_ = g.Wait()
	return result
}

func (c *Collection[T]) commitAtomic(ctx context.Context, ids []uuid.UUID) *PartialCommitError {
	result := &PartialCommitError{Failed: map[uuid.UUID]error{}}
	items := make([]T, 0, len(ids))
	for _, id := range ids {
		items = append(items, *c.working[id])
	}
	if _, err := c.remote.UpdateMany(ctx, items); err != nil {
		for _, id := range ids {
			result.Failed[id] = err
		}
		return result
	}
	result.Succeeded = ids
	return result
}

// IsPartial reports whether err is a commit that persisted some updates but not all.
func IsPartial(err error) bool {
	var pce *PartialCommitError
	return errors.As(err, &pce) && len(pce.Succeeded) > 0
}
