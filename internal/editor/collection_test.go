package editor

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/profile-builder/internal/profile"
	"github.com/jonathan/profile-builder/internal/types"
)

var errServer = errors.New("500 internal server error")

// fakeSkills is an in-memory Remote for skills that can fail selected updates.
type fakeSkills struct {
	mu       sync.Mutex
	items    []types.Skill
	failing  map[uuid.UUID]bool
	failList bool
	failBulk bool

	lists, creates, updates, deletes int
}

func newFakeSkills(names ...string) *fakeSkills {
	f := &fakeSkills{failing: map[uuid.UUID]bool{}}
	for _, name := range names {
		f.items = append(f.items, types.Skill{
			Record:           types.Record{ID: uuid.New()},
			Name:             name,
			Category:         "Languages",
			ProficiencyLevel: 3,
		})
	}
	return f
}

func (f *fakeSkills) List(context.Context) ([]types.Skill, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lists++
	if f.failList {
		return nil, errServer
	}
	return slices.Clone(f.items), nil
}

func (f *fakeSkills) Create(_ context.Context, s *types.Skill) (*types.Skill, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creates++
	created := *s
	created.ID = uuid.New()
	f.items = append(f.items, created)
	return &created, nil
}

func (f *fakeSkills) Update(_ context.Context, s *types.Skill) (*types.Skill, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates++
	if f.failing[s.ID] {
		return nil, errServer
	}
	for i := range f.items {
		if f.items[i].ID == s.ID {
			f.items[i] = *s
			return s, nil
		}
	}
	return nil, fmt.Errorf("skill %s: not found", s.ID)
}

func (f *fakeSkills) UpdateMany(_ context.Context, items []types.Skill) ([]types.Skill, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates++
	if f.failBulk {
		return nil, errServer
	}
	for _, s := range items {
		for i := range f.items {
			if f.items[i].ID == s.ID {
				f.items[i] = s
			}
		}
	}
	return items, nil
}

func (f *fakeSkills) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes++
	f.items = slices.DeleteFunc(f.items, func(s types.Skill) bool { return s.ID == id })
	return nil
}

func (f *fakeSkills) get(id uuid.UUID) types.Skill {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.items {
		if s.ID == id {
			return s
		}
	}
	return types.Skill{}
}

func quietLogger() logrus.FieldLogger {
	logger, _ := test.NewNullLogger()
	return logger
}

func loadedCollection(t *testing.T, remote *fakeSkills, opts ...Option) *Collection[types.Skill] {
	t.Helper()
	opts = append([]Option{WithLogger(quietLogger())}, opts...)
	c := New(profile.Skills, remote, opts...)
	require.NoError(t, c.Load(context.Background()))
	return c
}

func TestCollection_StartEditSnapshots(t *testing.T) {
	remote := newFakeSkills("Go", "SQL")
	c := loadedCollection(t, remote)

	c.StartEdit()
	assert.True(t, c.Editing())
	id := c.Items()[0].ID

	require.NoError(t, c.ChangeField(id, "name", "Golang"))
	assert.Equal(t, "Golang", c.Working()[0].Name)
	assert.Equal(t, "Go", c.Items()[0].Name, "view data is not touched by edits")
	assert.Equal(t, []uuid.UUID{id}, c.Dirty())

	c.CancelEdit()
	assert.False(t, c.Editing())
	assert.Empty(t, c.Dirty())
	assert.Zero(t, remote.updates)
}

func TestCollection_ChangeField_Errors(t *testing.T) {
	c := loadedCollection(t, newFakeSkills("Go"))
	id := c.Items()[0].ID

	assert.ErrorIs(t, c.ChangeField(id, "name", "x"), ErrNotEditing)

	c.StartEdit()
	assert.ErrorIs(t, c.ChangeField(uuid.New(), "name", "x"), ErrUnknownEntity)
	assert.ErrorIs(t, c.ChangeField(id, "colour", "blue"), profile.ErrUnknownField)

	err := c.ChangeField(id, "proficiencyLevel", "lots")
	require.Error(t, err)
	assert.NotEmpty(t, c.FieldError(id, "proficiencyLevel"))
	assert.Equal(t, 3, c.Working()[0].ProficiencyLevel, "unparseable input leaves the field unchanged")
}

func TestCollection_FieldValidityTracksEdits(t *testing.T) {
	c := loadedCollection(t, newFakeSkills("Go"))
	id := c.Items()[0].ID
	c.StartEdit()

	require.NoError(t, c.ChangeField(id, "proficiencyLevel", "6"))
	assert.Contains(t, c.FieldError(id, "proficiencyLevel"), "at most 5")

	require.NoError(t, c.ChangeField(id, "proficiencyLevel", "5"))
	assert.Empty(t, c.FieldError(id, "proficiencyLevel"))
}

func TestCollection_CommitRejectsInvalidWithoutNetwork(t *testing.T) {
	remote := newFakeSkills("Go", "SQL")
	c := loadedCollection(t, remote)
	c.StartEdit()
	first, second := c.Items()[0].ID, c.Items()[1].ID

	require.NoError(t, c.ChangeField(first, "proficiencyLevel", "4"))
	require.NoError(t, c.ChangeField(second, "proficiencyLevel", "0"))
	listsBefore := remote.lists

	err := c.CommitEdits(context.Background())
	ve, ok := profile.AsValidationError(err)
	require.True(t, ok, "want validation error, got %v", err)
	assert.Contains(t, ve.Fields, second.String()+".proficiencyLevel")

	assert.Zero(t, remote.updates)
	assert.Equal(t, listsBefore, remote.lists)
	assert.True(t, c.Editing())
	assert.Equal(t, 3, remote.get(first).ProficiencyLevel)
}

func TestCollection_CommitSequential(t *testing.T) {
	remote := newFakeSkills("Go", "SQL")
	c := loadedCollection(t, remote)
	c.StartEdit()
	first, second := c.Items()[0].ID, c.Items()[1].ID

	require.NoError(t, c.ChangeField(first, "proficiencyLevel", "5"))
	require.NoError(t, c.ChangeField(second, "category", "Databases"))

	require.NoError(t, c.CommitEdits(context.Background()))
	assert.False(t, c.Editing())
	assert.Equal(t, 2, remote.updates)
	assert.Equal(t, 5, c.Items()[0].ProficiencyLevel)
	assert.Equal(t, "Databases", c.Items()[1].Category)
}

func TestCollection_CommitPartialFailure(t *testing.T) {
	modes := []struct {
		name string
		opt  Option
	}{
		{name: "sequential", opt: Sequential()},
		{name: "concurrent", opt: Concurrent(4)},
	}

	for _, mode := range modes {
		t.Run(mode.name, func(t *testing.T) {
			remote := newFakeSkills("Go", "SQL")
			c := loadedCollection(t, remote, mode.opt)
			c.StartEdit()
			first, second := c.Items()[0].ID, c.Items()[1].ID
			remote.failing[second] = true

			require.NoError(t, c.ChangeField(first, "proficiencyLevel", "5"))
			require.NoError(t, c.ChangeField(second, "proficiencyLevel", "1"))
			listsBefore := remote.lists

			err := c.CommitEdits(context.Background())
			var pce *PartialCommitError
			require.ErrorAs(t, err, &pce)
			assert.Equal(t, []uuid.UUID{first}, pce.Succeeded)
			assert.Contains(t, pce.Failed, second)
			assert.ErrorIs(t, err, errServer)
			assert.True(t, IsPartial(err))

			// The first update stuck and the collection re-fetched it.
			assert.Equal(t, 5, remote.get(first).ProficiencyLevel)
			assert.Equal(t, listsBefore+1, remote.lists)
			assert.Equal(t, 5, c.Items()[0].ProficiencyLevel)
			assert.Equal(t, 3, c.Items()[1].ProficiencyLevel)

			// Only the failed edit is left to retry.
			assert.True(t, c.Editing())
			assert.Equal(t, []uuid.UUID{second}, c.Dirty())
		})
	}
}

func TestCollection_CommitSequentialStopsAtFirstFailure(t *testing.T) {
	remote := newFakeSkills("Go", "SQL", "Rust")
	c := loadedCollection(t, remote)
	c.StartEdit()
	ids := []uuid.UUID{c.Items()[0].ID, c.Items()[1].ID, c.Items()[2].ID}
	remote.failing[ids[0]] = true
	for _, id := range ids {
		require.NoError(t, c.ChangeField(id, "proficiencyLevel", "4"))
	}

	err := c.CommitEdits(context.Background())
	var pce *PartialCommitError
	require.ErrorAs(t, err, &pce)
	assert.Empty(t, pce.Succeeded)
	assert.Equal(t, ids[1:], pce.Skipped)
	assert.False(t, IsPartial(err))
	assert.Equal(t, 1, remote.updates)
	assert.Len(t, c.Dirty(), 3)
}

func TestCollection_CommitAtomic(t *testing.T) {
	remote := newFakeSkills("Go", "SQL")
	c := loadedCollection(t, remote, Atomic())
	c.StartEdit()
	first, second := c.Items()[0].ID, c.Items()[1].ID
	require.NoError(t, c.ChangeField(first, "proficiencyLevel", "5"))
	require.NoError(t, c.ChangeField(second, "proficiencyLevel", "1"))

	remote.failBulk = true
	err := c.CommitEdits(context.Background())
	var pce *PartialCommitError
	require.ErrorAs(t, err, &pce)
	assert.Len(t, pce.Failed, 2)
	assert.Empty(t, pce.Succeeded)
	assert.Equal(t, 3, remote.get(first).ProficiencyLevel)

	remote.failBulk = false
	require.NoError(t, c.CommitEdits(context.Background()))
	assert.Equal(t, 2, remote.updates)
	assert.Equal(t, 5, remote.get(first).ProficiencyLevel)
	assert.Equal(t, 1, remote.get(second).ProficiencyLevel)
}

func TestCollection_CommitNothingDirty(t *testing.T) {
	remote := newFakeSkills("Go")
	c := loadedCollection(t, remote)
	c.StartEdit()

	require.NoError(t, c.CommitEdits(context.Background()))
	assert.False(t, c.Editing())
	assert.Zero(t, remote.updates)

	assert.ErrorIs(t, c.CommitEdits(context.Background()), ErrNotEditing)
}

func TestCollection_AddEntity(t *testing.T) {
	remote := newFakeSkills()
	c := loadedCollection(t, remote)

	require.NoError(t, c.SetDraftField("name", "Go"))
	require.NoError(t, c.SetDraftField("proficiencyLevel", "6"))
	assert.NotEmpty(t, c.DraftError("proficiencyLevel"))

	_, err := c.AddEntity(context.Background())
	require.Error(t, err)
	assert.Zero(t, remote.creates, "invalid draft must not reach the network")

	require.NoError(t, c.SetDraftField("proficiencyLevel", "4"))
	assert.Empty(t, c.DraftError("proficiencyLevel"))

	created, err := c.AddEntity(context.Background())
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, created.ID)
	assert.Equal(t, types.Skill{}, c.Draft())
	require.Len(t, c.Items(), 1)
	assert.Equal(t, created.ID, c.Items()[0].ID)
}

func TestCollection_DeleteEntity(t *testing.T) {
	remote := newFakeSkills("Go", "SQL")

	var prompts []string
	answer := false
	confirm := ConfirmFunc(func(_ context.Context, message string) (bool, error) {
		prompts = append(prompts, message)
		return answer, nil
	})
	c := loadedCollection(t, remote, WithConfirmer(confirm))
	c.StartEdit()
	id := c.Items()[0].ID

	require.NoError(t, c.DeleteEntity(context.Background(), id))
	assert.Zero(t, remote.deletes, "declined prompt deletes nothing")
	assert.Len(t, c.Items(), 2)
	require.Len(t, prompts, 1)
	assert.Contains(t, prompts[0], "Go")

	answer = true
	require.NoError(t, c.DeleteEntity(context.Background(), id))
	assert.Equal(t, 1, remote.deletes)
	require.Len(t, c.Items(), 1)
	assert.Equal(t, "SQL", c.Items()[0].Name)
	assert.Len(t, c.Working(), 1)

	assert.ErrorIs(t, c.DeleteEntity(context.Background(), id), ErrUnknownEntity)
}

func TestCollection_LoadFailure(t *testing.T) {
	remote := newFakeSkills("Go")
	logger, hook := test.NewNullLogger()
	c := New(profile.Skills, remote, WithLogger(logger))

	remote.failList = true
	err := c.Load(context.Background())
	assert.ErrorIs(t, err, errServer)
	assert.Empty(t, c.Items())
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
}
