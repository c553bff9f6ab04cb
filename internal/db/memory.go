package db

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/profile-builder/internal/types"
)

// Memory is a Store kept entirely in process memory. It backs tests and the
// `serve --in-memory` development mode; data is lost on exit.
type Memory struct {
	mu          sync.RWMutex
	users       map[uuid.UUID]*User
	suggestions []types.AISuggestion

	experiences    *memSection[types.Experience]
	education      *memSection[types.Education]
	skills         *memSection[types.Skill]
	certifications *memSection[types.Certification]
	projects       *memSection[types.Project]
	socialLinks    *memSection[types.SocialLink]
}

var _ Store = (*Memory)(nil)

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	m := &Memory{users: map[uuid.UUID]*User{}}
	m.experiences = newMemSection(m, ExperienceTable)
	m.education = newMemSection(m, EducationTable)
	m.skills = newMemSection(m, SkillTable)
	m.certifications = newMemSection(m, CertificationTable)
	m.projects = newMemSection(m, ProjectTable)
	m.socialLinks = newMemSection(m, SocialLinkTable)
	return m
}

// Ping always succeeds.
func (m *Memory) Ping(context.Context) error { return nil }

// Close is a no-op.
func (m *Memory) Close() {}

func (m *Memory) Experiences() SectionStore[types.Experience]       { return m.experiences }
func (m *Memory) Education() SectionStore[types.Education]          { return m.education }
func (m *Memory) Skills() SectionStore[types.Skill]                 { return m.skills }
func (m *Memory) Certifications() SectionStore[types.Certification] { return m.certifications }
func (m *Memory) Projects() SectionStore[types.Project]             { return m.projects }
func (m *Memory) SocialLinks() SectionStore[types.SocialLink]       { return m.socialLinks }

func (m *Memory) CheckEmailExists(_ context.Context, email string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.userByEmail(email) != nil, nil
}

func (m *Memory) CreateUser(_ context.Context, name, email, passwordHash string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.userByEmail(email) != nil {
		return nil, ErrEmailTaken
	}
	now := time.Now().UTC()
	u := &User{
		User: types.User{
			ID:          uuid.New(),
			Name:        strings.TrimSpace(name),
			Email:       normalizeEmail(email),
			PasswordSet: passwordHash != "",
			CreatedAt:   now,
			UpdatedAt:   now,
		},
		PasswordHash: passwordHash,
	}
	m.users[u.ID] = u
	copied := *u
	return &copied, nil
}

func (m *Memory) GetUser(_ context.Context, id uuid.UUID) (*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	if !ok {
		return nil, nil
	}
	copied := *u
	return &copied, nil
}

func (m *Memory) GetUserByEmail(_ context.Context, email string) (*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u := m.userByEmail(email)
	if u == nil {
		return nil, nil
	}
	copied := *u
	return &copied, nil
}

func (m *Memory) UpdateUserProfile(_ context.Context, u *types.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.updateUserLocked(u)
}

func (m *Memory) UpdatePassword(_ context.Context, id uuid.UUID, passwordHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return notFound("user", id)
	}
	u.PasswordHash = passwordHash
	u.PasswordSet = true
	u.UpdatedAt = time.Now().UTC()
	return nil
}

func (m *Memory) CreateSuggestion(_ context.Context, s *types.AISuggestion) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s.ID = uuid.New()
	s.CreatedAt = time.Now().UTC()
	m.suggestions = append(m.suggestions, *s)
	return nil
}

func (m *Memory) ListSuggestions(_ context.Context, userID uuid.UUID, limit int) ([]types.AISuggestion, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []types.AISuggestion{}
	for i := len(m.suggestions) - 1; i >= 0 && len(out) < limit; i-- {
		if m.suggestions[i].UserID == userID {
			out = append(out, m.suggestions[i])
		}
	}
	return out, nil
}

// SaveProfileData applies the import under one lock so readers never see a partial import.
func (m *Memory) SaveProfileData(_ context.Context, userID uuid.UUID, data *types.ProfileData) (*types.ImportSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[userID]
	if !ok {
		return nil, notFound("user", userID)
	}
	if hasIdentity(data) {
		updated := u.User
		applyIdentity(&updated, data)
		if err := m.updateUserLocked(&updated); err != nil {
			return nil, err
		}
	}

	return &types.ImportSummary{
		Experiences:    m.experiences.insertAllLocked(userID, data.Experiences),
		Education:      m.education.insertAllLocked(userID, data.Education),
		Skills:         m.skills.insertAllLocked(userID, data.Skills),
		Certifications: m.certifications.insertAllLocked(userID, data.Certifications),
		Projects:       m.projects.insertAllLocked(userID, data.Projects),
		SocialLinks:    m.socialLinks.insertAllLocked(userID, data.SocialLinks),
	}, nil
}

func (m *Memory) userByEmail(email string) *User {
	email = normalizeEmail(email)
	for _, u := range m.users {
		if u.Email == email {
			return u
		}
	}
	return nil
}

func (m *Memory) updateUserLocked(u *types.User) error {
	stored, ok := m.users[u.ID]
	if !ok {
		return notFound("user", u.ID)
	}
	stored.Name = u.Name
	stored.Title = u.Title
	stored.Location = u.Location
	stored.Bio = u.Bio
	stored.AITagline = u.AITagline
	stored.UpdatedAt = time.Now().UTC()
	u.UpdatedAt = stored.UpdatedAt
	return nil
}

// memSection shares the parent's lock so SaveProfileData is atomic across sections.
type memSection[T any] struct {
	parent *Memory
	table  *Table[T]
	rows   map[uuid.UUID]T
	seq    map[uuid.UUID]int
	next   int
}

func newMemSection[T any](parent *Memory, table *Table[T]) *memSection[T] {
	return &memSection[T]{
		parent: parent,
		table:  table,
		rows:   map[uuid.UUID]T{},
		seq:    map[uuid.UUID]int{},
	}
}

func (s *memSection[T]) List(_ context.Context, userID uuid.UUID) ([]T, error) {
	s.parent.mu.RLock()
	defer s.parent.mu.RUnlock()

	items := []T{}
	for _, item := range s.rows {
		if s.table.Record(&item).UserID == userID {
			items = append(items, item)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		return s.seq[s.table.Record(&items[i]).ID] < s.seq[s.table.Record(&items[j]).ID]
	})
	return items, nil
}

func (s *memSection[T]) Get(_ context.Context, userID, id uuid.UUID) (*T, error) {
	s.parent.mu.RLock()
	defer s.parent.mu.RUnlock()

	item, ok := s.rows[id]
	if !ok || s.table.Record(&item).UserID != userID {
		return nil, notFound(s.table.Singular, id)
	}
	return &item, nil
}

func (s *memSection[T]) Create(_ context.Context, userID uuid.UUID, item *T) error {
	s.parent.mu.Lock()
	defer s.parent.mu.Unlock()
	s.insertLocked(userID, item)
	return nil
}

func (s *memSection[T]) Update(_ context.Context, userID uuid.UUID, item *T) error {
	s.parent.mu.Lock()
	defer s.parent.mu.Unlock()
	if err := s.checkLocked(userID, item); err != nil {
		return err
	}
	s.replaceLocked(item)
	return nil
}

func (s *memSection[T]) UpdateMany(_ context.Context, userID uuid.UUID, items []T) error {
	s.parent.mu.Lock()
	defer s.parent.mu.Unlock()
	for i := range items {
		if err := s.checkLocked(userID, &items[i]); err != nil {
			return err
		}
	}
	for i := range items {
		s.replaceLocked(&items[i])
	}
	return nil
}

func (s *memSection[T]) Delete(_ context.Context, userID, id uuid.UUID) error {
	s.parent.mu.Lock()
	defer s.parent.mu.Unlock()

	item, ok := s.rows[id]
	if !ok || s.table.Record(&item).UserID != userID {
		return notFound(s.table.Singular, id)
	}
	delete(s.rows, id)
	delete(s.seq, id)
	return nil
}

func (s *memSection[T]) insertLocked(userID uuid.UUID, item *T) {
	now := time.Now().UTC()
	rec := s.table.Record(item)
	rec.ID = uuid.New()
	rec.UserID = userID
	rec.CreatedAt = now
	rec.UpdatedAt = now
	s.rows[rec.ID] = *item
	s.next++
	s.seq[rec.ID] = s.next
}

func (s *memSection[T]) insertAllLocked(userID uuid.UUID, items []T) int {
	for i := range items {
		s.insertLocked(userID, &items[i])
	}
	return len(items)
}

func (s *memSection[T]) checkLocked(userID uuid.UUID, item *T) error {
	id := s.table.Record(item).ID
	stored, ok := s.rows[id]
	if !ok || s.table.Record(&stored).UserID != userID {
		return notFound(s.table.Singular, id)
	}
	return nil
}

func (s *memSection[T]) replaceLocked(item *T) {
	rec := s.table.Record(item)
	stored := s.rows[rec.ID]
	storedRec := s.table.Record(&stored)
	rec.UserID = storedRec.UserID
	rec.CreatedAt = storedRec.CreatedAt
	rec.UpdatedAt = time.Now().UTC()
	s.rows[rec.ID] = *item
}
