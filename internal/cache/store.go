package cache

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/jonathan/profile-builder/internal/db"
	"github.com/jonathan/profile-builder/internal/profile"
	"github.com/jonathan/profile-builder/internal/types"
)

// SectionKey is the cache key of a user's section list.
func SectionKey(userID uuid.UUID, section string) string {
	return fmt.Sprintf("profile:%s:%s", userID, section)
}

// GenerationKey counts writes to a user's sections. It sits outside
// UserPattern so pattern deletes never reset it.
func GenerationKey(userID uuid.UUID) string {
	return fmt.Sprintf("profilegen:%s", userID)
}

// UserPattern matches every cached section of a user.
func UserPattern(userID uuid.UUID) string {
	return fmt.Sprintf("profile:%s:*", userID)
}

// Store decorates a db.Store with cached section lists. Every write through
// the store invalidates the affected list.
type Store struct {
	db.Store
	redis  *Redis
	logger logrus.FieldLogger
}

// NewStore wraps next. With an unavailable Redis the wrapper only forwards calls.
func NewStore(next db.Store, r *Redis, logger logrus.FieldLogger) *Store {
	return &Store{Store: next, redis: r, logger: logger}
}

func (s *Store) Experiences() db.SectionStore[types.Experience] {
	return wrap(s, profile.SectionExperiences, s.Store.Experiences())
}

func (s *Store) Education() db.SectionStore[types.Education] {
	return wrap(s, profile.SectionEducation, s.Store.Education())
}

func (s *Store) Skills() db.SectionStore[types.Skill] {
	return wrap(s, profile.SectionSkills, s.Store.Skills())
}

func (s *Store) Certifications() db.SectionStore[types.Certification] {
	return wrap(s, profile.SectionCertifications, s.Store.Certifications())
}

func (s *Store) Projects() db.SectionStore[types.Project] {
	return wrap(s, profile.SectionProjects, s.Store.Projects())
}

func (s *Store) SocialLinks() db.SectionStore[types.SocialLink] {
	return wrap(s, profile.SectionSocialLinks, s.Store.SocialLinks())
}

// SaveProfileData forwards the import and drops every cached section of the user.
func (s *Store) SaveProfileData(ctx context.Context, userID uuid.UUID, data *types.ProfileData) (*types.ImportSummary, error) {
	summary, err := s.Store.SaveProfileData(ctx, userID, data)
	s.invalidate(ctx, userID)
	return summary, err
}

func (s *Store) invalidate(ctx context.Context, userID uuid.UUID) {
	err := s.redis.Bump(ctx, GenerationKey(userID))
	if err == nil {
		err = s.redis.DeleteByPattern(ctx, UserPattern(userID))
	}
	if err != nil && s.logger != nil {
		s.logger.WithError(err).WithField("user_id", userID).Warn("[cache] invalidation failed")
	}
}

func wrap[T any](s *Store, section string, next db.SectionStore[T]) db.SectionStore[T] {
	if !s.redis.Available() {
		return next
	}
	return &cachedSection[T]{next: next, section: section, redis: s.redis, logger: s.logger}
}

type cachedSection[T any] struct {
	next    db.SectionStore[T]
	section string
	redis   *Redis
	logger  logrus.FieldLogger
}

func (c *cachedSection[T]) List(ctx context.Context, userID uuid.UUID) ([]T, error) {
	key := SectionKey(userID, c.section)

	var cached []T
	if hit, err := c.redis.GetJSON(ctx, key, &cached); err == nil && hit {
		return cached, nil
	}

	// A write between the read below and the fill bumps the generation and
	// the fill is skipped.
	genKey := GenerationKey(userID)
	gen, genErr := c.redis.Generation(ctx, genKey)

	items, err := c.next.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	if genErr == nil {
		if _, err := c.redis.SetJSONIf(ctx, genKey, gen, key, items, 0); err != nil && c.logger != nil {
			c.logger.WithError(err).WithField("key", key).Debug("[cache] set failed")
		}
	}
	return items, nil
}

func (c *cachedSection[T]) Get(ctx context.Context, userID, id uuid.UUID) (*T, error) {
	return c.next.Get(ctx, userID, id)
}

func (c *cachedSection[T]) Create(ctx context.Context, userID uuid.UUID, item *T) error {
	defer c.drop(ctx, userID)
	return c.next.Create(ctx, userID, item)
}

func (c *cachedSection[T]) Update(ctx context.Context, userID uuid.UUID, item *T) error {
	defer c.drop(ctx, userID)
	return c.next.Update(ctx, userID, item)
}

func (c *cachedSection[T]) UpdateMany(ctx context.Context, userID uuid.UUID, items []T) error {
	defer c.drop(ctx, userID)
	return c.next.UpdateMany(ctx, userID, items)
}

func (c *cachedSection[T]) Delete(ctx context.Context, userID, id uuid.UUID) error {
	defer c.drop(ctx, userID)
	return c.next.Delete(ctx, userID, id)
}

func (c *cachedSection[T]) drop(ctx context.Context, userID uuid.UUID) {
	key := SectionKey(userID, c.section)
	if err := c.redis.Bump(ctx, GenerationKey(userID), key); err != nil && c.logger != nil {
		c.logger.WithError(err).WithField("key", key).Warn("[cache] invalidation failed")
	}
}
