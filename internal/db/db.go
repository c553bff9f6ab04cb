// Package db provides PostgreSQL storage for users and their profile sections.
package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jonathan/profile-builder/internal/types"
)

// ErrNotFound is returned (wrapped) when a record does not exist for the user.
var ErrNotFound = errors.New("not found")

// SectionStore persists the records of one profile section. Every call is
// scoped to the owning user; records of other users are never visible.
type SectionStore[T any] interface {
	List(ctx context.Context, userID uuid.UUID) ([]T, error)
	Get(ctx context.Context, userID, id uuid.UUID) (*T, error)
	Create(ctx context.Context, userID uuid.UUID, item *T) error
	Update(ctx context.Context, userID uuid.UUID, item *T) error
	// UpdateMany applies every update or none of them.
	UpdateMany(ctx context.Context, userID uuid.UUID, items []T) error
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

// Store is everything the API server needs from persistence.
type Store interface {
	UserStore

	Experiences() SectionStore[types.Experience]
	Education() SectionStore[types.Education]
	Skills() SectionStore[types.Skill]
	Certifications() SectionStore[types.Certification]
	Projects() SectionStore[types.Project]
	SocialLinks() SectionStore[types.SocialLink]

	CreateSuggestion(ctx context.Context, s *types.AISuggestion) error
	ListSuggestions(ctx context.Context, userID uuid.UUID, limit int) ([]types.AISuggestion, error)

	// SaveProfileData stores an imported profile for the user in one transaction.
	SaveProfileData(ctx context.Context, userID uuid.UUID, data *types.ProfileData) (*types.ImportSummary, error)

	Ping(ctx context.Context) error
	Close()
}

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// DB wraps a PostgreSQL connection pool
type DB struct {
	pool *pgxpool.Pool
}

var _ Store = (*DB)(nil)

// Connect establishes a connection pool to the database
func Connect(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Close closes the connection pool
func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

// Ping verifies the database is reachable.
func (db *DB) Ping(ctx context.Context) error {
	return db.pool.Ping(ctx)
}

// withTx runs fn inside a transaction, committing only if fn succeeds.
func (db *DB) withTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func notFound(what string, id uuid.UUID) error {
	return fmt.Errorf("%s %s: %w", what, id, ErrNotFound)
}
