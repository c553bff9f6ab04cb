package db

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jonathan/profile-builder/internal/types"
)

// Table maps a profile entity to its PostgreSQL table. Every table has
// id, user_id, created_at and updated_at around the entity columns.
type Table[T any] struct {
	Name     string
	Singular string
	Columns  []string
	Record   func(*T) *types.Record
	// Values returns the entity column values in Columns order.
	Values func(*T) []any
	// Scan reads id, user_id, the entity columns, created_at and updated_at.
	Scan func(row pgx.Row, item *T) error
}

func (t *Table[T]) returning() string {
	return "id, user_id, " + strings.Join(t.Columns, ", ") + ", created_at, updated_at"
}

func (t *Table[T]) list(ctx context.Context, q querier, userID uuid.UUID) ([]T, error) {
	rows, err := q.Query(ctx,
		fmt.Sprintf(`SELECT %s FROM %s WHERE user_id = $1 ORDER BY created_at, id`, t.returning(), t.Name),
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", t.Name, err)
	}
	defer rows.Close()

	items := []T{}
	for rows.Next() {
		var item T
		if err := t.Scan(rows, &item); err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", t.Singular, err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", t.Name, err)
	}
	return items, nil
}

func (t *Table[T]) get(ctx context.Context, q querier, userID, id uuid.UUID) (*T, error) {
	var item T
	err := t.Scan(q.QueryRow(ctx,
		fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1 AND user_id = $2`, t.returning(), t.Name),
		id, userID,
	), &item)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, notFound(t.Singular, id)
		}
		return nil, fmt.Errorf("failed to get %s: %w", t.Singular, err)
	}
	return &item, nil
}

func (t *Table[T]) insert(ctx context.Context, q querier, userID uuid.UUID, item *T) error {
	placeholders := make([]string, len(t.Columns))
	for i := range t.Columns {
		placeholders[i] = fmt.Sprintf("$%d", i+2)
	}
	query := fmt.Sprintf(`INSERT INTO %s (user_id, %s) VALUES ($1, %s) RETURNING %s`,
		t.Name, strings.Join(t.Columns, ", "), strings.Join(placeholders, ", "), t.returning())

	args := append([]any{userID}, t.Values(item)...)
	if err := t.Scan(q.QueryRow(ctx, query, args...), item); err != nil {
		return fmt.Errorf("failed to create %s: %w", t.Singular, err)
	}
	return nil
}

func (t *Table[T]) update(ctx context.Context, q querier, userID uuid.UUID, item *T) error {
	id := t.Record(item).ID
	sets := make([]string, len(t.Columns))
	for i, col := range t.Columns {
		sets[i] = fmt.Sprintf("%s = $%d", col, i+3)
	}
	query := fmt.Sprintf(`UPDATE %s SET %s, updated_at = NOW() WHERE id = $1 AND user_id = $2 RETURNING %s`,
		t.Name, strings.Join(sets, ", "), t.returning())

	args := append([]any{id, userID}, t.Values(item)...)
	if err := t.Scan(q.QueryRow(ctx, query, args...), item); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return notFound(t.Singular, id)
		}
		return fmt.Errorf("failed to update %s: %w", t.Singular, err)
	}
	return nil
}

func (t *Table[T]) delete(ctx context.Context, q querier, userID, id uuid.UUID) error {
	result, err := q.Exec(ctx,
		fmt.Sprintf(`DELETE FROM %s WHERE id = $1 AND user_id = $2`, t.Name),
		id, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", t.Singular, err)
	}
	if result.RowsAffected() == 0 {
		return notFound(t.Singular, id)
	}
	return nil
}

// Section is the PostgreSQL SectionStore for one table.
type Section[T any] struct {
	db    *DB
	table *Table[T]
}

// List returns the user's records in creation order.
func (s *Section[T]) List(ctx context.Context, userID uuid.UUID) ([]T, error) {
	return s.table.list(ctx, s.db.pool, userID)
}

// Get returns one record or an error wrapping ErrNotFound.
func (s *Section[T]) Get(ctx context.Context, userID, id uuid.UUID) (*T, error) {
	return s.table.get(ctx, s.db.pool, userID, id)
}

// Create inserts item and fills in its generated id and timestamps.
func (s *Section[T]) Create(ctx context.Context, userID uuid.UUID, item *T) error {
	return s.table.insert(ctx, s.db.pool, userID, item)
}

// Update replaces the stored columns of item.
func (s *Section[T]) Update(ctx context.Context, userID uuid.UUID, item *T) error {
	return s.table.update(ctx, s.db.pool, userID, item)
}

// UpdateMany updates every item in a single transaction.
func (s *Section[T]) UpdateMany(ctx context.Context, userID uuid.UUID, items []T) error {
	return s.db.withTx(ctx, func(tx pgx.Tx) error {
		for i := range items {
			if err := s.table.update(ctx, tx, userID, &items[i]); err != nil {
				return err
			}
		}
		return nil
	})
}

// Delete removes one record.
func (s *Section[T]) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return s.table.delete(ctx, s.db.pool, userID, id)
}

// Experiences returns the experiences store.
func (db *DB) Experiences() SectionStore[types.Experience] {
	return &Section[types.Experience]{db: db, table: ExperienceTable}
}

// Education returns the education store.
func (db *DB) Education() SectionStore[types.Education] {
	return &Section[types.Education]{db: db, table: EducationTable}
}

// Skills returns the skills store.
func (db *DB) Skills() SectionStore[types.Skill] {
	return &Section[types.Skill]{db: db, table: SkillTable}
}

// Certifications returns the certifications store.
func (db *DB) Certifications() SectionStore[types.Certification] {
	return &Section[types.Certification]{db: db, table: CertificationTable}
}

// Projects returns the projects store.
func (db *DB) Projects() SectionStore[types.Project] {
	return &Section[types.Project]{db: db, table: ProjectTable}
}

// SocialLinks returns the social links store.
func (db *DB) SocialLinks() SectionStore[types.SocialLink] {
	return &Section[types.SocialLink]{db: db, table: SocialLinkTable}
}

// ExperienceTable maps types.Experience.
var ExperienceTable = &Table[types.Experience]{
	Name:     "experiences",
	Singular: "experience",
	Columns:  []string{"position", "company", "location", "start_date", "end_date", "is_current_position", "description"},
	Record:   func(e *types.Experience) *types.Record { return &e.Record },
	Values: func(e *types.Experience) []any {
		return []any{e.Position, e.Company, e.Location, e.StartDate.Time, e.EndDate.TimePtr(), e.IsCurrentPosition, e.Description}
	},
	Scan: func(row pgx.Row, e *types.Experience) error {
		var end *time.Time
		if err := row.Scan(&e.ID, &e.UserID, &e.Position, &e.Company, &e.Location, &e.StartDate.Time, &end,
			&e.IsCurrentPosition, &e.Description, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return err
		}
		e.EndDate = types.DateFromTime(end)
		return nil
	},
}

// EducationTable maps types.Education.
var EducationTable = &Table[types.Education]{
	Name:     "education",
	Singular: "education",
	Columns:  []string{"institution", "degree", "field_of_study", "start_year", "end_year", "description"},
	Record:   func(e *types.Education) *types.Record { return &e.Record },
	Values: func(e *types.Education) []any {
		return []any{e.Institution, e.Degree, e.FieldOfStudy, e.StartYear, e.EndYear, e.Description}
	},
	Scan: func(row pgx.Row, e *types.Education) error {
		return row.Scan(&e.ID, &e.UserID, &e.Institution, &e.Degree, &e.FieldOfStudy, &e.StartYear, &e.EndYear,
			&e.Description, &e.CreatedAt, &e.UpdatedAt)
	},
}

// SkillTable maps types.Skill.
var SkillTable = &Table[types.Skill]{
	Name:     "skills",
	Singular: "skill",
	Columns:  []string{"name", "category", "proficiency_level"},
	Record:   func(s *types.Skill) *types.Record { return &s.Record },
	Values: func(s *types.Skill) []any {
		return []any{s.Name, s.Category, s.ProficiencyLevel}
	},
	Scan: func(row pgx.Row, s *types.Skill) error {
		return row.Scan(&s.ID, &s.UserID, &s.Name, &s.Category, &s.ProficiencyLevel, &s.CreatedAt, &s.UpdatedAt)
	},
}

// CertificationTable maps types.Certification.
var CertificationTable = &Table[types.Certification]{
	Name:     "certifications",
	Singular: "certification",
	Columns:  []string{"name", "issuer", "issue_date", "expiration_date", "credential_url"},
	Record:   func(c *types.Certification) *types.Record { return &c.Record },
	Values: func(c *types.Certification) []any {
		return []any{c.Name, c.Issuer, c.IssueDate.Time, c.ExpirationDate.TimePtr(), c.CredentialURL}
	},
	Scan: func(row pgx.Row, c *types.Certification) error {
		var expires *time.Time
		if err := row.Scan(&c.ID, &c.UserID, &c.Name, &c.Issuer, &c.IssueDate.Time, &expires, &c.CredentialURL,
			&c.CreatedAt, &c.UpdatedAt); err != nil {
			return err
		}
		c.ExpirationDate = types.DateFromTime(expires)
		return nil
	},
}

// ProjectTable maps types.Project.
var ProjectTable = &Table[types.Project]{
	Name:     "projects",
	Singular: "project",
	Columns:  []string{"name", "description", "url", "technologies"},
	Record:   func(p *types.Project) *types.Record { return &p.Record },
	Values: func(p *types.Project) []any {
		techs := p.Technologies
		if techs == nil {
			techs = []string{}
		}
		return []any{p.Name, p.Description, p.URL, techs}
	},
	Scan: func(row pgx.Row, p *types.Project) error {
		return row.Scan(&p.ID, &p.UserID, &p.Name, &p.Description, &p.URL, &p.Technologies, &p.CreatedAt, &p.UpdatedAt)
	},
}

// SocialLinkTable maps types.SocialLink.
var SocialLinkTable = &Table[types.SocialLink]{
	Name:     "social_links",
	Singular: "social link",
	Columns:  []string{"platform", "url"},
	Record:   func(l *types.SocialLink) *types.Record { return &l.Record },
	Values: func(l *types.SocialLink) []any {
		return []any{l.Platform, l.URL}
	},
	Scan: func(row pgx.Row, l *types.SocialLink) error {
		return row.Scan(&l.ID, &l.UserID, &l.Platform, &l.URL, &l.CreatedAt, &l.UpdatedAt)
	},
}
