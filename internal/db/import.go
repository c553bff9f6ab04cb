package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jonathan/profile-builder/internal/types"
)

// SaveProfileData stores an imported profile in one transaction: non-empty
// identity fields overwrite the user's, and every section record is appended.
func (db *DB) SaveProfileData(ctx context.Context, userID uuid.UUID, data *types.ProfileData) (*types.ImportSummary, error) {
	summary := &types.ImportSummary{}

	err := db.withTx(ctx, func(tx pgx.Tx) error {
		if hasIdentity(data) {
			u, err := scanUser(tx.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1 FOR UPDATE`, userID))
			if err != nil {
				if errors.Is(err, pgx.ErrNoRows) {
					return notFound("user", userID)
				}
				return fmt.Errorf("failed to load user: %w", err)
			}
			applyIdentity(&u.User, data)
			if err := updateUserProfile(ctx, tx, &u.User); err != nil {
				return err
			}
		}

		var err error
		if summary.Experiences, err = insertAll(ctx, tx, ExperienceTable, userID, data.Experiences); err != nil {
			return err
		}
		if summary.Education, err = insertAll(ctx, tx, EducationTable, userID, data.Education); err != nil {
			return err
		}
		if summary.Skills, err = insertAll(ctx, tx, SkillTable, userID, data.Skills); err != nil {
			return err
		}
		if summary.Certifications, err = insertAll(ctx, tx, CertificationTable, userID, data.Certifications); err != nil {
			return err
		}
		if summary.Projects, err = insertAll(ctx, tx, ProjectTable, userID, data.Projects); err != nil {
			return err
		}
		if summary.SocialLinks, err = insertAll(ctx, tx, SocialLinkTable, userID, data.SocialLinks); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return summary, nil
}

func insertAll[T any](ctx context.Context, q querier, t *Table[T], userID uuid.UUID, items []T) (int, error) {
	for i := range items {
		if err := t.insert(ctx, q, userID, &items[i]); err != nil {
			return 0, err
		}
	}
	return len(items), nil
}

func hasIdentity(data *types.ProfileData) bool {
	return data.Name != "" || data.Title != "" || data.Location != "" || data.Bio != ""
}

func applyIdentity(u *types.User, data *types.ProfileData) {
	if data.Name != "" {
		u.Name = data.Name
	}
	if data.Title != "" {
		u.Title = data.Title
	}
	if data.Location != "" {
		u.Location = data.Location
	}
	if data.Bio != "" {
		u.Bio = data.Bio
	}
}
