package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jonathan/profile-builder/internal/types"
)

// CreateSuggestion stores an AI suggestion and fills in its id and timestamp.
func (db *DB) CreateSuggestion(ctx context.Context, s *types.AISuggestion) error {
	err := db.pool.QueryRow(ctx,
		`INSERT INTO ai_suggestions (user_id, kind, content)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at`,
		s.UserID, s.Kind, s.Content,
	).Scan(&s.ID, &s.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create suggestion: %w", err)
	}
	return nil
}

// ListSuggestions returns the user's most recent suggestions, newest first.
func (db *DB) ListSuggestions(ctx context.Context, userID uuid.UUID, limit int) ([]types.AISuggestion, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, user_id, kind, content, created_at
		 FROM ai_suggestions WHERE user_id = $1
		 ORDER BY created_at DESC LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list suggestions: %w", err)
	}
	defer rows.Close()

	suggestions := []types.AISuggestion{}
	for rows.Next() {
		var s types.AISuggestion
		if err := rows.Scan(&s.ID, &s.UserID, &s.Kind, &s.Content, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan suggestion: %w", err)
		}
		suggestions = append(suggestions, s)
	}
	return suggestions, rows.Err()
}
