// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/danielhkuo/onlyfringe/models"
)

// Source rows live in two tables with the same shape:
// sources (owner argument_id) and rebuttal_sources (owner rebuttal_id).

func (s *Store) insertSources(ctx context.Context, tx *sql.Tx, table, ownerColumn, ownerID string, sources []models.Source) error {
	for i, src := range sources {
		insert := s.sb.Insert(table).
			Columns("id", ownerColumn, "url", "title", "description", "is_valid", "position", "created_at").
			Values(src.ID, ownerID, src.URL, nullString(src.Title), nullString(src.Description), src.IsValid, i, src.CreatedAt)
		if _, err := s.exec(ctx, tx, insert); err != nil {
			return fmt.Errorf("insert into %s: %w", table, err)
		}
	}
	return nil
}

// loadSources returns sources grouped by owner id, in submission order
func (s *Store) loadSources(ctx context.Context, table, ownerColumn string, ownerIDs []string) (map[string][]models.Source, error) {
	grouped := make(map[string][]models.Source)
	ownerIDs = unique(ownerIDs)
	if len(ownerIDs) == 0 {
		return grouped, nil
	}

	query, args, err := s.sb.Select("id", ownerColumn, "url", "title", "description", "is_valid", "created_at").
		From(table).
		Where(sq.Eq{ownerColumn: ownerIDs}).
		OrderBy("position", "id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", table, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			src         models.Source
			ownerID     string
			title, desc sql.NullString
		)
		if err := rows.Scan(&src.ID, &ownerID, &src.URL, &title, &desc, &src.IsValid, &src.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan %s: %w", table, err)
		}
		src.Title = stringPtr(title)
		src.Description = stringPtr(desc)
		grouped[ownerID] = append(grouped[ownerID], src)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", table, err)
	}
	return grouped, nil
}
