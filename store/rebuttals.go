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

var rebuttalColumns = []string{
	"id", "argument_id", "user_id", "content", "created_at", "updated_at",
	"is_verified", "verification_status", "fact_check_result",
}

// CreateRebuttal inserts the rebuttal and its sources in one transaction.
// The parent argument must exist; the foreign key rejects orphans.
func (s *Store) CreateRebuttal(ctx context.Context, r *models.Rebuttal) error {
	verdict, err := encodeVerdict(r.FactCheck)
	if err != nil {
		return err
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		insert := s.sb.Insert("rebuttals").
			Columns(rebuttalColumns...).
			Values(r.ID, r.ArgumentID, r.UserID, r.Content, r.CreatedAt, r.UpdatedAt,
				r.IsVerified, r.VerificationStatus, verdict)
		if _, err := s.exec(ctx, tx, insert); err != nil {
			return fmt.Errorf("insert rebuttal: %w", err)
		}

		if err := s.insertSources(ctx, tx, "rebuttal_sources", "rebuttal_id", r.ID, r.Sources); err != nil {
			return err
		}
		return nil
	})
}

// GetRebuttal returns the rebuttal with its author and sources
func (s *Store) GetRebuttal(ctx context.Context, id string) (models.Rebuttal, error) {
	rebuttals, err := s.queryRebuttals(ctx, sq.Eq{"id": id})
	if err != nil {
		return models.Rebuttal{}, err
	}
	if len(rebuttals) == 0 {
		return models.Rebuttal{}, ErrNotFound
	}
	return rebuttals[0], nil
}

func (s *Store) queryRebuttals(ctx context.Context, where sq.Sqlizer) ([]models.Rebuttal, error) {
	query, args, err := s.sb.Select(rebuttalColumns...).From("rebuttals").
		Where(where).
		OrderBy("created_at", "id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rebuttals, err := s.scanRebuttals(ctx, query, args)
	if err != nil {
		return nil, err
	}
	if len(rebuttals) == 0 {
		return rebuttals, nil
	}

	ids := make([]string, len(rebuttals))
	userIDs := make([]string, len(rebuttals))
	for i, r := range rebuttals {
		ids[i] = r.ID
		userIDs[i] = r.UserID
	}

	sources, err := s.loadSources(ctx, "rebuttal_sources", "rebuttal_id", ids)
	if err != nil {
		return nil, err
	}
	authors, err := s.loadUsers(ctx, userIDs)
	if err != nil {
		return nil, err
	}

	for i := range rebuttals {
		r := &rebuttals[i]
		r.Author = authorOf(authors, r.UserID)
		r.Sources = sources[r.ID]
		if r.Sources == nil {
			r.Sources = []models.Source{}
		}
	}
	return rebuttals, nil
}

func (s *Store) scanRebuttals(ctx context.Context, query string, args []any) ([]models.Rebuttal, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query rebuttals: %w", err)
	}
	defer rows.Close()

	rebuttals := []models.Rebuttal{}
	for rows.Next() {
		var (
			r       models.Rebuttal
			verdict sql.NullString
		)
		if err := rows.Scan(&r.ID, &r.ArgumentID, &r.UserID, &r.Content, &r.CreatedAt, &r.UpdatedAt,
			&r.IsVerified, &r.VerificationStatus, &verdict); err != nil {
			return nil, fmt.Errorf("scan rebuttal: %w", err)
		}
		if r.FactCheck, err = decodeVerdict(verdict); err != nil {
			return nil, fmt.Errorf("rebuttal %s: %w", r.ID, err)
		}
		rebuttals = append(rebuttals, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rebuttals: %w", err)
	}
	return rebuttals, nil
}
