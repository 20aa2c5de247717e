// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/danielhkuo/onlyfringe/models"
)

var argumentColumns = []string{
	"id", "title", "content", "category", "user_id", "created_at", "updated_at",
	"is_verified", "verification_status", "fact_check_result",
}

// ArgumentFilter narrows ListArguments. Empty fields match everything.
type ArgumentFilter struct {
	Status   string
	Category string

	// CreatedBefore keeps arguments created strictly before it when set
	CreatedBefore time.Time
}

// CreateArgument inserts the argument and its sources in one transaction
func (s *Store) CreateArgument(ctx context.Context, a *models.Argument) error {
	verdict, err := encodeVerdict(a.FactCheck)
	if err != nil {
		return err
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		insert := s.sb.Insert("arguments").
			Columns(argumentColumns...).
			Values(a.ID, a.Title, a.Content, nullString(a.Category), a.UserID, a.CreatedAt, a.UpdatedAt,
				a.IsVerified, a.VerificationStatus, verdict)
		if _, err := s.exec(ctx, tx, insert); err != nil {
			return fmt.Errorf("insert argument: %w", err)
		}

		if err := s.insertSources(ctx, tx, "sources", "argument_id", a.ID, a.Sources); err != nil {
			return err
		}
		return nil
	})
}

// GetArgument returns the argument with its author, sources, and rebuttals
func (s *Store) GetArgument(ctx context.Context, id string) (models.Argument, error) {
	args, err := s.queryArguments(ctx, s.sb.Select(argumentColumns...).From("arguments").Where(sq.Eq{"id": id}))
	if err != nil {
		return models.Argument{}, err
	}
	if len(args) == 0 {
		return models.Argument{}, ErrNotFound
	}
	return args[0], nil
}

// ListArguments returns matching arguments, newest first
func (s *Store) ListArguments(ctx context.Context, filter ArgumentFilter) ([]models.Argument, error) {
	q := s.sb.Select(argumentColumns...).From("arguments")
	if filter.Status != "" {
		q = q.Where(sq.Eq{"verification_status": filter.Status})
	}
	if filter.Category != "" {
		q = q.Where(sq.Eq{"category": filter.Category})
	}
	if !filter.CreatedBefore.IsZero() {
		q = q.Where(sq.Lt{"created_at": filter.CreatedBefore.UTC()})
	}
	return s.queryArguments(ctx, q.OrderBy("created_at DESC", "id"))
}

// DeleteArgument removes an argument; sources and rebuttals go with it
func (s *Store) DeleteArgument(ctx context.Context, id string) error {
	res, err := s.exec(ctx, s.db, s.sb.Delete("arguments").Where(sq.Eq{"id": id}))
	if err != nil {
		return fmt.Errorf("delete argument: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete argument: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) queryArguments(ctx context.Context, q sq.SelectBuilder) ([]models.Argument, error) {
	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	arguments, err := s.scanArguments(ctx, query, args)
	if err != nil {
		return nil, err
	}
	if err := s.attachArgumentDetails(ctx, arguments); err != nil {
		return nil, err
	}
	return arguments, nil
}

// scanArguments reads every row before returning so the connection is free
// for the detail queries that follow
func (s *Store) scanArguments(ctx context.Context, query string, args []any) ([]models.Argument, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query arguments: %w", err)
	}
	defer rows.Close()

	arguments := []models.Argument{}
	for rows.Next() {
		var (
			a        models.Argument
			category sql.NullString
			verdict  sql.NullString
		)
		if err := rows.Scan(&a.ID, &a.Title, &a.Content, &category, &a.UserID, &a.CreatedAt, &a.UpdatedAt,
			&a.IsVerified, &a.VerificationStatus, &verdict); err != nil {
			return nil, fmt.Errorf("scan argument: %w", err)
		}
		a.Category = stringPtr(category)
		if a.FactCheck, err = decodeVerdict(verdict); err != nil {
			return nil, fmt.Errorf("argument %s: %w", a.ID, err)
		}
		arguments = append(arguments, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate arguments: %w", err)
	}
	return arguments, nil
}

func (s *Store) attachArgumentDetails(ctx context.Context, arguments []models.Argument) error {
	if len(arguments) == 0 {
		return nil
	}

	ids := make([]string, len(arguments))
	userIDs := make([]string, len(arguments))
	for i, a := range arguments {
		ids[i] = a.ID
		userIDs[i] = a.UserID
	}

	sources, err := s.loadSources(ctx, "sources", "argument_id", ids)
	if err != nil {
		return err
	}

	rebuttals, err := s.queryRebuttals(ctx, sq.Eq{"argument_id": ids})
	if err != nil {
		return err
	}
	rebuttalsByArgument := make(map[string][]models.Rebuttal)
	for _, r := range rebuttals {
		rebuttalsByArgument[r.ArgumentID] = append(rebuttalsByArgument[r.ArgumentID], r)
	}

	authors, err := s.loadUsers(ctx, userIDs)
	if err != nil {
		return err
	}

	for i := range arguments {
		a := &arguments[i]
		a.Author = authorOf(authors, a.UserID)
		a.Sources = sources[a.ID]
		if a.Sources == nil {
			a.Sources = []models.Source{}
		}
		a.Rebuttals = rebuttalsByArgument[a.ID]
		if a.Rebuttals == nil {
			a.Rebuttals = []models.Rebuttal{}
		}
	}
	return nil
}
