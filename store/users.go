// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/danielhkuo/onlyfringe/models"
)

var userColumns = []string{"id", "username", "email", "created_at"}

// CreateUser inserts a user. The unique constraints on username and email
// decide duplicates, so concurrent attempts yield exactly one success.
func (s *Store) CreateUser(ctx context.Context, u models.User) error {
	insert := s.sb.Insert("users").
		Columns(userColumns...).
		Values(u.ID, u.Username, u.Email, u.CreatedAt)

	if _, err := s.exec(ctx, s.db, insert); err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateUser
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// GetUser returns ErrNotFound when no user has the id
func (s *Store) GetUser(ctx context.Context, id string) (models.User, error) {
	query, args, err := s.sb.Select(userColumns...).From("users").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return models.User{}, fmt.Errorf("build query: %w", err)
	}

	var u models.User
	err = s.db.QueryRowContext(ctx, query, args...).Scan(&u.ID, &u.Username, &u.Email, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrNotFound
	}
	if err != nil {
		return models.User{}, fmt.Errorf("query user: %w", err)
	}
	return u, nil
}

func (s *Store) loadUsers(ctx context.Context, ids []string) (map[string]models.User, error) {
	users := make(map[string]models.User)
	ids = unique(ids)
	if len(ids) == 0 {
		return users, nil
	}

	query, args, err := s.sb.Select(userColumns...).From("users").Where(sq.Eq{"id": ids}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Username, &u.Email, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users[u.ID] = u
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	return users, nil
}

func authorOf(users map[string]models.User, id string) *models.User {
	u, ok := users[id]
	if !ok {
		return nil
	}
	return &u
}
