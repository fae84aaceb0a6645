package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/DemosCVV/Oge/internal/models"
)

type ActorRepository struct {
	db *sql.DB
}

func NewActorRepository(db *sql.DB) *ActorRepository {
	return &ActorRepository{db: db}
}

func (r *ActorRepository) Upsert(ctx context.Context, actor models.Actor) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO actors (actor_id, username, first_name, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (actor_id) DO UPDATE SET
			username = EXCLUDED.username,
			first_name = EXCLUDED.first_name
	`, actor.ID, actor.Username, actor.FirstName, actor.CreatedAt)
	if err != nil {
		return fmt.Errorf("upsert actor: %w", err)
	}
	return nil
}

func (r *ActorRepository) Get(ctx context.Context, id int64) (*models.Actor, error) {
	var a models.Actor
	err := r.db.QueryRowContext(ctx, `
		SELECT actor_id, username, first_name, created_at
		FROM actors WHERE actor_id = $1
	`, id).Scan(&a.ID, &a.Username, &a.FirstName, &a.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrActorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get actor: %w", err)
	}
	return &a, nil
}

func (r *ActorRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM actors`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count actors: %w", err)
	}
	return n, nil
}

func (r *ActorRepository) AllIDs(ctx context.Context) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT actor_id FROM actors`)
	if err != nil {
		return nil, fmt.Errorf("list actors: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("list actors: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list actors: %w", err)
	}
	return ids, nil
}

func (r *ActorRepository) FindByUsername(ctx context.Context, username string) (int64, error) {
	username = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(username, "@")))
	if username == "" {
		return 0, models.ErrActorNotFound
	}

	var id int64
	err := r.db.QueryRowContext(ctx,
		`SELECT actor_id FROM actors WHERE lower(username) = $1 LIMIT 1`, username).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, models.ErrActorNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("find actor by username: %w", err)
	}
	return id, nil
}
