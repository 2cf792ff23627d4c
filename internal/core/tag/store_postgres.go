// Copyright (c) 2026 TaskForge. All rights reserved.

package tag

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taskforge/taskforge/internal/platform/dberr"
)

type PostgresRepository struct {
	db *pgxpool.Pool
}

func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (repository *PostgresRepository) Create(context context.Context, tag *Tag) error {
	const query = `
		INSERT INTO core.tag (id, teamid, name, color, createdat, updatedat)
		VALUES ($1, $2, $3, $4, $5, $6)`

	now := time.Now()
	tag.CreatedAt = now
	tag.UpdatedAt = now

	if _, err := repository.db.Exec(context, query,
		tag.ID, tag.TeamID, tag.Name, tag.Color, tag.CreatedAt, tag.UpdatedAt,
	); err != nil {
		// The unique (teamid, name) index surfaces here as a conflict.
		return dberr.Wrap(err, "Tag")
	}
	return nil
}

func (repository *PostgresRepository) FindByID(context context.Context, id string) (*Tag, error) {
	const query = `
		SELECT id, teamid, name, color, createdat, updatedat
		FROM core.tag WHERE id = $1`

	tag := &Tag{}
	err := repository.db.QueryRow(context, query, id).Scan(
		&tag.ID, &tag.TeamID, &tag.Name, &tag.Color, &tag.CreatedAt, &tag.UpdatedAt,
	)
	if err != nil {
		return nil, dberr.Wrap(err, "Tag")
	}
	return tag, nil
}

func (repository *PostgresRepository) ListByTeam(context context.Context, teamID string) ([]*Tag, error) {
	const query = `
		SELECT id, teamid, name, color, createdat, updatedat
		FROM core.tag
		WHERE teamid = $1
		ORDER BY name ASC`

	rows, err := repository.db.Query(context, query, teamID)
	if err != nil {
		return nil, dberr.Wrap(err, "Tags")
	}
	defer rows.Close()

	tags := make([]*Tag, 0)
	for rows.Next() {
		tag := &Tag{}
		if err := rows.Scan(
			&tag.ID, &tag.TeamID, &tag.Name, &tag.Color, &tag.CreatedAt, &tag.UpdatedAt,
		); err != nil {
			return nil, dberr.Wrap(err, "Tag")
		}
		tags = append(tags, tag)
	}

	return tags, rows.Err()
}

func (repository *PostgresRepository) Update(context context.Context, tag *Tag) error {
	const query = `
		UPDATE core.tag
		SET name = $2, color = $3, updatedat = $4
		WHERE id = $1`

	tag.UpdatedAt = time.Now()
	commandTag, err := repository.db.Exec(context, query, tag.ID, tag.Name, tag.Color, tag.UpdatedAt)
	if err != nil {
		return dberr.Wrap(err, "Tag")
	}
	if commandTag.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}
	return nil
}

func (repository *PostgresRepository) Delete(context context.Context, id string) error {
	commandTag, err := repository.db.Exec(context, `DELETE FROM core.tag WHERE id = $1`, id)
	if err != nil {
		return dberr.Wrap(err, "Tag")
	}
	if commandTag.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}
	return nil
}
