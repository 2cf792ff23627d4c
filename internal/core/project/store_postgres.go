// Copyright (c) 2026 TaskForge. All rights reserved.

package project

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taskforge/taskforge/internal/platform/dberr"
	"github.com/taskforge/taskforge/pkg/pagination"
)

type PostgresRepository struct {
	db *pgxpool.Pool
}

func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (repository *PostgresRepository) Create(context context.Context, project *Project) error {
	const query = `
		INSERT INTO core.project (id, teamid, name, description, createdby, createdat, updatedat)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	now := time.Now()
	project.CreatedAt = now
	project.UpdatedAt = now

	if _, err := repository.db.Exec(context, query,
		project.ID, project.TeamID, project.Name, project.Description,
		project.CreatedBy, project.CreatedAt, project.UpdatedAt,
	); err != nil {
		return dberr.Wrap(err, "Project")
	}
	return nil
}

func (repository *PostgresRepository) FindByID(context context.Context, id string) (*Project, error) {
	const query = `
		SELECT id, teamid, name, description, createdby, createdat, updatedat
		FROM core.project WHERE id = $1`

	project := &Project{}
	err := repository.db.QueryRow(context, query, id).Scan(
		&project.ID, &project.TeamID, &project.Name, &project.Description,
		&project.CreatedBy, &project.CreatedAt, &project.UpdatedAt,
	)
	if err != nil {
		return nil, dberr.Wrap(err, "Project")
	}
	return project, nil
}

func (repository *PostgresRepository) ListByTeam(context context.Context, teamID string, params pagination.Params) ([]*Project, int, error) {
	var total int
	if err := repository.db.QueryRow(context,
		`SELECT COUNT(*) FROM core.project WHERE teamid = $1`, teamID,
	).Scan(&total); err != nil {
		return nil, 0, dberr.Wrap(err, "Projects")
	}

	const query = `
		SELECT id, teamid, name, description, createdby, createdat, updatedat
		FROM core.project
		WHERE teamid = $1
		ORDER BY createdat DESC
		LIMIT $2 OFFSET $3`

	rows, err := repository.db.Query(context, query, teamID, params.Limit, params.Offset())
	if err != nil {
		return nil, 0, dberr.Wrap(err, "Projects")
	}
	defer rows.Close()

	projects := make([]*Project, 0)
	for rows.Next() {
		project := &Project{}
		if err := rows.Scan(
			&project.ID, &project.TeamID, &project.Name, &project.Description,
			&project.CreatedBy, &project.CreatedAt, &project.UpdatedAt,
		); err != nil {
			return nil, 0, dberr.Wrap(err, "Project")
		}
		projects = append(projects, project)
	}

	return projects, total, rows.Err()
}

func (repository *PostgresRepository) Update(context context.Context, project *Project) error {
	const query = `
		UPDATE core.project
		SET name = $2, description = $3, updatedat = $4
		WHERE id = $1`

	project.UpdatedAt = time.Now()
	tag, err := repository.db.Exec(context, query,
		project.ID, project.Name, project.Description, project.UpdatedAt,
	)
	if err != nil {
		return dberr.Wrap(err, "Project")
	}
	if tag.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}
	return nil
}

// Delete removes the project. Tasks and their sub-resources cascade.
func (repository *PostgresRepository) Delete(context context.Context, id string) error {
	tag, err := repository.db.Exec(context, `DELETE FROM core.project WHERE id = $1`, id)
	if err != nil {
		return dberr.Wrap(err, "Project")
	}
	if tag.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}
	return nil
}
