// Copyright (c) 2026 TaskForge. All rights reserved.

package team

import (
	"context"
	"fmt"
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

// Create inserts the team and its owner membership atomically.
func (repository *PostgresRepository) Create(context context.Context, team *Team) error {
	tx, err := repository.db.Begin(context)
	if err != nil {
		return fmt.Errorf("team_repo_begin_failed: %w", err)
	}
	defer func() { _ = tx.Rollback(context) }()

	now := time.Now()
	team.CreatedAt = now
	team.UpdatedAt = now

	const teamQuery = `
		INSERT INTO core.team (id, name, slug, description, ownerid, createdat, updatedat)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	if _, err := tx.Exec(context, teamQuery,
		team.ID, team.Name, team.Slug, team.Description, team.OwnerID, team.CreatedAt, team.UpdatedAt,
	); err != nil {
		return dberr.Wrap(err, "Team")
	}

	const memberQuery = `
		INSERT INTO core.team_member (teamid, userid, role, joinedat)
		VALUES ($1, $2, $3, $4)`
	if _, err := tx.Exec(context, memberQuery, team.ID, team.OwnerID, RoleOwner, now); err != nil {
		return dberr.Wrap(err, "Membership")
	}

	return tx.Commit(context)
}

func (repository *PostgresRepository) FindByID(context context.Context, id string) (*Team, error) {
	const query = `
		SELECT id, name, slug, description, ownerid, createdat, updatedat
		FROM core.team WHERE id = $1`

	team := &Team{}
	err := repository.db.QueryRow(context, query, id).Scan(
		&team.ID, &team.Name, &team.Slug, &team.Description, &team.OwnerID, &team.CreatedAt, &team.UpdatedAt,
	)
	if err != nil {
		return nil, dberr.Wrap(err, "Team")
	}
	return team, nil
}

func (repository *PostgresRepository) FindBySlug(context context.Context, slug string) (*Team, error) {
	const query = `
		SELECT id, name, slug, description, ownerid, createdat, updatedat
		FROM core.team WHERE slug = $1`

	team := &Team{}
	err := repository.db.QueryRow(context, query, slug).Scan(
		&team.ID, &team.Name, &team.Slug, &team.Description, &team.OwnerID, &team.CreatedAt, &team.UpdatedAt,
	)
	if err != nil {
		return nil, dberr.Wrap(err, "Team")
	}
	return team, nil
}

func (repository *PostgresRepository) ListByUser(context context.Context, userID string, params pagination.Params) ([]*Team, int, error) {
	const countQuery = `
		SELECT COUNT(*)
		FROM core.team t
		JOIN core.team_member m ON m.teamid = t.id
		WHERE m.userid = $1`

	var total int
	if err := repository.db.QueryRow(context, countQuery, userID).Scan(&total); err != nil {
		return nil, 0, dberr.Wrap(err, "Teams")
	}

	const query = `
		SELECT t.id, t.name, t.slug, t.description, t.ownerid, t.createdat, t.updatedat
		FROM core.team t
		JOIN core.team_member m ON m.teamid = t.id
		WHERE m.userid = $1
		ORDER BY t.createdat DESC
		LIMIT $2 OFFSET $3`

	rows, err := repository.db.Query(context, query, userID, params.Limit, params.Offset())
	if err != nil {
		return nil, 0, dberr.Wrap(err, "Teams")
	}
	defer rows.Close()

	teams := make([]*Team, 0)
	for rows.Next() {
		team := &Team{}
		if err := rows.Scan(
			&team.ID, &team.Name, &team.Slug, &team.Description, &team.OwnerID, &team.CreatedAt, &team.UpdatedAt,
		); err != nil {
			return nil, 0, dberr.Wrap(err, "Team")
		}
		teams = append(teams, team)
	}

	return teams, total, rows.Err()
}

func (repository *PostgresRepository) Update(context context.Context, team *Team) error {
	const query = `
		UPDATE core.team
		SET name = $2, slug = $3, description = $4, updatedat = $5
		WHERE id = $1`

	team.UpdatedAt = time.Now()
	tag, err := repository.db.Exec(context, query,
		team.ID, team.Name, team.Slug, team.Description, team.UpdatedAt,
	)
	if err != nil {
		return dberr.Wrap(err, "Team")
	}
	if tag.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}
	return nil
}

// Delete removes the team. Projects, tasks, members, and tags follow via
// ON DELETE CASCADE.
func (repository *PostgresRepository) Delete(context context.Context, id string) error {
	tag, err := repository.db.Exec(context, `DELETE FROM core.team WHERE id = $1`, id)
	if err != nil {
		return dberr.Wrap(err, "Team")
	}
	if tag.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}
	return nil
}

// # Membership

func (repository *PostgresRepository) ListMembers(context context.Context, teamID string) ([]*Member, error) {
	const query = `
		SELECT m.teamid, m.userid, m.role, m.joinedat, u.displayname, u.email
		FROM core.team_member m
		JOIN users.account u ON u.id = m.userid
		WHERE m.teamid = $1 AND u.deletedat IS NULL
		ORDER BY m.joinedat ASC`

	rows, err := repository.db.Query(context, query, teamID)
	if err != nil {
		return nil, dberr.Wrap(err, "Members")
	}
	defer rows.Close()

	members := make([]*Member, 0)
	for rows.Next() {
		member := &Member{}
		if err := rows.Scan(
			&member.TeamID, &member.UserID, &member.Role, &member.JoinedAt,
			&member.DisplayName, &member.Email,
		); err != nil {
			return nil, dberr.Wrap(err, "Member")
		}
		members = append(members, member)
	}

	return members, rows.Err()
}

func (repository *PostgresRepository) AddMember(context context.Context, member *Member) error {
	const query = `
		INSERT INTO core.team_member (teamid, userid, role, joinedat)
		VALUES ($1, $2, $3, $4)`

	member.JoinedAt = time.Now()
	if _, err := repository.db.Exec(context, query,
		member.TeamID, member.UserID, member.Role, member.JoinedAt,
	); err != nil {
		return dberr.Wrap(err, "Membership")
	}
	return nil
}

func (repository *PostgresRepository) RemoveMember(context context.Context, teamID, userID string) error {
	tag, err := repository.db.Exec(context,
		`DELETE FROM core.team_member WHERE teamid = $1 AND userid = $2`, teamID, userID)
	if err != nil {
		return dberr.Wrap(err, "Membership")
	}
	if tag.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}
	return nil
}

func (repository *PostgresRepository) GetMemberRole(context context.Context, teamID, userID string) (Role, error) {
	const query = `
		SELECT role FROM core.team_member
		WHERE teamid = $1 AND userid = $2`

	var role Role
	if err := repository.db.QueryRow(context, query, teamID, userID).Scan(&role); err != nil {
		return "", dberr.Wrap(err, "Membership")
	}
	return role, nil
}
