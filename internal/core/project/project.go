// Copyright (c) 2026 TaskForge. All rights reserved.

// Package project implements project management inside a team. A project is
// the container tasks live in; access follows team membership.
package project

import (
	"context"
	"time"

	"github.com/taskforge/taskforge/internal/core/team"
	"github.com/taskforge/taskforge/pkg/pagination"
)

// Project groups tasks under a team.
type Project struct {
	ID          string    `json:"id"`
	TeamID      string    `json:"team_id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedBy   string    `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Repository defines the persistence contract for projects.
type Repository interface {
	Create(context context.Context, project *Project) error
	FindByID(context context.Context, id string) (*Project, error)
	ListByTeam(context context.Context, teamID string, params pagination.Params) ([]*Project, int, error)
	Update(context context.Context, project *Project) error
	Delete(context context.Context, id string) error
}

// MemberResolver answers membership questions for access checks.
// [team.PostgresRepository] satisfies it.
type MemberResolver interface {
	GetMemberRole(context context.Context, teamID, userID string) (team.Role, error)
}
