// Copyright (c) 2026 TaskForge. All rights reserved.

// Package tag implements team-scoped labels that members attach to tasks.
package tag

import (
	"context"
	"time"

	"github.com/taskforge/taskforge/internal/core/team"
)

// DefaultColor is applied when a tag is created without an explicit color.
const DefaultColor = "#808080"

// Tag is a label owned by a team. The (team, name) pair is unique.
type Tag struct {
	ID        string    `json:"id"`
	TeamID    string    `json:"team_id"`
	Name      string    `json:"name"`
	Color     string    `json:"color"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Repository defines the persistence contract for tags.
type Repository interface {
	Create(context context.Context, tag *Tag) error
	FindByID(context context.Context, id string) (*Tag, error)
	ListByTeam(context context.Context, teamID string) ([]*Tag, error)
	Update(context context.Context, tag *Tag) error
	Delete(context context.Context, id string) error
}

// MemberResolver answers membership questions for access checks.
// [team.PostgresRepository] satisfies it.
type MemberResolver interface {
	GetMemberRole(context context.Context, teamID, userID string) (team.Role, error)
}
