// Copyright (c) 2026 TaskForge. All rights reserved.

// Package team implements multi-tenant team management. Every core resource
// (project, task, tag) hangs off a team, and membership in the team gates all
// access to those resources.
package team

import "time"

// Role is a user's standing within one team. It is unrelated to the
// platform-wide account role.
type Role string

const (
	RoleOwner  Role = "owner"
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

// AtLeast reports whether the role meets or exceeds the target.
func (r Role) AtLeast(target Role) bool {
	return r.rank() >= target.rank()
}

func (r Role) rank() int {
	switch r {
	case RoleOwner:
		return 30
	case RoleAdmin:
		return 20
	case RoleMember:
		return 10
	default:
		return 0
	}
}

// Valid reports whether the role is one of the known values.
func (r Role) Valid() bool {
	return r.rank() > 0
}

// Team is the tenant boundary of the platform.
type Team struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description,omitempty"`
	OwnerID     string    `json:"owner_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Member links a user to a team with a per-team role.
type Member struct {
	TeamID   string    `json:"team_id"`
	UserID   string    `json:"user_id"`
	Role     Role      `json:"role"`
	JoinedAt time.Time `json:"joined_at"`

	// Display projections, hydrated by list queries.
	DisplayName string `json:"display_name,omitempty"`
	Email       string `json:"email,omitempty"`
}
