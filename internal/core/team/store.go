// Copyright (c) 2026 TaskForge. All rights reserved.

package team

import (
	"context"

	"github.com/taskforge/taskforge/pkg/pagination"
)

// Repository defines the persistence contract for teams and their members.
type Repository interface {
	// Create persists the team and its owner membership in one transaction.
	Create(context context.Context, team *Team) error
	FindByID(context context.Context, id string) (*Team, error)
	FindBySlug(context context.Context, slug string) (*Team, error)
	// ListByUser returns the teams the user belongs to, plus the total count.
	ListByUser(context context.Context, userID string, params pagination.Params) ([]*Team, int, error)
	Update(context context.Context, team *Team) error
	Delete(context context.Context, id string) error

	ListMembers(context context.Context, teamID string) ([]*Member, error)
	AddMember(context context.Context, member *Member) error
	RemoveMember(context context.Context, teamID, userID string) error
	// GetMemberRole returns apperr.NotFound when the user is not a member.
	GetMemberRole(context context.Context, teamID, userID string) (Role, error)
}

// UserResolver resolves an email address to a user ID when inviting members.
// The auth package's Postgres user repository satisfies it.
type UserResolver interface {
	FindIDByEmail(context context.Context, email string) (string, error)
}
