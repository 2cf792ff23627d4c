// Copyright (c) 2026 TaskForge. All rights reserved.

package team

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/taskforge/taskforge/internal/platform/apperr"
	"github.com/taskforge/taskforge/pkg/pagination"
	"github.com/taskforge/taskforge/pkg/slug"
	"github.com/taskforge/taskforge/pkg/uuidv7"
)

// Service orchestrates team lifecycle and membership rules.
//
// Every operation takes the acting user's ID and enforces membership before
// touching data. Destructive team operations require owner or admin standing.
type Service struct {
	repo   Repository
	users  UserResolver
	logger *slog.Logger
}

func NewService(repo Repository, users UserResolver, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		users:  users,
		logger: logger,
	}
}

// requireRole returns the acting user's role in the team, failing with
// NotFound when the user is no member at all (non-members cannot learn that
// the team exists) and Forbidden when the role is below the minimum.
func (service *Service) requireRole(context context.Context, teamID, userID string, minimum Role) (Role, error) {
	role, err := service.repo.GetMemberRole(context, teamID, userID)
	if err != nil {
		if apperr.IsNotFound(err) {
			return "", apperr.NotFound("Team")
		}
		return "", err
	}
	if !role.AtLeast(minimum) {
		return "", apperr.Forbidden("Insufficient team permissions")
	}
	return role, nil
}

// CreateTeamInput holds the data for a new team.
type CreateTeamInput struct {
	Name        string
	Description string
}

// CreateTeam creates the team and enrolls the creator as its owner.
func (service *Service) CreateTeam(context context.Context, ownerID string, input CreateTeamInput) (*Team, error) {
	team := &Team{
		ID:          uuidv7.New(),
		Name:        strings.TrimSpace(input.Name),
		Slug:        slug.From(input.Name),
		Description: input.Description,
		OwnerID:     ownerID,
	}

	if team.Slug == "" {
		return nil, apperr.ValidationError("Team name must contain at least one letter or digit")
	}

	// The slug carries a unique index; a taken name surfaces as Conflict.
	if err := service.repo.Create(context, team); err != nil {
		return nil, err
	}

	service.logger.InfoContext(context, "team_created",
		slog.String("team_id", team.ID), slog.String("owner_id", ownerID))

	return team, nil
}

func (service *Service) GetTeam(context context.Context, teamID, userID string) (*Team, error) {
	if _, err := service.requireRole(context, teamID, userID, RoleMember); err != nil {
		return nil, err
	}
	return service.repo.FindByID(context, teamID)
}

// ListMyTeams returns the teams the user belongs to.
func (service *Service) ListMyTeams(context context.Context, userID string, params pagination.Params) ([]*Team, int, error) {
	return service.repo.ListByUser(context, userID, params)
}

// UpdateTeamInput holds the mutable team fields. Nil means unchanged.
type UpdateTeamInput struct {
	Name        *string
	Description *string
}

// UpdateTeam renames or re-describes the team. Admin or owner only.
// Renaming regenerates the slug.
func (service *Service) UpdateTeam(context context.Context, teamID, userID string, input UpdateTeamInput) (*Team, error) {
	if _, err := service.requireRole(context, teamID, userID, RoleAdmin); err != nil {
		return nil, err
	}

	team, err := service.repo.FindByID(context, teamID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		team.Name = strings.TrimSpace(*input.Name)
		team.Slug = slug.From(team.Name)
		if team.Slug == "" {
			return nil, apperr.ValidationError("Team name must contain at least one letter or digit")
		}
	}
	if input.Description != nil {
		team.Description = *input.Description
	}

	if err := service.repo.Update(context, team); err != nil {
		return nil, err
	}

	return team, nil
}

// DeleteTeam removes the team and everything under it. Owner only.
func (service *Service) DeleteTeam(context context.Context, teamID, userID string) error {
	if _, err := service.requireRole(context, teamID, userID, RoleOwner); err != nil {
		return err
	}

	if err := service.repo.Delete(context, teamID); err != nil {
		return err
	}

	service.logger.WarnContext(context, "team_deleted",
		slog.String("team_id", teamID), slog.String("user_id", userID))

	return nil
}

// # Membership

func (service *Service) ListMembers(context context.Context, teamID, userID string) ([]*Member, error) {
	if _, err := service.requireRole(context, teamID, userID, RoleMember); err != nil {
		return nil, err
	}
	return service.repo.ListMembers(context, teamID)
}

// AddMember invites a registered user (by email) into the team.
// Admin or owner only; the owner role cannot be granted this way.
func (service *Service) AddMember(context context.Context, teamID, actorID, email string, role Role) (*Member, error) {
	if _, err := service.requireRole(context, teamID, actorID, RoleAdmin); err != nil {
		return nil, err
	}

	if role == RoleOwner {
		return nil, apperr.ValidationError("Ownership cannot be granted through membership")
	}
	if !role.Valid() {
		role = RoleMember
	}

	targetID, err := service.users.FindIDByEmail(context, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if apperr.IsNotFound(err) {
			return nil, apperr.NotFound("User")
		}
		return nil, err
	}

	member := &Member{
		TeamID: teamID,
		UserID: targetID,
		Role:   role,
	}

	// Duplicate membership surfaces as Conflict from the composite key.
	if err := service.repo.AddMember(context, member); err != nil {
		return nil, err
	}

	return member, nil
}

// RemoveMember drops a user from the team. Admins can remove others, any
// member can remove themselves, and the owner can never be removed.
func (service *Service) RemoveMember(context context.Context, teamID, actorID, targetID string) error {
	minimum := RoleAdmin
	if actorID == targetID {
		minimum = RoleMember
	}
	if _, err := service.requireRole(context, teamID, actorID, minimum); err != nil {
		return err
	}

	targetRole, err := service.repo.GetMemberRole(context, teamID, targetID)
	if err != nil {
		if apperr.IsNotFound(err) {
			return apperr.NotFound("Member")
		}
		return err
	}
	if targetRole == RoleOwner {
		return apperr.Forbidden("The team owner cannot be removed")
	}

	if err := service.repo.RemoveMember(context, teamID, targetID); err != nil {
		return fmt.Errorf("team_service_remove_member_failed: %w", err)
	}

	return nil
}
