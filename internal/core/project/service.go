// Copyright (c) 2026 TaskForge. All rights reserved.

package project

import (
	"context"
	"log/slog"
	"strings"

	"github.com/taskforge/taskforge/internal/core/team"
	"github.com/taskforge/taskforge/internal/platform/apperr"
	"github.com/taskforge/taskforge/pkg/pagination"
	"github.com/taskforge/taskforge/pkg/uuidv7"
)

// Service enforces team membership around project CRUD.
type Service struct {
	repo    Repository
	members MemberResolver
	logger  *slog.Logger
}

func NewService(repo Repository, members MemberResolver, logger *slog.Logger) *Service {
	return &Service{
		repo:    repo,
		members: members,
		logger:  logger,
	}
}

// requireMember fails with NotFound when the user does not belong to the
// team, so outsiders cannot distinguish "no access" from "does not exist".
func (service *Service) requireMember(context context.Context, teamID, userID string, minimum team.Role) error {
	role, err := service.members.GetMemberRole(context, teamID, userID)
	if err != nil {
		if apperr.IsNotFound(err) {
			return apperr.NotFound("Project")
		}
		return err
	}
	if !role.AtLeast(minimum) {
		return apperr.Forbidden("Insufficient team permissions")
	}
	return nil
}

// CreateProjectInput holds the data for a new project.
type CreateProjectInput struct {
	Name        string
	Description string
}

func (service *Service) CreateProject(context context.Context, teamID, userID string, input CreateProjectInput) (*Project, error) {
	if err := service.requireMember(context, teamID, userID, team.RoleMember); err != nil {
		return nil, err
	}

	project := &Project{
		ID:          uuidv7.New(),
		TeamID:      teamID,
		Name:        strings.TrimSpace(input.Name),
		Description: input.Description,
		CreatedBy:   userID,
	}

	if err := service.repo.Create(context, project); err != nil {
		return nil, err
	}

	service.logger.InfoContext(context, "project_created",
		slog.String("project_id", project.ID), slog.String("team_id", teamID))

	return project, nil
}

func (service *Service) GetProject(context context.Context, projectID, userID string) (*Project, error) {
	project, err := service.repo.FindByID(context, projectID)
	if err != nil {
		return nil, err
	}
	if err := service.requireMember(context, project.TeamID, userID, team.RoleMember); err != nil {
		return nil, err
	}
	return project, nil
}

func (service *Service) ListProjects(context context.Context, teamID, userID string, params pagination.Params) ([]*Project, int, error) {
	if err := service.requireMember(context, teamID, userID, team.RoleMember); err != nil {
		return nil, 0, err
	}
	return service.repo.ListByTeam(context, teamID, params)
}

// UpdateProjectInput holds the mutable project fields. Nil means unchanged.
type UpdateProjectInput struct {
	Name        *string
	Description *string
}

func (service *Service) UpdateProject(context context.Context, projectID, userID string, input UpdateProjectInput) (*Project, error) {
	project, err := service.repo.FindByID(context, projectID)
	if err != nil {
		return nil, err
	}
	if err := service.requireMember(context, project.TeamID, userID, team.RoleMember); err != nil {
		return nil, err
	}

	if input.Name != nil {
		project.Name = strings.TrimSpace(*input.Name)
	}
	if input.Description != nil {
		project.Description = *input.Description
	}

	if err := service.repo.Update(context, project); err != nil {
		return nil, err
	}

	return project, nil
}

// DeleteProject removes the project and its tasks. Admin or owner only.
func (service *Service) DeleteProject(context context.Context, projectID, userID string) error {
	project, err := service.repo.FindByID(context, projectID)
	if err != nil {
		return err
	}
	if err := service.requireMember(context, project.TeamID, userID, team.RoleAdmin); err != nil {
		return err
	}

	if err := service.repo.Delete(context, projectID); err != nil {
		return err
	}

	service.logger.WarnContext(context, "project_deleted",
		slog.String("project_id", projectID), slog.String("user_id", userID))

	return nil
}
