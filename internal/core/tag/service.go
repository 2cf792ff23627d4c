// Copyright (c) 2026 TaskForge. All rights reserved.

package tag

import (
	"context"
	"log/slog"
	"strings"

	"github.com/taskforge/taskforge/internal/platform/apperr"
	"github.com/taskforge/taskforge/pkg/uuidv7"
)

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

// requireMember verifies team membership. Non-members get NotFound so the
// team's existence stays hidden.
func (service *Service) requireMember(context context.Context, teamID, userID string) error {
	if _, err := service.members.GetMemberRole(context, teamID, userID); err != nil {
		if apperr.IsNotFound(err) {
			return apperr.NotFound("Team")
		}
		return err
	}
	return nil
}

// CreateTagInput holds the data for a new tag.
type CreateTagInput struct {
	Name  string
	Color string
}

func (service *Service) CreateTag(context context.Context, teamID, userID string, input CreateTagInput) (*Tag, error) {
	if err := service.requireMember(context, teamID, userID); err != nil {
		return nil, err
	}

	color := input.Color
	if color == "" {
		color = DefaultColor
	}

	tag := &Tag{
		ID:     uuidv7.New(),
		TeamID: teamID,
		Name:   strings.TrimSpace(input.Name),
		Color:  strings.ToLower(color),
	}

	if err := service.repo.Create(context, tag); err != nil {
		return nil, err
	}

	service.logger.InfoContext(context, "tag_created",
		slog.String("tag_id", tag.ID), slog.String("team_id", teamID))

	return tag, nil
}

func (service *Service) ListTags(context context.Context, teamID, userID string) ([]*Tag, error) {
	if err := service.requireMember(context, teamID, userID); err != nil {
		return nil, err
	}
	return service.repo.ListByTeam(context, teamID)
}

// UpdateTagInput holds the mutable tag fields. Nil means unchanged.
type UpdateTagInput struct {
	Name  *string
	Color *string
}

func (service *Service) UpdateTag(context context.Context, tagID, userID string, input UpdateTagInput) (*Tag, error) {
	tag, err := service.repo.FindByID(context, tagID)
	if err != nil {
		return nil, err
	}
	if err := service.requireMember(context, tag.TeamID, userID); err != nil {
		if apperr.IsNotFound(err) {
			return nil, apperr.NotFound("Tag")
		}
		return nil, err
	}

	if input.Name != nil {
		tag.Name = strings.TrimSpace(*input.Name)
	}
	if input.Color != nil {
		tag.Color = strings.ToLower(*input.Color)
	}

	if err := service.repo.Update(context, tag); err != nil {
		return nil, err
	}
	return tag, nil
}

// DeleteTag removes the tag. Assignments on tasks cascade away.
func (service *Service) DeleteTag(context context.Context, tagID, userID string) error {
	tag, err := service.repo.FindByID(context, tagID)
	if err != nil {
		return err
	}
	if err := service.requireMember(context, tag.TeamID, userID); err != nil {
		if apperr.IsNotFound(err) {
			return apperr.NotFound("Tag")
		}
		return err
	}

	return service.repo.Delete(context, tagID)
}
