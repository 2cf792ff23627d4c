// Copyright (c) 2026 TaskForge. All rights reserved.

package task

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/taskforge/taskforge/internal/core/team"
	"github.com/taskforge/taskforge/internal/platform/apperr"
	"github.com/taskforge/taskforge/pkg/pagination"
	"github.com/taskforge/taskforge/pkg/uuidv7"
)

// Service enforces team membership around task CRUD and sub-resources.
//
// Every operation resolves the task's project to its team and verifies the
// acting user is a member before touching data.
type Service struct {
	repo     Repository
	projects ProjectResolver
	members  MemberResolver
	logger   *slog.Logger
}

func NewService(repo Repository, projects ProjectResolver, members MemberResolver, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		projects: projects,
		members:  members,
		logger:   logger,
	}
}

// requireProjectMember verifies the user belongs to the team owning the
// project. Non-members get NotFound, never Forbidden.
func (service *Service) requireProjectMember(context context.Context, projectID, userID string) error {
	proj, err := service.projects.FindByID(context, projectID)
	if err != nil {
		return err
	}
	if _, err := service.members.GetMemberRole(context, proj.TeamID, userID); err != nil {
		if apperr.IsNotFound(err) {
			return apperr.NotFound("Project")
		}
		return err
	}
	return nil
}

// requireTaskMember loads the task and verifies membership in one step.
func (service *Service) requireTaskMember(context context.Context, taskID, userID string) (*Task, error) {
	task, err := service.repo.FindByID(context, taskID)
	if err != nil {
		return nil, err
	}
	if err := service.requireProjectMember(context, task.ProjectID, userID); err != nil {
		if apperr.IsNotFound(err) {
			return nil, apperr.NotFound("Task")
		}
		return nil, err
	}
	return task, nil
}

// # Task CRUD

// CreateTaskInput holds the data for a new task.
type CreateTaskInput struct {
	Title       string
	Description string
	AssigneeID  *string
	DueDate     *time.Time
}

func (service *Service) CreateTask(context context.Context, projectID, userID string, input CreateTaskInput) (*Task, error) {
	if err := service.requireProjectMember(context, projectID, userID); err != nil {
		return nil, err
	}

	task := &Task{
		ID:          uuidv7.New(),
		ProjectID:   projectID,
		Title:       strings.TrimSpace(input.Title),
		Description: input.Description,
		Status:      StatusTodo,
		AssigneeID:  input.AssigneeID,
		DueDate:     input.DueDate,
		CreatedBy:   userID,
	}

	if err := service.repo.Create(context, task); err != nil {
		return nil, err
	}

	service.logger.InfoContext(context, "task_created",
		slog.String("task_id", task.ID), slog.String("project_id", projectID))

	return task, nil
}

func (service *Service) GetTask(context context.Context, taskID, userID string) (*Task, error) {
	task, err := service.requireTaskMember(context, taskID, userID)
	if err != nil {
		return nil, err
	}

	tags, err := service.repo.ListTags(context, taskID)
	if err != nil {
		return nil, err
	}
	task.Tags = tags

	return task, nil
}

func (service *Service) ListTasks(context context.Context, projectID, userID string, filter ListFilter, params pagination.Params) ([]*Task, int, error) {
	if err := service.requireProjectMember(context, projectID, userID); err != nil {
		return nil, 0, err
	}
	return service.repo.ListByProject(context, projectID, filter, params)
}

// UpdateTaskInput holds the mutable task fields. Nil means unchanged.
//
// ClearAssignee and ClearDueDate distinguish "unset the field" from "leave
// it alone", which a bare nil pointer cannot express.
type UpdateTaskInput struct {
	Title         *string
	Description   *string
	Status        *Status
	AssigneeID    *string
	ClearAssignee bool
	DueDate       *time.Time
	ClearDueDate  bool
}

func (service *Service) UpdateTask(context context.Context, taskID, userID string, input UpdateTaskInput) (*Task, error) {
	task, err := service.requireTaskMember(context, taskID, userID)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		task.Title = strings.TrimSpace(*input.Title)
	}
	if input.Description != nil {
		task.Description = *input.Description
	}
	if input.Status != nil {
		if !input.Status.Valid() {
			return nil, apperr.ValidationError("Unknown task status")
		}
		task.Status = *input.Status
	}
	if input.ClearAssignee {
		task.AssigneeID = nil
	} else if input.AssigneeID != nil {
		task.AssigneeID = input.AssigneeID
	}
	if input.ClearDueDate {
		task.DueDate = nil
	} else if input.DueDate != nil {
		task.DueDate = input.DueDate
	}

	if err := service.repo.Update(context, task); err != nil {
		return nil, err
	}

	return task, nil
}

func (service *Service) DeleteTask(context context.Context, taskID, userID string) error {
	if _, err := service.requireTaskMember(context, taskID, userID); err != nil {
		return err
	}
	return service.repo.Delete(context, taskID)
}

// # Comments

func (service *Service) AddComment(context context.Context, taskID, userID, body string) (*Comment, error) {
	if _, err := service.requireTaskMember(context, taskID, userID); err != nil {
		return nil, err
	}

	comment := &Comment{
		ID:       uuidv7.New(),
		TaskID:   taskID,
		AuthorID: userID,
		Body:     body,
	}

	if err := service.repo.AddComment(context, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

func (service *Service) ListComments(context context.Context, taskID, userID string) ([]*Comment, error) {
	if _, err := service.requireTaskMember(context, taskID, userID); err != nil {
		return nil, err
	}
	return service.repo.ListComments(context, taskID)
}

// EditComment updates the body and flips the edited flag. Author only.
func (service *Service) EditComment(context context.Context, commentID, userID, body string) (*Comment, error) {
	comment, err := service.repo.FindCommentByID(context, commentID)
	if err != nil {
		return nil, err
	}
	if _, err := service.requireTaskMember(context, comment.TaskID, userID); err != nil {
		return nil, err
	}
	if comment.AuthorID != userID {
		return nil, apperr.Forbidden("Only the author can edit a comment")
	}

	comment.Body = body
	comment.IsEdited = true

	if err := service.repo.UpdateComment(context, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// DeleteComment removes a comment. The author or a team admin may delete.
func (service *Service) DeleteComment(context context.Context, commentID, userID string) error {
	comment, err := service.repo.FindCommentByID(context, commentID)
	if err != nil {
		return err
	}

	task, err := service.requireTaskMember(context, comment.TaskID, userID)
	if err != nil {
		return err
	}

	if comment.AuthorID != userID {
		proj, err := service.projects.FindByID(context, task.ProjectID)
		if err != nil {
			return err
		}
		role, err := service.members.GetMemberRole(context, proj.TeamID, userID)
		if err != nil || !role.AtLeast(team.RoleAdmin) {
			return apperr.Forbidden("Only the author or a team admin can delete a comment")
		}
	}

	return service.repo.DeleteComment(context, commentID)
}

// # Time Entries

// LogTimeInput holds the data for a new time entry.
type LogTimeInput struct {
	Hours     float64
	EntryDate time.Time
	Note      string
}

func (service *Service) LogTime(context context.Context, taskID, userID string, input LogTimeInput) (*TimeEntry, error) {
	if _, err := service.requireTaskMember(context, taskID, userID); err != nil {
		return nil, err
	}

	if input.Hours <= 0 || input.Hours > 24 {
		return nil, apperr.ValidationError("Hours must be between 0 and 24")
	}

	entry := &TimeEntry{
		ID:        uuidv7.New(),
		TaskID:    taskID,
		UserID:    userID,
		Hours:     input.Hours,
		EntryDate: input.EntryDate,
		Note:      input.Note,
	}
	if entry.EntryDate.IsZero() {
		entry.EntryDate = time.Now()
	}

	if err := service.repo.AddTimeEntry(context, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

func (service *Service) ListTimeEntries(context context.Context, taskID, userID string) ([]*TimeEntry, error) {
	if _, err := service.requireTaskMember(context, taskID, userID); err != nil {
		return nil, err
	}
	return service.repo.ListTimeEntries(context, taskID)
}

// # Tag Assignment

// AttachTag links a team tag to the task. The foreign keys guarantee the tag
// and task exist; a cross-team tag fails on the composite constraint check in
// the store.
func (service *Service) AttachTag(context context.Context, taskID, tagID, userID string) error {
	if _, err := service.requireTaskMember(context, taskID, userID); err != nil {
		return err
	}
	return service.repo.AttachTag(context, taskID, tagID)
}

func (service *Service) DetachTag(context context.Context, taskID, tagID, userID string) error {
	if _, err := service.requireTaskMember(context, taskID, userID); err != nil {
		return err
	}
	return service.repo.DetachTag(context, taskID, tagID)
}
