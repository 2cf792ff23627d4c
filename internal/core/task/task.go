// Copyright (c) 2026 TaskForge. All rights reserved.

// Package task implements task management inside a project, including the
// task sub-resources: comments, time entries, and tag assignments.
package task

import (
	"context"
	"time"

	"github.com/taskforge/taskforge/internal/core/project"
	"github.com/taskforge/taskforge/internal/core/team"
	"github.com/taskforge/taskforge/pkg/pagination"
)

// Status is the lifecycle state of a task.
type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in_progress"
	StatusDone       Status = "done"
	StatusArchived   Status = "archived"
)

// Valid reports whether the status is one of the known values.
func (s Status) Valid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusDone, StatusArchived:
		return true
	}
	return false
}

// Statuses lists every valid status value, for validation messages.
func Statuses() []string {
	return []string{
		string(StatusTodo),
		string(StatusInProgress),
		string(StatusDone),
		string(StatusArchived),
	}
}

// Task is a unit of work inside a project.
type Task struct {
	ID          string     `json:"id"`
	ProjectID   string     `json:"project_id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Status      Status     `json:"status"`
	AssigneeID  *string    `json:"assignee_id,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	CreatedBy   string     `json:"created_by"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	// Tags is hydrated on single-task reads.
	Tags []TagRef `json:"tags,omitempty"`
}

// TagRef is the task-side projection of an attached tag.
type TagRef struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// Comment is a discussion entry on a task.
type Comment struct {
	ID        string    `json:"id"`
	TaskID    string    `json:"task_id"`
	AuthorID  string    `json:"author_id"`
	Body      string    `json:"body"`
	IsEdited  bool      `json:"is_edited"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TimeEntry records hours spent on a task on a given date.
type TimeEntry struct {
	ID        string    `json:"id"`
	TaskID    string    `json:"task_id"`
	UserID    string    `json:"user_id"`
	Hours     float64   `json:"hours"`
	EntryDate time.Time `json:"entry_date"`
	Note      string    `json:"note,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ListFilter narrows task listings.
type ListFilter struct {
	Status     Status // empty means all
	AssigneeID string // empty means all
}

// Repository defines the persistence contract for tasks and sub-resources.
type Repository interface {
	Create(context context.Context, task *Task) error
	FindByID(context context.Context, id string) (*Task, error)
	ListByProject(context context.Context, projectID string, filter ListFilter, params pagination.Params) ([]*Task, int, error)
	Update(context context.Context, task *Task) error
	Delete(context context.Context, id string) error

	AddComment(context context.Context, comment *Comment) error
	FindCommentByID(context context.Context, id string) (*Comment, error)
	ListComments(context context.Context, taskID string) ([]*Comment, error)
	UpdateComment(context context.Context, comment *Comment) error
	DeleteComment(context context.Context, id string) error

	AddTimeEntry(context context.Context, entry *TimeEntry) error
	ListTimeEntries(context context.Context, taskID string) ([]*TimeEntry, error)

	AttachTag(context context.Context, taskID, tagID string) error
	DetachTag(context context.Context, taskID, tagID string) error
	ListTags(context context.Context, taskID string) ([]TagRef, error)
}

// ProjectResolver resolves a project to its team for membership checks.
// [project.PostgresRepository] satisfies it.
type ProjectResolver interface {
	FindByID(context context.Context, id string) (*project.Project, error)
}

// MemberResolver answers membership questions for access checks.
// [team.PostgresRepository] satisfies it.
type MemberResolver interface {
	GetMemberRole(context context.Context, teamID, userID string) (team.Role, error)
}
