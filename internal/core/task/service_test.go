// Copyright (c) 2026 TaskForge. All rights reserved.

package task_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskforge/taskforge/internal/core/project"
	"github.com/taskforge/taskforge/internal/core/task"
	"github.com/taskforge/taskforge/internal/core/team"
	"github.com/taskforge/taskforge/internal/platform/apperr"
	"github.com/taskforge/taskforge/pkg/pagination"
	"github.com/taskforge/taskforge/pkg/pointer"
)

type tagKey struct{ taskID, tagID string }

type fakeTaskRepo struct {
	tasks    map[string]*task.Task
	comments map[string]*task.Comment
	entries  map[string]*task.TimeEntry
	tags     map[tagKey]task.TagRef
}

func newFakeTaskRepo() *fakeTaskRepo {
	return &fakeTaskRepo{
		tasks:    make(map[string]*task.Task),
		comments: make(map[string]*task.Comment),
		entries:  make(map[string]*task.TimeEntry),
		tags:     make(map[tagKey]task.TagRef),
	}
}

func (r *fakeTaskRepo) Create(_ context.Context, t *task.Task) error {
	copied := *t
	r.tasks[t.ID] = &copied
	return nil
}

func (r *fakeTaskRepo) FindByID(_ context.Context, id string) (*task.Task, error) {
	if t, ok := r.tasks[id]; ok {
		copied := *t
		return &copied, nil
	}
	return nil, apperr.NotFound("Task")
}

func (r *fakeTaskRepo) ListByProject(_ context.Context, projectID string, filter task.ListFilter, _ pagination.Params) ([]*task.Task, int, error) {
	tasks := make([]*task.Task, 0)
	for _, t := range r.tasks {
		if t.ProjectID != projectID {
			continue
		}
		if filter.Status != "" && t.Status != filter.Status {
			continue
		}
		if filter.AssigneeID != "" && (t.AssigneeID == nil || *t.AssigneeID != filter.AssigneeID) {
			continue
		}
		copied := *t
		tasks = append(tasks, &copied)
	}
	return tasks, len(tasks), nil
}

func (r *fakeTaskRepo) Update(_ context.Context, t *task.Task) error {
	if _, ok := r.tasks[t.ID]; !ok {
		return apperr.NotFound("Task")
	}
	copied := *t
	r.tasks[t.ID] = &copied
	return nil
}

func (r *fakeTaskRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.tasks[id]; !ok {
		return apperr.NotFound("Task")
	}
	delete(r.tasks, id)
	return nil
}

func (r *fakeTaskRepo) AddComment(_ context.Context, c *task.Comment) error {
	copied := *c
	r.comments[c.ID] = &copied
	return nil
}

func (r *fakeTaskRepo) FindCommentByID(_ context.Context, id string) (*task.Comment, error) {
	if c, ok := r.comments[id]; ok {
		copied := *c
		return &copied, nil
	}
	return nil, apperr.NotFound("Comment")
}

func (r *fakeTaskRepo) ListComments(_ context.Context, taskID string) ([]*task.Comment, error) {
	comments := make([]*task.Comment, 0)
	for _, c := range r.comments {
		if c.TaskID == taskID {
			copied := *c
			comments = append(comments, &copied)
		}
	}
	return comments, nil
}

func (r *fakeTaskRepo) UpdateComment(_ context.Context, c *task.Comment) error {
	if _, ok := r.comments[c.ID]; !ok {
		return apperr.NotFound("Comment")
	}
	copied := *c
	r.comments[c.ID] = &copied
	return nil
}

func (r *fakeTaskRepo) DeleteComment(_ context.Context, id string) error {
	if _, ok := r.comments[id]; !ok {
		return apperr.NotFound("Comment")
	}
	delete(r.comments, id)
	return nil
}

func (r *fakeTaskRepo) AddTimeEntry(_ context.Context, e *task.TimeEntry) error {
	copied := *e
	r.entries[e.ID] = &copied
	return nil
}

func (r *fakeTaskRepo) ListTimeEntries(_ context.Context, taskID string) ([]*task.TimeEntry, error) {
	entries := make([]*task.TimeEntry, 0)
	for _, e := range r.entries {
		if e.TaskID == taskID {
			copied := *e
			entries = append(entries, &copied)
		}
	}
	return entries, nil
}

func (r *fakeTaskRepo) AttachTag(_ context.Context, taskID, tagID string) error {
	r.tags[tagKey{taskID, tagID}] = task.TagRef{ID: tagID, Name: "urgent", Color: "#ff0000"}
	return nil
}

func (r *fakeTaskRepo) DetachTag(_ context.Context, taskID, tagID string) error {
	key := tagKey{taskID, tagID}
	if _, ok := r.tags[key]; !ok {
		return apperr.NotFound("Tag assignment")
	}
	delete(r.tags, key)
	return nil
}

func (r *fakeTaskRepo) ListTags(_ context.Context, taskID string) ([]task.TagRef, error) {
	refs := make([]task.TagRef, 0)
	for key, ref := range r.tags {
		if key.taskID == taskID {
			refs = append(refs, ref)
		}
	}
	return refs, nil
}

type fakeProjectResolver struct {
	projects map[string]*project.Project
}

func (r *fakeProjectResolver) FindByID(_ context.Context, id string) (*project.Project, error) {
	if p, ok := r.projects[id]; ok {
		return p, nil
	}
	return nil, apperr.NotFound("Project")
}

type fakeMemberResolver struct {
	roles map[string]team.Role
}

func (r *fakeMemberResolver) GetMemberRole(_ context.Context, teamID, userID string) (team.Role, error) {
	if role, ok := r.roles[teamID+"/"+userID]; ok {
		return role, nil
	}
	return "", apperr.NotFound("Membership")
}

// newTaskService wires a project "proj-1" owned by team "team-1" with alice as
// admin and bob as plain member. Mallory belongs to nothing.
func newTaskService() (*task.Service, *fakeTaskRepo) {
	repo := newFakeTaskRepo()
	projects := &fakeProjectResolver{projects: map[string]*project.Project{
		"proj-1": {ID: "proj-1", TeamID: "team-1", Name: "Backend"},
	}}
	members := &fakeMemberResolver{roles: map[string]team.Role{
		"team-1/user-alice": team.RoleAdmin,
		"team-1/user-bob":   team.RoleMember,
	}}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return task.NewService(repo, projects, members, logger), repo
}

/*
TestCreateTask verifies the defaults applied to a new task.
*/
func TestCreateTask(t *testing.T) {
	service, _ := newTaskService()

	created, err := service.CreateTask(context.Background(), "proj-1", "user-bob", task.CreateTaskInput{
		Title: "  Ship the release  ",
	})
	require.NoError(t, err)

	assert.Equal(t, "Ship the release", created.Title)
	assert.Equal(t, task.StatusTodo, created.Status)
	assert.Equal(t, "user-bob", created.CreatedBy)
	assert.Nil(t, created.AssigneeID)
}

/*
TestCreateTask_NonMember verifies outsiders cannot create tasks and cannot
learn the project exists.
*/
func TestCreateTask_NonMember(t *testing.T) {
	service, _ := newTaskService()

	_, err := service.CreateTask(context.Background(), "proj-1", "user-mallory", task.CreateTaskInput{
		Title: "Sneaky",
	})
	require.Error(t, err)
	assert.True(t, apperr.IsNotFound(err))
}

/*
TestGetTask_NonMember verifies membership gating on reads.
*/
func TestGetTask_NonMember(t *testing.T) {
	service, _ := newTaskService()
	ctx := context.Background()

	created, err := service.CreateTask(ctx, "proj-1", "user-alice", task.CreateTaskInput{Title: "Internal"})
	require.NoError(t, err)

	_, err = service.GetTask(ctx, created.ID, "user-mallory")
	require.Error(t, err)
	assert.True(t, apperr.IsNotFound(err))
}

/*
TestUpdateTask_ClearSemantics verifies the distinction between leaving a field
alone, setting it, and explicitly clearing it.
*/
func TestUpdateTask_ClearSemantics(t *testing.T) {
	service, _ := newTaskService()
	ctx := context.Background()

	due := time.Now().Add(48 * time.Hour)
	created, err := service.CreateTask(ctx, "proj-1", "user-alice", task.CreateTaskInput{
		Title:      "Triage",
		AssigneeID: pointer.To("user-bob"),
		DueDate:    &due,
	})
	require.NoError(t, err)

	// A title-only patch leaves assignee and due date untouched
	updated, err := service.UpdateTask(ctx, created.ID, "user-alice", task.UpdateTaskInput{
		Title: pointer.To("Triage incoming bugs"),
	})
	require.NoError(t, err)
	require.NotNil(t, updated.AssigneeID)
	assert.Equal(t, "user-bob", *updated.AssigneeID)
	require.NotNil(t, updated.DueDate)

	// Explicit clear flags null both fields
	updated, err = service.UpdateTask(ctx, created.ID, "user-alice", task.UpdateTaskInput{
		ClearAssignee: true,
		ClearDueDate:  true,
	})
	require.NoError(t, err)
	assert.Nil(t, updated.AssigneeID)
	assert.Nil(t, updated.DueDate)
}

/*
TestUpdateTask_StatusValidation verifies unknown statuses are rejected and
valid transitions stick.
*/
func TestUpdateTask_StatusValidation(t *testing.T) {
	service, _ := newTaskService()
	ctx := context.Background()

	created, err := service.CreateTask(ctx, "proj-1", "user-bob", task.CreateTaskInput{Title: "Triage"})
	require.NoError(t, err)

	bogus := task.Status("on_fire")
	_, err = service.UpdateTask(ctx, created.ID, "user-bob", task.UpdateTaskInput{Status: &bogus})
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_ERROR", apperr.As(err).Code)

	done := task.StatusDone
	updated, err := service.UpdateTask(ctx, created.ID, "user-bob", task.UpdateTaskInput{Status: &done})
	require.NoError(t, err)
	assert.Equal(t, task.StatusDone, updated.Status)
}

/*
TestComments_EditOnlyByAuthor verifies comment editing is restricted to the
author while deletion is open to the author or a team admin.
*/
func TestComments_EditOnlyByAuthor(t *testing.T) {
	service, _ := newTaskService()
	ctx := context.Background()

	created, err := service.CreateTask(ctx, "proj-1", "user-alice", task.CreateTaskInput{Title: "Discuss"})
	require.NoError(t, err)

	comment, err := service.AddComment(ctx, created.ID, "user-bob", "looks good to me")
	require.NoError(t, err)
	assert.False(t, comment.IsEdited)

	// Alice (admin) still cannot edit bob's comment
	_, err = service.EditComment(ctx, comment.ID, "user-alice", "rewritten")
	require.Error(t, err)
	assert.Equal(t, "FORBIDDEN", apperr.As(err).Code)

	// Bob can, and the edited flag flips
	edited, err := service.EditComment(ctx, comment.ID, "user-bob", "looks great to me")
	require.NoError(t, err)
	assert.True(t, edited.IsEdited)
	assert.Equal(t, "looks great to me", edited.Body)

	// Alice can delete it as a team admin
	require.NoError(t, service.DeleteComment(ctx, comment.ID, "user-alice"))
}

/*
TestDeleteComment_MemberCannotDeleteOthers verifies a plain member cannot
delete someone else's comment.
*/
func TestDeleteComment_MemberCannotDeleteOthers(t *testing.T) {
	service, _ := newTaskService()
	ctx := context.Background()

	created, err := service.CreateTask(ctx, "proj-1", "user-alice", task.CreateTaskInput{Title: "Discuss"})
	require.NoError(t, err)

	comment, err := service.AddComment(ctx, created.ID, "user-alice", "please review")
	require.NoError(t, err)

	err = service.DeleteComment(ctx, comment.ID, "user-bob")
	require.Error(t, err)
	assert.Equal(t, "FORBIDDEN", apperr.As(err).Code)
}

/*
TestLogTime_Bounds verifies the hour range guard and the entry date default.
*/
func TestLogTime_Bounds(t *testing.T) {
	service, _ := newTaskService()
	ctx := context.Background()

	created, err := service.CreateTask(ctx, "proj-1", "user-bob", task.CreateTaskInput{Title: "Grind"})
	require.NoError(t, err)

	for _, hours := range []float64{0, -1, 24.5} {
		_, err := service.LogTime(ctx, created.ID, "user-bob", task.LogTimeInput{Hours: hours})
		require.Error(t, err)
		assert.Equal(t, "VALIDATION_ERROR", apperr.As(err).Code)
	}

	entry, err := service.LogTime(ctx, created.ID, "user-bob", task.LogTimeInput{Hours: 3.5, Note: "refactoring"})
	require.NoError(t, err)
	assert.InDelta(t, 3.5, entry.Hours, 0.001)
	assert.False(t, entry.EntryDate.IsZero())

	entries, err := service.ListTimeEntries(ctx, created.ID, "user-alice")
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

/*
TestListTasks_StatusFilter verifies filtered listings.
*/
func TestListTasks_StatusFilter(t *testing.T) {
	service, _ := newTaskService()
	ctx := context.Background()

	first, err := service.CreateTask(ctx, "proj-1", "user-alice", task.CreateTaskInput{Title: "One"})
	require.NoError(t, err)
	_, err = service.CreateTask(ctx, "proj-1", "user-alice", task.CreateTaskInput{Title: "Two"})
	require.NoError(t, err)

	done := task.StatusDone
	_, err = service.UpdateTask(ctx, first.ID, "user-alice", task.UpdateTaskInput{Status: &done})
	require.NoError(t, err)

	tasks, total, err := service.ListTasks(ctx, "proj-1", "user-bob",
		task.ListFilter{Status: task.StatusDone}, pagination.Params{Page: 1, Limit: 20})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, tasks, 1)
	assert.Equal(t, "One", tasks[0].Title)
}

/*
TestTags_AttachDetach verifies tag hydration on single-task reads.
*/
func TestTags_AttachDetach(t *testing.T) {
	service, _ := newTaskService()
	ctx := context.Background()

	created, err := service.CreateTask(ctx, "proj-1", "user-alice", task.CreateTaskInput{Title: "Label me"})
	require.NoError(t, err)

	require.NoError(t, service.AttachTag(ctx, created.ID, "tag-urgent", "user-bob"))

	got, err := service.GetTask(ctx, created.ID, "user-bob")
	require.NoError(t, err)
	require.Len(t, got.Tags, 1)
	assert.Equal(t, "urgent", got.Tags[0].Name)

	require.NoError(t, service.DetachTag(ctx, created.ID, "tag-urgent", "user-bob"))

	got, err = service.GetTask(ctx, created.ID, "user-bob")
	require.NoError(t, err)
	assert.Empty(t, got.Tags)
}
