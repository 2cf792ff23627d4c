// Copyright (c) 2026 TaskForge. All rights reserved.

package project_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskforge/taskforge/internal/core/project"
	"github.com/taskforge/taskforge/internal/core/team"
	"github.com/taskforge/taskforge/internal/platform/apperr"
	"github.com/taskforge/taskforge/pkg/pagination"
	"github.com/taskforge/taskforge/pkg/pointer"
)

type fakeProjectRepo struct {
	projects map[string]*project.Project
}

func (r *fakeProjectRepo) Create(_ context.Context, p *project.Project) error {
	copied := *p
	r.projects[p.ID] = &copied
	return nil
}

func (r *fakeProjectRepo) FindByID(_ context.Context, id string) (*project.Project, error) {
	if p, ok := r.projects[id]; ok {
		copied := *p
		return &copied, nil
	}
	return nil, apperr.NotFound("Project")
}

func (r *fakeProjectRepo) ListByTeam(_ context.Context, teamID string, _ pagination.Params) ([]*project.Project, int, error) {
	projects := make([]*project.Project, 0)
	for _, p := range r.projects {
		if p.TeamID == teamID {
			copied := *p
			projects = append(projects, &copied)
		}
	}
	return projects, len(projects), nil
}

func (r *fakeProjectRepo) Update(_ context.Context, p *project.Project) error {
	if _, ok := r.projects[p.ID]; !ok {
		return apperr.NotFound("Project")
	}
	copied := *p
	r.projects[p.ID] = &copied
	return nil
}

func (r *fakeProjectRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.projects[id]; !ok {
		return apperr.NotFound("Project")
	}
	delete(r.projects, id)
	return nil
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

func newProjectService() (*project.Service, *fakeProjectRepo) {
	repo := &fakeProjectRepo{projects: make(map[string]*project.Project)}
	members := &fakeMemberResolver{roles: map[string]team.Role{
		"team-1/user-alice": team.RoleAdmin,
		"team-1/user-bob":   team.RoleMember,
	}}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return project.NewService(repo, members, logger), repo
}

/*
TestCreateProject verifies any member can create and the creator is recorded.
*/
func TestCreateProject(t *testing.T) {
	service, _ := newProjectService()

	created, err := service.CreateProject(context.Background(), "team-1", "user-bob", project.CreateProjectInput{
		Name: "  Backend  ",
	})
	require.NoError(t, err)

	assert.Equal(t, "Backend", created.Name)
	assert.Equal(t, "user-bob", created.CreatedBy)
	assert.Equal(t, "team-1", created.TeamID)
}

/*
TestGetProject_NonMember verifies outsiders get NotFound, never Forbidden.
*/
func TestGetProject_NonMember(t *testing.T) {
	service, _ := newProjectService()
	ctx := context.Background()

	created, err := service.CreateProject(ctx, "team-1", "user-alice", project.CreateProjectInput{Name: "Backend"})
	require.NoError(t, err)

	_, err = service.GetProject(ctx, created.ID, "user-mallory")
	require.Error(t, err)
	assert.True(t, apperr.IsNotFound(err))
}

/*
TestDeleteProject_RequiresAdmin verifies plain members cannot delete.
*/
func TestDeleteProject_RequiresAdmin(t *testing.T) {
	service, repo := newProjectService()
	ctx := context.Background()

	created, err := service.CreateProject(ctx, "team-1", "user-alice", project.CreateProjectInput{Name: "Backend"})
	require.NoError(t, err)

	err = service.DeleteProject(ctx, created.ID, "user-bob")
	require.Error(t, err)
	assert.Equal(t, "FORBIDDEN", apperr.As(err).Code)

	require.NoError(t, service.DeleteProject(ctx, created.ID, "user-alice"))
	assert.Empty(t, repo.projects)
}

/*
TestUpdateProject_PartialUpdate verifies nil fields stay untouched.
*/
func TestUpdateProject_PartialUpdate(t *testing.T) {
	service, _ := newProjectService()
	ctx := context.Background()

	created, err := service.CreateProject(ctx, "team-1", "user-bob", project.CreateProjectInput{
		Name:        "Backend",
		Description: "API work",
	})
	require.NoError(t, err)

	updated, err := service.UpdateProject(ctx, created.ID, "user-bob", project.UpdateProjectInput{
		Name: pointer.To("Backend v2"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Backend v2", updated.Name)
	assert.Equal(t, "API work", updated.Description)
}
