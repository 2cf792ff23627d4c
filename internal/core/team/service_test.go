// Copyright (c) 2026 TaskForge. All rights reserved.

package team_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskforge/taskforge/internal/core/team"
	"github.com/taskforge/taskforge/internal/platform/apperr"
	"github.com/taskforge/taskforge/pkg/pagination"
	"github.com/taskforge/taskforge/pkg/pointer"
)

type memberKey struct{ teamID, userID string }

type fakeTeamRepo struct {
	teams   map[string]*team.Team
	members map[memberKey]team.Role
}

func newFakeTeamRepo() *fakeTeamRepo {
	return &fakeTeamRepo{
		teams:   make(map[string]*team.Team),
		members: make(map[memberKey]team.Role),
	}
}

func (r *fakeTeamRepo) Create(_ context.Context, t *team.Team) error {
	for _, existing := range r.teams {
		if existing.Slug == t.Slug {
			return apperr.Conflict("Team already exists")
		}
	}
	copied := *t
	r.teams[t.ID] = &copied
	r.members[memberKey{t.ID, t.OwnerID}] = team.RoleOwner
	return nil
}

func (r *fakeTeamRepo) FindByID(_ context.Context, id string) (*team.Team, error) {
	if t, ok := r.teams[id]; ok {
		copied := *t
		return &copied, nil
	}
	return nil, apperr.NotFound("Team")
}

func (r *fakeTeamRepo) FindBySlug(_ context.Context, slug string) (*team.Team, error) {
	for _, t := range r.teams {
		if t.Slug == slug {
			copied := *t
			return &copied, nil
		}
	}
	return nil, apperr.NotFound("Team")
}

func (r *fakeTeamRepo) ListByUser(_ context.Context, userID string, _ pagination.Params) ([]*team.Team, int, error) {
	teams := make([]*team.Team, 0)
	for _, t := range r.teams {
		if _, ok := r.members[memberKey{t.ID, userID}]; ok {
			copied := *t
			teams = append(teams, &copied)
		}
	}
	return teams, len(teams), nil
}

func (r *fakeTeamRepo) Update(_ context.Context, t *team.Team) error {
	if _, ok := r.teams[t.ID]; !ok {
		return apperr.NotFound("Team")
	}
	copied := *t
	r.teams[t.ID] = &copied
	return nil
}

func (r *fakeTeamRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.teams[id]; !ok {
		return apperr.NotFound("Team")
	}
	delete(r.teams, id)
	for key := range r.members {
		if key.teamID == id {
			delete(r.members, key)
		}
	}
	return nil
}

func (r *fakeTeamRepo) ListMembers(_ context.Context, teamID string) ([]*team.Member, error) {
	members := make([]*team.Member, 0)
	for key, role := range r.members {
		if key.teamID == teamID {
			members = append(members, &team.Member{TeamID: teamID, UserID: key.userID, Role: role})
		}
	}
	return members, nil
}

func (r *fakeTeamRepo) AddMember(_ context.Context, m *team.Member) error {
	key := memberKey{m.TeamID, m.UserID}
	if _, ok := r.members[key]; ok {
		return apperr.Conflict("Membership already exists")
	}
	r.members[key] = m.Role
	return nil
}

func (r *fakeTeamRepo) RemoveMember(_ context.Context, teamID, userID string) error {
	key := memberKey{teamID, userID}
	if _, ok := r.members[key]; !ok {
		return apperr.NotFound("Membership")
	}
	delete(r.members, key)
	return nil
}

func (r *fakeTeamRepo) GetMemberRole(_ context.Context, teamID, userID string) (team.Role, error) {
	if role, ok := r.members[memberKey{teamID, userID}]; ok {
		return role, nil
	}
	return "", apperr.NotFound("Membership")
}

type fakeUserResolver struct {
	byEmail map[string]string
}

func (r *fakeUserResolver) FindIDByEmail(_ context.Context, email string) (string, error) {
	if id, ok := r.byEmail[email]; ok {
		return id, nil
	}
	return "", apperr.NotFound("User")
}

func newTeamService() (*team.Service, *fakeTeamRepo, *fakeUserResolver) {
	repo := newFakeTeamRepo()
	users := &fakeUserResolver{byEmail: map[string]string{
		"bob@example.com":   "user-bob",
		"carol@example.com": "user-carol",
	}}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return team.NewService(repo, users, logger), repo, users
}

/*
TestCreateTeam verifies the creator becomes owner and the slug is derived
from the name.
*/
func TestCreateTeam(t *testing.T) {
	service, repo, _ := newTeamService()

	created, err := service.CreateTeam(context.Background(), "user-alice", team.CreateTeamInput{
		Name: "Platform Crew",
	})
	require.NoError(t, err)

	assert.Equal(t, "platform-crew", created.Slug)
	assert.Equal(t, "user-alice", created.OwnerID)

	role, err := repo.GetMemberRole(context.Background(), created.ID, "user-alice")
	require.NoError(t, err)
	assert.Equal(t, team.RoleOwner, role)
}

/*
TestCreateTeam_DuplicateSlug verifies that name collisions conflict.
*/
func TestCreateTeam_DuplicateSlug(t *testing.T) {
	service, _, _ := newTeamService()

	_, err := service.CreateTeam(context.Background(), "user-alice", team.CreateTeamInput{Name: "Platform Crew"})
	require.NoError(t, err)

	_, err = service.CreateTeam(context.Background(), "user-bob", team.CreateTeamInput{Name: "Platform  Crew!"})
	require.Error(t, err)
	assert.Equal(t, "CONFLICT", apperr.As(err).Code)
}

/*
TestGetTeam_NonMember verifies that outsiders cannot see the team at all.
*/
func TestGetTeam_NonMember(t *testing.T) {
	service, _, _ := newTeamService()

	created, err := service.CreateTeam(context.Background(), "user-alice", team.CreateTeamInput{Name: "Secret Ops"})
	require.NoError(t, err)

	_, err = service.GetTeam(context.Background(), created.ID, "user-mallory")
	require.Error(t, err)
	assert.True(t, apperr.IsNotFound(err))
}

/*
TestMembership_Rules covers role granting, removal permissions, and owner
protection.
*/
func TestMembership_Rules(t *testing.T) {
	service, _, _ := newTeamService()
	ctx := context.Background()

	created, err := service.CreateTeam(ctx, "user-alice", team.CreateTeamInput{Name: "Platform Crew"})
	require.NoError(t, err)

	// Owner invites bob as admin and carol as member
	_, err = service.AddMember(ctx, created.ID, "user-alice", "bob@example.com", team.RoleAdmin)
	require.NoError(t, err)
	_, err = service.AddMember(ctx, created.ID, "user-alice", "carol@example.com", team.RoleMember)
	require.NoError(t, err)

	// Granting ownership via invitation is rejected
	_, err = service.AddMember(ctx, created.ID, "user-alice", "carol@example.com", team.RoleOwner)
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_ERROR", apperr.As(err).Code)

	// A plain member cannot invite
	_, err = service.AddMember(ctx, created.ID, "user-carol", "bob@example.com", team.RoleMember)
	require.Error(t, err)
	assert.Equal(t, "FORBIDDEN", apperr.As(err).Code)

	// A plain member cannot remove someone else
	err = service.RemoveMember(ctx, created.ID, "user-carol", "user-bob")
	require.Error(t, err)
	assert.Equal(t, "FORBIDDEN", apperr.As(err).Code)

	// But can leave on their own
	require.NoError(t, service.RemoveMember(ctx, created.ID, "user-carol", "user-carol"))

	// The owner can never be removed, not even by an admin
	err = service.RemoveMember(ctx, created.ID, "user-bob", "user-alice")
	require.Error(t, err)
	assert.Equal(t, "FORBIDDEN", apperr.As(err).Code)
}

/*
TestDeleteTeam_OwnerOnly verifies that admins cannot delete the team.
*/
func TestDeleteTeam_OwnerOnly(t *testing.T) {
	service, repo, _ := newTeamService()
	ctx := context.Background()

	created, err := service.CreateTeam(ctx, "user-alice", team.CreateTeamInput{Name: "Platform Crew"})
	require.NoError(t, err)
	_, err = service.AddMember(ctx, created.ID, "user-alice", "bob@example.com", team.RoleAdmin)
	require.NoError(t, err)

	err = service.DeleteTeam(ctx, created.ID, "user-bob")
	require.Error(t, err)
	assert.Equal(t, "FORBIDDEN", apperr.As(err).Code)

	require.NoError(t, service.DeleteTeam(ctx, created.ID, "user-alice"))
	assert.Empty(t, repo.teams)
}

/*
TestUpdateTeam_RegeneratesSlug verifies renaming refreshes the slug.
*/
func TestUpdateTeam_RegeneratesSlug(t *testing.T) {
	service, _, _ := newTeamService()
	ctx := context.Background()

	created, err := service.CreateTeam(ctx, "user-alice", team.CreateTeamInput{Name: "Platform Crew"})
	require.NoError(t, err)

	updated, err := service.UpdateTeam(ctx, created.ID, "user-alice", team.UpdateTeamInput{
		Name: pointer.To("Côre Team"),
	})
	require.NoError(t, err)
	assert.Equal(t, "core-team", updated.Slug)
}
