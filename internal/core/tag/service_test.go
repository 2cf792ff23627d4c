// Copyright (c) 2026 TaskForge. All rights reserved.

package tag_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskforge/taskforge/internal/core/tag"
	"github.com/taskforge/taskforge/internal/core/team"
	"github.com/taskforge/taskforge/internal/platform/apperr"
	"github.com/taskforge/taskforge/pkg/pointer"
)

type fakeTagRepo struct {
	tags map[string]*tag.Tag
}

func (r *fakeTagRepo) Create(_ context.Context, t *tag.Tag) error {
	for _, existing := range r.tags {
		if existing.TeamID == t.TeamID && existing.Name == t.Name {
			return apperr.Conflict("Tag already exists")
		}
	}
	copied := *t
	r.tags[t.ID] = &copied
	return nil
}

func (r *fakeTagRepo) FindByID(_ context.Context, id string) (*tag.Tag, error) {
	if t, ok := r.tags[id]; ok {
		copied := *t
		return &copied, nil
	}
	return nil, apperr.NotFound("Tag")
}

func (r *fakeTagRepo) ListByTeam(_ context.Context, teamID string) ([]*tag.Tag, error) {
	tags := make([]*tag.Tag, 0)
	for _, t := range r.tags {
		if t.TeamID == teamID {
			copied := *t
			tags = append(tags, &copied)
		}
	}
	return tags, nil
}

func (r *fakeTagRepo) Update(_ context.Context, t *tag.Tag) error {
	if _, ok := r.tags[t.ID]; !ok {
		return apperr.NotFound("Tag")
	}
	copied := *t
	r.tags[t.ID] = &copied
	return nil
}

func (r *fakeTagRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.tags[id]; !ok {
		return apperr.NotFound("Tag")
	}
	delete(r.tags, id)
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

func newTagService() (*tag.Service, *fakeTagRepo) {
	repo := &fakeTagRepo{tags: make(map[string]*tag.Tag)}
	members := &fakeMemberResolver{roles: map[string]team.Role{
		"team-1/user-alice": team.RoleMember,
	}}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return tag.NewService(repo, members, logger), repo
}

/*
TestCreateTag verifies the default color and the name trim.
*/
func TestCreateTag(t *testing.T) {
	service, _ := newTagService()

	created, err := service.CreateTag(context.Background(), "team-1", "user-alice", tag.CreateTagInput{
		Name: "  urgent  ",
	})
	require.NoError(t, err)

	assert.Equal(t, "urgent", created.Name)
	assert.Equal(t, tag.DefaultColor, created.Color)
}

/*
TestCreateTag_NonMember verifies outsiders cannot create tags.
*/
func TestCreateTag_NonMember(t *testing.T) {
	service, _ := newTagService()

	_, err := service.CreateTag(context.Background(), "team-1", "user-mallory", tag.CreateTagInput{Name: "spy"})
	require.Error(t, err)
	assert.True(t, apperr.IsNotFound(err))
}

/*
TestUpdateTag verifies color normalization to lowercase.
*/
func TestUpdateTag(t *testing.T) {
	service, _ := newTagService()
	ctx := context.Background()

	created, err := service.CreateTag(ctx, "team-1", "user-alice", tag.CreateTagInput{Name: "urgent"})
	require.NoError(t, err)

	updated, err := service.UpdateTag(ctx, created.ID, "user-alice", tag.UpdateTagInput{
		Color: pointer.To("#FF0000"),
	})
	require.NoError(t, err)
	assert.Equal(t, "#ff0000", updated.Color)
}

/*
TestDeleteTag_NonMember verifies the tag's team stays hidden from outsiders.
*/
func TestDeleteTag_NonMember(t *testing.T) {
	service, repo := newTagService()
	ctx := context.Background()

	created, err := service.CreateTag(ctx, "team-1", "user-alice", tag.CreateTagInput{Name: "urgent"})
	require.NoError(t, err)

	err = service.DeleteTag(ctx, created.ID, "user-mallory")
	require.Error(t, err)
	assert.True(t, apperr.IsNotFound(err))
	assert.Len(t, repo.tags, 1)
}
