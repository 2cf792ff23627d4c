// Copyright (c) 2026 TaskForge. All rights reserved.

package team

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/taskforge/taskforge/internal/platform/request"
	"github.com/taskforge/taskforge/internal/platform/respond"
	"github.com/taskforge/taskforge/internal/platform/validate"
	"github.com/taskforge/taskforge/pkg/pagination"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the team endpoints. All of them require auth, which
// the server applies on the parent router.
func (handler *Handler) RegisterRoutes(router chi.Router) {
	router.Post("/", handler.createTeam)
	router.Get("/", handler.listMyTeams)
	router.Get("/{teamID}", handler.getTeam)
	router.Patch("/{teamID}", handler.updateTeam)
	router.Delete("/{teamID}", handler.deleteTeam)

	router.Get("/{teamID}/members", handler.listMembers)
	router.Post("/{teamID}/members", handler.addMember)
	router.Delete("/{teamID}/members/{userID}", handler.removeMember)
}

type createTeamRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (handler *Handler) createTeam(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input createTeamRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	v := &validate.Validator{}
	v.Required("name", input.Name).
		MaxLen("name", input.Name, 100).
		MaxLen("description", input.Description, 1000)
	if err := v.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	team, err := handler.service.CreateTeam(request.Context(), userID, CreateTeamInput{
		Name:        input.Name,
		Description: input.Description,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, team)
}

func (handler *Handler) listMyTeams(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	params := pagination.FromRequest(request)
	teams, total, err := handler.service.ListMyTeams(request.Context(), userID, params)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, teams, pagination.NewMeta(params.Page, params.Limit, total))
}

func (handler *Handler) getTeam(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	team, err := handler.service.GetTeam(request.Context(), requestutil.Param(request, "teamID"), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, team)
}

type updateTeamRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

func (handler *Handler) updateTeam(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input updateTeamRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	v := &validate.Validator{}
	if input.Name != nil {
		v.Required("name", *input.Name).MaxLen("name", *input.Name, 100)
	}
	if input.Description != nil {
		v.MaxLen("description", *input.Description, 1000)
	}
	if err := v.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	team, err := handler.service.UpdateTeam(request.Context(), requestutil.Param(request, "teamID"), userID, UpdateTeamInput{
		Name:        input.Name,
		Description: input.Description,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, team)
}

func (handler *Handler) deleteTeam(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.DeleteTeam(request.Context(), requestutil.Param(request, "teamID"), userID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

// # Membership Endpoints

func (handler *Handler) listMembers(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	members, err := handler.service.ListMembers(request.Context(), requestutil.Param(request, "teamID"), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, members)
}

type addMemberRequest struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

func (handler *Handler) addMember(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input addMemberRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	v := &validate.Validator{}
	v.Required("email", input.Email).Email("email", input.Email)
	if input.Role != "" {
		v.OneOf("role", input.Role, string(RoleAdmin), string(RoleMember))
	}
	if err := v.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	member, err := handler.service.AddMember(
		request.Context(),
		requestutil.Param(request, "teamID"),
		userID,
		input.Email,
		Role(input.Role),
	)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, member)
}

func (handler *Handler) removeMember(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	err = handler.service.RemoveMember(
		request.Context(),
		requestutil.Param(request, "teamID"),
		userID,
		requestutil.Param(request, "userID"),
	)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}
