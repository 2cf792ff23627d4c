// Copyright (c) 2026 TaskForge. All rights reserved.

package project

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

// RegisterTeamRoutes mounts the endpoints nested under /teams/{teamID}/projects.
func (handler *Handler) RegisterTeamRoutes(router chi.Router) {
	router.Post("/", handler.createProject)
	router.Get("/", handler.listProjects)
}

// RegisterRoutes mounts the flat /projects/{projectID} endpoints.
func (handler *Handler) RegisterRoutes(router chi.Router) {
	router.Get("/{projectID}", handler.getProject)
	router.Patch("/{projectID}", handler.updateProject)
	router.Delete("/{projectID}", handler.deleteProject)
}

type createProjectRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (handler *Handler) createProject(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input createProjectRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	v := &validate.Validator{}
	v.Required("name", input.Name).
		MaxLen("name", input.Name, 200).
		MaxLen("description", input.Description, 2000)
	if err := v.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	project, err := handler.service.CreateProject(
		request.Context(),
		requestutil.Param(request, "teamID"),
		userID,
		CreateProjectInput{Name: input.Name, Description: input.Description},
	)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, project)
}

func (handler *Handler) listProjects(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	params := pagination.FromRequest(request)
	projects, total, err := handler.service.ListProjects(
		request.Context(),
		requestutil.Param(request, "teamID"),
		userID,
		params,
	)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, projects, pagination.NewMeta(params.Page, params.Limit, total))
}

func (handler *Handler) getProject(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	project, err := handler.service.GetProject(request.Context(), requestutil.Param(request, "projectID"), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, project)
}

type updateProjectRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

func (handler *Handler) updateProject(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input updateProjectRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	v := &validate.Validator{}
	if input.Name != nil {
		v.Required("name", *input.Name).MaxLen("name", *input.Name, 200)
	}
	if input.Description != nil {
		v.MaxLen("description", *input.Description, 2000)
	}
	if err := v.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	project, err := handler.service.UpdateProject(
		request.Context(),
		requestutil.Param(request, "projectID"),
		userID,
		UpdateProjectInput{Name: input.Name, Description: input.Description},
	)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, project)
}

func (handler *Handler) deleteProject(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.DeleteProject(request.Context(), requestutil.Param(request, "projectID"), userID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}
