// Copyright (c) 2026 TaskForge. All rights reserved.

package tag

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/taskforge/taskforge/internal/platform/request"
	"github.com/taskforge/taskforge/internal/platform/respond"
	"github.com/taskforge/taskforge/internal/platform/validate"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterTeamRoutes mounts the endpoints nested under /teams/{teamID}/tags.
func (handler *Handler) RegisterTeamRoutes(router chi.Router) {
	router.Post("/", handler.createTag)
	router.Get("/", handler.listTags)
}

// RegisterRoutes mounts the flat /tags/{tagID} endpoints.
func (handler *Handler) RegisterRoutes(router chi.Router) {
	router.Patch("/{tagID}", handler.updateTag)
	router.Delete("/{tagID}", handler.deleteTag)
}

type createTagRequest struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

func (handler *Handler) createTag(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input createTagRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	v := &validate.Validator{}
	v.Required("name", input.Name).MaxLen("name", input.Name, 50)
	if input.Color != "" {
		v.HexColor("color", input.Color)
	}
	if err := v.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	tag, err := handler.service.CreateTag(
		request.Context(),
		requestutil.Param(request, "teamID"),
		userID,
		CreateTagInput{Name: input.Name, Color: input.Color},
	)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, tag)
}

func (handler *Handler) listTags(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	tags, err := handler.service.ListTags(request.Context(), requestutil.Param(request, "teamID"), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, tags)
}

type updateTagRequest struct {
	Name  *string `json:"name"`
	Color *string `json:"color"`
}

func (handler *Handler) updateTag(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input updateTagRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	v := &validate.Validator{}
	if input.Name != nil {
		v.Required("name", *input.Name).MaxLen("name", *input.Name, 50)
	}
	if input.Color != nil {
		v.HexColor("color", *input.Color)
	}
	if err := v.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	tag, err := handler.service.UpdateTag(
		request.Context(),
		requestutil.Param(request, "tagID"),
		userID,
		UpdateTagInput{Name: input.Name, Color: input.Color},
	)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, tag)
}

func (handler *Handler) deleteTag(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.DeleteTag(request.Context(), requestutil.Param(request, "tagID"), userID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}
