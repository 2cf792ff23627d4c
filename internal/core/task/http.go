// Copyright (c) 2026 TaskForge. All rights reserved.

package task

import (
	"net/http"
	"time"

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

// RegisterProjectRoutes mounts the endpoints nested under /projects/{projectID}/tasks.
func (handler *Handler) RegisterProjectRoutes(router chi.Router) {
	router.Post("/", handler.createTask)
	router.Get("/", handler.listTasks)
}

// RegisterRoutes mounts the flat /tasks endpoints, including the comment,
// time-entry, and tag sub-resources.
func (handler *Handler) RegisterRoutes(router chi.Router) {
	router.Get("/{taskID}", handler.getTask)
	router.Patch("/{taskID}", handler.updateTask)
	router.Delete("/{taskID}", handler.deleteTask)

	router.Post("/{taskID}/comments", handler.addComment)
	router.Get("/{taskID}/comments", handler.listComments)
	router.Patch("/comments/{commentID}", handler.editComment)
	router.Delete("/comments/{commentID}", handler.deleteComment)

	router.Post("/{taskID}/time-entries", handler.logTime)
	router.Get("/{taskID}/time-entries", handler.listTimeEntries)

	router.Put("/{taskID}/tags/{tagID}", handler.attachTag)
	router.Delete("/{taskID}/tags/{tagID}", handler.detachTag)
}

// # Task CRUD

type createTaskRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	AssigneeID  *string    `json:"assignee_id"`
	DueDate     *time.Time `json:"due_date"`
}

func (handler *Handler) createTask(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input createTaskRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	v := &validate.Validator{}
	v.Required("title", input.Title).
		MaxLen("title", input.Title, 200).
		MaxLen("description", input.Description, 5000)
	if input.AssigneeID != nil {
		v.UUID("assignee_id", *input.AssigneeID)
	}
	if err := v.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	task, err := handler.service.CreateTask(
		request.Context(),
		requestutil.Param(request, "projectID"),
		userID,
		CreateTaskInput{
			Title:       input.Title,
			Description: input.Description,
			AssigneeID:  input.AssigneeID,
			DueDate:     input.DueDate,
		},
	)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, task)
}

func (handler *Handler) listTasks(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	filter := ListFilter{
		Status:     Status(request.URL.Query().Get("status")),
		AssigneeID: request.URL.Query().Get("assignee_id"),
	}
	if filter.Status != "" && !filter.Status.Valid() {
		respond.Error(writer, request, validate.RequiredError("status", "Unknown task status"))
		return
	}

	params := pagination.FromRequest(request)
	tasks, total, err := handler.service.ListTasks(
		request.Context(),
		requestutil.Param(request, "projectID"),
		userID,
		filter,
		params,
	)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, tasks, pagination.NewMeta(params.Page, params.Limit, total))
}

func (handler *Handler) getTask(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	task, err := handler.service.GetTask(request.Context(), requestutil.Param(request, "taskID"), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, task)
}

type updateTaskRequest struct {
	Title         *string    `json:"title"`
	Description   *string    `json:"description"`
	Status        *string    `json:"status"`
	AssigneeID    *string    `json:"assignee_id"`
	ClearAssignee bool       `json:"clear_assignee"`
	DueDate       *time.Time `json:"due_date"`
	ClearDueDate  bool       `json:"clear_due_date"`
}

func (handler *Handler) updateTask(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input updateTaskRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	v := &validate.Validator{}
	if input.Title != nil {
		v.Required("title", *input.Title).MaxLen("title", *input.Title, 200)
	}
	if input.Description != nil {
		v.MaxLen("description", *input.Description, 5000)
	}
	if input.Status != nil {
		v.OneOf("status", *input.Status, Statuses()...)
	}
	if input.AssigneeID != nil {
		v.UUID("assignee_id", *input.AssigneeID)
	}
	if err := v.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	serviceInput := UpdateTaskInput{
		Title:         input.Title,
		Description:   input.Description,
		AssigneeID:    input.AssigneeID,
		ClearAssignee: input.ClearAssignee,
		DueDate:       input.DueDate,
		ClearDueDate:  input.ClearDueDate,
	}
	if input.Status != nil {
		status := Status(*input.Status)
		serviceInput.Status = &status
	}

	task, err := handler.service.UpdateTask(request.Context(), requestutil.Param(request, "taskID"), userID, serviceInput)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, task)
}

func (handler *Handler) deleteTask(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.DeleteTask(request.Context(), requestutil.Param(request, "taskID"), userID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

// # Comments

type commentRequest struct {
	Body string `json:"body"`
}

func (handler *Handler) addComment(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input commentRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	v := &validate.Validator{}
	v.Required("body", input.Body).MaxLen("body", input.Body, 5000)
	if err := v.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	comment, err := handler.service.AddComment(request.Context(), requestutil.Param(request, "taskID"), userID, input.Body)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, comment)
}

func (handler *Handler) listComments(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	comments, err := handler.service.ListComments(request.Context(), requestutil.Param(request, "taskID"), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, comments)
}

func (handler *Handler) editComment(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input commentRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	v := &validate.Validator{}
	v.Required("body", input.Body).MaxLen("body", input.Body, 5000)
	if err := v.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	comment, err := handler.service.EditComment(request.Context(), requestutil.Param(request, "commentID"), userID, input.Body)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, comment)
}

func (handler *Handler) deleteComment(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.DeleteComment(request.Context(), requestutil.Param(request, "commentID"), userID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

// # Time Entries

type logTimeRequest struct {
	Hours     float64    `json:"hours"`
	EntryDate *time.Time `json:"entry_date"`
	Note      string     `json:"note"`
}

func (handler *Handler) logTime(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input logTimeRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	v := &validate.Validator{}
	v.Custom("hours", input.Hours <= 0 || input.Hours > 24, "Must be between 0 and 24").
		MaxLen("note", input.Note, 1000)
	if err := v.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	serviceInput := LogTimeInput{Hours: input.Hours, Note: input.Note}
	if input.EntryDate != nil {
		serviceInput.EntryDate = *input.EntryDate
	}

	entry, err := handler.service.LogTime(request.Context(), requestutil.Param(request, "taskID"), userID, serviceInput)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, entry)
}

func (handler *Handler) listTimeEntries(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	entries, err := handler.service.ListTimeEntries(request.Context(), requestutil.Param(request, "taskID"), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, entries)
}

// # Tag Assignment

func (handler *Handler) attachTag(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.AttachTag(
		request.Context(),
		requestutil.Param(request, "taskID"),
		requestutil.Param(request, "tagID"),
		userID,
	); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

func (handler *Handler) detachTag(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.DetachTag(
		request.Context(),
		requestutil.Param(request, "taskID"),
		requestutil.Param(request, "tagID"),
		userID,
	); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}
