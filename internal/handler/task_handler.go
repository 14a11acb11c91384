package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"tasktracker/internal/middleware"
	"tasktracker/internal/model"
	"tasktracker/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type TaskService interface {
	Create(ctx context.Context, ownerID uuid.UUID, in service.TaskInput) (*model.Task, error)
	List(ctx context.Context, ownerID uuid.UUID, filter service.TaskFilter) ([]model.Task, error)
	Get(ctx context.Context, ownerID, taskID uuid.UUID) (*model.Task, error)
	Update(ctx context.Context, ownerID, taskID uuid.UUID, patch service.TaskPatch) (*model.Task, error)
	Delete(ctx context.Context, ownerID, taskID uuid.UUID) error
}

type TaskHandler struct {
	tasks TaskService
}

func NewTaskHandler(tasks TaskService) *TaskHandler {
	return &TaskHandler{tasks: tasks}
}

// TaskRequest documents the create and update bodies. id, user and timestamps are read-only and ignored.
type TaskRequest struct {
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	Status      *string    `json:"status"`
	DueDate     *time.Time `json:"due_date"`
}

type TaskResponse struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	Status      string     `json:"status"`
	DueDate     *time.Time `json:"due_date"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	User        string     `json:"user"`
}

func newTaskResponse(t *model.Task) TaskResponse {
	return TaskResponse{
		ID:          t.ID.String(),
		Title:       t.Title,
		Description: t.Description,
		Status:      t.Status,
		DueDate:     t.DueDate,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
		User:        t.UserID.String(),
	}
}

// List godoc
// @Summary      List the caller's tasks, newest first
// @Tags         Tasks
// @Produce      json
// @Security     BearerAuth
// @Param        status    query     string  false  "Exact status"  Enums(pending, in_progress, completed)
// @Param        due_date  query     string  false  "Exact due date (RFC 3339)"
// @Success      200       {array}   TaskResponse
// @Failure      400       {object}  ErrorResponse
// @Failure      401       {object}  ErrorResponse
// @Router       /tasks [get]
func (h *TaskHandler) List(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var filter service.TaskFilter
	if status := c.Query("status"); status != "" {
		filter.Status = &status
	}
	if raw := c.Query("due_date"); raw != "" {
		due, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:  msgValidationFailed,
				Fields: map[string][]string{"due_date": {msgBadDatetime}},
			})
			return
		}
		filter.DueDate = &due
	}

	tasks, err := h.tasks.List(c.Request.Context(), userID, filter)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := make([]TaskResponse, 0, len(tasks))
	for i := range tasks {
		resp = append(resp, newTaskResponse(&tasks[i]))
	}
	c.JSON(http.StatusOK, resp)
}

// Create godoc
// @Summary      Create a task owned by the caller
// @Tags         Tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      TaskRequest  true  "Task"
// @Success      201   {object}  TaskResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      401   {object}  ErrorResponse
// @Router       /task/create [post]
func (h *TaskHandler) Create(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var raw map[string]json.RawMessage
	if err := c.ShouldBindJSON(&raw); err != nil {
		respondBindError(c, err)
		return
	}

	task, err := h.tasks.Create(c.Request.Context(), userID, decodeTaskInput(raw))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, newTaskResponse(task))
}

// GetByID godoc
// @Summary      Get one of the caller's tasks
// @Tags         Tasks
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Task ID"
// @Success      200  {object}  TaskResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /task/detail/{id} [get]
func (h *TaskHandler) GetByID(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	taskID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	task, err := h.tasks.Get(c.Request.Context(), userID, taskID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, newTaskResponse(task))
}

// Update godoc
// @Summary      Partially update one of the caller's tasks
// @Description  Send null for description or due_date to clear them.
// @Tags         Tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string       true  "Task ID"
// @Param        body  body      TaskRequest  true  "Fields to change"
// @Success      200   {object}  TaskResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      401   {object}  ErrorResponse
// @Failure      403   {object}  ErrorResponse
// @Failure      404   {object}  ErrorResponse
// @Router       /task/update/{id} [patch]
func (h *TaskHandler) Update(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	taskID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var raw map[string]json.RawMessage
	if err := c.ShouldBindJSON(&raw); err != nil {
		respondBindError(c, err)
		return
	}
	patch, err := decodeTaskPatch(raw)
	if err != nil {
		respondBindError(c, err)
		return
	}

	task, err := h.tasks.Update(c.Request.Context(), userID, taskID, patch)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, newTaskResponse(task))
}

// Delete godoc
// @Summary      Delete one of the caller's tasks and its comments
// @Tags         Tasks
// @Security     BearerAuth
// @Param        id   path  string  true  "Task ID"
// @Success      204
// @Failure      401  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /task/delete/{id} [delete]
func (h *TaskHandler) Delete(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	taskID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	if err := h.tasks.Delete(c.Request.Context(), userID, taskID); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// decodeTaskInput never fails outright. Undecodable fields go into Rejected so the
// service can report them alongside its own validation.
func decodeTaskInput(raw map[string]json.RawMessage) service.TaskInput {
	var in service.TaskInput
	verr := &service.ValidationError{}

	if v, ok := raw["title"]; ok {
		in.Title, _ = decodeString(verr, "title", v, false)
	}
	if v, ok := raw["description"]; ok {
		in.Description, _ = decodeString(verr, "description", v, true)
	}
	if v, ok := raw["status"]; ok {
		in.Status, _ = decodeString(verr, "status", v, false)
	}
	if v, ok := raw["due_date"]; ok {
		in.DueDate, _ = decodeTime(verr, "due_date", v)
	}

	if len(verr.Fields) > 0 {
		in.Rejected = verr
	}
	return in
}

// decodeTaskPatch keeps track of which keys were sent so an explicit null can clear a field.
func decodeTaskPatch(raw map[string]json.RawMessage) (service.TaskPatch, error) {
	var patch service.TaskPatch
	verr := &service.ValidationError{}

	if v, ok := raw["title"]; ok {
		if s, ok := decodeString(verr, "title", v, false); ok {
			patch.Title = s
		}
	}
	if v, ok := raw["description"]; ok {
		if s, ok := decodeString(verr, "description", v, true); ok {
			patch.Description = service.Optional[string]{Set: true, Value: s}
		}
	}
	if v, ok := raw["status"]; ok {
		if s, ok := decodeString(verr, "status", v, false); ok {
			patch.Status = s
		}
	}
	if v, ok := raw["due_date"]; ok {
		if due, ok := decodeTime(verr, "due_date", v); ok {
			patch.DueDate = service.Optional[time.Time]{Set: true, Value: due}
		}
	}

	if len(verr.Fields) > 0 {
		return service.TaskPatch{}, verr
	}
	return patch, nil
}

// decodeString returns nil for a JSON null when nullable is set.
func decodeString(verr *service.ValidationError, field string, v json.RawMessage, nullable bool) (*string, bool) {
	if string(v) == "null" {
		if !nullable {
			verr.Add(field, msgNotNull)
			return nil, false
		}
		return nil, true
	}
	var s string
	if err := json.Unmarshal(v, &s); err != nil {
		verr.Add(field, msgIncorrectType)
		return nil, false
	}
	return &s, true
}

// decodeTime parses an RFC 3339 string. A JSON null yields nil.
func decodeTime(verr *service.ValidationError, field string, v json.RawMessage) (*time.Time, bool) {
	s, ok := decodeString(verr, field, v, true)
	if !ok || s == nil {
		return nil, ok
	}
	t, err := time.Parse(time.RFC3339Nano, *s)
	if err != nil {
		verr.Add(field, msgBadDatetime)
		return nil, false
	}
	return &t, true
}

func requireUser(c *gin.Context) (uuid.UUID, bool) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Authentication credentials were not provided.", Code: "not_authenticated"})
		return uuid.Nil, false
	}
	return userID, true
}

// pathUUID answers 404 for an id that cannot name any stored row.
func pathUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		respondError(c, service.ErrNotFound)
		return uuid.Nil, false
	}
	return id, true
}
