package handler

import (
	"context"
	"net/http"
	"time"

	"tasktracker/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type CommentService interface {
	Create(ctx context.Context, authorID, taskID uuid.UUID, text string) (*model.Comment, error)
	List(ctx context.Context, taskID uuid.UUID) ([]model.Comment, error)
}

type CommentHandler struct {
	comments CommentService
}

func NewCommentHandler(comments CommentService) *CommentHandler {
	return &CommentHandler{comments: comments}
}

// CommentRequest carries only the text; the task comes from the URL.
type CommentRequest struct {
	Text string `json:"text"`
}

type CommentResponse struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
	Task      string    `json:"task"`
	User      string    `json:"user"`
}

func newCommentResponse(cm *model.Comment) CommentResponse {
	return CommentResponse{
		ID:        cm.ID.String(),
		Text:      cm.Text,
		CreatedAt: cm.CreatedAt,
		Task:      cm.TaskID.String(),
		User:      cm.UserID.String(),
	}
}

// List godoc
// @Summary      List comments on a task, newest first
// @Tags         Comments
// @Produce      json
// @Security     BearerAuth
// @Param        taskId  path      string  true  "Task ID"
// @Success      200     {array}   CommentResponse
// @Failure      401     {object}  ErrorResponse
// @Failure      404     {object}  ErrorResponse
// @Router       /tasks/{taskId}/comments [get]
func (h *CommentHandler) List(c *gin.Context) {
	if _, ok := requireUser(c); !ok {
		return
	}
	taskID, ok := pathUUID(c, "taskId")
	if !ok {
		return
	}

	comments, err := h.comments.List(c.Request.Context(), taskID)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := make([]CommentResponse, 0, len(comments))
	for i := range comments {
		resp = append(resp, newCommentResponse(&comments[i]))
	}
	c.JSON(http.StatusOK, resp)
}

// Create godoc
// @Summary      Comment on a task
// @Tags         Comments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        taskId  path      string          true  "Task ID"
// @Param        body    body      CommentRequest  true  "Comment"
// @Success      201     {object}  CommentResponse
// @Failure      400     {object}  ErrorResponse
// @Failure      401     {object}  ErrorResponse
// @Failure      404     {object}  ErrorResponse
// @Router       /tasks/{taskId}/comments/create [post]
func (h *CommentHandler) Create(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	taskID, ok := pathUUID(c, "taskId")
	if !ok {
		return
	}

	var req CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	comment, err := h.comments.Create(c.Request.Context(), userID, taskID, req.Text)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, newCommentResponse(comment))
}
