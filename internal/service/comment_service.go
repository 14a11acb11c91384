package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"tasktracker/internal/model"

	"github.com/google/uuid"
)

type TaskLookup interface {
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

type CommentStore interface {
	Create(ctx context.Context, comment *model.Comment) error
	ListByTask(ctx context.Context, taskID uuid.UUID) ([]model.Comment, error)
}

// CommentService manages comments under a task. Any authenticated user may read or add them.
type CommentService struct {
	tasks    TaskLookup
	comments CommentStore
	now      func() time.Time
}

func NewCommentService(tasks TaskLookup, comments CommentStore) *CommentService {
	return &CommentService{tasks: tasks, comments: comments, now: time.Now}
}

// Create attaches a comment to the task named by taskID. The task reference never comes from the payload.
func (s *CommentService) Create(ctx context.Context, authorID, taskID uuid.UUID, text string) (*model.Comment, error) {
	if err := s.requireTask(ctx, taskID); err != nil {
		return nil, err
	}

	if strings.TrimSpace(text) == "" {
		verr := &ValidationError{}
		verr.Add("text", msgBlank)
		return nil, verr
	}

	comment := &model.Comment{
		ID:        uuid.New(),
		Text:      text,
		CreatedAt: s.now().UTC().Truncate(time.Microsecond),
		TaskID:    taskID,
		UserID:    authorID,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}
	return comment, nil
}

// List returns the task's comments newest first.
func (s *CommentService) List(ctx context.Context, taskID uuid.UUID) ([]model.Comment, error) {
	if err := s.requireTask(ctx, taskID); err != nil {
		return nil, err
	}
	comments, err := s.comments.ListByTask(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	return comments, nil
}

func (s *CommentService) requireTask(ctx context.Context, taskID uuid.UUID) error {
	exists, err := s.tasks.Exists(ctx, taskID)
	if err != nil {
		return fmt.Errorf("check task: %w", err)
	}
	if !exists {
		return ErrNotFound
	}
	return nil
}
