package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"tasktracker/internal/model"
	"tasktracker/internal/repository"

	"github.com/google/uuid"
)

const maxTitleLength = 255

const msgElapsedDueDate = "This time cannot be an elapsed time"

// TaskFilter narrows List. Nil fields do not filter.
type TaskFilter = repository.TaskFilter

type TaskStore interface {
	Create(ctx context.Context, task *model.Task) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Task, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID, filter repository.TaskFilter) ([]model.Task, error)
	Update(ctx context.Context, task *model.Task) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// Optional distinguishes an absent field from an explicit null.
// Set is false when the field was not sent; Value is nil when it was sent as null.
type Optional[T any] struct {
	Set   bool
	Value *T
}

// TaskInput is a create request. A nil Title means the field was not sent.
type TaskInput struct {
	Title       *string
	Description *string
	Status      *string
	DueDate     *time.Time

	// Rejected holds fields the caller could not decode. Create reports them
	// together with its own checks and skips validating those fields again.
	Rejected *ValidationError
}

// TaskPatch carries a partial update; nil/unset fields are left unchanged.
type TaskPatch struct {
	Title       *string
	Description Optional[string]
	Status      *string
	DueDate     Optional[time.Time]
}

type TaskService struct {
	tasks TaskStore
	now   func() time.Time
}

func NewTaskService(tasks TaskStore) *TaskService {
	return &TaskService{tasks: tasks, now: time.Now}
}

func (s *TaskService) Create(ctx context.Context, ownerID uuid.UUID, in TaskInput) (*model.Task, error) {
	now := s.clock()
	verr := &ValidationError{}
	if in.Rejected != nil {
		verr.Fields = append(verr.Fields, in.Rejected.Fields...)
	}

	if !verr.Has("title") {
		if in.Title == nil {
			verr.Add("title", msgRequired)
		} else {
			validateTitle(verr, *in.Title)
		}
	}

	status := model.StatusPending
	if in.Status != nil && !verr.Has("status") {
		validateStatus(verr, *in.Status)
		status = *in.Status
	}
	if in.DueDate != nil && !verr.Has("due_date") {
		validateDueDate(verr, *in.DueDate, now)
	}

	if err := verr.orNil(); err != nil {
		return nil, err
	}

	task := &model.Task{
		ID:          uuid.New(),
		Title:       *in.Title,
		Description: in.Description,
		Status:      status,
		DueDate:     normalizeTime(in.DueDate),
		CreatedAt:   now,
		UpdatedAt:   now,
		UserID:      ownerID,
	}
	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	return task, nil
}

// List returns the owner's tasks newest-created first. Unmatched filters yield an empty slice.
func (s *TaskService) List(ctx context.Context, ownerID uuid.UUID, filter TaskFilter) ([]model.Task, error) {
	filter.DueDate = normalizeTime(filter.DueDate)
	tasks, err := s.tasks.ListByOwner(ctx, ownerID, filter)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

func (s *TaskService) Get(ctx context.Context, ownerID, taskID uuid.UUID) (*model.Task, error) {
	return s.owned(ctx, ownerID, taskID)
}

func (s *TaskService) Update(ctx context.Context, ownerID, taskID uuid.UUID, patch TaskPatch) (*model.Task, error) {
	task, err := s.owned(ctx, ownerID, taskID)
	if err != nil {
		return nil, err
	}

	now := s.clock()
	verr := &ValidationError{}

	if patch.Title != nil {
		validateTitle(verr, *patch.Title)
		task.Title = *patch.Title
	}
	if patch.Description.Set {
		task.Description = patch.Description.Value
	}
	if patch.Status != nil {
		validateStatus(verr, *patch.Status)
		task.Status = *patch.Status
	}
	if patch.DueDate.Set {
		if patch.DueDate.Value != nil {
			validateDueDate(verr, *patch.DueDate.Value, now)
		}
		task.DueDate = normalizeTime(patch.DueDate.Value)
	}

	if err := verr.orNil(); err != nil {
		return nil, err
	}

	task.UpdatedAt = now
	if err := s.tasks.Update(ctx, task); err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update task: %w", err)
	}
	return task, nil
}

// Delete removes the task together with its comments.
func (s *TaskService) Delete(ctx context.Context, ownerID, taskID uuid.UUID) error {
	if _, err := s.owned(ctx, ownerID, taskID); err != nil {
		return err
	}
	if err := s.tasks.Delete(ctx, taskID); err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("delete task: %w", err)
	}
	return nil
}

// owned loads the task and applies the ownership gate. Existence is checked first.
func (s *TaskService) owned(ctx context.Context, ownerID, taskID uuid.UUID) (*model.Task, error) {
	task, err := s.tasks.GetByID(ctx, taskID)
	if errors.Is(err, repository.ErrTaskNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}
	if task.UserID != ownerID {
		return nil, ErrForbidden
	}
	return task, nil
}

func (s *TaskService) clock() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}

func validateTitle(verr *ValidationError, title string) {
	switch {
	case strings.TrimSpace(title) == "":
		verr.Add("title", msgBlank)
	case utf8.RuneCountInString(title) > maxTitleLength:
		verr.Add("title", fmt.Sprintf("Ensure this field has no more than %d characters.", maxTitleLength))
	}
}

func validateStatus(verr *ValidationError, status string) {
	if !model.IsValidStatus(status) {
		verr.Add("status", fmt.Sprintf("%q is not a valid choice.", status))
	}
}

func validateDueDate(verr *ValidationError, due, now time.Time) {
	if !due.After(now) {
		verr.Add("due_date", msgElapsedDueDate)
	}
}

// normalizeTime stores times in UTC at the microsecond precision postgres keeps.
func normalizeTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := t.UTC().Truncate(time.Microsecond)
	return &v
}
