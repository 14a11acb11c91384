package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"tasktracker/internal/model"
	"tasktracker/internal/repository"

	"github.com/google/uuid"
)

type fakeUsers struct {
	mu    sync.Mutex
	users map[string]model.User
	err   error
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{users: map[string]model.User{}}
}

func (f *fakeUsers) Create(_ context.Context, user *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	if _, ok := f.users[user.Username]; ok {
		return repository.ErrUsernameTaken
	}
	f.users[user.Username] = *user
	return nil
}

func (f *fakeUsers) FindByUsername(_ context.Context, username string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	u, ok := f.users[username]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return &u, nil
}

type fakeTasks struct {
	mu       sync.Mutex
	tasks    map[uuid.UUID]model.Task
	comments map[uuid.UUID][]model.Comment
}

func newFakeTasks() *fakeTasks {
	return &fakeTasks{tasks: map[uuid.UUID]model.Task{}, comments: map[uuid.UUID][]model.Comment{}}
}

func (f *fakeTasks) Create(_ context.Context, task *model.Task) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tasks[task.ID] = *task
	return nil
}

func (f *fakeTasks) GetByID(_ context.Context, id uuid.UUID) (*model.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tasks[id]
	if !ok {
		return nil, repository.ErrTaskNotFound
	}
	return &t, nil
}

func (f *fakeTasks) Exists(_ context.Context, id uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.tasks[id]
	return ok, nil
}

func (f *fakeTasks) ListByOwner(_ context.Context, ownerID uuid.UUID, filter repository.TaskFilter) ([]model.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []model.Task{}
	for _, t := range f.tasks {
		if t.UserID != ownerID {
			continue
		}
		if filter.Status != nil && t.Status != *filter.Status {
			continue
		}
		if filter.DueDate != nil && (t.DueDate == nil || !t.DueDate.Equal(*filter.DueDate)) {
			continue
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeTasks) Update(_ context.Context, task *model.Task) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.tasks[task.ID]; !ok {
		return repository.ErrTaskNotFound
	}
	f.tasks[task.ID] = *task
	return nil
}

func (f *fakeTasks) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.tasks[id]; !ok {
		return repository.ErrTaskNotFound
	}
	delete(f.tasks, id)
	delete(f.comments, id)
	return nil
}

// fakeComments shares storage with fakeTasks so deletes cascade.
type fakeComments struct {
	tasks *fakeTasks
}

func (f *fakeComments) Create(_ context.Context, c *model.Comment) error {
	f.tasks.mu.Lock()
	defer f.tasks.mu.Unlock()
	f.tasks.comments[c.TaskID] = append(f.tasks.comments[c.TaskID], *c)
	return nil
}

func (f *fakeComments) ListByTask(_ context.Context, taskID uuid.UUID) ([]model.Comment, error) {
	f.tasks.mu.Lock()
	defer f.tasks.mu.Unlock()
	out := append([]model.Comment{}, f.tasks.comments[taskID]...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

type stepClock struct {
	t    time.Time
	step time.Duration
}

func (c *stepClock) Now() time.Time {
	now := c.t
	c.t = c.t.Add(c.step)
	return now
}
