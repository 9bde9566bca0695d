package repository

import (
	"context"
	"strings"
	"sync"
	"time"

	"todo-http-demo/internal/clock"
	"todo-http-demo/internal/models"
	"todo-http-demo/pkg/logger"
)

// TodoStore is the in-memory Todo collection. A single mutex guards the
// records, the id sequence and the last-modified time.
type TodoStore struct {
	mu           sync.Mutex
	todos        []models.Todo
	nextID       int
	lastModified time.Time
	clock        clock.Clock
}

// NewTodoStore returns an empty store whose ids start at 1.
func NewTodoStore(c clock.Clock) *TodoStore {
	if c == nil {
		c = clock.Real{}
	}
	return &TodoStore{
		nextID:       1,
		lastModified: c.Now(),
		clock:        c,
	}
}

// NewSeededTodoStore returns a store holding the two startup records (ids 1 and 2).
func NewSeededTodoStore(c clock.Clock) *TodoStore {
	s := NewTodoStore(c)
	now := s.clock.Now()
	s.todos = []models.Todo{
		{ID: 1, Title: "Learn HttpClient", CreatedDate: now, Description: models.StringPtr("Study HTTP methods")},
		{ID: 2, Title: "Test REST API", CreatedDate: now, Description: models.StringPtr("Test all verbs")},
	}
	s.nextID = 3
	return s
}

// GetAll returns a snapshot of all todos in insertion order.
func (s *TodoStore) GetAll(ctx context.Context) []models.Todo {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Todo, len(s.todos))
	for i, todo := range s.todos {
		out[i] = cloneTodo(todo)
	}
	return out
}

// GetByID returns the todo with the given id.
func (s *TodoStore) GetByID(ctx context.Context, id int) (models.Todo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return models.Todo{}, &NotFoundError{ID: id}
	}
	return cloneTodo(s.todos[i]), nil
}

// Create validates and appends a new todo, assigning the next id.
func (s *TodoStore) Create(ctx context.Context, req models.CreateTodoRequest) (models.Todo, error) {
	if err := validateTitle(req.Title); err != nil {
		return models.Todo{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.clock.Now()
	todo := models.Todo{
		ID:          s.nextID,
		Title:       req.Title,
		Description: cloneString(req.Description),
		IsCompleted: false,
		CreatedDate: now,
	}
	s.nextID++
	s.todos = append(s.todos, todo)
	s.lastModified = now
	logger.Debug(ctx, "Repository Create", "id", todo.ID)
	return cloneTodo(todo), nil
}

// Replace overwrites every field of the todo except its id and creation date.
func (s *TodoStore) Replace(ctx context.Context, id int, replacement models.Todo) (models.Todo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return models.Todo{}, &NotFoundError{ID: id}
	}
	if err := validateTitle(replacement.Title); err != nil {
		return models.Todo{}, err
	}
	replacement.ID = id
	replacement.CreatedDate = s.todos[i].CreatedDate
	replacement.Description = cloneString(replacement.Description)
	s.todos[i] = replacement
	s.lastModified = s.clock.Now()
	return cloneTodo(replacement), nil
}

// Update applies only the fields present in the patch.
func (s *TodoStore) Update(ctx context.Context, id int, patch models.PatchTodoRequest) (models.Todo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return models.Todo{}, &NotFoundError{ID: id}
	}
	if patch.Title.HasValue() {
		if err := validateTitle(patch.Title.Value); err != nil {
			return models.Todo{}, err
		}
	}
	if patch.IsEmpty() {
		return cloneTodo(s.todos[i]), nil
	}

	todo := s.todos[i]
	if patch.Title.HasValue() {
		todo.Title = patch.Title.Value
	}
	if patch.IsCompleted.HasValue() {
		todo.IsCompleted = patch.IsCompleted.Value
	}
	if patch.Description.Set {
		if patch.Description.Null {
			todo.Description = nil
		} else {
			todo.Description = models.StringPtr(patch.Description.Value)
		}
	}
	s.todos[i] = todo
	s.lastModified = s.clock.Now()
	return cloneTodo(todo), nil
}

// Delete removes the todo. Its id is never handed out again.
func (s *TodoStore) Delete(ctx context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return &NotFoundError{ID: id}
	}
	s.todos = append(s.todos[:i], s.todos[i+1:]...)
	s.lastModified = s.clock.Now()
	logger.Debug(ctx, "Repository Delete", "id", id)
	return nil
}

// Count returns the number of live todos.
func (s *TodoStore) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.todos)
}

// Stats returns the record count and the time of the last successful mutation.
func (s *TodoStore) Stats() (int, time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.todos), s.lastModified
}

func (s *TodoStore) indexOf(id int) int {
	for i := range s.todos {
		if s.todos[i].ID == id {
			return i
		}
	}
	return -1
}

func validateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return &ValidationError{Field: "title", Message: "Title is required"}
	}
	return nil
}

// cloneTodo copies t so callers never share its description with the store.
func cloneTodo(t models.Todo) models.Todo {
	t.Description = cloneString(t.Description)
	return t
}

func cloneString(p *string) *string {
	if p == nil {
		return nil
	}
	return models.StringPtr(*p)
}
