package models

import "time"

// Todo represents a todo item.
type Todo struct {
	ID          int       `json:"id"`
	Title       string    `json:"title"`
	IsCompleted bool      `json:"isCompleted"`
	CreatedDate time.Time `json:"createdDate"`
	Description *string   `json:"description"`
}

// CreateTodoRequest is the POST body.
type CreateTodoRequest struct {
	Title       string  `json:"title"`
	Description *string `json:"description,omitempty"`
}

// PatchTodoRequest is the PATCH body. Each field records whether it was sent.
type PatchTodoRequest struct {
	Title       Optional[string] `json:"title,omitzero"`
	IsCompleted Optional[bool]   `json:"isCompleted,omitzero"`
	Description Optional[string] `json:"description,omitzero"`
}

// IsEmpty reports whether the patch carries no fields at all.
func (p PatchTodoRequest) IsEmpty() bool {
	return !p.Title.Set && !p.IsCompleted.Set && !p.Description.Set
}

// Event types published after successful mutations.
const (
	EventCreated  = "todo.created"
	EventReplaced = "todo.replaced"
	EventUpdated  = "todo.updated"
	EventDeleted  = "todo.deleted"
)

// TodoEvent is the change notification payload for Kafka and Redis.
type TodoEvent struct {
	Type       string    `json:"type"`
	ID         int       `json:"id"`
	Todo       *Todo     `json:"todo,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
	RequestID  string    `json:"requestId,omitempty"`
}

// StringPtr returns a pointer to s.
func StringPtr(s string) *string {
	return &s
}
