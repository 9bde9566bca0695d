package repository

import "fmt"

// NotFoundError is returned when no record has the requested id.
type NotFoundError struct {
	ID int
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("Todo with id %d not found", e.ID)
}

// ValidationError is returned for malformed or missing required input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}
