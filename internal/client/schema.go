package client

import (
	"errors"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// TodoSchema describes one record as the server serializes it.
const TodoSchema = `{
  "type": "object",
  "required": ["id", "title", "isCompleted", "createdDate", "description"],
  "properties": {
    "id": {"type": "integer", "minimum": 1},
    "title": {"type": "string", "minLength": 1},
    "isCompleted": {"type": "boolean"},
    "createdDate": {"type": "string", "format": "date-time"},
    "description": {"type": ["string", "null"]}
  }
}`

var (
	todoSchemaLoader     = gojsonschema.NewStringLoader(TodoSchema)
	todoListSchemaLoader = gojsonschema.NewStringLoader(`{"type": "array", "items": ` + TodoSchema + `}`)
)

// ValidateTodoJSON checks a single record body against TodoSchema.
func ValidateTodoJSON(body []byte) error {
	return validate(todoSchemaLoader, body)
}

// ValidateTodoListJSON checks a list body against an array of TodoSchema.
func ValidateTodoListJSON(body []byte) error {
	return validate(todoListSchemaLoader, body)
}

func validate(schema gojsonschema.JSONLoader, body []byte) error {
	result, err := gojsonschema.Validate(schema, gojsonschema.NewBytesLoader(body))
	if err != nil {
		return fmt.Errorf("schema validation: %w", err)
	}
	if result.Valid() {
		return nil
	}
	msgs := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		msgs = append(msgs, e.String())
	}
	return errors.New("schema mismatch: " + strings.Join(msgs, "; "))
}
