package output

import (
	"bytes"
	"errors"
	"net/http"
	"testing"
	"time"

	"todo-http-demo/internal/bench"
	"todo-http-demo/internal/client"
	"todo-http-demo/internal/models"

	"github.com/stretchr/testify/assert"
)

func newTestPrinter() (*Printer, *bytes.Buffer) {
	var buf bytes.Buffer
	return NewPrinter(WithWriter(&buf), WithNoColor(true)), &buf
}

func TestPrinter_Todo(t *testing.T) {
	p, buf := newTestPrinter()
	created := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	p.Todos([]models.Todo{
		{ID: 1, Title: "Learn HttpClient", Description: models.StringPtr("Study HTTP methods"), CreatedDate: created},
		{ID: 2, Title: "Done", IsCompleted: true, CreatedDate: created},
	})

	out := buf.String()
	assert.Contains(t, out, "[ ] #1 Learn HttpClient")
	assert.Contains(t, out, "Study HTTP methods")
	assert.Contains(t, out, "[x] #2 Done")
	assert.Contains(t, out, "created 2024-05-01T10:00:00Z")
	assert.NotContains(t, out, "\x1b[")
}

func TestPrinter_EmptyList(t *testing.T) {
	p, buf := newTestPrinter()
	p.Todos(nil)
	assert.Equal(t, "(no todos)\n", buf.String())
}

func TestPrinter_StatusAndHeaders(t *testing.T) {
	p, buf := newTestPrinter()
	resp := &client.Response{
		Method:     http.MethodGet,
		URL:        "http://localhost:7148/api/todo/9",
		StatusCode: http.StatusNotFound,
		Status:     "404 Not Found",
		Duration:   12 * time.Millisecond,
	}
	p.Status(resp)
	p.Headers(map[string][]string{"X-Total-Count": {"2"}, "Content-Type": {"application/json"}})

	assert.Equal(t, "GET http://localhost:7148/api/todo/9 -> 404 Not Found (12ms)\n"+
		"  Content-Type: application/json\n"+
		"  X-Total-Count: 2\n", buf.String())
}

func TestPrinter_Event(t *testing.T) {
	p, buf := newTestPrinter()
	at := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	p.Event(models.TodoEvent{Type: models.EventDeleted, ID: 4, OccurredAt: at, RequestID: "abc"})
	assert.Equal(t, "2024-05-01T10:00:00Z todo.deleted id=4 request_id=abc\n", buf.String())
}

func TestPrinter_Report(t *testing.T) {
	p, buf := newTestPrinter()
	p.Report(bench.Report{
		Requests: 10,
		Elapsed:  time.Second,
		Statuses: map[int]int64{200: 9, 500: 1},
		FirstErr: errors.New("boom"),
	})
	out := buf.String()
	assert.Contains(t, out, "Requests: 10")
	assert.Contains(t, out, "10.0 req/s")
	assert.Contains(t, out, "Status 200 x9")
	assert.Contains(t, out, "Status 500 x1")
	assert.Contains(t, out, "first error: boom")
}
