package controller

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"todo-http-demo/internal/clock"
	"todo-http-demo/internal/events"
	"todo-http-demo/internal/middleware"
	"todo-http-demo/internal/models"
	"todo-http-demo/internal/repository"
	"todo-http-demo/pkg/logger"

	"github.com/gin-gonic/gin"
)

const (
	// BasePath is where the Todo resource is mounted.
	BasePath = "/api/todo"

	// AllowedMethods is advertised by OPTIONS.
	AllowedMethods = "GET, POST, PUT, PATCH, DELETE, HEAD, OPTIONS"

	HeaderTotalCount   = "X-Total-Count"
	HeaderLastModified = "X-Last-Modified"

	maxListDelay   = time.Hour
	publishTimeout = 2 * time.Second
)

// Store is the collection the controller serves.
type Store interface {
	GetAll(ctx context.Context) []models.Todo
	GetByID(ctx context.Context, id int) (models.Todo, error)
	Create(ctx context.Context, req models.CreateTodoRequest) (models.Todo, error)
	Replace(ctx context.Context, id int, todo models.Todo) (models.Todo, error)
	Update(ctx context.Context, id int, patch models.PatchTodoRequest) (models.Todo, error)
	Delete(ctx context.Context, id int) error
	Stats() (int, time.Time)
}

// TodoController serves the Todo resource over HTTP.
type TodoController struct {
	store  Store
	events *events.Fanout
	clock  clock.Clock
}

// NewTodoController wires the handlers to a store. fanout may be nil.
func NewTodoController(store Store, fanout *events.Fanout, c clock.Clock) *TodoController {
	if fanout == nil {
		fanout = events.NewFanout(nil)
	}
	if c == nil {
		c = clock.Real{}
	}
	return &TodoController{store: store, events: fanout, clock: c}
}

// List returns every todo in insertion order. ?delay=<ms> holds the response
// back after the snapshot is taken; the store is not locked while waiting.
func (tc *TodoController) List(c *gin.Context) {
	ctx := c.Request.Context()
	delay, err := strconv.Atoi(c.DefaultQuery("delay", "0"))
	if err != nil {
		delay = 0
	}
	logger.Info(ctx, "GET all todos requested", "delay_ms", delay)

	todos := tc.store.GetAll(ctx)

	if delay > 0 {
		d := time.Duration(delay) * time.Millisecond
		if delay > int(maxListDelay/time.Millisecond) {
			d = maxListDelay
		}
		timer := time.NewTimer(d)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			logger.Debug(ctx, "GET all todos abandoned during delay", "error", ctx.Err())
			return
		}
	}
	c.JSON(http.StatusOK, todos)
}

// GetByID returns one todo or 404.
func (tc *TodoController) GetByID(c *gin.Context) {
	id, ok := tc.parseID(c)
	if !ok {
		return
	}
	logger.Info(c.Request.Context(), "GET todo requested", "id", id)
	todo, err := tc.store.GetByID(c.Request.Context(), id)
	if err != nil {
		tc.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, todo)
}

// Create validates the body, appends the todo and returns 201 with its location.
func (tc *TodoController) Create(c *gin.Context) {
	ctx := c.Request.Context()
	var body models.CreateTodoRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "Invalid request body", err)
		return
	}
	logger.Info(ctx, "POST new todo", "title", body.Title)
	todo, err := tc.store.Create(ctx, body)
	if err != nil {
		tc.fail(c, err)
		return
	}
	tc.publish(c, models.EventCreated, todo.ID, &todo)
	c.Header("Location", BasePath+"/"+strconv.Itoa(todo.ID))
	c.JSON(http.StatusCreated, todo)
}

// Replace overwrites a todo; id and createdDate from the body are ignored.
func (tc *TodoController) Replace(c *gin.Context) {
	id, ok := tc.parseID(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	var body models.Todo
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "Invalid request body", err)
		return
	}
	logger.Info(ctx, "PUT (replace) todo", "id", id)
	todo, err := tc.store.Replace(ctx, id, body)
	if err != nil {
		tc.fail(c, err)
		return
	}
	tc.publish(c, models.EventReplaced, id, &todo)
	c.JSON(http.StatusOK, todo)
}

// Update applies the fields present in the body.
func (tc *TodoController) Update(c *gin.Context) {
	id, ok := tc.parseID(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	var body models.PatchTodoRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "Invalid request body", err)
		return
	}
	logger.Info(ctx, "PATCH (update) todo", "id", id)
	todo, err := tc.store.Update(ctx, id, body)
	if err != nil {
		tc.fail(c, err)
		return
	}
	if !body.IsEmpty() {
		tc.publish(c, models.EventUpdated, id, &todo)
	}
	c.JSON(http.StatusOK, todo)
}

// Delete removes a todo and answers 204.
func (tc *TodoController) Delete(c *gin.Context) {
	id, ok := tc.parseID(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	logger.Info(ctx, "DELETE todo", "id", id)
	if err := tc.store.Delete(ctx, id); err != nil {
		tc.fail(c, err)
		return
	}
	tc.publish(c, models.EventDeleted, id, nil)
	c.Status(http.StatusNoContent)
}

// Head reports the record count and last modification time in headers only.
func (tc *TodoController) Head(c *gin.Context) {
	logger.Info(c.Request.Context(), "HEAD request for todos")
	count, modified := tc.store.Stats()
	c.Header(HeaderTotalCount, strconv.Itoa(count))
	c.Header(HeaderLastModified, modified.UTC().Format(http.TimeFormat))
	c.Status(http.StatusOK)
}

// Options advertises the supported methods.
func (tc *TodoController) Options(c *gin.Context) {
	logger.Info(c.Request.Context(), "OPTIONS request for todos")
	c.Header("Allow", AllowedMethods)
	c.Status(http.StatusOK)
}

// Health returns 200 if the process is alive.
func (tc *TodoController) Health(c *gin.Context) {
	c.String(http.StatusOK, "OK")
}

// Ready returns 200 if every configured event sink is reachable.
func (tc *TodoController) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	if err := tc.events.Ping(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "event sink unavailable", "details": err.Error()})
		return
	}
	c.String(http.StatusOK, "OK")
}

func (tc *TodoController) parseID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation_error", "message": "id must be an integer"})
		return 0, false
	}
	return id, true
}

func (tc *TodoController) publish(c *gin.Context, eventType string, id int, todo *models.Todo) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(c.Request.Context()), publishTimeout)
	defer cancel()
	tc.events.Publish(ctx, models.TodoEvent{
		Type:       eventType,
		ID:         id,
		Todo:       todo,
		OccurredAt: tc.clock.Now(),
		RequestID:  middleware.GetRequestID(c),
	})
}

func (tc *TodoController) fail(c *gin.Context, err error) {
	var nf *repository.NotFoundError
	var ve *repository.ValidationError
	switch {
	case errors.As(err, &nf):
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found", "message": nf.Error()})
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation_error", "message": ve.Message})
	default:
		logger.Error(c.Request.Context(), "Todo request failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error", "message": "Internal server error"})
	}
}

func badRequest(c *gin.Context, message string, err error) {
	logger.Debug(c.Request.Context(), message, "error", err)
	c.JSON(http.StatusBadRequest, gin.H{"error": "validation_error", "message": message})
}
