package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"todo-http-demo/internal/models"
)

// TodoPath is the resource path relative to the base URL.
const TodoPath = "api/todo"

// Summary is what HEAD reports about the collection.
type Summary struct {
	TotalCount   int
	LastModified time.Time
}

// List fetches every todo. A positive delay asks the server to hold the response.
func (c *Client) List(ctx context.Context, delay time.Duration) ([]models.Todo, *Response, error) {
	path := TodoPath
	if ms := delay.Milliseconds(); ms > 0 {
		path += "?delay=" + strconv.FormatInt(ms, 10)
	}
	var todos []models.Todo
	resp, err := c.doJSON(ctx, http.MethodGet, path, nil, &todos)
	return todos, resp, err
}

// Get fetches one todo.
func (c *Client) Get(ctx context.Context, id int) (models.Todo, *Response, error) {
	var todo models.Todo
	resp, err := c.doJSON(ctx, http.MethodGet, todoPath(id), nil, &todo)
	return todo, resp, err
}

// Create posts a new todo.
func (c *Client) Create(ctx context.Context, req models.CreateTodoRequest) (models.Todo, *Response, error) {
	var todo models.Todo
	resp, err := c.doJSON(ctx, http.MethodPost, TodoPath, req, &todo)
	return todo, resp, err
}

// Replace sends a full record with PUT.
func (c *Client) Replace(ctx context.Context, id int, todo models.Todo) (models.Todo, *Response, error) {
	var out models.Todo
	resp, err := c.doJSON(ctx, http.MethodPut, todoPath(id), todo, &out)
	return out, resp, err
}

// Patch sends only the fields set in patch.
func (c *Client) Patch(ctx context.Context, id int, patch models.PatchTodoRequest) (models.Todo, *Response, error) {
	var out models.Todo
	resp, err := c.doJSON(ctx, http.MethodPatch, todoPath(id), patch, &out)
	return out, resp, err
}

// Delete removes a todo.
func (c *Client) Delete(ctx context.Context, id int) (*Response, error) {
	return c.doJSON(ctx, http.MethodDelete, todoPath(id), nil, nil)
}

// Head reads the collection summary headers.
func (c *Client) Head(ctx context.Context) (Summary, *Response, error) {
	resp, err := c.doJSON(ctx, http.MethodHead, TodoPath, nil, nil)
	if err != nil {
		return Summary{}, resp, err
	}
	var s Summary
	if v := resp.HeaderValue("X-Total-Count"); v != "" {
		if s.TotalCount, err = strconv.Atoi(v); err != nil {
			return Summary{}, resp, fmt.Errorf("parse X-Total-Count: %w", err)
		}
	}
	if v := resp.HeaderValue("X-Last-Modified"); v != "" {
		if s.LastModified, err = http.ParseTime(v); err != nil {
			return Summary{}, resp, fmt.Errorf("parse X-Last-Modified: %w", err)
		}
	}
	return s, resp, nil
}

// Options returns the methods advertised in the Allow header.
func (c *Client) Options(ctx context.Context) ([]string, *Response, error) {
	resp, err := c.doJSON(ctx, http.MethodOptions, TodoPath, nil, nil)
	if err != nil {
		return nil, resp, err
	}
	var methods []string
	for _, m := range strings.Split(resp.HeaderValue("Allow"), ",") {
		if m = strings.TrimSpace(m); m != "" {
			methods = append(methods, m)
		}
	}
	return methods, resp, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, body, out any) (*Response, error) {
	resp, err := c.Do(ctx, method, path, body)
	if err != nil {
		return nil, err
	}
	if err := resp.asError(); err != nil {
		return resp, err
	}
	if out != nil && len(resp.Body) > 0 {
		if err := json.Unmarshal(resp.Body, out); err != nil {
			return resp, fmt.Errorf("decode %s %s: %w", method, path, err)
		}
	}
	return resp, nil
}

func todoPath(id int) string {
	return TodoPath + "/" + strconv.Itoa(id)
}
