package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"todo-http-demo/internal/clock"
	"todo-http-demo/internal/controller"
	"todo-http-demo/internal/models"
	"todo-http-demo/internal/repository"
	"todo-http-demo/internal/routes"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTodoServer(t *testing.T) *httptest.Server {
	t.Helper()
	store := repository.NewSeededTodoStore(clock.Real{})
	srv := httptest.NewServer(routes.Router(controller.NewTodoController(store, nil, nil), nil))
	t.Cleanup(srv.Close)
	return srv
}

func TestNew_Defaults(t *testing.T) {
	c := New()
	assert.Equal(t, DefaultBaseURL, c.BaseURL())
	assert.Equal(t, 100*time.Second, c.Timeout())
	assert.Equal(t, int64(2147483647), c.MaxResponseBufferSize())
	assert.Empty(t, c.DefaultHeaders())
	assert.NoError(t, c.Err())
}

func TestWithBaseURL_Invalid(t *testing.T) {
	c := New(WithBaseURL("not a url"))
	require.Error(t, c.Err())
	_, err := c.Do(context.Background(), http.MethodGet, "api/todo", nil)
	assert.ErrorContains(t, err, "invalid base URL")
}

func TestDo_DefaultHeadersSentWithEveryRequest(t *testing.T) {
	var seen []http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.Header.Clone())
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := New(
		WithBaseURL(srv.URL),
		WithUserAgent("HttpClient-Demo/1.0"),
		WithDefaultHeader("X-Custom-Header", "CustomValue"),
		WithAccept("application/json"),
	)
	for i := 0; i < 2; i++ {
		_, err := c.Do(context.Background(), http.MethodGet, "api/todo", nil)
		require.NoError(t, err)
	}

	require.Len(t, seen, 2)
	for _, h := range seen {
		assert.Equal(t, "HttpClient-Demo/1.0", h.Get("User-Agent"))
		assert.Equal(t, "CustomValue", h.Get("X-Custom-Header"))
		assert.Equal(t, "application/json", h.Get("Accept"))
	}
}

func TestDo_ResolvesAgainstBasePath(t *testing.T) {
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.RequestURI()
	}))
	defer srv.Close()

	c := New(WithBaseURL(srv.URL + "/prefix"))
	_, err := c.Do(context.Background(), http.MethodGet, "/api/todo?delay=5", nil)
	require.NoError(t, err)
	assert.Equal(t, "/prefix/api/todo?delay=5", path)
}

func TestDo_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(time.Second):
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()

	c := New(WithBaseURL(srv.URL), WithTimeout(50*time.Millisecond))
	_, err := c.Do(context.Background(), http.MethodGet, "slow", nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded), err.Error())
}

func TestDo_MaxResponseBufferSize(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(strings.Repeat("x", 64)))
	}))
	defer srv.Close()

	_, err := New(WithBaseURL(srv.URL), WithMaxResponseBufferSize(16)).Do(context.Background(), http.MethodGet, "", nil)
	assert.ErrorIs(t, err, ErrResponseTooLarge)

	resp, err := New(WithBaseURL(srv.URL), WithMaxResponseBufferSize(64)).Do(context.Background(), http.MethodGet, "", nil)
	require.NoError(t, err)
	assert.Len(t, resp.Body, 64)
}

func TestDo_RateLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	c := New(WithBaseURL(srv.URL), WithRateLimit(20))
	start := time.Now()
	for i := 0; i < 3; i++ {
		_, err := c.Do(context.Background(), http.MethodGet, "", nil)
		require.NoError(t, err)
	}
	// burst of 1 at 20/s: the 2nd and 3rd requests wait ~50ms each
	assert.GreaterOrEqual(t, time.Since(start), 90*time.Millisecond)
}

type recordingTransport struct {
	requests []*http.Request
	next     http.RoundTripper
}

func (rt *recordingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	rt.requests = append(rt.requests, req)
	return rt.next.RoundTrip(req)
}

func TestWithHTTPClient_UsesInjectedTransport(t *testing.T) {
	srv := newTodoServer(t)
	rt := &recordingTransport{next: http.DefaultTransport}

	c := New(
		WithBaseURL(srv.URL),
		WithHTTPClient(&http.Client{Transport: rt}),
		WithUserAgent("HttpClient-Demo/1.0"),
	)
	todo, _, err := c.Get(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, "Test REST API", todo.Title)

	require.Len(t, rt.requests, 1)
	req := rt.requests[0]
	assert.Equal(t, http.MethodGet, req.Method)
	assert.Equal(t, "/api/todo/2", req.URL.Path)
	assert.Equal(t, "HttpClient-Demo/1.0", req.Header.Get("User-Agent"))
	_, hasDeadline := req.Context().Deadline()
	assert.True(t, hasDeadline, "client timeout still applies with an injected http.Client")
}

func TestTypedCalls_AgainstServer(t *testing.T) {
	srv := newTodoServer(t)
	c := New(WithBaseURL(srv.URL), WithTimeout(5*time.Second))
	ctx := context.Background()

	todos, resp, err := c.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, todos, 2)
	assert.NoError(t, ValidateTodoListJSON(resp.Body))

	created, resp, err := c.Create(ctx, models.CreateTodoRequest{Title: "X", Description: models.StringPtr("d")})
	require.NoError(t, err)
	assert.Equal(t, 3, created.ID)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "/api/todo/3", resp.HeaderValue("location"))
	assert.NoError(t, ValidateTodoJSON(resp.Body))

	got, _, err := c.Get(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, "X", got.Title)

	patched, _, err := c.Patch(ctx, 3, models.PatchTodoRequest{IsCompleted: models.Some(true), Description: models.Null[string]()})
	require.NoError(t, err)
	assert.True(t, patched.IsCompleted)
	assert.Nil(t, patched.Description)

	replaced, _, err := c.Replace(ctx, 3, models.Todo{Title: "Y"})
	require.NoError(t, err)
	assert.Equal(t, 3, replaced.ID)
	assert.True(t, replaced.CreatedDate.Equal(created.CreatedDate))
	assert.False(t, replaced.IsCompleted)

	summary, _, err := c.Head(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, summary.TotalCount)
	assert.False(t, summary.LastModified.IsZero())

	methods, _, err := c.Options(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"}, methods)

	resp, err = c.Delete(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	_, _, err = c.Get(ctx, 3)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "not_found", apiErr.Code)
	assert.Equal(t, "Todo with id 3 not found", apiErr.Message)
}

func TestCreate_ValidationError(t *testing.T) {
	srv := newTodoServer(t)
	c := New(WithBaseURL(srv.URL))

	_, resp, err := c.Create(context.Background(), models.CreateTodoRequest{Title: "  "})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "todo api: status 400: Title is required", apiErr.Error())
}

func TestList_DelayTimesOut(t *testing.T) {
	srv := newTodoServer(t)
	c := New(WithBaseURL(srv.URL), WithTimeout(100*time.Millisecond))

	_, _, err := c.List(context.Background(), 2*time.Second)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
