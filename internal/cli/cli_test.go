package cli

import (
	"bytes"
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"todo-http-demo/internal/client"
	"todo-http-demo/internal/clock"
	"todo-http-demo/internal/controller"
	"todo-http-demo/internal/repository"
	"todo-http-demo/internal/routes"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	store := repository.NewSeededTodoStore(clock.Real{})
	srv := httptest.NewServer(routes.Router(controller.NewTodoController(store, nil, nil), nil))
	t.Cleanup(srv.Close)
	return srv
}

func run(t *testing.T, srv *httptest.Server, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	root := NewRootCmd(&buf)
	full := append([]string{}, args...)
	if srv != nil {
		full = append(full, "--base-url", srv.URL)
	}
	full = append(full, "--no-color")
	root.SetArgs(full)
	err := root.Execute()
	return buf.String(), err
}

func TestList(t *testing.T) {
	srv := newServer(t)
	out, err := run(t, srv, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "-> 200 OK")
	assert.Contains(t, out, "#1 Learn HttpClient")
	assert.Contains(t, out, "#2 Test REST API")
}

func TestCreateShowPatchDelete(t *testing.T) {
	srv := newServer(t)

	out, err := run(t, srv, "create", "Write docs", "-d", "for the client")
	require.NoError(t, err)
	assert.Contains(t, out, "-> 201 Created")
	assert.Contains(t, out, "Location: /api/todo/3")

	out, err = run(t, srv, "patch", "3", "--completed", "--clear-description")
	require.NoError(t, err)
	assert.Contains(t, out, "[x] #3 Write docs")
	assert.NotContains(t, out, "for the client")

	out, err = run(t, srv, "replace", "3", "--title", "Rewritten")
	require.NoError(t, err)
	assert.Contains(t, out, "[ ] #3 Rewritten")

	out, err = run(t, srv, "delete", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "deleted todo 3")

	out, err = run(t, srv, "show", "3")
	require.Error(t, err)
	assert.Equal(t, ExitRequestFailure, ExitCode(err))
	assert.Contains(t, out, "404 Not Found")
	assert.Contains(t, err.Error(), "Todo with id 3 not found")
}

func TestPatch_FlagsConflict(t *testing.T) {
	srv := newServer(t)
	_, err := run(t, srv, "patch", "1", "-d", "x", "--clear-description")
	require.Error(t, err)
	assert.Equal(t, ExitUsageError, ExitCode(err))
}

func TestShow_InvalidID(t *testing.T) {
	srv := newServer(t)
	_, err := run(t, srv, "show", "abc")
	require.Error(t, err)
	assert.Equal(t, ExitUsageError, ExitCode(err))
}

func TestHeadAndOptions(t *testing.T) {
	srv := newServer(t)

	out, err := run(t, srv, "head")
	require.NoError(t, err)
	assert.Contains(t, out, "Total: 2")
	assert.Contains(t, out, "Last modified:")

	out, err = run(t, srv, "options")
	require.NoError(t, err)
	assert.Contains(t, out, "Allow: GET, POST, PUT, PATCH, DELETE, HEAD, OPTIONS")
}

func TestConfig_FileAndFlags(t *testing.T) {
	path := filepath.Join(t.TempDir(), "client.yaml")
	require.NoError(t, os.WriteFile(path, []byte("timeout: 30s\nheaders:\n  X-Api-Key: abc\n"), 0o644))

	out, err := run(t, nil, "config", "--config", path, "-H", "X-Client-ID: cli-test", "--max-buffer", "1024")
	require.NoError(t, err)
	assert.Contains(t, out, "BaseAddress: "+client.DefaultBaseURL+"/")
	assert.Contains(t, out, "Timeout: 30s")
	assert.Contains(t, out, "MaxResponseContentBufferSize: 1024 bytes")
	assert.Contains(t, out, "X-Api-Key: abc")
	assert.Contains(t, out, "X-Client-Id: cli-test")
}

func TestConfig_Errors(t *testing.T) {
	_, err := run(t, nil, "config", "-H", "no-colon")
	assert.Equal(t, ExitUsageError, ExitCode(err))

	_, err = run(t, nil, "config", "--base-url", "::bad")
	assert.Equal(t, ExitConfigError, ExitCode(err))

	_, err = run(t, nil, "config", "--config", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Equal(t, ExitConfigError, ExitCode(err))
}

func TestDemoGet(t *testing.T) {
	srv := newServer(t)
	out, err := run(t, srv, "demo", "get", "--delay", "10ms")
	require.NoError(t, err)
	assert.Contains(t, out, "Received: 2 todos")
	assert.Contains(t, out, "api/todo?delay=10")
	assert.Contains(t, out, "Todo: Learn HttpClient")
	assert.Contains(t, out, "Content-Type: application/json")
}

func TestDemoAll(t *testing.T) {
	srv := newServer(t)
	out, err := run(t, srv, "demo", "--pause", "0s")
	require.NoError(t, err)
	assert.Contains(t, out, "Default Timeout: 100 seconds")
	assert.Contains(t, out, "Custom Timeout: 30 seconds")
	assert.Contains(t, out, "User-Agent: HttpClient-Demo/1.0")
	assert.Contains(t, out, "All examples completed!")
}

func TestDemoCRUD(t *testing.T) {
	srv := newServer(t)
	out, err := run(t, srv, "demo", "crud")
	require.NoError(t, err)
	assert.Contains(t, out, "X-Total-Count: 3")
	assert.Contains(t, out, "todo 3 is gone: Todo with id 3 not found")
}

func TestDemoConcurrent(t *testing.T) {
	srv := newServer(t)
	out, err := run(t, srv, "demo", "concurrent", "--delay", "400ms")
	require.NoError(t, err)
	assert.Contains(t, out, "write was not blocked by the pending read")

	c := client.New(client.WithBaseURL(srv.URL))
	todos, _, err := c.List(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, todos, 2, "the scratch todo is cleaned up")
}

func TestBench(t *testing.T) {
	srv := newServer(t)
	out, err := run(t, srv, "bench", "-n", "20", "-c", "4")
	require.NoError(t, err)
	assert.Contains(t, out, "Requests: 20")
	assert.Contains(t, out, "Status 200 x20")

	_, err = run(t, srv, "bench", "-X", "post")
	assert.Equal(t, ExitUsageError, ExitCode(err))
}

func TestWatch_RequiresSource(t *testing.T) {
	_, err := run(t, nil, "watch")
	assert.Equal(t, ExitUsageError, ExitCode(err))

	_, err = run(t, nil, "watch", "--redis", "ftp://nowhere")
	assert.Equal(t, ExitUsageError, ExitCode(err))
}

func TestNetworkError(t *testing.T) {
	srv := newServer(t)
	url := srv.URL
	srv.Close()

	var buf bytes.Buffer
	root := NewRootCmd(&buf)
	root.SetArgs([]string{"list", "--base-url", url})
	err := root.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitNetworkError, ExitCode(err))
}

func TestVersionAndUsage(t *testing.T) {
	out, err := run(t, nil, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "todo-client version dev\n"))

	_, err = run(t, nil, "frobnicate")
	assert.Equal(t, ExitUsageError, ExitCode(err))
}
