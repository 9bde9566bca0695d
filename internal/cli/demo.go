package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"
	"golang.org/x/sync/errgroup"

	"todo-http-demo/internal/client"
	"todo-http-demo/internal/models"
)

func (a *app) demoCmd() *cobra.Command {
	var pause time.Duration
	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Walk through the client features against a running server",
		Long: `Without a subcommand, demo runs the configuration and GET walkthroughs
in order. Make sure the server is running first.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p := a.printer
			p.Section("HttpClient Comprehensive Examples")
			p.Field("Server", a.client.BaseURL())
			a.demoConfig()
			if err := sleep(cmd.Context(), pause); err != nil {
				return err
			}
			if err := a.demoGet(cmd.Context(), 2*time.Second); err != nil {
				return err
			}
			if err := sleep(cmd.Context(), pause); err != nil {
				return err
			}
			p.Section("All examples completed!")
			return nil
		},
	}
	cmd.Flags().DurationVar(&pause, "pause", time.Second, "Pause between walkthrough sections")

	var getDelay time.Duration
	getCmd := &cobra.Command{
		Use:   "get",
		Short: "GET examples: list, query parameters, single record, response headers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.demoGet(cmd.Context(), getDelay)
		},
	}
	getCmd.Flags().DurationVar(&getDelay, "delay", 2*time.Second, "Delay requested in the query parameter example")

	var slow time.Duration
	concurrentCmd := &cobra.Command{
		Use:   "concurrent",
		Short: "Show that a slow list does not block a concurrent create",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.demoConcurrent(cmd.Context(), slow)
		},
	}
	concurrentCmd.Flags().DurationVar(&slow, "delay", 2*time.Second, "Delay of the slow list request")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "config",
			Short: "Configuration examples: base URL, timeout, buffer size, default headers",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				a.demoConfig()
				return nil
			},
		},
		getCmd,
		&cobra.Command{
			Use:   "crud",
			Short: "Exercise every verb on a scratch todo",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.demoCRUD(cmd.Context())
			},
		},
		concurrentCmd,
	)
	return cmd
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// demoConfig builds a client the way the walkthrough describes and prints
// its settings before and after customization.
func (a *app) demoConfig() {
	p := a.printer
	p.Section("HttpClient Configuration Options")

	c := client.New(client.WithBaseURL(a.client.BaseURL()))
	p.Field("BaseAddress", c.BaseURL())
	p.Field("Default Timeout", fmt.Sprintf("%.0f seconds", c.Timeout().Seconds()))

	c = client.New(
		client.WithBaseURL(a.client.BaseURL()),
		client.WithTimeout(30*time.Second),
		client.WithMaxResponseBufferSize(1024*1024),
		client.WithUserAgent("HttpClient-Demo/1.0"),
		client.WithDefaultHeader("X-Custom-Header", "CustomValue"),
		client.WithAccept("application/json"),
	)
	p.Field("Custom Timeout", fmt.Sprintf("%.0f seconds", c.Timeout().Seconds()))
	p.Field("MaxResponseContentBufferSize", fmt.Sprintf("%d bytes (default %d)", c.MaxResponseBufferSize(), client.DefaultMaxResponseBufferSize))
	p.Field("Default Request Headers", "")
	p.Headers(c.DefaultHeaders())
}

func (a *app) demoGet(ctx context.Context, delay time.Duration) error {
	p := a.printer
	p.Section("GET Request Examples")

	p.Field("1", "Simple GET all todos")
	resp, err := a.client.Do(ctx, http.MethodGet, client.TodoPath, nil)
	if err != nil {
		return err
	}
	p.Status(resp)
	p.Field("Received", fmt.Sprintf("%d todos", gjson.GetBytes(resp.Body, "#").Int()))

	p.Field("2", "GET with query parameter (delay)")
	resp, err = a.client.Do(ctx, http.MethodGet, fmt.Sprintf("%s?delay=%d", client.TodoPath, delay.Milliseconds()), nil)
	if err != nil {
		return err
	}
	p.Status(resp)

	p.Field("3", "GET specific todo by ID")
	resp, err = a.client.Do(ctx, http.MethodGet, client.TodoPath+"/1", nil)
	if err != nil {
		return err
	}
	p.Status(resp)
	if resp.IsSuccess() {
		p.Field("Todo", gjson.GetBytes(resp.Body, "title").String())
	} else {
		p.Field("Error", gjson.GetBytes(resp.Body, "message").String())
	}

	p.Field("4", "Response Headers")
	p.Headers(resp.Header)
	return nil
}

func (a *app) demoCRUD(ctx context.Context) error {
	p := a.printer
	p.Section("CRUD Walkthrough")

	created, resp, err := a.client.Create(ctx, models.CreateTodoRequest{
		Title:       "Demo todo",
		Description: models.StringPtr("Created by the walkthrough"),
	})
	if err != nil {
		return fmt.Errorf("create: %w", err)
	}
	p.Status(resp)
	p.Field("Location", resp.HeaderValue("Location"))
	if err := client.ValidateTodoJSON(resp.Body); err != nil {
		return err
	}
	p.Todo(created)

	got, resp, err := a.client.Get(ctx, created.ID)
	if err != nil {
		return fmt.Errorf("get: %w", err)
	}
	p.Status(resp)
	p.Todo(got)

	replaced, resp, err := a.client.Replace(ctx, created.ID, models.Todo{Title: "Demo todo (replaced)"})
	if err != nil {
		return fmt.Errorf("replace: %w", err)
	}
	p.Status(resp)
	p.Todo(replaced)

	patched, resp, err := a.client.Patch(ctx, created.ID, models.PatchTodoRequest{IsCompleted: models.Some(true)})
	if err != nil {
		return fmt.Errorf("patch: %w", err)
	}
	p.Status(resp)
	p.Todo(patched)

	summary, resp, err := a.client.Head(ctx)
	if err != nil {
		return fmt.Errorf("head: %w", err)
	}
	p.Status(resp)
	p.Field("X-Total-Count", summary.TotalCount)
	p.Field("X-Last-Modified", summary.LastModified.UTC().Format(http.TimeFormat))

	methods, resp, err := a.client.Options(ctx)
	if err != nil {
		return fmt.Errorf("options: %w", err)
	}
	p.Status(resp)
	p.Field("Allow", strings.Join(methods, ", "))

	resp, err = a.client.Delete(ctx, created.ID)
	if err != nil {
		return fmt.Errorf("delete: %w", err)
	}
	p.Status(resp)

	_, resp, err = a.client.Get(ctx, created.ID)
	var apiErr *client.APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusNotFound {
		return fmt.Errorf("expected 404 after delete, got %v", err)
	}
	p.Status(resp)
	p.Success("todo %d is gone: %s", created.ID, apiErr.Message)
	return nil
}

// demoConcurrent issues a delayed list and, while it is pending, a create.
// The create must finish first.
func (a *app) demoConcurrent(ctx context.Context, slow time.Duration) error {
	p := a.printer
	p.Section("Concurrent Requests")

	var (
		listDone   atomic.Int64
		createDone atomic.Int64
		createdID  atomic.Int64
	)
	start := time.Now()
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		_, _, err := a.client.List(gctx, slow)
		listDone.Store(int64(time.Since(start)))
		return err
	})
	g.Go(func() error {
		if err := sleep(gctx, slow/4); err != nil {
			return err
		}
		todo, _, err := a.client.Create(gctx, models.CreateTodoRequest{Title: "Written during a slow read"})
		createDone.Store(int64(time.Since(start)))
		createdID.Store(int64(todo.ID))
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	listTook := time.Duration(listDone.Load())
	createTook := time.Duration(createDone.Load())
	p.Field("Slow list finished after", listTook.Round(time.Millisecond))
	p.Field("Create finished after", createTook.Round(time.Millisecond))

	if id := int(createdID.Load()); id > 0 {
		if _, err := a.client.Delete(ctx, id); err != nil {
			p.Warn("cleanup of todo %d failed: %v", id, err)
		}
	}
	if createTook >= listTook {
		return fmt.Errorf("create waited for the slow list (%s >= %s)", createTook, listTook)
	}
	p.Success("write was not blocked by the pending read")
	return nil
}
