package cli

import (
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"todo-http-demo/internal/models"
)

func parseID(arg string) (int, error) {
	id, err := strconv.Atoi(arg)
	if err != nil {
		return 0, usageErrorf("id must be an integer, got %q", arg)
	}
	return id, nil
}

func (a *app) configCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show the effective client configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a.printConfig()
			return nil
		},
	}
}

func (a *app) printConfig() {
	p := a.printer
	p.Section("HttpClient Configuration")
	p.Field("BaseAddress", a.client.BaseURL())
	p.Field("Timeout", a.client.Timeout())
	p.Field("MaxResponseContentBufferSize", strconv.FormatInt(a.client.MaxResponseBufferSize(), 10)+" bytes")
	if a.config.RateLimit > 0 {
		p.Field("RateLimit", strconv.FormatFloat(a.config.RateLimit, 'f', -1, 64)+" req/s")
	}
	headers := a.client.DefaultHeaders()
	if len(headers) == 0 {
		return
	}
	p.Field("Default Request Headers", "")
	p.Headers(headers)
}

func (a *app) listCmd() *cobra.Command {
	var delay time.Duration
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all todos (GET /api/todo)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			todos, resp, err := a.client.List(cmd.Context(), delay)
			if resp != nil {
				a.printer.Status(resp)
			}
			if err != nil {
				return err
			}
			a.printer.Todos(todos)
			return nil
		},
	}
	cmd.Flags().DurationVar(&delay, "delay", 0, "Ask the server to hold the response (e.g. 2s)")
	return cmd
}

func (a *app) showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one todo (GET /api/todo/{id})",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			todo, resp, err := a.client.Get(cmd.Context(), id)
			if resp != nil {
				a.printer.Status(resp)
			}
			if err != nil {
				return err
			}
			a.printer.Todo(todo)
			return nil
		},
	}
}

func (a *app) createCmd() *cobra.Command {
	var description string
	cmd := &cobra.Command{
		Use:   "create <title>",
		Short: "Create a todo (POST /api/todo)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := models.CreateTodoRequest{Title: args[0]}
			if cmd.Flags().Changed("description") {
				req.Description = models.StringPtr(description)
			}
			todo, resp, err := a.client.Create(cmd.Context(), req)
			if resp != nil {
				a.printer.Status(resp)
			}
			if err != nil {
				return err
			}
			a.printer.Field("Location", resp.HeaderValue("Location"))
			a.printer.Todo(todo)
			return nil
		},
	}
	cmd.Flags().StringVarP(&description, "description", "d", "", "Optional description")
	return cmd
}

func (a *app) replaceCmd() *cobra.Command {
	var (
		title       string
		description string
		completed   bool
	)
	cmd := &cobra.Command{
		Use:   "replace <id>",
		Short: "Replace a todo (PUT /api/todo/{id})",
		Long: `Replace sends a complete record. Fields not given are reset:
no --description clears it and no --completed marks the todo open.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			todo := models.Todo{Title: title, IsCompleted: completed}
			if cmd.Flags().Changed("description") {
				todo.Description = models.StringPtr(description)
			}
			out, resp, err := a.client.Replace(cmd.Context(), id, todo)
			if resp != nil {
				a.printer.Status(resp)
			}
			if err != nil {
				return err
			}
			a.printer.Todo(out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&title, "title", "t", "", "Title (required)")
	cmd.Flags().StringVarP(&description, "description", "d", "", "Description")
	cmd.Flags().BoolVar(&completed, "completed", false, "Mark as completed")
	_ = cmd.MarkFlagRequired("title")
	return cmd
}

func (a *app) patchCmd() *cobra.Command {
	var (
		title            string
		description      string
		completed        bool
		clearDescription bool
	)
	cmd := &cobra.Command{
		Use:   "patch <id>",
		Short: "Update some fields of a todo (PATCH /api/todo/{id})",
		Long: `Patch sends only the flags given on the command line.
--clear-description sends "description": null.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("description") && clearDescription {
				return usageErrorf("--description and --clear-description are mutually exclusive")
			}
			var patch models.PatchTodoRequest
			if flags.Changed("title") {
				patch.Title = models.Some(title)
			}
			if flags.Changed("completed") {
				patch.IsCompleted = models.Some(completed)
			}
			if flags.Changed("description") {
				patch.Description = models.Some(description)
			}
			if clearDescription {
				patch.Description = models.Null[string]()
			}
			out, resp, err := a.client.Patch(cmd.Context(), id, patch)
			if resp != nil {
				a.printer.Status(resp)
			}
			if err != nil {
				return err
			}
			a.printer.Todo(out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&title, "title", "t", "", "New title")
	cmd.Flags().StringVarP(&description, "description", "d", "", "New description")
	cmd.Flags().BoolVar(&completed, "completed", false, "Completion state (--completed=false reopens)")
	cmd.Flags().BoolVar(&clearDescription, "clear-description", false, "Remove the description")
	return cmd
}

func (a *app) deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a todo (DELETE /api/todo/{id})",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			resp, err := a.client.Delete(cmd.Context(), id)
			if resp != nil {
				a.printer.Status(resp)
			}
			if err != nil {
				return err
			}
			a.printer.Success("deleted todo %d", id)
			return nil
		},
	}
}

func (a *app) headCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "head",
		Short: "Read collection metadata (HEAD /api/todo)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			summary, resp, err := a.client.Head(cmd.Context())
			if resp != nil {
				a.printer.Status(resp)
			}
			if err != nil {
				return err
			}
			a.printer.Field("Total", summary.TotalCount)
			if !summary.LastModified.IsZero() {
				a.printer.Field("Last modified", summary.LastModified.UTC().Format(time.RFC1123))
			}
			return nil
		},
	}
}

func (a *app) optionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "options",
		Short: "List allowed methods (OPTIONS /api/todo)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			methods, resp, err := a.client.Options(cmd.Context())
			if resp != nil {
				a.printer.Status(resp)
			}
			if err != nil {
				return err
			}
			a.printer.Field("Allow", strings.Join(methods, ", "))
			return nil
		},
	}
}
