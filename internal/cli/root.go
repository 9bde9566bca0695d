package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"todo-http-demo/internal/client"
	"todo-http-demo/internal/output"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

// configError marks failures that happen before any request is sent.
type configError struct{ err error }

func (e *configError) Error() string { return e.err.Error() }
func (e *configError) Unwrap() error { return e.err }

// usageError marks bad arguments or flag values.
type usageError struct{ err error }

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

func usageErrorf(format string, args ...any) error {
	return &usageError{err: fmt.Errorf(format, args...)}
}

// app holds state shared by every command of one invocation.
type app struct {
	configPath string
	baseURL    string
	timeout    time.Duration
	headers    []string
	maxBuffer  int64
	noColor    bool

	config  *client.Config
	client  *client.Client
	printer *output.Printer
}

// NewRootCmd builds the command tree writing to out.
func NewRootCmd(out io.Writer) *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "todo-client",
		Short: "Console client for the Todo HTTP API",
		Long: `todo-client exercises the Todo API over HTTP: every verb the server
supports, configurable timeouts, default headers, response buffering limits,
a latency benchmark and a live change-event feed.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}
	root.SetOut(out)
	root.SetErr(out)

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "Path to a YAML client config (default: .todoclient.yaml or todoclient.yaml)")
	flags.StringVar(&a.baseURL, "base-url", client.DefaultBaseURL, "Server base URL")
	flags.DurationVar(&a.timeout, "timeout", client.DefaultTimeout, "Per-request timeout (0 disables)")
	flags.StringArrayVarP(&a.headers, "header", "H", nil, "Default header sent with every request, as Name:Value (repeatable)")
	flags.Int64Var(&a.maxBuffer, "max-buffer", client.DefaultMaxResponseBufferSize, "Maximum response body size in bytes")
	flags.BoolVar(&a.noColor, "no-color", false, "Disable colored output")

	root.AddCommand(
		a.configCmd(),
		a.listCmd(),
		a.showCmd(),
		a.createCmd(),
		a.replaceCmd(),
		a.patchCmd(),
		a.deleteCmd(),
		a.headCmd(),
		a.optionsCmd(),
		a.demoCmd(),
		a.benchCmd(),
		a.watchCmd(),
		versionCmd(),
	)
	return root
}

// setup merges the config file with flags; flags set on the command line win.
func (a *app) setup(cmd *cobra.Command) error {
	dir, err := os.Getwd()
	if err != nil {
		dir = "."
	}
	cfg, err := client.LoadConfig(a.configPath, dir)
	if err != nil {
		return &configError{err: err}
	}

	flags := cmd.Flags()
	if flags.Changed("base-url") {
		cfg.BaseURL = a.baseURL
	}
	if flags.Changed("timeout") {
		cfg.Timeout = a.timeout
	}
	if flags.Changed("max-buffer") {
		cfg.MaxResponseBufferSize = a.maxBuffer
	}
	if flags.Changed("no-color") {
		cfg.NoColor = a.noColor
	}
	if len(a.headers) > 0 && cfg.Headers == nil {
		cfg.Headers = make(map[string]string, len(a.headers))
	}
	for _, h := range a.headers {
		name, value, ok := strings.Cut(h, ":")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return usageErrorf("invalid header %q, expected Name:Value", h)
		}
		cfg.Headers[name] = strings.TrimSpace(value)
	}
	if err := cfg.Validate(); err != nil {
		return &configError{err: err}
	}

	c := client.New(cfg.Options()...)
	if err := c.Err(); err != nil {
		return &configError{err: err}
	}
	a.config = cfg
	a.client = c
	a.printer = output.NewPrinter(output.WithWriter(cmd.OutOrStdout()), output.WithNoColor(cfg.NoColor))
	return nil
}

// ExitCode classifies an error returned by Execute.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var apiErr *client.APIError
	var cfgErr *configError
	var useErr *usageError
	var netErr net.Error
	switch {
	case errors.As(err, &apiErr):
		return ExitRequestFailure
	case errors.As(err, &cfgErr):
		return ExitConfigError
	case errors.As(err, &useErr):
		return ExitUsageError
	case errors.As(err, &netErr):
		return ExitNetworkError
	case strings.Contains(err.Error(), "unknown command"),
		strings.Contains(err.Error(), "unknown flag"),
		strings.Contains(err.Error(), "accepts "):
		return ExitUsageError
	}
	return ExitRequestFailure
}

// Execute runs the client and returns the process exit code.
func Execute(v, bt string) int {
	version = v
	buildTime = bt
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := NewRootCmd(os.Stdout)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return ExitCode(err)
	}
	return ExitSuccess
}
