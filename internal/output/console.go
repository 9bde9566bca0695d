package output

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/fatih/color"

	"todo-http-demo/internal/bench"
	"todo-http-demo/internal/client"
	"todo-http-demo/internal/models"
)

// Printer writes human-readable client output.
type Printer struct {
	writer  io.Writer
	noColor bool

	green  func(a ...interface{}) string
	red    func(a ...interface{}) string
	yellow func(a ...interface{}) string
	cyan   func(a ...interface{}) string
	bold   func(a ...interface{}) string
}

type Option func(*Printer)

func NewPrinter(opts ...Option) *Printer {
	p := &Printer{writer: os.Stdout}
	for _, opt := range opts {
		opt(p)
	}
	p.green = p.colorFunc(color.FgGreen)
	p.red = p.colorFunc(color.FgRed)
	p.yellow = p.colorFunc(color.FgYellow)
	p.cyan = p.colorFunc(color.FgCyan)
	p.bold = p.colorFunc(color.Bold)
	return p
}

func WithWriter(w io.Writer) Option {
	return func(p *Printer) {
		p.writer = w
	}
}

func WithNoColor(nc bool) Option {
	return func(p *Printer) {
		p.noColor = nc
	}
}

func (p *Printer) colorFunc(attr color.Attribute) func(a ...interface{}) string {
	c := color.New(attr)
	if p.noColor {
		c.DisableColor()
	}
	return c.SprintFunc()
}

// Writer exposes the destination for callers that print raw bodies.
func (p *Printer) Writer() io.Writer {
	return p.writer
}

// Section prints a bold heading.
func (p *Printer) Section(title string) {
	fmt.Fprintf(p.writer, "\n%s\n", p.bold("=== "+title+" ==="))
}

func (p *Printer) Field(name string, value any) {
	fmt.Fprintf(p.writer, "  %s %v\n", p.cyan(name+":"), value)
}

func (p *Printer) Success(format string, args ...any) {
	fmt.Fprintf(p.writer, "%s %s\n", p.green("✓"), fmt.Sprintf(format, args...))
}

func (p *Printer) Warn(format string, args ...any) {
	fmt.Fprintf(p.writer, "%s %s\n", p.yellow("!"), fmt.Sprintf(format, args...))
}

func (p *Printer) Error(err error) {
	fmt.Fprintf(p.writer, "%s %s\n", p.red("x"), err)
}

// Status prints the request line and outcome of a response.
func (p *Printer) Status(resp *client.Response) {
	status := p.green(resp.Status)
	if !resp.IsSuccess() {
		status = p.red(resp.Status)
	}
	fmt.Fprintf(p.writer, "%s %s -> %s %s\n", p.bold(resp.Method), resp.URL, status,
		p.cyan(fmt.Sprintf("(%dms)", resp.Duration.Milliseconds())))
}

// Headers enumerates response headers in name order.
func (p *Printer) Headers(h map[string][]string) {
	names := make([]string, 0, len(h))
	for name := range h {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(p.writer, "  %s %s\n", p.cyan(name+":"), strings.Join(h[name], ", "))
	}
}

func (p *Printer) Todo(t models.Todo) {
	mark := p.yellow("[ ]")
	if t.IsCompleted {
		mark = p.green("[x]")
	}
	fmt.Fprintf(p.writer, "%s #%d %s\n", mark, t.ID, p.bold(t.Title))
	if t.Description != nil {
		fmt.Fprintf(p.writer, "      %s\n", *t.Description)
	}
	fmt.Fprintf(p.writer, "      created %s\n", t.CreatedDate.Format(time.RFC3339))
}

func (p *Printer) Todos(todos []models.Todo) {
	if len(todos) == 0 {
		fmt.Fprintln(p.writer, "(no todos)")
		return
	}
	for _, t := range todos {
		p.Todo(t)
	}
}

// Event prints one change notification on a single line.
func (p *Printer) Event(evt models.TodoEvent) {
	line := fmt.Sprintf("%s %s id=%d", evt.OccurredAt.Format(time.RFC3339), p.bold(evt.Type), evt.ID)
	if evt.Todo != nil {
		line += fmt.Sprintf(" title=%q completed=%t", evt.Todo.Title, evt.Todo.IsCompleted)
	}
	if evt.RequestID != "" {
		line += " request_id=" + evt.RequestID
	}
	fmt.Fprintln(p.writer, line)
}

// Report prints benchmark results.
func (p *Printer) Report(r bench.Report) {
	p.Section("Benchmark")
	p.Field("Requests", r.Requests)
	p.Field("Errors", r.Errors)
	p.Field("Elapsed", r.Elapsed.Round(time.Millisecond))
	p.Field("Throughput", fmt.Sprintf("%.1f req/s", r.RPS()))
	fmt.Fprintf(p.writer, "  %s min=%s mean=%s p50=%s p95=%s p99=%s max=%s\n", p.cyan("Latency:"),
		r.Min, r.Mean.Round(time.Microsecond), r.P50, r.P95, r.P99, r.Max)
	for _, code := range r.StatusCodes() {
		label := p.green(code)
		if code >= 400 {
			label = p.red(code)
		}
		fmt.Fprintf(p.writer, "  %s %s x%d\n", p.cyan("Status"), label, r.Statuses[code])
	}
	if r.FirstErr != nil {
		p.Error(fmt.Errorf("first error: %w", r.FirstErr))
	}
}
