package cli

import (
	"net/http"
	"strings"

	"github.com/spf13/cobra"

	"todo-http-demo/internal/bench"
	"todo-http-demo/internal/client"
)

func (a *app) benchCmd() *cobra.Command {
	var cfg bench.Config
	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Measure request latency against the server",
		Long: `Fire a fixed number of requests with bounded concurrency and report
latency percentiles from an HDR histogram.

Examples:
  # 1000 list requests, 20 at a time
  todo-client bench -n 1000 -c 20

  # Throttled to 50 requests per second
  todo-client bench -n 500 --rate 50 --path api/todo/1`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg.Method = strings.ToUpper(cfg.Method)
			switch cfg.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
			default:
				return usageErrorf("bench only sends safe methods (GET, HEAD, OPTIONS), got %s", cfg.Method)
			}
			report, err := bench.Run(cmd.Context(), a.client, cfg)
			if err != nil {
				return err
			}
			a.printer.Report(report)
			return nil
		},
	}
	cmd.Flags().IntVarP(&cfg.Requests, "requests", "n", 100, "Total number of requests")
	cmd.Flags().IntVarP(&cfg.Concurrency, "concurrency", "c", 10, "Requests in flight at once")
	cmd.Flags().Float64VarP(&cfg.Rate, "rate", "r", 0, "Maximum requests per second (0 = unlimited)")
	cmd.Flags().StringVarP(&cfg.Method, "method", "X", http.MethodGet, "HTTP method")
	cmd.Flags().StringVar(&cfg.Path, "path", client.TodoPath, "Path relative to the base URL")
	return cmd
}
