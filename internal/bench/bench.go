package bench

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"todo-http-demo/internal/client"
)

// Latencies are recorded in microseconds between 1us and 60s.
const (
	minLatencyUs = 1
	maxLatencyUs = 60_000_000
)

// Config describes one benchmark run.
type Config struct {
	Requests    int
	Concurrency int
	// Rate caps requests per second across all workers. Zero means unlimited.
	Rate   float64
	Method string
	Path   string
}

func (c Config) withDefaults() Config {
	if c.Requests <= 0 {
		c.Requests = 100
	}
	if c.Concurrency <= 0 {
		c.Concurrency = 10
	}
	if c.Concurrency > c.Requests {
		c.Concurrency = c.Requests
	}
	if c.Method == "" {
		c.Method = http.MethodGet
	}
	if c.Path == "" {
		c.Path = client.TodoPath
	}
	return c
}

// Report summarizes a run.
type Report struct {
	Requests int64
	Errors   int64
	Elapsed  time.Duration
	Min      time.Duration
	Mean     time.Duration
	P50      time.Duration
	P95      time.Duration
	P99      time.Duration
	Max      time.Duration
	Statuses map[int]int64
	FirstErr error
}

// RPS is the achieved throughput.
func (r Report) RPS() float64 {
	if r.Elapsed <= 0 {
		return 0
	}
	return float64(r.Requests) / r.Elapsed.Seconds()
}

// StatusCodes returns the observed status codes in ascending order.
func (r Report) StatusCodes() []int {
	codes := make([]int, 0, len(r.Statuses))
	for code := range r.Statuses {
		codes = append(codes, code)
	}
	sort.Ints(codes)
	return codes
}

type recorder struct {
	mu        sync.Mutex
	histogram *hdrhistogram.Histogram
	statuses  map[int]int64
	errCount  int64
	firstErr  error
}

func (r *recorder) record(d time.Duration, status int, err error) {
	us := d.Microseconds()
	if us < minLatencyUs {
		us = minLatencyUs
	}
	if us > maxLatencyUs {
		us = maxLatencyUs
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	_ = r.histogram.RecordValue(us)
	if err != nil {
		r.errCount++
		if r.firstErr == nil {
			r.firstErr = err
		}
		return
	}
	r.statuses[status]++
}

// Run fires cfg.Requests requests through c using cfg.Concurrency workers.
// Transport errors are counted, not returned; only ctx cancellation aborts the run.
func Run(ctx context.Context, c *client.Client, cfg Config) (Report, error) {
	cfg = cfg.withDefaults()
	rec := &recorder{
		histogram: hdrhistogram.New(minLatencyUs, maxLatencyUs, 3),
		statuses:  make(map[int]int64),
	}

	var limiter *rate.Limiter
	if cfg.Rate > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.Rate), 1)
	}

	jobs := make(chan struct{})
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(jobs)
		for i := 0; i < cfg.Requests; i++ {
			select {
			case jobs <- struct{}{}:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})

	start := time.Now()
	for w := 0; w < cfg.Concurrency; w++ {
		g.Go(func() error {
			for range jobs {
				if limiter != nil {
					if err := limiter.Wait(gctx); err != nil {
						return err
					}
				}
				began := time.Now()
				resp, err := c.Do(gctx, cfg.Method, cfg.Path, nil)
				if gctx.Err() != nil {
					return gctx.Err()
				}
				status := 0
				if resp != nil {
					status = resp.StatusCode
				}
				rec.record(time.Since(began), status, err)
			}
			return nil
		})
	}

	err := g.Wait()
	elapsed := time.Since(start)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return Report{}, err
		}
		return Report{}, fmt.Errorf("bench: %w", err)
	}

	h := rec.histogram
	return Report{
		Requests: h.TotalCount(),
		Errors:   rec.errCount,
		Elapsed:  elapsed,
		Min:      usToDuration(h.Min()),
		Mean:     time.Duration(h.Mean() * float64(time.Microsecond)),
		P50:      usToDuration(h.ValueAtQuantile(50)),
		P95:      usToDuration(h.ValueAtQuantile(95)),
		P99:      usToDuration(h.ValueAtQuantile(99)),
		Max:      usToDuration(h.Max()),
		Statuses: rec.statuses,
		FirstErr: rec.firstErr,
	}, nil
}

func usToDuration(us int64) time.Duration {
	return time.Duration(us) * time.Microsecond
}
