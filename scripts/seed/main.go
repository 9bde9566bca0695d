// Seed adds todos to a running server through the HTTP API.
// Run from project root: go run ./scripts/seed
// SEED_COUNT (default 1000) and TODO_BASE_URL (default http://localhost:7148) may be set in .env.
package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"todo-http-demo/internal/client"
	"todo-http-demo/internal/config"
	"todo-http-demo/internal/models"
)

const workers = 16

func main() {
	config.LoadEnvFile(".env")

	total := 1000
	if v := os.Getenv("SEED_COUNT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			fmt.Fprintln(os.Stderr, "SEED_COUNT must be a positive integer")
			os.Exit(1)
		}
		total = n
	}
	baseURL := client.DefaultBaseURL
	if v := os.Getenv("TODO_BASE_URL"); v != "" {
		baseURL = v
	}

	c := client.New(client.WithBaseURL(baseURL), client.WithTimeout(10*time.Second),
		client.WithUserAgent("todo-seed/1.0"))
	if err := c.Err(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	ctx := context.Background()
	start := time.Now()
	var done atomic.Int64
	jobs := make(chan int)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(jobs)
		for n := 1; n <= total; n++ {
			select {
			case jobs <- n:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})
	for w := 0; w < workers; w++ {
		g.Go(func() error {
			for n := range jobs {
				_, _, err := c.Create(gctx, models.CreateTodoRequest{
					Title:       fmt.Sprintf("Todo %d", n),
					Description: models.StringPtr(fmt.Sprintf("Description for todo %d", n)),
				})
				if err != nil {
					return fmt.Errorf("create todo %d: %w", n, err)
				}
				if d := done.Add(1); d%100 == 0 || int(d) == total {
					fmt.Printf("\rInserted %d / %d", d, total)
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		fmt.Fprintln(os.Stderr, "\nInsert failed:", err)
		os.Exit(1)
	}

	fmt.Printf("\nDone: %d todos in %v\n", total, time.Since(start))
}
