package cli

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"todo-http-demo/internal/models"
	"todo-http-demo/internal/notify"
	"todo-http-demo/internal/worker"
)

func (a *app) watchCmd() *cobra.Command {
	var (
		brokers  []string
		topic    string
		group    string
		redisURL string
		channel  string
	)
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Stream todo change events from Kafka or Redis",
		Long: `Watch prints every change the server publishes until interrupted.
Use --brokers for the Kafka topic or --redis for the pub/sub channel.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			switch {
			case redisURL != "":
				return a.watchRedis(ctx, redisURL, channel)
			case len(brokers) > 0:
				a.printer.Field("Watching", fmt.Sprintf("kafka topic %s", topic))
				return worker.Run(ctx, worker.Config{Brokers: brokers, Topic: topic, GroupID: group},
					func(ctx context.Context, evt models.TodoEvent) error {
						a.printer.Event(evt)
						return nil
					})
			default:
				return usageErrorf("one of --brokers or --redis is required")
			}
		},
	}
	cmd.Flags().StringSliceVar(&brokers, "brokers", nil, "Kafka brokers (comma separated)")
	cmd.Flags().StringVar(&topic, "topic", "todo-events", "Kafka topic")
	cmd.Flags().StringVar(&group, "group", "", "Kafka consumer group (default todo-watchers)")
	cmd.Flags().StringVar(&redisURL, "redis", "", "Redis URL, e.g. redis://localhost:6379/0")
	cmd.Flags().StringVar(&channel, "channel", "todo-events", "Redis pub/sub channel")
	return cmd
}

func (a *app) watchRedis(ctx context.Context, url, channel string) error {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return usageErrorf("invalid --redis URL: %v", err)
	}
	rdb := redis.NewClient(opts)
	defer rdb.Close()

	a.printer.Field("Watching", fmt.Sprintf("redis channel %s", channel))
	return notify.Subscribe(ctx, rdb, channel, a.printer.Event)
}
