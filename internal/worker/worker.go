package worker

import (
	"context"
	"errors"

	"todo-http-demo/internal/models"
	"todo-http-demo/internal/queue"
	"todo-http-demo/pkg/logger"

	"github.com/segmentio/kafka-go"
)

// Config selects the topic to consume.
type Config struct {
	Brokers []string
	Topic   string
	GroupID string
}

// Handler processes one decoded event.
type Handler func(ctx context.Context, evt models.TodoEvent) error

// MessageReader is the subset of *kafka.Reader used by Consume.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
}

// Run consumes the events topic until ctx is cancelled.
func Run(ctx context.Context, cfg Config, handle Handler) error {
	if len(cfg.Brokers) == 0 {
		return errors.New("no kafka brokers configured")
	}
	groupID := cfg.GroupID
	if groupID == "" {
		groupID = "todo-watchers"
	}
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.Brokers,
		Topic:    cfg.Topic,
		GroupID:  groupID,
		MinBytes: 1,
		MaxBytes: 10e6,
	})
	defer reader.Close()

	logger.Info(ctx, "Kafka consumer started", "topic", cfg.Topic, "group", groupID)
	_, err := Consume(ctx, reader, handle)
	return err
}

// Consume reads, decodes and commits messages until ctx is done. It returns
// the number of events handled successfully.
func Consume(ctx context.Context, reader MessageReader, handle Handler) (int64, error) {
	var processed int64
	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return processed, nil
			}
			if errors.Is(err, context.Canceled) {
				return processed, nil
			}
			logger.Error(ctx, "Worker fetch failed", "error", err)
			return processed, err
		}
		if err := handleMessage(ctx, msg.Value, handle); err != nil {
			logger.Error(ctx, "Worker handle failed", "error", err, "payload", string(msg.Value))
			// Commit anyway to avoid poison pill blocking the partition
			_ = reader.CommitMessages(ctx, msg)
			continue
		}
		if err := reader.CommitMessages(ctx, msg); err != nil {
			logger.Error(ctx, "Worker commit failed", "error", err)
		}
		processed++
	}
}

func handleMessage(ctx context.Context, payload []byte, handle Handler) error {
	evt, err := queue.DecodeEvent(payload)
	if err != nil {
		return err
	}
	return handle(ctx, evt)
}
