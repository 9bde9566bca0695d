package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"strconv"

	"todo-http-demo/internal/models"
	"todo-http-demo/pkg/logger"

	"github.com/segmentio/kafka-go"
)

// Publisher writes Todo change events to a Kafka topic.
type Publisher struct {
	writer  *kafka.Writer
	brokers []string
	topic   string
}

// NewPublisher returns an async Kafka publisher, or nil when no brokers are configured.
func NewPublisher(ctx context.Context, brokers []string, topic string) *Publisher {
	if len(brokers) == 0 {
		return nil
	}
	w := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchSize:    100,
		BatchTimeout: 0,
		Async:        true,
		RequiredAcks: kafka.RequireOne,
		Completion: func(messages []kafka.Message, err error) {
			if err != nil {
				logger.Warn(context.Background(), "Kafka async write failed", "error", err, "messages", len(messages))
			}
		},
	}
	logger.Info(ctx, "Kafka producer initialized", "topic", topic, "brokers", brokers)
	return &Publisher{writer: w, brokers: brokers, topic: topic}
}

func (p *Publisher) Name() string { return "kafka" }

// Publish enqueues the event. Non-blocking with the async writer.
func (p *Publisher) Publish(ctx context.Context, evt models.TodoEvent) error {
	msg, err := EncodeEvent(evt)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, msg)
}

// Ping dials the first broker.
func (p *Publisher) Ping(ctx context.Context) error {
	conn, err := kafka.DialContext(ctx, "tcp", p.brokers[0])
	if err != nil {
		return err
	}
	return conn.Close()
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

// EncodeEvent builds the Kafka message for evt, keyed by todo id so that all
// events for one record land on the same partition in order.
func EncodeEvent(evt models.TodoEvent) (kafka.Message, error) {
	payload, err := json.Marshal(evt)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("encode event: %w", err)
	}
	return kafka.Message{
		Key:   []byte(strconv.Itoa(evt.ID)),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event-type", Value: []byte(evt.Type)},
		},
	}, nil
}

// DecodeEvent parses a message payload written by EncodeEvent.
func DecodeEvent(payload []byte) (models.TodoEvent, error) {
	var evt models.TodoEvent
	if err := json.Unmarshal(payload, &evt); err != nil {
		return models.TodoEvent{}, fmt.Errorf("decode event: %w", err)
	}
	return evt, nil
}

// EnsureTopic creates the events topic with the given partitions (idempotent).
// Failures are logged; the server runs without the topic.
func EnsureTopic(ctx context.Context, brokers []string, topic string, partitions int) {
	if len(brokers) == 0 {
		return
	}
	conn, err := kafka.DialContext(ctx, "tcp", brokers[0])
	if err != nil {
		logger.Debug(ctx, "Kafka dial for topic creation failed", "error", err)
		return
	}
	defer conn.Close()
	controller, err := conn.Controller()
	if err != nil {
		logger.Debug(ctx, "Kafka controller lookup failed", "error", err)
		return
	}
	ctrlConn, err := kafka.DialContext(ctx, "tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	if err != nil {
		logger.Debug(ctx, "Kafka controller dial failed", "error", err)
		return
	}
	defer ctrlConn.Close()
	err = ctrlConn.CreateTopics(kafka.TopicConfig{
		Topic:             topic,
		NumPartitions:     partitions,
		ReplicationFactor: 1,
	})
	if err != nil {
		logger.Debug(ctx, "Kafka create topic failed (topic may already exist)", "error", err)
		return
	}
	logger.Info(ctx, "Kafka topic ensured", "topic", topic, "partitions", partitions)
}
