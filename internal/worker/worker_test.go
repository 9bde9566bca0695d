package worker

import (
	"context"
	"errors"
	"testing"

	"todo-http-demo/internal/models"
	"todo-http-demo/internal/queue"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeReader struct {
	msgs      []kafka.Message
	committed int
	cancel    context.CancelFunc
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	if len(r.msgs) == 0 {
		r.cancel()
		return kafka.Message{}, context.Canceled
	}
	m := r.msgs[0]
	r.msgs = r.msgs[1:]
	return m, nil
}

func (r *fakeReader) CommitMessages(ctx context.Context, msgs ...kafka.Message) error {
	r.committed += len(msgs)
	return nil
}

func TestConsume(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	good, err := queue.EncodeEvent(models.TodoEvent{Type: models.EventCreated, ID: 3})
	require.NoError(t, err)
	failing, err := queue.EncodeEvent(models.TodoEvent{Type: models.EventDeleted, ID: 4})
	require.NoError(t, err)

	r := &fakeReader{
		msgs:   []kafka.Message{good, {Value: []byte("not json")}, failing},
		cancel: cancel,
	}

	var seen []int
	n, err := Consume(ctx, r, func(ctx context.Context, evt models.TodoEvent) error {
		seen = append(seen, evt.ID)
		if evt.Type == models.EventDeleted {
			return errors.New("boom")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Equal(t, []int{3, 4}, seen)
	assert.Equal(t, 3, r.committed, "poison and failed messages are committed too")
}

func TestRun_RequiresBrokers(t *testing.T) {
	err := Run(context.Background(), Config{Topic: "todo-events"}, nil)
	assert.Error(t, err)
}
