package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithRequestID_AddsField(t *testing.T) {
	var buf bytes.Buffer
	Init(&buf)
	t.Cleanup(func() { Init(os.Stdout) })

	ctx := WithRequestID(context.Background(), "req-42")
	Info(ctx, "hello", "count", 3)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "hello", line["msg"])
	assert.Equal(t, "req-42", line["request_id"])
	assert.Equal(t, float64(3), line["count"])
}

func TestSetLevel(t *testing.T) {
	var buf bytes.Buffer
	Init(&buf)
	t.Cleanup(func() {
		Init(os.Stdout)
		_ = SetLevel("info")
	})

	require.NoError(t, SetLevel("warn"))
	Info(context.Background(), "dropped")
	assert.Empty(t, buf.String())

	Warn(context.Background(), "kept")
	assert.Contains(t, buf.String(), "kept")

	assert.Error(t, SetLevel("verbose"))
}
