package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector_Requests(t *testing.T) {
	c := NewCollector(nil)

	c.RequestStarted()
	assert.Equal(t, 1.0, testutil.ToFloat64(c.requestsInFlight))
	c.RequestFinished("GET", "/api/todo", 200, 10*time.Millisecond)
	assert.Equal(t, 0.0, testutil.ToFloat64(c.requestsInFlight))

	c.RequestStarted()
	c.RequestFinished("GET", "", 404, time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(c.requestsTotal.WithLabelValues("GET", "/api/todo", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.requestsTotal.WithLabelValues("GET", "unmatched", "404")))
}

func TestCollector_Events(t *testing.T) {
	c := NewCollector(nil)
	c.RecordEvent("kafka", nil)
	c.RecordEvent("kafka", errors.New("down"))
	c.RecordEvent("kafka", nil)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.eventsPublished.WithLabelValues("kafka", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.eventsPublished.WithLabelValues("kafka", "error")))
}

func TestCollector_RecordGaugeAndHandler(t *testing.T) {
	n := 2
	c := NewCollector(func() int { return n })
	n = 5

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.True(t, strings.Contains(body, "todo_records 5"), body)
}
