package jobqueue

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/riskibarqy/playoff-pool/internal/platform/resilience"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQStashPublisher_EnqueueSetsUpstashHeaders(t *testing.T) {
	var (
		gotPath    string
		gotHeaders http.Header
		gotBody    string
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotHeaders = r.Header.Clone()
		raw, _ := io.ReadAll(r.Body)
		gotBody = string(raw)
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	publisher, err := NewQStashPublisher(QStashPublisherConfig{
		BaseURL:          server.URL,
		Token:            "qstash-token",
		TargetBaseURL:    "https://pool.example.com/",
		Retries:          2,
		InternalJobToken: "job-secret",
	}, nil)
	require.NoError(t, err)

	err = publisher.Enqueue(context.Background(), "v1/internal/jobs/weeks/2/lock", map[string]any{"week": 2}, 90*time.Minute, "lock-divisional-1768000000")
	require.NoError(t, err)

	assert.Equal(t, "/v2/publish/https://pool.example.com/v1/internal/jobs/weeks/2/lock", gotPath)
	assert.Equal(t, "Bearer qstash-token", gotHeaders.Get("Authorization"))
	assert.Equal(t, "2", gotHeaders.Get("Upstash-Retries"))
	assert.Equal(t, "5400s", gotHeaders.Get("Upstash-Delay"))
	assert.Equal(t, "lock-divisional-1768000000", gotHeaders.Get("Upstash-Deduplication-Id"))
	assert.Equal(t, "job-secret", gotHeaders.Get("Upstash-Forward-X-Internal-Job-Token"))
	assert.JSONEq(t, `{"week":2}`, gotBody)
}

func TestQStashPublisher_TransientFailuresOpenBreaker(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	publisher, err := NewQStashPublisher(QStashPublisherConfig{
		BaseURL:        server.URL,
		Token:          "t",
		TargetBaseURL:  "https://pool.example.com",
		CircuitBreaker: resilience.CircuitBreakerConfig{Enabled: true, FailureThreshold: 2, OpenTimeout: time.Minute},
	}, nil)
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		err = publisher.Enqueue(context.Background(), "/v1/internal/jobs/weeks/1/lock", nil, 0, "")
		assert.ErrorIs(t, err, errQStashTransient)
	}
	err = publisher.Enqueue(context.Background(), "/v1/internal/jobs/weeks/1/lock", nil, 0, "")
	assert.ErrorIs(t, err, resilience.ErrCircuitOpen)
	assert.Equal(t, int32(2), hits.Load())
}

func TestQStashPublisher_ClientErrorDoesNotTripBreaker(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	publisher, err := NewQStashPublisher(QStashPublisherConfig{
		BaseURL:        server.URL,
		Token:          "t",
		TargetBaseURL:  "https://pool.example.com",
		CircuitBreaker: resilience.CircuitBreakerConfig{Enabled: true, FailureThreshold: 1, OpenTimeout: time.Minute},
	}, nil)
	require.NoError(t, err)

	err = publisher.Enqueue(context.Background(), "/v1/internal/jobs/weeks/1/lock", nil, 0, "")
	require.Error(t, err)
	assert.NotErrorIs(t, err, errQStashTransient)
	assert.Equal(t, resilience.CircuitStateClosed, publisher.breaker.State())
}

func TestNewQStashPublisher_ValidatesURLs(t *testing.T) {
	_, err := NewQStashPublisher(QStashPublisherConfig{BaseURL: "ftp://qstash", Token: "t", TargetBaseURL: "https://x"}, nil)
	assert.Error(t, err)

	_, err = NewQStashPublisher(QStashPublisherConfig{BaseURL: "https://qstash.upstash.io", Token: "t", TargetBaseURL: ""}, nil)
	assert.Error(t, err)

	_, err = NewQStashPublisher(QStashPublisherConfig{BaseURL: "https://qstash.upstash.io", TargetBaseURL: "https://x"}, nil)
	assert.Error(t, err)
}
