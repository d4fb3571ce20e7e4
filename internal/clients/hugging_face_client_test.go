package clients

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/spacesedan/nytsentiment/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHFClient(url, token string) *HuggingFaceClient {
	c := NewHuggingFaceClient(url, token, 5*time.Second)
	c.backoff = time.Millisecond
	return c
}

func TestHuggingFaceClassify(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.Equal(t, USER_AGENT, r.Header.Get("User-Agent"))

		var req models.InferenceRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "I love this", req.Inputs)

		w.Write([]byte(`[[{"label":"POSITIVE","score":0.98},{"label":"NEGATIVE","score":0.02}]]`))
	}))
	defer srv.Close()

	labels, err := newTestHFClient(srv.URL, "secret").Classify(context.Background(), "I love this")
	require.NoError(t, err)
	require.Len(t, labels, 2)
	assert.Equal(t, "POSITIVE", labels[0].Label)
	assert.InDelta(t, 0.98, labels[0].Score, 1e-9)
}

func TestHuggingFaceRetriesServerErrors(t *testing.T) {
	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`[{"label":"NEGATIVE","score":0.7}]`))
	}))
	defer srv.Close()

	labels, err := newTestHFClient(srv.URL, "").Classify(context.Background(), "meh")
	require.NoError(t, err)
	assert.Equal(t, int32(3), attempts.Load())
	assert.Equal(t, "NEGATIVE", labels[0].Label)
}

func TestHuggingFaceGivesUp(t *testing.T) {
	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := newTestHFClient(srv.URL, "").Classify(context.Background(), "x")
	require.Error(t, err)
	assert.Equal(t, int32(MAX_RETRIES), attempts.Load())
}

func TestHuggingFaceClientErrorNotRetried(t *testing.T) {
	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	_, err := newTestHFClient(srv.URL, "").Classify(context.Background(), "x")
	assert.ErrorContains(t, err, "unexpected status code 400")
	assert.Equal(t, int32(1), attempts.Load())
}

func TestDecodeLabels(t *testing.T) {
	labels, err := decodeLabels([]byte(`[]`))
	require.NoError(t, err)
	assert.Empty(t, labels)

	_, err = decodeLabels([]byte(`{"error":"loading"}`))
	assert.Error(t, err)
}
