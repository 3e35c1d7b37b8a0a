package fetch_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KARENKING112/mtslinker/internal/fetch"
	"github.com/KARENKING112/mtslinker/internal/logger"
)

// TestFetch_Success verifies a successful download on the first attempt.
func TestFetch_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "fragment data")
	}))
	defer server.Close()

	fetcher := fetch.New(server.Client(), logger.NewCapture(), "test-agent")
	destDir := t.TempDir()

	path, err := fetcher.Fetch(server.URL+"/chunk.mp4", destDir)

	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "fragment data", string(data))
	assert.Equal(t, ".mp4", path[len(path)-4:])
}

// TestFetch_RetryThenSuccess verifies that the fetcher retries on failure
// and succeeds.
func TestFetch_RetryThenSuccess(t *testing.T) {
	var requestCount int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		count := atomic.AddInt32(&requestCount, 1)
		if count < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		fmt.Fprint(w, "final fragment data")
	}))
	defer server.Close()

	fetcher := fetch.New(server.Client(), logger.NewCapture(), "test-agent")

	path, err := fetcher.Fetch(server.URL+"/chunk.mp4", t.TempDir())

	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "final fragment data", string(data))
	assert.Equal(t, int32(3), requestCount, "Expected exactly 3 attempts")
}

// TestFetch_FailureAfterRetries verifies that the fetcher gives up after all
// retries and surfaces the last error.
func TestFetch_FailureAfterRetries(t *testing.T) {
	var requestCount int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requestCount, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	log := logger.NewCapture()
	fetcher := fetch.New(server.Client(), log, "test-agent")

	_, err := fetcher.Fetch(server.URL+"/chunk.mp4", t.TempDir())

	require.Error(t, err)
	assert.Equal(t, int32(3), atomic.LoadInt32(&requestCount), "Expected exactly 3 attempts")
	assert.Contains(t, err.Error(), "after 3 attempts")
	assert.Len(t, log.Warnings(), 3)
}

// TestFetch_Timeout verifies that the per-request timeout is respected.
func TestFetch_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		fmt.Fprint(w, "this should not be sent")
	}))
	defer server.Close()

	fetcher := fetch.New(server.Client(), logger.NewCapture(), "test-agent")
	fetcher.RequestTimeout = 50 * time.Millisecond

	_, err := fetcher.Fetch(server.URL+"/chunk.mp4", t.TempDir())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "context deadline exceeded")
}

// TestFetch_UserAgent verifies the configured User-Agent reaches the server.
func TestFetch_UserAgent(t *testing.T) {
	var got string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("User-Agent")
		fmt.Fprint(w, "ok")
	}))
	defer server.Close()

	fetcher := fetch.New(server.Client(), logger.NewCapture(), "mtslinker-test")

	_, err := fetcher.Fetch(server.URL+"/chunk.mp4", t.TempDir())

	require.NoError(t, err)
	assert.Equal(t, "mtslinker-test", got)
}

// TestFetch_UniqueNames verifies two downloads of the same URL do not
// collide in the destination directory.
func TestFetch_UniqueNames(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "data")
	}))
	defer server.Close()

	fetcher := fetch.New(server.Client(), logger.NewCapture(), "")
	destDir := t.TempDir()

	first, err := fetcher.Fetch(server.URL+"/chunk.mp4", destDir)
	require.NoError(t, err)
	second, err := fetcher.Fetch(server.URL+"/chunk.mp4", destDir)
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}
