package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/KARENKING112/mtslinker/internal/logger"
)

// Fetcher resolves fragment URLs to local files with robust retry logic.
// A failed fetch is reported to the caller, which skips the fragment; it is
// never fatal to the run.
type Fetcher struct {
	httpClient *http.Client
	logger     logger.Logger
	userAgent  string

	// RequestTimeout bounds each individual attempt.
	RequestTimeout time.Duration
}

// New creates a new fetcher.
func New(client *http.Client, log logger.Logger, userAgent string) *Fetcher {
	return &Fetcher{
		httpClient:     client,
		logger:         log,
		userAgent:      userAgent,
		RequestTimeout: 5 * time.Second,
	}
}

// Fetch downloads the fragment at rawURL into destDir and returns the local
// file path. Each attempt has its own timeout; transient failures are
// retried before giving up.
func (f *Fetcher) Fetch(rawURL, destDir string) (string, error) {
	const maxRetries = 3
	const retryDelay = 100 * time.Millisecond
	var lastErr error

	for attempt := 1; attempt <= maxRetries; attempt++ {
		f.logger.Debugf("Downloading fragment %s (Attempt %d/%d)", rawURL, attempt, maxRetries)

		data, err := f.fetchOnce(rawURL)
		if err != nil {
			lastErr = fmt.Errorf("download attempt %d failed for %s: %w", attempt, rawURL, err)
			f.logger.Warnf(lastErr.Error())
			time.Sleep(retryDelay)
			continue
		}

		localPath := filepath.Join(destDir, uuid.New().String()+extensionOf(rawURL))
		if err := os.WriteFile(localPath, data, 0o644); err != nil {
			// A write failure is not recoverable by re-downloading.
			return "", fmt.Errorf("failed to store fragment %s: %w", rawURL, err)
		}

		f.logger.Debugf("Successfully downloaded fragment %s to %s", rawURL, localPath)
		return localPath, nil
	}

	return "", fmt.Errorf("failed to download fragment %s after %d attempts: %w", rawURL, maxRetries, lastErr)
}

// fetchOnce performs a single download attempt with a per-request timeout.
func (f *Fetcher) fetchOnce(rawURL string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(context.Background(), f.RequestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, "GET", rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("received non-200 status: %d", resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}

// extensionOf extracts the file extension from a URL path, keeping the
// downloaded file recognizable to the prober.
func extensionOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return path.Ext(u.Path)
}
