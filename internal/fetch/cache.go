package fetch

import (
	"sync"

	"github.com/KARENKING112/mtslinker/internal/logger"
)

// Source resolves a fragment URL to a local file in destDir.
type Source interface {
	Fetch(url, destDir string) (string, error)
}

// Cache wraps a fetch source with a URL-keyed memo of downloaded fragment
// paths, so a manifest that references the same chunk more than once
// downloads it once. Entries live for the duration of one run; the files
// themselves are released by the compiler.
type Cache struct {
	mutex  sync.Mutex
	source Source
	paths  map[string]string
	logger logger.Logger
}

// NewCache creates a caching wrapper around the given source.
func NewCache(source Source, log logger.Logger) *Cache {
	return &Cache{
		source: source,
		paths:  make(map[string]string),
		logger: log,
	}
}

// Fetch returns the cached local path for rawURL, downloading it on the
// first request. Failed downloads are not cached, so a later reference to
// the same URL retries.
func (c *Cache) Fetch(rawURL, destDir string) (string, error) {
	c.mutex.Lock()
	if path, found := c.paths[rawURL]; found {
		c.mutex.Unlock()
		c.logger.Debugf("Fragment cache hit for %s: %s", rawURL, path)
		return path, nil
	}
	c.mutex.Unlock()

	path, err := c.source.Fetch(rawURL, destDir)
	if err != nil {
		return "", err
	}

	c.mutex.Lock()
	c.paths[rawURL] = path
	c.mutex.Unlock()
	return path, nil
}
