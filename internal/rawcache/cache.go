// Package rawcache keeps the raw text of recent Horizons responses on disk so
// the daemon can warm-load its last table after a restart.
package rawcache

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"
)

const (
	filePrefix = "horizons_"
	fileSuffix = ".txt"
)

// Cache manages raw response files in one directory, keeping at most
// maxFiles of them.
type Cache struct {
	dir      string
	maxFiles int
}

// New creates a Cache rooted at dir. maxFiles values below 1 fall back to 5.
func New(dir string, maxFiles int) *Cache {
	if maxFiles <= 0 {
		maxFiles = 5
	}
	return &Cache{dir: dir, maxFiles: maxFiles}
}

// Write saves raw response text to a timestamped file and prunes files
// beyond maxFiles, oldest first.
func (c *Cache) Write(raw string, ts time.Time) error {
	if err := os.MkdirAll(c.dir, 0755); err != nil {
		return fmt.Errorf("creating cache dir: %w", err)
	}

	name := fmt.Sprintf("%s%d%s", filePrefix, ts.Unix(), fileSuffix)
	if err := os.WriteFile(filepath.Join(c.dir, name), []byte(raw), 0644); err != nil {
		return fmt.Errorf("writing cache file: %w", err)
	}

	return c.prune()
}

// LoadLatest reads the newest cached response by the timestamp embedded in
// the filename, returning the text and that timestamp.
func (c *Cache) LoadLatest() (string, time.Time, error) {
	files, err := c.listFiles()
	if err != nil {
		return "", time.Time{}, err
	}
	if len(files) == 0 {
		return "", time.Time{}, fmt.Errorf("no cached responses in %s", c.dir)
	}

	latest := files[len(files)-1]
	data, err := os.ReadFile(filepath.Join(c.dir, latest.name))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("reading cache file: %w", err)
	}
	return string(data), latest.ts, nil
}

type cacheFile struct {
	name string
	ts   time.Time
}

// listFiles returns the cache files sorted oldest first. Files whose names do
// not carry a parseable timestamp are ignored.
func (c *Cache) listFiles() ([]cacheFile, error) {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("listing cache dir: %w", err)
	}

	var files []cacheFile
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !strings.HasPrefix(name, filePrefix) || !strings.HasSuffix(name, fileSuffix) {
			continue
		}
		tsStr := strings.TrimSuffix(strings.TrimPrefix(name, filePrefix), fileSuffix)
		unix, err := strconv.ParseInt(tsStr, 10, 64)
		if err != nil {
			continue
		}
		files = append(files, cacheFile{name: name, ts: time.Unix(unix, 0)})
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].ts.Before(files[j].ts)
	})
	return files, nil
}

func (c *Cache) prune() error {
	files, err := c.listFiles()
	if err != nil {
		return err
	}
	if len(files) <= c.maxFiles {
		return nil
	}
	for _, f := range files[:len(files)-c.maxFiles] {
		if err := os.Remove(filepath.Join(c.dir, f.name)); err != nil {
			return fmt.Errorf("pruning cache file %s: %w", f.name, err)
		}
	}
	return nil
}
