package backend

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"

	"github.com/zhoudashuaibi/Antigravity-Manager/internal/logging"
)

// cacheDirNames are the cache directories looked for under the data
// directory.
var cacheDirNames = []string{"cache", "http_cache", "tmp"}

// Cache cleans up disk space used under the application data directory.
type Cache struct {
	DataDir string
	Log     logrus.FieldLogger
}

// ClearResult reports what a cache clear removed. Partial failures are
// collected, not fatal: everything removable is removed.
type ClearResult struct {
	ClearedPaths   []string `json:"cleared_paths"`
	TotalSizeFreed uint64   `json:"total_size_freed"`
	Errors         []string `json:"errors"`
}

// ListCachePaths returns the cache directories that currently exist.
// Returns an empty slice, not an error, when there are none.
func (c *Cache) ListCachePaths() []string {
	paths := []string{}
	for _, name := range cacheDirNames {
		dir := filepath.Join(c.DataDir, name)
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			paths = append(paths, dir)
		}
	}
	return paths
}

// ClearCache removes every cache directory, tolerating partial
// failures: directories that cannot be removed are reported in the
// result's Errors and the rest are still cleared.
func (c *Cache) ClearCache() ClearResult {
	result := ClearResult{ClearedPaths: []string{}, Errors: []string{}}

	for _, dir := range c.ListCachePaths() {
		size, err := dirSize(dir)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", dir, err))
		}
		if err := os.RemoveAll(dir); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", dir, err))
			continue
		}
		result.ClearedPaths = append(result.ClearedPaths, dir)
		result.TotalSizeFreed += size
	}

	if c.Log != nil {
		c.Log.WithField("size", humanize.Bytes(result.TotalSizeFreed)).
			Info("cache cleared")
	}
	return result
}

// ClearLogCache removes rotated debug log files, keeping the active one.
func (c *Cache) ClearLogCache() error {
	dir := filepath.Join(c.DataDir, logging.DebugLogDirName)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading debug log directory: %w", err)
	}

	var freed uint64
	for _, entry := range entries {
		if entry.IsDir() || entry.Name() == logging.DebugLogFileName {
			continue
		}
		if !strings.HasSuffix(entry.Name(), ".log") && !strings.HasSuffix(entry.Name(), ".log.gz") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if info, err := entry.Info(); err == nil {
			freed += uint64(info.Size())
		}
		if err := os.Remove(path); err != nil {
			return fmt.Errorf("removing rotated log %s: %w", path, err)
		}
	}

	if c.Log != nil && freed > 0 {
		c.Log.WithField("size", humanize.Bytes(freed)).Info("rotated logs cleared")
	}
	return nil
}

func dirSize(dir string) (uint64, error) {
	var total uint64
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		total += uint64(info.Size())
		return nil
	})
	return total, err
}
