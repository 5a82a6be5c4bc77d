// Package persistence keeps completed job results in memory and mirrors them
// to a JSON file so that they survive restarts.
package persistence

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"code.cloudfoundry.org/bytefmt"
	"github.com/natefinch/atomic"
	cache "github.com/patrickmn/go-cache"
	"github.com/ricochet2200/go-disk-usage/du"
	"go.uber.org/zap"

	"github.com/spacemeshos/powsearch/shared"
)

// DefaultFileName is the name of the result cache file.
const DefaultFileName = "pow_results_cache.json"

// Store maps job keys to their cache entries. Entries are never deleted.
//
// The in-memory cache is authoritative: failing to read or write the file
// never loses a result for the lifetime of the process.
type Store struct {
	path   string
	logger *zap.Logger

	entries *cache.Cache

	// serialises file writes.
	mtx sync.Mutex
}

// Open returns a Store mirrored to path. An empty path keeps results in
// memory only. A missing file is an empty cache; an unreadable or malformed
// file is logged and ignored.
func Open(path string, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Store{
		path:    path,
		logger:  logger.Named("persistence"),
		entries: cache.New(cache.NoExpiration, 0),
	}
	if path == "" {
		return s
	}

	loaded, err := s.load()
	if err != nil {
		s.logger.Warn("ignoring result cache file", zap.String("path", path), zap.Error(err))
		return s
	}
	for key, entry := range loaded {
		s.entries.Set(key, entry, cache.NoExpiration)
	}
	s.logger.Info("loaded result cache", zap.String("path", path), zap.Int("entries", len(loaded)))
	return s
}

func (s *Store) load() (map[string]shared.CacheEntry, error) {
	data, err := os.ReadFile(s.path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil, nil
	case err != nil:
		return nil, &shared.PersistenceError{Path: s.path, Err: err}
	}

	entries := make(map[string]shared.CacheEntry)
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, &shared.PersistenceError{Path: s.path, Err: fmt.Errorf("decode: %w", err)}
	}
	return entries, nil
}

// Path returns the file the store is mirrored to.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) Get(key string) (shared.CacheEntry, bool) {
	v, ok := s.entries.Get(key)
	if !ok {
		return shared.CacheEntry{}, false
	}
	return v.(shared.CacheEntry), true
}

// Len returns the number of cached entries.
func (s *Store) Len() int {
	return s.entries.ItemCount()
}

// Keys returns the cached job keys in ascending order.
func (s *Store) Keys() []string {
	items := s.entries.Items()
	keys := make([]string, 0, len(items))
	for k := range items {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Put records entry under entry.JobKey and rewrites the file. The entry is
// kept in memory even when the returned *shared.PersistenceError reports a
// failed write.
func (s *Store) Put(entry shared.CacheEntry) error {
	s.entries.Set(entry.JobKey, entry, cache.NoExpiration)
	if s.path == "" {
		return nil
	}

	s.mtx.Lock()
	defer s.mtx.Unlock()

	snapshot := make(map[string]shared.CacheEntry, s.entries.ItemCount())
	for k, item := range s.entries.Items() {
		snapshot[k] = item.Object.(shared.CacheEntry)
	}

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return &shared.PersistenceError{Path: s.path, Err: fmt.Errorf("encode: %w", err)}
	}
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return &shared.PersistenceError{Path: s.path, Err: err}
	}

	required := uint64(len(data))
	if available := du.NewDiskUsage(dir).Available(); required > available {
		return &shared.PersistenceError{Path: s.path, Err: fmt.Errorf("not enough disk space. required: %v, available: %v",
			bytefmt.ByteSize(required), bytefmt.ByteSize(available))}
	}
	if err := atomic.WriteFile(s.path, bytes.NewReader(data)); err != nil {
		return &shared.PersistenceError{Path: s.path, Err: fmt.Errorf("atomic write: %w", err)}
	}
	return nil
}
