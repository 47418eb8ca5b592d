// Package index provides the in-memory hash table that maps every live key
// to the exact byte range of the segment record holding its current value.
// This is the core Bitcask trick: keep all keys (and only keys) in memory,
// push everything else to disk, and pay one seek-and-read per get in
// exchange for memory use proportional to key count rather than value size.
package index

import (
	"context"
	stdErrors "errors"

	"github.com/ignitedb/ignitedb/pkg/errors"
)

var (
	// ErrIndexClosed is returned when attempting to perform operations on a closed index.
	ErrIndexClosed = stdErrors.New("operation failed: cannot access closed index")
)

// New creates an Index ready for concurrent use, with its backing map
// pre-sized to cut down on early rehashing.
func New(ctx context.Context, config *Config) (*Index, error) {
	if config == nil || config.DataDir == "" || config.Logger == nil {
		return nil, errors.NewValidationError(
			nil, errors.ErrorCodeInvalidInput, "Index configuration is required",
		).WithField("config").WithRule("required").WithProvided(config)
	}

	return &Index{
		log:     config.Logger,
		dataDir: config.DataDir,
		entries: make(map[string]ValueIndex, 2046),
	}, nil
}

// Get returns the ValueIndex for key and whether key is currently live.
func (idx *Index) Get(key string) (ValueIndex, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	v, ok := idx.entries[key]
	return v, ok
}

// Put overwrites (or inserts) key's ValueIndex.
func (idx *Index) Put(key string, v ValueIndex) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.entries[key] = v
}

// Delete removes key from the index. It is a no-op if key is not present.
func (idx *Index) Delete(key string) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	delete(idx.entries, key)
}

// Len returns the number of live keys.
func (idx *Index) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.entries)
}

// CountBySegment returns how many live entries currently point into
// segmentID. The engine's compaction uses this to cross-check garbage accounting: it must
// always equal that segment's effective_len.
func (idx *Index) CountBySegment(segmentID uint64) int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	n := 0
	for _, v := range idx.entries {
		if v.SegmentID == segmentID {
			n++
		}
	}
	return n
}

// Close releases the index's backing map. Once closed, an Index cannot be
// reused.
func (idx *Index) Close() error {
	if !idx.closed.CompareAndSwap(false, true) {
		return ErrIndexClosed
	}

	idx.log.Infow("Closing index system")

	idx.mu.Lock()
	defer idx.mu.Unlock()

	clear(idx.entries)
	idx.entries = nil

	idx.log.Infow("Index system closed successfully")
	return nil
}
