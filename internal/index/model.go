package index

import (
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

// ValueIndex pinpoints the exact byte range inside one segment file that
// holds the current live value for a key: the bytes `[Head, Tail)` of
// segment `SegmentID` decode to exactly one Set record whose key matches.
//
// ValueIndex holds only the segment id and byte range: no timestamp, no
// duplicate key, and no precomputed entry/value size. This store has no
// TTL or expiry feature, and record boundaries come from the codec's own
// byte-offset tracking rather than precomputed sizes, so those fields
// would be dead weight here.
type ValueIndex struct {
	SegmentID uint64
	Head      int64
	Tail      int64
}

// Index is the in-memory hash table mapping every live key to its
// ValueIndex. Keeping only ValueIndex per key (24 bytes of payload, plus
// the key string itself) is what lets the store hold datasets far larger
// than RAM while still answering every lookup in O(1) without touching
// disk.
type Index struct {
	dataDir string                // Filesystem path segment files live under.
	log     *zap.SugaredLogger    // Structured logger for lifecycle events.
	entries map[string]ValueIndex // Core key -> location mapping.
	mu      sync.RWMutex          // Protects entries against concurrent access.
	closed  atomic.Bool           // Marks the index unusable after Close.
}

// Config holds the parameters needed to construct an Index.
type Config struct {
	DataDir string
	Logger  *zap.SugaredLogger
}
