package storage

import (
	"os"
	"sync"
	"sync/atomic"

	"github.com/ignitedb/ignitedb/internal/compaction"
	"github.com/ignitedb/ignitedb/internal/record"
	"github.com/ignitedb/ignitedb/pkg/options"
	"go.uber.org/zap"
)

// segmentHandle bundles everything the store keeps open for one on-disk
// segment file: its read handle (always open, used for both ReadAt random
// access and full sequential replay) and, only for the active segment, a
// second handle opened for append plus the writer's own position counter.
type segmentHandle struct {
	id     uint64
	writer *os.File // nil for every segment except the active one.
	reader *os.File // open for the lifetime of the store, used by ReadAt.
	pos    int64    // logical end-of-file offset; meaningful only while writer != nil.
	stats  compaction.SegmentStats
}

// Storage owns every segment file on disk: creating and rotating the
// active segment, appending records to it with precise position tracking,
// and serving random-access reads against any segment through a small pool
// of open readers. It keeps no per-key state: internal/engine is the only
// component that understands both storage and the index at once.
type Storage struct {
	mu       sync.Mutex
	options  *options.Options
	log      *zap.SugaredLogger
	closed   atomic.Bool
	root     string // <DataDir>/<SegmentOptions.Directory>
	segments map[uint64]*segmentHandle
	activeID uint64
}

// Config holds the parameters required to open a Storage instance.
type Config struct {
	Options *options.Options
	Logger  *zap.SugaredLogger

	// OnRecord is invoked once per command decoded during recovery replay,
	// in ascending segment id and byte-offset order. The callee is
	// responsible for index reconstruction and for calling MarkGarbage on
	// whichever segment(s) the record's accounting rules require; Storage
	// itself only tracks unconditional per-segment record counts.
	OnRecord func(segmentID uint64, pos record.Positioned) error
}
