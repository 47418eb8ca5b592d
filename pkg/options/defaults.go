package options

import "time"

const (
	// DefaultDataDir specifies the default base directory where ignitedb
	// will store its data files, rooted beneath the process's current
	// working directory per the on-disk layout.
	DefaultDataDir = "."

	// DefaultCompactInterval defines the default time duration recorded
	// between (currently unscheduled) automatic compaction sweeps.
	DefaultCompactInterval = time.Hour * 5

	// DefaultMaxRecordsPerSegment is the reference record-count rotation
	// threshold: a segment rotates once it holds this many records.
	DefaultMaxRecordsPerSegment uint64 = 1024 * 10

	// DefaultCompactionThreshold is the reference garbage-rate threshold
	// above which a segment qualifies for compaction.
	DefaultCompactionThreshold float64 = 0.618

	// DefaultSegmentDirectory is the default subdirectory, relative to
	// DataDir, where segment files are stored.
	DefaultSegmentDirectory = "kvs.store"

	// DefaultSegmentPrefix is the default label used in log messages about
	// the segment directory.
	DefaultSegmentPrefix = "segment"
)

// defaultOptions holds the default configuration settings for an ignitedb
// instance.
var defaultOptions = Options{
	DataDir:             DefaultDataDir,
	CompactInterval:     DefaultCompactInterval,
	CompactionThreshold: DefaultCompactionThreshold,
	SegmentOptions: &segmentOptions{
		MaxRecordsPerSegment: DefaultMaxRecordsPerSegment,
		Prefix:               DefaultSegmentPrefix,
		Directory:            DefaultSegmentDirectory,
	},
}

// NewDefaultOptions returns a fresh copy of ignitedb's default options.
func NewDefaultOptions() Options {
	opts := defaultOptions
	segCopy := *defaultOptions.SegmentOptions
	opts.SegmentOptions = &segCopy
	return opts
}
