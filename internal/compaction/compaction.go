// Package compaction tracks per-segment garbage accounting and decides when
// a segment has accumulated enough dead records to be worth rewriting.
//
// It deliberately owns no file I/O and no index state: SegmentStats is pure
// bookkeeping maintained by internal/storage as records are appended and
// superseded, and Policy is a pure threshold check. The rewrite itself:
// draining a segment's live records into the active segment and deleting
// the drained file, is orchestrated by internal/engine, which is the only
// component that can see both the index and the storage layer at once.
package compaction

// SegmentStats counts, for one segment, how many records it holds in total
// and how many of those are no longer live: superseded Sets, every Remove,
// or a Set whose key was later removed.
type SegmentStats struct {
	Len     uint64
	Garbage uint64
}

// EffectiveLen is the number of records in the segment still reachable from
// the index. It must always equal the number of index entries pointing at
// this segment.
func (s SegmentStats) EffectiveLen() uint64 {
	return s.Len - s.Garbage
}

// GarbageRate is the fraction of the segment's records that are dead.
// Undefined (reported as zero) for an empty segment.
func (s SegmentStats) GarbageRate() float64 {
	if s.Len == 0 {
		return 0
	}
	return float64(s.Garbage) / float64(s.Len)
}

// Policy decides, from a segment's stats alone, whether the segment is
// worth compacting.
type Policy struct {
	// Threshold is the garbage rate above which a segment qualifies for
	// compaction. The reference value is 0.618.
	Threshold float64
}

// NewPolicy builds a Policy with the given garbage-rate threshold.
func NewPolicy(threshold float64) Policy {
	return Policy{Threshold: threshold}
}

// ShouldCompact reports whether stats crosses the policy's threshold.
// An empty segment (Len == 0) never qualifies, since its garbage rate is
// undefined rather than zero.
func (p Policy) ShouldCompact(stats SegmentStats) bool {
	return stats.Len > 0 && stats.GarbageRate() > p.Threshold
}
