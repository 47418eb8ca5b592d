package storage

import (
	"context"
	"testing"

	"github.com/ignitedb/ignitedb/internal/compaction"
	"github.com/ignitedb/ignitedb/internal/index"
	"github.com/ignitedb/ignitedb/internal/record"
	"github.com/ignitedb/ignitedb/pkg/options"
	"go.uber.org/zap"
)

func newTestOptions(t *testing.T, maxRecords uint64) *options.Options {
	t.Helper()
	opts := options.NewDefaultOptions()
	opts.DataDir = t.TempDir()
	opts.SegmentOptions.MaxRecordsPerSegment = maxRecords
	return &opts
}

func openTestStorage(t *testing.T, opts *options.Options, onRecord func(uint64, record.Positioned) error) *Storage {
	t.Helper()
	st, err := Open(context.Background(), &Config{Options: opts, Logger: zap.NewNop().Sugar(), OnRecord: onRecord})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	return st
}

func TestOpenBootstrapsSegmentOne(t *testing.T) {
	st := openTestStorage(t, newTestOptions(t, 10), nil)
	defer st.Close()

	if got := st.ActiveSegmentID(); got != 1 {
		t.Fatalf("ActiveSegmentID() = %d, want 1", got)
	}
	stats, ok := st.SegmentStats(1)
	if !ok || stats != (compaction.SegmentStats{}) {
		t.Fatalf("SegmentStats(1) = %+v, %v, want zero stats", stats, ok)
	}
}

func TestAppendAndReadValueRoundTrip(t *testing.T) {
	st := openTestStorage(t, newTestOptions(t, 10), nil)
	defer st.Close()

	head, tail, err := st.Append(record.NewSet("k1", "v1"))
	if err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if head != 0 || tail <= head {
		t.Fatalf("Append() = (%d, %d), want head 0 and tail > head", head, tail)
	}

	value, err := st.ReadValue("k1", index.ValueIndex{SegmentID: 1, Head: head, Tail: tail})
	if err != nil {
		t.Fatalf("ReadValue() error = %v", err)
	}
	if value != "v1" {
		t.Fatalf("ReadValue() = %q, want %q", value, "v1")
	}
}

func TestAppendAdvancesLenAndNeedsRotation(t *testing.T) {
	st := openTestStorage(t, newTestOptions(t, 2), nil)
	defer st.Close()

	if st.NeedsRotation() {
		t.Fatal("NeedsRotation() true on empty segment")
	}

	if _, _, err := st.Append(record.NewSet("a", "1")); err != nil {
		t.Fatal(err)
	}
	if _, _, err := st.Append(record.NewSet("b", "1")); err != nil {
		t.Fatal(err)
	}

	if !st.NeedsRotation() {
		t.Fatal("NeedsRotation() false after reaching MaxRecordsPerSegment")
	}
}

func TestRotateOpensNewActiveSegment(t *testing.T) {
	st := openTestStorage(t, newTestOptions(t, 1), nil)
	defer st.Close()

	if _, _, err := st.Append(record.NewSet("a", "1")); err != nil {
		t.Fatal(err)
	}
	if err := st.Rotate(); err != nil {
		t.Fatalf("Rotate() error = %v", err)
	}

	if got := st.ActiveSegmentID(); got != 2 {
		t.Fatalf("ActiveSegmentID() after Rotate() = %d, want 2", got)
	}

	head, tail, err := st.Append(record.NewSet("b", "2"))
	if err != nil {
		t.Fatal(err)
	}
	value, err := st.ReadValue("b", index.ValueIndex{SegmentID: 2, Head: head, Tail: tail})
	if err != nil {
		t.Fatal(err)
	}
	if value != "2" {
		t.Fatalf("ReadValue() on rotated segment = %q, want %q", value, "2")
	}
}

func TestMarkGarbageAndStats(t *testing.T) {
	st := openTestStorage(t, newTestOptions(t, 10), nil)
	defer st.Close()

	if _, _, err := st.Append(record.NewSet("a", "1")); err != nil {
		t.Fatal(err)
	}
	if err := st.MarkGarbage(1, 1); err != nil {
		t.Fatalf("MarkGarbage() error = %v", err)
	}

	stats, ok := st.SegmentStats(1)
	if !ok {
		t.Fatal("SegmentStats(1) not found")
	}
	if stats.Len != 1 || stats.Garbage != 1 {
		t.Fatalf("SegmentStats(1) = %+v, want Len=1 Garbage=1", stats)
	}
	if stats.EffectiveLen() != 0 {
		t.Fatalf("EffectiveLen() = %d, want 0", stats.EffectiveLen())
	}
}

func TestOpenReplaysExistingSegments(t *testing.T) {
	opts := newTestOptions(t, 10)

	st := openTestStorage(t, opts, nil)
	if _, _, err := st.Append(record.NewSet("k1", "v1")); err != nil {
		t.Fatal(err)
	}
	if _, _, err := st.Append(record.NewSet("k2", "v2")); err != nil {
		t.Fatal(err)
	}
	if err := st.Close(); err != nil {
		t.Fatal(err)
	}

	var replayed []record.Command
	reopened := openTestStorage(t, opts, func(segmentID uint64, pos record.Positioned) error {
		replayed = append(replayed, pos.Command)
		return nil
	})
	defer reopened.Close()

	if len(replayed) != 2 {
		t.Fatalf("replayed %d records, want 2", len(replayed))
	}
	if replayed[0].Key != "k1" || replayed[1].Key != "k2" {
		t.Fatalf("replay order = %+v, want k1 then k2", replayed)
	}

	stats, ok := reopened.SegmentStats(1)
	if !ok || stats.Len != 2 {
		t.Fatalf("SegmentStats(1) after reopen = %+v, %v, want Len=2", stats, ok)
	}
}

func TestDropSegmentRemovesFileAndStats(t *testing.T) {
	st := openTestStorage(t, newTestOptions(t, 1), nil)
	defer st.Close()

	if _, _, err := st.Append(record.NewSet("a", "1")); err != nil {
		t.Fatal(err)
	}
	if err := st.Rotate(); err != nil {
		t.Fatal(err)
	}

	if err := st.DropSegment(1); err != nil {
		t.Fatalf("DropSegment() error = %v", err)
	}

	if _, ok := st.SegmentStats(1); ok {
		t.Fatal("SegmentStats(1) still present after DropSegment")
	}
}
