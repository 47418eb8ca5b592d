package index

import (
	"context"
	"testing"

	"go.uber.org/zap"
)

func newTestIndex(t *testing.T) *Index {
	t.Helper()
	idx, err := New(context.Background(), &Config{DataDir: t.TempDir(), Logger: zap.NewNop().Sugar()})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return idx
}

func TestIndexPutGetDelete(t *testing.T) {
	idx := newTestIndex(t)

	if _, ok := idx.Get("k"); ok {
		t.Fatal("Get() on empty index found a key")
	}

	want := ValueIndex{SegmentID: 1, Head: 0, Tail: 10}
	idx.Put("k", want)

	got, ok := idx.Get("k")
	if !ok || got != want {
		t.Fatalf("Get() = %+v, %v, want %+v, true", got, ok, want)
	}

	idx.Delete("k")
	if _, ok := idx.Get("k"); ok {
		t.Fatal("Get() found key after Delete()")
	}
}

func TestIndexCountBySegment(t *testing.T) {
	idx := newTestIndex(t)

	idx.Put("a", ValueIndex{SegmentID: 1})
	idx.Put("b", ValueIndex{SegmentID: 1})
	idx.Put("c", ValueIndex{SegmentID: 2})

	if got := idx.CountBySegment(1); got != 2 {
		t.Fatalf("CountBySegment(1) = %d, want 2", got)
	}
	if got := idx.CountBySegment(2); got != 1 {
		t.Fatalf("CountBySegment(2) = %d, want 1", got)
	}
	if got := idx.Len(); got != 3 {
		t.Fatalf("Len() = %d, want 3", got)
	}
}

func TestIndexCloseIsIdempotentOnce(t *testing.T) {
	idx := newTestIndex(t)
	if err := idx.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := idx.Close(); err != ErrIndexClosed {
		t.Fatalf("second Close() = %v, want ErrIndexClosed", err)
	}
}
