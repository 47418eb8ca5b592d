// Package storage manages the on-disk log of segment files that back the
// key-value store: opening or bootstrapping the segment directory, the
// position-tracking active-segment writer, a pool of readers kept
// open across the store's lifetime for random-access gets, and the
// replay mechanics recovery and compaction both build on.
//
// Storage owns files and byte ranges only. It keeps no per-key state: the
// accounting rules that decide which segment a record's bytes count
// against as garbage live in internal/engine, which is the only component
// that can see both the index and the segment layer at once.
package storage

import (
	"context"
	stdErrors "errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ignitedb/ignitedb/internal/compaction"
	"github.com/ignitedb/ignitedb/internal/index"
	"github.com/ignitedb/ignitedb/internal/record"
	"github.com/ignitedb/ignitedb/pkg/errors"
	"github.com/ignitedb/ignitedb/pkg/filesys"
	"github.com/ignitedb/ignitedb/pkg/options"
	"github.com/ignitedb/ignitedb/pkg/seginfo"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

var (
	// ErrStorageClosed is returned when attempting to perform operations on a closed Storage.
	ErrStorageClosed = stdErrors.New("operation failed: cannot access closed storage")
)

// Open performs the store's full bootstrap/recovery sequence: ensure the
// segment directory exists, enumerate existing segments, replay each in
// ascending id order (reporting every decoded record to config.OnRecord),
// and finally promote the highest-id segment to active, ready for appends.
//
// An empty directory bootstraps segment 1 directly, with no replay.
func Open(ctx context.Context, config *Config) (*Storage, error) {
	if config == nil || config.Options == nil || config.Logger == nil {
		return nil, fmt.Errorf("invalid storage configuration")
	}

	root := segmentDirPath(config.Options)
	if err := filesys.CreateDir(root, 0755, true); err != nil {
		return nil, errors.ClassifyDirectoryCreationError(err, root)
	}

	ids, err := seginfo.ListSegmentIDs(root)
	if err != nil {
		return nil, err
	}

	st := &Storage{
		log:      config.Logger,
		options:  config.Options,
		root:     root,
		segments: make(map[uint64]*segmentHandle, len(ids)+1),
	}

	if len(ids) == 0 {
		config.Logger.Infow("No existing segments found, bootstrapping", "path", root, "label", config.Options.SegmentOptions.Prefix)
		if err := st.createSegment(1); err != nil {
			return nil, err
		}
		st.activeID = 1
		return st, nil
	}

	// ids is strictly increasing by construction: seginfo.ListSegmentIDs
	// fails when two filenames parse to the same id and sorts ascending, which is the
	// order replay must happen in for recovery to reconstruct state
	// correctly.
	config.Logger.Infow("Replaying existing segments", "path", root, "label", config.Options.SegmentOptions.Prefix, "count", len(ids))
	for _, id := range ids {
		if err := st.openSegmentForReplay(id); err != nil {
			return nil, err
		}
		if err := st.replayForRecovery(id, config.OnRecord); err != nil {
			return nil, err
		}
	}

	lastID := ids[len(ids)-1]
	if err := st.activateSegment(lastID); err != nil {
		return nil, err
	}
	st.activeID = lastID

	config.Logger.Infow(
		"Storage recovery complete",
		"activeSegmentID", lastID,
		"segmentCount", len(ids),
	)
	return st, nil
}

func segmentDirPath(opts *options.Options) string {
	return filepath.Join(opts.DataDir, opts.SegmentOptions.Directory)
}

// createSegment creates a brand-new, empty segment file and opens both its
// writer and reader handles. Used for the fresh-store bootstrap and for
// rotation, where the target id is always new.
func (s *Storage) createSegment(id uint64) error {
	path := seginfo.SegmentPath(s.root, id)

	name := seginfo.GenerateName(id)

	writer, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0644)
	if err != nil {
		return errors.ClassifyFileOpenError(err, path, name)
	}

	reader, err := os.OpenFile(path, os.O_RDONLY, 0644)
	if err != nil {
		writer.Close()
		return errors.ClassifyFileOpenError(err, path, name)
	}

	s.segments[id] = &segmentHandle{id: id, writer: writer, reader: reader}
	return nil
}

// openSegmentForReplay opens a read-only handle for an existing segment
// file, without yet deciding whether it will become the active segment.
func (s *Storage) openSegmentForReplay(id uint64) error {
	path := seginfo.SegmentPath(s.root, id)

	reader, err := os.OpenFile(path, os.O_RDONLY, 0644)
	if err != nil {
		return errors.ClassifyFileOpenError(err, path, seginfo.GenerateName(id))
	}

	s.segments[id] = &segmentHandle{id: id, reader: reader}
	return nil
}

// activateSegment opens the append handle for an already-discovered
// segment and positions its logical pos counter at the physical
// end-of-file, promoting it to the segment that Append writes to.
func (s *Storage) activateSegment(id uint64) error {
	path := seginfo.SegmentPath(s.root, id)

	writer, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0644)
	if err != nil {
		return errors.ClassifyFileOpenError(err, path, seginfo.GenerateName(id))
	}

	pos, err := writer.Seek(0, io.SeekEnd)
	if err != nil {
		writer.Close()
		return errors.NewStorageError(err, errors.ErrorCodeIO, "Failed to seek to end of active segment").
			WithSegmentID(int(id)).WithPath(path)
	}

	seg := s.segments[id]
	seg.writer = writer
	seg.pos = pos
	return nil
}

// replayForRecovery decodes every record in segment id from the start,
// unconditionally counting each one against the segment's Len, and
// forwarding it to onRecord for index reconstruction.
func (s *Storage) replayForRecovery(id uint64, onRecord func(uint64, record.Positioned) error) error {
	return s.scanSegment(id, func(pos record.Positioned) error {
		seg := s.segments[id]
		seg.stats.Len++

		if onRecord == nil {
			return nil
		}
		return onRecord(id, pos)
	})
}

// ReplaySegment decodes every record in segment id from the start and
// invokes fn for each, without mutating that segment's stats. Used by
// compaction to rebuild the set of still-live records in a segment whose
// Len/Garbage counters were already established by recovery or by live
// writes.
func (s *Storage) ReplaySegment(id uint64, fn func(record.Positioned) error) error {
	return s.scanSegment(id, fn)
}

func (s *Storage) scanSegment(id uint64, fn func(record.Positioned) error) error {
	s.mu.Lock()
	seg, ok := s.segments[id]
	s.mu.Unlock()
	if !ok {
		return errors.NewStorageError(nil, errors.ErrorCodeSegmentCorrupted, "Unknown segment").
			WithSegmentID(int(id))
	}

	if _, err := seg.reader.Seek(0, io.SeekStart); err != nil {
		return errors.NewStorageError(err, errors.ErrorCodeIO, "Failed to seek segment for replay").
			WithSegmentID(int(id))
	}

	dec := record.NewDecoder(seg.reader)
	for {
		pos, err := dec.Decode()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if err := fn(pos); err != nil {
			return err
		}
	}
}

// ActiveSegmentID returns the id of the segment currently receiving appends.
func (s *Storage) ActiveSegmentID() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeID
}

// NeedsRotation reports whether the active segment has reached its
// configured record-count ceiling and must be rotated before the next
// append.
func (s *Storage) NeedsRotation() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.segments[s.activeID].stats.Len >= s.options.SegmentOptions.MaxRecordsPerSegment
}

// Rotate closes out the current active segment (the file itself remains
// open for reads) and opens a fresh one with id+1 as the new active
// segment.
func (s *Storage) Rotate() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.segments[s.activeID]
	newID := s.activeID + 1
	if err := s.createSegment(newID); err != nil {
		return err
	}

	s.log.Infow("Rotated active segment", "previous", s.activeID, "new", newID)
	s.activeID = newID

	// The previous segment keeps only its reader from here on.
	if prev.writer != nil {
		closeErr := prev.writer.Close()
		prev.writer = nil
		if closeErr != nil {
			return errors.NewStorageError(closeErr, errors.ErrorCodeIO, "Failed to close previous active segment writer").
				WithSegmentID(int(prev.id))
		}
	}
	return nil
}

// Append serializes cmd into the active segment and returns the
// `[head, tail)` byte range it occupied. The writer's own pos counter,
// not an OS-reported offset, determines that range: os.File with
// O_APPEND reaches the OS the instant Write returns, so there is no
// userspace buffer to flush and no fsync, matching the store's own
// flush-not-fsync durability policy.
func (s *Storage) Append(cmd record.Command) (head, tail int64, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	seg := s.segments[s.activeID]
	head = seg.pos

	n, err := record.NewEncoder(seg.writer).Encode(cmd)
	if err != nil {
		return 0, 0, err
	}

	seg.pos += int64(n)
	seg.stats.Len++

	return head, seg.pos, nil
}

// MarkGarbage adds n to segmentID's garbage counter. The caller (engine)
// decides when a record has become garbage; Storage just keeps the tally.
func (s *Storage) MarkGarbage(segmentID uint64, n uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	seg, ok := s.segments[segmentID]
	if !ok {
		return errors.NewStorageError(nil, errors.ErrorCodeSegmentCorrupted, "Unknown segment").
			WithSegmentID(int(segmentID))
	}

	seg.stats.Garbage += n
	return nil
}

// SegmentStats returns segmentID's current garbage-accounting counters.
func (s *Storage) SegmentStats(segmentID uint64) (compaction.SegmentStats, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	seg, ok := s.segments[segmentID]
	if !ok {
		return compaction.SegmentStats{}, false
	}
	return seg.stats, true
}

// ReadValue retrieves the value at vi by reading exactly vi.Tail-vi.Head
// bytes at offset vi.Head from the pooled reader for its segment. The
// decoded record must be a Set whose key matches key; any other shape
// means the index has drifted from the bytes it points at, which is fatal
// corruption rather than a recoverable error.
func (s *Storage) ReadValue(key string, vi index.ValueIndex) (string, error) {
	s.mu.Lock()
	seg, ok := s.segments[vi.SegmentID]
	s.mu.Unlock()
	if !ok {
		return "", errors.NewIndexError(
			nil, errors.ErrorCodeIndexInvalidSegmentID, "Index entry references an unknown segment",
		).WithKey(key).WithDetail("segmentId", vi.SegmentID)
	}

	buf := make([]byte, vi.Tail-vi.Head)
	if _, err := seg.reader.ReadAt(buf, vi.Head); err != nil {
		return "", errors.NewStorageError(err, errors.ErrorCodeIO, "Failed to read value bytes").
			WithSegmentID(int(vi.SegmentID)).WithOffset(int(vi.Head))
	}

	cmd, err := record.DecodeOne(buf)
	if err != nil {
		return "", err
	}

	if !cmd.IsSet() || cmd.Key != key {
		return "", errors.NewIndexError(
			nil, errors.ErrorCodeIndexCorrupted, "Index entry does not point at a matching Set record",
		).WithKey(key)
	}

	return cmd.Value, nil
}

// DropSegment closes and deletes segment id entirely, used once compaction
// has drained all of its live records elsewhere.
func (s *Storage) DropSegment(id uint64) error {
	s.mu.Lock()
	seg, ok := s.segments[id]
	if ok {
		delete(s.segments, id)
	}
	s.mu.Unlock()

	if !ok {
		return errors.NewStorageError(nil, errors.ErrorCodeSegmentCorrupted, "Unknown segment").
			WithSegmentID(int(id))
	}

	var closeErr error
	if seg.writer != nil {
		closeErr = multierr.Append(closeErr, seg.writer.Close())
	}
	closeErr = multierr.Append(closeErr, seg.reader.Close())
	if closeErr != nil {
		return errors.NewStorageError(closeErr, errors.ErrorCodeIO, "Failed to close segment before deletion").
			WithSegmentID(int(id))
	}

	path := seginfo.SegmentPath(s.root, id)
	if err := filesys.DeleteFile(path); err != nil {
		return errors.NewStorageError(err, errors.ErrorCodeIO, "Failed to delete drained segment").
			WithSegmentID(int(id)).WithPath(path)
	}

	s.log.Infow("Dropped segment after compaction", "segmentID", id)
	return nil
}

// Close releases every open segment handle.
func (s *Storage) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return ErrStorageClosed
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var closeErr error
	for _, seg := range s.segments {
		if seg.writer != nil {
			closeErr = multierr.Append(closeErr, seg.writer.Close())
		}
		closeErr = multierr.Append(closeErr, seg.reader.Close())
	}

	s.log.Infow("Storage closed")
	return closeErr
}
