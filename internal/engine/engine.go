// Package engine implements the write path, read path, and compaction
// algorithm of ignitedb's storage core. It is the only component that
// holds both the in-memory index and the on-disk segment layer at once,
// so it is also the only place the garbage-accounting rules that tie them
// together can live: every Set, Remove, and recovery-time replay goes
// through the same bookkeeping, and compaction rewrites a segment's live
// records by recursing back into the engine's own Set.
package engine

import (
	"context"
	stdErrors "errors"
	"fmt"
	"sync/atomic"

	"github.com/ignitedb/ignitedb/internal/compaction"
	"github.com/ignitedb/ignitedb/internal/index"
	"github.com/ignitedb/ignitedb/internal/record"
	"github.com/ignitedb/ignitedb/internal/storage"
	"github.com/ignitedb/ignitedb/pkg/errors"
	"github.com/ignitedb/ignitedb/pkg/options"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

var (
	// ErrEngineClosed is returned when attempting to perform operations on a closed engine.
	ErrEngineClosed = stdErrors.New("operation failed: cannot access closed engine")
)

// Engine coordinates the index and storage subsystems that together
// implement a durable key-value store. It is the single entry point for
// Set, Remove, and Get, and owns the compaction policy that decides when
// a segment has accumulated enough garbage to rewrite.
type Engine struct {
	options *options.Options
	log     *zap.SugaredLogger
	closed  atomic.Bool
	index   *index.Index
	storage *storage.Storage
	policy  compaction.Policy
}

// Config holds the parameters needed to initialize a new Engine instance.
type Config struct {
	Options *options.Options
	Logger  *zap.SugaredLogger
}

// New opens the store rooted at config.Options.DataDir, replaying existing
// segments to rebuild the index before returning.
func New(ctx context.Context, config *Config) (*Engine, error) {
	if config == nil || config.Options == nil || config.Logger == nil {
		return nil, fmt.Errorf("invalid engine configuration")
	}

	idx, err := index.New(ctx, &index.Config{DataDir: config.Options.DataDir, Logger: config.Logger})
	if err != nil {
		return nil, err
	}

	e := &Engine{
		options: config.Options,
		log:     config.Logger,
		index:   idx,
		policy:  compaction.NewPolicy(config.Options.CompactionThreshold),
	}

	store, err := storage.Open(ctx, &storage.Config{
		Options:  config.Options,
		Logger:   config.Logger,
		OnRecord: e.applyRecoveredRecord,
	})
	if err != nil {
		return nil, err
	}
	e.storage = store

	return e, nil
}

// applyRecoveredRecord replays one record during Open, applying the same
// garbage-accounting rules the live write path uses, so recovery produces
// identical counters to replaying the same operations through Set/Remove.
func (e *Engine) applyRecoveredRecord(segmentID uint64, pos record.Positioned) error {
	switch pos.Command.Kind {
	case record.KindSet:
		if old, ok := e.index.Get(pos.Command.Key); ok {
			if err := e.storage.MarkGarbage(old.SegmentID, 1); err != nil {
				return err
			}
		}
		e.index.Put(pos.Command.Key, index.ValueIndex{SegmentID: segmentID, Head: pos.Head, Tail: pos.Tail})
		return nil

	case record.KindRemove:
		if old, ok := e.index.Get(pos.Command.Key); ok {
			if err := e.storage.MarkGarbage(old.SegmentID, 1); err != nil {
				return err
			}
			e.index.Delete(pos.Command.Key)
		} else {
			e.log.Warnw(
				"Recovery found a Remove record for a key absent from the index",
				"key", pos.Command.Key, "segmentID", segmentID,
			)
		}
		// The remove record itself is unrecoverable garbage from the moment
		// it was written, regardless of whether the key it named was live.
		return e.storage.MarkGarbage(segmentID, 1)

	default:
		return errors.NewStorageError(
			nil, errors.ErrorCodeSegmentCorrupted, "Unknown command kind encountered during recovery",
		).WithSegmentID(int(segmentID))
	}
}

// Set stores key -> value durably, rotating and compacting segments as
// needed.
func (e *Engine) Set(key, value string) error {
	if e.closed.Load() {
		return ErrEngineClosed
	}

	if e.storage.NeedsRotation() {
		if err := e.storage.Rotate(); err != nil {
			return err
		}
	}

	head, tail, err := e.storage.Append(record.NewSet(key, value))
	if err != nil {
		return err
	}
	active := e.storage.ActiveSegmentID()

	old, hadOld := e.index.Get(key)
	if hadOld {
		if err := e.storage.MarkGarbage(old.SegmentID, 1); err != nil {
			return err
		}
	}

	e.index.Put(key, index.ValueIndex{SegmentID: active, Head: head, Tail: tail})

	return e.maybeCompact(hadOld, old.SegmentID, active)
}

// Remove deletes key. It fails with errors.ErrKeyNotFound, without
// touching disk or counters, if key has no live entry.
func (e *Engine) Remove(key string) error {
	if e.closed.Load() {
		return ErrEngineClosed
	}

	old, ok := e.index.Get(key)
	if !ok {
		return errors.ErrKeyNotFound
	}

	if e.storage.NeedsRotation() {
		if err := e.storage.Rotate(); err != nil {
			return err
		}
	}

	if _, _, err := e.storage.Append(record.NewRemove(key)); err != nil {
		return err
	}
	active := e.storage.ActiveSegmentID()

	if old.SegmentID == active {
		// Both the prior Set and this Remove are dead the instant the
		// Remove lands: two garbage records in the same segment.
		if err := e.storage.MarkGarbage(active, 2); err != nil {
			return err
		}
	} else {
		if err := e.storage.MarkGarbage(active, 1); err != nil {
			return err
		}
		if err := e.storage.MarkGarbage(old.SegmentID, 1); err != nil {
			return err
		}
	}

	e.index.Delete(key)

	return e.maybeCompact(true, old.SegmentID, active)
}

// Get returns key's current value and whether it was found. A missing key
// is not an error.
func (e *Engine) Get(key string) (string, bool, error) {
	if e.closed.Load() {
		return "", false, ErrEngineClosed
	}

	vi, ok := e.index.Get(key)
	if !ok {
		return "", false, nil
	}

	value, err := e.storage.ReadValue(key, vi)
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

// maybeCompact runs at most one compaction per write: the old segment a
// key's previous value lived in is preferred over the active segment when
// both qualify.
func (e *Engine) maybeCompact(hadOld bool, oldSegment, active uint64) error {
	if hadOld {
		if stats, ok := e.storage.SegmentStats(oldSegment); ok && e.policy.ShouldCompact(stats) {
			return e.compact(oldSegment)
		}
	}

	if stats, ok := e.storage.SegmentStats(active); ok && e.policy.ShouldCompact(stats) {
		return e.compact(active)
	}

	return nil
}

// liveRecord is a Set whose current index entry still points into the
// segment being compacted.
type liveRecord struct {
	key   string
	value string
}

// compact rewrites segmentID's still-live Set records at the tail of the
// active segment (rotating first if segmentID is itself active and not
// yet full) and deletes the drained file. Re-entrant: the inner Set calls
// may themselves trigger rotation or a different segment's compaction,
// which terminates because each compaction permanently removes one
// segment from the store.
func (e *Engine) compact(segmentID uint64) error {
	if segmentID == e.storage.ActiveSegmentID() && !e.storage.NeedsRotation() {
		if err := e.storage.Rotate(); err != nil {
			return err
		}
	}

	var live []liveRecord
	err := e.storage.ReplaySegment(segmentID, func(pos record.Positioned) error {
		if !pos.Command.IsSet() {
			return nil
		}

		current, ok := e.index.Get(pos.Command.Key)
		if !ok || current.SegmentID != segmentID || current.Head != pos.Head || current.Tail != pos.Tail {
			return nil
		}

		live = append(live, liveRecord{key: pos.Command.Key, value: pos.Command.Value})
		return nil
	})
	if err != nil {
		return err
	}

	stats, ok := e.storage.SegmentStats(segmentID)
	if !ok {
		return errors.NewStorageError(
			nil, errors.ErrorCodeCompactionInconsistent, "Segment disappeared mid-compaction",
		).WithSegmentID(int(segmentID))
	}
	if uint64(len(live)) != stats.EffectiveLen() {
		return errors.NewStorageError(
			nil, errors.ErrorCodeCompactionInconsistent,
			"Scanned live-record count disagrees with segment's own garbage accounting",
		).WithSegmentID(int(segmentID)).
			WithDetail("liveCount", len(live)).
			WithDetail("effectiveLen", stats.EffectiveLen())
	}
	if inIndex := e.index.CountBySegment(segmentID); uint64(inIndex) != stats.EffectiveLen() {
		return errors.NewStorageError(
			nil, errors.ErrorCodeCompactionInconsistent,
			"Index entries pointing at segment disagree with segment's own garbage accounting",
		).WithSegmentID(int(segmentID)).
			WithDetail("indexCount", inIndex).
			WithDetail("effectiveLen", stats.EffectiveLen())
	}

	e.log.Infow(
		"Compacting segment", "segmentID", segmentID, "liveRecords", len(live), "garbageRate", stats.GarbageRate(),
	)

	for _, entry := range live {
		// Dropping the index entry before the recursive Set ensures the
		// rewrite is seen as a fresh key, so no garbage is attributed to
		// the segment about to be deleted.
		e.index.Delete(entry.key)
		if err := e.Set(entry.key, entry.value); err != nil {
			return err
		}
	}

	if err := e.storage.DropSegment(segmentID); err != nil {
		return err
	}

	e.log.Infow("Compaction complete", "segmentID", segmentID)
	return nil
}

// Close gracefully shuts down the engine, closing storage and index and
// aggregating any failures from either.
func (e *Engine) Close() error {
	if !e.closed.CompareAndSwap(false, true) {
		return ErrEngineClosed
	}

	var closeErr error
	closeErr = multierr.Append(closeErr, e.storage.Close())
	closeErr = multierr.Append(closeErr, e.index.Close())
	return closeErr
}
