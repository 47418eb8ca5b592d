// Package seginfo enumerates and names segment files on disk.
//
// Filename format: a segment file's name is the bare decimal string of its
// positive integer id: no prefix, no timestamp, no extension. This is a
// deliberate break from a zero-padded-prefix-timestamp naming scheme:
// sorting must be done by parsed numeric value, not lexicographically,
// since "9" would otherwise sort after "10".
//
// Example filenames: 1, 2, 3, 42, 1000.
package seginfo

import (
	"os"
	"path/filepath"
	"slices"
	"strconv"

	"github.com/ignitedb/ignitedb/pkg/errors"
)

// GenerateName returns the on-disk filename for segment id.
func GenerateName(id uint64) string {
	return strconv.FormatUint(id, 10)
}

// ParseSegmentID parses a bare filename as a segment id. It returns
// (0, false) for filenames that are not purely decimal digits, which
// callers use to silently skip non-numeric directory entries (forward
// compatibility for future metadata files).
func ParseSegmentID(filename string) (uint64, bool) {
	id, err := strconv.ParseUint(filename, 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

// ListSegmentIDs enumerates dir's entries, keeps only those whose filename
// parses as a positive integer, and returns their ids sorted ascending by
// numeric value. Non-numeric entries are ignored, not reported as errors.
func ListSegmentIDs(dir string) ([]uint64, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.NewStorageError(
			err, errors.ErrorCodeIO, "Failed to read segment directory",
		).WithPath(dir).WithDetail("operation", "list_segments")
	}

	ids := make([]uint64, 0, len(entries))
	seen := make(map[uint64]string, len(entries))

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		id, ok := ParseSegmentID(entry.Name())
		if !ok || id == 0 {
			continue
		}

		if prior, dup := seen[id]; dup {
			return nil, errors.NewStorageError(
				nil, errors.ErrorCodeParseSegmentID,
				"Two segment filenames parsed to the same segment id",
			).WithPath(dir).
				WithDetail("segmentId", id).
				WithDetail("first", prior).
				WithDetail("second", entry.Name())
		}
		seen[id] = entry.Name()

		ids = append(ids, id)
	}

	slices.Sort(ids)
	return ids, nil
}

// SegmentPath joins dir and id into the full path of a segment file.
func SegmentPath(dir string, id uint64) string {
	return filepath.Join(dir, GenerateName(id))
}
