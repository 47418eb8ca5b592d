package errors

// ErrorCode represents a standardized way to categorize different types of errors.
type ErrorCode string

// Base error codes represent the fundamental categories of failures that can
// occur across any software system. These codes provide the foundation layer
// of error classification.
const (
	// ErrorCodeIO represents failures in input/output operations across any
	// system boundary. This includes file system operations like reading or
	// writing segment files, network operations when communicating with remote
	// systems, and device I/O when accessing storage hardware.
	ErrorCodeIO ErrorCode = "IO_ERROR"

	// ErrorCodeInvalidInput represents client-side errors where the provided
	// data doesn't meet the system's requirements or constraints. This maps
	// to HTTP 400-series errors and indicates problems with the request itself
	// rather than system failures.
	ErrorCodeInvalidInput ErrorCode = "INVALID_INPUT"

	// ErrorCodeInternal represents unexpected system failures that don't fit
	// into other categories. These are the equivalent of HTTP 500 errors and
	// indicate bugs, assertion failures, or other programming errors that
	// shouldn't occur during normal operation.
	ErrorCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// Storage-specific error codes extend the base error taxonomy to handle the
// unique failure modes that occur in persistent storage systems. These codes
// represent problems that are specific to the storage layer of your key-value
// store, particularly focusing on segment file management and data persistence.
const (
	// ErrorCodeSegmentCorrupted indicates that a segment file's data has been
	// damaged or is in an inconsistent state.
	ErrorCodeSegmentCorrupted ErrorCode = "SEGMENT_CORRUPTED"

	// ErrorCodeHeaderReadFailure occurs when the system cannot read the header
	// portion of a segment file. Headers contain critical metadata about the
	// segment's structure, so header read failures prevent access to the
	// entire segment and all data it contains.
	ErrorCodeHeaderReadFailure ErrorCode = "HEADER_READ_FAILURE"

	// ErrorCodePayloadReadFailure indicates problems reading the actual data
	// content from segment files after successfully reading the header. This
	// represents a more localized failure compared to header problems, as the
	// segment structure is intact but specific data regions are inaccessible.
	ErrorCodePayloadReadFailure ErrorCode = "PAYLOAD_READ_FAILURE"

	// ErrorCodeRecoveryFailed indicates that the storage system's attempt to
	// recover from a previous failure was unsuccessful. This represents a
	// compound failure where both the original problem and the recovery
	// mechanism have failed, creating a more serious operational situation.
	ErrorCodeRecoveryFailed ErrorCode = "STORAGE_RECOVERY_FAILED"

	// ErrorCodePermissionDenied indicates insufficient permissions to access a resource.
	// This is distinct from generic IO errors because it has a specific resolution path:
	// the user needs to adjust file/directory permissions or run with elevated privileges.
	ErrorCodePermissionDenied ErrorCode = "PERMISSION_DENIED"

	// ErrorCodeDiskFull indicates that the storage device has run out of space.
	// This requires specific handling like cleanup operations or alerting administrators.
	ErrorCodeDiskFull ErrorCode = "DISK_FULL"

	// ErrorCodeFilesystemReadonly indicates that the filesystem is mounted read-only.
	// This requires administrative intervention to remount the filesystem with write permissions.
	ErrorCodeFilesystemReadonly ErrorCode = "FILESYSTEM_READONLY"

	// ErrorCodeParseSegmentID indicates that a directory entry inside the segment
	// directory that was already filtered in as numeric could not be parsed as a
	// segment id after all, or that two segment filenames parsed to the same id.
	ErrorCodeParseSegmentID ErrorCode = "PARSE_SEGMENT_ID"
)

// Index-specific error codes cover failures in the in-memory key directory:
// missing keys, inconsistencies between the index and the segments it points
// into, and failures while deriving index state from segment filenames.
const (
	// ErrorCodeIndexKeyNotFound indicates a lookup or removal was attempted for
	// a key that has no live entry in the index.
	ErrorCodeIndexKeyNotFound ErrorCode = "INDEX_KEY_NOT_FOUND"

	// ErrorCodeIndexInvalidSegmentID indicates an index entry references a
	// segment id that has no corresponding open reader or on-disk file.
	ErrorCodeIndexInvalidSegmentID ErrorCode = "INDEX_INVALID_SEGMENT_ID"

	// ErrorCodeIndexTimestampExtraction indicates a failure while deriving
	// ordering metadata from a segment filename.
	ErrorCodeIndexTimestampExtraction ErrorCode = "INDEX_TIMESTAMP_EXTRACTION"

	// ErrorCodeIndexCorrupted indicates the index no longer agrees with the
	// segment bytes it points into: a decoded record was not the expected
	// Set command, or its key didn't match the index entry's key.
	ErrorCodeIndexCorrupted ErrorCode = "INDEX_CORRUPTED"
)

// Codec-specific error codes cover failures encoding or decoding command
// records, whether during normal writes/reads or while replaying a segment
// at recovery time.
const (
	// ErrorCodeCodecEncode indicates a command could not be serialized.
	ErrorCodeCodecEncode ErrorCode = "CODEC_ENCODE_FAILURE"

	// ErrorCodeCodecDecode indicates a command could not be deserialized,
	// including a clean end-of-stream encountered mid-record.
	ErrorCodeCodecDecode ErrorCode = "CODEC_DECODE_FAILURE"
)

// Compaction-specific error codes cover the rewrite protocol that drains a
// segment's live records into the active segment before deleting it.
const (
	// ErrorCodeCompactionInconsistent indicates the number of live records
	// collected while scanning a segment disagreed with its own garbage
	// accounting: a bug, not a recoverable condition.
	ErrorCodeCompactionInconsistent ErrorCode = "COMPACTION_INCONSISTENT"
)
