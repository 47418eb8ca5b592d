package errors

import stdErrors "errors"

// CodecError is a specialized error type for command-record encode/decode
// failures. It embeds baseError to inherit chaining and structured details,
// then adds the location context needed to tell a caller which segment and
// byte offset produced an undecodable record.
type CodecError struct {
	*baseError
	segmentId int // Segment the record was being read from or written to.
	offset    int // Byte offset of the record within the segment.
}

// NewCodecError creates a new codec-specific error.
func NewCodecError(err error, code ErrorCode, msg string) *CodecError {
	return &CodecError{baseError: NewBaseError(err, code, msg)}
}

// WithSegmentID records which segment was involved in the failure.
func (ce *CodecError) WithSegmentID(id int) *CodecError {
	ce.segmentId = id
	return ce
}

// WithOffset records the byte offset of the offending record.
func (ce *CodecError) WithOffset(offset int) *CodecError {
	ce.offset = offset
	return ce
}

// SegmentID returns the segment identifier involved in the failure.
func (ce *CodecError) SegmentID() int {
	return ce.segmentId
}

// Offset returns the byte offset of the offending record.
func (ce *CodecError) Offset() int {
	return ce.offset
}

// IsCodecError checks if the given error is a CodecError or contains one in
// its error chain.
func IsCodecError(err error) bool {
	var ce *CodecError
	return stdErrors.As(err, &ce)
}

// AsCodecError extracts CodecError context from an error chain.
func AsCodecError(err error) (*CodecError, bool) {
	var ce *CodecError
	if stdErrors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}
