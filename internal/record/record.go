// Package record implements the self-delimiting command encoding that every
// segment file is made of. A segment is nothing more than the concatenation
// of encoded Command values with no separator and no framing: each value is
// a complete JSON object, and JSON objects are self-delimiting (the decoder
// knows a value has ended the instant it sees the matching closing brace),
// so no newline or length prefix is needed between records.
package record

import (
	"encoding/json"
	"io"

	"github.com/ignitedb/ignitedb/pkg/errors"
)

// Kind identifies which command variant a record carries.
type Kind string

const (
	KindSet    Kind = "set"
	KindRemove Kind = "remove"
)

// Command is the tagged union persisted to a segment file: either a Set of
// a key to a value, or a Remove of a key. Value is omitted from the wire
// encoding of a Remove so that removal records stay minimal.
type Command struct {
	Kind  Kind   `json:"kind"`
	Key   string `json:"key"`
	Value string `json:"value,omitempty"`
}

// NewSet builds a Set command.
func NewSet(key, value string) Command {
	return Command{Kind: KindSet, Key: key, Value: value}
}

// NewRemove builds a Remove command.
func NewRemove(key string) Command {
	return Command{Kind: KindRemove, Key: key}
}

// IsSet reports whether the command is a Set.
func (c Command) IsSet() bool { return c.Kind == KindSet }

// IsRemove reports whether the command is a Remove.
func (c Command) IsRemove() bool { return c.Kind == KindRemove }

// Encoder serializes commands to a writer with no separator between
// records: record N+1 starts at the byte immediately following record N.
type Encoder struct {
	w io.Writer
}

// NewEncoder wraps w for command encoding.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: w}
}

// Encode marshals cmd and writes it, returning the number of bytes written
// so callers can advance a position counter without a second stat/seek.
func (e *Encoder) Encode(cmd Command) (int, error) {
	data, err := json.Marshal(cmd)
	if err != nil {
		return 0, errors.NewCodecError(err, errors.ErrorCodeCodecEncode, "failed to marshal command record").
			WithDetail("kind", string(cmd.Kind)).
			WithDetail("key", cmd.Key)
	}

	n, err := e.w.Write(data)
	if err != nil {
		return n, errors.NewCodecError(err, errors.ErrorCodeCodecEncode, "failed to write command record").
			WithDetail("kind", string(cmd.Kind)).
			WithDetail("key", cmd.Key)
	}

	return n, nil
}

// Positioned pairs a decoded command with the exact byte range it occupied
// in the stream it was read from.
type Positioned struct {
	Command Command
	Head    int64
	Tail    int64
}

// Decoder streams commands out of a reader, tracking the byte offset of the
// end of each decoded record. That offset is the `tail` half of the
// `(head, tail)` range index entries are built from, during both recovery
// replay and compaction's re-scan of a segment being drained.
type Decoder struct {
	dec *json.Decoder
}

// NewDecoder wraps r for streaming command decode starting at whatever byte
// position r itself is positioned at (the caller is expected to have seeked
// to the start of the region it wants decoded).
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{dec: json.NewDecoder(r)}
}

// Decode reads the next command from the stream. It returns io.EOF,
// unwrapped, when the stream is exhausted cleanly between records: the
// sentinel callers range over to know when replay is complete. Any other
// decode failure, including a partially-written trailing record, is
// surfaced as a CodecError and is fatal to the caller's recovery pass.
func (d *Decoder) Decode() (Positioned, error) {
	offsetBefore := d.dec.InputOffset()

	var cmd Command
	if err := d.dec.Decode(&cmd); err != nil {
		if err == io.EOF {
			return Positioned{}, io.EOF
		}
		return Positioned{}, errors.NewCodecError(
			err, errors.ErrorCodeCodecDecode, "failed to decode command record",
		).WithOffset(int(offsetBefore))
	}

	return Positioned{Command: cmd, Head: offsetBefore, Tail: d.dec.InputOffset()}, nil
}

// DecodeOne decodes exactly one command from a byte range already sliced
// out of a segment (the `[head, tail)` range an index entry points at).
// This is the read-path counterpart to streaming Decode: random-access gets
// never need a stream position, only the decoded command itself.
func DecodeOne(data []byte) (Command, error) {
	var cmd Command
	if err := json.Unmarshal(data, &cmd); err != nil {
		return Command{}, errors.NewCodecError(err, errors.ErrorCodeCodecDecode, "failed to decode command record")
	}
	return cmd, nil
}
