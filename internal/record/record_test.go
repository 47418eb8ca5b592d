package record

import (
	"bytes"
	"io"
	"testing"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	cases := []Command{
		NewSet("k1", "v1"),
		NewSet("k2", ""),
		NewRemove("k1"),
	}

	var buf bytes.Buffer
	enc := NewEncoder(&buf)
	for _, cmd := range cases {
		if _, err := enc.Encode(cmd); err != nil {
			t.Fatalf("Encode(%+v): %v", cmd, err)
		}
	}

	dec := NewDecoder(&buf)
	for i, want := range cases {
		got, err := dec.Decode()
		if err != nil {
			t.Fatalf("Decode() #%d: %v", i, err)
		}
		if got.Command != want {
			t.Fatalf("Decode() #%d = %+v, want %+v", i, got.Command, want)
		}
	}

	if _, err := dec.Decode(); err != io.EOF {
		t.Fatalf("Decode() at end = %v, want io.EOF", err)
	}
}

func TestEncodeNoSeparator(t *testing.T) {
	var buf bytes.Buffer
	enc := NewEncoder(&buf)
	if _, err := enc.Encode(NewSet("a", "1")); err != nil {
		t.Fatal(err)
	}
	if _, err := enc.Encode(NewSet("b", "2")); err != nil {
		t.Fatal(err)
	}

	if bytes.ContainsRune(buf.Bytes(), '\n') {
		t.Fatalf("encoded stream contains a separator byte: %q", buf.Bytes())
	}
}

func TestDecoderTracksOffsets(t *testing.T) {
	var buf bytes.Buffer
	enc := NewEncoder(&buf)
	n1, _ := enc.Encode(NewSet("k1", "v1"))
	n2, _ := enc.Encode(NewSet("k2", "v2"))

	dec := NewDecoder(&buf)

	first, err := dec.Decode()
	if err != nil {
		t.Fatal(err)
	}
	if first.Head != 0 || first.Tail != int64(n1) {
		t.Fatalf("first record range = [%d,%d), want [0,%d)", first.Head, first.Tail, n1)
	}

	second, err := dec.Decode()
	if err != nil {
		t.Fatal(err)
	}
	if second.Head != first.Tail || second.Tail != int64(n1+n2) {
		t.Fatalf("second record range = [%d,%d), want [%d,%d)", second.Head, second.Tail, first.Tail, n1+n2)
	}
}

func TestDecodeOne(t *testing.T) {
	var buf bytes.Buffer
	if _, err := NewEncoder(&buf).Encode(NewSet("k", "v")); err != nil {
		t.Fatal(err)
	}

	cmd, err := DecodeOne(buf.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	if cmd != NewSet("k", "v") {
		t.Fatalf("DecodeOne() = %+v, want Set(k,v)", cmd)
	}
}

func TestDecodeTrailingPartialRecordFails(t *testing.T) {
	var buf bytes.Buffer
	enc := NewEncoder(&buf)
	if _, err := enc.Encode(NewSet("k", "v")); err != nil {
		t.Fatal(err)
	}

	truncated := buf.Bytes()[:buf.Len()-2]
	dec := NewDecoder(bytes.NewReader(truncated))

	if _, err := dec.Decode(); err == nil {
		t.Fatal("Decode() on truncated record succeeded, want error")
	}
}
