package protocol

import (
	"bytes"
	"io"
	"testing"
)

func TestEncodeRejectsOversizedFrame(t *testing.T) {
	f := NewProduce("t", make([]byte, 100))
	if _, err := Encode(f, 10); err == nil {
		t.Fatal("Encode: expected error for frame exceeding maxFrameLength")
	}
}

func TestDecoderNeedsMoreBytes(t *testing.T) {
	dec := NewDecoder(DefaultMaxFrameLength)
	dec.Feed([]byte{0, 0})
	if _, ok, err := dec.Next(); ok || err != nil {
		t.Fatalf("Next() with partial length prefix = (ok=%v, err=%v), want (false, nil)", ok, err)
	}
}

func TestDecoderRejectsOversizedLength(t *testing.T) {
	dec := NewDecoder(10)
	big := make([]byte, 4)
	big[0], big[1], big[2], big[3] = 0, 0, 0, 200
	dec.Feed(big)
	if _, _, err := dec.Next(); err == nil {
		t.Fatal("Next(): expected Protocol error for a declared length over the cap")
	}
}

// TestFramingResilience encodes a sequence of frames back to back and feeds
// the resulting byte stream to a Decoder in arbitrary chunk sizes, verifying
// the same sequence of frames is recovered regardless of chunking (spec
// property 7).
func TestFramingResilience(t *testing.T) {
	want := []Frame{
		NewProduce("t1", []byte{1, 2, 3}),
		Ping(),
		NewConsume("t1", 0, 5),
		NewResponseOK([]byte("hi"), "ok"),
		Pong(),
		NewConsumeNext("t2", 2),
	}

	var stream []byte
	for _, f := range want {
		encoded, err := Encode(f, DefaultMaxFrameLength)
		if err != nil {
			t.Fatalf("Encode: %v", err)
		}
		stream = append(stream, encoded...)
	}

	for _, chunkSize := range []int{1, 2, 3, 7, 16, 4096, len(stream)} {
		chunkSize := chunkSize
		t.Run("", func(t *testing.T) {
			dec := NewDecoder(DefaultMaxFrameLength)
			var got []Frame
			r := bytes.NewReader(stream)
			buf := make([]byte, chunkSize)
			for {
				frame, ok, err := dec.Next()
				if err != nil {
					t.Fatalf("Next: %v", err)
				}
				if ok {
					got = append(got, frame)
					continue
				}
				n, rerr := r.Read(buf)
				if n > 0 {
					dec.Feed(buf[:n])
				}
				if rerr == io.EOF {
					break
				}
				if rerr != nil {
					t.Fatalf("Read: %v", rerr)
				}
			}

			if len(got) != len(want) {
				t.Fatalf("chunk size %d: got %d frames, want %d", chunkSize, len(got), len(want))
			}
			for i := range want {
				if !want[i].Equal(got[i]) {
					t.Errorf("chunk size %d: frame %d mismatch: got %+v, want %+v", chunkSize, i, got[i], want[i])
				}
			}
		})
	}
}

func TestFrameReaderWriterRoundtrip(t *testing.T) {
	var buf bytes.Buffer
	fw := NewFrameWriter(&buf, DefaultMaxFrameLength)
	fr := NewFrameReader(&buf, DefaultMaxFrameLength)

	frames := []Frame{NewProduce("t", []byte("x")), Ping(), NewResponseError("nope")}
	for _, f := range frames {
		if err := fw.WriteFrame(f); err != nil {
			t.Fatalf("WriteFrame: %v", err)
		}
	}
	for i, want := range frames {
		got, err := fr.ReadFrame()
		if err != nil {
			t.Fatalf("ReadFrame #%d: %v", i, err)
		}
		if !want.Equal(got) {
			t.Errorf("ReadFrame #%d = %+v, want %+v", i, got, want)
		}
	}
}
