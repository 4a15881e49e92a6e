package protocol

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"

	"github.com/dlworhd/meier/internal/brokererr"
)

// DefaultMaxFrameLength is the default cap on a single frame's JSON payload,
// matching spec's 10 MiB default.
const DefaultMaxFrameLength = 10 * 1024 * 1024

const lengthPrefixSize = 4

// Encode serializes f as length-prefixed JSON: a 4-byte big-endian length
// followed by that many bytes of UTF-8 JSON. Returns a Protocol error if the
// encoded frame would exceed maxFrameLength.
func Encode(f Frame, maxFrameLength int) ([]byte, error) {
	payload, err := json.Marshal(f)
	if err != nil {
		return nil, brokererr.Wrap(brokererr.KindProtocol, "failed to encode frame", err)
	}
	if len(payload) > maxFrameLength {
		return nil, brokererr.New(brokererr.KindProtocol, fmt.Sprintf(
			"frame too large: %d bytes (max: %d)", len(payload), maxFrameLength))
	}
	out := make([]byte, lengthPrefixSize+len(payload))
	binary.BigEndian.PutUint32(out, uint32(len(payload)))
	copy(out[lengthPrefixSize:], payload)
	return out, nil
}

// decodeState is the Decoder's current position in the framing state
// machine described in spec §4.5.
type decodeState int

const (
	stateNeedLength decodeState = iota
	stateNeedPayload
)

// Decoder implements the length-prefixed JSON framing state machine over an
// arbitrarily-chunked byte stream: NeedLength while fewer than 4 bytes are
// buffered, NeedPayload(N) once the header is parsed and fewer than N
// payload bytes are buffered, Complete once a full frame is buffered (at
// which point Next consumes it and returns to NeedLength). Feeding any
// encoded byte stream through arbitrary chunk sizes yields the same
// sequence of frames (property 7).
type Decoder struct {
	maxFrameLength int

	state      decodeState
	buf        []byte
	wantLength int
}

// NewDecoder constructs a Decoder with the given maximum frame length.
func NewDecoder(maxFrameLength int) *Decoder {
	return &Decoder{maxFrameLength: maxFrameLength}
}

// Feed appends newly-read bytes to the decoder's internal buffer.
func (d *Decoder) Feed(data []byte) {
	d.buf = append(d.buf, data...)
}

// Next attempts to decode one frame from the buffered bytes. ok is false if
// more bytes are needed before a frame can be produced. An error here is a
// Protocol error (oversized frame or malformed JSON); per spec §9 the caller
// must close the connection rather than continue reading.
func (d *Decoder) Next() (frame Frame, ok bool, err error) {
	for {
		switch d.state {
		case stateNeedLength:
			if len(d.buf) < lengthPrefixSize {
				return Frame{}, false, nil
			}
			length := int(binary.BigEndian.Uint32(d.buf[:lengthPrefixSize]))
			if length > d.maxFrameLength {
				return Frame{}, false, brokererr.New(brokererr.KindProtocol, fmt.Sprintf(
					"frame too large: %d bytes (max: %d)", length, d.maxFrameLength))
			}
			d.wantLength = length
			d.state = stateNeedPayload

		case stateNeedPayload:
			total := lengthPrefixSize + d.wantLength
			if len(d.buf) < total {
				return Frame{}, false, nil
			}
			payload := d.buf[lengthPrefixSize:total]
			// Keep what's left for the next frame; copy so we don't retain
			// the full backing array across many small frames.
			rest := make([]byte, len(d.buf)-total)
			copy(rest, d.buf[total:])
			d.buf = rest
			d.state = stateNeedLength

			var f Frame
			if jsonErr := json.Unmarshal(payload, &f); jsonErr != nil {
				return Frame{}, false, brokererr.Wrap(brokererr.KindProtocol, "malformed frame JSON", jsonErr)
			}
			return f, true, nil
		}
	}
}

// FrameReader decodes a sequence of Frames off an io.Reader, a byte chunk at
// a time, using a Decoder. Used by the server's per-connection read side.
type FrameReader struct {
	r       io.Reader
	dec     *Decoder
	readBuf []byte
}

// NewFrameReader wraps r with a fresh Decoder capped at maxFrameLength.
func NewFrameReader(r io.Reader, maxFrameLength int) *FrameReader {
	return &FrameReader{r: r, dec: NewDecoder(maxFrameLength), readBuf: make([]byte, 4096)}
}

// ReadFrame returns the next decoded frame, blocking on reads from the
// underlying io.Reader as needed. Returns io.EOF once the peer has closed
// the connection cleanly between frames.
func (fr *FrameReader) ReadFrame() (Frame, error) {
	for {
		frame, ok, err := fr.dec.Next()
		if err != nil {
			return Frame{}, err
		}
		if ok {
			return frame, nil
		}
		n, err := fr.r.Read(fr.readBuf)
		if n > 0 {
			fr.dec.Feed(fr.readBuf[:n])
			continue
		}
		if err != nil {
			return Frame{}, err
		}
	}
}

// FrameWriter encodes and writes Frames to an io.Writer.
type FrameWriter struct {
	w              io.Writer
	maxFrameLength int
}

// NewFrameWriter wraps w with a max frame length cap.
func NewFrameWriter(w io.Writer, maxFrameLength int) *FrameWriter {
	return &FrameWriter{w: w, maxFrameLength: maxFrameLength}
}

// WriteFrame encodes f and writes it in full.
func (fw *FrameWriter) WriteFrame(f Frame) error {
	encoded, err := Encode(f, fw.maxFrameLength)
	if err != nil {
		return err
	}
	_, err = fw.w.Write(encoded)
	return err
}
