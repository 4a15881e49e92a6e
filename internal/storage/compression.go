package storage

import (
	"bytes"
	"io"

	"github.com/golang/snappy"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4"
	"golang.org/x/crypto/blake2b"
)

// CompressionKind selects the codec a Partition uses for its at-rest message
// representation. None is the default; the others trade CPU for a smaller
// in-memory footprint. None of them change what a produce/consume caller
// sees — encoding happens on the way into the partition's queue and decoding
// on the way out, transparently.
type CompressionKind string

const (
	CompressionNone   CompressionKind = "none"
	CompressionSnappy CompressionKind = "snappy"
	CompressionLZ4    CompressionKind = "lz4"
	CompressionZstd   CompressionKind = "zstd"
)

// Codec compresses and decompresses message payloads for storage. It is
// deliberately narrow: Partition is the only caller, and it always knows the
// original length up front (from Message.Size, computed before encoding).
type Codec interface {
	Encode(src []byte) ([]byte, error)
	Decode(src []byte, originalLen int) ([]byte, error)
}

// ParseCompressionKind validates s against the known kinds, used by config
// loading to reject typos rather than silently falling back to none.
func ParseCompressionKind(s string) (CompressionKind, bool) {
	switch CompressionKind(s) {
	case CompressionNone, CompressionSnappy, CompressionLZ4, CompressionZstd:
		return CompressionKind(s), true
	default:
		return "", false
	}
}

// NewCodec resolves a CompressionKind to a Codec. An unrecognized kind falls
// back to CompressionNone rather than erroring, since compression is a
// storage-internal tuning knob, not a protocol-visible contract.
func NewCodec(kind CompressionKind) Codec {
	switch kind {
	case CompressionSnappy:
		return snappyCodec{}
	case CompressionLZ4:
		return lz4Codec{}
	case CompressionZstd:
		return zstdCodec{}
	default:
		return noneCodec{}
	}
}

type noneCodec struct{}

func (noneCodec) Encode(src []byte) ([]byte, error) { return src, nil }
func (noneCodec) Decode(src []byte, _ int) ([]byte, error) { return src, nil }

type snappyCodec struct{}

func (snappyCodec) Encode(src []byte) ([]byte, error) {
	return snappy.Encode(nil, src), nil
}

func (snappyCodec) Decode(src []byte, originalLen int) ([]byte, error) {
	dst := make([]byte, 0, originalLen)
	return snappy.Decode(dst, src)
}

type lz4Codec struct{}

func (lz4Codec) Encode(src []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := lz4.NewWriter(&buf)
	if _, err := w.Write(src); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (lz4Codec) Decode(src []byte, originalLen int) ([]byte, error) {
	r := lz4.NewReader(bytes.NewReader(src))
	dst := make([]byte, originalLen)
	if _, err := io.ReadFull(r, dst); err != nil && err != io.EOF {
		return nil, err
	}
	return dst, nil
}

type zstdCodec struct{}

func (zstdCodec) Encode(src []byte) ([]byte, error) {
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, err
	}
	defer enc.Close()
	return enc.EncodeAll(src, nil), nil
}

func (zstdCodec) Decode(src []byte, originalLen int) ([]byte, error) {
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, err
	}
	defer dec.Close()
	return dec.DecodeAll(src, make([]byte, 0, originalLen))
}

// checksum128 computes a BLAKE2b-128 digest of data, used only as an
// internal corruption-detection aid across the compress/decompress
// round-trip (see Partition.decode). It never appears on the
// wire.
func checksum128(data []byte) [16]byte {
	h, _ := blake2b.New(16, nil)
	h.Write(data)
	var out [16]byte
	copy(out[:], h.Sum(nil))
	return out
}
