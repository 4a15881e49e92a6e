package protocol

import (
	"encoding/json"
	"fmt"
)

// ByteSlice is a []byte that marshals as a JSON array of integers in
// 0..255, matching the wire schema's byte[] fields (Produce.message,
// Response.data) rather than Go's default base64-string encoding.
type ByteSlice []byte

// MarshalJSON implements json.Marshaler. A nil ByteSlice marshals to JSON
// null, matching the Option<Vec<u8>> fields on the wire.
func (b ByteSlice) MarshalJSON() ([]byte, error) {
	if b == nil {
		return []byte("null"), nil
	}
	ints := make([]int, len(b))
	for i, v := range b {
		ints[i] = int(v)
	}
	return json.Marshal(ints)
}

// UnmarshalJSON implements json.Unmarshaler.
func (b *ByteSlice) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*b = nil
		return nil
	}
	var ints []int
	if err := json.Unmarshal(data, &ints); err != nil {
		return err
	}
	out := make([]byte, len(ints))
	for i, v := range ints {
		if v < 0 || v > 255 {
			return fmt.Errorf("protocol: byte value %d out of range", v)
		}
		out[i] = byte(v)
	}
	*b = out
	return nil
}
