package storage

import "time"

// Message is an immutable payload plus its ingest timestamp. Once created it
// is never mutated; Partition operations copy it by value or hand out
// clones, never a shared mutable reference.
type Message struct {
	data      []byte
	timestamp int64
}

// NewMessage creates a Message from data, stamping it with the current
// Unix-seconds time.
func NewMessage(data []byte) Message {
	buf := make([]byte, len(data))
	copy(buf, data)
	return Message{data: buf, timestamp: time.Now().Unix()}
}

// Data returns the message's payload. Callers must not mutate the returned
// slice.
func (m Message) Data() []byte { return m.data }

// Timestamp returns the Unix-seconds creation time.
func (m Message) Timestamp() int64 { return m.timestamp }

// Size is the length of data. This is the quantity the Buffer Manager
// accounts against, regardless of whatever encoding a Partition chooses for
// its at-rest representation.
func (m Message) Size() int { return len(m.data) }

// Clone returns an independent copy of the message.
func (m Message) Clone() Message {
	buf := make([]byte, len(m.data))
	copy(buf, m.data)
	return Message{data: buf, timestamp: m.timestamp}
}
