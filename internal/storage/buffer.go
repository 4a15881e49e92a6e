package storage

import (
	"fmt"
	"sync"

	"github.com/dlworhd/meier/internal/brokererr"
	"github.com/dlworhd/meier/internal/metrics"
)

// BufferManager is the process-wide bound on how much is held in memory
// across every partition of every topic. A single instance is shared by
// every Partition; Partition delegates admission to it so that eviction can
// be driven by the same predicate admission uses.
type BufferManager struct {
	mu sync.Mutex

	maxMessages int
	maxBytes    int

	currentMessages int
	currentBytes    int

	recorder metrics.Recorder
}

// NewBufferManager constructs a BufferManager with the given global caps.
func NewBufferManager(maxMessages, maxBytes int, recorder metrics.Recorder) *BufferManager {
	if recorder == nil {
		recorder = metrics.Noop{}
	}
	return &BufferManager{maxMessages: maxMessages, maxBytes: maxBytes, recorder: recorder}
}

// CanAdmit reports whether one more message of the given size fits under
// both caps. Admit checks the same predicate under its own lock; Partition's
// eviction loop calls CanAdmit with size 0, to test the message-count cap
// alone.
func (b *BufferManager) CanAdmit(size int) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.canAdmitLocked(size)
}

func (b *BufferManager) canAdmitLocked(size int) bool {
	return b.currentMessages+1 <= b.maxMessages && b.currentBytes+size <= b.maxBytes
}

// Admit attempts to reserve capacity for one message of size bytes. On
// success both counters are incremented atomically with respect to
// concurrent Admit/Release calls; on failure neither counter moves and a
// BufferOverflow error describing the request and the current/limit values
// is returned.
func (b *BufferManager) Admit(size int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.canAdmitLocked(size) {
		return brokererr.New(brokererr.KindBufferOverflow, fmt.Sprintf(
			"cannot admit message of size %d: %d/%d messages, %d/%d bytes",
			size, b.currentMessages, b.maxMessages, b.currentBytes, b.maxBytes,
		))
	}
	b.currentMessages++
	b.currentBytes += size
	b.recorder.SetBufferMessages(float64(b.currentMessages))
	b.recorder.SetBufferBytes(float64(b.currentBytes))
	return nil
}

// Release returns capacity for one message of size bytes, saturating at
// zero so that a double-release (a bug elsewhere) cannot underflow the
// counters.
func (b *BufferManager) Release(size int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if size > b.currentBytes {
		size = b.currentBytes
	}
	b.currentBytes -= size
	if b.currentMessages > 0 {
		b.currentMessages--
	}
	b.recorder.SetBufferMessages(float64(b.currentMessages))
	b.recorder.SetBufferBytes(float64(b.currentBytes))
}

// Counts returns the current (messages, bytes) pair. Intended for metrics
// and tests; callers must not assume the pair stays consistent the instant
// after the lock is released under concurrent traffic.
func (b *BufferManager) Counts() (messages, bytes int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.currentMessages, b.currentBytes
}
