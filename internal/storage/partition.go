package storage

import (
	"sync"

	"go.uber.org/zap"

	"github.com/dlworhd/meier/internal/metrics"
)

// storedMessage is a Partition's at-rest representation of a Message: the
// payload as encoded by the partition's Codec (identity for
// CompressionNone), plus enough to reconstruct the original Message on the
// way out.
type storedMessage struct {
	encoded      []byte
	originalSize int
	timestamp    int64
	checksum     [16]byte
}

// Partition is an ordered, in-memory queue of messages within a topic and
// the unit of offset numbering. The logical offset of the head is
// baseOffset; of the tail, baseOffset+len(messages)-1. baseOffset only ever
// increases, by one per head-removal (consume or eviction).
//
// All operations are serialized by mu; Append holds it for its entire run,
// admission and the eviction loop included, so that a concurrent consume
// cannot interleave with it and violate baseOffset monotonicity (see
// spec §9, "Eviction inside append").
type Partition struct {
	id       string
	topic    string
	log      *zap.Logger
	recorder metrics.Recorder

	buf   *BufferManager
	codec Codec

	mu         sync.RWMutex
	messages   []storedMessage
	baseOffset int
}

// NewPartition constructs a Partition with the given id, sharing buf (the
// process-wide Buffer Manager) and using codec for its at-rest encoding.
// topic is carried only for metrics/log labels.
func NewPartition(id, topic string, buf *BufferManager, codec Codec, log *zap.Logger, recorder metrics.Recorder) *Partition {
	if codec == nil {
		codec = NewCodec(CompressionNone)
	}
	if log == nil {
		log = zap.NewNop()
	}
	if recorder == nil {
		recorder = metrics.Noop{}
	}
	return &Partition{id: id, topic: topic, buf: buf, codec: codec, log: log, recorder: recorder}
}

// ID returns the partition's decimal-string identifier.
func (p *Partition) ID() string { return p.id }

// Append admits msg, pushes it to the tail, and then runs the eviction loop:
// while the buffer cannot admit even a zero-size entry and this partition is
// non-empty, it pops its own head and releases that capacity. This makes
// eviction local and predictable — a runaway producer evicts its own tail
// from its own head, never another partition's.
func (p *Partition) Append(msg Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	size := msg.Size()
	if err := p.buf.Admit(size); err != nil {
		return err
	}

	encoded, err := p.codec.Encode(msg.Data())
	if err != nil {
		// Encoding failed after admission succeeded; give the capacity back
		// before surfacing the error so accounting stays correct.
		p.buf.Release(size)
		return err
	}

	p.messages = append(p.messages, storedMessage{
		encoded:      encoded,
		originalSize: size,
		timestamp:    msg.Timestamp(),
		checksum:     checksum128(msg.Data()),
	})

	for !p.buf.CanAdmit(0) && len(p.messages) > 0 {
		dropped := p.messages[0]
		p.messages = p.messages[1:]
		p.buf.Release(dropped.originalSize)
		p.baseOffset++
		p.recorder.EvictedTotal(p.topic, p.id)
	}

	return nil
}

// Get returns a copy of the message at logical offset, or false if offset is
// outside [baseOffset, baseOffset+len). Non-mutating.
func (p *Partition) Get(offset int) (Message, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if offset < p.baseOffset || offset >= p.baseOffset+len(p.messages) {
		return Message{}, false
	}
	msg, ok := p.decode(p.messages[offset-p.baseOffset])
	return msg.Clone(), ok
}

// ConsumeHead pops the head message, advancing baseOffset and releasing its
// buffer capacity synchronously (before this call returns) so that another
// goroutine's admission check always sees an up-to-date counter — the
// source's detached-release pattern is deliberately not reproduced here, per
// spec §9.
func (p *Partition) ConsumeHead() (Message, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.messages) == 0 {
		return Message{}, false
	}
	stored := p.messages[0]
	p.messages = p.messages[1:]
	p.baseOffset++
	p.buf.Release(stored.originalSize)

	msg, ok := p.decode(stored)
	return msg, ok
}

// decode reverses the partition's at-rest encoding and verifies the
// diagnostic checksum, logging (not failing) on mismatch.
func (p *Partition) decode(stored storedMessage) (Message, bool) {
	data, err := p.codec.Decode(stored.encoded, stored.originalSize)
	if err != nil {
		p.log.Error("partition: failed to decode stored message",
			zap.String("partition", p.id), zap.Error(err))
		return Message{}, false
	}
	if checksum128(data) != stored.checksum {
		p.log.Debug("partition: checksum mismatch on decode",
			zap.String("partition", p.id))
	}
	return Message{data: data, timestamp: stored.timestamp}, true
}

// CurrentOffset returns baseOffset: the offset the next head-pop would
// expose.
func (p *Partition) CurrentOffset() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.baseOffset
}

// Len returns the current message count.
func (p *Partition) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.messages)
}
