package storage

import (
	"strconv"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/dlworhd/meier/internal/metrics"
)

// DefaultPartitionCount is the fixed number of partitions every Topic is
// created with. The source hardcodes 3; we keep it a named constant rather
// than a per-topic configurable, matching spec §4.3.
const DefaultPartitionCount = 3

// Topic is a fixed set of partitions with round-robin producer assignment.
// Partitions are keyed by their decimal index as a string to keep
// protocol-facing identifiers uniform with Consume/ConsumeNext's
// partition_id field.
type Topic struct {
	name       string
	partitions map[string]*Partition

	// rrCursor is the round-robin cursor: monotonically increasing, never
	// reset. Selection is always cursor mod len(partitions), so wraparound
	// is harmless.
	rrCursor uint64
}

// NewTopic constructs a Topic with DefaultPartitionCount partitions, all
// sharing buf and codec.
func NewTopic(name string, buf *BufferManager, codec Codec, log *zap.Logger, recorder metrics.Recorder) *Topic {
	partitions := make(map[string]*Partition, DefaultPartitionCount)
	for i := 0; i < DefaultPartitionCount; i++ {
		id := strconv.Itoa(i)
		partitions[id] = NewPartition(id, name, buf, codec, log, recorder)
	}
	return &Topic{name: name, partitions: partitions}
}

// Name returns the topic's name.
func (t *Topic) Name() string { return t.name }

// Append selects the next partition via rrCursor mod partition count,
// advances the cursor, and appends msg to that partition. BufferOverflow
// propagates unchanged.
func (t *Topic) Append(msg Message) error {
	return t.nextPartition().Append(msg)
}

func (t *Topic) nextPartition() *Partition {
	cursor := atomic.AddUint64(&t.rrCursor, 1) - 1
	id := strconv.FormatUint(cursor%uint64(len(t.partitions)), 10)
	return t.partitions[id]
}

// Partition looks up a partition by its decimal-string id.
func (t *Topic) Partition(id string) (*Partition, bool) {
	p, ok := t.partitions[id]
	return p, ok
}

// PartitionIDs returns the topic's partition ids.
func (t *Topic) PartitionIDs() []string {
	ids := make([]string, 0, len(t.partitions))
	for id := range t.partitions {
		ids = append(ids, id)
	}
	return ids
}
