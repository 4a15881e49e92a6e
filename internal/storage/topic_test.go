package storage

import "testing"

func newTestTopic(name string, buf *BufferManager) *Topic {
	return NewTopic(name, buf, NewCodec(CompressionNone), nil, nil)
}

func TestTopicRoundRobinFairness(t *testing.T) {
	buf := NewBufferManager(1_000_000, 10_000_000, nil)
	topic := newTestTopic("t", buf)

	const appends = 100
	for i := 0; i < appends; i++ {
		if err := topic.Append(NewMessage([]byte("m"))); err != nil {
			t.Fatalf("Append #%d: %v", i, err)
		}
	}

	total := 0
	for _, id := range topic.PartitionIDs() {
		p, _ := topic.Partition(id)
		total += p.Len()
	}
	if total != appends {
		t.Fatalf("total messages across partitions = %d, want %d", total, appends)
	}

	lo := appends / DefaultPartitionCount
	hi := lo + 1
	for _, id := range topic.PartitionIDs() {
		p, _ := topic.Partition(id)
		if p.Len() != lo && p.Len() != hi {
			t.Fatalf("partition %s has %d messages, want %d or %d", id, p.Len(), lo, hi)
		}
	}
}

func TestTopicPartitionLookup(t *testing.T) {
	buf := NewBufferManager(100, 10_000, nil)
	topic := newTestTopic("t", buf)

	if _, ok := topic.Partition("0"); !ok {
		t.Fatal(`Partition("0"): expected to exist`)
	}
	if _, ok := topic.Partition("99"); ok {
		t.Fatal(`Partition("99"): expected not to exist`)
	}
}
