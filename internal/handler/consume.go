package handler

import (
	"fmt"
	"strconv"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/dlworhd/meier/internal/protocol"
)

// displayString renders data as UTF-8 text if valid, falling back to a
// byte-count placeholder otherwise — used for the Response.message field,
// never for Response.data, which always carries the raw bytes.
func displayString(data []byte) string {
	if utf8.Valid(data) {
		return string(data)
	}
	return fmt.Sprintf("[Binary data: %d bytes]", len(data))
}

// HandleConsume looks up topic/partition and returns the message at offset,
// or an Error response describing the current/requested offset if none
// exists there.
func (h *Handlers) HandleConsume(topic string, partitionID, offset int) protocol.Frame {
	t, ok := h.tm.Get(topic)
	if !ok {
		h.log.Warn("consume: topic not found", zap.String("topic", topic))
		return protocol.NewResponseError(fmt.Sprintf("Topic not found: %s", topic))
	}

	partition, ok := t.Partition(strconv.Itoa(partitionID))
	if !ok {
		h.log.Warn("consume: partition not found", zap.String("topic", topic), zap.Int("partition", partitionID))
		return protocol.NewResponseError(fmt.Sprintf("Partition not found: %d", partitionID))
	}

	msg, ok := partition.Get(offset)
	if !ok {
		return protocol.NewResponseError(fmt.Sprintf(
			"Current offset: %d Requested offset: %d", partition.CurrentOffset(), offset))
	}

	h.recorder.ConsumeTotal(topic, "offset")
	return protocol.NewResponseOK(msg.Data(), displayString(msg.Data()))
}

// HandleConsumeNext pops the head of topic/partition, returning it with an
// "offset=N:" prefix on its display message, or an Ok/null-data response if
// the partition is empty — a consume-next on an empty partition is not an
// error, it is the "poll and find nothing yet" outcome.
func (h *Handlers) HandleConsumeNext(topic string, partitionID int) protocol.Frame {
	t, ok := h.tm.Get(topic)
	if !ok {
		h.log.Warn("consume_next: topic not found", zap.String("topic", topic))
		return protocol.NewResponseError(fmt.Sprintf("Topic not found: %s", topic))
	}

	partition, ok := t.Partition(strconv.Itoa(partitionID))
	if !ok {
		h.log.Warn("consume_next: partition not found", zap.String("topic", topic), zap.Int("partition", partitionID))
		return protocol.NewResponseError(fmt.Sprintf("Partition not found: %d", partitionID))
	}

	currentOffset := partition.CurrentOffset()

	msg, ok := partition.ConsumeHead()
	if !ok {
		return protocol.NewResponseOK(nil, fmt.Sprintf("No new messages. Current offset: %d", currentOffset))
	}

	h.recorder.ConsumeTotal(topic, "next")
	return protocol.NewResponseOK(msg.Data(), fmt.Sprintf("offset=%d:%s", currentOffset, displayString(msg.Data())))
}
