package handler

import (
	"go.uber.org/zap"

	"github.com/dlworhd/meier/internal/brokererr"
	"github.com/dlworhd/meier/internal/protocol"
	"github.com/dlworhd/meier/internal/storage"
)

// HandleProduce creates a Message from data, lazily creates topic if
// necessary, and appends it via round-robin partition assignment. Any
// storage error (BufferOverflow, topic-cap Storage error) becomes an Error
// response carrying that error's message verbatim.
func (h *Handlers) HandleProduce(topic string, data []byte) protocol.Frame {
	msg := storage.NewMessage(data)

	t, err := h.tm.GetOrCreate(topic)
	if err != nil {
		h.log.Warn("produce: failed to get or create topic", zap.String("topic", topic), zap.Error(err))
		return protocol.NewResponseError(brokererr.Message(err))
	}

	if err := t.Append(msg); err != nil {
		h.log.Warn("produce: append failed", zap.String("topic", topic), zap.Error(err))
		return protocol.NewResponseError(brokererr.Message(err))
	}

	h.recorder.ProduceTotal(topic)
	return protocol.NewResponseOK(nil, "Message produced successfully")
}
