package handler

import (
	"github.com/dlworhd/meier/internal/storage"
)

func newTestHandlers(maxTopics, maxMessages, maxBytes int) *Handlers {
	tm := storage.NewTopicManager(maxTopics, maxMessages, maxBytes, storage.CompressionNone, nil, nil)
	return New(tm, nil, nil)
}
