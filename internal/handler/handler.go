// Package handler implements the broker's stateless request→response
// functions over the storage.TopicManager, mirroring the source's
// handler/producer.rs and handler/consumer.rs.
package handler

import (
	"go.uber.org/zap"

	"github.com/dlworhd/meier/internal/metrics"
	"github.com/dlworhd/meier/internal/storage"
)

// Handlers groups the broker's request handlers around a shared
// TopicManager, logger, and metrics recorder. Handlers themselves hold no
// mutable state of their own — every invariant lives in storage.
type Handlers struct {
	tm       *storage.TopicManager
	log      *zap.Logger
	recorder metrics.Recorder
}

// New constructs a Handlers bound to tm. log and recorder may be nil.
func New(tm *storage.TopicManager, log *zap.Logger, recorder metrics.Recorder) *Handlers {
	if log == nil {
		log = zap.NewNop()
	}
	if recorder == nil {
		recorder = metrics.Noop{}
	}
	return &Handlers{tm: tm, log: log, recorder: recorder}
}
