package storage

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/dlworhd/meier/internal/brokererr"
	"github.com/dlworhd/meier/internal/metrics"
)

// TopicManager is the registry of topics, keyed by name, capped at
// maxTopics. Topics are created lazily on first produce to a missing name;
// lookup of a missing name by consume is an error (TopicNotFound).
type TopicManager struct {
	mu     sync.RWMutex
	topics map[string]*Topic

	buf      *BufferManager
	codec    Codec
	log      *zap.Logger
	recorder metrics.Recorder

	maxTopics int
}

// NewTopicManager constructs a TopicManager. maxMessages/maxBytes size the
// single shared BufferManager every topic's partitions delegate admission
// to; compression selects the at-rest Codec new partitions use.
func NewTopicManager(maxTopics, maxMessages, maxBytes int, compression CompressionKind, log *zap.Logger, recorder metrics.Recorder) *TopicManager {
	if log == nil {
		log = zap.NewNop()
	}
	if recorder == nil {
		recorder = metrics.Noop{}
	}
	return &TopicManager{
		topics:    make(map[string]*Topic),
		buf:       NewBufferManager(maxMessages, maxBytes, recorder),
		codec:     NewCodec(compression),
		log:       log,
		recorder:  recorder,
		maxTopics: maxTopics,
	}
}

// Get performs a read-only lookup by name.
func (m *TopicManager) Get(name string) (*Topic, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.topics[name]
	return t, ok
}

// Create registers a brand-new topic, failing with KindStorage if the name
// already exists or the registry is at its cap.
func (m *TopicManager) Create(name string) (*Topic, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.createLocked(name)
}

func (m *TopicManager) createLocked(name string) (*Topic, error) {
	if _, exists := m.topics[name]; exists {
		return nil, brokererr.New(brokererr.KindStorage, fmt.Sprintf("topic already exists: %s", name))
	}
	if len(m.topics) >= m.maxTopics {
		return nil, brokererr.New(brokererr.KindStorage, fmt.Sprintf("Maximum topics limit reached: %d", m.maxTopics))
	}
	t := NewTopic(name, m.buf, m.codec, m.log, m.recorder)
	m.topics[name] = t
	m.recorder.SetTopics(float64(len(m.topics)))
	return t, nil
}

// GetOrCreate returns the existing topic or creates a new one, under an
// exclusive lock so that a lazy-create race cannot double-create or exceed
// maxTopics.
func (m *TopicManager) GetOrCreate(name string) (*Topic, error) {
	m.mu.RLock()
	if t, ok := m.topics[name]; ok {
		m.mu.RUnlock()
		return t, nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.topics[name]; ok {
		return t, nil
	}
	return m.createLocked(name)
}

// Topics returns the current set of topic names, in no particular order.
func (m *TopicManager) Topics() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.topics))
	for name := range m.topics {
		names = append(names, name)
	}
	return names
}

// BufferCounts exposes the shared Buffer Manager's live counters for
// metrics.
func (m *TopicManager) BufferCounts() (messages, bytes int) {
	return m.buf.Counts()
}
