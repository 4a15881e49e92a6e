// Package metrics exposes the broker's Prometheus instrumentation. It is
// purely observational: no storage or protocol invariant depends on these
// counters, so a Recorder is always optional — every call site accepts a
// nil-safe Noop when metrics are disabled (config metrics.enabled=false).
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Recorder is the narrow surface storage and handler call into. Keeping it
// an interface (rather than threading *prometheus.CounterVec etc.
// everywhere) lets tests substitute Noop without a real registry.
type Recorder interface {
	ProduceTotal(topic string)
	ConsumeTotal(topic, method string)
	EvictedTotal(topic, partition string)
	SetBufferMessages(n float64)
	SetBufferBytes(n float64)
	SetTopics(n float64)
	ConnectionOpened()
	ConnectionClosed()
}

// Noop discards every recording. The zero value is ready to use.
type Noop struct{}

func (Noop) ProduceTotal(string)         {}
func (Noop) ConsumeTotal(string, string) {}
func (Noop) EvictedTotal(string, string) {}
func (Noop) SetBufferMessages(float64)   {}
func (Noop) SetBufferBytes(float64)      {}
func (Noop) SetTopics(float64)           {}
func (Noop) ConnectionOpened()           {}
func (Noop) ConnectionClosed()           {}

// Prom is a Recorder backed by github.com/prometheus/client_golang,
// registered against a dedicated registry served over its own HTTP listener
// (see server.MetricsServer) separate from the broker's TCP port.
type Prom struct {
	produced   *prometheus.CounterVec
	consumed   *prometheus.CounterVec
	evicted    *prometheus.CounterVec
	bufMsgs    prometheus.Gauge
	bufBytes   prometheus.Gauge
	topics     prometheus.Gauge
	activeConn prometheus.Gauge
}

// NewProm constructs a Prom recorder and registers its collectors against
// reg.
func NewProm(reg prometheus.Registerer) *Prom {
	p := &Prom{
		produced: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tesseract_messages_produced_total",
			Help: "Total messages successfully appended, by topic.",
		}, []string{"topic"}),
		consumed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tesseract_messages_consumed_total",
			Help: "Total messages successfully consumed, by topic and method (offset|next).",
		}, []string{"topic", "method"}),
		evicted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tesseract_messages_evicted_total",
			Help: "Total messages dropped by head-eviction, by topic and partition.",
		}, []string{"topic", "partition"}),
		bufMsgs: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "tesseract_buffer_messages",
			Help: "Current total message count across all partitions.",
		}),
		bufBytes: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "tesseract_buffer_bytes",
			Help: "Current total payload byte count across all partitions.",
		}),
		topics: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "tesseract_topics_total",
			Help: "Current number of registered topics.",
		}),
		activeConn: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "tesseract_connections_active",
			Help: "Current number of open TCP connections.",
		}),
	}
	reg.MustRegister(p.produced, p.consumed, p.evicted, p.bufMsgs, p.bufBytes, p.topics, p.activeConn)
	return p
}

func (p *Prom) ProduceTotal(topic string)          { p.produced.WithLabelValues(topic).Inc() }
func (p *Prom) ConsumeTotal(topic, method string)  { p.consumed.WithLabelValues(topic, method).Inc() }
func (p *Prom) EvictedTotal(topic, partition string) {
	p.evicted.WithLabelValues(topic, partition).Inc()
}
func (p *Prom) SetBufferMessages(n float64) { p.bufMsgs.Set(n) }
func (p *Prom) SetBufferBytes(n float64)    { p.bufBytes.Set(n) }
func (p *Prom) SetTopics(n float64)         { p.topics.Set(n) }
func (p *Prom) ConnectionOpened()           { p.activeConn.Inc() }
func (p *Prom) ConnectionClosed()           { p.activeConn.Dec() }
