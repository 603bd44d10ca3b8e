package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// CoreMetricsCollector handles all pipeline metrics: journal intake,
// projection and broadcast fan-out. It satisfies the recorder interfaces
// of the watcher, projector and broadcast packages, so one instance is
// shared across the whole pipeline.
type CoreMetricsCollector struct {
	// Intake metrics
	eventsProcessed *prometheus.CounterVec
	parseErrors     prometheus.Counter
	journalReads    prometheus.Counter
	sidecarUpdates  *prometheus.CounterVec

	// Projection metrics
	sliceBroadcasts *prometheus.CounterVec

	// Fan-out metrics
	broadcastsTotal   *prometheus.CounterVec
	broadcastsDropped *prometheus.CounterVec
	subscribers       prometheus.Gauge
}

// NewCoreMetricsCollector creates a new core metrics collector
func NewCoreMetricsCollector() *CoreMetricsCollector {
	return &CoreMetricsCollector{
		// Journal events folded into state, by event kind
		eventsProcessed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "events_processed_total",
				Help:      "Total number of journal events processed by kind",
			},
			[]string{"kind"},
		),

		// Journal lines that failed to parse
		parseErrors: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "parse_errors_total",
				Help:      "Total number of journal lines dropped as unparseable",
			},
		),

		// Journal events read from disk (replay plus tail)
		journalReads: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "journal_events_read_total",
				Help:      "Total number of journal events read from disk",
			},
		),

		// Sidecar document publishes, by file
		sidecarUpdates: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "sidecar_updates_total",
				Help:      "Total number of sidecar file updates published by file",
			},
			[]string{"file"},
		),

		// State slice broadcasts, by slice
		sliceBroadcasts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "state_broadcasts_total",
				Help:      "Total number of state slice broadcasts by slice",
			},
			[]string{"slice"},
		),

		// Envelopes delivered to the fabric, by topic
		broadcastsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "broadcasts_total",
				Help:      "Total number of envelopes broadcast by topic",
			},
			[]string{"topic"},
		),

		// Envelopes dropped on slow subscribers, by topic
		broadcastsDropped: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "broadcast_dropped_total",
				Help:      "Total number of envelopes dropped on full subscriber buffers by topic",
			},
			[]string{"topic"},
		),

		// Live fabric subscriptions
		subscribers: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "subscribers",
				Help:      "Current number of broadcast fabric subscriptions",
			},
		),
	}
}

// Register registers all core metrics with the Prometheus registry
func (c *CoreMetricsCollector) Register() error {
	if Registry == nil {
		return nil // Metrics not enabled
	}

	metrics := []prometheus.Collector{
		c.eventsProcessed,
		c.parseErrors,
		c.journalReads,
		c.sidecarUpdates,
		c.sliceBroadcasts,
		c.broadcastsTotal,
		c.broadcastsDropped,
		c.subscribers,
	}

	for _, metric := range metrics {
		if err := Registry.Register(metric); err != nil {
			return err
		}
	}

	return nil
}

// RecordEvent records one processed journal event
func (c *CoreMetricsCollector) RecordEvent(kind string) {
	c.eventsProcessed.WithLabelValues(kind).Inc()
}

// RecordSliceBroadcast records one state slice broadcast
func (c *CoreMetricsCollector) RecordSliceBroadcast(slice string) {
	c.sliceBroadcasts.WithLabelValues(slice).Inc()
}

// RecordParseError records one dropped journal line
func (c *CoreMetricsCollector) RecordParseError() {
	c.parseErrors.Inc()
}

// RecordJournalRead records a batch of journal events read from disk
func (c *CoreMetricsCollector) RecordJournalRead(events int) {
	c.journalReads.Add(float64(events))
}

// RecordSidecarUpdate records one published sidecar update
func (c *CoreMetricsCollector) RecordSidecarUpdate(file string) {
	c.sidecarUpdates.WithLabelValues(file).Inc()
}

// RecordBroadcast records one envelope handed to the fabric
func (c *CoreMetricsCollector) RecordBroadcast(topic string) {
	c.broadcastsTotal.WithLabelValues(topic).Inc()
}

// RecordDrop records one envelope dropped on a full subscriber buffer
func (c *CoreMetricsCollector) RecordDrop(topic string) {
	c.broadcastsDropped.WithLabelValues(topic).Inc()
}

// SetSubscribers sets the live subscription gauge
func (c *CoreMetricsCollector) SetSubscribers(n int) {
	c.subscribers.Set(float64(n))
}
