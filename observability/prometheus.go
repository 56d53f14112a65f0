package observability

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PrometheusEmitter records node latency and flow outcome counters from
// Events. Gauges that only make sense for a concurrent scheduler
// (inflight nodes, queue depth, retries, merge conflicts, backpressure)
// are dropped: dispatch here is single-message, so there is never more
// than one node inflight, no queue, and no merge to conflict. Latency is
// read from Meta["duration_ms"], which Handler populates on every
// node_end event.
type PrometheusEmitter struct {
	nodeLatency   *prometheus.HistogramVec
	flowCompleted *prometheus.CounterVec
}

// NewPrometheusEmitter registers clearflow_node_latency_ms and
// clearflow_flow_completed_total with registry (use
// prometheus.DefaultRegisterer for the global registry).
func NewPrometheusEmitter(registry prometheus.Registerer) *PrometheusEmitter {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}
	factory := promauto.With(registry)

	return &PrometheusEmitter{
		nodeLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "clearflow",
			Name:      "node_latency_ms",
			Help:      "Node execution duration in milliseconds",
			Buckets:   []float64{1, 5, 10, 50, 100, 500, 1000, 5000, 10000},
		}, []string{"flow_name", "node_name", "status"}),
		flowCompleted: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clearflow",
			Name:      "flow_completed_total",
			Help:      "Flow executions completed, labeled by outcome",
		}, []string{"flow_name", "status"}),
	}
}

func (p *PrometheusEmitter) Emit(event Event) {
	status := "success"
	if _, failed := event.Meta["error"]; failed {
		status = "error"
	}

	switch event.Msg {
	case "node_end":
		durationMs, _ := event.Meta["duration_ms"].(float64)
		p.nodeLatency.WithLabelValues(event.FlowName, event.NodeName, status).Observe(durationMs)
	case "flow_end":
		p.flowCompleted.WithLabelValues(event.FlowName, status).Inc()
	}
}

func (p *PrometheusEmitter) EmitBatch(_ context.Context, events []Event) error {
	for _, event := range events {
		p.Emit(event)
	}
	return nil
}

func (p *PrometheusEmitter) Flush(context.Context) error { return nil }
