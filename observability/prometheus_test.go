package observability

import (
	"context"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestPrometheusEmitterRecordsNodeLatency(t *testing.T) {
	registry := prometheus.NewRegistry()
	emitter := NewPrometheusEmitter(registry)

	emitter.Emit(Event{
		FlowName: "demo",
		NodeName: "n1",
		Msg:      "node_end",
		Meta:     map[string]interface{}{"duration_ms": float64(42)},
	})

	count := testutil.CollectAndCount(emitter.nodeLatency, "clearflow_node_latency_ms")
	if count == 0 {
		t.Fatal("expected clearflow_node_latency_ms to have been observed")
	}
}

func TestPrometheusEmitterRecordsFlowCompletion(t *testing.T) {
	registry := prometheus.NewRegistry()
	emitter := NewPrometheusEmitter(registry)

	emitter.Emit(Event{FlowName: "demo", Msg: "flow_end"})
	emitter.Emit(Event{FlowName: "demo", Msg: "flow_end", Meta: map[string]interface{}{"error": "boom"}})

	if got := testutil.ToFloat64(emitter.flowCompleted.WithLabelValues("demo", "success")); got != 1 {
		t.Errorf("success count = %v, want 1", got)
	}
	if got := testutil.ToFloat64(emitter.flowCompleted.WithLabelValues("demo", "error")); got != 1 {
		t.Errorf("error count = %v, want 1", got)
	}
}

func TestPrometheusEmitterIgnoresNonLatencyEvents(t *testing.T) {
	registry := prometheus.NewRegistry()
	emitter := NewPrometheusEmitter(registry)

	emitter.Emit(Event{FlowName: "demo", NodeName: "n1", Msg: "node_start"})
	if err := emitter.EmitBatch(context.Background(), []Event{{FlowName: "demo", Msg: "flow_start"}}); err != nil {
		t.Fatalf("EmitBatch: %v", err)
	}
	if err := emitter.Flush(context.Background()); err != nil {
		t.Errorf("Flush: %v", err)
	}

	metrics, err := registry.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	for _, mf := range metrics {
		if strings.Contains(mf.GetName(), "latency") && mf.GetMetric()[0].GetHistogram().GetSampleCount() != 0 {
			t.Errorf("node_start/flow_start should not have recorded a latency sample")
		}
	}
}
