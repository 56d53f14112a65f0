// Package observability adapts clearflow.CallbackHandler into pluggable
// diagnostics backends: structured logs, OpenTelemetry traces, Prometheus
// metrics. The core clearflow package never imports this package; a
// deployment wires it in by attaching Handler to a FlowBuilder via
// Observe.
package observability

import "context"

// Emitter receives Events translated from flow lifecycle hooks. Emit must
// not block flow execution and must not panic; callers treat emitter
// failures the same way clearflow treats callback failures (reported, not
// propagated).
type Emitter interface {
	Emit(event Event)
	EmitBatch(ctx context.Context, events []Event) error
	Flush(ctx context.Context) error
}
