package observability

import (
	"sync"
	"time"

	"github.com/clearflow-dev/clearflow"
)

// Handler is a clearflow.CallbackHandler that translates each lifecycle
// hook into an Event and forwards it to a single Emitter (logging, tracing,
// or metrics), attached to a flow with one FlowBuilder.Observe call; to
// feed several emitters, combine several Handlers with a
// clearflow.CompositeHandler. It records node_start timestamps to compute
// node_end's duration_ms, the one piece of Meta every backend here reads.
type Handler struct {
	flowName string
	emitter  Emitter

	mu        sync.Mutex
	nodeStart map[string]time.Time
}

// NewHandler returns a Handler for flowName that forwards every hook to
// emitter.
func NewHandler(flowName string, emitter Emitter) *Handler {
	return &Handler{
		flowName:  flowName,
		emitter:   emitter,
		nodeStart: make(map[string]time.Time),
	}
}

func (h *Handler) OnFlowStart(flowName string, msg clearflow.Message) {
	h.emitter.Emit(Event{
		RunID:       msg.RunID(),
		FlowName:    flowName,
		Msg:         "flow_start",
		MessageType: typeNameOf(msg),
	})
}

func (h *Handler) OnFlowEnd(flowName string, msg clearflow.Message, err error) {
	event := Event{
		FlowName: flowName,
		Msg:      "flow_end",
	}
	if msg != nil {
		event.RunID = msg.RunID()
		event.MessageType = typeNameOf(msg)
	}
	if err != nil {
		event.Meta = map[string]interface{}{"error": err.Error()}
	}
	h.emitter.Emit(event)
}

func (h *Handler) OnNodeStart(nodeName string, msg clearflow.Message) {
	h.mu.Lock()
	h.nodeStart[nodeName] = time.Now()
	h.mu.Unlock()

	h.emitter.Emit(Event{
		RunID:       msg.RunID(),
		FlowName:    h.flowName,
		NodeName:    nodeName,
		Msg:         "node_start",
		MessageType: typeNameOf(msg),
	})
}

func (h *Handler) OnNodeEnd(nodeName string, msg clearflow.Message, err error) {
	h.mu.Lock()
	start, ok := h.nodeStart[nodeName]
	if ok {
		delete(h.nodeStart, nodeName)
	}
	h.mu.Unlock()

	meta := map[string]interface{}{}
	if ok {
		meta["duration_ms"] = float64(time.Since(start).Milliseconds())
	}
	if err != nil {
		meta["error"] = err.Error()
	}

	event := Event{
		FlowName: h.flowName,
		NodeName: nodeName,
		Msg:      "node_end",
		Meta:     meta,
	}
	if msg != nil {
		event.RunID = msg.RunID()
		event.MessageType = typeNameOf(msg)
	}
	h.emitter.Emit(event)
}

func typeNameOf(msg clearflow.Message) string {
	if msg == nil {
		return ""
	}
	return clearflow.TypeName(msg)
}
