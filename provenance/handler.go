package provenance

import (
	"context"
	"fmt"

	"github.com/clearflow-dev/clearflow"
)

// RecordingHandler is a clearflow.CallbackHandler that writes a
// CausalityRecord to a Recorder for every message a node successfully
// produces. Recorder errors are reported to clearflow.DiagnosticsSink
// rather than surfaced: callback hooks are non-interfering, so a broken
// ledger must never break a flow.
type RecordingHandler struct {
	clearflow.BaseCallbackHandler
	recorder Recorder
	ctx      context.Context
}

// NewRecordingHandler returns a handler that writes every node's output to
// recorder using ctx for the underlying writes.
func NewRecordingHandler(ctx context.Context, recorder Recorder) *RecordingHandler {
	return &RecordingHandler{recorder: recorder, ctx: ctx}
}

// OnNodeEnd implements clearflow.CallbackHandler.
func (h *RecordingHandler) OnNodeEnd(nodeName string, msg clearflow.Message, err error) {
	if err != nil || msg == nil {
		return
	}

	triggeredBy, hasTrigger := msg.TriggeredByID()
	rec := CausalityRecord{
		MessageID:     msg.ID(),
		TriggeredByID: triggeredBy,
		HasTrigger:    hasTrigger,
		RunID:         msg.RunID(),
		NodeName:      nodeName,
		MessageType:   clearflow.TypeName(msg),
		Timestamp:     msg.Timestamp(),
	}

	if recErr := h.recorder.Record(h.ctx, rec); recErr != nil {
		fmt.Fprintf(clearflow.DiagnosticsSink, "clearflow: provenance recorder failed: %v\n", recErr)
	}
}
