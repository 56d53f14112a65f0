package observability

// Event is one observability record translated from a clearflow.CallbackHandler
// hook: a flow or node boundary being crossed, with enough context to log,
// trace, or count it without depending on the engine's internal types.
type Event struct {
	// RunID is the run id carried by the message involved, when known.
	RunID string

	// FlowName identifies the flow this event belongs to.
	FlowName string

	// NodeName identifies the node this event concerns; empty for
	// flow-level events (OnFlowStart/OnFlowEnd).
	NodeName string

	// Msg names the hook that fired: "flow_start", "flow_end",
	// "node_start", or "node_end".
	Msg string

	// MessageType is the concrete message type involved, when known.
	MessageType string

	// Meta carries hook-specific data. OnNodeEnd/OnFlowEnd populate
	// "error" with the failure's Error() string when one occurred.
	Meta map[string]interface{}
}
