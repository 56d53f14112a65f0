package clearflow

import (
	"errors"
	"fmt"
)

// InvalidNodeError reports a node that fails structural validation, such
// as an empty name.
type InvalidNodeError struct {
	Reason string
}

func (e *InvalidNodeError) Error() string {
	return fmt.Sprintf("invalid node: %s", e.Reason)
}

// InvalidMessageError reports a message that fails construction-time
// invariants, such as an Event built without a triggered-by id.
type InvalidMessageError struct {
	Reason string
}

func (e *InvalidMessageError) Error() string {
	return fmt.Sprintf("invalid message: %s", e.Reason)
}

// NodeUnreachableError reports a route whose source node was never added
// to the flow being built (neither the starting node nor the destination
// of a prior route).
type NodeUnreachableError struct {
	NodeName string
	Action   string // "route from" or "end at"
}

func (e *NodeUnreachableError) Error() string {
	return fmt.Sprintf("cannot %s node %q: not reachable in this flow", e.Action, e.NodeName)
}

// DuplicateRouteError reports a second route registered for the same
// (node, message type) pair.
type DuplicateRouteError struct {
	NodeName    string
	MessageType string
}

func (e *DuplicateRouteError) Error() string {
	return fmt.Sprintf("route already defined for message type %q from node %q", e.MessageType, e.NodeName)
}

// MultipleTerminalsError reports a second End call on a builder lineage
// that already has a terminal route, regardless of which node or message
// type the earlier one was registered against: a route table has exactly
// one terminal entry.
type MultipleTerminalsError struct {
	NodeName    string
	MessageType string
}

func (e *MultipleTerminalsError) Error() string {
	return fmt.Sprintf("multiple terminal outcomes declared for message type %q from node %q", e.MessageType, e.NodeName)
}

// TypeMismatchError reports that a node's declared input type is
// incompatible with the output type of the node routing into it.
type TypeMismatchError struct {
	FromNode   string
	ToNode     string
	OutputType string
	InputType  string
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("node %q produces %s, incompatible with node %q input %s", e.FromNode, e.OutputType, e.ToNode, e.InputType)
}

// UnroutedMessageError is returned by a running Flow when a node produces
// a message type for which no route, including no terminal route, was
// registered from that node.
type UnroutedMessageError struct {
	NodeName    string
	MessageType string
}

func (e *UnroutedMessageError) Error() string {
	return fmt.Sprintf("no route defined for message type %q produced by node %q", e.MessageType, e.NodeName)
}

// NodeFailureError wraps an error returned by a node's Process method,
// preserving which node failed.
type NodeFailureError struct {
	NodeName string
	Cause    error
}

func (e *NodeFailureError) Error() string {
	return fmt.Sprintf("node %q failed: %v", e.NodeName, e.Cause)
}

func (e *NodeFailureError) Unwrap() error { return e.Cause }

// ObserverError wraps an error returned by an Observer, which, unlike a
// CallbackHandler error, terminates the flow.
type ObserverError struct {
	ObserverName string
	Cause        error
}

func (e *ObserverError) Error() string {
	return fmt.Sprintf("observer %q failed: %v", e.ObserverName, e.Cause)
}

func (e *ObserverError) Unwrap() error { return e.Cause }

// ErrCyclicFlow is returned when a Flow is nested as a Node inside a route
// table that is already executing that same Flow, directly or through
// intermediate nested flows.
var ErrCyclicFlow = errors.New("clearflow: flow cannot route into itself")
