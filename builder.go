package clearflow

import (
	"reflect"
	"strings"
)

// FlowBuilder assembles a directed graph of Nodes into a Flow. Every
// method returns a new *FlowBuilder; the receiver is never mutated, so a
// builder can be branched and reused to assemble several related flows
// from a shared prefix of routes.
type FlowBuilder struct {
	name         string
	startingNode Node
	routes       routeTable
	reachableSet map[string]struct{}
	callbacks    CallbackHandler
}

// CreateFlow begins building a new flow named name, starting at node.
func CreateFlow(name string, node Node) (*FlowBuilder, error) {
	if strings.TrimSpace(name) == "" {
		return nil, &InvalidNodeError{Reason: "flow name must not be empty"}
	}
	if node == nil {
		return nil, &InvalidNodeError{Reason: "starting node must not be nil"}
	}
	reachable := map[string]struct{}{node.Name(): {}}
	return &FlowBuilder{
		name:         name,
		startingNode: node,
		reachableSet: reachable,
	}, nil
}

func (b *FlowBuilder) isReachable(nodeName string) bool {
	if b == nil {
		return false
	}
	_, ok := b.reachableSet[nodeName]
	return ok
}

func (b *FlowBuilder) cloneReachable() map[string]struct{} {
	next := make(map[string]struct{}, len(b.reachableSet)+1)
	for k := range b.reachableSet {
		next[k] = struct{}{}
	}
	return next
}

// Route registers that, when from produces a message of type outcome, the
// message should be delivered to to next. outcome is typically obtained
// via clearflow.TypeOf[T]().
//
// Route fails if from has not yet been reached by this builder (it must
// be the starting node or the destination of a previously registered
// route), if a route for (from, outcome) already exists, if from's
// declared output type is statically known and outcome does not match it,
// or if to's declared input type is statically known and incompatible
// with outcome.
func (b *FlowBuilder) Route(from Node, outcome reflect.Type, to Node) (*FlowBuilder, error) {
	if b == nil {
		return nil, &InvalidNodeError{Reason: "cannot call Route on a nil FlowBuilder"}
	}
	if from == nil || to == nil {
		return nil, &InvalidNodeError{Reason: "from and to nodes must not be nil"}
	}
	if !b.isReachable(from.Name()) {
		return nil, &NodeUnreachableError{NodeName: from.Name(), Action: "route from"}
	}
	if b.routes.hasKey(from.Name(), outcome) {
		return nil, &DuplicateRouteError{NodeName: from.Name(), MessageType: typeName(outcome)}
	}
	if from.outputType() != nil && outcome != nil && !isTypeCompatible(outcome, from.outputType()) {
		return nil, &TypeMismatchError{
			FromNode:   from.Name(),
			ToNode:     to.Name(),
			OutputType: typeName(outcome),
			InputType:  typeName(from.outputType()),
		}
	}
	if to.inputType() != nil && outcome != nil && !isTypeCompatible(outcome, to.inputType()) {
		return nil, &TypeMismatchError{
			FromNode:   from.Name(),
			ToNode:     to.Name(),
			OutputType: typeName(outcome),
			InputType:  typeName(to.inputType()),
		}
	}

	nextRoutes := b.routes.withEntry(routeEntry{
		key: routeKey{fromNode: from.Name(), msgType: outcome},
		to:  to,
	})
	nextReachable := b.cloneReachable()
	nextReachable[to.Name()] = struct{}{}

	return &FlowBuilder{
		name:         b.name,
		startingNode: b.startingNode,
		routes:       nextRoutes,
		reachableSet: nextReachable,
		callbacks:    b.callbacks,
	}, nil
}

// End registers that, when from produces a message of type outcome, the
// flow terminates and that message becomes the flow's result.
func (b *FlowBuilder) End(from Node, outcome reflect.Type) (*Flow, error) {
	if b == nil {
		return nil, &InvalidNodeError{Reason: "cannot call End on a nil FlowBuilder"}
	}
	if from == nil {
		return nil, &InvalidNodeError{Reason: "from node must not be nil"}
	}
	if !b.isReachable(from.Name()) {
		return nil, &NodeUnreachableError{NodeName: from.Name(), Action: "end at"}
	}
	if b.routes.hasKey(from.Name(), outcome) {
		return nil, &DuplicateRouteError{NodeName: from.Name(), MessageType: typeName(outcome)}
	}
	if from.outputType() != nil && outcome != nil && !isTypeCompatible(outcome, from.outputType()) {
		return nil, &TypeMismatchError{
			FromNode:   from.Name(),
			ToNode:     "<terminal>",
			OutputType: typeName(outcome),
			InputType:  typeName(from.outputType()),
		}
	}
	if b.routes.hasTerminal() {
		return nil, &MultipleTerminalsError{NodeName: from.Name(), MessageType: typeName(outcome)}
	}

	nextRoutes := b.routes.withEntry(routeEntry{
		key: routeKey{fromNode: from.Name(), msgType: outcome},
		to:  nil,
	})

	return &Flow{
		name:         b.name,
		startingNode: b.startingNode,
		routes:       nextRoutes,
		callbacks:    b.callbacks,
	}, nil
}

// Observe attaches a CallbackHandler that will be notified of lifecycle
// events (flow start/end, node start/end) once the flow built from this
// point is run. Calling Observe again replaces the previous handler; to
// notify several handlers, combine them first with a CompositeHandler.
func (b *FlowBuilder) Observe(handler CallbackHandler) *FlowBuilder {
	if b == nil {
		return nil
	}
	return &FlowBuilder{
		name:         b.name,
		startingNode: b.startingNode,
		routes:       b.routes,
		reachableSet: b.reachableSet,
		callbacks:    handler,
	}
}

// isTypeCompatible reports whether a value of type out can flow into a
// parameter of type in: equal types trivially qualify, as does out
// implementing the interface in.
func isTypeCompatible(out, in reflect.Type) bool {
	if out == in {
		return true
	}
	if in.Kind() == reflect.Interface {
		return out.Implements(in)
	}
	return false
}
