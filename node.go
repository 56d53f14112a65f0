package clearflow

import (
	"context"
	"reflect"
	"strings"
)

// Node is a single processing step in a Flow. It is constructed via the
// generic NewNode function; Node itself carries only the type-erased
// surface the builder and executor need, since Go methods cannot
// introduce new type parameters of their own.
type Node interface {
	// Name uniquely identifies this node within a flow.
	Name() string
	// Process transforms an input message into an output message.
	Process(ctx context.Context, msg Message) (Message, error)

	// inputType and outputType report the reflect.Type tokens captured at
	// construction, used by the builder to validate route compatibility.
	// They are nil when the node was built over the Message interface
	// itself, in which case compatibility is not statically checkable and
	// validation is skipped for that edge, mirroring the "only validate
	// when types are known" rule nodes built with generics elsewhere
	// follow.
	inputType() reflect.Type
	outputType() reflect.Type
}

type funcNode struct {
	name string
	in   reflect.Type
	out  reflect.Type
	fn   func(context.Context, Message) (Message, error)
}

func (n *funcNode) Name() string { return n.name }

func (n *funcNode) Process(ctx context.Context, msg Message) (Message, error) {
	return n.fn(ctx, msg)
}

func (n *funcNode) inputType() reflect.Type  { return n.in }
func (n *funcNode) outputType() reflect.Type { return n.out }

// NewNode builds a Node whose exported signature is fully type-checked at
// the call site. fn receives the concrete TIn and must return a concrete
// TOut; the returned Node stores reflect.Type tokens for both so the
// FlowBuilder can validate that routes connect compatible nodes, while
// callers of Process interact only with the erased Message interface.
//
//	node, err := clearflow.NewNode("validate", func(ctx context.Context, cmd *PlaceOrder) (*OrderValidated, error) {
//	    ...
//	})
func NewNode[TIn, TOut Message](name string, fn func(context.Context, TIn) (TOut, error)) (Node, error) {
	if strings.TrimSpace(name) == "" {
		return nil, &InvalidNodeError{Reason: "name must not be empty"}
	}
	if fn == nil {
		return nil, &InvalidNodeError{Reason: "exec function must not be nil"}
	}

	var inZero TIn
	var outZero TOut

	n := &funcNode{
		name: name,
		in:   concreteTypeOf(inZero),
		out:  concreteTypeOf(outZero),
	}
	n.fn = func(ctx context.Context, msg Message) (Message, error) {
		in, ok := msg.(TIn)
		if !ok {
			return nil, &InvalidMessageError{Reason: "node " + name + " received unexpected message type"}
		}
		out, err := fn(ctx, in)
		if err != nil {
			return nil, &NodeFailureError{NodeName: name, Cause: err}
		}
		return out, nil
	}
	return n, nil
}

// concreteTypeOf returns nil when T is an interface type such as
// clearflow.Message itself (no statically known concrete type to
// validate against) and the concrete reflect.Type otherwise.
func concreteTypeOf[T Message](zero T) reflect.Type {
	t := reflect.TypeOf(zero)
	if t == nil {
		// T is an interface type; zero is the nil interface value.
		return nil
	}
	return t
}
