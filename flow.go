package clearflow

import (
	"context"
	"reflect"
)

// Flow is a completed, runnable graph of Nodes. A Flow implements Node
// itself, so a finished flow can be routed into as a step of an outer
// flow.
type Flow struct {
	name         string
	startingNode Node
	routes       routeTable
	callbacks    CallbackHandler
}

type flowStackKey struct{}

// Name implements Node.
func (f *Flow) Name() string { return f.name }

func (f *Flow) inputType() reflect.Type  { return nil }
func (f *Flow) outputType() reflect.Type { return nil }

// Process implements Node, so a Flow can be nested as a step inside
// another flow's route table. It behaves exactly like Run; the incoming
// message is passed to the starting node unchanged.
func (f *Flow) Process(ctx context.Context, msg Message) (Message, error) {
	return f.run(ctx, msg)
}

// Run executes the flow starting from start, returning the final message
// once a terminal route is reached, or the error that stopped execution.
func (f *Flow) Run(ctx context.Context, start Message) (Message, error) {
	return f.run(ctx, start)
}

func (f *Flow) run(ctx context.Context, start Message) (Message, error) {
	stack, _ := ctx.Value(flowStackKey{}).([]*Flow)
	for _, active := range stack {
		if active == f {
			return nil, ErrCyclicFlow
		}
	}
	ctx = context.WithValue(ctx, flowStackKey{}, append(stack, f))

	cb := f.callbacks

	if cb != nil {
		safeOnFlowStart(cb, f.name, start)
	}

	current := f.startingNode
	msg := start

	for {
		if cb != nil {
			safeOnNodeStart(cb, current.Name(), msg)
		}
		out, err := current.Process(ctx, msg)
		if err != nil {
			if cb != nil {
				safeOnNodeEnd(cb, current.Name(), msg, err)
				safeOnFlowEnd(cb, f.name, msg, err)
			}
			return nil, err
		}
		if cb != nil {
			safeOnNodeEnd(cb, current.Name(), out, nil)
		}

		entry, ok := f.routes.find(current.Name(), messageType(out))
		if !ok {
			uerr := &UnroutedMessageError{NodeName: current.Name(), MessageType: typeName(messageType(out))}
			if cb != nil {
				safeOnFlowEnd(cb, f.name, out, uerr)
			}
			return nil, uerr
		}
		if entry.to == nil {
			if cb != nil {
				safeOnFlowEnd(cb, f.name, out, nil)
			}
			return out, nil
		}

		current = entry.to
		msg = out
	}
}
