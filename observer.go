package clearflow

import (
	"context"
	"reflect"

	"golang.org/x/sync/errgroup"
)

// Observer is notified of every message of MessageType (or a type
// implementing it, when MessageType is an interface) that passes through
// an ObservableFlow. Unlike a CallbackHandler, an Observer participates in
// control flow: an error from Notify terminates the flow.
type Observer struct {
	Name        string
	MessageType reflect.Type
	Notify      func(ctx context.Context, msg Message) error
}

func (o Observer) matches(t reflect.Type) bool {
	if o.MessageType == t {
		return true
	}
	if o.MessageType != nil && o.MessageType.Kind() == reflect.Interface {
		return t.Implements(o.MessageType)
	}
	return false
}

// ObservableFlow decorates a Flow with fail-fast observers: after every
// message transition (the initial message and every node's output),
// matching observers run concurrently, and the first error any of them
// returns aborts the run and is returned to the caller. Registering an
// observer never changes the underlying Flow's route table.
type ObservableFlow struct {
	core      *Flow
	observers []Observer
}

// NewObservableFlow wraps flow with no observers registered yet.
func NewObservableFlow(flow *Flow) *ObservableFlow {
	return &ObservableFlow{core: flow}
}

// Observe returns a new ObservableFlow with observer appended to the
// existing set; the receiver is left unmodified.
func (o *ObservableFlow) Observe(observer Observer) *ObservableFlow {
	next := make([]Observer, len(o.observers), len(o.observers)+1)
	copy(next, o.observers)
	next = append(next, observer)
	return &ObservableFlow{core: o.core, observers: next}
}

// Name implements Node, so an ObservableFlow can itself be routed into as
// a nested step.
func (o *ObservableFlow) Name() string { return o.core.name }

func (o *ObservableFlow) inputType() reflect.Type  { return nil }
func (o *ObservableFlow) outputType() reflect.Type { return nil }

// Process implements Node.
func (o *ObservableFlow) Process(ctx context.Context, msg Message) (Message, error) {
	return o.Execute(ctx, msg)
}

// Execute runs the underlying flow one node at a time, exactly like
// Flow.Run, but notifies matching observers after the initial message and
// after every node's output, before the next route lookup happens. If any
// observer returns an error, that error is returned immediately and the
// flow does not advance further.
func (o *ObservableFlow) Execute(ctx context.Context, start Message) (Message, error) {
	f := o.core
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

	if err := o.notify(ctx, start); err != nil {
		if cb != nil {
			safeOnFlowEnd(cb, f.name, start, err)
		}
		return nil, err
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

		if err := o.notify(ctx, out); err != nil {
			if cb != nil {
				safeOnFlowEnd(cb, f.name, out, err)
			}
			return nil, err
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

func (o *ObservableFlow) notify(ctx context.Context, msg Message) error {
	t := messageType(msg)
	var matched []Observer
	for _, obs := range o.observers {
		if obs.matches(t) {
			matched = append(matched, obs)
		}
	}
	if len(matched) == 0 {
		return nil
	}

	group, gctx := errgroup.WithContext(ctx)
	for _, obs := range matched {
		obs := obs
		group.Go(func() error {
			if err := obs.Notify(gctx, msg); err != nil {
				return &ObserverError{ObserverName: obs.Name, Cause: err}
			}
			return nil
		})
	}
	return group.Wait()
}
