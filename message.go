// Package clearflow composes type-safe, message-driven workflows over a
// directed graph of processing nodes.
package clearflow

import (
	"reflect"
	"time"

	"github.com/google/uuid"
)

// Message is the unit of data that flows between nodes.
//
// Concrete message types are defined by embedding CommandEnvelope or
// EventEnvelope and are used as pointers (e.g. *OrderPlaced), which gives
// them identity equality and makes them usable as map keys for free.
//
// Message itself cannot be implemented outside this package: the
// unexported message() method forces every implementation to embed one of
// the two envelope types.
type Message interface {
	// ID uniquely identifies this message instance.
	ID() uuid.UUID
	// Timestamp is the UTC instant the message was constructed.
	Timestamp() time.Time
	// RunID groups every message produced during one flow execution.
	RunID() string
	// TriggeredByID returns the id of the message that caused this one,
	// and whether one was set. Commands may omit it; Events never do.
	TriggeredByID() (uuid.UUID, bool)

	message()
}

type envelope struct {
	id            uuid.UUID
	timestamp     time.Time
	runID         string
	triggeredByID uuid.UUID
	hasTrigger    bool
}

func newEnvelope(runID string, triggeredBy *uuid.UUID) envelope {
	e := envelope{
		id:        uuid.New(),
		timestamp: time.Now().UTC(),
		runID:     runID,
	}
	if triggeredBy != nil {
		e.triggeredByID = *triggeredBy
		e.hasTrigger = true
	}
	return e
}

func (e envelope) ID() uuid.UUID        { return e.id }
func (e envelope) Timestamp() time.Time { return e.timestamp }
func (e envelope) RunID() string        { return e.runID }

func (e envelope) TriggeredByID() (uuid.UUID, bool) {
	return e.triggeredByID, e.hasTrigger
}

// CommandEnvelope is embedded by message types representing an intent or
// request. A triggering message is optional: a Command may originate the
// flow.
//
//	type PlaceOrder struct {
//	    clearflow.CommandEnvelope
//	    SKU string
//	}
type CommandEnvelope struct {
	envelope
}

// NewCommandEnvelope constructs the embeddable envelope for a Command.
// triggeredBy may be nil when the command starts a run.
func NewCommandEnvelope(runID string, triggeredBy *uuid.UUID) CommandEnvelope {
	return CommandEnvelope{newEnvelope(runID, triggeredBy)}
}

func (CommandEnvelope) message() {}

// EventEnvelope is embedded by message types representing a fact that has
// already happened. Unlike a Command, an Event must always record what
// triggered it; constructing one without a trigger is a caller error
// reported as InvalidMessage.
//
//	type OrderPlaced struct {
//	    clearflow.EventEnvelope
//	    OrderID string
//	}
type EventEnvelope struct {
	envelope
}

// NewEventEnvelope constructs the embeddable envelope for an Event.
// triggeredBy is required; passing uuid.Nil reports InvalidMessage so the
// zero value can't silently pass as "no trigger".
func NewEventEnvelope(runID string, triggeredBy uuid.UUID) (EventEnvelope, error) {
	if triggeredBy == uuid.Nil {
		return EventEnvelope{}, &InvalidMessageError{Reason: "events must have a triggered-by id"}
	}
	return EventEnvelope{newEnvelope(runID, &triggeredBy)}, nil
}

func (EventEnvelope) message() {}

// TypeOf returns the reflect.Type token for T, suitable for use as the
// outcome argument of FlowBuilder.Route and FlowBuilder.End, or as an
// Observer.MessageType.
//
// T may be a concrete message type (e.g. *OrderPlaced) or an interface
// type that concrete messages implement (e.g. a marker interface an
// Observer registers against to match every event, per spec.md 4.6's
// supertype walk). reflect.TypeOf on a plain zero value of an interface
// type T would return nil — a zero interface carries no dynamic type —
// so TypeOf instead takes the type of a nil *T and unwraps it with Elem,
// which yields the correct reflect.Type in both cases.
func TypeOf[T Message]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// messageType returns the concrete dynamic type backing msg. Because
// concrete messages embed an envelope rather than being one, this is the
// outer type (e.g. *OrderPlaced), never clearflow.EventEnvelope, so routes
// key on it directly.
func messageType(msg Message) reflect.Type {
	t := reflect.TypeOf(msg)
	return t
}

func typeName(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	return t.String()
}

// TypeName returns the concrete runtime type name of msg, e.g. "*pkg.OrderPlaced".
// It is exported for callback handlers and other external observers that
// need to report which message type crossed a hook without importing
// reflect themselves.
func TypeName(msg Message) string {
	if msg == nil {
		return "<nil>"
	}
	return typeName(messageType(msg))
}
