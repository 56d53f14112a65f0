package clearflow

import (
	"reflect"
	"testing"

	"github.com/google/uuid"
)

type testCommand struct {
	CommandEnvelope
	Value string
}

type testEvent struct {
	EventEnvelope
	Value string
}

func TestNewCommandEnvelopeWithoutTrigger(t *testing.T) {
	env := NewCommandEnvelope("run-1", nil)
	if _, ok := env.TriggeredByID(); ok {
		t.Error("expected no triggered-by id for an originating command")
	}
	if env.RunID() != "run-1" {
		t.Errorf("RunID() = %q, want %q", env.RunID(), "run-1")
	}
	if env.ID() == uuid.Nil {
		t.Error("expected a non-nil id")
	}
}

func TestNewCommandEnvelopeWithTrigger(t *testing.T) {
	triggerID := uuid.New()
	env := NewCommandEnvelope("run-1", &triggerID)
	got, ok := env.TriggeredByID()
	if !ok || got != triggerID {
		t.Errorf("TriggeredByID() = (%v, %v), want (%v, true)", got, ok, triggerID)
	}
}

func TestNewEventEnvelopeRequiresTrigger(t *testing.T) {
	_, err := NewEventEnvelope("run-1", uuid.Nil)
	if err == nil {
		t.Fatal("expected error when constructing an event without a trigger")
	}
	var invalidErr *InvalidMessageError
	if !asInvalidMessage(err, &invalidErr) {
		t.Errorf("expected *InvalidMessageError, got %T", err)
	}
}

func TestNewEventEnvelopeWithTrigger(t *testing.T) {
	triggerID := uuid.New()
	env, err := NewEventEnvelope("run-1", triggerID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, ok := env.TriggeredByID()
	if !ok || got != triggerID {
		t.Errorf("TriggeredByID() = (%v, %v), want (%v, true)", got, ok, triggerID)
	}
}

func TestMessageIdentityEquality(t *testing.T) {
	a := &testEvent{Value: "a"}
	b := &testEvent{Value: "a"}
	if a == b {
		t.Fatal("distinct allocations must not compare equal")
	}
	var c Message = a
	var d Message = a
	if c != d {
		t.Error("the same pointer must compare equal through the Message interface")
	}
}

func TestTypeOfMatchesMessageType(t *testing.T) {
	msg := &testEvent{Value: "x"}
	var asMessage Message = msg
	if messageType(asMessage) != TypeOf[*testEvent]() {
		t.Errorf("messageType(msg) = %v, want %v", messageType(asMessage), TypeOf[*testEvent]())
	}
}

type markerInterface interface {
	Message
	marker()
}

func (testEvent) marker() {}

func TestTypeOfWorksForInterfaceTypeParameters(t *testing.T) {
	msg := &testEvent{Value: "x"}
	markerType := TypeOf[markerInterface]()
	if markerType == nil {
		t.Fatal("TypeOf[markerInterface]() returned nil; interface type tokens must be non-nil for Observer supertype matching")
	}
	if markerType.Kind() != reflect.Interface {
		t.Errorf("TypeOf[markerInterface]().Kind() = %v, want Interface", markerType.Kind())
	}
	if !messageType(msg).Implements(markerType) {
		t.Errorf("%v does not implement %v", messageType(msg), markerType)
	}
}

func asInvalidMessage(err error, target **InvalidMessageError) bool {
	ie, ok := err.(*InvalidMessageError)
	if !ok {
		return false
	}
	*target = ie
	return true
}
