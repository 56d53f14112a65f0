package clearflow

import (
	"context"
	"errors"
	"testing"
)

type rawIn struct {
	CommandEnvelope
	N int
}

type rawOut struct {
	EventEnvelope
	Doubled int
}

func TestNewNodeProcessesTypedMessages(t *testing.T) {
	node, err := NewNode("double", func(ctx context.Context, in *rawIn) (*rawOut, error) {
		trigger := in.ID()
		out, oerr := NewEventEnvelope(in.RunID(), trigger)
		if oerr != nil {
			return nil, oerr
		}
		return &rawOut{EventEnvelope: out, Doubled: in.N * 2}, nil
	})
	if err != nil {
		t.Fatalf("NewNode returned error: %v", err)
	}

	in := &rawIn{CommandEnvelope: NewCommandEnvelope("run-1", nil), N: 21}
	result, err := node.Process(context.Background(), in)
	if err != nil {
		t.Fatalf("Process returned error: %v", err)
	}
	out, ok := result.(*rawOut)
	if !ok {
		t.Fatalf("Process returned %T, want *rawOut", result)
	}
	if out.Doubled != 42 {
		t.Errorf("Doubled = %d, want 42", out.Doubled)
	}
}

func TestNewNodeRejectsEmptyName(t *testing.T) {
	_, err := NewNode("  ", func(ctx context.Context, in *rawIn) (*rawOut, error) {
		return nil, nil
	})
	if err == nil {
		t.Fatal("expected error for empty node name")
	}
}

func TestNewNodeWrapsExecError(t *testing.T) {
	wantErr := errors.New("boom")
	node, err := NewNode("failing", func(ctx context.Context, in *rawIn) (*rawOut, error) {
		return nil, wantErr
	})
	if err != nil {
		t.Fatalf("NewNode returned error: %v", err)
	}

	in := &rawIn{CommandEnvelope: NewCommandEnvelope("run-1", nil)}
	_, err = node.Process(context.Background(), in)
	if err == nil {
		t.Fatal("expected error from Process")
	}
	var nf *NodeFailureError
	if !errors.As(err, &nf) {
		t.Fatalf("expected *NodeFailureError, got %T", err)
	}
	if !errors.Is(err, wantErr) {
		t.Errorf("expected wrapped error to unwrap to %v", wantErr)
	}
}

func TestNewNodeCapturesTypeTokens(t *testing.T) {
	node, err := NewNode("double", func(ctx context.Context, in *rawIn) (*rawOut, error) {
		return nil, nil
	})
	if err != nil {
		t.Fatalf("NewNode returned error: %v", err)
	}
	fn, ok := node.(*funcNode)
	if !ok {
		t.Fatalf("expected *funcNode, got %T", node)
	}
	if fn.inputType() != TypeOf[*rawIn]() {
		t.Errorf("inputType() = %v, want %v", fn.inputType(), TypeOf[*rawIn]())
	}
	if fn.outputType() != TypeOf[*rawOut]() {
		t.Errorf("outputType() = %v, want %v", fn.outputType(), TypeOf[*rawOut]())
	}
}

func TestNewNodeWithMessageInterfaceHasNoTypeToken(t *testing.T) {
	node, err := NewNode("passthrough", func(ctx context.Context, in Message) (Message, error) {
		return in, nil
	})
	if err != nil {
		t.Fatalf("NewNode returned error: %v", err)
	}
	fn := node.(*funcNode)
	if fn.inputType() != nil {
		t.Errorf("inputType() = %v, want nil for untyped node", fn.inputType())
	}
	if fn.outputType() != nil {
		t.Errorf("outputType() = %v, want nil for untyped node", fn.outputType())
	}
}
