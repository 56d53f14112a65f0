package openai

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/clearflow-dev/clearflow/model"
)

func TestNewChatModelDefaults(t *testing.T) {
	m := NewChatModel("key", "")
	if m.modelName != "gpt-4o" {
		t.Errorf("expected default model gpt-4o, got %q", m.modelName)
	}
	if m.maxRetries != 3 {
		t.Errorf("expected 3 retries, got %d", m.maxRetries)
	}
}

func TestChatModelReturnsResponseOnFirstSuccess(t *testing.T) {
	mockClient := &mockOpenAIClient{response: model.ChatOut{Text: "hello"}}
	m := &ChatModel{client: mockClient, maxRetries: 3, retryDelay: time.Millisecond}

	out, err := m.Chat(context.Background(), []model.Message{{Role: model.RoleUser, Content: "hi"}}, nil)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if out.Text != "hello" {
		t.Errorf("expected hello, got %q", out.Text)
	}
	if mockClient.calls != 1 {
		t.Errorf("expected 1 call, got %d", mockClient.calls)
	}
}

func TestChatModelRetriesTransientErrors(t *testing.T) {
	mockClient := &mockOpenAIClient{
		errs: []error{errors.New("503 service unavailable"), errors.New("connection reset")},
		response: model.ChatOut{Text: "recovered"},
	}
	m := &ChatModel{client: mockClient, maxRetries: 3, retryDelay: time.Millisecond}

	out, err := m.Chat(context.Background(), []model.Message{{Role: model.RoleUser, Content: "hi"}}, nil)
	if err != nil {
		t.Fatalf("expected eventual success, got %v", err)
	}
	if out.Text != "recovered" {
		t.Errorf("expected recovered, got %q", out.Text)
	}
	if mockClient.calls != 3 {
		t.Errorf("expected 3 calls (2 failures + success), got %d", mockClient.calls)
	}
}

func TestChatModelDoesNotRetryPermanentErrors(t *testing.T) {
	mockClient := &mockOpenAIClient{errs: []error{errors.New("invalid request: bad schema")}}
	m := &ChatModel{client: mockClient, maxRetries: 3, retryDelay: time.Millisecond}

	_, err := m.Chat(context.Background(), []model.Message{{Role: model.RoleUser, Content: "hi"}}, nil)
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if mockClient.calls != 1 {
		t.Errorf("expected no retries for a permanent error, got %d calls", mockClient.calls)
	}
}

func TestChatModelGivesUpAfterMaxRetries(t *testing.T) {
	mockClient := &mockOpenAIClient{
		errs: []error{
			errors.New("timeout"), errors.New("timeout"), errors.New("timeout"), errors.New("timeout"),
		},
	}
	m := &ChatModel{client: mockClient, maxRetries: 3, retryDelay: time.Millisecond}

	_, err := m.Chat(context.Background(), []model.Message{{Role: model.RoleUser, Content: "hi"}}, nil)
	if err == nil {
		t.Fatal("expected error after exhausting retries")
	}
	if mockClient.calls != 4 {
		t.Errorf("expected 4 calls (initial + 3 retries), got %d", mockClient.calls)
	}
}

func TestChatModelRespectsContextCancellation(t *testing.T) {
	m := NewChatModel("key", "")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := m.Chat(ctx, []model.Message{{Role: model.RoleUser, Content: "hi"}}, nil)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestIsTransientError(t *testing.T) {
	cases := []struct {
		err  error
		want bool
	}{
		{errors.New("503 Service Unavailable"), true},
		{errors.New("connection reset by peer"), true},
		{&rateLimitError{message: "rate limited"}, true},
		{errors.New("400 bad request"), false},
		{nil, false},
	}
	for _, c := range cases {
		if got := isTransientError(c.err); got != c.want {
			t.Errorf("isTransientError(%v) = %v, want %v", c.err, got, c.want)
		}
	}
}

type mockOpenAIClient struct {
	response model.ChatOut
	errs     []error
	calls    int
}

func (m *mockOpenAIClient) createChatCompletion(_ context.Context, _ []model.Message, _ []model.ToolSpec) (model.ChatOut, error) {
	defer func() { m.calls++ }()
	if m.calls < len(m.errs) {
		return model.ChatOut{}, m.errs[m.calls]
	}
	return m.response, nil
}
