// Package llm provides example clearflow.Node implementations that wrap an
// LLM chat model. These are concrete node implementations, explicitly out
// of the engine's core scope, but exercise model.ChatModel so a flow has
// something real to route through.
package llm

import (
	"context"
	"fmt"

	"github.com/clearflow-dev/clearflow"
	"github.com/clearflow-dev/clearflow/model"
)

// ChatRequested is the command that asks a chat node to produce a reply.
type ChatRequested struct {
	clearflow.CommandEnvelope
	System string
	Prompt string
}

// ChatReplied is the event a chat node emits once the model responds.
type ChatReplied struct {
	clearflow.EventEnvelope
	Text      string
	ToolCalls []model.ToolCall
}

// NewChatNode builds a Node named name that sends System/Prompt to chatModel
// and emits the reply as a ChatReplied triggered by the request.
func NewChatNode(name string, chatModel model.ChatModel) (clearflow.Node, error) {
	return clearflow.NewNode(name, func(ctx context.Context, req *ChatRequested) (*ChatReplied, error) {
		messages := []model.Message{{Role: model.RoleUser, Content: req.Prompt}}
		if req.System != "" {
			messages = append([]model.Message{{Role: model.RoleSystem, Content: req.System}}, messages...)
		}

		out, err := chatModel.Chat(ctx, messages, nil)
		if err != nil {
			return nil, fmt.Errorf("chat node %q: %w", name, err)
		}

		env, envErr := clearflow.NewEventEnvelope(req.RunID(), req.ID())
		if envErr != nil {
			return nil, envErr
		}
		return &ChatReplied{
			EventEnvelope: env,
			Text:          out.Text,
			ToolCalls:     out.ToolCalls,
		}, nil
	})
}
