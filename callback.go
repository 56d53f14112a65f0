package clearflow

import (
	"fmt"
	"io"
	"os"
)

// CallbackHandler observes flow execution without being able to affect
// it: a panic or error raised from any hook is recovered, written to the
// diagnostics sink, and otherwise ignored. Embed BaseCallbackHandler to
// implement only the hooks you need.
type CallbackHandler interface {
	OnFlowStart(flowName string, msg Message)
	OnFlowEnd(flowName string, msg Message, err error)
	OnNodeStart(nodeName string, msg Message)
	OnNodeEnd(nodeName string, msg Message, err error)
}

// BaseCallbackHandler implements CallbackHandler with no-op methods, so a
// handler type can embed it and override only the hooks it cares about.
type BaseCallbackHandler struct{}

func (BaseCallbackHandler) OnFlowStart(string, Message)      {}
func (BaseCallbackHandler) OnFlowEnd(string, Message, error) {}
func (BaseCallbackHandler) OnNodeStart(string, Message)      {}
func (BaseCallbackHandler) OnNodeEnd(string, Message, error) {}

// DiagnosticsSink receives reports of callback failures. It defaults to
// os.Stderr, matching the default diagnostic output a handler failure
// produces when nothing else is configured.
var DiagnosticsSink io.Writer = os.Stderr

func reportCallbackFailure(handlerName, hook string, recovered any) {
	fmt.Fprintf(DiagnosticsSink, "clearflow: callback handler %s.%s failed: %v\n", handlerName, hook, recovered)
}

func handlerName(h CallbackHandler) string {
	if h == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%T", h)
}

func safeOnFlowStart(h CallbackHandler, flowName string, msg Message) {
	defer func() {
		if r := recover(); r != nil {
			reportCallbackFailure(handlerName(h), "OnFlowStart", r)
		}
	}()
	h.OnFlowStart(flowName, msg)
}

func safeOnFlowEnd(h CallbackHandler, flowName string, msg Message, err error) {
	defer func() {
		if r := recover(); r != nil {
			reportCallbackFailure(handlerName(h), "OnFlowEnd", r)
		}
	}()
	h.OnFlowEnd(flowName, msg, err)
}

func safeOnNodeStart(h CallbackHandler, nodeName string, msg Message) {
	defer func() {
		if r := recover(); r != nil {
			reportCallbackFailure(handlerName(h), "OnNodeStart", r)
		}
	}()
	h.OnNodeStart(nodeName, msg)
}

func safeOnNodeEnd(h CallbackHandler, nodeName string, msg Message, err error) {
	defer func() {
		if r := recover(); r != nil {
			reportCallbackFailure(handlerName(h), "OnNodeEnd", r)
		}
	}()
	h.OnNodeEnd(nodeName, msg, err)
}

// CompositeHandler fans a single lifecycle event out to several handlers
// in registration order. Each handler is isolated: a panic from one is
// reported to the diagnostics sink and does not prevent the remaining
// handlers from running, matching the isolation semantics of a single
// handler's hooks.
type CompositeHandler struct {
	handlers []CallbackHandler
}

// NewCompositeHandler combines handlers into one, invoked in order.
func NewCompositeHandler(handlers ...CallbackHandler) *CompositeHandler {
	return &CompositeHandler{handlers: handlers}
}

func (c *CompositeHandler) OnFlowStart(flowName string, msg Message) {
	for _, h := range c.handlers {
		safeOnFlowStart(h, flowName, msg)
	}
}

func (c *CompositeHandler) OnFlowEnd(flowName string, msg Message, err error) {
	for _, h := range c.handlers {
		safeOnFlowEnd(h, flowName, msg, err)
	}
}

func (c *CompositeHandler) OnNodeStart(nodeName string, msg Message) {
	for _, h := range c.handlers {
		safeOnNodeStart(h, nodeName, msg)
	}
}

func (c *CompositeHandler) OnNodeEnd(nodeName string, msg Message, err error) {
	for _, h := range c.handlers {
		safeOnNodeEnd(h, nodeName, msg, err)
	}
}
