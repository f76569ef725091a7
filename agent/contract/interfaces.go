package contract

import "context"

// Delegate is one conversational actor. RunTurn drives a single turn and
// emits its events on the returned channel, which is finite, ordered, closed
// when the turn completes, and must be drained by exactly one consumer.
type Delegate interface {
	Name() string
	RunTurn(ctx context.Context, req TurnRequest) <-chan DelegationEvent
}

// Planner decides how the supervisor handles an inbound user message.
type Planner interface {
	Plan(ctx context.Context, req PlanRequest) (PlanResponse, error)
}

// ToolPlanner maps a delegated data question onto a single tool call.
type ToolPlanner interface {
	PlanCall(ctx context.Context, question string) (ToolCall, error)
}

// Invoker executes one tool call against the remote gateway. The returned
// string is either the serialized tool result or a synthesized error string;
// Invoke never panics and never returns an error value.
type Invoker interface {
	Invoke(ctx context.Context, call ToolCall) string
}
