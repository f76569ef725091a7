// Package worker implements the back-office CRM investigator: a bounded
// delegate whose only capability is the tool-invocation client. It answers
// exclusively with tool output, never from inference.
package worker

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	contractx "github.com/crm-online-boutique/crm-concierge/agent/contract"
	toolx "github.com/crm-online-boutique/crm-concierge/agent/tool"
)

// Name is the worker's agent identity on delegation events.
const Name = "crm_investigator"

const refusalReply = "I can only report data returned by the CRM tools, and I could not map this request to one. Please include a tracking ID or a customer's full name."

type Worker struct {
	planner contractx.ToolPlanner
	invoker contractx.Invoker
}

var _ contractx.Delegate = (*Worker)(nil)

func New(planner contractx.ToolPlanner, invoker contractx.Invoker) (*Worker, error) {
	if planner == nil {
		return nil, errors.New("tool planner is required")
	}
	if invoker == nil {
		return nil, errors.New("tool invoker is required")
	}
	return &Worker{planner: planner, invoker: invoker}, nil
}

func (w *Worker) Name() string {
	return Name
}

// RunTurn answers one delegated question. The turn always completes: tool
// failures arrive as error-flagged results inside the event stream, and a
// question that cannot be mapped to a tool call is refused rather than
// answered from memory.
func (w *Worker) RunTurn(ctx context.Context, req contractx.TurnRequest) <-chan contractx.DelegationEvent {
	events := make(chan contractx.DelegationEvent, 1)

	go func() {
		defer close(events)

		question, ok := req.Message.FirstText()
		if !ok {
			events <- w.textEvent(refusalReply)
			return
		}

		call, err := w.planner.PlanCall(ctx, question)
		if err != nil {
			log.Debug().Err(err).Str("session", req.SessionID).Msg("worker refused question without tool call")
			events <- w.textEvent(refusalReply)
			return
		}

		typed, err := toolx.ParseRequest(call.Tool, call.Args)
		if err != nil {
			events <- w.textEvent(fmt.Sprintf("I could not run that lookup: %v.", err))
			return
		}

		raw := w.invoker.Invoke(ctx, toolx.Call(typed))
		result := toolx.DecodeResult(raw)

		events <- contractx.DelegationEvent{
			ID:     uuid.NewString(),
			Author: Name,
			Message: contractx.Message{
				Role: contractx.RoleAgent,
				Parts: []contractx.Part{
					contractx.ToolCallPart(call),
					contractx.ToolResultPart(result),
					contractx.TextPart(result.Text()),
				},
			},
		}
	}()

	return events
}

func (w *Worker) textEvent(text string) contractx.DelegationEvent {
	return contractx.DelegationEvent{
		ID:      uuid.NewString(),
		Author:  Name,
		Message: contractx.NewTextMessage(contractx.RoleAgent, text),
	}
}
