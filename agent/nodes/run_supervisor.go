package runnernode

import (
	"context"
	"fmt"

	contractx "github.com/crm-online-boutique/crm-concierge/agent/contract"
)

// thinkingFallback is returned when a turn completes without a single
// user-facing text event.
const thinkingFallback = "The agent is thinking..."

// RunSupervisor hands the user's message to the root delegate and drains its
// event stream to completion. The reply shown to the user is the last text
// authored by the root delegate itself; delegated sub-agent events are kept
// for the history but never surface directly.
func RunSupervisor(ctx context.Context, in *GraphState, root contractx.Delegate) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}
	if in.Session == nil {
		return nil, fmt.Errorf("%w: session is not loaded", contractx.ErrValidation)
	}

	req := contractx.TurnRequest{
		SessionID: in.SessionID,
		History:   in.Session.HistorySnapshot(),
		Message:   contractx.NewTextMessage(contractx.RoleUser, in.Text),
	}

	reply := ""
	for ev := range root.RunTurn(ctx, req) {
		if ev.Err != nil {
			return nil, fmt.Errorf("%w: %v", contractx.ErrDelegation, ev.Err)
		}
		in.Events = append(in.Events, ev)
		if ev.Author != root.Name() {
			continue
		}
		if text, ok := ev.Message.FirstText(); ok {
			reply = text
		}
	}

	if reply == "" {
		reply = thinkingFallback
	}
	in.Reply = reply
	return in, nil
}
