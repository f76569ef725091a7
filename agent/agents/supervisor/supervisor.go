// Package supervisor implements the front-desk concierge: the user-facing
// delegate. It holds no tool access; data questions are handed to its single
// delegation target and the structured answers are translated into
// customer-safe language.
package supervisor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	contractx "github.com/crm-online-boutique/crm-concierge/agent/contract"
)

// Name is the supervisor's agent identity on delegation events.
const Name = "frontend_concierge"

type Supervisor struct {
	planner  contractx.Planner
	delegate contractx.Delegate
	now      func() time.Time
}

var _ contractx.Delegate = (*Supervisor)(nil)

func New(planner contractx.Planner, delegate contractx.Delegate) (*Supervisor, error) {
	if planner == nil {
		return nil, errors.New("planner is required")
	}
	if delegate == nil {
		return nil, errors.New("delegation target is required")
	}
	return &Supervisor{
		planner:  planner,
		delegate: delegate,
		now:      time.Now,
	}, nil
}

func (s *Supervisor) Name() string {
	return Name
}

// RunTurn drives one supervisor turn: decide, optionally delegate, translate,
// emit. Worker events are forwarded in causal order before the supervisor's
// own synthesis event; the channel closes when the turn completes.
func (s *Supervisor) RunTurn(ctx context.Context, req contractx.TurnRequest) <-chan contractx.DelegationEvent {
	events := make(chan contractx.DelegationEvent, 8)

	go func() {
		defer close(events)

		text, ok := req.Message.FirstText()
		if !ok {
			events <- s.errEvent(fmt.Errorf("%w: inbound message has no text", contractx.ErrValidation))
			return
		}

		plan, err := s.planner.Plan(ctx, contractx.PlanRequest{
			UserMessage: text,
			History:     req.History,
			Now:         s.now().UTC(),
		})
		if err != nil {
			events <- s.errEvent(fmt.Errorf("%w: %v", contractx.ErrDelegation, err))
			return
		}

		if plan.Action != contractx.ActionDelegate {
			events <- s.textEvent(plan.Reply)
			return
		}

		log.Debug().Str("session", req.SessionID).Str("delegate", s.delegate.Name()).Msg("delegating data question")

		workerReq := contractx.TurnRequest{
			SessionID: req.SessionID,
			History:   req.History,
			Message:   contractx.NewTextMessage(contractx.RoleAgent, plan.Question),
		}

		var lastResult *contractx.ToolResult
		var lastText string
		for ev := range s.delegate.RunTurn(ctx, workerReq) {
			if ev.Err != nil {
				events <- ev
				return
			}
			events <- ev
			if result, ok := ev.Message.FirstToolResult(); ok {
				lastResult = result
			}
			if t, ok := ev.Message.FirstText(); ok {
				lastText = t
			}
		}

		events <- s.textEvent(s.translate(lastResult, lastText))
	}()

	return events
}

func (s *Supervisor) textEvent(text string) contractx.DelegationEvent {
	return contractx.DelegationEvent{
		ID:      uuid.NewString(),
		Author:  Name,
		Message: contractx.NewTextMessage(contractx.RoleAgent, text),
	}
}

func (s *Supervisor) errEvent(err error) contractx.DelegationEvent {
	return contractx.DelegationEvent{
		ID:     uuid.NewString(),
		Author: Name,
		Err:    err,
	}
}
