package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"

	contractx "github.com/crm-online-boutique/crm-concierge/agent/contract"
)

// historyWindow bounds how much conversation context is replayed to the
// model per turn.
const historyWindow = 12

// Planner decides the supervisor turn with a model. The model must answer in
// the planner JSON shape; anything else is a schema violation, never a guess.
type Planner struct {
	runner compose.Runnable[map[string]any, plannerOutput]
}

var _ contractx.Planner = (*Planner)(nil)

type plannerOutput struct {
	Action   string `json:"action"`
	Reply    string `json:"reply,omitempty"`
	Question string `json:"question,omitempty"`
}

func NewPlanner(ctx context.Context, chatModel einomodel.BaseChatModel, systemPrompt string) (*Planner, error) {
	if strings.TrimSpace(systemPrompt) == "" {
		return nil, fmt.Errorf("%w: supervisor prompt is empty", contractx.ErrPromptMissing)
	}
	runner, err := compileStructuredGraph[plannerOutput](ctx, chatModel, systemPrompt, "supervisor.plan_graph")
	if err != nil {
		return nil, fmt.Errorf("%w: compile supervisor plan graph: %v", contractx.ErrModelInvoke, err)
	}
	return &Planner{runner: runner}, nil
}

func (p *Planner) Plan(ctx context.Context, req contractx.PlanRequest) (contractx.PlanResponse, error) {
	if strings.TrimSpace(req.UserMessage) == "" {
		return contractx.PlanResponse{}, fmt.Errorf("%w: user message is required", contractx.ErrValidation)
	}

	payload := map[string]any{
		"user_message": req.UserMessage,
		"history":      summarizeHistory(req.History),
		"now":          req.Now,
	}
	inputBytes, err := json.Marshal(payload)
	if err != nil {
		return contractx.PlanResponse{}, fmt.Errorf("%w: marshal plan payload: %v", contractx.ErrValidation, err)
	}

	out, err := p.runner.Invoke(ctx, map[string]any{
		"input": string(inputBytes),
	})
	if err != nil {
		return contractx.PlanResponse{}, fmt.Errorf("%w: supervisor plan invoke: %v", contractx.ErrModelInvoke, err)
	}

	resp := contractx.PlanResponse{
		Action:   contractx.PlanAction(strings.TrimSpace(out.Action)),
		Reply:    strings.TrimSpace(out.Reply),
		Question: strings.TrimSpace(out.Question),
	}
	if err := validatePlan(resp); err != nil {
		return contractx.PlanResponse{}, err
	}
	return resp, nil
}

func validatePlan(resp contractx.PlanResponse) error {
	switch resp.Action {
	case contractx.ActionReply:
		if resp.Reply == "" {
			return fmt.Errorf("%w: reply action without reply text", contractx.ErrSchemaViolation)
		}
	case contractx.ActionDelegate:
		if resp.Question == "" {
			return fmt.Errorf("%w: delegate action without question", contractx.ErrSchemaViolation)
		}
	default:
		return fmt.Errorf("%w: unsupported action %q", contractx.ErrSchemaViolation, resp.Action)
	}
	return nil
}

func summarizeHistory(history []contractx.Message) []map[string]string {
	if len(history) > historyWindow {
		history = history[len(history)-historyWindow:]
	}

	out := make([]map[string]string, 0, len(history))
	for _, msg := range history {
		text, ok := msg.FirstText()
		if !ok {
			continue
		}
		out = append(out, map[string]string{
			"role": string(msg.Role),
			"text": text,
		})
	}
	return out
}
