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

// ToolPlanner maps a delegated question onto one tool call with a model. An
// empty tool name in the model output means the question is unanswerable with
// the catalog, which the worker turns into a refusal.
type ToolPlanner struct {
	runner compose.Runnable[map[string]any, toolPlanOutput]
}

var _ contractx.ToolPlanner = (*ToolPlanner)(nil)

type toolPlanOutput struct {
	Tool string            `json:"tool"`
	Args map[string]string `json:"args,omitempty"`
}

func NewToolPlanner(ctx context.Context, chatModel einomodel.BaseChatModel, systemPrompt string) (*ToolPlanner, error) {
	if strings.TrimSpace(systemPrompt) == "" {
		return nil, fmt.Errorf("%w: worker prompt is empty", contractx.ErrPromptMissing)
	}
	runner, err := compileStructuredGraph[toolPlanOutput](ctx, chatModel, systemPrompt, "worker.tool_plan_graph")
	if err != nil {
		return nil, fmt.Errorf("%w: compile worker tool plan graph: %v", contractx.ErrModelInvoke, err)
	}
	return &ToolPlanner{runner: runner}, nil
}

func (p *ToolPlanner) PlanCall(ctx context.Context, question string) (contractx.ToolCall, error) {
	if strings.TrimSpace(question) == "" {
		return contractx.ToolCall{}, fmt.Errorf("%w: delegated question is empty", contractx.ErrValidation)
	}

	payload := map[string]any{"question": question}
	inputBytes, err := json.Marshal(payload)
	if err != nil {
		return contractx.ToolCall{}, fmt.Errorf("%w: marshal tool plan payload: %v", contractx.ErrValidation, err)
	}

	out, err := p.runner.Invoke(ctx, map[string]any{
		"input": string(inputBytes),
	})
	if err != nil {
		return contractx.ToolCall{}, fmt.Errorf("%w: worker tool plan invoke: %v", contractx.ErrModelInvoke, err)
	}

	tool := strings.TrimSpace(out.Tool)
	if tool == "" {
		return contractx.ToolCall{}, fmt.Errorf("%w: question does not map to a catalog tool", contractx.ErrValidation)
	}

	args := make(map[string]any, len(out.Args))
	for key, value := range out.Args {
		args[key] = value
	}
	return contractx.ToolCall{Tool: tool, Args: args}, nil
}
