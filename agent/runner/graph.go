package runner

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/compose"

	runnernode "github.com/crm-online-boutique/crm-concierge/agent/nodes"
)

func (r *Runner) compileTurnGraph(
	ctx context.Context,
) (compose.Runnable[runnernode.GraphInput, runnernode.GraphOutput], error) {
	graph := compose.NewGraph[runnernode.GraphInput, runnernode.GraphOutput]()

	if err := graph.AddLambdaNode("validate_request",
		compose.InvokableLambda(func(ctx context.Context, in runnernode.GraphInput) (*runnernode.GraphState, error) {
			return runnernode.ValidateRequest(in, r.now)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node validate_request: %w", err)
	}

	if err := graph.AddLambdaNode("load_or_create_session",
		compose.InvokableLambda(func(ctx context.Context, in *runnernode.GraphState) (*runnernode.GraphState, error) {
			return runnernode.LoadOrCreateSession(ctx, in, r.store, r.appName, r.userID)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node load_or_create_session: %w", err)
	}

	if err := graph.AddLambdaNode("run_supervisor",
		compose.InvokableLambda(func(ctx context.Context, in *runnernode.GraphState) (*runnernode.GraphState, error) {
			return runnernode.RunSupervisor(ctx, in, r.root)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node run_supervisor: %w", err)
	}

	if err := graph.AddLambdaNode("append_history",
		compose.InvokableLambda(func(ctx context.Context, in *runnernode.GraphState) (*runnernode.GraphState, error) {
			return runnernode.AppendHistory(in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node append_history: %w", err)
	}

	if err := graph.AddLambdaNode("save_session",
		compose.InvokableLambda(func(ctx context.Context, in *runnernode.GraphState) (*runnernode.GraphState, error) {
			return runnernode.SaveSession(ctx, in, r.store)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node save_session: %w", err)
	}

	if err := graph.AddLambdaNode("publish_audit",
		compose.InvokableLambda(func(ctx context.Context, in *runnernode.GraphState) (*runnernode.GraphState, error) {
			return runnernode.PublishAudit(ctx, in, r.audit)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node publish_audit: %w", err)
	}

	if err := graph.AddLambdaNode("finalize_reply",
		compose.InvokableLambda(func(ctx context.Context, in *runnernode.GraphState) (runnernode.GraphOutput, error) {
			return runnernode.FinalizeReply(in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node finalize_reply: %w", err)
	}

	edges := [][2]string{
		{compose.START, "validate_request"},
		{"validate_request", "load_or_create_session"},
		{"load_or_create_session", "run_supervisor"},
		{"run_supervisor", "append_history"},
		{"append_history", "save_session"},
		{"save_session", "publish_audit"},
		{"publish_audit", "finalize_reply"},
		{"finalize_reply", compose.END},
	}

	for _, edge := range edges {
		if err := graph.AddEdge(edge[0], edge[1]); err != nil {
			return nil, fmt.Errorf("add edge %s->%s: %w", edge[0], edge[1], err)
		}
	}

	graphRunner, err := graph.Compile(ctx, compose.WithGraphName("runner.turn"))
	if err != nil {
		return nil, fmt.Errorf("compile runner turn graph: %w", err)
	}
	return graphRunner, nil
}
