package worker

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	contractx "github.com/crm-online-boutique/crm-concierge/agent/contract"
	toolx "github.com/crm-online-boutique/crm-concierge/agent/tool"
)

type fakeToolPlanner struct {
	call contractx.ToolCall
	err  error
}

func (f *fakeToolPlanner) PlanCall(ctx context.Context, question string) (contractx.ToolCall, error) {
	if f.err != nil {
		return contractx.ToolCall{}, f.err
	}
	return f.call, nil
}

type fakeInvoker struct {
	raw   string
	calls []contractx.ToolCall
}

func (f *fakeInvoker) Invoke(ctx context.Context, call contractx.ToolCall) string {
	f.calls = append(f.calls, call)
	return f.raw
}

func TestRunTurnRelaysToolResultVerbatim(t *testing.T) {
	t.Parallel()

	payload, err := json.Marshal(contractx.ToolResult{
		Content: []contractx.Fragment{contractx.TextFragment(`{"orderId":"ORD-1001","trackingId":"TRACK123","totalAmount":25.5,"currency":"USD","customerName":"Jane Smith"}`)},
	})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	invoker := &fakeInvoker{raw: string(payload)}
	w := newTestWorker(t,
		&fakeToolPlanner{call: contractx.ToolCall{
			Tool: toolx.ToolFindOrder,
			Args: map[string]any{"trackingId": "TRACK123"},
		}},
		invoker,
	)

	events := collect(t, w.RunTurn(context.Background(), contractx.TurnRequest{
		SessionID: "s1",
		Message:   contractx.NewTextMessage(contractx.RoleAgent, "find_order trackingId=TRACK123"),
	}))
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}

	ev := events[0]
	if ev.Author != Name {
		t.Fatalf("Author = %q, want %q", ev.Author, Name)
	}
	if len(ev.Message.Parts) != 3 {
		t.Fatalf("expected tool call, tool result, and text parts, got %d", len(ev.Message.Parts))
	}

	result, ok := ev.Message.FirstToolResult()
	if !ok {
		t.Fatal("event must carry the tool result")
	}
	if !strings.Contains(result.Text(), "TRACK123") {
		t.Fatalf("tool output must be relayed untouched: %q", result.Text())
	}
	if len(invoker.calls) != 1 {
		t.Fatalf("expected one invocation, got %d", len(invoker.calls))
	}
}

func TestRunTurnRefusesUnmappableQuestion(t *testing.T) {
	t.Parallel()

	invoker := &fakeInvoker{}
	w := newTestWorker(t,
		&fakeToolPlanner{err: errors.New("no tool fits")},
		invoker,
	)

	events := collect(t, w.RunTurn(context.Background(), contractx.TurnRequest{
		SessionID: "s2",
		Message:   contractx.NewTextMessage(contractx.RoleAgent, "what is the meaning of life"),
	}))
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}

	text, ok := events[0].Message.FirstText()
	if !ok || text != refusalReply {
		t.Fatalf("expected refusal, got %q", text)
	}
	if len(invoker.calls) != 0 {
		t.Fatal("refused question must not reach the invoker")
	}
}

func TestRunTurnRejectsInvalidPlannedCall(t *testing.T) {
	t.Parallel()

	invoker := &fakeInvoker{}
	w := newTestWorker(t,
		&fakeToolPlanner{call: contractx.ToolCall{Tool: "no_such_tool"}},
		invoker,
	)

	events := collect(t, w.RunTurn(context.Background(), contractx.TurnRequest{
		SessionID: "s3",
		Message:   contractx.NewTextMessage(contractx.RoleAgent, "do something weird"),
	}))
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}

	text, _ := events[0].Message.FirstText()
	if !strings.Contains(text, "could not run that lookup") {
		t.Fatalf("unexpected text: %q", text)
	}
	if len(invoker.calls) != 0 {
		t.Fatal("invalid call must not reach the invoker")
	}
}

func TestRunTurnRefusesEmptyMessage(t *testing.T) {
	t.Parallel()

	w := newTestWorker(t, &fakeToolPlanner{}, &fakeInvoker{})

	events := collect(t, w.RunTurn(context.Background(), contractx.TurnRequest{SessionID: "s4"}))
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if text, _ := events[0].Message.FirstText(); text != refusalReply {
		t.Fatalf("expected refusal, got %q", text)
	}
}

func newTestWorker(t *testing.T, planner contractx.ToolPlanner, invoker contractx.Invoker) *Worker {
	t.Helper()
	w, err := New(planner, invoker)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return w
}

func collect(t *testing.T, ch <-chan contractx.DelegationEvent) []contractx.DelegationEvent {
	t.Helper()
	var events []contractx.DelegationEvent
	for ev := range ch {
		events = append(events, ev)
	}
	return events
}
