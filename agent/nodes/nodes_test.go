package runnernode

import (
	"context"
	"errors"
	"testing"
	"time"

	contractx "github.com/crm-online-boutique/crm-concierge/agent/contract"
	statex "github.com/crm-online-boutique/crm-concierge/agent/state"
)

func fixedNow() time.Time {
	return time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC)
}

func TestValidateRequest(t *testing.T) {
	t.Parallel()

	st, err := ValidateRequest(GraphInput{SessionID: " s1 ", Text: " hello "}, fixedNow)
	if err != nil {
		t.Fatalf("ValidateRequest() error = %v", err)
	}
	if st.SessionID != "s1" || st.Text != "hello" {
		t.Fatalf("unexpected state: %+v", st)
	}

	if _, err := ValidateRequest(GraphInput{SessionID: "", Text: "x"}, fixedNow); !errors.Is(err, ErrInvalidSession) {
		t.Fatalf("expected ErrInvalidSession, got %v", err)
	}
	if _, err := ValidateRequest(GraphInput{SessionID: "s", Text: "  "}, fixedNow); !errors.Is(err, ErrInvalidMessage) {
		t.Fatalf("expected ErrInvalidMessage, got %v", err)
	}
}

func TestLoadOrCreateSessionCreatesOnMiss(t *testing.T) {
	t.Parallel()

	store := statex.NewMemoryStore()
	in := &GraphState{SessionID: "fresh", Now: fixedNow()}

	out, err := LoadOrCreateSession(context.Background(), in, store, "app", "user")
	if err != nil {
		t.Fatalf("LoadOrCreateSession() error = %v", err)
	}
	if out.Session == nil {
		t.Fatal("expected a new session")
	}
	if out.Session.Key() != statex.Key("app", "user", "fresh") {
		t.Fatalf("session key = %q", out.Session.Key())
	}
	if len(out.Session.Messages) != 0 {
		t.Fatalf("new session must start empty, got %d messages", len(out.Session.Messages))
	}
}

func TestLoadOrCreateSessionLoadsExisting(t *testing.T) {
	t.Parallel()

	store := statex.NewMemoryStore()
	seed := statex.NewSession("app", "user", "known", fixedNow())
	seed.Append(contractx.NewTextMessage(contractx.RoleUser, "earlier"), fixedNow())
	if err := store.Save(context.Background(), seed); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	in := &GraphState{SessionID: "known", Now: fixedNow()}
	out, err := LoadOrCreateSession(context.Background(), in, store, "app", "user")
	if err != nil {
		t.Fatalf("LoadOrCreateSession() error = %v", err)
	}
	if len(out.Session.Messages) != 1 {
		t.Fatalf("expected loaded history, got %d messages", len(out.Session.Messages))
	}
}

type scriptedDelegate struct {
	events []contractx.DelegationEvent
}

func (scriptedDelegate) Name() string { return "frontend_concierge" }

func (d scriptedDelegate) RunTurn(ctx context.Context, req contractx.TurnRequest) <-chan contractx.DelegationEvent {
	out := make(chan contractx.DelegationEvent, len(d.events))
	for _, ev := range d.events {
		out <- ev
	}
	close(out)
	return out
}

func TestRunSupervisorPicksLastRootText(t *testing.T) {
	t.Parallel()

	in := &GraphState{
		SessionID: "s1",
		Text:      "hello",
		Now:       fixedNow(),
		Session:   statex.NewSession("app", "user", "s1", fixedNow()),
	}

	root := scriptedDelegate{events: []contractx.DelegationEvent{
		{ID: "1", Author: "crm_investigator", Message: contractx.NewTextMessage(contractx.RoleAgent, "raw tool text")},
		{ID: "2", Author: "frontend_concierge", Message: contractx.NewTextMessage(contractx.RoleAgent, "polished answer")},
	}}

	out, err := RunSupervisor(context.Background(), in, root)
	if err != nil {
		t.Fatalf("RunSupervisor() error = %v", err)
	}
	if out.Reply != "polished answer" {
		t.Fatalf("Reply = %q", out.Reply)
	}
	if len(out.Events) != 2 {
		t.Fatalf("expected both events recorded, got %d", len(out.Events))
	}
}

func TestRunSupervisorFallbackWithoutText(t *testing.T) {
	t.Parallel()

	in := &GraphState{
		SessionID: "s2",
		Text:      "hello",
		Now:       fixedNow(),
		Session:   statex.NewSession("app", "user", "s2", fixedNow()),
	}

	out, err := RunSupervisor(context.Background(), in, scriptedDelegate{})
	if err != nil {
		t.Fatalf("RunSupervisor() error = %v", err)
	}
	if out.Reply != thinkingFallback {
		t.Fatalf("Reply = %q, want fallback", out.Reply)
	}
}

func TestRunSupervisorEventErrorFailsTurn(t *testing.T) {
	t.Parallel()

	in := &GraphState{
		SessionID: "s3",
		Text:      "hello",
		Now:       fixedNow(),
		Session:   statex.NewSession("app", "user", "s3", fixedNow()),
	}

	root := scriptedDelegate{events: []contractx.DelegationEvent{
		{ID: "1", Author: "frontend_concierge", Err: errors.New("boom")},
	}}

	if _, err := RunSupervisor(context.Background(), in, root); !errors.Is(err, contractx.ErrDelegation) {
		t.Fatalf("expected ErrDelegation, got %v", err)
	}
}

func TestAppendHistoryOrdersUserFirst(t *testing.T) {
	t.Parallel()

	in := &GraphState{
		SessionID: "s4",
		Text:      "what about my order?",
		Now:       fixedNow(),
		Session:   statex.NewSession("app", "user", "s4", fixedNow()),
		Events: []contractx.DelegationEvent{
			{ID: "1", Author: "crm_investigator", Message: contractx.NewTextMessage(contractx.RoleAgent, "tool output")},
			{ID: "2", Author: "frontend_concierge", Message: contractx.NewTextMessage(contractx.RoleAgent, "final answer")},
			{ID: "3", Author: "frontend_concierge"}, // no parts, skipped
		},
	}

	out, err := AppendHistory(in)
	if err != nil {
		t.Fatalf("AppendHistory() error = %v", err)
	}
	if len(out.Session.Messages) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(out.Session.Messages))
	}
	if out.Session.Messages[0].Role != contractx.RoleUser {
		t.Fatalf("first message role = %q, want user", out.Session.Messages[0].Role)
	}
	if text, _ := out.Session.Messages[2].FirstText(); text != "final answer" {
		t.Fatalf("last message = %q", text)
	}
}

func TestFinalizeReply(t *testing.T) {
	t.Parallel()

	out, err := FinalizeReply(&GraphState{Reply: "  done  "})
	if err != nil {
		t.Fatalf("FinalizeReply() error = %v", err)
	}
	if out.Reply != "done" {
		t.Fatalf("Reply = %q", out.Reply)
	}

	out, err = FinalizeReply(&GraphState{Reply: "   "})
	if err != nil {
		t.Fatalf("FinalizeReply() error = %v", err)
	}
	if out.Reply != thinkingFallback {
		t.Fatalf("Reply = %q, want fallback", out.Reply)
	}
}
