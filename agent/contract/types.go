package contract

import (
	"strings"
	"time"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAgent Role = "agent"
)

type AgentType string

const (
	AgentTypeSupervisor AgentType = "supervisor"
	AgentTypeWorker     AgentType = "worker"
)

// Part is a tagged variant: exactly one of the fields is set.
type Part struct {
	Text       string      `json:"text,omitempty"`
	ToolCall   *ToolCall   `json:"tool_call,omitempty"`
	ToolResult *ToolResult `json:"tool_result,omitempty"`
}

func TextPart(text string) Part {
	return Part{Text: text}
}

func ToolCallPart(call ToolCall) Part {
	return Part{ToolCall: &call}
}

func ToolResultPart(result ToolResult) Part {
	return Part{ToolResult: &result}
}

// Message is one unit of conversation history. Immutable once appended.
type Message struct {
	Role  Role   `json:"role"`
	Parts []Part `json:"parts"`
}

func NewTextMessage(role Role, text string) Message {
	return Message{Role: role, Parts: []Part{TextPart(text)}}
}

// FirstText returns the first non-empty text part, if any.
func (m Message) FirstText() (string, bool) {
	for _, p := range m.Parts {
		if strings.TrimSpace(p.Text) != "" {
			return p.Text, true
		}
	}
	return "", false
}

// FirstToolResult returns the first tool-result part, if any.
func (m Message) FirstToolResult() (*ToolResult, bool) {
	for _, p := range m.Parts {
		if p.ToolResult != nil {
			return p.ToolResult, true
		}
	}
	return nil, false
}

// ToolCall names a registered tool and carries its raw argument mapping.
// It must validate against the matching descriptor before dispatch.
type ToolCall struct {
	Tool string         `json:"tool"`
	Args map[string]any `json:"args,omitempty"`
}

// Fragment is one typed content item of a tool result.
type Fragment struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

func TextFragment(text string) Fragment {
	return Fragment{Type: "text", Text: text}
}

// ToolResult carries the structured outcome of one tool call. IsError marks a
// tool-level failure; a business "not found" is a normal result with IsError
// false. A result with IsError set still carries non-empty content.
type ToolResult struct {
	Content []Fragment `json:"content"`
	IsError bool       `json:"isError,omitempty"`
}

// Text joins all text fragments of the result.
func (r ToolResult) Text() string {
	parts := make([]string, 0, len(r.Content))
	for _, f := range r.Content {
		if f.Text != "" {
			parts = append(parts, f.Text)
		}
	}
	return strings.Join(parts, "\n")
}

// DelegationEvent is one emitted unit of an agent turn. Err is set only when
// the turn itself failed; tool failures arrive as data inside Message.
type DelegationEvent struct {
	ID      string  `json:"id"`
	Author  string  `json:"author"`
	Message Message `json:"message"`
	Err     error   `json:"-"`
}

// TurnRequest is the input to one Delegate turn.
type TurnRequest struct {
	SessionID string
	History   []Message
	Message   Message
}

type PlanAction string

const (
	ActionReply    PlanAction = "reply"
	ActionDelegate PlanAction = "delegate"
)

type PlanRequest struct {
	UserMessage string    `json:"user_message"`
	History     []Message `json:"history,omitempty"`
	Now         time.Time `json:"now"`
}

// PlanResponse is the supervisor's turn decision: answer directly with Reply,
// or hand Question to the delegate.
type PlanResponse struct {
	Action   PlanAction `json:"action"`
	Reply    string     `json:"reply,omitempty"`
	Question string     `json:"question,omitempty"`
}
