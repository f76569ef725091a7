// Package planner holds the deterministic turn planners. They are the
// default decision layer and the test surface; the LLM-backed planners in
// agent/llm implement the same contracts.
package planner

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	contractx "github.com/crm-online-boutique/crm-concierge/agent/contract"
	toolx "github.com/crm-online-boutique/crm-concierge/agent/tool"
)

var (
	// "tracking TRACK123", "tracking id TRACK123", "tracking number #TRACK123"
	trackingPattern = regexp.MustCompile(`(?i)\btracking\s+(?:id\s+|number\s+)?#?([A-Za-z0-9_-]{4,})`)
	// bare tracking-style token, e.g. TRACK123 or SHIP-42A
	trackingTokenPattern = regexp.MustCompile(`\b([A-Z]{2,}-?[0-9]{2,}[A-Z0-9-]*)\b`)
	fullNamePattern      = regexp.MustCompile(`\b([A-Z][a-z]+)\s+([A-Z][a-z]+)\b`)

	orderKeywords    = []string{"order", "tracking", "package", "shipment", "delivery"}
	customerKeywords = []string{"customer", "spent", "revenue", "lifetime", "vip", "account", "spend"}
)

const defaultReply = "Hello! I can check on an order by its tracking reference or look up a customer's account for you. How can I help?"

// RulePlanner decides the supervisor turn without a model: questions that
// mention tracking references or customer accounts are delegated, everything
// else is answered directly.
type RulePlanner struct{}

var _ contractx.Planner = RulePlanner{}

func (RulePlanner) Plan(ctx context.Context, req contractx.PlanRequest) (contractx.PlanResponse, error) {
	text := strings.TrimSpace(req.UserMessage)
	if text == "" {
		return contractx.PlanResponse{}, fmt.Errorf("%w: user message is empty", contractx.ErrValidation)
	}

	if trackingID, ok := extractTrackingID(text); ok {
		return contractx.PlanResponse{
			Action:   contractx.ActionDelegate,
			Question: fmt.Sprintf("%s trackingId=%s", toolx.ToolFindOrder, trackingID),
		}, nil
	}

	if first, last, ok := extractCustomerName(text); ok {
		return contractx.PlanResponse{
			Action:   contractx.ActionDelegate,
			Question: fmt.Sprintf("%s name=%s surname=%s", toolx.ToolLookupCustomer, first, last),
		}, nil
	}

	return contractx.PlanResponse{
		Action: contractx.ActionReply,
		Reply:  defaultReply,
	}, nil
}

func extractTrackingID(text string) (string, bool) {
	if m := trackingPattern.FindStringSubmatch(text); m != nil {
		return m[1], true
	}
	if !containsAny(text, orderKeywords) {
		return "", false
	}
	if m := trackingTokenPattern.FindStringSubmatch(text); m != nil {
		return m[1], true
	}
	return "", false
}

func extractCustomerName(text string) (string, string, bool) {
	if !containsAny(text, customerKeywords) {
		return "", "", false
	}
	if m := fullNamePattern.FindStringSubmatch(text); m != nil {
		return m[1], m[2], true
	}
	return "", "", false
}

func containsAny(text string, keywords []string) bool {
	lower := strings.ToLower(text)
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// RuleToolPlanner maps a delegated question of the form
// "tool_name key=value ..." onto a tool call. Anything else is rejected so
// the worker's no-fabrication guard kicks in.
type RuleToolPlanner struct{}

var _ contractx.ToolPlanner = RuleToolPlanner{}

func (RuleToolPlanner) PlanCall(ctx context.Context, question string) (contractx.ToolCall, error) {
	fields := strings.Fields(strings.TrimSpace(question))
	if len(fields) == 0 {
		return contractx.ToolCall{}, fmt.Errorf("%w: delegated question is empty", contractx.ErrValidation)
	}

	call := contractx.ToolCall{
		Tool: fields[0],
		Args: make(map[string]any, len(fields)-1),
	}
	for _, field := range fields[1:] {
		key, value, ok := strings.Cut(field, "=")
		if !ok || key == "" || value == "" {
			return contractx.ToolCall{}, fmt.Errorf("%w: malformed argument %q", contractx.ErrValidation, field)
		}
		call.Args[key] = value
	}
	return call, nil
}
