package tool

import (
	"fmt"
	"strings"

	contractx "github.com/crm-online-boutique/crm-concierge/agent/contract"
)

// Request is a schema-validated tool call, one concrete case per catalog
// entry. Unrecognized tool names are rejected at ParseRequest.
type Request interface {
	Tool() string
	Arguments() map[string]any
}

type LookupCustomerRequest struct {
	Name    string
	Surname string
}

func (LookupCustomerRequest) Tool() string { return ToolLookupCustomer }

func (r LookupCustomerRequest) Arguments() map[string]any {
	return map[string]any{"name": r.Name, "surname": r.Surname}
}

type FindOrderRequest struct {
	TrackingID string
}

func (FindOrderRequest) Tool() string { return ToolFindOrder }

func (r FindOrderRequest) Arguments() map[string]any {
	return map[string]any{"trackingId": r.TrackingID}
}

// ParseRequest validates a raw tool call against the catalog and returns the
// matching typed request. Missing or non-string required fields fail with
// ErrValidation; names absent from the catalog fail with ErrUnknownTool.
func ParseRequest(name string, args map[string]any) (Request, error) {
	switch name {
	case ToolLookupCustomer:
		first, err := stringArg(args, "name")
		if err != nil {
			return nil, err
		}
		surname, err := stringArg(args, "surname")
		if err != nil {
			return nil, err
		}
		return LookupCustomerRequest{Name: first, Surname: surname}, nil
	case ToolFindOrder:
		trackingID, err := stringArg(args, "trackingId")
		if err != nil {
			return nil, err
		}
		return FindOrderRequest{TrackingID: trackingID}, nil
	default:
		return nil, fmt.Errorf("%w: %s", contractx.ErrUnknownTool, name)
	}
}

// Call converts a typed request back into the wire-level call shape.
func Call(r Request) contractx.ToolCall {
	return contractx.ToolCall{Tool: r.Tool(), Args: r.Arguments()}
}

func stringArg(args map[string]any, key string) (string, error) {
	raw, ok := args[key]
	if !ok {
		return "", fmt.Errorf("%w: missing required argument %q", contractx.ErrValidation, key)
	}
	s, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("%w: argument %q must be a string", contractx.ErrValidation, key)
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("%w: argument %q is empty", contractx.ErrValidation, key)
	}
	return s, nil
}
