package tool

import (
	"errors"
	"testing"

	contractx "github.com/crm-online-boutique/crm-concierge/agent/contract"
)

func TestParseRequestLookupCustomer(t *testing.T) {
	t.Parallel()

	req, err := ParseRequest(ToolLookupCustomer, map[string]any{"name": "Jane", "surname": "Smith"})
	if err != nil {
		t.Fatalf("ParseRequest() error = %v", err)
	}
	typed, ok := req.(LookupCustomerRequest)
	if !ok {
		t.Fatalf("unexpected request type %T", req)
	}
	if typed.Name != "Jane" || typed.Surname != "Smith" {
		t.Fatalf("unexpected request: %+v", typed)
	}
}

func TestParseRequestFindOrder(t *testing.T) {
	t.Parallel()

	req, err := ParseRequest(ToolFindOrder, map[string]any{"trackingId": "TRACK123"})
	if err != nil {
		t.Fatalf("ParseRequest() error = %v", err)
	}
	typed, ok := req.(FindOrderRequest)
	if !ok {
		t.Fatalf("unexpected request type %T", req)
	}
	if typed.TrackingID != "TRACK123" {
		t.Fatalf("TrackingID = %q", typed.TrackingID)
	}
}

func TestParseRequestUnknownTool(t *testing.T) {
	t.Parallel()

	_, err := ParseRequest("drop_tables", map[string]any{})
	if !errors.Is(err, contractx.ErrUnknownTool) {
		t.Fatalf("expected ErrUnknownTool, got %v", err)
	}
}

func TestParseRequestArgumentValidation(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		tool string
		args map[string]any
	}{
		{"missing field", ToolFindOrder, map[string]any{}},
		{"non-string field", ToolFindOrder, map[string]any{"trackingId": 42}},
		{"blank field", ToolFindOrder, map[string]any{"trackingId": "   "}},
		{"missing surname", ToolLookupCustomer, map[string]any{"name": "Jane"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := ParseRequest(tc.tool, tc.args)
			if !errors.Is(err, contractx.ErrValidation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
		})
	}
}

func TestCallRebuildsWireShape(t *testing.T) {
	t.Parallel()

	call := Call(FindOrderRequest{TrackingID: "TRACK900"})
	if call.Tool != ToolFindOrder {
		t.Fatalf("Tool = %q", call.Tool)
	}
	if call.Args["trackingId"] != "TRACK900" {
		t.Fatalf("Args = %#v", call.Args)
	}
}

func TestLookupDescriptor(t *testing.T) {
	t.Parallel()

	d, ok := LookupDescriptor(ToolLookupCustomer)
	if !ok {
		t.Fatal("descriptor not found")
	}
	if len(d.Fields) != 2 {
		t.Fatalf("expected 2 fields, got %d", len(d.Fields))
	}
	if _, ok := LookupDescriptor("nope"); ok {
		t.Fatal("expected lookup miss")
	}
}
