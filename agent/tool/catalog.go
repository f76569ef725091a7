// Package tool declares the callable CRM operations and the client side of
// the tool-invocation protocol. The catalog is the single source of truth for
// tool schemas: the gateway registers from it and the worker validates
// against it, so adding an operation never touches the transport.
package tool

import (
	"github.com/mark3labs/mcp-go/mcp"
)

const (
	ToolLookupCustomer = "lookup_customer"
	ToolFindOrder      = "find_order"
)

// Field describes one parameter of a tool schema.
type Field struct {
	Name        string
	Description string
	Required    bool
}

// Descriptor declares a callable operation: a name unique within the catalog,
// a natural-language description, and a strict parameter schema.
type Descriptor struct {
	Name        string
	Description string
	Fields      []Field
}

// Catalog returns the full set of tool descriptors. Pure and deterministic.
func Catalog() []Descriptor {
	return []Descriptor{
		{
			Name:        ToolLookupCustomer,
			Description: "Lookup a customer and their lifetime revenue by first and last name.",
			Fields: []Field{
				{Name: "name", Description: "Customer first name", Required: true},
				{Name: "surname", Description: "Customer last name", Required: true},
			},
		},
		{
			Name:        ToolFindOrder,
			Description: "Find an order object by its internal tracking ID to check its status or value.",
			Fields: []Field{
				{Name: "trackingId", Description: "Internal order tracking ID", Required: true},
			},
		},
	}
}

// LookupDescriptor finds a descriptor by tool name.
func LookupDescriptor(name string) (Descriptor, bool) {
	for _, d := range Catalog() {
		if d.Name == name {
			return d, true
		}
	}
	return Descriptor{}, false
}

// MCPTool converts a descriptor into the wire-level tool definition.
func MCPTool(d Descriptor) mcp.Tool {
	opts := []mcp.ToolOption{mcp.WithDescription(d.Description)}
	for _, f := range d.Fields {
		fieldOpts := []mcp.PropertyOption{mcp.Description(f.Description)}
		if f.Required {
			fieldOpts = append(fieldOpts, mcp.Required())
		}
		opts = append(opts, mcp.WithString(f.Name, fieldOpts...))
	}
	return mcp.NewTool(d.Name, opts...)
}
