// Package gateway exposes the tool catalog over the MCP streaming transport.
// Each incoming stream subscription gets its own per-session context inside
// the MCP server, so concurrent clients never share a connection handle.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog/log"

	toolx "github.com/crm-online-boutique/crm-concierge/agent/tool"
	"github.com/crm-online-boutique/crm-concierge/crm"
)

const (
	serverName    = "crm-mcp"
	serverVersion = "1.0.0"
)

type Config struct {
	Addr    string `envconfig:"ADDR" split_words:"true" default:":9081"`
	BaseURL string `envconfig:"BASE_URL" split_words:"true" default:"http://localhost:9081"`
}

// Gateway validates tool calls against the catalog, answers them from the
// backing store, and serves both over SSE. All operations are read-only.
type Gateway struct {
	store crm.Store
	mcp   *server.MCPServer
}

func New(store crm.Store) (*Gateway, error) {
	if store == nil {
		return nil, errors.New("crm store is required")
	}

	g := &Gateway{store: store}

	s := server.NewMCPServer(serverName, serverVersion, server.WithToolCapabilities(false))
	for _, d := range toolx.Catalog() {
		name := d.Name
		s.AddTool(toolx.MCPTool(d), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return g.CallTool(ctx, name, req.GetArguments()), nil
		})
	}
	g.mcp = s

	return g, nil
}

// ListTools returns the full catalog unconditionally.
func (g *Gateway) ListTools() []toolx.Descriptor {
	return toolx.Catalog()
}

// CallTool is the single dispatch path for every tool invocation. It never
// fails the transport: validation errors and store failures come back as
// error-flagged results, and a business not-found is a normal result with
// explanatory text.
func (g *Gateway) CallTool(ctx context.Context, name string, args map[string]any) *mcp.CallToolResult {
	started := time.Now()

	req, err := toolx.ParseRequest(name, args)
	if err != nil {
		log.Warn().Err(err).Str("tool", name).Msg("rejected tool call")
		return mcp.NewToolResultError(err.Error())
	}

	var result *mcp.CallToolResult
	switch r := req.(type) {
	case toolx.LookupCustomerRequest:
		result = g.lookupCustomer(ctx, r)
	case toolx.FindOrderRequest:
		result = g.findOrder(ctx, r)
	default:
		result = mcp.NewToolResultError(fmt.Sprintf("Unknown tool: %s", name))
	}

	log.Debug().
		Str("tool", name).
		Dur("elapsed", time.Since(started)).
		Bool("is_error", result.IsError).
		Msg("tool call served")
	return result
}

func (g *Gateway) lookupCustomer(ctx context.Context, req toolx.LookupCustomerRequest) *mcp.CallToolResult {
	profile, err := g.store.LookupCustomer(ctx, req.Name, req.Surname)
	if errors.Is(err, crm.ErrCustomerNotFound) {
		return mcp.NewToolResultText(fmt.Sprintf("Customer %s %s not found.", req.Name, req.Surname))
	}
	if err != nil {
		log.Error().Err(err).Str("tool", toolx.ToolLookupCustomer).Msg("backing store failure")
		return mcp.NewToolResultError(err.Error())
	}

	payload, err := json.Marshal(profile)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encode customer profile: %v", err))
	}
	return mcp.NewToolResultText(string(payload))
}

func (g *Gateway) findOrder(ctx context.Context, req toolx.FindOrderRequest) *mcp.CallToolResult {
	summary, err := g.store.FindOrder(ctx, req.TrackingID)
	if errors.Is(err, crm.ErrOrderNotFound) {
		return mcp.NewToolResultText(fmt.Sprintf("Order with tracking ID %s not found.", req.TrackingID))
	}
	if err != nil {
		log.Error().Err(err).Str("tool", toolx.ToolFindOrder).Msg("backing store failure")
		return mcp.NewToolResultError(err.Error())
	}

	payload, err := json.Marshal(summary)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encode order summary: %v", err))
	}
	return mcp.NewToolResultText(string(payload))
}

// MCPServer exposes the underlying protocol server, mainly for tests.
func (g *Gateway) MCPServer() *server.MCPServer {
	return g.mcp
}

// SSEServer wraps the gateway in its streaming transport: clients subscribe
// at /sse and post correlated requests at /message.
func (g *Gateway) SSEServer(baseURL string) *server.SSEServer {
	return server.NewSSEServer(g.mcp,
		server.WithBaseURL(baseURL),
		server.WithSSEEndpoint("/sse"),
		server.WithMessageEndpoint("/message"),
	)
}
