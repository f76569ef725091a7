package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/rs/zerolog/log"

	contractx "github.com/crm-online-boutique/crm-concierge/agent/contract"
)

// ClientErrorPrefix marks a synthesized transport-failure result. Everything
// after the prefix is the underlying error message.
const ClientErrorPrefix = "[MCP Client Error] "

const (
	clientName    = "crm-concierge-worker"
	clientVersion = "1.0.0"
)

type InvokerConfig struct {
	// GatewayURL is the base URL of the gateway's streaming endpoint; the
	// subscribe stream lives at <GatewayURL>/sse.
	GatewayURL string `envconfig:"GATEWAY_URL" split_words:"true" default:"http://localhost:9081"`
	// Timeout bounds one whole invocation: connect, handshake, and the
	// awaited response.
	Timeout time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"5s"`
}

// MCPInvoker performs one tool call per connection: open, handshake, call,
// tear down. Connections are never pooled or reused. Every failure below
// this boundary is converted into a textual result so a failing tool call
// can never crash the invoking agent.
type MCPInvoker struct {
	sseURL  string
	timeout time.Duration
}

var _ contractx.Invoker = (*MCPInvoker)(nil)

func NewMCPInvoker(cfg InvokerConfig) *MCPInvoker {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &MCPInvoker{
		sseURL:  strings.TrimRight(strings.TrimSpace(cfg.GatewayURL), "/") + "/sse",
		timeout: timeout,
	}
}

// Invoke executes one call and returns the serialized ToolResult, or a
// ClientErrorPrefix string on any connect/handshake/call/timeout failure.
func (i *MCPInvoker) Invoke(ctx context.Context, call contractx.ToolCall) string {
	result, err := i.call(ctx, call)
	if err != nil {
		log.Warn().Err(err).Str("tool", call.Tool).Msg("tool invocation failed")
		return ClientErrorPrefix + err.Error()
	}

	payload, err := json.Marshal(result)
	if err != nil {
		log.Warn().Err(err).Str("tool", call.Tool).Msg("tool result serialization failed")
		return ClientErrorPrefix + err.Error()
	}
	return string(payload)
}

func (i *MCPInvoker) call(ctx context.Context, call contractx.ToolCall) (contractx.ToolResult, error) {
	ctx, cancel := context.WithTimeout(ctx, i.timeout)
	defer cancel()

	c, err := client.NewSSEMCPClient(i.sseURL)
	if err != nil {
		return contractx.ToolResult{}, fmt.Errorf("open transport: %w", err)
	}
	defer c.Close()

	if err := c.Start(ctx); err != nil {
		return contractx.ToolResult{}, fmt.Errorf("connect %s: %w", i.sseURL, err)
	}
	if err := i.handshake(ctx, c); err != nil {
		return contractx.ToolResult{}, err
	}

	req := mcp.CallToolRequest{}
	req.Params.Name = call.Tool
	req.Params.Arguments = call.Args

	res, err := c.CallTool(ctx, req)
	if err != nil {
		return contractx.ToolResult{}, fmt.Errorf("call %s: %w", call.Tool, err)
	}
	return fromMCPResult(res), nil
}

// ListTools opens a fresh connection and asks the gateway which operations
// it supports.
func (i *MCPInvoker) ListTools(ctx context.Context) ([]mcp.Tool, error) {
	ctx, cancel := context.WithTimeout(ctx, i.timeout)
	defer cancel()

	c, err := client.NewSSEMCPClient(i.sseURL)
	if err != nil {
		return nil, fmt.Errorf("open transport: %w", err)
	}
	defer c.Close()

	if err := c.Start(ctx); err != nil {
		return nil, fmt.Errorf("connect %s: %w", i.sseURL, err)
	}
	if err := i.handshake(ctx, c); err != nil {
		return nil, err
	}

	res, err := c.ListTools(ctx, mcp.ListToolsRequest{})
	if err != nil {
		return nil, fmt.Errorf("list tools: %w", err)
	}
	return res.Tools, nil
}

func (i *MCPInvoker) handshake(ctx context.Context, c *client.Client) error {
	initReq := mcp.InitializeRequest{}
	initReq.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	initReq.Params.ClientInfo = mcp.Implementation{
		Name:    clientName,
		Version: clientVersion,
	}
	if _, err := c.Initialize(ctx, initReq); err != nil {
		return fmt.Errorf("handshake: %w", err)
	}
	return nil
}

func fromMCPResult(res *mcp.CallToolResult) contractx.ToolResult {
	out := contractx.ToolResult{}
	if res == nil {
		return out
	}
	out.IsError = res.IsError
	for _, item := range res.Content {
		switch c := item.(type) {
		case mcp.TextContent:
			out.Content = append(out.Content, contractx.TextFragment(c.Text))
		case *mcp.TextContent:
			out.Content = append(out.Content, contractx.TextFragment(c.Text))
		}
	}
	return out
}

// DecodeResult parses an Invoke return value back into a structured result.
// Transport-failure strings become an error-flagged result carrying the raw
// text, so callers can treat every outcome as data.
func DecodeResult(raw string) contractx.ToolResult {
	trimmed := strings.TrimSpace(raw)
	if strings.HasPrefix(trimmed, ClientErrorPrefix) {
		return contractx.ToolResult{
			Content: []contractx.Fragment{contractx.TextFragment(trimmed)},
			IsError: true,
		}
	}

	var result contractx.ToolResult
	if err := json.Unmarshal([]byte(trimmed), &result); err == nil {
		// An error result must stay error-flagged even when the gateway
		// sent no content; backfill the raw payload so it stays well-formed.
		if result.IsError && len(result.Content) == 0 {
			result.Content = []contractx.Fragment{contractx.TextFragment(trimmed)}
		}
		if len(result.Content) > 0 {
			return result
		}
	}
	return contractx.ToolResult{
		Content: []contractx.Fragment{contractx.TextFragment(trimmed)},
	}
}
