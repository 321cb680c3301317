// Package tools provides MCP tool registration with dependency injection.
package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/lwaldron/wren/internal/activity"
	"github.com/lwaldron/wren/internal/health"
	"github.com/lwaldron/wren/internal/integrations/anki"
	"github.com/lwaldron/wren/internal/integrations/calendar"
	"github.com/lwaldron/wren/internal/integrations/todoist"
	"github.com/lwaldron/wren/internal/logging"
	"github.com/lwaldron/wren/internal/vault"
)

// Dependencies holds all services that MCP tools may need.
// Optional fields may be nil; their tools are not registered.
type Dependencies struct {
	// Required
	Health *health.Checker

	// Optional services
	Anki     *anki.Client
	Todoist  *todoist.Client
	Vault    *vault.Vault
	Calendar *calendar.Client

	// Optional audit log for tool calls
	Activity *activity.Log
}

// handlerFunc is the domain side of a tool: it takes parsed arguments and
// returns either a string or a JSON-serializable value.
type handlerFunc func(ctx context.Context, args map[string]any) (any, error)

// wrap turns a handlerFunc into an MCP tool handler, adding timing,
// activity logging, and result encoding. Domain errors become tool errors,
// not protocol errors.
func (d *Dependencies) wrap(tool, service string, fn handlerFunc) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, _ := req.Params.Arguments.(map[string]any)

		start := time.Now()
		result, err := fn(ctx, args)
		elapsed := time.Since(start)

		if d.Activity != nil {
			rec := activity.Record{
				Tool:       tool,
				Service:    service,
				DurationMS: elapsed.Milliseconds(),
				OK:         err == nil,
			}
			if err != nil {
				rec.Error = err.Error()
			}
			if logErr := d.Activity.Record(rec); logErr != nil {
				logging.Error("activity", "record %s: %v", tool, logErr)
			}
		}

		if err != nil {
			logging.Error(service, "%s failed after %s: %v", tool, elapsed.Round(time.Millisecond), err)
			return mcp.NewToolResultError(err.Error()), nil
		}

		logging.Debug(service, "%s ok in %s", tool, elapsed.Round(time.Millisecond))
		return encodeResult(result)
	}
}

// encodeResult converts a handler's return value into tool output. Strings
// pass through; everything else is pretty-printed JSON.
func encodeResult(v any) (*mcp.CallToolResult, error) {
	if s, ok := v.(string); ok {
		return mcp.NewToolResultText(s), nil
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// Argument extraction helpers. MCP arguments arrive as generic JSON, so
// numbers are float64 and arrays are []any.

func argString(args map[string]any, key string) string {
	s, _ := args[key].(string)
	return s
}

func requireString(args map[string]any, key string) (string, error) {
	s := argString(args, key)
	if s == "" {
		return "", fmt.Errorf("%s is required", key)
	}
	return s, nil
}

func argInt(args map[string]any, key string, def int) int {
	switch v := args[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	default:
		return def
	}
}

func argBool(args map[string]any, key string, def bool) bool {
	if b, ok := args[key].(bool); ok {
		return b
	}
	return def
}

func argStringSlice(args map[string]any, key string) []string {
	raw, ok := args[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// argInt64Slice parses an array of IDs, accepting both numbers and numeric
// strings since models pass IDs either way.
func argInt64Slice(args map[string]any, key string) ([]int64, error) {
	raw, ok := args[key].([]any)
	if !ok {
		return nil, fmt.Errorf("%s is required", key)
	}
	out := make([]int64, 0, len(raw))
	for _, item := range raw {
		switch v := item.(type) {
		case float64:
			out = append(out, int64(v))
		case string:
			var id int64
			if _, err := fmt.Sscanf(v, "%d", &id); err != nil {
				return nil, fmt.Errorf("%s: %q is not a numeric ID", key, v)
			}
			out = append(out, id)
		default:
			return nil, fmt.Errorf("%s: unexpected element type %T", key, item)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%s must not be empty", key)
	}
	return out, nil
}

// argTime parses an RFC 3339 timestamp argument, also accepting the common
// form without an offset (interpreted as local time).
func argTime(args map[string]any, key string) (time.Time, error) {
	s, err := requireString(args, key)
	if err != nil {
		return time.Time{}, err
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation("2006-01-02T15:04:05", s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s: %q is not an ISO 8601 timestamp", key, s)
	}
	return t, nil
}
