package tools

import (
	"context"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

func registerHealthTools(s *server.MCPServer, deps *Dependencies) {
	s.AddTool(mcp.NewTool("health_check",
		mcp.WithDescription("Check connectivity to all configured services (Anki, Todoist, note vault, Google Calendar) and report overall gateway health."),
	), deps.wrap("health_check", "system", func(ctx context.Context, args map[string]any) (any, error) {
		return deps.Health.Check(ctx), nil
	}))
}

func registerActivityTools(s *server.MCPServer, deps *Dependencies) {
	s.AddTool(mcp.NewTool("activity_recent",
		mcp.WithDescription("Show the most recent tool calls recorded in the activity log, newest first."),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of entries to return (default 20)"),
		),
	), deps.wrap("activity_recent", "system", func(ctx context.Context, args map[string]any) (any, error) {
		return deps.Activity.Recent(argInt(args, "limit", 20))
	}))

	s.AddTool(mcp.NewTool("activity_today",
		mcp.WithDescription("Show all tool calls made since local midnight, oldest first."),
	), deps.wrap("activity_today", "system", func(ctx context.Context, args map[string]any) (any, error) {
		return deps.Activity.Today()
	}))

	s.AddTool(mcp.NewTool("activity_summary",
		mcp.WithDescription("Summarize call and failure counts per tool over a recent window."),
		mcp.WithNumber("hours",
			mcp.Description("Look-back window in hours (default 24)"),
		),
	), deps.wrap("activity_summary", "system", func(ctx context.Context, args map[string]any) (any, error) {
		hours := argInt(args, "hours", 24)
		if hours <= 0 {
			return nil, fmt.Errorf("hours must be positive")
		}
		since := time.Now().Add(-time.Duration(hours) * time.Hour)
		counts, err := deps.Activity.CountsByTool(since)
		if err != nil {
			return nil, err
		}
		return map[string]any{
			"since":   since.Format(time.RFC3339),
			"by_tool": counts,
			"tools":   len(counts),
		}, nil
	}))
}
