package tools

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/lwaldron/wren/internal/activity"
	"github.com/lwaldron/wren/internal/schedule"
)

func callWith(args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if len(result.Content) == 0 {
		t.Fatal("empty result content")
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("content is %T, want TextContent", result.Content[0])
	}
	return text.Text
}

func TestWrapEncodesStringResult(t *testing.T) {
	deps := &Dependencies{}
	handler := deps.wrap("test_tool", "test", func(ctx context.Context, args map[string]any) (any, error) {
		return "done: " + argString(args, "name"), nil
	})

	result, err := handler(context.Background(), callWith(map[string]any{"name": "x"}))
	if err != nil {
		t.Fatalf("handler: %v", err)
	}
	if result.IsError {
		t.Fatal("unexpected tool error")
	}
	if got := resultText(t, result); got != "done: x" {
		t.Errorf("text = %q", got)
	}
}

func TestWrapEncodesStructAsJSON(t *testing.T) {
	deps := &Dependencies{}
	handler := deps.wrap("test_tool", "test", func(ctx context.Context, args map[string]any) (any, error) {
		return map[string]any{"count": 3}, nil
	})

	result, err := handler(context.Background(), callWith(nil))
	if err != nil {
		t.Fatalf("handler: %v", err)
	}
	if got := resultText(t, result); !strings.Contains(got, `"count": 3`) {
		t.Errorf("text = %q", got)
	}
}

func TestWrapTurnsDomainErrorIntoToolError(t *testing.T) {
	deps := &Dependencies{}
	handler := deps.wrap("test_tool", "test", func(ctx context.Context, args map[string]any) (any, error) {
		return nil, errors.New("service unreachable")
	})

	result, err := handler(context.Background(), callWith(nil))
	if err != nil {
		t.Fatalf("domain errors must not become protocol errors: %v", err)
	}
	if !result.IsError {
		t.Fatal("result should be marked as error")
	}
	if got := resultText(t, result); got != "service unreachable" {
		t.Errorf("text = %q", got)
	}
}

func TestWrapRecordsActivity(t *testing.T) {
	log, err := activity.Open(t.TempDir())
	if err != nil {
		t.Fatalf("open activity log: %v", err)
	}
	defer log.Close()

	deps := &Dependencies{Activity: log}
	ok := deps.wrap("ok_tool", "test", func(ctx context.Context, args map[string]any) (any, error) {
		return "fine", nil
	})
	bad := deps.wrap("bad_tool", "test", func(ctx context.Context, args map[string]any) (any, error) {
		return nil, errors.New("boom")
	})

	ok(context.Background(), callWith(nil))
	bad(context.Background(), callWith(nil))

	records, err := log.Recent(10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	// Newest first.
	if records[0].Tool != "bad_tool" || records[0].OK || records[0].Error != "boom" {
		t.Errorf("bad record = %+v", records[0])
	}
	if records[1].Tool != "ok_tool" || !records[1].OK {
		t.Errorf("ok record = %+v", records[1])
	}
}

func TestActivitySummaryCountsFailures(t *testing.T) {
	log, err := activity.Open(t.TempDir())
	if err != nil {
		t.Fatalf("open activity log: %v", err)
	}
	defer log.Close()

	deps := &Dependencies{Activity: log}
	ok := deps.wrap("ok_tool", "test", func(ctx context.Context, args map[string]any) (any, error) {
		return "fine", nil
	})
	bad := deps.wrap("bad_tool", "test", func(ctx context.Context, args map[string]any) (any, error) {
		return nil, errors.New("boom")
	})

	ok(context.Background(), callWith(nil))
	ok(context.Background(), callWith(nil))
	bad(context.Background(), callWith(nil))

	counts, err := log.CountsByTool(time.Now().Add(-time.Hour))
	if err != nil {
		t.Fatalf("CountsByTool: %v", err)
	}
	if c := counts["ok_tool"]; c.Calls != 2 || c.Failed != 0 {
		t.Errorf("ok_tool = %+v", c)
	}
	if c := counts["bad_tool"]; c.Calls != 1 || c.Failed != 1 {
		t.Errorf("bad_tool = %+v", c)
	}
}

func TestFreeSlotsReportedInMinutes(t *testing.T) {
	day := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	slots := schedule.FindFreeSlots(nil,
		schedule.Interval{Start: day.Add(9 * time.Hour), End: day.Add(11 * time.Hour)},
		time.Hour)

	views := freeSlotViews(slots)
	if len(views) != 1 {
		t.Fatalf("got %d slots, want 1", len(views))
	}
	if views[0].DurationMinutes != 120 {
		t.Errorf("duration = %d minutes, want 120", views[0].DurationMinutes)
	}

	result, err := encodeResult(map[string]any{"free_slots": views, "count": len(views)})
	if err != nil {
		t.Fatalf("encodeResult: %v", err)
	}
	text := resultText(t, result)
	if !strings.Contains(text, `"duration_minutes": 120`) {
		t.Errorf("output missing minute duration: %s", text)
	}
	if strings.Contains(text, "7200000000000") {
		t.Errorf("output carries a nanosecond duration: %s", text)
	}
}

func TestArgInt(t *testing.T) {
	args := map[string]any{"n": float64(7)}
	if got := argInt(args, "n", 1); got != 7 {
		t.Errorf("argInt = %d", got)
	}
	if got := argInt(args, "missing", 42); got != 42 {
		t.Errorf("default = %d", got)
	}
}

func TestArgStringSlice(t *testing.T) {
	args := map[string]any{"tags": []any{"a", "b", 3}}
	got := argStringSlice(args, "tags")
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("got %v", got)
	}
	if argStringSlice(args, "missing") != nil {
		t.Error("missing key should yield nil")
	}
}

func TestArgInt64Slice(t *testing.T) {
	ids, err := argInt64Slice(map[string]any{"ids": []any{float64(1), "22"}}, "ids")
	if err != nil {
		t.Fatalf("argInt64Slice: %v", err)
	}
	if len(ids) != 2 || ids[0] != 1 || ids[1] != 22 {
		t.Errorf("ids = %v", ids)
	}

	if _, err := argInt64Slice(map[string]any{"ids": []any{"abc"}}, "ids"); err == nil {
		t.Error("expected error for non-numeric string")
	}
	if _, err := argInt64Slice(map[string]any{"ids": []any{}}, "ids"); err == nil {
		t.Error("expected error for empty list")
	}
	if _, err := argInt64Slice(map[string]any{}, "ids"); err == nil {
		t.Error("expected error for missing key")
	}
}

func TestArgTime(t *testing.T) {
	args := map[string]any{
		"utc":   "2025-11-16T10:00:00Z",
		"local": "2025-11-16T10:00:00",
		"bad":   "next tuesday",
	}

	got, err := argTime(args, "utc")
	if err != nil {
		t.Fatalf("argTime utc: %v", err)
	}
	if !got.Equal(time.Date(2025, 11, 16, 10, 0, 0, 0, time.UTC)) {
		t.Errorf("utc = %v", got)
	}

	local, err := argTime(args, "local")
	if err != nil {
		t.Fatalf("argTime local: %v", err)
	}
	if local.Hour() != 10 || local.Location() != time.Local {
		t.Errorf("local = %v", local)
	}

	if _, err := argTime(args, "bad"); err == nil {
		t.Error("expected error for non-ISO timestamp")
	}
	if _, err := argTime(args, "missing"); err == nil {
		t.Error("expected error for missing key")
	}
}

func TestRequireString(t *testing.T) {
	if _, err := requireString(map[string]any{}, "name"); err == nil {
		t.Error("expected error for missing argument")
	}
	got, err := requireString(map[string]any{"name": "x"}, "name")
	if err != nil || got != "x" {
		t.Errorf("got %q, %v", got, err)
	}
}
