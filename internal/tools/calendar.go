package tools

import (
	"context"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/lwaldron/wren/internal/integrations/calendar"
	"github.com/lwaldron/wren/internal/schedule"
)

// freeSlot is the tool-facing shape of a free gap. Durations are reported
// in minutes so input and output use the same unit.
type freeSlot struct {
	Start           time.Time `json:"start"`
	End             time.Time `json:"end"`
	DurationMinutes int       `json:"duration_minutes"`
}

func freeSlotViews(slots []schedule.Slot) []freeSlot {
	out := make([]freeSlot, len(slots))
	for i, s := range slots {
		out[i] = freeSlot{
			Start:           s.Start,
			End:             s.End,
			DurationMinutes: int(s.Duration / time.Minute),
		}
	}
	return out
}

func registerCalendarTools(s *server.MCPServer, deps *Dependencies) {
	s.AddTool(mcp.NewTool("calendar_list_calendars",
		mcp.WithDescription("List the calendars visible to the gateway's service account."),
	), deps.wrap("calendar_list_calendars", "calendar", func(ctx context.Context, args map[string]any) (any, error) {
		calendars, err := deps.Calendar.ListCalendars(ctx)
		if err != nil {
			return nil, err
		}
		return map[string]any{"calendars": calendars, "count": len(calendars)}, nil
	}))

	s.AddTool(mcp.NewTool("calendar_create_event",
		mcp.WithDescription("Create a calendar event. Times are ISO 8601, e.g. '2025-11-16T10:00:00Z'."),
		mcp.WithString("summary",
			mcp.Required(),
			mcp.Description("Event title"),
		),
		mcp.WithString("start_time",
			mcp.Required(),
			mcp.Description("Start time in ISO 8601"),
		),
		mcp.WithString("end_time",
			mcp.Required(),
			mcp.Description("End time in ISO 8601"),
		),
		mcp.WithString("description",
			mcp.Description("Event description"),
		),
		mcp.WithString("location",
			mcp.Description("Event location"),
		),
		mcp.WithArray("attendees",
			mcp.Description("Attendee email addresses"),
		),
	), deps.wrap("calendar_create_event", "calendar", func(ctx context.Context, args map[string]any) (any, error) {
		summary, err := requireString(args, "summary")
		if err != nil {
			return nil, err
		}
		start, err := argTime(args, "start_time")
		if err != nil {
			return nil, err
		}
		end, err := argTime(args, "end_time")
		if err != nil {
			return nil, err
		}
		return deps.Calendar.CreateEvent(ctx, calendar.CreateEventParams{
			Summary:     summary,
			Description: argString(args, "description"),
			Location:    argString(args, "location"),
			Start:       start,
			End:         end,
			Attendees:   argStringSlice(args, "attendees"),
		})
	}))

	s.AddTool(mcp.NewTool("calendar_get_events",
		mcp.WithDescription("List events in a time range, recurring events expanded, ordered by start."),
		mcp.WithString("time_min",
			mcp.Required(),
			mcp.Description("Range start in ISO 8601"),
		),
		mcp.WithString("time_max",
			mcp.Required(),
			mcp.Description("Range end in ISO 8601"),
		),
		mcp.WithNumber("max_results",
			mcp.Description("Maximum events to return (default 100)"),
		),
		mcp.WithString("query",
			mcp.Description("Free text search over event fields"),
		),
	), deps.wrap("calendar_get_events", "calendar", func(ctx context.Context, args map[string]any) (any, error) {
		timeMin, err := argTime(args, "time_min")
		if err != nil {
			return nil, err
		}
		timeMax, err := argTime(args, "time_max")
		if err != nil {
			return nil, err
		}
		events, err := deps.Calendar.ListEvents(ctx, calendar.ListEventsParams{
			TimeMin:    timeMin,
			TimeMax:    timeMax,
			MaxResults: argInt(args, "max_results", 0),
			Query:      argString(args, "query"),
		})
		if err != nil {
			return nil, err
		}
		return map[string]any{"events": events, "count": len(events)}, nil
	}))

	s.AddTool(mcp.NewTool("calendar_update_event",
		mcp.WithDescription("Update fields on an existing event. Only the provided fields change."),
		mcp.WithString("event_id",
			mcp.Required(),
			mcp.Description("Event ID"),
		),
		mcp.WithString("summary",
			mcp.Description("New event title"),
		),
		mcp.WithString("description",
			mcp.Description("New description"),
		),
		mcp.WithString("location",
			mcp.Description("New location"),
		),
		mcp.WithString("start_time",
			mcp.Description("New start time in ISO 8601"),
		),
		mcp.WithString("end_time",
			mcp.Description("New end time in ISO 8601"),
		),
	), deps.wrap("calendar_update_event", "calendar", func(ctx context.Context, args map[string]any) (any, error) {
		id, err := requireString(args, "event_id")
		if err != nil {
			return nil, err
		}
		var params calendar.UpdateEventParams
		if s := argString(args, "summary"); s != "" {
			params.Summary = &s
		}
		if s, ok := args["description"].(string); ok {
			params.Description = &s
		}
		if s, ok := args["location"].(string); ok {
			params.Location = &s
		}
		if argString(args, "start_time") != "" {
			t, err := argTime(args, "start_time")
			if err != nil {
				return nil, err
			}
			params.Start = &t
		}
		if argString(args, "end_time") != "" {
			t, err := argTime(args, "end_time")
			if err != nil {
				return nil, err
			}
			params.End = &t
		}
		return deps.Calendar.UpdateEvent(ctx, id, params)
	}))

	s.AddTool(mcp.NewTool("calendar_delete_event",
		mcp.WithDescription("Delete a calendar event."),
		mcp.WithString("event_id",
			mcp.Required(),
			mcp.Description("Event ID"),
		),
	), deps.wrap("calendar_delete_event", "calendar", func(ctx context.Context, args map[string]any) (any, error) {
		id, err := requireString(args, "event_id")
		if err != nil {
			return nil, err
		}
		if err := deps.Calendar.DeleteEvent(ctx, id); err != nil {
			return nil, err
		}
		return fmt.Sprintf("Event %s deleted", id), nil
	}))

	s.AddTool(mcp.NewTool("calendar_quick_add",
		mcp.WithDescription("Create an event from natural language, e.g. 'Lunch with Sam tomorrow at noon'."),
		mcp.WithString("text",
			mcp.Required(),
			mcp.Description("Natural language event description"),
		),
	), deps.wrap("calendar_quick_add", "calendar", func(ctx context.Context, args map[string]any) (any, error) {
		text, err := requireString(args, "text")
		if err != nil {
			return nil, err
		}
		return deps.Calendar.QuickAdd(ctx, text)
	}))

	s.AddTool(mcp.NewTool("calendar_today",
		mcp.WithDescription("List all events for the current local day."),
	), deps.wrap("calendar_today", "calendar", func(ctx context.Context, args map[string]any) (any, error) {
		events, err := deps.Calendar.GetTodayEvents(ctx)
		if err != nil {
			return nil, err
		}
		return map[string]any{"events": events, "count": len(events)}, nil
	}))

	s.AddTool(mcp.NewTool("calendar_upcoming",
		mcp.WithDescription("List events starting within the next N hours."),
		mcp.WithNumber("hours",
			mcp.Description("Look-ahead window in hours (default 24)"),
		),
		mcp.WithNumber("max_results",
			mcp.Description("Maximum events to return (default 10)"),
		),
	), deps.wrap("calendar_upcoming", "calendar", func(ctx context.Context, args map[string]any) (any, error) {
		hours := argInt(args, "hours", 24)
		if hours <= 0 {
			return nil, fmt.Errorf("hours must be positive")
		}
		events, err := deps.Calendar.GetUpcomingEvents(ctx, time.Duration(hours)*time.Hour, argInt(args, "max_results", 10))
		if err != nil {
			return nil, err
		}
		return map[string]any{"events": events, "count": len(events)}, nil
	}))

	s.AddTool(mcp.NewTool("calendar_find_free_slots",
		mcp.WithDescription("Find free gaps of at least the given duration between busy periods in a time range."),
		mcp.WithString("time_min",
			mcp.Required(),
			mcp.Description("Range start in ISO 8601"),
		),
		mcp.WithString("time_max",
			mcp.Required(),
			mcp.Description("Range end in ISO 8601"),
		),
		mcp.WithNumber("duration_minutes",
			mcp.Description("Minimum slot length in minutes (default 60)"),
		),
	), deps.wrap("calendar_find_free_slots", "calendar", func(ctx context.Context, args map[string]any) (any, error) {
		timeMin, err := argTime(args, "time_min")
		if err != nil {
			return nil, err
		}
		timeMax, err := argTime(args, "time_max")
		if err != nil {
			return nil, err
		}
		minutes := argInt(args, "duration_minutes", 60)
		slots, err := deps.Calendar.FindFreeSlots(ctx, timeMin, timeMax, time.Duration(minutes)*time.Minute)
		if err != nil {
			return nil, err
		}
		return map[string]any{"free_slots": freeSlotViews(slots), "count": len(slots)}, nil
	}))

	s.AddTool(mcp.NewTool("calendar_block_study_time",
		mcp.WithDescription("Block a focused study session on the calendar."),
		mcp.WithString("subject",
			mcp.Required(),
			mcp.Description("Study subject, e.g. 'French Grammar'"),
		),
		mcp.WithString("start_time",
			mcp.Required(),
			mcp.Description("Session start in ISO 8601"),
		),
		mcp.WithNumber("duration_minutes",
			mcp.Description("Session length in minutes (default 60)"),
		),
	), deps.wrap("calendar_block_study_time", "calendar", func(ctx context.Context, args map[string]any) (any, error) {
		subject, err := requireString(args, "subject")
		if err != nil {
			return nil, err
		}
		start, err := argTime(args, "start_time")
		if err != nil {
			return nil, err
		}
		minutes := argInt(args, "duration_minutes", 60)
		return deps.Calendar.BlockStudyTime(ctx, subject, start, time.Duration(minutes)*time.Minute)
	}))
}
