package calendar

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lwaldron/wren/internal/schedule"
)

// BusyPeriod is a span during which the calendar is occupied.
type BusyPeriod struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// FreeBusy queries the calendar's busy periods in a time range. Google
// returns them pre-merged but in no guaranteed order.
func (c *Client) FreeBusy(ctx context.Context, timeMin, timeMax time.Time) ([]BusyPeriod, error) {
	body := map[string]any{
		"timeMin": timeMin.Format(time.RFC3339),
		"timeMax": timeMax.Format(time.RFC3339),
		"items":   []map[string]string{{"id": c.calendarID}},
	}

	data, err := c.request(ctx, "POST", "/freeBusy", body)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Calendars map[string]struct {
			Busy []struct {
				Start string `json:"start"`
				End   string `json:"end"`
			} `json:"busy"`
		} `json:"calendars"`
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("parse freebusy response: %w", err)
	}

	cal, ok := resp.Calendars[c.calendarID]
	if !ok {
		return nil, fmt.Errorf("calendar %q not in freebusy response", c.calendarID)
	}

	periods := make([]BusyPeriod, 0, len(cal.Busy))
	for _, busy := range cal.Busy {
		start, err := time.Parse(time.RFC3339, busy.Start)
		if err != nil {
			return nil, fmt.Errorf("parse busy start: %w", err)
		}
		end, err := time.Parse(time.RFC3339, busy.End)
		if err != nil {
			return nil, fmt.Errorf("parse busy end: %w", err)
		}
		periods = append(periods, BusyPeriod{Start: start, End: end})
	}
	return periods, nil
}

// FindFreeSlots returns the gaps of at least minDuration between busy
// periods in [timeMin, timeMax).
func (c *Client) FindFreeSlots(ctx context.Context, timeMin, timeMax time.Time, minDuration time.Duration) ([]schedule.Slot, error) {
	window := schedule.Interval{Start: timeMin, End: timeMax}
	if err := schedule.Validate(window, minDuration); err != nil {
		return nil, err
	}

	busy, err := c.FreeBusy(ctx, timeMin, timeMax)
	if err != nil {
		return nil, err
	}

	intervals := make([]schedule.Interval, len(busy))
	for i, b := range busy {
		intervals[i] = schedule.Interval{Start: b.Start, End: b.End}
	}

	return schedule.FindFreeSlots(intervals, window, minDuration), nil
}

// BlockStudyTime creates a focused study session event starting at the
// given time.
func (c *Client) BlockStudyTime(ctx context.Context, subject string, start time.Time, duration time.Duration) (*Event, error) {
	if subject == "" {
		return nil, fmt.Errorf("study subject is required")
	}
	if duration <= 0 {
		return nil, fmt.Errorf("study duration must be positive")
	}

	return c.CreateEvent(ctx, CreateEventParams{
		Summary:     "Study: " + subject,
		Description: fmt.Sprintf("Focused study session for %s\nDuration: %d minutes", subject, int(duration.Minutes())),
		Start:       start,
		End:         start.Add(duration),
	})
}
