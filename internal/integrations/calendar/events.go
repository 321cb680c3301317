package calendar

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"
)

// Event is a calendar event in a shape convenient for callers.
type Event struct {
	ID          string     `json:"id"`
	Summary     string     `json:"summary"`
	Description string     `json:"description,omitempty"`
	Location    string     `json:"location,omitempty"`
	Start       time.Time  `json:"start"`
	End         time.Time  `json:"end"`
	AllDay      bool       `json:"all_day"`
	Status      string     `json:"status"` // confirmed, tentative, cancelled
	Organizer   string     `json:"organizer,omitempty"`
	Attendees   []Attendee `json:"attendees,omitempty"`
	HTMLLink    string     `json:"html_link,omitempty"`
	Recurrence  []string   `json:"recurrence,omitempty"`
}

// Attendee is an event participant.
type Attendee struct {
	Email          string `json:"email"`
	DisplayName    string `json:"display_name,omitempty"`
	ResponseStatus string `json:"response_status"` // needsAction, declined, tentative, accepted
	Organizer      bool   `json:"organizer,omitempty"`
}

// Duration returns how long the event lasts.
func (e *Event) Duration() time.Duration {
	return e.End.Sub(e.Start)
}

// googleEvent is the wire format of the Calendar API.
type googleEvent struct {
	ID          string           `json:"id"`
	Summary     string           `json:"summary"`
	Description string           `json:"description,omitempty"`
	Location    string           `json:"location,omitempty"`
	Status      string           `json:"status"`
	HTMLLink    string           `json:"htmlLink,omitempty"`
	Recurrence  []string         `json:"recurrence,omitempty"`
	Start       *googleDateTime  `json:"start,omitempty"`
	End         *googleDateTime  `json:"end,omitempty"`
	Organizer   *googlePerson    `json:"organizer,omitempty"`
	Attendees   []googleAttendee `json:"attendees,omitempty"`
}

type googleDateTime struct {
	DateTime string `json:"dateTime,omitempty"`
	Date     string `json:"date,omitempty"`
	TimeZone string `json:"timeZone,omitempty"`
}

type googlePerson struct {
	Email       string `json:"email"`
	DisplayName string `json:"displayName,omitempty"`
}

type googleAttendee struct {
	Email          string `json:"email"`
	DisplayName    string `json:"displayName,omitempty"`
	ResponseStatus string `json:"responseStatus,omitempty"`
	Organizer      bool   `json:"organizer,omitempty"`
}

// convertEvent maps the wire format to Event. All-day events carry a bare
// date instead of a dateTime.
func convertEvent(item *googleEvent) (Event, error) {
	event := Event{
		ID:          item.ID,
		Summary:     item.Summary,
		Description: item.Description,
		Location:    item.Location,
		Status:      item.Status,
		HTMLLink:    item.HTMLLink,
		Recurrence:  item.Recurrence,
	}

	parse := func(dt *googleDateTime, dst *time.Time) error {
		if dt == nil {
			return nil
		}
		if dt.DateTime != "" {
			t, err := time.Parse(time.RFC3339, dt.DateTime)
			if err != nil {
				return fmt.Errorf("parse datetime: %w", err)
			}
			*dst = t
			return nil
		}
		if dt.Date != "" {
			t, err := time.Parse("2006-01-02", dt.Date)
			if err != nil {
				return fmt.Errorf("parse date: %w", err)
			}
			*dst = t
			event.AllDay = true
		}
		return nil
	}
	if err := parse(item.Start, &event.Start); err != nil {
		return Event{}, err
	}
	if err := parse(item.End, &event.End); err != nil {
		return Event{}, err
	}

	if item.Organizer != nil {
		event.Organizer = item.Organizer.Email
		if item.Organizer.DisplayName != "" {
			event.Organizer = item.Organizer.DisplayName
		}
	}

	for _, a := range item.Attendees {
		event.Attendees = append(event.Attendees, Attendee{
			Email:          a.Email,
			DisplayName:    a.DisplayName,
			ResponseStatus: a.ResponseStatus,
			Organizer:      a.Organizer,
		})
	}

	return event, nil
}

// CalendarInfo describes one entry from the user's calendar list.
type CalendarInfo struct {
	ID         string `json:"id"`
	Summary    string `json:"summary"`
	Primary    bool   `json:"primary"`
	AccessRole string `json:"access_role"`
}

// ListCalendars returns the calendars visible to the service account.
func (c *Client) ListCalendars(ctx context.Context) ([]CalendarInfo, error) {
	data, err := c.request(ctx, "GET", "/users/me/calendarList", nil)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Items []struct {
			ID         string `json:"id"`
			Summary    string `json:"summary"`
			Primary    bool   `json:"primary"`
			AccessRole string `json:"accessRole"`
		} `json:"items"`
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("parse calendar list: %w", err)
	}

	calendars := make([]CalendarInfo, 0, len(resp.Items))
	for _, item := range resp.Items {
		calendars = append(calendars, CalendarInfo{
			ID:         item.ID,
			Summary:    item.Summary,
			Primary:    item.Primary,
			AccessRole: item.AccessRole,
		})
	}
	return calendars, nil
}

// ListEventsParams narrows an event query.
type ListEventsParams struct {
	TimeMin    time.Time // start of time range (required)
	TimeMax    time.Time // end of time range (required)
	MaxResults int       // default 100
	Query      string    // free text search
}

// ListEvents retrieves events in a time range, recurring events expanded,
// ordered by start time.
func (c *Client) ListEvents(ctx context.Context, params ListEventsParams) ([]Event, error) {
	if params.MaxResults == 0 {
		params.MaxResults = 100
	}

	q := url.Values{}
	q.Set("timeMin", params.TimeMin.Format(time.RFC3339))
	q.Set("timeMax", params.TimeMax.Format(time.RFC3339))
	q.Set("maxResults", fmt.Sprintf("%d", params.MaxResults))
	q.Set("singleEvents", "true")
	q.Set("orderBy", "startTime")
	if params.Query != "" {
		q.Set("q", params.Query)
	}

	path := fmt.Sprintf("/calendars/%s/events?%s", url.PathEscape(c.calendarID), q.Encode())
	data, err := c.request(ctx, "GET", path, nil)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Items []googleEvent `json:"items"`
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("parse events response: %w", err)
	}

	events := make([]Event, 0, len(resp.Items))
	for i := range resp.Items {
		event, err := convertEvent(&resp.Items[i])
		if err != nil {
			continue // skip malformed events
		}
		events = append(events, event)
	}
	return events, nil
}

// GetEvent retrieves one event by ID.
func (c *Client) GetEvent(ctx context.Context, eventID string) (*Event, error) {
	path := fmt.Sprintf("/calendars/%s/events/%s", url.PathEscape(c.calendarID), url.PathEscape(eventID))
	data, err := c.request(ctx, "GET", path, nil)
	if err != nil {
		return nil, err
	}

	var item googleEvent
	if err := json.Unmarshal(data, &item); err != nil {
		return nil, fmt.Errorf("parse event: %w", err)
	}
	event, err := convertEvent(&item)
	if err != nil {
		return nil, err
	}
	return &event, nil
}

// GetTodayEvents retrieves all events for the current local day.
func (c *Client) GetTodayEvents(ctx context.Context) ([]Event, error) {
	now := time.Now()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return c.ListEvents(ctx, ListEventsParams{
		TimeMin: startOfDay,
		TimeMax: startOfDay.Add(24 * time.Hour),
	})
}

// GetUpcomingEvents retrieves events starting within the given duration.
func (c *Client) GetUpcomingEvents(ctx context.Context, within time.Duration, maxResults int) ([]Event, error) {
	now := time.Now()
	return c.ListEvents(ctx, ListEventsParams{
		TimeMin:    now,
		TimeMax:    now.Add(within),
		MaxResults: maxResults,
	})
}

// CreateEventParams holds the fields for a new event.
type CreateEventParams struct {
	Summary     string
	Description string
	Location    string
	Start       time.Time
	End         time.Time
	AllDay      bool
	Attendees   []string // email addresses
}

// CreateEvent creates a new event on the configured calendar.
func (c *Client) CreateEvent(ctx context.Context, params CreateEventParams) (*Event, error) {
	if params.Summary == "" {
		return nil, fmt.Errorf("event summary is required")
	}
	if !params.End.After(params.Start) {
		return nil, fmt.Errorf("event end must be after start")
	}

	body := map[string]any{
		"summary":     params.Summary,
		"description": params.Description,
		"location":    params.Location,
	}
	if params.AllDay {
		body["start"] = map[string]string{"date": params.Start.Format("2006-01-02")}
		body["end"] = map[string]string{"date": params.End.Format("2006-01-02")}
	} else {
		body["start"] = map[string]string{
			"dateTime": params.Start.Format(time.RFC3339),
			"timeZone": params.Start.Location().String(),
		}
		body["end"] = map[string]string{
			"dateTime": params.End.Format(time.RFC3339),
			"timeZone": params.End.Location().String(),
		}
	}
	if len(params.Attendees) > 0 {
		attendees := make([]map[string]string, len(params.Attendees))
		for i, email := range params.Attendees {
			attendees[i] = map[string]string{"email": email}
		}
		body["attendees"] = attendees
	}

	path := fmt.Sprintf("/calendars/%s/events", url.PathEscape(c.calendarID))
	data, err := c.request(ctx, "POST", path, body)
	if err != nil {
		return nil, err
	}

	var item googleEvent
	if err := json.Unmarshal(data, &item); err != nil {
		return nil, fmt.Errorf("parse created event: %w", err)
	}
	event, err := convertEvent(&item)
	if err != nil {
		return nil, err
	}
	return &event, nil
}

// UpdateEventParams holds fields to change on an event. Nil pointers leave
// the current value untouched.
type UpdateEventParams struct {
	Summary     *string
	Description *string
	Location    *string
	Start       *time.Time
	End         *time.Time
}

// UpdateEvent patches an existing event and returns the updated version.
func (c *Client) UpdateEvent(ctx context.Context, eventID string, params UpdateEventParams) (*Event, error) {
	body := map[string]any{}
	if params.Summary != nil {
		body["summary"] = *params.Summary
	}
	if params.Description != nil {
		body["description"] = *params.Description
	}
	if params.Location != nil {
		body["location"] = *params.Location
	}
	if params.Start != nil {
		body["start"] = map[string]string{
			"dateTime": params.Start.Format(time.RFC3339),
			"timeZone": params.Start.Location().String(),
		}
	}
	if params.End != nil {
		body["end"] = map[string]string{
			"dateTime": params.End.Format(time.RFC3339),
			"timeZone": params.End.Location().String(),
		}
	}
	if len(body) == 0 {
		return nil, fmt.Errorf("no fields to update")
	}

	path := fmt.Sprintf("/calendars/%s/events/%s", url.PathEscape(c.calendarID), url.PathEscape(eventID))
	data, err := c.request(ctx, "PATCH", path, body)
	if err != nil {
		return nil, err
	}

	var item googleEvent
	if err := json.Unmarshal(data, &item); err != nil {
		return nil, fmt.Errorf("parse updated event: %w", err)
	}
	event, err := convertEvent(&item)
	if err != nil {
		return nil, err
	}
	return &event, nil
}

// DeleteEvent removes an event from the calendar.
func (c *Client) DeleteEvent(ctx context.Context, eventID string) error {
	path := fmt.Sprintf("/calendars/%s/events/%s", url.PathEscape(c.calendarID), url.PathEscape(eventID))
	_, err := c.request(ctx, "DELETE", path, nil)
	return err
}

// QuickAdd creates an event from natural language using the Calendar API's
// quickAdd endpoint (e.g. "Lunch with Sam tomorrow at noon").
func (c *Client) QuickAdd(ctx context.Context, text string) (*Event, error) {
	if text == "" {
		return nil, fmt.Errorf("event text is required")
	}
	path := fmt.Sprintf("/calendars/%s/events/quickAdd?text=%s", url.PathEscape(c.calendarID), url.QueryEscape(text))
	data, err := c.request(ctx, "POST", path, nil)
	if err != nil {
		return nil, err
	}

	var item googleEvent
	if err := json.Unmarshal(data, &item); err != nil {
		return nil, fmt.Errorf("parse event: %w", err)
	}
	event, err := convertEvent(&item)
	if err != nil {
		return nil, err
	}
	return &event, nil
}
