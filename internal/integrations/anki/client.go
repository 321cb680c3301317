// Package anki is a client for the AnkiConnect HTTP API.
//
// AnkiConnect is a local add-on that exposes the running Anki desktop app
// on http://localhost:8765. Every call is a POST of {action, version,
// params}; the response carries {result, error} where error is a string.
package anki

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

const (
	defaultURL = "http://localhost:8765"
	apiVersion = 6
)

// Client talks to AnkiConnect.
type Client struct {
	url        string
	httpClient *http.Client
}

// NewClient creates a client from ANKI_CONNECT_URL (or the default local URL).
func NewClient() *Client {
	url := os.Getenv("ANKI_CONNECT_URL")
	if url == "" {
		url = defaultURL
	}
	return NewClientWithURL(url)
}

// NewClientWithURL creates a client with an explicit AnkiConnect URL.
func NewClientWithURL(url string) *Client {
	return &Client{
		url: url,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// URL returns the configured AnkiConnect URL.
func (c *Client) URL() string {
	return c.url
}

type invokeRequest struct {
	Action  string `json:"action"`
	Version int    `json:"version"`
	Params  any    `json:"params,omitempty"`
}

type invokeResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *string         `json:"error"`
}

// invoke sends one AnkiConnect action and returns the raw result.
func (c *Client) invoke(ctx context.Context, action string, params any) (json.RawMessage, error) {
	payload, err := json.Marshal(invokeRequest{Action: action, Version: apiVersion, Params: params})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("could not reach AnkiConnect at %s (is Anki running with the add-on installed?): %w", c.url, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != 200 {
		return nil, fmt.Errorf("AnkiConnect error (%d): %s", resp.StatusCode, string(body))
	}

	var result invokeResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}
	if result.Error != nil && *result.Error != "" {
		return nil, fmt.Errorf("anki: %s", *result.Error)
	}

	return result.Result, nil
}

// Ping checks that AnkiConnect is reachable.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.invoke(ctx, "version", nil)
	return err
}

// Deck is a deck name with its ID.
type Deck struct {
	Name string `json:"name"`
	ID   int64  `json:"id"`
}

// DeckNamesAndIDs returns all decks.
func (c *Client) DeckNamesAndIDs(ctx context.Context) ([]Deck, error) {
	raw, err := c.invoke(ctx, "deckNamesAndIds", nil)
	if err != nil {
		return nil, err
	}

	var m map[string]int64
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("parse decks: %w", err)
	}

	decks := make([]Deck, 0, len(m))
	for name, id := range m {
		decks = append(decks, Deck{Name: name, ID: id})
	}
	return decks, nil
}

// CreateDeck creates a deck and returns its ID.
func (c *Client) CreateDeck(ctx context.Context, name string) (int64, error) {
	raw, err := c.invoke(ctx, "createDeck", map[string]string{"deck": name})
	if err != nil {
		return 0, err
	}
	var id int64
	if err := json.Unmarshal(raw, &id); err != nil {
		return 0, fmt.Errorf("parse deck id: %w", err)
	}
	return id, nil
}

// ModelNames returns the available note types.
func (c *Client) ModelNames(ctx context.Context) ([]string, error) {
	raw, err := c.invoke(ctx, "modelNames", nil)
	if err != nil {
		return nil, err
	}
	var names []string
	if err := json.Unmarshal(raw, &names); err != nil {
		return nil, fmt.Errorf("parse model names: %w", err)
	}
	return names, nil
}

type notePayload struct {
	DeckName  string            `json:"deckName"`
	ModelName string            `json:"modelName"`
	Fields    map[string]string `json:"fields"`
	Tags      []string          `json:"tags"`
}

func (c *Client) addNote(ctx context.Context, note notePayload) (int64, error) {
	if note.Tags == nil {
		note.Tags = []string{}
	}
	raw, err := c.invoke(ctx, "addNote", map[string]any{"note": note})
	if err != nil {
		return 0, err
	}
	var id int64
	if err := json.Unmarshal(raw, &id); err != nil {
		return 0, fmt.Errorf("parse note id: %w", err)
	}
	return id, nil
}

// AddNote creates a basic front/back note in the given deck. The Basic model
// must exist; its absence is reported with the available alternatives.
func (c *Client) AddNote(ctx context.Context, deck, front, back string, tags []string) (int64, error) {
	const model = "Basic"
	models, err := c.ModelNames(ctx)
	if err != nil {
		return 0, err
	}
	found := false
	for _, m := range models {
		if m == model {
			found = true
			break
		}
	}
	if !found {
		return 0, fmt.Errorf("note type %q not found, available: %s", model, strings.Join(models, ", "))
	}

	return c.addNote(ctx, notePayload{
		DeckName:  deck,
		ModelName: model,
		Fields:    map[string]string{"Front": front, "Back": back},
		Tags:      tags,
	})
}

// AddClozeNote creates a cloze-deletion note ("{{c1::...}}" syntax in text).
func (c *Client) AddClozeNote(ctx context.Context, deck, text, extra string, tags []string) (int64, error) {
	fields := map[string]string{"Text": text}
	if extra != "" {
		fields["Extra"] = extra
	}
	return c.addNote(ctx, notePayload{
		DeckName:  deck,
		ModelName: "Cloze",
		Fields:    fields,
		Tags:      tags,
	})
}

// FindNotes returns note IDs matching an Anki search query
// (e.g. `deck:French tag:verb`, `is:due`).
func (c *Client) FindNotes(ctx context.Context, query string) ([]int64, error) {
	return c.invokeIDs(ctx, "findNotes", map[string]string{"query": query})
}

// FindCards returns card IDs matching an Anki search query.
func (c *Client) FindCards(ctx context.Context, query string) ([]int64, error) {
	return c.invokeIDs(ctx, "findCards", map[string]string{"query": query})
}

func (c *Client) invokeIDs(ctx context.Context, action string, params any) ([]int64, error) {
	raw, err := c.invoke(ctx, action, params)
	if err != nil {
		return nil, err
	}
	var ids []int64
	if err := json.Unmarshal(raw, &ids); err != nil {
		return nil, fmt.Errorf("parse ids: %w", err)
	}
	return ids, nil
}

// NotesInfo returns full note details for the given note IDs. The payload is
// passed through as-is; its shape is owned by AnkiConnect.
func (c *Client) NotesInfo(ctx context.Context, noteIDs []int64) (json.RawMessage, error) {
	return c.invoke(ctx, "notesInfo", map[string]any{"notes": noteIDs})
}

// UpdateNoteFields replaces field values (and optionally tags) on a note.
func (c *Client) UpdateNoteFields(ctx context.Context, noteID int64, fields map[string]string, tags []string) error {
	note := map[string]any{"id": noteID, "fields": fields}
	if tags != nil {
		note["tags"] = tags
	}
	_, err := c.invoke(ctx, "updateNoteFields", map[string]any{"note": note})
	return err
}

// DeleteNotes permanently deletes notes.
func (c *Client) DeleteNotes(ctx context.Context, noteIDs []int64) error {
	_, err := c.invoke(ctx, "deleteNotes", map[string]any{"notes": noteIDs})
	return err
}

// AddTags adds tags to existing notes.
func (c *Client) AddTags(ctx context.Context, noteIDs []int64, tags []string) error {
	_, err := c.invoke(ctx, "addTags", map[string]any{
		"notes": noteIDs,
		"tags":  strings.Join(tags, " "),
	})
	return err
}

// SuspendCards prevents cards from appearing in reviews.
func (c *Client) SuspendCards(ctx context.Context, cardIDs []int64) error {
	_, err := c.invoke(ctx, "suspend", map[string]any{"cards": cardIDs})
	return err
}

// UnsuspendCards allows suspended cards to appear in reviews again.
func (c *Client) UnsuspendCards(ctx context.Context, cardIDs []int64) error {
	_, err := c.invoke(ctx, "unsuspend", map[string]any{"cards": cardIDs})
	return err
}
