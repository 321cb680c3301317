package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

func registerAnkiTools(s *server.MCPServer, deps *Dependencies) {
	s.AddTool(mcp.NewTool("anki_create_deck",
		mcp.WithDescription("Create a new Anki deck. Nested decks use '::' separators, e.g. 'Languages::Spanish'."),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Deck name"),
		),
	), deps.wrap("anki_create_deck", "anki", func(ctx context.Context, args map[string]any) (any, error) {
		name, err := requireString(args, "name")
		if err != nil {
			return nil, err
		}
		id, err := deps.Anki.CreateDeck(ctx, name)
		if err != nil {
			return nil, err
		}
		return fmt.Sprintf("Created deck %q (id %d)", name, id), nil
	}))

	s.AddTool(mcp.NewTool("anki_get_decks",
		mcp.WithDescription("List all Anki decks with their IDs."),
	), deps.wrap("anki_get_decks", "anki", func(ctx context.Context, args map[string]any) (any, error) {
		return deps.Anki.DeckNamesAndIDs(ctx)
	}))

	s.AddTool(mcp.NewTool("anki_create_note",
		mcp.WithDescription("Add a basic front/back flashcard to a deck."),
		mcp.WithString("deck",
			mcp.Required(),
			mcp.Description("Target deck name"),
		),
		mcp.WithString("front",
			mcp.Required(),
			mcp.Description("Front side (the prompt)"),
		),
		mcp.WithString("back",
			mcp.Required(),
			mcp.Description("Back side (the answer)"),
		),
		mcp.WithArray("tags",
			mcp.Description("Tags to attach to the note"),
		),
	), deps.wrap("anki_create_note", "anki", func(ctx context.Context, args map[string]any) (any, error) {
		deck, err := requireString(args, "deck")
		if err != nil {
			return nil, err
		}
		front, err := requireString(args, "front")
		if err != nil {
			return nil, err
		}
		back, err := requireString(args, "back")
		if err != nil {
			return nil, err
		}
		id, err := deps.Anki.AddNote(ctx, deck, front, back, argStringSlice(args, "tags"))
		if err != nil {
			return nil, err
		}
		return fmt.Sprintf("Added note %d to deck %q", id, deck), nil
	}))

	s.AddTool(mcp.NewTool("anki_create_cloze_note",
		mcp.WithDescription("Add a cloze-deletion flashcard. Mark deletions in the text with {{c1::...}} syntax."),
		mcp.WithString("deck",
			mcp.Required(),
			mcp.Description("Target deck name"),
		),
		mcp.WithString("text",
			mcp.Required(),
			mcp.Description("Note text containing {{c1::...}} cloze markers"),
		),
		mcp.WithString("extra",
			mcp.Description("Extra information shown on the answer side"),
		),
		mcp.WithArray("tags",
			mcp.Description("Tags to attach to the note"),
		),
	), deps.wrap("anki_create_cloze_note", "anki", func(ctx context.Context, args map[string]any) (any, error) {
		deck, err := requireString(args, "deck")
		if err != nil {
			return nil, err
		}
		text, err := requireString(args, "text")
		if err != nil {
			return nil, err
		}
		id, err := deps.Anki.AddClozeNote(ctx, deck, text, argString(args, "extra"), argStringSlice(args, "tags"))
		if err != nil {
			return nil, err
		}
		return fmt.Sprintf("Added cloze note %d to deck %q", id, deck), nil
	}))

	s.AddTool(mcp.NewTool("anki_get_deck_stats",
		mcp.WithDescription("Get card counts for one deck: total, new, and due today."),
		mcp.WithString("deck",
			mcp.Required(),
			mcp.Description("Deck name"),
		),
	), deps.wrap("anki_get_deck_stats", "anki", func(ctx context.Context, args map[string]any) (any, error) {
		deck, err := requireString(args, "deck")
		if err != nil {
			return nil, err
		}
		return deps.Anki.GetDeckStats(ctx, deck)
	}))

	s.AddTool(mcp.NewTool("anki_get_all_stats",
		mcp.WithDescription("Get card counts across every deck, plus per-deck breakdowns."),
	), deps.wrap("anki_get_all_stats", "anki", func(ctx context.Context, args map[string]any) (any, error) {
		return deps.Anki.GetAllStats(ctx)
	}))

	s.AddTool(mcp.NewTool("anki_update_deck_config",
		mcp.WithDescription("Change a deck's daily limits for new cards and reviews."),
		mcp.WithString("deck",
			mcp.Required(),
			mcp.Description("Deck name"),
		),
		mcp.WithNumber("new_cards_per_day",
			mcp.Description("Maximum new cards per day"),
		),
		mcp.WithNumber("reviews_per_day",
			mcp.Description("Maximum reviews per day"),
		),
	), deps.wrap("anki_update_deck_config", "anki", func(ctx context.Context, args map[string]any) (any, error) {
		deck, err := requireString(args, "deck")
		if err != nil {
			return nil, err
		}
		var newPerDay, reviewsPerDay *int
		if v, ok := args["new_cards_per_day"].(float64); ok {
			n := int(v)
			newPerDay = &n
		}
		if v, ok := args["reviews_per_day"].(float64); ok {
			n := int(v)
			reviewsPerDay = &n
		}
		if newPerDay == nil && reviewsPerDay == nil {
			return nil, fmt.Errorf("nothing to update: set new_cards_per_day or reviews_per_day")
		}
		return deps.Anki.UpdateDeckConfig(ctx, deck, newPerDay, reviewsPerDay)
	}))

	s.AddTool(mcp.NewTool("anki_find_notes",
		mcp.WithDescription("Find note IDs using Anki's search syntax, e.g. 'deck:French tag:verb' or 'is:due'."),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Anki search query"),
		),
	), deps.wrap("anki_find_notes", "anki", func(ctx context.Context, args map[string]any) (any, error) {
		query, err := requireString(args, "query")
		if err != nil {
			return nil, err
		}
		ids, err := deps.Anki.FindNotes(ctx, query)
		if err != nil {
			return nil, err
		}
		return map[string]any{"note_ids": ids, "count": len(ids)}, nil
	}))

	s.AddTool(mcp.NewTool("anki_get_note_info",
		mcp.WithDescription("Get full details (fields, tags, cards) for the given note IDs."),
		mcp.WithArray("note_ids",
			mcp.Required(),
			mcp.Description("Note IDs from anki_find_notes"),
		),
	), deps.wrap("anki_get_note_info", "anki", func(ctx context.Context, args map[string]any) (any, error) {
		ids, err := argInt64Slice(args, "note_ids")
		if err != nil {
			return nil, err
		}
		info, err := deps.Anki.NotesInfo(ctx, ids)
		if err != nil {
			return nil, err
		}
		return json.RawMessage(info), nil
	}))

	s.AddTool(mcp.NewTool("anki_update_note",
		mcp.WithDescription("Replace the field values (and optionally tags) of an existing note."),
		mcp.WithNumber("note_id",
			mcp.Required(),
			mcp.Description("Note ID"),
		),
		mcp.WithObject("fields",
			mcp.Required(),
			mcp.Description("Field name to new value, e.g. {\"Front\": \"hola\", \"Back\": \"hello\"}"),
		),
		mcp.WithArray("tags",
			mcp.Description("Replacement tag list; omit to keep current tags"),
		),
	), deps.wrap("anki_update_note", "anki", func(ctx context.Context, args map[string]any) (any, error) {
		id, ok := args["note_id"].(float64)
		if !ok {
			return nil, fmt.Errorf("note_id is required")
		}
		rawFields, ok := args["fields"].(map[string]any)
		if !ok || len(rawFields) == 0 {
			return nil, fmt.Errorf("fields is required")
		}
		fields := make(map[string]string, len(rawFields))
		for k, v := range rawFields {
			s, ok := v.(string)
			if !ok {
				return nil, fmt.Errorf("field %q must be a string", k)
			}
			fields[k] = s
		}
		var tags []string
		if _, present := args["tags"]; present {
			tags = argStringSlice(args, "tags")
		}
		if err := deps.Anki.UpdateNoteFields(ctx, int64(id), fields, tags); err != nil {
			return nil, err
		}
		return fmt.Sprintf("Updated note %d", int64(id)), nil
	}))

	s.AddTool(mcp.NewTool("anki_delete_notes",
		mcp.WithDescription("Permanently delete notes and all their cards."),
		mcp.WithArray("note_ids",
			mcp.Required(),
			mcp.Description("Note IDs to delete"),
		),
	), deps.wrap("anki_delete_notes", "anki", func(ctx context.Context, args map[string]any) (any, error) {
		ids, err := argInt64Slice(args, "note_ids")
		if err != nil {
			return nil, err
		}
		if err := deps.Anki.DeleteNotes(ctx, ids); err != nil {
			return nil, err
		}
		return fmt.Sprintf("Deleted %d notes", len(ids)), nil
	}))

	s.AddTool(mcp.NewTool("anki_add_tags",
		mcp.WithDescription("Add tags to existing notes."),
		mcp.WithArray("note_ids",
			mcp.Required(),
			mcp.Description("Note IDs to tag"),
		),
		mcp.WithArray("tags",
			mcp.Required(),
			mcp.Description("Tags to add"),
		),
	), deps.wrap("anki_add_tags", "anki", func(ctx context.Context, args map[string]any) (any, error) {
		ids, err := argInt64Slice(args, "note_ids")
		if err != nil {
			return nil, err
		}
		tags := argStringSlice(args, "tags")
		if len(tags) == 0 {
			return nil, fmt.Errorf("tags is required")
		}
		if err := deps.Anki.AddTags(ctx, ids, tags); err != nil {
			return nil, err
		}
		return fmt.Sprintf("Tagged %d notes", len(ids)), nil
	}))

	s.AddTool(mcp.NewTool("anki_suspend_cards",
		mcp.WithDescription("Suspend cards so they stop appearing in reviews."),
		mcp.WithArray("card_ids",
			mcp.Required(),
			mcp.Description("Card IDs from anki_find_notes card lookups"),
		),
	), deps.wrap("anki_suspend_cards", "anki", func(ctx context.Context, args map[string]any) (any, error) {
		ids, err := argInt64Slice(args, "card_ids")
		if err != nil {
			return nil, err
		}
		if err := deps.Anki.SuspendCards(ctx, ids); err != nil {
			return nil, err
		}
		return fmt.Sprintf("Suspended %d cards", len(ids)), nil
	}))

	s.AddTool(mcp.NewTool("anki_unsuspend_cards",
		mcp.WithDescription("Unsuspend cards so they appear in reviews again."),
		mcp.WithArray("card_ids",
			mcp.Required(),
			mcp.Description("Card IDs to unsuspend"),
		),
	), deps.wrap("anki_unsuspend_cards", "anki", func(ctx context.Context, args map[string]any) (any, error) {
		ids, err := argInt64Slice(args, "card_ids")
		if err != nil {
			return nil, err
		}
		if err := deps.Anki.UnsuspendCards(ctx, ids); err != nil {
			return nil, err
		}
		return fmt.Sprintf("Unsuspended %d cards", len(ids)), nil
	}))

	s.AddTool(mcp.NewTool("anki_get_note_types",
		mcp.WithDescription("List the available note types (models), e.g. Basic, Cloze."),
	), deps.wrap("anki_get_note_types", "anki", func(ctx context.Context, args map[string]any) (any, error) {
		return deps.Anki.ModelNames(ctx)
	}))
}
