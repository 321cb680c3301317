package anki

import (
	"context"
	"encoding/json"
	"fmt"
)

// DeckStats summarizes one deck's card counts.
type DeckStats struct {
	Deck          string `json:"deck"`
	TotalCards    int    `json:"total_cards"`
	NewCards      int    `json:"new_cards"`
	CardsDueToday int    `json:"cards_due_today"`
	NewToday      int    `json:"new_cards_today"`
	ReviewCount   int    `json:"review_count"`
}

// AllStats aggregates counts across every deck.
type AllStats struct {
	TotalDecks    int         `json:"total_decks"`
	TotalCards    int         `json:"total_cards"`
	NewCards      int         `json:"total_new_cards"`
	CardsDueToday int         `json:"total_cards_due_today"`
	Decks         []DeckStats `json:"deck_stats"`
}

type rawDeckStats struct {
	NewCount    int `json:"new_count"`
	ReviewCount int `json:"review_count"`
}

// GetDeckStats returns card counts for one deck, combining getDeckStats with
// findCards queries for the totals the stats action does not report.
func (c *Client) GetDeckStats(ctx context.Context, deck string) (*DeckStats, error) {
	raw, err := c.invoke(ctx, "getDeckStats", map[string]any{"decks": []string{deck}})
	if err != nil {
		return nil, err
	}

	// getDeckStats keys the result by deck ID, so look up by name.
	var byID map[string]struct {
		Name string `json:"name"`
		rawDeckStats
	}
	var counts rawDeckStats
	if err := json.Unmarshal(raw, &byID); err == nil {
		for _, entry := range byID {
			if entry.Name == deck {
				counts = entry.rawDeckStats
				break
			}
		}
	}

	stats := &DeckStats{
		Deck:        deck,
		NewToday:    counts.NewCount,
		ReviewCount: counts.ReviewCount,
	}

	queries := []struct {
		query string
		dst   *int
	}{
		{fmt.Sprintf("deck:%q", deck), &stats.TotalCards},
		{fmt.Sprintf("deck:%q is:new", deck), &stats.NewCards},
		{fmt.Sprintf("deck:%q is:due", deck), &stats.CardsDueToday},
	}
	for _, q := range queries {
		cards, err := c.FindCards(ctx, q.query)
		if err != nil {
			return nil, err
		}
		*q.dst = len(cards)
	}

	return stats, nil
}

// GetAllStats returns per-deck and overall card counts.
func (c *Client) GetAllStats(ctx context.Context) (*AllStats, error) {
	decks, err := c.DeckNamesAndIDs(ctx)
	if err != nil {
		return nil, err
	}

	all := &AllStats{TotalDecks: len(decks)}
	for _, d := range decks {
		stats, err := c.GetDeckStats(ctx, d.Name)
		if err != nil {
			return nil, err
		}
		all.TotalCards += stats.TotalCards
		all.NewCards += stats.NewCards
		all.CardsDueToday += stats.CardsDueToday
		all.Decks = append(all.Decks, *stats)
	}
	return all, nil
}

// DeckLimits reports a deck's daily card limits after an update.
type DeckLimits struct {
	NewPerDay     int `json:"new_cards_per_day"`
	ReviewsPerDay int `json:"reviews_per_day"`
}

// UpdateDeckConfig adjusts a deck's daily limits. Nil values leave the
// current limit untouched. The full config is fetched, patched, and saved
// back, as AnkiConnect has no partial-update action.
func (c *Client) UpdateDeckConfig(ctx context.Context, deck string, newPerDay, reviewsPerDay *int) (*DeckLimits, error) {
	raw, err := c.invoke(ctx, "getDeckConfig", map[string]string{"deck": deck})
	if err != nil {
		return nil, err
	}

	var config map[string]any
	if err := json.Unmarshal(raw, &config); err != nil {
		return nil, fmt.Errorf("parse deck config: %w", err)
	}

	setPerDay := func(section string, value *int) {
		if value == nil {
			return
		}
		m, ok := config[section].(map[string]any)
		if !ok {
			m = map[string]any{}
			config[section] = m
		}
		m["perDay"] = *value
	}
	setPerDay("new", newPerDay)
	setPerDay("rev", reviewsPerDay)

	if _, err := c.invoke(ctx, "saveDeckConfig", map[string]any{"config": config}); err != nil {
		return nil, err
	}

	limits := &DeckLimits{}
	if m, ok := config["new"].(map[string]any); ok {
		if v, ok := m["perDay"].(float64); ok {
			limits.NewPerDay = int(v)
		} else if v, ok := m["perDay"].(int); ok {
			limits.NewPerDay = v
		}
	}
	if m, ok := config["rev"].(map[string]any); ok {
		if v, ok := m["perDay"].(float64); ok {
			limits.ReviewsPerDay = int(v)
		} else if v, ok := m["perDay"].(int); ok {
			limits.ReviewsPerDay = v
		}
	}
	return limits, nil
}
