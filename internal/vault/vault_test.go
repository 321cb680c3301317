package vault

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func newVault(t *testing.T) *Vault {
	t.Helper()
	v, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	return v
}

func TestCreateAndRead(t *testing.T) {
	v := newVault(t)

	rel, err := v.Create("My First Note", "Some **markdown** content.", "notes", []string{"testing", "go"}, map[string]any{"source": "unit-test"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if rel != "notes/My First Note.md" {
		t.Errorf("unexpected path: %s", rel)
	}

	note, err := v.Read(rel)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if !strings.Contains(note.Body, "# My First Note") {
		t.Errorf("body missing title header: %q", note.Body)
	}
	if !strings.Contains(note.Body, "Some **markdown** content.") {
		t.Errorf("body missing content: %q", note.Body)
	}
	if note.Frontmatter["source"] != "unit-test" {
		t.Errorf("frontmatter source = %v", note.Frontmatter["source"])
	}
	if _, ok := note.Frontmatter["created"]; !ok {
		t.Error("missing created timestamp")
	}
	if !frontmatterHasTag(note.Frontmatter, "testing") {
		t.Errorf("tags missing from frontmatter: %v", note.Frontmatter["tags"])
	}

	// Creating the same note again must fail
	if _, err := v.Create("My First Note", "other", "notes", nil, nil); err == nil {
		t.Error("expected error creating duplicate note")
	}
}

func TestFilenameSanitization(t *testing.T) {
	v := newVault(t)

	rel, err := v.Create(`What: a "note"?`, "body", "", nil, nil)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if strings.ContainsAny(rel, `<>:"\|?*`) {
		t.Errorf("unsafe characters survived: %s", rel)
	}
}

func TestPathEscapeRejected(t *testing.T) {
	v := newVault(t)

	if _, err := v.Read("../outside.md"); err == nil {
		t.Error("expected error reading path outside vault")
	}
	if err := v.Delete("../../etc/passwd"); err == nil {
		t.Error("expected error deleting path outside vault")
	}
}

func TestUpdateReplaceAndAppend(t *testing.T) {
	v := newVault(t)
	rel, _ := v.Create("Target", "original body", "", nil, nil)

	if err := v.Update(rel, "replaced body", map[string]any{"status": "draft"}, false); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	note, _ := v.Read(rel)
	if strings.Contains(note.Body, "original body") {
		t.Errorf("old body still present: %q", note.Body)
	}
	if note.Frontmatter["status"] != "draft" {
		t.Errorf("frontmatter not merged: %v", note.Frontmatter)
	}
	if _, ok := note.Frontmatter["modified"]; !ok {
		t.Error("missing modified timestamp")
	}

	if err := v.Update(rel, "appended line", nil, true); err != nil {
		t.Fatalf("Update append failed: %v", err)
	}
	note, _ = v.Read(rel)
	if !strings.Contains(note.Body, "replaced body") || !strings.Contains(note.Body, "appended line") {
		t.Errorf("append lost content: %q", note.Body)
	}

	if err := v.Update("missing.md", "x", nil, false); err == nil {
		t.Error("expected error updating missing note")
	}
}

func TestDelete(t *testing.T) {
	v := newVault(t)
	rel, _ := v.Create("Doomed", "x", "", nil, nil)

	if err := v.Delete(rel); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := v.Read(rel); err == nil {
		t.Error("note still readable after delete")
	}
	if err := v.Delete(rel); err == nil {
		t.Error("expected error deleting missing note")
	}
}

func TestSearch(t *testing.T) {
	v := newVault(t)
	v.Create("Go Learnings", "goroutines are cheap #programming", "tech", nil, nil)
	v.Create("Paris Trip", "The Louvre was crowded", "travel", []string{"vacation"}, nil)
	v.Create("Recipes", "Goroutine-free pasta", "", nil, nil)

	// Content search is case-insensitive
	results, err := v.Search("goroutine", "", "")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) != 2 {
		t.Errorf("expected 2 results, got %d: %v", len(results), results)
	}

	// Folder restriction
	results, _ = v.Search("goroutine", "tech", "")
	if len(results) != 1 || results[0].Title != "Go Learnings" {
		t.Errorf("folder search = %v", results)
	}

	// Inline tag filter
	results, _ = v.Search("", "", "programming")
	if len(results) != 1 || results[0].Title != "Go Learnings" {
		t.Errorf("inline tag search = %v", results)
	}

	// Frontmatter tag filter
	results, _ = v.Search("", "", "vacation")
	if len(results) != 1 || results[0].Title != "Paris Trip" {
		t.Errorf("frontmatter tag search = %v", results)
	}
}

func TestListOrderingAndRecursion(t *testing.T) {
	v := newVault(t)
	v.Create("Old", "x", "", nil, nil)
	v.Create("Nested", "x", "sub/deeper", nil, nil)
	v.Create("New", "x", "", nil, nil)

	// Make ordering deterministic regardless of filesystem timestamp resolution
	oldPath := filepath.Join(v.Root(), "Old.md")
	past := time.Now().Add(-time.Hour)
	os.Chtimes(oldPath, past, past)

	notes, err := v.List("", true)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(notes) != 3 {
		t.Fatalf("expected 3 notes, got %d", len(notes))
	}
	if notes[len(notes)-1].Title != "Old" {
		t.Errorf("expected Old last (newest first), got %v", notes)
	}

	flat, _ := v.List("", false)
	for _, n := range flat {
		if strings.Contains(n.Path, "/") && strings.Contains(n.Path, "deeper") {
			t.Errorf("non-recursive list returned nested note: %s", n.Path)
		}
	}
}

func TestDailyNote(t *testing.T) {
	v := newVault(t)
	date := time.Date(2026, 2, 14, 10, 0, 0, 0, time.UTC)

	note, err := v.DailyNote(date)
	if err != nil {
		t.Fatalf("DailyNote failed: %v", err)
	}
	if note.Path != "daily/2026-02-14.md" {
		t.Errorf("unexpected path: %s", note.Path)
	}
	if note.Frontmatter["type"] != "daily-note" {
		t.Errorf("frontmatter type = %v", note.Frontmatter["type"])
	}

	// Second call returns the existing note, not an error
	again, err := v.DailyNote(date)
	if err != nil {
		t.Fatalf("second DailyNote failed: %v", err)
	}
	if again.Path != note.Path {
		t.Errorf("paths differ: %s vs %s", again.Path, note.Path)
	}
}

func TestStats(t *testing.T) {
	v := newVault(t)
	v.Create("A", "aaaa", "", nil, nil)
	v.Create("B", "bbbb", "folder", nil, nil)
	v.Create("C", "cccc", "folder", nil, nil)

	stats, err := v.Stats()
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.TotalNotes != 3 {
		t.Errorf("TotalNotes = %d, want 3", stats.TotalNotes)
	}
	if stats.Folders["folder"] != 2 {
		t.Errorf("folder count = %d, want 2", stats.Folders["folder"])
	}
	if stats.TotalBytes == 0 {
		t.Error("TotalBytes should be non-zero")
	}
}

func TestSplitFrontmatterEdgeCases(t *testing.T) {
	// No frontmatter at all
	fm, body := splitFrontmatter("just text")
	if fm != nil || body != "just text" {
		t.Errorf("plain text mishandled: fm=%v body=%q", fm, body)
	}

	// Unterminated block is kept as body
	fm, body = splitFrontmatter("---\ntitle: x\nno closing")
	if fm != nil {
		t.Errorf("unterminated frontmatter parsed: %v", fm)
	}
	if !strings.Contains(body, "no closing") {
		t.Errorf("body lost: %q", body)
	}

	// Invalid YAML falls back to raw content
	fm, _ = splitFrontmatter("---\n\t:bad yaml [\n---\n\nbody")
	if fm != nil {
		t.Errorf("invalid YAML should not parse: %v", fm)
	}
}

func TestSplitFrontmatterClosingDelimiterIsWholeLine(t *testing.T) {
	// Lines that merely start with "---" do not close the block.
	content := "---\ntitle: x\n----\nfour dashes"
	fm, body := splitFrontmatter(content)
	if fm != nil {
		t.Errorf("\"----\" treated as closing delimiter: %v", fm)
	}
	if body != content {
		t.Errorf("body = %q", body)
	}

	content = "---\ntitle: x\n---text\nmore"
	fm, body = splitFrontmatter(content)
	if fm != nil {
		t.Errorf("\"---text\" treated as closing delimiter: %v", fm)
	}
	if body != content {
		t.Errorf("body = %q", body)
	}

	// A "---" rule in the body stays in the body.
	fm, body = splitFrontmatter("---\ntitle: x\n---\nabove\n----\nbelow")
	if fm["title"] != "x" {
		t.Fatalf("fm = %v", fm)
	}
	if !strings.Contains(body, "----") {
		t.Errorf("body = %q", body)
	}

	// Closing delimiter at end of file without a trailing newline.
	fm, body = splitFrontmatter("---\ntitle: x\n---")
	if fm["title"] != "x" {
		t.Errorf("fm = %v", fm)
	}
	if body != "" {
		t.Errorf("body = %q", body)
	}
}
