package activity

import (
	"testing"
	"time"
)

func openTestLog(t *testing.T) *Log {
	t.Helper()
	l, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { l.Close() })
	return l
}

func TestRecordAndRecent(t *testing.T) {
	l := openTestLog(t)

	for i, tool := range []string{"anki_create_deck", "todoist_get_tasks", "vault_read_note"} {
		err := l.Record(Record{
			Tool:       tool,
			Service:    "test",
			DurationMS: int64(i * 10),
			OK:         true,
		})
		if err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	records, err := l.Recent(10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("got %d records, want 3", len(records))
	}
	// Newest first.
	if records[0].Tool != "vault_read_note" {
		t.Errorf("first record = %q", records[0].Tool)
	}
	if records[0].Time.IsZero() {
		t.Error("timestamp not set")
	}
}

func TestRecentLimit(t *testing.T) {
	l := openTestLog(t)

	for i := 0; i < 5; i++ {
		l.Record(Record{Tool: "x", Service: "test", OK: true})
	}

	records, err := l.Recent(2)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(records) != 2 {
		t.Errorf("got %d records, want 2", len(records))
	}
}

func TestFailedCallKeepsError(t *testing.T) {
	l := openTestLog(t)

	l.Record(Record{
		Tool:    "anki_create_deck",
		Service: "anki",
		OK:      false,
		Error:   "could not reach AnkiConnect",
	})

	records, err := l.Recent(1)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if records[0].OK {
		t.Error("record should be marked failed")
	}
	if records[0].Error != "could not reach AnkiConnect" {
		t.Errorf("error = %q", records[0].Error)
	}
}

func TestToday(t *testing.T) {
	l := openTestLog(t)

	yesterday := time.Now().Add(-25 * time.Hour)
	l.Record(Record{Time: yesterday, Tool: "old", Service: "test", OK: true})
	l.Record(Record{Tool: "new", Service: "test", OK: true})

	records, err := l.Today()
	if err != nil {
		t.Fatalf("Today: %v", err)
	}
	if len(records) != 1 || records[0].Tool != "new" {
		t.Errorf("records = %+v", records)
	}
}

func TestTodayIncludesBoundarySecond(t *testing.T) {
	l := openTestLog(t)

	now := time.Now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	l.Record(Record{Time: midnight.Add(100 * time.Millisecond), Tool: "early", Service: "test", OK: true})
	l.Record(Record{Time: midnight.Add(-100 * time.Millisecond), Tool: "late_yesterday", Service: "test", OK: true})

	records, err := l.Today()
	if err != nil {
		t.Fatalf("Today: %v", err)
	}
	if len(records) != 1 || records[0].Tool != "early" {
		t.Errorf("records = %+v", records)
	}
}

func TestCountsByTool(t *testing.T) {
	l := openTestLog(t)

	l.Record(Record{Tool: "a", Service: "test", OK: true})
	l.Record(Record{Tool: "a", Service: "test", OK: false})
	l.Record(Record{Tool: "b", Service: "test", OK: true})

	counts, err := l.CountsByTool(time.Now().Add(-time.Hour))
	if err != nil {
		t.Fatalf("CountsByTool: %v", err)
	}
	if counts["a"] != (ToolCount{Calls: 2, Failed: 1}) {
		t.Errorf("a = %+v", counts["a"])
	}
	if counts["b"] != (ToolCount{Calls: 1, Failed: 0}) {
		t.Errorf("b = %+v", counts["b"])
	}
}

func TestCountsByToolSinceBound(t *testing.T) {
	l := openTestLog(t)

	since := time.Now().Add(-time.Hour).Truncate(time.Second)
	l.Record(Record{Time: since.Add(50 * time.Millisecond), Tool: "in", Service: "test", OK: true})
	l.Record(Record{Time: since.Add(-time.Minute), Tool: "out", Service: "test", OK: true})

	counts, err := l.CountsByTool(since)
	if err != nil {
		t.Fatalf("CountsByTool: %v", err)
	}
	if counts["in"].Calls != 1 {
		t.Errorf("in = %+v", counts["in"])
	}
	if _, ok := counts["out"]; ok {
		t.Errorf("out should be excluded: %v", counts)
	}
}

func TestReopenKeepsData(t *testing.T) {
	dir := t.TempDir()
	l, err := Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	l.Record(Record{Tool: "persisted", Service: "test", OK: true})
	l.Close()

	l2, err := Open(dir)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer l2.Close()

	records, err := l2.Recent(1)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(records) != 1 || records[0].Tool != "persisted" {
		t.Errorf("records = %+v", records)
	}
}
