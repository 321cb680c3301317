package todoist

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClientWithBaseURL("test-token", srv.URL)
}

func TestCreateTask(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" || r.URL.Path != "/tasks" {
			t.Errorf("got %s %s", r.Method, r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-token" {
			t.Errorf("Authorization = %q", auth)
		}
		var params CreateTaskParams
		json.NewDecoder(r.Body).Decode(&params)
		if params.Content != "Buy milk" || params.Priority != 4 {
			t.Errorf("params = %+v", params)
		}
		json.NewEncoder(w).Encode(Task{ID: "100", Content: params.Content, Priority: params.Priority})
	})

	task, err := c.CreateTask(context.Background(), CreateTaskParams{
		Content:  "Buy milk",
		Priority: 4,
	})
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	if task.ID != "100" {
		t.Errorf("id = %q, want 100", task.ID)
	}
}

func TestCreateTaskRequiresContent(t *testing.T) {
	c := NewClientWithBaseURL("t", "http://unused")
	if _, err := c.CreateTask(context.Background(), CreateTaskParams{}); err == nil {
		t.Fatal("expected error for empty content")
	}
}

func TestGetTasksFilterQuery(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("project_id") != "p1" || q.Get("filter") != "overdue" {
			t.Errorf("query = %v", q)
		}
		json.NewEncoder(w).Encode([]Task{{ID: "1"}, {ID: "2"}})
	})

	tasks, err := c.GetTasks(context.Background(), TaskFilter{ProjectID: "p1", Filter: "overdue"})
	if err != nil {
		t.Fatalf("GetTasks: %v", err)
	}
	if len(tasks) != 2 {
		t.Errorf("got %d tasks, want 2", len(tasks))
	}
}

func TestCloseTaskHandlesEmptyBody(t *testing.T) {
	var path string
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		w.WriteHeader(http.StatusNoContent)
	})

	if err := c.CloseTask(context.Background(), "42"); err != nil {
		t.Fatalf("CloseTask: %v", err)
	}
	if path != "/tasks/42/close" {
		t.Errorf("path = %q", path)
	}
}

func TestUpdateTaskOmitsUnsetFields(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		var raw map[string]any
		json.NewDecoder(r.Body).Decode(&raw)
		if _, ok := raw["content"]; ok {
			t.Error("content should be omitted when unset")
		}
		if raw["priority"] != float64(2) {
			t.Errorf("priority = %v, want 2", raw["priority"])
		}
		json.NewEncoder(w).Encode(Task{ID: "42", Priority: 2})
	})

	p := 2
	task, err := c.UpdateTask(context.Background(), "42", UpdateTaskParams{Priority: &p})
	if err != nil {
		t.Fatalf("UpdateTask: %v", err)
	}
	if task.Priority != 2 {
		t.Errorf("priority = %d", task.Priority)
	}
}

func TestAPIErrorIncludesBody(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte("Forbidden"))
	})

	_, err := c.GetProjects(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "403") || !strings.Contains(err.Error(), "Forbidden") {
		t.Errorf("error = %v", err)
	}
}

func TestAddComment(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/comments" {
			t.Errorf("path = %q", r.URL.Path)
		}
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		if body["task_id"] != "7" || body["content"] != "done?" {
			t.Errorf("body = %v", body)
		}
		json.NewEncoder(w).Encode(Comment{ID: "c1", TaskID: "7", Content: "done?"})
	})

	comment, err := c.AddComment(context.Background(), "7", "done?")
	if err != nil {
		t.Fatalf("AddComment: %v", err)
	}
	if comment.ID != "c1" {
		t.Errorf("id = %q", comment.ID)
	}
}

func TestComputeStats(t *testing.T) {
	now := time.Date(2025, 3, 15, 9, 0, 0, 0, time.UTC)
	projects := []Project{
		{ID: "p1", Name: "Work"},
		{ID: "p2", Name: "Home"},
	}
	tasks := []Task{
		{ID: "1", ProjectID: "p1", Priority: 4, Labels: []string{"urgent"}, Due: &Due{Date: "2025-03-14"}},
		{ID: "2", ProjectID: "p1", Priority: 1, Labels: []string{"urgent", "email"}, Due: &Due{Date: "2025-03-15"}},
		{ID: "3", ProjectID: "p2", Priority: 1, Due: &Due{Date: "2025-04-01"}},
		{ID: "4", ProjectID: "gone", Priority: 1},
	}

	stats := computeStats(tasks, projects, now)

	if stats.TotalTasks != 4 {
		t.Errorf("TotalTasks = %d", stats.TotalTasks)
	}
	if stats.PriorityDistribution[1] != 3 || stats.PriorityDistribution[4] != 1 {
		t.Errorf("priorities = %v", stats.PriorityDistribution)
	}
	if stats.ProjectDistribution["Work"] != 2 || stats.ProjectDistribution["Unknown"] != 1 {
		t.Errorf("projects = %v", stats.ProjectDistribution)
	}
	if stats.LabelDistribution["urgent"] != 2 || stats.LabelDistribution["email"] != 1 {
		t.Errorf("labels = %v", stats.LabelDistribution)
	}
	want := DueDateAnalysis{Overdue: 1, Today: 1, Upcoming: 1, NoDueDate: 1}
	if stats.DueDates != want {
		t.Errorf("due dates = %+v, want %+v", stats.DueDates, want)
	}
}

func TestComputeStatsEmpty(t *testing.T) {
	stats := computeStats(nil, nil, time.Now())
	if stats.TotalTasks != 0 || stats.DueDates.NoDueDate != 0 {
		t.Errorf("stats = %+v", stats)
	}
}
