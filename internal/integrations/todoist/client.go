// Package todoist is a client for the Todoist REST API (v2).
package todoist

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"
)

const defaultBaseURL = "https://api.todoist.com/rest/v2"

// Client talks to the Todoist REST API.
type Client struct {
	token      string
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client from the TODOIST_API_TOKEN environment variable.
func NewClient() (*Client, error) {
	token := os.Getenv("TODOIST_API_TOKEN")
	if token == "" {
		return nil, fmt.Errorf("TODOIST_API_TOKEN not set")
	}
	return &Client{
		token:   token,
		baseURL: defaultBaseURL,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}, nil
}

// NewClientWithBaseURL creates a client against a specific API endpoint.
func NewClientWithBaseURL(token, baseURL string) *Client {
	return &Client{
		token:   token,
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// request performs an authenticated call and returns the raw response body.
// Todoist returns 204 with an empty body for close/delete operations.
func (c *Client) request(ctx context.Context, method, path string, body any) ([]byte, error) {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("todoist request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("todoist API error (%d): %s", resp.StatusCode, string(respBody))
	}

	return respBody, nil
}

// Due is a task's due date as Todoist reports it.
type Due struct {
	Date        string `json:"date"`
	String      string `json:"string"`
	Datetime    string `json:"datetime,omitempty"`
	IsRecurring bool   `json:"is_recurring"`
}

// Task is an active Todoist task.
type Task struct {
	ID          string   `json:"id"`
	Content     string   `json:"content"`
	Description string   `json:"description"`
	ProjectID   string   `json:"project_id"`
	SectionID   string   `json:"section_id"`
	Priority    int      `json:"priority"`
	Labels      []string `json:"labels"`
	Due         *Due     `json:"due"`
	IsCompleted bool     `json:"is_completed"`
	URL         string   `json:"url"`
}

// Project is a Todoist project.
type Project struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Color      string `json:"color"`
	IsFavorite bool   `json:"is_favorite"`
	URL        string `json:"url"`
}

// Label is a personal Todoist label.
type Label struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Color      string `json:"color"`
	Order      int    `json:"order"`
	IsFavorite bool   `json:"is_favorite"`
}

// Section is a section within a project.
type Section struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	ProjectID string `json:"project_id"`
	Order     int    `json:"order"`
}

// Comment is a note attached to a task.
type Comment struct {
	ID       string `json:"id"`
	TaskID   string `json:"task_id"`
	Content  string `json:"content"`
	PostedAt string `json:"posted_at"`
}

// CreateTaskParams holds the fields for a new task. Priority runs 1-4 with
// 4 the most urgent; zero means Todoist's default of 1.
type CreateTaskParams struct {
	Content     string   `json:"content"`
	Description string   `json:"description,omitempty"`
	ProjectID   string   `json:"project_id,omitempty"`
	DueString   string   `json:"due_string,omitempty"`
	Priority    int      `json:"priority,omitempty"`
	Labels      []string `json:"labels,omitempty"`
}

// CreateTask creates a new task.
func (c *Client) CreateTask(ctx context.Context, params CreateTaskParams) (*Task, error) {
	if params.Content == "" {
		return nil, fmt.Errorf("task content is required")
	}
	body, err := c.request(ctx, "POST", "/tasks", params)
	if err != nil {
		return nil, err
	}
	var task Task
	if err := json.Unmarshal(body, &task); err != nil {
		return nil, fmt.Errorf("parse task: %w", err)
	}
	return &task, nil
}

// TaskFilter narrows GetTasks. Filter takes a Todoist filter string such as
// "today" or "overdue". All fields are optional.
type TaskFilter struct {
	ProjectID string
	Label     string
	Filter    string
}

// GetTasks returns active tasks matching the filter.
func (c *Client) GetTasks(ctx context.Context, filter TaskFilter) ([]Task, error) {
	q := url.Values{}
	if filter.ProjectID != "" {
		q.Set("project_id", filter.ProjectID)
	}
	if filter.Label != "" {
		q.Set("label", filter.Label)
	}
	if filter.Filter != "" {
		q.Set("filter", filter.Filter)
	}
	path := "/tasks"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	body, err := c.request(ctx, "GET", path, nil)
	if err != nil {
		return nil, err
	}
	var tasks []Task
	if err := json.Unmarshal(body, &tasks); err != nil {
		return nil, fmt.Errorf("parse tasks: %w", err)
	}
	return tasks, nil
}

// GetTask returns one task by ID.
func (c *Client) GetTask(ctx context.Context, taskID string) (*Task, error) {
	body, err := c.request(ctx, "GET", "/tasks/"+taskID, nil)
	if err != nil {
		return nil, err
	}
	var task Task
	if err := json.Unmarshal(body, &task); err != nil {
		return nil, fmt.Errorf("parse task: %w", err)
	}
	return &task, nil
}

// UpdateTaskParams holds the fields to change on a task. Nil pointers leave
// the current value untouched.
type UpdateTaskParams struct {
	Content     *string   `json:"content,omitempty"`
	Description *string   `json:"description,omitempty"`
	DueString   *string   `json:"due_string,omitempty"`
	Priority    *int      `json:"priority,omitempty"`
	Labels      *[]string `json:"labels,omitempty"`
}

// UpdateTask modifies an existing task and returns the updated version.
func (c *Client) UpdateTask(ctx context.Context, taskID string, params UpdateTaskParams) (*Task, error) {
	body, err := c.request(ctx, "POST", "/tasks/"+taskID, params)
	if err != nil {
		return nil, err
	}
	var task Task
	if err := json.Unmarshal(body, &task); err != nil {
		return nil, fmt.Errorf("parse task: %w", err)
	}
	return &task, nil
}

// CloseTask marks a task as completed.
func (c *Client) CloseTask(ctx context.Context, taskID string) error {
	_, err := c.request(ctx, "POST", "/tasks/"+taskID+"/close", nil)
	return err
}

// DeleteTask permanently deletes a task.
func (c *Client) DeleteTask(ctx context.Context, taskID string) error {
	_, err := c.request(ctx, "DELETE", "/tasks/"+taskID, nil)
	return err
}

// GetProjects returns all projects.
func (c *Client) GetProjects(ctx context.Context) ([]Project, error) {
	body, err := c.request(ctx, "GET", "/projects", nil)
	if err != nil {
		return nil, err
	}
	var projects []Project
	if err := json.Unmarshal(body, &projects); err != nil {
		return nil, fmt.Errorf("parse projects: %w", err)
	}
	return projects, nil
}

// GetLabels returns all personal labels.
func (c *Client) GetLabels(ctx context.Context) ([]Label, error) {
	body, err := c.request(ctx, "GET", "/labels", nil)
	if err != nil {
		return nil, err
	}
	var labels []Label
	if err := json.Unmarshal(body, &labels); err != nil {
		return nil, fmt.Errorf("parse labels: %w", err)
	}
	return labels, nil
}

// GetSections returns sections, optionally scoped to one project.
func (c *Client) GetSections(ctx context.Context, projectID string) ([]Section, error) {
	path := "/sections"
	if projectID != "" {
		path += "?project_id=" + url.QueryEscape(projectID)
	}
	body, err := c.request(ctx, "GET", path, nil)
	if err != nil {
		return nil, err
	}
	var sections []Section
	if err := json.Unmarshal(body, &sections); err != nil {
		return nil, fmt.Errorf("parse sections: %w", err)
	}
	return sections, nil
}

// GetComments returns the comments on a task.
func (c *Client) GetComments(ctx context.Context, taskID string) ([]Comment, error) {
	body, err := c.request(ctx, "GET", "/comments?task_id="+url.QueryEscape(taskID), nil)
	if err != nil {
		return nil, err
	}
	var comments []Comment
	if err := json.Unmarshal(body, &comments); err != nil {
		return nil, fmt.Errorf("parse comments: %w", err)
	}
	return comments, nil
}

// AddComment posts a new comment on a task.
func (c *Client) AddComment(ctx context.Context, taskID, content string) (*Comment, error) {
	body, err := c.request(ctx, "POST", "/comments", map[string]string{
		"task_id": taskID,
		"content": content,
	})
	if err != nil {
		return nil, err
	}
	var comment Comment
	if err := json.Unmarshal(body, &comment); err != nil {
		return nil, fmt.Errorf("parse comment: %w", err)
	}
	return &comment, nil
}
