package todoist

import (
	"context"
	"time"
)

// DueDateAnalysis buckets active tasks by how their due date relates to today.
type DueDateAnalysis struct {
	Overdue   int `json:"overdue"`
	Today     int `json:"today"`
	Upcoming  int `json:"upcoming"`
	NoDueDate int `json:"no_due_date"`
}

// Stats summarizes the active task list.
type Stats struct {
	TotalTasks           int             `json:"total_tasks"`
	PriorityDistribution map[int]int     `json:"priority_distribution"`
	ProjectDistribution  map[string]int  `json:"project_distribution"`
	LabelDistribution    map[string]int  `json:"label_distribution"`
	DueDates             DueDateAnalysis `json:"due_date_analysis"`
	Projects             []Project       `json:"projects"`
}

// AnalyzeStats fetches all active tasks and projects and computes
// distribution counts by priority, project and label, plus a due-date
// breakdown relative to the local calendar day.
func (c *Client) AnalyzeStats(ctx context.Context) (*Stats, error) {
	tasks, err := c.GetTasks(ctx, TaskFilter{})
	if err != nil {
		return nil, err
	}
	projects, err := c.GetProjects(ctx)
	if err != nil {
		return nil, err
	}
	return computeStats(tasks, projects, time.Now()), nil
}

func computeStats(tasks []Task, projects []Project, now time.Time) *Stats {
	projectNames := make(map[string]string, len(projects))
	for _, p := range projects {
		projectNames[p.ID] = p.Name
	}

	stats := &Stats{
		TotalTasks:           len(tasks),
		PriorityDistribution: map[int]int{},
		ProjectDistribution:  map[string]int{},
		LabelDistribution:    map[string]int{},
		Projects:             projects,
	}

	today := now.Format("2006-01-02")
	for _, task := range tasks {
		stats.PriorityDistribution[task.Priority]++

		name, ok := projectNames[task.ProjectID]
		if !ok {
			name = "Unknown"
		}
		stats.ProjectDistribution[name]++

		for _, label := range task.Labels {
			stats.LabelDistribution[label]++
		}

		switch {
		case task.Due == nil || task.Due.Date == "":
			stats.DueDates.NoDueDate++
		case task.Due.Date < today:
			stats.DueDates.Overdue++
		case task.Due.Date == today:
			stats.DueDates.Today++
		default:
			stats.DueDates.Upcoming++
		}
	}

	return stats
}
