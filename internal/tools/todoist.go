package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/lwaldron/wren/internal/integrations/todoist"
)

func registerTodoistTools(s *server.MCPServer, deps *Dependencies) {
	s.AddTool(mcp.NewTool("todoist_create_task",
		mcp.WithDescription("Create a new Todoist task. Due dates take natural language like 'tomorrow' or 'every monday at 9am'."),
		mcp.WithString("content",
			mcp.Required(),
			mcp.Description("Task title"),
		),
		mcp.WithString("description",
			mcp.Description("Longer task description"),
		),
		mcp.WithString("project_id",
			mcp.Description("Project to add the task to; omit for the inbox"),
		),
		mcp.WithString("due_string",
			mcp.Description("Due date in natural language"),
		),
		mcp.WithNumber("priority",
			mcp.Description("Priority 1-4, where 4 is most urgent (default 1)"),
		),
		mcp.WithArray("labels",
			mcp.Description("Label names to attach"),
		),
	), deps.wrap("todoist_create_task", "todoist", func(ctx context.Context, args map[string]any) (any, error) {
		content, err := requireString(args, "content")
		if err != nil {
			return nil, err
		}
		priority := argInt(args, "priority", 0)
		if priority < 0 || priority > 4 {
			return nil, fmt.Errorf("priority must be 1-4")
		}
		return deps.Todoist.CreateTask(ctx, todoist.CreateTaskParams{
			Content:     content,
			Description: argString(args, "description"),
			ProjectID:   argString(args, "project_id"),
			DueString:   argString(args, "due_string"),
			Priority:    priority,
			Labels:      argStringSlice(args, "labels"),
		})
	}))

	s.AddTool(mcp.NewTool("todoist_get_tasks",
		mcp.WithDescription("List active tasks, optionally narrowed by project, label, or a Todoist filter like 'today' or 'overdue'."),
		mcp.WithString("project_id",
			mcp.Description("Only tasks in this project"),
		),
		mcp.WithString("label",
			mcp.Description("Only tasks with this label"),
		),
		mcp.WithString("filter",
			mcp.Description("Todoist filter string, e.g. 'today', 'overdue', 'p1'"),
		),
	), deps.wrap("todoist_get_tasks", "todoist", func(ctx context.Context, args map[string]any) (any, error) {
		tasks, err := deps.Todoist.GetTasks(ctx, todoist.TaskFilter{
			ProjectID: argString(args, "project_id"),
			Label:     argString(args, "label"),
			Filter:    argString(args, "filter"),
		})
		if err != nil {
			return nil, err
		}
		return map[string]any{"tasks": tasks, "count": len(tasks)}, nil
	}))

	s.AddTool(mcp.NewTool("todoist_complete_task",
		mcp.WithDescription("Mark a task as completed."),
		mcp.WithString("task_id",
			mcp.Required(),
			mcp.Description("Task ID"),
		),
	), deps.wrap("todoist_complete_task", "todoist", func(ctx context.Context, args map[string]any) (any, error) {
		id, err := requireString(args, "task_id")
		if err != nil {
			return nil, err
		}
		if err := deps.Todoist.CloseTask(ctx, id); err != nil {
			return nil, err
		}
		return fmt.Sprintf("Task %s marked as completed", id), nil
	}))

	s.AddTool(mcp.NewTool("todoist_update_task",
		mcp.WithDescription("Update fields on an existing task. Only the provided fields change."),
		mcp.WithString("task_id",
			mcp.Required(),
			mcp.Description("Task ID"),
		),
		mcp.WithString("content",
			mcp.Description("New task title"),
		),
		mcp.WithString("description",
			mcp.Description("New description"),
		),
		mcp.WithString("due_string",
			mcp.Description("New due date in natural language; 'no date' removes it"),
		),
		mcp.WithNumber("priority",
			mcp.Description("New priority 1-4"),
		),
		mcp.WithArray("labels",
			mcp.Description("Replacement label list"),
		),
	), deps.wrap("todoist_update_task", "todoist", func(ctx context.Context, args map[string]any) (any, error) {
		id, err := requireString(args, "task_id")
		if err != nil {
			return nil, err
		}
		var params todoist.UpdateTaskParams
		if s := argString(args, "content"); s != "" {
			params.Content = &s
		}
		if s, ok := args["description"].(string); ok {
			params.Description = &s
		}
		if s := argString(args, "due_string"); s != "" {
			params.DueString = &s
		}
		if v, ok := args["priority"].(float64); ok {
			p := int(v)
			if p < 1 || p > 4 {
				return nil, fmt.Errorf("priority must be 1-4")
			}
			params.Priority = &p
		}
		if _, present := args["labels"]; present {
			labels := argStringSlice(args, "labels")
			params.Labels = &labels
		}
		return deps.Todoist.UpdateTask(ctx, id, params)
	}))

	s.AddTool(mcp.NewTool("todoist_delete_task",
		mcp.WithDescription("Permanently delete a task."),
		mcp.WithString("task_id",
			mcp.Required(),
			mcp.Description("Task ID"),
		),
	), deps.wrap("todoist_delete_task", "todoist", func(ctx context.Context, args map[string]any) (any, error) {
		id, err := requireString(args, "task_id")
		if err != nil {
			return nil, err
		}
		if err := deps.Todoist.DeleteTask(ctx, id); err != nil {
			return nil, err
		}
		return fmt.Sprintf("Task %s deleted permanently", id), nil
	}))

	s.AddTool(mcp.NewTool("todoist_get_projects",
		mcp.WithDescription("List all Todoist projects."),
	), deps.wrap("todoist_get_projects", "todoist", func(ctx context.Context, args map[string]any) (any, error) {
		projects, err := deps.Todoist.GetProjects(ctx)
		if err != nil {
			return nil, err
		}
		return map[string]any{"projects": projects, "count": len(projects)}, nil
	}))

	s.AddTool(mcp.NewTool("todoist_analyze_stats",
		mcp.WithDescription("Summarize active tasks: counts by priority, project, and label, plus overdue/today/upcoming breakdown."),
	), deps.wrap("todoist_analyze_stats", "todoist", func(ctx context.Context, args map[string]any) (any, error) {
		return deps.Todoist.AnalyzeStats(ctx)
	}))

	s.AddTool(mcp.NewTool("todoist_get_labels",
		mcp.WithDescription("List all personal labels."),
	), deps.wrap("todoist_get_labels", "todoist", func(ctx context.Context, args map[string]any) (any, error) {
		labels, err := deps.Todoist.GetLabels(ctx)
		if err != nil {
			return nil, err
		}
		return map[string]any{"labels": labels, "count": len(labels)}, nil
	}))

	s.AddTool(mcp.NewTool("todoist_get_sections",
		mcp.WithDescription("List sections, optionally scoped to one project."),
		mcp.WithString("project_id",
			mcp.Description("Only sections in this project"),
		),
	), deps.wrap("todoist_get_sections", "todoist", func(ctx context.Context, args map[string]any) (any, error) {
		sections, err := deps.Todoist.GetSections(ctx, argString(args, "project_id"))
		if err != nil {
			return nil, err
		}
		return map[string]any{"sections": sections, "count": len(sections)}, nil
	}))

	s.AddTool(mcp.NewTool("todoist_get_comments",
		mcp.WithDescription("List the comments on a task."),
		mcp.WithString("task_id",
			mcp.Required(),
			mcp.Description("Task ID"),
		),
	), deps.wrap("todoist_get_comments", "todoist", func(ctx context.Context, args map[string]any) (any, error) {
		id, err := requireString(args, "task_id")
		if err != nil {
			return nil, err
		}
		comments, err := deps.Todoist.GetComments(ctx, id)
		if err != nil {
			return nil, err
		}
		return map[string]any{"comments": comments, "count": len(comments)}, nil
	}))

	s.AddTool(mcp.NewTool("todoist_add_comment",
		mcp.WithDescription("Add a comment to a task."),
		mcp.WithString("task_id",
			mcp.Required(),
			mcp.Description("Task ID"),
		),
		mcp.WithString("content",
			mcp.Required(),
			mcp.Description("Comment text"),
		),
	), deps.wrap("todoist_add_comment", "todoist", func(ctx context.Context, args map[string]any) (any, error) {
		id, err := requireString(args, "task_id")
		if err != nil {
			return nil, err
		}
		content, err := requireString(args, "content")
		if err != nil {
			return nil, err
		}
		return deps.Todoist.AddComment(ctx, id, content)
	}))
}
