package tools

import (
	"context"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

func registerVaultTools(s *server.MCPServer, deps *Dependencies) {
	s.AddTool(mcp.NewTool("vault_create_note",
		mcp.WithDescription("Create a markdown note in the vault with YAML frontmatter. Fails if a note with that title already exists in the folder."),
		mcp.WithString("title",
			mcp.Required(),
			mcp.Description("Note title; becomes the filename"),
		),
		mcp.WithString("content",
			mcp.Description("Markdown body"),
		),
		mcp.WithString("folder",
			mcp.Description("Folder inside the vault, created if missing"),
		),
		mcp.WithArray("tags",
			mcp.Description("Tags stored in the frontmatter"),
		),
		mcp.WithObject("frontmatter",
			mcp.Description("Additional frontmatter key/value pairs"),
		),
	), deps.wrap("vault_create_note", "vault", func(ctx context.Context, args map[string]any) (any, error) {
		title, err := requireString(args, "title")
		if err != nil {
			return nil, err
		}
		fm, _ := args["frontmatter"].(map[string]any)
		rel, err := deps.Vault.Create(title, argString(args, "content"), argString(args, "folder"), argStringSlice(args, "tags"), fm)
		if err != nil {
			return nil, err
		}
		return fmt.Sprintf("Created note %s", rel), nil
	}))

	s.AddTool(mcp.NewTool("vault_read_note",
		mcp.WithDescription("Read a note's frontmatter and content."),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Vault-relative path, e.g. 'projects/Wren.md'"),
		),
	), deps.wrap("vault_read_note", "vault", func(ctx context.Context, args map[string]any) (any, error) {
		rel, err := requireString(args, "path")
		if err != nil {
			return nil, err
		}
		return deps.Vault.Read(rel)
	}))

	s.AddTool(mcp.NewTool("vault_update_note",
		mcp.WithDescription("Replace or append to a note's content, merging any given frontmatter keys."),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Vault-relative path"),
		),
		mcp.WithString("content",
			mcp.Description("New markdown body (or text to append)"),
		),
		mcp.WithObject("frontmatter",
			mcp.Description("Frontmatter keys to set; existing keys not named are kept"),
		),
		mcp.WithBoolean("append",
			mcp.Description("Append content instead of replacing (default false)"),
		),
	), deps.wrap("vault_update_note", "vault", func(ctx context.Context, args map[string]any) (any, error) {
		rel, err := requireString(args, "path")
		if err != nil {
			return nil, err
		}
		fm, _ := args["frontmatter"].(map[string]any)
		if err := deps.Vault.Update(rel, argString(args, "content"), fm, argBool(args, "append", false)); err != nil {
			return nil, err
		}
		return fmt.Sprintf("Updated note %s", rel), nil
	}))

	s.AddTool(mcp.NewTool("vault_delete_note",
		mcp.WithDescription("Delete a note from the vault."),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Vault-relative path"),
		),
	), deps.wrap("vault_delete_note", "vault", func(ctx context.Context, args map[string]any) (any, error) {
		rel, err := requireString(args, "path")
		if err != nil {
			return nil, err
		}
		if err := deps.Vault.Delete(rel); err != nil {
			return nil, err
		}
		return fmt.Sprintf("Deleted note %s", rel), nil
	}))

	s.AddTool(mcp.NewTool("vault_search_notes",
		mcp.WithDescription("Search notes by content text, tag, or both, optionally inside one folder."),
		mcp.WithString("query",
			mcp.Description("Case-insensitive text to find in titles or bodies"),
		),
		mcp.WithString("folder",
			mcp.Description("Restrict the search to this folder"),
		),
		mcp.WithString("tag",
			mcp.Description("Only notes carrying this tag (inline #tag or frontmatter)"),
		),
	), deps.wrap("vault_search_notes", "vault", func(ctx context.Context, args map[string]any) (any, error) {
		query := argString(args, "query")
		tag := argString(args, "tag")
		if query == "" && tag == "" {
			return nil, fmt.Errorf("provide query or tag")
		}
		notes, err := deps.Vault.Search(query, argString(args, "folder"), tag)
		if err != nil {
			return nil, err
		}
		return map[string]any{"notes": notes, "count": len(notes)}, nil
	}))

	s.AddTool(mcp.NewTool("vault_list_notes",
		mcp.WithDescription("List notes, newest first."),
		mcp.WithString("folder",
			mcp.Description("Folder to list; omit for the vault root"),
		),
		mcp.WithBoolean("recursive",
			mcp.Description("Include notes in subfolders (default true)"),
		),
	), deps.wrap("vault_list_notes", "vault", func(ctx context.Context, args map[string]any) (any, error) {
		notes, err := deps.Vault.List(argString(args, "folder"), argBool(args, "recursive", true))
		if err != nil {
			return nil, err
		}
		return map[string]any{"notes": notes, "count": len(notes)}, nil
	}))

	s.AddTool(mcp.NewTool("vault_daily_note",
		mcp.WithDescription("Get or create the daily note for a date (default today)."),
		mcp.WithString("date",
			mcp.Description("Date as YYYY-MM-DD; omit for today"),
		),
	), deps.wrap("vault_daily_note", "vault", func(ctx context.Context, args map[string]any) (any, error) {
		date := time.Now()
		if s := argString(args, "date"); s != "" {
			parsed, err := time.ParseInLocation("2006-01-02", s, time.Local)
			if err != nil {
				return nil, fmt.Errorf("date must be YYYY-MM-DD")
			}
			date = parsed
		}
		return deps.Vault.DailyNote(date)
	}))

	s.AddTool(mcp.NewTool("vault_stats",
		mcp.WithDescription("Report note counts and sizes per folder."),
	), deps.wrap("vault_stats", "vault", func(ctx context.Context, args map[string]any) (any, error) {
		return deps.Vault.Stats()
	}))
}
