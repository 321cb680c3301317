// wren-mcp is an MCP stdio server that gives assistants a uniform tool
// interface over personal productivity services: Anki flashcards, Todoist
// tasks, an Obsidian-style note vault, and Google Calendar.
//
// Services are configured through environment variables; anything
// unconfigured is simply skipped, and its tools are not exposed.
package main

import (
	"context"
	"log"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"

	"github.com/lwaldron/wren/internal/activity"
	"github.com/lwaldron/wren/internal/health"
	"github.com/lwaldron/wren/internal/integrations/anki"
	"github.com/lwaldron/wren/internal/integrations/calendar"
	"github.com/lwaldron/wren/internal/integrations/todoist"
	"github.com/lwaldron/wren/internal/logging"
	"github.com/lwaldron/wren/internal/tools"
	"github.com/lwaldron/wren/internal/vault"
)

const version = "1.0.0"

func main() {
	// Stdout carries the JSON-RPC stream; everything else goes to stderr.
	log.SetOutput(os.Stderr)

	loadDotenv()

	deps := buildDependencies()

	s := server.NewMCPServer(
		"wren",
		version,
		server.WithToolCapabilities(true),
	)
	tools.RegisterAll(s, deps)

	logging.Info("main", "wren %s starting on stdio", version)
	if err := server.ServeStdio(s); err != nil {
		logging.Error("main", "server: %v", err)
		os.Exit(1)
	}
}

// loadDotenv loads the first .env found next to the binary's parent dir
// (repo root when installed under bin/), the binary's dir, or the cwd.
func loadDotenv() {
	paths := []string{".env"}
	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append([]string{
			filepath.Join(filepath.Dir(exeDir), ".env"),
			filepath.Join(exeDir, ".env"),
		}, paths...)
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			_ = godotenv.Load(p)
			return
		}
	}
}

// buildDependencies constructs clients for whatever services the
// environment configures. Misconfiguration of one service is logged and
// skipped rather than fatal.
func buildDependencies() *tools.Dependencies {
	deps := &tools.Dependencies{
		Health: health.NewChecker(),
	}

	statePath := os.Getenv("WREN_STATE_PATH")
	if statePath == "" {
		if home, err := os.UserHomeDir(); err == nil {
			statePath = filepath.Join(home, ".wren")
		}
	}
	if statePath != "" {
		if actLog, err := activity.Open(statePath); err != nil {
			logging.Error("main", "activity log disabled: %v", err)
		} else {
			deps.Activity = actLog
		}
	}

	// Anki needs no credentials, only a reachable AnkiConnect add-on, so
	// the client is always constructed; health_check reports whether the
	// desktop app is actually up.
	deps.Anki = anki.NewClient()
	deps.Health.Register("anki", deps.Anki.Ping)
	logging.Info("main", "anki: %s", deps.Anki.URL())

	if os.Getenv("TODOIST_API_TOKEN") != "" {
		client, err := todoist.NewClient()
		if err != nil {
			logging.Error("main", "todoist disabled: %v", err)
			deps.Health.Register("todoist", nil)
		} else {
			deps.Todoist = client
			deps.Health.Register("todoist", func(ctx context.Context) error {
				_, err := client.GetProjects(ctx)
				return err
			})
			logging.Info("main", "todoist: configured")
		}
	} else {
		deps.Health.Register("todoist", nil)
	}

	if vaultPath := os.Getenv("OBSIDIAN_VAULT_PATH"); vaultPath != "" {
		v, err := vault.Open(vaultPath)
		if err != nil {
			logging.Error("main", "vault disabled: %v", err)
			deps.Health.Register("vault", nil)
		} else {
			deps.Vault = v
			deps.Health.Register("vault", func(ctx context.Context) error {
				_, err := v.Stats()
				return err
			})
			logging.Info("main", "vault: %s", v.Root())
		}
	} else {
		deps.Health.Register("vault", nil)
	}

	if os.Getenv("GOOGLE_CALENDAR_CREDENTIALS_FILE") != "" {
		client, err := calendar.NewClient()
		if err != nil {
			logging.Error("main", "calendar disabled: %v", err)
			deps.Health.Register("calendar", nil)
		} else {
			deps.Calendar = client
			deps.Health.Register("calendar", func(ctx context.Context) error {
				_, err := client.ListCalendars(ctx)
				return err
			})
			logging.Info("main", "calendar: %s", client.CalendarID())
		}
	} else {
		deps.Health.Register("calendar", nil)
	}

	return deps
}
