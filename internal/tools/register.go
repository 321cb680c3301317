package tools

import (
	"github.com/mark3labs/mcp-go/server"
)

// RegisterAll registers all MCP tools for the configured services.
// Services left nil in deps simply don't contribute tools.
func RegisterAll(s *server.MCPServer, deps *Dependencies) {
	registerHealthTools(s, deps)

	if deps.Anki != nil {
		registerAnkiTools(s, deps)
	}
	if deps.Todoist != nil {
		registerTodoistTools(s, deps)
	}
	if deps.Vault != nil {
		registerVaultTools(s, deps)
	}
	if deps.Calendar != nil {
		registerCalendarTools(s, deps)
	}
	if deps.Activity != nil {
		registerActivityTools(s, deps)
	}
}
