// Package logging provides stderr logging helpers for the gateway.
// Stdout carries the MCP JSON-RPC stream, so all diagnostics go through
// the standard logger, which main points at stderr.
package logging

import (
	"log"
	"os"
	"strings"
)

var debugEnabled = os.Getenv("DEBUG") == "true"

// Info logs an informational message (always shown)
func Info(subsystem, format string, args ...any) {
	log.Printf("[%s] "+format, append([]any{subsystem}, args...)...)
}

// Debug logs a debug message (only shown if DEBUG=true)
func Debug(subsystem, format string, args ...any) {
	if debugEnabled {
		log.Printf("[%s] "+format, append([]any{subsystem}, args...)...)
	}
}

// Error logs an error message
func Error(subsystem, format string, args ...any) {
	log.Printf("[%s] ERROR "+format, append([]any{subsystem}, args...)...)
}

// Truncate collapses a string to a single line of at most maxLen bytes,
// adding an ellipsis when it was cut
func Truncate(s string, maxLen int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.TrimSpace(s)
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
