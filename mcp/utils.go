package mcp

import "github.com/google/uuid"

// generateSessionID creates a unique session identifier
func generateSessionID() string {
	return uuid.NewString()
}

// truncate shortens s for logging.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
