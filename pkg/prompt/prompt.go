// Package prompt assembles the system prompt for a session.
package prompt

import (
	"strings"

	"github.com/mizukiho/termagent/pkg/llm"
)

// System constructs the system prompt, listing the available tools.
func System(defs []llm.ToolDefinition) string {
	var sb strings.Builder
	sb.WriteString("You are a helpful assistant running in a terminal. Use the tools to read and write files, list directories, and run shell commands when the user's request needs them.")

	if len(defs) > 0 {
		names := make([]string, 0, len(defs))
		for _, def := range defs {
			names = append(names, def.Name)
		}
		sb.WriteString("\nTools available: ")
		sb.WriteString(strings.Join(names, ", "))
		sb.WriteString(".")
	}

	return sb.String()
}
