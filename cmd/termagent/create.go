package main

import (
	"strings"

	"github.com/mizukiho/termagent/pkg/tools"
)

// parseCreateCommand matches the direct "create <name>.txt" form. It returns
// the target file name and whether the input matched.
func parseCreateCommand(input string) (string, bool) {
	fields := strings.Fields(input)
	if len(fields) != 2 {
		return "", false
	}
	if !strings.EqualFold(fields[0], "create") {
		return "", false
	}
	name := fields[1]
	if !strings.HasSuffix(name, ".txt") || name == ".txt" {
		return "", false
	}
	return name, true
}

// runCreate writes an empty file for the direct create form. It calls the
// write-file executor directly, skipping the chat loop and the confirmation
// gate entirely.
func runCreate(name string) error {
	return tools.WriteFile(name, "")
}
