// ReadFileTool implementation.
package tools

import (
	"os"

	"github.com/mizukiho/termagent/pkg/llm"
)

// ReadFileTool implements the read_file tool.
type ReadFileTool struct {
	maxBytes int64
}

func (t *ReadFileTool) Name() string {
	return "read_file"
}

func (t *ReadFileTool) Definition() llm.ToolDefinition {
	return llm.ToolDefinition{
		Name:        "read_file",
		Description: "Read a file from disk as text",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"path": map[string]any{
					"type":        "string",
					"description": "Path of the file to read, relative to the working directory.",
				},
				"max_bytes": map[string]any{
					"type":        "integer",
					"description": "Optional cap on the number of bytes returned.",
				},
			},
			"required": []string{"path"},
		},
	}
}

func (t *ReadFileTool) Execute(argText string) Result {
	var args struct {
		Path     string `json:"path"`
		MaxBytes int64  `json:"max_bytes"`
	}
	if res := decodeArgs(t.Name(), argText, &args); res != nil {
		return *res
	}
	if args.Path == "" {
		return Errorf("path is required")
	}

	data, err := os.ReadFile(args.Path)
	if err != nil {
		return Errorf("%v", err)
	}

	maxBytes := args.MaxBytes
	if maxBytes <= 0 {
		maxBytes = t.maxBytes
	}
	total := len(data)
	truncated := false
	if int64(total) > maxBytes {
		truncated = true
		data = data[:maxBytes]
	}

	return Success(struct {
		Path      string `json:"path"`
		Bytes     int    `json:"bytes"`
		Truncated bool   `json:"truncated"`
		Content   string `json:"content"`
	}{
		Path:      args.Path,
		Bytes:     len(data),
		Truncated: truncated,
		Content:   string(data),
	})
}
