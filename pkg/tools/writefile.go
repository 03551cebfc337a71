// WriteFileTool implementation.
package tools

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mizukiho/termagent/pkg/llm"
)

// WriteFileTool implements the write_file tool. It is system-modifying and
// runs behind the confirmation gate.
type WriteFileTool struct{}

func (t *WriteFileTool) Name() string {
	return "write_file"
}

func (t *WriteFileTool) Definition() llm.ToolDefinition {
	return llm.ToolDefinition{
		Name:        "write_file",
		Description: "Create or overwrite a file on disk with the given content",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"path": map[string]any{
					"type":        "string",
					"description": "Path of the file to write, relative to the working directory.",
				},
				"content": map[string]any{
					"type":        "string",
					"description": "Full text content written to the file.",
				},
			},
			"required": []string{"path", "content"},
		},
	}
}

// Prompt renders the confirmation preview for a pending write.
func (t *WriteFileTool) Prompt(argText string) string {
	var args struct {
		Path    string `json:"path"`
		Content string `json:"content"`
	}
	if res := decodeArgs(t.Name(), argText, &args); res != nil {
		return fmt.Sprintf("Write file with arguments: %s", previewText(argText))
	}
	return fmt.Sprintf("Write to %s:\n%s", args.Path, previewText(args.Content))
}

func (t *WriteFileTool) Execute(argText string) Result {
	var args struct {
		Path    string `json:"path"`
		Content string `json:"content"`
	}
	if res := decodeArgs(t.Name(), argText, &args); res != nil {
		return *res
	}
	if args.Path == "" {
		return Errorf("path is required")
	}

	if err := WriteFile(args.Path, args.Content); err != nil {
		return Errorf("%v", err)
	}

	return Success(struct {
		Path    string `json:"path"`
		Bytes   int    `json:"bytes"`
		Message string `json:"message"`
	}{
		Path:    args.Path,
		Bytes:   len(args.Content),
		Message: fmt.Sprintf("Wrote %d bytes to %s", len(args.Content), args.Path),
	})
}

// WriteFile creates parent directories as needed, then creates or overwrites
// the target file with content. Shared by the write_file tool and the direct
// create-file command path.
func WriteFile(path, content string) error {
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, []byte(content), 0o644)
}
