// ListFilesTool implementation.
package tools

import (
	"os"

	"github.com/mizukiho/termagent/pkg/llm"
)

// ListFilesTool implements the list_files tool.
type ListFilesTool struct{}

func (t *ListFilesTool) Name() string {
	return "list_files"
}

func (t *ListFilesTool) Definition() llm.ToolDefinition {
	return llm.ToolDefinition{
		Name:        "list_files",
		Description: "List the entries of a directory (non-recursive)",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"directory": map[string]any{
					"type":        "string",
					"description": "Directory to list, relative to the working directory.",
				},
			},
			"required": []string{"directory"},
		},
	}
}

func (t *ListFilesTool) Execute(argText string) Result {
	var args struct {
		Directory string `json:"directory"`
	}
	if res := decodeArgs(t.Name(), argText, &args); res != nil {
		return *res
	}
	if args.Directory == "" {
		return Errorf("directory is required")
	}

	entries, err := os.ReadDir(args.Directory)
	if err != nil {
		return Errorf("%v", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}

	return Success(struct {
		Directory string   `json:"directory"`
		Entries   []string `json:"entries"`
		Count     int      `json:"count"`
	}{
		Directory: args.Directory,
		Entries:   names,
		Count:     len(names),
	})
}
