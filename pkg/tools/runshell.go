// RunShellTool implementation.
package tools

import (
	"bytes"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/mizukiho/termagent/pkg/llm"
)

// RunShellTool implements the run_shell tool. It is system-modifying and
// runs behind the confirmation gate.
type RunShellTool struct{}

func (t *RunShellTool) Name() string {
	return "run_shell"
}

func (t *RunShellTool) Definition() llm.ToolDefinition {
	return llm.ToolDefinition{
		Name:        "run_shell",
		Description: "Run a shell command and return its captured output",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"command": map[string]any{
					"type":        "string",
					"description": "Shell command to run.",
				},
			},
			"required": []string{"command"},
		},
	}
}

// Prompt renders the confirmation preview for a pending command.
func (t *RunShellTool) Prompt(argText string) string {
	var args struct {
		Command string `json:"command"`
	}
	if res := decodeArgs(t.Name(), argText, &args); res != nil {
		return fmt.Sprintf("Run command with arguments: %s", previewText(argText))
	}
	return fmt.Sprintf("Run command: %s", previewText(args.Command))
}

func (t *RunShellTool) Execute(argText string) Result {
	var args struct {
		Command string `json:"command"`
	}
	if res := decodeArgs(t.Name(), argText, &args); res != nil {
		return *res
	}
	if args.Command == "" {
		return Errorf("command is required")
	}

	output, err := runShellCommand(args.Command)
	if err != nil {
		msg := err.Error()
		if trimmed := strings.TrimSpace(output); trimmed != "" {
			msg = fmt.Sprintf("%s: %s", msg, trimmed)
		}
		return Errorf("%s", msg)
	}

	return Success(struct {
		Command string `json:"command"`
		Output  string `json:"output"`
	}{
		Command: args.Command,
		Output:  output,
	})
}

// runShellCommand executes command through the shell and captures combined
// stdout and stderr. The command runs to completion; no timeout is applied.
func runShellCommand(command string) (string, error) {
	cmd := exec.Command("bash", "-c", command)

	var output bytes.Buffer
	cmd.Stdout = &output
	cmd.Stderr = &output

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return output.String(), fmt.Errorf("command exited with code %d", exitErr.ExitCode())
		}
		return output.String(), err
	}
	return output.String(), nil
}
