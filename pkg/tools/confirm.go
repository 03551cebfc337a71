// Confirmation gate for system-modifying tools.
package tools

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

// previewLimit caps content previews shown in confirmation prompts.
const previewLimit = 100

// Confirmer asks the user to approve a system-modifying tool invocation.
// Confirm blocks until an answer arrives and returns true only for an
// explicit affirmative. Every invocation gets a fresh prompt; approvals are
// never cached.
type Confirmer interface {
	Confirm(prompt string) bool
}

// ConfirmerFunc adapts a function to the Confirmer interface.
type ConfirmerFunc func(prompt string) bool

func (f ConfirmerFunc) Confirm(prompt string) bool { return f(prompt) }

// TerminalConfirmer reads yes/no answers from an interactive input stream.
type TerminalConfirmer struct {
	in  *bufio.Reader
	out io.Writer
}

// NewTerminalConfirmer builds a confirmer over the given reader and writer.
// The reader is shared with the interactive loop, so it must be the same
// buffered reader the loop consumes lines from.
func NewTerminalConfirmer(in *bufio.Reader, out io.Writer) *TerminalConfirmer {
	return &TerminalConfirmer{in: in, out: out}
}

// Confirm renders the prompt and blocks on a single yes/no answer.
// "yes" and "y" (case-insensitive) affirm; anything else, including a read
// failure, declines.
func (c *TerminalConfirmer) Confirm(prompt string) bool {
	_, _ = fmt.Fprintf(c.out, "%s\nProceed? [yes/no]: ", prompt)
	line, err := c.in.ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	return IsAffirmative(line)
}

// IsAffirmative reports whether the answer counts as an explicit yes.
func IsAffirmative(answer string) bool {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "yes", "y":
		return true
	default:
		return false
	}
}

// previewText truncates long previews for confirmation prompts. The limit
// counts characters, not bytes, so multi-byte content is never cut mid-rune.
// Input at or under the limit is returned unmodified.
func previewText(s string) string {
	if utf8.RuneCountInString(s) <= previewLimit {
		return s
	}
	runes := []rune(s)
	return string(runes[:previewLimit]) + "..."
}
