// Interactive loop driving the session from terminal input.
package chat

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/mizukiho/termagent/pkg/logger"
)

// exitCommand ends the session, matched case-insensitively.
const exitCommand = "exit"

// Run drives the interactive loop until the user types "exit" or input ends.
// An optional initial message is processed as the first turn before any
// prompting; if it is the exit command the loop never prompts at all. The
// reader must be the same buffered reader shared with the confirmation gate
// so prompt answers and chat input do not race over buffered bytes.
func (s *Session) Run(ctx context.Context, in *bufio.Reader, initial string) error {
	if initial = strings.TrimSpace(initial); initial != "" {
		if strings.EqualFold(initial, exitCommand) {
			s.farewell()
			return nil
		}
		s.sendAndReport(ctx, initial)
	}

	for {
		_, _ = fmt.Fprint(s.out, "> ")
		line, err := in.ReadString('\n')
		if input := strings.TrimSpace(line); input != "" {
			if strings.EqualFold(input, exitCommand) {
				s.farewell()
				return nil
			}
			s.sendAndReport(ctx, input)
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("read input: %w", err)
		}
	}
}

// sendAndReport runs one turn and reports a remote failure without ending
// the session.
func (s *Session) sendAndReport(ctx context.Context, input string) {
	if err := s.Send(ctx, input); err != nil {
		logger.Error(s.log, "chat request failed", map[string]any{"error": err.Error()})
		_, _ = fmt.Fprintf(s.out, "Error: %v\n\n", err)
		return
	}
	_, _ = fmt.Fprintln(s.out)
}

func (s *Session) farewell() {
	_, _ = fmt.Fprintln(s.out, "Goodbye!")
}
