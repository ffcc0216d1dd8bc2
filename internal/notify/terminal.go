package notify

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
)

// TerminalNotifier writes notifications to a terminal writer. Used when the
// daemon runs in the foreground.
type TerminalNotifier struct {
	writer  io.Writer
	enabled bool
	mu      sync.Mutex
}

// NewTerminalNotifier creates a terminal notifier writing to stdout.
func NewTerminalNotifier() *TerminalNotifier {
	return &TerminalNotifier{
		writer:  os.Stdout,
		enabled: true,
	}
}

// NewTerminalNotifierWithWriter creates a terminal notifier with a custom writer.
func NewTerminalNotifierWithWriter(w io.Writer) *TerminalNotifier {
	return &TerminalNotifier{
		writer:  w,
		enabled: true,
	}
}

// Name returns the name of the notifier.
func (t *TerminalNotifier) Name() string {
	return "terminal"
}

// IsEnabled returns whether the notifier is enabled.
func (t *TerminalNotifier) IsEnabled() bool {
	return t.enabled
}

// Send writes a notification to the terminal.
func (t *TerminalNotifier) Send(ctx context.Context, n Notification) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	divider := strings.Repeat("─", 60)
	fmt.Fprintln(t.writer, divider)
	fmt.Fprintf(t.writer, "%s  [%s]\n", n.Title, n.Timestamp.Format("15:04:05"))
	fmt.Fprintln(t.writer, n.Message)
	fmt.Fprintln(t.writer, divider)
	return nil
}
