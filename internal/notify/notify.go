// Package notify provides the host's transient message primitive.
package notify

import (
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// Notifier shows a short message to the user. It is fire-and-forget.
type Notifier interface {
	Notify(message string)
}

// Console prints notices to a terminal as a styled one-line banner.
type Console struct {
	mu    sync.Mutex
	out   io.Writer
	style lipgloss.Style
}

// NewConsole returns a Console writing to out.
func NewConsole(out io.Writer) *Console {
	return &Console{
		out: out,
		style: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#0052CC")).
			Padding(0, 1),
	}
}

// Notify writes message to the console.
func (c *Console) Notify(message string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintln(c.out, c.style.Render(message))
}

// Collector records notices in memory, for hosts that relay them elsewhere.
type Collector struct {
	mu       sync.Mutex
	messages []string
}

// Notify records message.
func (c *Collector) Notify(message string) {
	c.mu.Lock()
	c.messages = append(c.messages, message)
	c.mu.Unlock()
}

// Messages returns a copy of the recorded notices in order.
func (c *Collector) Messages() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.messages...)
}

// Last returns the most recent notice, or "" if there is none.
func (c *Collector) Last() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.messages) == 0 {
		return ""
	}
	return c.messages[len(c.messages)-1]
}
