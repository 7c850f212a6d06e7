package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/HaiFongPan/minas-cli/internal/navigator"
)

// sender is satisfied by *tea.Program.
type sender interface {
	Send(msg tea.Msg)
}

// Bridge lets the controller, which runs on command goroutines, talk to the
// bubbletea event loop. View calls become messages; dialog calls become
// messages carrying a reply channel and block until the user answers.
type Bridge struct {
	mu   sync.RWMutex
	out  sender
	done chan struct{}
	once sync.Once
}

// NewBridge creates a bridge that drops everything until SetSender is called.
func NewBridge() *Bridge {
	return &Bridge{done: make(chan struct{})}
}

// SetSender attaches the running program.
func (b *Bridge) SetSender(s sender) {
	b.mu.Lock()
	b.out = s
	b.mu.Unlock()
}

// Close releases blocked dialog calls; they answer as if cancelled.
func (b *Bridge) Close() {
	b.once.Do(func() { close(b.done) })
}

func (b *Bridge) send(msg tea.Msg) bool {
	b.mu.RLock()
	out := b.out
	b.mu.RUnlock()

	select {
	case <-b.done:
		return false
	default:
	}
	if out == nil {
		return false
	}
	out.Send(msg)
	return true
}

// Render implements navigator.View.
func (b *Bridge) Render(listing navigator.Listing) {
	b.send(listingMsg{listing: listing})
}

// SetDisabled implements navigator.View.
func (b *Bridge) SetDisabled(ctrl navigator.Control, disabled bool) {
	b.send(controlStateMsg{ctrl: ctrl, disabled: disabled})
}

// ClearInput implements navigator.View.
func (b *Bridge) ClearInput(ctrl navigator.Control) {
	b.send(clearInputMsg{ctrl: ctrl})
}

// Confirm implements navigator.Dialogs.
func (b *Bridge) Confirm(text string) bool {
	reply := make(chan bool, 1)
	if !b.send(confirmRequestMsg{text: text, reply: reply}) {
		return false
	}
	select {
	case ok := <-reply:
		return ok
	case <-b.done:
		return false
	}
}

// PromptText implements navigator.Dialogs.
func (b *Bridge) PromptText(text, def string) (string, bool) {
	reply := make(chan promptReply, 1)
	if !b.send(promptRequestMsg{text: text, def: def, reply: reply}) {
		return "", false
	}
	select {
	case r := <-reply:
		return r.value, r.ok
	case <-b.done:
		return "", false
	}
}

// Notify implements navigator.Dialogs. It does not wait for the user.
func (b *Bridge) Notify(text string) {
	b.send(notifyMsg{text: text})
}

// Progress forwards transfer progress to the program.
func (b *Bridge) Progress(op, name string, done, total int64, percentage float64) {
	b.send(transferProgressMsg{op: op, name: name, done: done, total: total, percentage: percentage})
}
