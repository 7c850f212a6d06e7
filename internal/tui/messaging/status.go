package messaging

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/sirupsen/logrus"

	"github.com/HaiFongPan/minas-cli/internal/tui/theme"
)

// MessageType represents different message types for status display
type MessageType int

// Message type constants
const (
	MessageInfo MessageType = iota
	MessageSuccess
	MessageWarning
	MessageError
)

// DefaultTTL is how long a status line stays before it expires.
const DefaultTTL = 5 * time.Second

// StatusManager manages status messages and their display
type StatusManager interface {
	SetMessage(message string, msgType MessageType)
	ClearMessage()
	GetMessage() (string, MessageType, bool)
	RenderMessage() string
	HasMessage() bool
	// Expire clears the message when it is older than the TTL.
	Expire(now time.Time) bool
}

// StatusManagerImpl implements the StatusManager interface
type StatusManagerImpl struct {
	statusMessage string
	messageType   MessageType
	messageTimer  time.Time
	ttl           time.Duration
}

// NewStatusManager creates a new status manager instance
func NewStatusManager() StatusManager {
	return &StatusManagerImpl{
		messageType: MessageInfo,
		ttl:         DefaultTTL,
	}
}

// SetMessage sets a status message with type
func (sm *StatusManagerImpl) SetMessage(message string, msgType MessageType) {
	sm.statusMessage = message
	sm.messageType = msgType
	sm.messageTimer = time.Now()

	logrus.Debugf("StatusManager: setMessage called with message='%s', type=%d", message, msgType)
}

// ClearMessage clears the status message
func (sm *StatusManagerImpl) ClearMessage() {
	sm.statusMessage = ""
}

// GetMessage returns the current message, type, and whether a message exists
func (sm *StatusManagerImpl) GetMessage() (string, MessageType, bool) {
	return sm.statusMessage, sm.messageType, sm.statusMessage != ""
}

// HasMessage returns whether there is currently a status message
func (sm *StatusManagerImpl) HasMessage() bool {
	return sm.statusMessage != ""
}

// Expire clears a message older than the TTL and reports whether it did.
func (sm *StatusManagerImpl) Expire(now time.Time) bool {
	if sm.statusMessage == "" || now.Sub(sm.messageTimer) < sm.ttl {
		return false
	}
	sm.statusMessage = ""
	return true
}

// RenderMessage renders the current status message with appropriate styling
func (sm *StatusManagerImpl) RenderMessage() string {
	if !sm.HasMessage() {
		return ""
	}

	messageStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(sm.messageType.Color())).
		Bold(true)

	return messageStyle.Render(fmt.Sprintf("%s %s", sm.messageType.Icon(), sm.statusMessage))
}

// Color returns the theme color of the message type.
func (t MessageType) Color() string {
	switch t {
	case MessageError:
		return theme.ColorBrightRed
	case MessageSuccess:
		return theme.ColorBrightGreen
	case MessageWarning:
		return theme.ColorBrightYellow
	default:
		return theme.ColorBrightCyan
	}
}

// Icon returns the glyph shown before the message.
func (t MessageType) Icon() string {
	switch t {
	case MessageError:
		return "❌"
	case MessageSuccess:
		return "✅"
	case MessageWarning:
		return "⚠️"
	default:
		return "ℹ️"
	}
}
