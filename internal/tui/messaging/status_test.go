package messaging

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStatusManager(t *testing.T) {
	sm := NewStatusManager()
	assert.False(t, sm.HasMessage())
	assert.Empty(t, sm.RenderMessage())

	sm.SetMessage("file too large", MessageError)
	msg, typ, ok := sm.GetMessage()
	assert.True(t, ok)
	assert.Equal(t, "file too large", msg)
	assert.Equal(t, MessageError, typ)
	assert.Contains(t, sm.RenderMessage(), "file too large")

	// 未过期时保留
	assert.False(t, sm.Expire(time.Now()))
	assert.True(t, sm.HasMessage())

	assert.True(t, sm.Expire(time.Now().Add(DefaultTTL)))
	assert.False(t, sm.HasMessage())
}

func TestMessageTypeStyling(t *testing.T) {
	assert.NotEqual(t, MessageError.Color(), MessageSuccess.Color())
	assert.Equal(t, "❌", MessageError.Icon())
	assert.Equal(t, "✅", MessageSuccess.Icon())
}
