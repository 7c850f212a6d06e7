package tui

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HaiFongPan/minas-cli/internal/navigator"
)

func receive(t *testing.T, out chanSender) tea.Msg {
	t.Helper()
	select {
	case msg := <-out:
		return msg
	case <-time.After(5 * time.Second):
		t.Fatal("no message sent")
		return nil
	}
}

// TestBridge_WithoutSender 测试未连接程序时对话框视为取消
func TestBridge_WithoutSender(t *testing.T) {
	b := NewBridge()

	assert.False(t, b.Confirm("Delete?"))
	text, ok := b.PromptText("Name:", "x")
	assert.False(t, ok)
	assert.Empty(t, text)

	// 不应阻塞或崩溃
	b.Notify("hello")
	b.Render(navigator.Listing{})
	b.SetDisabled(navigator.Control{}, true)
}

// TestBridge_ViewMessages 测试视图调用转换为消息
func TestBridge_ViewMessages(t *testing.T) {
	b := NewBridge()
	out := make(chanSender, 8)
	b.SetSender(out)

	b.Render(navigator.Listing{Path: "a"})
	b.SetDisabled(navigator.Control{Action: navigator.ActionUpload}, true)
	b.ClearInput(navigator.Control{Action: navigator.ActionUpload})
	b.Notify("boom")
	b.Progress("upload", "a.txt", 5, 10, 50)

	assert.Equal(t, listingMsg{listing: navigator.Listing{Path: "a"}}, receive(t, out))
	assert.Equal(t, controlStateMsg{ctrl: navigator.Control{Action: navigator.ActionUpload}, disabled: true}, receive(t, out))
	assert.Equal(t, clearInputMsg{ctrl: navigator.Control{Action: navigator.ActionUpload}}, receive(t, out))
	assert.Equal(t, notifyMsg{text: "boom"}, receive(t, out))
	assert.Equal(t, transferProgressMsg{op: "upload", name: "a.txt", done: 5, total: 10, percentage: 50}, receive(t, out))
}

// TestBridge_ConfirmWaitsForReply 测试确认框阻塞直到用户回答
func TestBridge_ConfirmWaitsForReply(t *testing.T) {
	b := NewBridge()
	out := make(chanSender, 1)
	b.SetSender(out)

	result := make(chan bool, 1)
	go func() { result <- b.Confirm("Delete a.txt?") }()

	req, ok := receive(t, out).(confirmRequestMsg)
	require.True(t, ok)
	assert.Equal(t, "Delete a.txt?", req.text)

	select {
	case <-result:
		t.Fatal("confirm returned before the reply")
	case <-time.After(20 * time.Millisecond):
	}

	req.reply <- true
	assert.True(t, <-result)
}

// TestBridge_PromptReply 测试输入框返回用户输入
func TestBridge_PromptReply(t *testing.T) {
	b := NewBridge()
	out := make(chanSender, 1)
	b.SetSender(out)

	type answer struct {
		text string
		ok   bool
	}
	result := make(chan answer, 1)
	go func() {
		text, ok := b.PromptText("New name:", "old")
		result <- answer{text, ok}
	}()

	req, ok := receive(t, out).(promptRequestMsg)
	require.True(t, ok)
	assert.Equal(t, "old", req.def)

	d := newPromptDialog(req)
	assert.Equal(t, "old", d.input.Value())
	d.handleKey(keyClear)
	d.handleKey(keyRunes("new"))
	finished, _ := d.handleKey(keyEnter)
	require.True(t, finished)

	got := <-result
	assert.True(t, got.ok)
	assert.Equal(t, "new", got.text)
}

// TestBridge_CloseReleasesWaiters 测试关闭后阻塞的对话框立即返回
func TestBridge_CloseReleasesWaiters(t *testing.T) {
	b := NewBridge()
	out := make(chanSender, 1)
	b.SetSender(out)

	result := make(chan bool, 1)
	go func() {
		_, ok := b.PromptText("Name:", "")
		result <- ok
	}()
	receive(t, out)

	b.Close()
	select {
	case ok := <-result:
		assert.False(t, ok)
	case <-time.After(5 * time.Second):
		t.Fatal("prompt still blocked after close")
	}

	// 关闭后不再发送
	assert.False(t, b.Confirm("again?"))
	b.Close()
}

// TestDialog_AnswersOnce 测试对话框只回答一次
func TestDialog_AnswersOnce(t *testing.T) {
	reply := make(chan bool, 1)
	d := newConfirmDialog(confirmRequestMsg{text: "Delete?", reply: reply})

	finished, _ := d.handleKey(keyRunes("x"))
	assert.False(t, finished)

	finished, _ = d.handleKey(keyRunes("y"))
	assert.True(t, finished)
	d.cancel()

	assert.True(t, <-reply)
	assert.Empty(t, reply)
	assert.Contains(t, d.View(), "Delete?")
}
