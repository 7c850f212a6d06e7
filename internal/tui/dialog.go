package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	tuiconfig "github.com/HaiFongPan/minas-cli/internal/tui/config"
	"github.com/HaiFongPan/minas-cli/internal/tui/theme"
)

type dialogKind int

const (
	dialogConfirm dialogKind = iota
	dialogPrompt
	dialogNotify
)

// dialog is one modal question raised by the controller. Each dialog is
// answered exactly once, either by the user or by cancel.
type dialog struct {
	kind     dialogKind
	text     string
	input    textinput.Model
	confirm  chan<- bool
	prompt   chan<- promptReply
	answered bool
}

func newConfirmDialog(msg confirmRequestMsg) *dialog {
	return &dialog{kind: dialogConfirm, text: msg.text, confirm: msg.reply}
}

func newPromptDialog(msg promptRequestMsg) *dialog {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.CharLimit = 255
	ti.Width = tuiconfig.DialogDefaultWidth - 10
	ti.SetValue(msg.def)
	ti.CursorEnd()
	ti.Focus()
	return &dialog{kind: dialogPrompt, text: msg.text, input: ti, prompt: msg.reply}
}

func newNotifyDialog(text string) *dialog {
	return &dialog{kind: dialogNotify, text: text}
}

// handleKey feeds a key to the dialog and reports whether it is finished.
func (d *dialog) handleKey(msg tea.KeyMsg) (bool, tea.Cmd) {
	switch d.kind {
	case dialogConfirm:
		switch msg.String() {
		case "y", "Y", "enter":
			d.answerConfirm(true)
			return true, nil
		case "n", "N", "esc", "q":
			d.answerConfirm(false)
			return true, nil
		}
		return false, nil

	case dialogPrompt:
		switch msg.Type {
		case tea.KeyEnter:
			d.answerPrompt(d.input.Value(), true)
			return true, nil
		case tea.KeyEsc:
			d.answerPrompt("", false)
			return true, nil
		}
		var cmd tea.Cmd
		d.input, cmd = d.input.Update(msg)
		return false, cmd

	default:
		switch msg.String() {
		case "enter", "esc", " ", "q":
			d.answered = true
			return true, nil
		}
		return false, nil
	}
}

// cancel answers the dialog negatively if it is still open.
func (d *dialog) cancel() {
	switch d.kind {
	case dialogConfirm:
		d.answerConfirm(false)
	case dialogPrompt:
		d.answerPrompt("", false)
	default:
		d.answered = true
	}
}

func (d *dialog) answerConfirm(ok bool) {
	if d.answered {
		return
	}
	d.answered = true
	if d.confirm != nil {
		d.confirm <- ok
	}
}

func (d *dialog) answerPrompt(value string, ok bool) {
	if d.answered {
		return
	}
	d.answered = true
	if d.prompt != nil {
		d.prompt <- promptReply{value: value, ok: ok}
	}
}

// View renders the dialog box.
func (d *dialog) View() string {
	var (
		title, color, hint string
	)
	switch d.kind {
	case dialogConfirm:
		title, color = "⚠️  Confirm", theme.ColorBrightRed
		hint = "y/enter confirm • n/esc cancel"
	case dialogPrompt:
		title, color = "✏️  Input", theme.ColorBrightYellow
		hint = "enter accept • esc cancel"
	default:
		title, color = "ℹ️  Notice", theme.ColorBrightCyan
		hint = "enter/esc close"
	}

	var b strings.Builder
	b.WriteString(theme.CreateDialogTitleStyle(color).Render(title))
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().
		Width(tuiconfig.DialogDefaultWidth - 8).
		Render(d.text))
	b.WriteString("\n\n")
	if d.kind == dialogPrompt {
		b.WriteString(d.input.View())
		b.WriteString("\n\n")
	}
	b.WriteString(theme.CreateSecondaryTextStyle().Render(hint))

	return theme.CreateDialogStyle(tuiconfig.DialogDefaultWidth, color).Render(b.String())
}
