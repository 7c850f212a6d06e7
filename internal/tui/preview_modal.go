package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sirupsen/logrus"

	"github.com/HaiFongPan/minas-cli/internal/navigator"
	tuiconfig "github.com/HaiFongPan/minas-cli/internal/tui/config"
	"github.com/HaiFongPan/minas-cli/internal/tui/preview"
	"github.com/HaiFongPan/minas-cli/internal/tui/theme"
	"github.com/HaiFongPan/minas-cli/internal/utils"
)

// PreviewModel is the fullscreen preview overlay for one session.
type PreviewModel struct {
	ctx     context.Context
	session *navigator.Session
	loader  *preview.Loader
	size    *int64

	width  int
	height int

	force   bool
	loading bool
	image   *preview.Image
	err     error
	note    string

	spin spinner.Model
}

// NewPreviewModel creates the overlay model. loader may be nil when image
// previews are unavailable.
func NewPreviewModel(ctx context.Context, session *navigator.Session, loader *preview.Loader, size *int64, width, height int) *PreviewModel {
	s := spinner.New()
	s.Spinner = spinner.Line
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color(theme.ColorBrightYellow))

	return &PreviewModel{
		ctx:     ctx,
		session: session,
		loader:  loader,
		size:    size,
		width:   width,
		height:  height,
		spin:    s,
	}
}

// Session returns the previewed session.
func (m *PreviewModel) Session() *navigator.Session {
	return m.session
}

// Init starts loading an image element. Other elements need no loading.
func (m *PreviewModel) Init() tea.Cmd {
	if m.session.Element.Kind != navigator.ElementImage || m.loader == nil {
		return nil
	}
	m.loading = true
	m.err = nil
	return tea.Batch(m.load(), m.spin.Tick)
}

func (m *PreviewModel) imageCells() (int, int) {
	cols := max(1, m.width-4)
	rows := max(1, m.height-tuiconfig.PreviewHeaderLines-2)
	return cols, rows
}

func (m *PreviewModel) load() tea.Cmd {
	ctx, loader := m.ctx, m.loader
	path, src, force := m.session.TargetPath, m.session.Element.Src, m.force
	cols, rows := m.imageCells()
	return func() tea.Msg {
		img, err := loader.Load(ctx, path, src, cols, rows, force)
		return previewLoadedMsg{path: path, image: img, err: err}
	}
}

// SetSize updates the overlay dimensions.
func (m *PreviewModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// Update handles a message and reports whether the overlay was closed.
func (m *PreviewModel) Update(msg tea.Msg) (bool, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "p", "P":
			return true, nil
		case "r":
			if m.session.Element.Kind == navigator.ElementImage && m.loader != nil && !m.loading {
				m.force = true
				m.image = nil
				return false, m.Init()
			}
		case "c":
			link := m.link()
			if err := utils.CopyToClipboard(link); err != nil {
				logrus.WithError(err).Warn("Copy to clipboard failed")
				m.note = "Copy failed: " + err.Error()
			} else {
				m.note = "Link copied to clipboard"
			}
		}

	case previewLoadedMsg:
		if msg.path != m.session.TargetPath {
			return false, nil
		}
		m.loading = false
		m.image = msg.image
		m.err = msg.err

	case spinner.TickMsg:
		if m.loading {
			var cmd tea.Cmd
			m.spin, cmd = m.spin.Update(msg)
			return false, cmd
		}
	}
	return false, nil
}

func (m *PreviewModel) link() string {
	if m.session.Element.Kind == navigator.ElementFallback {
		return m.session.Element.Href
	}
	return m.session.Element.Src
}

func (m *PreviewModel) icon() string {
	switch m.session.Element.Kind {
	case navigator.ElementImage:
		return "🖼"
	case navigator.ElementVideo:
		return "🎬"
	case navigator.ElementAudio:
		return "🎵"
	default:
		return "📄"
	}
}

func (m *PreviewModel) centered() lipgloss.Style {
	return lipgloss.NewStyle().Width(m.width).Align(lipgloss.Center)
}

// View renders the overlay.
func (m *PreviewModel) View() string {
	nameLine := m.centered().
		Bold(true).
		Foreground(lipgloss.Color(theme.ColorBrightCyan)).
		Render(m.icon() + " " + m.session.Name)

	var b strings.Builder
	b.WriteString(nameLine)
	b.WriteString("\n")

	switch m.session.Element.Kind {
	case navigator.ElementImage:
		m.viewImage(&b)
	case navigator.ElementVideo, navigator.ElementAudio:
		m.viewStream(&b)
	default:
		m.viewFallback(&b)
	}
	return b.String()
}

func (m *PreviewModel) statusLine(text string) string {
	return m.centered().Render(text)
}

func (m *PreviewModel) hintLine(text string) string {
	if m.note != "" {
		text = m.note + "  •  " + text
	}
	return m.centered().
		Foreground(lipgloss.Color(theme.ColorBrightBlack)).
		Render(text)
}

func (m *PreviewModel) viewImage(b *strings.Builder) {
	var status string
	switch {
	case m.loader == nil:
		status = theme.CreateErrorStyle().Render("Image preview is unavailable")
	case m.loading:
		status = fmt.Sprintf("%s Loading image preview…", m.spin.View())
	case m.err != nil:
		status = theme.CreateErrorStyle().Render(fmt.Sprintf("Failed to render: %v", m.err))
	case m.image != nil:
		status = fmt.Sprintf("%dx%d  •  %s", m.image.Width, m.image.Height, strings.ToUpper(m.image.Format))
		if m.size != nil {
			status += "  •  " + utils.FormatBytes(*m.size)
		}
	}
	b.WriteString(m.statusLine(status))
	b.WriteString("\n")
	b.WriteString(m.hintLine("q/esc/p close • r reload • c copy link"))
	b.WriteString("\n")

	if m.loading || m.err != nil || m.image == nil {
		return
	}

	source := "📡 Preview downloaded from server"
	switch {
	case m.image.CacheHit:
		source = "⚡ Preview served from cache"
	case m.force:
		source = "🔄 Preview refreshed from server"
	}
	b.WriteString(m.centered().Foreground(lipgloss.Color(theme.ColorBrightBlack)).Italic(true).Render(source))
	b.WriteString("\n")
	b.WriteString(m.centered().
		Foreground(lipgloss.Color(theme.ColorBrightBlue)).
		Bold(true).
		Render("─────────────────── 🖼 ───────────────────"))
	b.WriteString("\n")

	if m.loader.Renderer().Inline() {
		// Graphics protocols draw at the cursor, so place it explicitly
		// below the header lines, centered horizontally.
		cols, _ := m.imageCells()
		col := 1 + max(0, m.width-cols)/2
		row := tuiconfig.PreviewHeaderLines + 2
		fmt.Fprintf(b, "\x1b[%d;%dH%s\x1b[0m", row, col, m.image.Rendered)
		return
	}
	b.WriteString(lipgloss.PlaceHorizontal(m.width, lipgloss.Center, m.image.Rendered))
}

func (m *PreviewModel) viewStream(b *strings.Builder) {
	label := "Video stream"
	if m.session.Element.Kind == navigator.ElementAudio {
		label = "Audio stream"
	}
	b.WriteString(m.statusLine(label + " (playback controls in your media player)"))
	b.WriteString("\n")
	b.WriteString(m.hintLine("q/esc/p close • c copy link"))
	b.WriteString("\n\n")
	b.WriteString(m.centered().Render(theme.CreateURLSectionStyle().Render("🔗 Stream URL:")))
	b.WriteString("\n")
	b.WriteString(m.centered().Render(theme.FormatClickableURL(m.session.Element.Src, m.session.Element.Src)))
	b.WriteString("\n\n")
	b.WriteString(m.centered().
		Foreground(lipgloss.Color(theme.ColorBrightBlack)).
		Italic(true).
		Render("💡 Open the link with a player such as mpv or vlc"))
}

func (m *PreviewModel) viewFallback(b *strings.Builder) {
	b.WriteString(m.statusLine("No preview available for this file type"))
	b.WriteString("\n")
	b.WriteString(m.hintLine("q/esc/p close • c copy link"))
	b.WriteString("\n\n")
	b.WriteString(m.centered().Render(theme.CreateURLSectionStyle().Render("📥 Download:")))
	b.WriteString("\n")
	b.WriteString(m.centered().Render(theme.FormatClickableURL(m.session.Element.Href, m.session.Element.Href)))
}
