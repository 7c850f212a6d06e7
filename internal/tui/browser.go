package tui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sirupsen/logrus"

	"github.com/HaiFongPan/minas-cli/internal/config"
	"github.com/HaiFongPan/minas-cli/internal/filestore"
	"github.com/HaiFongPan/minas-cli/internal/media"
	"github.com/HaiFongPan/minas-cli/internal/navigator"
	tuiconfig "github.com/HaiFongPan/minas-cli/internal/tui/config"
	"github.com/HaiFongPan/minas-cli/internal/tui/messaging"
	"github.com/HaiFongPan/minas-cli/internal/tui/preview"
	"github.com/HaiFongPan/minas-cli/internal/tui/theme"
	"github.com/HaiFongPan/minas-cli/internal/utils"
)

const (
	opNavigate = "navigate"
	opRefresh  = "refresh"
	opMkdir    = "mkdir"
	opRename   = "rename"
	opDelete   = "delete"
	opUpload   = "upload"
	opDownload = "download"
)

// Options configures the browser.
type Options struct {
	Backend   filestore.Backend
	Config    *config.Config
	UserData  *config.UserData
	StartPath string
}

// transfer is the upload or download shown in the progress dialog.
type transfer struct {
	op         string
	name       string
	done       int64
	total      int64
	percentage float64
	progress   progress.Model
}

// BrowserModel is the bubbletea model of the file browser.
type BrowserModel struct {
	ctx    context.Context
	cancel context.CancelFunc

	backend    filestore.Backend
	cfg        *config.Config
	userData   *config.UserData
	ctrl       *navigator.Controller
	bridge     *Bridge
	downloader *utils.FileDownloader
	loader     *preview.Loader
	uploadOpts utils.UploadOptions
	startPath  string

	listing  navigator.Listing
	loaded   bool
	pending  int
	disabled map[navigator.Control]bool

	dialogs     []*dialog
	uploadOpen  bool
	uploadInput textinput.Model
	transfer    *transfer
	preview     *PreviewModel
	showHelp    bool

	fileTable      table.Model
	keyMap         KeyMap
	help           help.Model
	spinner        spinner.Model
	helpViewport   viewport.Model
	messageManager messaging.StatusManager

	windowWidth  int
	windowHeight int
	tableHeight  int
}

// NewBrowserModel creates the browser and its controller.
func NewBrowserModel(opts Options) (*BrowserModel, error) {
	if opts.Backend == nil || opts.Config == nil {
		return nil, fmt.Errorf("browser needs a backend and a config")
	}
	cfg := opts.Config

	bridge := NewBridge()
	ctrl := navigator.NewController(opts.Backend, navigator.NewState(), bridge, bridge)

	var downloader *utils.FileDownloader
	if dir, err := cfg.UI.ResolveDownloadDir(); err != nil {
		logrus.WithError(err).Warn("Downloads disabled")
	} else {
		downloader = utils.NewFileDownloader(opts.Backend, dir)
	}

	cache, err := preview.NewCache(cfg.Preview.ResolveCacheDir(), cfg.Preview.MaxCacheMB*1024*1024)
	if err != nil {
		logrus.WithError(err).Warn("Preview cache disabled")
		cache = nil
	}
	loader := preview.NewLoader(opts.Backend, cache, preview.NewRenderer(cfg.Preview.Protocol), cfg.Preview.MaxBytes)

	keyMap := DefaultKeyMap()
	t := table.New(
		table.WithColumns(columns(tuiconfig.MinColumnNameWidth)),
		table.WithHeight(tuiconfig.DefaultTableHeight),
		table.WithFocused(true),
		table.WithKeyMap(tableKeyMap(keyMap)),
		table.WithStyles(table.Styles{
			Header: lipgloss.NewStyle().
				BorderStyle(lipgloss.NormalBorder()).
				BorderForeground(lipgloss.Color(theme.ColorBrightCyan)).
				BorderBottom(true).
				Bold(true).
				Foreground(lipgloss.Color(theme.ColorBrightCyan)),
			Selected: lipgloss.NewStyle().
				Foreground(lipgloss.Color(theme.ColorWhite)).
				Background(lipgloss.Color(theme.ColorBrightBlue)).
				Bold(true),
			Cell: lipgloss.NewStyle().
				Foreground(lipgloss.Color(theme.ColorWhite)),
		}),
	)

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = theme.CreateLoadingStyle()

	h := help.New()
	h.ShowAll = false

	vp := viewport.New(60, 15)

	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "~/Pictures/photo.jpg"
	ti.Width = tuiconfig.DialogLargeWidth - 10
	if opts.UserData != nil && opts.UserData.LastUploadDir != "" {
		ti.SetValue(withTrailingSeparator(opts.UserData.LastUploadDir))
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &BrowserModel{
		ctx:            ctx,
		cancel:         cancel,
		backend:        opts.Backend,
		cfg:            cfg,
		userData:       opts.UserData,
		ctrl:           ctrl,
		bridge:         bridge,
		downloader:     downloader,
		loader:         loader,
		uploadOpts:     utils.OptionsFromConfig(&cfg.Upload),
		startPath:      opts.StartPath,
		disabled:       make(map[navigator.Control]bool),
		uploadInput:    ti,
		fileTable:      t,
		keyMap:         keyMap,
		help:           h,
		spinner:        s,
		helpViewport:   vp,
		messageManager: messaging.NewStatusManager(),
		windowWidth:    80,
		windowHeight:   24,
		tableHeight:    tuiconfig.DefaultTableHeight,
	}, nil
}

// Bridge returns the bridge the controller reports through.
func (m *BrowserModel) Bridge() *Bridge {
	return m.bridge
}

// Controller returns the navigation controller.
func (m *BrowserModel) Controller() *navigator.Controller {
	return m.ctrl
}

// Shutdown cancels in-flight work and answers open dialogs.
func (m *BrowserModel) Shutdown() {
	for _, d := range m.dialogs {
		d.cancel()
	}
	m.dialogs = nil
	m.bridge.Close()
	m.cancel()
}

// Init implements the bubbletea.Model interface
func (m *BrowserModel) Init() tea.Cmd {
	start := m.startPath
	return tea.Batch(
		m.spinner.Tick,
		m.run(opNavigate, func(ctx context.Context) error {
			err := m.ctrl.Navigate(ctx, start)
			if err != nil && start != "" {
				logrus.WithError(err).WithField("path", start).Warn("Saved path unavailable, starting at root")
				return m.ctrl.Navigate(ctx, "")
			}
			return err
		}),
		m.checkHealth(),
		statusTick(),
	)
}

func statusTick() tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg { return statusTickMsg{} })
}

func (m *BrowserModel) checkHealth() tea.Cmd {
	backend, ctx := m.backend, m.ctx
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return healthMsg{err: backend.Ping(ctx)}
	}
}

// run executes a controller call off the event loop.
func (m *BrowserModel) run(op string, fn func(ctx context.Context) error) tea.Cmd {
	m.pending++
	ctx := m.ctx
	return func() tea.Msg {
		return opDoneMsg{op: op, err: fn(ctx)}
	}
}

// Update implements the bubbletea.Model interface
func (m *BrowserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.windowWidth = msg.Width
		m.windowHeight = msg.Height
		m.tableHeight = max(3, msg.Height-tuiconfig.ChromeHeight)
		m.updateTableSize()
		m.helpViewport.Width = min(tuiconfig.DialogLargeWidth-4, msg.Width-10)
		m.helpViewport.Height = min(15, msg.Height-10)
		if m.preview != nil {
			m.preview.SetSize(msg.Width, msg.Height)
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case listingMsg:
		m.applyListing(msg.listing)
		return m, nil

	case controlStateMsg:
		if msg.disabled {
			m.disabled[msg.ctrl] = true
		} else {
			delete(m.disabled, msg.ctrl)
		}
		m.updateTable()
		return m, nil

	case clearInputMsg:
		if msg.ctrl.Action == navigator.ActionUpload {
			m.uploadInput.SetValue("")
		}
		return m, nil

	case confirmRequestMsg:
		m.dialogs = append(m.dialogs, newConfirmDialog(msg))
		return m, nil

	case promptRequestMsg:
		m.dialogs = append(m.dialogs, newPromptDialog(msg))
		return m, textinput.Blink

	case notifyMsg:
		m.dialogs = append(m.dialogs, newNotifyDialog(msg.text))
		return m, nil

	case opDoneMsg:
		m.pending = max(0, m.pending-1)
		if msg.op == opUpload {
			if m.transfer != nil && m.transfer.op == opUpload {
				m.transfer = nil
			}
			if msg.err == nil {
				m.messageManager.SetMessage("Upload complete", messaging.MessageSuccess)
			}
		}
		if msg.err != nil {
			logrus.WithError(msg.err).WithField("op", msg.op).Debug("Operation finished with error")
		}
		return m, nil

	case transferProgressMsg:
		if m.transfer == nil || m.transfer.op != msg.op {
			return m, nil
		}
		m.transfer.done = msg.done
		m.transfer.total = msg.total
		m.transfer.percentage = msg.percentage
		if msg.total > 0 {
			return m, m.transfer.progress.SetPercent(msg.percentage / 100)
		}
		return m, nil

	case downloadDoneMsg:
		m.pending = max(0, m.pending-1)
		m.transfer = nil
		if msg.err != nil {
			m.messageManager.SetMessage(msg.err.Error(), messaging.MessageError)
		} else {
			m.messageManager.SetMessage(fmt.Sprintf("Saved %s", msg.path), messaging.MessageSuccess)
		}
		return m, nil

	case healthMsg:
		if msg.err != nil {
			m.messageManager.SetMessage(fmt.Sprintf("Server unreachable: %v", msg.err), messaging.MessageWarning)
		}
		return m, nil

	case previewLoadedMsg:
		if m.preview != nil {
			_, cmd := m.preview.Update(msg)
			return m, cmd
		}
		return m, nil

	case statusTickMsg:
		m.messageManager.Expire(time.Now())
		return m, statusTick()

	case spinner.TickMsg:
		var cmds []tea.Cmd
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
		if m.preview != nil {
			_, cmd = m.preview.Update(msg)
			cmds = append(cmds, cmd)
		}
		return m, tea.Batch(cmds...)

	case progress.FrameMsg:
		if m.transfer != nil {
			pm, cmd := m.transfer.progress.Update(msg)
			if p, ok := pm.(progress.Model); ok {
				m.transfer.progress = p
			}
			return m, cmd
		}
		return m, nil
	}

	if m.uploadOpen {
		var cmd tea.Cmd
		m.uploadInput, cmd = m.uploadInput.Update(msg)
		return m, cmd
	}
	return m, nil
}

func newTransfer(op, name string) *transfer {
	return &transfer{
		op:       op,
		name:     name,
		total:    -1,
		progress: progress.New(progress.WithDefaultGradient()),
	}
}

func (m *BrowserModel) applyListing(l navigator.Listing) {
	moved := !m.loaded || l.Path != m.listing.Path
	m.listing = l
	m.loaded = true
	m.updateTable()
	if moved {
		m.fileTable.SetCursor(0)
	} else if c := m.fileTable.Cursor(); c >= len(l.Rows) && len(l.Rows) > 0 {
		m.fileTable.SetCursor(len(l.Rows) - 1)
	}

	if l.Err == "" && m.userData != nil {
		if err := m.userData.SetLastPath(m.backend.Name(), l.Path); err != nil {
			logrus.WithError(err).Debug("Failed to save last path")
		}
	}
}

// handleKey routes a key to the topmost layer: dialogs, preview, upload
// input, help, then the listing.
func (m *BrowserModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		m.Shutdown()
		return m, tea.Quit
	}

	if len(m.dialogs) > 0 {
		done, cmd := m.dialogs[0].handleKey(msg)
		if done {
			m.dialogs = m.dialogs[1:]
		}
		return m, cmd
	}

	if m.preview != nil {
		closed, cmd := m.preview.Update(msg)
		if closed {
			m.ctrl.Overlay().Close()
			m.preview = nil
			return m, tea.ClearScreen
		}
		return m, cmd
	}

	if m.uploadOpen {
		return m.handleUploadInput(msg)
	}

	if m.showHelp {
		switch {
		case key.Matches(msg, m.keyMap.Help), msg.String() == "esc", msg.String() == "q":
			m.showHelp = false
			return m, nil
		}
		var cmd tea.Cmd
		m.helpViewport, cmd = m.helpViewport.Update(msg)
		return m, cmd
	}

	if m.transfer != nil {
		return m, nil
	}

	return m.handleNavigation(msg)
}

func (m *BrowserModel) handleNavigation(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keyMap.Quit):
		m.Shutdown()
		return m, tea.Quit

	case key.Matches(msg, m.keyMap.Help):
		m.showHelp = true
		m.helpViewport.SetContent(m.help.FullHelpView(m.keyMap.FullHelp()))
		m.helpViewport.GotoTop()
		return m, nil

	case key.Matches(msg, m.keyMap.Refresh):
		return m, m.run(opRefresh, m.ctrl.Refresh)

	case key.Matches(msg, m.keyMap.Back):
		if !m.listing.CanGoUp {
			return m, nil
		}
		return m, m.run(opNavigate, m.ctrl.GoUp)

	case key.Matches(msg, m.keyMap.Open):
		row, ok := m.selectedRow()
		if !ok {
			return m, nil
		}
		if row.Has(navigator.ActionOpen) {
			return m, m.run(opNavigate, func(ctx context.Context) error {
				return m.ctrl.Open(ctx, row)
			})
		}
		return m, m.openPreview(row)

	case key.Matches(msg, m.keyMap.NewFolder):
		if m.blocked(navigator.Control{Action: navigator.ActionCreateFolder}) {
			return m, nil
		}
		return m, m.run(opMkdir, m.ctrl.CreateFolder)

	case key.Matches(msg, m.keyMap.Rename):
		row, ok := m.selectedRow()
		if !ok || m.blocked(navigator.Control{Action: navigator.ActionRename, Path: row.Path}) {
			return m, nil
		}
		return m, m.run(opRename, func(ctx context.Context) error {
			return m.ctrl.Rename(ctx, row)
		})

	case key.Matches(msg, m.keyMap.RenameCurrent):
		row, ok := m.currentRow()
		if !ok || m.blocked(navigator.Control{Action: navigator.ActionRename, Path: row.Path}) {
			return m, nil
		}
		return m, m.run(opRename, func(ctx context.Context) error {
			return m.ctrl.Rename(ctx, row)
		})

	case key.Matches(msg, m.keyMap.Delete):
		row, ok := m.selectedRow()
		if !ok || m.blocked(navigator.Control{Action: navigator.ActionDelete, Path: row.Path}) {
			return m, nil
		}
		return m, m.run(opDelete, func(ctx context.Context) error {
			return m.ctrl.Delete(ctx, row)
		})

	case key.Matches(msg, m.keyMap.DeleteCurrent):
		row, ok := m.currentRow()
		if !ok || m.blocked(navigator.Control{Action: navigator.ActionDelete, Path: row.Path}) {
			return m, nil
		}
		return m, m.run(opDelete, func(ctx context.Context) error {
			return m.ctrl.Delete(ctx, row)
		})

	case key.Matches(msg, m.keyMap.Upload):
		if m.blocked(navigator.Control{Action: navigator.ActionUpload}) {
			return m, nil
		}
		m.uploadOpen = true
		m.uploadInput.CursorEnd()
		return m, m.uploadInput.Focus()

	case key.Matches(msg, m.keyMap.Preview):
		row, ok := m.selectedRow()
		if !ok {
			return m, nil
		}
		return m, m.openPreview(row)

	case key.Matches(msg, m.keyMap.Download):
		row, ok := m.selectedRow()
		if !ok || !row.Has(navigator.ActionDownload) {
			return m, nil
		}
		return m, m.startDownload(row)

	case key.Matches(msg, m.keyMap.CopyURL):
		row, ok := m.selectedRow()
		if !ok || !row.Has(navigator.ActionDownload) {
			return m, nil
		}
		if err := utils.CopyToClipboard(row.Href(navigator.ActionDownload)); err != nil {
			m.messageManager.SetMessage(fmt.Sprintf("Copy failed: %v", err), messaging.MessageError)
		} else {
			m.messageManager.SetMessage("Download URL copied to clipboard", messaging.MessageSuccess)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.fileTable, cmd = m.fileTable.Update(msg)
	return m, cmd
}

// blocked reports whether ctrl is disabled and tells the user so.
func (m *BrowserModel) blocked(ctrl navigator.Control) bool {
	if !m.disabled[ctrl] {
		return false
	}
	m.messageManager.SetMessage(fmt.Sprintf("%s is already in progress", ctrl.Action), messaging.MessageWarning)
	return true
}

func (m *BrowserModel) selectedRow() (navigator.Row, bool) {
	if m.listing.Err != "" {
		return navigator.Row{}, false
	}
	c := m.fileTable.Cursor()
	if c < 0 || c >= len(m.listing.Rows) {
		return navigator.Row{}, false
	}
	return m.listing.Rows[c], true
}

func (m *BrowserModel) currentRow() (navigator.Row, bool) {
	row, ok := m.ctrl.CurrentRow()
	if !ok {
		m.messageManager.SetMessage("The root folder cannot be changed", messaging.MessageInfo)
	}
	return row, ok
}

func (m *BrowserModel) openPreview(row navigator.Row) tea.Cmd {
	session, ok := m.ctrl.Preview(row)
	if !ok {
		return nil
	}
	m.preview = NewPreviewModel(m.ctx, session, m.loader, row.Size, m.windowWidth, m.windowHeight)
	return tea.Batch(tea.ClearScreen, m.preview.Init())
}

func (m *BrowserModel) handleUploadInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.uploadOpen = false
		m.uploadInput.Blur()
		return m, nil
	case tea.KeyEnter:
		localPath := expandHome(strings.TrimSpace(m.uploadInput.Value()))
		if localPath == "" {
			return m, nil
		}
		m.uploadOpen = false
		m.uploadInput.Blur()
		return m, m.startUpload(localPath)
	}
	var cmd tea.Cmd
	m.uploadInput, cmd = m.uploadInput.Update(msg)
	return m, cmd
}

func (m *BrowserModel) startUpload(localPath string) tea.Cmd {
	if m.userData != nil {
		if err := m.userData.SetLastUploadDir(filepath.Dir(localPath)); err != nil {
			logrus.WithError(err).Debug("Failed to save upload directory")
		}
	}

	ctrl, bridge, opts := m.ctrl, m.bridge, m.uploadOpts
	m.transfer = newTransfer(opUpload, filepath.Base(localPath))
	return m.run(opUpload, func(ctx context.Context) error {
		src, err := utils.OpenUpload(localPath, opts)
		if err != nil {
			bridge.Notify(err.Error())
			return err
		}
		defer src.Close()

		body := utils.NewProgressReader(src.Reader(), src.Size, func(done, total int64, pct float64) {
			bridge.Progress(opUpload, src.Name, done, total, pct)
		})
		return ctrl.Upload(ctx, src.Name, body, src.Size)
	})
}

func (m *BrowserModel) startDownload(row navigator.Row) tea.Cmd {
	if m.downloader == nil {
		m.messageManager.SetMessage("No download directory available", messaging.MessageError)
		return nil
	}
	d, bridge, ctx := m.downloader, m.bridge, m.ctx
	url := m.ctrl.DownloadURL(row)
	name := row.Name

	m.pending++
	m.transfer = newTransfer(opDownload, name)
	return func() tea.Msg {
		path, err := d.Download(ctx, url, name, func(done, total int64, pct float64) {
			bridge.Progress(opDownload, name, done, total, pct)
		})
		return downloadDoneMsg{name: name, path: path, err: err}
	}
}

func expandHome(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	return p
}

func withTrailingSeparator(dir string) string {
	if strings.HasSuffix(dir, string(filepath.Separator)) {
		return dir
	}
	return dir + string(filepath.Separator)
}

func columns(nameWidth int) []table.Column {
	return []table.Column{
		{Title: "📄 NAME", Width: nameWidth},
		{Title: "📊 SIZE", Width: tuiconfig.DefaultColumnSizeWidth},
		{Title: "🏷️ TYPE", Width: tuiconfig.DefaultColumnTypeWidth},
	}
}

func (m *BrowserModel) leftPanelWidth() int {
	return int(float64(m.windowWidth)*tuiconfig.LeftPanelWidthRatio) - tuiconfig.PanelSeparatorWidth
}

// updateTableSize updates table dimensions and column widths
func (m *BrowserModel) updateTableSize() {
	nameWidth := m.leftPanelWidth() - 6 - tuiconfig.DefaultColumnSizeWidth - tuiconfig.DefaultColumnTypeWidth
	nameWidth = max(tuiconfig.MinColumnNameWidth, min(tuiconfig.MaxColumnNameWidth, nameWidth))
	m.fileTable.SetColumns(columns(nameWidth))
	m.fileTable.SetHeight(m.tableHeight)
}

// busy reports whether any control of the row is disabled.
func (m *BrowserModel) busy(row navigator.Row) bool {
	for ctrl := range m.disabled {
		if ctrl.Path == row.Path {
			return true
		}
	}
	return false
}

// updateTable updates table data from the listing rows
func (m *BrowserModel) updateTable() {
	rows := make([]table.Row, len(m.listing.Rows))
	for i, r := range m.listing.Rows {
		name := r.Name
		if r.IsDir {
			name += "/"
		}
		icon := media.Icon(r.Name, r.IsDir)
		var cell string
		if m.busy(r) {
			cell = "⏳ " + theme.CreateDisabledStyle().Render(name)
		} else {
			cell = icon + " " + lipgloss.NewStyle().
				Foreground(lipgloss.Color(theme.EntryColor(r.Kind, r.IsDir))).
				Render(name)
		}

		size := ""
		if !r.IsDir && r.Size != nil && m.cfg.UI.ShowSize {
			size = utils.FormatBytes(*r.Size)
		}

		kind := "DIR"
		if !r.IsDir {
			kind = strings.ToUpper(r.Kind.String())
		}
		rows[i] = table.Row{cell, size, kind}
	}
	m.fileTable.SetRows(rows)
}

// View implements the bubbletea.Model interface
func (m *BrowserModel) View() string {
	if m.preview != nil {
		return m.preview.View()
	}

	header := theme.CreateHeaderStyle().Render(fmt.Sprintf("Mini NAS • %s", m.backend.Name()))
	crumb := theme.CreateBreadcrumbStyle().Render("📂 " + m.breadcrumb())
	headerLine := header + "  " + crumb
	if m.pending > 0 {
		headerLine += "  " + m.spinner.View()
	}

	if !m.loaded {
		return headerLine + "\n\n" + theme.CreateLoadingStyle().Render(fmt.Sprintf("%s Loading folder...", m.spinner.View()))
	}

	leftWidth := m.leftPanelWidth()
	rightWidth := m.windowWidth - leftWidth - tuiconfig.PanelSeparatorWidth

	content := lipgloss.JoinHorizontal(
		lipgloss.Top,
		m.renderLeftPanel(leftWidth),
		lipgloss.NewStyle().Width(tuiconfig.PanelSeparatorWidth).Render("  "),
		m.renderRightPanel(rightWidth),
	)

	status := m.messageManager.RenderMessage()
	footer := theme.CreateFooterStyle().Render(m.help.ShortHelpView(m.keyMap.ShortHelp()))
	baseView := headerLine + "\n\n" + content + "\n" + status + "\n" + footer

	switch {
	case len(m.dialogs) > 0:
		return m.renderFloatingDialog(baseView, m.dialogs[0].View())
	case m.uploadOpen:
		return m.renderFloatingDialog(baseView, m.renderUploadDialog())
	case m.transfer != nil:
		return m.renderFloatingDialog(baseView, m.renderTransferProgress())
	case m.showHelp:
		return m.renderFloatingDialog(baseView, m.renderHelpDialog())
	}
	return baseView
}

func (m *BrowserModel) breadcrumb() string {
	if m.listing.Breadcrumb != "" {
		return m.listing.Breadcrumb
	}
	return "/"
}

// renderLeftPanel renders the listing table, the empty state or the error.
func (m *BrowserModel) renderLeftPanel(width int) string {
	box := lipgloss.NewStyle().
		Width(width).
		Height(m.tableHeight).
		Align(lipgloss.Center).
		AlignVertical(lipgloss.Center)

	if m.listing.Err != "" {
		msg := theme.CreateErrorStyle().Render(m.listing.Err)
		hint := theme.CreateSecondaryTextStyle().Render("backspace to go up • f5 to retry")
		return box.Render(msg + "\n\n" + hint)
	}
	if len(m.listing.Rows) == 0 {
		return box.Foreground(lipgloss.Color(theme.ColorBrightBlack)).Render("This folder is empty")
	}

	var dirs, files int
	for _, r := range m.listing.Rows {
		if r.IsDir {
			dirs++
		} else {
			files++
		}
	}
	count := theme.CreateFooterStyle().Render(fmt.Sprintf("%d folders, %d files", dirs, files))
	return m.fileTable.View() + "\n" + count
}

// renderRightPanel renders details of the selected entry.
func (m *BrowserModel) renderRightPanel(width int) string {
	var b strings.Builder
	b.WriteString(theme.CreateSectionHeaderStyle().Render("Details"))
	b.WriteString("\n")

	row, ok := m.selectedRow()
	if !ok {
		b.WriteString(theme.CreateSecondaryTextStyle().Render("Select an entry to view details"))
		return theme.CreateInfoPanelStyle(width).Render(b.String())
	}

	info := theme.CreateInfoTextStyle()
	b.WriteString(info.Render(fmt.Sprintf("%s Name: %s", media.Icon(row.Name, row.IsDir), row.Name)))
	b.WriteString("\n")
	b.WriteString(info.Render(fmt.Sprintf("📍 Path: /%s", row.Path)))
	b.WriteString("\n")
	if row.IsDir {
		b.WriteString(info.Render("🏷️ Type: folder"))
		b.WriteString("\n")
	} else {
		b.WriteString(info.Render(fmt.Sprintf("🏷️ Type: %s", row.Kind)))
		b.WriteString("\n")
		if row.Size != nil {
			b.WriteString(info.Render(fmt.Sprintf("📊 Size: %s", utils.FormatBytes(*row.Size))))
			b.WriteString("\n")
		}
	}

	actions := make([]string, 0, len(row.Actions))
	for _, a := range row.Actions {
		actions = append(actions, a.Action.String())
	}
	b.WriteString(theme.CreateSecondaryTextStyle().Render("Actions: " + strings.Join(actions, " • ")))
	b.WriteString("\n\n")

	if href := row.Href(navigator.ActionDownload); href != "" {
		b.WriteString(theme.CreateURLSectionStyle().Render("🔗 Download URL:"))
		b.WriteString("\n")
		b.WriteString(theme.FormatClickableURL(truncate(href, width-4), href))
		b.WriteString("\n")
		b.WriteString(theme.CreateSecondaryTextStyle().Render("💡 Click to open • c to copy"))
		b.WriteString("\n")
	}

	if m.busy(row) {
		b.WriteString("\n")
		b.WriteString(theme.CreateLoadingStyle().Render(m.spinner.View() + " Working..."))
	}
	return theme.CreateInfoPanelStyle(width).Render(b.String())
}

func truncate(s string, width int) string {
	if width < 4 || len(s) <= width {
		return s
	}
	return s[:width-1] + "…"
}

// renderFloatingDialog renders a dialog centered over the window
func (m *BrowserModel) renderFloatingDialog(_, dialog string) string {
	return lipgloss.Place(
		m.windowWidth,
		m.windowHeight,
		lipgloss.Center,
		lipgloss.Center,
		dialog,
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceForeground(lipgloss.Color("#222222")),
	)
}

func (m *BrowserModel) renderUploadDialog() string {
	var b strings.Builder
	b.WriteString(theme.CreateDialogTitleStyle(theme.ColorBrightGreen).Render("📤 Upload File"))
	b.WriteString("\n")
	b.WriteString(theme.CreatePromptStyle().Render(fmt.Sprintf("Local file to upload into %s:", m.breadcrumb())))
	b.WriteString("\n\n")
	b.WriteString(m.uploadInput.View())
	b.WriteString("\n\n")
	if m.uploadOpts.Compress != "" {
		b.WriteString(theme.CreateSecondaryTextStyle().Render(fmt.Sprintf("JPEG/PNG images are compressed (%s)", m.uploadOpts.Compress)))
		b.WriteString("\n")
	}
	b.WriteString(theme.CreateSecondaryTextStyle().Render("enter upload • esc cancel"))
	return theme.CreateDialogStyle(tuiconfig.DialogLargeWidth, theme.ColorBrightGreen).Render(b.String())
}

// renderTransferProgress renders the upload/download progress dialog
func (m *BrowserModel) renderTransferProgress() string {
	t := m.transfer
	title := "📥 Downloading File"
	if t.op == opUpload {
		title = "📤 Uploading File"
	}

	var b strings.Builder
	b.WriteString(theme.CreateDialogTitleStyle(theme.ColorBrightCyan).Render(title))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("File: %s", t.name))
	b.WriteString("\n\n")
	if t.total > 0 {
		b.WriteString(t.progress.View())
		b.WriteString("\n")
		b.WriteString(theme.CreateSecondaryTextStyle().Render(fmt.Sprintf("%s / %s", utils.FormatBytes(t.done), utils.FormatBytes(t.total))))
	} else {
		b.WriteString(fmt.Sprintf("%s %s transferred", m.spinner.View(), utils.FormatBytes(t.done)))
	}
	return theme.CreateDialogStyle(tuiconfig.DialogDefaultWidth, theme.ColorBrightCyan).Render(b.String())
}

// renderHelpDialog renders the help dialog using bubbles components
func (m *BrowserModel) renderHelpDialog() string {
	title := theme.CreateDialogTitleStyle(theme.ColorBrightYellow).Render("🚀 Mini NAS - Help")
	instructions := theme.CreateSecondaryTextStyle().Render("Press ? or esc to close help • Use ↑↓ to scroll")
	content := lipgloss.JoinVertical(lipgloss.Left, title, m.helpViewport.View(), instructions)
	return theme.CreateDialogStyle(min(tuiconfig.DialogLargeWidth, m.windowWidth-10), theme.ColorBrightYellow).Render(content)
}
