// Package shell is a line-oriented REPL over the navigation controller, for
// terminals where the full-screen browser is unwanted or unavailable.
package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/HaiFongPan/minas-cli/internal/config"
	"github.com/HaiFongPan/minas-cli/internal/filestore"
	"github.com/HaiFongPan/minas-cli/internal/navigator"
	"github.com/HaiFongPan/minas-cli/internal/tui/preview"
	"github.com/HaiFongPan/minas-cli/internal/utils"
)

var errExit = errors.New("exit")

// Options configures a shell.
type Options struct {
	Backend   filestore.Backend
	Config    *config.Config
	Lines     LineReader
	Out       io.Writer
	StartPath string
	// Quiet disables progress bars.
	Quiet bool
	// Size reports the terminal size in cells for image previews.
	Size func() (cols, rows int)
}

type command struct {
	usage string
	help  string
	run   func(ctx context.Context, args []string) error
}

// Shell reads commands and runs them against the remote store.
type Shell struct {
	backend    filestore.Backend
	cfg        *config.Config
	ctrl       *navigator.Controller
	ui         *terminalUI
	lines      LineReader
	out        io.Writer
	downloader *utils.FileDownloader
	loader     *preview.Loader
	uploadOpts utils.UploadOptions
	quiet      bool
	size       func() (int, int)
	start      string
	commands   map[string]command
	log        *logrus.Entry
}

// New creates a shell.
func New(opts Options) (*Shell, error) {
	if opts.Backend == nil || opts.Config == nil || opts.Lines == nil || opts.Out == nil {
		return nil, fmt.Errorf("shell needs a backend, a config and terminal streams")
	}
	cfg := opts.Config
	ui := newTerminalUI(opts.Lines, opts.Out)

	s := &Shell{
		backend:    opts.Backend,
		cfg:        cfg,
		ctrl:       navigator.NewController(opts.Backend, navigator.NewState(), ui, ui),
		ui:         ui,
		lines:      opts.Lines,
		out:        opts.Out,
		uploadOpts: utils.OptionsFromConfig(&cfg.Upload),
		quiet:      opts.Quiet,
		size:       opts.Size,
		start:      opts.StartPath,
		log:        logrus.WithField("component", "shell"),
	}
	if s.size == nil {
		s.size = func() (int, int) { return 80, 24 }
	}

	if dir, err := cfg.UI.ResolveDownloadDir(); err != nil {
		s.log.WithError(err).Warn("Downloads disabled")
	} else {
		s.downloader = utils.NewFileDownloader(opts.Backend, dir)
	}

	var cache *preview.Cache
	if c, err := preview.NewCache(cfg.Preview.ResolveCacheDir(), cfg.Preview.MaxCacheMB*1024*1024); err != nil {
		s.log.WithError(err).Warn("Preview cache disabled")
	} else {
		cache = c
	}
	s.loader = preview.NewLoader(opts.Backend, cache, preview.NewRenderer(cfg.Preview.Protocol), cfg.Preview.MaxBytes)

	s.commands = map[string]command{
		"ls":      {"ls [path]", "list the current folder or path", s.cmdList},
		"cd":      {"cd <path>", "change folder; supports .., / and relative paths", s.cmdCd},
		"up":      {"up", "go to the parent folder", s.cmdUp},
		"pwd":     {"pwd", "print the current folder", s.cmdPwd},
		"mkdir":   {"mkdir [name]", "create a folder", s.cmdMkdir},
		"rename":  {"rename <name> [new-name]", "rename a file or folder; '.' is the current folder", s.cmdRename},
		"rm":      {"rm [-f] <name>", "delete a file or folder; '.' is the current folder", s.cmdRemove},
		"put":     {"put <local-file>", "upload a local file into the current folder", s.cmdPut},
		"get":     {"get <name>", "download a file to the download directory", s.cmdGet},
		"preview": {"preview <name>", "preview a file in the terminal", s.cmdPreview},
		"url":     {"url <name>", "print the download and stream URLs", s.cmdURL},
		"help":    {"help", "show this help", s.cmdHelp},
		"exit":    {"exit", "leave the shell", func(context.Context, []string) error { return errExit }},
	}
	s.commands["quit"] = s.commands["exit"]
	return s, nil
}

// Controller returns the controller driving the shell.
func (s *Shell) Controller() *navigator.Controller {
	return s.ctrl
}

// Run lists the start folder and then reads commands until exit or end of
// input.
func (s *Shell) Run(ctx context.Context) error {
	if err := s.ctrl.Navigate(ctx, s.start); err != nil && s.start != "" {
		s.ctrl.Navigate(ctx, "")
	}
	for {
		line, err := s.lines.ReadLine(s.prompt())
		if err == io.EOF {
			fmt.Fprintln(s.out)
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read command: %w", err)
		}
		if err := s.Exec(ctx, line); err != nil {
			if errors.Is(err, errExit) {
				return nil
			}
			fmt.Fprintf(s.out, "error: %v\n", err)
		}
	}
}

func (s *Shell) prompt() string {
	return fmt.Sprintf("minas:%s> ", s.ctrl.State().Breadcrumb())
}

// Exec runs one command line. Failures of remote operations are reported
// by the controller itself and are not returned.
func (s *Shell) Exec(ctx context.Context, line string) error {
	args, err := splitArgs(strings.TrimSpace(line))
	if err != nil {
		return err
	}
	if len(args) == 0 {
		return nil
	}
	cmd, ok := s.commands[args[0]]
	if !ok {
		return fmt.Errorf("unknown command %q (try help)", args[0])
	}
	s.ui.reset()
	s.log.WithField("command", args[0]).Debug("Running shell command")
	return cmd.run(ctx, args[1:])
}

// resolve turns a typed path into a store path relative to cur.
func resolve(cur, arg string) string {
	var parts []string
	if !strings.HasPrefix(arg, "/") && cur != "" {
		parts = strings.Split(cur, "/")
	}
	for _, seg := range strings.Split(arg, "/") {
		switch seg {
		case "", ".":
		case "..":
			if len(parts) > 0 {
				parts = parts[:len(parts)-1]
			}
		default:
			parts = append(parts, seg)
		}
	}
	return strings.Join(parts, "/")
}

// row finds a row of the current listing by name; "." is the current
// folder.
func (s *Shell) row(name string) (navigator.Row, error) {
	if name == "." {
		row, ok := s.ctrl.CurrentRow()
		if !ok {
			return navigator.Row{}, fmt.Errorf("the root folder cannot be changed")
		}
		return row, nil
	}
	row, ok := s.ctrl.Lookup(name)
	if !ok {
		return navigator.Row{}, fmt.Errorf("no such entry: %s", name)
	}
	return row, nil
}

func (s *Shell) fileRow(name string) (navigator.Row, error) {
	row, err := s.row(name)
	if err != nil {
		return row, err
	}
	if row.IsDir {
		return row, fmt.Errorf("%s is a folder", name)
	}
	return row, nil
}

func needArgs(args []string, n int, usage string) error {
	if len(args) < n {
		return fmt.Errorf("usage: %s", usage)
	}
	return nil
}

func (s *Shell) cmdList(ctx context.Context, args []string) error {
	if len(args) == 0 {
		s.ctrl.Refresh(ctx)
		return nil
	}
	path := resolve(s.ctrl.State().Current(), args[0])
	entries, err := s.backend.List(ctx, path)
	if err != nil {
		s.ui.Notify(err.Error())
		return nil
	}
	fmt.Fprintln(s.out, "/"+path)
	writeRows(s.out, navigator.BuildRows(path, entries, s.backend))
	return nil
}

func (s *Shell) cmdCd(ctx context.Context, args []string) error {
	if len(args) == 0 {
		s.ctrl.Navigate(ctx, "")
		return nil
	}
	s.ctrl.Navigate(ctx, resolve(s.ctrl.State().Current(), args[0]))
	return nil
}

func (s *Shell) cmdUp(ctx context.Context, _ []string) error {
	if !s.ctrl.State().CanGoUp() {
		fmt.Fprintln(s.out, "already at /")
		return nil
	}
	s.ctrl.GoUp(ctx)
	return nil
}

func (s *Shell) cmdPwd(context.Context, []string) error {
	fmt.Fprintln(s.out, s.ctrl.State().Breadcrumb())
	return nil
}

func (s *Shell) cmdMkdir(ctx context.Context, args []string) error {
	if len(args) > 0 {
		s.ui.answer(strings.Join(args, " "))
	}
	s.ctrl.CreateFolder(ctx)
	return nil
}

func (s *Shell) cmdRename(ctx context.Context, args []string) error {
	if err := needArgs(args, 1, s.commands["rename"].usage); err != nil {
		return err
	}
	row, err := s.row(args[0])
	if err != nil {
		return err
	}
	if len(args) > 1 {
		s.ui.answer(strings.Join(args[1:], " "))
	}
	s.ctrl.Rename(ctx, row)
	return nil
}

func (s *Shell) cmdRemove(ctx context.Context, args []string) error {
	force := false
	if len(args) > 0 && args[0] == "-f" {
		force = true
		args = args[1:]
	}
	if err := needArgs(args, 1, s.commands["rm"].usage); err != nil {
		return err
	}
	row, err := s.row(args[0])
	if err != nil {
		return err
	}
	if force {
		s.ui.answer("y")
	}
	s.ctrl.Delete(ctx, row)
	return nil
}

func (s *Shell) cmdPut(ctx context.Context, args []string) error {
	if err := needArgs(args, 1, s.commands["put"].usage); err != nil {
		return err
	}
	src, err := utils.OpenUpload(args[0], s.uploadOpts)
	if err != nil {
		s.ui.Notify(err.Error())
		return nil
	}
	defer src.Close()

	var body io.Reader = src.Reader()
	if utils.ShowProgress(src.Size, s.cfg.Upload.ProgressThreshold, s.quiet) {
		bar := utils.NewCLIProgress(src.Size, "Uploading "+src.Name)
		defer bar.Finish()
		body = bar.Wrap(body)
	}
	if s.ctrl.Upload(ctx, src.Name, body, src.Size) == nil {
		fmt.Fprintf(s.out, "uploaded %s (%s)\n", src.Name, utils.FormatBytes(src.Size))
	}
	return nil
}

func (s *Shell) cmdGet(ctx context.Context, args []string) error {
	if err := needArgs(args, 1, s.commands["get"].usage); err != nil {
		return err
	}
	if s.downloader == nil {
		return fmt.Errorf("no download directory available")
	}
	row, err := s.fileRow(args[0])
	if err != nil {
		return err
	}

	var callback utils.ProgressCallback
	size := int64(-1)
	if row.Size != nil {
		size = *row.Size
	}
	if utils.ShowProgress(size, s.cfg.Upload.ProgressThreshold, s.quiet) {
		bar := utils.NewCLIProgress(size, "Downloading "+row.Name)
		defer bar.Finish()
		callback = bar.Callback()
	}

	path, err := s.downloader.Download(ctx, s.ctrl.DownloadURL(row), row.Name, callback)
	if err != nil {
		s.ui.Notify(err.Error())
		return nil
	}
	fmt.Fprintf(s.out, "saved %s\n", path)
	return nil
}

func (s *Shell) cmdPreview(ctx context.Context, args []string) error {
	if err := needArgs(args, 1, s.commands["preview"].usage); err != nil {
		return err
	}
	row, err := s.fileRow(args[0])
	if err != nil {
		return err
	}
	session, ok := s.ctrl.Preview(row)
	if !ok {
		return nil
	}
	defer s.ctrl.Overlay().Close()

	el := session.Element
	switch el.Kind {
	case navigator.ElementImage:
		cols, rows := s.size()
		img, err := s.loader.Load(ctx, session.TargetPath, el.Src, max(1, cols-2), max(1, rows-4), false)
		if err != nil {
			s.ui.Notify(err.Error())
			return nil
		}
		fmt.Fprintf(s.out, "%s  %dx%d %s\n", session.Name, img.Width, img.Height, strings.ToUpper(img.Format))
		fmt.Fprintln(s.out, img.Rendered)
	case navigator.ElementVideo, navigator.ElementAudio:
		fmt.Fprintf(s.out, "%s (%s) stream: %s\n", session.Name, session.Kind, el.Src)
	default:
		fmt.Fprintf(s.out, "no preview for %s, download: %s\n", session.Name, el.Href)
	}
	return nil
}

func (s *Shell) cmdURL(_ context.Context, args []string) error {
	if err := needArgs(args, 1, s.commands["url"].usage); err != nil {
		return err
	}
	row, err := s.fileRow(args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "download: %s\n", s.ctrl.DownloadURL(row))
	fmt.Fprintf(s.out, "stream:   %s\n", s.backend.StreamURL(row.Path))
	return nil
}

func (s *Shell) cmdHelp(context.Context, []string) error {
	names := make([]string, 0, len(s.commands))
	for name := range s.commands {
		if name != "quit" {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	for _, name := range names {
		c := s.commands[name]
		fmt.Fprintf(s.out, "  %-26s %s\n", c.usage, c.help)
	}
	return nil
}
