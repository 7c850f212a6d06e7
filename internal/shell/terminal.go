package shell

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/sirupsen/logrus"

	"github.com/HaiFongPan/minas-cli/internal/navigator"
	"github.com/HaiFongPan/minas-cli/internal/utils"
)

// terminalUI implements navigator.Dialogs and navigator.View on a line
// terminal. Answers queued with preset are consumed before asking the user,
// which lets commands like "mkdir docs" reuse the prompting controller.
type terminalUI struct {
	lines  LineReader
	out    io.Writer
	preset []string
	log    *logrus.Entry
}

func newTerminalUI(lines LineReader, out io.Writer) *terminalUI {
	return &terminalUI{
		lines: lines,
		out:   out,
		log:   logrus.WithField("component", "shell"),
	}
}

// answer queues a reply for the next dialog.
func (u *terminalUI) answer(reply string) {
	u.preset = append(u.preset, reply)
}

func (u *terminalUI) reset() {
	u.preset = nil
}

func (u *terminalUI) next() (string, bool) {
	if len(u.preset) == 0 {
		return "", false
	}
	reply := u.preset[0]
	u.preset = u.preset[1:]
	return reply, true
}

// Confirm implements navigator.Dialogs.
func (u *terminalUI) Confirm(msg string) bool {
	reply, ok := u.next()
	if !ok {
		line, err := u.lines.ReadLine(msg + " [y/N] ")
		if err != nil {
			fmt.Fprintln(u.out)
			return false
		}
		reply = line
	}
	switch strings.ToLower(strings.TrimSpace(reply)) {
	case "y", "yes":
		return true
	}
	return false
}

// PromptText implements navigator.Dialogs. An empty answer keeps def.
func (u *terminalUI) PromptText(msg, def string) (string, bool) {
	if reply, ok := u.next(); ok {
		return reply, true
	}
	prompt := msg + " "
	if def != "" {
		prompt = fmt.Sprintf("%s [%s] ", msg, def)
	}
	line, err := u.lines.ReadLine(prompt)
	if err != nil {
		fmt.Fprintln(u.out)
		return "", false
	}
	if line == "" {
		return def, true
	}
	return line, true
}

// Notify implements navigator.Dialogs.
func (u *terminalUI) Notify(msg string) {
	fmt.Fprintf(u.out, "! %s\n", strings.TrimRight(msg, "\n"))
}

// Render implements navigator.View.
func (u *terminalUI) Render(listing navigator.Listing) {
	if listing.Err != "" {
		fmt.Fprintf(u.out, "%s: %s\n", listing.Breadcrumb, strings.TrimRight(listing.Err, "\n"))
		return
	}
	fmt.Fprintln(u.out, listing.Breadcrumb)
	writeRows(u.out, listing.Rows)
}

// SetDisabled implements navigator.View. Commands run one at a time, so
// there is nothing to disable.
func (u *terminalUI) SetDisabled(ctrl navigator.Control, disabled bool) {
	u.log.WithFields(logrus.Fields{"action": ctrl.Action, "path": ctrl.Path, "disabled": disabled}).Debug("Control state")
}

// ClearInput implements navigator.View.
func (u *terminalUI) ClearInput(navigator.Control) {}

func writeRows(out io.Writer, rows []navigator.Row) {
	if len(rows) == 0 {
		fmt.Fprintln(out, "  (empty)")
		return
	}
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, r := range rows {
		if r.IsDir {
			fmt.Fprintf(w, "  DIR\t-\t%s/\n", r.Name)
			continue
		}
		size := "-"
		if r.Size != nil {
			size = utils.FormatBytes(*r.Size)
		}
		fmt.Fprintf(w, "  %s\t%s\t%s\n", strings.ToUpper(r.Kind.String()), size, r.Name)
	}
	w.Flush()
}
