package navigator

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/HaiFongPan/minas-cli/internal/filestore"
	"github.com/HaiFongPan/minas-cli/internal/vpath"
)

// Dialogs are the blocking interactions the controller needs from the user.
type Dialogs interface {
	Confirm(msg string) bool
	// PromptText asks for a line of text; ok is false when the user cancels.
	PromptText(msg, def string) (text string, ok bool)
	Notify(msg string)
}

// View is the render target of the controller.
type View interface {
	Render(listing Listing)
	SetDisabled(ctrl Control, disabled bool)
	// ClearInput resets an input control, e.g. the upload file picker.
	ClearInput(ctrl Control)
}

// Controller drives navigation and mutations. Every successful mutation is
// followed by a fresh listing from the server rather than a local patch.
//
// Methods may be called from several goroutines; overlapping mutations are
// not coordinated and the last listing to arrive is the one displayed.
type Controller struct {
	store   filestore.Store
	state   *State
	dialogs Dialogs
	view    View
	log     *logrus.Entry

	overlayOnce sync.Once
	overlay     *Overlay

	mu   sync.Mutex
	rows []Row
}

// NewController wires the collaborators together.
func NewController(store filestore.Store, state *State, dialogs Dialogs, view View) *Controller {
	return &Controller{
		store:   store,
		state:   state,
		dialogs: dialogs,
		view:    view,
		log:     logrus.WithField("component", "navigator"),
	}
}

// State returns the navigation state.
func (c *Controller) State() *State {
	return c.state
}

// Overlay returns the preview overlay, creating it on first use.
func (c *Controller) Overlay() *Overlay {
	c.overlayOnce.Do(func() {
		c.overlay = NewOverlay(c.store)
	})
	return c.overlay
}

// Rows returns the rows of the last successful listing.
func (c *Controller) Rows() []Row {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Row(nil), c.rows...)
}

// Lookup finds a row of the last listing by name.
func (c *Controller) Lookup(name string) (Row, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, r := range c.rows {
		if r.Name == name {
			return r, true
		}
	}
	return Row{}, false
}

// Navigate moves to path and fetches its listing.
func (c *Controller) Navigate(ctx context.Context, path string) error {
	c.log.WithField("path", path).Debug("Navigating")
	c.state.Navigate(path)
	return c.Refresh(ctx)
}

// Refresh fetches and renders the current directory. On failure the view
// gets the error text and no rows.
func (c *Controller) Refresh(ctx context.Context) error {
	path := c.state.Current()
	listing := Listing{
		Path:       path,
		Breadcrumb: "/" + path,
		CanGoUp:    path != "",
	}

	entries, err := c.store.List(ctx, path)
	if err != nil {
		c.log.WithError(err).WithField("path", path).Warn("Listing failed")
		listing.Err = err.Error()
		c.setRows(nil)
		c.view.Render(listing)
		return err
	}

	listing.Rows = BuildRows(path, entries, c.store)
	c.setRows(listing.Rows)
	c.view.Render(listing)
	return nil
}

func (c *Controller) setRows(rows []Row) {
	c.mu.Lock()
	c.rows = rows
	c.mu.Unlock()
}

// GoUp navigates to the parent directory when there is one.
func (c *Controller) GoUp(ctx context.Context) error {
	if !c.state.CanGoUp() {
		return nil
	}
	return c.Navigate(ctx, c.state.Parent())
}

// Open enters a directory row.
func (c *Controller) Open(ctx context.Context, row Row) error {
	if !row.IsDir {
		return nil
	}
	return c.Navigate(ctx, vpath.Child(c.state.Current(), row.Name))
}

// CurrentRow describes the directory being viewed as a row, for renaming or
// deleting the folder the user stands in.
func (c *Controller) CurrentRow() (Row, bool) {
	cur := c.state.Current()
	if cur == "" {
		return Row{}, false
	}
	return Row{Name: vpath.Base(cur), Path: cur, IsDir: true}, true
}

// Rename prompts for a new leaf name and renames row. Renaming the folder
// being viewed moves the view to the renamed folder.
func (c *Controller) Rename(ctx context.Context, row Row) error {
	oldName := vpath.Base(row.Path)
	input, ok := c.dialogs.PromptText(fmt.Sprintf("New name for %q:", oldName), oldName)
	if !ok {
		return nil
	}
	name := strings.TrimSpace(input)
	if name == "" || name == oldName {
		return nil
	}
	if err := vpath.ValidName(name); err != nil {
		c.dialogs.Notify("Name cannot contain '/'.")
		return err
	}

	return c.mutate(Control{Action: ActionRename, Path: row.Path}, "rename", row.Path,
		func() error {
			return c.store.Rename(ctx, row.Path, name)
		},
		func() {
			if row.IsDir && row.Path == c.state.Current() {
				parent := vpath.Parent(row.Path)
				c.Navigate(ctx, parent)
				c.Navigate(ctx, vpath.Child(parent, name))
				return
			}
			c.Refresh(ctx)
		})
}

// Delete asks for confirmation and removes row. Folders are removed with
// all their content; deleting the folder being viewed moves to its parent.
func (c *Controller) Delete(ctx context.Context, row Row) error {
	if row.IsDir {
		if !c.dialogs.Confirm(fmt.Sprintf("Delete folder %s? This will remove all of its content.", row.Path)) {
			return nil
		}
		return c.mutate(Control{Action: ActionDelete, Path: row.Path}, "delete-dir", row.Path,
			func() error {
				return c.store.DeleteDir(ctx, row.Path)
			},
			func() {
				cur := c.state.Current()
				if cur == row.Path || strings.HasPrefix(cur, row.Path+vpath.Separator) {
					c.Navigate(ctx, vpath.Parent(row.Path))
					return
				}
				c.Refresh(ctx)
			})
	}

	if !c.dialogs.Confirm(fmt.Sprintf("Delete %s?", row.Path)) {
		return nil
	}
	return c.mutate(Control{Action: ActionDelete, Path: row.Path}, "delete", row.Path,
		func() error {
			return c.store.Delete(ctx, row.Path)
		},
		func() {
			c.Refresh(ctx)
		})
}

// Upload sends r as name into the current directory. The upload input is
// cleared on success so the same file can be picked again.
func (c *Controller) Upload(ctx context.Context, name string, r io.Reader, size int64) error {
	dir := c.state.Current()
	ctrl := Control{Action: ActionUpload}
	return c.mutate(ctrl, "upload", vpath.Child(dir, name),
		func() error {
			return c.store.Upload(ctx, dir, name, r, size)
		},
		func() {
			c.view.ClearInput(ctrl)
			c.Refresh(ctx)
		})
}

// CreateFolder prompts for a name and creates it in the current directory.
func (c *Controller) CreateFolder(ctx context.Context) error {
	input, ok := c.dialogs.PromptText("New folder name:", "")
	if !ok {
		return nil
	}
	name := strings.TrimSpace(input)
	if name == "" {
		return nil
	}
	if err := vpath.ValidName(name); err != nil {
		c.dialogs.Notify("Name cannot contain '/'.")
		return err
	}

	dir := c.state.Current()
	return c.mutate(Control{Action: ActionCreateFolder}, "mkdir", vpath.Child(dir, name),
		func() error {
			return c.store.Mkdir(ctx, dir, name)
		},
		func() {
			c.Refresh(ctx)
		})
}

// Preview opens the overlay on a file row.
func (c *Controller) Preview(row Row) (*Session, bool) {
	if row.IsDir {
		return nil, false
	}
	return c.Overlay().Open(row.Path, row.Name), true
}

// DownloadURL returns the direct download link of a file row.
func (c *Controller) DownloadURL(row Row) string {
	if href := row.Href(ActionDownload); href != "" {
		return href
	}
	return c.store.DownloadURL(row.Path)
}

// mutate runs one mutating request. The control stays disabled while the
// request is in flight; on failure the server message is shown and nothing
// is refreshed.
func (c *Controller) mutate(ctrl Control, op, path string, run func() error, onSuccess func()) error {
	log := c.log.WithFields(logrus.Fields{"op": op, "path": path})

	c.view.SetDisabled(ctrl, true)
	defer c.view.SetDisabled(ctrl, false)

	if err := run(); err != nil {
		log.WithError(err).Warn("Operation failed")
		c.dialogs.Notify(err.Error())
		return err
	}

	log.Info("Operation succeeded")
	onSuccess()
	return nil
}
