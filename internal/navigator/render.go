package navigator

import (
	"github.com/HaiFongPan/minas-cli/internal/filestore"
	"github.com/HaiFongPan/minas-cli/internal/media"
	"github.com/HaiFongPan/minas-cli/internal/vpath"
)

// Action is something the user can trigger on a row or on the listing.
type Action int

const (
	ActionOpen Action = iota
	ActionDownload
	ActionPreview
	ActionRename
	ActionDelete
	ActionUpload
	ActionCreateFolder
	ActionGoUp
)

var actionNames = map[Action]string{
	ActionOpen:         "open",
	ActionDownload:     "download",
	ActionPreview:      "preview",
	ActionRename:       "rename",
	ActionDelete:       "delete",
	ActionUpload:       "upload",
	ActionCreateFolder: "mkdir",
	ActionGoUp:         "up",
}

func (a Action) String() string {
	if name, ok := actionNames[a]; ok {
		return name
	}
	return "unknown"
}

// Control identifies a triggerable element of the view. Listing-wide
// controls (upload, create folder) have an empty Path.
type Control struct {
	Action Action
	Path   string
}

// RowAction is one control offered on a row. Href is set for downloads,
// which are plain links rather than controller operations.
type RowAction struct {
	Action Action
	Href   string
}

// Row describes one rendered entry.
type Row struct {
	Name    string
	Path    string
	IsDir   bool
	Size    *int64
	Kind    media.Kind
	Actions []RowAction
}

// Has reports whether the row offers action a.
func (r Row) Has(a Action) bool {
	for _, ra := range r.Actions {
		if ra.Action == a {
			return true
		}
	}
	return false
}

// Href returns the link of action a, if any.
func (r Row) Href(a Action) string {
	for _, ra := range r.Actions {
		if ra.Action == a {
			return ra.Href
		}
	}
	return ""
}

// Listing is what the view draws for one directory. When Err is set there
// are no rows; the listing area shows the error instead.
type Listing struct {
	Path       string
	Breadcrumb string
	CanGoUp    bool
	Rows       []Row
	Err        string
}

// Linker builds transfer URLs for a path.
type Linker interface {
	DownloadURL(path string) string
	StreamURL(path string) string
}

// BuildRows turns a directory listing into rows, keeping server order.
func BuildRows(dir string, entries []filestore.Entry, links Linker) []Row {
	rows := make([]Row, 0, len(entries))
	for _, e := range entries {
		p := vpath.Child(dir, e.Name)
		row := Row{
			Name:  e.Name,
			Path:  p,
			IsDir: e.IsDir,
			Size:  e.Size,
		}
		if e.IsDir {
			row.Actions = []RowAction{
				{Action: ActionOpen},
				{Action: ActionRename},
				{Action: ActionDelete},
			}
		} else {
			row.Kind = media.Classify(e.Name)
			row.Actions = []RowAction{
				{Action: ActionDownload, Href: links.DownloadURL(p)},
				{Action: ActionPreview},
				{Action: ActionRename},
				{Action: ActionDelete},
			}
		}
		rows = append(rows, row)
	}
	return rows
}
