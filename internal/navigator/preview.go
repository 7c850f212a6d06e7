package navigator

import (
	"sync"

	"github.com/HaiFongPan/minas-cli/internal/media"
)

// ElementKind is the kind of element a preview session shows.
type ElementKind int

const (
	ElementFallback ElementKind = iota
	ElementImage
	ElementVideo
	ElementAudio
)

// Element is the media element placed in the overlay. Src is the stream
// URL for media elements; Href is the download link of the fallback.
type Element struct {
	Kind     ElementKind
	Src      string
	Controls bool
	Href     string
}

// Session is one open preview.
type Session struct {
	TargetPath string
	Name       string
	Kind       media.Kind
	Element    Element
}

// Overlay is the single preview surface. Opening a session replaces the
// previous one; closing hides the overlay but keeps the instance.
type Overlay struct {
	links Linker

	mu      sync.Mutex
	session *Session
	visible bool
}

// NewOverlay creates an empty hidden overlay.
func NewOverlay(links Linker) *Overlay {
	return &Overlay{links: links}
}

// Open shows a preview of path, replacing whatever was shown.
func (o *Overlay) Open(path, name string) *Session {
	kind := media.Classify(name)
	s := &Session{TargetPath: path, Name: name, Kind: kind}

	switch kind {
	case media.Image:
		s.Element = Element{Kind: ElementImage, Src: o.links.StreamURL(path)}
	case media.Video:
		s.Element = Element{Kind: ElementVideo, Src: o.links.StreamURL(path), Controls: true}
	case media.Audio:
		s.Element = Element{Kind: ElementAudio, Src: o.links.StreamURL(path), Controls: true}
	default:
		s.Element = Element{Kind: ElementFallback, Href: o.links.DownloadURL(path)}
	}

	o.mu.Lock()
	o.session = s
	o.visible = true
	o.mu.Unlock()
	return s
}

// Close hides the overlay.
func (o *Overlay) Close() {
	o.mu.Lock()
	o.session = nil
	o.visible = false
	o.mu.Unlock()
}

// Active returns the shown session.
func (o *Overlay) Active() (*Session, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.session, o.visible && o.session != nil
}

// Visible reports whether the overlay is shown.
func (o *Overlay) Visible() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.visible
}
