// Package navigator holds the browsing state machine: the current
// directory, the listing controller that keeps the view in line with the
// server, and the preview overlay.
package navigator

import (
	"sync"

	"github.com/HaiFongPan/minas-cli/internal/vpath"
)

// State is the single owner of the current virtual directory. Navigate is
// its only mutator.
type State struct {
	mu      sync.RWMutex
	current string
}

// NewState returns a state positioned at the root.
func NewState() *State {
	return &State{}
}

// Navigate sets the current directory without checking that it exists.
func (s *State) Navigate(path string) {
	s.mu.Lock()
	s.current = path
	s.mu.Unlock()
}

// Current returns the current directory.
func (s *State) Current() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Breadcrumb is the display form of the current directory.
func (s *State) Breadcrumb() string {
	return "/" + s.Current()
}

// CanGoUp reports whether there is a parent to go to.
func (s *State) CanGoUp() bool {
	return s.Current() != ""
}

// Parent returns the parent of the current directory.
func (s *State) Parent() string {
	return vpath.Parent(s.Current())
}
