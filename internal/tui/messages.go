package tui

import (
	"github.com/HaiFongPan/minas-cli/internal/navigator"
	"github.com/HaiFongPan/minas-cli/internal/tui/preview"
)

// Messages sent by the bridge on behalf of the controller.
type (
	listingMsg struct {
		listing navigator.Listing
	}

	controlStateMsg struct {
		ctrl     navigator.Control
		disabled bool
	}

	clearInputMsg struct {
		ctrl navigator.Control
	}

	confirmRequestMsg struct {
		text  string
		reply chan<- bool
	}

	promptRequestMsg struct {
		text  string
		def   string
		reply chan<- promptReply
	}

	promptReply struct {
		value string
		ok    bool
	}

	notifyMsg struct {
		text string
	}
)

// Messages produced by commands.
type (
	// opDoneMsg ends a controller call started by the model.
	opDoneMsg struct {
		op  string
		err error
	}

	transferProgressMsg struct {
		op         string
		name       string
		done       int64
		total      int64
		percentage float64
	}

	downloadDoneMsg struct {
		name string
		path string
		err  error
	}

	healthMsg struct {
		err error
	}

	previewLoadedMsg struct {
		path  string
		image *preview.Image
		err   error
	}

	statusTickMsg struct{}
)
