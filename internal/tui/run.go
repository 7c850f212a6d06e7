package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"
)

// Run starts the interactive browser and blocks until the user quits.
func Run(opts Options) error {
	m, err := NewBrowserModel(opts)
	if err != nil {
		return err
	}

	p := tea.NewProgram(m, tea.WithAltScreen())
	m.Bridge().SetSender(p)
	defer m.Shutdown()

	logrus.WithField("start", opts.StartPath).Info("Starting file browser")
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running file browser: %w", err)
	}
	return nil
}
