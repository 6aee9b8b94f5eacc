package tui

import (
	"fmt"

	"sendview/pkg/config"
	"sendview/pkg/watcher"

	tea "github.com/charmbracelet/bubbletea"
)

// Start runs the terminal viewer until the user quits.
func Start(w *watcher.Watcher, network config.NetworkConfig, globalCfg config.GlobalConfig, version string) error {
	Version = version
	p := tea.NewProgram(
		initialModel(w, network, globalCfg),
		tea.WithAltScreen(),
	)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("terminal viewer: %w", err)
	}
	return nil
}
