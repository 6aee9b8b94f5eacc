package tui

import (
	"fmt"
	"strings"
	"time"

	"sendview/pkg/watcher"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
)

func clearStatusAfter(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return clearStatusMsg{}
	})
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {

	case watcher.Event:
		m.applyEvent(msg)
		cmds = append(cmds, listenForWatcher(m.sub))

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = msg.Width - 6
		h := msg.Height - 24
		if h < 3 {
			h = 3
		}
		m.viewport.Height = h
		m.updateTxViewport()

	case tea.KeyMsg:
		if m.showHelp {
			m.showHelp = false
			return m, nil
		}

		switch msg.String() {
		case "q", "ctrl+c":
			if m.showGraph {
				m.showGraph = false
				return m, nil
			}
			if m.watcher != nil && m.sub != nil {
				m.watcher.Unsubscribe(m.sub)
			}
			return m, tea.Quit
		case "esc":
			m.showGraph = false
		case "?":
			m.showHelp = true
		case "g":
			m.showGraph = !m.showGraph
		case "p":
			m.privacyMode = !m.privacyMode
			m.updateTxViewport()
		case "r":
			if m.watcher == nil {
				break
			}
			m.loading = true
			m.watcher.Refresh()
			m.statusMessage = "Refreshing data..."
			cmds = append(cmds, clearStatusAfter(2*time.Second))

		case "c":
			if m.hasView && m.view.From != nil {
				if err := clipboard.WriteAll(m.view.From.Address); err != nil {
					m.statusMessage = "Failed to copy to clipboard"
				} else {
					m.statusMessage = "Sender address copied to clipboard!"
				}
				cmds = append(cmds, clearStatusAfter(2*time.Second))
			}

		case "o":
			m.statusMessage = m.openSelectedTx()
			cmds = append(cmds, clearStatusAfter(2*time.Second))

		case "up", "k":
			if m.txIdx > 0 {
				m.txIdx--
				m.updateTxViewport()
				if m.txIdx < m.viewport.YOffset {
					m.viewport.SetYOffset(m.txIdx)
				}
			}
		case "down", "j":
			if m.txIdx < len(m.view.Transactions)-1 {
				m.txIdx++
				m.updateTxViewport()
				if m.txIdx >= m.viewport.YOffset+m.viewport.Height {
					m.viewport.SetYOffset(m.txIdx - m.viewport.Height + 1)
				}
			}
		}

	case uiTickMsg:
		cmds = append(cmds, tea.Tick(time.Second, func(t time.Time) tea.Msg { return uiTickMsg(t) }))

	case clearStatusMsg:
		m.statusMessage = ""
	}

	if m.loading {
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// openSelectedTx opens the highlighted transaction in the network explorer
// and returns a status line.
func (m model) openSelectedTx() string {
	if m.network.ExplorerURL == "" {
		return "Explorer URL not configured for this network"
	}
	if m.txIdx >= len(m.view.Transactions) {
		return "No transaction selected"
	}
	tx := m.view.Transactions[m.txIdx]
	if tx.Hash == "" {
		return "Transaction has no hash yet"
	}
	url := fmt.Sprintf("%s/tx/%s", strings.TrimRight(m.network.ExplorerURL, "/"), tx.Hash)
	if err := openBrowser(url); err != nil {
		return fmt.Sprintf("Failed to open browser: %v", err)
	}
	return "Opened in browser"
}
