package tui

import (
	"time"

	"sendview/pkg/config"
	"sendview/pkg/selectors"
	"sendview/pkg/watcher"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Version is set by Start()
var Version = "dev"

// --- Messages ---

type clearStatusMsg struct{}
type uiTickMsg time.Time

// --- Model ---

type model struct {
	watcher *watcher.Watcher
	sub     watcher.Subscriber
	network config.NetworkConfig
	config  config.GlobalConfig

	view    selectors.SendView
	hasView bool
	viewErr string

	width         int
	height        int
	loading       bool
	lastUpdate    time.Time
	spinner       spinner.Model
	viewport      viewport.Model
	statusMessage string
	showGraph     bool
	showHelp      bool
	txIdx         int
	privacyMode   bool
}

func initialModel(w *watcher.Watcher, network config.NetworkConfig, globalCfg config.GlobalConfig) model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	m := model{
		watcher:  w,
		sub:      w.Subscribe(),
		network:  network,
		config:   globalCfg,
		loading:  true,
		spinner:  s,
		viewport: viewport.New(0, 0),
	}
	if v, err := w.View(); err == nil {
		m.view, m.hasView, m.loading = v, true, false
		m.lastUpdate = time.Now()
	}
	return m
}

func (m model) Init() tea.Cmd {
	return tea.Batch(
		listenForWatcher(m.sub),
		m.spinner.Tick,
		tea.Tick(time.Second, func(t time.Time) tea.Msg { return uiTickMsg(t) }),
	)
}
