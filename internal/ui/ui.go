package ui

import (
	"context"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/haryoiro/ytmgrab/internal/constants"
	"github.com/haryoiro/ytmgrab/internal/structures"
	"github.com/haryoiro/ytmgrab/internal/systems"
)

func init() {
	runewidth.DefaultCondition.EastAsianWidth = false
}

// Tab is one of the top level screens.
type Tab int

const (
	SettingsTab Tab = iota
	ExploreTab
	DownloadTab
)

var tabNames = []string{"Settings", "Explore", "Download"}

func (t Tab) String() string {
	if int(t) < len(tabNames) {
		return tabNames[t]
	}
	return "Unknown"
}

// endpointNode is one expandable row of the explorer.
type endpointNode struct {
	endpoint  *structures.Endpoint
	expanded  bool
	loading   bool
	playlists []*structures.Playlist
	err       error
}

type Model struct {
	systems      *systems.Systems
	config       *structures.Config
	themeManager *ThemeManager
	shortcuts    *ShortcutFormatter
	keyDebouncer *KeyDebouncer
	ctx          context.Context

	tab    Tab
	width  int
	height int

	// Per-tab cursor
	selectedIndex [3]int
	scrollOffset  [3]int

	// Settings
	authFiles   []string
	editingDir  bool
	dirInput    string
	settingsErr string

	// Explore
	nodes []*endpointNode

	// Download
	jobs []structures.DownloadJob

	status    string
	statusErr bool
}

type tickMsg time.Time
type endpointLoadedMsg struct {
	index     int
	endpoint  *structures.Endpoint
	playlists []*structures.Playlist
	err       error
}
type authSelectedMsg struct {
	name string
	err  error
}
type authFilesMsg struct {
	names []string
	err   error
}

// NewModel builds the root model. The session restored by Systems.Start, if
// any, decides whether the explorer opens first.
func NewModel(ctx context.Context, sys *systems.Systems, config *structures.Config) *Model {
	m := &Model{
		systems:      sys,
		config:       config,
		themeManager: NewThemeManager(config.Theme),
		shortcuts:    NewShortcutFormatter(config),
		keyDebouncer: NewKeyDebouncer(),
		ctx:          ctx,
		authFiles:    sys.API.AuthFiles(),
		tab:          SettingsTab,
	}
	if sys.API.Ready() {
		m.rebuildNodes()
		m.tab = ExploreTab
	}
	return m
}

// Run starts the program and blocks until it exits.
func Run(ctx context.Context, sys *systems.Systems, config *structures.Config) error {
	m := NewModel(ctx, sys, config)

	var opts []tea.ProgramOption
	if !config.DisableAltScreen {
		opts = append(opts, tea.WithAltScreen())
	}
	opts = append(opts, tea.WithContext(ctx))

	p := tea.NewProgram(m, opts...)
	_, err := p.Run()
	return err
}

func (m *Model) Init() tea.Cmd {
	return m.tickCmd()
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.adjustScroll()

	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tickMsg:
		m.jobs = m.systems.Download.Jobs()
		if m.tab == DownloadTab {
			m.clampSelection()
		}
		return m, m.tickCmd()

	case endpointLoadedMsg:
		return m.handleEndpointLoaded(msg)

	case authSelectedMsg:
		if msg.err != nil {
			m.setError(msg.err)
			return m, nil
		}
		m.rebuildNodes()
		m.setStatus("Using " + msg.name)
		return m, nil

	case authFilesMsg:
		if msg.err != nil {
			m.setError(msg.err)
			return m, nil
		}
		m.authFiles = msg.names
		m.clampSelection()
		m.setStatus("Found " + pluralize(len(msg.names), "session"))
		return m, nil
	}

	return m, nil
}

func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	frame := m.themeManager.BorderStyle()
	frameV, frameH := frame.GetFrameSize()
	contentWidth := m.width - frameH
	if contentWidth < 10 {
		contentWidth = 10
	}

	header := m.renderTabs()
	footer := m.renderFooter(contentWidth)

	var body string
	switch m.tab {
	case SettingsTab:
		body = m.renderSettings(contentWidth)
	case ExploreTab:
		body = m.renderExplore(contentWidth)
	case DownloadTab:
		body = m.renderDownloads(contentWidth)
	}

	bodyHeight := m.contentHeight() - frameV
	lines := strings.Split(body, "\n")
	if bodyHeight > 0 && len(lines) > bodyHeight {
		lines = lines[:bodyHeight]
	}
	body = strings.Join(lines, "\n")

	main := frame.
		Width(contentWidth).
		Height(bodyHeight).
		Render(body)

	return lipgloss.JoinVertical(lipgloss.Left, header, main, footer)
}

// contentHeight is the room for the framed body below the tabs and above
// the two footer lines.
func (m *Model) contentHeight() int {
	return m.height - 1 - 2
}

func (m *Model) renderTabs() string {
	parts := make([]string, len(tabNames))
	for i := range tabNames {
		parts[i] = m.themeManager.RenderTab(Tab(i).String(), Tab(i) == m.tab)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m *Model) renderFooter(width int) string {
	status := ""
	if m.status != "" {
		text := truncate(m.status, width)
		if m.statusErr {
			status = m.themeManager.RenderError(text)
		} else {
			status = m.themeManager.RenderSelected(text)
		}
	}
	hints := m.themeManager.RenderHelp(truncate(m.shortcuts.HintsFor(m.tab, m.editingDir), width))
	return status + "\n" + hints
}

func (m *Model) tickCmd() tea.Cmd {
	return tea.Tick(constants.StatusTickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m *Model) setStatus(text string) {
	m.status = text
	m.statusErr = false
}

func pluralize(n int, word string) string {
	if n == 1 {
		return "1 " + word
	}
	return strconv.Itoa(n) + " " + word + "s"
}
