package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/haryoiro/ytmgrab/internal/logger"
)

// isKey checks if the pressed key matches the configured keybinding
func (m *Model) isKey(msg tea.KeyMsg, key string) bool {
	if key == "" {
		return false
	}

	// Handle special keys
	switch key {
	case "ctrl+c":
		return msg.Type == tea.KeyCtrlC
	case "ctrl+d":
		return msg.Type == tea.KeyCtrlD
	case "space":
		return msg.Type == tea.KeySpace
	case "enter":
		return msg.Type == tea.KeyEnter
	case "esc":
		return msg.Type == tea.KeyEsc
	case "backspace":
		return msg.Type == tea.KeyBackspace
	case "tab":
		return msg.Type == tea.KeyTab
	case "shift+tab":
		return msg.Type == tea.KeyShiftTab
	case "up":
		return msg.Type == tea.KeyUp
	case "down":
		return msg.Type == tea.KeyDown
	case "left":
		return msg.Type == tea.KeyLeft
	case "right":
		return msg.Type == tea.KeyRight
	case "pgup":
		return msg.Type == tea.KeyPgUp
	case "pgdown":
		return msg.Type == tea.KeyPgDown
	default:
		return msg.Type == tea.KeyRunes && msg.String() == key
	}
}

// isKeyInList checks if the pressed key matches any of the configured keybindings
func (m *Model) isKeyInList(msg tea.KeyMsg, bindings []string) bool {
	for _, binding := range bindings {
		if m.isKey(msg, binding) {
			return true
		}
	}
	return false
}

// handleKeyPress processes keyboard input and delegates to appropriate handlers
func (m *Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	kb := m.config.KeyBindings
	logger.Debug("Raw key event: type=%d, string=%s", msg.Type, msg.String())

	// The dir field swallows every key but ctrl+c.
	if m.editingDir {
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		return m.handleDirInput(msg)
	}

	if m.isKeyInList(msg, kb.Quit) {
		return m, tea.Quit
	}

	if !m.shouldProcessKey(msg) {
		return m, nil
	}

	if m.isKey(msg, kb.NextTab) {
		return m.switchTab(1)
	}
	if m.isKey(msg, kb.PrevTab) {
		return m.switchTab(-1)
	}

	if m.isKeyInList(msg, kb.MoveUp) {
		return m.moveUp()
	}
	if m.isKeyInList(msg, kb.MoveDown) {
		return m.moveDown()
	}

	// Page navigation
	switch msg.String() {
	case "g":
		return m.jumpToTop()
	case "G":
		return m.jumpToBottom()
	case "ctrl+b", "pgup":
		return m.pageUp()
	case "ctrl+f", "pgdown":
		return m.pageDown()
	}

	switch m.tab {
	case SettingsTab:
		return m.handleSettingsKeys(msg)
	case ExploreTab:
		return m.handleExploreKeys(msg)
	case DownloadTab:
		return m.handleDownloadKeys(msg)
	}
	return m, nil
}

func (m *Model) handleSettingsKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	kb := m.config.KeyBindings
	switch {
	case m.isKeyInList(msg, kb.Expand), m.isKeyInList(msg, kb.Toggle):
		return m.activateSetting()
	case m.isKey(msg, "r"):
		return m, m.reloadAuthFiles()
	}
	return m, nil
}

func (m *Model) handleExploreKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	kb := m.config.KeyBindings
	switch {
	case m.isKeyInList(msg, kb.Toggle):
		return m.toggleSelected()
	case m.isKeyInList(msg, kb.Expand):
		return m.expandSelected()
	case m.isKeyInList(msg, kb.Back):
		return m.collapseSelected()
	}
	return m, nil
}

func (m *Model) handleDownloadKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.isKey(msg, m.config.KeyBindings.Start) {
		return m.requeueSelected()
	}
	return m, nil
}

func (m *Model) switchTab(delta int) (tea.Model, tea.Cmd) {
	n := len(tabNames)
	m.tab = Tab((int(m.tab) + delta + n) % n)
	if m.tab == DownloadTab {
		m.jobs = m.systems.Download.Jobs()
	}
	m.clampSelection()
	return m, nil
}
