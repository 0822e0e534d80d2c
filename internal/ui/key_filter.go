package ui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// shouldProcessKey rate-limits held cursor keys. Everything else passes.
func (m *Model) shouldProcessKey(msg tea.KeyMsg) bool {
	if !m.isCursorKey(msg) {
		return true
	}
	return m.keyDebouncer.ShouldProcess(msg.String())
}

// isCursorKey matches the configured move bindings plus paging.
func (m *Model) isCursorKey(msg tea.KeyMsg) bool {
	kb := m.config.KeyBindings
	switch msg.Type {
	case tea.KeyPgUp, tea.KeyPgDown:
		return true
	}
	return m.isKeyInList(msg, kb.MoveUp) || m.isKeyInList(msg, kb.MoveDown)
}
