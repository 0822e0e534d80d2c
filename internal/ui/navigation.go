package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/haryoiro/ytmgrab/internal/constants"
)

// listLen is the number of selectable rows in the current tab.
func (m *Model) listLen() int {
	switch m.tab {
	case SettingsTab:
		return m.settingsRowCount()
	case ExploreTab:
		return len(m.exploreRows())
	case DownloadTab:
		return len(m.jobs)
	}
	return 0
}

// visibleItems is how many rows fit in the body of the current tab.
func (m *Model) visibleItems() int {
	// frame (2) + tab heading (2)
	n := m.contentHeight() - 4
	if m.tab == DownloadTab {
		n-- // table header
	}
	if n < constants.MinVisibleItems {
		n = constants.MinVisibleItems
	}
	return n
}

func (m *Model) moveUp() (tea.Model, tea.Cmd) {
	if m.selectedIndex[m.tab] > 0 {
		m.selectedIndex[m.tab]--
		m.adjustScroll()
	}
	return m, nil
}

func (m *Model) moveDown() (tea.Model, tea.Cmd) {
	if m.selectedIndex[m.tab] < m.listLen()-1 {
		m.selectedIndex[m.tab]++
		m.adjustScroll()
	}
	return m, nil
}

// jumpToTop moves selection to the first item.
func (m *Model) jumpToTop() (tea.Model, tea.Cmd) {
	m.selectedIndex[m.tab] = 0
	m.scrollOffset[m.tab] = 0
	return m, nil
}

// jumpToBottom moves selection to the last item.
func (m *Model) jumpToBottom() (tea.Model, tea.Cmd) {
	m.selectedIndex[m.tab] = m.listLen() - 1
	m.clampSelection()
	return m, nil
}

// pageUp moves selection up by one page.
func (m *Model) pageUp() (tea.Model, tea.Cmd) {
	m.selectedIndex[m.tab] -= m.visibleItems()
	m.clampSelection()
	return m, nil
}

// pageDown moves selection down by one page.
func (m *Model) pageDown() (tea.Model, tea.Cmd) {
	m.selectedIndex[m.tab] += m.visibleItems()
	m.clampSelection()
	return m, nil
}

// clampSelection keeps the cursor inside the list after it shrank.
func (m *Model) clampSelection() {
	last := m.listLen() - 1
	if m.selectedIndex[m.tab] > last {
		m.selectedIndex[m.tab] = last
	}
	if m.selectedIndex[m.tab] < 0 {
		m.selectedIndex[m.tab] = 0
	}
	m.adjustScroll()
}

func (m *Model) adjustScroll() {
	visible := m.visibleItems()
	selected := m.selectedIndex[m.tab]

	if selected < m.scrollOffset[m.tab] {
		m.scrollOffset[m.tab] = selected
	} else if selected >= m.scrollOffset[m.tab]+visible {
		m.scrollOffset[m.tab] = selected - visible + 1
	}
	if m.scrollOffset[m.tab] < 0 {
		m.scrollOffset[m.tab] = 0
	}
}

// window returns the [start, end) rows to render for n rows.
func (m *Model) window(n int) (int, int) {
	start := m.scrollOffset[m.tab]
	if start > n {
		start = n
	}
	end := start + m.visibleItems()
	if end > n {
		end = n
	}
	return start, end
}
