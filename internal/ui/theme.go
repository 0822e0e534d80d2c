package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/haryoiro/ytmgrab/internal/structures"
)

// ThemeManager manages UI styles based on the configured theme
type ThemeManager struct {
	theme structures.Theme

	// Cached styles
	baseStyle        lipgloss.Style
	selectedStyle    lipgloss.Style
	queuedStyle      lipgloss.Style
	doneStyle        lipgloss.Style
	failedStyle      lipgloss.Style
	mutedStyle       lipgloss.Style
	borderStyle      lipgloss.Style
	titleStyle       lipgloss.Style
	helpStyle        lipgloss.Style
	activeTabStyle   lipgloss.Style
	inactiveTabStyle lipgloss.Style
}

// NewThemeManager creates a new theme manager with the given theme
func NewThemeManager(theme structures.Theme) *ThemeManager {
	tm := &ThemeManager{theme: theme}
	tm.initStyles()
	return tm
}

// initStyles initializes all the cached styles
func (tm *ThemeManager) initStyles() {
	// Foreground only; a background would color the padding unevenly.
	tm.baseStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color(tm.theme.Foreground))

	tm.selectedStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color(tm.theme.Selected)).
		Bold(true)

	tm.queuedStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color(tm.theme.Queued))

	tm.doneStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color(tm.theme.Done))

	tm.failedStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color(tm.theme.Failed)).
		Bold(true)

	tm.mutedStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color(tm.theme.Muted))

	tm.borderStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(tm.theme.Border)).
		Padding(0, 1)

	tm.titleStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color(tm.theme.Foreground)).
		Bold(true)

	tm.helpStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color(tm.theme.Muted)).
		Italic(true)

	tm.activeTabStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color(tm.theme.Selected)).
		Bold(true).
		Underline(true).
		Padding(0, 2)

	tm.inactiveTabStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color(tm.theme.Muted)).
		Padding(0, 2)
}

// Update updates the theme and reinitializes styles
func (tm *ThemeManager) Update(theme structures.Theme) {
	tm.theme = theme
	tm.initStyles()
}

func (tm *ThemeManager) BaseStyle() lipgloss.Style     { return tm.baseStyle }
func (tm *ThemeManager) SelectedStyle() lipgloss.Style { return tm.selectedStyle }
func (tm *ThemeManager) BorderStyle() lipgloss.Style   { return tm.borderStyle }
func (tm *ThemeManager) MutedStyle() lipgloss.Style    { return tm.mutedStyle }

func (tm *ThemeManager) RenderTitle(text string) string    { return tm.titleStyle.Render(text) }
func (tm *ThemeManager) RenderSelected(text string) string { return tm.selectedStyle.Render(text) }
func (tm *ThemeManager) RenderQueued(text string) string   { return tm.queuedStyle.Render(text) }
func (tm *ThemeManager) RenderMuted(text string) string    { return tm.mutedStyle.Render(text) }
func (tm *ThemeManager) RenderHelp(text string) string     { return tm.helpStyle.Render(text) }
func (tm *ThemeManager) RenderError(text string) string    { return tm.failedStyle.Render(text) }

// RenderTab renders one entry of the tab bar.
func (tm *ThemeManager) RenderTab(text string, active bool) string {
	if active {
		return tm.activeTabStyle.Render(text)
	}
	return tm.inactiveTabStyle.Render(text)
}

// RenderStatus colors a job status label.
func (tm *ThemeManager) RenderStatus(status structures.DownloadStatus, text string) string {
	switch status {
	case structures.StatusDownloading:
		return tm.selectedStyle.Render(text)
	case structures.StatusDone:
		return tm.doneStyle.Render(text)
	case structures.StatusFailed:
		return tm.failedStyle.Render(text)
	default:
		return tm.queuedStyle.Render(text)
	}
}
