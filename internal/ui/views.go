package ui

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/haryoiro/ytmgrab/internal/structures"
)

// renderRow draws one list line with the cursor marker.
func (m *Model) renderRow(text string, selected bool, width int) string {
	text = truncate(text, width-CursorWidth)
	if selected {
		return m.themeManager.RenderSelected("> " + text)
	}
	return m.themeManager.BaseStyle().Render("  " + text)
}

func (m *Model) renderSettings(width int) string {
	var b strings.Builder
	tm := m.themeManager

	b.WriteString(tm.RenderTitle("Session"))
	b.WriteString("\n\n")

	selected := m.systems.API.Selected()
	if len(m.authFiles) == 0 {
		b.WriteString(tm.RenderMuted(truncate("  No auth files in "+m.config.AuthDir, width)))
		b.WriteString("\n")
	}
	for i, name := range m.authFiles {
		marker := IdleMarker
		if name == selected {
			marker = QueuedMarker
		}
		b.WriteString(m.renderRow(marker+name, i == m.selectedIndex[SettingsTab], width))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(tm.RenderTitle("Download dir"))
	b.WriteString("\n\n")

	value := m.config.DownloadDir
	if m.editingDir {
		value = m.dirInput + "_"
	}
	b.WriteString(m.renderRow(value, m.onDirRow(), width))
	if m.settingsErr != "" {
		b.WriteString("\n")
		b.WriteString(tm.RenderError(truncate("  "+m.settingsErr, width)))
	}

	return b.String()
}

func (m *Model) renderExplore(width int) string {
	var b strings.Builder
	tm := m.themeManager

	b.WriteString(tm.RenderTitle("Explore"))
	b.WriteString("\n\n")

	if !m.systems.API.Ready() {
		b.WriteString(tm.RenderMuted("  Select a session in Settings first"))
		return b.String()
	}
	if len(m.nodes) == 0 {
		b.WriteString(tm.RenderMuted("  No endpoints configured"))
		return b.String()
	}

	rows := m.exploreRows()
	start, end := m.window(len(rows))
	for i := start; i < end; i++ {
		row := rows[i]
		node := m.nodes[row.endpoint]
		isSelected := i == m.selectedIndex[ExploreTab]

		if row.playlist < 0 {
			marker := CollapsedMarker
			if node.expanded {
				marker = ExpandedMarker
			}
			text := marker + node.endpoint.Title()
			switch {
			case node.loading:
				text += " (loading...)"
			case node.err != nil:
				text += " (failed)"
			case node.expanded && len(node.playlists) == 0:
				text += " (empty)"
			}
			b.WriteString(m.renderRow(text, isSelected, width))
			b.WriteString("\n")
			continue
		}

		playlist := node.playlists[row.playlist]
		b.WriteString(m.renderPlaylistRow(playlist, isSelected, width))
		b.WriteString("\n")
	}

	return strings.TrimRight(b.String(), "\n")
}

func (m *Model) renderPlaylistRow(p *structures.Playlist, selected bool, width int) string {
	indent := "    "
	if !p.Available() {
		return m.themeManager.RenderMuted(truncate(indent+"  "+p.Title()+" (unavailable)", width))
	}

	marker := IdleMarker
	if m.systems.Download.IsSourceQueued(p) {
		marker = QueuedMarker
	}
	text := indent + marker + p.Title()
	if selected {
		return m.themeManager.RenderSelected(truncate(">"+text[1:], width))
	}
	if marker == QueuedMarker {
		return m.themeManager.RenderQueued(truncate(text, width))
	}
	return m.themeManager.BaseStyle().Render(truncate(text, width))
}

func (m *Model) renderDownloads(width int) string {
	var b strings.Builder
	tm := m.themeManager

	b.WriteString(tm.RenderTitle("Download queue"))
	b.WriteString("\n\n")

	if len(m.jobs) == 0 {
		b.WriteString(tm.RenderMuted("  Nothing queued. Pick playlists in Explore."))
		return b.String()
	}

	titleWidth := width - CursorWidth - StatusColumnWidth - ProgressColumnWidth - 2
	if titleWidth < 8 {
		titleWidth = 8
	}

	header := "  " + padToWidth("Title", titleWidth) + " " +
		padToWidth("Status", StatusColumnWidth) + " " + "Progress"
	b.WriteString(tm.RenderMuted(truncate(header, width)))
	b.WriteString("\n")

	start, end := m.window(len(m.jobs))
	for i := start; i < end; i++ {
		job := m.jobs[i]
		cursor := "  "
		if i == m.selectedIndex[DownloadTab] {
			cursor = "> "
		}

		title := padToWidth(truncate(job.Title, titleWidth), titleWidth)
		status := tm.RenderStatus(job.Status, padToWidth(job.Status.String(), StatusColumnWidth))
		line := cursor + title + " " + status + " " + formatProgress(job)

		if i == m.selectedIndex[DownloadTab] {
			b.WriteString(tm.RenderSelected(cursor) + title + " " + status + " " + formatProgress(job))
		} else {
			b.WriteString(line)
		}
		b.WriteString("\n")

		if job.Status == structures.StatusDownloading && job.Current != "" {
			current := fmt.Sprintf("    %s %3.0f%%", job.Current, job.Percent)
			b.WriteString(tm.RenderMuted(truncate(current, width)))
			b.WriteString("\n")
		}
		if job.Status == structures.StatusFailed && job.Err != nil {
			b.WriteString(tm.RenderError(truncate("    "+job.Err.Error(), width)))
			b.WriteString("\n")
		}
	}

	return strings.TrimRight(b.String(), "\n")
}

// formatProgress renders "done/total" with skip and failure counts.
func formatProgress(job structures.DownloadJob) string {
	if job.Total == 0 {
		return "-"
	}
	s := fmt.Sprintf("%d/%d", job.Completed+job.Skipped, job.Total)
	if job.Skipped > 0 {
		s += fmt.Sprintf(" (%d skipped)", job.Skipped)
	}
	if job.Failed > 0 {
		s += fmt.Sprintf(" (%d failed)", job.Failed)
	}
	return s
}

func truncate(s string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= maxWidth {
		return s
	}
	if maxWidth <= EllipsisWidth {
		return runewidth.Truncate(s, maxWidth, "")
	}
	return runewidth.Truncate(s, maxWidth, "...")
}

func padToWidth(s string, width int) string {
	if width <= 0 {
		return ""
	}
	current := runewidth.StringWidth(s)
	if current >= width {
		return s
	}
	return s + strings.Repeat(" ", width-current)
}
