package ui

import (
	"errors"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/haryoiro/ytmgrab/internal/logger"
	"github.com/haryoiro/ytmgrab/internal/parser"
	"github.com/haryoiro/ytmgrab/internal/report"
	"github.com/haryoiro/ytmgrab/internal/structures"
	"github.com/haryoiro/ytmgrab/internal/systems"
)

const unexpectedResponseText = "unexpected response, please retry or report"

// exploreRow points at an endpoint (playlist == -1) or one of its playlists.
type exploreRow struct {
	endpoint int
	playlist int
}

func (m *Model) rebuildNodes() {
	endpoints := m.systems.API.Endpoints()
	m.nodes = make([]*endpointNode, len(endpoints))
	for i, ep := range endpoints {
		m.nodes[i] = &endpointNode{endpoint: ep}
	}
	m.selectedIndex[ExploreTab] = 0
	m.scrollOffset[ExploreTab] = 0
}

func (m *Model) exploreRows() []exploreRow {
	var rows []exploreRow
	for i, node := range m.nodes {
		rows = append(rows, exploreRow{endpoint: i, playlist: -1})
		if !node.expanded {
			continue
		}
		for j := range node.playlists {
			rows = append(rows, exploreRow{endpoint: i, playlist: j})
		}
	}
	return rows
}

func (m *Model) currentExploreRow() (exploreRow, bool) {
	rows := m.exploreRows()
	idx := m.selectedIndex[ExploreTab]
	if idx < 0 || idx >= len(rows) {
		return exploreRow{}, false
	}
	return rows[idx], true
}

// expandSelected opens or closes the endpoint under the cursor, fetching its
// playlists the first time.
func (m *Model) expandSelected() (tea.Model, tea.Cmd) {
	row, ok := m.currentExploreRow()
	if !ok {
		return m, nil
	}
	if row.playlist >= 0 {
		return m.toggleSelected()
	}

	node := m.nodes[row.endpoint]
	if node.expanded {
		node.expanded = false
		return m, nil
	}
	if node.loading {
		return m, nil
	}
	if node.endpoint.Fetched() && node.err == nil {
		node.expanded = true
		return m, nil
	}

	node.loading = true
	node.err = nil
	return m, m.loadEndpoint(row.endpoint, node.endpoint)
}

// collapseSelected closes the endpoint of the row under the cursor and moves
// the cursor onto it.
func (m *Model) collapseSelected() (tea.Model, tea.Cmd) {
	row, ok := m.currentExploreRow()
	if !ok {
		return m, nil
	}
	m.nodes[row.endpoint].expanded = false
	for i, r := range m.exploreRows() {
		if r.endpoint == row.endpoint && r.playlist == -1 {
			m.selectedIndex[ExploreTab] = i
			break
		}
	}
	m.adjustScroll()
	return m, nil
}

func (m *Model) toggleSelected() (tea.Model, tea.Cmd) {
	row, ok := m.currentExploreRow()
	if !ok || row.playlist < 0 {
		return m, nil
	}
	playlist := m.nodes[row.endpoint].playlists[row.playlist]

	queued, err := m.systems.Download.Toggle(playlist)
	switch {
	case errors.Is(err, systems.ErrUnavailable):
		m.setErrorText(playlist.Title() + " cannot be downloaded")
	case errors.Is(err, systems.ErrNotWaiting):
		m.setErrorText(playlist.Title() + " is already downloading")
	case err != nil:
		m.setError(err)
	case queued:
		m.setStatus("Queued " + playlist.Title())
	default:
		m.setStatus("Removed " + playlist.Title())
	}
	m.jobs = m.systems.Download.Jobs()
	return m, nil
}

func (m *Model) loadEndpoint(index int, ep *structures.Endpoint) tea.Cmd {
	return func() tea.Msg {
		playlists, err := ep.Playlists(m.ctx)
		return endpointLoadedMsg{index: index, endpoint: ep, playlists: playlists, err: err}
	}
}

func (m *Model) handleEndpointLoaded(msg endpointLoadedMsg) (tea.Model, tea.Cmd) {
	// The session may have changed while the request was in flight.
	if msg.index >= len(m.nodes) || m.nodes[msg.index].endpoint != msg.endpoint {
		return m, nil
	}

	node := m.nodes[msg.index]
	node.loading = false
	if msg.err != nil {
		node.err = msg.err
		m.setError(msg.err)
		return m, nil
	}
	node.playlists = msg.playlists
	node.expanded = true
	logger.Debug("Endpoint %q loaded %d playlist(s)", msg.endpoint.Title(), len(msg.playlists))
	return m, nil
}

// Settings rows: the auth files followed by the download dir field.

func (m *Model) settingsRowCount() int {
	return len(m.authFiles) + 1
}

func (m *Model) onDirRow() bool {
	return m.selectedIndex[SettingsTab] == len(m.authFiles)
}

func (m *Model) activateSetting() (tea.Model, tea.Cmd) {
	if m.onDirRow() {
		m.editingDir = true
		m.dirInput = m.config.DownloadDir
		m.settingsErr = ""
		return m, nil
	}
	idx := m.selectedIndex[SettingsTab]
	if idx < 0 || idx >= len(m.authFiles) {
		return m, nil
	}
	return m, m.selectAuth(m.authFiles[idx])
}

func (m *Model) selectAuth(name string) tea.Cmd {
	return func() tea.Msg {
		return authSelectedMsg{name: name, err: m.systems.SelectAuth(name)}
	}
}

func (m *Model) reloadAuthFiles() tea.Cmd {
	return func() tea.Msg {
		names, err := m.systems.API.LoadAuthDir()
		return authFilesMsg{names: names, err: err}
	}
}

// handleDirInput edits the download dir field until enter or esc.
func (m *Model) handleDirInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		dir := strings.TrimSpace(m.dirInput)
		if err := m.systems.SetDownloadDir(dir); err != nil {
			m.settingsErr = err.Error()
			return m, nil
		}
		m.editingDir = false
		m.settingsErr = ""
		m.setStatus("Download dir set to " + dir)
	case tea.KeyEsc:
		m.editingDir = false
		m.settingsErr = ""
	case tea.KeyBackspace:
		if r := []rune(m.dirInput); len(r) > 0 {
			m.dirInput = string(r[:len(r)-1])
		}
	case tea.KeySpace:
		m.dirInput += " "
	case tea.KeyRunes:
		m.dirInput += string(msg.Runes)
	}
	return m, nil
}

// requeueSelected restarts a finished job in the Download tab.
func (m *Model) requeueSelected() (tea.Model, tea.Cmd) {
	idx := m.selectedIndex[DownloadTab]
	if idx < 0 || idx >= len(m.jobs) {
		return m, nil
	}
	job := m.jobs[idx]
	if _, err := m.systems.Download.Requeue(job.ID); err != nil {
		if errors.Is(err, systems.ErrAlreadyQueued) {
			m.setErrorText(job.Title + " is still queued")
			return m, nil
		}
		m.setError(err)
		return m, nil
	}
	m.setStatus("Queued " + job.Title + " again")
	m.jobs = m.systems.Download.Jobs()
	return m, nil
}

// setError shows err in the footer. Responses the parser could not read are
// also reported.
func (m *Model) setError(err error) {
	logger.Error("%v", err)
	if errors.Is(err, parser.ErrUnexpectedResponse) {
		report.Capture(m.ctx, err, map[string]string{"stage": "explore"})
		m.setErrorText(unexpectedResponseText)
		return
	}
	m.setErrorText(err.Error())
}

func (m *Model) setErrorText(text string) {
	m.status = text
	m.statusErr = true
}
