package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
)

// searchCmd cancels the search in flight, if any, and starts a new one.
// Only the reply carrying the latest seq is applied.
func (m *TUIModel) searchCmd(raw string) tea.Cmd {
	m.shutdown()
	m.searchSeq++
	seq := m.searchSeq
	ctx, cancel := context.WithCancel(context.Background())
	m.cancelSearch = cancel
	m.searching = true
	sess := m.sess
	return func() tea.Msg {
		sum, err := sess.Search(ctx, raw)
		return searchDoneMsg{seq: seq, raw: raw, sum: sum, err: err}
	}
}

// buildCmd snapshots the selections now so later clicks do not leak into
// the archive being written.
func (m *TUIModel) buildCmd() tea.Cmd {
	m.building = true
	id := m.sess.ID()
	sels := m.sess.Selections()
	b := m.builder
	dir, name := m.cfg.General.OutputRoot, m.cfg.ArchiveFileName()
	return func() tea.Msg {
		path, a, err := b.WriteFile(context.Background(), dir, name, sels)
		return buildDoneMsg{id: id, path: path, a: a, err: err}
	}
}
