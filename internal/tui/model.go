// Package tui is the interactive icon browser: a search bar, one page per
// query, a grid of results to toggle and a download action.
package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"iconscrape/internal/archive"
	"iconscrape/internal/config"
	"iconscrape/internal/logging"
	"iconscrape/internal/metrics"
	"iconscrape/internal/session"
	"iconscrape/internal/state"
)

// Deps are the services the browser drives. DB and Metrics may be nil.
type Deps struct {
	Session *session.Session
	Builder *archive.Builder
	DB      *state.DB
	Metrics *metrics.Manager
	Log     *logging.Logger
}

type model struct {
	tuiModel      *TUIModel
	tuiView       *TUIView
	tuiController *TUIController
}

// searchDoneMsg carries the outcome of the search numbered seq.
type searchDoneMsg struct {
	seq uint64
	raw string
	sum session.Summary
	err error
}

// buildDoneMsg carries the outcome of an archive build for session id.
type buildDoneMsg struct {
	id   string
	path string
	a    *archive.Archive
	err  error
}

type errMsg struct{ err error }

// New creates a new TUI model that implements the tea.Model interface.
// It orchestrates the MVC components: TUIModel, TUIView, and TUIController.
func New(cfg *config.Config, d Deps) tea.Model {
	tuiModel := NewTUIModel(cfg, d)
	tuiView := NewTUIView(cfg)
	tuiController := NewTUIController(tuiModel, tuiView)

	return &model{
		tuiModel:      tuiModel,
		tuiView:       tuiView,
		tuiController: tuiController,
	}
}

func (m *model) Init() tea.Cmd {
	return m.tuiController.Init()
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	return m, m.tuiController.Update(msg)
}

func (m *model) View() string {
	return m.tuiView.View(m.tuiModel, m.tuiController)
}
