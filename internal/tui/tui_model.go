package tui

import (
	"context"
	"time"

	"iconscrape/internal/archive"
	"iconscrape/internal/config"
	"iconscrape/internal/logging"
	"iconscrape/internal/metrics"
	"iconscrape/internal/session"
	"iconscrape/internal/state"
)

// TUIModel holds the services and the bookkeeping of in-flight work.
// Its fields are only touched from the bubbletea update loop; commands get
// copies of what they need.
type TUIModel struct {
	cfg     *config.Config
	sess    *session.Session
	builder *archive.Builder
	st      *state.DB
	metrics *metrics.Manager
	log     *logging.Logger

	searchSeq    uint64
	cancelSearch context.CancelFunc
	searching    bool
	building     bool

	lastSearch session.Summary
	lastExport *export
}

type export struct {
	path    string
	entries int
	skipped int
	bytes   int64
	when    time.Time
}

// NewTUIModel creates a TUIModel. d.Session and d.Builder are required.
func NewTUIModel(cfg *config.Config, d Deps) *TUIModel {
	if cfg == nil {
		cfg = config.Default()
	}
	return &TUIModel{
		cfg:     cfg,
		sess:    d.Session,
		builder: d.Builder,
		st:      d.DB,
		metrics: d.Metrics,
		log:     d.Log.Named("tui"),
	}
}

// Page returns the current page of the session.
func (m *TUIModel) Page() (session.View, bool) {
	return m.sess.View()
}

func (m *TUIModel) Columns() int {
	if m.cfg.UI.Columns > 0 {
		return m.cfg.UI.Columns
	}
	return 4
}

func (m *TUIModel) Busy() bool { return m.searching || m.building }

// finishSearch records a committed search and reports whether msg is the
// latest one.
func (m *TUIModel) finishSearch(msg searchDoneMsg) bool {
	if msg.seq != m.searchSeq {
		return false
	}
	m.searching = false
	m.cancelSearch = nil
	if msg.err != nil {
		return true
	}
	m.lastSearch = msg.sum
	m.metrics.IncSearches()
	m.metrics.IncEmptyQueries(int64(msg.sum.Empty))
	if m.st != nil {
		row := state.SearchRow{SessionID: msg.sum.ID, RawInput: msg.raw, Queries: msg.sum.Queries, Results: msg.sum.Results, EmptyQueries: msg.sum.Empty}
		if err := m.st.RecordSearch(row); err != nil {
			m.log.Warnf("record search: %v", err)
		}
	}
	return true
}

func (m *TUIModel) finishBuild(msg buildDoneMsg) {
	m.building = false
	row := state.ExportRow{SessionID: msg.id, Path: msg.path, Status: state.ExportComplete}
	if msg.err != nil {
		row.Status = state.ExportError
		row.LastError = msg.err.Error()
	} else {
		m.lastExport = &export{path: msg.path, entries: len(msg.a.Entries), skipped: len(msg.a.Skipped), bytes: msg.a.Size(), when: time.Now()}
		row.Entries, row.Skipped, row.Bytes = m.lastExport.entries, m.lastExport.skipped, m.lastExport.bytes
	}
	if err := m.metrics.Write(); err != nil {
		m.log.Warnf("metrics: %v", err)
	}
	if m.st != nil {
		if err := m.st.RecordExport(row); err != nil {
			m.log.Warnf("record export: %v", err)
		}
	}
}

func (m *TUIModel) shutdown() {
	if m.cancelSearch != nil {
		m.cancelSearch()
		m.cancelSearch = nil
	}
}
