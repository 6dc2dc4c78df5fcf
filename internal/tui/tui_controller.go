package tui

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"
	"github.com/lithammer/fuzzysearch/fuzzy"

	"iconscrape/internal/archive"
	"iconscrape/internal/session"
	"iconscrape/internal/util"
)

type TUIController struct {
	model *TUIModel
	view  *TUIView

	searchInput textinput.Model
	filterInput textinput.Model
	spin        spinner.Model

	searchOn bool
	filterOn bool
	filter   string
	showHelp bool
	cursor   int

	status    string
	statusBad bool
}

func NewTUIController(model *TUIModel, view *TUIView) *TUIController {
	searchInput := textinput.New()
	searchInput.Placeholder = "cat; dog; rocket"
	searchInput.Prompt = "Search: "
	searchInput.Focus()

	filterInput := textinput.New()
	filterInput.Placeholder = "Filter this page..."
	filterInput.Prompt = "/"

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return &TUIController{
		model:       model,
		view:        view,
		searchInput: searchInput,
		filterInput: filterInput,
		spin:        sp,
		searchOn:    true,
	}
}

func (c *TUIController) Init() tea.Cmd {
	return textinput.Blink
}

func (c *TUIController) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		c.view.SetSize(msg.Width, msg.Height)
		return nil

	case tea.KeyMsg:
		return c.handleKeyMsg(msg)

	case spinner.TickMsg:
		if !c.model.Busy() {
			return nil
		}
		var cmd tea.Cmd
		c.spin, cmd = c.spin.Update(msg)
		return cmd

	case searchDoneMsg:
		c.handleSearchDone(msg)
		return nil

	case buildDoneMsg:
		c.handleBuildDone(msg)
		return nil

	case errMsg:
		c.setError(msg.err.Error())
		return nil
	}
	return nil
}

func (c *TUIController) handleKeyMsg(msg tea.KeyMsg) tea.Cmd {
	if msg.String() == "ctrl+c" {
		c.model.shutdown()
		return tea.Quit
	}
	if c.showHelp {
		c.showHelp = false
		return nil
	}
	if c.searchOn {
		return c.handleSearchKeys(msg)
	}
	if c.filterOn {
		return c.handleFilterKeys(msg)
	}
	return c.handleNormalKeys(msg)
}

func (c *TUIController) handleSearchKeys(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEnter:
		raw := c.searchInput.Value()
		c.searchOn = false
		c.searchInput.Blur()
		c.setStatus("")
		return tea.Batch(c.model.searchCmd(raw), c.spin.Tick)
	case tea.KeyEsc:
		if _, ok := c.model.Page(); ok || c.model.searching {
			c.searchOn = false
			c.searchInput.Blur()
		}
		return nil
	}
	var cmd tea.Cmd
	c.searchInput, cmd = c.searchInput.Update(msg)
	return cmd
}

func (c *TUIController) handleFilterKeys(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEnter:
		c.filterOn = false
		c.filterInput.Blur()
		return nil
	case tea.KeyEsc:
		c.clearFilter()
		return nil
	}
	var cmd tea.Cmd
	c.filterInput, cmd = c.filterInput.Update(msg)
	c.filter = c.filterInput.Value()
	c.cursor = 0
	return cmd
}

func (c *TUIController) handleNormalKeys(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "q":
		c.model.shutdown()
		return tea.Quit
	case "?":
		c.showHelp = true
	case "s", "tab":
		c.searchOn = true
		c.searchInput.Focus()
		return textinput.Blink
	case "/":
		c.filterOn = true
		c.filterInput.Focus()
		return textinput.Blink
	case "esc":
		c.clearFilter()
	case "n", "]", "pgdown":
		c.advance(session.Next)
	case "p", "[", "pgup":
		c.advance(session.Previous)
	case "left", "h":
		c.moveCursor(-1)
	case "right", "l":
		c.moveCursor(1)
	case "up", "k":
		c.moveCursor(-c.model.Columns())
	case "down", "j":
		c.moveCursor(c.model.Columns())
	case " ", "enter", "x":
		c.toggle()
	case "d":
		return c.download()
	case "y":
		if it, ok := c.current(); ok {
			if err := copyToClipboard(it.URL); err != nil {
				c.setError(err.Error())
			} else {
				c.setStatus("copied " + util.URLPathBase(it.URL))
			}
		}
	case "o":
		if e := c.model.lastExport; e != nil {
			if err := openInFileManager(e.path, true); err != nil {
				c.setError(err.Error())
			}
		}
	}
	return nil
}

func (c *TUIController) advance(dir session.Direction) {
	q, err := c.model.sess.Advance(dir)
	if err != nil {
		c.setStatus("nothing to page through yet")
		return
	}
	c.clearFilter()
	c.cursor = 0
	c.model.log.Debugf("page %s: %q", dir, q)
}

func (c *TUIController) moveCursor(delta int) {
	n := len(c.visibleItems())
	if n == 0 {
		c.cursor = 0
		return
	}
	next := c.cursor + delta
	if next < 0 || next >= n {
		return
	}
	c.cursor = next
}

func (c *TUIController) toggle() {
	it, ok := c.current()
	if !ok {
		return
	}
	res, err := c.model.sess.Click(it.Query, it.Index)
	if err != nil {
		c.setError(err.Error())
		return
	}
	verb := "removed"
	if !it.Selected {
		verb = "selected"
	}
	c.setStatus(fmt.Sprintf("%s %s", verb, util.URLPathBase(it.URL)))
	if len(res.Updated) > 1 {
		c.model.log.Warnf("repaired %d download list entries for %q", len(res.Updated)-1, it.Query)
	}
}

func (c *TUIController) download() tea.Cmd {
	if c.model.building {
		return nil
	}
	if !c.model.sess.AnySelected() {
		c.setError("select at least one icon first")
		return nil
	}
	c.setStatus("")
	return tea.Batch(c.model.buildCmd(), c.spin.Tick)
}

func (c *TUIController) handleSearchDone(msg searchDoneMsg) {
	if !c.model.finishSearch(msg) {
		return
	}
	switch {
	case errors.Is(msg.err, session.ErrSuperseded), errors.Is(msg.err, context.Canceled):
		return
	case msg.err != nil:
		c.setError("search failed: " + msg.err.Error())
		return
	}
	c.clearFilter()
	c.cursor = 0
	s := fmt.Sprintf("%d icons for %d queries", msg.sum.Results, len(msg.sum.Queries))
	if msg.sum.Empty > 0 {
		s += fmt.Sprintf(", %d without results", msg.sum.Empty)
	}
	c.setStatus(s)
}

func (c *TUIController) handleBuildDone(msg buildDoneMsg) {
	c.model.finishBuild(msg)
	switch {
	case errors.Is(msg.err, archive.ErrNothingSelected):
		c.setError("select at least one icon first")
		return
	case msg.err != nil:
		c.setError("download failed: " + msg.err.Error())
		return
	}
	e := c.model.lastExport
	s := fmt.Sprintf("saved %s (%d icons, %s)", e.path, e.entries, humanize.Bytes(uint64(e.bytes)))
	if e.skipped > 0 {
		s += fmt.Sprintf(", %d skipped", e.skipped)
	}
	if msg.id != c.model.sess.ID() {
		s += " from the previous search"
	}
	c.setStatus(s)
}

// visibleItems returns the current page narrowed by the fuzzy filter on
// the icon file names.
func (c *TUIController) visibleItems() []session.ViewItem {
	v, ok := c.model.Page()
	if !ok {
		return nil
	}
	if c.filter == "" {
		return v.Items
	}
	var out []session.ViewItem
	for _, it := range v.Items {
		if fuzzy.MatchNormalizedFold(c.filter, util.URLPathBase(it.URL)) {
			out = append(out, it)
		}
	}
	return out
}

func (c *TUIController) current() (session.ViewItem, bool) {
	items := c.visibleItems()
	if c.cursor < 0 || c.cursor >= len(items) {
		return session.ViewItem{}, false
	}
	return items[c.cursor], true
}

func (c *TUIController) clearFilter() {
	c.filterOn = false
	c.filter = ""
	c.filterInput.SetValue("")
	c.filterInput.Blur()
	c.cursor = 0
}

func (c *TUIController) setStatus(s string) {
	c.status = s
	c.statusBad = false
}

func (c *TUIController) setError(s string) {
	c.status = s
	c.statusBad = true
}
