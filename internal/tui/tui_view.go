package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"iconscrape/internal/config"
	"iconscrape/internal/session"
	"iconscrape/internal/util"
)

type TUIView struct {
	th     Theme
	width  int
	height int
}

func NewTUIView(cfg *config.Config) *TUIView {
	th := defaultTheme()
	if cfg != nil {
		th = themePresets()[themeIndexByName(cfg.UI.Theme)]
	}
	return &TUIView{th: th}
}

func (v *TUIView) SetSize(width, height int) {
	v.width = width
	v.height = height
}

func (v *TUIView) View(model *TUIModel, controller *TUIController) string {
	var b strings.Builder

	b.WriteString(v.renderHeader(model))
	b.WriteString("\n")

	if controller.showHelp {
		b.WriteString(v.helpView())
		return b.String()
	}

	b.WriteString(controller.searchInput.View())
	b.WriteString("\n\n")

	page, ok := model.Page()
	if ok {
		b.WriteString(v.renderTitle(page))
		b.WriteString("\n")
		b.WriteString(v.renderGrid(model, controller, page))
	} else if !model.searching {
		b.WriteString(v.th.label.Render("Type keywords separated by ';' and press enter."))
		b.WriteString("\n")
	}

	if controller.filterOn || controller.filter != "" {
		b.WriteString("\n")
		b.WriteString(controller.filterInput.View())
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(v.renderStatus(model, controller))
	b.WriteString("\n")
	b.WriteString(v.renderFooter(page.AnySelected))
	return b.String()
}

func (v *TUIView) renderHeader(model *TUIModel) string {
	title := v.th.title.Render("iconscrape")
	var stats []string
	if s := model.lastSearch; s.ID != "" {
		stats = append(stats, fmt.Sprintf("%d queries", len(s.Queries)), fmt.Sprintf("%d icons", s.Results))
	}
	if e := model.lastExport; e != nil {
		stats = append(stats, "last archive "+humanize.Time(e.when))
	}
	return v.th.border.Render(lipgloss.JoinHorizontal(lipgloss.Top, title+"  ", v.th.label.Render(strings.Join(stats, " • "))))
}

func (v *TUIView) renderTitle(page session.View) string {
	q := page.Query
	if q == "" {
		q = "(empty query)"
	}
	return v.th.head.Render(q) + v.th.label.Render(fmt.Sprintf("  page %d/%d  [p] prev  [n] next", page.Page+1, page.Pages))
}

func (v *TUIView) cellWidth(cols int) int {
	if v.width <= 0 {
		return 24
	}
	w := v.width/cols - 1
	if w < 12 {
		w = 12
	}
	return w
}

func (v *TUIView) renderGrid(model *TUIModel, controller *TUIController, page session.View) string {
	if len(page.Items) == 0 {
		return v.th.label.Render(fmt.Sprintf("No icons found for %q.", page.Query)) + "\n"
	}
	items := controller.visibleItems()
	if len(items) == 0 {
		return v.th.label.Render("No icons match the filter.") + "\n"
	}
	cols := model.Columns()
	w := v.cellWidth(cols)
	var b strings.Builder
	for i, it := range items {
		mark := "○"
		style := v.th.cell
		if it.Selected {
			mark = "●"
			style = v.th.selected
		}
		if i == controller.cursor && !controller.searchOn && !controller.filterOn {
			style = style.Inherit(v.th.cursor)
		}
		label := fmt.Sprintf("%s %d %s", mark, it.Index+1, util.URLPathBase(it.URL))
		b.WriteString(style.Width(w).Render(truncateMiddle(label, w)))
		if (i+1)%cols == 0 || i == len(items)-1 {
			b.WriteString("\n")
		} else {
			b.WriteString(" ")
		}
	}
	return b.String()
}

func (v *TUIView) renderStatus(model *TUIModel, controller *TUIController) string {
	switch {
	case model.searching:
		return controller.spin.View() + " searching..."
	case model.building:
		return controller.spin.View() + " building archive..."
	case controller.status == "":
		return ""
	case controller.statusBad:
		return v.th.bad.Render(controller.status)
	}
	return v.th.ok.Render(controller.status)
}

func (v *TUIView) renderFooter(anySelected bool) string {
	dl := v.th.label.Render("[d] download")
	if anySelected {
		dl = v.th.ok.Render("[d] download")
	}
	return v.th.footer.Render("[s] search  [space] toggle  [/] filter  [?] help  [q] quit  ") + dl
}

func (v *TUIView) helpView() string {
	lines := []string{
		"s, tab        focus the search bar (enter submits, esc leaves)",
		"n, ], pgdown  next query page (wraps around)",
		"p, [, pgup    previous query page (wraps around)",
		"arrows, hjkl  move in the grid",
		"space, enter  toggle selection of the icon under the cursor",
		"/             filter this page by file name, esc clears",
		"d             download selected icons as a zip",
		"y             copy the icon URL",
		"o             reveal the last archive in the file manager",
		"q, ctrl+c     quit",
		"",
		"press any key to close",
	}
	return v.th.border.Render(strings.Join(lines, "\n"))
}
