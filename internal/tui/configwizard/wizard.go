package configwizard

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"iconscrape/internal/config"
)

type field struct {
	label string
	value func(c *config.Config) string
}

var fields = []field{
	{"general.data_root", func(c *config.Config) string { return c.General.DataRoot }},
	{"general.output_root", func(c *config.Config) string { return c.General.OutputRoot }},
	{"general.archive_name", func(c *config.Config) string { return c.General.ArchiveName }},
	{"source.search_url", func(c *config.Config) string { return c.Source.SearchURL }},
	{"network.timeout_seconds", func(c *config.Config) string { return fmt.Sprint(c.Network.TimeoutSeconds) }},
	{"concurrency.search_workers", func(c *config.Config) string { return fmt.Sprint(c.Concurrency.SearchWorkers) }},
	{"concurrency.fetch_workers", func(c *config.Config) string { return fmt.Sprint(c.Concurrency.FetchWorkers) }},
	{"ui.columns", func(c *config.Config) string { return fmt.Sprint(c.UI.Columns) }},
	{"ui.theme (dark|light)", func(c *config.Config) string { return c.UI.Theme }},
}

type Wizard struct {
	inputs   []textinput.Model
	focus    int
	done     bool
	defaults *config.Config
	out      *config.Config
}

// New starts a wizard prefilled from defaults, or config.Default() when nil.
func New(defaults *config.Config) *Wizard {
	if defaults == nil {
		defaults = config.Default()
	}
	w := &Wizard{defaults: defaults}
	for _, f := range fields {
		ti := textinput.New()
		ti.Prompt = "> "
		ti.Placeholder = f.label
		ti.SetValue(f.value(defaults))
		ti.CharLimit = 256
		w.inputs = append(w.inputs, ti)
	}
	w.inputs[0].Focus()
	return w
}

func (w *Wizard) Init() tea.Cmd { return nil }

func (w *Wizard) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m, ok := msg.(tea.KeyMsg); ok {
		switch m.String() {
		case "ctrl+c", "esc":
			w.done = true
			return w, tea.Quit
		case "tab", "shift+tab", "enter", "up", "down":
			if m.String() == "enter" && w.focus == len(w.inputs)-1 {
				w.done = true
				w.out = w.buildConfig()
				return w, tea.Quit
			}
			if m.String() == "up" || m.String() == "shift+tab" {
				w.focus--
				if w.focus < 0 {
					w.focus = 0
				}
			} else {
				w.focus++
				if w.focus >= len(w.inputs) {
					w.focus = len(w.inputs) - 1
				}
			}
			for j := range w.inputs {
				if j == w.focus {
					w.inputs[j].Focus()
				} else {
					w.inputs[j].Blur()
				}
			}
			return w, nil
		}
	}
	cmds := make([]tea.Cmd, len(w.inputs))
	for i := range w.inputs {
		w.inputs[i], cmds[i] = w.inputs[i].Update(msg)
	}
	return w, tea.Batch(cmds...)
}

func (w *Wizard) View() string {
	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Bold(true).Render("iconscrape config wizard") + "\n")
	b.WriteString("Tab/Shift-Tab to navigate, Enter on the last field to finish, Esc to abort.\n\n")
	for i, input := range w.inputs {
		marker := " "
		if i == w.focus {
			marker = ">"
		}
		b.WriteString(fmt.Sprintf("%s %-32s %s\n", marker, fields[i].label+":", input.View()))
	}
	if w.done && w.out != nil {
		b.WriteString("\nDone. Saving...\n")
	}
	return b.String()
}

// buildConfig starts from the defaults so sections the wizard does not ask
// about keep their values.
func (w *Wizard) buildConfig() *config.Config {
	get := func(i int) string { return strings.TrimSpace(w.inputs[i].Value()) }
	parseInt := func(s string, def int) int {
		if n, err := strconv.Atoi(strings.TrimSpace(s)); err == nil && n >= 0 {
			return n
		}
		return def
	}
	o := *w.defaults
	o.Version = 1
	o.General.DataRoot = get(0)
	o.General.OutputRoot = get(1)
	o.General.ArchiveName = get(2)
	o.Source.SearchURL = get(3)
	o.Network.TimeoutSeconds = parseInt(get(4), 30)
	o.Concurrency.SearchWorkers = parseInt(get(5), 4)
	o.Concurrency.FetchWorkers = parseInt(get(6), 4)
	o.UI.Columns = parseInt(get(7), 4)
	theme := strings.ToLower(get(8))
	if theme != "light" {
		theme = "dark"
	}
	o.UI.Theme = theme
	return &o
}

// Config returns the result, or nil when the wizard was aborted.
func (w *Wizard) Config() *config.Config { return w.out }
