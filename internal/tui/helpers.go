package tui

import (
	"fmt"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Theme and styling helpers

type Theme struct {
	border   lipgloss.Style
	title    lipgloss.Style
	label    lipgloss.Style
	head     lipgloss.Style
	cell     lipgloss.Style
	selected lipgloss.Style
	cursor   lipgloss.Style
	footer   lipgloss.Style
	ok       lipgloss.Style
	bad      lipgloss.Style
}

func defaultTheme() Theme {
	b := lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	return Theme{
		border:   b.BorderForeground(lipgloss.Color("63")),
		title:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("81")),
		label:    lipgloss.NewStyle().Faint(true),
		head:     lipgloss.NewStyle().Foreground(lipgloss.Color("213")).Bold(true),
		cell:     lipgloss.NewStyle(),
		selected: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("219")),
		cursor:   lipgloss.NewStyle().Reverse(true),
		footer:   lipgloss.NewStyle().Faint(true),
		ok:       lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		bad:      lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
	}
}

func themePresets() []Theme {
	dark := defaultTheme()
	light := Theme{
		border:   lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1).BorderForeground(lipgloss.Color("240")),
		title:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("62")),
		label:    lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		head:     lipgloss.NewStyle().Foreground(lipgloss.Color("162")).Bold(true),
		cell:     lipgloss.NewStyle(),
		selected: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("162")),
		cursor:   lipgloss.NewStyle().Reverse(true),
		footer:   lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		ok:       lipgloss.NewStyle().Foreground(lipgloss.Color("22")),
		bad:      lipgloss.NewStyle().Foreground(lipgloss.Color("160")),
	}
	return []Theme{dark, light}
}

func themeIndexByName(name string) int {
	presets := themePresets()
	names := []string{"dark", "light"}
	for i, n := range names {
		if strings.EqualFold(n, name) {
			return i % len(presets)
		}
	}
	return 0
}

// String utilities

func truncateMiddle(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max < 7 {
		return s[:max]
	}
	left := (max - 3) / 2
	right := max - 3 - left
	return s[:left] + "..." + s[len(s)-right:]
}

// Desktop integration

func openInFileManager(p string, reveal bool) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		if reveal {
			cmd = exec.Command("open", "-R", p)
		} else {
			cmd = exec.Command("open", p)
		}
	case "windows":
		if reveal {
			cmd = exec.Command("explorer.exe", "/select,", p)
		} else {
			cmd = exec.Command("explorer.exe", filepath.Dir(p))
		}
	case "linux", "freebsd", "openbsd":
		dir := p
		if reveal {
			dir = filepath.Dir(p)
		}
		cmd = exec.Command("xdg-open", dir)
	default:
		return fmt.Errorf("unsupported OS: %s", runtime.GOOS)
	}
	return cmd.Start()
}

func copyToClipboard(s string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("pbcopy")
	case "linux", "freebsd", "openbsd":
		if _, err := exec.LookPath("xclip"); err == nil {
			cmd = exec.Command("xclip", "-selection", "clipboard")
		} else if _, err := exec.LookPath("xsel"); err == nil {
			cmd = exec.Command("xsel", "--clipboard", "--input")
		} else if _, err := exec.LookPath("wl-copy"); err == nil {
			cmd = exec.Command("wl-copy")
		} else {
			return fmt.Errorf("no clipboard tool found (tried xclip, xsel, wl-copy)")
		}
	case "windows":
		cmd = exec.Command("clip")
	default:
		return fmt.Errorf("unsupported OS: %s", runtime.GOOS)
	}
	in, err := cmd.StdinPipe()
	if err != nil {
		return err
	}
	if err := cmd.Start(); err != nil {
		return err
	}
	if _, err := in.Write([]byte(s)); err != nil {
		return err
	}
	if err := in.Close(); err != nil {
		return err
	}
	return cmd.Wait()
}
