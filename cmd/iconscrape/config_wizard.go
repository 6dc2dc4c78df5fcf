package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"gopkg.in/yaml.v3"

	"iconscrape/internal/config"
	cw "iconscrape/internal/tui/configwizard"
)

func handleConfigWizard(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("config wizard", flag.ContinueOnError)
	out := fs.String("out", "", "write YAML to this path instead of stdout")
	if err := fs.Parse(args); err != nil {
		return err
	}

	defaults := config.Default()
	defaults.General.DataRoot = "~/.local/share/iconscrape"
	defaults.General.OutputRoot = "~/Downloads"
	w := cw.New(defaults)
	p := tea.NewProgram(w, tea.WithContext(ctx))
	m, err := p.Run()
	if err != nil {
		return err
	}
	wiz, ok := m.(*cw.Wizard)
	if !ok {
		return errors.New("unexpected model type from wizard")
	}
	cfg := wiz.Config()
	if cfg == nil {
		return errors.New("config wizard was cancelled")
	}
	b, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	if *out == "" {
		fmt.Print(string(b))
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(*out), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(*out, b, 0o644); err != nil {
		return err
	}
	fmt.Printf("wrote config to %s\n", *out)
	return nil
}
