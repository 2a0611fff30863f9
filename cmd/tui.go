package cmd

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/theirongolddev/emicalc/internal/config"
	"github.com/theirongolddev/emicalc/internal/store"
	"github.com/theirongolddev/emicalc/internal/tui"
	"github.com/theirongolddev/emicalc/internal/tui/theme"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive calculator",
	RunE:  runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, _ []string) error {
	rt, err := loadRuntime()
	if err != nil {
		return err
	}
	defer func() { _ = rt.logger.Sync() }()
	theme.SetActive(rt.cfg.Appearance.Theme)

	// Force TrueColor profile so all background styling produces ANSI codes
	// Without this, lipgloss may default to Ascii profile (no colors)
	lipgloss.SetColorProfile(termenv.TrueColor)

	in, key, err := rt.scenario(cmd)
	if err != nil {
		return err
	}

	opts := tui.Options{
		Engine:    rt.engine,
		Catalog:   rt.catalog,
		Config:    rt.cfg,
		Input:     in,
		SchemeKey: key,
		NeedSetup: !config.Exists(),
	}
	if rt.historyEnabled() {
		h, err := store.Open(store.DefaultPath())
		if err != nil {
			rt.logger.Warn("history disabled", zap.Error(err))
		} else {
			defer func() { _ = h.Close() }()
			opts.History = h
		}
	}

	p := tea.NewProgram(tui.NewApp(opts), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	return nil
}
