package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"cipherstudio-cli/internal/project"
	"cipherstudio-cli/internal/theme"
)

type Options struct {
	Project *project.Store
	Theme   *theme.Preferences
	Env     theme.Environment
	// Logger must not write to the terminal the program draws on.
	Logger *zap.Logger
}

func Run(opts Options) error {
	m := newModel(opts)
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
