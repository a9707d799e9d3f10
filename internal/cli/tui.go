package cli

import (
	"github.com/spf13/cobra"

	"cipherstudio-cli/internal/theme"
	"cipherstudio-cli/internal/tui"
)

func runTUI(cmd *cobra.Command, app *App) error {
	s, err := openSession(app, true)
	if err != nil {
		return writeErr(cmd, err)
	}
	defer s.close()

	env := theme.DetectEnvironment(true)
	return tui.Run(tui.Options{
		Project: s.project,
		Theme:   s.preferences(env),
		Env:     env,
		Logger:  s.logger,
	})
}
